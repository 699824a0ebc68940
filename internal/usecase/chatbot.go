package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/prakan1684/SurveyAnalyst/internal/dataset"
	"github.com/prakan1684/SurveyAnalyst/internal/domain"
)

const noDataMessage = "I don't have any survey data to analyze. Please make sure the survey data is loaded correctly."

var (
	narrativeOptions     = domain.ChatOptions{Temperature: 0.7, MaxTokens: 500}
	visualizationOptions = domain.ChatOptions{Temperature: 0.7, MaxTokens: 800}
)

// LLMClient is the completion-service boundary. Both pipeline call sites
// (relevance selection and answer generation) go through it.
type LLMClient interface {
	Chat(ctx context.Context, model string, messages []domain.ChatMessage, opts domain.ChatOptions) (string, error)
}

// SurveyReader is the analytics collaborator: survey metadata is re-fetched
// per query, the response snapshot once at construction. The pipeline never
// mutates collaborator state.
type SurveyReader interface {
	GetSurvey(ctx context.Context, surveyID string) (domain.SurveyMeta, error)
	GetResponses(ctx context.Context, surveyID string) ([]domain.SurveyResponse, error)
}

// Renderer turns a plot instruction into a base64-encoded PNG drawn against
// the frame snapshot.
type Renderer interface {
	Render(f *dataset.Frame, code string) (string, error)
}

// Chatbot answers natural-language questions about one survey's responses.
// The response snapshot and its column profiles are computed once at
// construction and immutable for the chatbot's lifetime; a survey whose
// data changes needs a new instance. Queries against one instance must be
// serialized by the caller; the pipeline holds no internal locks.
type Chatbot struct {
	llm      LLMClient
	store    SurveyReader
	renderer Renderer
	logger   *slog.Logger

	surveyID string
	model    string

	frame    *dataset.Frame
	profiles map[string]dataset.ColumnProfile
	history  *History
}

// New builds a chatbot for a survey, fetching the response snapshot and
// profiling its columns once.
func New(ctx context.Context, llm LLMClient, store SurveyReader, renderer Renderer, surveyID, model string, logger *slog.Logger) (*Chatbot, error) {
	if llm == nil {
		return nil, errors.New("usecase: llm client must not be nil")
	}
	if store == nil {
		return nil, errors.New("usecase: survey store must not be nil")
	}
	if renderer == nil {
		return nil, errors.New("usecase: renderer must not be nil")
	}
	if strings.TrimSpace(surveyID) == "" {
		return nil, newError(ErrorInvalidInput, "empty_survey_id", nil)
	}
	if strings.TrimSpace(model) == "" {
		return nil, newError(ErrorInternal, "empty_model", nil)
	}
	if logger == nil {
		logger = slog.Default()
	}

	responses, err := store.GetResponses(ctx, surveyID)
	if err != nil {
		// The store is a remote dependency, so its failure is upstream,
		// not internal.
		return nil, newError(ErrorUpstream, "survey_load_error", err)
	}

	frame := dataset.FromResponses(responses)
	return &Chatbot{
		llm:      llm,
		store:    store,
		renderer: renderer,
		logger:   logger,
		surveyID: surveyID,
		model:    model,
		frame:    frame,
		profiles: dataset.Profile(frame),
		history:  NewHistory(),
	}, nil
}

// Ask runs one query through the full pipeline: relevance selection, data
// summary, generation, parsing, and optional rendering. Every stage past
// input validation degrades softly; the returned error is non-nil only for
// invalid input.
func (c *Chatbot) Ask(ctx context.Context, query string) (domain.ChatResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return domain.ChatResponse{}, newError(ErrorInvalidInput, "empty_question", nil)
	}

	// No data short-circuits before any model call or history mutation.
	if c.frame.IsEmpty() || len(c.profiles) == 0 {
		return domain.ChatResponse{Text: noDataMessage}, nil
	}

	c.history.AppendUser(query)

	meta := c.fetchMeta(ctx)
	relevant := c.relevantColumns(ctx, query, meta.Questions)
	dataSummary := dataset.Summarize(c.frame, c.profiles, meta.Questions, relevant)
	surveyInfo := buildSurveyInfo(meta, c.frame.Rows())

	visualMode := isVisualizationRequest(query)
	var systemPrompt string
	var opts domain.ChatOptions
	if visualMode {
		systemPrompt = buildVisualizationPrompt(surveyInfo, dataSummary, c.frame.Names())
		opts = visualizationOptions
	} else {
		systemPrompt = buildNarrativePrompt(surveyInfo, dataSummary)
		opts = narrativeOptions
	}

	raw, err := c.llm.Chat(ctx, c.model, buildMessages(systemPrompt, c.history.Window()), opts)
	if err != nil {
		// The user turn stays in history with no paired assistant turn.
		c.logger.Warn("generation failed", "err", err)
		return domain.ChatResponse{
			Text: "I encountered an error while processing your question: " + err.Error(),
		}, nil
	}

	program := ParseProgram(raw)
	c.history.AppendAssistant(program.Narrative)

	resp := domain.ChatResponse{Text: program.Narrative}
	if program.HasCode() {
		img, renderErr := c.renderer.Render(c.frame, program.Code)
		if renderErr != nil {
			c.logger.Warn("visualization rendering failed", "err", renderErr)
		} else {
			resp.Visualization = img
			resp.Text = program.Narrative + "\n\n(Visualization generated)"
		}
	}
	return resp, nil
}

// fetchMeta re-reads survey metadata so prompts reflect live titles and
// question text. Failure degrades to empty metadata rather than failing
// the query.
func (c *Chatbot) fetchMeta(ctx context.Context) domain.SurveyMeta {
	meta, err := c.store.GetSurvey(ctx, c.surveyID)
	if err != nil {
		c.logger.Warn("survey metadata fetch failed", "surveyId", c.surveyID, "err", err)
		return domain.SurveyMeta{SurveyID: c.surveyID}
	}
	return meta
}

// Reset clears the conversation history.
func (c *Chatbot) Reset() {
	c.history.Reset()
}

// History returns the full conversation log for external inspection.
func (c *Chatbot) History() []domain.ChatMessage {
	return c.history.All()
}

// Profiles exposes the read-only column profiles computed at construction.
func (c *Chatbot) Profiles() map[string]dataset.ColumnProfile {
	return c.profiles
}
