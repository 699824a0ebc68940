package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"

	"github.com/prakan1684/SurveyAnalyst/internal/domain"
	"github.com/prakan1684/SurveyAnalyst/internal/usecase"
)

// Chatbot is the conversational analysis surface the handler drives.
type Chatbot interface {
	Ask(ctx context.Context, query string) (domain.ChatResponse, error)
	Reset()
}

// ChatbotFactory builds a Chatbot bound to one survey. Called once per
// session; the result is cached for follow-up turns.
type ChatbotFactory func(ctx context.Context, surveyID string) (Chatbot, error)

// Moderator screens user input before it reaches the model.
type Moderator interface {
	Moderate(ctx context.Context, input string) (bool, error)
}

type askRequest struct {
	SurveyID  string `json:"surveyId"`
	SessionID string `json:"sessionId"`
	Question  string `json:"question"`
	Reset     bool   `json:"reset"`
}

type askResponse struct {
	Answer        string `json:"answer"`
	Visualization string `json:"visualization,omitempty"`
	SessionID     string `json:"sessionId"`
}

type errorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
}

// session pairs a cached chatbot with a mutex so concurrent invocations for
// the same session serialize their history access.
type session struct {
	mu       sync.Mutex
	bot      Chatbot
	surveyID string
}

// Handler routes API Gateway events to per-session chatbots.
type Handler struct {
	factory   ChatbotFactory
	moderator Moderator
	logger    *slog.Logger

	mu       sync.Mutex
	sessions map[string]*session
}

// NewHandler creates a Handler. The moderator is optional; pass nil to skip
// input screening.
func NewHandler(factory ChatbotFactory, moderator Moderator, logger *slog.Logger) (*Handler, error) {
	if factory == nil {
		return nil, errors.New("handler: chatbot factory must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		factory:   factory,
		moderator: moderator,
		logger:    logger,
		sessions:  make(map[string]*session),
	}, nil
}

// Handle processes one chat turn.
func (h *Handler) Handle(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	corrID := correlationID(event.Headers)
	logger := h.logger.With("correlationId", corrID)

	var req askRequest
	if err := json.Unmarshal([]byte(event.Body), &req); err != nil {
		logger.Warn("invalid request body", "err", err)
		return errorResult(corrID, http.StatusBadRequest, errorResponse{
			Error:  string(usecase.ErrorInvalidInput),
			Reason: "invalid_body",
		}), nil
	}
	if strings.TrimSpace(req.SurveyID) == "" {
		return errorResult(corrID, http.StatusBadRequest, errorResponse{
			Error:  string(usecase.ErrorInvalidInput),
			Reason: "empty_survey_id",
		}), nil
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	sess, err := h.lookupSession(ctx, sessionID, req.SurveyID)
	if err != nil {
		logger.Error("session setup failed", "err", err, "surveyId", req.SurveyID)
		return h.errorFor(corrID, err), nil
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if req.Reset {
		sess.bot.Reset()
		logger.Info("conversation reset", "sessionId", sessionID)
		if strings.TrimSpace(req.Question) == "" {
			return okResult(corrID, askResponse{Answer: "Conversation history cleared.", SessionID: sessionID}), nil
		}
	}

	if h.moderator != nil {
		flagged, modErr := h.moderator.Moderate(ctx, req.Question)
		if modErr != nil {
			// Screening is advisory; an outage must not block analysis.
			logger.Warn("moderation unavailable", "err", modErr)
		} else if flagged {
			return errorResult(corrID, http.StatusBadRequest, errorResponse{
				Error:  string(usecase.ErrorInvalidQuestion),
				Reason: "flagged_by_moderation",
			}), nil
		}
	}

	answer, err := sess.bot.Ask(ctx, req.Question)
	if err != nil {
		logger.Warn("ask failed", "err", err, "sessionId", sessionID)
		return h.errorFor(corrID, err), nil
	}

	logger.Info("answered", "sessionId", sessionID, "surveyId", req.SurveyID, "visualization", answer.Visualization != "")
	return okResult(corrID, askResponse{
		Answer:        answer.Text,
		Visualization: answer.Visualization,
		SessionID:     sessionID,
	}), nil
}

// lookupSession returns the cached session, building a chatbot on first use.
// A session that switches surveys gets a fresh chatbot.
func (h *Handler) lookupSession(ctx context.Context, sessionID, surveyID string) (*session, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if sess, ok := h.sessions[sessionID]; ok && sess.surveyID == surveyID {
		return sess, nil
	}
	bot, err := h.factory(ctx, surveyID)
	if err != nil {
		return nil, err
	}
	sess := &session{bot: bot, surveyID: surveyID}
	h.sessions[sessionID] = sess
	return sess, nil
}

// errorFor maps an error to an HTTP response using the usecase taxonomy.
func (h *Handler) errorFor(corrID string, err error) events.APIGatewayProxyResponse {
	var ucErr *usecase.Error
	if !errors.As(err, &ucErr) {
		return errorResult(corrID, http.StatusInternalServerError, errorResponse{
			Error: string(usecase.ErrorInternal),
		})
	}
	return errorResult(corrID, statusFor(ucErr.Code), errorResponse{
		Error:  string(ucErr.Code),
		Reason: ucErr.Reason,
	})
}

func statusFor(code usecase.ErrorCode) int {
	switch code {
	case usecase.ErrorInvalidInput, usecase.ErrorInvalidQuestion:
		return http.StatusBadRequest
	case usecase.ErrorRateLimited:
		return http.StatusTooManyRequests
	case usecase.ErrorUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// correlationID extracts the caller's correlation id, case-insensitively,
// or mints a new one.
func correlationID(headers map[string]string) string {
	for k, v := range headers {
		if strings.EqualFold(k, "X-Correlation-Id") && v != "" {
			return v
		}
	}
	return uuid.NewString()
}

func okResult(corrID string, body askResponse) events.APIGatewayProxyResponse {
	return result(corrID, http.StatusOK, body)
}

func errorResult(corrID string, status int, body errorResponse) events.APIGatewayProxyResponse {
	return result(corrID, status, body)
}

func result(corrID string, status int, body any) events.APIGatewayProxyResponse {
	raw, err := json.Marshal(body)
	if err != nil {
		raw = []byte(`{"error":"INTERNAL_ERROR"}`)
		status = http.StatusInternalServerError
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers: map[string]string{
			"Content-Type":     "application/json",
			"X-Correlation-Id": corrID,
		},
		Body: string(raw),
	}
}
