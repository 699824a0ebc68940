package usecase

import (
	"fmt"
	"strings"

	"github.com/prakan1684/SurveyAnalyst/internal/domain"
)

// visualizationKeywords classify a query as a chart request via
// case-insensitive substring match.
var visualizationKeywords = []string{
	"chart", "graph", "plot", "visual", "show me", "display", "histogram", "bar", "pie",
}

func isVisualizationRequest(query string) bool {
	lower := strings.ToLower(query)
	for _, kw := range visualizationKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func buildSurveyInfo(meta domain.SurveyMeta, responseCount int) string {
	title := meta.Title
	if title == "" {
		title = "Unknown"
	}
	description := meta.Description
	if description == "" {
		description = "No description"
	}
	return strings.Join([]string{
		"Survey Title: " + title,
		"Survey Description: " + description,
		fmt.Sprintf("Number of Responses: %d", responseCount),
		fmt.Sprintf("Number of Questions: %d", len(meta.Questions)),
	}, "\n")
}

func buildNarrativePrompt(surveyInfo, dataSummary string) string {
	return strings.Join([]string{
		"You are a helpful survey analysis assistant. You help analyze survey data and provide insights.",
		"",
		"The survey information is:",
		surveyInfo,
		"",
		"The data summary is:",
		dataSummary,
		"",
		"When responding:",
		"1) Be concise and focus on insights from the data.",
		"2) If a visualization would help, suggest that the user ask for a specific chart.",
		"3) If you can't answer the question with the available data, explain why.",
		"4) Use a friendly, professional tone.",
	}, "\n")
}

func buildVisualizationPrompt(surveyInfo, dataSummary string, columns []string) string {
	return strings.Join([]string{
		"You are a helpful survey analysis assistant with expertise in data visualization.",
		"",
		"The survey information is:",
		surveyInfo,
		"",
		"The data summary is:",
		dataSummary,
		"",
		"The user is asking for a visualization. You must:",
		"1) Decide which chart type best answers their query.",
		"2) Emit a plot instruction for the renderer, which draws against the survey dataframe df.",
		"3) Format your reply as a brief insight followed by the instruction enclosed in " + codeStartMarker + " and " + codeEndMarker + " tags.",
		"",
		"The plot instruction is a single JSON object, one of:",
		`  {"kind":"bar","column":"<column>","title":"..."}`,
		`  {"kind":"pie","column":"<column>","title":"..."}`,
		`  {"kind":"histogram","column":"<numeric column>","bins":<n>,"title":"..."}`,
		`  {"kind":"line","x":"<datetime column>","y":"<numeric column or empty for counts>","title":"..."}`,
		"",
		"Available columns in df: " + strings.Join(columns, ", "),
		"",
		"Example response format:",
		"The satisfaction ratings show that most users are highly satisfied with the product.",
		"",
		codeStartMarker,
		`{"kind":"histogram","column":"satisfaction","bins":5,"title":"Distribution of Satisfaction Ratings"}`,
		codeEndMarker,
	}, "\n")
}

// buildMessages assembles the completion request: system prompt first, then
// the bounded conversation window. The current user turn is already the last
// window entry by the time this runs.
func buildMessages(systemPrompt string, window []domain.ChatMessage) []domain.ChatMessage {
	messages := make([]domain.ChatMessage, 0, len(window)+1)
	messages = append(messages, domain.ChatMessage{Role: domain.RoleSystem, Content: systemPrompt})
	return append(messages, window...)
}
