package dataset

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/prakan1684/SurveyAnalyst/internal/domain"
)

func TestSummarize_EmptyFrame(t *testing.T) {
	f := FromResponses(nil)
	require.Equal(t, "No data available.", Summarize(f, Profile(f), nil, []string{"a"}))
}

func TestSummarize_NoRelevantColumns(t *testing.T) {
	f := FromResponses(makeResponses(
		map[string]string{"a": "1", "b": "2"},
		map[string]string{"a": "3", "b": "4"},
	))
	got := Summarize(f, Profile(f), nil, nil)
	// response_id counts toward the field total
	require.Equal(t, "The survey has 2 responses across 3 fields.", got)
}

func TestSummarize_Numeric(t *testing.T) {
	f := FromResponses(makeResponses(
		map[string]string{"score": "1"},
		map[string]string{"score": "2"},
		map[string]string{"score": "3"},
		map[string]string{"score": "4"},
	))
	questions := map[string]string{"score": "How would you rate us?"}
	got := Summarize(f, Profile(f), questions, []string{"score"})
	require.Contains(t, got, "How would you rate us? (numeric):")
	require.Contains(t, got, "  - Range: 1 to 4")
	require.Contains(t, got, "  - Average: 2.50")
	require.Contains(t, got, "  - Median: 2.5")
}

func TestSummarize_Categorical(t *testing.T) {
	answers := []map[string]string{}
	for i := 0; i < 12; i++ {
		answers = append(answers, map[string]string{"plan": "basic"})
	}
	for i := 0; i < 3; i++ {
		answers = append(answers, map[string]string{"plan": "pro"})
	}
	f := FromResponses(makeResponsesN(answers))

	got := Summarize(f, Profile(f), nil, []string{"plan"})
	require.Contains(t, got, "Plan (categorical):")
	require.Contains(t, got, "  - basic: 12 responses (80.0%)")
	require.Contains(t, got, "  - pro: 3 responses (20.0%)")
	// most frequent listed first
	require.Less(t, strings.Index(got, "basic"), strings.Index(got, "pro"))
}

func TestSummarize_Datetime(t *testing.T) {
	f := FromResponses(makeResponses(
		map[string]string{"visited": "2026-03-01"},
		map[string]string{"visited": "2026-03-05"},
	))
	got := Summarize(f, Profile(f), nil, []string{"visited"})
	require.Contains(t, got, "Visited (date/time):")
	require.Contains(t, got, "  - Earliest: 2026-03-01 00:00:00")
	require.Contains(t, got, "  - Latest: 2026-03-05 00:00:00")
}

func TestSummarize_Text(t *testing.T) {
	f := FromResponses(makeResponses(
		map[string]string{"comment": "good"},
		map[string]string{"comment": "bad"},
		map[string]string{"comment": "fine"},
	))
	got := Summarize(f, Profile(f), nil, []string{"comment"})
	require.Contains(t, got, "Comment (text/other):")
	require.Contains(t, got, "  - 3 unique values")
}

func TestSummarize_SkipsUnknownColumns(t *testing.T) {
	f := FromResponses(makeResponses(map[string]string{"a": "x"}))
	got := Summarize(f, Profile(f), nil, []string{"nope", "a"})
	require.NotContains(t, got, "nope")
	require.Contains(t, got, "A (text/other):")
}

func TestQuestionLabel(t *testing.T) {
	questions := map[string]string{"satisfaction": "How satisfied are you?"}
	require.Equal(t, "How satisfied are you?", QuestionLabel(questions, "satisfaction"))
	require.Equal(t, "User Type", QuestionLabel(questions, "user_type"))
	require.Equal(t, "Age", QuestionLabel(nil, "age"))
}

func makeResponsesN(answers []map[string]string) []domain.SurveyResponse {
	out := make([]domain.SurveyResponse, len(answers))
	for i, a := range answers {
		out[i] = domain.SurveyResponse{ResponseID: fmt.Sprintf("r%d", i), Answers: a}
	}
	return out
}
