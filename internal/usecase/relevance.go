package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/prakan1684/SurveyAnalyst/internal/dataset"
	"github.com/prakan1684/SurveyAnalyst/internal/domain"
)

var relevanceOptions = domain.ChatOptions{Temperature: 0.3, MaxTokens: 100}

// relevantColumns asks the completion service which columns matter for the
// query. Hallucinated names are dropped, a reply of "none" means no columns,
// and any call failure degrades to the empty list so the query proceeds
// with a generic data summary.
func (c *Chatbot) relevantColumns(ctx context.Context, query string, questions map[string]string) []string {
	names := c.frame.Names()
	if len(names) == 0 {
		return nil
	}

	labeled := make([]string, len(names))
	known := make(map[string]bool, len(names))
	for i, name := range names {
		labeled[i] = fmt.Sprintf("%s (%s)", name, dataset.QuestionLabel(questions, name))
		known[name] = true
	}

	prompt := strings.Join([]string{
		"I have survey data with the following columns:",
		strings.Join(labeled, ", "),
		"",
		fmt.Sprintf("The user is asking: %q", query),
		"",
		"Which columns are most relevant to answering this query? Return only the column names separated by commas, with no additional text.",
		`If no columns are relevant, return "None".`,
	}, "\n")

	reply, err := c.llm.Chat(ctx, c.model, []domain.ChatMessage{
		{Role: domain.RoleUser, Content: prompt},
	}, relevanceOptions)
	if err != nil {
		c.logger.Warn("relevance selection failed, using generic summary", "err", err)
		return nil
	}

	reply = strings.TrimSpace(reply)
	if strings.EqualFold(reply, "none") {
		return nil
	}

	var relevant []string
	for _, part := range strings.Split(reply, ",") {
		name := strings.TrimSpace(part)
		if known[name] {
			relevant = append(relevant, name)
		}
	}
	return relevant
}
