package usecase

import "github.com/prakan1684/SurveyAnalyst/internal/domain"

// windowSize bounds the recent-turn slice forwarded to the completion
// service. The full log is never truncated.
const windowSize = 10

// History is the append-only conversation log for one chatbot instance.
// It is not safe for concurrent use: queries against a chatbot must be
// serialized by the caller, which owns the history's lifecycle.
type History struct {
	turns []domain.ChatMessage
}

// NewHistory returns an empty conversation log.
func NewHistory() *History {
	return &History{}
}

// AppendUser records a user turn. This happens before any model call, so a
// failed query still leaves the user turn with no paired assistant turn.
func (h *History) AppendUser(text string) {
	h.turns = append(h.turns, domain.ChatMessage{Role: domain.RoleUser, Content: text})
}

// AppendAssistant records an assistant turn. Callers pass the narrative text
// with any code block already stripped, never the raw completion.
func (h *History) AppendAssistant(text string) {
	h.turns = append(h.turns, domain.ChatMessage{Role: domain.RoleAssistant, Content: text})
}

// Window returns a copy of the most recent turns, never more than the
// window size.
func (h *History) Window() []domain.ChatMessage {
	start := 0
	if len(h.turns) > windowSize {
		start = len(h.turns) - windowSize
	}
	out := make([]domain.ChatMessage, len(h.turns)-start)
	copy(out, h.turns[start:])
	return out
}

// All returns a copy of the full unbounded log for external inspection.
func (h *History) All() []domain.ChatMessage {
	out := make([]domain.ChatMessage, len(h.turns))
	copy(out, h.turns)
	return out
}

// Len returns the total number of recorded turns.
func (h *History) Len() int {
	return len(h.turns)
}

// Reset clears the log.
func (h *History) Reset() {
	h.turns = nil
}
