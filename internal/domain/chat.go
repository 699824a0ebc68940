package domain

// Chat roles used throughout the pipeline and LLM integrations.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is the provider-agnostic chat message shape used by the
// conversation log, the prompt builder, and LLM integrations.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatOptions tunes a single completion call. The two pipeline call sites
// use different budgets: relevance selection runs cold and short, generation
// runs warmer with a higher ceiling in visualization mode.
type ChatOptions struct {
	Temperature float64
	MaxTokens   int
}

// GeneratedProgram is a parsed model completion: human-readable narrative
// plus an optional plot instruction extracted from the marker block.
// Code is empty when the completion carried no well-formed block.
type GeneratedProgram struct {
	Narrative string
	Code      string
}

// HasCode reports whether a plot instruction was extracted.
func (p GeneratedProgram) HasCode() bool {
	return p.Code != ""
}

// ChatResponse is the value Ask returns to the caller. Visualization is a
// base64-encoded PNG, set only when a plot instruction was present and
// rendering succeeded.
type ChatResponse struct {
	Text          string `json:"text"`
	Visualization string `json:"visualization,omitempty"`
}
