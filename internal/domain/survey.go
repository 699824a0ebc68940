package domain

// SurveyMeta is the read-only survey description sourced from the survey
// store. It is re-fetched on every query so prompts reflect live metadata.
type SurveyMeta struct {
	SurveyID    string
	Title       string
	Description string
	CreatedAt   string
	// Questions maps a response column name to the question text shown to
	// respondents (e.g. "satisfaction" -> "How satisfied are you?").
	Questions map[string]string
}

// SurveyResponse is a single submitted response: raw answer values keyed by
// column name, exactly as stored. Typing happens later in the dataset layer.
type SurveyResponse struct {
	ResponseID  string
	SubmittedAt string
	Answers     map[string]string
}
