package usecase

import (
	"strings"

	"github.com/prakan1684/SurveyAnalyst/internal/domain"
)

const (
	codeStartMarker = "[CODE]"
	codeEndMarker   = "[/CODE]"
)

// ParseProgram splits a raw completion into narrative text and an optional
// plot instruction. Code is extracted only when both markers appear in
// order; a start marker with no matching end marker leaves the whole
// completion as narrative rather than guessing at a truncated block.
func ParseProgram(raw string) domain.GeneratedProgram {
	start := strings.Index(raw, codeStartMarker)
	if start < 0 {
		return domain.GeneratedProgram{Narrative: strings.TrimSpace(raw)}
	}
	rest := raw[start+len(codeStartMarker):]
	end := strings.Index(rest, codeEndMarker)
	if end < 0 {
		return domain.GeneratedProgram{Narrative: strings.TrimSpace(raw)}
	}
	return domain.GeneratedProgram{
		Narrative: strings.TrimSpace(raw[:start]),
		Code:      strings.TrimSpace(rest[:end]),
	}
}
