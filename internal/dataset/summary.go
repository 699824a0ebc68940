package dataset

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const timeDisplay = "2006-01-02 15:04:05"

// Summarize builds the textual data block embedded verbatim in the
// generation prompt. With no relevant columns it falls back to a one-line
// overview; otherwise each relevant column gets a type-specific summary.
// Columns the frame does not know are silently skipped.
func Summarize(f *Frame, profiles map[string]ColumnProfile, questions map[string]string, relevant []string) string {
	if f.IsEmpty() {
		return "No data available."
	}
	if len(relevant) == 0 {
		return fmt.Sprintf("The survey has %d responses across %d fields.", f.rows, len(f.names))
	}

	var lines []string
	for _, name := range relevant {
		col, ok := f.cols[name]
		if !ok {
			continue
		}
		label := QuestionLabel(questions, name)

		switch profiles[name].Type {
		case TypeNumeric:
			lines = append(lines,
				fmt.Sprintf("%s (numeric):", label),
				fmt.Sprintf("  - Range: %s to %s", formatNumber(col.Min()), formatNumber(col.Max())),
				fmt.Sprintf("  - Average: %.2f", col.Mean()),
				fmt.Sprintf("  - Median: %s", formatNumber(col.Median())),
			)
		case TypeCategorical:
			lines = append(lines, fmt.Sprintf("%s (categorical):", label))
			for _, vc := range col.ValueCounts() {
				pct := float64(vc.Count) / float64(f.rows) * 100
				lines = append(lines, fmt.Sprintf("  - %s: %d responses (%.1f%%)", vc.Value, vc.Count, pct))
			}
		case TypeDatetime:
			lines = append(lines,
				fmt.Sprintf("%s (date/time):", label),
				fmt.Sprintf("  - Earliest: %s", col.Earliest().Format(timeDisplay)),
				fmt.Sprintf("  - Latest: %s", col.Latest().Format(timeDisplay)),
			)
		default:
			lines = append(lines,
				fmt.Sprintf("%s (text/other):", label),
				fmt.Sprintf("  - %d unique values", col.DistinctCount()),
			)
		}
	}
	return strings.Join(lines, "\n")
}

// QuestionLabel returns the question text for a column, falling back to a
// titleized form of the column name ("user_type" -> "User Type").
func QuestionLabel(questions map[string]string, name string) string {
	if q, ok := questions[name]; ok && strings.TrimSpace(q) != "" {
		return q
	}
	words := strings.Fields(strings.ReplaceAll(name, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func formatNumber(n float64) string {
	if math.IsNaN(n) {
		return "n/a"
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}
