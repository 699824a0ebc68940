package dataset

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/prakan1684/SurveyAnalyst/internal/domain"
)

// Kind is the storage type inferred for a column.
type Kind int

const (
	KindString Kind = iota
	KindNumber
	KindTime
)

// ReservedIDColumn holds the per-response identifier and is never profiled
// or summarized as survey content.
const ReservedIDColumn = "response_id"

// Column is a single typed column. Strs always holds the raw trimmed cell
// values; Nums or Times is additionally populated when Kind matches. Missing
// or unparseable cells are NaN (numbers) or the zero time.
type Column struct {
	Name  string
	Kind  Kind
	Strs  []string
	Nums  []float64
	Times []time.Time
}

// Frame is an immutable columnar snapshot of survey responses. It is built
// once per chatbot instance and safe for concurrent reads.
type Frame struct {
	names []string
	cols  map[string]*Column
	rows  int
}

// FromResponses builds a Frame from raw survey responses. Column types are
// inferred by majority vote over non-empty values: a column is numeric or
// temporal only when at least 80% of its values parse as such, otherwise it
// stays a string column.
func FromResponses(responses []domain.SurveyResponse) *Frame {
	f := &Frame{cols: make(map[string]*Column), rows: len(responses)}
	if len(responses) == 0 {
		return f
	}

	nameSet := make(map[string]bool)
	var answerNames []string
	for _, r := range responses {
		for name := range r.Answers {
			if !nameSet[name] {
				nameSet[name] = true
				answerNames = append(answerNames, name)
			}
		}
	}
	sort.Strings(answerNames)

	f.names = append(f.names, ReservedIDColumn)
	ids := make([]string, len(responses))
	for i, r := range responses {
		ids[i] = strings.TrimSpace(r.ResponseID)
	}
	f.cols[ReservedIDColumn] = &Column{Name: ReservedIDColumn, Kind: KindString, Strs: ids}

	if hasTimestamps(responses) {
		f.names = append(f.names, "timestamp")
		raw := make([]string, len(responses))
		for i, r := range responses {
			raw[i] = strings.TrimSpace(r.SubmittedAt)
		}
		f.cols["timestamp"] = buildColumn("timestamp", raw)
	}

	for _, name := range answerNames {
		raw := make([]string, len(responses))
		for i, r := range responses {
			raw[i] = strings.TrimSpace(r.Answers[name])
		}
		f.names = append(f.names, name)
		f.cols[name] = buildColumn(name, raw)
	}
	return f
}

func hasTimestamps(responses []domain.SurveyResponse) bool {
	for _, r := range responses {
		if strings.TrimSpace(r.SubmittedAt) != "" {
			return true
		}
	}
	return false
}

// Rows returns the number of responses in the snapshot.
func (f *Frame) Rows() int { return f.rows }

// Names returns column names in frame order.
func (f *Frame) Names() []string {
	out := make([]string, len(f.names))
	copy(out, f.names)
	return out
}

// Column looks up a column by name.
func (f *Frame) Column(name string) (*Column, bool) {
	c, ok := f.cols[name]
	return c, ok
}

// IsEmpty reports whether the snapshot has no rows or no columns.
func (f *Frame) IsEmpty() bool {
	return f.rows == 0 || len(f.names) == 0
}

// ============================================================================
// Column construction
// ============================================================================

const kindThreshold = 0.8

func buildColumn(name string, raw []string) *Column {
	col := &Column{Name: name, Strs: raw, Kind: detectKind(raw)}
	switch col.Kind {
	case KindNumber:
		col.Nums = make([]float64, len(raw))
		for i, v := range raw {
			n, ok := parseNumber(v)
			if !ok {
				n = math.NaN()
			}
			col.Nums[i] = n
		}
	case KindTime:
		col.Times = make([]time.Time, len(raw))
		for i, v := range raw {
			t, ok := parseTime(v)
			if ok {
				col.Times[i] = t
			}
		}
	}
	return col
}

// detectKind votes over non-empty values and requires a clear majority
// before committing to a typed column.
func detectKind(raw []string) Kind {
	numCount, timeCount, total := 0, 0, 0
	for _, v := range raw {
		if v == "" {
			continue
		}
		total++
		if _, ok := parseNumber(v); ok {
			numCount++
		}
		if _, ok := parseTime(v); ok {
			timeCount++
		}
	}
	if total == 0 {
		return KindString
	}
	threshold := int(math.Ceil(float64(total) * kindThreshold))
	if timeCount >= threshold {
		return KindTime
	}
	if numCount >= threshold {
		return KindNumber
	}
	return KindString
}

func parseNumber(s string) (float64, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

var timeFormats = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
}

func parseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range timeFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ============================================================================
// Column statistics
// ============================================================================

// DistinctCount returns the number of distinct non-empty raw values.
func (c *Column) DistinctCount() int {
	seen := make(map[string]bool)
	for _, v := range c.Strs {
		if v != "" {
			seen[v] = true
		}
	}
	return len(seen)
}

// ValueCount is one distinct value and its occurrence count.
type ValueCount struct {
	Value string
	Count int
}

// ValueCounts returns distinct non-empty values ordered by descending count,
// ties broken alphabetically for deterministic output.
func (c *Column) ValueCounts() []ValueCount {
	counts := make(map[string]int)
	for _, v := range c.Strs {
		if v != "" {
			counts[v]++
		}
	}
	out := make([]ValueCount, 0, len(counts))
	for v, n := range counts {
		out = append(out, ValueCount{Value: v, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Value < out[j].Value
	})
	return out
}

// Min returns the smallest numeric value, ignoring missing cells.
func (c *Column) Min() float64 { return c.fold(math.Inf(1), math.Min) }

// Max returns the largest numeric value, ignoring missing cells.
func (c *Column) Max() float64 { return c.fold(math.Inf(-1), math.Max) }

func (c *Column) fold(init float64, f func(a, b float64) float64) float64 {
	acc, seen := init, false
	for _, n := range c.Nums {
		if math.IsNaN(n) {
			continue
		}
		acc = f(acc, n)
		seen = true
	}
	if !seen {
		return math.NaN()
	}
	return acc
}

// Mean returns the arithmetic mean of the numeric values, ignoring missing
// cells. NaN when the column has no usable values.
func (c *Column) Mean() float64 {
	sum, count := 0.0, 0
	for _, n := range c.Nums {
		if math.IsNaN(n) {
			continue
		}
		sum += n
		count++
	}
	if count == 0 {
		return math.NaN()
	}
	return sum / float64(count)
}

// Median returns the median numeric value, ignoring missing cells.
func (c *Column) Median() float64 {
	vals := make([]float64, 0, len(c.Nums))
	for _, n := range c.Nums {
		if !math.IsNaN(n) {
			vals = append(vals, n)
		}
	}
	if len(vals) == 0 {
		return math.NaN()
	}
	sort.Float64s(vals)
	mid := len(vals) / 2
	if len(vals)%2 == 1 {
		return vals[mid]
	}
	return (vals[mid-1] + vals[mid]) / 2
}

// Earliest returns the oldest timestamp in a temporal column, ignoring
// unparseable cells. Zero time when nothing parsed.
func (c *Column) Earliest() time.Time {
	var best time.Time
	for _, t := range c.Times {
		if t.IsZero() {
			continue
		}
		if best.IsZero() || t.Before(best) {
			best = t
		}
	}
	return best
}

// Latest returns the newest timestamp in a temporal column.
func (c *Column) Latest() time.Time {
	var best time.Time
	for _, t := range c.Times {
		if t.After(best) {
			best = t
		}
	}
	return best
}
