package dataset

// SemanticType classifies how a column should be summarized and plotted.
type SemanticType string

const (
	TypeNumeric     SemanticType = "numeric"
	TypeCategorical SemanticType = "categorical"
	TypeDatetime    SemanticType = "datetime"
	TypeText        SemanticType = "text"
)

// categoricalRatio is the exclusive upper bound on unique-to-row ratio for
// categorical columns: a ratio of exactly 0.2 is text.
const categoricalRatio = 0.2

// ColumnProfile describes one classified column.
type ColumnProfile struct {
	Name        string
	Type        SemanticType
	UniqueRatio float64
}

// Profile classifies every column of the snapshot except the reserved
// identifier column. Numeric and temporal columns take their storage kind;
// string columns split on unique ratio: below 0.2 they are categorical,
// otherwise free text. An empty frame yields no profiles, which downstream
// stages treat as the no-data condition.
func Profile(f *Frame) map[string]ColumnProfile {
	profiles := make(map[string]ColumnProfile)
	if f.IsEmpty() {
		return profiles
	}

	for _, name := range f.names {
		if name == ReservedIDColumn {
			continue
		}
		col := f.cols[name]
		ratio := float64(col.DistinctCount()) / float64(f.rows)

		p := ColumnProfile{Name: name, UniqueRatio: ratio}
		switch {
		case col.Kind == KindNumber:
			p.Type = TypeNumeric
		case col.Kind == KindTime:
			p.Type = TypeDatetime
		case ratio < categoricalRatio:
			p.Type = TypeCategorical
		default:
			p.Type = TypeText
		}
		profiles[name] = p
	}
	return profiles
}
