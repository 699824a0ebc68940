package render

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Plot instruction kinds. This is the whole vocabulary the renderer
// accepts; anything else from the model is rejected before any drawing.
const (
	KindBar       = "bar"
	KindPie       = "pie"
	KindHistogram = "histogram"
	KindLine      = "line"
)

// PlotSpec is the chart-construction instruction the model emits between
// the code markers. It references columns of the bound dataframe by name;
// no other pipeline state is reachable from a spec.
type PlotSpec struct {
	Kind   string `json:"kind"`
	Column string `json:"column,omitempty"`
	X      string `json:"x,omitempty"`
	Y      string `json:"y,omitempty"`
	Bins   int    `json:"bins,omitempty"`
	Title  string `json:"title,omitempty"`
}

// ParsePlotSpec decodes a plot instruction, tolerating markdown code fences
// around the JSON but nothing else: unknown fields and trailing content are
// rejected.
func ParsePlotSpec(code string) (PlotSpec, error) {
	code = strings.TrimSpace(code)
	code = strings.TrimPrefix(code, "```json")
	code = strings.TrimPrefix(code, "```")
	code = strings.TrimSuffix(code, "```")
	code = strings.TrimSpace(code)

	var spec PlotSpec
	dec := json.NewDecoder(bytes.NewBufferString(code))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&spec); err != nil {
		return PlotSpec{}, fmt.Errorf("render: decode plot spec: %w", err)
	}
	if dec.More() {
		return PlotSpec{}, errors.New("render: trailing content after plot spec")
	}
	return spec, spec.validate()
}

func (s PlotSpec) validate() error {
	switch s.Kind {
	case KindBar, KindPie, KindHistogram:
		if strings.TrimSpace(s.Column) == "" {
			return fmt.Errorf("render: %s plot requires a column", s.Kind)
		}
	case KindLine:
		if strings.TrimSpace(s.X) == "" {
			return errors.New("render: line plot requires an x column")
		}
	default:
		return fmt.Errorf("render: unknown plot kind %q", s.Kind)
	}
	return nil
}
