package render

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"

	"github.com/prakan1684/SurveyAnalyst/internal/dataset"
)

const (
	defaultWidth  = 1000
	defaultHeight = 600

	// maxSlices caps the number of bars/slices drawn for a single column so
	// high-cardinality data cannot produce unreadable charts.
	maxSlices = 20

	defaultBins = 10
	maxBins     = 50
)

// Renderer interprets model-produced plot instructions against a frame
// snapshot and produces base64-encoded PNGs. Each call builds a fresh chart
// and an in-memory canvas scoped to the call, so nothing leaks between
// queries regardless of outcome.
type Renderer struct {
	logger *slog.Logger
	width  int
	height int
}

// New returns a Renderer with the default canvas size.
func New(logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{logger: logger, width: defaultWidth, height: defaultHeight}
}

// Render parses and draws one plot instruction. Any failure (malformed
// spec, unknown column, wrong column type, drawing error) is logged with
// the offending instruction and returned as an error for the caller to
// swallow; the instruction is untrusted model output and must never take
// the pipeline down.
func (r *Renderer) Render(f *dataset.Frame, code string) (out string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("render: chart drawing panicked: %v", rec)
		}
		if err != nil {
			r.logger.Error("visualization failed", "err", err, "code", code)
		}
	}()

	spec, err := ParsePlotSpec(code)
	if err != nil {
		return "", err
	}

	buf := &bytes.Buffer{}
	switch spec.Kind {
	case KindBar:
		err = r.drawBar(f, spec, buf)
	case KindPie:
		err = r.drawPie(f, spec, buf)
	case KindHistogram:
		err = r.drawHistogram(f, spec, buf)
	case KindLine:
		err = r.drawLine(f, spec, buf)
	}
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// ============================================================================
// Chart builders
// ============================================================================

func (r *Renderer) drawBar(f *dataset.Frame, spec PlotSpec, buf *bytes.Buffer) error {
	values, err := countValues(f, spec.Column)
	if err != nil {
		return err
	}
	bc := chart.BarChart{
		Title:    spec.Title,
		Width:    r.width,
		Height:   r.height,
		BarWidth: 40,
		Bars:     values,
		YAxis:    chart.YAxis{Range: barRange(values)},
	}
	return bc.Render(chart.PNG, buf)
}

func (r *Renderer) drawPie(f *dataset.Frame, spec PlotSpec, buf *bytes.Buffer) error {
	values, err := countValues(f, spec.Column)
	if err != nil {
		return err
	}
	pc := chart.PieChart{
		Title:  spec.Title,
		Width:  r.height, // square canvas keeps the pie circular
		Height: r.height,
		Values: values,
	}
	return pc.Render(chart.PNG, buf)
}

func (r *Renderer) drawHistogram(f *dataset.Frame, spec PlotSpec, buf *bytes.Buffer) error {
	col, err := numericColumn(f, spec.Column)
	if err != nil {
		return err
	}

	bins := spec.Bins
	if bins <= 0 {
		bins = defaultBins
	}
	if bins > maxBins {
		bins = maxBins
	}

	vals := make([]float64, 0, len(col.Nums))
	for _, n := range col.Nums {
		if !math.IsNaN(n) {
			vals = append(vals, n)
		}
	}
	if len(vals) == 0 {
		return fmt.Errorf("render: column %q has no numeric values", spec.Column)
	}

	min, max := vals[0], vals[0]
	for _, v := range vals {
		min = math.Min(min, v)
		max = math.Max(max, v)
	}
	if min == max {
		bins = 1
	}

	counts := make([]int, bins)
	width := (max - min) / float64(bins)
	for _, v := range vals {
		idx := bins - 1
		if width > 0 {
			idx = int((v - min) / width)
			if idx >= bins {
				idx = bins - 1
			}
		}
		counts[idx]++
	}

	bars := make([]chart.Value, bins)
	for i, n := range counts {
		lo := min + float64(i)*width
		bars[i] = chart.Value{
			Label: fmt.Sprintf("%.4g-%.4g", lo, lo+width),
			Value: float64(n),
		}
	}
	if bins == 1 {
		bars[0].Label = fmt.Sprintf("%.4g", min)
	}

	bc := chart.BarChart{
		Title:    spec.Title,
		Width:    r.width,
		Height:   r.height,
		BarWidth: 40,
		Bars:     bars,
		YAxis:    chart.YAxis{Range: barRange(bars)},
	}
	return bc.Render(chart.PNG, buf)
}

// barRange pins the y-axis explicitly. go-chart refuses to auto-range when
// every bar has the same height (min == max yields "invalid data range"),
// which uniform data like an even categorical split produces routinely.
func barRange(values []chart.Value) *chart.ContinuousRange {
	var top float64
	for _, v := range values {
		if v.Value > top {
			top = v.Value
		}
	}
	return &chart.ContinuousRange{Min: 0, Max: top + 1}
}

func (r *Renderer) drawLine(f *dataset.Frame, spec PlotSpec, buf *bytes.Buffer) error {
	xcol, ok := f.Column(spec.X)
	if !ok {
		return fmt.Errorf("render: unknown column %q", spec.X)
	}
	if xcol.Kind != dataset.KindTime {
		return fmt.Errorf("render: column %q is not a datetime column", spec.X)
	}

	var xs []time.Time
	var ys []float64
	if spec.Y == "" {
		xs, ys = countsPerDay(xcol)
	} else {
		ycol, err := numericColumn(f, spec.Y)
		if err != nil {
			return err
		}
		xs, ys = pairSeries(xcol, ycol)
	}
	if len(xs) < 2 {
		return fmt.Errorf("render: need at least 2 points for a line plot, got %d", len(xs))
	}

	lc := chart.Chart{
		Title:  spec.Title,
		Width:  r.width,
		Height: r.height,
		Series: []chart.Series{
			chart.TimeSeries{XValues: xs, YValues: ys},
		},
	}
	return lc.Render(chart.PNG, buf)
}

// ============================================================================
// Data extraction
// ============================================================================

func countValues(f *dataset.Frame, name string) ([]chart.Value, error) {
	col, ok := f.Column(name)
	if !ok {
		return nil, fmt.Errorf("render: unknown column %q", name)
	}
	counts := col.ValueCounts()
	if len(counts) == 0 {
		return nil, fmt.Errorf("render: column %q has no values", name)
	}
	if len(counts) > maxSlices {
		counts = counts[:maxSlices]
	}
	values := make([]chart.Value, len(counts))
	for i, vc := range counts {
		values[i] = chart.Value{Label: vc.Value, Value: float64(vc.Count)}
	}
	return values, nil
}

func numericColumn(f *dataset.Frame, name string) (*dataset.Column, error) {
	col, ok := f.Column(name)
	if !ok {
		return nil, fmt.Errorf("render: unknown column %q", name)
	}
	if col.Kind != dataset.KindNumber {
		return nil, fmt.Errorf("render: column %q is not numeric", name)
	}
	return col, nil
}

func countsPerDay(xcol *dataset.Column) ([]time.Time, []float64) {
	byDay := make(map[time.Time]float64)
	for _, t := range xcol.Times {
		if t.IsZero() {
			continue
		}
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		byDay[day]++
	}
	xs := make([]time.Time, 0, len(byDay))
	for day := range byDay {
		xs = append(xs, day)
	}
	sort.Slice(xs, func(i, j int) bool { return xs[i].Before(xs[j]) })
	ys := make([]float64, len(xs))
	for i, day := range xs {
		ys[i] = byDay[day]
	}
	return xs, ys
}

func pairSeries(xcol, ycol *dataset.Column) ([]time.Time, []float64) {
	type point struct {
		t time.Time
		v float64
	}
	var points []point
	for i, t := range xcol.Times {
		if t.IsZero() || i >= len(ycol.Nums) || math.IsNaN(ycol.Nums[i]) {
			continue
		}
		points = append(points, point{t: t, v: ycol.Nums[i]})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].t.Before(points[j].t) })
	xs := make([]time.Time, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i] = p.t
		ys[i] = p.v
	}
	return xs, ys
}
