package exportsvc

import (
	"io"
	"math"

	"github.com/pkg/errors"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/trezcool/rosterdash/core"
	"github.com/trezcool/rosterdash/core/student"
)

// ChartKind selects one of the PNG charts.
type ChartKind string

const (
	ChartHistogram ChartKind = "histogram"
	ChartBranches  ChartKind = "branches"
	ChartTrend     ChartKind = "trend"
)

const (
	chartHeight  = 480
	minWidth     = 640
	barWidth     = 50
	barSpacing   = 40
	chartPadding = 200
)

var (
	atRiskColor = drawing.ColorFromHex("ef4444")
	middleColor = drawing.ColorFromHex("f59e0b")
	topperColor = drawing.ColorFromHex("10b981")
	lineColor   = drawing.ColorFromHex("2563eb")
)

func ParseChartKind(s string) (ChartKind, error) {
	switch k := ChartKind(s); k {
	case ChartHistogram, ChartBranches, ChartTrend:
		return k, nil
	}
	return "", core.NewValidationError(nil, core.FieldError{Field: "kind", Error: "must be one of histogram, branches, trend"})
}

func barChartWidth(bars int) int {
	return int(math.Max(minWidth, float64(chartPadding+bars*(barWidth+barSpacing))))
}

func bandColor(attendance float64) drawing.Color {
	switch {
	case attendance < student.AtRiskThreshold:
		return atRiskColor
	case attendance >= student.TopperThreshold:
		return topperColor
	default:
		return middleColor
	}
}

// RenderHistogram draws the student count per attendance bucket.
func RenderHistogram(w io.Writer, buckets []student.Bucket) error {
	if len(buckets) == 0 {
		return errors.New("no bucket to draw")
	}
	maxCount := 1
	bars := make([]chart.Value, 0, len(buckets))
	for _, b := range buckets {
		if b.Count > maxCount {
			maxCount = b.Count
		}
		bars = append(bars, chart.Value{
			Label: b.Label,
			Value: float64(b.Count),
			Style: chart.Style{FillColor: bandColor(b.Min), StrokeColor: bandColor(b.Min)},
		})
	}

	graph := chart.BarChart{
		Title:      "Attendance distribution",
		Height:     chartHeight,
		Width:      barChartWidth(len(bars)),
		BarWidth:   barWidth,
		BarSpacing: barSpacing,
		Background: chart.Style{Padding: chart.Box{Top: 40}},
		YAxis:      chart.YAxis{Range: &chart.ContinuousRange{Min: 0, Max: float64(maxCount)}},
		Bars:       bars,
	}
	return errors.Wrap(graph.Render(chart.PNG, w), "rendering histogram")
}

// RenderBranchAverages draws the average attendance of each branch, best first.
func RenderBranchAverages(w io.Writer, rows []student.BranchAverage) error {
	if len(rows) == 0 {
		return core.NewValidationError(errors.New("no student to chart"))
	}
	bars := make([]chart.Value, 0, len(rows))
	for _, row := range rows {
		bars = append(bars, chart.Value{
			Label: row.Branch,
			Value: row.Avg,
			Style: chart.Style{FillColor: bandColor(row.Avg), StrokeColor: bandColor(row.Avg)},
		})
	}

	graph := chart.BarChart{
		Title:      "Average attendance by branch",
		Height:     chartHeight,
		Width:      barChartWidth(len(bars)),
		BarWidth:   barWidth,
		BarSpacing: barSpacing,
		Background: chart.Style{Padding: chart.Box{Top: 40}},
		YAxis:      chart.YAxis{Range: &chart.ContinuousRange{Min: student.MinAttendance, Max: student.MaxAttendance}},
		Bars:       bars,
	}
	return errors.Wrap(graph.Render(chart.PNG, w), "rendering branch averages")
}

// RenderTrend draws the four week trend of one student.
func RenderTrend(w io.Writer, s student.Student) error {
	points := student.Trend(s)
	xs := make([]float64, 0, len(points))
	ys := make([]float64, 0, len(points))
	ticks := make([]chart.Tick, 0, len(points))
	for i, p := range points {
		x := float64(i + 1)
		xs = append(xs, x)
		ys = append(ys, p.Value)
		ticks = append(ticks, chart.Tick{Value: x, Label: p.Label})
	}

	graph := chart.Chart{
		Title:      s.Name + " - attendance trend",
		Height:     chartHeight,
		Width:      minWidth,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 24}},
		XAxis:      chart.XAxis{Ticks: ticks, Range: &chart.ContinuousRange{Min: 1, Max: float64(len(points))}},
		YAxis:      chart.YAxis{Range: &chart.ContinuousRange{Min: student.MinAttendance, Max: student.MaxAttendance}},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    s.Name,
				XValues: xs,
				YValues: ys,
				Style:   chart.Style{StrokeColor: lineColor, StrokeWidth: 3, DotWidth: 5, DotColor: lineColor},
			},
		},
	}
	return errors.Wrap(graph.Render(chart.PNG, w), "rendering trend")
}
