package stats

import (
	"fmt"
	"io"

	"github.com/wcharczuk/go-chart/v2"

	"dustgrid/internal/model"
)

// SeriesChartInput names one run's metric series for charting.
type SeriesChartInput struct {
	Name   string
	Series []model.StepSample
}

// RenderSeriesChart writes a PNG plotting clean percentage against step
// index, one line per run.
func RenderSeriesChart(w io.Writer, inputs ...SeriesChartInput) error {
	if len(inputs) == 0 {
		return fmt.Errorf("at least one series is required")
	}

	series := make([]chart.Series, 0, len(inputs))
	for i, input := range inputs {
		if len(input.Series) < 2 {
			return fmt.Errorf("series %q needs at least two samples to plot", input.Name)
		}
		xs := make([]float64, len(input.Series))
		ys := make([]float64, len(input.Series))
		for j, sample := range input.Series {
			xs[j] = float64(sample.Step)
			ys[j] = sample.CleanPercent
		}
		series = append(series, chart.ContinuousSeries{
			Name:    input.Name,
			XValues: xs,
			YValues: ys,
			Style: chart.Style{
				StrokeColor: chart.GetDefaultColor(i),
				StrokeWidth: 2.0,
			},
		})
	}

	graph := chart.Chart{
		Title: "Clean percentage over time",
		XAxis: chart.XAxis{Name: "step"},
		YAxis: chart.YAxis{
			Name:  "clean %",
			Range: &chart.ContinuousRange{Min: 0, Max: 100},
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	return graph.Render(chart.PNG, w)
}

// RenderSweepChart writes a PNG plotting steps-to-all-clean against
// agent count. Points that never reached 100% are drawn at the step
// ceiling.
func RenderSweepChart(w io.Writer, sweep model.SweepRecord) error {
	if len(sweep.Points) < 2 {
		return fmt.Errorf("sweep needs at least two points to plot")
	}

	xs := make([]float64, len(sweep.Points))
	ys := make([]float64, len(sweep.Points))
	for i, p := range sweep.Points {
		xs[i] = float64(p.AgentCount)
		steps := p.StepsToAllClean
		if steps < 0 {
			steps = sweep.Base.MaxSteps
		}
		ys[i] = float64(steps)
	}

	graph := chart.Chart{
		Title: "Steps to fully clean by agent count",
		XAxis: chart.XAxis{Name: "agents"},
		YAxis: chart.YAxis{Name: "steps"},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "steps to clean",
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					StrokeColor: chart.ColorBlue,
					StrokeWidth: 2.0,
				},
			},
		},
	}
	return graph.Render(chart.PNG, w)
}
