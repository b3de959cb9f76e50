package stats

import (
	"fmt"
	"strings"

	"dustgrid/internal/model"
)

// MilestonePercent reports the clean percentage the series shows at the
// given step index. Runs that terminated before the milestone report
// their final value; ok is false only for an empty series.
func MilestonePercent(series []model.StepSample, step int) (float64, bool) {
	if len(series) == 0 {
		return 0, false
	}
	if step >= len(series) {
		return series[len(series)-1].CleanPercent, true
	}
	if step < 0 {
		return series[0].CleanPercent, true
	}
	return series[step].CleanPercent, true
}

// Milestones evaluates MilestonePercent at every model.MilestoneSteps
// index.
func Milestones(series []model.StepSample) []float64 {
	out := make([]float64, 0, len(model.MilestoneSteps))
	for _, step := range model.MilestoneSteps {
		pct, _ := MilestonePercent(series, step)
		out = append(out, pct)
	}
	return out
}

// FormatSweepReport renders a sweep as the plain-text table printed by
// the report command: one row per agent count with steps-to-clean and
// the milestone clean percentages.
func FormatSweepReport(sweep model.SweepRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "sweep %s\n", sweep.ID)
	fmt.Fprintf(&b, "grid %dx%d  dirty %.0f%%  max steps %d  seed %d\n",
		sweep.Base.Width, sweep.Base.Height, 100*sweep.Base.DirtyFraction,
		sweep.Base.MaxSteps, sweep.Base.Seed)
	fmt.Fprintf(&b, "%-8s %-14s %-12s", "agents", "steps to clean", "final %")
	for _, step := range model.MilestoneSteps {
		fmt.Fprintf(&b, " %-10s", fmt.Sprintf("@%d", step))
	}
	b.WriteByte('\n')
	for _, p := range sweep.Points {
		steps := "never"
		if p.StepsToAllClean >= 0 {
			steps = fmt.Sprintf("%d", p.StepsToAllClean)
		}
		fmt.Fprintf(&b, "%-8d %-14s %-12.2f", p.AgentCount, steps, p.FinalCleanPercent)
		for _, pct := range p.Milestones {
			fmt.Fprintf(&b, " %-10.2f", pct)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// FormatRunReport renders a single run summary.
func FormatRunReport(run model.RunRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "run %s\n", run.ID)
	fmt.Fprintf(&b, "agents %d  grid %dx%d  dirty %.0f%%  max steps %d  seed %d\n",
		run.Params.NumAgents, run.Params.Width, run.Params.Height,
		100*run.Params.DirtyFraction, run.Params.MaxSteps, run.Params.Seed)
	if run.AllCleanedStep >= 0 {
		fmt.Fprintf(&b, "fully clean after %d steps\n", run.AllCleanedStep)
	} else {
		fmt.Fprintf(&b, "stopped at step %d with %.2f%% clean\n", run.FinalStep, run.FinalCleanPercent)
	}
	for id, cleaned := range run.CleanedByAgent {
		fmt.Fprintf(&b, "  agent %d cleaned %d cells\n", id, cleaned)
	}
	return b.String()
}
