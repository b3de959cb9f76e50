package dustgrid

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	client, err := New(Options{
		StoreKind:    "memory",
		ArtifactsDir: t.TempDir(),
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if err := client.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	t.Cleanup(func() {
		_ = client.Close()
	})
	return client
}

func TestNewRejectsUnknownStore(t *testing.T) {
	if _, err := New(Options{StoreKind: "redis"}); err == nil {
		t.Fatalf("expected error for unknown store kind")
	}
}

func TestRunAppliesDefaultsAndPersists(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)

	// Zero request: defaults to 1 agent on a 20x20 grid, 80% dirty,
	// 1500 steps.
	summary, err := client.Run(ctx, RunRequest{})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if summary.RunID == "" {
		t.Fatalf("missing run id")
	}
	if summary.FinalStep == 0 || summary.FinalStep > 1500 {
		t.Fatalf("unexpected final step %d", summary.FinalStep)
	}

	items, err := client.Runs(ctx)
	if err != nil {
		t.Fatalf("runs: %v", err)
	}
	if len(items) != 1 || items[0].RunID != summary.RunID {
		t.Fatalf("unexpected run list: %+v", items)
	}
	if items[0].Width != 20 || items[0].Height != 20 || items[0].MaxSteps != 1500 {
		t.Fatalf("defaults not applied: %+v", items[0])
	}

	series, err := client.Series(ctx, summary.RunID)
	if err != nil {
		t.Fatalf("series: %v", err)
	}
	if len(series) != summary.FinalStep {
		t.Fatalf("expected %d samples, got %d", summary.FinalStep, len(series))
	}

	report, err := client.RunReport(ctx, summary.RunID)
	if err != nil {
		t.Fatalf("run report: %v", err)
	}
	if !strings.Contains(report, summary.RunID) {
		t.Fatalf("report missing run id:\n%s", report)
	}
}

func TestSeriesMissingRun(t *testing.T) {
	client := newTestClient(t)
	if _, err := client.Series(context.Background(), "nope"); err == nil {
		t.Fatalf("expected error for unknown run")
	}
}

func TestSweepWritesArtifactAndReports(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)

	summary, err := client.Sweep(ctx, SweepRequest{
		Base:        RunRequest{Width: 6, Height: 6, DirtyFraction: 0.5, MaxSteps: 2000, Seed: 3},
		AgentCounts: []int{1, 3},
		Notes:       "smoke sweep",
	})
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if len(summary.Points) != 2 {
		t.Fatalf("expected 2 points, got %d", len(summary.Points))
	}
	if _, err := os.Stat(summary.ArtifactPath); err != nil {
		t.Fatalf("artifact not written: %v", err)
	}

	// Blank sweep ID resolves to the latest sweep.
	report, err := client.SweepReport(ctx, "")
	if err != nil {
		t.Fatalf("sweep report: %v", err)
	}
	if !strings.Contains(report, summary.SweepID) {
		t.Fatalf("report missing sweep id:\n%s", report)
	}

	if _, err := client.SweepReport(ctx, "missing-sweep"); err == nil {
		t.Fatalf("expected error for unknown sweep id")
	}
}

func TestSweepRequiresAgentCounts(t *testing.T) {
	client := newTestClient(t)
	if _, err := client.Sweep(context.Background(), SweepRequest{}); err == nil {
		t.Fatalf("expected error for empty agent counts")
	}
}

func TestChartWritesSeriesAndSweepPNGs(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)
	outDir := t.TempDir()

	sweep, err := client.Sweep(ctx, SweepRequest{
		Base:        RunRequest{Width: 6, Height: 6, DirtyFraction: 0.5, MaxSteps: 2000, Seed: 3},
		AgentCounts: []int{1, 2, 4},
	})
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}

	seriesPath := filepath.Join(outDir, "series.png")
	runIDs := make([]string, 0, len(sweep.Points))
	for _, p := range sweep.Points {
		runIDs = append(runIDs, p.RunID)
	}
	if err := client.Chart(ctx, ChartRequest{RunIDs: runIDs, OutPath: seriesPath}); err != nil {
		t.Fatalf("series chart: %v", err)
	}
	assertPNG(t, seriesPath)

	sweepPath := filepath.Join(outDir, "sweep.png")
	if err := client.Chart(ctx, ChartRequest{OutPath: sweepPath}); err != nil {
		t.Fatalf("sweep chart: %v", err)
	}
	assertPNG(t, sweepPath)

	if err := client.Chart(ctx, ChartRequest{}); err == nil {
		t.Fatalf("expected error without output path")
	}
}

func assertPNG(t *testing.T, path string) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	if !bytes.HasPrefix(data, []byte{0x89, 'P', 'N', 'G'}) {
		t.Fatalf("%s is not a PNG (%d bytes)", path, len(data))
	}
}
