package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jtkiii/lifeform/sim"
)

func TestOutputManagerDisabled(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil {
		t.Fatalf("NewOutputManager: %v", err)
	}
	if om != nil {
		t.Fatal("empty dir should disable output")
	}

	// All operations are no-ops on a nil manager.
	if err := om.WriteEpoch(EpochStats{}); err != nil {
		t.Errorf("WriteEpoch on nil manager: %v", err)
	}
	if err := om.Close(); err != nil {
		t.Errorf("Close on nil manager: %v", err)
	}
	if om.Dir() != "" {
		t.Errorf("Dir on nil manager = %q", om.Dir())
	}
}

func TestEpochJournalHeaderOnce(t *testing.T) {
	dir := t.TempDir()
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("NewOutputManager: %v", err)
	}

	for i := 1; i <= 3; i++ {
		if err := om.WriteEpoch(EpochStats{Epoch: i, Alive: i * 10}); err != nil {
			t.Fatalf("WriteEpoch: %v", err)
		}
	}
	if err := om.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "epochs.csv"))
	if err != nil {
		t.Fatalf("reading journal: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 4 {
		t.Fatalf("journal has %d lines, want header + 3 records", len(lines))
	}
	if !strings.Contains(lines[0], "epoch") || !strings.Contains(lines[0], "alive") {
		t.Errorf("header missing expected columns: %q", lines[0])
	}
	if strings.Contains(lines[1], "epoch") {
		t.Error("header repeated in record lines")
	}
}

func TestAppendTotalsAccumulates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sim_totals.json")

	for i := 1; i <= 3; i++ {
		rec := RunTotals{
			World:      "default",
			Seed:       int64(i),
			FinishedAt: time.Now().UTC(),
			Epochs:     100 * i,
			MaxAlive:   50 * i,
		}
		if err := AppendTotals(path, rec); err != nil {
			t.Fatalf("AppendTotals: %v", err)
		}
	}

	runs, err := readTotals(path)
	if err != nil {
		t.Fatalf("readTotals: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("recorded %d runs, want 3", len(runs))
	}
	if runs[2].Epochs != 300 {
		t.Errorf("last run epochs = %d, want 300", runs[2].Epochs)
	}
}

func TestCompareLastRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sim_totals.json")

	out, err := CompareLastRuns(path, 5)
	if err != nil {
		t.Fatalf("CompareLastRuns on missing file: %v", err)
	}
	if out != "no recorded runs" {
		t.Errorf("empty journal output = %q", out)
	}

	for i := 0; i < 4; i++ {
		rec := TotalsFromSummary(sim.Summary{
			World:       "garden_world",
			Epochs:      100,
			MaxAlive:    2000,
			TotalBirths: 5000,
		}, int64(i))
		if err := AppendTotals(path, rec); err != nil {
			t.Fatalf("AppendTotals: %v", err)
		}
	}

	out, err = CompareLastRuns(path, 2)
	if err != nil {
		t.Fatalf("CompareLastRuns: %v", err)
	}
	if !strings.Contains(out, "last 2 runs") {
		t.Errorf("output missing run count: %q", out)
	}
	if !strings.Contains(out, "garden_world") {
		t.Errorf("output missing world name: %q", out)
	}
	if strings.Count(out, "garden_world") != 2 {
		t.Errorf("expected exactly 2 runs listed, got: %q", out)
	}
}

func TestFromSnapshot(t *testing.T) {
	snap := sim.Snapshot{
		World:                "default",
		Epoch:                7,
		Alive:                120,
		Thriving:             60,
		Nominal:              40,
		Struggling:           20,
		Births:               5,
		Deaths:               3,
		MaxGeneration:        4,
		MeanHealth:           71.5,
		ResourceAvailability: 1.2,
		CarryingCapacity:     900,
		Event:                "disaster",
	}

	stats := FromSnapshot(snap)
	if stats.Epoch != 7 || stats.Alive != 120 || stats.Births != 5 {
		t.Errorf("counters not carried over: %+v", stats)
	}
	if stats.MaxGeneration != 4 {
		t.Errorf("max generation not carried over: %d", stats.MaxGeneration)
	}
	if stats.MeanHealth != 71.5 || stats.Resources != 1.2 || stats.Capacity != 900 {
		t.Errorf("floats not carried over: %+v", stats)
	}
	if stats.Event != "disaster" {
		t.Errorf("event not carried over: %q", stats.Event)
	}
}

// TestFromSnapshotDistributions verifies the journal row derives its
// percentile columns from the snapshot's raw samples.
func TestFromSnapshotDistributions(t *testing.T) {
	snap := sim.Snapshot{
		Epoch:         3,
		Alive:         5,
		HealthSamples: []float64{10, 30, 50, 70, 90},
		EnergySamples: []float64{20, 40, 60, 80, 100},
	}

	stats := FromSnapshot(snap)

	if stats.HealthP50 != 50 {
		t.Errorf("health p50 = %g, want 50", stats.HealthP50)
	}
	if !(stats.HealthP10 < stats.HealthP50 && stats.HealthP50 < stats.HealthP90) {
		t.Errorf("health percentiles not ordered: %g, %g, %g",
			stats.HealthP10, stats.HealthP50, stats.HealthP90)
	}
	if stats.EnergyP50 != 60 {
		t.Errorf("energy p50 = %g, want 60", stats.EnergyP50)
	}
	if !(stats.EnergyP10 < stats.EnergyP50 && stats.EnergyP50 < stats.EnergyP90) {
		t.Errorf("energy percentiles not ordered: %g, %g, %g",
			stats.EnergyP10, stats.EnergyP50, stats.EnergyP90)
	}

	// An extinct epoch has no samples and zero columns.
	empty := FromSnapshot(sim.Snapshot{Epoch: 4})
	if empty.HealthP10 != 0 || empty.HealthP90 != 0 || empty.EnergyP50 != 0 {
		t.Errorf("empty samples should yield zero percentiles: %+v", empty)
	}
}
