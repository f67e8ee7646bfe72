// Package telemetry records per-epoch statistics and run-level totals for
// offline analysis. CSV journals go through gocsv; run totals accumulate in
// a JSON file so consecutive runs can be compared.
package telemetry

import (
	"log/slog"
	"sort"

	"github.com/jtkiii/lifeform/sim"
)

// EpochStats is one row of the epoch journal.
type EpochStats struct {
	Epoch int `csv:"epoch"`

	Alive         int `csv:"alive"`
	Thriving      int `csv:"thriving"`
	Nominal       int `csv:"nominal"`
	Struggling    int `csv:"struggling"`
	Births        int `csv:"births"`
	Deaths        int `csv:"deaths"`
	MaxGeneration int `csv:"max_generation"`

	// Health/energy distribution (sampled at epoch end)
	MeanHealth float64 `csv:"mean_health"`
	HealthP10  float64 `csv:"health_p10"`
	HealthP50  float64 `csv:"health_p50"`
	HealthP90  float64 `csv:"health_p90"`
	MeanEnergy float64 `csv:"mean_energy"`
	EnergyP10  float64 `csv:"energy_p10"`
	EnergyP50  float64 `csv:"energy_p50"`
	EnergyP90  float64 `csv:"energy_p90"`

	Resources float64 `csv:"resources"`
	Pollution float64 `csv:"pollution"`
	Capacity  float64 `csv:"capacity"`
	Trend     float64 `csv:"trend"`

	Event string `csv:"event"`
}

// FromSnapshot converts an epoch snapshot into a journal row, deriving the
// health and energy distributions from the snapshot's raw samples.
func FromSnapshot(s sim.Snapshot) EpochStats {
	_, hp10, hp50, hp90 := ComputeDistribution(s.HealthSamples)
	_, ep10, ep50, ep90 := ComputeDistribution(s.EnergySamples)

	return EpochStats{
		Epoch:         s.Epoch,
		Alive:         s.Alive,
		Thriving:      s.Thriving,
		Nominal:       s.Nominal,
		Struggling:    s.Struggling,
		Births:        s.Births,
		Deaths:        s.Deaths,
		MaxGeneration: s.MaxGeneration,
		MeanHealth:    s.MeanHealth,
		HealthP10:     hp10,
		HealthP50:     hp50,
		HealthP90:     hp90,
		MeanEnergy:    s.MeanEnergy,
		EnergyP10:     ep10,
		EnergyP50:     ep50,
		EnergyP90:     ep90,
		Resources:     s.ResourceAvailability,
		Pollution:     s.Pollution,
		Capacity:      s.CarryingCapacity,
		Trend:         s.Trend,
		Event:         s.Event,
	}
}

// LogStats logs the epoch stats using slog.
func (s EpochStats) LogStats() {
	slog.Info("stats",
		"epoch", s.Epoch,
		"alive", s.Alive,
		"thriving", s.Thriving,
		"nominal", s.Nominal,
		"struggling", s.Struggling,
		"births", s.Births,
		"deaths", s.Deaths,
		"max_generation", s.MaxGeneration,
		"mean_health", s.MeanHealth,
		"health_p10", s.HealthP10,
		"health_p50", s.HealthP50,
		"health_p90", s.HealthP90,
		"mean_energy", s.MeanEnergy,
		"energy_p10", s.EnergyP10,
		"energy_p50", s.EnergyP50,
		"energy_p90", s.EnergyP90,
		"resources", s.Resources,
		"pollution", s.Pollution,
		"capacity", s.Capacity,
		"trend", s.Trend,
	)
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeDistribution calculates mean and percentiles from sampled values.
func ComputeDistribution(values []float64) (mean, p10, p50, p90 float64) {
	n := len(values)
	if n == 0 {
		return 0, 0, 0, 0
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	mean = sum / float64(n)

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	p10 = Percentile(sorted, 0.10)
	p50 = Percentile(sorted, 0.50)
	p90 = Percentile(sorted, 0.90)

	return mean, p10, p50, p90
}
