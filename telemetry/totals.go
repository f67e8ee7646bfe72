package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/jtkiii/lifeform/sim"
)

// TotalsFile is the default name of the cumulative run journal.
const TotalsFile = "sim_totals.json"

// RunTotals is one finished run's aggregates, appended to the totals
// journal so runs of the same world remain comparable over time.
type RunTotals struct {
	World      string    `json:"world"`
	Seed       int64     `json:"seed"`
	FinishedAt time.Time `json:"finished_at"`

	Epochs       int  `json:"epochs"`
	TotalSpawned int  `json:"total_spawned"`
	TotalBirths  int  `json:"total_births"`
	TotalDeaths  int  `json:"total_deaths"`
	MaxAlive     int  `json:"max_alive"`
	FinalAlive   int  `json:"final_alive"`
	BabyBooms    int  `json:"baby_booms"`
	Extinct      bool `json:"extinct"`
}

// TotalsFromSummary converts a run summary into a totals record.
func TotalsFromSummary(s sim.Summary, seed int64) RunTotals {
	return RunTotals{
		World:        s.World,
		Seed:         seed,
		FinishedAt:   time.Now().UTC(),
		Epochs:       s.Epochs,
		TotalSpawned: s.TotalSpawned,
		TotalBirths:  s.TotalBirths,
		TotalDeaths:  s.TotalDeaths,
		MaxAlive:     s.MaxAlive,
		FinalAlive:   s.FinalAlive,
		BabyBooms:    s.BabyBooms,
		Extinct:      s.Extinct,
	}
}

// AppendTotals reads the totals journal at path, appends the record, and
// writes it back. A missing file starts a fresh journal.
func AppendTotals(path string, rec RunTotals) error {
	runs, err := readTotals(path)
	if err != nil {
		return err
	}
	runs = append(runs, rec)

	data, err := json.MarshalIndent(runs, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling run totals: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// CompareLastRuns formats a side-by-side comparison of the last n runs in
// the totals journal, most recent last.
func CompareLastRuns(path string, n int) (string, error) {
	runs, err := readTotals(path)
	if err != nil {
		return "", err
	}
	if len(runs) == 0 {
		return "no recorded runs", nil
	}
	if n > len(runs) {
		n = len(runs)
	}
	runs = runs[len(runs)-n:]

	out := fmt.Sprintf("last %d runs:\n", len(runs))
	for _, r := range runs {
		fate := "survived"
		if r.Extinct {
			fate = "extinct"
		}
		out += fmt.Sprintf("  %s  %s  epochs=%s spawned=%s deaths=%s peak=%s final=%d booms=%d  %s\n",
			humanize.Time(r.FinishedAt),
			r.World,
			humanize.Comma(int64(r.Epochs)),
			humanize.Comma(int64(r.TotalSpawned)),
			humanize.Comma(int64(r.TotalDeaths)),
			humanize.Comma(int64(r.MaxAlive)),
			r.FinalAlive,
			r.BabyBooms,
			fate,
		)
	}
	return out, nil
}

func readTotals(path string) ([]RunTotals, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var runs []RunTotals
	if err := json.Unmarshal(data, &runs); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return runs, nil
}
