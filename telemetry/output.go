package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/jtkiii/lifeform/config"
)

// OutputManager handles structured run output with CSV logging.
type OutputManager struct {
	dir         string
	journalFile *os.File

	journalHeaderWritten bool
}

// NewOutputManager creates a new output manager and initializes the output
// directory. Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}

	journalPath := filepath.Join(dir, "epochs.csv")
	f, err := os.Create(journalPath)
	if err != nil {
		return nil, fmt.Errorf("creating epochs.csv: %w", err)
	}
	om.journalFile = f

	return om, nil
}

// WriteProfile saves the active world profile as YAML next to the journal,
// so a run directory is self-describing.
func (om *OutputManager) WriteProfile(p config.Profile) error {
	if om == nil {
		return nil
	}
	profilePath := filepath.Join(om.dir, "world.yaml")
	return p.WriteYAML(profilePath)
}

// WriteEpoch appends one epoch record to epochs.csv. The header goes out
// with the first record only.
func (om *OutputManager) WriteEpoch(stats EpochStats) error {
	if om == nil {
		return nil
	}

	records := []EpochStats{stats}

	if !om.journalHeaderWritten {
		if err := gocsv.Marshal(records, om.journalFile); err != nil {
			return fmt.Errorf("writing epoch journal: %w", err)
		}
		om.journalHeaderWritten = true
	} else {
		if err := gocsv.MarshalWithoutHeaders(records, om.journalFile); err != nil {
			return fmt.Errorf("writing epoch journal: %w", err)
		}
	}

	return nil
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close flushes and closes all output files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}
	if om.journalFile != nil {
		return om.journalFile.Close()
	}
	return nil
}
