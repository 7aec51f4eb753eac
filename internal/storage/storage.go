package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pfrederiksen/ski-report/internal/bulletin"
	"github.com/pfrederiksen/ski-report/internal/dispatch"
)

const (
	lastRunFile = "last_run.json"
	historyFile = "history.json"

	// MaxHistory is the number of run summaries kept
	MaxHistory = 30
)

// ErrNoReport is returned when no run has been recorded yet
var ErrNoReport = errors.New("no run recorded yet")

// HistoryEntry summarizes one run
type HistoryEntry struct {
	RunID      string    `json:"run_id"`
	FinishedAt time.Time `json:"finished_at"`
	Outcome    string    `json:"outcome"`
	DryRun     bool      `json:"dry_run,omitempty"`
	Delivered  int       `json:"delivered"`
	Channels   int       `json:"channels"`
	Fields     int       `json:"fields"`
}

// Storage handles persistence of run reports
type Storage struct {
	dataDir string
}

// New creates a new Storage instance
func New(dataDir string) (*Storage, error) {
	// Expand ~ to home directory
	if strings.HasPrefix(dataDir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, dataDir[2:])
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	return &Storage{
		dataDir: dataDir,
	}, nil
}

// Dir returns the resolved data directory
func (s *Storage) Dir() string {
	return s.dataDir
}

// SaveReport stores report as the last run and appends it to the history
func (s *Storage) SaveReport(report *bulletin.Report) error {
	if err := s.writeJSON(lastRunFile, report); err != nil {
		return fmt.Errorf("saving last run: %w", err)
	}

	history, err := s.LoadHistory()
	if err != nil {
		return err
	}
	history = append(history, HistoryEntry{
		RunID:      report.RunID,
		FinishedAt: report.FinishedAt,
		Outcome:    report.Outcome(),
		DryRun:     report.DryRun,
		Delivered:  dispatch.Succeeded(report.Results),
		Channels:   len(report.Results),
		Fields:     report.Record.FieldCount(),
	})
	if len(history) > MaxHistory {
		history = history[len(history)-MaxHistory:]
	}

	if err := s.writeJSON(historyFile, history); err != nil {
		return fmt.Errorf("saving history: %w", err)
	}
	return nil
}

// LoadLastReport loads the most recent report
func (s *Storage) LoadLastReport() (*bulletin.Report, error) {
	data, err := os.ReadFile(filepath.Join(s.dataDir, lastRunFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoReport
		}
		return nil, fmt.Errorf("reading last run: %w", err)
	}

	var report bulletin.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("parsing last run: %w", err)
	}
	return &report, nil
}

// LoadHistory loads run summaries, oldest first. A missing file is an empty history.
func (s *Storage) LoadHistory() ([]HistoryEntry, error) {
	data, err := os.ReadFile(filepath.Join(s.dataDir, historyFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading history: %w", err)
	}

	var history []HistoryEntry
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, fmt.Errorf("parsing history: %w", err)
	}
	return history, nil
}

// writeJSON writes through a temp file so a crash never leaves a partial file
func (s *Storage) writeJSON(name string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", name, err)
	}

	path := filepath.Join(s.dataDir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replacing %s: %w", name, err)
	}
	return nil
}
