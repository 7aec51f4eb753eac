package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/pfrederiksen/ski-report/internal/bulletin"
	"github.com/pfrederiksen/ski-report/internal/dispatch"
	"github.com/pfrederiksen/ski-report/internal/storage"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// statusOutput is the JSON shape of the status command
type statusOutput struct {
	LastRun *bulletin.Report       `json:"last_run"`
	History []storage.HistoryEntry `json:"history"`
}

// WriteReport writes the result of a send run in the specified format
func WriteReport(w io.Writer, report *bulletin.Report, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, report)
	case FormatText:
		writeSummary(w, report)
		writeResults(w, report.Results)
		return nil
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// WritePreview writes every composed caption, ordered by channel name
func WritePreview(w io.Writer, report *bulletin.Report, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, report)
	case FormatText:
		if report.SourceError != "" {
			fmt.Fprintf(w, "Warning: conditions unavailable (%s)\n\n", report.SourceError)
		}
		names := make([]string, 0, len(report.Captions))
		for name := range report.Captions {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(w, "--- %s ---\n%s\n\n", name, report.Captions[name])
		}
		return nil
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// WriteStatus writes the last run followed by the recent history
func WriteStatus(w io.Writer, report *bulletin.Report, history []storage.HistoryEntry, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, statusOutput{LastRun: report, History: history})
	case FormatText:
		writeSummary(w, report)
		writeResults(w, report.Results)
		if len(history) > 1 {
			fmt.Fprintln(w)
			writeHistory(w, history)
		}
		return nil
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs results as JSON
func writeJSON(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func writeSummary(w io.Writer, report *bulletin.Report) {
	mode := ""
	if report.DryRun {
		mode = " (dry run)"
	}
	fmt.Fprintf(w, "Run %s%s: %s\n", report.RunID, mode, report.Outcome())
	fmt.Fprintf(w, "Report date: %s, finished %s (%s)\n",
		report.DisplayDate,
		report.FinishedAt.Local().Format(time.RFC1123),
		report.Duration().Round(time.Millisecond))
	fmt.Fprintf(w, "Conditions: %d fields extracted, map %d bytes\n",
		report.Record.FieldCount(), report.ArtifactBytes)
	if report.SourceError != "" {
		fmt.Fprintf(w, "Source error: %s\n", report.SourceError)
	}
	if report.ArtifactError != "" {
		fmt.Fprintf(w, "Map error: %s\n", report.ArtifactError)
	}
}

func writeResults(w io.Writer, results []dispatch.Result) {
	if len(results) == 0 {
		fmt.Fprintln(w, "No channels were sent to.")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Channel", "Status", "Duration", "Error"})
	for _, r := range results {
		status := "ok"
		if !r.OK {
			status = "failed"
		}
		t.AppendRow(table.Row{r.Channel, status, r.Duration.Round(time.Millisecond), r.Error})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()
}

func writeHistory(w io.Writer, history []storage.HistoryEntry) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle("Recent runs")
	t.AppendHeader(table.Row{"Finished", "Outcome", "Delivered", "Fields"})
	// newest first
	for i := len(history) - 1; i >= 0; i-- {
		h := history[i]
		outcome := h.Outcome
		if h.DryRun {
			outcome += " (dry run)"
		}
		t.AppendRow(table.Row{
			h.FinishedAt.Local().Format("2006-01-02 15:04"),
			outcome,
			fmt.Sprintf("%d/%d", h.Delivered, h.Channels),
			h.Fields,
		})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()
}
