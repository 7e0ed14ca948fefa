package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/pfrederiksen/skate-protocols/internal/pipeline"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// OutputResult contains data to be output
type OutputResult struct {
	Command    string            `json:"command"`
	FinishedAt time.Time         `json:"finished_at"`
	DataDir    string            `json:"data_dir"`
	Summary    *pipeline.Summary `json:"summary"`
}

// WriteOutput writes the result in the specified format
func WriteOutput(w io.Writer, result *OutputResult, format OutputFormat, verbose bool) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatText:
		return writeText(w, result, verbose)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs results as JSON
func writeJSON(w io.Writer, result *OutputResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// writeText outputs results as human-readable text
func writeText(w io.Writer, result *OutputResult, verbose bool) error {
	s := result.Summary
	if s == nil {
		fmt.Fprintln(w, "Nothing to report.")
		return nil
	}

	if verbose {
		fmt.Fprintf(w, "Run:       %s\n", s.RunID)
		fmt.Fprintf(w, "Data dir:  %s\n", result.DataDir)
		fmt.Fprintf(w, "Finished:  %s\n\n", result.FinishedAt.Format(time.RFC3339))
	}

	if f := s.Fetch; f != nil {
		fmt.Fprintf(w, "Fetch: %d competitions\n", f.Competitions)
		fmt.Fprintf(w, "  pages:      %s\n", counts(f.Pages))
		fmt.Fprintf(w, "  documents:  %s\n", counts(f.Documents))
	}

	if j := s.Judges; j != nil {
		fmt.Fprintf(w, "Judges: %d judges from %d rosters in %d competitions\n", j.Judges, j.Rosters, j.Competitions)
		if j.Failed > 0 || verbose {
			fmt.Fprintf(w, "  failed rosters: %d\n", j.Failed)
		}
		if j.Warnings > 0 {
			fmt.Fprintf(w, "  warnings: %d\n", j.Warnings)
		}
	}

	if p := s.Protocols; p != nil {
		fmt.Fprintf(w, "Protocols: %d parsed, %d skipped, %d empty, %d failed of %d documents\n",
			p.Parsed, p.Skipped, p.Empty, p.Failed, p.Documents)
		fmt.Fprintf(w, "  skaters: %d parsed, %d skipped\n", p.Skaters, p.SkaterFailures)
		if verbose {
			fmt.Fprintf(w, "  rows: %d\n", p.Rows)
		}
		if p.Warnings > 0 {
			fmt.Fprintf(w, "  warnings: %d\n", p.Warnings)
		}
	}

	if d := s.Dataset; d != nil {
		fmt.Fprintf(w, "Dataset: %d rows from %d artifacts, %d judges\n", d.Rows, d.Artifacts, d.Judges)
		if d.CSVPath != "" {
			fmt.Fprintf(w, "  csv:    %s\n", d.CSVPath)
		}
		if d.SQLitePath != "" {
			fmt.Fprintf(w, "  sqlite: %s\n", d.SQLitePath)
		}
		if d.Warnings > 0 {
			fmt.Fprintf(w, "  warnings: %d\n", d.Warnings)
		}
	}

	if s.Failed() {
		fmt.Fprintln(w, "\nSome inputs failed, see the log for details.")
	}
	return nil
}

func counts(c pipeline.Counts) string {
	return fmt.Sprintf("%d downloaded, %d skipped, %d failed", c.Downloaded, c.Skipped, c.Failed)
}
