package pipeline

import (
	"github.com/pfrederiksen/skate-protocols/internal/scraper"
)

// Counts tallies download outcomes
type Counts struct {
	Downloaded int `json:"downloaded"`
	Skipped    int `json:"skipped"`
	Failed     int `json:"failed"`
}

func (c *Counts) add(o scraper.Outcome) {
	switch o {
	case scraper.Downloaded:
		c.Downloaded++
	case scraper.Skipped:
		c.Skipped++
	case scraper.Failed:
		c.Failed++
	}
}

// FetchSummary reports the fetch stage
type FetchSummary struct {
	Competitions int    `json:"competitions"`
	Pages        Counts `json:"pages"`
	Documents    Counts `json:"documents"`
}

// JudgesSummary reports the judge stage
type JudgesSummary struct {
	Competitions int `json:"competitions"`
	Rosters      int `json:"rosters"`
	Failed       int `json:"failed"`
	Judges       int `json:"judges"`
	Warnings     int `json:"warnings"`
}

// ProtocolsSummary reports the protocol stage
type ProtocolsSummary struct {
	Documents      int `json:"documents"`
	Parsed         int `json:"parsed"`
	Skipped        int `json:"skipped"`
	Empty          int `json:"empty"`
	Failed         int `json:"failed"`
	Skaters        int `json:"skaters"`
	SkaterFailures int `json:"skater_failures"`
	Rows           int `json:"rows"`
	Warnings       int `json:"warnings"`
}

// DatasetSummary reports the dataset stage
type DatasetSummary struct {
	Artifacts  int    `json:"artifacts"`
	Rows       int    `json:"rows"`
	Judges     int    `json:"judges"`
	Warnings   int    `json:"warnings"`
	CSVPath    string `json:"csv_path,omitempty"`
	SQLitePath string `json:"sqlite_path,omitempty"`
}

// Summary is what a command reports at the end of a run
type Summary struct {
	RunID     string            `json:"run_id"`
	Fetch     *FetchSummary     `json:"fetch,omitempty"`
	Judges    *JudgesSummary    `json:"judges,omitempty"`
	Protocols *ProtocolsSummary `json:"protocols,omitempty"`
	Dataset   *DatasetSummary   `json:"dataset,omitempty"`
}

// Failed reports whether any download, roster or document failed
func (s *Summary) Failed() bool {
	switch {
	case s.Fetch != nil && (s.Fetch.Pages.Failed > 0 || s.Fetch.Documents.Failed > 0):
		return true
	case s.Judges != nil && s.Judges.Failed > 0:
		return true
	case s.Protocols != nil && s.Protocols.Failed > 0:
		return true
	}
	return false
}
