package domain

import "time"

// RunSummary tallies one conversion run over a date range.
type RunSummary struct {
	RunID      string        `json:"run_id"`
	Start      string        `json:"start"` // yyyymmdd
	End        string        `json:"end"`   // yyyymmdd
	Processed  int           `json:"processed"`
	Skipped    int           `json:"skipped"`
	Failed     int           `json:"failed"`
	Artifacts  int           `json:"artifacts"`
	FailedDays []string      `json:"failed_days,omitempty"`
	Elapsed    time.Duration `json:"elapsed_ns"`
	FinishedAt time.Time     `json:"finished_at"`
}

// Written is the number of dates that produced at least one artifact.
func (s RunSummary) Written() int {
	return s.Processed - s.Skipped - s.Failed
}
