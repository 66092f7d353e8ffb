package domain

import "time"

// ArtifactEvent announces a newly written artifact to downstream consumers.
type ArtifactEvent struct {
	RunID     string    `json:"run_id"`
	Category  string    `json:"category"`
	Date      string    `json:"date"` // yyyymmdd
	Path      string    `json:"path"`
	Variables []string  `json:"variables"`
	Bytes     int64     `json:"bytes"`
	WrittenAt time.Time `json:"written_at"`
}

// NewArtifactEvent describes ds persisted at path.
func NewArtifactEvent(runID string, ds *Dataset, path string, size int64) ArtifactEvent {
	vars := make([]string, len(ds.Vars))
	for i, v := range ds.Vars {
		vars[i] = v.Name
	}
	return ArtifactEvent{
		RunID:     runID,
		Category:  ds.Category.String(),
		Date:      ds.Date.Format(DateLayout),
		Path:      path,
		Variables: vars,
		Bytes:     size,
		WrittenAt: clock.Now().UTC(),
	}
}
