package domain

import "time"

// Pipelines recorded in the run catalog
const (
	PipelineSTS = "sts"
	PipelineMLM = "mlm"
)

// Run is one export recorded in the catalog
type Run struct {
	ID         string    `json:"id"`
	Pipeline   string    `json:"pipeline"`
	Variant    string    `json:"variant"`
	Seed       uint64    `json:"seed"`
	Samples    int       `json:"samples"`
	Skipped    int       `json:"skipped"`
	Duplicates int       `json:"duplicates"`
	CreatedAt  time.Time `json:"created_at"`
	Files      []RunFile `json:"files,omitempty"`
}

// RunFile is a file written by a run. Location is set once the file has
// been published to storage.
type RunFile struct {
	Split    string `json:"split"`
	Path     string `json:"path"`
	Rows     int    `json:"rows"`
	Location string `json:"location,omitempty"`
}
