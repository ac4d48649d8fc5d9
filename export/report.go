package export

import (
	"encoding/json"
	"time"

	"github.com/c360studio/reqtrace/trace"
)

// Report is the complete outcome of a run, as published to NATS.
type Report struct {
	RunID        string             `json:"run_id"`
	GeneratedAt  time.Time          `json:"generated_at"`
	Healthy      bool               `json:"healthy"`
	Stats        Stats              `json:"stats"`
	Requirements []ReviewEntry      `json:"requirements"`
	Diagnostics  []trace.Diagnostic `json:"diagnostics"`
}

// NewReport builds the report of every document in x.
func NewReport(runID string, x *trace.Index) (*Report, error) {
	stats, err := BuildStats(x)
	if err != nil {
		return nil, err
	}
	reqs, err := BuildReview(x)
	if err != nil {
		return nil, err
	}
	return &Report{
		RunID:        runID,
		GeneratedAt:  time.Now().UTC(),
		Healthy:      x.Healthy(),
		Stats:        stats,
		Requirements: reqs,
		Diagnostics:  BuildErrors(x).Diagnostics,
	}, nil
}

// Marshal encodes the report as JSON.
func (r *Report) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
