package export

import (
	"fmt"
	"slices"

	"github.com/c360studio/reqtrace/trace"
)

// StatRow is the coverage of one document.
type StatRow struct {
	Document string  `json:"document"`
	Path     string  `json:"path"`
	Covered  int     `json:"covered"`
	Total    int     `json:"total"`
	Ratio    float64 `json:"ratio"`
}

// Stats is the coverage table plus totals over the selected documents.
type Stats struct {
	Documents []StatRow `json:"documents"`
	Covered   int       `json:"covered"`
	Total     int       `json:"total"`
	Ratio     float64   `json:"ratio"`
}

// TracRow links a requirement to its related requirements: those covering
// it, or in reverse mode those it covers.
type TracRow struct {
	Requirement string   `json:"requirement"`
	Document    string   `json:"document"`
	Related     []string `json:"related"`
}

// Matrix is a traceability matrix.
type Matrix struct {
	Reverse bool      `json:"reverse"`
	Rows    []TracRow `json:"rows"`
}

// ReviewEntry is a requirement with its text, for reviewing.
type ReviewEntry struct {
	ID        string   `json:"id"`
	Document  string   `json:"document"`
	Path      string   `json:"path"`
	Text      string   `json:"text"`
	Covers    []string `json:"covers"`
	CoveredBy []string `json:"covered_by"`
}

// ErrorList is the diagnostics of a run.
type ErrorList struct {
	Count       int                `json:"count"`
	Diagnostics []trace.Diagnostic `json:"diagnostics"`
}

// selectDocuments returns ids, or every document id when ids is empty.
// Unknown ids fail with trace.ErrNotFound.
func selectDocuments(x *trace.Index, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return x.DocumentIDs(), nil
	}
	for _, id := range ids {
		if _, ok := x.Document(id); !ok {
			return nil, fmt.Errorf("document %s: %w", id, trace.ErrNotFound)
		}
	}
	return ids, nil
}

// BuildStats computes the coverage table. Empty documents selects all.
func BuildStats(x *trace.Index, documents ...string) (Stats, error) {
	ids, err := selectDocuments(x, documents)
	if err != nil {
		return Stats{}, err
	}

	stats := Stats{Documents: make([]StatRow, 0, len(ids))}
	for _, id := range ids {
		doc, _ := x.Document(id)
		stats.Documents = append(stats.Documents, StatRow{
			Document: doc.ID,
			Path:     doc.Path,
			Covered:  doc.CoveredRequirements,
			Total:    doc.TotalRequirements,
			Ratio:    doc.Coverage(),
		})
		stats.Covered += doc.CoveredRequirements
		stats.Total += doc.TotalRequirements
	}
	if stats.Total > 0 {
		stats.Ratio = float64(stats.Covered) / float64(stats.Total)
	}
	return stats, nil
}

// BuildMatrix computes the traceability matrix of the requirements owned by
// the selected documents. Forward rows list covering requirements; reverse
// rows list covered ones.
func BuildMatrix(x *trace.Index, reverse bool, documents ...string) (Matrix, error) {
	ids, err := selectDocuments(x, documents)
	if err != nil {
		return Matrix{}, err
	}

	m := Matrix{Reverse: reverse, Rows: []TracRow{}}
	for _, r := range requirementsOf(x, ids) {
		related := r.CoveredBy
		if reverse {
			related = r.Covers
		}
		m.Rows = append(m.Rows, TracRow{
			Requirement: r.ID,
			Document:    r.DocumentID,
			Related:     related.Sorted(),
		})
	}
	return m, nil
}

// BuildReview lists the requirements of the selected documents with their
// text and edges.
func BuildReview(x *trace.Index, documents ...string) ([]ReviewEntry, error) {
	ids, err := selectDocuments(x, documents)
	if err != nil {
		return nil, err
	}

	entries := []ReviewEntry{}
	for _, r := range requirementsOf(x, ids) {
		entries = append(entries, ReviewEntry{
			ID:        r.ID,
			Document:  r.DocumentID,
			Path:      r.DocumentPath,
			Text:      r.Text,
			Covers:    r.Covers.Sorted(),
			CoveredBy: r.CoveredBy.Sorted(),
		})
	}
	return entries, nil
}

// BuildErrors returns the diagnostics in report order.
func BuildErrors(x *trace.Index) ErrorList {
	diags := slices.Clone(x.Diagnostics)
	if diags == nil {
		diags = []trace.Diagnostic{}
	}
	return ErrorList{Count: len(diags), Diagnostics: diags}
}

// requirementsOf returns the requirements owned by the documents in ids, in
// natural requirement order.
func requirementsOf(x *trace.Index, ids []string) []*trace.Requirement {
	selected := make(map[string]bool, len(ids))
	for _, id := range ids {
		selected[id] = true
	}

	var out []*trace.Requirement
	for _, id := range x.RequirementIDs() {
		r := x.Requirements[id]
		if selected[r.DocumentID] {
			out = append(out, r)
		}
	}
	return out
}
