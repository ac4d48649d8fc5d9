package trace

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"
)

// Index is the run context shared by every scanner of a run: the
// requirement registry, the document registry and the diagnostics.
//
// An Index is not safe for concurrent use. Scanners must feed it one line at
// a time across all documents; duplicate detection relies on that order.
type Index struct {
	Requirements map[string]*Requirement
	Documents    map[string]*Document
	Diagnostics  []Diagnostic

	logger *slog.Logger
}

// NewIndex creates an empty index. A nil logger uses slog.Default().
func NewIndex(logger *slog.Logger) *Index {
	if logger == nil {
		logger = slog.Default()
	}
	return &Index{
		Requirements: make(map[string]*Requirement),
		Documents:    make(map[string]*Document),
		logger:       logger,
	}
}

// AddDocument registers a document.
func (x *Index) AddDocument(d *Document) error {
	if _, ok := x.Documents[d.ID]; ok {
		return fmt.Errorf("document %s: %w", d.ID, ErrDuplicate)
	}
	x.Documents[d.ID] = d
	return nil
}

// Document looks up a document by id.
func (x *Index) Document(id string) (*Document, bool) {
	d, ok := x.Documents[id]
	return d, ok
}

// AddRequirement registers a requirement. The first registration of an id
// wins; later ones fail with ErrDuplicate and leave the registry unchanged.
func (x *Index) AddRequirement(r *Requirement) error {
	if _, ok := x.Requirements[r.ID]; ok {
		return fmt.Errorf("requirement %s: %w", r.ID, ErrDuplicate)
	}
	x.Requirements[r.ID] = r
	return nil
}

// Requirement looks up a requirement by id.
func (x *Index) Requirement(id string) (*Requirement, bool) {
	r, ok := x.Requirements[id]
	return r, ok
}

// MustRequirement returns the requirement or an error wrapping ErrNotFound.
func (x *Index) MustRequirement(id string) (*Requirement, error) {
	r, ok := x.Requirements[id]
	if !ok {
		return nil, fmt.Errorf("requirement %s: %w", id, ErrNotFound)
	}
	return r, nil
}

// RequirementIDs returns all requirement ids in natural order.
func (x *Index) RequirementIDs() []string {
	ids := slices.Collect(maps.Keys(x.Requirements))
	SortNatural(ids)
	return ids
}

// DocumentIDs returns all document ids in natural order.
func (x *Index) DocumentIDs() []string {
	ids := slices.Collect(maps.Keys(x.Documents))
	SortNatural(ids)
	return ids
}

// RequirementsOf returns the requirements owned by a document, in natural
// order of their ids.
func (x *Index) RequirementsOf(documentID string) []*Requirement {
	var out []*Requirement
	for _, id := range x.RequirementIDs() {
		if r := x.Requirements[id]; r.DocumentID == documentID {
			out = append(out, r)
		}
	}
	return out
}

// Totals sums the per-document counters.
func (x *Index) Totals() (total, covered int) {
	for _, d := range x.Documents {
		total += d.TotalRequirements
		covered += d.CoveredRequirements
	}
	return total, covered
}
