// Package trace holds the requirements-traceability index: the registry of
// requirements and documents shared by all scanners of a run, the ordered
// diagnostics, and the post-scan passes that derive coverage edges,
// document dependencies and statistics.
package trace

import (
	"encoding/json"
	"maps"
	"slices"

	"github.com/c360studio/reqtrace/pattern"
)

// IDSet is a set of requirement or document identifiers.
type IDSet map[string]struct{}

// NewIDSet returns a set holding ids.
func NewIDSet(ids ...string) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Add inserts id and reports whether it was absent.
func (s IDSet) Add(id string) bool {
	if _, ok := s[id]; ok {
		return false
	}
	s[id] = struct{}{}
	return true
}

// Has reports whether id is in the set.
func (s IDSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Sorted returns the members in natural order, an empty non-nil slice for
// an empty set.
func (s IDSet) Sorted() []string {
	ids := slices.AppendSeq(make([]string, 0, len(s)), maps.Keys(s))
	SortNatural(ids)
	return ids
}

// MarshalJSON encodes the set as a naturally ordered array.
func (s IDSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

// Requirement is a traceable unit of text owned by one document.
type Requirement struct {
	// ID is unique across the whole run.
	ID string `json:"id"`

	// DocumentID identifies the owning document.
	DocumentID string `json:"document_id"`

	// DocumentPath is the file the requirement was defined in.
	DocumentPath string `json:"document_path"`

	// Text is the accumulated text, set when the requirement is closed.
	Text string `json:"text,omitempty"`

	// Covers holds the identifiers this requirement references.
	Covers IDSet `json:"covers"`

	// CoveredBy holds the identifiers of requirements referencing this one.
	// Only Consolidate writes it.
	CoveredBy IDSet `json:"covered_by"`
}

// NewRequirement creates a requirement with empty edge sets.
func NewRequirement(id, documentID, documentPath string) *Requirement {
	return &Requirement{
		ID:           id,
		DocumentID:   documentID,
		DocumentPath: documentPath,
		Covers:       NewIDSet(),
		CoveredBy:    NewIDSet(),
	}
}

// Covered reports whether any requirement references this one.
func (r *Requirement) Covered() bool {
	return len(r.CoveredBy) > 0
}

// Document is a configured source of requirement text plus the state the
// post-scan passes derive for it.
type Document struct {
	// ID identifies the document in coverage edges.
	ID string `json:"id"`

	// Path is the configured path or glob.
	Path string `json:"path"`

	// Files are the concrete files behind Path, scanned in order.
	// Empty means Path itself.
	Files []string `json:"files,omitempty"`

	// Format forces a parser ("" selects by file extension).
	Format string `json:"format,omitempty"`

	// StartAfter opens the acquisition window; nil means open from line one.
	StartAfter pattern.Pattern `json:"-"`

	// StopAfter ends scanning of a file.
	StopAfter pattern.Pattern `json:"-"`

	// Definition recognizes requirement definitions.
	Definition pattern.Pattern `json:"-"`

	// Reference recognizes references to other requirements.
	Reference pattern.Pattern `json:"-"`

	// Upstream holds the documents this document covers.
	Upstream IDSet `json:"upstream"`

	// Downstream holds the documents covering this document.
	Downstream IDSet `json:"downstream"`

	// TotalRequirements counts requirements owned by the document.
	TotalRequirements int `json:"total_requirements"`

	// CoveredRequirements counts owned requirements with a non-empty CoveredBy.
	CoveredRequirements int `json:"covered_requirements"`
}

// NewDocument creates a document with empty dependency sets.
func NewDocument(id, path string) *Document {
	return &Document{
		ID:         id,
		Path:       path,
		Upstream:   NewIDSet(),
		Downstream: NewIDSet(),
	}
}

// SourceFiles returns Files, or Path when no files were resolved.
func (d *Document) SourceFiles() []string {
	if len(d.Files) > 0 {
		return d.Files
	}
	return []string{d.Path}
}

// Coverage returns the covered fraction of the document's requirements,
// 0 when it owns none.
func (d *Document) Coverage() float64 {
	if d.TotalRequirements == 0 {
		return 0
	}
	return float64(d.CoveredRequirements) / float64(d.TotalRequirements)
}

// Clone returns a copy of the configuration part of d with fresh derived
// state, for a new run over the same configuration.
func (d *Document) Clone() *Document {
	c := NewDocument(d.ID, d.Path)
	c.Files = slices.Clone(d.Files)
	c.Format = d.Format
	c.StartAfter = d.StartAfter
	c.StopAfter = d.StopAfter
	c.Definition = d.Definition
	c.Reference = d.Reference
	return c
}
