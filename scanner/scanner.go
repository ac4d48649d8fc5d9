// Package scanner implements the per-file requirement scanning state
// machine. A Scanner consumes the lines of one file in order, detects the
// acquisition window, requirement definitions and references, and records
// what it finds in a shared trace.Index.
package scanner

import (
	"errors"
	"log/slog"
	"slices"
	"strings"

	"github.com/c360studio/reqtrace/pattern"
	"github.com/c360studio/reqtrace/trace"
)

// Status is the outcome of processing one block.
type Status int

const (
	// OK means the block was scanned.
	OK Status = iota

	// NotStarted means the start-after marker has not been seen yet and the
	// block was ignored.
	NotStarted

	// StopReached means the block matched the stop-after marker. The caller
	// must not feed further blocks.
	StopReached
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case OK:
		return "ok"
	case NotStarted:
		return "not-started"
	case StopReached:
		return "stop-reached"
	default:
		return "unknown"
	}
}

// Scanner scans one file of a document. Use one Scanner per file and never
// interleave files.
type Scanner struct {
	index  *trace.Index
	doc    *trace.Document
	path   string
	logger *slog.Logger

	acquiring bool
	current   string
	text      strings.Builder
}

// New creates a scanner for the file at path, owned by doc. Acquisition
// starts immediately unless doc has a start-after pattern.
func New(index *trace.Index, doc *trace.Document, path string, logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scanner{
		index:     index,
		doc:       doc,
		path:      path,
		logger:    logger,
		acquiring: doc.StartAfter == nil,
	}
}

// Acquiring reports whether the acquisition window is open.
func (s *Scanner) Acquiring() bool {
	return s.acquiring
}

// Current returns the id of the open requirement, or "".
func (s *Scanner) Current() string {
	return s.current
}

// ProcessBlock scans one line or paragraph.
//
// References found on a line are attached to the requirement that is open
// when the line starts, so a reference on a definition line belongs to the
// previous requirement. A definition whose id is also referenced on the same
// line is treated as a reference only.
func (s *Scanner) ProcessBlock(text string) Status {
	s.logger.Debug("Process block", "path", s.path, "text", text)

	if !s.acquiring {
		if start, _ := s.extractFirst(s.doc.StartAfter, text, false); start != "" {
			s.acquiring = true
		}
	}
	if !s.acquiring {
		return NotStarted
	}

	if stop, _ := s.extractFirst(s.doc.StopAfter, text, false); stop != "" {
		s.logger.Debug("Stop marker reached", "path", s.path, "stop", stop)
		return StopReached
	}

	refs := s.extractAll(s.doc.Reference, text)
	for _, ref := range refs {
		if s.current == "" {
			s.index.Reportf(trace.KindReferenceWithoutContext,
				"%s: Reference, but no current requirement, file: %s", ref, s.path)
			continue
		}
		if r, ok := s.index.Requirement(s.current); ok {
			r.Covers.Add(ref)
		}
	}

	reqID, text := s.extractFirst(s.doc.Definition, text, true)
	if reqID != "" && !slices.Contains(refs, reqID) {
		s.define(reqID)
	}

	if s.current != "" {
		if s.text.Len() > 0 {
			s.text.WriteByte('\n')
		}
		s.text.WriteString(text)
	}

	return OK
}

// Finish stores the text of the open requirement and closes it. Call it when
// the file ends, whether or not the stop marker was reached.
func (s *Scanner) Finish() {
	s.flush()
	s.current = ""
}

// Scan feeds lines in order until the stop marker, then calls Finish.
// It returns StopReached if the marker was seen, OK otherwise.
func (s *Scanner) Scan(lines []string) Status {
	defer s.Finish()
	for _, line := range lines {
		if s.ProcessBlock(line) == StopReached {
			return StopReached
		}
	}
	return OK
}

// define opens a new requirement, or reports a duplicate. A duplicate closes
// the open requirement without storing its text.
func (s *Scanner) define(id string) {
	if existing, ok := s.index.Requirement(id); ok {
		s.index.Reportf(trace.KindDuplicateRequirement,
			"%s: Duplicate requirement in documents '%s' and '%s'",
			id, existing.DocumentPath, s.path)
		s.current = ""
		return
	}

	s.flush()

	if err := s.index.AddRequirement(trace.NewRequirement(id, s.doc.ID, s.path)); err != nil {
		s.logger.Warn("Failed to register requirement", "id", id, "error", err)
		return
	}
	s.current = id
	s.logger.Debug("Requirement defined", "id", id, "document", s.doc.ID, "path", s.path)
}

// flush stores the accumulated text into the open requirement, if any, and
// clears the buffer.
func (s *Scanner) flush() {
	if s.current != "" {
		if r, ok := s.index.Requirement(s.current); ok {
			r.Text = s.text.String()
		}
	}
	s.text.Reset()
}

func (s *Scanner) extractFirst(p pattern.Pattern, text string, erase bool) (string, string) {
	id, rest, err := pattern.ExtractFirst(p, text, erase)
	if err != nil {
		s.report(err, p)
	}
	return id, rest
}

func (s *Scanner) extractAll(p pattern.Pattern, text string) []string {
	ids, err := pattern.ExtractAll(p, text)
	if err != nil {
		s.report(err, p)
	}
	return ids
}

func (s *Scanner) report(err error, p pattern.Pattern) {
	var sizeErr *pattern.CaptureSizeError
	if errors.As(err, &sizeErr) {
		s.index.Reportf(trace.KindOversizedMatch, "Requirement size too big (%d)", sizeErr.Size)
		return
	}
	s.index.Reportf(trace.KindPatternError, "Pattern error in file '%s' (%s): %v", s.path, p.String(), err)
}
