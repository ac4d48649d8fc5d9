// Package ingester runs a full traceability scan: it resolves the files of
// every configured document, parses them into lines, feeds each file to its
// own scanner and analyzes the resulting index.
package ingester

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/c360studio/reqtrace/config"
	"github.com/c360studio/reqtrace/scanner"
	"github.com/c360studio/reqtrace/source"
	"github.com/c360studio/reqtrace/source/parser"
	"github.com/c360studio/reqtrace/trace"
)

// Result is the outcome of one run.
type Result struct {
	// RunID identifies the run in logs and published reports.
	RunID string `json:"run_id"`

	// Index is the analyzed traceability index.
	Index *trace.Index `json:"-"`

	// Files lists the files that were read, in scan order.
	Files []string `json:"files"`

	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at"`

	// Duration is the wall time of the run.
	Duration time.Duration `json:"duration"`
}

// Ingester scans a fixed set of documents. Each Run starts from a fresh
// index, so an Ingester can be reused to rescan.
type Ingester struct {
	docs    []*trace.Document
	parsers *parser.Registry
	logger  *slog.Logger
}

// New creates an ingester for docs, scanned in the given order. A nil
// registry uses parser.DefaultRegistry and a nil logger slog.Default().
func New(docs []*trace.Document, parsers *parser.Registry, logger *slog.Logger) *Ingester {
	if parsers == nil {
		parsers = parser.DefaultRegistry
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Ingester{
		docs:    docs,
		parsers: parsers,
		logger:  logger,
	}
}

// Documents returns the configured documents.
func (i *Ingester) Documents() []*trace.Document {
	return i.docs
}

// Run scans every document and analyzes the index. Traceability problems
// become diagnostics in the result; only cancellation of ctx is an error.
func (i *Ingester) Run(ctx context.Context) (*Result, error) {
	result := &Result{
		RunID:     uuid.New().String(),
		StartedAt: time.Now(),
	}
	logger := i.logger.With("run_id", result.RunID)
	index := trace.NewIndex(logger)

	docs := make([]*trace.Document, 0, len(i.docs))
	for _, d := range i.docs {
		doc := d.Clone()
		if err := index.AddDocument(doc); err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	logger.Info("Scan started", "documents", len(docs))

	for _, doc := range docs {
		files, err := i.resolve(doc)
		if err != nil {
			index.Reportf(trace.KindUnreadableDocument, "Cannot resolve document '%s': %v", doc.Path, err)
			continue
		}
		if len(files) == 0 {
			index.Reportf(trace.KindUnreadableDocument, "No file matches '%s'", doc.Path)
			continue
		}

		for _, file := range files {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("scan interrupted: %w", err)
			}
			if i.scanFile(index, doc, file, logger) {
				result.Files = append(result.Files, file)
			}
		}
	}

	index.Analyze()

	result.Index = index
	result.Duration = time.Since(result.StartedAt)

	total, covered := index.Totals()
	logger.Info("Scan complete",
		"files", len(result.Files),
		"requirements", total,
		"covered", covered,
		"diagnostics", len(index.Diagnostics),
		"duration", result.Duration)

	return result, nil
}

// resolve returns the files behind doc, expanding its path when no files
// were fixed up front.
func (i *Ingester) resolve(doc *trace.Document) ([]string, error) {
	if len(doc.Files) > 0 {
		return doc.Files, nil
	}
	return config.ResolveFiles(doc.Path, "")
}

// scanFile reads, parses and scans one file. It reports whether the file
// could be read.
func (i *Ingester) scanFile(index *trace.Index, doc *trace.Document, file string, logger *slog.Logger) bool {
	content, err := os.ReadFile(file)
	if err != nil {
		index.Reportf(trace.KindUnreadableDocument, "Cannot open file: %s", file)
		logger.Warn("Failed to read document", "document", doc.ID, "path", file, "error", err)
		return false
	}

	parsed, err := i.parsers.Parse(doc.Format, file, content)
	if err != nil {
		index.Reportf(trace.KindUnreadableDocument, "Cannot parse file '%s': %v", file, err)
		logger.Warn("Failed to parse document", "document", doc.ID, "path", file, "error", err)
		return true
	}

	lines, lineErr := parsed.Lines()

	status := scanner.New(index, doc, file, logger).Scan(lines)
	logger.Debug("File scanned",
		"document", doc.ID,
		"path", file,
		"mime_type", parsed.MimeType,
		"lines", len(lines),
		"status", status.String())

	var tooLong *source.LineTooLongError
	if errors.As(lineErr, &tooLong) && status != scanner.StopReached {
		index.Reportf(trace.KindLineTooLong, "Line too long in file '%s': %d (max size=%d)",
			file, tooLong.Line, tooLong.Max)
	}
	return true
}
