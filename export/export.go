// Package export renders a traceability index as reports: coverage
// statistics, traceability matrices, requirement reviews and the diagnostic
// list, in text, JSON, CSV or RDF.
package export

import (
	"fmt"
	"io"
	"slices"

	"github.com/c360studio/reqtrace/trace"
)

// View selects what a report shows.
type View string

const (
	// ViewStat is the per-document coverage table.
	ViewStat View = "stat"

	// ViewTrac is the traceability matrix.
	ViewTrac View = "trac"

	// ViewReview lists requirements with their text.
	ViewReview View = "review"

	// ViewErrors lists the diagnostics.
	ViewErrors View = "errors"
)

// Views lists every view.
var Views = []View{ViewStat, ViewTrac, ViewReview, ViewErrors}

// Format specifies the output serialization format.
type Format string

const (
	// FormatText produces human readable tables.
	FormatText Format = "text"

	// FormatJSON produces indented JSON.
	FormatJSON Format = "json"

	// FormatCSV produces comma separated values with a header row.
	FormatCSV Format = "csv"

	// FormatTurtle produces the coverage graph as Turtle.
	FormatTurtle Format = "turtle"

	// FormatNTriples produces the coverage graph as N-Triples.
	FormatNTriples Format = "ntriples"
)

// FormatInfo provides metadata about an export format.
type FormatInfo struct {
	// Name is the format identifier.
	Name Format

	// MIMEType is the standard MIME type.
	MIMEType string

	// Extension is the file extension (with dot).
	Extension string

	// Description describes the format.
	Description string

	// Views lists the views the format can render.
	Views []View
}

// FormatRegistry contains metadata for all supported formats.
var FormatRegistry = map[Format]FormatInfo{
	FormatText: {
		Name:        FormatText,
		MIMEType:    "text/plain",
		Extension:   ".txt",
		Description: "Aligned text tables",
		Views:       Views,
	},
	FormatJSON: {
		Name:        FormatJSON,
		MIMEType:    "application/json",
		Extension:   ".json",
		Description: "JSON document",
		Views:       Views,
	},
	FormatCSV: {
		Name:        FormatCSV,
		MIMEType:    "text/csv",
		Extension:   ".csv",
		Description: "Comma separated values",
		Views:       Views,
	},
	FormatTurtle: {
		Name:        FormatTurtle,
		MIMEType:    "text/turtle",
		Extension:   ".ttl",
		Description: "Turtle - coverage graph as RDF",
		Views:       []View{ViewTrac},
	},
	FormatNTriples: {
		Name:        FormatNTriples,
		MIMEType:    "application/n-triples",
		Extension:   ".nt",
		Description: "N-Triples - coverage graph as line-based RDF",
		Views:       []View{ViewTrac},
	},
}

// GetFormatInfo returns metadata for a format.
func GetFormatInfo(format Format) (FormatInfo, bool) {
	info, ok := FormatRegistry[format]
	return info, ok
}

// Options narrow a report.
type Options struct {
	// Documents restricts stat, trac and review to these document ids.
	Documents []string

	// Reverse makes trac list covered instead of covering requirements.
	Reverse bool
}

// Exporter renders reports for one index.
type Exporter struct {
	index *trace.Index
}

// NewExporter creates an exporter for x.
func NewExporter(x *trace.Index) *Exporter {
	return &Exporter{index: x}
}

// Export writes view in format to w.
func (e *Exporter) Export(w io.Writer, view View, format Format, opts Options) error {
	info, ok := GetFormatInfo(format)
	if !ok {
		return fmt.Errorf("unsupported format: %s", format)
	}
	if !slices.Contains(info.Views, view) {
		return fmt.Errorf("format %s does not support view %s", format, view)
	}

	data, err := e.build(view, opts)
	if err != nil {
		return err
	}

	switch format {
	case FormatText:
		return writeText(w, data)
	case FormatJSON:
		return writeJSON(w, data)
	case FormatCSV:
		return writeCSV(w, data)
	case FormatTurtle, FormatNTriples:
		return writeGraph(w, e.index, data.(Matrix), format)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

// build computes the data behind a view.
func (e *Exporter) build(view View, opts Options) (any, error) {
	switch view {
	case ViewStat:
		return BuildStats(e.index, opts.Documents...)
	case ViewTrac:
		return BuildMatrix(e.index, opts.Reverse, opts.Documents...)
	case ViewReview:
		return BuildReview(e.index, opts.Documents...)
	case ViewErrors:
		return BuildErrors(e.index), nil
	default:
		return nil, fmt.Errorf("unknown view: %s", view)
	}
}
