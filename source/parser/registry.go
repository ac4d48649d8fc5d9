// Package parser turns files of various formats into scannable text.
package parser

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/c360studio/reqtrace/source"
)

// Parser defines the interface for document parsers.
type Parser interface {
	// Parse parses a document and returns its scannable body.
	Parse(filename string, content []byte) (*source.Document, error)

	// CanParse returns true if this parser handles the given MIME type.
	CanParse(mimeType string) bool

	// MimeType returns the primary MIME type for this parser.
	MimeType() string
}

// MIME types of the built-in parsers.
const (
	MimeText     = "text/plain"
	MimeMarkdown = "text/markdown"
	MimeRST      = "text/x-rst"
	MimeAsciiDoc = "text/asciidoc"
	MimeHTML     = "text/html"
	MimePDF      = "application/pdf"
	MimeSource   = "text/x-source"
	MimeUnknown  = "application/octet-stream"
)

// Registry manages document parsers.
type Registry struct {
	mu      sync.RWMutex
	parsers map[string]Parser // keyed by primary MIME type
}

// DefaultRegistry is the global parser registry with default parsers.
var DefaultRegistry = NewRegistry()

// NewRegistry creates a new parser registry with default parsers.
func NewRegistry() *Registry {
	r := &Registry{
		parsers: make(map[string]Parser),
	}

	r.Register(NewTextParser())
	r.Register(NewMarkdownParser())
	r.Register(NewRSTParser())
	r.Register(NewASCIIDocParser())
	r.Register(NewHTMLParser())
	r.Register(NewPDFParser())
	r.Register(NewCodeParser())

	return r
}

// Register adds a parser to the registry.
func (r *Registry) Register(p Parser) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.parsers[p.MimeType()] = p
}

// GetByMimeType returns a parser for the given MIME type.
func (r *Registry) GetByMimeType(mimeType string) Parser {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if p, ok := r.parsers[mimeType]; ok {
		return p
	}

	for _, p := range r.parsers {
		if p.CanParse(mimeType) {
			return p
		}
	}

	return nil
}

// GetByExtension returns a parser for a file based on its extension.
func (r *Registry) GetByExtension(filename string) Parser {
	return r.GetByMimeType(MimeTypeFromExtension(filepath.Ext(filename)))
}

// GetByFormat returns the parser for a configured format name.
func (r *Registry) GetByFormat(format string) (Parser, error) {
	mimeType, ok := MimeTypeFromFormat(format)
	if !ok {
		return nil, fmt.Errorf("unknown document format: %s", format)
	}
	p := r.GetByMimeType(mimeType)
	if p == nil {
		return nil, fmt.Errorf("no parser registered for format: %s", format)
	}
	return p, nil
}

// Parse parses a document with the parser for format, or by extension when
// format is empty. Files with an unknown extension are read as plain text.
func (r *Registry) Parse(format, filename string, content []byte) (*source.Document, error) {
	var parser Parser
	if format != "" {
		p, err := r.GetByFormat(format)
		if err != nil {
			return nil, err
		}
		parser = p
	} else {
		parser = r.GetByExtension(filename)
		if parser == nil {
			parser = r.GetByMimeType(MimeText)
		}
	}
	if parser == nil {
		return nil, fmt.Errorf("no parser for file type: %s", filepath.Ext(filename))
	}

	doc, err := parser.Parse(filename, content)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filename, err)
	}
	doc.MimeType = parser.MimeType()
	return doc, nil
}

// ListMimeTypes returns all registered MIME types.
func (r *Registry) ListMimeTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.parsers))
	for t := range r.parsers {
		types = append(types, t)
	}
	return types
}

// Formats maps configuration format names to MIME types.
var Formats = map[string]string{
	"text":     MimeText,
	"markdown": MimeMarkdown,
	"rst":      MimeRST,
	"asciidoc": MimeAsciiDoc,
	"html":     MimeHTML,
	"pdf":      MimePDF,
	"code":     MimeSource,
}

// MimeTypeFromFormat returns the MIME type for a configuration format name.
func MimeTypeFromFormat(format string) (string, bool) {
	m, ok := Formats[strings.ToLower(format)]
	return m, ok
}

// MimeTypeFromExtension returns the MIME type for a file extension.
func MimeTypeFromExtension(ext string) string {
	ext = strings.ToLower(ext)
	switch ext {
	case ".md", ".markdown":
		return MimeMarkdown
	case ".txt", ".text":
		return MimeText
	case ".html", ".htm", ".xhtml":
		return MimeHTML
	case ".pdf":
		return MimePDF
	case ".rst":
		return MimeRST
	case ".adoc", ".asciidoc", ".asc":
		return MimeAsciiDoc
	default:
		if _, ok := languageFor(ext); ok {
			return MimeSource
		}
		return MimeUnknown
	}
}

// ExtensionFromMimeType returns a typical file extension for a MIME type.
func ExtensionFromMimeType(mimeType string) string {
	switch mimeType {
	case MimeMarkdown, "text/x-markdown":
		return ".md"
	case MimeText:
		return ".txt"
	case MimeHTML:
		return ".html"
	case MimePDF:
		return ".pdf"
	case MimeRST, "text/rst":
		return ".rst"
	case MimeAsciiDoc, "text/x-asciidoc":
		return ".adoc"
	default:
		return ""
	}
}
