// Package source provides the documents that feed requirement scanning:
// files parsed by format into a body of text lines.
package source

// Document is a parsed source file.
type Document struct {
	// ID is a content-addressed identifier for the parsed file.
	ID string `json:"id"`

	// Filename is the base name of the file.
	Filename string `json:"filename"`

	// MimeType is the MIME type of the parser that produced the document.
	MimeType string `json:"mime_type"`

	// Content is the raw file content.
	Content string `json:"content"`

	// Frontmatter holds header metadata (YAML frontmatter, RST field list,
	// AsciiDoc attributes, HTML title, PDF page count) when present.
	Frontmatter map[string]any `json:"frontmatter,omitempty"`

	// Body is the text to scan, one requirement block per line.
	Body string `json:"body"`
}

// HasFrontmatter returns true if the document has parsed frontmatter.
func (d *Document) HasFrontmatter() bool {
	return len(d.Frontmatter) > 0
}

// Lines splits Body with SplitLines using MaxLineSize.
func (d *Document) Lines() ([]string, error) {
	return SplitLines(d.Body, MaxLineSize)
}

