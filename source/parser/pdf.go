package parser

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/c360studio/reqtrace/source"
)

// PDFParser parses PDF documents by extracting text content.
type PDFParser struct{}

// NewPDFParser creates a new PDF parser.
func NewPDFParser() *PDFParser {
	return &PDFParser{}
}

// Parse extracts the plain text of every page. Pages are joined with a
// newline; a PDF without a text layer yields an empty body.
func (p *PDFParser) Parse(filename string, content []byte) (*source.Document, error) {
	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("open PDF: %w", err)
	}

	var sb strings.Builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// Damaged pages are skipped
			continue
		}
		text = strings.TrimRight(text, "\n")
		if text == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(text)
	}

	return &source.Document{
		ID:          GenerateDocID("pdf", filename, content),
		Filename:    filepath.Base(filename),
		Content:     string(content),
		Body:        sb.String(),
		Frontmatter: map[string]any{"pages": numPages},
	}, nil
}

// CanParse returns true if this parser can handle the given MIME type.
func (p *PDFParser) CanParse(mimeType string) bool {
	return mimeType == MimePDF
}

// MimeType returns the primary MIME type for this parser.
func (p *PDFParser) MimeType() string {
	return MimePDF
}
