package parser

import (
	"bytes"
	"path/filepath"

	"github.com/c360studio/reqtrace/source"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// TextParser reads plain text as is.
type TextParser struct{}

// NewTextParser creates a new plain text parser.
func NewTextParser() *TextParser {
	return &TextParser{}
}

// Parse returns the content, minus a UTF-8 byte order mark, as the body.
func (p *TextParser) Parse(filename string, content []byte) (*source.Document, error) {
	body := string(bytes.TrimPrefix(content, utf8BOM))
	return &source.Document{
		ID:       GenerateDocID("text", filename, content),
		Filename: filepath.Base(filename),
		Content:  string(content),
		Body:     body,
	}, nil
}

// CanParse returns true if this parser can handle the given MIME type.
func (p *TextParser) CanParse(mimeType string) bool {
	return mimeType == MimeText
}

// MimeType returns the primary MIME type for this parser.
func (p *TextParser) MimeType() string {
	return MimeText
}
