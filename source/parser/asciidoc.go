package parser

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/c360studio/reqtrace/source"
)

var (
	// Document title: = Title
	adocDocTitle = regexp.MustCompile(`^=\s+(.+)$`)

	// Attribute definitions: :name: value
	adocAttribute = regexp.MustCompile(`^:([^:]+):\s*(.*)$`)
)

// ASCIIDocParser parses AsciiDoc documents. The header attributes become
// frontmatter; the rest of the document is scanned verbatim.
type ASCIIDocParser struct{}

// NewASCIIDocParser creates a new AsciiDoc parser.
func NewASCIIDocParser() *ASCIIDocParser {
	return &ASCIIDocParser{}
}

// Parse parses an AsciiDoc document.
func (p *ASCIIDocParser) Parse(filename string, content []byte) (*source.Document, error) {
	str := strings.TrimPrefix(string(content), string(utf8BOM))
	attributes, body := extractAttributes(str)

	return &source.Document{
		ID:          GenerateDocID("asciidoc", filename, content),
		Filename:    filepath.Base(filename),
		Content:     string(content),
		Body:        body,
		Frontmatter: attributes,
	}, nil
}

// CanParse returns true if this parser can handle the given MIME type.
func (p *ASCIIDocParser) CanParse(mimeType string) bool {
	switch mimeType {
	case MimeAsciiDoc, "text/x-asciidoc":
		return true
	default:
		return false
	}
}

// MimeType returns the primary MIME type for this parser.
func (p *ASCIIDocParser) MimeType() string {
	return MimeAsciiDoc
}

// extractAttributes reads the document header: an optional "= Title" line
// followed by attribute entries. The title stays in the body.
func extractAttributes(content string) (map[string]any, string) {
	lines := strings.Split(content, "\n")
	attributes := make(map[string]any)
	var kept []string

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if m := adocAttribute.FindStringSubmatch(trimmed); m != nil {
			attributes[strings.ToLower(strings.TrimSpace(m[1]))] = strings.TrimSpace(m[2])
			continue
		}
		if m := adocDocTitle.FindStringSubmatch(trimmed); m != nil && len(kept) == 0 {
			attributes["title"] = strings.TrimSpace(m[1])
			kept = append(kept, line)
			continue
		}
		if trimmed == "" && len(attributes) == 0 && len(kept) == 0 {
			continue
		}
		kept = append(kept, lines[i:]...)
		break
	}

	if len(attributes) == 0 {
		return nil, content
	}
	return attributes, strings.Join(kept, "\n")
}
