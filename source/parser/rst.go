package parser

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/c360studio/reqtrace/source"
)

// Field list: :field-name: value
var rstFieldList = regexp.MustCompile(`^:([^:]+):(.*)$`)

// RSTParser parses reStructuredText documents. A leading field list becomes
// frontmatter; the rest of the document is scanned verbatim.
type RSTParser struct{}

// NewRSTParser creates a new RST parser.
func NewRSTParser() *RSTParser {
	return &RSTParser{}
}

// Parse parses an RST document.
func (p *RSTParser) Parse(filename string, content []byte) (*source.Document, error) {
	str := strings.TrimPrefix(string(content), string(utf8BOM))
	frontmatter, body := extractFieldList(str)

	return &source.Document{
		ID:          GenerateDocID("rst", filename, content),
		Filename:    filepath.Base(filename),
		Content:     string(content),
		Body:        body,
		Frontmatter: frontmatter,
	}, nil
}

// CanParse returns true if this parser can handle the given MIME type.
func (p *RSTParser) CanParse(mimeType string) bool {
	switch mimeType {
	case MimeRST, "text/rst", "text/restructuredtext":
		return true
	default:
		return false
	}
}

// MimeType returns the primary MIME type for this parser.
func (p *RSTParser) MimeType() string {
	return MimeRST
}

// extractFieldList extracts field list metadata from the start of an RST document.
func extractFieldList(content string) (map[string]any, string) {
	lines := strings.Split(content, "\n")
	metadata := make(map[string]any)
	bodyStart := 0

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		match := rstFieldList.FindStringSubmatch(trimmed)
		if match == nil {
			break
		}
		key := strings.ToLower(strings.TrimSpace(match[1]))
		metadata[key] = strings.TrimSpace(match[2])
		bodyStart = i + 1
	}

	if len(metadata) == 0 {
		return nil, content
	}

	body := strings.Join(lines[bodyStart:], "\n")
	return metadata, strings.TrimLeft(body, "\r\n")
}
