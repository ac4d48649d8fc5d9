package parser

import (
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/c360studio/reqtrace/source"
)

const frontmatterDelimiter = "---"

// MarkdownParser parses markdown documents with optional YAML frontmatter.
type MarkdownParser struct{}

// NewMarkdownParser creates a new markdown parser.
func NewMarkdownParser() *MarkdownParser {
	return &MarkdownParser{}
}

// Parse splits off a leading YAML frontmatter block. The rest of the file is
// the body, unchanged: headings and list markers are scanned as written.
// A block that is unterminated or not valid YAML stays in the body.
func (p *MarkdownParser) Parse(filename string, content []byte) (*source.Document, error) {
	text := strings.TrimPrefix(string(content), string(utf8BOM))

	doc := &source.Document{
		ID:       GenerateDocID("md", filename, content),
		Filename: filepath.Base(filename),
		Content:  string(content),
		Body:     text,
	}

	if frontmatter, body, ok := splitFrontmatter(text); ok {
		doc.Frontmatter = frontmatter
		doc.Body = body
	}

	return doc, nil
}

// CanParse returns true if this parser can handle the given MIME type.
func (p *MarkdownParser) CanParse(mimeType string) bool {
	switch mimeType {
	case MimeMarkdown, "text/x-markdown":
		return true
	default:
		return false
	}
}

// MimeType returns the primary MIME type for this parser.
func (p *MarkdownParser) MimeType() string {
	return MimeMarkdown
}

// splitFrontmatter decodes the block between a first line "---" and the next
// "---" line, and returns what follows it.
func splitFrontmatter(text string) (map[string]any, string, bool) {
	first, rest, more := cutLine(text)
	if first != frontmatterDelimiter || !more {
		return nil, "", false
	}

	var block []string
	for {
		line, next, more := cutLine(rest)
		if line == frontmatterDelimiter {
			var frontmatter map[string]any
			if err := yaml.Unmarshal([]byte(strings.Join(block, "\n")), &frontmatter); err != nil {
				return nil, "", false
			}
			return frontmatter, next, true
		}
		if !more {
			return nil, "", false
		}
		block = append(block, line)
		rest = next
	}
}

// cutLine returns the first line of s without its line ending, and the text
// after it. more is false when s holds no line ending.
func cutLine(s string) (line, rest string, more bool) {
	line, rest, more = strings.Cut(s, "\n")
	return strings.TrimSuffix(line, "\r"), rest, more
}
