package parser

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	"golang.org/x/net/html"

	"github.com/c360studio/reqtrace/source"
)

var excessiveLinesRe = regexp.MustCompile(`\n{4,}`)

// Elements whose content is never requirement text.
var htmlNoiseElements = []string{"script", "style", "noscript", "template", "iframe", "object", "embed"}

// HTMLParser converts HTML documents to GitHub flavored markdown and scans
// the result.
type HTMLParser struct {
	converter *md.Converter
}

// NewHTMLParser creates a new HTML parser.
func NewHTMLParser() *HTMLParser {
	converter := md.NewConverter("", true, nil)
	converter.Use(plugin.GitHubFlavored())

	return &HTMLParser{converter: converter}
}

// Parse parses an HTML document.
func (p *HTMLParser) Parse(filename string, content []byte) (*source.Document, error) {
	root, err := html.Parse(strings.NewReader(string(content)))
	if err != nil {
		return nil, fmt.Errorf("parse HTML: %w", err)
	}

	title := htmlTitle(root)
	removeElements(root, htmlNoiseElements)

	fragment := root
	if body := findElement(root, "body"); body != nil {
		fragment = body
	}

	markdown, err := p.converter.ConvertString(renderNode(fragment))
	if err != nil {
		return nil, fmt.Errorf("convert HTML: %w", err)
	}

	doc := &source.Document{
		ID:       GenerateDocID("html", filename, content),
		Filename: filepath.Base(filename),
		Content:  string(content),
		Body:     cleanMarkdown(markdown),
	}
	if title != "" {
		doc.Frontmatter = map[string]any{"title": title}
	}
	return doc, nil
}

// CanParse returns true if this parser can handle the given MIME type.
func (p *HTMLParser) CanParse(mimeType string) bool {
	switch mimeType {
	case MimeHTML, "application/xhtml+xml":
		return true
	default:
		return false
	}
}

// MimeType returns the primary MIME type for this parser.
func (p *HTMLParser) MimeType() string {
	return MimeHTML
}

// htmlTitle returns the text of the first <title> element.
func htmlTitle(n *html.Node) string {
	node := findElement(n, "title")
	if node == nil || node.FirstChild == nil {
		return ""
	}
	return strings.TrimSpace(node.FirstChild.Data)
}

// findElement finds the first element with the given tag name.
func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}

// removeElements removes all elements with the given tag names.
func removeElements(n *html.Node, tags []string) {
	tagSet := make(map[string]bool, len(tags))
	for _, tag := range tags {
		tagSet[tag] = true
	}

	var toRemove []*html.Node
	var collect func(*html.Node)
	collect = func(node *html.Node) {
		if node.Type == html.ElementNode && tagSet[node.Data] {
			toRemove = append(toRemove, node)
			return
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)

	for _, node := range toRemove {
		if node.Parent != nil {
			node.Parent.RemoveChild(node)
		}
	}
}

// renderNode renders a node and its children back to HTML.
func renderNode(n *html.Node) string {
	var sb strings.Builder
	_ = html.Render(&sb, n)
	return sb.String()
}

// cleanMarkdown collapses blank runs and trailing whitespace.
func cleanMarkdown(content string) string {
	content = excessiveLinesRe.ReplaceAllString(content, "\n\n\n")

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
