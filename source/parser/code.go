package parser

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/c360studio/reqtrace/source"
)

// language binds a tree-sitter grammar to the node types holding comments.
type language struct {
	name         string
	grammar      func() *sitter.Language
	commentTypes []string
}

var languages = map[string]language{
	".go":   {name: "go", grammar: golang.GetLanguage, commentTypes: []string{"comment"}},
	".py":   {name: "python", grammar: python.GetLanguage, commentTypes: []string{"comment"}},
	".java": {name: "java", grammar: java.GetLanguage, commentTypes: []string{"line_comment", "block_comment", "comment"}},
	".js":   {name: "javascript", grammar: javascript.GetLanguage, commentTypes: []string{"comment"}},
	".mjs":  {name: "javascript", grammar: javascript.GetLanguage, commentTypes: []string{"comment"}},
	".ts":   {name: "typescript", grammar: typescript.GetLanguage, commentTypes: []string{"comment"}},
}

func languageFor(ext string) (language, bool) {
	l, ok := languages[strings.ToLower(ext)]
	return l, ok
}

// CodeParser extracts comments from source code. Each comment line becomes a
// body line with its comment markers removed, so requirement tags written in
// comments scan like prose.
type CodeParser struct{}

// NewCodeParser creates a new source code parser.
func NewCodeParser() *CodeParser {
	return &CodeParser{}
}

// Parse parses a source file and returns its comments as the body.
func (p *CodeParser) Parse(filename string, content []byte) (*source.Document, error) {
	lang, ok := languageFor(filepath.Ext(filename))
	if !ok {
		return nil, fmt.Errorf("unsupported source language: %s", filepath.Ext(filename))
	}

	// sitter.Parser is not safe for concurrent use
	sp := sitter.NewParser()
	defer sp.Close()
	sp.SetLanguage(lang.grammar())

	tree, err := sp.ParseCtx(context.Background(), nil, content)
	if err != nil {
		return nil, fmt.Errorf("parse %s source: %w", lang.name, err)
	}
	defer tree.Close()

	commentTypes := make(map[string]bool, len(lang.commentTypes))
	for _, t := range lang.commentTypes {
		commentTypes[t] = true
	}

	var lines []string
	var walk func(*sitter.Node)
	walk = func(n *sitter.Node) {
		if commentTypes[n.Type()] {
			lines = append(lines, commentLines(n.Content(content))...)
			return
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			walk(n.NamedChild(i))
		}
	}
	walk(tree.RootNode())

	return &source.Document{
		ID:          GenerateDocID(lang.name, filename, content),
		Filename:    filepath.Base(filename),
		Content:     string(content),
		Body:        strings.Join(lines, "\n"),
		Frontmatter: map[string]any{"language": lang.name},
	}, nil
}

// CanParse returns true if this parser can handle the given MIME type.
func (p *CodeParser) CanParse(mimeType string) bool {
	return mimeType == MimeSource
}

// MimeType returns the primary MIME type for this parser.
func (p *CodeParser) MimeType() string {
	return MimeSource
}

// commentLines strips comment markers from each line of a comment.
// Lines left empty after stripping are dropped.
func commentLines(comment string) []string {
	var out []string
	for _, line := range strings.Split(comment, "\n") {
		line = strings.TrimSpace(strings.TrimSuffix(line, "\r"))
		line = strings.TrimSuffix(line, "*/")
		switch {
		case strings.HasPrefix(line, "//"):
			line = strings.TrimLeft(line, "/")
		case strings.HasPrefix(line, "/*"):
			line = strings.TrimLeft(strings.TrimPrefix(line, "/"), "*")
		case strings.HasPrefix(line, "#"):
			line = strings.TrimPrefix(line, "#")
		case strings.HasPrefix(line, "*"):
			line = strings.TrimPrefix(line, "*")
		}
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}
