package config

import (
	"fmt"
	"path/filepath"

	"github.com/c360studio/reqtrace/pattern"
	"github.com/c360studio/reqtrace/trace"
)

// Compile validates the configuration and turns each document entry into a
// trace.Document with compiled patterns, in configuration order.
//
// A field set on the document wins over its preset, which wins over
// defaults, which fall back to DefaultRequirementPattern for definitions.
// Start and stop markers have no default.
func (c *Config) Compile() ([]*trace.Document, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	docs := make([]*trace.Document, 0, len(c.Documents))
	for _, dc := range c.Documents {
		doc, err := c.compileDocument(dc)
		if err != nil {
			return nil, fmt.Errorf("document %s: %w", dc.DocumentID(), err)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (c *Config) compileDocument(dc DocumentConfig) (*trace.Document, error) {
	preset := Presets[dc.Preset]
	syntax := pattern.Syntax(firstNonEmpty(dc.Syntax, preset.Syntax, c.Defaults.Syntax, string(pattern.SyntaxRE2)))

	path := dc.Path
	if !filepath.IsAbs(path) && c.BaseDir != "" {
		path = filepath.Join(c.BaseDir, path)
	}

	doc := trace.NewDocument(dc.DocumentID(), path)
	doc.Format = dc.Format

	fields := []struct {
		name string
		expr string
		dst  *pattern.Pattern
	}{
		{"start_after", firstNonEmpty(dc.StartAfter, preset.StartAfter), &doc.StartAfter},
		{"stop_after", firstNonEmpty(dc.StopAfter, preset.StopAfter), &doc.StopAfter},
		{"req", firstNonEmpty(dc.Req, preset.Req, c.Defaults.Req, DefaultRequirementPattern), &doc.Definition},
		{"ref", firstNonEmpty(dc.Ref, preset.Ref, c.Defaults.Ref), &doc.Reference},
	}
	for _, f := range fields {
		p, err := pattern.Compile(f.expr, syntax)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.name, err)
		}
		*f.dst = p
	}

	return doc, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
