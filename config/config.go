// Package config provides configuration loading and pattern compilation
// for reqtrace.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/c360studio/reqtrace/pattern"
)

// ErrNoDocuments is returned when a configuration declares no documents.
var ErrNoDocuments = errors.New("no documents configured")

// DefaultRequirementPattern recognizes identifiers like REQ_1 or REQ_net-42.
const DefaultRequirementPattern = `REQ_[-a-zA-Z0-9_]*`

// DefaultNATSSubject is the subject reports are published on.
const DefaultNATSSubject = "reqtrace.report"

// Config represents the complete reqtrace configuration
type Config struct {
	Defaults  DefaultsConfig   `yaml:"defaults"`
	Documents []DocumentConfig `yaml:"documents"`
	Output    OutputConfig     `yaml:"output"`
	Watch     WatchConfig      `yaml:"watch"`

	// BaseDir anchors relative document paths. Set to the directory of the
	// file the documents were loaded from.
	BaseDir string `yaml:"-"`
}

// DefaultsConfig holds pattern settings applied to documents that leave
// them empty.
type DefaultsConfig struct {
	// Syntax is the regular expression engine: re2 or pcre
	Syntax string `yaml:"syntax"`
	// Req is the requirement definition pattern
	Req string `yaml:"req"`
	// Ref is the reference pattern
	Ref string `yaml:"ref"`
}

// DocumentConfig configures one traced document.
type DocumentConfig struct {
	// ID identifies the document; derived from the file name when empty
	ID string `yaml:"id"`
	// Path is a file or a doublestar glob (docs/**/*.md)
	Path string `yaml:"path"`
	// Format forces a parser: text, markdown, rst, asciidoc, html, pdf, code
	Format string `yaml:"format,omitempty"`
	// Preset names a built-in pattern set
	Preset string `yaml:"preset,omitempty"`
	// StartAfter opens scanning at the first matching line
	StartAfter string `yaml:"start_after,omitempty"`
	// StopAfter ends scanning at the first matching line
	StopAfter string `yaml:"stop_after,omitempty"`
	// Req is the requirement definition pattern
	Req string `yaml:"req,omitempty"`
	// Ref is the reference pattern
	Ref string `yaml:"ref,omitempty"`
	// Syntax overrides defaults.syntax
	Syntax string `yaml:"syntax,omitempty"`
}

// OutputConfig configures report sinks.
type OutputConfig struct {
	// MetricsFile is a Prometheus textfile path (empty = disabled)
	MetricsFile string `yaml:"metrics_file"`
	// NATSURL is the NATS server URL (empty = disabled)
	NATSURL string `yaml:"nats_url"`
	// NATSSubject is the subject JSON reports are published on
	NATSSubject string `yaml:"nats_subject"`
}

// WatchConfig configures watch mode.
type WatchConfig struct {
	// DebounceDelay is the quiet time before a rescan
	DebounceDelay time.Duration `yaml:"debounce_delay"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Defaults: DefaultsConfig{
			Syntax: string(pattern.SyntaxRE2),
			Req:    DefaultRequirementPattern,
		},
		Output: OutputConfig{
			NATSSubject: DefaultNATSSubject,
		},
		Watch: WatchConfig{
			DebounceDelay: 500 * time.Millisecond,
		},
	}
}

// DocumentID returns the configured id, or the file name without extension.
func (d DocumentConfig) DocumentID() string {
	if d.ID != "" {
		return d.ID
	}
	if containsGlob(d.Path) {
		return ""
	}
	base := filepath.Base(d.Path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if len(c.Documents) == 0 {
		return ErrNoDocuments
	}
	if c.Defaults.Syntax != "" && !pattern.ValidSyntax(pattern.Syntax(c.Defaults.Syntax)) {
		return fmt.Errorf("defaults.syntax: unknown syntax %q", c.Defaults.Syntax)
	}
	if c.Watch.DebounceDelay < 0 {
		return fmt.Errorf("watch.debounce_delay must not be negative")
	}

	seen := make(map[string]int, len(c.Documents))
	for i, d := range c.Documents {
		if d.Path == "" {
			return fmt.Errorf("documents[%d].path is required", i)
		}
		id := d.DocumentID()
		if id == "" {
			return fmt.Errorf("documents[%d].id is required for glob path %q", i, d.Path)
		}
		if prev, ok := seen[id]; ok {
			return fmt.Errorf("documents[%d]: duplicate document id %q (also documents[%d])", i, id, prev)
		}
		seen[id] = i
		if d.Syntax != "" && !pattern.ValidSyntax(pattern.Syntax(d.Syntax)) {
			return fmt.Errorf("documents[%d].syntax: unknown syntax %q", i, d.Syntax)
		}
		if d.Preset != "" {
			if _, ok := Presets[d.Preset]; !ok {
				return fmt.Errorf("documents[%d].preset: unknown preset %q", i, d.Preset)
			}
		}
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file. Only the fields present
// in the file are set, so the result can be merged over another layer.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := &Config{}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if abs, err := filepath.Abs(filepath.Dir(path)); err == nil {
		config.BaseDir = abs
	} else {
		config.BaseDir = filepath.Dir(path)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for non-zero values).
// A non-empty document list replaces the current one along with its BaseDir.
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	// Defaults
	if other.Defaults.Syntax != "" {
		c.Defaults.Syntax = other.Defaults.Syntax
	}
	if other.Defaults.Req != "" {
		c.Defaults.Req = other.Defaults.Req
	}
	if other.Defaults.Ref != "" {
		c.Defaults.Ref = other.Defaults.Ref
	}

	// Documents
	if len(other.Documents) > 0 {
		c.Documents = other.Documents
		c.BaseDir = other.BaseDir
	}

	// Output
	if other.Output.MetricsFile != "" {
		c.Output.MetricsFile = other.Output.MetricsFile
	}
	if other.Output.NATSURL != "" {
		c.Output.NATSURL = other.Output.NATSURL
	}
	if other.Output.NATSSubject != "" {
		c.Output.NATSSubject = other.Output.NATSSubject
	}

	// Watch
	if other.Watch.DebounceDelay != 0 {
		c.Watch.DebounceDelay = other.Watch.DebounceDelay
	}
}

// Starter returns the configuration written by "reqtrace init".
func Starter() *Config {
	c := DefaultConfig()
	c.Defaults.Ref = `Covers: *(REQ_[-a-zA-Z0-9_]*)`
	c.Documents = []DocumentConfig{
		{ID: "SPEC", Path: "docs/spec.md"},
		{ID: "DESIGN", Path: "docs/design/**/*.md"},
	}
	return c
}
