// Package pattern compiles requirement patterns and extracts identifiers
// from lines of text.
//
// A pattern exposes its capture groups as byte spans. The extractor prefers
// the most specific group: groups are scanned from the highest index down to
// group 0 (the whole match) and the first non-empty span wins. This lets one
// expression describe a decorated token such as <REQ_123> while yielding the
// inner REQ_123.
package pattern

import (
	"fmt"
	"regexp"
	"time"

	"github.com/dlclark/regexp2"
)

// Syntax selects the regular expression engine used to compile a pattern.
type Syntax string

const (
	// SyntaxRE2 compiles with the standard library (RE2 syntax, linear time).
	SyntaxRE2 Syntax = "re2"

	// SyntaxPCRE compiles with regexp2 (Perl/.NET syntax: backreferences,
	// lookaround).
	SyntaxPCRE Syntax = "pcre"
)

// pcreMatchTimeout bounds a single regexp2 match so a pathological
// expression degrades to an error instead of hanging a scan.
const pcreMatchTimeout = 2 * time.Second

// Span is a half-open byte range [Start, End) in the matched text.
// A group that did not take part in the match has Start == -1.
type Span struct {
	Start int
	End   int
}

// Participated reports whether the group took part in the match.
func (s Span) Participated() bool {
	return s.Start >= 0 && s.End >= s.Start
}

// Len returns the span length in bytes, 0 for a non-participating group.
func (s Span) Len() int {
	if !s.Participated() {
		return 0
	}
	return s.End - s.Start
}

// Match is the structured result of one pattern application.
// Groups[0] is the whole match; Groups[i] is capture group i.
type Match struct {
	Groups []Span
}

// Whole returns the span of the entire match.
func (m *Match) Whole() Span {
	return m.Groups[0]
}

// Preferred returns the most specific non-empty span: the highest-numbered
// group with a non-empty capture, falling back to the whole match.
func (m *Match) Preferred() (Span, bool) {
	for i := len(m.Groups) - 1; i >= 0; i-- {
		if m.Groups[i].Len() > 0 {
			return m.Groups[i], true
		}
	}
	return Span{Start: -1, End: -1}, false
}

// Pattern is a compiled expression with numbered capture groups.
type Pattern interface {
	// Find applies the pattern once. It returns nil, nil when nothing matches.
	Find(text string) (*Match, error)

	// String returns the source expression.
	String() string
}

// Compile compiles expr with the given engine. An empty expression yields a
// nil Pattern and no error: the feature it drives is disabled.
func Compile(expr string, syntax Syntax) (Pattern, error) {
	if expr == "" {
		return nil, nil
	}

	switch syntax {
	case "", SyntaxRE2:
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("compile pattern %q: %w", expr, err)
		}
		return &re2Pattern{re: re}, nil

	case SyntaxPCRE:
		re, err := regexp2.Compile(expr, regexp2.None)
		if err != nil {
			return nil, fmt.Errorf("compile pattern %q: %w", expr, err)
		}
		re.MatchTimeout = pcreMatchTimeout
		return &pcrePattern{re: re}, nil

	default:
		return nil, fmt.Errorf("unknown pattern syntax: %s", syntax)
	}
}

// MustCompile is like Compile but panics on error. Intended for tests and
// package-level presets.
func MustCompile(expr string, syntax Syntax) Pattern {
	p, err := Compile(expr, syntax)
	if err != nil {
		panic(err)
	}
	return p
}

// ValidSyntax reports whether s names a supported engine. The empty string
// selects the default engine.
func ValidSyntax(s Syntax) bool {
	switch s {
	case "", SyntaxRE2, SyntaxPCRE:
		return true
	default:
		return false
	}
}

type re2Pattern struct {
	re *regexp.Regexp
}

func (p *re2Pattern) Find(text string) (*Match, error) {
	idx := p.re.FindStringSubmatchIndex(text)
	if idx == nil {
		return nil, nil
	}
	m := &Match{Groups: make([]Span, len(idx)/2)}
	for i := range m.Groups {
		m.Groups[i] = Span{Start: idx[2*i], End: idx[2*i+1]}
	}
	return m, nil
}

func (p *re2Pattern) String() string {
	return p.re.String()
}

type pcrePattern struct {
	re *regexp2.Regexp
}

// Find converts regexp2's rune offsets to byte offsets.
func (p *pcrePattern) Find(text string) (*Match, error) {
	rm, err := p.re.FindStringMatch(text)
	if err != nil {
		return nil, fmt.Errorf("match pattern %q: %w", p.re.String(), err)
	}
	if rm == nil {
		return nil, nil
	}

	offsets := make([]int, 0, len(text)+1)
	for i := range text {
		offsets = append(offsets, i)
	}
	offsets = append(offsets, len(text))

	groups := rm.Groups()
	m := &Match{Groups: make([]Span, len(groups))}
	for i, g := range groups {
		if len(g.Captures) == 0 {
			m.Groups[i] = Span{Start: -1, End: -1}
			continue
		}
		m.Groups[i] = Span{
			Start: offsets[g.Index],
			End:   offsets[g.Index+g.Length],
		}
	}
	return m, nil
}

func (p *pcrePattern) String() string {
	return p.re.String()
}
