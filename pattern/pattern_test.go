package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompile(t *testing.T) {
	tests := []struct {
		name    string
		expr    string
		syntax  Syntax
		wantNil bool
		wantErr bool
	}{
		{name: "empty disables", expr: "", syntax: SyntaxRE2, wantNil: true},
		{name: "re2 default", expr: `REQ_[0-9]+`, syntax: ""},
		{name: "re2 explicit", expr: `REQ_[0-9]+`, syntax: SyntaxRE2},
		{name: "pcre", expr: `REQ_(?=[0-9])[0-9]+`, syntax: SyntaxPCRE},
		{name: "re2 rejects lookahead", expr: `REQ_(?=[0-9])`, syntax: SyntaxRE2, wantErr: true},
		{name: "invalid expression", expr: `REQ_[`, syntax: SyntaxRE2, wantErr: true},
		{name: "unknown syntax", expr: `REQ`, syntax: "posix", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Compile(tt.expr, tt.syntax)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.wantNil {
				assert.Nil(t, p)
			} else {
				require.NotNil(t, p)
				assert.Equal(t, tt.expr, p.String())
			}
		})
	}
}

func TestFind_GroupSpans(t *testing.T) {
	for _, syntax := range []Syntax{SyntaxRE2, SyntaxPCRE} {
		t.Run(string(syntax), func(t *testing.T) {
			p := MustCompile(`<(REQ_[0-9]+)>(x)?`, syntax)

			m, err := p.Find("ex: <REQ_123> (comment)")
			require.NoError(t, err)
			require.NotNil(t, m)
			require.Len(t, m.Groups, 3)

			assert.Equal(t, Span{Start: 4, End: 13}, m.Whole())
			assert.Equal(t, Span{Start: 5, End: 12}, m.Groups[1])
			assert.False(t, m.Groups[2].Participated())

			m, err = p.Find("nothing here")
			require.NoError(t, err)
			assert.Nil(t, m)
		})
	}
}

func TestFind_PCREByteOffsets(t *testing.T) {
	p := MustCompile(`(REQ_[0-9]+)`, SyntaxPCRE)

	text := "é→ REQ_7"
	m, err := p.Find(text)
	require.NoError(t, err)
	require.NotNil(t, m)

	span := m.Groups[1]
	assert.Equal(t, "REQ_7", text[span.Start:span.End])
}

func TestMatch_Preferred(t *testing.T) {
	tests := []struct {
		name   string
		groups []Span
		want   Span
		wantOK bool
	}{
		{
			name:   "whole match only",
			groups: []Span{{0, 5}},
			want:   Span{0, 5},
			wantOK: true,
		},
		{
			name:   "inner group wins",
			groups: []Span{{0, 9}, {1, 8}},
			want:   Span{1, 8},
			wantOK: true,
		},
		{
			name:   "non-participating last group skipped",
			groups: []Span{{0, 9}, {1, 8}, {-1, -1}},
			want:   Span{1, 8},
			wantOK: true,
		},
		{
			name:   "empty inner group falls back to whole",
			groups: []Span{{0, 4}, {4, 4}},
			want:   Span{0, 4},
			wantOK: true,
		},
		{
			name:   "empty match",
			groups: []Span{{3, 3}},
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Match{Groups: tt.groups}
			got, ok := m.Preferred()
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestValidSyntax(t *testing.T) {
	assert.True(t, ValidSyntax(""))
	assert.True(t, ValidSyntax(SyntaxRE2))
	assert.True(t, ValidSyntax(SyntaxPCRE))
	assert.False(t, ValidSyntax("glob"))
}
