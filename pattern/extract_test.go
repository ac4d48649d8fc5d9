package pattern

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractFirst(t *testing.T) {
	tests := []struct {
		name     string
		expr     string
		text     string
		erase    bool
		wantID   string
		wantRest string
	}{
		{
			name:     "no groups returns whole match",
			expr:     `REQ_[-a-zA-Z_0-9]*`,
			text:     "ex: REQ_123 (comment)",
			wantID:   "REQ_123",
			wantRest: "ex: REQ_123 (comment)",
		},
		{
			name:     "inner group preferred over decorated form",
			expr:     `<(REQ_[-a-zA-Z_0-9]*)>`,
			text:     "ex: <REQ_123> (comment)",
			wantID:   "REQ_123",
			wantRest: "ex: <REQ_123> (comment)",
		},
		{
			name:     "erase removes the whole match",
			expr:     `<(REQ_[-a-zA-Z_0-9]*)>`,
			text:     "ex: <REQ_123> (comment)",
			erase:    true,
			wantID:   "REQ_123",
			wantRest: "ex:  (comment)",
		},
		{
			name:     "only the inner of two groups matches",
			expr:     `(?:(\[[A-Z]+\])|<(REQ_[0-9]+)>)`,
			text:     "see <REQ_9>",
			wantID:   "REQ_9",
			wantRest: "see <REQ_9>",
		},
		{
			name:     "no match leaves text unchanged",
			expr:     `REQ_[0-9]+`,
			text:     "plain prose",
			erase:    true,
			wantID:   "",
			wantRest: "plain prose",
		},
		{
			name:     "empty match yields nothing",
			expr:     `x*`,
			text:     "abc",
			wantID:   "",
			wantRest: "abc",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := MustCompile(tt.expr, SyntaxRE2)
			id, rest, err := ExtractFirst(p, tt.text, tt.erase)
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, id)
			assert.Equal(t, tt.wantRest, rest)
		})
	}
}

func TestExtractFirst_NilPattern(t *testing.T) {
	id, rest, err := ExtractFirst(nil, "REQ_1", true)
	require.NoError(t, err)
	assert.Empty(t, id)
	assert.Equal(t, "REQ_1", rest)
}

func TestExtractFirst_TooLarge(t *testing.T) {
	p := MustCompile(`REQ_[A-Z]+`, SyntaxRE2)
	text := "REQ_" + strings.Repeat("A", MaxCaptureSize)

	id, rest, err := ExtractFirst(p, text, true)
	require.Error(t, err)

	var sizeErr *CaptureSizeError
	require.True(t, errors.As(err, &sizeErr))
	assert.Equal(t, MaxCaptureSize+4, sizeErr.Size)
	assert.Empty(t, id)
	assert.Empty(t, rest)
}

func TestExtractAll(t *testing.T) {
	tests := []struct {
		name string
		expr string
		text string
		want []string
	}{
		{
			name: "several references",
			expr: `REQ_[0-9]+`,
			text: "covers REQ_1, REQ_2 and REQ_3",
			want: []string{"REQ_1", "REQ_2", "REQ_3"},
		},
		{
			name: "duplicates collapse",
			expr: `REQ_[0-9]+`,
			text: "REQ_1 REQ_2 REQ_1",
			want: []string{"REQ_1", "REQ_2"},
		},
		{
			name: "inner group with decoration",
			expr: `<(REQ_[0-9]+)>`,
			text: "<REQ_1><REQ_2>",
			want: []string{"REQ_1", "REQ_2"},
		},
		{
			name: "no match",
			expr: `REQ_[0-9]+`,
			text: "nothing",
			want: nil,
		},
		{
			name: "empty matches terminate",
			expr: `[0-9]*`,
			text: "abc",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := MustCompile(tt.expr, SyntaxRE2)
			got, err := ExtractAll(p, tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractAll_NilPattern(t *testing.T) {
	got, err := ExtractAll(nil, "REQ_1")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestExtractAll_TooLargeStops(t *testing.T) {
	p := MustCompile(`REQ_[A-Z]+`, SyntaxRE2)
	text := "REQ_A " + "REQ_" + strings.Repeat("B", MaxCaptureSize) + " REQ_C"

	got, err := ExtractAll(p, text)
	require.ErrorIs(t, err, ErrCaptureTooLarge)
	assert.Equal(t, []string{"REQ_A"}, got)
}

func TestMatches_StopsWhenConsumerStops(t *testing.T) {
	p := MustCompile(`REQ_[0-9]+`, SyntaxRE2)

	var got []string
	for id, err := range Matches(p, "REQ_1 REQ_2 REQ_3") {
		require.NoError(t, err)
		got = append(got, id)
		if len(got) == 2 {
			break
		}
	}
	assert.Equal(t, []string{"REQ_1", "REQ_2"}, got)
}

func TestMatches_PCRE(t *testing.T) {
	p := MustCompile(`(?<=ref:)(REQ_[0-9]+)`, SyntaxPCRE)

	got, err := ExtractAll(p, "ref:REQ_4 REQ_5 ref:REQ_6")
	require.NoError(t, err)
	assert.Equal(t, []string{"REQ_4", "REQ_6"}, got)
}
