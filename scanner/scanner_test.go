package scanner

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/reqtrace/pattern"
	"github.com/c360studio/reqtrace/trace"
)

type docPatterns struct {
	start, stop, req, ref string
}

func newDoc(t *testing.T, id string, p docPatterns) *trace.Document {
	t.Helper()
	d := trace.NewDocument(id, strings.ToLower(id)+".txt")
	d.StartAfter = pattern.MustCompile(p.start, pattern.SyntaxRE2)
	d.StopAfter = pattern.MustCompile(p.stop, pattern.SyntaxRE2)
	d.Definition = pattern.MustCompile(p.req, pattern.SyntaxRE2)
	d.Reference = pattern.MustCompile(p.ref, pattern.SyntaxRE2)
	return d
}

func newRun(t *testing.T, docs ...*trace.Document) *trace.Index {
	t.Helper()
	x := trace.NewIndex(nil)
	for _, d := range docs {
		require.NoError(t, x.AddDocument(d))
	}
	return x
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "ok", OK.String())
	assert.Equal(t, "not-started", NotStarted.String())
	assert.Equal(t, "stop-reached", StopReached.String())
	assert.Equal(t, "unknown", Status(42).String())
}

func TestScanner_DefinitionsAndText(t *testing.T) {
	doc := newDoc(t, "SPEC", docPatterns{req: `^(REQ_[0-9]+):`})
	x := newRun(t, doc)

	s := New(x, doc, "spec.txt", nil)
	status := s.Scan([]string{
		"Introduction, not a requirement.",
		"REQ_1: The system shall start.",
		"It shall start quickly.",
		"REQ_2: The system shall stop.",
	})
	assert.Equal(t, OK, status)
	assert.True(t, x.Healthy())

	require.Len(t, x.Requirements, 2)
	r1 := x.Requirements["REQ_1"]
	assert.Equal(t, "SPEC", r1.DocumentID)
	assert.Equal(t, "spec.txt", r1.DocumentPath)
	assert.Equal(t, " The system shall start.\nIt shall start quickly.", r1.Text)

	// The last requirement is flushed by Finish.
	assert.Equal(t, " The system shall stop.", x.Requirements["REQ_2"].Text)
	assert.Empty(t, s.Current())
}

func TestScanner_TextNotFlushedUntilClosed(t *testing.T) {
	doc := newDoc(t, "SPEC", docPatterns{req: `REQ_[0-9]+`})
	x := newRun(t, doc)
	s := New(x, doc, "spec.txt", nil)

	assert.Equal(t, OK, s.ProcessBlock("REQ_1 first"))
	assert.Equal(t, OK, s.ProcessBlock("more"))
	assert.Equal(t, "REQ_1", s.Current())
	assert.Empty(t, x.Requirements["REQ_1"].Text)

	s.ProcessBlock("REQ_2 second")
	assert.Equal(t, " first\nmore", x.Requirements["REQ_1"].Text)
	assert.Empty(t, x.Requirements["REQ_2"].Text)

	s.Finish()
	assert.Equal(t, " second", x.Requirements["REQ_2"].Text)
}

func TestScanner_References(t *testing.T) {
	doc := newDoc(t, "TEST", docPatterns{req: `^(T_[0-9]+)`, ref: `Ref: *(REQ_[0-9]+)`})
	x := newRun(t, doc)

	New(x, doc, "test.txt", nil).Scan([]string{
		"T_1 checks start",
		"Ref: REQ_1 Ref: REQ_2",
		"Ref: REQ_1",
		"T_2 checks stop",
		"Ref: REQ_3",
	})

	assert.Equal(t, []string{"REQ_1", "REQ_2"}, x.Requirements["T_1"].Covers.Sorted())
	assert.Equal(t, []string{"REQ_3"}, x.Requirements["T_2"].Covers.Sorted())
	assert.Empty(t, x.Requirements["T_1"].CoveredBy)
	assert.True(t, x.Healthy())
}

func TestScanner_ReferenceWithoutContext(t *testing.T) {
	doc := newDoc(t, "TEST", docPatterns{req: `^T_[0-9]+`, ref: `REQ_[0-9]+`})
	x := newRun(t, doc)

	New(x, doc, "test.txt", nil).Scan([]string{
		"See REQ_1 before anything is defined.",
		"T_1 test",
	})

	diags := x.DiagnosticsOf(trace.KindReferenceWithoutContext)
	require.Len(t, diags, 1)
	assert.Equal(t, "REQ_1: Reference, but no current requirement, file: test.txt", diags[0].Message)
	assert.Empty(t, x.Requirements["T_1"].Covers)
}

func TestScanner_ReferenceOnDefinitionLineBelongsToPrevious(t *testing.T) {
	doc := newDoc(t, "DESIGN", docPatterns{req: `^(D_[0-9]+)`, ref: `REQ_[0-9]+`})
	x := newRun(t, doc)

	New(x, doc, "design.txt", nil).Scan([]string{
		"D_1 first design item",
		"D_2 covers REQ_7",
	})

	assert.True(t, x.Requirements["D_1"].Covers.Has("REQ_7"))
	assert.Empty(t, x.Requirements["D_2"].Covers)
}

func TestScanner_DuplicateRequirement(t *testing.T) {
	spec := newDoc(t, "SPEC", docPatterns{req: `^REQ_[0-9]+`})
	other := newDoc(t, "OTHER", docPatterns{req: `^REQ_[0-9]+`})
	x := newRun(t, spec, other)

	New(x, spec, "spec.txt", nil).Scan([]string{"REQ_1 original"})
	New(x, other, "other.txt", nil).Scan([]string{
		"REQ_9 open requirement",
		"text that belongs to REQ_9",
		"REQ_1 redefined",
		"text after the duplicate",
	})

	diags := x.DiagnosticsOf(trace.KindDuplicateRequirement)
	require.Len(t, diags, 1)
	assert.Equal(t, "REQ_1: Duplicate requirement in documents 'spec.txt' and 'other.txt'", diags[0].Message)

	// First definition survives untouched.
	r1 := x.Requirements["REQ_1"]
	assert.Equal(t, "SPEC", r1.DocumentID)
	assert.Equal(t, " original", r1.Text)

	// The requirement open at the duplicate loses its accumulated text.
	assert.Empty(t, x.Requirements["REQ_9"].Text)
}

func TestScanner_DuplicateInSameDocument(t *testing.T) {
	doc := newDoc(t, "SPEC", docPatterns{req: `^REQ_[0-9]+`, ref: `see (REQ_[0-9]+)`})
	x := newRun(t, doc)

	New(x, doc, "spec.txt", nil).Scan([]string{
		"REQ_1 a",
		"REQ_1 b",
		"see REQ_5",
	})

	assert.Len(t, x.DiagnosticsOf(trace.KindDuplicateRequirement), 1)
	// No requirement is open after the duplicate.
	assert.Len(t, x.DiagnosticsOf(trace.KindReferenceWithoutContext), 1)
	assert.Len(t, x.Requirements, 1)
}

func TestScanner_SelfReference(t *testing.T) {
	doc := newDoc(t, "SPEC", docPatterns{req: `REQ_[0-9]+`, ref: `<(REQ_[0-9]+)>`})
	x := newRun(t, doc)

	New(x, doc, "spec.txt", nil).Scan([]string{
		"REQ_1 some text",
		"covers <REQ_1>",
	})

	// The second line is reference-only: REQ_1 stays open and covers itself.
	require.Len(t, x.Requirements, 1)
	r := x.Requirements["REQ_1"]
	assert.True(t, r.Covers.Has("REQ_1"))
	assert.Equal(t, " some text\ncovers <>", r.Text)
	assert.True(t, x.Healthy())
}

func TestScanner_StartAfter(t *testing.T) {
	doc := newDoc(t, "SPEC", docPatterns{start: `BEGIN`, req: `REQ_[0-9]+`})
	x := newRun(t, doc)
	s := New(x, doc, "spec.txt", nil)

	assert.False(t, s.Acquiring())
	assert.Equal(t, NotStarted, s.ProcessBlock("noise REQ_0"))
	assert.Empty(t, x.Requirements)

	assert.Equal(t, OK, s.ProcessBlock("BEGIN"))
	assert.True(t, s.Acquiring())
	assert.Empty(t, x.Requirements)

	assert.Equal(t, OK, s.ProcessBlock("REQ_1: text"))
	s.Finish()

	require.Len(t, x.Requirements, 1)
	assert.Equal(t, ": text", x.Requirements["REQ_1"].Text)
}

func TestScanner_StartLineIsScanned(t *testing.T) {
	doc := newDoc(t, "SPEC", docPatterns{start: `^BEGIN`, req: `REQ_[0-9]+`})
	x := newRun(t, doc)

	New(x, doc, "spec.txt", nil).Scan([]string{"BEGIN REQ_1"})
	assert.Contains(t, x.Requirements, "REQ_1")
}

func TestScanner_StopAfter(t *testing.T) {
	doc := newDoc(t, "SPEC", docPatterns{stop: `END`, req: `REQ_[0-9]+`, ref: `see (REQ_[0-9]+)`})
	x := newRun(t, doc)
	s := New(x, doc, "spec.txt", nil)

	assert.Equal(t, OK, s.ProcessBlock("REQ_1 first"))
	assert.Equal(t, StopReached, s.ProcessBlock("REQ_2 END see REQ_8"))
	s.Finish()

	assert.NotContains(t, x.Requirements, "REQ_2")
	assert.Empty(t, x.Requirements["REQ_1"].Covers)
	assert.Equal(t, " first", x.Requirements["REQ_1"].Text)
}

func TestScanner_ScanStopsAtMarker(t *testing.T) {
	doc := newDoc(t, "SPEC", docPatterns{stop: `^Annex`, req: `REQ_[0-9]+`})
	x := newRun(t, doc)

	status := New(x, doc, "spec.txt", nil).Scan([]string{
		"REQ_1 kept",
		"Annex A",
		"REQ_2 never scanned",
	})

	assert.Equal(t, StopReached, status)
	assert.Contains(t, x.Requirements, "REQ_1")
	assert.NotContains(t, x.Requirements, "REQ_2")
	assert.Equal(t, " kept", x.Requirements["REQ_1"].Text)
}

func TestScanner_DisabledPatterns(t *testing.T) {
	doc := trace.NewDocument("EMPTY", "empty.txt")
	x := newRun(t, doc)

	status := New(x, doc, "empty.txt", nil).Scan([]string{"REQ_1", "REQ_2"})
	assert.Equal(t, OK, status)
	assert.Empty(t, x.Requirements)
	assert.True(t, x.Healthy())
}

func TestScanner_OversizedDefinition(t *testing.T) {
	doc := newDoc(t, "SPEC", docPatterns{req: `REQ_[A-Z]+`})
	x := newRun(t, doc)

	New(x, doc, "spec.txt", nil).Scan([]string{
		"REQ_" + strings.Repeat("X", pattern.MaxCaptureSize),
	})

	diags := x.DiagnosticsOf(trace.KindOversizedMatch)
	require.Len(t, diags, 1)
	assert.Equal(t, "Requirement size too big (4099)", diags[0].Message)
	assert.Empty(t, x.Requirements)
}

func TestScanner_EmptyLinesInText(t *testing.T) {
	doc := newDoc(t, "SPEC", docPatterns{req: `^REQ_[0-9]+$`})
	x := newRun(t, doc)

	New(x, doc, "spec.txt", nil).Scan([]string{"REQ_1", "first", "", "second"})

	// The definition line is empty once the id is erased and is not kept
	// as a leading blank line.
	assert.Equal(t, "first\n\nsecond", x.Requirements["REQ_1"].Text)
}
