package trace

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestIndex builds SPEC <- DESIGN <- TEST:
// DESIGN's D_1 covers REQ_1 and REQ_2, TEST's T_1 covers D_1 and REQ_404.
func newTestIndex(t *testing.T) *Index {
	t.Helper()

	x := NewIndex(nil)
	for _, id := range []string{"SPEC", "DESIGN", "TEST"} {
		require.NoError(t, x.AddDocument(NewDocument(id, id+".txt")))
	}

	add := func(id, doc string, covers ...string) {
		r := NewRequirement(id, doc, doc+".txt")
		for _, c := range covers {
			r.Covers.Add(c)
		}
		require.NoError(t, x.AddRequirement(r))
	}
	add("REQ_1", "SPEC")
	add("REQ_2", "SPEC")
	add("REQ_3", "SPEC")
	add("D_1", "DESIGN", "REQ_1", "REQ_2")
	add("T_1", "TEST", "D_1", "REQ_404")
	return x
}

func TestConsolidate(t *testing.T) {
	x := newTestIndex(t)
	x.Consolidate()

	assert.Equal(t, []string{"D_1"}, x.Requirements["REQ_1"].CoveredBy.Sorted())
	assert.Equal(t, []string{"D_1"}, x.Requirements["REQ_2"].CoveredBy.Sorted())
	assert.Empty(t, x.Requirements["REQ_3"].CoveredBy)
	assert.Equal(t, []string{"T_1"}, x.Requirements["D_1"].CoveredBy.Sorted())

	assert.Equal(t, []string{"SPEC"}, x.Documents["DESIGN"].Upstream.Sorted())
	assert.Equal(t, []string{"TEST"}, x.Documents["DESIGN"].Downstream.Sorted())
	assert.Equal(t, []string{"DESIGN"}, x.Documents["SPEC"].Downstream.Sorted())
	assert.Empty(t, x.Documents["SPEC"].Upstream)
	assert.Equal(t, []string{"DESIGN"}, x.Documents["TEST"].Upstream.Sorted())

	// Undefined references are Validate's business.
	assert.True(t, x.Healthy())
}

func TestConsolidate_InverseIsFaithful(t *testing.T) {
	x := newTestIndex(t)
	x.Consolidate()

	for _, r := range x.Requirements {
		for by := range r.CoveredBy {
			assert.True(t, x.Requirements[by].Covers.Has(r.ID), "%s covered by %s", r.ID, by)
		}
		for c := range r.Covers {
			if covered, ok := x.Requirements[c]; ok {
				assert.True(t, covered.CoveredBy.Has(r.ID))
			}
		}
	}
}

func TestConsolidate_DocumentEdgesAreSymmetric(t *testing.T) {
	x := newTestIndex(t)
	x.Consolidate()

	for _, d := range x.Documents {
		for up := range d.Upstream {
			assert.True(t, x.Documents[up].Downstream.Has(d.ID))
		}
		for down := range d.Downstream {
			assert.True(t, x.Documents[down].Upstream.Has(d.ID))
		}
	}
}

func TestConsolidate_MissingDocument(t *testing.T) {
	x := NewIndex(nil)
	require.NoError(t, x.AddDocument(NewDocument("SPEC", "spec.txt")))

	up := NewRequirement("REQ_1", "SPEC", "spec.txt")
	down := NewRequirement("T_1", "GONE", "gone.txt")
	down.Covers.Add("REQ_1")
	require.NoError(t, x.AddRequirement(up))
	require.NoError(t, x.AddRequirement(down))

	x.Consolidate()

	// The requirement edge survives, the document edge is skipped.
	assert.True(t, up.CoveredBy.Has("T_1"))
	assert.Empty(t, x.Documents["SPEC"].Downstream)

	diags := x.DiagnosticsOf(KindMissingDocument)
	require.Len(t, diags, 1)
	assert.Equal(t, "Cannot find document: GONE", diags[0].Message)
}

func TestValidate(t *testing.T) {
	x := newTestIndex(t)
	x.Validate()

	diags := x.DiagnosticsOf(KindUndefinedRequirement)
	require.Len(t, diags, 1)
	assert.Equal(t, "REQ_404: Undefined requirement, referenced by: T_1 (TEST.txt)", diags[0].Message)
}

func TestComputeStatistics(t *testing.T) {
	x := newTestIndex(t)
	x.Consolidate()
	x.ComputeStatistics()

	spec := x.Documents["SPEC"]
	assert.Equal(t, 3, spec.TotalRequirements)
	assert.Equal(t, 2, spec.CoveredRequirements)

	design := x.Documents["DESIGN"]
	assert.Equal(t, 1, design.TotalRequirements)
	assert.Equal(t, 1, design.CoveredRequirements)

	test := x.Documents["TEST"]
	assert.Equal(t, 1, test.TotalRequirements)
	assert.Equal(t, 0, test.CoveredRequirements)

	total, covered := x.Totals()
	assert.Equal(t, 5, total)
	assert.Equal(t, 3, covered)
}

func TestComputeStatistics_MissingDocument(t *testing.T) {
	x := NewIndex(nil)
	require.NoError(t, x.AddRequirement(NewRequirement("REQ_1", "GONE", "gone.txt")))

	x.ComputeStatistics()

	diags := x.DiagnosticsOf(KindMissingDocument)
	require.Len(t, diags, 1)
	assert.Equal(t, "REQ_1: Cannot find parent document", diags[0].Message)
}

func TestAnalyze_Idempotent(t *testing.T) {
	x := newTestIndex(t)
	x.Analyze()

	snapshot := func() map[string][]string {
		out := make(map[string][]string)
		for id, r := range x.Requirements {
			out["req:"+id] = r.CoveredBy.Sorted()
		}
		for id, d := range x.Documents {
			out["up:"+id] = d.Upstream.Sorted()
			out["down:"+id] = d.Downstream.Sorted()
			out["count:"+id] = []string{fmt.Sprintf("%d/%d", d.CoveredRequirements, d.TotalRequirements)}
		}
		return out
	}

	first := snapshot()
	x.Consolidate()
	x.Validate()
	x.ComputeStatistics()
	assert.Equal(t, first, snapshot())
}
