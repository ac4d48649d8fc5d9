package trace

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDSet(t *testing.T) {
	s := NewIDSet("REQ_10", "REQ_2")

	assert.True(t, s.Add("REQ_1"))
	assert.False(t, s.Add("REQ_1"))
	assert.True(t, s.Has("REQ_2"))
	assert.False(t, s.Has("REQ_3"))
	assert.Equal(t, []string{"REQ_1", "REQ_2", "REQ_10"}, s.Sorted())

	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `["REQ_1","REQ_2","REQ_10"]`, string(data))

	data, err = json.Marshal(NewIDSet())
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(data))

	empty := NewIDSet().Sorted()
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestIndex_AddRequirement(t *testing.T) {
	x := NewIndex(nil)

	first := NewRequirement("REQ_1", "SPEC", "spec.txt")
	require.NoError(t, x.AddRequirement(first))

	err := x.AddRequirement(NewRequirement("REQ_1", "TEST", "test.txt"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicate))

	got, ok := x.Requirement("REQ_1")
	require.True(t, ok)
	assert.Same(t, first, got)
	assert.Equal(t, "SPEC", got.DocumentID)
}

func TestIndex_AddDocument(t *testing.T) {
	x := NewIndex(nil)

	require.NoError(t, x.AddDocument(NewDocument("SPEC", "spec.txt")))
	err := x.AddDocument(NewDocument("SPEC", "other.txt"))
	assert.True(t, errors.Is(err, ErrDuplicate))

	d, ok := x.Document("SPEC")
	require.True(t, ok)
	assert.Equal(t, "spec.txt", d.Path)
}

func TestIndex_MustRequirement(t *testing.T) {
	x := NewIndex(nil)
	_, err := x.MustRequirement("REQ_404")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestIndex_OrderedAccessors(t *testing.T) {
	x := NewIndex(nil)
	require.NoError(t, x.AddDocument(NewDocument("TEST", "t.txt")))
	require.NoError(t, x.AddDocument(NewDocument("SPEC", "s.txt")))
	require.NoError(t, x.AddRequirement(NewRequirement("REQ_10", "SPEC", "s.txt")))
	require.NoError(t, x.AddRequirement(NewRequirement("REQ_2", "SPEC", "s.txt")))
	require.NoError(t, x.AddRequirement(NewRequirement("T_1", "TEST", "t.txt")))

	assert.Equal(t, []string{"SPEC", "TEST"}, x.DocumentIDs())
	assert.Equal(t, []string{"REQ_2", "REQ_10", "T_1"}, x.RequirementIDs())

	owned := x.RequirementsOf("SPEC")
	require.Len(t, owned, 2)
	assert.Equal(t, "REQ_2", owned[0].ID)
	assert.Equal(t, "REQ_10", owned[1].ID)
}

func TestIndex_Diagnostics(t *testing.T) {
	x := NewIndex(nil)
	assert.True(t, x.Healthy())

	x.Reportf(KindDuplicateRequirement, "%s: dup", "REQ_1")
	x.Reportf(KindUndefinedRequirement, "%s: undefined", "REQ_2")
	x.Reportf(KindDuplicateRequirement, "%s: dup", "REQ_3")

	assert.False(t, x.Healthy())
	assert.Equal(t, []string{"REQ_1: dup", "REQ_2: undefined", "REQ_3: dup"}, x.Messages())
	assert.Len(t, x.DiagnosticsOf(KindDuplicateRequirement), 2)
	assert.Empty(t, x.DiagnosticsOf(KindLineTooLong))
}

func TestDocument_Coverage(t *testing.T) {
	d := NewDocument("SPEC", "spec.txt")
	assert.Zero(t, d.Coverage())

	d.TotalRequirements = 4
	d.CoveredRequirements = 3
	assert.InDelta(t, 0.75, d.Coverage(), 1e-9)

	assert.Equal(t, []string{"spec.txt"}, d.SourceFiles())
	d.Files = []string{"a.txt", "b.txt"}
	assert.Equal(t, []string{"a.txt", "b.txt"}, d.SourceFiles())
}

func TestDocument_Clone(t *testing.T) {
	d := NewDocument("SPEC", "spec.txt")
	d.Files = []string{"a.txt"}
	d.Upstream.Add("DESIGN")
	d.TotalRequirements = 3

	c := d.Clone()
	assert.Equal(t, "SPEC", c.ID)
	assert.Equal(t, []string{"a.txt"}, c.Files)
	assert.Empty(t, c.Upstream)
	assert.Zero(t, c.TotalRequirements)

	c.Files[0] = "b.txt"
	assert.Equal(t, "a.txt", d.Files[0])
}
