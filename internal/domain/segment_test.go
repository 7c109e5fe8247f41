package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"secretwheel/internal/domain"
)

func TestSegmentSet_AppendIgnoresBlank(t *testing.T) {
	set := domain.NewSegmentSet()

	for _, label := range []string{"", "   ", "\t\n"} {
		_, err := set.Append(label)
		assert.ErrorIs(t, err, domain.ErrInvalidLabel)
	}
	assert.Equal(t, 0, set.Size())
}

func TestSegmentSet_AppendTrims(t *testing.T) {
	set := domain.NewSegmentSet()

	seg, err := set.Append("  x  ")
	require.NoError(t, err)

	assert.Equal(t, domain.Segment{Index: 0, Label: "x"}, seg)
	label, err := set.LabelAt(0)
	require.NoError(t, err)
	assert.Equal(t, "x", label)
}

func TestSegmentSet_AppendNormalizesToNFC(t *testing.T) {
	set := domain.NewSegmentSet()

	_, err := set.Append("cafe\u0301")
	require.NoError(t, err)

	label, _ := set.LabelAt(0)
	assert.Equal(t, "caf\u00e9", label)
}

func TestSegmentSet_IndicesFollowInsertionOrder(t *testing.T) {
	set := segmentSetOf("A", "B", "C")

	assert.Equal(t, 3, set.Size())
	assert.Equal(t, []string{"A", "B", "C"}, set.All())
	assert.Equal(t, []domain.Segment{
		{Index: 0, Label: "A"},
		{Index: 1, Label: "B"},
		{Index: 2, Label: "C"},
	}, set.Segments())
}

func TestSegmentSet_LabelAtOutOfRange(t *testing.T) {
	set := segmentSetOf("A")

	for _, idx := range []int{-1, 1, 5} {
		_, err := set.LabelAt(idx)
		assert.ErrorIs(t, err, domain.ErrSegmentOutOfRange, "index %d", idx)
	}
}

func TestSegmentSet_AllIsSnapshot(t *testing.T) {
	set := segmentSetOf("A", "B")

	all := set.All()
	all[0] = "mutated"

	label, _ := set.LabelAt(0)
	assert.Equal(t, "A", label)
}

func TestSegmentSet_Reset(t *testing.T) {
	set := segmentSetOf("A", "B")
	set.Reset()

	assert.Equal(t, 0, set.Size())

	seg, err := set.Append("C")
	require.NoError(t, err)
	assert.Equal(t, 0, seg.Index)
}
