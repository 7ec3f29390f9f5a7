package tv

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCompatibleAgreeingPositions(t *testing.T) {
	a := NewBuilder(4).Set(0, Bit1).Set(1, Bit0).Build()
	b := NewBuilder(4).Set(0, Bit1).Set(2, Bit1).Build()
	require.True(t, a.Compatible(b))
	require.True(t, b.Compatible(a))
}

func TestCompatibleConflictingPosition(t *testing.T) {
	a := NewBuilder(4).Set(0, Bit1).Build()
	b := NewBuilder(4).Set(0, Bit0).Build()
	require.False(t, a.Compatible(b))
}

func TestCompatibleDifferentWidth(t *testing.T) {
	a := New(4)
	b := New(8)
	require.False(t, a.Compatible(b))
}

func TestMergeUnionsAssignedBits(t *testing.T) {
	a := NewBuilder(4).Set(0, Bit1).Build()
	b := NewBuilder(4).Set(1, Bit0).Build()
	m, err := a.Merge(b)
	require.NoError(t, err)
	require.Equal(t, Bit1, m.Get(0))
	require.Equal(t, Bit0, m.Get(1))
	require.Equal(t, BitX, m.Get(2))
}

func TestMergeIncompatibleReturnsError(t *testing.T) {
	a := NewBuilder(4).Set(0, Bit1).Build()
	b := NewBuilder(4).Set(0, Bit0).Build()
	_, err := a.Merge(b)
	require.ErrorIs(t, err, ErrIncompatibleMerge)
}

func TestMergeAllOfOne(t *testing.T) {
	a := NewBuilder(2).Set(0, Bit1).Build()
	m, err := MergeAll([]Vector{a})
	require.NoError(t, err)
	require.Equal(t, a.String(), m.String())
}

func TestRandomFillAssignsAllXPositions(t *testing.T) {
	v := NewBuilder(8).Set(0, Bit1).Build()
	filled := v.RandomFill(rand.New(rand.NewSource(1)))
	require.Equal(t, 8, filled.CareCount())
	require.Equal(t, Bit1, filled.Get(0))
}

func TestRandomFillNilLeavesXUnset(t *testing.T) {
	v := NewBuilder(8).Set(0, Bit1).Build()
	filled := v.RandomFill(nil)
	require.Equal(t, 1, filled.CareCount())
}

func TestStringRendersEachPosition(t *testing.T) {
	v := NewBuilder(3).Set(0, Bit1).Set(1, Bit0).Build()
	require.Equal(t, "10X", v.String())
}
