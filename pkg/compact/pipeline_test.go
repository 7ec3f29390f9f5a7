package compact_test

import (
	"testing"

	"github.com/go-atpg/atpg/pkg/circuit"
	"github.com/go-atpg/atpg/pkg/compact"
	"github.com/go-atpg/atpg/pkg/fault"
	"github.com/go-atpg/atpg/pkg/tv"
	"github.com/stretchr/testify/require"
)

func buildAOICircuitForCompaction() *circuit.Circuit {
	c := circuit.NewCircuit("aoi")
	a := circuit.NewLine(0, "a", circuit.PrimaryInput)
	b := circuit.NewLine(1, "b", circuit.PrimaryInput)
	cc := circuit.NewLine(2, "c", circuit.PrimaryInput)
	d := circuit.NewLine(3, "d", circuit.PrimaryInput)
	n1 := circuit.NewLine(4, "n1", circuit.Normal)
	n2 := circuit.NewLine(5, "n2", circuit.Normal)
	y := circuit.NewLine(6, "y", circuit.PrimaryOutput)

	g1 := circuit.NewGate(0, "g1", circuit.AND)
	g1.AddInput(a)
	g1.AddInput(b)
	g1.SetOutput(n1)

	g2 := circuit.NewGate(1, "g2", circuit.AND)
	g2.AddInput(cc)
	g2.AddInput(d)
	g2.SetOutput(n2)

	g3 := circuit.NewGate(2, "g3", circuit.NOR)
	g3.AddInput(n1)
	g3.AddInput(n2)
	g3.SetOutput(y)

	for _, l := range []*circuit.Line{a, b, cc, d, n1, n2, y} {
		c.AddLine(l)
	}
	for _, g := range []*circuit.Gate{g1, g2, g3} {
		c.AddGate(g)
	}
	return c
}

func fullVec(bits ...tv.Bit) tv.Vector {
	return vec(bits...)
}

func TestCompactDSATURKeepsConflictingVectorsApart(t *testing.T) {
	tvs := triangleTVs()
	out, err := compact.Compact(tvs, "dsatur", compact.Options{})
	require.NoError(t, err)
	require.Len(t, out, 3)
}

func TestCompactUnknownTagReturnsInputUnchanged(t *testing.T) {
	tvs := triangleTVs()
	out, err := compact.Compact(tvs, "bogus", compact.Options{})
	require.ErrorIs(t, err, compact.ErrUnknownAlgorithm)
	require.Equal(t, tvs, out)
}

func TestCompactMincovCoversAllDetectableFaults(t *testing.T) {
	c := buildAOICircuitForCompaction()
	faults := fault.BuildFaultList(c, circuit.StuckAt)

	tvs := []tv.Vector{
		fullVec(tv.Bit1, tv.Bit1, tv.Bit1, tv.Bit1),
		fullVec(tv.Bit0, tv.Bit1, tv.Bit1, tv.Bit1),
		fullVec(tv.Bit1, tv.Bit0, tv.Bit1, tv.Bit1),
		fullVec(tv.Bit1, tv.Bit1, tv.Bit0, tv.Bit1),
		fullVec(tv.Bit1, tv.Bit1, tv.Bit1, tv.Bit0),
		fullVec(tv.Bit0, tv.Bit0, tv.Bit0, tv.Bit0),
	}

	out, err := compact.MinCovCompact(faults, tvs, c, circuit.StuckAt, compact.Options{})
	require.NoError(t, err)
	require.NotEmpty(t, out)
	require.LessOrEqual(t, len(out), len(tvs))
}

func TestCompactMincovMissingNetworkErrors(t *testing.T) {
	_, err := compact.Compact(nil, "mincov", compact.Options{})
	require.ErrorIs(t, err, compact.ErrMissingFaultContext)
}
