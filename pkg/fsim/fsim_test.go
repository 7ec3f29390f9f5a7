package fsim_test

import (
	"testing"

	"github.com/go-atpg/atpg/pkg/circuit"
	"github.com/go-atpg/atpg/pkg/fault"
	"github.com/go-atpg/atpg/pkg/fsim"
	"github.com/go-atpg/atpg/pkg/tv"
	"github.com/stretchr/testify/require"
)

func buildAndCircuit() *circuit.Circuit {
	c := circuit.NewCircuit("and2")
	a := circuit.NewLine(0, "a", circuit.PrimaryInput)
	b := circuit.NewLine(1, "b", circuit.PrimaryInput)
	y := circuit.NewLine(2, "y", circuit.PrimaryOutput)
	g := circuit.NewGate(0, "g0", circuit.AND)
	g.AddInput(a)
	g.AddInput(b)
	g.SetOutput(y)
	c.AddLine(a)
	c.AddLine(b)
	c.AddLine(y)
	c.AddGate(g)
	return c
}

func vec11(c *circuit.Circuit) tv.Vector {
	b := tv.NewBuilder(len(c.Inputs))
	b.Set(0, tv.Bit1)
	b.Set(1, tv.Bit1)
	return b.Build()
}

func TestSppfpDetectsFaultsActivatedByPattern(t *testing.T) {
	c := buildAndCircuit()
	faults := fault.BuildFaultList(c, circuit.StuckAt)
	s := fsim.New(c, faults, nil)

	detected := s.Sppfp(vec11(c))
	require.NotEmpty(t, detected)

	// a=b=1 should detect a/sa0, b/sa0, and y/sa0.
	names := map[string]bool{}
	for _, f := range detected {
		names[f.String()] = true
	}
	require.True(t, names["a/sa0"])
	require.True(t, names["b/sa0"])
	require.True(t, names["y/sa0"])
	require.False(t, names["y/sa1"])
}

func TestSppfpRespectsSkip(t *testing.T) {
	c := buildAndCircuit()
	faults := fault.BuildFaultList(c, circuit.StuckAt)
	s := fsim.New(c, faults, nil)

	for _, f := range faults {
		if f.String() == "a/sa0" {
			s.SetSkip(f.ID, true)
		}
	}

	detected := s.Sppfp(vec11(c))
	for _, f := range detected {
		require.NotEqual(t, "a/sa0", f.String())
	}

	s.ClearSkipAll()
	detected = s.Sppfp(vec11(c))
	found := false
	for _, f := range detected {
		if f.String() == "a/sa0" {
			found = true
		}
	}
	require.True(t, found)
}

func TestPpsfpReportsPerPatternMask(t *testing.T) {
	c := buildAndCircuit()
	faults := fault.BuildFaultList(c, circuit.StuckAt)
	s := fsim.New(c, faults, nil)

	b0 := tv.NewBuilder(2)
	b0.Set(0, tv.Bit0)
	b0.Set(1, tv.Bit0)
	v00 := b0.Build()

	detections := s.Ppsfp([]tv.Vector{v00, vec11(c)})
	require.NotEmpty(t, detections)

	for _, d := range detections {
		if d.Fault.String() == "y/sa0" {
			require.Equal(t, uint64(0b10), d.Mask) // only the second pattern (a=b=1) detects it
		}
		if d.Fault.String() == "y/sa1" {
			require.Equal(t, uint64(0b01), d.Mask) // only the first pattern (a=b=0) detects it
		}
	}
}
