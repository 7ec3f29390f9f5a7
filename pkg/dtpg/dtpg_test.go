package dtpg_test

import (
	"testing"

	"github.com/go-atpg/atpg/pkg/circuit"
	"github.com/go-atpg/atpg/pkg/dtpg"
	"github.com/go-atpg/atpg/pkg/fault"
	"github.com/stretchr/testify/require"
)

// buildAOICircuit builds a 2-level network (two ANDs feeding a NOR) so FFR
// and MFFC partitioning have something nontrivial to split on.
func buildAOICircuit() *circuit.Circuit {
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

func TestNewSingleDetectsStuckAt(t *testing.T) {
	c := buildAOICircuit()
	e := dtpg.NewSingle(c, circuit.StuckAt)

	f := fault.Fault{ID: 0, Site: c.LineByName("a"), Kind: circuit.StuckAt, StuckAt: circuit.Zero}
	status, vec, err := e.Solve(f)
	require.NoError(t, err)
	require.Equal(t, fault.Detected, status)
	require.Greater(t, vec.CareCount(), 0)
}

func TestNewFFRDetectsStuckAt(t *testing.T) {
	c := buildAOICircuit()
	ffrs := circuit.ComputeFFRs(c)
	require.NotEmpty(t, ffrs)

	var targetFFR *circuit.FFR
	for _, r := range ffrs {
		if r.Root.Name == "n1" {
			targetFFR = r
		}
	}
	require.NotNil(t, targetFFR)

	e := dtpg.NewFFR(c, circuit.StuckAt, targetFFR)
	f := fault.Fault{ID: 1, Site: c.LineByName("b"), Kind: circuit.StuckAt, StuckAt: circuit.One}
	status, _, err := e.Solve(f)
	require.NoError(t, err)
	require.Equal(t, fault.Detected, status)
}

func TestNewMFFCDetectsStuckAt(t *testing.T) {
	c := buildAOICircuit()
	mffcs := circuit.ComputeMFFCs(c)
	require.NotEmpty(t, mffcs)

	var targetMFFC *circuit.MFFC
	for _, m := range mffcs {
		if m.Root.Name == "y" {
			targetMFFC = m
		}
	}
	require.NotNil(t, targetMFFC)

	e := dtpg.NewMFFC(c, circuit.StuckAt, targetMFFC)
	f := fault.Fault{ID: 2, Site: c.LineByName("y"), Kind: circuit.StuckAt, StuckAt: circuit.Zero}
	status, _, err := e.Solve(f)
	require.NoError(t, err)
	require.Equal(t, fault.Detected, status)
}

func TestSolveKReturnsDistinctVectors(t *testing.T) {
	c := buildAOICircuit()
	e := dtpg.NewSingle(c, circuit.StuckAt)

	// n1 stuck-at-1 can be excited by any (a,b) != (1,1) and propagated by
	// any (c,d) with c AND d == 0, giving several independent sensitizing
	// assignments for multiple backtrace's RNG-seeded tie-breaks to land on
	// two distinct vectors within SolveK's retry budget.
	f := fault.Fault{ID: 3, Site: c.LineByName("n1"), Kind: circuit.StuckAt, StuckAt: circuit.One}
	status, vecs, err := e.SolveK(f, 2)
	require.NoError(t, err)
	require.Equal(t, fault.Detected, status)
	require.Len(t, vecs, 2)

	seen := make(map[string]bool)
	for _, v := range vecs {
		require.False(t, seen[v.String()], "SolveK returned a duplicate vector: %s", v)
		seen[v.String()] = true
	}
}

func TestSolveTransitionDelayReportsTwoFrameVector(t *testing.T) {
	c := buildAOICircuit()
	e := dtpg.NewSingle(c, circuit.TransitionDelay)

	// A detectable transition-delay fault reports Detected with a vector
	// sized for two frames.
	f := fault.Fault{ID: 4, Site: c.LineByName("a"), Kind: circuit.TransitionDelay, StuckAt: circuit.Zero}
	status, vec, err := e.Solve(f)
	require.NoError(t, err)
	require.Equal(t, fault.Detected, status)
	require.Equal(t, 8, vec.Width()) // 4 inputs * 2 frames
}
