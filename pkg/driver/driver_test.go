package driver_test

import (
	"testing"

	"github.com/go-atpg/atpg/pkg/circuit"
	"github.com/go-atpg/atpg/pkg/driver"
	"github.com/go-atpg/atpg/pkg/fault"
	"github.com/stretchr/testify/require"
)

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

// buildBranchingCircuit gives n1 two fanout gates (g2, g3), so ComputeFFRs
// carves the circuit into three independent regions (n1/g1, n2/g2, n3/g3)
// instead of the single region buildAOICircuit's sole primary output
// produces. Concurrency tests need at least two units to actually exercise
// more than one goroutine.
func buildBranchingCircuit() *circuit.Circuit {
	c := circuit.NewCircuit("branch")
	a := circuit.NewLine(0, "a", circuit.PrimaryInput)
	b := circuit.NewLine(1, "b", circuit.PrimaryInput)
	cc := circuit.NewLine(2, "c", circuit.PrimaryInput)
	n1 := circuit.NewLine(3, "n1", circuit.Normal)
	n2 := circuit.NewLine(4, "n2", circuit.PrimaryOutput)
	n3 := circuit.NewLine(5, "n3", circuit.PrimaryOutput)

	g1 := circuit.NewGate(0, "g1", circuit.AND)
	g1.AddInput(a)
	g1.AddInput(b)
	g1.SetOutput(n1)

	g2 := circuit.NewGate(1, "g2", circuit.NOT)
	g2.AddInput(n1)
	g2.SetOutput(n2)

	g3 := circuit.NewGate(2, "g3", circuit.AND)
	g3.AddInput(n1)
	g3.AddInput(cc)
	g3.SetOutput(n3)

	for _, l := range []*circuit.Line{a, b, cc, n1, n2, n3} {
		c.AddLine(l)
	}
	for _, g := range []*circuit.Gate{g1, g2, g3} {
		c.AddGate(g)
	}
	return c
}

func TestRunSingleModeClassifiesEveryFault(t *testing.T) {
	c := buildAOICircuit()
	faults := fault.BuildFaultList(c, circuit.StuckAt)
	d := driver.New(c, circuit.StuckAt, faults)

	ndet, nunt, nabt, err := d.Run(driver.ModeSingle, faults, true)
	require.NoError(t, err)
	require.Equal(t, len(faults), ndet+nunt+nabt)
	require.Greater(t, ndet, 0)
}

func TestRunFFRModeClassifiesEveryFault(t *testing.T) {
	c := buildAOICircuit()
	faults := fault.BuildFaultList(c, circuit.StuckAt)
	d := driver.New(c, circuit.StuckAt, faults)

	ndet, nunt, nabt, err := d.Run(driver.ModeFFR, faults, false)
	require.NoError(t, err)
	require.Equal(t, len(faults), ndet+nunt+nabt)
}

func TestRunMFFCModeClassifiesEveryFault(t *testing.T) {
	c := buildAOICircuit()
	faults := fault.BuildFaultList(c, circuit.StuckAt)
	d := driver.New(c, circuit.StuckAt, faults)

	ndet, nunt, nabt, err := d.Run(driver.ModeMFFC, faults, false)
	require.NoError(t, err)
	require.Equal(t, len(faults), ndet+nunt+nabt)
}

func TestRunKProducesMultipleVectorsPerFault(t *testing.T) {
	c := buildAOICircuit()
	faults := fault.BuildFaultList(c, circuit.StuckAt)
	d := driver.New(c, circuit.StuckAt, faults)

	ndet, _, _, err := d.RunK(driver.ModeSingle, faults, 2)
	require.NoError(t, err)
	require.Greater(t, ndet, 0)
	require.GreaterOrEqual(t, len(d.TestVectors()), ndet)
}

func TestRunWithConcurrencyMatchesSequential(t *testing.T) {
	seqCircuit := buildBranchingCircuit()
	seqFaults := fault.BuildFaultList(seqCircuit, circuit.StuckAt)
	seqDriver := driver.New(seqCircuit, circuit.StuckAt, seqFaults, driver.WithConcurrency(1))
	sndet, snunt, snabt, err := seqDriver.Run(driver.ModeFFR, seqFaults, false)
	require.NoError(t, err)

	concCircuit := buildBranchingCircuit()
	concFaults := fault.BuildFaultList(concCircuit, circuit.StuckAt)
	concDriver := driver.New(concCircuit, circuit.StuckAt, concFaults, driver.WithConcurrency(4))
	cndet, cnunt, cnabt, err := concDriver.Run(driver.ModeFFR, concFaults, false)
	require.NoError(t, err)

	require.Equal(t, len(seqFaults), sndet+snunt+snabt)
	require.Equal(t, sndet, cndet)
	require.Equal(t, snunt, cnunt)
	require.Equal(t, snabt, cnabt)

	require.Equal(t, len(seqFaults), len(concFaults))
	for i := range seqFaults {
		require.Equal(t, seqDriver.Registry().Get(seqFaults[i].ID), concDriver.Registry().Get(concFaults[i].ID))
	}
}
