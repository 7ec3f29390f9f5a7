package circuit

import "testing"

// buildChain builds: a,b -> AND -> n1 ; n1,c -> OR -> y (primary output)
// with n1 additionally fanning out to a second NOT gate feeding z, so n1 is
// a fanout stem separating two FFRs.
func buildChain() *Circuit {
	c := NewCircuit("chain")
	a := NewLine(0, "a", PrimaryInput)
	b := NewLine(1, "b", PrimaryInput)
	ci := NewLine(2, "c", PrimaryInput)
	n1 := NewLine(3, "n1", Normal)
	y := NewLine(4, "y", PrimaryOutput)
	z := NewLine(5, "z", PrimaryOutput)

	gAnd := NewGate(0, "g0", AND)
	gAnd.AddInput(a)
	gAnd.AddInput(b)
	gAnd.SetOutput(n1)

	gOr := NewGate(1, "g1", OR)
	gOr.AddInput(n1)
	gOr.AddInput(ci)
	gOr.SetOutput(y)

	gNot := NewGate(2, "g2", NOT)
	gNot.AddInput(n1)
	gNot.SetOutput(z)

	for _, l := range []*Line{a, b, ci, n1, y, z} {
		c.AddLine(l)
	}
	for _, g := range []*Gate{gAnd, gOr, gNot} {
		c.AddGate(g)
	}
	return c
}

func TestComputeFFRsSplitsAtFanoutStem(t *testing.T) {
	c := buildChain()
	ffrs := ComputeFFRs(c)

	byRoot := make(map[string][]*Gate)
	for _, f := range ffrs {
		byRoot[f.Root.Name] = f.Gates
	}

	if len(byRoot["n1"]) != 1 || byRoot["n1"][0].Name != "g0" {
		t.Fatalf("expected FFR(n1) = {g0}, got %v", byRoot["n1"])
	}
	if len(byRoot["y"]) != 1 || byRoot["y"][0].Name != "g1" {
		t.Fatalf("expected FFR(y) = {g1}, got %v", byRoot["y"])
	}
	if len(byRoot["z"]) != 1 || byRoot["z"][0].Name != "g2" {
		t.Fatalf("expected FFR(z) = {g2}, got %v", byRoot["z"])
	}
}

func TestComputeMFFCStopsAtSharedFanout(t *testing.T) {
	c := buildChain()
	y := c.LineByName("y")
	mffc := ComputeMFFC(y)

	// g0's output (n1) also feeds g2, so g0 must NOT be absorbed into y's
	// MFFC even though it is y's immediate predecessor.
	for _, g := range mffc.Gates {
		if g.Name == "g0" {
			t.Fatalf("g0 must not be absorbed into MFFC(y): n1 fans out to g2 too")
		}
	}
	if len(mffc.Gates) != 1 || mffc.Gates[0].Name != "g1" {
		t.Fatalf("expected MFFC(y) = {g1}, got %v", mffc.Gates)
	}
}

func TestLineByNameAndGateByName(t *testing.T) {
	c := buildChain()
	if c.LineByName("n1") == nil {
		t.Fatal("expected to find line n1")
	}
	if c.GateByName("g1") == nil {
		t.Fatal("expected to find gate g1")
	}
	if c.LineByName("nope") != nil {
		t.Fatal("expected nil for unknown line")
	}
}
