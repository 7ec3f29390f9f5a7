// Package fsim implements fault simulation: given one or more test
// vectors and a fault list, determine which faults each vector detects
// without running the full decision search for each one. Two modes are
// provided, matching the two classic word-parallel strategies: Sppfp
// simulates a single pattern against many faults in parallel (one bit per
// fault), and Ppsfp simulates a block of patterns against one fault at a
// time (one bit per pattern).
package fsim

import (
	"math/rand"

	"github.com/go-atpg/atpg/pkg/circuit"
	"github.com/go-atpg/atpg/pkg/fault"
	"github.com/go-atpg/atpg/pkg/tv"
)

// Width is the simulator's word size: the number of faults (Sppfp) or
// patterns (Ppsfp) processed in a single pass.
const Width = 64

// Detection records that a fault was caught by a Ppsfp block: Mask has bit
// i set if pattern i (within the block passed to Ppsfp) detects Fault.
type Detection struct {
	Fault fault.Fault
	Mask  uint64
}

// Simulator holds the circuit and fault list shared across a run. It has
// no lock of its own: SetSkip/ClearSkipAll write the skip set that
// Sppfp/Ppsfp read, so callers serialize writes against other calls.
type Simulator struct {
	circuit *circuit.Circuit
	faults  []fault.Fault
	levels  []*circuit.Gate // gates in non-decreasing output-level order
	rng     *rand.Rand

	skip map[int]bool
}

// New builds a simulator over the given fault list of c. The circuit's gates are
// leveled once up front since the bitwise evaluator below needs a
// topological order.
func New(c *circuit.Circuit, faults []fault.Fault, rng *rand.Rand) *Simulator {
	topo := circuit.NewTopology(c)
	topo.ComputeLevels()

	gates := c.SortedGates()
	levels := make([]*circuit.Gate, len(gates))
	copy(levels, gates)
	sortGatesByLevel(levels, topo)

	return &Simulator{
		circuit: c,
		faults:  faults,
		levels:  levels,
		rng:     rng,
		skip:    make(map[int]bool),
	}
}

func sortGatesByLevel(gates []*circuit.Gate, topo *circuit.Topology) {
	levelOf := func(g *circuit.Gate) int { return topo.LevelMap[g.Output] }
	// Insertion sort: gate counts in ATPG benchmarks are small enough that
	// this avoids pulling in sort.Slice's interface overhead per call site;
	// simulate runs are called once per fault/pattern batch, not per gate.
	for i := 1; i < len(gates); i++ {
		j := i
		for j > 0 && levelOf(gates[j-1]) > levelOf(gates[j]) {
			gates[j-1], gates[j] = gates[j], gates[j-1]
			j--
		}
	}
}

// SetSkip marks a fault as excluded from future Sppfp/Ppsfp calls (e.g.
// because it was already classified detected or untestable by DTPG).
func (s *Simulator) SetSkip(id int, skip bool) {
	if skip {
		s.skip[id] = true
	} else {
		delete(s.skip, id)
	}
}

// ClearSkipAll resets every fault to active.
func (s *Simulator) ClearSkipAll() {
	s.skip = make(map[int]bool)
}

func (s *Simulator) activeFaults() []fault.Fault {
	out := make([]fault.Fault, 0, len(s.faults))
	for _, f := range s.faults {
		if !s.skip[f.ID] {
			out = append(out, f)
		}
	}
	return out
}

const fullMask = ^uint64(0)

func maskFor(n int) uint64 {
	if n >= 64 {
		return fullMask
	}
	return (uint64(1) << uint(n)) - 1
}

// goodMachine evaluates vec (its X positions filled deterministically,
// random if rng is non-nil) against the fault-free circuit and returns the
// per-line 0/1 values.
func (s *Simulator) goodMachine(vec tv.Vector) map[int]bool {
	filled := vec.RandomFill(s.rng)
	values := make(map[int]bool, len(s.circuit.Lines))

	for idx, in := range s.circuit.Inputs {
		values[in.ID] = filled.Get(idx) == tv.Bit1
	}
	for _, g := range s.levels {
		values[g.Output.ID] = evalGoodGate(g, values)
	}
	return values
}

func evalGoodGate(g *circuit.Gate, values map[int]bool) bool {
	switch g.Type {
	case circuit.AND, circuit.NAND:
		r := true
		for _, in := range g.Inputs {
			r = r && values[in.ID]
		}
		if g.Type == circuit.NAND {
			return !r
		}
		return r
	case circuit.OR, circuit.NOR:
		r := false
		for _, in := range g.Inputs {
			r = r || values[in.ID]
		}
		if g.Type == circuit.NOR {
			return !r
		}
		return r
	case circuit.XOR, circuit.XNOR:
		r := false
		for _, in := range g.Inputs {
			r = r != values[in.ID]
		}
		if g.Type == circuit.XNOR {
			return !r
		}
		return r
	case circuit.NOT:
		return !values[g.Inputs[0].ID]
	case circuit.BUF:
		return values[g.Inputs[0].ID]
	default:
		return false
	}
}

func boolWord(b bool) uint64 {
	if b {
		return fullMask
	}
	return 0
}

// evalFaultyGate evaluates g's output word, where each bit lane i is an
// independent faulty-machine copy of the circuit. laneValues holds the
// already-computed input words, and mask keeps only the lanes in use.
func evalFaultyGate(g *circuit.Gate, laneValues map[int]uint64, mask uint64) uint64 {
	switch g.Type {
	case circuit.AND, circuit.NAND:
		r := mask
		for _, in := range g.Inputs {
			r &= laneValues[in.ID]
		}
		if g.Type == circuit.NAND {
			return ^r & mask
		}
		return r
	case circuit.OR, circuit.NOR:
		r := uint64(0)
		for _, in := range g.Inputs {
			r |= laneValues[in.ID]
		}
		if g.Type == circuit.NOR {
			return ^r & mask
		}
		return r
	case circuit.XOR, circuit.XNOR:
		r := uint64(0)
		for _, in := range g.Inputs {
			r ^= laneValues[in.ID]
		}
		if g.Type == circuit.XNOR {
			return ^r & mask
		}
		return r
	case circuit.NOT:
		return ^laneValues[g.Inputs[0].ID] & mask
	case circuit.BUF:
		return laneValues[g.Inputs[0].ID]
	default:
		return 0
	}
}

// Sppfp (single pattern, parallel fault) simulates one test vector against
// every currently active fault, up to Width at a time, and returns the
// faults it detects.
func (s *Simulator) Sppfp(vec tv.Vector) []fault.Fault {
	active := s.activeFaults()
	goodValues := s.goodMachine(vec)

	var detected []fault.Fault
	for off := 0; off < len(active); off += Width {
		batch := active[off:min(off+Width, len(active))]
		mask := maskFor(len(batch))

		// Primary inputs that are themselves fault sites are injected here,
		// before any gate reads them, since they have no driving gate to
		// intercept.
		laneValues := make(map[int]uint64, len(s.circuit.Lines))
		for _, in := range s.circuit.Inputs {
			laneValues[in.ID] = injectStuckAt(boolWord(goodValues[in.ID])&mask, batch, in.ID)
		}

		faultBit := make(map[int]uint64, len(batch))
		for i, f := range batch {
			faultBit[f.Site.ID] = uint64(1) << uint(i)
		}

		for _, g := range s.levels {
			word := evalFaultyGate(g, laneValues, mask)
			if _, ok := faultBit[g.Output.ID]; ok {
				word = injectStuckAt(word, batch, g.Output.ID)
			}
			laneValues[g.Output.ID] = word
		}

		for _, out := range s.circuit.Outputs {
			goodBit := boolWord(goodValues[out.ID]) & mask
			diff := (laneValues[out.ID] ^ goodBit) & mask
			if diff == 0 {
				continue
			}
			for i, f := range batch {
				if diff&(uint64(1)<<uint(i)) != 0 {
					detected = append(detected, f)
				}
			}
		}
	}
	return dedupeFaults(detected)
}

func injectStuckAt(word uint64, batch []fault.Fault, lineID int) uint64 {
	for i, f := range batch {
		if f.Site.ID != lineID {
			continue
		}
		bit := uint64(1) << uint(i)
		stuck := f.StuckAt == circuit.One
		word = setLaneBit(word, bit, stuck)
	}
	return word
}

func setLaneBit(word uint64, bit uint64, value bool) uint64 {
	if value {
		return word | bit
	}
	return word &^ bit
}

func dedupeFaults(in []fault.Fault) []fault.Fault {
	seen := make(map[int]bool, len(in))
	out := make([]fault.Fault, 0, len(in))
	for _, f := range in {
		if seen[f.ID] {
			continue
		}
		seen[f.ID] = true
		out = append(out, f)
	}
	return out
}

// Ppsfp (parallel pattern, single fault) simulates a block of up to Width
// patterns against every active fault, one fault at a time, and returns one
// Detection per fault detected by at least one pattern in the block.
func (s *Simulator) Ppsfp(block []tv.Vector) []Detection {
	if len(block) > Width {
		block = block[:Width]
	}
	n := len(block)
	mask := maskFor(n)

	goodLanes := make(map[int]uint64, len(s.circuit.Lines))
	filledBlock := make([]tv.Vector, n)
	for pi, vec := range block {
		filledBlock[pi] = vec.RandomFill(s.rng)
	}
	for idx, in := range s.circuit.Inputs {
		var word uint64
		for pi, vec := range filledBlock {
			if vec.Get(idx) == tv.Bit1 {
				word |= uint64(1) << uint(pi)
			}
		}
		goodLanes[in.ID] = word & mask
	}
	for _, g := range s.levels {
		goodLanes[g.Output.ID] = evalFaultyGate(g, goodLanes, mask)
	}

	var detections []Detection
	for _, f := range s.activeFaults() {
		laneValues := make(map[int]uint64, len(s.circuit.Lines))
		for id, word := range goodLanes {
			laneValues[id] = word
		}

		stuckWord := uint64(0)
		if f.StuckAt == circuit.One {
			stuckWord = mask
		}
		if f.Site.Type == circuit.PrimaryInput {
			laneValues[f.Site.ID] = stuckWord
		}

		for _, g := range s.levels {
			word := evalFaultyGate(g, laneValues, mask)
			if g.Output.ID == f.Site.ID {
				word = stuckWord
			}
			laneValues[g.Output.ID] = word
		}

		var detectMask uint64
		for _, out := range s.circuit.Outputs {
			detectMask |= (laneValues[out.ID] ^ goodLanes[out.ID]) & mask
		}
		if detectMask != 0 {
			detections = append(detections, Detection{Fault: f, Mask: detectMask})
		}
	}
	return detections
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
