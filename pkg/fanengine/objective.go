package fanengine

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/go-atpg/atpg/pkg/circuit"
	"github.com/go-atpg/atpg/pkg/logging"
)

// InitialObjective is a request to drive a line to a specific value.
type InitialObjective struct {
	Line  *circuit.Line
	Value circuit.LogicValue
}

// Objective is the (line, n0, n1) triplet used by multiple backtrace: n0/n1
// count how many pending requirements want the line at 0 / at 1.
type Objective struct {
	Line *circuit.Line
	N0   int
	N1   int
}

func (o *Objective) String() string {
	return fmt.Sprintf("(%s, n0=%d, n1=%d)", o.Line.Name, o.N0, o.N1)
}

// GetPreferredValue returns the value a tied-vote objective should take. A
// genuine n0/n1 tie has no structural reason to prefer either value; rng,
// when non-nil, breaks the tie randomly instead of always favoring One, so
// that repeated searches over the same fault (dtpg.Engine.SolveK) can land
// on a different decision path and surface a different detecting vector.
func (o *Objective) GetPreferredValue(rng *rand.Rand) circuit.LogicValue {
	if o.N0 > o.N1 {
		return circuit.Zero
	}
	if o.N1 > o.N0 {
		return circuit.One
	}
	if rng != nil && rng.Intn(2) == 0 {
		return circuit.Zero
	}
	return circuit.One
}

// MultipleBacktrace pushes a set of initial objectives backward through the
// circuit to the head lines / primary inputs, accumulating how often each
// reachable head line is wanted at 0 vs 1.
type MultipleBacktrace struct {
	Circuit     *circuit.Circuit
	Logger      *logging.Logger
	Topology    *circuit.Topology
	RNG         *rand.Rand
	InitialObjs []InitialObjective
	CurrentObjs []*Objective
	FinalObjs   []*Objective
}

func NewMultipleBacktrace(c *circuit.Circuit, topo *circuit.Topology, logger *logging.Logger, rng *rand.Rand) *MultipleBacktrace {
	return &MultipleBacktrace{Circuit: c, Logger: logger, Topology: topo, RNG: rng}
}

func (mb *MultipleBacktrace) SetInitialObjectives(objs []InitialObjective) {
	mb.InitialObjs = objs
	mb.CurrentObjs = nil
	mb.FinalObjs = nil

	for _, obj := range objs {
		if obj.Value == circuit.Zero {
			mb.CurrentObjs = append(mb.CurrentObjs, &Objective{Line: obj.Line, N0: 1})
		} else if obj.Value == circuit.One {
			mb.CurrentObjs = append(mb.CurrentObjs, &Objective{Line: obj.Line, N1: 1})
		}
	}
}

func (mb *MultipleBacktrace) PerformBacktrace() {
	mb.Logger.Algorithm("Starting multiple backtrace with %d objectives", len(mb.CurrentObjs))
	mb.Logger.Indent()
	defer mb.Logger.Outdent()

	processed := make(map[int]bool)
	queue := make([]*Objective, len(mb.CurrentObjs))
	copy(queue, mb.CurrentObjs)

	for len(queue) > 0 {
		obj := queue[0]
		queue = queue[1:]
		line := obj.Line

		if processed[line.ID] {
			continue
		}

		if line.IsHeadLine || line.Type == circuit.PrimaryInput {
			mb.FinalObjs = append(mb.FinalObjs, obj)
			continue
		}

		inputGate := line.InputGate
		if inputGate == nil {
			mb.Logger.Warning("Line %s has no driving gate", line.Name)
			continue
		}

		queue = append(queue, mb.backtraceGate(inputGate, obj)...)
		processed[line.ID] = true
	}

	sort.SliceStable(mb.FinalObjs, func(i, j int) bool {
		di := abs(mb.FinalObjs[i].N1 - mb.FinalObjs[i].N0)
		dj := abs(mb.FinalObjs[j].N1 - mb.FinalObjs[j].N0)
		if di != dj {
			return di > dj
		}
		if mb.FinalObjs[i].Line.IsHeadLine != mb.FinalObjs[j].Line.IsHeadLine {
			return mb.FinalObjs[i].Line.IsHeadLine
		}
		return mb.FinalObjs[i].Line.ID < mb.FinalObjs[j].Line.ID
	})

	mb.Logger.Algorithm("Multiple backtrace completed with %d final objectives", len(mb.FinalObjs))
}

func (mb *MultipleBacktrace) backtraceGate(gate *circuit.Gate, obj *Objective) []*Objective {
	var out []*Objective

	switch gate.Type {
	case circuit.AND, circuit.NAND:
		n0, n1 := obj.N0, obj.N1
		if gate.Type == circuit.NAND {
			n0, n1 = obj.N1, obj.N0
		}
		if n0 > 0 {
			out = append(out, &Objective{Line: mb.findEasiestControlInput(gate), N0: n0})
		}
		if n1 > 0 {
			for _, input := range gate.Inputs {
				out = append(out, &Objective{Line: input, N1: n1})
			}
		}

	case circuit.OR, circuit.NOR:
		n0, n1 := obj.N0, obj.N1
		if gate.Type == circuit.NOR {
			n0, n1 = obj.N1, obj.N0
		}
		if n1 > 0 {
			out = append(out, &Objective{Line: mb.findEasiestControlInput(gate), N1: n1})
		}
		if n0 > 0 {
			for _, input := range gate.Inputs {
				out = append(out, &Objective{Line: input, N0: n0})
			}
		}

	case circuit.NOT:
		if len(gate.Inputs) == 1 {
			out = append(out, &Objective{Line: gate.Inputs[0], N0: obj.N1, N1: obj.N0})
		}

	case circuit.BUF:
		if len(gate.Inputs) == 1 {
			out = append(out, &Objective{Line: gate.Inputs[0], N0: obj.N0, N1: obj.N1})
		}

	case circuit.XOR, circuit.XNOR:
		for _, input := range gate.Inputs {
			out = append(out, &Objective{Line: input, N0: obj.N0 + obj.N1, N1: obj.N0 + obj.N1})
		}
	}

	return out
}

// findEasiestControlInput picks the input whose controlling value is cheapest
// to justify. Every gate type wired into multiple backtrace (AND/NAND/OR/NOR)
// has equivalent inputs for this purpose, so without a testability-cost
// model to rank them, any one is as good as another; mb.RNG, when non-nil,
// picks among them instead of always the first.
func (mb *MultipleBacktrace) findEasiestControlInput(gate *circuit.Gate) *circuit.Line {
	if len(gate.Inputs) == 0 {
		return nil
	}
	idx := 0
	if mb.RNG != nil {
		idx = mb.RNG.Intn(len(gate.Inputs))
	}
	return gate.Inputs[idx]
}

// GetBestFinalObjective returns the highest-priority head-line objective
// found by the last PerformBacktrace call. FinalObjs is sorted by priority,
// so every objective tied with the first on priority is also a legitimate
// pick; mb.RNG, when non-nil, chooses among the tied leaders instead of
// always the one PerformBacktrace's stable sort happened to place first.
func (mb *MultipleBacktrace) GetBestFinalObjective() (*circuit.Line, circuit.LogicValue) {
	if len(mb.FinalObjs) == 0 {
		return nil, circuit.X
	}
	best := mb.FinalObjs[0]
	if mb.RNG != nil {
		tied := mb.tiedLeaders()
		best = tied[mb.RNG.Intn(len(tied))]
	}
	return best.Line, best.GetPreferredValue(mb.RNG)
}

// tiedLeaders returns every FinalObjs entry sharing the leader's priority
// key (di, IsHeadLine), matching the ordering PerformBacktrace's sort uses.
func (mb *MultipleBacktrace) tiedLeaders() []*Objective {
	leaderDi := abs(mb.FinalObjs[0].N1 - mb.FinalObjs[0].N0)
	leaderHead := mb.FinalObjs[0].Line.IsHeadLine
	var tied []*Objective
	for _, o := range mb.FinalObjs {
		if abs(o.N1-o.N0) == leaderDi && o.Line.IsHeadLine == leaderHead {
			tied = append(tied, o)
		}
	}
	return tied
}

func (mb *MultipleBacktrace) IsObjectiveEffective(oldDFrontier, newDFrontier []*circuit.Gate) bool {
	if len(oldDFrontier) != len(newDFrontier) {
		return false
	}
	for i := range oldDFrontier {
		if oldDFrontier[i].ID != newDFrontier[i].ID {
			return false
		}
	}
	return true
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
