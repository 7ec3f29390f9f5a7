package fanengine

import (
	"math/rand"

	"github.com/go-atpg/atpg/pkg/circuit"
	"github.com/go-atpg/atpg/pkg/logging"
)

// Backtrace drives multiple backtrace to turn D-frontier/J-frontier
// objectives, or direct fault-excitation requirements, into a concrete
// (line, value) decision.
type Backtrace struct {
	Circuit     *circuit.Circuit
	Logger      *logging.Logger
	Topology    *circuit.Topology
	Frontier    *Frontier
	Implication *Implication
	MBT         *MultipleBacktrace
}

func NewBacktrace(c *circuit.Circuit, t *circuit.Topology, f *Frontier, i *Implication, logger *logging.Logger, rng *rand.Rand) *Backtrace {
	return &Backtrace{Circuit: c, Logger: logger, Topology: t, Frontier: f, Implication: i, MBT: NewMultipleBacktrace(c, t, logger, rng)}
}

func (b *Backtrace) BacktraceFromDFrontier() (*circuit.Line, circuit.LogicValue) {
	objs := b.Frontier.GetObjectivesFromDFrontier()
	if len(objs) == 0 {
		return nil, circuit.X
	}
	b.MBT.SetInitialObjectives(objs)
	b.MBT.PerformBacktrace()
	return b.MBT.GetBestFinalObjective()
}

func (b *Backtrace) BacktraceFromJFrontier() (*circuit.Line, circuit.LogicValue) {
	objs := b.Frontier.GetObjectivesFromJFrontier()
	if len(objs) == 0 {
		return nil, circuit.X
	}
	b.MBT.SetInitialObjectives(objs)
	b.MBT.PerformBacktrace()
	return b.MBT.GetBestFinalObjective()
}

func (b *Backtrace) DirectBacktrace(targetLine *circuit.Line, targetValue circuit.LogicValue) (*circuit.Line, circuit.LogicValue) {
	b.MBT.SetInitialObjectives([]InitialObjective{{Line: targetLine, Value: targetValue}})
	b.MBT.PerformBacktrace()
	return b.MBT.GetBestFinalObjective()
}

// GetNextObjective determines what the decision loop should target next:
// fault excitation first, then D-frontier propagation, then J-frontier
// justification. The third return value is false when the caller must
// backtrack instead of trying a new decision.
func (b *Backtrace) GetNextObjective() (*circuit.Line, circuit.LogicValue, bool) {
	if b.Circuit.FaultSite != nil && !b.Circuit.FaultSite.IsAssigned() {
		target := circuit.One
		if b.Circuit.FaultType == circuit.One {
			target = circuit.Zero
		}

		if b.Circuit.FaultSite.IsHeadLine || b.Circuit.FaultSite.Type == circuit.PrimaryInput {
			return b.Circuit.FaultSite, target, true
		}

		line, value := b.DirectBacktrace(b.Circuit.FaultSite, target)
		return line, value, line != nil
	}

	if len(b.Frontier.DFrontier) > 0 {
		if line, value := b.BacktraceFromDFrontier(); line != nil {
			return line, value, true
		}
	}

	if len(b.Frontier.JFrontier) > 0 {
		if line, value := b.BacktraceFromJFrontier(); line != nil {
			return line, value, true
		}
	}

	if b.Circuit.CheckTestStatus() {
		return nil, circuit.X, true
	}

	return nil, circuit.X, false
}

// CheckXPath reports whether a structural path still exists from a faulty
// line to a primary output.
func (b *Backtrace) CheckXPath() bool {
	return b.Implication.CheckIfXPathExists()
}
