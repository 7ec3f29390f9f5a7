package fanengine

import (
	"fmt"

	"github.com/go-atpg/atpg/pkg/circuit"
	"github.com/go-atpg/atpg/pkg/logging"
)

// DecisionNode is one frame of the decision tree: a line, the value
// currently assigned to it, and whether the alternative has been tried.
type DecisionNode struct {
	Line        *circuit.Line
	Value       circuit.LogicValue
	Tried       bool
	Alternative circuit.LogicValue
}

// Decision drives the FAN decision tree: pick a (line, value) from
// Backtrace, try it, try the opposite if it conflicts, and backtrack when
// both fail.
type Decision struct {
	Circuit     *circuit.Circuit
	Logger      *logging.Logger
	Topology    *circuit.Topology
	Frontier    *Frontier
	Implication *Implication
	Backtrace   *Backtrace
	Stack       []*DecisionNode
}

func NewDecision(c *circuit.Circuit, t *circuit.Topology, f *Frontier, i *Implication, b *Backtrace, logger *logging.Logger) *Decision {
	return &Decision{Circuit: c, Logger: logger, Topology: t, Frontier: f, Implication: i, Backtrace: b}
}

func (d *Decision) MakeDecision() (bool, error) {
	line, value, shouldContinue := d.Backtrace.GetNextObjective()
	if !shouldContinue {
		return d.Backtrack()
	}

	if line == nil {
		if d.Circuit.CheckTestStatus() {
			return true, nil
		}
		return d.Backtrack()
	}

	node := &DecisionNode{Line: line, Value: value, Alternative: oppositeBinaryValue(value)}

	success, err := d.tryValue(line, value)
	if err != nil {
		return false, err
	}
	if success {
		d.Stack = append(d.Stack, node)
		d.Logger.Decision("Decision successful: %s = %v", line.Name, value)
		return true, nil
	}

	success, err = d.tryValue(line, node.Alternative)
	if err != nil {
		return false, err
	}
	if success {
		node.Value = node.Alternative
		node.Tried = true
		d.Stack = append(d.Stack, node)
		d.Logger.Decision("Alternative decision successful: %s = %v", line.Name, node.Alternative)
		return true, nil
	}

	d.Logger.Decision("Both values failed for %s, need to backtrack", line.Name)
	return d.Backtrack()
}

func (d *Decision) tryValue(line *circuit.Line, value circuit.LogicValue) (bool, error) {
	saved := d.saveCircuitState()

	line.SetValue(value)
	ok, err := d.Implication.ImplyValues()
	if err != nil || !ok {
		d.restoreCircuitState(saved)
		return false, nil
	}

	d.Frontier.UpdateDFrontier()
	d.Frontier.UpdateJFrontier()

	if len(d.Frontier.DFrontier) > 0 && !d.Backtrace.CheckXPath() {
		d.restoreCircuitState(saved)
		return false, nil
	}

	return true, nil
}

func (d *Decision) Backtrack() (bool, error) {
	d.Logger.Backtrack("Starting backtracking")

	if len(d.Stack) == 0 {
		return false, fmt.Errorf("no test possible, decision stack empty")
	}

	lastIdx := len(d.Stack) - 1
	node := d.Stack[lastIdx]
	d.Stack = d.Stack[:lastIdx]

	if !node.Tried {
		d.Circuit.Reset()
		if d.Circuit.FaultSite != nil {
			d.Circuit.InjectFault(d.Circuit.FaultSite, d.Circuit.FaultType)
		}

		for _, prev := range d.Stack {
			prev.Line.SetValue(prev.Value)
		}

		if _, err := d.Implication.ImplyValues(); err != nil {
			return false, err
		}

		success, err := d.tryValue(node.Line, node.Alternative)
		if err != nil {
			return false, err
		}
		if success {
			node.Value = node.Alternative
			node.Tried = true
			d.Stack = append(d.Stack, node)
			d.Logger.Backtrack("Alternative value %v successful for %s", node.Alternative, node.Line.Name)
			return true, nil
		}
	}

	return d.Backtrack()
}

func (d *Decision) GetTestPattern() map[string]circuit.LogicValue {
	return d.Circuit.GetCurrentTest()
}

func (d *Decision) saveCircuitState() map[int]circuit.LogicValue {
	state := make(map[int]circuit.LogicValue, len(d.Circuit.Lines))
	for id, line := range d.Circuit.Lines {
		state[id] = line.Value
	}
	return state
}

func (d *Decision) restoreCircuitState(state map[int]circuit.LogicValue) {
	for id, value := range state {
		if line, ok := d.Circuit.Lines[id]; ok {
			line.Value = value
		}
	}
	d.Frontier.UpdateDFrontier()
	d.Frontier.UpdateJFrontier()
}

func (d *Decision) GetCurrentDecisionDepth() int {
	return len(d.Stack)
}

func (d *Decision) Reset() {
	d.Stack = nil
}

func oppositeBinaryValue(value circuit.LogicValue) circuit.LogicValue {
	if value == circuit.Zero {
		return circuit.One
	}
	return circuit.Zero
}
