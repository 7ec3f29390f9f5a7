// Package fanengine adapts the FAN (Fan-out-oriented test generation)
// algorithm into a per-fault, per-unit decision search usable by the DTPG
// façade. It generalizes the original whole-circuit decision/backtrace/
// implication/objective/sensitization machinery to operate on fault.Fault
// objects and emit tv.Vector results.
package fanengine

import (
	"sort"
	"strings"

	"github.com/go-atpg/atpg/pkg/circuit"
	"github.com/go-atpg/atpg/pkg/logging"
)

// Frontier tracks the D-frontier (gates with a faulty input and X output)
// and J-frontier (gates with an assigned output and an unassigned input).
type Frontier struct {
	Circuit   *circuit.Circuit
	Logger    *logging.Logger
	DFrontier []*circuit.Gate
	JFrontier []*circuit.Gate
}

func NewFrontier(c *circuit.Circuit, logger *logging.Logger) *Frontier {
	return &Frontier{Circuit: c, Logger: logger}
}

func (f *Frontier) UpdateDFrontier() {
	f.DFrontier = f.DFrontier[:0]
	for _, gate := range f.Circuit.SortedGates() {
		if f.isGateInDFrontier(gate) {
			f.DFrontier = append(f.DFrontier, gate)
			gate.IsInDFrontier = true
		} else {
			gate.IsInDFrontier = false
		}
	}
	f.Logger.Frontier("D-Frontier updated, now contains %d gates", len(f.DFrontier))
	for _, gate := range f.DFrontier {
		f.Logger.Trace("D-Frontier gate: %s, inputs: %v", gate.Name, f.getInputValuesString(gate))
	}
}

func (f *Frontier) getInputValuesString(gate *circuit.Gate) string {
	values := make([]string, len(gate.Inputs))
	for i, input := range gate.Inputs {
		values[i] = input.String()
	}
	return "[" + strings.Join(values, ", ") + "]"
}

func (f *Frontier) UpdateJFrontier() {
	f.JFrontier = f.JFrontier[:0]
	for _, gate := range f.Circuit.SortedGates() {
		if f.isGateInJFrontier(gate) {
			f.JFrontier = append(f.JFrontier, gate)
		}
	}
	f.Logger.Frontier("J-Frontier updated, now contains %d gates", len(f.JFrontier))
}

func (f *Frontier) isGateInDFrontier(gate *circuit.Gate) bool {
	hasFaultyInput := false
	for _, input := range gate.Inputs {
		if input.IsFaulty() {
			hasFaultyInput = true
			break
		}
	}
	return hasFaultyInput && gate.Output.Value == circuit.X && gate.IsSensitizable()
}

func (f *Frontier) isGateInJFrontier(gate *circuit.Gate) bool {
	if !gate.Output.IsAssigned() {
		return false
	}
	for _, input := range gate.Inputs {
		if !input.IsAssigned() {
			return true
		}
	}
	return false
}

// GetDFrontierGate picks the gate with the fewest inputs, which tends to be
// the easiest to sensitize.
func (f *Frontier) GetDFrontierGate() *circuit.Gate {
	if len(f.DFrontier) == 0 {
		return nil
	}
	sort.SliceStable(f.DFrontier, func(i, j int) bool {
		return len(f.DFrontier[i].Inputs) < len(f.DFrontier[j].Inputs)
	})
	return f.DFrontier[0]
}

// GetJFrontierGate picks the gate with the fewest unassigned inputs.
func (f *Frontier) GetJFrontierGate() *circuit.Gate {
	if len(f.JFrontier) == 0 {
		return nil
	}
	sort.SliceStable(f.JFrontier, func(i, j int) bool {
		return f.countUnassignedInputs(f.JFrontier[i]) < f.countUnassignedInputs(f.JFrontier[j])
	})
	return f.JFrontier[0]
}

func (f *Frontier) countUnassignedInputs(gate *circuit.Gate) int {
	n := 0
	for _, input := range gate.Inputs {
		if !input.IsAssigned() {
			n++
		}
	}
	return n
}

// GetObjectivesFromDFrontier returns the side-input objectives needed to
// sensitize the chosen D-frontier gate.
func (f *Frontier) GetObjectivesFromDFrontier() []InitialObjective {
	var objectives []InitialObjective
	gate := f.GetDFrontierGate()
	if gate == nil {
		return objectives
	}
	nonControl := gate.GetNonControllingValue()
	for _, input := range gate.Inputs {
		if !input.IsFaulty() && !input.IsAssigned() {
			objectives = append(objectives, InitialObjective{Line: input, Value: nonControl})
		}
	}
	return objectives
}

// GetObjectivesFromJFrontier returns objectives to justify the chosen
// J-frontier gate's output value onto its unassigned inputs.
func (f *Frontier) GetObjectivesFromJFrontier() []InitialObjective {
	var objectives []InitialObjective
	gate := f.GetJFrontierGate()
	if gate == nil {
		return objectives
	}

	switch gate.Type {
	case circuit.AND, circuit.NAND:
		out := gate.Output.Value
		wantAllOne := (gate.Type == circuit.AND && out == circuit.One) || (gate.Type == circuit.NAND && out == circuit.Zero)
		wantOneZero := (gate.Type == circuit.AND && out == circuit.Zero) || (gate.Type == circuit.NAND && out == circuit.One)
		if wantAllOne {
			for _, input := range gate.Inputs {
				if !input.IsAssigned() {
					objectives = append(objectives, InitialObjective{Line: input, Value: circuit.One})
				}
			}
		} else if wantOneZero {
			for _, input := range gate.Inputs {
				if !input.IsAssigned() {
					objectives = append(objectives, InitialObjective{Line: input, Value: circuit.Zero})
					break
				}
			}
		}

	case circuit.OR, circuit.NOR:
		out := gate.Output.Value
		wantAllZero := (gate.Type == circuit.OR && out == circuit.Zero) || (gate.Type == circuit.NOR && out == circuit.One)
		wantOneOne := (gate.Type == circuit.OR && out == circuit.One) || (gate.Type == circuit.NOR && out == circuit.Zero)
		if wantAllZero {
			for _, input := range gate.Inputs {
				if !input.IsAssigned() {
					objectives = append(objectives, InitialObjective{Line: input, Value: circuit.Zero})
				}
			}
		} else if wantOneOne {
			for _, input := range gate.Inputs {
				if !input.IsAssigned() {
					objectives = append(objectives, InitialObjective{Line: input, Value: circuit.One})
					break
				}
			}
		}

	case circuit.NOT:
		if len(gate.Inputs) == 1 && !gate.Inputs[0].IsAssigned() {
			var inputVal circuit.LogicValue
			switch gate.Output.Value {
			case circuit.Zero:
				inputVal = circuit.One
			case circuit.One:
				inputVal = circuit.Zero
			case circuit.D:
				inputVal = circuit.Dnot
			case circuit.Dnot:
				inputVal = circuit.D
			}
			if inputVal != circuit.X {
				objectives = append(objectives, InitialObjective{Line: gate.Inputs[0], Value: inputVal})
			}
		}

	case circuit.BUF:
		if len(gate.Inputs) == 1 && !gate.Inputs[0].IsAssigned() {
			objectives = append(objectives, InitialObjective{Line: gate.Inputs[0], Value: gate.Output.Value})
		}
	}

	return objectives
}
