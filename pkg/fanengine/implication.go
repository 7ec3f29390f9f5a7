package fanengine

import (
	"fmt"

	"github.com/go-atpg/atpg/pkg/circuit"
	"github.com/go-atpg/atpg/pkg/logging"
)

// Implication drives forward simulation and backward justification to a
// fixed point, detecting conflicts along the way.
type Implication struct {
	Circuit  *circuit.Circuit
	Logger   *logging.Logger
	Topo     *circuit.Topology
	Frontier *Frontier
}

func NewImplication(c *circuit.Circuit, f *Frontier, t *circuit.Topology, logger *logging.Logger) *Implication {
	return &Implication{Circuit: c, Logger: logger, Topo: t, Frontier: f}
}

// ImplyValues performs forward and backward implication until no more
// changes occur (bounded to guard against a cyclic interaction). Unique
// sensitization is re-applied whenever the D-frontier settles to a single
// gate, since it can unlock further implication.
func (i *Implication) ImplyValues() (bool, error) {
	i.Logger.Implication("Starting implication process")
	i.Logger.Indent()
	defer i.Logger.Outdent()

	changed := true
	iterations := 0

	for changed && iterations < 100 {
		iterations++

		fwdChanged, err := i.ImplyForward()
		if err != nil {
			return false, err
		}

		bwdChanged, err := i.ImplyBackward()
		if err != nil {
			return false, err
		}

		i.Frontier.UpdateDFrontier()
		i.Frontier.UpdateJFrontier()

		usChanged := false
		if len(i.Frontier.DFrontier) == 1 {
			usChanged, err = i.ApplyUniqueSensitization(i.Frontier.DFrontier[0])
			if err != nil {
				return false, err
			}
		}

		changed = fwdChanged || bwdChanged || usChanged
	}

	i.Logger.Implication("Implication completed after %d iterations", iterations)

	if i.HasConflict() {
		return false, fmt.Errorf("value conflict detected during implication")
	}
	return true, nil
}

func (i *Implication) ImplyForward() (bool, error) {
	changed := i.Circuit.SimulateForward()
	if i.HasConflict() {
		return false, fmt.Errorf("conflict detected during forward implication")
	}
	return changed, nil
}

func (i *Implication) ImplyBackward() (bool, error) {
	changed := i.Circuit.SimulateBackward()
	if i.HasConflict() {
		return false, fmt.Errorf("conflict detected during backward justification")
	}
	return changed, nil
}

// HasConflict checks for inconsistencies between the fault excitation
// requirement, gate evaluation, and D-frontier state.
func (i *Implication) HasConflict() bool {
	if i.Circuit.FaultSite != nil && i.Circuit.FaultSite.Value != circuit.X {
		if i.Circuit.FaultSite.GetGoodValue() == i.Circuit.FaultType {
			i.Logger.Implication("Conflict: fault site %s has good value equal to fault type %v",
				i.Circuit.FaultSite.Name, i.Circuit.FaultType)
			return true
		}
	}

	for _, gate := range i.Circuit.Gates {
		if gate.IsInputsAssigned() && gate.Output.IsAssigned() {
			if expected := gate.Evaluate(); expected != gate.Output.Value {
				i.Logger.Implication("Conflict: gate %s has inconsistent output %v, expected %v",
					gate.Name, gate.Output.Value, expected)
				return true
			}
		}
	}

	if len(i.Frontier.DFrontier) == 0 {
		faultyOutputExists, faultySignalExists := false, false
		for _, output := range i.Circuit.Outputs {
			if output.IsFaulty() {
				faultyOutputExists = true
				break
			}
		}
		for _, line := range i.Circuit.Lines {
			if line.IsFaulty() {
				faultySignalExists = true
				break
			}
		}
		if faultySignalExists && !faultyOutputExists {
			i.Logger.Implication("Conflict: D-frontier has disappeared without fault effect reaching outputs")
			return true
		}
	}

	return false
}

// ApplyUniqueSensitization assigns non-controlling values to every side
// input along the lines that every path from gate to a primary output must
// pass through.
func (i *Implication) ApplyUniqueSensitization(gate *circuit.Gate) (bool, error) {
	mandatory := i.Topo.UniqueSensitizationLines(gate)
	if len(mandatory) == 0 {
		return false, nil
	}

	onPath := make(map[int]bool, len(mandatory))
	for _, l := range mandatory {
		onPath[l.ID] = true
	}

	changed := false
	seenGate := make(map[int]bool)
	for _, line := range mandatory {
		for _, g := range line.OutputGates {
			if seenGate[g.ID] {
				continue
			}
			seenGate[g.ID] = true

			nonControl := g.GetNonControllingValue()
			if nonControl == circuit.X {
				continue
			}
			for _, input := range g.Inputs {
				if onPath[input.ID] || input.IsAssigned() {
					continue
				}
				i.Logger.Trace("Setting line %s to non-controlling value %v to sensitize path",
					input.Name, nonControl)
				input.SetValue(nonControl)
				changed = true
			}
		}
	}

	if changed {
		i.Circuit.Implication()
		i.Frontier.UpdateDFrontier()
		i.Frontier.UpdateJFrontier()
	}
	return changed, nil
}

// CheckIfXPathExists reports whether at least one faulty (D/D') line has a
// structurally open path to a primary output: every gate along some route
// can still be sensitized.
func (i *Implication) CheckIfXPathExists() bool {
	var faultyLines []*circuit.Line
	for _, line := range i.Circuit.Lines {
		if line.IsFaulty() {
			faultyLines = append(faultyLines, line)
		}
	}
	if len(faultyLines) == 0 {
		return false
	}

	for _, faultyLine := range faultyLines {
		visited := make(map[int]bool)
		queue := []*circuit.Line{faultyLine}

		for len(queue) > 0 {
			current := queue[0]
			queue = queue[1:]

			if current.Type == circuit.PrimaryOutput {
				return true
			}
			if visited[current.ID] {
				continue
			}
			visited[current.ID] = true

			for _, gate := range current.OutputGates {
				if gate.Output.IsAssigned() && !gate.Output.IsFaulty() {
					continue
				}
				canSensitize := true
				for _, input := range gate.Inputs {
					if input.ID == current.ID {
						continue
					}
					if input.IsAssigned() && input.Value == gate.GetControllingValue() {
						canSensitize = false
						break
					}
				}
				if canSensitize {
					queue = append(queue, gate.Output)
				}
			}
		}
	}
	return false
}
