package fanengine

import (
	"github.com/go-atpg/atpg/pkg/circuit"
	"github.com/go-atpg/atpg/pkg/logging"
)

// Sensitization applies the FAN algorithm's unique-sensitization heuristic
// directly from the decision loop (as opposed to Implication's internal
// re-application after every implication pass).
type Sensitization struct {
	Circuit     *circuit.Circuit
	Logger      *logging.Logger
	Topology    *circuit.Topology
	Implication *Implication
	Frontier    *Frontier
}

func NewSensitization(c *circuit.Circuit, t *circuit.Topology, i *Implication, f *Frontier, logger *logging.Logger) *Sensitization {
	return &Sensitization{Circuit: c, Logger: logger, Topology: t, Implication: i, Frontier: f}
}

// ApplyUniqueSensitization sensitizes the lines mandatory for gate's fault
// effect to reach a primary output, then re-runs implication if anything
// changed.
func (s *Sensitization) ApplyUniqueSensitization(gate *circuit.Gate) (bool, error) {
	s.Logger.Algorithm("Attempting unique sensitization for gate %s", gate.Name)
	return s.Implication.ApplyUniqueSensitization(gate)
}

// IdentifySensitizableGates returns the D-frontier gates that have at least
// one structural path to a primary output.
func (s *Sensitization) IdentifySensitizableGates() []*circuit.Gate {
	var result []*circuit.Gate
	for _, gate := range s.Frontier.DFrontier {
		if len(s.Topology.FindUniquePathsToOutputs(gate)) > 0 {
			result = append(result, gate)
		}
	}
	return result
}

// IsPathSensitized reports whether a sensitized path already exists from
// line to some primary output under the current (possibly partial)
// assignment.
func (s *Sensitization) IsPathSensitized(line *circuit.Line) bool {
	if line.Type == circuit.PrimaryOutput {
		return true
	}
	for _, gate := range line.OutputGates {
		sensitized := true
		for _, input := range gate.Inputs {
			if input.ID == line.ID {
				continue
			}
			if !input.IsAssigned() || input.Value == gate.GetControllingValue() {
				sensitized = false
				break
			}
		}
		if sensitized && s.IsPathSensitized(gate.Output) {
			return true
		}
	}
	return false
}

// FindCriticalInputs returns objectives for the side inputs of every
// D-frontier gate that must take the non-controlling value to keep the
// fault effect propagating.
func (s *Sensitization) FindCriticalInputs() []InitialObjective {
	var objectives []InitialObjective
	for _, gate := range s.Frontier.DFrontier {
		nonControl := gate.GetNonControllingValue()
		if nonControl == circuit.X {
			continue
		}
		for _, input := range gate.Inputs {
			if !input.IsFaulty() && !input.IsAssigned() {
				objectives = append(objectives, InitialObjective{Line: input, Value: nonControl})
			}
		}
	}
	return objectives
}
