// Package fault models individual faults, their detection status, and the
// fault-list preprocessing (equivalence/dominance reduction) applied before
// test generation.
package fault

import (
	"fmt"

	"github.com/go-atpg/atpg/pkg/circuit"
)

// Fault is a single stuck-at or transition-delay fault site.
type Fault struct {
	ID             int
	Site           *circuit.Line
	Kind           circuit.FaultKind
	StuckAt        circuit.LogicValue // meaningful when Kind == circuit.StuckAt
	Representative bool               // false if collapsed into another fault's equivalence class
}

func (f Fault) String() string {
	if f.Kind == circuit.TransitionDelay {
		return fmt.Sprintf("%s/transition-%s", f.Site.Name, f.StuckAt)
	}
	return fmt.Sprintf("%s/sa%s", f.Site.Name, f.StuckAt)
}

// BuildFaultList enumerates the full stuck-at (or transition-delay) fault
// list for a circuit: one SA0 and one SA1 fault per line, every one
// initially its own representative.
func BuildFaultList(c *circuit.Circuit, kind circuit.FaultKind) []Fault {
	lines := c.SortedLines()
	faults := make([]Fault, 0, 2*len(lines))
	id := 0
	for _, line := range lines {
		for _, sa := range []circuit.LogicValue{circuit.Zero, circuit.One} {
			faults = append(faults, Fault{
				ID:             id,
				Site:           line,
				Kind:           kind,
				StuckAt:        sa,
				Representative: true,
			})
			id++
		}
	}
	return faults
}
