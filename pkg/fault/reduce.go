package fault

import (
	"strings"

	"github.com/go-atpg/atpg/pkg/circuit"
)

// Reduce applies the fault-list preprocessing named by modes, a
// comma-separated, order-independent set of tokens. Unknown tokens are
// ignored, matching the "must accept any subset-combination string"
// contract used by the original fault_reduction call. Reduce never removes
// Fault entries from the slice: it only flips Representative to false on
// faults collapsed or dominated away, so callers that need the full list
// (e.g. total-fault reporting) still see every site.
func Reduce(faults []Fault, network *circuit.Circuit, ft circuit.FaultKind, modes string) []Fault {
	tokens := make(map[string]bool)
	for _, t := range strings.Split(modes, ",") {
		t = strings.TrimSpace(t)
		if t != "" {
			tokens[t] = true
		}
	}

	switch {
	case tokens["red1:narrowing"]:
		collapseEquivalent(faults, network, narrowOnly)
	case tokens["red1"]:
		collapseEquivalent(faults, network, nil)
	}

	if tokens["red2"] {
		collapseDominated(faults, network)
	}

	return faults
}

// narrowOnly restricts red1 to head lines and free (unbound) lines — this
// repository's reading of the undocumented "red1:narrowing" mode, recorded
// as a judgment call in DESIGN.md.
func narrowOnly(l *circuit.Line) bool {
	return l.IsHeadLine || l.IsFree
}

// collapseEquivalent marks structurally-equivalent input-side faults as
// non-representative, keeping the gate-output fault as the sole
// representative of each equivalence class. filter, if non-nil, restricts
// which input lines participate.
func collapseEquivalent(faults []Fault, network *circuit.Circuit, filter func(*circuit.Line) bool) {
	byLineValue := make(map[lineValueKey]*Fault, len(faults))
	for i := range faults {
		byLineValue[lineValueKey{faults[i].Site.ID, faults[i].StuckAt}] = &faults[i]
	}

	for _, gate := range network.SortedGates() {
		for _, in := range gate.Inputs {
			if filter != nil && !filter(in) {
				continue
			}
			for _, sa := range []circuit.LogicValue{circuit.Zero, circuit.One} {
				target, isCollapsible := collapseTarget(gate.Type, sa)
				if !isCollapsible {
					continue
				}
				inF, hasIn := byLineValue[lineValueKey{in.ID, sa}]
				outF, hasOut := byLineValue[lineValueKey{gate.Output.ID, target}]
				if hasIn && hasOut && inF.Site.ID != outF.Site.ID {
					inF.Representative = false
				}
			}
		}
	}
}

type lineValueKey struct {
	lineID int
	value  circuit.LogicValue
}

// collapseTarget returns the gate-output stuck-at value that an input
// stuck-at-sa fault collapses into for the given gate type, per the
// classical single-output-gate equivalence rules.
func collapseTarget(gt circuit.GateType, sa circuit.LogicValue) (circuit.LogicValue, bool) {
	switch gt {
	case circuit.AND:
		if sa == circuit.Zero {
			return circuit.Zero, true
		}
	case circuit.NAND:
		if sa == circuit.Zero {
			return circuit.One, true
		}
	case circuit.OR:
		if sa == circuit.One {
			return circuit.One, true
		}
	case circuit.NOR:
		if sa == circuit.One {
			return circuit.Zero, true
		}
	case circuit.BUF:
		return sa, true
	case circuit.NOT:
		if sa == circuit.Zero {
			return circuit.One, true
		}
		return circuit.Zero, true
	}
	return circuit.X, false
}

// collapseDominated drops the gate-output fault at the gate's controlling
// value when an input-side fault of the same stuck-at value exists: any
// test that sensitizes the input fault (forcing every other input to the
// non-controlling value) also forces the output to the controlling value,
// so the output fault adds no coverage beyond its input-side dominator.
func collapseDominated(faults []Fault, network *circuit.Circuit) {
	byLineValue := make(map[lineValueKey]*Fault, len(faults))
	for i := range faults {
		byLineValue[lineValueKey{faults[i].Site.ID, faults[i].StuckAt}] = &faults[i]
	}

	for _, gate := range network.SortedGates() {
		if len(gate.Inputs) < 2 {
			continue
		}
		controlling := gate.GetControllingValue()
		if controlling == circuit.X {
			continue
		}
		outF, ok := byLineValue[lineValueKey{gate.Output.ID, controlling}]
		if !ok || !outF.Representative {
			continue
		}
		dominated := false
		for _, in := range gate.Inputs {
			if _, ok := byLineValue[lineValueKey{in.ID, controlling}]; ok {
				dominated = true
				break
			}
		}
		if dominated {
			outF.Representative = false
		}
	}
}
