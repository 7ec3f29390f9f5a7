package parser

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-atpg/atpg/pkg/circuit"
)

// ErrUnsupportedCover is returned when a .names block's single-output
// cover doesn't reduce to one of the circuit model's primitive gates
// (AND/OR/NAND/NOR/XOR/XNOR/NOT/BUF) — this parser targets the
// combinational subset the gate model can represent, not general
// multi-input BLIF logic.
var ErrUnsupportedCover = fmt.Errorf("parser: .names cover does not reduce to a supported gate")

// ReadBLIF parses the combinational subset of BLIF: .model/.inputs/
// .outputs/.names/.end. Each .names block becomes one gate, its type
// inferred from the block's single-output-cover truth table. .latch is
// rejected, since the circuit model and the ATPG pipeline built on it are
// combinational only; any other unrecognized directive is skipped.
func ReadBLIF(path string) (*circuit.Circuit, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("parser: open %s: %w", path, err)
	}
	defer file.Close()

	lines, err := joinContinuations(file)
	if err != nil {
		return nil, fmt.Errorf("parser: read %s: %w", path, err)
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	c := circuit.NewCircuit(name)

	lineMap := make(map[string]*circuit.Line)
	nextLineID := 0
	getLine := func(n string) *circuit.Line {
		if l, ok := lineMap[n]; ok {
			return l
		}
		l := circuit.NewLine(nextLineID, n, circuit.Normal)
		nextLineID++
		lineMap[n] = l
		c.AddLine(l)
		return l
	}

	nextGateID := 0
	var i int
	for i = 0; i < len(lines); i++ {
		fields := strings.Fields(lines[i])
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case ".model":
			if len(fields) > 1 {
				c.Name = fields[1]
			}
		case ".inputs":
			for _, n := range fields[1:] {
				getLine(n).Type = circuit.PrimaryInput
			}
		case ".outputs":
			for _, n := range fields[1:] {
				getLine(n).Type = circuit.PrimaryOutput
			}
		case ".names":
			if len(fields) < 2 {
				return nil, fmt.Errorf("parser: %s: .names needs at least one terminal", path)
			}
			inputNames := fields[1 : len(fields)-1]
			outputName := fields[len(fields)-1]

			var cover []string
			for i+1 < len(lines) {
				next := strings.TrimSpace(lines[i+1])
				if next == "" || strings.HasPrefix(next, ".") {
					break
				}
				cover = append(cover, next)
				i++
			}

			if len(inputNames) == 0 {
				// Constant node: no fan-in to drive it, so treat it like a
				// primary input rather than modeling a dedicated constant gate.
				outLine := getLine(outputName)
				if outLine.Type == circuit.Normal {
					outLine.Type = circuit.PrimaryInput
				}
				continue
			}

			gt, err := classifyCover(len(inputNames), cover)
			if err != nil {
				return nil, fmt.Errorf("parser: %s: node %s: %w", path, outputName, err)
			}

			gate := circuit.NewGate(nextGateID, fmt.Sprintf("g%d", nextGateID), gt)
			nextGateID++
			for _, in := range inputNames {
				gate.AddInput(getLine(in))
			}
			gate.SetOutput(getLine(outputName))
			c.AddGate(gate)
		case ".latch":
			return nil, fmt.Errorf("parser: %s: .latch not supported, combinational circuits only", path)
		case ".end":
		default:
			// unrecognized directive (.exdc, comments without '#', etc.): skip
		}
	}

	c.AnalyzeTopology()
	return c, nil
}

// joinContinuations reads every line, stripping BLIF's trailing
// backslash line-continuation and blank/comment lines.
func joinContinuations(f *os.File) ([]string, error) {
	var out []string
	scanner := bufio.NewScanner(f)
	var pending strings.Builder
	for scanner.Scan() {
		text := strings.TrimRight(scanner.Text(), " \t")
		trimmed := strings.TrimSpace(text)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		if strings.HasSuffix(text, "\\") {
			pending.WriteString(strings.TrimSuffix(text, "\\"))
			pending.WriteString(" ")
			continue
		}
		pending.WriteString(text)
		out = append(out, pending.String())
		pending.Reset()
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// classifyCover expands a .names single-output-cover (rows of
// "<n-char input pattern> <0|1>", '-' meaning don't-care) into a full
// truth table and matches it against the gate model's primitive
// functions.
func classifyCover(nin int, cover []string) (circuit.GateType, error) {
	if nin > 2 {
		return 0, ErrUnsupportedCover
	}
	size := 1 << uint(nin)
	table := make([]bool, size)
	for _, row := range cover {
		fields := strings.Fields(row)
		var pattern string
		out := "1"
		switch len(fields) {
		case 1:
			pattern = "" // nin == 0, constant node
			out = fields[0]
		case 2:
			pattern = fields[0]
			out = fields[1]
		default:
			return 0, ErrUnsupportedCover
		}
		if out != "1" {
			continue // only ON-set (output=1) rows contribute; unlisted combos default to 0
		}
		for mask := 0; mask < size; mask++ {
			if matchesPattern(pattern, mask, nin) {
				table[mask] = true
			}
		}
	}
	return tableToGate(nin, table)
}

// matchesPattern reports whether the bits of mask (the cover's leftmost
// input is the most significant of the nin bits) satisfy the literal
// pattern, honoring '-' as don't-care.
func matchesPattern(pattern string, mask, nin int) bool {
	for i := 0; i < nin; i++ {
		if i >= len(pattern) {
			continue
		}
		bit := (mask >> uint(nin-1-i)) & 1
		switch pattern[i] {
		case '0':
			if bit != 0 {
				return false
			}
		case '1':
			if bit != 1 {
				return false
			}
		case '-':
		default:
			return false
		}
	}
	return true
}

func tableToGate(nin int, table []bool) (circuit.GateType, error) {
	switch nin {
	case 1:
		switch {
		case !table[0] && table[1]:
			return circuit.BUF, nil
		case table[0] && !table[1]:
			return circuit.NOT, nil
		}
	case 2:
		// table index bit1<<1|bit0, i.e. table[2*a+b] = f(a, b)
		switch {
		case table[3] && !table[0] && !table[1] && !table[2]:
			return circuit.AND, nil
		case !table[0] && table[1] && table[2] && table[3]:
			return circuit.OR, nil
		case !table[3] && table[0] && table[1] && table[2]:
			return circuit.NAND, nil
		case table[0] && !table[1] && !table[2] && !table[3]:
			return circuit.NOR, nil
		case !table[0] && table[1] && table[2] && !table[3]:
			return circuit.XOR, nil
		case table[0] && !table[1] && !table[2] && table[3]:
			return circuit.XNOR, nil
		}
	}
	return 0, ErrUnsupportedCover
}
