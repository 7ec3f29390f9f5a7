package parser

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/go-atpg/atpg/pkg/circuit"
)

var (
	inputRegex  = regexp.MustCompile(`^INPUT\((\w+)\)$`)
	outputRegex = regexp.MustCompile(`^OUTPUT\((\w+)\)$`)
	gateRegex   = regexp.MustCompile(`^(\w+)\s*=\s*(\w+)\((.+)\)$`)
)

// ReadBench parses an ISCAS89-style .bench netlist: INPUT()/OUTPUT()
// declarations plus "out = GATE(in1, in2, ...)" assignments, two passes
// (first to register every line, then to wire gates) so a gate can
// reference an output declared later in the file.
func ReadBench(path string) (*circuit.Circuit, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("parser: open %s: %w", path, err)
	}
	defer file.Close()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	c := circuit.NewCircuit(name)

	lineMap := make(map[string]*circuit.Line)
	nextLineID := 0

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		if m := inputRegex.FindStringSubmatch(text); m != nil {
			if _, exists := lineMap[m[1]]; !exists {
				l := circuit.NewLine(nextLineID, m[1], circuit.PrimaryInput)
				lineMap[m[1]] = l
				c.AddLine(l)
				nextLineID++
			}
			continue
		}

		if m := outputRegex.FindStringSubmatch(text); m != nil {
			if l, exists := lineMap[m[1]]; exists {
				l.Type = circuit.PrimaryOutput
			} else {
				l := circuit.NewLine(nextLineID, m[1], circuit.PrimaryOutput)
				lineMap[m[1]] = l
				c.AddLine(l)
				nextLineID++
			}
			continue
		}

		if m := gateRegex.FindStringSubmatch(text); m != nil {
			if _, exists := lineMap[m[1]]; !exists {
				l := circuit.NewLine(nextLineID, m[1], circuit.Normal)
				lineMap[m[1]] = l
				c.AddLine(l)
				nextLineID++
			}
			for _, in := range strings.Split(m[3], ",") {
				in = strings.TrimSpace(in)
				if _, exists := lineMap[in]; !exists {
					l := circuit.NewLine(nextLineID, in, circuit.Normal)
					lineMap[in] = l
					c.AddLine(l)
					nextLineID++
				}
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("parser: read %s: %w", path, err)
	}

	if _, err := file.Seek(0, 0); err != nil {
		return nil, fmt.Errorf("parser: rewind %s: %w", path, err)
	}
	nextGateID := 0
	scanner = bufio.NewScanner(file)
	for scanner.Scan() {
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") ||
			inputRegex.MatchString(text) || outputRegex.MatchString(text) {
			continue
		}
		m := gateRegex.FindStringSubmatch(text)
		if m == nil {
			continue
		}

		gate := circuit.NewGate(nextGateID, fmt.Sprintf("g%d", nextGateID), parseGateType(strings.ToUpper(m[2])))
		nextGateID++
		gate.SetOutput(lineMap[m[1]])
		for _, in := range strings.Split(m[3], ",") {
			gate.AddInput(lineMap[strings.TrimSpace(in)])
		}
		c.AddGate(gate)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("parser: read %s: %w", path, err)
	}

	c.AnalyzeTopology()
	return c, nil
}

func parseGateType(name string) circuit.GateType {
	switch name {
	case "AND":
		return circuit.AND
	case "OR":
		return circuit.OR
	case "NOT", "INV":
		return circuit.NOT
	case "NAND":
		return circuit.NAND
	case "NOR":
		return circuit.NOR
	case "XOR":
		return circuit.XOR
	case "XNOR":
		return circuit.XNOR
	case "BUFF", "BUF":
		return circuit.BUF
	default:
		return circuit.BUF
	}
}
