package parser_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-atpg/atpg/pkg/circuit"
	"github.com/go-atpg/atpg/pkg/parser"
)

func TestReadBLIFClassifiesPrimitiveGates(t *testing.T) {
	tempDir := t.TempDir()
	blifFile := filepath.Join(tempDir, "test_circuit.blif")

	content := `.model test_circuit
.inputs a b
.outputs f
.names a b n1
11 1
.names b n2
0 1
.names n1 n2 f
01 1
10 1
.end
`
	if err := os.WriteFile(blifFile, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write blif file: %v", err)
	}

	c, err := parser.ReadBLIF(blifFile)
	if err != nil {
		t.Fatalf("ReadBLIF failed: %v", err)
	}
	if len(c.Gates) != 3 {
		t.Fatalf("expected 3 gates, got %d", len(c.Gates))
	}

	var gotAND, gotNOT, gotXOR bool
	for _, g := range c.Gates {
		switch g.Type {
		case circuit.AND:
			gotAND = true
		case circuit.NOT:
			gotNOT = true
		case circuit.XOR:
			gotXOR = true
		}
	}
	if !gotAND || !gotNOT || !gotXOR {
		t.Errorf("expected AND, NOT, and XOR gates, got AND=%v NOT=%v XOR=%v", gotAND, gotNOT, gotXOR)
	}
}

func TestReadBLIFRejectsLatch(t *testing.T) {
	tempDir := t.TempDir()
	blifFile := filepath.Join(tempDir, "seq.blif")
	content := ".model seq\n.inputs a\n.outputs q\n.latch a q 0\n.end\n"
	if err := os.WriteFile(blifFile, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write blif file: %v", err)
	}

	if _, err := parser.ReadBLIF(blifFile); err == nil {
		t.Error("expected an error for a sequential .latch block")
	}
}
