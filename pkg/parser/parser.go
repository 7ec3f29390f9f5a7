// Package parser reads gate-level netlists into pkg/circuit's Circuit
// model. Two formats are supported: BLIF and ISCAS89 .bench.
package parser

import (
	"fmt"
	"strings"

	"github.com/go-atpg/atpg/pkg/circuit"
)

// Read dispatches on path's extension: ".blif" reads BLIF, ".bench" reads
// ISCAS89, anything else falls back to BLIF.
func Read(path string) (*circuit.Circuit, error) {
	switch {
	case strings.HasSuffix(path, ".bench"):
		return ReadBench(path)
	case strings.HasSuffix(path, ".blif"):
		return ReadBLIF(path)
	default:
		c, err := ReadBLIF(path)
		if err != nil {
			return nil, fmt.Errorf("parser: %s has no recognized extension, BLIF fallback failed: %w", path, err)
		}
		return c, nil
	}
}
