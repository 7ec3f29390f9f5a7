// Package compact implements pattern compaction: building a compatibility
// graph over a set of detected test vectors, coloring it (or running
// set-cover) to find a small representative subset, and merging compatible
// vectors within each group into a single pattern.
package compact

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/katalvlaran/lvlath/core"

	"github.com/go-atpg/atpg/pkg/tv"
)

// CompatGraph is the pairwise-incompatibility graph over a list of test
// vectors: an edge (i, j) means TVs[i] and TVs[j] disagree on at least one
// shared assigned position and can never be merged into the same pattern.
type CompatGraph struct {
	TVs   []tv.Vector
	Graph *core.Graph
}

// BuildCompatGraph runs the O(n²) pairwise compatibility scan described by
// spec.md §4.6 and stores the result as an undirected, unweighted,
// simple lvlath graph.
func BuildCompatGraph(tvs []tv.Vector) (*CompatGraph, error) {
	g := core.NewGraph()
	for i := range tvs {
		if err := g.AddVertex(vertexID(i)); err != nil {
			return nil, fmt.Errorf("compact: add vertex %d: %w", i, err)
		}
	}
	for i := 0; i < len(tvs); i++ {
		for j := i + 1; j < len(tvs); j++ {
			if !tvs[i].Compatible(tvs[j]) {
				if _, err := g.AddEdge(vertexID(i), vertexID(j), 0); err != nil {
					return nil, fmt.Errorf("compact: add edge %d-%d: %w", i, j, err)
				}
			}
		}
	}
	return &CompatGraph{TVs: tvs, Graph: g}, nil
}

func vertexID(i int) string { return "v" + strconv.Itoa(i) }

func vertexIndex(id string) int {
	n, _ := strconv.Atoi(strings.TrimPrefix(id, "v"))
	return n
}

// adjacencyMatrix materializes g's edges as a dense boolean matrix indexed
// by vector position, which the coloring heuristics below operate on
// directly (the graphs built here are dense in practice per spec.md §4.6).
func (g *CompatGraph) adjacencyMatrix() ([][]bool, error) {
	n := len(g.TVs)
	adj := make([][]bool, n)
	for i := range adj {
		adj[i] = make([]bool, n)
	}
	for i := 0; i < n; i++ {
		neighbors, err := g.Graph.NeighborIDs(vertexID(i))
		if err != nil {
			return nil, fmt.Errorf("compact: neighbors of %d: %w", i, err)
		}
		for _, nb := range neighbors {
			j := vertexIndex(nb)
			adj[i][j] = true
			adj[j][i] = true
		}
	}
	return adj, nil
}
