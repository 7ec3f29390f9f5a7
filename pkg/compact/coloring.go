package compact

import (
	"math/rand"
	"sort"
)

// Coloring is the result of a graph-coloring heuristic: K colors were used,
// and Color[i] holds the color (1-based) assigned to vector index i. A
// vertex left uncolored by an early-termination policy reads 0.
type Coloring struct {
	K     int
	Color []int
}

func newColoring(n int) *Coloring {
	return &Coloring{Color: make([]int, n)}
}

func (c *Coloring) finalize() *Coloring {
	for _, col := range c.Color {
		if col > c.K {
			c.K = col
		}
	}
	return c
}

// ClassMembers groups vector indices by their assigned color, in ascending
// color order. Uncolored vertices (color 0) are omitted.
func (c *Coloring) ClassMembers() [][]int {
	byColor := make(map[int][]int)
	for i, col := range c.Color {
		if col == 0 {
			continue
		}
		byColor[col] = append(byColor[col], i)
	}
	out := make([][]int, 0, c.K)
	for col := 1; col <= c.K; col++ {
		if members, ok := byColor[col]; ok {
			out = append(out, members)
		}
	}
	return out
}

// DSATUR repeatedly colors the uncolored vertex of maximum saturation
// degree (distinct colors among its neighbors), breaking ties by maximum
// remaining degree and then lowest index, assigning the smallest color not
// used by any colored neighbor.
func DSATUR(g *CompatGraph) (*Coloring, error) {
	adj, err := g.adjacencyMatrix()
	if err != nil {
		return nil, err
	}
	n := len(adj)
	c := newColoring(n)

	degree := make([]int, n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if adj[i][j] {
				degree[i]++
			}
		}
	}
	saturation := make([]int, n)

	for colored := 0; colored < n; colored++ {
		best := -1
		for i := 0; i < n; i++ {
			if c.Color[i] != 0 {
				continue
			}
			if best == -1 || better(saturation[i], degree[i], i, saturation[best], degree[best], best) {
				best = i
			}
		}

		used := make(map[int]bool)
		for j := 0; j < n; j++ {
			if adj[best][j] && c.Color[j] != 0 {
				used[c.Color[j]] = true
			}
		}
		color := 1
		for used[color] {
			color++
		}
		c.Color[best] = color

		for j := 0; j < n; j++ {
			if !adj[best][j] || c.Color[j] != 0 {
				continue
			}
			neighborColors := make(map[int]bool)
			for k := 0; k < n; k++ {
				if adj[j][k] && c.Color[k] != 0 {
					neighborColors[c.Color[k]] = true
				}
			}
			saturation[j] = len(neighborColors)
		}
	}
	return c.finalize(), nil
}

// better reports whether candidate (satA, degA, idxA) should be preferred
// over the current best (satB, degB, idxB) under DSATUR's tie-break chain.
func better(satA, degA, idxA, satB, degB, idxB int) bool {
	if satA != satB {
		return satA > satB
	}
	if degA != degB {
		return degA > degB
	}
	return idxA < idxB
}

// ISX (Independent Set Extraction) repeatedly extracts a maximal
// independent set from the residual graph, greedily by ascending degree,
// assigns it one fresh color, and removes it.
func ISX(g *CompatGraph) (*Coloring, error) {
	adj, err := g.adjacencyMatrix()
	if err != nil {
		return nil, err
	}
	n := len(adj)
	c := newColoring(n)

	remaining := make([]bool, n)
	for i := range remaining {
		remaining[i] = true
	}
	left := n
	color := 0

	for left > 0 {
		color++
		degree := make([]int, n)
		for i := 0; i < n; i++ {
			if !remaining[i] {
				continue
			}
			for j := 0; j < n; j++ {
				if remaining[j] && adj[i][j] {
					degree[i]++
				}
			}
		}

		order := make([]int, 0, left)
		for i := 0; i < n; i++ {
			if remaining[i] {
				order = append(order, i)
			}
		}
		sort.Slice(order, func(a, b int) bool {
			if degree[order[a]] != degree[order[b]] {
				return degree[order[a]] < degree[order[b]]
			}
			return order[a] < order[b]
		})

		inSet := make(map[int]bool)
		for _, v := range order {
			conflict := false
			for member := range inSet {
				if adj[v][member] {
					conflict = true
					break
				}
			}
			if !conflict {
				inSet[v] = true
			}
		}

		for v := range inSet {
			c.Color[v] = color
			remaining[v] = false
			left--
		}
	}
	return c.finalize(), nil
}

// TabuCol runs tabu search local coloring with k colors, starting from a
// random assignment of colors 1..k drawn from rng and moving one conflicted
// vertex's color at a time, with a tabu list of length L and aspiration allowing a
// tabu move that beats the best-known conflict count. Terminates at zero
// conflicts or maxIterations.
func TabuCol(g *CompatGraph, k int, rng *rand.Rand, maxIterations int) (*Coloring, error) {
	adj, err := g.adjacencyMatrix()
	if err != nil {
		return nil, err
	}
	n := len(adj)
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	if maxIterations <= 0 {
		maxIterations = 1000
	}
	const tabuLength = 10

	color := make([]int, n)
	for i := range color {
		color[i] = rng.Intn(k) + 1
	}

	conflictCount := func(colorAssignment []int) int {
		total := 0
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				if adj[i][j] && colorAssignment[i] == colorAssignment[j] {
					total++
				}
			}
		}
		return total
	}

	type tabuKey struct {
		vertex, color int
	}
	tabu := make(map[tabuKey]int)
	best := append([]int(nil), color...)
	bestConflicts := conflictCount(color)

	for iter := 0; iter < maxIterations && bestConflicts > 0; iter++ {
		// Find a conflicted vertex.
		var conflicted []int
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				if i != j && adj[i][j] && color[i] == color[j] {
					conflicted = append(conflicted, i)
					break
				}
			}
		}
		if len(conflicted) == 0 {
			break
		}
		v := conflicted[rng.Intn(len(conflicted))]

		bestMoveColor, bestMoveDelta := -1, 1<<30
		for newColor := 1; newColor <= k; newColor++ {
			if newColor == color[v] {
				continue
			}
			trial := append([]int(nil), color...)
			trial[v] = newColor
			delta := conflictCount(trial)

			key := tabuKey{v, newColor}
			tabuUntil, isTabu := tabu[key]
			if isTabu && iter < tabuUntil && delta >= bestConflicts {
				continue // tabu and doesn't satisfy aspiration
			}
			if delta < bestMoveDelta {
				bestMoveDelta = delta
				bestMoveColor = newColor
			}
		}
		if bestMoveColor == -1 {
			continue
		}

		tabu[tabuKey{v, color[v]}] = iter + tabuLength
		color[v] = bestMoveColor
		if bestMoveDelta < bestConflicts {
			bestConflicts = bestMoveDelta
			best = append([]int(nil), color...)
		}
	}

	c := newColoring(n)
	c.Color = best
	return c.finalize(), nil
}
