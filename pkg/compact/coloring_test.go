package compact_test

import (
	"math/rand"
	"testing"

	"github.com/go-atpg/atpg/pkg/compact"
	"github.com/go-atpg/atpg/pkg/tv"
	"github.com/stretchr/testify/require"
)

// triangleTVs builds three pairwise-incompatible vectors (a 3-clique in the
// compatibility graph), forcing any valid coloring to use 3 distinct colors.
func triangleTVs() []tv.Vector {
	return []tv.Vector{
		vec(tv.Bit0, tv.Bit1, tv.BitX),
		vec(tv.Bit1, tv.Bit0, tv.BitX),
		vec(tv.Bit1, tv.Bit1, tv.Bit0),
	}
}

func assertProperColoring(t *testing.T, g *compact.CompatGraph, c *compact.Coloring) {
	t.Helper()
	for i := 0; i < len(g.TVs); i++ {
		for j := i + 1; j < len(g.TVs); j++ {
			if !g.TVs[i].Compatible(g.TVs[j]) {
				require.NotEqual(t, c.Color[i], c.Color[j], "vectors %d and %d conflict but share a color", i, j)
			}
		}
	}
}

func TestDSATURProducesProperColoring(t *testing.T) {
	g, err := compact.BuildCompatGraph(triangleTVs())
	require.NoError(t, err)
	c, err := compact.DSATUR(g)
	require.NoError(t, err)
	require.Equal(t, 3, c.K)
	assertProperColoring(t, g, c)
}

func TestISXProducesProperColoring(t *testing.T) {
	g, err := compact.BuildCompatGraph(triangleTVs())
	require.NoError(t, err)
	c, err := compact.ISX(g)
	require.NoError(t, err)
	require.Equal(t, 3, c.K)
	assertProperColoring(t, g, c)
}

func TestTabuColProducesProperColoring(t *testing.T) {
	g, err := compact.BuildCompatGraph(triangleTVs())
	require.NoError(t, err)
	c, err := compact.TabuCol(g, 3, rand.New(rand.NewSource(7)), 200)
	require.NoError(t, err)
	assertProperColoring(t, g, c)
}

func TestColoringClassMembersGroupsByColor(t *testing.T) {
	tvs := []tv.Vector{
		vec(tv.Bit0, tv.BitX),
		vec(tv.BitX, tv.Bit1),
		vec(tv.Bit1, tv.BitX),
	}
	g, err := compact.BuildCompatGraph(tvs)
	require.NoError(t, err)
	c, err := compact.DSATUR(g)
	require.NoError(t, err)

	total := 0
	for _, members := range c.ClassMembers() {
		total += len(members)
	}
	require.Equal(t, len(tvs), total)
}
