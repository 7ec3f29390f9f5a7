package compact_test

import (
	"fmt"
	"testing"

	"github.com/go-atpg/atpg/pkg/compact"
	"github.com/go-atpg/atpg/pkg/tv"
	"github.com/stretchr/testify/require"
)

func vec(bits ...tv.Bit) tv.Vector {
	b := tv.NewBuilder(len(bits))
	for i, bit := range bits {
		b.Set(i, bit)
	}
	return b.Build()
}

func TestBuildCompatGraphHasNoSelfLoops(t *testing.T) {
	tvs := []tv.Vector{
		vec(tv.Bit0, tv.Bit1, tv.BitX),
		vec(tv.Bit1, tv.Bit1, tv.BitX),
		vec(tv.Bit0, tv.BitX, tv.Bit0),
	}
	g, err := compact.BuildCompatGraph(tvs)
	require.NoError(t, err)
	require.Equal(t, tvs, g.TVs)
	for i := range tvs {
		id := fmt.Sprintf("v%d", i)
		nbs, err := g.Graph.NeighborIDs(id)
		require.NoError(t, err)
		require.NotContains(t, nbs, id)
	}
}

func TestBuildCompatGraphEdgesAreSymmetric(t *testing.T) {
	tvs := []tv.Vector{
		vec(tv.Bit0, tv.Bit1, tv.BitX), // 0
		vec(tv.Bit1, tv.Bit1, tv.BitX), // 1, conflicts with 0 on position 0
		vec(tv.BitX, tv.BitX, tv.Bit0), // 2, compatible with both
	}
	g, err := compact.BuildCompatGraph(tvs)
	require.NoError(t, err)

	coloring, err := compact.DSATUR(g)
	require.NoError(t, err)
	require.NotEqual(t, coloring.Color[0], coloring.Color[1])

	for i := range tvs {
		id := fmt.Sprintf("v%d", i)
		nbs, err := g.Graph.NeighborIDs(id)
		require.NoError(t, err)
		for _, nb := range nbs {
			back, err := g.Graph.NeighborIDs(nb)
			require.NoError(t, err)
			require.Contains(t, back, id)
		}
	}
}
