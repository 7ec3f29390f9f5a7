package compact

import (
	"context"
	"errors"
	"math/rand"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/go-atpg/atpg/pkg/circuit"
	"github.com/go-atpg/atpg/pkg/fault"
	"github.com/go-atpg/atpg/pkg/fsim"
	"github.com/go-atpg/atpg/pkg/tv"
)

// ErrUnknownAlgorithm is returned for any tag outside the recognized set;
// Compact still returns the caller's input unchanged alongside it.
var ErrUnknownAlgorithm = errors.New("compact: unknown algorithm tag")

// ErrMissingFaultContext is returned by tags that need a fault list and
// network (anything routing through min-cover) when Options omits them.
var ErrMissingFaultContext = errors.New("compact: tag requires fault/network context")

// Options bundles everything a compaction tag might need beyond the TV
// list itself.
type Options struct {
	RNG           *rand.Rand
	MaxIterations int // TabuCol local-search cap; 0 uses its default
	Faults        []fault.Fault
	Network       *circuit.Circuit
	FaultKind     circuit.FaultKind
	Concurrency   int // PPSFP block parallelism for mincov-based tags; 0 = sequential
}

// Compact dispatches tag to one of the pipelines in spec.md §4.9's table.
// Unknown tags return the input TV list unchanged along with
// ErrUnknownAlgorithm.
func Compact(tvs []tv.Vector, tag string, opts Options) ([]tv.Vector, error) {
	switch tag {
	case "dsatur":
		return compactByColoring(tvs, DSATUR, opts)
	case "isx":
		return compactByColoring(tvs, ISX, opts)
	case "tabucol":
		return compactByColoring(tvs, tabucolColoring(opts), opts)
	case "mincov":
		return MinCovCompact(opts.Faults, tvs, opts.Network, opts.FaultKind, opts)
	case "mincov+dsatur":
		return compactChain(tvs, opts, mincovStep, coloringStep(DSATUR))
	case "mincov+isx":
		return compactChain(tvs, opts, mincovStep, coloringStep(ISX))
	case "dsatur+mincov":
		return compactChain(tvs, opts, coloringStep(DSATUR), mincovStep)
	case "isx+mincov":
		return compactChain(tvs, opts, coloringStep(ISX), mincovStep)
	case "coloring2":
		return coloringVariant(tvs, opts, "red1", coloringStep(DSATUR))
	case "coloring3":
		return coloringVariant(tvs, opts, "red2", coloringStep(DSATUR))
	case "coloring4":
		return coloringVariant(tvs, opts, "red1,red2", coloringStep(DSATUR))
	case "coloring5":
		return coloringVariant(tvs, opts, "red1:narrowing", coloringStep(ISX))
	case "coloring6":
		return coloringVariant(tvs, opts, "red1,red2", coloringStep(tabucolColoring(opts)))
	default:
		return tvs, ErrUnknownAlgorithm
	}
}

type pipelineStep func(tvs []tv.Vector, opts Options) ([]tv.Vector, error)

func compactChain(tvs []tv.Vector, opts Options, steps ...pipelineStep) ([]tv.Vector, error) {
	cur := tvs
	for _, step := range steps {
		next, err := step(cur, opts)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return cur, nil
}

func mincovStep(tvs []tv.Vector, opts Options) ([]tv.Vector, error) {
	return MinCovCompact(opts.Faults, tvs, opts.Network, opts.FaultKind, opts)
}

func coloringStep(colorFn func(*CompatGraph) (*Coloring, error)) pipelineStep {
	return func(tvs []tv.Vector, opts Options) ([]tv.Vector, error) {
		return compactByColoring(tvs, colorFn, opts)
	}
}

// coloringVariant is this implementation's reading of the spec's
// underspecified "coloring2..6" tags: apply the named fault-reduction mode
// to Options.Faults, rebuild the min-cover matrix against the reduced fault
// list, then run the given coloring pipeline on the min-cover result. See
// DESIGN.md for why this reading was chosen over alternatives.
func coloringVariant(tvs []tv.Vector, opts Options, reduceModes string, colorStep pipelineStep) ([]tv.Vector, error) {
	if opts.Network == nil {
		return nil, ErrMissingFaultContext
	}
	reduced := fault.Reduce(append([]fault.Fault(nil), opts.Faults...), opts.Network, opts.FaultKind, reduceModes)
	representative := make([]fault.Fault, 0, len(reduced))
	for _, f := range reduced {
		if f.Representative {
			representative = append(representative, f)
		}
	}
	narrowedOpts := opts
	narrowedOpts.Faults = representative

	covered, err := MinCovCompact(representative, tvs, opts.Network, opts.FaultKind, narrowedOpts)
	if err != nil {
		return nil, err
	}
	return colorStep(covered, narrowedOpts)
}

func tabucolColoring(opts Options) func(*CompatGraph) (*Coloring, error) {
	return func(g *CompatGraph) (*Coloring, error) {
		seed, err := DSATUR(g)
		if err != nil {
			return nil, err
		}
		k := seed.K
		if k == 0 {
			k = 1
		}
		return TabuCol(g, k, opts.RNG, opts.MaxIterations)
	}
}

func compactByColoring(tvs []tv.Vector, colorFn func(*CompatGraph) (*Coloring, error), opts Options) ([]tv.Vector, error) {
	g, err := BuildCompatGraph(tvs)
	if err != nil {
		return nil, err
	}
	coloring, err := colorFn(g)
	if err != nil {
		return nil, err
	}
	return mergeByColor(tvs, coloring, opts.RNG)
}

// mergeByColor merges the TVs of each color class into one pattern,
// preserving the compaction invariant: every originally-detected fault is
// still detected by at least one output TV, since Merge only ever widens
// care bits that every merged TV already agreed on. When rng is non-nil,
// positions left X by every vector in the class are randomly filled rather
// than left don't-care (spec.md §9 Open Question 1).
func mergeByColor(tvs []tv.Vector, c *Coloring, rng *rand.Rand) ([]tv.Vector, error) {
	var out []tv.Vector
	for _, members := range c.ClassMembers() {
		vs := make([]tv.Vector, len(members))
		for i, idx := range members {
			vs[i] = tvs[idx]
		}
		merged, err := tv.MergeAll(vs)
		if err != nil {
			return nil, err
		}
		if rng != nil {
			merged = merged.RandomFill(rng)
		}
		out = append(out, merged)
	}
	return out, nil
}

// MinCovCompact builds the fault-vs-pattern coverage matrix by running
// Ppsfp over tvs in Width-sized blocks (in parallel when opts.Concurrency
// allows it), solves the resulting set-cover instance, and returns the
// selected subset of tvs in original order.
func MinCovCompact(faults []fault.Fault, tvs []tv.Vector, network *circuit.Circuit, ft circuit.FaultKind, opts Options) ([]tv.Vector, error) {
	if network == nil {
		return nil, ErrMissingFaultContext
	}
	if len(tvs) == 0 {
		return nil, nil
	}

	sim := fsim.New(network, faults, nil)
	faultRow := make(map[int]int, len(faults))
	for i, f := range faults {
		faultRow[f.ID] = i
	}

	m := NewCoverMatrix()
	var mu sync.Mutex

	type block struct {
		offset int
		tvs    []tv.Vector
	}
	var blocks []block
	for off := 0; off < len(tvs); off += fsim.Width {
		end := off + fsim.Width
		if end > len(tvs) {
			end = len(tvs)
		}
		blocks = append(blocks, block{offset: off, tvs: tvs[off:end]})
	}

	g, _ := errgroup.WithContext(context.Background())
	if opts.Concurrency > 0 {
		g.SetLimit(opts.Concurrency)
	} else {
		g.SetLimit(1)
	}
	for _, b := range blocks {
		b := b
		g.Go(func() error {
			detections := sim.Ppsfp(b.tvs)
			mu.Lock()
			defer mu.Unlock()
			for _, d := range detections {
				row, ok := faultRow[d.Fault.ID]
				if !ok {
					continue
				}
				for pi := 0; pi < len(b.tvs); pi++ {
					if d.Mask&(uint64(1)<<uint(pi)) != 0 {
						m.InsertElem(row, b.offset+pi)
					}
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	_, solution := m.Solve()
	sort.Ints(solution)
	out := make([]tv.Vector, len(solution))
	for i, col := range solution {
		out[i] = tvs[col]
	}
	return out, nil
}
