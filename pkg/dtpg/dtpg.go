// Package dtpg is the deterministic test pattern generation façade: given a
// single fault, produce a detecting vector or a proof it cannot be
// detected. It wraps pkg/fanengine, selecting how much of the circuit each
// solve considers "the unit" (single gate, FFR, or MFFC) per spec.
package dtpg

import (
	"math/rand"

	"github.com/go-atpg/atpg/pkg/circuit"
	"github.com/go-atpg/atpg/pkg/fanengine"
	"github.com/go-atpg/atpg/pkg/fault"
	"github.com/go-atpg/atpg/pkg/logging"
	"github.com/go-atpg/atpg/pkg/tv"
)

// Option configures an Engine at construction time.
type Option func(*config)

type config struct {
	logger *logging.Logger
	limits fanengine.Limits
	rng    *rand.Rand
}

// WithLogger overrides the engine's logger (default: a no-op logger, since
// a full run solves one fault per FFR/gate and per-solve narration would
// dominate output).
func WithLogger(l *logging.Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithMaxDecisions overrides the decision-search ceiling that stands in for
// a SAT solver timeout.
func WithMaxDecisions(n int) Option {
	return func(c *config) { c.limits.MaxDecisions = n }
}

// WithRNG overrides the randomness used to break ties in the decision
// search, which is what lets SolveK's retries surface a distinct vector for
// the same fault. The default (rand.NewSource(1), matching
// pkg/compact.TabuCol's nil-rng default) keeps k=1 solves reproducible
// without requiring every caller to supply a source.
func WithRNG(r *rand.Rand) Option {
	return func(c *config) { c.rng = r }
}

func newConfig(opts []Option) config {
	c := config{logger: logging.Nop(), limits: fanengine.DefaultLimits, rng: rand.New(rand.NewSource(1))}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Engine generates tests for individual faults within a fixed network and
// fault model.
type Engine struct {
	network *circuit.Circuit
	kind    circuit.FaultKind
	unit    fanengine.Unit
	cfg     config
	fe      *fanengine.Engine
}

func newEngine(network *circuit.Circuit, kind circuit.FaultKind, unit fanengine.Unit, opts []Option) *Engine {
	cfg := newConfig(opts)
	return &Engine{
		network: network,
		kind:    kind,
		unit:    unit,
		cfg:     cfg,
		fe:      fanengine.New(network, cfg.logger, unit, cfg.limits, cfg.rng),
	}
}

// NewSingle builds an engine whose unit is a single fault site's immediate
// fan-in cone (the whole-circuit search still runs underneath — see
// fanengine.Unit).
func NewSingle(network *circuit.Circuit, kind circuit.FaultKind, opts ...Option) *Engine {
	return newEngine(network, kind, fanengine.Unit{Kind: "single"}, opts)
}

// NewFFR builds an engine whose unit is a fanout-free region. The region's
// gates are recorded on the unit; the search itself covers the whole
// circuit (see fanengine.Unit).
func NewFFR(network *circuit.Circuit, kind circuit.FaultKind, ffr *circuit.FFR, opts ...Option) *Engine {
	return newEngine(network, kind, fanengine.Unit{Kind: "ffr", Gates: ffr.Gates}, opts)
}

// NewMFFC builds an engine whose unit is a maximal fanout-free cone. The
// cone's gates are recorded on the unit; the search itself covers the
// whole circuit (see fanengine.Unit).
func NewMFFC(network *circuit.Circuit, kind circuit.FaultKind, mffc *circuit.MFFC, opts ...Option) *Engine {
	return newEngine(network, kind, fanengine.Unit{Kind: "mffc", Gates: mffc.Gates}, opts)
}

// Solve generates a test for f, reporting fault.Detected with the detecting
// vector, fault.Untestable with a zero vector, or fault.Aborted (with
// fanengine.ErrAborted) if the decision budget was exhausted.
func (e *Engine) Solve(f fault.Fault) (fault.Status, tv.Vector, error) {
	found, vec, err := e.fe.Solve(f)
	if err != nil {
		return fault.Aborted, tv.Vector{}, err
	}
	if found {
		return fault.Detected, vec, nil
	}
	return fault.Untestable, tv.Vector{}, nil
}

// SolveK returns up to k distinct detecting vectors for f. Each retry
// re-runs the same decision search with the engine's RNG (WithRNG, default
// seed 1) advanced from the previous call, so ties in multiple backtrace's
// objective/control-input/final-objective choices can resolve differently
// and walk the decision tree to a different leaf. It stops early, returning
// what it has, if maxRetriesPerVector consecutive attempts land on a vector
// already found — this is expected on fixtures with few sensitizing paths,
// not a bug, so callers should treat len(vecs) < k as "best effort" rather
// than an error.
func (e *Engine) SolveK(f fault.Fault, k int) (fault.Status, []tv.Vector, error) {
	var found []tv.Vector
	const maxRetriesPerVector = 4

	for len(found) < k {
		status, vec, err := e.Solve(f)
		if err != nil {
			if len(found) > 0 {
				return fault.Detected, found, nil
			}
			return fault.Aborted, nil, err
		}
		if status != fault.Detected {
			if len(found) > 0 {
				return fault.Detected, found, nil
			}
			return status, nil, nil
		}

		if !containsVector(found, vec) {
			found = append(found, vec)
			continue
		}

		// Found a duplicate: the RNG-seeded tie-breaks in multiple backtrace
		// mean a retry can genuinely land on a different decision path, so
		// retry a bounded number of times before giving up on this vector.
		duplicate := true
		for attempt := 0; attempt < maxRetriesPerVector && duplicate; attempt++ {
			_, vec2, err := e.Solve(f)
			if err != nil {
				break
			}
			if !containsVector(found, vec2) {
				found = append(found, vec2)
				duplicate = false
			}
		}
		if duplicate {
			break
		}
	}

	return fault.Detected, found, nil
}

func containsVector(vs []tv.Vector, v tv.Vector) bool {
	for _, existing := range vs {
		if existing.String() == v.String() {
			return true
		}
	}
	return false
}
