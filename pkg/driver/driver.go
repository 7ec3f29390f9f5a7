// Package driver runs the ATPG top-level loop: iterate every fault of a
// partitioning mode, call the DTPG engine, record the outcome, and
// optionally drop faults the resulting test vector also happens to detect.
package driver

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/go-atpg/atpg/pkg/circuit"
	"github.com/go-atpg/atpg/pkg/dtpg"
	"github.com/go-atpg/atpg/pkg/fault"
	"github.com/go-atpg/atpg/pkg/fsim"
	"github.com/go-atpg/atpg/pkg/logging"
	"github.com/go-atpg/atpg/pkg/tv"
)

// Mode selects how the circuit is partitioned into independent DTPG units.
type Mode int

const (
	ModeSingle Mode = iota
	ModeFFR
	ModeMFFC
)

func (m Mode) String() string {
	switch m {
	case ModeFFR:
		return "ffr"
	case ModeMFFC:
		return "mffc"
	default:
		return "single"
	}
}

// Option configures a Driver at construction time.
type Option func(*config)

type config struct {
	logger      *logging.Logger
	concurrency int
}

// WithLogger overrides the driver's logger.
func WithLogger(l *logging.Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithConcurrency bounds how many partitioning units are solved
// simultaneously. The default is 1 (sequential), matching the teacher's
// single-threaded loop; pass a higher value to parallelize across
// FFRs/MFFCs, each of which is solved on its own clone of the circuit.
func WithConcurrency(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// Driver owns the fault registry, the simulator used for fault drop, and
// the accumulated list of generated test vectors across a run.
type Driver struct {
	network *circuit.Circuit
	kind    circuit.FaultKind
	cfg     config

	registry *fault.Registry
	sim      *fsim.Simulator

	mu        sync.Mutex
	faultList []fault.Fault
	tvList    []tv.Vector
}

// New builds a driver for network's full fault list under the given fault
// model. faults should already have equivalence/dominance reduction applied
// (pkg/fault.Reduce) if fault collapsing is desired; the driver itself
// iterates whatever list it is given.
func New(network *circuit.Circuit, kind circuit.FaultKind, faults []fault.Fault, opts ...Option) *Driver {
	cfg := config{logger: logging.Nop(), concurrency: 1}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Driver{
		network:  network,
		kind:     kind,
		cfg:      cfg,
		registry: fault.NewRegistry(),
		sim:      fsim.New(network, faults, nil),
	}
}

// Registry exposes the fault classification accumulated so far.
func (d *Driver) Registry() *fault.Registry { return d.registry }

// TestVectors returns every test vector generated so far, in the order
// faults were resolved (not re-sorted by fault ID — matching the teacher's
// append-only tvlist).
func (d *Driver) TestVectors() []tv.Vector {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]tv.Vector, len(d.tvList))
	copy(out, d.tvList)
	return out
}

type unit struct {
	faults []fault.Fault
	newEngine func() *dtpg.Engine
}

func (d *Driver) units(mode Mode, faults []fault.Fault) []unit {
	bySite := make(map[int][]fault.Fault)
	for _, f := range faults {
		bySite[f.Site.ID] = append(bySite[f.Site.ID], f)
	}

	switch mode {
	case ModeFFR:
		ffrs := circuit.ComputeFFRs(d.network)
		var units []unit
		for _, ffr := range ffrs {
			ffr := ffr
			fs := faultsForGates(bySite, ffr.Gates, ffr.Root)
			if len(fs) == 0 {
				continue
			}
			units = append(units, unit{
				faults: fs,
				newEngine: func() *dtpg.Engine {
					clone := d.network.Clone()
					return dtpg.NewFFR(clone, d.kind, ffr.Remap(clone), dtpg.WithLogger(d.cfg.logger))
				},
			})
		}
		return units
	case ModeMFFC:
		mffcs := circuit.ComputeMFFCs(d.network)
		var units []unit
		for _, m := range mffcs {
			m := m
			fs := faultsForGates(bySite, m.Gates, m.Root)
			if len(fs) == 0 {
				continue
			}
			units = append(units, unit{
				faults: fs,
				newEngine: func() *dtpg.Engine {
					clone := d.network.Clone()
					return dtpg.NewMFFC(clone, d.kind, m.Remap(clone), dtpg.WithLogger(d.cfg.logger))
				},
			})
		}
		return units
	default:
		return []unit{{
			faults: faults,
			newEngine: func() *dtpg.Engine {
				return dtpg.NewSingle(d.network.Clone(), d.kind, dtpg.WithLogger(d.cfg.logger))
			},
		}}
	}
}

// faultsForGates collects every fault in bySite whose site belongs to this
// region: the root line, every internal gate's output, and every line
// feeding one of these gates that is itself a region boundary (a primary
// input or a fanout stem owned by some other region). Boundary lines can
// feed more than one region, so a fault sited there may be offered to
// several units; the driver's Undetected check makes that idempotent.
func faultsForGates(bySite map[int][]fault.Fault, gates []*circuit.Gate, root *circuit.Line) []fault.Fault {
	seen := make(map[int]bool)
	var out []fault.Fault
	add := func(lineID int) {
		if seen[lineID] {
			return
		}
		seen[lineID] = true
		out = append(out, bySite[lineID]...)
	}

	add(root.ID)
	for _, g := range gates {
		add(g.Output.ID)
		for _, in := range g.Inputs {
			if in.Type == circuit.PrimaryInput || circuit.FanoutStem(in) {
				add(in.ID)
			}
		}
	}
	return out
}

// Run executes one full pass over mode's partitioning of faults, generating
// at most one test vector per detected fault. When drop is true, every
// generated vector is fault-simulated (Sppfp) against the remaining active
// faults, and every fault it incidentally detects is marked Detected and
// skipped without a further DTPG call.
func (d *Driver) Run(mode Mode, faults []fault.Fault, drop bool) (ndet, nunt, nabt int, err error) {
	units := d.units(mode, faults)

	g, _ := errgroup.WithContext(context.Background())
	if d.cfg.concurrency > 0 {
		g.SetLimit(d.cfg.concurrency)
	}

	for _, u := range units {
		u := u
		g.Go(func() error {
			engine := u.newEngine()
			for _, f := range u.faults {
				if d.registry.Get(f.ID) != fault.Undetected {
					continue
				}
				status, vec, solveErr := engine.Solve(f)
				if solveErr != nil {
					status = fault.Aborted
				}
				d.commit(f, status, vec, drop, &ndet, &nunt, &nabt)
			}
			return nil
		})
	}
	err = g.Wait()
	return
}

// commit records one fault's outcome and, on a Detected result with drop
// enabled, runs fault simulation to skip-and-credit every fault the new
// vector also detects. It locks d.mu itself, serializing registry/simulator
// writes and counter increments across concurrent units.
func (d *Driver) commit(f fault.Fault, status fault.Status, vec tv.Vector, drop bool, ndet, nunt, nabt *int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.registry.Get(f.ID) != fault.Undetected {
		return // another unit resolved f while this one was solving it
	}

	switch status {
	case fault.Detected:
		*ndet++
		d.registry.Set(f.ID, fault.Detected)
		d.sim.SetSkip(f.ID, true)
		d.faultList = append(d.faultList, f)
		d.tvList = append(d.tvList, vec)

		if drop {
			for _, extra := range d.sim.Sppfp(vec) {
				if d.registry.Get(extra.ID) != fault.Undetected {
					continue
				}
				d.registry.Set(extra.ID, fault.Detected)
				d.sim.SetSkip(extra.ID, true)
				d.faultList = append(d.faultList, extra)
				*ndet++
			}
		}
	case fault.Untestable:
		*nunt++
		d.registry.Set(f.ID, fault.Untestable)
		d.sim.SetSkip(f.ID, true)
	default:
		*nabt++
	}
}

// RunK behaves like Run but requests up to k distinct vectors per detected
// fault (fault drop is not applicable in this mode, matching the teacher's
// k_ffr_mode which never calls sppfp).
func (d *Driver) RunK(mode Mode, faults []fault.Fault, k int) (ndet, nunt, nabt int, err error) {
	units := d.units(mode, faults)

	g, _ := errgroup.WithContext(context.Background())
	if d.cfg.concurrency > 0 {
		g.SetLimit(d.cfg.concurrency)
	}

	for _, u := range units {
		u := u
		g.Go(func() error {
			engine := u.newEngine()
			for _, f := range u.faults {
				if d.registry.Get(f.ID) != fault.Undetected {
					continue
				}
				status, vecs, solveErr := engine.SolveK(f, k)
				if solveErr != nil {
					status = fault.Aborted
				}
				d.commitK(f, status, vecs, &ndet, &nunt, &nabt)
			}
			return nil
		})
	}
	err = g.Wait()
	return
}

func (d *Driver) commitK(f fault.Fault, status fault.Status, vecs []tv.Vector, ndet, nunt, nabt *int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.registry.Get(f.ID) != fault.Undetected {
		return
	}

	switch status {
	case fault.Detected:
		*ndet++
		d.registry.Set(f.ID, fault.Detected)
		d.sim.SetSkip(f.ID, true)
		d.faultList = append(d.faultList, f)
		d.tvList = append(d.tvList, vecs...)
	case fault.Untestable:
		*nunt++
		d.registry.Set(f.ID, fault.Untestable)
		d.sim.SetSkip(f.ID, true)
	default:
		*nabt++
	}
}
