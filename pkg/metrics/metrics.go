// Package metrics collects the counters and phase timings a single ATPG
// run reports: fault classification counts, pattern counts before and
// after compaction, and per-phase CPU time. It is a plain Go value, not an
// expvar/Prometheus registry — the CLI reads it directly and formats it
// through pkg/logging.
package metrics

import "time"

// Run accumulates the observable output of one ATPG invocation.
type Run struct {
	TotalFaults      int
	DetectedFaults   int
	UntestableFaults int
	AbortedFaults    int

	InitialPatterns int
	FinalPatterns   int

	ATPGTime    time.Duration
	CompactTime time.Duration
	phaseStart  time.Time
	activePhase *time.Duration
}

// StartPhase begins timing into dst; calling StartPhase again (or
// EndPhase) stops the previous phase first if one was left running.
func (r *Run) StartPhase(dst *time.Duration) {
	r.EndPhase()
	r.phaseStart = now()
	r.activePhase = dst
}

// EndPhase accumulates elapsed time into the phase started by the last
// StartPhase call, if any, and clears the active phase.
func (r *Run) EndPhase() {
	if r.activePhase == nil {
		return
	}
	*r.activePhase += now().Sub(r.phaseStart)
	r.activePhase = nil
}

// RecordFaultCounts sets the classification totals from a fault.Registry's
// Counts() output (det, unt, abt, undetected are summed into TotalFaults).
func (r *Run) RecordFaultCounts(detected, untestable, aborted, undetected int) {
	r.DetectedFaults = detected
	r.UntestableFaults = untestable
	r.AbortedFaults = aborted
	r.TotalFaults = detected + untestable + aborted + undetected
}

// CoverageRatio returns the fraction of faults classified Detected, or 0
// if no faults were run.
func (r *Run) CoverageRatio() float64 {
	if r.TotalFaults == 0 {
		return 0
	}
	return float64(r.DetectedFaults) / float64(r.TotalFaults)
}

// now is a var so tests can stub it; wall-clock time is inherently
// nondeterministic and has no place in the rest of this pipeline's
// otherwise-deterministic algorithms.
var now = time.Now
