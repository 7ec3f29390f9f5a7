package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/go-atpg/atpg/pkg/circuit"
	"github.com/go-atpg/atpg/pkg/compact"
	"github.com/go-atpg/atpg/pkg/driver"
	"github.com/go-atpg/atpg/pkg/fault"
	"github.com/go-atpg/atpg/pkg/logging"
	"github.com/go-atpg/atpg/pkg/metrics"
	"github.com/go-atpg/atpg/pkg/parser"
)

func runATPG(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()

	mode := driver.ModeSingle
	if on, _ := flags.GetBool("ffr"); on {
		mode = driver.ModeFFR
	}
	if on, _ := flags.GetBool("mffc"); on {
		mode = driver.ModeMFFC
	}

	kind := circuit.StuckAt
	if on, _ := flags.GetBool("transition-delay"); on {
		kind = circuit.TransitionDelay
	}

	forceBLIF, _ := flags.GetBool("blif")
	forceISCAS89, _ := flags.GetBool("iscas89")
	drop, _ := flags.GetBool("drop")
	compactionTag, _ := flags.GetString("compaction")
	reduceModes, _ := flags.GetString("reduce")
	k, _ := flags.GetInt("k")
	concurrency, _ := flags.GetInt("concurrency")
	logFile, _ := flags.GetString("log")

	level := logging.InfoLevel
	if verbose {
		level = logging.DebugLevel
	}
	out := os.Stdout
	if logFile != "" {
		f, err := os.Create(logFile)
		if err != nil {
			return fmt.Errorf("atpg: open log file: %w", err)
		}
		defer f.Close()
		out = f
	}
	logger := logging.New(level, out)

	failed := false
	for _, path := range args {
		if err := runOne(path, mode, kind, forceBLIF, forceISCAS89, drop, compactionTag, reduceModes, k, concurrency, logger); err != nil {
			logger.Error("%s: %v", path, err)
			failed = true
		}
	}
	if failed {
		return fmt.Errorf("atpg: one or more netlists failed")
	}
	return nil
}

func runOne(path string, mode driver.Mode, kind circuit.FaultKind, forceBLIF, forceISCAS89 bool, drop bool, compactionTag, reduceModes string, k, concurrency int, logger *logging.Logger) error {
	var run metrics.Run

	net, err := readNetlist(path, forceBLIF, forceISCAS89)
	if err != nil {
		return err
	}

	faults := fault.BuildFaultList(net, kind)
	if reduceModes != "" {
		faults = fault.Reduce(faults, net, kind, reduceModes)
	}
	representative := make([]fault.Fault, 0, len(faults))
	for _, f := range faults {
		if f.Representative {
			representative = append(representative, f)
		}
	}

	d := driver.New(net, kind, representative, driver.WithLogger(logger), driver.WithConcurrency(concurrency))

	run.StartPhase(&run.ATPGTime)
	var ndet, nunt, nabt int
	if k > 1 {
		ndet, nunt, nabt, err = d.RunK(mode, representative, k)
	} else {
		ndet, nunt, nabt, err = d.Run(mode, representative, drop)
	}
	run.EndPhase()
	if err != nil {
		return fmt.Errorf("atpg: run: %w", err)
	}

	nundet := len(faults) - len(representative)
	run.RecordFaultCounts(ndet, nunt, nabt, nundet)
	run.InitialPatterns = len(d.TestVectors())
	run.FinalPatterns = run.InitialPatterns

	tvs := d.TestVectors()
	if compactionTag != "" {
		run.StartPhase(&run.CompactTime)
		compacted, cerr := compact.Compact(tvs, compactionTag, compact.Options{
			Faults:      representative,
			Network:     net,
			FaultKind:   kind,
			Concurrency: concurrency,
		})
		run.EndPhase()
		if cerr != nil {
			return fmt.Errorf("atpg: compaction: %w", cerr)
		}
		tvs = compacted
		run.FinalPatterns = len(tvs)
	}

	logger.Info("%s: %d faults (%d detected, %d untestable, %d aborted), %d -> %d patterns, atpg=%s compact=%s",
		path, run.TotalFaults, run.DetectedFaults, run.UntestableFaults, run.AbortedFaults,
		run.InitialPatterns, run.FinalPatterns, run.ATPGTime, run.CompactTime)
	return nil
}

func readNetlist(path string, forceBLIF, forceISCAS89 bool) (*circuit.Circuit, error) {
	switch {
	case forceBLIF:
		return parser.ReadBLIF(path)
	case forceISCAS89:
		return parser.ReadBench(path)
	default:
		return parser.Read(path)
	}
}
