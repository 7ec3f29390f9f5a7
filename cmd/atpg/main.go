package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	verbose bool
	version = "dev"
)

var rootCmd = &cobra.Command{
	Use:     "atpg [flags] netlist...",
	Args:    cobra.MinimumNArgs(1),
	Short:   "Automatic test pattern generator for stuck-at and transition-delay faults",
	Long:    `atpg runs the FAN-based ATPG pipeline over a BLIF or ISCAS89 netlist: fault collapsing, test generation (single/FFR/MFFC partitioning), fault simulation, and pattern compaction.`,
	Version: version,
	RunE:    runATPG,
}

func init() {
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.Flags().Bool("single", false, "partition the circuit into single-fault DTPG units (default)")
	rootCmd.Flags().Bool("ffr", false, "partition the circuit into fanout-free regions")
	rootCmd.Flags().Bool("mffc", false, "partition the circuit into maximal fanout-free cones")

	rootCmd.Flags().Bool("stuck-at", false, "generate tests for stuck-at faults (default)")
	rootCmd.Flags().Bool("transition-delay", false, "generate tests for transition-delay faults")

	rootCmd.Flags().Bool("blif", false, "force BLIF format, ignoring file extension")
	rootCmd.Flags().Bool("iscas89", false, "force ISCAS89 .bench format, ignoring file extension")

	rootCmd.Flags().Bool("drop", false, "fault-simulate each generated vector and drop incidentally-detected faults")
	rootCmd.Flags().String("compaction", "", "pattern compaction tag (dsatur, isx, tabucol, mincov, mincov+dsatur, ...)")
	rootCmd.Flags().IntP("k", "k", 1, "number of distinct test vectors to request per fault")
	rootCmd.Flags().String("reduce", "", "fault-reduction modes passed to fault.Reduce (e.g. red1,red2)")
	rootCmd.Flags().Int("concurrency", 1, "number of partitioning units solved concurrently")
	rootCmd.Flags().String("log", "", "log file (default: stdout)")

	rootCmd.MarkFlagsMutuallyExclusive("single", "ffr", "mffc")
	rootCmd.MarkFlagsMutuallyExclusive("stuck-at", "transition-delay")
	rootCmd.MarkFlagsMutuallyExclusive("blif", "iscas89")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
