package main

import (
	"github.com/spf13/cobra"

	"github.com/joshuapare/memtrack/track"
)

func init() {
	rootCmd.AddCommand(newScenarioCmd())
}

func newScenarioCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scenario",
		Short: "Run the reference leak scenario",
		Long: `The scenario command runs the reference sequence of tracked operations:

  free(malloc(1))
  realloc(malloc(2), 3)      grows, the block moves and leaks
  malloc(4)                  leaks
  free(realloc(malloc(6), 5)) shrinks in place, then freed

and prints the leak report. Exactly two blocks (3 and 4 bytes) are expected.

Example:
  memtrack scenario
  memtrack scenario --backend arena --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenario()
		},
	}
	return cmd
}

func runScenario() error {
	tr, err := newTracker()
	if err != nil {
		return err
	}
	return printReport(scenario(tr))
}

// scenario runs the reference sequence against tr and returns the shutdown report.
func scenario(tr *track.Tracker) *track.Report {
	a := tr.Allocate(1, track.Caller(0))
	tr.Release(a)
	printVerbose("malloc(1) = %p, freed\n", a)

	b := tr.Allocate(2, track.Caller(0))
	c := tr.Reallocate(b, 3, track.Caller(0))
	printVerbose("malloc(2) = %p, realloc to 3 = %p\n", b, c)

	d := tr.Allocate(4, track.Caller(0))
	printVerbose("malloc(4) = %p\n", d)

	e := tr.Allocate(6, track.Caller(0))
	f := tr.Reallocate(e, 5, track.Caller(0))
	tr.Release(f)
	printVerbose("malloc(6) = %p, realloc to 5 = %p, freed\n", e, f)

	return tr.Finish()
}
