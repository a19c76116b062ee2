package main

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"
	"unsafe"

	"github.com/spf13/cobra"

	"github.com/joshuapare/memtrack/track"
)

var (
	stressWorkers   int
	stressOps       int
	stressLeakEvery int
	stressMaxSize   uint64
	stressSeed      uint64
)

func init() {
	cmd := newStressCmd()
	cmd.Flags().IntVar(&stressWorkers, "workers", 4, "Concurrent goroutines")
	cmd.Flags().IntVar(&stressOps, "ops", 1000, "Operations per worker")
	cmd.Flags().IntVar(&stressLeakEvery, "leak-every", 0, "Leak every Nth block left at the end (0 = none)")
	cmd.Flags().Uint64Var(&stressMaxSize, "max-size", 4096, "Largest request in bytes")
	cmd.Flags().Uint64Var(&stressSeed, "seed", 1, "Random seed")
	rootCmd.AddCommand(cmd)
}

func newStressCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stress",
		Short: "Hammer the tracker from concurrent goroutines",
		Long: `The stress command runs random allocate, reallocate and release operations
from several goroutines against one tracker, then releases what is left except
every Nth block, and prints the leak report.

Example:
  memtrack stress --workers 8 --ops 10000
  memtrack stress --leak-every 10 --backend mmap --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStress()
		},
	}
	return cmd
}

type stressConfig struct {
	Workers   int
	Ops       int
	LeakEvery int
	MaxSize   uint64
	Seed      uint64
}

type stressResult struct {
	Ops      int64         `json:"ops"`
	Failed   int64         `json:"failed"` // nil returns from the raw allocator
	Leaked   int64         `json:"leaked"` // blocks deliberately left behind
	Duration time.Duration `json:"duration_ns"`
	Report   reportJSON    `json:"report"`

	report *track.Report
}

func runStress() error {
	if stressWorkers < 1 || stressOps < 0 || stressMaxSize == 0 {
		return fmt.Errorf("workers must be >= 1, ops >= 0 and max-size > 0")
	}
	tr, err := newTracker()
	if err != nil {
		return err
	}

	res := stress(tr, stressConfig{
		Workers:   stressWorkers,
		Ops:       stressOps,
		LeakEvery: stressLeakEvery,
		MaxSize:   stressMaxSize,
		Seed:      stressSeed,
	})

	if jsonOut {
		return printJSON(res)
	}
	printInfo("%d operations across %d workers in %s (%d failed allocations)\n\n",
		res.Ops, stressWorkers, res.Duration.Round(time.Microsecond), res.Failed)
	return printReport(res.report)
}

// stress runs the workload against tr and returns the shutdown report.
func stress(tr *track.Tracker, cfg stressConfig) stressResult {
	var (
		wg     sync.WaitGroup
		ops    atomic.Int64
		failed atomic.Int64
		leaked atomic.Int64
	)

	start := time.Now()
	for w := range cfg.Workers {
		wg.Go(func() {
			rng := rand.New(rand.NewPCG(cfg.Seed, uint64(w)))
			size := func() uint64 { return rng.Uint64N(cfg.MaxSize) + 1 }
			var live []unsafe.Pointer

			for range cfg.Ops {
				ops.Add(1)
				switch {
				case len(live) == 0 || rng.IntN(3) == 0:
					p := tr.Allocate(size(), track.Caller(0))
					if p == nil {
						failed.Add(1)
						continue
					}
					live = append(live, p)
				case rng.IntN(2) == 0:
					i := rng.IntN(len(live))
					np := tr.Reallocate(live[i], size(), track.Caller(0))
					if np == nil {
						failed.Add(1)
						continue
					}
					live[i] = np
				default:
					i := rng.IntN(len(live))
					tr.Release(live[i])
					live[i] = live[len(live)-1]
					live = live[:len(live)-1]
				}
			}

			for i, p := range live {
				if cfg.LeakEvery > 0 && (i+1)%cfg.LeakEvery == 0 {
					leaked.Add(1)
					continue
				}
				tr.Release(p)
			}
		})
	}
	wg.Wait()

	rep := tr.Finish()
	return stressResult{
		Ops:      ops.Load(),
		Failed:   failed.Load(),
		Leaked:   leaked.Load(),
		Duration: time.Since(start),
		Report:   toReportJSON(rep),
		report:   rep,
	}
}
