package workbench

import (
	"context"

	"golang.org/x/sync/errgroup"

	"genelab/internal/logging"
	"genelab/internal/metrics"
)

// RunBatch runs jobs on the worker pool and calls visit once per job, in
// job order, as soon as every earlier job has been delivered. Job i runs
// with SeedFor(jobs[i], i), so the outcomes do not depend on the number of
// workers. It returns the first error from visit, or the context's error.
// Job failures are not errors; they are reported in Outcome.Err.
func (w *Workbench) RunBatch(ctx context.Context, jobs []Job, visit func(Outcome) error) error {
	log := logging.FromContext(ctx)
	log.Info("batch started", "jobs", len(jobs), "workers", w.workers)

	type indexed struct {
		i   int
		out Outcome
	}
	work := make(chan int, w.workers*2)
	results := make(chan indexed, w.workers*2)

	g, gctx := errgroup.WithContext(ctx)

	// Feed work
	g.Go(func() error {
		defer close(work)
		for i := range jobs {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case work <- i:
			}
		}
		return nil
	})

	// Workers
	var workers errgroup.Group
	for range w.workers {
		workers.Go(func() error {
			for i := range work {
				out := w.Run(gctx, jobs[i], w.SeedFor(jobs[i], i))
				select {
				case results <- indexed{i, out}:
				case <-gctx.Done():
					return gctx.Err()
				}
			}
			return nil
		})
	}
	g.Go(func() error {
		defer close(results)
		return workers.Wait()
	})

	// Collector: reorder, then visit.
	g.Go(func() error {
		pending := make(map[int]Outcome)
		next := 0
		var failed int
		for r := range results {
			pending[r.i] = r.out
			for {
				out, ok := pending[next]
				if !ok {
					break
				}
				delete(pending, next)
				next++
				if out.Status() != metrics.StatusOK {
					failed++
				}
				if err := visit(out); err != nil {
					return err
				}
			}
		}
		log.Info("batch finished", "jobs", next, "notOK", failed)
		return nil
	})

	err := g.Wait()
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}
