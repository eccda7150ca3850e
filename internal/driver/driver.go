// Package driver schedules the pass pipeline over the functions of a
// module. Functions are independent: each one is handed to exactly one
// worker, and the only shared state the passes touch is the deinit
// registry, which is read-only once the run starts.
package driver

import (
	"context"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"mica/internal/oir"
	"mica/internal/passes"
)

// Result is the outcome of running the pipeline over one function.
type Result struct {
	Function     string
	Invalidation passes.InvalidationKind
}

// Changed reports whether the pipeline rewrote the function.
func (r Result) Changed() bool {
	return r.Invalidation != passes.InvalidateNothing
}

// RunModule runs pipe over every function of mod with up to jobs
// workers (one per CPU when jobs <= 0). Results are sorted by function
// name for deterministic output.
func RunModule(ctx context.Context, mod *oir.Module, pipe *passes.Pipeline, jobs int) ([]Result, error) {
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}

	results := make([]Result, len(mod.Functions))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)

	for i, fn := range mod.Functions {
		i, fn := i, fn
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = Result{
				Function:     fn.Name,
				Invalidation: pipe.RunOnFunction(mod, fn),
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Function < results[j].Function
	})
	return results, nil
}
