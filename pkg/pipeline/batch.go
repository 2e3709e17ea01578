package pipeline

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/symlump/pkg/errors"
)

// Run analyzes sources on a bounded worker pool.
//
// A network whose analysis fails with a per-network error is skipped: the
// failure is logged, counted by code in the returned Summary, and the batch
// continues. A fatal error (see errors.Fatal) stops scheduling new networks,
// waits for in-flight ones, and is returned together with the partial
// Summary.
func (r *Runner) Run(ctx context.Context, sources []Source, opts Options) (*Summary, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if opts.RunID == "" {
		opts.RunID = uuid.NewString()
	}

	start := time.Now()
	summary := &Summary{
		RunID:   opts.RunID,
		Total:   len(sources),
		Skipped: make(map[errors.Code]int),
	}
	r.Hooks.OnBatchStart(ctx, opts.RunID, len(sources))
	r.Logger.Info("batch started", "run", opts.RunID, "networks", len(sources), "workers", opts.Workers)

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)

schedule:
	for _, src := range sources {
		select {
		case <-gctx.Done():
			break schedule
		default:
		}
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			r.Hooks.OnNetworkStart(gctx, src.Name)
			t0 := time.Now()
			_, cached, err := r.AnalyzeWithCacheInfo(gctx, src, opts)
			elapsed := time.Since(t0)
			r.Hooks.OnNetworkComplete(gctx, src.Name, elapsed, cached, err)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				summary.Succeeded++
				if cached {
					summary.Cached++
				}
				return nil
			case errors.Fatal(err):
				return err
			default:
				code := errors.GetCode(err)
				if code == "" {
					code = errors.ErrCodeInternal
				}
				summary.Skipped[code]++
				summary.Failures = append(summary.Failures, Failure{
					Name:    src.Name,
					Code:    code,
					Message: err.Error(),
					Elapsed: elapsed,
				})
				r.Logger.Warn("network skipped", "network", src.Name, "code", code, "elapsed", elapsed, "error", err)
				return nil
			}
		})
	}

	err := g.Wait()
	if err == nil && ctx.Err() != nil {
		err = ctx.Err()
	}
	sort.Slice(summary.Failures, func(i, j int) bool { return summary.Failures[i].Name < summary.Failures[j].Name })
	summary.Duration = time.Since(start)
	r.Hooks.OnBatchComplete(ctx, opts.RunID, summary.Duration, err)

	if err != nil {
		r.Logger.Error("batch aborted", "run", opts.RunID, "error", err)
		return summary, err
	}
	r.Logger.Info("batch complete",
		"run", opts.RunID,
		"succeeded", summary.Succeeded,
		"cached", summary.Cached,
		"skipped", summary.SkippedTotal(),
		"duration", summary.Duration)
	return summary, nil
}
