package tasks

import (
	"context"
	"fmt"
	"sync"

	"github.com/desertthunder/spotease/internal/models"
	"github.com/desertthunder/spotease/internal/shared"
	"golang.org/x/time/rate"
)

// BulkOpts configures [PlaylistEngine.ReconcileAll].
type BulkOpts struct {
	NumWorkers int     // Concurrent reconciliations (default: 4, max: 10)
	RateLimit  float64 // Links started per second (default: 5)
}

// LinkResult is the outcome for one link of a bulk run.
type LinkResult struct {
	Link   *models.PlaylistPairing
	Result *ReconcileResult
	Error  error
}

// BulkResult collects per-link outcomes in input order.
type BulkResult struct {
	TotalLinks int
	Succeeded  int
	Failed     int
	Results    []LinkResult
}

type linkJob struct {
	index int
	link  *models.PlaylistPairing
}

// ReconcileAll reconciles several links with a bounded worker pool, pacing how fast links are started.
//
// A failing link does not stop the others; its error is recorded in its [LinkResult].
// Cancelling ctx stops dispatching and returns the results gathered so far with ctx's error.
func (e *PlaylistEngine) ReconcileAll(
	ctx context.Context,
	prog chan<- ProgressUpdate,
	links []*models.PlaylistPairing,
	source models.Platform,
	opts BulkOpts,
) (*BulkResult, error) {
	if !source.Valid() {
		return nil, fmt.Errorf("%w: unknown source platform %q", shared.ErrInvalidArgument, source)
	}
	for i, link := range links {
		if link == nil {
			return nil, fmt.Errorf("%w: link %d is nil", shared.ErrMissingArgument, i)
		}
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 4
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}

	result := &BulkResult{TotalLinks: len(links), Results: make([]LinkResult, len(links))}
	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	jobs := make(chan linkJob)
	done := make(chan int, len(links))

	var wg sync.WaitGroup
	for range opts.NumWorkers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				res, err := e.Reconcile(ctx, job.link, source, nil)
				result.Results[job.index] = LinkResult{Link: job.link, Result: res, Error: err}
				done <- job.index
			}
		}()
	}

	var dispatchErr error
	go func() {
		defer close(jobs)
		for i, link := range links {
			if err := limiter.Wait(ctx); err != nil {
				dispatchErr = err
				return
			}
			select {
			case jobs <- linkJob{index: i, link: link}:
			case <-ctx.Done():
				dispatchErr = ctx.Err()
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(done)
	}()

	completed := 0
	for idx := range done {
		completed++
		res := result.Results[idx]
		if res.Error != nil {
			result.Failed++
		} else {
			result.Succeeded++
		}
		e.sendProgress(prog, reconcileLinkUpdate(completed, len(links), res))
	}

	e.logger.Info("bulk reconcile finished", "links", len(links), "succeeded", result.Succeeded, "failed", result.Failed)
	if dispatchErr != nil {
		return result, dispatchErr
	}
	return result, nil
}
