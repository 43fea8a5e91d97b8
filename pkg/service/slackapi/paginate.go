package slackapi

import (
	"context"
	"iter"
	"time"

	"github.com/m-mizutani/goerr/v2"
)

// Pages drives a cursor-based listing API to completion and returns a
// lazy, finite, non-restartable sequence of pages. An empty cursor means
// the first page; the sequence ends when the service returns an empty
// next cursor or the consumer breaks.
//
// On a failed page the cursor does not advance and the error is yielded:
// if the consumer continues the loop the same page is fetched again, so
// retry policy stays entirely with the consumer. The fetcher itself never
// retries and never sleeps for backoff. A configured delay is awaited
// between successful pages to respect fair-use limits.
func Pages[T any](ctx context.Context, delay time.Duration, fetch func(ctx context.Context, cursor string) ([]T, string, error)) iter.Seq2[[]T, error] {
	return func(yield func([]T, error) bool) {
		var cursor string
		for {
			items, next, err := fetch(ctx, cursor)
			if err != nil {
				if !yield(nil, err) {
					return
				}
				continue
			}
			if !yield(items, nil) {
				return
			}
			if next == "" {
				return
			}
			cursor = next

			if err := waitPageDelay(ctx, delay); err != nil {
				yield(nil, err)
				return
			}
		}
	}
}

// waitPageDelay waits out the configured inter-page delay, honoring
// cancellation. A zero delay returns immediately.
func waitPageDelay(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}

	timer := time.NewTimer(delay)
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		timer.Stop()
		return goerr.Wrap(ctx.Err(), "page delay interrupted")
	}
}

// Collect drains a paginated listing into one combined slice. The first
// error aborts the listing; callers that need a retry policy should
// consume Pages directly.
func Collect[T any](ctx context.Context, delay time.Duration, fetch func(ctx context.Context, cursor string) ([]T, string, error)) ([]T, error) {
	var all []T
	for items, err := range Pages(ctx, delay, fetch) {
		if err != nil {
			return nil, err
		}
		all = append(all, items...)
	}
	return all, nil
}
