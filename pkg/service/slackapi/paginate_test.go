package slackapi_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"

	"github.com/doorbell-dev/doorbell/pkg/service/slackapi"
)

func TestPages(t *testing.T) {
	ctx := context.Background()

	t.Run("walks all pages in order", func(t *testing.T) {
		pages := map[string]struct {
			items []string
			next  string
		}{
			"":   {items: []string{"a", "b"}, next: "p2"},
			"p2": {items: []string{"c"}, next: "p3"},
			"p3": {items: []string{"d", "e"}, next: ""},
		}

		var got []string
		for items, err := range slackapi.Pages(ctx, 0, func(_ context.Context, cursor string) ([]string, string, error) {
			page := pages[cursor]
			return page.items, page.next, nil
		}) {
			gt.NoError(t, err)
			got = append(got, items...)
		}
		gt.Value(t, got).Equal([]string{"a", "b", "c", "d", "e"})
	})

	t.Run("failed page keeps its cursor", func(t *testing.T) {
		var cursors []string
		calls := 0
		seq := slackapi.Pages(ctx, 0, func(_ context.Context, cursor string) ([]string, string, error) {
			cursors = append(cursors, cursor)
			calls++
			if cursor == "p2" && calls == 2 {
				return nil, "", goerr.New("transient failure")
			}
			if cursor == "" {
				return []string{"a"}, "p2", nil
			}
			return []string{"b"}, "", nil
		})

		var got []string
		var failures int
		for items, err := range seq {
			if err != nil {
				failures++
				continue // retry the same page
			}
			got = append(got, items...)
		}

		gt.Value(t, failures).Equal(1)
		gt.Value(t, got).Equal([]string{"a", "b"})
		// the second cursor is fetched twice, once failing and once clean
		gt.Value(t, cursors).Equal([]string{"", "p2", "p2"})
	})

	t.Run("consumer break stops fetching", func(t *testing.T) {
		calls := 0
		for range slackapi.Pages(ctx, 0, func(_ context.Context, cursor string) ([]int, string, error) {
			calls++
			return []int{calls}, "more", nil
		}) {
			break
		}
		gt.Value(t, calls).Equal(1)
	})

	t.Run("cancellation interrupts the inter-page delay", func(t *testing.T) {
		ctx, cancel := context.WithCancel(ctx)

		var lastErr error
		for _, err := range slackapi.Pages(ctx, time.Hour, func(_ context.Context, cursor string) ([]int, string, error) {
			cancel() // cancel while the first delay is pending
			return []int{1}, "p2", nil
		}) {
			lastErr = err
		}
		gt.Error(t, lastErr)
	})
}

func TestCollect(t *testing.T) {
	ctx := context.Background()

	t.Run("combines all pages", func(t *testing.T) {
		got, err := slackapi.Collect(ctx, 0, func(_ context.Context, cursor string) ([]int, string, error) {
			if cursor == "" {
				return []int{1, 2}, "p2", nil
			}
			return []int{3}, "", nil
		})
		gt.NoError(t, err)
		gt.Value(t, got).Equal([]int{1, 2, 3})
	})

	t.Run("aborts on the first error", func(t *testing.T) {
		calls := 0
		_, err := slackapi.Collect(ctx, 0, func(_ context.Context, cursor string) ([]int, string, error) {
			calls++
			return nil, "", goerr.New("listing failed")
		})
		gt.Error(t, err)
		gt.Value(t, calls).Equal(1)
	})
}
