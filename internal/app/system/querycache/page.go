package querycache

import (
	"context"

	"github.com/dalemusser/labhub/internal/app/system/paging"
)

// FetchPage loads page key.Page of a listing through the cache. When that
// page is full the next one is prefetched in the background, so Next
// renders from cache.
//
// fetch receives the backend window of the page it is asked for; rows
// counts the records in a result.
func FetchPage[T any](ctx context.Context, c *Cache, key Key,
	fetch func(context.Context, paging.Window) (T, error), rows func(T) int) (T, paging.Result, error) {

	load := func(page int) func(context.Context) (T, error) {
		return func(ctx context.Context) (T, error) {
			return fetch(ctx, paging.WindowFor(page))
		}
	}

	key.Page = max(key.Page, 1)
	v, err := Fetch(ctx, c, key, load(key.Page))
	if err != nil {
		var zero T
		return zero, paging.Result{}, err
	}

	res := paging.Compute(key.Page, rows(v))
	if res.HasNext {
		next := key
		next.Page = res.NextPage
		Prefetch(c, next, load(next.Page))
	}
	return v, res, nil
}
