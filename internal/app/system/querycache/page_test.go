package querycache

import (
	"context"
	"sync"
	"testing"

	"github.com/dalemusser/labhub/internal/app/system/paging"
)

func TestFetchPage_PrefetchesWhenFull(t *testing.T) {
	tests := []struct {
		name         string
		rows         int
		wantPrefetch bool
	}{
		{"full page", paging.PageSize, true},
		{"short page", paging.PageSize - 1, false},
		{"empty page", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCache(t)
			key := Key{Entity: Items, Viewer: "u1", Scope: "lab-1", Page: 2}

			var (
				mu      sync.Mutex
				windows []paging.Window
			)
			fetch := func(_ context.Context, w paging.Window) ([]int, error) {
				mu.Lock()
				windows = append(windows, w)
				mu.Unlock()
				return make([]int, tt.rows), nil
			}

			_, res, err := FetchPage(context.Background(), c, key, fetch, func(v []int) int { return len(v) })
			if err != nil {
				t.Fatalf("FetchPage: %v", err)
			}
			c.Wait()

			if res.Page != 2 || res.HasNext != tt.wantPrefetch {
				t.Errorf("result = %+v", res)
			}
			next := key
			next.Page = 3
			if got := c.Peek(next); got != tt.wantPrefetch {
				t.Errorf("next page cached = %v, want %v", got, tt.wantPrefetch)
			}

			mu.Lock()
			defer mu.Unlock()
			if windows[0] != (paging.Window{Skip: paging.PageSize, Limit: paging.PageSize}) {
				t.Errorf("first window = %+v", windows[0])
			}
			if tt.wantPrefetch && (len(windows) != 2 || windows[1].Skip != 2*paging.PageSize) {
				t.Errorf("prefetch windows = %+v", windows)
			}
		})
	}
}

func TestFetchPage_ClampsPage(t *testing.T) {
	c := newTestCache(t)

	_, res, err := FetchPage(context.Background(), c, Key{Entity: Labs, Viewer: "u1"},
		func(context.Context, paging.Window) ([]int, error) { return nil, nil },
		func(v []int) int { return len(v) })
	if err != nil {
		t.Fatalf("FetchPage: %v", err)
	}
	if res.Page != 1 || res.HasPrev {
		t.Errorf("result = %+v", res)
	}
	if !c.Peek(Key{Entity: Labs, Viewer: "u1", Page: 1}) {
		t.Error("page 0 should be stored as page 1")
	}
}
