// Package paging provides an explicit pager over limit/offset queries. A Pager
// owns an observable PagedList that is replaced wholesale on every page change,
// so consumers always see a consistent items/offset/end-reached snapshot.
package paging

import (
	"context"
	"sync"

	"github.com/anselmoalexandre/tivi/internal/observe"
)

// DefaultPageSize is used when a Pager is built with a non-positive page size.
const DefaultPageSize = 20

// PageFunc loads one page of results for the given window.
type PageFunc[T any] func(ctx context.Context, limit, offset int) ([]T, error)

// PagedList is an immutable snapshot of everything loaded so far.
type PagedList[T any] struct {
	Items      []T  `json:"items"`
	NextOffset int  `json:"next_offset"`
	EndReached bool `json:"end_reached"`
}

// Pager loads consecutive pages through a PageFunc and publishes snapshots.
type Pager[T any] struct {
	mu       sync.Mutex
	load     PageFunc[T]
	pageSize int
	state    PagedList[T]
	list     *observe.Value[PagedList[T]]
}

// NewPager creates a pager over the given page loader.
func NewPager[T any](load PageFunc[T], pageSize int) *Pager[T] {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Pager[T]{
		load:     load,
		pageSize: pageSize,
		list:     observe.NewValueOf(PagedList[T]{}),
	}
}

// Observable returns the observable paged list.
func (p *Pager[T]) Observable() *observe.Value[PagedList[T]] {
	return p.list
}

// Snapshot returns the current paged list.
func (p *Pager[T]) Snapshot() PagedList[T] {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Refresh discards loaded pages and reloads the first one.
func (p *Pager[T]) Refresh(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	items, err := p.load(ctx, p.pageSize, 0)
	if err != nil {
		return err
	}

	p.state = PagedList[T]{
		Items:      items,
		NextOffset: len(items),
		EndReached: len(items) < p.pageSize,
	}
	p.list.Set(p.state)
	return nil
}

// LoadMore appends the next page. Once the end has been reached it does
// nothing.
func (p *Pager[T]) LoadMore(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state.EndReached {
		return nil
	}

	items, err := p.load(ctx, p.pageSize, p.state.NextOffset)
	if err != nil {
		return err
	}

	merged := make([]T, 0, len(p.state.Items)+len(items))
	merged = append(merged, p.state.Items...)
	merged = append(merged, items...)

	p.state = PagedList[T]{
		Items:      merged,
		NextOffset: p.state.NextOffset + len(items),
		EndReached: len(items) < p.pageSize,
	}
	p.list.Set(p.state)
	return nil
}
