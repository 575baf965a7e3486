package cache

import (
	"sync"
)

// PageLoader fetches one window of items starting at offset.
type PageLoader[T any] func(offset, limit int) ([]T, error)

// CountFunc returns the total number of items in the collection.
type CountFunc func() (int, error)

// Page is one page of a Paged collection (spec §4.I).
type Page[T any] struct {
	Items      []T
	PageNum    int
	PageSize   int
	TotalItems int
	TotalPages int
	HasNext    bool
	HasPrev    bool
}

// Paged is a lazily-loaded collection backed by an offset/limit loader,
// with its total count cached on first access (spec §4.I "Paged lazy
// collection").
type Paged[T any] struct {
	loader   PageLoader[T]
	countFn  CountFunc
	pageSize int

	mu    sync.Mutex
	count *int
}

// NewPaged builds a Paged collection over loader, counted by countFn.
func NewPaged[T any](loader PageLoader[T], countFn CountFunc, pageSize int) *Paged[T] {
	if pageSize <= 0 {
		pageSize = 20
	}
	return &Paged[T]{loader: loader, countFn: countFn, pageSize: pageSize}
}

// Count returns the total item count, computing and caching it once.
func (p *Paged[T]) Count() (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.count != nil {
		return *p.count, nil
	}
	n, err := p.countFn()
	if err != nil {
		return 0, err
	}
	p.count = &n
	return n, nil
}

// Page retrieves the 1-indexed page pageNum.
func (p *Paged[T]) Page(pageNum int) (*Page[T], error) {
	if pageNum < 1 {
		pageNum = 1
	}
	total, err := p.Count()
	if err != nil {
		return nil, err
	}
	totalPages := (total + p.pageSize - 1) / p.pageSize
	offset := (pageNum - 1) * p.pageSize
	items, err := p.loader(offset, p.pageSize)
	if err != nil {
		return nil, err
	}
	return &Page[T]{
		Items:      items,
		PageNum:    pageNum,
		PageSize:   p.pageSize,
		TotalItems: total,
		TotalPages: totalPages,
		HasNext:    pageNum < totalPages,
		HasPrev:    pageNum > 1,
	}, nil
}

// At returns the item at a direct 0-indexed position.
func (p *Paged[T]) At(index int) (T, error) {
	var zero T
	pageNum := index/p.pageSize + 1
	page, err := p.Page(pageNum)
	if err != nil {
		return zero, err
	}
	local := index % p.pageSize
	if local >= len(page.Items) {
		return zero, nil
	}
	return page.Items[local], nil
}

// All eagerly walks every page and returns the full collection.
func (p *Paged[T]) All() ([]T, error) {
	var out []T
	for pageNum := 1; ; pageNum++ {
		page, err := p.Page(pageNum)
		if err != nil {
			return nil, err
		}
		out = append(out, page.Items...)
		if !page.HasNext {
			break
		}
	}
	return out, nil
}

// Find returns the first item satisfying pred, walking pages lazily.
func (p *Paged[T]) Find(pred func(T) bool) (T, bool, error) {
	var zero T
	for pageNum := 1; ; pageNum++ {
		page, err := p.Page(pageNum)
		if err != nil {
			return zero, false, err
		}
		for _, item := range page.Items {
			if pred(item) {
				return item, true, nil
			}
		}
		if !page.HasNext {
			return zero, false, nil
		}
	}
}

// Filter returns every item satisfying pred across the whole collection.
func (p *Paged[T]) Filter(pred func(T) bool) ([]T, error) {
	all, err := p.All()
	if err != nil {
		return nil, err
	}
	var out []T
	for _, item := range all {
		if pred(item) {
			out = append(out, item)
		}
	}
	return out, nil
}

// Take collects up to n items, optionally filtered by predicate (nil
// predicate takes the first n items unconditionally).
func (p *Paged[T]) Take(n int, predicate func(T) bool) ([]T, error) {
	var out []T
	for pageNum := 1; len(out) < n; pageNum++ {
		page, err := p.Page(pageNum)
		if err != nil {
			return nil, err
		}
		for _, item := range page.Items {
			if predicate == nil || predicate(item) {
				out = append(out, item)
				if len(out) == n {
					break
				}
			}
		}
		if !page.HasNext {
			break
		}
	}
	return out, nil
}

// MapPaged transforms every item of a Paged collection into a different
// type. A standalone function since Go methods cannot introduce a new type
// parameter beyond the receiver's.
func MapPaged[T, U any](p *Paged[T], fn func(T) U) ([]U, error) {
	all, err := p.All()
	if err != nil {
		return nil, err
	}
	out := make([]U, len(all))
	for i, item := range all {
		out[i] = fn(item)
	}
	return out, nil
}
