// Package paginator slices an ordered collection into fixed-size pages.
package paginator

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// PerPage is the number of records on a full page.
const PerPage = 10

// Source is an ordered collection that can be counted and sliced.
// Implementations must return records in the same order on every call.
type Source[T any] interface {
	Count(ctx context.Context) (int, error)
	Fetch(ctx context.Context, offset, limit int) ([]T, error)
}

// Page is one page of a paginated collection.
type Page[T any] struct {
	Items    []T
	Number   int // 1-based
	NumPages int
	Count    int // records in the whole collection
	PerPage  int
}

// HasPrevious reports whether a page precedes this one.
func (p *Page[T]) HasPrevious() bool { return p.Number > 1 }

// HasNext reports whether a page follows this one.
func (p *Page[T]) HasNext() bool { return p.Number < p.NumPages }

// HasOtherPages reports whether the collection spans more than one page.
func (p *Page[T]) HasOtherPages() bool { return p.NumPages > 1 }

// PreviousPageNumber returns the number of the previous page.
func (p *Page[T]) PreviousPageNumber() int { return p.Number - 1 }

// NextPageNumber returns the number of the next page.
func (p *Page[T]) NextPageNumber() int { return p.Number + 1 }

// StartIndex returns the 1-based index of the first item on the page,
// or 0 when the collection is empty.
func (p *Page[T]) StartIndex() int {
	if p.Count == 0 {
		return 0
	}
	return (p.Number-1)*p.PerPage + 1
}

// EndIndex returns the 1-based index of the last item on the page.
func (p *Page[T]) EndIndex() int {
	if p.Count == 0 {
		return 0
	}
	return p.StartIndex() + len(p.Items) - 1
}

// PageRange returns every page number, for rendering page links.
func (p *Page[T]) PageRange() []int {
	pages := make([]int, p.NumPages)
	for i := range pages {
		pages[i] = i + 1
	}
	return pages
}

// ParsePage converts a page token into a 1-based page number.
// Missing, non-numeric and non-positive tokens map to page 1.
func ParsePage(token string) int {
	n, err := strconv.Atoi(strings.TrimSpace(token))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// NumPages returns how many pages count records occupy. An empty
// collection still has one (empty) page.
func NumPages(count int) int {
	if count <= 0 {
		return 1
	}
	return (count + PerPage - 1) / PerPage
}

// Paginate returns the page of src selected by token. A page beyond the
// last one yields the last page.
func Paginate[T any](ctx context.Context, src Source[T], token string) (*Page[T], error) {
	count, err := src.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting records: %w", err)
	}

	numPages := NumPages(count)
	number := min(ParsePage(token), numPages)

	items := []T{}
	if count > 0 {
		items, err = src.Fetch(ctx, (number-1)*PerPage, PerPage)
		if err != nil {
			return nil, fmt.Errorf("fetching page %d: %w", number, err)
		}
	}

	return &Page[T]{
		Items:    items,
		Number:   number,
		NumPages: numPages,
		Count:    count,
		PerPage:  PerPage,
	}, nil
}

type sliceSource[T any] struct {
	items []T
}

// FromSlice returns a Source over an already ordered slice.
func FromSlice[T any](items []T) Source[T] {
	return sliceSource[T]{items: items}
}

func (s sliceSource[T]) Count(context.Context) (int, error) {
	return len(s.items), nil
}

func (s sliceSource[T]) Fetch(_ context.Context, offset, limit int) ([]T, error) {
	if offset >= len(s.items) {
		return []T{}, nil
	}
	end := min(offset+limit, len(s.items))
	return s.items[offset:end], nil
}
