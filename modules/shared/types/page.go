package types

import "math"

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
	// MaxPageNumber keeps Offset within an int32 so every store accepts it.
	MaxPageNumber = math.MaxInt32 / MaxPageSize
)

// Page is a normalized 1-based page request.
type Page struct {
	Number int
	Size   int
}

// NewPage clamps number and size into their valid ranges. Pages past the
// last match come back empty.
func NewPage(number, size int) Page {
	number = min(max(number, 1), MaxPageNumber)
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return Page{Number: number, Size: size}
}

// Offset is never negative, even for a Page built without NewPage.
func (p Page) Offset() int {
	n := NewPage(p.Number, p.Size)
	return (n.Number - 1) * n.Size
}

// Paged is one page of results plus the total number of matches.
type Paged[T any] struct {
	Items    []T `json:"items"`
	Total    int `json:"total"`
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
}

// NewPaged builds a Paged result, never returning a nil Items slice.
func NewPaged[T any](items []T, total int, page Page) Paged[T] {
	if items == nil {
		items = []T{}
	}
	return Paged[T]{Items: items, Total: total, Page: page.Number, PageSize: page.Size}
}

// MapPaged converts the items of a page, keeping the paging metadata.
func MapPaged[T, U any](p Paged[T], fn func(T) U) Paged[U] {
	out := make([]U, 0, len(p.Items))
	for _, item := range p.Items {
		out = append(out, fn(item))
	}
	return Paged[U]{Items: out, Total: p.Total, Page: p.Page, PageSize: p.PageSize}
}
