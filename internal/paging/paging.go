// Package paging normalises page/limit query parameters and shapes list
// responses.
package paging

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Params is a 1-based page request.
type Params struct {
	Page  int
	Limit int
}

// Normalize clamps page to >= 1 and limit to 1..MaxLimit, defaulting to
// DefaultLimit.
func (p Params) Normalize() Params {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p
}

// Skip is the number of documents before the page.
func (p Params) Skip() int64 {
	p = p.Normalize()
	return int64((p.Page - 1) * p.Limit)
}

// Result is one page of items plus totals.
type Result[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Pages int64 `json:"pages"`
}

// NewResult builds a Result; a nil items slice is rendered as [].
func NewResult[T any](items []T, total int64, p Params) Result[T] {
	p = p.Normalize()
	if items == nil {
		items = []T{}
	}
	pages := total / int64(p.Limit)
	if total%int64(p.Limit) != 0 {
		pages++
	}
	return Result[T]{Items: items, Total: total, Page: p.Page, Limit: p.Limit, Pages: pages}
}
