package model

const (
	// DefaultPageSize is used when a listing does not ask for a size.
	DefaultPageSize = 20
	// MaxPageSize caps a single listing page.
	MaxPageSize = 100
)

// PageQuery selects a window of a listing. Page is 1-based.
type PageQuery struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// Normalize fills unset fields and clamps the size to MaxPageSize.
func (q *PageQuery) Normalize() {
	if q.Page < 1 {
		q.Page = 1
	}
	switch {
	case q.PageSize < 1:
		q.PageSize = DefaultPageSize
	case q.PageSize > MaxPageSize:
		q.PageSize = MaxPageSize
	}
}

// Offset returns how many rows precede the page.
func (q PageQuery) Offset() int {
	return (q.Page - 1) * q.PageSize
}
