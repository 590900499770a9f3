package model

// Page is one window of a listing.
type Page[T any] struct {
	Data     []T   `json:"data"`
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	HasMore  bool  `json:"has_more"`
}

// NewPage wraps data fetched for q out of total matching rows.
func NewPage[T any](data []T, total int64, q PageQuery) *Page[T] {
	if data == nil {
		data = []T{}
	}
	return &Page[T]{
		Data:     data,
		Total:    total,
		Page:     q.Page,
		PageSize: q.PageSize,
		HasMore:  int64(q.Offset()+len(data)) < total,
	}
}

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}
