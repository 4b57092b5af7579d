package kernel

// PaginationOptions carries the requested page window.
type PaginationOptions struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

// DefaultPaginationOptions returns the standard page window.
func DefaultPaginationOptions() PaginationOptions {
	return PaginationOptions{Page: 1, PageSize: 20}
}

// Normalize clamps out-of-range values to sane defaults.
func (p PaginationOptions) Normalize() PaginationOptions {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 || p.PageSize > 100 {
		p.PageSize = 20
	}
	return p
}

// Page describes the resolved page of a paginated result.
type Page struct {
	Number int `json:"number"`
	Size   int `json:"size"`
	Total  int `json:"total"`
	Pages  int `json:"pages"`
}

// Paginated wraps a page of items of any type.
type Paginated[T any] struct {
	Items []T  `json:"items"`
	Page  Page `json:"page"`
	Empty bool `json:"empty"`
}
