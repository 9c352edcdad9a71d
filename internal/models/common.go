package models

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}

// ListOptions carries shared paging and sorting parameters.
type ListOptions struct {
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// Normalize clamps paging values to sane defaults.
func (o *ListOptions) Normalize() {
	if o.Page <= 0 {
		o.Page = 1
	}
	if o.PageSize <= 0 || o.PageSize > 100 {
		o.PageSize = 20
	}
	if o.SortOrder != "asc" && o.SortOrder != "desc" {
		o.SortOrder = "desc"
	}
}

// Offset returns the SQL offset for the current page.
func (o ListOptions) Offset() int {
	return (o.Page - 1) * o.PageSize
}
