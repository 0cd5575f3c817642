package queryparams

import "strings"

const (
	DefaultPage    = 1
	DefaultPerPage = 20
	MaxPerPage     = 100
)

// ListParams carries pagination, filtering and sorting for list endpoints.
type ListParams struct {
	Page    int    `query:"page"`
	PerPage int    `query:"perPage"`
	Name    string `query:"name"`
	SortBy  string `query:"sortBy"`
	OrderBy string `query:"orderBy"` // asc | desc
}

// Validate normalizes the pagination window in place.
func (p *ListParams) Validate() {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.PerPage < 1 {
		p.PerPage = DefaultPerPage
	}
	if p.PerPage > MaxPerPage {
		p.PerPage = MaxPerPage
	}
}

// Offset returns the row offset for the current page.
func (p *ListParams) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// OrderDirection returns a safe SQL sort direction.
func (p *ListParams) OrderDirection() string {
	if strings.EqualFold(p.OrderBy, "desc") {
		return "desc"
	}
	return "asc"
}

// PaginationMeta describes one page of a paginated result.
type PaginationMeta struct {
	CurrentPage int   `json:"currentPage"`
	PerPage     int   `json:"perPage"`
	TotalItems  int64 `json:"totalItems"`
	TotalPages  int   `json:"totalPages"`
}

// PaginatedResult is the envelope list endpoints return.
type PaginatedResult struct {
	Data any            `json:"data"`
	Meta PaginationMeta `json:"meta"`
}

// CalculateTotalPages returns the page count for a total row count.
func CalculateTotalPages(totalItems int64, perPage int) int {
	if perPage <= 0 {
		return 0
	}
	pages := int(totalItems / int64(perPage))
	if totalItems%int64(perPage) != 0 {
		pages++
	}
	return pages
}
