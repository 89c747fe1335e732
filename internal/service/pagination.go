// Package service implements the application's business logic.
package service

// Pagination describes one page of a paginated listing.
type Pagination struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	TotalItems  int64 `json:"totalItems"`
	HasNextPage bool  `json:"hasNextPage"`
	HasPrevPage bool  `json:"hasPrevPage"`
}

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// clampPageLimit normalizes page/limit to sane bounds. Limit defaults to 20
// and is clamped to 1..100; page floors at 1.
func clampPageLimit(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return page, limit
}

// newPagination computes page metadata. An empty result set still reports one
// page so clients can render "page 1 of 1".
func newPagination(page, limit int, total int64) Pagination {
	totalPages := int((total + int64(limit) - 1) / int64(limit))
	if totalPages < 1 {
		totalPages = 1
	}
	return Pagination{
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalItems:  total,
		HasNextPage: page < totalPages,
		HasPrevPage: page > 1,
	}
}
