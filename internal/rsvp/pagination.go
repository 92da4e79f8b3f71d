package rsvp

import "wedding-invitation/internal/models"

// PageSize is the number of submissions shown per page.
const PageSize = 5

// Page is one page of the RSVP board.
type Page struct {
	Items       []models.Submission `json:"items"`
	CurrentPage int                 `json:"current_page"`
	TotalPages  int                 `json:"total_pages"`
	HasPrev     bool                `json:"has_prev"`
	HasNext     bool                `json:"has_next"`
}

// TotalPages returns ceil(n / PageSize).
func TotalPages(n int) int {
	if n <= 0 {
		return 0
	}
	return (n + PageSize - 1) / PageSize
}

// clampPage keeps page within [1, total]. An empty board stays on page 1.
func clampPage(page, total int) int {
	if page > total {
		page = total
	}
	if page < 1 {
		page = 1
	}
	return page
}

// slicePage builds the view of page over items. page must already be clamped.
func slicePage(items []models.Submission, page int) Page {
	total := TotalPages(len(items))
	start := (page - 1) * PageSize
	end := start + PageSize
	if start > len(items) {
		start = len(items)
	}
	if end > len(items) {
		end = len(items)
	}

	out := make([]models.Submission, end-start)
	copy(out, items[start:end])
	return Page{
		Items:       out,
		CurrentPage: page,
		TotalPages:  total,
		HasPrev:     page > 1,
		HasNext:     page < total,
	}
}
