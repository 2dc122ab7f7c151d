package types

// Page is one page of a collection listing.
type Page[T any] struct {
	Items      []T  `json:"items"`
	Total      int  `json:"total"`
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	TotalPages int  `json:"totalPages"`
	HasNext    bool `json:"hasNext"`
	HasPrev    bool `json:"hasPrev"`
}

// Paginate slices items into the 1-based page of the given size. Pages past
// the end return no items; HasNext and HasPrev still follow from page and
// TotalPages. Returns ErrInvalidPagination when page or limit is below 1.
func Paginate[T any](items []T, page, limit int) (Page[T], error) {
	if page < 1 || limit < 1 {
		return Page[T]{}, ErrInvalidPagination
	}
	total := len(items)
	totalPages := (total + limit - 1) / limit

	start := (page - 1) * limit
	end := start + limit
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	pageItems := make([]T, end-start)
	copy(pageItems, items[start:end])

	return Page[T]{
		Items:      pageItems,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}, nil
}
