package response

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int64 `json:"total_pages"`
	TotalItems int64 `json:"total_items"`
	HasMore    bool  `json:"has_more"`
	From       int   `json:"from"`
	To         int   `json:"to"`
}

// NewPagination describes page (1-based) of size pageSize over total items.
// From and To are 1-based and both zero for an empty page. pageSize is
// capped at MaxPageSize.
func NewPagination(page, pageSize, total int) Pagination {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	pageSize = min(pageSize, MaxPageSize)
	if page <= 0 {
		page = 1
	}
	totalPages := (total + pageSize - 1) / pageSize
	p := Pagination{
		Page:       page,
		PageSize:   pageSize,
		TotalPages: int64(totalPages),
		TotalItems: int64(total),
		HasMore:    page < totalPages,
	}
	if page > totalPages {
		return p
	}
	start := (page - 1) * pageSize
	if start < total {
		p.From = start + 1
		p.To = min(start+pageSize, total)
	}
	return p
}

// Bounds returns the slice bounds of the page within the full result.
func (p Pagination) Bounds() (int, int) {
	if p.From == 0 {
		return 0, 0
	}
	return p.From - 1, p.To
}
