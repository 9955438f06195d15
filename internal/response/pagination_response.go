package response

type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int64 `json:"total_pages"`
	TotalItems int64 `json:"total_items"`
	HasMore    bool  `json:"has_more"`
	From       int   `json:"from"`
	To         int   `json:"to"`
}

// NewPagination describes page (1-based) of size out of total items, where
// count items were actually returned.
func NewPagination(page, size int, total int64, count int) *Pagination {
	p := &Pagination{Page: page, PageSize: size, TotalItems: total}
	if size > 0 {
		p.TotalPages = (total + int64(size) - 1) / int64(size)
	}
	if count > 0 {
		p.From = (page-1)*size + 1
		p.To = p.From + count - 1
	}
	p.HasMore = int64(page) < p.TotalPages
	return p
}
