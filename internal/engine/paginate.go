package engine

// DefaultPageSize is used when a page size below 1 is requested
const DefaultPageSize = 10

// Page is one slice of a rowset
type Page[T any] struct {
	Rows       []T `json:"rows"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalRows  int `json:"total_rows"`
	TotalPages int `json:"total_pages"`
}

// TotalPages is ceil(n/size), at least 1
func TotalPages(n, size int) int {
	if size < 1 {
		size = DefaultPageSize
	}
	pages := n / size
	if n%size > 0 {
		pages++
	}
	if pages < 1 {
		pages = 1
	}
	return pages
}

// Paginate returns rows[(page-1)*size : page*size] clipped to the rowset. A page
// past the end is clamped to the last page.
func Paginate[T any](rows []T, page, size int) Page[T] {
	if size < 1 {
		size = DefaultPageSize
	}
	n := len(rows)
	total := TotalPages(n, size)
	if page > total {
		page = total
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * size
	end := start + size
	if end > n {
		end = n
	}
	return Page[T]{
		Rows:       rows[start:end:end],
		Page:       page,
		PageSize:   size,
		TotalRows:  n,
		TotalPages: total,
	}
}
