package domain

// PagedList is a page-wise projection of a server-owned collection together
// with its cursor. Lists are never cached beyond the current settings session.
type PagedList[T any] struct {
	Items      []T
	Page       int
	TotalPages int
	Total      int
}

// ClampPage returns page forced into the valid range for the list.
func (l PagedList[T]) ClampPage(page int) int {
	if page < 1 {
		return 1
	}
	if l.TotalPages > 0 && page > l.TotalPages {
		return l.TotalPages
	}

	return page
}

// HasPrev reports whether a previous page exists.
func (l PagedList[T]) HasPrev() bool {
	return l.Page > 1
}

// HasNext reports whether a following page exists.
func (l PagedList[T]) HasNext() bool {
	return l.Page < l.TotalPages
}

// PageCount computes how many pages a total of n items occupies at the given
// page size.
func PageCount(total, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 0
	}

	return (total + pageSize - 1) / pageSize
}
