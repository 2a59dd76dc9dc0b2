// Package pagination slices result lists into "load more" prefixes and
// encodes the cursors handed to clients between requests.
package pagination

// VisibleSlice returns the first pageIndex*pageSize items. Page indexes below
// 1 count as 1; a non-positive page size shows everything.
func VisibleSlice[T any](items []T, pageIndex, pageSize int) []T {
	if pageSize <= 0 {
		return items
	}
	if pageIndex < 1 {
		pageIndex = 1
	}

	n := len(items)
	if pageIndex <= n/pageSize {
		n = pageIndex * pageSize
	}
	return items[:n]
}

// HasMore reports whether another page would reveal additional items. Once it
// returns false the load-more affordance stays hidden until the list is
// replaced.
func HasMore(total, pageIndex, pageSize int) bool {
	if pageSize <= 0 {
		return false
	}
	if pageIndex < 1 {
		pageIndex = 1
	}
	return pageIndex < (total+pageSize-1)/pageSize
}
