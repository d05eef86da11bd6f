package table

import (
	"slices"
	"strings"
)

// ApplySearch keeps rows where at least one of the named fields contains
// query. A blank query returns data unchanged. Unknown keys are skipped.
func ApplySearch[T any](data []T, query string, fields Fields[T], keys []string) []T {
	query = strings.TrimSpace(query)
	if query == "" {
		return data
	}
	needle := Fold(query)
	getters := make([]Field[T], 0, len(keys))
	for _, k := range keys {
		if f, ok := fields.Lookup(k); ok {
			getters = append(getters, f)
		}
	}
	out := make([]T, 0, len(data))
	for _, row := range data {
		for _, f := range getters {
			if strings.Contains(Fold(f.Get(row).Text()), needle) {
				out = append(out, row)
				break
			}
		}
	}
	return out
}

// ApplyFilters keeps rows whose field text equals the selected value for
// every active filter. Keys with no declared field are ignored.
func ApplyFilters[T any](data []T, state FilterState, fields Fields[T]) []T {
	type check struct {
		field Field[T]
		want  string
	}
	var checks []check
	for k, v := range state.Active() {
		if f, ok := fields.Lookup(k); ok {
			checks = append(checks, check{f, Fold(v)})
		}
	}
	if len(checks) == 0 {
		return data
	}
	out := make([]T, 0, len(data))
rows:
	for _, row := range data {
		for _, c := range checks {
			if Fold(c.field.Get(row).Text()) != c.want {
				continue rows
			}
		}
		out = append(out, row)
	}
	return out
}

// ApplySort returns a sorted copy of data. The sort is stable, so rows with
// equal keys keep their input order. An empty or unknown field returns data
// unchanged.
func ApplySort[T any](data []T, sort SortState, fields Fields[T]) []T {
	if sort.Field == "" {
		return data
	}
	f, ok := fields.Lookup(sort.Field)
	if !ok {
		return data
	}
	keys := make([]Value, len(data))
	idx := make([]int, len(data))
	for i, row := range data {
		keys[i] = f.Get(row)
		idx[i] = i
	}
	slices.SortStableFunc(idx, func(a, b int) int {
		c := Compare(keys[a], keys[b])
		if sort.Direction == Desc {
			return -c
		}
		return c
	})
	out := make([]T, len(data))
	for i, j := range idx {
		out[i] = data[j]
	}
	return out
}

// TotalPages returns the number of pages needed for total rows. It is zero
// for an empty result and treats a non-positive size as one row per page.
func TotalPages(total, size int) int {
	if total <= 0 {
		return 0
	}
	if size < 1 {
		size = 1
	}
	return (total + size - 1) / size
}

// ClampPage moves page into [1, totalPages]. With no pages it returns 1.
func ClampPage(page, totalPages int) int {
	if page > totalPages {
		page = totalPages
	}
	if page < 1 {
		page = 1
	}
	return page
}

// Paginate returns the rows of page, clamping the page into range first.
// The result aliases data.
func Paginate[T any](data []T, page, size int) []T {
	if size < 1 {
		size = 1
	}
	page = ClampPage(page, TotalPages(len(data), size))
	start := (page - 1) * size
	if start >= len(data) {
		return data[len(data):]
	}
	end := min(start+size, len(data))
	return data[start:end:end]
}
