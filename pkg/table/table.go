package table

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// DefaultPageSize is the page size of a new table.
const DefaultPageSize = 10

// Config declares a table over rows of type T.
type Config[T any] struct {
	Fields     Fields[T]
	Columns    []Column[T]
	Filters    []Filter
	SearchKeys []string
	PageSize   int
}

// Table holds the interactive state of one list screen. It is not safe for
// concurrent use.
type Table[T any] struct {
	cfg      Config[T]
	data     []T
	search   string
	filters  FilterState
	where    *Predicate[T]
	sort     SortState
	page     int
	pageSize int
}

// New returns a table on page 1 with no search, filter or sort.
func New[T any](cfg Config[T]) *Table[T] {
	size := cfg.PageSize
	if size < 1 {
		size = DefaultPageSize
	}
	return &Table[T]{
		cfg:      cfg,
		filters:  FilterState{},
		page:     1,
		pageSize: size,
	}
}

// View is the rendered state of the current page.
type View[T any] struct {
	Rows        []T
	Offset      int
	TotalItems  int
	TotalPages  int
	CurrentPage int
	PageSize    int
	HasNext     bool
	HasPrev     bool
}

// SetData replaces the row snapshot. The current page is clamped on the
// next View.
func (t *Table[T]) SetData(data []T) {
	t.data = data
}

// Search returns the current query.
func (t *Table[T]) Search() string { return t.search }

// SetSearch sets the free-text query and returns to page 1.
func (t *Table[T]) SetSearch(query string) {
	t.search = query
	t.page = 1
}

// Filters returns a copy of the filter state.
func (t *Table[T]) Filters() FilterState {
	out := make(FilterState, len(t.filters))
	for k, v := range t.filters {
		out[k] = v
	}
	return out
}

// SetFilter selects value for the filter key and returns to page 1. Setting
// AllValue or "" clears the filter.
func (t *Table[T]) SetFilter(key, value string) {
	if value == "" || value == AllValue {
		delete(t.filters, key)
	} else {
		t.filters[key] = value
	}
	t.page = 1
}

// ClearFilters removes every filter and any where expression.
func (t *Table[T]) ClearFilters() {
	t.filters = FilterState{}
	t.where = nil
	t.page = 1
}

// SetWhere compiles and installs an expression filter. An empty expression
// removes it.
func (t *Table[T]) SetWhere(expression string) error {
	if strings.TrimSpace(expression) == "" {
		t.where = nil
		t.page = 1
		return nil
	}
	p, err := Where(t.cfg.Fields, expression)
	if err != nil {
		return err
	}
	t.where = p
	t.page = 1
	return nil
}

// Sort returns the active sort.
func (t *Table[T]) Sort() SortState { return t.sort }

// SetSort sets the sort field and direction and returns to page 1.
func (t *Table[T]) SetSort(field string, dir Direction) {
	if dir != Desc {
		dir = Asc
	}
	t.sort = SortState{Field: field, Direction: dir}
	t.page = 1
}

// ToggleSort sorts ascending by field, or flips the direction when field is
// already the sort field. Columns not declared sortable are ignored.
func (t *Table[T]) ToggleSort(field string) {
	if !t.sortable(field) {
		return
	}
	if t.sort.Field == field {
		if t.sort.Direction == Asc {
			t.SetSort(field, Desc)
		} else {
			t.SetSort(field, Asc)
		}
		return
	}
	t.SetSort(field, Asc)
}

func (t *Table[T]) sortable(field string) bool {
	for _, c := range t.cfg.Columns {
		if c.Key == field {
			return c.Sortable
		}
	}
	return false
}

// Page returns the requested page number.
func (t *Table[T]) Page() int { return t.page }

// PageSize returns the page size.
func (t *Table[T]) PageSize() int { return t.pageSize }

// SetPageSize changes the page size and returns to page 1.
func (t *Table[T]) SetPageSize(size int) {
	if size < 1 {
		size = 1
	}
	t.pageSize = size
	t.page = 1
}

// GoToPage moves to page, clamped into [1, totalPages].
func (t *Table[T]) GoToPage(page int) {
	t.page = ClampPage(page, TotalPages(len(t.rows()), t.pageSize))
}

// NextPage advances one page if there is one.
func (t *Table[T]) NextPage() {
	t.GoToPage(t.page + 1)
}

// PrevPage goes back one page if there is one.
func (t *Table[T]) PrevPage() {
	t.GoToPage(t.page - 1)
}

// rows runs every transform except pagination.
func (t *Table[T]) rows() []T {
	rows := ApplySearch(t.data, t.search, t.cfg.Fields, t.cfg.SearchKeys)
	rows = ApplyFilters(rows, t.filters, t.cfg.Fields)
	rows = ApplyWhere(rows, t.where)
	return ApplySort(rows, t.sort, t.cfg.Fields)
}

// View computes the current page.
func (t *Table[T]) View() View[T] {
	rows := t.rows()
	total := len(rows)
	pages := TotalPages(total, t.pageSize)
	page := ClampPage(t.page, pages)
	t.page = page
	return View[T]{
		Rows:        Paginate(rows, page, t.pageSize),
		Offset:      (page - 1) * t.pageSize,
		TotalItems:  total,
		TotalPages:  pages,
		CurrentPage: page,
		PageSize:    t.pageSize,
		HasNext:     page < pages,
		HasPrev:     page > 1,
	}
}

// Render writes the current page as an aligned text table.
func (t *Table[T]) Render(w io.Writer) error {
	return Render(w, t.cfg.Columns, t.View())
}

// Render writes view's rows under the given columns.
func Render[T any](w io.Writer, columns []Column[T], view View[T]) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	headers := make([]string, len(columns))
	for i, c := range columns {
		headers[i] = c.Header
	}
	fmt.Fprintln(tw, strings.Join(headers, "\t"))
	for i, row := range view.Rows {
		cells := make([]string, len(columns))
		for j, c := range columns {
			if c.Render != nil {
				cells[j] = c.Render(row, view.Offset+i)
			}
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}
