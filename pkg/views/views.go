// Package views declares the list screens of every registry resource: the
// fields the table engine can search, filter and sort on, the rendered
// columns and the filter controls.
package views

import (
	"strconv"
	"strings"
	"time"

	"github.com/getmockd/regdesk/pkg/table"
)

// View bundles the table declarations for one resource.
type View[T any] struct {
	Resource   string
	Fields     table.Fields[T]
	Columns    []table.Column[T]
	Filters    []table.Filter
	SearchKeys []string
	// DefaultSort is applied by list endpoints when the caller asks for none.
	DefaultSort table.SortState
}

// Config returns a table configuration for the view.
func (v View[T]) Config(pageSize int) table.Config[T] {
	return table.Config[T]{
		Fields:     v.Fields,
		Columns:    v.Columns,
		Filters:    v.Filters,
		SearchKeys: v.SearchKeys,
		PageSize:   pageSize,
	}
}

// Table returns a new table over rows.
func (v View[T]) Table(rows []T, pageSize int) *table.Table[T] {
	t := table.New(v.Config(pageSize))
	t.SetData(rows)
	return t
}

// Filter returns the declared filter with the given key.
func (v View[T]) Filter(key string) (table.Filter, bool) {
	for _, f := range v.Filters {
		if f.Key == key {
			return f, true
		}
	}
	return table.Filter{}, false
}

// Clock returns the current time. Tests replace it.
var Clock = time.Now

func date(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("02/01/2006")
}

// VND formats an amount of Vietnamese dong with dot thousands separators.
func VND(amount int64) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}
	digits := strconv.FormatInt(amount, 10)
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	s := b.String() + " ₫"
	if neg {
		return "-" + s
	}
	return s
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func rowNumber[T any](_ T, i int) string {
	return strconv.Itoa(i + 1)
}
