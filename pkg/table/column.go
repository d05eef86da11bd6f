package table

import "strings"

// Column describes one rendered column.
type Column[T any] struct {
	Key      string
	Header   string
	Width    string
	Sortable bool
	// Render produces the cell text for row at its absolute index in the
	// filtered result.
	Render func(row T, index int) string
}

// AllValue is the filter option that removes the constraint.
const AllValue = "all"

// Option is one selectable filter value.
type Option struct {
	Value string
	Label string
}

// Filter declares a filter control over one field.
type Filter struct {
	Key     string
	Label   string
	Options []Option
}

// NewFilter declares a filter. The "all" option is placed first, and added
// when options does not already contain it.
func NewFilter(key, label string, options ...Option) Filter {
	out := make([]Option, 0, len(options)+1)
	all := Option{Value: AllValue, Label: "All"}
	for _, o := range options {
		if o.Value == AllValue {
			all = o
			continue
		}
		out = append(out, o)
	}
	return Filter{Key: key, Label: label, Options: append([]Option{all}, out...)}
}

// Accepts reports whether value is one of the filter's options.
func (f Filter) Accepts(value string) bool {
	for _, o := range f.Options {
		if o.Value == value {
			return true
		}
	}
	return false
}

// Options builds filter options whose labels equal their values.
func Options[S ~string](values ...S) []Option {
	out := make([]Option, len(values))
	for i, v := range values {
		out[i] = Option{Value: string(v), Label: string(v)}
	}
	return out
}

// FilterState maps a filter key to its selected value. An absent key, an
// empty value or AllValue leave the field unconstrained.
type FilterState map[string]string

// Active returns the constrained keys and their values.
func (s FilterState) Active() FilterState {
	out := FilterState{}
	for k, v := range s {
		if v != "" && v != AllValue {
			out[k] = v
		}
	}
	return out
}

// Direction is a sort direction.
type Direction string

// Sort directions.
const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// ParseDirection maps "desc" (any case) to Desc and everything else to Asc.
func ParseDirection(s string) Direction {
	if strings.EqualFold(s, "desc") {
		return Desc
	}
	return Asc
}

// SortState is the active sort. An empty Field keeps input order.
type SortState struct {
	Field     string
	Direction Direction
}
