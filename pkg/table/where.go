package table

import (
	"fmt"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Predicate is a compiled row condition.
type Predicate[T any] struct {
	source  string
	program *vm.Program
	fields  Fields[T]
}

// Where compiles a boolean expr-lang expression over the declared fields,
// for example `status == "active" && points < 6`. Field keys are the
// variable names; times are time.Time values.
func Where[T any](fields Fields[T], expression string) (*Predicate[T], error) {
	env := make(map[string]any, len(fields))
	for _, f := range fields {
		env[f.Key] = zeroOf(f.Kind)
	}
	program, err := expr.Compile(expression, expr.Env(env), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile %q: %w", expression, err)
	}
	return &Predicate[T]{source: expression, program: program, fields: fields}, nil
}

// String returns the source expression.
func (p *Predicate[T]) String() string {
	return p.source
}

// Match evaluates the predicate against row. Evaluation errors, such as
// comparing a null field with a number, count as no match.
func (p *Predicate[T]) Match(row T) bool {
	env := make(map[string]any, len(p.fields))
	for _, f := range p.fields {
		env[f.Key] = f.Get(row).Native()
	}
	out, err := expr.Run(p.program, env)
	if err != nil {
		return false
	}
	ok, _ := out.(bool)
	return ok
}

// ApplyWhere keeps the rows matching p. A nil predicate returns data
// unchanged.
func ApplyWhere[T any](data []T, p *Predicate[T]) []T {
	if p == nil {
		return data
	}
	out := make([]T, 0, len(data))
	for _, row := range data {
		if p.Match(row) {
			out = append(out, row)
		}
	}
	return out
}

func zeroOf(k Kind) any {
	switch k {
	case KindString:
		return ""
	case KindInt:
		return int64(0)
	case KindFloat:
		return float64(0)
	case KindBool:
		return false
	case KindTime:
		return time.Time{}
	}
	return nil
}
