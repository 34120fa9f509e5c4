package calculator

import (
	"maps"
	"slices"
	"sort"
)

// Strategy is a pure binary function implementing one operation.
// Only strategies that can fail (DIVIDE, configured formulas) return a non-nil error.
type Strategy func(a, b float64) (float64, error)

// Registry maps operation identifiers to strategies
type Registry map[Operation]Strategy

// DefaultRegistry returns a fresh registry holding the four built-in operations
func DefaultRegistry() Registry {
	return Registry{
		Add: func(a, b float64) (float64, error) {
			return a + b, nil
		},
		Subtract: func(a, b float64) (float64, error) {
			return a - b, nil
		},
		Multiply: func(a, b float64) (float64, error) {
			return a * b, nil
		},
		Divide: func(a, b float64) (float64, error) {
			if b == 0 {
				return 0, DivisionByZero()
			}
			return a / b, nil
		},
	}
}

// With returns a copy of r with op bound to s. r is not modified.
func (r Registry) With(op Operation, s Strategy) Registry {
	out := maps.Clone(r)
	if out == nil {
		out = Registry{}
	}
	out[op] = s
	return out
}

// Lookup returns the strategy for op or an UnsupportedOperation error
func (r Registry) Lookup(op Operation) (Strategy, error) {
	s, ok := r[op]
	if !ok || s == nil {
		return nil, UnsupportedOperation(op)
	}
	return s, nil
}

// Operations returns the registered identifiers.
// Built-ins come first in declaration order, then the rest alphabetically.
func (r Registry) Operations() []Operation {
	ops := make([]Operation, 0, len(r))
	for _, b := range BuiltinOperations {
		if _, ok := r[b]; ok {
			ops = append(ops, b)
		}
	}

	var extra []Operation
	for op := range r {
		if !op.IsBuiltin() {
			extra = append(extra, op)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })

	return slices.Concat(ops, extra)
}
