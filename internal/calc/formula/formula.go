// Package formula compiles configured operations written as expr-lang
// expressions over the operands a and b into calculator strategies.
package formula

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/samestrin/llm-calc/pkg/calculator"
)

// ErrEmptyFormula is returned when a formula has no expression text
var ErrEmptyFormula = errors.New("formula is empty")

// ErrNonFinite is the cause recorded when a formula evaluates to NaN or ±Inf
var ErrNonFinite = errors.New("result is not a finite number")

// Formula is a compiled operation definition
type Formula struct {
	Name        calculator.Operation
	Source      string
	Description string
	program     *vm.Program
}

// helpers are the functions available to formulas besides a and b
var helpers = map[string]interface{}{
	"abs":   math.Abs,
	"round": math.Round,
	"floor": math.Floor,
	"ceil":  math.Ceil,
	"sqrt":  math.Sqrt,
	"pow":   math.Pow,
	"mod":   math.Mod,
	"min": func(args ...float64) float64 {
		if len(args) == 0 {
			return 0
		}
		m := args[0]
		for _, v := range args[1:] {
			if v < m {
				m = v
			}
		}
		return m
	},
	"max": func(args ...float64) float64 {
		if len(args) == 0 {
			return 0
		}
		m := args[0]
		for _, v := range args[1:] {
			if v > m {
				m = v
			}
		}
		return m
	},
}

func env(a, b float64) map[string]interface{} {
	e := make(map[string]interface{}, len(helpers)+2)
	for k, v := range helpers {
		e[k] = v
	}
	e["a"] = a
	e["b"] = b
	return e
}

// Compile parses source and checks it against the formula environment.
func Compile(name calculator.Operation, source, description string) (*Formula, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, fmt.Errorf("%s: %w", name, ErrEmptyFormula)
	}

	// ** is accepted as an alias for the ^ power operator
	source = strings.ReplaceAll(source, "**", "^")

	// Builtins that collide with the helper names are disabled so the
	// float64 helpers win
	program, err := expr.Compile(source,
		expr.Env(env(0, 0)),
		expr.DisableBuiltin("min"),
		expr.DisableBuiltin("max"),
		expr.DisableBuiltin("ceil"),
		expr.DisableBuiltin("floor"),
		expr.DisableBuiltin("abs"),
		expr.DisableBuiltin("round"),
	)
	if err != nil {
		// expr only defines % on integers and a, b are float64
		if strings.Contains(source, "%") {
			return nil, fmt.Errorf("%s: invalid formula %q (use mod(a, b) for a float remainder): %w", name, source, err)
		}
		return nil, fmt.Errorf("%s: invalid formula %q: %w", name, source, err)
	}

	return &Formula{
		Name:        name,
		Source:      source,
		Description: description,
		program:     program,
	}, nil
}

// Eval runs the formula for a and b
func (f *Formula) Eval(a, b float64) (float64, error) {
	out, err := expr.Run(f.program, env(a, b))
	if err != nil {
		return 0, calculator.EvaluationFailed(f.Name, err)
	}

	v, err := toFloat(out)
	if err != nil {
		return 0, calculator.EvaluationFailed(f.Name, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, calculator.EvaluationFailed(f.Name, ErrNonFinite)
	}
	return v, nil
}

// Strategy adapts the formula to the calculator registry
func (f *Formula) Strategy() calculator.Strategy {
	return f.Eval
}

func toFloat(v interface{}) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case bool:
		if n {
			return 1, nil
		}
		return 0, nil
	default:
		return 0, fmt.Errorf("formula returned %T, want a number", v)
	}
}

// Register returns base extended with the formulas.
// base is not modified.
func Register(base calculator.Registry, formulas ...*Formula) calculator.Registry {
	out := base
	for _, f := range formulas {
		out = out.With(f.Name, f.Strategy())
	}
	if out == nil {
		out = calculator.Registry{}
	}
	return out
}
