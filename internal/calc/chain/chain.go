// Package chain parses and runs sequences of operations against a calculator accumulator.
package chain

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/samestrin/llm-calc/internal/calc/batch"
	"github.com/samestrin/llm-calc/pkg/calculator"
	"github.com/tidwall/gjson"
)

// Step is one operation applied to the accumulator
type Step struct {
	Operation calculator.Operation `json:"operation"`
	Value     float64              `json:"value"`
}

// StepResult records the accumulator after a step
type StepResult struct {
	Step
	Accumulator float64 `json:"accumulator"`
}

// Trace is the outcome of a chained calculation
type Trace struct {
	Start  float64      `json:"start"`
	Steps  []StepResult `json:"steps"`
	Result float64      `json:"result"`
	Failed *FailedStep  `json:"failed,omitempty"`
}

// FailedStep identifies the step that stopped the chain
type FailedStep struct {
	Index int    `json:"index"`
	Step  Step   `json:"step"`
	Error string `json:"error"`
}

// Expression renders the chain as "start op value op value ..."
func (t *Trace) Expression() string {
	parts := []string{formatFloat(t.Start)}
	for _, s := range t.Steps {
		parts = append(parts, string(s.Operation), formatFloat(s.Value))
	}
	if t.Failed != nil {
		parts = append(parts, string(t.Failed.Step.Operation), formatFloat(t.Failed.Step.Value))
	}
	return strings.Join(parts, " ")
}

// Run starts calc at start and applies steps in order. On failure the trace
// holds the steps that succeeded and the returned error wraps the calculator error.
func Run(calc *calculator.Calculator, start float64, steps []Step) (*Trace, error) {
	trace := &Trace{Start: start, Steps: make([]StepResult, 0, len(steps))}

	calc.Start(start)
	for i, s := range steps {
		if calc.Operate(s.Operation, s.Value).Err() != nil {
			err := calc.Err()
			trace.Result = calc.Result()
			trace.Failed = &FailedStep{Index: i + 1, Step: s, Error: err.Error()}
			return trace, fmt.Errorf("step %d (%s %s): %w", i+1, s.Operation, formatFloat(s.Value), err)
		}
		trace.Steps = append(trace.Steps, StepResult{Step: s, Accumulator: calc.Result()})
	}

	trace.Result = calc.Result()
	return trace, nil
}

// ParsePairs parses alternating operation/value arguments.
func ParsePairs(args []string) ([]Step, error) {
	if len(args)%2 != 0 {
		return nil, fmt.Errorf("expected <op> <value> pairs, got %d arguments", len(args))
	}

	steps := make([]Step, 0, len(args)/2)
	for i := 0; i < len(args); i += 2 {
		v, err := batch.ParseOperand(args[i+1])
		if err != nil {
			return nil, err
		}
		steps = append(steps, Step{Operation: calculator.ParseOperation(args[i]), Value: v})
	}
	return steps, nil
}

// ParseJSON parses a JSON array of {"op": "...", "value": n} objects.
// "operation" is accepted as an alias for "op".
func ParseJSON(input string) ([]Step, error) {
	if !gjson.Valid(input) {
		return nil, fmt.Errorf("invalid steps JSON")
	}

	parsed := gjson.Parse(input)
	if !parsed.IsArray() {
		return nil, fmt.Errorf("steps JSON must be an array")
	}

	var (
		steps   []Step
		walkErr error
	)
	parsed.ForEach(func(key, item gjson.Result) bool {
		idx := int(key.Int()) + 1

		op := item.Get("op")
		if !op.Exists() {
			op = item.Get("operation")
		}
		if op.Type != gjson.String || strings.TrimSpace(op.String()) == "" {
			walkErr = fmt.Errorf("step %d: missing \"op\"", idx)
			return false
		}

		value := item.Get("value")
		var v float64
		switch value.Type {
		case gjson.Number:
			v = value.Float()
		case gjson.String:
			f, err := batch.ParseOperand(value.String())
			if err != nil {
				walkErr = fmt.Errorf("step %d: %w", idx, err)
				return false
			}
			v = f
		default:
			walkErr = fmt.Errorf("step %d: missing numeric \"value\"", idx)
			return false
		}

		steps = append(steps, Step{Operation: calculator.ParseOperation(op.String()), Value: v})
		return true
	})
	if walkErr != nil {
		return nil, walkErr
	}
	if steps == nil {
		steps = []Step{}
	}
	return steps, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
