// Package calculator dispatches binary arithmetic by operation identifier
// and supports chaining operations against a running accumulator.
//
// A Calculator is not safe for concurrent use. Concurrent callers should each
// build their own from a shared Registry.
package calculator

import (
	"io"
	"log/slog"
	"maps"
)

// Calculator evaluates operations from an injected Registry
type Calculator struct {
	strategies  Registry
	accumulator float64
	err         error
	logger      *slog.Logger
}

// Option configures a Calculator
type Option func(*Calculator)

// WithLogger sets the logger used for debug tracing of evaluations
func WithLogger(l *slog.Logger) Option {
	return func(c *Calculator) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a Calculator over a private copy of registry.
// Later changes to registry do not affect the Calculator.
func New(registry Registry, opts ...Option) *Calculator {
	c := &Calculator{
		strategies: maps.Clone(registry),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	if c.strategies == nil {
		c.strategies = Registry{}
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewDefault creates a Calculator over DefaultRegistry
func NewDefault(opts ...Option) *Calculator {
	return New(DefaultRegistry(), opts...)
}

// Operations returns the identifiers this Calculator can evaluate
func (c *Calculator) Operations() []Operation {
	return c.strategies.Operations()
}

// Supports reports whether op has a registered strategy
func (c *Calculator) Supports(op Operation) bool {
	_, err := c.strategies.Lookup(op)
	return err == nil
}

// Calculate applies op to a and b. The accumulator is not touched.
func (c *Calculator) Calculate(op Operation, a, b float64) (Number, error) {
	strategy, err := c.strategies.Lookup(op)
	if err != nil {
		c.logger.Debug("calculate rejected", "op", op, "error", err)
		return Number{}, err
	}

	result, err := strategy(a, b)
	if err != nil {
		c.logger.Debug("calculate failed", "op", op, "a", a, "b", b, "error", err)
		return Number{}, err
	}

	c.logger.Debug("calculate", "op", op, "a", a, "b", b, "result", result)
	return NewNumber(result), nil
}

// Start sets the accumulator and clears any recorded chain error
func (c *Calculator) Start(value float64) *Calculator {
	c.accumulator = value
	c.err = nil
	return c
}

// Operate applies op to the accumulator and value, storing the result.
// On failure the accumulator is left unchanged and the error is kept for Err;
// subsequent Operate calls do nothing until Start is called again.
func (c *Calculator) Operate(op Operation, value float64) *Calculator {
	if c.err != nil {
		return c
	}
	if _, err := c.Apply(op, value); err != nil {
		c.err = err
	}
	return c
}

// Apply is the non-fluent form of Operate. It returns the new accumulator or
// the error, and does not record the error for Err.
func (c *Calculator) Apply(op Operation, value float64) (float64, error) {
	strategy, err := c.strategies.Lookup(op)
	if err != nil {
		return c.accumulator, err
	}

	result, err := strategy(c.accumulator, value)
	if err != nil {
		c.logger.Debug("operate failed", "op", op, "accumulator", c.accumulator, "value", value, "error", err)
		return c.accumulator, err
	}

	c.logger.Debug("operate", "op", op, "accumulator", c.accumulator, "value", value, "result", result)
	c.accumulator = result
	return result, nil
}

// Err returns the first error recorded by Operate since the last Start
func (c *Calculator) Err() error {
	return c.err
}

// Result returns the current accumulator
func (c *Calculator) Result() float64 {
	return c.accumulator
}
