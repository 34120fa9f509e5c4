// Package mcpserver exposes the calculator as MCP tools. Handlers run in-process
// and return the same minimal JSON the CLI prints with --json --min.
package mcpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/samestrin/llm-calc/internal/calc/batch"
	"github.com/samestrin/llm-calc/internal/calc/chain"
	"github.com/samestrin/llm-calc/internal/calc/config"
	"github.com/samestrin/llm-calc/internal/calc/history"
	"github.com/samestrin/llm-calc/pkg/calculator"
	"github.com/samestrin/llm-calc/pkg/output"
)

// paramAliases maps canonical parameter names to their accepted aliases.
// This makes the MCP tools more forgiving when LLMs use alternative parameter names.
var paramAliases = map[string][]string{
	"operation": {"op", "operator"},
	"a":         {"x", "left", "lhs"},
	"b":         {"y", "right", "rhs"},
	"start":     {"initial", "value"},
	"lines":     {"input", "jobs"},
}

// normalizeArgs converts aliased parameter names to their canonical forms.
// A canonical key already present in args always wins over its aliases.
func normalizeArgs(args map[string]interface{}) map[string]interface{} {
	if args == nil {
		return args
	}

	aliasToCanonical := make(map[string]string)
	for canonical, aliases := range paramAliases {
		for _, alias := range aliases {
			aliasToCanonical[alias] = canonical
		}
	}

	normalized := make(map[string]interface{}, len(args))
	for key, value := range args {
		if canonical, isAlias := aliasToCanonical[key]; isAlias {
			if _, hasCanonical := args[canonical]; !hasCanonical {
				normalized[canonical] = value
				continue
			}
		}
		normalized[key] = value
	}
	return normalized
}

// Handler executes tools against a registry and an optional history tape
type Handler struct {
	cfg      *config.CalcConfig
	registry calculator.Registry
	store    history.Store
	logger   *slog.Logger
}

// NewHandler builds the registry from cfg (nil means built-ins only).
// store may be nil to disable history.
func NewHandler(cfg *config.CalcConfig, store history.Store, logger *slog.Logger) (*Handler, error) {
	registry, err := cfg.Registry()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{cfg: cfg, registry: registry, store: store, logger: logger}, nil
}

// ExecuteHandler executes the appropriate handler for a tool
func (h *Handler) ExecuteHandler(ctx context.Context, toolName string, args map[string]interface{}) (string, error) {
	cmdName := strings.TrimPrefix(toolName, ToolPrefix)
	args = normalizeArgs(args)
	if args == nil {
		args = map[string]interface{}{}
	}

	var (
		data interface{}
		err  error
	)
	switch cmdName {
	case "calculate":
		data, err = h.calculate(ctx, args)
	case "chain":
		data, err = h.chain(ctx, args)
	case "batch":
		data, err = h.batch(ctx, args)
	case "operations":
		data, err = h.operations()
	default:
		return "", fmt.Errorf("unknown tool: %s", toolName)
	}
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	f := output.New(true, getBoolDefault(args, "min", true), &buf)
	if err := f.Print(data, nil); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}

// CalculateResult is the output of the calculate tool
type CalculateResult struct {
	Operation calculator.Operation `json:"operation"`
	A         float64              `json:"a"`
	B         float64              `json:"b"`
	Result    calculator.Number    `json:"result"`
	Integral  bool                 `json:"integral"`
}

func (h *Handler) calculate(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	opName, ok := args["operation"].(string)
	if !ok || strings.TrimSpace(opName) == "" {
		return nil, fmt.Errorf("operation is required")
	}
	a, err := getNumber(args, "a")
	if err != nil {
		return nil, err
	}
	b, err := getNumber(args, "b")
	if err != nil {
		return nil, err
	}

	op := calculator.ParseOperation(opName)
	calc := calculator.New(h.registry, calculator.WithLogger(h.logger))
	result, calcErr := calc.Calculate(op, a, b)

	job := batch.Job{Operation: op, A: a, B: b}
	h.record(ctx, &history.Entry{
		Kind:       history.KindCalculate,
		Expression: job.String(),
		Result:     result.Float(),
		Error:      errorString(calcErr),
	})
	if calcErr != nil {
		return nil, calcErr
	}

	return CalculateResult{Operation: op, A: a, B: b, Result: result, Integral: result.Integral}, nil
}

func (h *Handler) chain(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	start, err := getNumber(args, "start")
	if err != nil {
		return nil, err
	}

	var raw string
	switch v := args["steps"].(type) {
	case string:
		raw = v
	case nil:
		return nil, fmt.Errorf("steps is required")
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("invalid steps: %w", err)
		}
		raw = string(b)
	}

	steps, err := chain.ParseJSON(raw)
	if err != nil {
		return nil, err
	}

	calc := calculator.New(h.registry, calculator.WithLogger(h.logger))
	trace, runErr := chain.Run(calc, start, steps)
	h.record(ctx, &history.Entry{
		Kind:       history.KindChain,
		Expression: trace.Expression(),
		Result:     trace.Result,
		Error:      errorString(runErr),
	})
	if runErr != nil {
		return nil, runErr
	}
	return trace, nil
}

// BatchLine is the outcome of one input line
type BatchLine struct {
	Line   int                `json:"line"`
	Result *calculator.Number `json:"result,omitempty"`
	Error  string             `json:"error,omitempty"`
}

// BatchResult is the output of the batch tool
type BatchResult struct {
	Summary batch.Summary `json:"summary"`
	Results []BatchLine   `json:"results"`
}

func (h *Handler) batch(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	lines, ok := args["lines"].(string)
	if !ok {
		return nil, fmt.Errorf("lines is required")
	}
	jobs, err := batch.Parse(strings.NewReader(lines))
	if err != nil {
		return nil, err
	}

	explicit, _ := getInt(args, "concurrency")
	var configured int
	if h.cfg != nil {
		configured = h.cfg.Concurrency
	}
	concurrency := config.ResolveIntValue(explicit, configured, config.DefaultConcurrency)

	results := batch.NewRunner(h.registry, concurrency, calculator.WithLogger(h.logger)).Run(ctx, jobs, nil)

	out := BatchResult{Summary: batch.Summarize(results), Results: make([]BatchLine, 0, len(results))}
	entries := make([]*history.Entry, 0, len(results))
	for _, r := range results {
		line := BatchLine{Line: r.Job.Line}
		if r.Err != nil {
			line.Error = r.Err.Error()
		} else {
			v := r.Value
			line.Result = &v
		}
		out.Results = append(out.Results, line)
		entries = append(entries, &history.Entry{
			Kind:       history.KindBatch,
			Expression: r.Job.String(),
			Result:     r.Value.Float(),
			Error:      line.Error,
		})
	}
	h.record(ctx, entries...)

	return out, nil
}

// OperationsResult is the output of the operations tool
type OperationsResult struct {
	Count      int                    `json:"count"`
	Operations []config.OperationInfo `json:"operations"`
}

func (h *Handler) operations() (interface{}, error) {
	infos, err := h.cfg.Catalog()
	if err != nil {
		return nil, err
	}
	return OperationsResult{Count: len(infos), Operations: infos}, nil
}

func (h *Handler) record(ctx context.Context, entries ...*history.Entry) {
	if h.store == nil {
		return
	}
	for _, e := range entries {
		if err := h.store.Record(ctx, e); err != nil {
			h.logger.Warn("failed to record history", "expression", e.Expression, "error", err)
			return
		}
	}
}

func errorString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// Helper functions

// getBoolDefault returns the bool value for key, or defaultVal if not set.
func getBoolDefault(args map[string]interface{}, key string, defaultVal bool) bool {
	if v, ok := args[key].(bool); ok {
		return v
	}
	return defaultVal
}

func getInt(args map[string]interface{}, key string) (int, bool) {
	switch v := args[key].(type) {
	case int:
		return v, true
	case float64:
		return int(v), true
	case int64:
		return int(v), true
	}
	return 0, false
}

// getNumber reads a required numeric argument. Numeric strings are accepted.
func getNumber(args map[string]interface{}, key string) (float64, error) {
	switch v := args[key].(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case string:
		return batch.ParseOperand(v)
	case nil:
		return 0, fmt.Errorf("%s is required", key)
	}
	return 0, fmt.Errorf("%s must be a number", key)
}
