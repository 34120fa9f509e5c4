package commands

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/samestrin/llm-calc/pkg/calculator"
)

func TestCalculateCommand(t *testing.T) {
	withGlobals(t, "", "")

	tests := []struct {
		name     string
		args     []string
		expected string
	}{
		{"addition", []string{"ADD", "2", "3"}, "RESULT: 5\n"},
		{"division", []string{"DIVIDE", "5", "2"}, "RESULT: 2.5\n"},
		{"lowercase", []string{"subtract", "10", "4"}, "RESULT: 6\n"},
		{"symbol alias", []string{"*", "6", "7"}, "RESULT: 42\n"},
		{"negative operands", []string{"MULTIPLY", "-3", "-2"}, "RESULT: 6\n"},
		{"negative quotient", []string{"DIVIDE", "-3", "2"}, "RESULT: -1.5\n"},
		{"float operands", []string{"ADD", "3.2", "2.3"}, "RESULT: 5.5\n"},
		{"minimal", []string{"--min", "ADD", "2", "3"}, "5\n"},
		{"human", []string{"--human", "MULTIPLY", "1000", "1000"}, "RESULT: 1,000,000\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := execute(newCalculateCmd(), tt.args...)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if out != tt.expected {
				t.Errorf("output = %q, want %q", out, tt.expected)
			}
		})
	}
}

func TestCalculateCommand_Errors(t *testing.T) {
	withGlobals(t, "", "")

	tests := []struct {
		name string
		args []string
		kind calculator.ErrorKind
	}{
		{"division by zero", []string{"DIVIDE", "5", "0"}, calculator.KindDivisionByZero},
		{"unsupported operation", []string{"POWER", "2", "3"}, calculator.KindUnsupportedOperation},
		{"invalid operand", []string{"ADD", "two", "3"}, calculator.KindInvalidOperand},
		{"nan operand", []string{"ADD", "nan", "1"}, calculator.KindInvalidOperand},
		{"inf operand", []string{"MULTIPLY", "inf", "0"}, calculator.KindInvalidOperand},
		{"negative infinity operand", []string{"SUBTRACT", "1", "-Infinity"}, calculator.KindInvalidOperand},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := execute(newCalculateCmd(), tt.args...)
			if err == nil {
				t.Fatal("expected error")
			}
			if calculator.KindOf(err) != tt.kind {
				t.Errorf("kind = %v, want %v (err: %v)", calculator.KindOf(err), tt.kind, err)
			}
			if strings.Contains(out, "RESULT") {
				t.Errorf("no result should be printed on error, got %q", out)
			}
		})
	}

	_, _, err := execute(newCalculateCmd(), "ADD", "2")
	if err == nil {
		t.Error("missing operand should fail")
	}
}

func TestCalculateCommand_DivisionByZeroIsSentinel(t *testing.T) {
	withGlobals(t, "", "")

	_, _, err := execute(newCalculateCmd(), "/", "1", "0")
	if !errors.Is(err, calculator.ErrDivisionByZero) {
		t.Errorf("expected ErrDivisionByZero, got %v", err)
	}
}

func TestCalculateCommand_JSON(t *testing.T) {
	withGlobals(t, "", "")

	out, _, err := execute(newCalculateCmd(), "--json", "DIVIDE", "5", "2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var result struct {
		Operation  string  `json:"operation"`
		Expression string  `json:"expression"`
		Result     float64 `json:"result"`
		Integral   bool    `json:"integral"`
	}
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if result.Operation != "DIVIDE" || result.Result != 2.5 || result.Integral {
		t.Errorf("unexpected result: %+v", result)
	}
	if result.Expression != "5 / 2" {
		t.Errorf("expression = %q, want %q", result.Expression, "5 / 2")
	}
}

func TestCalculateCommand_TrailingFlags(t *testing.T) {
	withGlobals(t, "", "")

	out, _, err := execute(newCalculateCmd(), "SUBTRACT", "-3", "2", "--json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var result struct {
		Result float64 `json:"result"`
	}
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if result.Result != -5 {
		t.Errorf("result = %v, want -5", result.Result)
	}
	if !GlobalJSONOutput {
		t.Error("trailing --json should be synced to GlobalJSONOutput")
	}

	out, _, err = execute(newCalculateCmd(), "ADD", "2", "3", "--min", "--human")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "5\n" {
		t.Errorf("output = %q, want %q", out, "5\n")
	}
}

func TestCalculateCommand_TrailingArgs(t *testing.T) {
	withGlobals(t, "", "")

	tests := []struct {
		name     string
		args     []string
		contains string
	}{
		{"extra operand", []string{"ADD", "2", "3", "4"}, "accepts 3 arg(s)"},
		{"operand after flag", []string{"ADD", "2", "3", "--json", "4"}, "unexpected argument"},
		{"unknown flag", []string{"ADD", "2", "3", "--bogus"}, "unknown flag"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(newCalculateCmd(), tt.args...)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.contains) {
				t.Errorf("error %q should contain %q", err.Error(), tt.contains)
			}
		})
	}
}

func TestCalculateCommand_MinimalJSON(t *testing.T) {
	withGlobals(t, "", "")

	out, _, err := execute(newCalculateCmd(), "--json", "--min", "ADD", "2", "3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var parsed map[string]interface{}
	if err := json.Unmarshal([]byte(out), &parsed); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if parsed["op"] != "ADD" || parsed["r"] != float64(5) || parsed["int"] != true {
		t.Errorf("unexpected minimal JSON: %v", parsed)
	}
}

func TestCalculateCommand_Formula(t *testing.T) {
	withGlobals(t, writeFile(t, "config.yaml", testConfig), "")

	out, _, err := execute(newCalculateCmd(), "pow", "2", "10")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "RESULT: 1024\n" {
		t.Errorf("output = %q", out)
	}
}

func TestCalculateCommand_Alias(t *testing.T) {
	cmd := newCalculateCmd()
	found := false
	for _, a := range cmd.Aliases {
		if a == "calc" {
			found = true
		}
	}
	if !found {
		t.Error("calculate should have the calc alias")
	}
}
