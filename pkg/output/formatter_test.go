package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/samestrin/llm-calc/pkg/calculator"
)

// sampleResult mirrors the shape commands print
type sampleResult struct {
	Operation string            `json:"operation"`
	Result    calculator.Number `json:"result"`
	Integral  bool              `json:"integral"`
	Message   string            `json:"message,omitempty"`
}

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	f := New(true, false, &buf)

	if f == nil {
		t.Fatal("New returned nil")
	}
	if !f.JSON {
		t.Error("JSON should be true")
	}
	if f.Minimal {
		t.Error("Minimal should be false")
	}
	if New(false, false, nil).Writer == nil {
		t.Error("nil writer should default to stdout")
	}
}

func TestFormatter_Print_DefaultText(t *testing.T) {
	var buf bytes.Buffer
	f := New(false, false, &buf)

	textFunc := func(w io.Writer, d interface{}) {
		w.Write([]byte("RESULT: 5"))
	}

	if err := f.Print(sampleResult{Operation: "ADD", Result: calculator.NewNumber(5)}, textFunc); err != nil {
		t.Fatalf("Print failed: %v", err)
	}
	if buf.String() != "RESULT: 5" {
		t.Errorf("Expected text output, got: %s", buf.String())
	}
}

func TestFormatter_Print_JSON(t *testing.T) {
	var buf bytes.Buffer
	f := New(true, false, &buf)

	data := sampleResult{Operation: "DIVIDE", Result: calculator.NewNumber(2.5)}
	if err := f.Print(data, nil); err != nil {
		t.Fatalf("Print failed: %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, `"operation": "DIVIDE"`) {
		t.Errorf("Expected operation in JSON, got: %s", output)
	}
	if !strings.Contains(output, `"result": 2.5`) {
		t.Errorf("Expected numeric result in JSON, got: %s", output)
	}
	if !strings.Contains(output, "\n  ") {
		t.Errorf("Expected pretty-printed JSON, got: %s", output)
	}
}

func TestFormatter_Print_MinimalJSON(t *testing.T) {
	var buf bytes.Buffer
	f := New(true, true, &buf)

	data := sampleResult{Operation: "ADD", Result: calculator.NewNumber(0), Integral: true}
	if err := f.Print(data, nil); err != nil {
		t.Fatalf("Print failed: %v", err)
	}

	output := strings.TrimSpace(buf.String())
	if strings.Contains(output, "\n") {
		t.Errorf("Minimal JSON should be single line, got: %s", output)
	}

	var parsed map[string]interface{}
	if err := json.Unmarshal([]byte(output), &parsed); err != nil {
		t.Fatalf("invalid JSON %q: %v", output, err)
	}
	if parsed["op"] != "ADD" {
		t.Errorf("expected abbreviated op key, got %v", parsed)
	}
	if parsed["r"] != float64(0) {
		t.Errorf("zero result must be kept, got %v", parsed["r"])
	}
	if _, ok := parsed["msg"]; ok {
		t.Errorf("empty omitempty field should be dropped, got %v", parsed)
	}
}

func TestFormatter_Print_MinimalJSONSlice(t *testing.T) {
	var buf bytes.Buffer
	f := New(true, true, &buf)

	data := []map[string]interface{}{{"value": 1}, {"value": 2}}
	if err := f.Print(data, nil); err != nil {
		t.Fatalf("Print failed: %v", err)
	}
	if strings.TrimSpace(buf.String()) != `[{"v":1},{"v":2}]` {
		t.Errorf("unexpected output: %s", buf.String())
	}
}

type StepFields struct {
	Operation string  `json:"operation"`
	Value     float64 `json:"value"`
}

type outerStep struct {
	StepFields
	Accumulator float64 `json:"accumulator"`
}

func TestFormatter_Print_MinimalJSONEmbedded(t *testing.T) {
	var buf bytes.Buffer
	f := New(true, true, &buf)

	data := outerStep{StepFields: StepFields{Operation: "ADD", Value: 3}, Accumulator: 8}
	if err := f.Print(data, nil); err != nil {
		t.Fatalf("Print failed: %v", err)
	}
	if strings.TrimSpace(buf.String()) != `{"acc":8,"op":"ADD","v":3}` {
		t.Errorf("embedded fields should be flattened, got: %s", buf.String())
	}
}

func TestFormatter_PrintLine(t *testing.T) {
	var buf bytes.Buffer
	New(false, false, &buf).PrintLine("RESULT", 16)
	if buf.String() != "RESULT: 16\n" {
		t.Errorf("got %q", buf.String())
	}

	buf.Reset()
	New(false, true, &buf).PrintLine("NOTE", "")
	if buf.Len() != 0 {
		t.Errorf("minimal mode should skip empty values, got %q", buf.String())
	}
}

func TestFormatter_PrintError(t *testing.T) {
	t.Run("json includes kind", func(t *testing.T) {
		var buf bytes.Buffer
		code := New(true, false, &buf).PrintError(calculator.DivisionByZero())
		if code != 1 {
			t.Errorf("exit code = %d, want 1", code)
		}

		var result ErrorResult
		if err := json.Unmarshal(buf.Bytes(), &result); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if !result.Error || result.Kind != "division_by_zero" {
			t.Errorf("unexpected result: %+v", result)
		}
	})

	t.Run("minimal json", func(t *testing.T) {
		var buf bytes.Buffer
		New(true, true, &buf).PrintError(errors.New("boom"))
		if strings.TrimSpace(buf.String()) != `{"err":true,"msg":"boom"}` {
			t.Errorf("got %q", buf.String())
		}
	})

	t.Run("text includes hint", func(t *testing.T) {
		var buf bytes.Buffer
		New(false, false, &buf).PrintError(calculator.UnsupportedOperation("POW"))
		out := buf.String()
		if !strings.HasPrefix(out, "Error: ") || !strings.Contains(out, "Hint:") {
			t.Errorf("got %q", out)
		}
	})

	t.Run("minimal text", func(t *testing.T) {
		var buf bytes.Buffer
		New(false, true, &buf).PrintError(errors.New("boom"))
		if buf.String() != "boom\n" {
			t.Errorf("got %q", buf.String())
		}
	})
}
