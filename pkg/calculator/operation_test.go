package calculator

import "testing"

func TestParseOperation(t *testing.T) {
	tests := []struct {
		in   string
		want Operation
	}{
		{"ADD", Add},
		{"add", Add},
		{"  Subtract ", Subtract},
		{"+", Add},
		{"-", Subtract},
		{"*", Multiply},
		{"x", Multiply},
		{"×", Multiply},
		{"/", Divide},
		{"÷", Divide},
		{"div", Divide},
		{"pow", Operation("POW")},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseOperation(tt.in); got != tt.want {
				t.Errorf("ParseOperation(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestOperation_Symbol(t *testing.T) {
	if Add.Symbol() != "+" || Divide.Symbol() != "/" {
		t.Error("unexpected built-in symbol")
	}
	if Operation("POW").Symbol() != "POW" {
		t.Error("non built-in should render its name")
	}
}

func TestOperation_IsBuiltin(t *testing.T) {
	for _, op := range BuiltinOperations {
		if !op.IsBuiltin() {
			t.Errorf("%s should be built-in", op)
		}
	}
	if Operation("POW").IsBuiltin() {
		t.Error("POW should not be built-in")
	}
}
