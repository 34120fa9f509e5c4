package calculator

import "strings"

// Operation names a binary numeric function in a Registry
type Operation string

// Built-in operations
const (
	Add      Operation = "ADD"
	Subtract Operation = "SUBTRACT"
	Multiply Operation = "MULTIPLY"
	Divide   Operation = "DIVIDE"
)

// BuiltinOperations lists the built-in operations in declaration order
var BuiltinOperations = []Operation{Add, Subtract, Multiply, Divide}

var symbolAliases = map[string]Operation{
	"+":   Add,
	"-":   Subtract,
	"*":   Multiply,
	"X":   Multiply,
	"×":   Multiply,
	"/":   Divide,
	"÷":   Divide,
	"SUB": Subtract,
	"MUL": Multiply,
	"DIV": Divide,
}

// ParseOperation normalises a user supplied identifier.
// It accepts any case, surrounding whitespace and the usual symbol aliases.
// Unknown names are returned upper-cased so that registry lookups report them.
func ParseOperation(s string) Operation {
	name := strings.ToUpper(strings.TrimSpace(s))
	if op, ok := symbolAliases[name]; ok {
		return op
	}
	return Operation(name)
}

func (o Operation) String() string {
	return string(o)
}

// IsBuiltin reports whether o is one of the four built-in operations
func (o Operation) IsBuiltin() bool {
	for _, b := range BuiltinOperations {
		if o == b {
			return true
		}
	}
	return false
}

// Symbol returns the infix symbol for built-ins and the name otherwise
func (o Operation) Symbol() string {
	switch o {
	case Add:
		return "+"
	case Subtract:
		return "-"
	case Multiply:
		return "*"
	case Divide:
		return "/"
	default:
		return string(o)
	}
}
