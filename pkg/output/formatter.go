// Package output provides shared output formatting for the llm-calc CLI and MCP server.
// It supports four output modes:
//   - Default: Human-readable text output
//   - JSON: Pretty-printed JSON output
//   - Minimal: Bare values, one per line
//   - Minimal+JSON: Single-line JSON with abbreviated keys and no empty fields
package output

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"
)

// Formatter handles output formatting with support for JSON and minimal modes.
type Formatter struct {
	JSON    bool // Output as JSON
	Minimal bool // Output in minimal mode
	Writer  io.Writer
}

// New creates a new Formatter with the given options.
func New(jsonOutput, minimal bool, w io.Writer) *Formatter {
	if w == nil {
		w = os.Stdout
	}
	return &Formatter{
		JSON:    jsonOutput,
		Minimal: minimal,
		Writer:  w,
	}
}

// KeyAbbreviations maps full key names to abbreviated versions for minimal JSON output.
var KeyAbbreviations = map[string]string{
	"operation":   "op",
	"operations":  "ops",
	"result":      "r",
	"value":       "v",
	"start":       "s",
	"steps":       "st",
	"accumulator": "acc",
	"integral":    "int",
	"error":       "err",
	"message":     "msg",
	"kind":        "k",
	"description": "d",
	"formula":     "f",
	"index":       "i",
	"line":        "l",
	"success":     "ok",
}

// Print outputs the data according to the formatter's configuration.
// textFunc renders default text output; if nil, JSON is used as fallback.
func (f *Formatter) Print(data interface{}, textFunc func(io.Writer, interface{})) error {
	if f.JSON {
		return f.printJSON(data)
	}
	if textFunc != nil {
		textFunc(f.Writer, data)
		return nil
	}
	return f.printJSON(data)
}

func (f *Formatter) printJSON(data interface{}) error {
	var (
		out []byte
		err error
	)
	if f.Minimal {
		out, err = json.Marshal(f.processForMinimalJSON(data))
	} else {
		out, err = json.MarshalIndent(data, "", "  ")
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(f.Writer, string(out))
	return nil
}

var marshalerType = reflect.TypeOf((*json.Marshaler)(nil)).Elem()

// processForMinimalJSON converts a struct/map to use abbreviated keys and omit empty values.
func (f *Formatter) processForMinimalJSON(data interface{}) interface{} {
	if data == nil {
		return nil
	}

	val := reflect.ValueOf(data)

	// Types with their own JSON form (calculator.Number) are emitted as-is
	if val.Type().Implements(marshalerType) {
		return data
	}

	if val.Kind() == reflect.Ptr {
		if val.IsNil() {
			return nil
		}
		return f.processForMinimalJSON(val.Elem().Interface())
	}

	switch val.Kind() {
	case reflect.Struct:
		return f.processStruct(val)
	case reflect.Map:
		return f.processMap(val)
	case reflect.Slice, reflect.Array:
		return f.processSlice(val)
	default:
		return data
	}
}

func (f *Formatter) processStruct(val reflect.Value) map[string]interface{} {
	result := make(map[string]interface{})
	typ := val.Type()

	for i := 0; i < val.NumField(); i++ {
		field := val.Field(i)
		fieldType := typ.Field(i)

		if !field.CanInterface() {
			continue
		}

		jsonTag := fieldType.Tag.Get("json")
		if jsonTag == "-" {
			continue
		}

		// Untagged embedded structs are flattened like encoding/json does
		if fieldType.Anonymous && jsonTag == "" && field.Kind() == reflect.Struct {
			for k, v := range f.processStruct(field) {
				result[k] = v
			}
			continue
		}

		name := fieldType.Name
		omitEmpty := false
		if jsonTag != "" {
			parts := strings.Split(jsonTag, ",")
			if parts[0] != "" {
				name = parts[0]
			}
			for _, opt := range parts[1:] {
				if opt == "omitempty" {
					omitEmpty = true
				}
			}
		}

		// Zero results are meaningful; only omitempty fields are dropped
		if omitEmpty && isEmptyValue(field) {
			continue
		}

		result[abbreviate(name)] = f.processForMinimalJSON(field.Interface())
	}

	return result
}

func (f *Formatter) processMap(val reflect.Value) map[string]interface{} {
	result := make(map[string]interface{})
	for _, key := range val.MapKeys() {
		keyStr := fmt.Sprintf("%v", key.Interface())
		result[abbreviate(keyStr)] = f.processForMinimalJSON(val.MapIndex(key).Interface())
	}
	return result
}

func (f *Formatter) processSlice(val reflect.Value) []interface{} {
	result := make([]interface{}, 0, val.Len())
	for i := 0; i < val.Len(); i++ {
		result = append(result, f.processForMinimalJSON(val.Index(i).Interface()))
	}
	return result
}

func abbreviate(key string) string {
	if abbrev, ok := KeyAbbreviations[strings.ToLower(key)]; ok {
		return abbrev
	}
	return key
}

func isEmptyValue(val reflect.Value) bool {
	if !val.IsValid() {
		return true
	}

	switch val.Kind() {
	case reflect.String:
		return val.String() == ""
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return val.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return val.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return val.Float() == 0
	case reflect.Bool:
		return !val.Bool()
	case reflect.Slice, reflect.Array, reflect.Map:
		return val.Len() == 0
	case reflect.Ptr, reflect.Interface:
		return val.IsNil()
	default:
		return false
	}
}

// PrintLine prints a key-value pair to the writer, skipping empty values in minimal mode.
func (f *Formatter) PrintLine(key string, value interface{}) {
	if f.Minimal && isEmptyValue(reflect.ValueOf(value)) {
		return
	}
	fmt.Fprintf(f.Writer, "%s: %v\n", key, value)
}

// hinter is implemented by errors that carry a remediation hint.
type hinter interface {
	FormatWithHint() string
}

// PrintError outputs an error respecting JSON and Minimal modes.
// In JSON mode, outputs to the writer for parsing. In text mode, outputs to stderr.
// Returns the exit code (always 1 for errors).
func (f *Formatter) PrintError(err error) int {
	if f.JSON {
		result := ErrorResult{Error: true, Message: err.Error(), Kind: errorKind(err)}
		if f.Minimal {
			output, _ := json.Marshal(f.processForMinimalJSON(result))
			fmt.Fprintln(f.Writer, string(output))
		} else {
			output, _ := json.MarshalIndent(result, "", "  ")
			fmt.Fprintln(f.Writer, string(output))
		}
		return 1
	}

	w := f.Writer
	if w == os.Stdout {
		w = os.Stderr
	}
	if f.Minimal {
		fmt.Fprintln(w, err.Error())
		return 1
	}

	var h hinter
	if errors.As(err, &h) {
		fmt.Fprintf(w, "Error: %s\n", h.FormatWithHint())
	} else {
		fmt.Fprintf(w, "Error: %v\n", err)
	}
	return 1
}

// kinder is implemented by errors that classify themselves.
type kinder interface {
	KindName() string
}

func errorKind(err error) string {
	var k kinder
	if errors.As(err, &k) {
		return k.KindName()
	}
	return ""
}

// ErrorResult is the JSON shape of a failed command.
type ErrorResult struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
	Kind    string `json:"kind,omitempty"`
}
