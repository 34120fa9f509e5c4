package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
)

func TestErrConfigInvalidYAML_LineColumn(t *testing.T) {
	err := ErrConfigInvalidYAML("calc.yaml", fmt.Errorf("[3:5] unexpected key"))
	if !strings.Contains(err.Message, "line 3, column 5") {
		t.Errorf("expected line/column in message, got %q", err.Message)
	}

	err = ErrConfigInvalidYAML("calc.yaml", errors.New("something else"))
	if strings.Contains(err.Message, "line") {
		t.Errorf("unexpected line info in %q", err.Message)
	}
}

func TestExtractLineColumn(t *testing.T) {
	if extractLineColumn(nil) != "" {
		t.Error("nil error should give empty string")
	}
	if got := extractLineColumn(errors.New("[12:1] mapping value")); got != "line 12, column 1" {
		t.Errorf("got %q", got)
	}
}

func TestWrapReadError(t *testing.T) {
	if err := WrapReadError("x.yaml", os.ErrNotExist); err.Type != ErrTypeNotFound || !strings.Contains(err.Message, "not found") {
		t.Errorf("unexpected: %+v", err)
	}
	if err := WrapReadError("x.yaml", os.ErrPermission); !strings.Contains(err.Message, "cannot read") {
		t.Errorf("unexpected: %+v", err)
	}
	generic := WrapReadError("x.yaml", errors.New("io"))
	if !errors.Is(generic, generic.Cause) {
		t.Error("cause should be reachable via Unwrap")
	}
}

func TestConfigError_FormatWithHint(t *testing.T) {
	err := ErrConfigPathEmpty()
	if !strings.Contains(err.FormatWithHint(), "Hint:") {
		t.Errorf("expected hint, got %q", err.FormatWithHint())
	}
	if err.KindName() != "config_invalid" {
		t.Errorf("KindName = %q", err.KindName())
	}
	noHint := &ConfigError{Message: "plain"}
	if noHint.FormatWithHint() != "plain" {
		t.Errorf("got %q", noHint.FormatWithHint())
	}
}
