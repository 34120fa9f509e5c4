package commands

import (
	"testing"

	"github.com/samestrin/llm-calc/internal/calc/testhelpers"
)

func TestDemoCommand(t *testing.T) {
	out, _, err := execute(newDemoCmd())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testhelpers.AssertGolden(t, "demo", out)
}
