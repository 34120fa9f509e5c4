// Package testhelpers provides golden file assertions for command output.
package testhelpers

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// GoldenDir is relative to the package under test.
const GoldenDir = "testdata/golden"

// Update returns true if UPDATE_GOLDEN environment variable is set.
// Use: UPDATE_GOLDEN=1 go test ./... to update golden files.
var Update = os.Getenv("UPDATE_GOLDEN") == "1"

// AssertGolden compares actual output to testdata/golden/<name>.golden,
// rewriting the file instead when Update is set.
func AssertGolden(t *testing.T, name string, actual string) {
	t.Helper()

	path := filepath.Join(GoldenDir, name+".golden")
	actual = strings.ReplaceAll(actual, "\r\n", "\n")

	if Update {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("failed to create golden dir: %v", err)
		}
		if err := os.WriteFile(path, []byte(actual), 0644); err != nil {
			t.Fatalf("failed to update golden file %s: %v", path, err)
		}
		t.Logf("Updated golden file: %s", path)
		return
	}

	expected, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			t.Fatalf("golden file %s does not exist. Run with UPDATE_GOLDEN=1 to create it", path)
		}
		t.Fatalf("failed to read golden file %s: %v", path, err)
	}

	if string(expected) != actual {
		t.Errorf("output mismatch for %s\n%s", path, LineDiff(string(expected), actual))
	}
}

// LineDiff lists the lines that differ between expected and actual.
func LineDiff(expected, actual string) string {
	expectedLines := strings.Split(expected, "\n")
	actualLines := strings.Split(actual, "\n")

	n := max(len(expectedLines), len(actualLines))
	var b strings.Builder
	for i := 0; i < n; i++ {
		var exp, act string
		if i < len(expectedLines) {
			exp = expectedLines[i]
		}
		if i < len(actualLines) {
			act = actualLines[i]
		}
		if exp != act {
			b.WriteString("- " + exp + "\n+ " + act + "\n")
		}
	}
	return b.String()
}
