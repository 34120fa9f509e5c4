package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/samestrin/llm-calc/internal/calc/config"
	"github.com/spf13/cobra"
)

// withGlobals points the global --config and --history flags at the given
// paths for the duration of the test. The global output flags are reset too.
func withGlobals(t *testing.T, configPath, historyPath string) {
	t.Helper()
	oldConfig, oldHistory := globalConfigPath, globalHistoryPath
	oldJSON, oldMin := GlobalJSONOutput, GlobalMinOutput
	globalConfigPath, globalHistoryPath = configPath, historyPath
	GlobalJSONOutput, GlobalMinOutput = false, false
	t.Setenv(config.EnvConfigPath, "")
	t.Cleanup(func() {
		globalConfigPath, globalHistoryPath = oldConfig, oldHistory
		GlobalJSONOutput, GlobalMinOutput = oldJSON, oldMin
	})
}

// execute runs cmd with args and returns stdout, stderr and the error.
func execute(cmd *cobra.Command, args ...string) (string, string, error) {
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	// A nil slice would make cobra fall back to os.Args
	if args == nil {
		args = []string{}
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// writeFile writes content to name inside a temp dir and returns the path.
func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

const testConfig = `
calc:
  concurrency: 2
  operations:
    - name: POW
      formula: "pow(a, b)"
      description: a raised to b
    - name: MOD
      formula: "mod(a, b)"
`
