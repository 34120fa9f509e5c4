// Package commands implements CLI commands for llm-calc.
package commands

import (
	"log/slog"

	"github.com/spf13/cobra"
)

// Version is set at build time using ldflags
var Version = "1.0.0"

// Global flags shared by all commands
var (
	globalConfigPath  string
	globalHistoryPath string
	globalVerbose     bool
)

// Global output flags accessible to all commands
var (
	GlobalJSONOutput bool
	GlobalMinOutput  bool
)

var rootCmd = &cobra.Command{
	Use:   "llm-calc",
	Short: "Four-function calculator with chaining, batches and a calculation tape",
	Long: `llm-calc evaluates ADD, SUBTRACT, MULTIPLY and DIVIDE on decimal operands,
either one-shot or chained against a running accumulator.

Extra operations can be declared as expr formulas over a and b in a YAML or
TOML config file (--config or LLM_CALC_CONFIG). Calculations are recorded to
a history tape when --history names a .db/.sqlite or .yaml file.

Flag parsing stops at the first operand so negative operands are not read as
flags. Long flags may still follow the operands; shorthand flags may not, and
a negative chain start needs "--":
  llm-calc calculate --json SUBTRACT -3 2
  llm-calc calculate SUBTRACT -3 2 --json
  llm-calc chain -- -5.5 ADD 3.2`,
	Version:       Version,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		syncOutputFlags(cmd)
		slog.SetDefault(newLogger(cmd.ErrOrStderr(), globalVerbose))
	},
}

// syncOutputFlags copies local --json and --min flags to the global vars used for error handling
func syncOutputFlags(cmd *cobra.Command) {
	if f := cmd.Flag("json"); f != nil && f.Changed {
		GlobalJSONOutput = true
	}
	if f := cmd.Flag("min"); f != nil && f.Changed {
		GlobalMinOutput = true
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&globalConfigPath, "config", "", "Config file (.yaml, .yml, .toml); defaults to $LLM_CALC_CONFIG")
	rootCmd.PersistentFlags().StringVar(&globalHistoryPath, "history", "", "History tape (.db, .sqlite, .sqlite3, .yaml, .yml); overrides config")
	rootCmd.PersistentFlags().BoolVarP(&globalVerbose, "verbose", "v", false, "Enable debug logging on stderr")
}
