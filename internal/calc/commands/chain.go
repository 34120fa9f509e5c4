package commands

import (
	"fmt"
	"io"

	"github.com/samestrin/llm-calc/internal/calc/batch"
	"github.com/samestrin/llm-calc/internal/calc/chain"
	"github.com/samestrin/llm-calc/internal/calc/history"
	"github.com/samestrin/llm-calc/pkg/output"
	"github.com/spf13/cobra"
)

var (
	chainJSON      bool
	chainMin       bool
	chainHuman     bool
	chainShowSteps bool
	chainStepsJSON string
)

// newChainCmd creates the chain command
func newChainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chain <start> [<op> <value>]...",
		Short: "Apply operations in sequence to a running accumulator",
		Long: `Start an accumulator at <start> and apply each operation with the
accumulator as the left operand. A failing step stops the chain and leaves
the accumulator at its last good value.

Steps are given as <op> <value> pairs or as JSON with --steps-json:
  llm-calc chain 5 ADD 3 MULTIPLY 2                       # RESULT: 16
  llm-calc chain --steps-json '[{"op":"ADD","value":3}]' 5
  llm-calc chain --show-steps -- -5.5 + 3.2 x -2 / 2 - 1.1

Flags may come before <start> or, in long form, after the last step. A
negative <start> must follow "--" so it is not read as a flag.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runChain,
	}

	cmd.Flags().BoolVar(&chainJSON, "json", false, "Output as JSON")
	cmd.Flags().BoolVar(&chainMin, "min", false, "Minimal output - just the value")
	cmd.Flags().BoolVar(&chainHuman, "human", false, "Use thousands separators in text output")
	cmd.Flags().BoolVar(&chainShowSteps, "show-steps", false, "Print the accumulator after every step")
	cmd.Flags().StringVar(&chainStepsJSON, "steps-json", "", `Steps as a JSON array: [{"op":"ADD","value":3},...]`)
	cmd.Flags().SetInterspersed(false)

	return cmd
}

func runChain(cmd *cobra.Command, args []string) error {
	args, err := parseTrailingFlags(cmd, args, 1)
	if err != nil {
		return err
	}

	start, err := batch.ParseOperand(args[0])
	if err != nil {
		return err
	}

	var steps []chain.Step
	if chainStepsJSON != "" {
		if len(args) > 1 {
			return fmt.Errorf("--steps-json cannot be combined with positional steps")
		}
		steps, err = chain.ParseJSON(chainStepsJSON)
	} else {
		steps, err = chain.ParsePairs(args[1:])
	}
	if err != nil {
		return err
	}

	sess, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer sess.Close()

	trace, runErr := chain.Run(sess.calculator(), start, steps)
	sess.record(cmd.Context(), &history.Entry{
		Kind:       history.KindChain,
		Expression: trace.Expression(),
		Result:     trace.Result,
		Error:      errorString(runErr),
	})
	if runErr != nil {
		return runErr
	}

	formatter := output.New(chainJSON, chainMin, cmd.OutOrStdout())
	return formatter.Print(trace, func(w io.Writer, data interface{}) {
		t := data.(*chain.Trace)
		if chainMin {
			fmt.Fprintln(w, formatValue(t.Result, chainHuman))
			return
		}
		if chainShowSteps {
			fmt.Fprintf(w, "START: %s\n", formatValue(t.Start, chainHuman))
			for i, s := range t.Steps {
				fmt.Fprintf(w, "STEP %d: %s %s -> %s\n",
					i+1, s.Operation, formatValue(s.Value, chainHuman), formatValue(s.Accumulator, chainHuman))
			}
		}
		fmt.Fprintf(w, "RESULT: %s\n", formatValue(t.Result, chainHuman))
	})
}

func init() {
	rootCmd.AddCommand(newChainCmd())
}
