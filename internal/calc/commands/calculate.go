package commands

import (
	"fmt"
	"io"

	"github.com/samestrin/llm-calc/internal/calc/batch"
	"github.com/samestrin/llm-calc/internal/calc/history"
	"github.com/samestrin/llm-calc/pkg/calculator"
	"github.com/samestrin/llm-calc/pkg/output"
	"github.com/spf13/cobra"
)

var (
	calcJSON  bool
	calcMin   bool
	calcHuman bool
)

// CalculateResult is the output of the calculate command
type CalculateResult struct {
	Operation  calculator.Operation `json:"operation"`
	A          float64              `json:"a"`
	B          float64              `json:"b"`
	Expression string               `json:"expression"`
	Result     calculator.Number    `json:"result"`
	Integral   bool                 `json:"integral"`
}

// newCalculateCmd creates the calculate command
func newCalculateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "calculate <op> <a> <b>",
		Aliases: []string{"calc"},
		Short:   "Apply one operation to two operands",
		Long: `Apply one registered operation to two decimal operands.

Operations are matched case-insensitively; + - * x / are accepted as
aliases for the built-ins. Whole results print without a fractional part.
Operands must be finite: nan and inf are rejected.

Flags may come before <op> or, in long form, after <b>. Negative operands
are never read as flags.

Examples:
  llm-calc calculate ADD 2 3          # RESULT: 5
  llm-calc calculate / 5 2            # RESULT: 2.5
  llm-calc calculate --json MUL -3 -2
  llm-calc calculate MUL -3 -2 --json`,
		Args: cobra.MinimumNArgs(3),
		RunE: runCalculate,
	}

	cmd.Flags().BoolVar(&calcJSON, "json", false, "Output as JSON")
	cmd.Flags().BoolVar(&calcMin, "min", false, "Minimal output - just the value")
	cmd.Flags().BoolVar(&calcHuman, "human", false, "Use thousands separators in text output")
	cmd.Flags().SetInterspersed(false)

	return cmd
}

func runCalculate(cmd *cobra.Command, args []string) error {
	args, err := parseTrailingFlags(cmd, args, 3)
	if err != nil {
		return err
	}
	if err := cobra.ExactArgs(3)(cmd, args); err != nil {
		return err
	}

	op := calculator.ParseOperation(args[0])
	a, err := batch.ParseOperand(args[1])
	if err != nil {
		return err
	}
	b, err := batch.ParseOperand(args[2])
	if err != nil {
		return err
	}

	sess, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer sess.Close()

	job := batch.Job{Operation: op, A: a, B: b}
	result, calcErr := sess.calculator().Calculate(op, a, b)
	sess.record(cmd.Context(), &history.Entry{
		Kind:       history.KindCalculate,
		Expression: job.String(),
		Result:     result.Float(),
		Error:      errorString(calcErr),
	})
	if calcErr != nil {
		return calcErr
	}

	out := CalculateResult{
		Operation:  op,
		A:          a,
		B:          b,
		Expression: job.String(),
		Result:     result,
		Integral:   result.Integral,
	}

	formatter := output.New(calcJSON, calcMin, cmd.OutOrStdout())
	return formatter.Print(out, func(w io.Writer, data interface{}) {
		r := data.(CalculateResult)
		value := formatValue(r.Result.Float(), calcHuman)
		if calcMin {
			fmt.Fprintln(w, value)
			return
		}
		fmt.Fprintf(w, "RESULT: %s\n", value)
	})
}

func init() {
	rootCmd.AddCommand(newCalculateCmd())
}
