package commands

import (
	"fmt"

	"github.com/samestrin/llm-calc/pkg/calculator"
	"github.com/spf13/cobra"
)

// newDemoCmd creates the demo command
func newDemoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Run a one-shot and a chained calculation",
		Args:  cobra.NoArgs,
		RunE:  runDemo,
	}
}

func runDemo(cmd *cobra.Command, args []string) error {
	calc := calculator.NewDefault()
	w := cmd.OutOrStdout()

	sum, err := calc.Calculate(calculator.Add, 2, 3)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "2 + 3 = %s\n", sum)

	result := calc.Start(5).
		Operate(calculator.Add, 3).
		Operate(calculator.Multiply, 2).
		Result()
	if err := calc.Err(); err != nil {
		return err
	}
	fmt.Fprintf(w, "Final Result: %s\n", calculator.NewNumber(result))

	return nil
}

func init() {
	rootCmd.AddCommand(newDemoCmd())
}
