package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/samestrin/llm-calc/internal/calc/batch"
	"github.com/samestrin/llm-calc/internal/calc/config"
	"github.com/samestrin/llm-calc/internal/calc/history"
	"github.com/samestrin/llm-calc/pkg/calculator"
	"github.com/samestrin/llm-calc/pkg/output"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	batchJSON        bool
	batchMin         bool
	batchHuman       bool
	batchConcurrency int
	batchStrict      bool
)

// BatchLine is the outcome of one input line
type BatchLine struct {
	Line       int                `json:"line"`
	Expression string             `json:"expression"`
	Result     *calculator.Number `json:"result,omitempty"`
	Error      string             `json:"error,omitempty"`
}

// BatchResult is the output of the batch command
type BatchResult struct {
	Summary batch.Summary `json:"summary"`
	Results []BatchLine   `json:"results"`
}

// newBatchCmd creates the batch command
func newBatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch <file|->",
		Short: "Evaluate many independent calculations concurrently",
		Long: `Evaluate one calculation per line of <file> ("-" reads stdin).

Each non-blank line not starting with # is "<op> <a> <b>". Lines run
concurrently; results print in input order and a failing line does not stop
the others.

Example input:
  # totals
  ADD 2 3
  DIVIDE 5 0
  * 1.5 4`,
		Args: cobra.ExactArgs(1),
		RunE: runBatch,
	}

	cmd.Flags().BoolVar(&batchJSON, "json", false, "Output as JSON")
	cmd.Flags().BoolVar(&batchMin, "min", false, "Minimal output")
	cmd.Flags().BoolVar(&batchHuman, "human", false, "Use thousands separators in text output")
	cmd.Flags().IntVar(&batchConcurrency, "concurrency", 0, fmt.Sprintf("Parallel calculations (default from config or %d)", config.DefaultConcurrency))
	cmd.Flags().BoolVar(&batchStrict, "strict", false, "Exit with an error when any line fails")

	return cmd
}

func runBatch(cmd *cobra.Command, args []string) error {
	var in io.Reader
	if args[0] == "-" {
		in = cmd.InOrStdin()
	} else {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open batch file: %w", err)
		}
		defer f.Close()
		in = f
	}

	jobs, err := batch.Parse(in)
	if err != nil {
		return err
	}

	sess, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer sess.Close()

	var configured int
	if sess.config != nil {
		configured = sess.config.Concurrency
	}
	concurrency := config.ResolveIntValue(batchConcurrency, configured, config.DefaultConcurrency)
	sess.logger.Debug("running batch", "jobs", len(jobs), "concurrency", concurrency)

	var progress batch.ProgressCallback
	if !batchJSON && term.IsTerminal(int(os.Stderr.Fd())) {
		stderr := cmd.ErrOrStderr()
		progress = func(completed, total int, _ batch.Result) {
			fmt.Fprintf(stderr, "\r\033[K[%d/%d]", completed, total)
			if completed == total {
				fmt.Fprintln(stderr)
			}
		}
	}

	runner := batch.NewRunner(sess.registry, concurrency, calculator.WithLogger(sess.logger))
	results := runner.Run(cmd.Context(), jobs, progress)

	out := BatchResult{Summary: batch.Summarize(results), Results: make([]BatchLine, 0, len(results))}
	entries := make([]*history.Entry, 0, len(results))
	for _, r := range results {
		line := BatchLine{Line: r.Job.Line, Expression: r.Job.String()}
		if r.Err != nil {
			line.Error = r.Err.Error()
			sess.logger.Warn("batch line failed", "line", r.Job.Line, "error", r.Err)
		} else {
			v := r.Value
			line.Result = &v
		}
		out.Results = append(out.Results, line)
		entries = append(entries, &history.Entry{
			Kind:       history.KindBatch,
			Expression: line.Expression,
			Result:     r.Value.Float(),
			Error:      line.Error,
		})
	}
	sess.record(cmd.Context(), entries...)

	formatter := output.New(batchJSON, batchMin, cmd.OutOrStdout())
	if err := formatter.Print(out, func(w io.Writer, data interface{}) {
		printBatchText(w, data.(BatchResult))
	}); err != nil {
		return err
	}

	if batchStrict && out.Summary.Failed > 0 {
		return fmt.Errorf("%d of %d calculations failed", out.Summary.Failed, out.Summary.Total)
	}
	return nil
}

func printBatchText(w io.Writer, r BatchResult) {
	for _, line := range r.Results {
		switch {
		case batchMin && line.Result != nil:
			fmt.Fprintln(w, formatValue(line.Result.Float(), batchHuman))
		case batchMin:
			fmt.Fprintf(w, "ERROR: %s\n", line.Error)
		case line.Result != nil:
			fmt.Fprintf(w, "LINE %d: %s = %s\n", line.Line, line.Expression, formatValue(line.Result.Float(), batchHuman))
		default:
			fmt.Fprintf(w, "LINE %d: %s ERROR: %s\n", line.Line, line.Expression, line.Error)
		}
	}
	if !batchMin {
		fmt.Fprintf(w, "TOTAL: %d  OK: %d  FAILED: %d\n", r.Summary.Total, r.Summary.Succeeded, r.Summary.Failed)
	}
}

func init() {
	rootCmd.AddCommand(newBatchCmd())
}
