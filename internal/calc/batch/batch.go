// Package batch evaluates many independent calculations concurrently.
package batch

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/samestrin/llm-calc/pkg/calculator"
	"golang.org/x/sync/errgroup"
)

// ErrNonFinite is the cause of an InvalidOperand error for NaN or infinite input
var ErrNonFinite = errors.New("operand must be finite")

// Job is one one-shot calculation
type Job struct {
	Line      int                  `json:"line"`
	Operation calculator.Operation `json:"operation"`
	A         float64              `json:"a"`
	B         float64              `json:"b"`
}

// String renders the job as "a op b"
func (j Job) String() string {
	return fmt.Sprintf("%s %s %s",
		strconv.FormatFloat(j.A, 'g', -1, 64), j.Operation.Symbol(), strconv.FormatFloat(j.B, 'g', -1, 64))
}

// Result contains the outcome of a single job.
type Result struct {
	Index int               `json:"index"`
	Job   Job               `json:"job"`
	Value calculator.Number `json:"value"`
	Err   error             `json:"-"`
}

// ProgressCallback is called after each job completes.
type ProgressCallback func(completed, total int, result Result)

// Runner evaluates jobs against a shared read-only registry
type Runner struct {
	Registry    calculator.Registry
	Concurrency int
	Options     []calculator.Option
}

// NewRunner creates a runner with the given concurrency limit.
func NewRunner(registry calculator.Registry, concurrency int, opts ...calculator.Option) *Runner {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Runner{
		Registry:    registry,
		Concurrency: concurrency,
		Options:     opts,
	}
}

// Run evaluates jobs concurrently. Results are returned in input order and
// a failing job never stops the others. Cancelling ctx marks unstarted jobs
// with ctx.Err().
func (r *Runner) Run(ctx context.Context, jobs []Job, progress ProgressCallback) []Result {
	results := make([]Result, len(jobs))
	completed := make(chan Result)

	done := make(chan struct{})
	go func() {
		defer close(done)
		n := 0
		for res := range completed {
			n++
			if progress != nil {
				progress(n, len(jobs), res)
			}
		}
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.Concurrency)

	for i, job := range jobs {
		g.Go(func() error {
			res := Result{Index: i, Job: job}
			if err := gctx.Err(); err != nil {
				res.Err = err
			} else {
				// Each goroutine owns its Calculator; only the registry is shared
				calc := calculator.New(r.Registry, r.Options...)
				res.Value, res.Err = calc.Calculate(job.Operation, job.A, job.B)
			}
			results[i] = res
			completed <- res
			return nil
		})
	}

	g.Wait()
	close(completed)
	<-done

	return results
}

// Parse reads jobs from r. Each non-blank line not starting with # must be
// "op a b"; line numbers are 1-based.
func Parse(r io.Reader) ([]Job, error) {
	var jobs []Job
	scanner := bufio.NewScanner(r)
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) != 3 {
			return nil, fmt.Errorf("line %d: expected \"<op> <a> <b>\", got %q", lineNo, line)
		}

		a, err := ParseOperand(fields[1])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		b, err := ParseOperand(fields[2])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}

		jobs = append(jobs, Job{
			Line:      lineNo,
			Operation: calculator.ParseOperation(fields[0]),
			A:         a,
			B:         b,
		})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read jobs: %w", err)
	}
	return jobs, nil
}

// ParseOperand parses a finite decimal operand, returning a calculator
// InvalidOperand error on failure. NaN and infinities are rejected.
func ParseOperand(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, calculator.InvalidOperand(s, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, calculator.InvalidOperand(s, ErrNonFinite)
	}
	return v, nil
}

// Summary counts successes and failures
type Summary struct {
	Total     int `json:"total"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// Summarize counts the results
func Summarize(results []Result) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		if r.Err != nil {
			s.Failed++
		} else {
			s.Succeeded++
		}
	}
	return s
}
