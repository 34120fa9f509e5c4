package commands

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/samestrin/llm-calc/internal/calc/history"
	"github.com/samestrin/llm-calc/pkg/output"
	"github.com/spf13/cobra"
)

var (
	historyJSON       bool
	historyMin        bool
	historyLimit      int
	historyKind       string
	historyFailedOnly bool
)

// HistoryListResult is the output of history list
type HistoryListResult struct {
	Count   int             `json:"count"`
	Entries []history.Entry `json:"entries"`
}

// HistoryClearResult is the output of history clear
type HistoryClearResult struct {
	Removed int64 `json:"removed"`
}

// newHistoryCmd creates the history command and its subcommands
func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect the calculation tape",
		Long: `Inspect the calculation tape named by --history or the config "history" key.

The tape backend is chosen by extension: .db/.sqlite/.sqlite3 for SQLite,
.yaml/.yml for a YAML file.`,
	}

	cmd.PersistentFlags().BoolVar(&historyJSON, "json", false, "Output as JSON")
	cmd.PersistentFlags().BoolVar(&historyMin, "min", false, "Minimal output")

	cmd.AddCommand(newHistoryListCmd(), newHistoryClearCmd(), newHistoryStatsCmd())
	return cmd
}

func newHistoryListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded calculations, newest first",
		Args:  cobra.NoArgs,
		RunE:  runHistoryList,
	}
	cmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum entries to show (0 = all)")
	cmd.Flags().StringVar(&historyKind, "kind", "", "Filter by kind (calculate, chain, batch)")
	cmd.Flags().BoolVar(&historyFailedOnly, "failed", false, "Only show failed calculations")
	return cmd
}

func newHistoryClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all recorded calculations",
		Args:  cobra.NoArgs,
		RunE:  runHistoryClear,
	}
}

func newHistoryStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show tape statistics",
		Args:  cobra.NoArgs,
		RunE:  runHistoryStats,
	}
}

// openTape opens the session and requires a configured tape.
func openTape(ctx context.Context) (*session, error) {
	sess, err := openSession(ctx)
	if err != nil {
		return nil, err
	}
	if sess.store == nil {
		sess.Close()
		return nil, fmt.Errorf("no history tape configured (use --history <path> or set calc.history in the config file)")
	}
	return sess, nil
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	switch historyKind {
	case "", history.KindCalculate, history.KindChain, history.KindBatch:
	default:
		return fmt.Errorf("invalid --kind %q: must be calculate, chain or batch", historyKind)
	}

	sess, err := openTape(cmd.Context())
	if err != nil {
		return err
	}
	defer sess.Close()

	entries, err := sess.store.List(cmd.Context(), history.ListFilter{
		Kind:       historyKind,
		FailedOnly: historyFailedOnly,
		Limit:      historyLimit,
	})
	if err != nil {
		return fmt.Errorf("failed to list history: %w", err)
	}

	result := HistoryListResult{Count: len(entries), Entries: entries}
	formatter := output.New(historyJSON, historyMin, cmd.OutOrStdout())
	return formatter.Print(result, func(w io.Writer, data interface{}) {
		r := data.(HistoryListResult)
		if r.Count == 0 {
			fmt.Fprintln(w, "No calculations recorded.")
			return
		}

		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		if !historyMin {
			fmt.Fprintln(tw, "ID\tWHEN\tKIND\tEXPRESSION\tRESULT")
		}
		for _, e := range r.Entries {
			outcome := formatValue(e.Result, false)
			if e.Failed() {
				outcome = "ERROR: " + e.Error
			}
			if historyMin {
				fmt.Fprintf(tw, "%d\t%s\t%s\n", e.ID, e.Expression, outcome)
				continue
			}
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", e.ID, humanize.Time(e.CreatedAt), e.Kind, e.Expression, outcome)
		}
		tw.Flush()
	})
}

func runHistoryClear(cmd *cobra.Command, args []string) error {
	sess, err := openTape(cmd.Context())
	if err != nil {
		return err
	}
	defer sess.Close()

	removed, err := sess.store.Clear(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}

	formatter := output.New(historyJSON, historyMin, cmd.OutOrStdout())
	return formatter.Print(HistoryClearResult{Removed: removed}, func(w io.Writer, data interface{}) {
		fmt.Fprintf(w, "Cleared %s entries.\n", humanize.Comma(data.(HistoryClearResult).Removed))
	})
}

func runHistoryStats(cmd *cobra.Command, args []string) error {
	sess, err := openTape(cmd.Context())
	if err != nil {
		return err
	}
	defer sess.Close()

	stats, err := sess.store.Stats(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to read history stats: %w", err)
	}

	formatter := output.New(historyJSON, historyMin, cmd.OutOrStdout())
	return formatter.Print(stats, func(w io.Writer, data interface{}) {
		s := data.(*history.Stats)
		fmt.Fprintf(w, "BACKEND: %s\n", s.Backend)
		fmt.Fprintf(w, "ENTRIES: %s\n", humanize.Comma(int64(s.Entries)))
		fmt.Fprintf(w, "FAILURES: %s\n", humanize.Comma(int64(s.Failures)))
		if len(s.ByKind) > 0 {
			kinds := make([]string, 0, len(s.ByKind))
			for k := range s.ByKind {
				kinds = append(kinds, k)
			}
			sort.Strings(kinds)
			parts := make([]string, 0, len(kinds))
			for _, k := range kinds {
				parts = append(parts, fmt.Sprintf("%s=%d", k, s.ByKind[k]))
			}
			fmt.Fprintf(w, "BY KIND: %s\n", strings.Join(parts, " "))
		}
		if s.Oldest != nil {
			fmt.Fprintf(w, "OLDEST: %s\n", humanize.Time(*s.Oldest))
		}
		if s.Newest != nil {
			fmt.Fprintf(w, "NEWEST: %s\n", humanize.Time(*s.Newest))
		}
	})
}

func init() {
	rootCmd.AddCommand(newHistoryCmd())
}
