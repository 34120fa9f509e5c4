package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/samestrin/llm-calc/internal/calc/config"
	"github.com/samestrin/llm-calc/internal/calc/history"
	"github.com/samestrin/llm-calc/pkg/calculator"
	"github.com/spf13/cobra"
)

// session holds the configuration, registry and optional history tape
// resolved from the global flags.
type session struct {
	config   *config.CalcConfig
	registry calculator.Registry
	store    history.Store
	logger   *slog.Logger
}

// parseTrailingFlags parses long flags given after the operands. Commands that
// take negative operands stop flag parsing at the first positional argument,
// so "--json" after the operands arrives in args. Everything from the first
// argument at or after from that starts with "--" is parsed as flags and the
// positional arguments before it are returned. Shorthand flags must still
// precede the operands.
func parseTrailingFlags(cmd *cobra.Command, args []string, from int) ([]string, error) {
	for i := from; i < len(args); i++ {
		if len(args[i]) <= 2 || !strings.HasPrefix(args[i], "--") {
			continue
		}

		flags := cmd.Flags()
		if err := flags.Parse(args[i:]); err != nil {
			return nil, err
		}
		if rest := flags.Args(); len(rest) > 0 {
			return nil, fmt.Errorf("unexpected argument %q after flags", rest[0])
		}
		syncOutputFlags(cmd)
		return args[:i], nil
	}
	return args, nil
}

// newLogger returns a text logger at debug level when verbose, warn otherwise.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// loadConfig resolves the config path (flag > env) and loads it.
// Returns nil without error when no config is named.
func loadConfig() (*config.CalcConfig, error) {
	path := config.ResolvePath(globalConfigPath)
	if path == "" {
		return nil, nil
	}
	return config.LoadConfig(path)
}

// historyPath returns the effective tape path: --history flag > config.
func historyPath(cfg *config.CalcConfig) string {
	var configured string
	if cfg != nil {
		configured = cfg.History
	}
	return config.ResolveValue(globalHistoryPath, configured)
}

// openSession loads config and, when a tape is configured, opens it.
// The caller is responsible for calling Close().
func openSession(ctx context.Context) (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	registry, err := cfg.Registry()
	if err != nil {
		return nil, err
	}

	s := &session{config: cfg, registry: registry, logger: slog.Default()}

	if path := historyPath(cfg); path != "" {
		store, err := history.NewStore(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("failed to open history %s: %w", path, err)
		}
		s.store = store
		s.logger.Debug("history enabled", "path", path)
	}

	return s, nil
}

// calculator returns a fresh Calculator over the session registry.
func (s *session) calculator() *calculator.Calculator {
	return calculator.New(s.registry, calculator.WithLogger(s.logger))
}

// record appends entries to the tape, if any. Failures are logged, never returned.
func (s *session) record(ctx context.Context, entries ...*history.Entry) {
	if s.store == nil {
		return
	}
	for _, e := range entries {
		if err := s.store.Record(ctx, e); err != nil {
			s.logger.Warn("failed to record history", "expression", e.Expression, "error", err)
			return
		}
	}
}

func (s *session) Close() error {
	if s.store == nil {
		return nil
	}
	return s.store.Close()
}

// errorString returns err's message, or "" for nil.
func errorString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// formatValue renders v for text output. With human set, large magnitudes get
// thousands separators.
func formatValue(v float64, human bool) string {
	n := calculator.NewNumber(v)
	if !human {
		return n.String()
	}
	if n.Integral && math.Abs(v) < 1e15 {
		return humanize.Comma(n.Int())
	}
	return humanize.Commaf(v)
}
