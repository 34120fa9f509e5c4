package commands

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/samestrin/llm-calc/internal/calc/history"
)

func TestHistoryCommand_NonFiniteOperandsNotRecorded(t *testing.T) {
	tape := filepath.Join(t.TempDir(), "history.db")
	withGlobals(t, "", tape)

	if _, _, err := execute(newCalculateCmd(), "ADD", "2", "3"); err != nil {
		t.Fatalf("calculate failed: %v", err)
	}
	for _, args := range [][]string{{"MULTIPLY", "inf", "0"}, {"ADD", "nan", "1"}} {
		out, stderr, err := execute(newCalculateCmd(), args...)
		if err == nil {
			t.Fatalf("%v: expected invalid operand error, got %q", args, out)
		}
		if strings.Contains(stderr, "failed to record history") {
			t.Errorf("%v: tape write should not be attempted: %s", args, stderr)
		}
	}

	store, err := history.NewStore(context.Background(), tape)
	if err != nil {
		t.Fatalf("failed to open tape: %v", err)
	}
	defer store.Close()

	entries, err := store.List(context.Background(), history.ListFilter{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 1 || entries[0].Result != 5 {
		t.Errorf("expected only the finite calculation on the tape, got %+v", entries)
	}
}

func TestHistoryCommand_RecordAndList(t *testing.T) {
	for _, ext := range []string{".db", ".yaml"} {
		t.Run(ext, func(t *testing.T) {
			tape := filepath.Join(t.TempDir(), "history"+ext)
			withGlobals(t, "", tape)

			if _, _, err := execute(newCalculateCmd(), "ADD", "2", "3"); err != nil {
				t.Fatalf("calculate failed: %v", err)
			}
			if _, _, err := execute(newCalculateCmd(), "DIVIDE", "1", "0"); err == nil {
				t.Fatal("expected division error")
			}
			if _, _, err := execute(newChainCmd(), "5", "ADD", "3", "MULTIPLY", "2"); err != nil {
				t.Fatalf("chain failed: %v", err)
			}

			out, _, err := execute(newHistoryCmd(), "list", "--json")
			if err != nil {
				t.Fatalf("history list failed: %v", err)
			}

			var result struct {
				Count   int `json:"count"`
				Entries []struct {
					Kind       string  `json:"kind"`
					Expression string  `json:"expression"`
					Result     float64 `json:"result"`
					Error      string  `json:"error"`
				} `json:"entries"`
			}
			if err := json.Unmarshal([]byte(out), &result); err != nil {
				t.Fatalf("invalid JSON %q: %v", out, err)
			}
			if result.Count != 3 {
				t.Fatalf("expected 3 entries, got %d", result.Count)
			}

			// Newest first
			if result.Entries[0].Kind != "chain" || result.Entries[0].Result != 16 {
				t.Errorf("unexpected newest entry: %+v", result.Entries[0])
			}
			if result.Entries[0].Expression != "5 ADD 3 MULTIPLY 2" {
				t.Errorf("unexpected chain expression: %q", result.Entries[0].Expression)
			}
			if result.Entries[1].Error == "" {
				t.Errorf("division entry should record the error: %+v", result.Entries[1])
			}
			if result.Entries[2].Expression != "2 + 3" || result.Entries[2].Result != 5 {
				t.Errorf("unexpected oldest entry: %+v", result.Entries[2])
			}

			failed, _, err := execute(newHistoryCmd(), "list", "--failed", "--json")
			if err != nil {
				t.Fatalf("history list --failed failed: %v", err)
			}
			if !strings.Contains(failed, `"count": 1`) {
				t.Errorf("expected one failed entry, got %s", failed)
			}

			text, _, err := execute(newHistoryCmd(), "list")
			if err != nil {
				t.Fatalf("history list failed: %v", err)
			}
			if !strings.Contains(text, "ago") && !strings.Contains(text, "now") {
				t.Errorf("text output should show relative times, got:\n%s", text)
			}
		})
	}
}

func TestHistoryCommand_StatsAndClear(t *testing.T) {
	tape := filepath.Join(t.TempDir(), "history.sqlite")
	withGlobals(t, "", tape)

	path := writeFile(t, "jobs.txt", "ADD 1 1\nDIVIDE 1 0\nMULTIPLY 2 2\n")
	if _, _, err := execute(newBatchCmd(), path); err != nil {
		t.Fatalf("batch failed: %v", err)
	}

	out, _, err := execute(newHistoryCmd(), "stats")
	if err != nil {
		t.Fatalf("history stats failed: %v", err)
	}
	for _, want := range []string{"BACKEND: sqlite", "ENTRIES: 3", "FAILURES: 1", "BY KIND: batch=3"} {
		if !strings.Contains(out, want) {
			t.Errorf("stats should contain %q, got:\n%s", want, out)
		}
	}

	out, _, err = execute(newHistoryCmd(), "clear")
	if err != nil {
		t.Fatalf("history clear failed: %v", err)
	}
	if out != "Cleared 3 entries.\n" {
		t.Errorf("clear output = %q", out)
	}

	out, _, err = execute(newHistoryCmd(), "list")
	if err != nil {
		t.Fatalf("history list failed: %v", err)
	}
	if out != "No calculations recorded.\n" {
		t.Errorf("list after clear = %q", out)
	}
}

func TestHistoryCommand_StatsTimeRange(t *testing.T) {
	for _, ext := range []string{".db", ".yaml"} {
		t.Run(ext, func(t *testing.T) {
			withGlobals(t, "", filepath.Join(t.TempDir(), "history"+ext))

			out, _, err := execute(newHistoryCmd(), "stats", "--json")
			if err != nil {
				t.Fatalf("history stats failed: %v", err)
			}
			if strings.Contains(out, "oldest") || strings.Contains(out, "0001-01-01") {
				t.Errorf("empty tape should omit the time range, got:\n%s", out)
			}

			if _, _, err := execute(newCalculateCmd(), "ADD", "1", "2"); err != nil {
				t.Fatalf("calculate failed: %v", err)
			}

			out, _, err = execute(newHistoryCmd(), "stats", "--json")
			if err != nil {
				t.Fatalf("history stats failed: %v", err)
			}
			var stats struct {
				Oldest *string `json:"oldest"`
				Newest *string `json:"newest"`
			}
			if err := json.Unmarshal([]byte(out), &stats); err != nil {
				t.Fatalf("invalid JSON %q: %v", out, err)
			}
			if stats.Oldest == nil || stats.Newest == nil {
				t.Errorf("time range missing after a calculation:\n%s", out)
			}

			out, _, err = execute(newHistoryCmd(), "stats")
			if err != nil {
				t.Fatalf("history stats failed: %v", err)
			}
			if !strings.Contains(out, "OLDEST:") || !strings.Contains(out, "NEWEST:") {
				t.Errorf("text stats should show the time range, got:\n%s", out)
			}
		})
	}
}

func TestHistoryCommand_NotConfigured(t *testing.T) {
	withGlobals(t, "", "")

	_, _, err := execute(newHistoryCmd(), "list")
	if err == nil || !strings.Contains(err.Error(), "no history tape configured") {
		t.Errorf("expected not-configured error, got %v", err)
	}
}

func TestHistoryCommand_FromConfig(t *testing.T) {
	tape := filepath.Join(t.TempDir(), "tape.yaml")
	cfg := writeFile(t, "config.yaml", "calc:\n  history: "+tape+"\n")
	withGlobals(t, cfg, "")

	if _, _, err := execute(newCalculateCmd(), "SUBTRACT", "10", "4"); err != nil {
		t.Fatalf("calculate failed: %v", err)
	}

	out, _, err := execute(newHistoryCmd(), "list", "--min")
	if err != nil {
		t.Fatalf("history list failed: %v", err)
	}
	if !strings.Contains(out, "10 - 4") || !strings.Contains(out, "6") {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestHistoryCommand_InvalidKind(t *testing.T) {
	withGlobals(t, "", filepath.Join(t.TempDir(), "h.db"))

	if _, _, err := execute(newHistoryCmd(), "list", "--kind", "bogus"); err == nil {
		t.Error("invalid kind should fail")
	}
}
