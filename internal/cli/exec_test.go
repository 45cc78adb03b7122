package cli

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/emersonmx/stm/internal/db"
	"github.com/emersonmx/stm/internal/runner"
	"github.com/emersonmx/stm/internal/testutil"
)

func TestExecRequiresCommand(t *testing.T) {
	h := testutil.NewHarness(t)

	_, _, err := testutil.ExecuteCommand(newTestRoot(h), "exec")
	if err == nil {
		t.Fatal("expected error when command is missing")
	}
	if !strings.Contains(err.Error(), "requires at least 1 arg") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestExecIgnoresExtraArguments(t *testing.T) {
	h := testutil.NewHarness(t)
	marker := filepath.Join(h.Dir, "marker")
	extra := filepath.Join(h.Dir, "extra")

	// Only the first two arguments take part; a third must not reach the
	// subprocess (touch would create it).
	_, _, err := testutil.ExecuteCommand(newTestRoot(h), "exec", "touch", marker, extra)
	if err != nil {
		t.Fatalf("exec: %v", err)
	}
	if _, err := os.Stat(marker); err != nil {
		t.Errorf("marker not created: %v", err)
	}
	if _, err := os.Stat(extra); !os.IsNotExist(err) {
		t.Error("third argument leaked into the subprocess")
	}
}

func TestExecSingleArgumentIsNoOp(t *testing.T) {
	h := testutil.NewHarness(t)
	marker := filepath.Join(h.Dir, "marker")

	// A lone command, even one with visible side effects, must not run.
	_, _, err := testutil.ExecuteCommand(newTestRoot(h), "exec", "touch "+marker)
	if err != nil {
		t.Fatalf("exec: %v", err)
	}
	if _, err := os.Stat(marker); !os.IsNotExist(err) {
		t.Error("subprocess ran despite missing parameter")
	}
	if _, err := os.Stat(h.DBPath); !os.IsNotExist(err) {
		t.Error("no-op should not touch the history database")
	}
}

func TestExecRunsAndRecords(t *testing.T) {
	h := testutil.NewHarness(t)
	marker := filepath.Join(h.Dir, "marker")

	_, _, err := testutil.ExecuteCommand(newTestRoot(h), "exec", "touch", marker)
	if err != nil {
		t.Fatalf("exec: %v", err)
	}
	if _, err := os.Stat(marker); err != nil {
		t.Errorf("marker not created: %v", err)
	}

	store, err := db.Open(h.DBPath)
	if err != nil {
		t.Fatalf("opening history: %v", err)
	}
	defer store.Close()

	count, err := store.CountRuns()
	if err != nil {
		t.Fatalf("CountRuns: %v", err)
	}
	if count != 1 {
		t.Errorf("recorded %d runs, want 1", count)
	}
}

func TestExecPropagatesExitStatus(t *testing.T) {
	h := testutil.NewHarness(t)

	_, _, err := testutil.ExecuteCommand(newTestRoot(h), "exec", "false", "ignored")
	var exitErr *runner.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("error = %v, want *runner.ExitError", err)
	}
	if exitErr.Code != 1 {
		t.Errorf("exit code = %d, want 1", exitErr.Code)
	}
}

func TestExecParameterIsOneArgument(t *testing.T) {
	h := testutil.NewHarness(t)

	_, _, err := testutil.ExecuteCommand(newTestRoot(h), "exec", "sh -c", "exit 7")
	var exitErr *runner.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("error = %v, want *runner.ExitError", err)
	}
	if exitErr.Code != 7 {
		t.Errorf("exit code = %d, want 7", exitErr.Code)
	}
}

func TestExecIdempotentSuccess(t *testing.T) {
	h := testutil.NewHarness(t)

	for i := 0; i < 3; i++ {
		_, _, err := testutil.ExecuteCommand(newTestRoot(h), "exec", "true", "x")
		if err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
	}
}
