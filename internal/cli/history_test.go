package cli

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/emersonmx/stm/internal/db"
	"github.com/emersonmx/stm/internal/testutil"
)

func seedHistory(t *testing.T, path string, commands ...string) {
	t.Helper()

	store, err := db.Open(path)
	if err != nil {
		t.Fatalf("opening history: %v", err)
	}
	defer store.Close()

	base := time.Now().Add(-time.Hour)
	for i, command := range commands {
		run := &db.Run{
			Command:   command,
			Argv:      strings.Fields(command),
			ExitCode:  0,
			StartedAt: base.Add(time.Duration(i) * time.Minute),
			Duration:  time.Second,
		}
		if err := store.RecordRun(run); err != nil {
			t.Fatalf("RecordRun: %v", err)
		}
	}
}

func TestHistoryListsRunsNewestFirst(t *testing.T) {
	h := testutil.NewHarness(t)
	seedHistory(t, h.DBPath, "yay -Syu", "cargo install cargo-watch")

	stdout, _, err := testutil.ExecuteCommand(newTestRoot(h), "history", "--output", "json")
	if err != nil {
		t.Fatalf("history: %v", err)
	}

	var runs []*db.Run
	if err := json.Unmarshal([]byte(stdout), &runs); err != nil {
		t.Fatalf("invalid json: %v\n%s", err, stdout)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}
	if runs[0].Command != "cargo install cargo-watch" {
		t.Errorf("first run = %q, want the newest", runs[0].Command)
	}
}

func TestHistorySearch(t *testing.T) {
	h := testutil.NewHarness(t)
	seedHistory(t, h.DBPath, "yay -Syu", "cargo install cargo-watch", "misc.sh update")

	stdout, _, err := testutil.ExecuteCommand(newTestRoot(h), "history", "--search", "cargo", "--output", "json")
	if err != nil {
		t.Fatalf("history: %v", err)
	}

	var runs []*db.Run
	if err := json.Unmarshal([]byte(stdout), &runs); err != nil {
		t.Fatalf("invalid json: %v\n%s", err, stdout)
	}
	if len(runs) != 1 {
		t.Fatalf("got %d runs, want 1", len(runs))
	}
	if runs[0].Command != "cargo install cargo-watch" {
		t.Errorf("match = %q", runs[0].Command)
	}
}

func TestHistoryLimit(t *testing.T) {
	h := testutil.NewHarness(t)
	seedHistory(t, h.DBPath, "one", "two", "three")

	stdout, _, err := testutil.ExecuteCommand(newTestRoot(h), "history", "--limit", "2", "--output", "json")
	if err != nil {
		t.Fatalf("history: %v", err)
	}

	var runs []*db.Run
	if err := json.Unmarshal([]byte(stdout), &runs); err != nil {
		t.Fatalf("invalid json: %v\n%s", err, stdout)
	}
	if len(runs) != 2 {
		t.Errorf("got %d runs, want 2", len(runs))
	}
}

func TestHistoryTextOutput(t *testing.T) {
	h := testutil.NewHarness(t)
	seedHistory(t, h.DBPath, "misc.sh update")

	stdout, _, err := testutil.ExecuteCommand(newTestRoot(h), "history")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(stdout, "misc.sh update") {
		t.Errorf("stdout missing command:\n%s", stdout)
	}
	if !strings.Contains(stdout, "exit=0") {
		t.Errorf("stdout missing exit status:\n%s", stdout)
	}
}

func TestHistoryEmptyDatabase(t *testing.T) {
	h := testutil.NewHarness(t)

	stdout, _, err := testutil.ExecuteCommand(newTestRoot(h), "history")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if strings.TrimSpace(stdout) != "" {
		t.Errorf("expected empty output, got %q", stdout)
	}
}
