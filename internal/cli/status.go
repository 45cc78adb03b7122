package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/emersonmx/stm/internal/config"
)

var (
	flagStatusWatch        bool
	flagStatusPollInterval time.Duration
)

func init() {
	statusCmd.Flags().BoolVar(&flagStatusWatch, "watch", false, "stream status changes as NDJSON until interrupted")
	statusCmd.Flags().DurationVar(&flagStatusPollInterval, "poll-interval", 2*time.Second, "re-check interval when no filesystem event arrives")

	rootCmd.AddCommand(statusCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which tools are installed",
	Long: `Report for every configured tool whether it is installed.

With --watch, status changes are streamed as newline-delimited JSON events
until interrupted. Filesystem notifications on the tools' paths trigger
re-checks, with periodic polling as a fallback (binaries found through PATH
have no single location to watch).

Event types:
  tool_status    - Initial status of a tool
  tool_installed - Tool appeared since the last check
  tool_removed   - Tool disappeared since the last check`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

// toolStatus is one row of the status report.
type toolStatus struct {
	Package   string `json:"package" yaml:"package"`
	Manager   string `json:"manager" yaml:"manager"`
	Installed bool   `json:"installed" yaml:"installed"`
}

// statusEvent is one NDJSON event in watch mode.
type statusEvent struct {
	Event     string `json:"event"`
	Package   string `json:"package"`
	Manager   string `json:"manager"`
	Installed bool   `json:"installed"`
	CheckedAt string `json:"checked_at"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if flagStatusWatch {
		return runStatusWatch(cmd.Context(), cfg)
	}

	statuses := checkTools(cfg)
	out := cmd.OutOrStdout()
	switch flagOutput {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(statuses)
	case "yaml":
		data, err := yaml.Marshal(statuses)
		if err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
		_, err = out.Write(data)
		return err
	case "text", "":
		renderStatus(out, statuses)
		return nil
	default:
		return fmt.Errorf("unknown output format %q", flagOutput)
	}
}

// checkTools probes every configured tool.
func checkTools(cfg *config.Config) []toolStatus {
	statuses := make([]toolStatus, 0, len(cfg.Tools))
	for _, t := range cfg.Tools {
		statuses = append(statuses, toolStatus{
			Package:   t.Package,
			Manager:   t.Manager,
			Installed: t.IsInstalled(),
		})
	}
	return statuses
}

var (
	statusOKStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	statusMissingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

func renderStatus(w io.Writer, statuses []toolStatus) {
	for _, s := range statuses {
		mark := statusMissingStyle.Render("missing")
		if s.Installed {
			mark = statusOKStyle.Render("installed")
		}
		fmt.Fprintf(w, "%-24s %-12s %s\n", s.Package, s.Manager, mark)
	}
}

// statusEventType decides which event one check pass emits for a tool, given
// the previous observation and the current probe. Empty means no event. The
// transition logic is kept side-effect free so every branch can be tested.
func statusEventType(initial, known, prev, installed bool) string {
	switch {
	case initial:
		return "tool_status"
	case known && !prev && installed:
		return "tool_installed"
	case known && prev && !installed:
		return "tool_removed"
	default:
		return ""
	}
}

// runStatusWatch streams status-change events until interrupted.
func runStatusWatch(ctx context.Context, cfg *config.Config) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Handle SIGINT/SIGTERM for graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		cancel()
	}()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	for _, t := range cfg.Tools {
		if t.Path == "" {
			continue
		}
		dir := filepath.Dir(os.ExpandEnv(t.Path))
		if err := watcher.Add(dir); err != nil {
			logger.Debug("cannot watch directory", "dir", dir, "err", err)
		}
	}

	enc := json.NewEncoder(os.Stdout)
	seen := make(map[string]bool)

	check := func(initial bool) error {
		now := time.Now().Format(time.RFC3339)
		for _, t := range cfg.Tools {
			installed := t.IsInstalled()
			prev, known := seen[t.Package]
			seen[t.Package] = installed

			eventType := statusEventType(initial, known, prev, installed)
			if eventType == "" {
				continue
			}

			event := statusEvent{
				Event:     eventType,
				Package:   t.Package,
				Manager:   t.Manager,
				Installed: installed,
				CheckedAt: now,
			}
			if err := enc.Encode(event); err != nil {
				return fmt.Errorf("encoding event: %w", err)
			}
		}
		return nil
	}

	if err := check(true); err != nil {
		return err
	}

	ticker := time.NewTicker(flagStatusPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := check(false); err != nil {
				return err
			}
		case _, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if err := check(false); err != nil {
				return err
			}
		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Debug("watch error", "err", werr)
		}
	}
}
