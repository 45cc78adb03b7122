// Package cli implements the stm command line interface.
package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/emersonmx/stm/internal/config"
	"github.com/emersonmx/stm/internal/db"
	"github.com/emersonmx/stm/internal/runner"
)

var (
	flagConfig    string
	flagOutput    string
	flagVerbose   bool
	flagHistoryDB string
)

var logger = log.NewWithOptions(os.Stderr, log.Options{
	Prefix: "stm",
})

var rootCmd = &cobra.Command{
	Use:   "stm",
	Short: "System Tool Manager",
	Long: `System Tool Manager (stm) installs and updates system tools through the
package managers defined in its configuration.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if flagVerbose {
			logger.SetLevel(log.DebugLevel)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "config file (default is config.{toml,json,yaml} in the stm config dir)")
	rootCmd.PersistentFlags().StringVarP(&flagOutput, "output", "o", "text", "output format: text, json or yaml")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flagHistoryDB, "history-db", "", "run history database path")
}

// Execute runs the root command. A delegated command's ExitError passes
// through untouched so main can propagate the exit status.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		var exitErr *runner.ExitError
		if !errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
	}
	return err
}

// loadConfig loads the configuration honoring --config.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// validateManagers rejects names that are not configured.
func validateManagers(cfg *config.Config, names []string) error {
	for _, name := range names {
		if _, ok := cfg.FindManager(name); !ok {
			return fmt.Errorf("invalid manager %s", name)
		}
	}
	return nil
}

// historyDBPath resolves the history database path honoring --history-db.
func historyDBPath() (string, error) {
	if flagHistoryDB != "" {
		return flagHistoryDB, nil
	}
	if _, err := config.EnsureAppDir(); err != nil {
		return "", err
	}
	return config.HistoryPath()
}

// openHistory opens the run history store. History is best-effort: on
// failure a warning is logged and nil is returned.
func openHistory() *db.DB {
	path, err := historyDBPath()
	if err == nil {
		store, oerr := db.Open(path)
		if oerr == nil {
			return store
		}
		err = oerr
	}
	logger.Warn("run history unavailable", "err", err)
	return nil
}

// historyRecorder adapts the history store to the runner's Recorder.
type historyRecorder struct {
	store   *db.DB
	manager string
}

func (h historyRecorder) Record(run runner.Run) error {
	return h.store.RecordRun(&db.Run{
		Command:   strings.Join(run.Argv, " "),
		Argv:      run.Argv,
		Manager:   h.manager,
		ExitCode:  run.ExitCode,
		StartedAt: run.StartedAt,
		Duration:  run.Duration,
	})
}

// newRunner builds a Runner that records into store under the given manager
// name. store may be nil.
func newRunner(store *db.DB, manager string) *runner.Runner {
	r := runner.New(logger)
	if store != nil {
		r.Recorder = historyRecorder{store: store, manager: manager}
	}
	return r
}
