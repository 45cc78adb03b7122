package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/emersonmx/stm/internal/testutil"
)

// resetFlags restores every package flag var to its default.
func resetFlags() {
	flagConfig = ""
	flagOutput = "text"
	flagVerbose = false
	flagHistoryDB = ""
	flagStatusWatch = false
	flagStatusPollInterval = 2 * time.Second
	flagHistoryLimit = 20
	flagHistorySearch = ""
	flagHistoryTUI = false
}

// newTestRoot builds a fresh root command wired to the harness config and
// history database, with fresh subcommands reusing the production RunE
// functions.
func newTestRoot(h *testutil.Harness) *cobra.Command {
	resetFlags()

	root := &cobra.Command{
		Use:           "stm",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&flagConfig, "config", "c", h.ConfigPath, "config file")
	root.PersistentFlags().StringVarP(&flagOutput, "output", "o", "text", "output format")
	root.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().StringVar(&flagHistoryDB, "history-db", h.DBPath, "history database path")

	eCmd := &cobra.Command{
		Use:  "exec CMD [PARAM]",
		Args: cobra.MinimumNArgs(1),
		RunE: execCmd.RunE,
	}

	iCmd := &cobra.Command{
		Use:  "install MANAGER...",
		Args: cobra.MinimumNArgs(1),
		RunE: installCmd.RunE,
	}

	uCmd := &cobra.Command{
		Use:  "update MANAGER...",
		Args: cobra.MinimumNArgs(1),
		RunE: updateCmd.RunE,
	}

	lCmd := &cobra.Command{
		Use:  "list",
		Args: cobra.NoArgs,
		RunE: listCmd.RunE,
	}

	sCmd := &cobra.Command{
		Use:  "status",
		Args: cobra.NoArgs,
		RunE: statusCmd.RunE,
	}
	sCmd.Flags().BoolVar(&flagStatusWatch, "watch", false, "stream status changes")
	sCmd.Flags().DurationVar(&flagStatusPollInterval, "poll-interval", 2*time.Second, "re-check interval")

	hCmd := &cobra.Command{
		Use:  "history",
		Args: cobra.NoArgs,
		RunE: historyCmd.RunE,
	}
	hCmd.Flags().IntVarP(&flagHistoryLimit, "limit", "n", 20, "maximum runs")
	hCmd.Flags().StringVar(&flagHistorySearch, "search", "", "filter runs")
	hCmd.Flags().BoolVar(&flagHistoryTUI, "tui", false, "interactive browser")

	nCmd := &cobra.Command{
		Use:  "init",
		Args: cobra.NoArgs,
		RunE: initCmd.RunE,
	}

	root.AddCommand(eCmd, iCmd, uCmd, lCmd, sCmd, hCmd, nCmd)

	return root
}
