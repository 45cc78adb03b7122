package cli

import (
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(execCmd)
}

var execCmd = &cobra.Command{
	Use:   "exec CMD [PARAM]",
	Short: "Run a command if a parameter is supplied",
	Long: `Execute CMD with PARAM appended as a single argument.

With no PARAM this is a no-op and exits 0. When PARAM is given, CMD is
tokenized shell-style (so a multi-word command works), PARAM is appended as
exactly one argument (it is never split on whitespace), and the resulting
command runs with stm's stdin, stdout and stderr. The command's exit status
becomes stm's exit status. Arguments after PARAM are ignored.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExec,
}

func runExec(cmd *cobra.Command, args []string) error {
	if len(args) < 2 {
		logger.Debug("no parameter given, nothing to run", "command", args[0])
		return nil
	}

	store := openHistory()
	if store != nil {
		defer store.Close()
	}

	return newRunner(store, "").Run(cmd.Context(), args[0], args[1])
}
