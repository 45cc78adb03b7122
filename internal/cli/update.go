package cli

import (
	"github.com/spf13/cobra"

	"github.com/emersonmx/stm/internal/runner"
)

func init() {
	rootCmd.AddCommand(updateCmd)
}

var updateCmd = &cobra.Command{
	Use:   "update MANAGER...",
	Short: "Run managers update",
	Long: `Run the update command of each named manager over all of its tools.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runUpdate,
}

func runUpdate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := validateManagers(cfg, args); err != nil {
		return err
	}

	store := openHistory()
	if store != nil {
		defer store.Close()
	}

	for _, name := range args {
		m, _ := cfg.FindManager(name)

		var packages []string
		for _, t := range cfg.ToolsForManager(name) {
			packages = append(packages, t.Package)
		}

		command, ok := runner.ExpandPackages(m.UpdateCommand, packages)
		if !ok {
			logger.Info("nothing to update", "manager", name)
			continue
		}

		logger.Debug("updating", "manager", name, "packages", packages)
		if err := newRunner(store, name).RunCommand(cmd.Context(), command); err != nil {
			return err
		}
	}
	return nil
}
