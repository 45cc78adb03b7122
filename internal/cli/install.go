package cli

import (
	"github.com/spf13/cobra"

	"github.com/emersonmx/stm/internal/runner"
)

func init() {
	rootCmd.AddCommand(installCmd)
}

var installCmd = &cobra.Command{
	Use:   "install MANAGER...",
	Short: "Run managers install",
	Long: `Run the install command of each named manager for its tools that are not
yet installed. A manager whose install template needs packages but has none
pending is skipped.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runInstall,
}

func runInstall(cmd *cobra.Command, args []string) error {
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
			if !t.IsInstalled() {
				packages = append(packages, t.Package)
			}
		}

		command, ok := runner.ExpandPackages(m.InstallCommand, packages)
		if !ok {
			logger.Info("nothing to install", "manager", name)
			continue
		}

		logger.Debug("installing", "manager", name, "packages", packages)
		if err := newRunner(store, name).RunCommand(cmd.Context(), command); err != nil {
			return err
		}
	}
	return nil
}
