package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"
	"golang.org/x/term"

	"github.com/emersonmx/stm/internal/config"
)

func init() {
	rootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all available managers",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

var (
	listHeaderStyle  = lipgloss.NewStyle().Bold(true)
	listNameStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	listCommandStyle = lipgloss.NewStyle().Faint(true)
)

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch flagOutput {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(cfg.ManagerNames())
	case "yaml":
		data, err := yaml.Marshal(cfg.ManagerNames())
		if err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
		_, err = out.Write(data)
		return err
	case "text", "":
		renderManagerList(out, cfg)
		return nil
	default:
		return fmt.Errorf("unknown output format %q", flagOutput)
	}
}

// renderManagerList prints one name per line for pipes, and a styled listing
// with the install command on terminals.
func renderManagerList(w io.Writer, cfg *config.Config) {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		for _, name := range cfg.ManagerNames() {
			fmt.Fprintln(w, name)
		}
		return
	}

	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		width = 80
	}

	fmt.Fprintln(w, listHeaderStyle.Render("MANAGERS"))
	for _, m := range cfg.Managers {
		detail := truncate(m.InstallCommand, width-len(m.Name)-4)
		fmt.Fprintf(w, "%s  %s\n",
			listNameStyle.Render(m.Name),
			listCommandStyle.Render(detail),
		)
	}
}

// truncate shortens s to max runes. Slicing runes, not bytes, keeps
// multi-byte commands valid UTF-8.
func truncate(s string, max int) string {
	r := []rune(s)
	if max < 1 || len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}
