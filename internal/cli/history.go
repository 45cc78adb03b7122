package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/emersonmx/stm/internal/db"
	"github.com/emersonmx/stm/internal/tui/history"
)

var (
	flagHistoryLimit  int
	flagHistorySearch string
	flagHistoryTUI    bool
)

func init() {
	historyCmd.Flags().IntVarP(&flagHistoryLimit, "limit", "n", 20, "maximum number of runs to show")
	historyCmd.Flags().StringVar(&flagHistorySearch, "search", "", "only show runs whose command contains this text")
	historyCmd.Flags().BoolVar(&flagHistoryTUI, "tui", false, "browse the history interactively")

	rootCmd.AddCommand(historyCmd)
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded runs",
	Long: `List the delegated commands stm has executed, newest first.

Every run records its argv, exit status, start time and duration. Use --tui
for an interactive browser with paging and search.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func runHistory(cmd *cobra.Command, args []string) error {
	path, err := historyDBPath()
	if err != nil {
		return err
	}

	if flagHistoryTUI {
		return history.Browse(path)
	}

	store, err := db.Open(path)
	if err != nil {
		return fmt.Errorf("opening history: %w", err)
	}
	defer store.Close()

	var runs []*db.Run
	if flagHistorySearch != "" {
		runs, err = store.SearchRuns(flagHistorySearch, flagHistoryLimit)
	} else {
		runs, err = store.ListRuns(flagHistoryLimit, 0)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch flagOutput {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	case "yaml":
		data, err := yaml.Marshal(runs)
		if err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
		_, err = out.Write(data)
		return err
	case "text", "":
		renderHistory(out, runs)
		return nil
	default:
		return fmt.Errorf("unknown output format %q", flagOutput)
	}
}

func renderHistory(w io.Writer, runs []*db.Run) {
	for _, run := range runs {
		fmt.Fprintf(w, "%s  exit=%-3d %8s  %s\n",
			run.StartedAt.Local().Format(time.DateTime),
			run.ExitCode,
			run.Duration.Round(time.Millisecond),
			run.Command,
		)
	}
}
