// Package history implements the interactive run history browser.
package history

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/emersonmx/stm/internal/db"
)

const pageSize = 20

// RunRow is one rendered history entry.
type RunRow struct {
	ID        string
	Command   string
	Manager   string
	ExitCode  int
	StartedAt time.Time
	Duration  time.Duration
}

// BrowserKeyMap defines the browser key bindings.
type BrowserKeyMap struct {
	Up          key.Binding
	Down        key.Binding
	NextPage    key.Binding
	PrevPage    key.Binding
	Search      key.Binding
	ClearSearch key.Binding
	Refresh     key.Binding
	Quit        key.Binding
}

// DefaultBrowserKeyMap returns the default key bindings.
func DefaultBrowserKeyMap() BrowserKeyMap {
	return BrowserKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		NextPage: key.NewBinding(
			key.WithKeys("right", "l", "pgdown"),
			key.WithHelp("→/l", "next page"),
		),
		PrevPage: key.NewBinding(
			key.WithKeys("left", "h", "pgup"),
			key.WithHelp("←/h", "prev page"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		ClearSearch: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "clear search"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// refreshMsg asks the model to reload the current page.
type refreshMsg struct{}

// dataMsg delivers a loaded page.
type dataMsg struct {
	rows        []RunRow
	totalCount  int
	err         error
	refreshedAt time.Time
}

// Model is the bubbletea model for the history browser.
type Model struct {
	dbPath string
	keymap BrowserKeyMap

	searchInput textinput.Model
	searching   bool
	search      string

	rows        []RunRow
	totalCount  int
	cursor      int
	page        int
	width       int
	height      int
	ready       bool
	err         error
	refreshedAt time.Time
}

// New creates a browser over the history database at dbPath.
func New(dbPath string) Model {
	ti := textinput.New()
	ti.Placeholder = "search commands"
	ti.CharLimit = 128

	return Model{
		dbPath:      dbPath,
		keymap:      DefaultBrowserKeyMap(),
		searchInput: ti,
	}
}

// Init starts the first load.
func (m Model) Init() tea.Cmd {
	return m.load()
}

// load reads the current page from the database.
func (m Model) load() tea.Cmd {
	dbPath := m.dbPath
	search := m.search
	page := m.page

	return func() tea.Msg {
		store, err := db.Open(dbPath)
		if err != nil {
			return dataMsg{err: err, refreshedAt: time.Now()}
		}
		defer store.Close()

		var runs []*db.Run
		if search != "" {
			runs, err = store.SearchRuns(search, pageSize)
		} else {
			runs, err = store.ListRuns(pageSize, page*pageSize)
		}
		if err != nil {
			return dataMsg{err: err, refreshedAt: time.Now()}
		}

		total, err := store.CountRuns()
		if err != nil {
			return dataMsg{err: err, refreshedAt: time.Now()}
		}

		rows := make([]RunRow, 0, len(runs))
		for _, run := range runs {
			rows = append(rows, RunRow{
				ID:        run.ID,
				Command:   run.Command,
				Manager:   run.Manager,
				ExitCode:  run.ExitCode,
				StartedAt: run.StartedAt,
				Duration:  run.Duration,
			})
		}

		return dataMsg{rows: rows, totalCount: total, refreshedAt: time.Now()}
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		return m, nil

	case refreshMsg:
		return m, m.load()

	case dataMsg:
		m.rows = msg.rows
		m.totalCount = msg.totalCount
		m.err = msg.err
		m.refreshedAt = msg.refreshedAt
		if m.cursor >= len(m.rows) {
			m.cursor = 0
		}
		return m, nil

	case tea.KeyMsg:
		if m.searching {
			switch msg.String() {
			case "enter":
				m.searching = false
				m.search = m.searchInput.Value()
				m.page = 0
				m.cursor = 0
				return m, m.load()
			case "esc":
				m.searching = false
				m.searchInput.SetValue("")
				return m, nil
			}
			var cmd tea.Cmd
			m.searchInput, cmd = m.searchInput.Update(msg)
			return m, cmd
		}

		switch {
		case key.Matches(msg, m.keymap.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keymap.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, m.keymap.Down):
			if m.cursor < len(m.rows)-1 {
				m.cursor++
			}
		case key.Matches(msg, m.keymap.NextPage):
			if (m.page+1)*pageSize < m.totalCount && m.search == "" {
				m.page++
				m.cursor = 0
				return m, m.load()
			}
		case key.Matches(msg, m.keymap.PrevPage):
			if m.page > 0 {
				m.page--
				m.cursor = 0
				return m, m.load()
			}
		case key.Matches(msg, m.keymap.Search):
			m.searching = true
			m.searchInput.Focus()
			return m, textinput.Blink
		case key.Matches(msg, m.keymap.ClearSearch):
			if m.search != "" {
				m.search = ""
				m.searchInput.SetValue("")
				m.page = 0
				m.cursor = 0
				return m, m.load()
			}
		case key.Matches(msg, m.keymap.Refresh):
			return m, m.load()
		}
	}

	return m, nil
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
	failStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	okStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	statusStyle   = lipgloss.NewStyle().Faint(true)
	errStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	searchLabelSt = lipgloss.NewStyle().Bold(true)
)

// View renders the browser.
func (m Model) View() string {
	if !m.ready {
		return "loading..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("stm run history"))
	b.WriteString("\n\n")

	if m.err != nil {
		b.WriteString(errStyle.Render(fmt.Sprintf("error: %v", m.err)))
		b.WriteString("\n")
		return b.String()
	}

	if m.searching {
		b.WriteString(searchLabelSt.Render("search: "))
		b.WriteString(m.searchInput.View())
		b.WriteString("\n\n")
	} else if m.search != "" {
		b.WriteString(statusStyle.Render(fmt.Sprintf("filter: %q (esc to clear)", m.search)))
		b.WriteString("\n\n")
	}

	if len(m.rows) == 0 {
		b.WriteString(statusStyle.Render("no runs recorded"))
		b.WriteString("\n")
		return b.String()
	}

	for i, row := range m.rows {
		marker := "  "
		if i == m.cursor {
			marker = cursorStyle.Render("> ")
		}

		exit := okStyle.Render(fmt.Sprintf("exit=%d", row.ExitCode))
		if row.ExitCode != 0 {
			exit = failStyle.Render(fmt.Sprintf("exit=%d", row.ExitCode))
		}

		command := row.Command
		if maxCmd := m.width - 40; maxCmd > 8 {
			if r := []rune(command); len(r) > maxCmd {
				command = string(r[:maxCmd-3]) + "..."
			}
		}

		b.WriteString(fmt.Sprintf("%s%s  %s  %8s  %s\n",
			marker,
			row.StartedAt.Local().Format("2006-01-02 15:04"),
			exit,
			row.Duration.Round(time.Millisecond),
			command,
		))
	}

	b.WriteString("\n")
	pages := (m.totalCount + pageSize - 1) / pageSize
	if pages == 0 {
		pages = 1
	}
	b.WriteString(statusStyle.Render(fmt.Sprintf(
		"page %d/%d · %d runs · / search · r refresh · q quit",
		m.page+1, pages, m.totalCount,
	)))
	b.WriteString("\n")

	return b.String()
}

// Browse opens the interactive browser over the history database at path.
func Browse(path string) error {
	p := tea.NewProgram(New(path), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running history browser: %w", err)
	}
	return nil
}
