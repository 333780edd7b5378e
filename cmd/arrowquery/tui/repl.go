package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ReplScenario is one entry the repl browses: a chain description and
// its already-compiled SQL, computed up front since composition never
// touches the database.
type ReplScenario struct {
	Name  string
	Chain string
	SQL   string
	Err   error
}

// ReplModel is the Bubbletea model for the interactive scenario
// browser: a list of compiled chains on the left, the selected one's
// SQL on the right, and a scrolling log of what's been viewed.
type ReplModel struct {
	list      list.Model
	preview   SQLPreview
	log       SQLLog
	scenarios []ReplScenario
	width     int
	height    int
}

// NewReplModel builds a repl model over an already-compiled scenario
// set.
func NewReplModel(scenarios []ReplScenario) ReplModel {
	items := make([]list.Item, len(scenarios))
	for i, s := range scenarios {
		status := "ok"
		if s.Err != nil {
			status = "failed"
		}
		items[i] = ScenarioItem{Name: s.Name, Chain: s.Chain, SQL: s.SQL, Status: status}
	}

	l := list.New(items, ScenarioItemDelegate{}, 0, 0)
	l.Title = "arrowquery scenarios"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = titleStyle

	m := ReplModel{
		list:      l,
		log:       NewSQLLog(10),
		scenarios: scenarios,
	}
	if len(scenarios) > 0 {
		m.preview = SQLPreview{Scenario: scenarios[0].Name, SQL: scenarios[0].SQL}
	}
	return m
}

// Init satisfies tea.Model.
func (m ReplModel) Init() tea.Cmd {
	return tea.EnterAltScreen
}

// Update satisfies tea.Model.
func (m ReplModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width/2, msg.Height-4)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "enter", " ":
			idx := m.list.Index()
			if idx >= 0 && idx < len(m.scenarios) {
				s := m.scenarios[idx]
				m.preview = SQLPreview{Scenario: s.Name, SQL: s.SQL}
				m.log.Add(fmt.Sprintf("%s → %d chars of SQL", s.Name, len(s.SQL)))
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View satisfies tea.Model.
func (m ReplModel) View() string {
	help := helpStyle.Render(
		FormatKey("↑/↓", "browse") + " • " +
			FormatKey("enter", "preview") + " • " +
			FormatKey("q", "quit"),
	)

	body := lipgloss.JoinHorizontal(lipgloss.Top, m.list.View(), m.preview.View())
	return lipgloss.JoinVertical(lipgloss.Left, body, m.log.View(), help)
}

// RunRepl starts the interactive scenario browser.
func RunRepl(scenarios []ReplScenario) error {
	p := tea.NewProgram(NewReplModel(scenarios))
	_, err := p.Run()
	return err
}
