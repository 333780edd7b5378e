package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
)

// ScenarioItem represents one canned query scenario in the repl's
// browse list: the chain that produced it, and the compiled SQL it
// walks to when selected.
type ScenarioItem struct {
	Name   string
	Chain  string
	SQL    string
	Status string
}

func (i ScenarioItem) FilterValue() string { return i.Name }
func (i ScenarioItem) Title() string {
	statusIcon := FormatStatus(i.Status)
	return fmt.Sprintf("%s %s", statusIcon, i.Name)
}
func (i ScenarioItem) Description() string {
	return mutedStyle.Render(i.Chain)
}

// ScenarioItemDelegate is a custom delegate for scenario list items
type ScenarioItemDelegate struct{}

func (d ScenarioItemDelegate) Height() int                             { return 2 }
func (d ScenarioItemDelegate) Spacing() int                            { return 1 }
func (d ScenarioItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d ScenarioItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	i, ok := item.(ScenarioItem)
	if !ok {
		return
	}

	var s string
	if index == m.Index() {
		s = selectedItemStyle.Render("▸ " + i.Title() + "\n  " + i.Description())
	} else {
		s = unselectedItemStyle.Render("  " + i.Title() + "\n  " + i.Description())
	}

	_, _ = fmt.Fprint(w, s)
}

// SQLPreview renders the compiled SQL for whichever scenario is
// currently selected in the browse list.
type SQLPreview struct {
	Scenario string
	SQL      string
}

// View renders the SQL preview pane
func (p SQLPreview) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Compiled SQL"))
	b.WriteString("\n\n")

	if p.Scenario != "" {
		b.WriteString(infoStyle.Render(p.Scenario))
		b.WriteString("\n\n")
	}

	if p.SQL == "" {
		b.WriteString(mutedStyle.Render("(select a scenario)"))
	} else {
		b.WriteString(FormatSQL(p.SQL))
	}

	return boxStyle.Render(b.String())
}

// SQLLog keeps a scrolling history of scenarios explained during a
// repl session.
type SQLLog struct {
	Entries []string
	MaxLen  int
}

// NewSQLLog creates a new log view
func NewSQLLog(maxLen int) SQLLog {
	return SQLLog{
		Entries: make([]string, 0),
		MaxLen:  maxLen,
	}
}

// Add appends a log entry
func (l *SQLLog) Add(entry string) {
	l.Entries = append(l.Entries, entry)
	if len(l.Entries) > l.MaxLen {
		l.Entries = l.Entries[1:]
	}
}

// View renders the log view
func (l SQLLog) View() string {
	if len(l.Entries) == 0 {
		return mutedStyle.Render("No queries explained yet")
	}

	var b strings.Builder
	for _, entry := range l.Entries {
		b.WriteString(mutedStyle.Render("• "))
		b.WriteString(entry)
		b.WriteString("\n")
	}

	return boxStyle.Render(b.String())
}
