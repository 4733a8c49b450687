package tui

import (
	"fmt"
	"io"
	"time"

	"pioneer-cli/internal/model"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

type taskRowItem struct {
	task model.Task
	// grabbed marks the active drag source so the row renders dimmed while a
	// move is in progress.
	grabbed bool
}

func (i taskRowItem) FilterValue() string { return i.task.Title }

func newList(title string) list.Model {
	l := list.New([]list.Item{}, newTaskDelegate(), 0, 0)
	l.Title = title
	// The app renders its own header and status bar, so keep list chrome
	// minimal. Filtering is ours too (the search box feeds the filter
	// engine), not the bubbles list's.
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetShowPagination(false)
	l.SetFilteringEnabled(false)
	l.SetStatusBarItemName("task", "tasks")
	// Bubble list defaults to quitting on ESC; here ESC is "back/cancel".
	l.KeyMap.Quit.SetKeys("ctrl+c")
	return l
}

type taskDelegate struct{}

func newTaskDelegate() taskDelegate { return taskDelegate{} }

func (d taskDelegate) Height() int                             { return 2 }
func (d taskDelegate) Spacing() int                            { return 1 }
func (d taskDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d taskDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	row, ok := item.(taskRowItem)
	if !ok {
		return
	}
	width := m.Width()
	if width <= 0 {
		width = 80
	}

	badge := lipgloss.NewStyle().
		Foreground(priorityColor(string(row.task.Priority))).
		Render("●")
	due := styleMuted().Render(formatDueDate(row.task.TodoDate))

	title := row.task.Title
	line1 := fmt.Sprintf("%s %s", badge, title)
	line2 := "  " + due
	if desc := firstLine(row.task.Description); desc != "" {
		line2 = fmt.Sprintf("  %s  %s", due, styleMuted().Render(desc))
	}

	st := lipgloss.NewStyle()
	switch {
	case row.grabbed:
		st = styleMuted().Italic(true)
	case index == m.Index():
		st = lipgloss.NewStyle().Background(colorSelectedBg).Foreground(colorSelectedFg).Bold(true)
	}

	fmt.Fprintf(w, "%s\n%s",
		st.Render(ansi.Truncate(line1, width, "…")),
		ansi.Truncate(line2, width, "…"))
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i]
		}
	}
	return s
}

// formatDueDate renders a YYYY-MM-DD due date as "Jan 5", falling back to the
// raw string when it does not parse.
func formatDueDate(date string) string {
	if date == "" {
		return "no date"
	}
	parsed, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	return parsed.Format("Jan 2")
}
