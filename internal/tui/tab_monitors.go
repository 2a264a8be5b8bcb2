package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/tagtile/internal/ipc"
	"github.com/1broseidon/tagtile/internal/wm"
)

// MonitorsTab lists outputs with their tag bar and layout parameters.
type MonitorsTab struct {
	table    table.Model
	monitors []wm.MonitorStatus
	tagCount int
	width    int
	height   int
}

func newTable(columns []table.Column) table.Model {
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(5),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("15")).
		Background(lipgloss.Color("62")).
		Bold(false)
	t.SetStyles(s)
	return t
}

// NewMonitorsTab creates an empty MonitorsTab.
func NewMonitorsTab() MonitorsTab {
	return MonitorsTab{
		table: newTable([]table.Column{
			{Title: "", Width: 1},
			{Title: "Output", Width: 12},
			{Title: "Geometry", Width: 20},
			{Title: "Layout", Width: 6},
			{Title: "mfact", Width: 5},
			{Title: "nmaster", Width: 7},
			{Title: "Clients", Width: 7},
			{Title: "Focused", Width: 30},
		}),
	}
}

// SetStatus replaces the rows with a fresh snapshot.
func (t *MonitorsTab) SetStatus(status *ipc.StatusData) {
	if status == nil {
		t.monitors = nil
		t.tagCount = 0
		t.table.SetRows(nil)
		return
	}
	t.monitors = status.Monitors
	t.tagCount = status.TagCount
	t.table.SetRows(monitorRows(status.Monitors))
}

func monitorRows(monitors []wm.MonitorStatus) []table.Row {
	rows := make([]table.Row, 0, len(monitors))
	for _, m := range monitors {
		sel := ""
		if m.Selected {
			sel = "*"
		}
		geom := fmt.Sprintf("%dx%d+%d+%d", m.Geometry.Width, m.Geometry.Height, m.Geometry.X, m.Geometry.Y)
		if !m.Enabled {
			geom = "disabled"
		}
		focused := ""
		if m.HasFocus {
			focused = m.Title
			if m.AppID != "" {
				focused = m.AppID + ": " + m.Title
			}
			if m.Fullscreen {
				focused += " [F]"
			} else if m.Floating {
				focused += " [~]"
			}
		}
		rows = append(rows, table.Row{
			sel,
			m.Name,
			geom,
			m.Layout,
			fmt.Sprintf("%.2f", m.Mfact),
			fmt.Sprintf("%d", m.Nmaster),
			fmt.Sprintf("%d", m.Clients),
			focused,
		})
	}
	return rows
}

// Update implements tea.Model.
func (t MonitorsTab) Update(msg tea.Msg) (MonitorsTab, tea.Cmd) {
	if msg, ok := msg.(tea.WindowSizeMsg); ok {
		t.width = msg.Width
		t.height = msg.Height
		t.table.SetWidth(msg.Width - 2)
		t.table.SetHeight(max(msg.Height-len(t.monitors)-3, 3))
		return t, nil
	}
	var cmd tea.Cmd
	t.table, cmd = t.table.Update(msg)
	return t, cmd
}

// View implements tea.Model.
func (t MonitorsTab) View() string {
	if len(t.monitors) == 0 {
		style := lipgloss.NewStyle().
			Width(t.width).
			Height(t.height).
			Foreground(lipgloss.Color("241")).
			Align(lipgloss.Center, lipgloss.Center)
		return style.Render("No monitors")
	}

	nameStyle := lipgloss.NewStyle().Width(14).Foreground(lipgloss.Color("250"))
	bars := make([]string, 0, len(t.monitors))
	for _, m := range t.monitors {
		bars = append(bars, nameStyle.Render(m.Name)+renderTags(m, t.tagCount))
	}

	return lipgloss.NewStyle().Padding(0, 1).Render(
		strings.Join(bars, "\n") + "\n\n" + t.table.View(),
	)
}
