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

// ClientsTab lists every managed client.
type ClientsTab struct {
	table   table.Model
	clients []wm.ClientStatus
	width   int
	height  int
}

// NewClientsTab creates an empty ClientsTab.
func NewClientsTab() ClientsTab {
	return ClientsTab{
		table: newTable([]table.Column{
			{Title: "", Width: 1},
			{Title: "Surface", Width: 8},
			{Title: "Output", Width: 10},
			{Title: "Tags", Width: 10},
			{Title: "State", Width: 5},
			{Title: "App", Width: 16},
			{Title: "Title", Width: 36},
		}),
	}
}

// SetStatus replaces the rows with a fresh snapshot.
func (t *ClientsTab) SetStatus(status *ipc.StatusData) {
	if status == nil {
		t.clients = nil
		t.table.SetRows(nil)
		return
	}
	t.clients = status.Clients
	t.table.SetRows(clientRows(status.Clients))
}

func clientRows(clients []wm.ClientStatus) []table.Row {
	rows := make([]table.Row, 0, len(clients))
	for _, c := range clients {
		focus := ""
		if c.Focused {
			focus = "*"
		}
		rows = append(rows, table.Row{
			focus,
			fmt.Sprintf("%d", c.Surface),
			c.Monitor,
			tagList(c.Tags),
			clientFlags(c),
			c.AppID,
			c.Title,
		})
	}
	return rows
}

// clientFlags abbreviates the client state: F fullscreen, ~ floating,
// ! urgent.
func clientFlags(c wm.ClientStatus) string {
	var b strings.Builder
	if c.Fullscreen {
		b.WriteString("F")
	}
	if c.Floating {
		b.WriteString("~")
	}
	if c.Urgent {
		b.WriteString("!")
	}
	return b.String()
}

func tagList(mask uint32) string {
	var parts []string
	for i := 0; i < 32; i++ {
		if mask&(1<<uint(i)) != 0 {
			parts = append(parts, fmt.Sprintf("%d", i+1))
		}
	}
	return strings.Join(parts, ",")
}

// Update implements tea.Model.
func (t ClientsTab) Update(msg tea.Msg) (ClientsTab, tea.Cmd) {
	if msg, ok := msg.(tea.WindowSizeMsg); ok {
		t.width = msg.Width
		t.height = msg.Height
		t.table.SetWidth(msg.Width - 2)
		t.table.SetHeight(max(msg.Height-2, 3))
		return t, nil
	}
	var cmd tea.Cmd
	t.table, cmd = t.table.Update(msg)
	return t, cmd
}

// View implements tea.Model.
func (t ClientsTab) View() string {
	if len(t.clients) == 0 {
		style := lipgloss.NewStyle().
			Width(t.width).
			Height(t.height).
			Foreground(lipgloss.Color("241")).
			Align(lipgloss.Center, lipgloss.Center)
		return style.Render("No clients")
	}
	return lipgloss.NewStyle().Padding(0, 1).Render(t.table.View())
}
