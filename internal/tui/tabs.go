package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/1broseidon/tagtile/internal/ipc"
	"github.com/1broseidon/tagtile/internal/wm"
)

// Tab identifies a TUI tab.
type Tab int

const (
	TabMonitors Tab = iota
	TabClients
	TabGeneral
	tabCount // sentinel for iteration
)

func (t Tab) String() string {
	switch t {
	case TabMonitors:
		return "Monitors"
	case TabClients:
		return "Clients"
	case TabGeneral:
		return "General"
	default:
		return "?"
	}
}

func (t Tab) shortcut() string {
	switch t {
	case TabMonitors:
		return "m"
	case TabClients:
		return "c"
	case TabGeneral:
		return "g"
	default:
		return ""
	}
}

var (
	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 2)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("250")).
				Background(lipgloss.Color("236")).
				Padding(0, 2)

	tabBarStyle = lipgloss.NewStyle().
			MarginBottom(1)

	tabGap = lipgloss.NewStyle().
		Background(lipgloss.Color("235")).
		SetString(" ")

	tagActiveStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("24"))

	tagOccupiedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("250")).
				Underline(true)

	tagUrgentStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("160"))

	tagEmptyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

// renderTabBar renders the tab bar with the given active tab and width.
func renderTabBar(active Tab, width int) string {
	var tabs []string
	for i := Tab(0); i < tabCount; i++ {
		label := i.shortcut() + ":" + i.String()
		if i == active {
			tabs = append(tabs, activeTabStyle.Render(label))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(label))
		}
	}

	row := lipgloss.JoinHorizontal(lipgloss.Top, intersperse(tabs, tabGap.Render())...)
	return tabBarStyle.Width(width).Render(row)
}

// intersperse inserts sep between each element of items.
func intersperse(items []string, sep string) []string {
	if len(items) <= 1 {
		return items
	}
	result := make([]string, 0, len(items)*2-1)
	for i, item := range items {
		if i > 0 {
			result = append(result, sep)
		}
		result = append(result, item)
	}
	return result
}

// renderTags draws a dwm style tag bar for one monitor.
func renderTags(m wm.MonitorStatus, count int) string {
	parts := make([]string, 0, count)
	for i := 0; i < count; i++ {
		bit := uint32(1) << uint(i)
		label := fmt.Sprintf(" %d ", i+1)
		switch {
		case m.Urgent&bit != 0:
			parts = append(parts, tagUrgentStyle.Render(label))
		case m.Active&bit != 0:
			parts = append(parts, tagActiveStyle.Render(label))
		case m.Occupied&bit != 0:
			parts = append(parts, tagOccupiedStyle.Render(label))
		default:
			parts = append(parts, tagEmptyStyle.Render(label))
		}
	}
	return strings.Join(parts, "")
}

// renderStatusBar renders the daemon connection status bar.
func renderStatusBar(status *ipc.StatusData, loading string, updated, now time.Time, width int) string {
	var text string
	switch {
	case status != nil:
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Render("●")
		parts := []string{dot + " daemon connected"}
		if status.Locked {
			parts = append(parts, "locked")
		}
		parts = append(parts,
			fmt.Sprintf("up %s", formatUptime(status.UptimeSeconds)),
			fmt.Sprintf("%d clients", len(status.Clients)),
			"updated "+humanize.RelTime(updated, now, "ago", "from now"),
		)
		text = strings.Join(parts, "  ")
	case loading != "":
		text = loading + " connecting to daemon"
	default:
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render("●")
		text = dot + " daemon not running"
	}

	style := lipgloss.NewStyle().
		Width(width).
		Background(lipgloss.Color("235")).
		Foreground(lipgloss.Color("250")).
		Padding(0, 1)
	return style.Render(text)
}

// renderHelpBar renders the bottom help/keybinding bar.
func renderHelpBar(active Tab, width int) string {
	help := "tab/shift-tab: switch tabs  m/c/g: jump to tab  1-9: view tag  r: refresh  ctrl-s: save  q/ctrl-c: quit"
	if active == TabGeneral {
		help = "tab/shift-tab: switch tabs  e: edit  ctrl-s: save  q/ctrl-c: quit"
	}
	style := lipgloss.NewStyle().
		Width(width).
		Foreground(lipgloss.Color("241")).
		Padding(0, 1)
	return style.Render(help)
}

func formatUptime(seconds int64) string {
	d := time.Duration(seconds) * time.Second
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", seconds)
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh%02dm", int(d.Hours()), int(d.Minutes())%60)
	default:
		return fmt.Sprintf("%dd%02dh", int(d.Hours())/24, int(d.Hours())%24)
	}
}
