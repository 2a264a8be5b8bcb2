package tui

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/tagtile/internal/config"
	"github.com/1broseidon/tagtile/internal/wm"
)

// GeneralTab shows and edits the scalar settings of the loaded config.
type GeneralTab struct {
	cfg *config.Config

	// Display dimensions
	width  int
	height int

	// Edit mode
	editing bool
	form    *huh.Form

	fields generalFields
}

// generalFields are the form-bound values (strings for huh, converted on
// submit).
type generalFields struct {
	Tags        string
	BorderPx    string
	Gap         string
	BorderColor string
	FocusColor  string
	LogLevel    string
	Reconcile   string
	LogindLock  bool
}

// NewGeneralTab creates a GeneralTab from the loaded config.
func NewGeneralTab(cfg *config.Config) GeneralTab {
	return GeneralTab{cfg: cfg}
}

// SetConfig updates the config reference.
func (g *GeneralTab) SetConfig(cfg *config.Config) {
	g.cfg = cfg
}

// Update implements tea.Model.
func (g GeneralTab) Update(msg tea.Msg) (GeneralTab, tea.Cmd) {
	if g.editing {
		return g.updateEditing(msg)
	}
	return g.updateDisplay(msg)
}

func (g GeneralTab) updateDisplay(msg tea.Msg) (GeneralTab, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "e" {
			g.startEditing()
			return g, g.form.Init()
		}
	case tea.WindowSizeMsg:
		g.width = msg.Width
		g.height = msg.Height
	}
	return g, nil
}

func (g GeneralTab) updateEditing(msg tea.Msg) (GeneralTab, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "esc" {
			g.editing = false
			g.form = nil
			return g, nil
		}
	case tea.WindowSizeMsg:
		g.width = msg.Width
		g.height = msg.Height
	}

	form, cmd := g.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		g.form = f
	}

	if g.form.State == huh.StateCompleted {
		g.fields.apply(g.cfg)
		g.editing = false
		g.form = nil
		return g, nil
	}

	return g, cmd
}

func fieldsFromConfig(cfg *config.Config) generalFields {
	return generalFields{
		Tags:        strconv.Itoa(cfg.Tags),
		BorderPx:    strconv.Itoa(cfg.BorderPx),
		Gap:         strconv.Itoa(cfg.Gap),
		BorderColor: cfg.Colors.Border,
		FocusColor:  cfg.Colors.Focus,
		LogLevel:    cfg.Logging.Level,
		Reconcile:   strconv.Itoa(cfg.Daemon.ReconcileIntervalMs),
		LogindLock:  cfg.Daemon.LogindLock,
	}
}

// apply copies the valid fields into cfg. Invalid numbers are left out;
// the form validators keep them from being submitted.
func (f generalFields) apply(cfg *config.Config) {
	if cfg == nil {
		return
	}
	if v, err := strconv.Atoi(f.Tags); err == nil && v >= 1 && v <= wm.MaxTags {
		cfg.Tags = v
	}
	if v, err := strconv.Atoi(f.BorderPx); err == nil && v >= 0 {
		cfg.BorderPx = v
	}
	if v, err := strconv.Atoi(f.Gap); err == nil && v >= 0 {
		cfg.Gap = v
	}
	if _, err := wm.ParseColor(f.BorderColor); err == nil {
		cfg.Colors.Border = f.BorderColor
	}
	if _, err := wm.ParseColor(f.FocusColor); err == nil {
		cfg.Colors.Focus = f.FocusColor
	}
	if f.LogLevel != "" {
		cfg.Logging.Level = f.LogLevel
	}
	if v, err := strconv.Atoi(f.Reconcile); err == nil && v >= 0 {
		cfg.Daemon.ReconcileIntervalMs = v
	}
	cfg.Daemon.LogindLock = f.LogindLock
}

func validateRange(lo, hi int) func(string) error {
	return func(s string) error {
		v, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return fmt.Errorf("must be a number")
		}
		if v < lo || (hi >= lo && v > hi) {
			if hi < lo {
				return fmt.Errorf("must be >= %d", lo)
			}
			return fmt.Errorf("must be between %d and %d", lo, hi)
		}
		return nil
	}
}

func validateColor(s string) error {
	_, err := wm.ParseColor(s)
	return err
}

func logLevelOptions() []huh.Option[string] {
	return []huh.Option[string]{
		huh.NewOption("debug", "debug"),
		huh.NewOption("info", "info"),
		huh.NewOption("warn", "warn"),
		huh.NewOption("error", "error"),
	}
}

// settingsForm builds the form editing f. It is shared with config init.
func settingsForm(f *generalFields, width int) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("tags").
				Title("Tags").
				Description(fmt.Sprintf("Number of tags (1-%d)", wm.MaxTags)).
				Validate(validateRange(1, wm.MaxTags)).
				Value(&f.Tags),

			huh.NewInput().
				Key("border_px").
				Title("Border Width").
				Description("Border width in pixels").
				Validate(validateRange(0, -1)).
				Value(&f.BorderPx),

			huh.NewInput().
				Key("gap").
				Title("Gap").
				Description("Pixels between tiled windows").
				Validate(validateRange(0, -1)).
				Value(&f.Gap),
		),
		huh.NewGroup(
			huh.NewInput().
				Key("colors.border").
				Title("Border Color").
				Description("#rrggbb or #rrggbbaa").
				Validate(validateColor).
				Value(&f.BorderColor),

			huh.NewInput().
				Key("colors.focus").
				Title("Focus Color").
				Description("#rrggbb or #rrggbbaa").
				Validate(validateColor).
				Value(&f.FocusColor),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("logging.level").
				Title("Log Level").
				Options(logLevelOptions()...).
				Value(&f.LogLevel),

			huh.NewInput().
				Key("daemon.reconcile_interval_ms").
				Title("Reconcile Interval (ms)").
				Description("How often the window list is resynced; 0 disables").
				Validate(validateRange(0, -1)).
				Value(&f.Reconcile),

			huh.NewConfirm().
				Key("daemon.logind_lock").
				Title("Lock with logind").
				Description("Follow Lock/Unlock signals of the login session").
				Value(&f.LogindLock),
		),
	).WithWidth(width).WithShowHelp(true).WithShowErrors(true)
}

func (g *GeneralTab) startEditing() {
	cfg := g.cfg
	if cfg == nil {
		cfg = config.DefaultConfig()
		g.cfg = cfg
	}
	g.fields = fieldsFromConfig(cfg)
	g.form = settingsForm(&g.fields, max(g.width-4, 40))
	g.editing = true
}

// View implements tea.Model.
func (g GeneralTab) View() string {
	if g.editing && g.form != nil {
		return g.viewEditing()
	}
	return g.viewDisplay()
}

func (g GeneralTab) viewDisplay() string {
	cfg := g.cfg
	if cfg == nil {
		style := lipgloss.NewStyle().
			Width(g.width).
			Height(g.height).
			Foreground(lipgloss.Color("241")).
			Align(lipgloss.Center, lipgloss.Center)
		return style.Render("No config loaded")
	}

	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("250")).
		Width(22).
		Align(lipgloss.Right).
		PaddingRight(2)

	valueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("15")).
		Bold(true)

	dimStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	row := func(label, value string) string {
		return labelStyle.Render(label) + valueStyle.Render(value)
	}

	keys, _ := cfg.KeyBindings()
	buttons, _ := cfg.MouseBindings()

	lines := []string{
		"",
		row("Tags", strconv.Itoa(cfg.Tags)),
		row("Border Width", strconv.Itoa(cfg.BorderPx)),
		row("Gap", strconv.Itoa(cfg.Gap)),
		"",
		row("Border Color", cfg.Colors.Border),
		row("Focus Color", cfg.Colors.Focus),
		row("Urgent Color", cfg.Colors.Urgent),
		"",
		row("Monitor Rules", strconv.Itoa(len(cfg.MonitorRules))),
		row("Client Rules", strconv.Itoa(len(cfg.ClientRules))),
		row("Key Bindings", strconv.Itoa(len(keys))),
		row("Mouse Bindings", strconv.Itoa(len(buttons))),
		"",
		row("Log Level", cfg.Logging.Level),
		row("Reconcile Interval", displayOrDefault(formatInterval(cfg.Daemon.ReconcileIntervalMs), "(disabled)")),
		row("Lock with logind", strconv.FormatBool(cfg.Daemon.LogindLock)),
		"",
		dimStyle.Render("  Press 'e' to edit settings"),
	}

	contentStyle := lipgloss.NewStyle().
		Width(g.width).
		Height(g.height).
		Padding(1, 2)

	return contentStyle.Render(strings.Join(lines, "\n"))
}

func (g GeneralTab) viewEditing() string {
	header := lipgloss.NewStyle().
		Foreground(lipgloss.Color("62")).
		Bold(true).
		Render("Editing General Settings") +
		lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Render("  (esc to cancel)")

	style := lipgloss.NewStyle().
		Width(g.width).
		Height(g.height).
		Padding(1, 2)

	return style.Render(header + "\n\n" + g.form.View())
}

func formatInterval(ms int) string {
	if ms <= 0 {
		return ""
	}
	return fmt.Sprintf("%dms", ms)
}

func displayOrDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
