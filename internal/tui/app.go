package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/tagtile/internal/config"
	"github.com/1broseidon/tagtile/internal/ipc"
)

const refreshInterval = 2 * time.Second

// daemonClient is the part of the IPC client the dashboard uses.
type daemonClient interface {
	GetStatus() (*ipc.StatusData, error)
	View(mask uint32) error
	Reload() error
}

// statusMsg carries the result of one status poll.
type statusMsg struct {
	status *ipc.StatusData
	err    error
	at     time.Time
}

type tickMsg time.Time

// model is the root bubbletea model for the TUI.
type model struct {
	configPath string
	result     *config.LoadResult
	client     daemonClient

	// Tab navigation
	activeTab Tab

	// Sub-models
	monitorsTab MonitorsTab
	clientsTab  ClientsTab
	generalTab  GeneralTab

	// Save overlay
	originalConfig *config.Config
	saveOverlay    SaveOverlay

	// Daemon state
	status  *ipc.StatusData
	lastErr error
	loading bool
	spinner spinner.Model
	updated time.Time
	now     time.Time

	// Terminal dimensions
	width  int
	height int
}

func newModel(configPath string, client daemonClient) model {
	m := model{
		configPath: configPath,
		client:     client,
		activeTab:  TabMonitors,
		loading:    true,
		spinner:    spinner.New(spinner.WithSpinner(spinner.Dot)),
	}

	m.loadConfig()

	// Snapshot original config for diff preview on save
	var cfg *config.Config
	if m.result != nil {
		cfg = m.result.Config
		m.originalConfig = cloneConfig(cfg)
	}

	m.monitorsTab = NewMonitorsTab()
	m.clientsTab = NewClientsTab()
	m.generalTab = NewGeneralTab(cfg)
	return m
}

func (m *model) loadConfig() {
	var res *config.LoadResult
	var err error

	if m.configPath == "" {
		res, err = config.LoadWithSources()
	} else {
		res, err = config.LoadFromPath(m.configPath)
	}

	if err != nil {
		return
	}
	m.result = res
}

func fetchStatus(client daemonClient) tea.Cmd {
	return func() tea.Msg {
		status, err := client.GetStatus()
		return statusMsg{status: status, err: err, at: time.Now()}
	}
}

func viewTag(client daemonClient, tag int) tea.Cmd {
	return func() tea.Msg {
		if err := client.View(1 << uint(tag-1)); err != nil {
			return statusMsg{err: err, at: time.Now()}
		}
		status, err := client.GetStatus()
		return statusMsg{status: status, err: err, at: time.Now()}
	}
}

func scheduleRefresh() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// contentHeight returns the height available for tab content.
func (m model) contentHeight() int {
	// status bar (1) + tab bar (2 with margin) + help bar (1)
	return max(m.height-4, 1)
}

func (m *model) applyStatus(msg statusMsg) {
	m.loading = false
	m.now = msg.at
	if msg.err != nil {
		m.status = nil
		m.lastErr = msg.err
	} else {
		m.status = msg.status
		m.lastErr = nil
		m.updated = msg.at
	}
	m.monitorsTab.SetStatus(m.status)
	m.clientsTab.SetStatus(m.status)
}

func (m *model) resize(width, height int) {
	m.width = width
	m.height = height
	subMsg := tea.WindowSizeMsg{Width: m.width, Height: m.contentHeight()}
	m.monitorsTab, _ = m.monitorsTab.Update(subMsg)
	m.clientsTab, _ = m.clientsTab.Update(subMsg)
	m.generalTab, _ = m.generalTab.Update(subMsg)
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, fetchStatus(m.client))
}

// Update implements tea.Model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Polling continues underneath overlays and forms.
	switch msg := msg.(type) {
	case statusMsg:
		m.applyStatus(msg)
		return m, scheduleRefresh()
	case tickMsg:
		m.now = time.Time(msg)
		return m, fetchStatus(m.client)
	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	// Save overlay captures all input when active
	if m.saveOverlay.Active() {
		switch msg := msg.(type) {
		case tea.KeyMsg:
			if msg.String() == "ctrl+c" {
				return m, tea.Quit
			}
			prevPhase := m.saveOverlay.phase
			m.saveOverlay = m.saveOverlay.Update(msg, m.result.Config, m.configPath, m.client, m.status != nil)
			// After successful save, update the original snapshot
			if prevPhase == savePreview && m.saveOverlay.SaveSucceeded() {
				m.originalConfig = cloneConfig(m.result.Config)
			}
		case tea.WindowSizeMsg:
			m.resize(msg.Width, msg.Height)
		}
		return m, nil
	}

	// ctrl+s triggers save overlay from any context (including form editing)
	if km, ok := msg.(tea.KeyMsg); ok && km.String() == "ctrl+s" {
		if m.result != nil && m.result.Config != nil {
			m.saveOverlay.Show(m.originalConfig, m.result.Config)
		}
		return m, nil
	}

	// The settings form consumes keys; only ctrl+c escapes to quit.
	if m.activeTab == TabGeneral && m.generalTab.editing {
		switch msg := msg.(type) {
		case tea.KeyMsg:
			if msg.String() == "ctrl+c" {
				return m, tea.Quit
			}
		case tea.WindowSizeMsg:
			m.resize(msg.Width, msg.Height)
			return m, nil
		}
		var cmd tea.Cmd
		m.generalTab, cmd = m.generalTab.Update(msg)
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch key := msg.String(); key {
		case "ctrl+c", "q":
			return m, tea.Quit

		case "tab":
			m.activeTab = (m.activeTab + 1) % tabCount
			return m, nil

		case "shift+tab":
			m.activeTab = (m.activeTab - 1 + tabCount) % tabCount
			return m, nil

		case "m":
			m.activeTab = TabMonitors
			return m, nil
		case "c":
			m.activeTab = TabClients
			return m, nil
		case "g":
			m.activeTab = TabGeneral
			return m, nil

		case "r":
			return m, fetchStatus(m.client)

		case "1", "2", "3", "4", "5", "6", "7", "8", "9":
			if m.activeTab == TabGeneral || m.status == nil {
				break
			}
			tag := int(key[0] - '0')
			if tag > m.status.TagCount {
				return m, nil
			}
			return m, viewTag(m.client, tag)
		}

	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil
	}

	// Delegate to active tab's sub-model
	var cmd tea.Cmd
	switch m.activeTab {
	case TabMonitors:
		m.monitorsTab, cmd = m.monitorsTab.Update(msg)
	case TabClients:
		m.clientsTab, cmd = m.clientsTab.Update(msg)
	case TabGeneral:
		m.generalTab, cmd = m.generalTab.Update(msg)
	}
	return m, cmd
}

// View implements tea.Model.
func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	loading := ""
	if m.loading {
		loading = m.spinner.View()
	}
	statusBar := renderStatusBar(m.status, loading, m.updated, m.now, m.width)
	tabBar := renderTabBar(m.activeTab, m.width)
	helpBar := renderHelpBar(m.activeTab, m.width)

	usedHeight := lipgloss.Height(statusBar) + lipgloss.Height(tabBar) + lipgloss.Height(helpBar)
	contentHeight := max(m.height-usedHeight, 1)

	var content string
	if m.saveOverlay.Active() {
		content = m.saveOverlay.View(m.width, contentHeight)
	} else {
		switch m.activeTab {
		case TabMonitors:
			content = m.monitorsTab.View()
		case TabClients:
			content = m.clientsTab.View()
		case TabGeneral:
			content = m.generalTab.View()
		}
	}

	if m.lastErr != nil && m.activeTab != TabGeneral {
		errLine := lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Padding(0, 1).
			Render("error: " + m.lastErr.Error())
		content = lipgloss.JoinVertical(lipgloss.Left, errLine, content)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		statusBar,
		tabBar,
		content,
		helpBar,
	)
}
