package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/tagtile/internal/ipc"
	"github.com/1broseidon/tagtile/internal/wm"
)

const (
	ServerName    = "tagtile"
	ServerVersion = "0.1.0"
)

// Daemon is the subset of the IPC client the tools drive.
// *ipc.Client satisfies it.
type Daemon interface {
	GetStatus() (*ipc.StatusData, error)
	View(mask uint32) error
	ToggleView(mask uint32) error
	Tag(mask uint32) error
	ToggleTag(mask uint32) error
	FocusStack(dir int) error
	FocusMonitor(dir wm.Direction) error
	TagMonitor(dir wm.Direction) error
	SetMfact(value float64) error
	IncNmaster(delta int) error
	ToggleFullscreen() error
	Kill() error
}

var _ Daemon = (*ipc.Client)(nil)

// Server is the MCP server exposing the running tagtile daemon.
type Server struct {
	mcpServer *mcpsdk.Server
	daemon    Daemon
}

// NewServer creates a new MCP server that forwards tool calls to d.
func NewServer(d Daemon) *Server {
	s := &Server{daemon: d}
	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)

	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

var (
	getStatusTool = &mcpsdk.Tool{
		Name:        "get_status",
		Description: "Report the tiling state: every monitor with its active, occupied and urgent tags, layout parameters and focused client, plus every managed client with its tags and geometry.",
	}
	viewTagsTool = &mcpsdk.Tool{
		Name:        "view_tags",
		Description: "Show the given tags (1-based tag numbers) on the selected monitor. With toggle set, flip their visibility instead of replacing the view.",
	}
	tagClientTool = &mcpsdk.Tool{
		Name:        "tag_client",
		Description: "Assign the focused client to the given tags (1-based tag numbers). With toggle set, add or remove the tags instead of replacing them. A client always keeps at least one tag.",
	}
	focusStackTool = &mcpsdk.Tool{
		Name:        "focus_stack",
		Description: "Move keyboard focus to the next or previous visible client on the selected monitor, wrapping around.",
	}
	focusMonitorTool = &mcpsdk.Tool{
		Name:        "focus_monitor",
		Description: "Select the neighbouring monitor in a direction (left, right, up, down) and focus its top client.",
	}
	tagMonitorTool = &mcpsdk.Tool{
		Name:        "tag_monitor",
		Description: "Send the focused client to the neighbouring monitor in a direction (left, right, up, down).",
	}
	setMfactTool = &mcpsdk.Tool{
		Name:        "set_mfact",
		Description: "Change the master area ratio of the selected monitor. Values below 1.0 are added to the current ratio; values of 1.0 or more set it to value-1.0. The result must stay between 0.1 and 0.9.",
	}
	incNmasterTool = &mcpsdk.Tool{
		Name:        "inc_nmaster",
		Description: "Change how many clients share the master area of the selected monitor. The count never drops below zero.",
	}
	toggleFullscreenTool = &mcpsdk.Tool{
		Name:        "toggle_fullscreen",
		Description: "Toggle fullscreen for the focused client.",
	}
	killClientTool = &mcpsdk.Tool{
		Name:        "kill_client",
		Description: "Ask the focused client to close.",
	}
)

// Tools lists the tools the server registers, in registration order.
func Tools() []*mcpsdk.Tool {
	return []*mcpsdk.Tool{
		getStatusTool,
		viewTagsTool,
		tagClientTool,
		focusStackTool,
		focusMonitorTool,
		tagMonitorTool,
		setMfactTool,
		incNmasterTool,
		toggleFullscreenTool,
		killClientTool,
	}
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, getStatusTool, s.handleGetStatus)
	mcpsdk.AddTool(s.mcpServer, viewTagsTool, s.handleViewTags)
	mcpsdk.AddTool(s.mcpServer, tagClientTool, s.handleTagClient)
	mcpsdk.AddTool(s.mcpServer, focusStackTool, s.handleFocusStack)
	mcpsdk.AddTool(s.mcpServer, focusMonitorTool, s.handleFocusMonitor)
	mcpsdk.AddTool(s.mcpServer, tagMonitorTool, s.handleTagMonitor)
	mcpsdk.AddTool(s.mcpServer, setMfactTool, s.handleSetMfact)
	mcpsdk.AddTool(s.mcpServer, incNmasterTool, s.handleIncNmaster)
	mcpsdk.AddTool(s.mcpServer, toggleFullscreenTool, s.handleToggleFullscreen)
	mcpsdk.AddTool(s.mcpServer, killClientTool, s.handleKillClient)
}
