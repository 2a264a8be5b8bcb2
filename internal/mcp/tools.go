package mcp

import (
	"context"
	"fmt"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/tagtile/internal/wm"
)

func (s *Server) handleGetStatus(_ context.Context, _ *mcpsdk.CallToolRequest, args GetStatusInput) (*mcpsdk.CallToolResult, GetStatusOutput, error) {
	status, err := s.daemon.GetStatus()
	if err != nil {
		return nil, GetStatusOutput{}, fmt.Errorf("failed to query daemon: %w", err)
	}

	out := GetStatusOutput{
		TagCount:      status.TagCount,
		Locked:        status.Locked,
		UptimeSeconds: status.UptimeSeconds,
		Monitors:      []MonitorInfo{},
		Clients:       []wm.ClientStatus{},
	}
	for _, m := range status.Monitors {
		if args.Monitor != "" && m.Name != args.Monitor {
			continue
		}
		info := MonitorInfo{
			Name:       m.Name,
			Selected:   m.Selected,
			Enabled:    m.Enabled,
			Layout:     m.Layout,
			Mfact:      m.Mfact,
			Nmaster:    m.Nmaster,
			ActiveTags: tagNumbers(m.Active),
			Occupied:   tagNumbers(m.Occupied),
			Urgent:     tagNumbers(m.Urgent),
			Clients:    m.Clients,
		}
		if m.HasFocus {
			info.Title = m.Title
			info.AppID = m.AppID
		}
		out.Monitors = append(out.Monitors, info)
	}
	if args.Monitor != "" && len(out.Monitors) == 0 {
		return nil, GetStatusOutput{}, fmt.Errorf("no monitor named %q", args.Monitor)
	}
	for _, c := range status.Clients {
		if args.Monitor != "" && c.Monitor != args.Monitor {
			continue
		}
		out.Clients = append(out.Clients, c)
	}
	return nil, out, nil
}

func (s *Server) handleViewTags(_ context.Context, _ *mcpsdk.CallToolRequest, args TagsInput) (*mcpsdk.CallToolResult, ActionOutput, error) {
	mask, err := tagMask(args.Tags)
	if err != nil {
		return nil, ActionOutput{}, err
	}
	if args.Toggle {
		return s.run("toggle_view", func() error { return s.daemon.ToggleView(mask) })
	}
	return s.run("view", func() error { return s.daemon.View(mask) })
}

func (s *Server) handleTagClient(_ context.Context, _ *mcpsdk.CallToolRequest, args TagsInput) (*mcpsdk.CallToolResult, ActionOutput, error) {
	mask, err := tagMask(args.Tags)
	if err != nil {
		return nil, ActionOutput{}, err
	}
	if args.Toggle {
		return s.run("toggle_tag", func() error { return s.daemon.ToggleTag(mask) })
	}
	return s.run("tag", func() error { return s.daemon.Tag(mask) })
}

func (s *Server) handleFocusStack(_ context.Context, _ *mcpsdk.CallToolRequest, args FocusStackInput) (*mcpsdk.CallToolResult, ActionOutput, error) {
	var dir int
	switch strings.ToLower(strings.TrimSpace(args.Direction)) {
	case "next", "+1", "1":
		dir = 1
	case "prev", "previous", "-1":
		dir = -1
	default:
		return nil, ActionOutput{}, fmt.Errorf("direction must be next or prev, got %q", args.Direction)
	}
	return s.run("focus_stack", func() error { return s.daemon.FocusStack(dir) })
}

func (s *Server) handleFocusMonitor(_ context.Context, _ *mcpsdk.CallToolRequest, args MonitorDirectionInput) (*mcpsdk.CallToolResult, ActionOutput, error) {
	dir, err := wm.ParseDirection(args.Direction)
	if err != nil {
		return nil, ActionOutput{}, err
	}
	return s.run("focus_monitor", func() error { return s.daemon.FocusMonitor(dir) })
}

func (s *Server) handleTagMonitor(_ context.Context, _ *mcpsdk.CallToolRequest, args MonitorDirectionInput) (*mcpsdk.CallToolResult, ActionOutput, error) {
	dir, err := wm.ParseDirection(args.Direction)
	if err != nil {
		return nil, ActionOutput{}, err
	}
	return s.run("tag_monitor", func() error { return s.daemon.TagMonitor(dir) })
}

func (s *Server) handleSetMfact(_ context.Context, _ *mcpsdk.CallToolRequest, args SetMfactInput) (*mcpsdk.CallToolResult, ActionOutput, error) {
	if args.Value == 0 {
		return nil, ActionOutput{}, fmt.Errorf("value must be non-zero")
	}
	return s.run("set_mfact", func() error { return s.daemon.SetMfact(args.Value) })
}

func (s *Server) handleIncNmaster(_ context.Context, _ *mcpsdk.CallToolRequest, args IncNmasterInput) (*mcpsdk.CallToolResult, ActionOutput, error) {
	return s.run("inc_nmaster", func() error { return s.daemon.IncNmaster(args.Delta) })
}

func (s *Server) handleToggleFullscreen(_ context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, ActionOutput, error) {
	return s.run("toggle_fullscreen", s.daemon.ToggleFullscreen)
}

func (s *Server) handleKillClient(_ context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, ActionOutput, error) {
	return s.run("kill", s.daemon.Kill)
}

func (s *Server) run(command string, fn func() error) (*mcpsdk.CallToolResult, ActionOutput, error) {
	if err := fn(); err != nil {
		return nil, ActionOutput{Command: command}, fmt.Errorf("%s: %w", command, err)
	}
	return nil, ActionOutput{Command: command, OK: true}, nil
}

// tagMask converts 1-based tag numbers into a bit mask.
func tagMask(tags []int) (uint32, error) {
	if len(tags) == 0 {
		return 0, fmt.Errorf("at least one tag is required")
	}
	var mask uint32
	for _, tag := range tags {
		if tag < 1 || tag > wm.MaxTags {
			return 0, fmt.Errorf("tag %d is not between 1 and %d", tag, wm.MaxTags)
		}
		mask |= 1 << uint(tag-1)
	}
	return mask, nil
}

func tagNumbers(mask uint32) []int {
	out := []int{}
	for i := 0; i < 32; i++ {
		if mask&(1<<uint(i)) != 0 {
			out = append(out, i+1)
		}
	}
	return out
}
