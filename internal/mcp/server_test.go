package mcp

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/1broseidon/tagtile/internal/ipc"
	"github.com/1broseidon/tagtile/internal/wm"
)

type fakeDaemon struct {
	status *ipc.StatusData
	err    error
	calls  []string
}

func (f *fakeDaemon) record(call string) error {
	f.calls = append(f.calls, call)
	return f.err
}

func (f *fakeDaemon) GetStatus() (*ipc.StatusData, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.status, nil
}

func (f *fakeDaemon) View(mask uint32) error       { return f.record("view " + maskString(mask)) }
func (f *fakeDaemon) ToggleView(mask uint32) error { return f.record("toggle_view " + maskString(mask)) }
func (f *fakeDaemon) Tag(mask uint32) error        { return f.record("tag " + maskString(mask)) }
func (f *fakeDaemon) ToggleTag(mask uint32) error  { return f.record("toggle_tag " + maskString(mask)) }
func (f *fakeDaemon) FocusStack(dir int) error {
	if dir > 0 {
		return f.record("focus_stack next")
	}
	return f.record("focus_stack prev")
}
func (f *fakeDaemon) FocusMonitor(dir wm.Direction) error { return f.record("focus_monitor " + dir.String()) }
func (f *fakeDaemon) TagMonitor(dir wm.Direction) error   { return f.record("tag_monitor " + dir.String()) }
func (f *fakeDaemon) SetMfact(value float64) error        { return f.record("set_mfact") }
func (f *fakeDaemon) IncNmaster(delta int) error          { return f.record("inc_nmaster") }
func (f *fakeDaemon) ToggleFullscreen() error             { return f.record("toggle_fullscreen") }
func (f *fakeDaemon) Kill() error                         { return f.record("kill") }

func maskString(mask uint32) string {
	var parts []string
	for _, n := range tagNumbers(mask) {
		parts = append(parts, string(rune('0'+n)))
	}
	return strings.Join(parts, ",")
}

func TestTagMask(t *testing.T) {
	tests := []struct {
		tags    []int
		want    uint32
		wantErr bool
	}{
		{tags: []int{1}, want: 0x1},
		{tags: []int{2, 3}, want: 0x6},
		{tags: []int{3, 3}, want: 0x4},
		{tags: []int{31}, want: 1 << 30},
		{tags: nil, wantErr: true},
		{tags: []int{0}, wantErr: true},
		{tags: []int{32}, wantErr: true},
	}
	for _, tt := range tests {
		got, err := tagMask(tt.tags)
		if (err != nil) != tt.wantErr {
			t.Fatalf("tagMask(%v) error = %v, wantErr %v", tt.tags, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("tagMask(%v) = %#x, want %#x", tt.tags, got, tt.want)
		}
	}
}

func TestTagNumbers(t *testing.T) {
	if got := tagNumbers(0x105); !reflect.DeepEqual(got, []int{1, 3, 9}) {
		t.Fatalf("tagNumbers(0x105) = %v", got)
	}
	if got := tagNumbers(0); got == nil || len(got) != 0 {
		t.Fatalf("tagNumbers(0) = %#v, want empty non-nil slice", got)
	}
}

func TestHandleGetStatus(t *testing.T) {
	d := &fakeDaemon{status: &ipc.StatusData{
		Status: wm.Status{
			TagCount: 9,
			Monitors: []wm.MonitorStatus{
				{Name: "DP-1", Selected: true, Enabled: true, Layout: "[]=", Mfact: 0.55, Nmaster: 1, Active: 0x1, Occupied: 0x3, HasFocus: true, Title: "vim", AppID: "foot", Clients: 2},
				{Name: "HDMI-A-1", Enabled: true, Layout: "[]=", Mfact: 0.5, Active: 0x2},
			},
			Clients: []wm.ClientStatus{
				{Surface: 10, Monitor: "DP-1", Title: "vim", Tags: 0x1, Focused: true},
				{Surface: 11, Monitor: "DP-1", Title: "top", Tags: 0x2},
			},
		},
		UptimeSeconds: 42,
		DaemonRunning: true,
	}}
	s := NewServer(d)

	_, out, err := s.handleGetStatus(context.Background(), nil, GetStatusInput{})
	if err != nil {
		t.Fatalf("handleGetStatus: %v", err)
	}
	if out.TagCount != 9 || out.UptimeSeconds != 42 || len(out.Monitors) != 2 || len(out.Clients) != 2 {
		t.Fatalf("unexpected output: %+v", out)
	}
	dp := out.Monitors[0]
	if !reflect.DeepEqual(dp.ActiveTags, []int{1}) || !reflect.DeepEqual(dp.Occupied, []int{1, 2}) {
		t.Fatalf("DP-1 tags = %v / %v", dp.ActiveTags, dp.Occupied)
	}
	if dp.Title != "vim" || dp.AppID != "foot" {
		t.Fatalf("DP-1 focus = %q / %q", dp.Title, dp.AppID)
	}
	if out.Monitors[1].Title != "" {
		t.Fatalf("monitor without focus reported a title")
	}

	_, out, err = s.handleGetStatus(context.Background(), nil, GetStatusInput{Monitor: "HDMI-A-1"})
	if err != nil {
		t.Fatalf("handleGetStatus(HDMI-A-1): %v", err)
	}
	if len(out.Monitors) != 1 || len(out.Clients) != 0 {
		t.Fatalf("filtered output = %+v", out)
	}

	if _, _, err := s.handleGetStatus(context.Background(), nil, GetStatusInput{Monitor: "VGA-1"}); err == nil {
		t.Fatalf("unknown monitor should fail")
	}

	d.err = errors.New("connection refused")
	if _, _, err := s.handleGetStatus(context.Background(), nil, GetStatusInput{}); err == nil || !strings.Contains(err.Error(), "connection refused") {
		t.Fatalf("daemon error not surfaced: %v", err)
	}
}

func TestActionTools(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name string
		call func(s *Server) (ActionOutput, error)
		want string
	}{
		{name: "view", call: func(s *Server) (ActionOutput, error) {
			_, out, err := s.handleViewTags(ctx, nil, TagsInput{Tags: []int{2}})
			return out, err
		}, want: "view 2"},
		{name: "toggle view", call: func(s *Server) (ActionOutput, error) {
			_, out, err := s.handleViewTags(ctx, nil, TagsInput{Tags: []int{1, 3}, Toggle: true})
			return out, err
		}, want: "toggle_view 1,3"},
		{name: "tag", call: func(s *Server) (ActionOutput, error) {
			_, out, err := s.handleTagClient(ctx, nil, TagsInput{Tags: []int{4}})
			return out, err
		}, want: "tag 4"},
		{name: "toggle tag", call: func(s *Server) (ActionOutput, error) {
			_, out, err := s.handleTagClient(ctx, nil, TagsInput{Tags: []int{5}, Toggle: true})
			return out, err
		}, want: "toggle_tag 5"},
		{name: "focus stack", call: func(s *Server) (ActionOutput, error) {
			_, out, err := s.handleFocusStack(ctx, nil, FocusStackInput{Direction: "Prev"})
			return out, err
		}, want: "focus_stack prev"},
		{name: "focus monitor", call: func(s *Server) (ActionOutput, error) {
			_, out, err := s.handleFocusMonitor(ctx, nil, MonitorDirectionInput{Direction: "right"})
			return out, err
		}, want: "focus_monitor right"},
		{name: "tag monitor", call: func(s *Server) (ActionOutput, error) {
			_, out, err := s.handleTagMonitor(ctx, nil, MonitorDirectionInput{Direction: "left"})
			return out, err
		}, want: "tag_monitor left"},
		{name: "mfact", call: func(s *Server) (ActionOutput, error) {
			_, out, err := s.handleSetMfact(ctx, nil, SetMfactInput{Value: 0.05})
			return out, err
		}, want: "set_mfact"},
		{name: "nmaster", call: func(s *Server) (ActionOutput, error) {
			_, out, err := s.handleIncNmaster(ctx, nil, IncNmasterInput{Delta: 1})
			return out, err
		}, want: "inc_nmaster"},
		{name: "fullscreen", call: func(s *Server) (ActionOutput, error) {
			_, out, err := s.handleToggleFullscreen(ctx, nil, EmptyInput{})
			return out, err
		}, want: "toggle_fullscreen"},
		{name: "kill", call: func(s *Server) (ActionOutput, error) {
			_, out, err := s.handleKillClient(ctx, nil, EmptyInput{})
			return out, err
		}, want: "kill"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &fakeDaemon{}
			out, err := tt.call(NewServer(d))
			if err != nil {
				t.Fatalf("call failed: %v", err)
			}
			if !out.OK {
				t.Fatalf("output not ok: %+v", out)
			}
			if len(d.calls) != 1 || d.calls[0] != tt.want {
				t.Fatalf("calls = %v, want [%s]", d.calls, tt.want)
			}
		})
	}
}

func TestActionTools_InvalidInput(t *testing.T) {
	ctx := context.Background()
	d := &fakeDaemon{}
	s := NewServer(d)

	if _, _, err := s.handleViewTags(ctx, nil, TagsInput{}); err == nil {
		t.Fatalf("view_tags without tags should fail")
	}
	if _, _, err := s.handleFocusStack(ctx, nil, FocusStackInput{Direction: "sideways"}); err == nil {
		t.Fatalf("focus_stack with a bad direction should fail")
	}
	if _, _, err := s.handleFocusMonitor(ctx, nil, MonitorDirectionInput{Direction: "north"}); err == nil {
		t.Fatalf("focus_monitor with a bad direction should fail")
	}
	if _, _, err := s.handleSetMfact(ctx, nil, SetMfactInput{}); err == nil {
		t.Fatalf("set_mfact with zero should fail")
	}
	if len(d.calls) != 0 {
		t.Fatalf("invalid input reached the daemon: %v", d.calls)
	}

	d.err = errors.New("no monitor")
	_, out, err := s.handleKillClient(ctx, nil, EmptyInput{})
	if err == nil || out.OK || !strings.Contains(err.Error(), "kill") {
		t.Fatalf("daemon failure = %+v, %v", out, err)
	}
}

func TestTools_UniqueNamesWithDescriptions(t *testing.T) {
	tools := Tools()
	if len(tools) != 10 {
		t.Fatalf("Tools() returned %d tools, want 10", len(tools))
	}
	seen := make(map[string]bool)
	for _, tool := range tools {
		if seen[tool.Name] {
			t.Fatalf("duplicate tool name %q", tool.Name)
		}
		seen[tool.Name] = true
		if strings.TrimSpace(tool.Description) == "" {
			t.Fatalf("tool %q has no description", tool.Name)
		}
	}
}
