package ipc

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/1broseidon/tagtile/internal/wm"
)

type fakeController struct {
	mu        sync.Mutex
	commands  []wm.Command
	locked    bool
	reloads   int
	reloadErr error
	status    wm.Status
}

func (f *fakeController) Status(ctx context.Context) (wm.Status, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status, nil
}

func (f *fakeController) Dispatch(ctx context.Context, cmd wm.Command) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.commands = append(f.commands, cmd)
	if cmd.Kind == wm.CmdSetMfact && cmd.Float > 1.9 {
		return errors.New("mfact out of range")
	}
	return nil
}

func (f *fakeController) Lock(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.locked {
		return errors.New("already locked")
	}
	f.locked = true
	return nil
}

func (f *fakeController) Unlock(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.locked = false
	return nil
}

func (f *fakeController) Reload(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reloads++
	return f.reloadErr
}

func startServer(t *testing.T, ctrl Controller) (*Server, *Client) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tagtile.sock")
	srv, err := NewServer(path, ctrl)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	if err := srv.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(srv.Stop)
	return srv, NewClientWithPath(path)
}

func TestServer_SocketPermissions(t *testing.T) {
	srv, client := startServer(t, &fakeController{})
	info, err := os.Stat(srv.SocketPath())
	if err != nil {
		t.Fatalf("stat socket: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Fatalf("socket mode = %o, want 600", perm)
	}
	if err := client.Ping(); err != nil {
		t.Fatalf("ping: %v", err)
	}
}

func TestClient_CommandsReachController(t *testing.T) {
	ctrl := &fakeController{}
	_, client := startServer(t, ctrl)

	steps := []struct {
		name string
		run  func() error
		want wm.Command
	}{
		{"view", func() error { return client.View(1 << 2) }, wm.Command{Kind: wm.CmdView, Tags: 1 << 2}},
		{"view_prev", client.ViewPrevious, wm.Command{Kind: wm.CmdViewPrevious}},
		{"toggle_view", func() error { return client.ToggleView(3) }, wm.Command{Kind: wm.CmdToggleView, Tags: 3}},
		{"tag", func() error { return client.Tag(1 << 8) }, wm.Command{Kind: wm.CmdTag, Tags: 1 << 8}},
		{"toggle_tag", func() error { return client.ToggleTag(2) }, wm.Command{Kind: wm.CmdToggleTag, Tags: 2}},
		{"focus_stack", func() error { return client.FocusStack(-1) }, wm.Command{Kind: wm.CmdFocusStack, Int: -1}},
		{"inc_nmaster", func() error { return client.IncNmaster(2) }, wm.Command{Kind: wm.CmdIncNmaster, Int: 2}},
		{"set_mfact", func() error { return client.SetMfact(0.05) }, wm.Command{Kind: wm.CmdSetMfact, Float: 0.05}},
		{"fullscreen", client.ToggleFullscreen, wm.Command{Kind: wm.CmdToggleFullscreen}},
		{"floating", client.ToggleFloating, wm.Command{Kind: wm.CmdToggleFloating}},
		{"kill", client.Kill, wm.Command{Kind: wm.CmdKill}},
		{"focus_monitor", func() error { return client.FocusMonitor(wm.DirLeft) }, wm.Command{Kind: wm.CmdFocusMonitor, Dir: wm.DirLeft}},
		{"tag_monitor", func() error { return client.TagMonitor(wm.DirDown) }, wm.Command{Kind: wm.CmdTagMonitor, Dir: wm.DirDown}},
		{"dispatch", func() error { return client.Dispatch("view 9") }, wm.Command{Kind: wm.CmdView, Tags: 1 << 8}},
	}
	for i, step := range steps {
		if err := step.run(); err != nil {
			t.Fatalf("%s: %v", step.name, err)
		}
		ctrl.mu.Lock()
		got := ctrl.commands[i]
		ctrl.mu.Unlock()
		if got != step.want {
			t.Fatalf("%s: controller got %+v, want %+v", step.name, got, step.want)
		}
	}
}

func TestClient_ErrorsAreReported(t *testing.T) {
	ctrl := &fakeController{reloadErr: errors.New("bad config")}
	_, client := startServer(t, ctrl)

	if err := client.SetMfact(2.0); err == nil || !strings.Contains(err.Error(), "mfact out of range") {
		t.Fatalf("expected controller error, got %v", err)
	}
	if err := client.Dispatch("explode"); err == nil || !strings.Contains(err.Error(), "unknown command") {
		t.Fatalf("expected unknown command error, got %v", err)
	}
	if err := client.Reload(); err == nil || !strings.Contains(err.Error(), "bad config") {
		t.Fatalf("expected reload error, got %v", err)
	}
	ctrl.mu.Lock()
	defer ctrl.mu.Unlock()
	if ctrl.reloads != 1 {
		t.Fatalf("expected one reload, got %d", ctrl.reloads)
	}
}

func TestClient_LockUnlock(t *testing.T) {
	ctrl := &fakeController{}
	_, client := startServer(t, ctrl)

	if err := client.Lock(); err != nil {
		t.Fatalf("lock: %v", err)
	}
	if err := client.Lock(); err == nil {
		t.Fatalf("second lock should fail")
	}
	if err := client.Unlock(); err != nil {
		t.Fatalf("unlock: %v", err)
	}
	ctrl.mu.Lock()
	defer ctrl.mu.Unlock()
	if ctrl.locked {
		t.Fatalf("controller still locked")
	}
}

func TestClient_GetStatus(t *testing.T) {
	ctrl := &fakeController{status: wm.Status{
		TagCount: 9,
		Cursor:   "normal",
		Monitors: []wm.MonitorStatus{{Name: "DP-1", Selected: true, Active: 1, Layout: "[]="}},
	}}
	_, client := startServer(t, ctrl)

	st, err := client.GetStatus()
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !st.DaemonRunning || st.TagCount != 9 || len(st.Monitors) != 1 || st.Monitors[0].Name != "DP-1" {
		t.Fatalf("status = %+v", st)
	}
}

func TestServer_RawProtocol(t *testing.T) {
	srv, _ := startServer(t, &fakeController{})

	tests := []struct {
		name      string
		line      string
		wantOK    bool
		wantError string
	}{
		{name: "ping", line: `{"command":"PING"}`, wantOK: true},
		{name: "garbage", line: `not json`, wantError: "Invalid request"},
		{name: "unknown", line: `{"command":"EXPLODE"}`, wantError: "EXPLODE"},
		{name: "missing payload", line: `{"command":"VIEW"}`, wantError: "requires a payload"},
		{name: "bad direction", line: `{"command":"FOCUS_MONITOR","payload":{"dir":"sideways"}}`, wantError: "sideways"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn, err := net.Dial("unix", srv.SocketPath())
			if err != nil {
				t.Fatalf("dial: %v", err)
			}
			defer conn.Close()
			if _, err := conn.Write([]byte(tt.line + "\n")); err != nil {
				t.Fatalf("write: %v", err)
			}
			var resp Response
			if err := json.NewDecoder(conn).Decode(&resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if tt.wantOK {
				if resp.Status != StatusOK {
					t.Fatalf("expected OK, got %+v", resp)
				}
				return
			}
			if resp.Status != StatusError || !strings.Contains(resp.Error, tt.wantError) {
				t.Fatalf("expected error containing %q, got %+v", tt.wantError, resp)
			}
		})
	}
}

func TestClient_NoDaemon(t *testing.T) {
	client := NewClientWithPath(filepath.Join(t.TempDir(), "absent.sock"))
	if err := client.Ping(); err == nil || !strings.Contains(err.Error(), "is the daemon running") {
		t.Fatalf("expected connection error, got %v", err)
	}
}
