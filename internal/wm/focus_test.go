package wm

import (
	"testing"

	"github.com/1broseidon/tagtile/internal/tiling"
)

func TestFocus_MovesClientToTop(t *testing.T) {
	s, rt := newTestServer(t)
	m := addOutput(t, s, 1, "DP-1", 1280, 800)
	a := mapClient(t, s, rt, 10)
	b := mapClient(t, s, rt, 11)

	if got := s.topVisible(m); got != b {
		t.Fatalf("topVisible = %v, want newest client", got)
	}
	if err := s.Focus(a.surface); err != nil {
		t.Fatalf("Focus: %v", err)
	}
	if got := s.topVisible(m); got != a {
		t.Fatalf("topVisible after focus = %v, want a", got)
	}
	if rt.keyboard != a.surface {
		t.Fatalf("keyboard on %d, want %d", rt.keyboard, a.surface)
	}
	if !rt.activated[a.surface] || rt.activated[b.surface] {
		t.Fatalf("activation: a=%v b=%v", rt.activated[a.surface], rt.activated[b.surface])
	}
	if rt.borders[a.surface] != s.settings.FocusColor {
		t.Fatalf("focused border = %v", rt.borders[a.surface])
	}
	if rt.borders[b.surface] != s.settings.BorderColor {
		t.Fatalf("unfocused border = %v", rt.borders[b.surface])
	}
}

func TestFocus_ClearsUrgency(t *testing.T) {
	s, rt := newTestServer(t)
	addOutput(t, s, 1, "DP-1", 1280, 800)
	a := mapClient(t, s, rt, 10)
	mapClient(t, s, rt, 11)

	s.ActivateRequest(a.surface)
	if !a.urgent || rt.borders[a.surface] != s.settings.UrgentColor {
		t.Fatalf("activate request from background client should mark it urgent")
	}
	if err := s.Focus(a.surface); err != nil {
		t.Fatalf("Focus: %v", err)
	}
	if a.urgent {
		t.Fatalf("focus should clear urgency")
	}
}

func TestFocus_KeepsPreviousActivatedWhenNewClientWantsFocus(t *testing.T) {
	s, rt := newTestServer(t)
	addOutput(t, s, 1, "DP-1", 1280, 800)
	a := mapClient(t, s, rt, 10)
	rt.wantFocus[11] = true
	b := mapClient(t, s, rt, 11)

	if rt.keyboard != b.surface {
		t.Fatalf("keyboard on %d, want %d", rt.keyboard, b.surface)
	}
	if !rt.activated[a.surface] {
		t.Fatalf("previous client should stay activated")
	}
}

func TestFocus_OverlayKeepsKeyboard(t *testing.T) {
	tests := []struct {
		name string
		// unmapped leaves the overlay as exclusive holder but off screen.
		unmapped   bool
		wantsFocus bool
		wantKB     SurfaceID
	}{
		{name: "overlay on screen", wantKB: 200},
		{name: "exclusive holder still wants focus", unmapped: true, wantsFocus: true, wantKB: 200},
		{name: "exclusive holder gave up focus", unmapped: true, wantKB: 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, rt := newTestServer(t)
			m := addOutput(t, s, 1, "DP-1", 1280, 800)
			a := mapClient(t, s, rt, 10)
			mapClient(t, s, rt, 11)

			st := LayerState{
				Layer:               ShellOverlay,
				KeyboardInteractive: true,
				Placement:           tiling.LayerState{Width: 600, Height: 400},
			}
			s.NewLayerSurface(200, 1, st)
			rt.wantFocus[200] = tt.wantsFocus
			if tt.unmapped {
				s.LayerCommit(200, st, false, true)
			}
			if s.exclusive != 200 || rt.keyboard != 200 {
				t.Fatalf("overlay should hold the keyboard: exclusive=%d keyboard=%d", s.exclusive, rt.keyboard)
			}

			if err := s.Focus(a.surface); err != nil {
				t.Fatalf("Focus: %v", err)
			}
			if rt.keyboard != tt.wantKB {
				t.Fatalf("keyboard on %d, want %d", rt.keyboard, tt.wantKB)
			}
			if s.topVisible(m) != a {
				t.Fatalf("focused client should move to the top of the stack")
			}
			if tt.wantKB == 200 && rt.activated[a.surface] {
				t.Fatalf("client activated while the overlay holds the keyboard")
			}
		})
	}
}

func TestFocus_UnknownSurface(t *testing.T) {
	s, _ := newTestServer(t)
	addOutput(t, s, 1, "DP-1", 1280, 800)
	if err := s.Focus(99); err != ErrNoClient {
		t.Fatalf("Focus(unknown) = %v, want ErrNoClient", err)
	}
}

func TestFocusStack_Wraps(t *testing.T) {
	s, rt := newTestServer(t)
	addOutput(t, s, 1, "DP-1", 1280, 800)
	c1 := mapClient(t, s, rt, 10)
	c2 := mapClient(t, s, rt, 11)
	c3 := mapClient(t, s, rt, 12)
	// Tiling order is newest first: c3, c2, c1.

	steps := []struct {
		dir  int
		want *Client
	}{
		{dir: 1, want: c2},
		{dir: 1, want: c1},
		{dir: 1, want: c3},
		{dir: -1, want: c1},
		{dir: -1, want: c2},
	}
	for i, step := range steps {
		if err := s.FocusStack(step.dir); err != nil {
			t.Fatalf("step %d: FocusStack: %v", i, err)
		}
		if s.kbFocus != step.want.surface {
			t.Fatalf("step %d: focus on %d, want %d", i, s.kbFocus, step.want.surface)
		}
	}
}

func TestFocusStack_SkipsHiddenClients(t *testing.T) {
	s, rt := newTestServer(t)
	addOutput(t, s, 1, "DP-1", 1280, 800)
	c1 := mapClient(t, s, rt, 10)
	c2 := mapClient(t, s, rt, 11)
	mapClient(t, s, rt, 12)
	c2.tags = 1 << 3

	if err := s.FocusStack(1); err != nil {
		t.Fatalf("FocusStack: %v", err)
	}
	if s.kbFocus != c1.surface {
		t.Fatalf("focus on %d, want %d", s.kbFocus, c1.surface)
	}
}

func TestFocusStack_NoClient(t *testing.T) {
	s, _ := newTestServer(t)
	addOutput(t, s, 1, "DP-1", 1280, 800)
	if err := s.FocusStack(1); err != ErrNoClient {
		t.Fatalf("FocusStack = %v, want ErrNoClient", err)
	}
}

func TestKillClient(t *testing.T) {
	s, rt := newTestServer(t)
	addOutput(t, s, 1, "DP-1", 1280, 800)
	c := mapClient(t, s, rt, 10)

	if err := s.KillClient(); err != nil {
		t.Fatalf("KillClient: %v", err)
	}
	if len(rt.closed) != 1 || rt.closed[0] != c.surface {
		t.Fatalf("closed = %v", rt.closed)
	}
}

func TestUnmap_RefocusesNextClient(t *testing.T) {
	s, rt := newTestServer(t)
	m := addOutput(t, s, 1, "DP-1", 1280, 800)
	a := mapClient(t, s, rt, 10)
	b := mapClient(t, s, rt, 11)

	s.Unmap(b.surface)
	if got := s.topVisible(m); got != a {
		t.Fatalf("topVisible = %v, want a", got)
	}
	if rt.keyboard != a.surface {
		t.Fatalf("keyboard on %d, want %d", rt.keyboard, a.surface)
	}
	if a.geom.Width != 1276 {
		t.Fatalf("remaining client should be re-tiled, got %+v", a.geom)
	}
}
