package wm

import (
	"math"
	"testing"

	"github.com/1broseidon/tagtile/internal/tiling"
)

func TestTile_TwoClientScenario(t *testing.T) {
	s, rt := newTestServer(t)
	m := addOutput(t, s, 1, "DP-1", 1280, 800)
	older := mapClient(t, s, rt, 10)
	newer := mapClient(t, s, rt, 11)

	if m.usable != (tiling.Rect{Width: 1280, Height: 800}) {
		t.Fatalf("usable = %+v", m.usable)
	}

	wantMaster := tiling.Rect{X: 4, Y: 4, Width: 700, Height: 792}
	wantStack := tiling.Rect{X: 708, Y: 4, Width: 568, Height: 792}
	if newer.geom != wantMaster {
		t.Errorf("master geom = %+v, want %+v", newer.geom, wantMaster)
	}
	if older.geom != wantStack {
		t.Errorf("stack geom = %+v, want %+v", older.geom, wantStack)
	}
	if rt.configured[newer.surface] != wantMaster {
		t.Errorf("configured master = %+v", rt.configured[newer.surface])
	}
}

func TestTile_Idempotent(t *testing.T) {
	s, rt := newTestServer(t)
	m := addOutput(t, s, 1, "DP-1", 1280, 800)
	clients := []*Client{
		mapClient(t, s, rt, 10),
		mapClient(t, s, rt, 11),
		mapClient(t, s, rt, 12),
	}

	s.tile(m)
	first := make([]tiling.Rect, len(clients))
	for i, c := range clients {
		first[i] = c.geom
	}
	s.tile(m)
	for i, c := range clients {
		if c.geom != first[i] {
			t.Fatalf("client %d moved on second tile: %+v -> %+v", i, first[i], c.geom)
		}
	}
}

func TestIncNmaster_BeyondClientCount(t *testing.T) {
	s, rt := newTestServer(t)
	addOutput(t, s, 1, "DP-1", 1280, 800)
	a := mapClient(t, s, rt, 10)
	b := mapClient(t, s, rt, 11)

	if err := s.IncNmaster(5); err != nil {
		t.Fatalf("IncNmaster: %v", err)
	}
	for _, c := range []*Client{a, b} {
		if c.geom.X != 4 || c.geom.Width != 1276 {
			t.Fatalf("client %d not in full-width master column: %+v", c.surface, c.geom)
		}
	}
	if b.geom.Y != 4 || a.geom.Y != 404 {
		t.Fatalf("master rows: b.Y=%d a.Y=%d", b.geom.Y, a.geom.Y)
	}

	if err := s.IncNmaster(-100); err != nil {
		t.Fatalf("IncNmaster: %v", err)
	}
	if got := s.selected().nmaster; got != 0 {
		t.Fatalf("nmaster = %d, want 0", got)
	}
	if a.geom.X != 4 || a.geom.Width != 1272 {
		t.Fatalf("zero masters should give the stack the full width: %+v", a.geom)
	}
}

func TestSetMfact(t *testing.T) {
	s, _ := newTestServer(t)
	m := addOutput(t, s, 1, "DP-1", 1280, 800)

	if err := s.SetMfact(0.05); err != nil {
		t.Fatalf("SetMfact relative: %v", err)
	}
	if m.mfact < 0.599 || m.mfact > 0.601 {
		t.Fatalf("mfact = %v, want 0.60", m.mfact)
	}
	if err := s.SetMfact(1.3); err != nil {
		t.Fatalf("SetMfact absolute: %v", err)
	}
	if m.mfact < 0.299 || m.mfact > 0.301 {
		t.Fatalf("mfact = %v, want 0.30", m.mfact)
	}
	if err := s.SetMfact(-0.5); err == nil {
		t.Fatalf("expected out of range error")
	}
	if m.mfact < 0.299 || m.mfact > 0.301 {
		t.Fatalf("rejected change altered mfact: %v", m.mfact)
	}
}

func TestSetMfact_RejectsNonFinite(t *testing.T) {
	s, rt := newTestServer(t)
	m := addOutput(t, s, 1, "DP-1", 1280, 800)
	a := mapClient(t, s, rt, 10)
	b := mapClient(t, s, rt, 11)
	before := m.mfact
	ga, gb := a.geom, b.geom

	for _, arg := range []string{"NaN", "+Inf", "-Inf", "inf"} {
		cmd, err := ParseCommand("set_mfact " + arg)
		if err != nil {
			continue
		}
		if err := s.Dispatch(cmd); err == nil {
			t.Fatalf("set_mfact %s: expected error", arg)
		}
	}
	for _, f := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		if err := s.SetMfact(f); err == nil {
			t.Fatalf("SetMfact(%v): expected error", f)
		}
	}
	if m.mfact != before {
		t.Fatalf("mfact = %v, want %v", m.mfact, before)
	}
	if a.geom != ga || b.geom != gb {
		t.Fatalf("layout changed: a=%+v b=%+v", a.geom, b.geom)
	}
}

func TestToggleFullscreen(t *testing.T) {
	s, rt := newTestServer(t)
	m := addOutput(t, s, 1, "DP-1", 1280, 800)
	a := mapClient(t, s, rt, 10)
	b := mapClient(t, s, rt, 11)
	tiled := b.geom

	if err := s.ToggleFullscreen(); err != nil {
		t.Fatalf("ToggleFullscreen: %v", err)
	}
	if !b.fullscreen || b.geom != m.box {
		t.Fatalf("fullscreen geom = %+v, want %+v", b.geom, m.box)
	}
	if !rt.fullscreen[b.surface] || rt.stack[b.surface] != StackFullscreen {
		t.Fatalf("runtime not told about fullscreen")
	}
	if !rt.nodes[m.fullscreenBg].enabled {
		t.Fatalf("fullscreen backdrop should be shown")
	}
	if a.geom.X != 4 || a.geom.Width != 1276 {
		t.Fatalf("remaining client should take the whole area: %+v", a.geom)
	}

	if err := s.ToggleFullscreen(); err != nil {
		t.Fatalf("ToggleFullscreen: %v", err)
	}
	if b.fullscreen || b.geom != tiled {
		t.Fatalf("geom after leaving fullscreen = %+v, want %+v", b.geom, tiled)
	}
	if rt.nodes[m.fullscreenBg].enabled {
		t.Fatalf("fullscreen backdrop should be hidden")
	}
}

func TestToggleFloating_RemovesFromTiling(t *testing.T) {
	s, rt := newTestServer(t)
	addOutput(t, s, 1, "DP-1", 1280, 800)
	a := mapClient(t, s, rt, 10)
	b := mapClient(t, s, rt, 11)

	if err := s.ToggleFloating(); err != nil {
		t.Fatalf("ToggleFloating: %v", err)
	}
	if !b.floating || rt.stack[b.surface] != StackFloat {
		t.Fatalf("focused client should float")
	}
	if a.geom.Width != 1276 {
		t.Fatalf("tiled client should fill the monitor, got %+v", a.geom)
	}
}

func TestResize_AppliesSizeHints(t *testing.T) {
	s, rt := newTestServer(t)
	addOutput(t, s, 1, "DP-1", 1280, 800)
	rt.minSize[10] = tiling.Size{Width: 900, Height: 10}
	rt.maxSize[10] = tiling.Size{Width: 1000, Height: 1000}
	mapClient(t, s, rt, 11)
	c := mapClient(t, s, rt, 10)

	if c.geom.Width != 902 {
		t.Fatalf("min width + borders should win over the master width, got %d", c.geom.Width)
	}
}
