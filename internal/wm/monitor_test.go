package wm

import (
	"errors"
	"testing"

	"github.com/1broseidon/tagtile/internal/tiling"
)

func TestOutputAdded_AppliesRuleAndMode(t *testing.T) {
	s, rt := newTestServer(t)
	err := s.OutputAdded(OutputInfo{
		ID:   1,
		Name: "eDP-1",
		Modes: []Mode{
			{Width: 1920, Height: 1200, Refresh: 60000},
			{Width: 2560, Height: 1600, Refresh: 60000, Preferred: true},
		},
	})
	if err != nil {
		t.Fatalf("OutputAdded: %v", err)
	}
	m := s.monitorByOutput(1)
	if m.mfact != 0.5 || m.scale != 2 {
		t.Fatalf("rule not applied: mfact=%v scale=%v", m.mfact, m.scale)
	}
	if m.mode.Width != 2560 {
		t.Fatalf("preferred mode not chosen: %+v", m.mode)
	}
	if m.box != (tiling.Rect{Width: 1280, Height: 800}) {
		t.Fatalf("scaled box = %+v", m.box)
	}
	if st := rt.outputs[1]; !st.Enabled || st.Scale != 2 {
		t.Fatalf("output not enabled with rule scale: %+v", st)
	}
	if bg := rt.nodes[m.fullscreenBg]; bg == nil || bg.enabled || bg.layer != StackFullscreen {
		t.Fatalf("fullscreen backdrop should exist disabled: %+v", bg)
	}
	if s.selected() != m {
		t.Fatalf("first output should be selected")
	}
	if len(rt.reports) == 0 {
		t.Fatalf("reflow should report output state")
	}
}

func TestOutputAdded_ConfigureFailure(t *testing.T) {
	s, rt := newTestServer(t)
	rt.outputErr[1] = errors.New("no crtc")

	if err := s.OutputAdded(OutputInfo{ID: 1, Name: "DP-1"}); err == nil {
		t.Fatalf("expected error")
	}
	if s.monitorByOutput(1) != nil {
		t.Fatalf("failed output must not be registered")
	}
}

func TestOutputAdded_PlacesOutputsSideBySide(t *testing.T) {
	s, _ := newTestServer(t)
	m1 := addOutput(t, s, 1, "DP-1", 1280, 800)
	m2 := addOutput(t, s, 2, "DP-2", 1920, 1080)

	if m2.box != (tiling.Rect{X: 1280, Width: 1920, Height: 1080}) {
		t.Fatalf("second output box = %+v", m2.box)
	}
	if s.layoutBox != (tiling.Rect{Width: 3200, Height: 1080}) {
		t.Fatalf("layout box = %+v", s.layoutBox)
	}
	if s.selected() != m1 {
		t.Fatalf("selection should stay on the first output")
	}
}

func TestOutputRemoved_ReassignsClients(t *testing.T) {
	s, rt := newTestServer(t)
	m1 := addOutput(t, s, 1, "DP-1", 1280, 800)
	m2 := addOutput(t, s, 2, "DP-2", 1920, 1080)
	a := mapClient(t, s, rt, 10)
	if err := s.FocusMonitor(DirRight); err != nil {
		t.Fatalf("FocusMonitor: %v", err)
	}
	b := mapClient(t, s, rt, 11)
	if b.mon != m2.id {
		t.Fatalf("b should map on the selected monitor")
	}

	removed := m1.id
	s.OutputRemoved(1)

	if s.monitor(removed) != nil {
		t.Fatalf("removed monitor still resolves")
	}
	s.eachClient(func(c *Client) {
		if c.mon == removed {
			t.Fatalf("client %d still on removed monitor", c.surface)
		}
	})
	if a.mon != m2.id {
		t.Fatalf("a not moved to the selected monitor")
	}
	if a.geom.X < 1280 {
		t.Fatalf("a should be tiled on the remaining output, got %+v", a.geom)
	}
	if !rt.nodes[m1.fullscreenBg].destroyed {
		t.Fatalf("backdrop of removed monitor not destroyed")
	}
}

func TestOutputRemoved_ReselectsMonitor(t *testing.T) {
	s, rt := newTestServer(t)
	addOutput(t, s, 1, "DP-1", 1280, 800)
	m2 := addOutput(t, s, 2, "DP-2", 1920, 1080)
	a := mapClient(t, s, rt, 10)

	s.OutputRemoved(1)
	if s.selected() != m2 {
		t.Fatalf("selection should move to the remaining monitor")
	}
	if a.mon != m2.id || s.kbFocus != a.surface {
		t.Fatalf("client should follow the selection and keep focus")
	}
}

func TestOutputRemoved_LastOutputThenReadded(t *testing.T) {
	s, rt := newTestServer(t)
	addOutput(t, s, 1, "DP-1", 1280, 800)
	a := mapClient(t, s, rt, 10)

	s.OutputRemoved(1)
	if !s.selmon.IsZero() {
		t.Fatalf("no monitor should be selected")
	}
	if !a.mon.IsZero() {
		t.Fatalf("client should be left without monitor")
	}

	m := addOutput(t, s, 2, "HDMI-A-1", 1920, 1080)
	if a.mon != m.id {
		t.Fatalf("orphaned client should be adopted by the new output")
	}
	if a.tags != 1 {
		t.Fatalf("tags = %#x, want 1", a.tags)
	}
}

func TestOutputModeChanged(t *testing.T) {
	s, rt := newTestServer(t)
	m := addOutput(t, s, 1, "DP-1", 1280, 800)
	c := mapClient(t, s, rt, 10)

	s.OutputModeChanged(1, Mode{Width: 1920, Height: 1080})
	if m.box != (tiling.Rect{Width: 1920, Height: 1080}) {
		t.Fatalf("box = %+v", m.box)
	}
	if c.geom.Width != 1916 {
		t.Fatalf("client not re-tiled: %+v", c.geom)
	}
}

func TestApplyOutputConfig(t *testing.T) {
	s, rt := newTestServer(t)
	m1 := addOutput(t, s, 1, "DP-1", 1280, 800)
	m2 := addOutput(t, s, 2, "DP-2", 1920, 1080)

	rt.outputErr[2] = errors.New("mode rejected")
	heads := []OutputHead{{Output: 2, OutputState: OutputState{Enabled: true, Mode: Mode{Width: 800, Height: 600}, Scale: 1}}}
	if s.ApplyOutputConfig(heads, true) {
		t.Fatalf("test of rejected config should fail")
	}
	delete(rt.outputErr, 2)

	heads = []OutputHead{{Output: 2, OutputState: OutputState{Enabled: true, Mode: m2.mode, Scale: 1, Y: 800}}}
	if !s.ApplyOutputConfig(heads, false) {
		t.Fatalf("apply failed")
	}
	if m2.box != (tiling.Rect{X: 0, Y: 800, Width: 1920, Height: 1080}) {
		t.Fatalf("moved box = %+v", m2.box)
	}
	if m1.box.X != 0 || m1.box.Y != 0 {
		t.Fatalf("first output moved: %+v", m1.box)
	}
}

func TestApplyOutputConfig_DisableMovesClients(t *testing.T) {
	s, rt := newTestServer(t)
	m1 := addOutput(t, s, 1, "DP-1", 1280, 800)
	m2 := addOutput(t, s, 2, "DP-2", 1920, 1080)
	if err := s.FocusMonitor(DirRight); err != nil {
		t.Fatalf("FocusMonitor: %v", err)
	}
	c := mapClient(t, s, rt, 10)

	heads := []OutputHead{{Output: 2, OutputState: OutputState{Enabled: false}}}
	if !s.ApplyOutputConfig(heads, false) {
		t.Fatalf("apply failed")
	}
	if m2.enabled || !m2.box.Empty() {
		t.Fatalf("disabled monitor keeps geometry: %+v", m2.box)
	}
	if c.mon != m1.id || s.selected() != m1 {
		t.Fatalf("client and selection should move to the enabled monitor")
	}
}

func TestFocusMonitor_WrapsAround(t *testing.T) {
	s, _ := newTestServer(t)
	addOutput(t, s, 1, "DP-1", 1280, 800)
	m2 := addOutput(t, s, 2, "DP-2", 1280, 800)
	m3 := addOutput(t, s, 3, "DP-3", 1280, 800)

	if err := s.FocusMonitor(DirLeft); err != nil {
		t.Fatalf("FocusMonitor: %v", err)
	}
	if s.selected() != m3 {
		t.Fatalf("left of the leftmost should wrap to the rightmost")
	}
	if err := s.FocusMonitor(DirLeft); err != nil {
		t.Fatalf("FocusMonitor: %v", err)
	}
	if s.selected() != m2 {
		t.Fatalf("left of DP-3 should be DP-2")
	}
	if err := s.FocusMonitor(DirUp); err != nil {
		t.Fatalf("FocusMonitor: %v", err)
	}
	if s.selected() != m2 {
		t.Fatalf("no monitor above: selection should stay")
	}
}

func TestTagMonitor(t *testing.T) {
	s, rt := newTestServer(t)
	addOutput(t, s, 1, "DP-1", 1280, 800)
	m2 := addOutput(t, s, 2, "DP-2", 1920, 1080)
	c := mapClient(t, s, rt, 10)

	if err := s.TagMonitor(DirRight); err != nil {
		t.Fatalf("TagMonitor: %v", err)
	}
	if c.mon != m2.id {
		t.Fatalf("client not sent to DP-2")
	}
	if c.geom.X < 1280 {
		t.Fatalf("client not placed on DP-2: %+v", c.geom)
	}
	if rt.entered[c.surface] != 2 {
		t.Fatalf("surface should enter output 2, got %d", rt.entered[c.surface])
	}
}

func TestLayoutDirection(t *testing.T) {
	var l outputLayout
	l.add(1, 0, 0, tiling.Size{Width: 1000, Height: 1000})
	l.add(2, 1000, 0, tiling.Size{Width: 1000, Height: 1000})
	l.add(3, 0, 1000, tiling.Size{Width: 1000, Height: 1000})
	l.add(4, 2000, 0, tiling.Size{Width: 1000, Height: 1000})

	tests := []struct {
		name   string
		from   OutputID
		dir    Direction
		want   OutputID
		wantOK bool
	}{
		{name: "right neighbour", from: 1, dir: DirRight, want: 2, wantOK: true},
		{name: "diagonal neighbour", from: 3, dir: DirRight, want: 2, wantOK: true},
		{name: "down", from: 1, dir: DirDown, want: 3, wantOK: true},
		{name: "nothing up", from: 1, dir: DirUp, wantOK: false},
		{name: "left of far right", from: 4, dir: DirLeft, want: 2, wantOK: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := l.adjacent(tt.from, tt.dir)
			if ok != tt.wantOK || (ok && got != tt.want) {
				t.Fatalf("adjacent = %d, %v; want %d, %v", got, ok, tt.want, tt.wantOK)
			}
		})
	}

	if got, ok := l.farthest(1, DirRight); !ok || got != 4 {
		t.Fatalf("farthest right of 1 = %d, %v; want 4", got, ok)
	}
	if got, ok := l.outputAt(1500.5, 10); !ok || got != 2 {
		t.Fatalf("outputAt = %d, %v; want 2", got, ok)
	}
	if _, ok := l.outputAt(1500, 1500); ok {
		t.Fatalf("gap in layout should hit no output")
	}
}
