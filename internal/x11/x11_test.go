package x11

import (
	"testing"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgbutil/ewmh"

	"github.com/1broseidon/tagtile/internal/tiling"
	"github.com/1broseidon/tagtile/internal/wm"
)

func TestClassifyTypes(t *testing.T) {
	tests := []struct {
		types []string
		want  windowKind
	}{
		{types: nil, want: kindNormal},
		{types: []string{"_NET_WM_WINDOW_TYPE_NORMAL"}, want: kindNormal},
		{types: []string{"_NET_WM_WINDOW_TYPE_DIALOG"}, want: kindNormal},
		{types: []string{"_NET_WM_WINDOW_TYPE_DOCK"}, want: kindDock},
		{types: []string{"_NET_WM_WINDOW_TYPE_DESKTOP"}, want: kindIgnored},
		{types: []string{"_NET_WM_WINDOW_TYPE_NOTIFICATION", "_NET_WM_WINDOW_TYPE_NORMAL"}, want: kindIgnored},
		{types: []string{"_KDE_NET_WM_WINDOW_TYPE_OVERRIDE", "_NET_WM_WINDOW_TYPE_NORMAL"}, want: kindNormal},
	}
	for _, tt := range tests {
		if got := classifyTypes(tt.types); got != tt.want {
			t.Errorf("classifyTypes(%v) = %s, want %s", tt.types, got, tt.want)
		}
	}
}

func testOutput(id wm.OutputID, x int) output {
	return output{
		id:       id,
		name:     "DP-" + string(rune('0'+id)),
		crtc:     randr.Crtc(id + 100),
		box:      tiling.Rect{X: x, Y: 0, Width: 1920, Height: 1080},
		rotation: randr.RotationRotate0,
		mode:     randr.Mode(10),
		modes: []wm.Mode{
			{Width: 1920, Height: 1080, Refresh: 60000, Preferred: true},
			{Width: 1920, Height: 1080, Refresh: 144000},
			{Width: 1280, Height: 720, Refresh: 60000},
		},
		modeIDs: []randr.Mode{10, 11, 12},
	}
}

func TestDiffOutputs(t *testing.T) {
	known := map[wm.OutputID]output{
		1: testOutput(1, 0),
		2: testOutput(2, 1920),
	}
	resized := testOutput(1, 0)
	resized.box.Width, resized.box.Height = 1280, 720
	fresh := []output{resized, testOutput(3, 1280)}

	ch := diffOutputs(known, fresh)
	if len(ch.added) != 1 || ch.added[0].id != 3 {
		t.Fatalf("added = %+v", ch.added)
	}
	if len(ch.removed) != 1 || ch.removed[0] != 2 {
		t.Fatalf("removed = %v", ch.removed)
	}
	if len(ch.resized) != 1 || ch.resized[0].id != 1 {
		t.Fatalf("resized = %+v", ch.resized)
	}

	if !diffOutputs(known, []output{known[1], known[2]}).empty() {
		t.Fatalf("identical enumeration should produce no changes")
	}
}

func TestSortOutputs(t *testing.T) {
	outs := []output{testOutput(1, 3840), testOutput(2, 0), testOutput(3, 1920)}
	sortOutputs(outs)
	for i, want := range []wm.OutputID{2, 3, 1} {
		if outs[i].id != want {
			t.Fatalf("order[%d] = %d, want %d", i, outs[i].id, want)
		}
	}
}

func TestOutputModes(t *testing.T) {
	o := testOutput(1, 0)
	if cur := o.current(); cur.Refresh != 60000 || !cur.Preferred {
		t.Fatalf("current = %+v", cur)
	}
	if id, ok := o.modeID(wm.Mode{Width: 1920, Height: 1080, Refresh: 120000}); !ok || id != 11 {
		t.Fatalf("modeID closest refresh = %d, %v", id, ok)
	}
	if _, ok := o.modeID(wm.Mode{Width: 800, Height: 600}); ok {
		t.Fatalf("unknown mode resolved")
	}

	o.mode = 99
	if cur := o.current(); cur.Width != 1920 || cur.Refresh != 0 {
		t.Fatalf("fallback current = %+v", cur)
	}
}

func TestRefreshMilliHz(t *testing.T) {
	// 1920x1080@60 CVT reduced blanking.
	mi := randr.ModeInfo{DotClock: 138500000, Htotal: 2080, Vtotal: 1111}
	if got := refreshMilliHz(mi); got < 59900 || got > 60000 {
		t.Fatalf("refresh = %d mHz", got)
	}
	if got := refreshMilliHz(randr.ModeInfo{DotClock: 1}); got != 0 {
		t.Fatalf("zero totals = %d", got)
	}
}

func TestRotationFor(t *testing.T) {
	tests := []struct {
		in   wm.Transform
		want uint16
	}{
		{in: wm.TransformNormal, want: randr.RotationRotate0},
		{in: wm.Transform90, want: randr.RotationRotate90},
		{in: wm.Transform270, want: randr.RotationRotate270},
		{in: wm.TransformFlipped, want: randr.RotationRotate0 | randr.RotationReflectX},
		{in: wm.TransformFlipped180, want: randr.RotationRotate180 | randr.RotationReflectX},
	}
	for _, tt := range tests {
		if got := rotationFor(tt.in); got != tt.want {
			t.Errorf("rotationFor(%s) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestPlanCrtc(t *testing.T) {
	o := testOutput(1, 0)

	tests := []struct {
		name    string
		st      wm.OutputState
		change  bool
		want    crtcRequest
		wantErr bool
	}{
		{
			name:   "unchanged with auto position",
			st:     wm.OutputState{Enabled: true, X: -1, Y: -1},
			change: false,
			want:   crtcRequest{x: 0, y: 0, mode: 10, rotation: randr.RotationRotate0},
		},
		{
			name:   "move",
			st:     wm.OutputState{Enabled: true, X: 1920, Y: 0},
			change: true,
			want:   crtcRequest{x: 1920, y: 0, mode: 10, rotation: randr.RotationRotate0},
		},
		{
			name:   "mode and rotation",
			st:     wm.OutputState{Enabled: true, X: -1, Y: -1, Mode: wm.Mode{Width: 1280, Height: 720}, Transform: wm.Transform90},
			change: true,
			want:   crtcRequest{x: 0, y: 0, mode: 12, rotation: randr.RotationRotate90},
		},
		{
			name:   "disable",
			st:     wm.OutputState{Enabled: false},
			change: true,
			want:   crtcRequest{disable: true},
		},
		{
			name:    "unknown mode",
			st:      wm.OutputState{Enabled: true, Mode: wm.Mode{Width: 640, Height: 480}},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, change, err := planCrtc(o, tt.st)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("planCrtc: %v", err)
			}
			if change != tt.change || req != tt.want {
				t.Fatalf("planCrtc = %+v, %v; want %+v, %v", req, change, tt.want, tt.change)
			}
		})
	}
}

func TestStrutsOnOutput(t *testing.T) {
	left := tiling.Rect{X: 0, Y: 0, Width: 1920, Height: 1080}
	right := tiling.Rect{X: 1920, Y: 0, Width: 1920, Height: 1080}
	rootWidth, rootHeight := 3840, 1080

	// A 30px top bar spanning only the left output.
	sp := &ewmh.WmStrutPartial{Top: 30, TopStartX: 0, TopEndX: 1919}

	st, ok := strutsOnOutput(left, rootWidth, rootHeight, sp).layerState()
	if !ok {
		t.Fatalf("left output should carry the bar")
	}
	if st.Layer != wm.ShellTop {
		t.Fatalf("layer = %s", st.Layer)
	}
	p := st.Placement
	if p.Anchor != tiling.AnchorTop|tiling.AnchorLeft|tiling.AnchorRight || p.Height != 30 || p.Width != 0 || p.ExclusiveZone != 30 {
		t.Fatalf("placement = %+v", p)
	}

	if _, ok := strutsOnOutput(right, rootWidth, rootHeight, sp).layerState(); ok {
		t.Fatalf("right output should not carry the bar")
	}

	// A right-hand panel on the right output.
	sp = &ewmh.WmStrutPartial{Right: 48, RightStartY: 0, RightEndY: 1079}
	st, ok = strutsOnOutput(right, rootWidth, rootHeight, sp).layerState()
	if !ok {
		t.Fatalf("right panel missing")
	}
	p = st.Placement
	if p.Anchor != tiling.AnchorRight|tiling.AnchorTop|tiling.AnchorBottom || p.Width != 48 || p.ExclusiveZone != 48 {
		t.Fatalf("placement = %+v", p)
	}

	// The reserved area stays inside the output when laid out.
	usable := right
	box := tiling.ArrangeLayer(right, &usable, p)
	if box.X != 3840-48 || box.Height != 1080 || usable.Width != 1920-48 {
		t.Fatalf("box = %+v usable = %+v", box, usable)
	}
}

func TestTopmostAt(t *testing.T) {
	rects := []tiling.Rect{
		{X: 0, Y: 0, Width: 100, Height: 100},
		{},
		{X: 50, Y: 50, Width: 100, Height: 100},
	}
	tests := []struct {
		x, y int
		want int
	}{
		{x: 10, y: 10, want: 0},
		{x: 60, y: 60, want: 2},
		{x: 140, y: 140, want: 2},
		{x: 200, y: 200, want: -1},
	}
	for _, tt := range tests {
		if got := topmostAt(rects, tt.x, tt.y); got != tt.want {
			t.Errorf("topmostAt(%d, %d) = %d, want %d", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestRuntimeAcknowledge(t *testing.T) {
	r := NewRuntime(nil, nil)
	const win = 42

	r.serial = 6
	r.serial++
	r.pending[win] = pendingConfigure{serial: r.serial, size: tiling.Size{Width: 800, Height: 600}}

	// A client rounding to its size increments still acknowledges.
	size, serial := r.acknowledge(win, tiling.Size{Width: 798, Height: 595})
	if serial != 7 || size != (tiling.Size{}) {
		t.Fatalf("ack = %+v, %d", size, serial)
	}
	if _, ok := r.pending[win]; ok {
		t.Fatalf("pending configure not cleared")
	}

	// Repeats of the settled size are dropped.
	if size, serial := r.acknowledge(win, tiling.Size{Width: 798, Height: 595}); serial != 0 || size != (tiling.Size{}) {
		t.Fatalf("repeat = %+v, %d", size, serial)
	}

	// A resize nobody asked for is reported once.
	if size, serial := r.acknowledge(win, tiling.Size{Width: 500, Height: 400}); serial != 0 || size.Width != 500 {
		t.Fatalf("unsolicited = %+v, %d", size, serial)
	}

	r.forget(win)
	if len(r.sizes) != 0 || len(r.pending) != 0 {
		t.Fatalf("forget left state behind")
	}
}

func TestRuntimeDragPointer(t *testing.T) {
	r := NewRuntime(nil, nil)
	r.setDragPointer(120, 80, true)
	if x, y := r.CursorPosition(); x != 120 || y != 80 {
		t.Fatalf("CursorPosition = %v,%v", x, y)
	}
}
