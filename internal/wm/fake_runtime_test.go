package wm

import (
	"bytes"
	"io"
	"log/slog"
	"testing"

	"github.com/1broseidon/tagtile/internal/tiling"
)

type fakeNode struct {
	layer     StackLayer
	color     Color
	enabled   bool
	box       tiling.Rect
	destroyed bool
}

// fakeRuntime records every command the server issues.
type fakeRuntime struct {
	titles    map[SurfaceID]string
	appIDs    map[SurfaceID]string
	pids      map[SurfaceID]int
	minSize   map[SurfaceID]tiling.Size
	maxSize   map[SurfaceID]tiling.Size
	initial   map[SurfaceID]tiling.Rect
	parents   map[SurfaceID]SurfaceID
	wantFocus map[SurfaceID]bool

	serial      uint32
	configured  map[SurfaceID]tiling.Rect
	configures  int
	fullscreen  map[SurfaceID]bool
	tiledEdges  map[SurfaceID]Edges
	activated   map[SurfaceID]bool
	visible     map[SurfaceID]bool
	borders     map[SurfaceID]Color
	stack       map[SurfaceID]StackLayer
	raised      []SurfaceID
	closed      []SurfaceID
	entered     map[SurfaceID]OutputID
	unconstrain map[SurfaceID]tiling.Rect

	layerBoxes      map[SurfaceID]tiling.Rect
	destroyedLayers []SurfaceID
	lockBoxes       map[SurfaceID]tiling.Rect
	sentLocked      []LockID
	destroyedLocks  []LockID

	keyboard SurfaceID
	pointer  SurfaceID
	cx, cy   float64
	under    SurfaceID

	outputErr map[OutputID]error
	outputs   map[OutputID]OutputState
	reports   [][]OutputHead

	nextNode NodeID
	nodes    map[NodeID]*fakeNode

	status bytes.Buffer
}

func newFakeRuntime() *fakeRuntime {
	return &fakeRuntime{
		titles:      make(map[SurfaceID]string),
		appIDs:      make(map[SurfaceID]string),
		pids:        make(map[SurfaceID]int),
		minSize:     make(map[SurfaceID]tiling.Size),
		maxSize:     make(map[SurfaceID]tiling.Size),
		initial:     make(map[SurfaceID]tiling.Rect),
		parents:     make(map[SurfaceID]SurfaceID),
		wantFocus:   make(map[SurfaceID]bool),
		configured:  make(map[SurfaceID]tiling.Rect),
		fullscreen:  make(map[SurfaceID]bool),
		tiledEdges:  make(map[SurfaceID]Edges),
		activated:   make(map[SurfaceID]bool),
		visible:     make(map[SurfaceID]bool),
		borders:     make(map[SurfaceID]Color),
		stack:       make(map[SurfaceID]StackLayer),
		entered:     make(map[SurfaceID]OutputID),
		unconstrain: make(map[SurfaceID]tiling.Rect),
		layerBoxes:  make(map[SurfaceID]tiling.Rect),
		lockBoxes:   make(map[SurfaceID]tiling.Rect),
		outputErr:   make(map[OutputID]error),
		outputs:     make(map[OutputID]OutputState),
		nodes:       make(map[NodeID]*fakeNode),
	}
}

func (f *fakeRuntime) Title(id SurfaceID) string { return f.titles[id] }
func (f *fakeRuntime) AppID(id SurfaceID) string { return f.appIDs[id] }
func (f *fakeRuntime) PID(id SurfaceID) int { return f.pids[id] }
func (f *fakeRuntime) Parent(id SurfaceID) SurfaceID { return f.parents[id] }
func (f *fakeRuntime) WantsFocus(id SurfaceID) bool { return f.wantFocus[id] }
func (f *fakeRuntime) InitialGeometry(id SurfaceID) tiling.Rect { return f.initial[id] }

func (f *fakeRuntime) SizeHints(id SurfaceID) (tiling.Size, tiling.Size) {
	return f.minSize[id], f.maxSize[id]
}

func (f *fakeRuntime) Configure(id SurfaceID, geom tiling.Rect, _ int) uint32 {
	f.configures++
	if f.configured[id] == geom {
		return 0
	}
	f.configured[id] = geom
	f.serial++
	return f.serial
}

func (f *fakeRuntime) SetFullscreen(id SurfaceID, on bool) { f.fullscreen[id] = on }
func (f *fakeRuntime) SetTiled(id SurfaceID, edges Edges) { f.tiledEdges[id] = edges }
func (f *fakeRuntime) SetActivated(id SurfaceID, on bool) { f.activated[id] = on }
func (f *fakeRuntime) SetVisible(id SurfaceID, on bool) { f.visible[id] = on }
func (f *fakeRuntime) SetBorderColor(id SurfaceID, c Color) { f.borders[id] = c }
func (f *fakeRuntime) SetStackLayer(id SurfaceID, l StackLayer) { f.stack[id] = l }
func (f *fakeRuntime) Raise(id SurfaceID) { f.raised = append(f.raised, id) }
func (f *fakeRuntime) Close(id SurfaceID) { f.closed = append(f.closed, id) }
func (f *fakeRuntime) DismissPopups(SurfaceID) {}
func (f *fakeRuntime) EnterOutput(id SurfaceID, out OutputID) { f.entered[id] = out }
func (f *fakeRuntime) LeaveOutput(id SurfaceID, _ OutputID) { delete(f.entered, id) }
func (f *fakeRuntime) UnconstrainPopup(id SurfaceID, box tiling.Rect) { f.unconstrain[id] = box }

func (f *fakeRuntime) ConfigureLayer(id SurfaceID, box tiling.Rect) { f.layerBoxes[id] = box }
func (f *fakeRuntime) DestroyLayer(id SurfaceID) {
	f.destroyedLayers = append(f.destroyedLayers, id)
}
func (f *fakeRuntime) ConfigureLockSurface(id SurfaceID, box tiling.Rect) { f.lockBoxes[id] = box }
func (f *fakeRuntime) SendLocked(lock LockID) { f.sentLocked = append(f.sentLocked, lock) }
func (f *fakeRuntime) DestroyLock(lock LockID) { f.destroyedLocks = append(f.destroyedLocks, lock) }

func (f *fakeRuntime) KeyboardEnter(id SurfaceID) { f.keyboard = id }
func (f *fakeRuntime) KeyboardClear() { f.keyboard = 0 }
func (f *fakeRuntime) PointerEnter(id SurfaceID, _, _ float64) { f.pointer = id }
func (f *fakeRuntime) PointerClear() { f.pointer = 0 }
func (f *fakeRuntime) CursorPosition() (float64, float64) { return f.cx, f.cy }
func (f *fakeRuntime) WarpCursor(x, y float64) { f.cx, f.cy = x, y }

func (f *fakeRuntime) SurfaceAt(x, y float64) (SurfaceID, float64, float64) {
	if f.under == 0 {
		return 0, 0, 0
	}
	box := f.configured[f.under]
	return f.under, x - float64(box.X), y - float64(box.Y)
}

func (f *fakeRuntime) ConfigureOutput(out OutputID, st OutputState) error {
	if err := f.outputErr[out]; err != nil {
		return err
	}
	f.outputs[out] = st
	return nil
}

func (f *fakeRuntime) TestOutput(out OutputID, _ OutputState) bool {
	return f.outputErr[out] == nil
}

func (f *fakeRuntime) ReportOutputs(heads []OutputHead) {
	f.reports = append(f.reports, heads)
}

func (f *fakeRuntime) CreateRect(layer StackLayer, c Color) NodeID {
	f.nextNode++
	f.nodes[f.nextNode] = &fakeNode{layer: layer, color: c, enabled: true}
	return f.nextNode
}

func (f *fakeRuntime) SetNodeEnabled(n NodeID, on bool) {
	if node := f.nodes[n]; node != nil {
		node.enabled = on
	}
}

func (f *fakeRuntime) PlaceNode(n NodeID, box tiling.Rect) {
	if node := f.nodes[n]; node != nil {
		node.box = box
	}
}

func (f *fakeRuntime) DestroyNode(n NodeID) {
	if node := f.nodes[n]; node != nil {
		node.destroyed = true
	}
}

func newTestServer(t *testing.T) (*Server, *fakeRuntime) {
	t.Helper()
	return newTestServerWith(t, DefaultSettings())
}

func newTestServerWith(t *testing.T, settings Settings) (*Server, *fakeRuntime) {
	t.Helper()
	rt := newFakeRuntime()
	s := New(rt, settings, Options{
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		Status:  &rt.status,
		Stopped: func(int) bool { return false },
	})
	return s, rt
}

func addOutput(t *testing.T, s *Server, id OutputID, name string, w, h int) *Monitor {
	t.Helper()
	err := s.OutputAdded(OutputInfo{
		ID:    id,
		Name:  name,
		Modes: []Mode{{Width: w, Height: h, Refresh: 60000, Preferred: true}},
	})
	if err != nil {
		t.Fatalf("OutputAdded(%s): %v", name, err)
	}
	m := s.monitorByOutput(id)
	if m == nil {
		t.Fatalf("output %s has no monitor", name)
	}
	return m
}

func mapClient(t *testing.T, s *Server, rt *fakeRuntime, id SurfaceID) *Client {
	t.Helper()
	if _, ok := rt.initial[id]; !ok {
		rt.initial[id] = tiling.Rect{Width: 200, Height: 100}
	}
	s.Map(id)
	c := s.clientBySurface(id)
	if c == nil || !c.mapped {
		t.Fatalf("surface %d not mapped", id)
	}
	return c
}
