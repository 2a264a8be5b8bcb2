package x11

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/xwindow"

	"github.com/1broseidon/tagtile/internal/tiling"
	"github.com/1broseidon/tagtile/internal/wm"
)

// Message source indication for requests made on behalf of the user.
const sourcePager = 2

// ICCCM WM_STATE values used with WM_CHANGE_STATE.
const iconicState = 3

type pendingConfigure struct {
	serial uint32
	size   tiling.Size
}

type backdrop struct {
	win   *xwindow.Window
	layer wm.StackLayer
}

// Runtime carries out the core's requests against an EWMH window manager
// and RandR. It must only be used from the loop goroutine.
type Runtime struct {
	conn   *Connection
	logger *slog.Logger

	serial  uint32
	pending map[xproto.Window]pendingConfigure
	sizes   map[xproto.Window]tiling.Size
	visible map[xproto.Window]bool
	// fullscreen is the state the core last asked for.
	fullscreen map[xproto.Window]bool

	nodes map[wm.NodeID]*backdrop

	res     screenResources
	outputs map[wm.OutputID]output
	heads   []wm.OutputHead

	// dragging holds the pointer position reported by a button drag; the
	// server is not queried while a drag grab is active.
	dragging bool
	pointerX float64
	pointerY float64

	locked bool
}

var _ wm.Runtime = (*Runtime)(nil)

// NewRuntime creates a runtime on conn.
func NewRuntime(conn *Connection, logger *slog.Logger) *Runtime {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runtime{
		conn:    conn,
		logger:  logger,
		pending: make(map[xproto.Window]pendingConfigure),
		sizes:   make(map[xproto.Window]tiling.Size),
		visible: make(map[xproto.Window]bool),
		nodes:   make(map[wm.NodeID]*backdrop),
		outputs: make(map[wm.OutputID]output),

		fullscreen: make(map[xproto.Window]bool),
	}
}

func window(id wm.SurfaceID) xproto.Window {
	return xproto.Window(id)
}

func (r *Runtime) Title(id wm.SurfaceID) string {
	return r.conn.windowTitle(window(id))
}

func (r *Runtime) AppID(id wm.SurfaceID) string {
	return r.conn.windowAppID(window(id))
}

func (r *Runtime) PID(id wm.SurfaceID) int {
	return r.conn.windowPID(window(id))
}

func (r *Runtime) SizeHints(id wm.SurfaceID) (tiling.Size, tiling.Size) {
	return r.conn.sizeHints(window(id))
}

func (r *Runtime) InitialGeometry(id wm.SurfaceID) tiling.Rect {
	rect, _ := r.conn.windowRect(window(id))
	return rect
}

func (r *Runtime) Parent(id wm.SurfaceID) wm.SurfaceID {
	return wm.SurfaceID(r.conn.transientFor(window(id)))
}

// WantsFocus is always false: X11 clients cannot pin the keyboard through
// the pager-side protocol.
func (r *Runtime) WantsFocus(wm.SurfaceID) bool {
	return false
}

// Configure asks the window manager to move and resize the window. geom
// includes the border, which is drawn by the X server.
func (r *Runtime) Configure(id wm.SurfaceID, geom tiling.Rect, borderWidth int) uint32 {
	win := window(id)
	xproto.ConfigureWindow(r.conn.XUtil.Conn(), win, xproto.ConfigWindowBorderWidth, []uint32{uint32(borderWidth)})

	content := tiling.Rect{
		X:      geom.X,
		Y:      geom.Y,
		Width:  geom.Width - 2*borderWidth,
		Height: geom.Height - 2*borderWidth,
	}
	r.conn.moveResize(win, content)

	r.serial++
	if r.serial == 0 {
		r.serial++
	}
	r.pending[win] = pendingConfigure{serial: r.serial, size: tiling.Size{Width: content.Width, Height: content.Height}}
	return r.serial
}

// acknowledge turns a ConfigureNotify into commit arguments. The first
// notify after a request acknowledges it without reporting a size, so
// clients that round to their size increments do not cause a re-layout.
// A notify nobody asked for reports the size once.
func (r *Runtime) acknowledge(win xproto.Window, size tiling.Size) (tiling.Size, uint32) {
	if p, ok := r.pending[win]; ok {
		delete(r.pending, win)
		r.sizes[win] = size
		return tiling.Size{}, p.serial
	}
	if r.sizes[win] == size {
		return tiling.Size{}, 0
	}
	r.sizes[win] = size
	return size, 0
}

// forget drops per-window state once a window is unmanaged.
func (r *Runtime) forget(win xproto.Window) {
	delete(r.pending, win)
	delete(r.sizes, win)
	delete(r.visible, win)
	delete(r.fullscreen, win)
}

func (r *Runtime) SetFullscreen(id wm.SurfaceID, on bool) {
	win := window(id)
	r.fullscreen[win] = on
	if r.conn.hasState(win, "_NET_WM_STATE_FULLSCREEN") == on {
		return
	}
	action := stateRemove
	if on {
		action = stateAdd
	}
	if err := r.conn.sendRootMessage(win, "_NET_WM_STATE", uint32(action), r.atomValue("_NET_WM_STATE_FULLSCREEN"), 0, sourcePager); err != nil {
		r.logger.Debug("fullscreen request failed", "window", id, "error", err)
	}
}

// SetTiled clears maximized state, which would override the layout.
func (r *Runtime) SetTiled(id wm.SurfaceID, _ wm.Edges) {
	r.conn.unmaximizeWindow(window(id))
}

func (r *Runtime) SetActivated(id wm.SurfaceID, on bool) {
	if !on {
		return
	}
	if err := r.conn.sendRootMessage(window(id), "_NET_ACTIVE_WINDOW", sourcePager); err != nil {
		r.logger.Debug("activate failed", "window", id, "error", err)
	}
}

// SetVisible maps or iconifies a window.
func (r *Runtime) SetVisible(id wm.SurfaceID, on bool) {
	win := window(id)
	if shown, ok := r.visible[win]; ok && shown == on {
		return
	}
	r.visible[win] = on

	if on {
		xwindow.New(r.conn.XUtil, win).Map()
		return
	}
	if err := r.conn.sendRootMessage(win, "WM_CHANGE_STATE", iconicState); err != nil {
		r.logger.Debug("iconify failed", "window", id, "error", err)
	}
}

func (r *Runtime) SetBorderColor(id wm.SurfaceID, c wm.Color) {
	xproto.ChangeWindowAttributes(r.conn.XUtil.Conn(), window(id), xproto.CwBorderPixel, []uint32{c.Pixel()})
}

// SetStackLayer keeps floating, fullscreen and overlay windows above the
// tiled ones with _NET_WM_STATE_ABOVE and background ones below.
func (r *Runtime) SetStackLayer(id wm.SurfaceID, layer wm.StackLayer) {
	win := window(id)
	above := layer >= wm.StackFloat
	below := layer == wm.StackBackground
	r.setState(win, "_NET_WM_STATE_ABOVE", above)
	r.setState(win, "_NET_WM_STATE_BELOW", below)
}

func (r *Runtime) setState(win xproto.Window, state string, on bool) {
	if r.conn.hasState(win, state) == on {
		return
	}
	action := stateRemove
	if on {
		action = stateAdd
	}
	if err := r.conn.sendRootMessage(win, "_NET_WM_STATE", uint32(action), r.atomValue(state), 0, sourcePager); err != nil {
		r.logger.Debug("state request failed", "window", win, "state", state, "error", err)
	}
}

func (r *Runtime) atomValue(name string) uint32 {
	a, err := r.conn.atom(name)
	if err != nil {
		return 0
	}
	return uint32(a)
}

func (r *Runtime) Raise(id wm.SurfaceID) {
	xproto.ConfigureWindow(r.conn.XUtil.Conn(), window(id), xproto.ConfigWindowStackMode, []uint32{xproto.StackModeAbove})
}

// Close asks the window manager to close the window with _NET_CLOSE_WINDOW.
func (r *Runtime) Close(id wm.SurfaceID) {
	if err := r.conn.sendRootMessage(window(id), "_NET_CLOSE_WINDOW", 0, sourcePager); err != nil {
		r.logger.Warn("close request failed", "window", id, "error", err)
	}
}

// Popups are override-redirect windows the core never sees on X11.
func (r *Runtime) DismissPopups(wm.SurfaceID) {}
func (r *Runtime) UnconstrainPopup(wm.SurfaceID, tiling.Rect) {}

func (r *Runtime) EnterOutput(id wm.SurfaceID, out wm.OutputID) {
	r.logger.Debug("surface entered output", "window", id, "output", out)
}

func (r *Runtime) LeaveOutput(id wm.SurfaceID, out wm.OutputID) {
	r.logger.Debug("surface left output", "window", id, "output", out)
}

// ConfigureLayer moves a dock into the box its strut describes.
func (r *Runtime) ConfigureLayer(id wm.SurfaceID, box tiling.Rect) {
	win := window(id)
	if cur, ok := r.conn.windowRect(win); ok && cur == box {
		return
	}
	r.conn.moveResize(win, box)
}

// DestroyLayer forgets a dock. Docks belong to their own clients and are
// never closed.
func (r *Runtime) DestroyLayer(id wm.SurfaceID) {
	r.forget(window(id))
}

// Lock surfaces do not exist on X11; the locked backdrop covers everything.
func (r *Runtime) ConfigureLockSurface(wm.SurfaceID, tiling.Rect) {}

// SendLocked grabs the keyboard and pointer on the root window so input
// cannot reach clients while locked.
func (r *Runtime) SendLocked(lock wm.LockID) {
	xc := r.conn.XUtil.Conn()
	kb, err := xproto.GrabKeyboard(xc, false, r.conn.Root, xproto.TimeCurrentTime,
		xproto.GrabModeAsync, xproto.GrabModeAsync).Reply()
	if err != nil || kb.Status != xproto.GrabStatusSuccess {
		r.logger.Warn("keyboard grab failed while locking", "lock", lock, "error", err)
	}
	ptr, err := xproto.GrabPointer(xc, false, r.conn.Root, 0,
		xproto.GrabModeAsync, xproto.GrabModeAsync, xproto.WindowNone, xproto.CursorNone, xproto.TimeCurrentTime).Reply()
	if err != nil || ptr.Status != xproto.GrabStatusSuccess {
		r.logger.Warn("pointer grab failed while locking", "lock", lock, "error", err)
	}
	r.locked = true
}

func (r *Runtime) DestroyLock(lock wm.LockID) {
	if !r.locked {
		return
	}
	xc := r.conn.XUtil.Conn()
	xproto.UngrabKeyboard(xc, xproto.TimeCurrentTime)
	xproto.UngrabPointer(xc, xproto.TimeCurrentTime)
	r.locked = false
	r.logger.Debug("input released", "lock", lock)
}

func (r *Runtime) KeyboardEnter(id wm.SurfaceID) {
	xproto.SetInputFocus(r.conn.XUtil.Conn(), xproto.InputFocusPointerRoot, window(id), xproto.TimeCurrentTime)
}

func (r *Runtime) KeyboardClear() {
	xproto.SetInputFocus(r.conn.XUtil.Conn(), xproto.InputFocusPointerRoot, r.conn.Root, xproto.TimeCurrentTime)
}

// The X server routes pointer events itself.
func (r *Runtime) PointerEnter(wm.SurfaceID, float64, float64) {}
func (r *Runtime) PointerClear() {}

// setDragPointer records the pointer position reported by a drag.
func (r *Runtime) setDragPointer(x, y float64, active bool) {
	r.dragging = active
	r.pointerX, r.pointerY = x, y
}

func (r *Runtime) CursorPosition() (float64, float64) {
	if r.dragging {
		return r.pointerX, r.pointerY
	}
	pointer, err := xproto.QueryPointer(r.conn.XUtil.Conn(), r.conn.Root).Reply()
	if err != nil {
		return r.pointerX, r.pointerY
	}
	r.pointerX, r.pointerY = float64(pointer.RootX), float64(pointer.RootY)
	return r.pointerX, r.pointerY
}

func (r *Runtime) WarpCursor(x, y float64) {
	xproto.WarpPointer(r.conn.XUtil.Conn(), xproto.WindowNone, r.conn.Root, 0, 0, 0, 0, int16(x), int16(y))
	r.pointerX, r.pointerY = x, y
}

// SurfaceAt returns the topmost visible client window under (x, y).
func (r *Runtime) SurfaceAt(x, y float64) (wm.SurfaceID, float64, float64) {
	stack := r.conn.stackingOrder()
	rects := make([]tiling.Rect, len(stack))
	for i, win := range stack {
		if shown, ok := r.visible[win]; ok && !shown {
			continue
		}
		rects[i], _ = r.conn.windowRect(win)
	}
	i := topmostAt(rects, int(x), int(y))
	if i < 0 {
		return 0, 0, 0
	}
	return wm.SurfaceID(stack[i]), x - float64(rects[i].X), y - float64(rects[i].Y)
}

// topmostAt returns the index of the last rect containing (x, y), or -1.
func topmostAt(rects []tiling.Rect, x, y int) int {
	for i := len(rects) - 1; i >= 0; i-- {
		if !rects[i].Empty() && rects[i].Contains(x, y) {
			return i
		}
	}
	return -1
}

// setOutputs replaces the RandR snapshot.
func (r *Runtime) setOutputs(res screenResources) {
	r.res = res
	r.outputs = make(map[wm.OutputID]output, len(res.outputs))
	for _, o := range res.outputs {
		r.outputs[o.id] = o
	}
}

// outputAt returns the output whose box contains the center of rect.
func (r *Runtime) outputAt(rect tiling.Rect) wm.OutputID {
	cx, cy := rect.X+rect.Width/2, rect.Y+rect.Height/2
	for _, o := range r.res.outputs {
		if o.box.Contains(cx, cy) {
			return o.id
		}
	}
	return 0
}

func (r *Runtime) ConfigureOutput(out wm.OutputID, st wm.OutputState) error {
	o, ok := r.outputs[out]
	if !ok {
		return fmt.Errorf("unknown output %d", out)
	}
	if st.Scale != 0 && st.Scale != 1 {
		r.logger.Debug("output scale only affects layout on X11", "output", o.name, "scale", st.Scale)
	}

	req, change, err := planCrtc(o, st)
	if err != nil || !change {
		return err
	}
	if err := r.conn.setCrtc(r.res, o, req); err != nil {
		return err
	}
	res, err := r.conn.enumerateOutputs()
	if err != nil {
		return err
	}
	r.setOutputs(res)
	return nil
}

func (r *Runtime) TestOutput(out wm.OutputID, st wm.OutputState) bool {
	o, ok := r.outputs[out]
	if !ok {
		return false
	}
	_, _, err := planCrtc(o, st)
	return err == nil
}

func (r *Runtime) ReportOutputs(heads []wm.OutputHead) {
	r.heads = append(r.heads[:0], heads...)
	sort.Slice(r.heads, func(i, j int) bool { return r.heads[i].Output < r.heads[j].Output })
	for _, h := range r.heads {
		r.logger.Debug("output head",
			"output", h.Name,
			"enabled", h.Enabled,
			"x", h.X, "y", h.Y,
			"width", h.Mode.Width, "height", h.Mode.Height,
			"transform", h.Transform.String())
	}
}

// CreateRect creates an unmapped override-redirect window filled with c.
func (r *Runtime) CreateRect(layer wm.StackLayer, c wm.Color) wm.NodeID {
	win, err := xwindow.Generate(r.conn.XUtil)
	if err != nil {
		r.logger.Error("failed to allocate backdrop window", "error", err)
		return 0
	}
	err = win.CreateChecked(r.conn.Root, 0, 0, 1, 1,
		xproto.CwBackPixel|xproto.CwOverrideRedirect,
		c.Pixel(), 1)
	if err != nil {
		r.logger.Error("failed to create backdrop window", "error", err)
		return 0
	}
	id := wm.NodeID(win.Id)
	r.nodes[id] = &backdrop{win: win, layer: layer}
	return id
}

// SetNodeEnabled maps or unmaps a backdrop. The lock backdrop goes on top
// of everything and the others at the bottom.
func (r *Runtime) SetNodeEnabled(n wm.NodeID, on bool) {
	b, ok := r.nodes[n]
	if !ok {
		return
	}
	if !on {
		b.win.Unmap()
		return
	}
	b.win.Map()
	mode := uint32(xproto.StackModeBelow)
	if b.layer == wm.StackLock {
		mode = xproto.StackModeAbove
	}
	xproto.ConfigureWindow(r.conn.XUtil.Conn(), b.win.Id, xproto.ConfigWindowStackMode, []uint32{mode})
}

func (r *Runtime) PlaceNode(n wm.NodeID, box tiling.Rect) {
	b, ok := r.nodes[n]
	if !ok || box.Empty() {
		return
	}
	b.win.MoveResize(box.X, box.Y, box.Width, box.Height)
}

func (r *Runtime) DestroyNode(n wm.NodeID) {
	b, ok := r.nodes[n]
	if !ok {
		return
	}
	b.win.Destroy()
	delete(r.nodes, n)
}
