package x11

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xprop"
	"github.com/BurntSushi/xgbutil/xwindow"

	"github.com/1broseidon/tagtile/internal/tiling"
	"github.com/1broseidon/tagtile/internal/wm"
)

// _NET_ACTIVE_WINDOW source indication sent by applications.
const sourceApplication = 1

// Poster queues work onto the loop goroutine.
type Poster interface {
	Post(fn func()) bool
}

// Source turns X events into core events. X callbacks run on the event
// loop goroutine and only post work; everything that touches the core or
// the runtime runs on the loop.
type Source struct {
	conn   *Connection
	rt     *Runtime
	server *wm.Server
	loop   Poster
	logger *slog.Logger

	// Owned by the loop goroutine.
	managed map[xproto.Window]windowKind

	onClientList func()
}

// NewSource creates an event source feeding server through loop.
func NewSource(conn *Connection, rt *Runtime, server *wm.Server, loop Poster, logger *slog.Logger) *Source {
	if logger == nil {
		logger = slog.Default()
	}
	return &Source{
		conn:    conn,
		rt:      rt,
		server:  server,
		loop:    loop,
		logger:  logger,
		managed: make(map[xproto.Window]windowKind),
	}
}

// OnClientListChange registers fn to run, on the X event goroutine, when
// _NET_CLIENT_LIST changes. The daemon uses it to trigger a resync.
func (s *Source) OnClientListChange(fn func()) {
	s.onClientList = fn
}

// Start selects root window events and queues the initial output scan.
func (s *Source) Start() error {
	xu := s.conn.XUtil
	root := xwindow.New(xu, s.conn.Root)
	if err := root.Listen(xproto.EventMaskPropertyChange, xproto.EventMaskStructureNotify); err != nil {
		return fmt.Errorf("failed to select root events: %w", err)
	}

	xevent.PropertyNotifyFun(func(xu *xgbutil.XUtil, ev xevent.PropertyNotifyEvent) {
		name, err := xprop.AtomName(xu, ev.Atom)
		if err != nil || name != "_NET_CLIENT_LIST" {
			return
		}
		if s.onClientList != nil {
			s.onClientList()
		}
	}).Connect(xu, s.conn.Root)

	// RandR changes resize the root window.
	xevent.ConfigureNotifyFun(func(xu *xgbutil.XUtil, ev xevent.ConfigureNotifyEvent) {
		s.loop.Post(s.RefreshOutputs)
	}).Connect(xu, s.conn.Root)

	s.loop.Post(s.RefreshOutputs)
	return nil
}

// RefreshOutputs re-enumerates RandR outputs and reports hotplug and mode
// changes to the core. It must run on the loop.
func (s *Source) RefreshOutputs() {
	res, err := s.conn.enumerateOutputs()
	if err != nil {
		s.logger.Warn("output enumeration failed", "error", err)
		return
	}
	ch := diffOutputs(s.rt.outputs, res.outputs)
	s.rt.setOutputs(res)
	if ch.empty() {
		return
	}

	for _, id := range ch.removed {
		s.server.OutputRemoved(id)
	}
	for _, o := range ch.added {
		if err := s.server.OutputAdded(o.info()); err != nil {
			s.logger.Warn("output not added", "output", o.name, "error", err)
		}
	}
	for _, o := range ch.resized {
		s.server.OutputModeChanged(o.id, o.current())
	}
}

// ListWindows returns the window manager's client list. It is safe to
// call off the loop.
func (s *Source) ListWindows() ([]wm.SurfaceID, error) {
	wins, err := s.conn.clientWindows()
	if err != nil {
		return nil, fmt.Errorf("failed to get client list: %w", err)
	}
	ids := make([]wm.SurfaceID, 0, len(wins))
	for _, win := range wins {
		ids = append(ids, wm.SurfaceID(win))
	}
	return ids, nil
}

// Managed returns every window the source tracks, including ones it
// decided not to hand to the core.
func (s *Source) Managed() []wm.SurfaceID {
	ids := make([]wm.SurfaceID, 0, len(s.managed))
	for win := range s.managed {
		ids = append(ids, wm.SurfaceID(win))
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Manage starts tracking a window: normal windows become clients and docks
// with a strut become layer surfaces.
func (s *Source) Manage(id wm.SurfaceID) {
	win := window(id)
	if _, ok := s.managed[win]; ok {
		return
	}

	kind := s.conn.windowKind(win)
	switch kind {
	case kindNormal:
		s.listen(win)
		s.server.NewToplevel(id)
		s.server.Map(id)
		if s.conn.hasState(win, "_NET_WM_STATE_FULLSCREEN") {
			s.rt.fullscreen[win] = true
			s.server.FullscreenRequest(id, true)
		}
	case kindDock:
		st, out, ok := s.dockState(win)
		if !ok || !s.server.NewLayerSurface(id, out, st) {
			kind = kindIgnored
			break
		}
		s.listen(win)
		s.server.LayerMapped(id)
	}
	s.managed[win] = kind
	s.logger.Debug("window managed", "window", id, "kind", kind.String())
}

// Unmanage stops tracking a window and removes it from the core.
func (s *Source) Unmanage(id wm.SurfaceID) {
	win := window(id)
	kind, ok := s.managed[win]
	if !ok {
		return
	}
	delete(s.managed, win)
	xevent.Detach(s.conn.XUtil, win)

	switch kind {
	case kindNormal:
		s.server.Unmap(id)
		s.server.Destroy(id)
	case kindDock:
		s.server.LayerUnmapped(id)
		s.server.LayerDestroyed(id)
	}
	s.rt.forget(win)
}

func (s *Source) listen(win xproto.Window) {
	xu := s.conn.XUtil
	if err := xwindow.New(xu, win).Listen(xproto.EventMaskStructureNotify, xproto.EventMaskPropertyChange); err != nil {
		s.logger.Debug("failed to select window events", "window", win, "error", err)
	}

	xevent.ConfigureNotifyFun(func(xu *xgbutil.XUtil, ev xevent.ConfigureNotifyEvent) {
		size := tiling.Size{Width: int(ev.Width), Height: int(ev.Height)}
		s.loop.Post(func() { s.configured(ev.Window, size) })
	}).Connect(xu, win)

	xevent.PropertyNotifyFun(func(xu *xgbutil.XUtil, ev xevent.PropertyNotifyEvent) {
		name, err := xprop.AtomName(xu, ev.Atom)
		if err != nil {
			return
		}
		s.loop.Post(func() { s.propertyChanged(ev.Window, name) })
	}).Connect(xu, win)

	xevent.DestroyNotifyFun(func(xu *xgbutil.XUtil, ev xevent.DestroyNotifyEvent) {
		s.loop.Post(func() { s.Unmanage(wm.SurfaceID(ev.Window)) })
	}).Connect(xu, win)

	// Root messages about win are dispatched on win.
	xevent.ClientMessageFun(func(xu *xgbutil.XUtil, ev xevent.ClientMessageEvent) {
		name, err := xprop.AtomName(xu, ev.Type)
		if err != nil || name != "_NET_ACTIVE_WINDOW" {
			return
		}
		if ev.Data.Data32[0] != sourceApplication {
			return
		}
		s.loop.Post(func() { s.server.ActivateRequest(wm.SurfaceID(ev.Window)) })
	}).Connect(xu, win)
}

func (s *Source) configured(win xproto.Window, size tiling.Size) {
	if kind, ok := s.managed[win]; !ok || kind != kindNormal {
		return
	}
	reported, serial := s.rt.acknowledge(win, size)
	if reported == (tiling.Size{}) && serial == 0 {
		return
	}
	s.server.Commit(wm.SurfaceID(win), reported, serial)
}

func (s *Source) propertyChanged(win xproto.Window, name string) {
	kind, ok := s.managed[win]
	if !ok {
		return
	}
	id := wm.SurfaceID(win)

	switch name {
	case "_NET_WM_NAME", "WM_NAME":
		if kind == kindNormal {
			s.server.TitleChanged(id)
		}
	case "_NET_WM_STATE":
		if kind != kindNormal {
			return
		}
		on := s.conn.hasState(win, "_NET_WM_STATE_FULLSCREEN")
		if on != s.rt.fullscreen[win] {
			s.rt.fullscreen[win] = on
			s.server.FullscreenRequest(id, on)
		}
	case "_NET_WM_STRUT", "_NET_WM_STRUT_PARTIAL":
		if kind != kindDock {
			return
		}
		st, _, ok := s.dockState(win)
		s.server.LayerCommit(id, st, ok, true)
	}
}

// dockState derives the layer placement of a dock from its strut on the
// output it sits on.
func (s *Source) dockState(win xproto.Window) (wm.LayerState, wm.OutputID, bool) {
	rect, ok := s.conn.windowRect(win)
	if !ok {
		return wm.LayerState{}, 0, false
	}
	out := s.rt.outputAt(rect)
	o, ok := s.rt.outputs[out]
	if !ok {
		return wm.LayerState{}, 0, false
	}
	rootWidth, rootHeight, ok := s.conn.rootSize()
	if !ok {
		return wm.LayerState{}, 0, false
	}
	sp, ok := s.conn.dockStrut(win, rootWidth, rootHeight)
	if !ok {
		return wm.LayerState{}, 0, false
	}
	st, ok := strutsOnOutput(o.box, rootWidth, rootHeight, sp).layerState()
	return st, out, ok
}

// DragBegin presses the button at (x, y) and starts an interactive move
// or resize of the client there.
func (s *Source) DragBegin(mode wm.CursorMode, x, y int) {
	s.loop.Post(func() {
		s.rt.setDragPointer(float64(x), float64(y), true)
		s.server.Button(true)
		if err := s.server.BeginGrab(mode); err != nil {
			s.logger.Debug("grab not started", "mode", mode.String(), "error", err)
		}
	})
}

// DragMotion reports pointer motion during a drag. time is in
// milliseconds.
func (s *Source) DragMotion(x, y int, time uint32) {
	s.loop.Post(func() {
		s.rt.setDragPointer(float64(x), float64(y), true)
		s.server.PointerMotion(time)
	})
}

// DragEnd releases the button and drops the drag pointer override.
func (s *Source) DragEnd(x, y int) {
	s.loop.Post(func() {
		s.rt.setDragPointer(float64(x), float64(y), true)
		s.server.Button(false)
		s.rt.setDragPointer(float64(x), float64(y), false)
	})
}
