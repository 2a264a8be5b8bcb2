package wm

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"slices"

	"github.com/1broseidon/tagtile/internal/procstat"
	"github.com/1broseidon/tagtile/internal/tiling"
)

var (
	ErrNoClient       = errors.New("no focused client")
	ErrNoMonitor      = errors.New("no selected monitor")
	ErrUnknownCommand = errors.New("unknown command")
)

// Client is a mapped application window.
type Client struct {
	id      ClientID
	surface SurfaceID
	parent  SurfaceID

	// geom is layout-relative and includes the border.
	geom tiling.Rect
	prev tiling.Rect
	bw   int

	tags       uint32
	floating   bool
	fullscreen bool
	urgent     bool
	mapped     bool

	mon MonitorID
	// resizeSerial is the configure serial still waiting for an ack.
	resizeSerial uint32
}

// Monitor is a physical display.
type Monitor struct {
	id     MonitorID
	output OutputID
	name   string
	modes  []Mode

	box    tiling.Rect // full geometry
	usable tiling.Rect // geometry minus exclusive zones

	tagset  [2]uint32
	seltags int

	mfact     float64
	nmaster   int
	scale     float64
	transform Transform
	mode      Mode
	enabled   bool

	layers       [shellLayerCount][]LayerID
	lockSurface  SurfaceID
	fullscreenBg NodeID
}

// LayerSurface is a shell-level overlay outside of tiling.
type LayerSurface struct {
	id      LayerID
	surface SurfaceID
	mon     MonitorID
	state   LayerState
	geom    tiling.Rect
	mapped  bool
}

type surfaceKind int

const (
	surfaceToplevel surfaceKind = iota
	surfacePopup
	surfaceLayer
	surfaceLock
)

type surfaceRef struct {
	kind   surfaceKind
	client ClientID
	layer  LayerID
	parent SurfaceID
}

type cursorGrab struct {
	mode   CursorMode
	client ClientID
	dx, dy int
}

type sessionLock struct {
	state  LockState
	active LockID
}

// Options configures the ambient behaviour of a Server.
type Options struct {
	Logger *slog.Logger
	// Status receives the status feed; os.Stdout when nil.
	Status io.Writer
	// Stopped reports whether a client process is stopped.
	Stopped func(pid int) bool
}

// Server is the policy core. It owns every client, monitor and layer
// surface and must only be used from a single goroutine.
type Server struct {
	rt       Runtime
	settings Settings
	logger   *slog.Logger
	status   io.Writer
	stopped  func(pid int) bool

	clients  arena[Client]
	monitors arena[Monitor]
	layers   arena[LayerSurface]

	// order is the tiling order, newest first.
	order      []ClientID
	focusStack []ClientID
	monOrder   []MonitorID

	surfaces map[SurfaceID]surfaceRef
	outputs  map[OutputID]MonitorID

	layout    outputLayout
	layoutBox tiling.Rect

	selmon    MonitorID
	exclusive SurfaceID
	kbFocus   SurfaceID
	ptrFocus  SurfaceID

	grab     cursorGrab
	lock     sessionLock
	lockedBg NodeID
}

// New creates a Server driving rt.
func New(rt Runtime, settings Settings, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	status := opts.Status
	if status == nil {
		status = os.Stdout
	}
	stopped := opts.Stopped
	if stopped == nil {
		stopped = procstat.Stopped
	}

	s := &Server{
		rt:       rt,
		settings: settings,
		logger:   logger,
		status:   status,
		stopped:  stopped,
		surfaces: make(map[SurfaceID]surfaceRef),
		outputs:  make(map[OutputID]MonitorID),
	}
	s.lockedBg = rt.CreateRect(StackLock, settings.LockedBg)
	s.rt.SetNodeEnabled(s.lockedBg, false)
	return s
}

// Settings returns the active settings.
func (s *Server) Settings() Settings {
	return s.settings
}

// ApplySettings swaps in new settings. Existing monitors keep their layout
// parameters; border colors and widths are refreshed.
func (s *Server) ApplySettings(settings Settings) {
	old := s.settings
	s.settings = settings
	mask := settings.TagMask()

	for _, id := range s.order {
		c := s.clients.get(id)
		if c == nil {
			continue
		}
		if c.tags&mask == 0 {
			c.tags = 1
		} else {
			c.tags &= mask
		}
		if !c.fullscreen {
			c.bw = settings.BorderPx
		}
		color := settings.BorderColor
		if c.surface == s.kbFocus {
			color = settings.FocusColor
		} else if c.urgent {
			color = settings.UrgentColor
		}
		s.rt.SetBorderColor(c.surface, color)
	}
	for _, id := range s.monOrder {
		m := s.monitors.get(id)
		if m == nil {
			continue
		}
		for i := range m.tagset {
			if m.tagset[i]&mask == 0 {
				m.tagset[i] = 1
			} else {
				m.tagset[i] &= mask
			}
		}
		s.arrange(m)
	}
	s.logger.Debug("settings applied", "tags", settings.TagCount, "old_tags", old.TagCount)
	s.printStatus()
}

func (s *Server) client(id ClientID) *Client {
	return s.clients.get(id)
}

func (s *Server) monitor(id MonitorID) *Monitor {
	return s.monitors.get(id)
}

func (s *Server) selected() *Monitor {
	return s.monitors.get(s.selmon)
}

func (s *Server) clientBySurface(id SurfaceID) *Client {
	ref, ok := s.surfaces[id]
	if !ok || ref.kind != surfaceToplevel {
		return nil
	}
	return s.clients.get(ref.client)
}

func (s *Server) layerBySurface(id SurfaceID) *LayerSurface {
	ref, ok := s.surfaces[id]
	if !ok || ref.kind != surfaceLayer {
		return nil
	}
	return s.layers.get(ref.layer)
}

func (s *Server) monitorByOutput(out OutputID) *Monitor {
	id, ok := s.outputs[out]
	if !ok {
		return nil
	}
	return s.monitors.get(id)
}

// eachClient calls fn for every live client in tiling order.
func (s *Server) eachClient(fn func(c *Client)) {
	for _, id := range s.order {
		if c := s.clients.get(id); c != nil {
			fn(c)
		}
	}
}

// eachMonitor calls fn for every live monitor in registration order.
func (s *Server) eachMonitor(fn func(m *Monitor)) {
	for _, id := range s.monOrder {
		if m := s.monitors.get(id); m != nil {
			fn(m)
		}
	}
}

func removeID[T any](list []Handle[T], id Handle[T]) []Handle[T] {
	return slices.DeleteFunc(list, func(h Handle[T]) bool { return h == id })
}

func pushFront[T any](list []Handle[T], id Handle[T]) []Handle[T] {
	list = removeID(list, id)
	return slices.Insert(list, 0, id)
}

// TargetKind classifies what a surface ultimately belongs to.
type TargetKind int

const (
	TargetUnknown TargetKind = iota
	TargetWindow
	TargetOverlay
)

// Target is the owner of a surface: a window, an overlay, or neither.
type Target struct {
	Kind   TargetKind
	Client ClientID
	Layer  LayerID
}

// maxSurfaceDepth bounds the walk from a popup to its toplevel.
const maxSurfaceDepth = 32

// resolve walks from a surface up through popup parents to the owning
// toplevel or layer surface.
func (s *Server) resolve(id SurfaceID) Target {
	for depth := 0; id != 0 && depth < maxSurfaceDepth; depth++ {
		ref, ok := s.surfaces[id]
		if !ok {
			return Target{}
		}
		switch ref.kind {
		case surfaceToplevel:
			if s.clients.get(ref.client) == nil {
				return Target{}
			}
			return Target{Kind: TargetWindow, Client: ref.client}
		case surfaceLayer:
			if s.layers.get(ref.layer) == nil {
				return Target{}
			}
			return Target{Kind: TargetOverlay, Layer: ref.layer}
		case surfacePopup:
			id = ref.parent
		default:
			return Target{}
		}
	}
	return Target{}
}

// Resolve reports the owner of a surface.
func (s *Server) Resolve(id SurfaceID) Target {
	return s.resolve(id)
}
