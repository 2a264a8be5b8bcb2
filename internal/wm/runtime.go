package wm

import "github.com/1broseidon/tagtile/internal/tiling"

// Runtime is the display server the core drives. The core never renders or
// speaks a wire protocol itself: it queries surfaces and issues commands
// through this interface. Every method is called from the loop goroutine.
type Runtime interface {
	// Surface queries.
	Title(id SurfaceID) string
	AppID(id SurfaceID) string
	PID(id SurfaceID) int
	SizeHints(id SurfaceID) (minSize, maxSize tiling.Size)
	InitialGeometry(id SurfaceID) tiling.Rect
	Parent(id SurfaceID) SurfaceID
	// WantsFocus reports whether a surface insists on keeping the
	// keyboard; the previously focused client then stays activated.
	WantsFocus(id SurfaceID) bool

	// Surface requests. Configure returns a serial that the surface will
	// acknowledge on a later commit, or zero when nothing is pending.
	Configure(id SurfaceID, geom tiling.Rect, borderWidth int) uint32
	SetFullscreen(id SurfaceID, on bool)
	SetTiled(id SurfaceID, edges Edges)
	SetActivated(id SurfaceID, on bool)
	SetVisible(id SurfaceID, on bool)
	SetBorderColor(id SurfaceID, c Color)
	SetStackLayer(id SurfaceID, layer StackLayer)
	Raise(id SurfaceID)
	Close(id SurfaceID)
	DismissPopups(id SurfaceID)
	EnterOutput(id SurfaceID, out OutputID)
	LeaveOutput(id SurfaceID, out OutputID)
	UnconstrainPopup(id SurfaceID, box tiling.Rect)

	// Layer and lock surfaces.
	ConfigureLayer(id SurfaceID, box tiling.Rect)
	DestroyLayer(id SurfaceID)
	ConfigureLockSurface(id SurfaceID, box tiling.Rect)
	SendLocked(lock LockID)
	DestroyLock(lock LockID)

	// Seat.
	KeyboardEnter(id SurfaceID)
	KeyboardClear()
	PointerEnter(id SurfaceID, sx, sy float64)
	PointerClear()
	CursorPosition() (x, y float64)
	WarpCursor(x, y float64)
	SurfaceAt(x, y float64) (id SurfaceID, sx, sy float64)

	// Outputs.
	ConfigureOutput(out OutputID, st OutputState) error
	TestOutput(out OutputID, st OutputState) bool
	ReportOutputs(heads []OutputHead)

	// Scene nodes.
	CreateRect(layer StackLayer, c Color) NodeID
	SetNodeEnabled(n NodeID, on bool)
	PlaceNode(n NodeID, box tiling.Rect)
	DestroyNode(n NodeID)
}
