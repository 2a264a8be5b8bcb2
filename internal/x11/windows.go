package x11

import (
	"strings"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xwindow"

	"github.com/1broseidon/tagtile/internal/tiling"
)

// _NET_WM_STATE request actions.
const (
	stateRemove = 0
	stateAdd    = 1
)

// windowKind classifies a window from _NET_WM_WINDOW_TYPE.
type windowKind int

const (
	kindNormal windowKind = iota
	kindDock
	kindIgnored
)

func (k windowKind) String() string {
	switch k {
	case kindNormal:
		return "normal"
	case kindDock:
		return "dock"
	default:
		return "ignored"
	}
}

func classifyTypes(types []string) windowKind {
	for _, t := range types {
		switch t {
		case "_NET_WM_WINDOW_TYPE_NORMAL", "_NET_WM_WINDOW_TYPE_DIALOG", "_NET_WM_WINDOW_TYPE_UTILITY":
			return kindNormal
		case "_NET_WM_WINDOW_TYPE_DOCK":
			return kindDock
		case "_NET_WM_WINDOW_TYPE_DESKTOP",
			"_NET_WM_WINDOW_TYPE_SPLASH",
			"_NET_WM_WINDOW_TYPE_NOTIFICATION",
			"_NET_WM_WINDOW_TYPE_TOOLTIP",
			"_NET_WM_WINDOW_TYPE_DROPDOWN_MENU",
			"_NET_WM_WINDOW_TYPE_POPUP_MENU":
			return kindIgnored
		}
	}
	return kindNormal
}

func (c *Connection) windowKind(win xproto.Window) windowKind {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, win)
	if err != nil {
		// If we can't determine type, assume it's normal
		return kindNormal
	}
	return classifyTypes(types)
}

// windowRect returns the root-relative geometry of win.
func (c *Connection) windowRect(win xproto.Window) (tiling.Rect, bool) {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(win)).Reply()
	if err != nil {
		return tiling.Rect{}, false
	}

	translate, err := xproto.TranslateCoordinates(
		c.XUtil.Conn(),
		win,
		c.Root,
		0, 0,
	).Reply()
	if err != nil {
		return tiling.Rect{}, false
	}

	return tiling.Rect{
		X:      int(translate.DstX),
		Y:      int(translate.DstY),
		Width:  int(geom.Width),
		Height: int(geom.Height),
	}, true
}

func (c *Connection) windowAppID(win xproto.Window) string {
	wmClass, err := icccm.WmClassGet(c.XUtil, win)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(wmClass.Class)
}

func (c *Connection) windowTitle(win xproto.Window) string {
	title, err := ewmh.WmNameGet(c.XUtil, win)
	if err == nil {
		title = strings.TrimSpace(title)
		if title != "" {
			return title
		}
	}

	title, err = icccm.WmNameGet(c.XUtil, win)
	if err == nil {
		return strings.TrimSpace(title)
	}
	return ""
}

func (c *Connection) windowPID(win xproto.Window) int {
	pid, err := ewmh.WmPidGet(c.XUtil, win)
	if err != nil {
		return 0
	}
	return int(pid)
}

// sizeHints returns the WM_NORMAL_HINTS minimum and maximum sizes. Unset
// bounds are zero.
func (c *Connection) sizeHints(win xproto.Window) (minSize, maxSize tiling.Size) {
	hints, err := icccm.WmNormalHintsGet(c.XUtil, win)
	if err != nil {
		return
	}
	if hints.Flags&icccm.SizeHintPMinSize != 0 {
		minSize = tiling.Size{Width: int(hints.MinWidth), Height: int(hints.MinHeight)}
	}
	if hints.Flags&icccm.SizeHintPMaxSize != 0 {
		maxSize = tiling.Size{Width: int(hints.MaxWidth), Height: int(hints.MaxHeight)}
	}
	return
}

func (c *Connection) transientFor(win xproto.Window) xproto.Window {
	parent, err := icccm.WmTransientForGet(c.XUtil, win)
	if err != nil || parent == c.Root {
		return 0
	}
	return parent
}

func (c *Connection) hasState(win xproto.Window, state string) bool {
	states, err := ewmh.WmStateGet(c.XUtil, win)
	if err != nil {
		return false
	}
	for _, s := range states {
		if s == state {
			return true
		}
	}
	return false
}

// moveResize moves and resizes a window to the given content geometry.
func (c *Connection) moveResize(win xproto.Window, r tiling.Rect) {
	// Maximized windows ignore geometry requests from the pager side.
	c.unmaximizeWindow(win)

	if r.Width < 1 {
		r.Width = 1
	}
	if r.Height < 1 {
		r.Height = 1
	}

	// Use EWMH MoveResize for better WM compatibility
	err := ewmh.MoveresizeWindow(c.XUtil, win, r.X, r.Y, r.Width, r.Height)
	if err != nil {
		// Fallback to direct window manipulation
		xwindow.New(c.XUtil, win).MoveResize(r.X, r.Y, r.Width, r.Height)
	}
}

// unmaximizeWindow removes maximized state from a window
func (c *Connection) unmaximizeWindow(win xproto.Window) {
	states, err := ewmh.WmStateGet(c.XUtil, win)
	if err != nil {
		return
	}
	for _, state := range states {
		if state == "_NET_WM_STATE_MAXIMIZED_HORZ" || state == "_NET_WM_STATE_MAXIMIZED_VERT" {
			ewmh.WmStateReq(c.XUtil, win, stateRemove, state)
		}
	}
}

// clientWindows returns the managed client list in mapping order.
func (c *Connection) clientWindows() ([]xproto.Window, error) {
	return ewmh.ClientListGet(c.XUtil)
}

// stackingOrder returns the client list bottom to top, falling back to
// the mapping order.
func (c *Connection) stackingOrder() []xproto.Window {
	if wins, err := ewmh.ClientListStackingGet(c.XUtil); err == nil {
		return wins
	}
	wins, _ := c.clientWindows()
	return wins
}
