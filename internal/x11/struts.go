package x11

import (
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"

	"github.com/1broseidon/tagtile/internal/tiling"
	"github.com/1broseidon/tagtile/internal/wm"
)

// dockStruts is the space a dock reserves on each edge of one output.
type dockStruts struct {
	left   int
	right  int
	top    int
	bottom int
}

// dockStrut reads _NET_WM_STRUT_PARTIAL, widening a plain _NET_WM_STRUT
// to the full root extent.
func (c *Connection) dockStrut(win xproto.Window, rootWidth, rootHeight int) (*ewmh.WmStrutPartial, bool) {
	if sp, err := ewmh.WmStrutPartialGet(c.XUtil, win); err == nil {
		return sp, true
	}

	// Some docks only set _NET_WM_STRUT (no partial ranges).
	s, err := ewmh.WmStrutGet(c.XUtil, win)
	if err != nil {
		return nil, false
	}
	return &ewmh.WmStrutPartial{
		Left:         s.Left,
		Right:        s.Right,
		Top:          s.Top,
		Bottom:       s.Bottom,
		LeftStartY:   0,
		LeftEndY:     uint(rootHeight - 1),
		RightStartY:  0,
		RightEndY:    uint(rootHeight - 1),
		TopStartX:    0,
		TopEndX:      uint(rootWidth - 1),
		BottomStartX: 0,
		BottomEndX:   uint(rootWidth - 1),
	}, true
}

func (c *Connection) rootSize() (int, int, bool) {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(c.Root)).Reply()
	if err != nil {
		return 0, 0, false
	}
	return int(geom.Width), int(geom.Height), true
}

// strutsOnOutput intersects a strut with an output's box.
func strutsOnOutput(box tiling.Rect, rootWidth, rootHeight int, sp *ewmh.WmStrutPartial) dockStruts {
	var acc dockStruts

	// Top strut: y=[0,Top), x=[TopStartX,TopEndX]
	if sp.Top > 0 {
		r := tiling.Rect{X: int(sp.TopStartX), Y: 0, Width: int(sp.TopEndX) + 1 - int(sp.TopStartX), Height: int(sp.Top)}
		acc.top = intersection(box, r).Height
	}

	// Bottom strut: y=[rootHeight-Bottom,rootHeight), x=[BottomStartX,BottomEndX]
	if sp.Bottom > 0 {
		r := tiling.Rect{X: int(sp.BottomStartX), Y: rootHeight - int(sp.Bottom), Width: int(sp.BottomEndX) + 1 - int(sp.BottomStartX), Height: int(sp.Bottom)}
		acc.bottom = intersection(box, r).Height
	}

	// Left strut: x=[0,Left), y=[LeftStartY,LeftEndY]
	if sp.Left > 0 {
		r := tiling.Rect{X: 0, Y: int(sp.LeftStartY), Width: int(sp.Left), Height: int(sp.LeftEndY) + 1 - int(sp.LeftStartY)}
		acc.left = intersection(box, r).Width
	}

	// Right strut: x=[rootWidth-Right,rootWidth), y=[RightStartY,RightEndY]
	if sp.Right > 0 {
		r := tiling.Rect{X: rootWidth - int(sp.Right), Y: int(sp.RightStartY), Width: int(sp.Right), Height: int(sp.RightEndY) + 1 - int(sp.RightStartY)}
		acc.right = intersection(box, r).Width
	}

	return acc
}

// layerState turns the widest reservation into a layer surface anchored
// to that edge and stretched along it. A dock reserving nothing on the
// output yields false.
func (d dockStruts) layerState() (wm.LayerState, bool) {
	st := wm.LayerState{Layer: wm.ShellTop}
	p := &st.Placement

	switch widest := max(d.top, d.bottom, d.left, d.right); {
	case widest == 0:
		return st, false
	case widest == d.top:
		p.Anchor = tiling.AnchorTop | tiling.AnchorLeft | tiling.AnchorRight
		p.Height = d.top
	case widest == d.bottom:
		p.Anchor = tiling.AnchorBottom | tiling.AnchorLeft | tiling.AnchorRight
		p.Height = d.bottom
	case widest == d.left:
		p.Anchor = tiling.AnchorLeft | tiling.AnchorTop | tiling.AnchorBottom
		p.Width = d.left
	default:
		p.Anchor = tiling.AnchorRight | tiling.AnchorTop | tiling.AnchorBottom
		p.Width = d.right
	}
	p.ExclusiveZone = p.Width + p.Height
	return st, true
}

func intersection(a, b tiling.Rect) tiling.Rect {
	x1 := max(a.X, b.X)
	y1 := max(a.Y, b.Y)
	x2 := min(a.X+a.Width, b.X+b.Width)
	y2 := min(a.Y+a.Height, b.Y+b.Height)

	if x2 <= x1 || y2 <= y1 {
		return tiling.Rect{}
	}
	return tiling.Rect{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}
