package wm

import (
	"fmt"
	"math"

	"github.com/1broseidon/tagtile/internal/tiling"
)

// Bounds of the master area fraction.
const (
	MinMfact = 0.1
	MaxMfact = 0.9
)

// LayoutSymbol is reported in the status feed.
const LayoutSymbol = "[]="

func (s *Server) masterStack(m *Monitor) tiling.MasterStack {
	return tiling.MasterStack{Mfact: m.mfact, Nmaster: m.nmaster, Gap: s.settings.Gap}
}

func tiled(c *Client, m *Monitor) bool {
	return IsVisible(c, m) && !c.floating && !c.fullscreen
}

// tile lays out the visible tiled clients of m.
func (s *Server) tile(m *Monitor) {
	var clients []*Client
	s.eachClient(func(c *Client) {
		if tiled(c, m) {
			clients = append(clients, c)
		}
	})
	s.masterStack(m).Tile(m.usable, len(clients), func(i int, box tiling.Rect) tiling.Rect {
		c := clients[i]
		s.resize(c, box, false)
		return c.geom
	})
}

// resize stores box as c's geometry after bounds enforcement and asks the
// surface to adopt it. Interactive resizes are bounded by the whole layout,
// others by the client's monitor.
func (s *Server) resize(c *Client, box tiling.Rect, interactive bool) {
	var bbox tiling.Rect
	if interactive {
		bbox = s.layoutBox
	} else if m := s.monitor(c.mon); m != nil {
		bbox = m.usable
	} else {
		bbox = s.layoutBox
	}

	minSize, maxSize := s.rt.SizeHints(c.surface)
	c.geom = tiling.ApplyBounds(box, bbox, tiling.Bounds{
		Min:         minSize,
		Max:         maxSize,
		BorderWidth: c.bw,
		Fullscreen:  c.fullscreen,
	})
	c.resizeSerial = s.rt.Configure(c.surface, c.geom, c.bw)
}

// arrange shows and hides m's clients by tag, toggles the fullscreen
// backdrop and re-tiles.
func (s *Server) arrange(m *Monitor) {
	if m == nil {
		return
	}
	s.eachClient(func(c *Client) {
		if c.mon == m.id {
			s.rt.SetVisible(c.surface, IsVisible(c, m))
		}
	})

	top := s.topVisible(m)
	s.rt.SetNodeEnabled(m.fullscreenBg, top != nil && top.fullscreen)

	s.tile(m)
	s.refreshPointer()
}

func (s *Server) stackLayerFor(c *Client) StackLayer {
	switch {
	case c.fullscreen:
		return StackFullscreen
	case c.floating:
		return StackFloat
	default:
		return StackTile
	}
}

func (s *Server) setFullscreen(c *Client, on bool) {
	c.fullscreen = on
	m := s.monitor(c.mon)
	if m == nil {
		return
	}
	if on {
		c.bw = 0
	} else {
		c.bw = s.settings.BorderPx
	}
	s.rt.SetFullscreen(c.surface, on)
	s.rt.SetStackLayer(c.surface, s.stackLayerFor(c))

	if on {
		c.prev = c.geom
		s.resize(c, m.box, false)
	} else {
		// Floating positions are user-chosen, so restore rather than re-tile.
		s.resize(c, c.prev, false)
	}
	s.arrange(m)
	s.printStatus()
}

func (s *Server) setFloating(c *Client, on bool) {
	c.floating = on
	s.rt.SetStackLayer(c.surface, s.stackLayerFor(c))
	s.arrange(s.monitor(c.mon))
	s.printStatus()
}

// ToggleFullscreen flips fullscreen on the focused client.
func (s *Server) ToggleFullscreen() error {
	sel := s.topVisible(s.selected())
	if sel == nil {
		return ErrNoClient
	}
	s.setFullscreen(sel, !sel.fullscreen)
	return nil
}

// ToggleFloating flips the floating flag of the focused client.
func (s *Server) ToggleFloating() error {
	sel := s.topVisible(s.selected())
	if sel == nil {
		return ErrNoClient
	}
	if sel.fullscreen {
		return nil
	}
	s.setFloating(sel, !sel.floating)
	return nil
}

// SetMfact changes the master fraction of the selected monitor. Values
// below 1.0 are added to the current fraction; larger values minus 1.0 are
// taken as absolute.
func (s *Server) SetMfact(f float64) error {
	m := s.selected()
	if m == nil {
		return ErrNoMonitor
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("mfact %v is not a finite number", f)
	}
	if f < 1.0 {
		f += m.mfact
	} else {
		f -= 1.0
	}
	if f < MinMfact || f > MaxMfact {
		return fmt.Errorf("mfact %.2f out of range [%.1f, %.1f]", f, MinMfact, MaxMfact)
	}
	m.mfact = f
	s.arrange(m)
	return nil
}

// IncNmaster adjusts the master count of the selected monitor, stopping
// at zero.
func (s *Server) IncNmaster(delta int) error {
	m := s.selected()
	if m == nil {
		return ErrNoMonitor
	}
	m.nmaster = max(m.nmaster+delta, 0)
	s.arrange(m)
	return nil
}
