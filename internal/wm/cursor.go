package wm

import "github.com/1broseidon/tagtile/internal/tiling"

// CursorMode returns the current pointer interaction state.
func (s *Server) CursorMode() CursorMode {
	return s.grab.mode
}

// PointerMotion handles a pointer motion event. time is the event
// timestamp in milliseconds and must be non-zero for real input.
func (s *Server) PointerMotion(time uint32) {
	if time == 0 {
		time = 1
	}
	s.motion(time)
}

// refreshPointer recomputes pointer focus without treating it as input.
func (s *Server) refreshPointer() {
	s.motion(0)
}

func (s *Server) motion(time uint32) {
	x, y := s.rt.CursorPosition()
	if time != 0 {
		if m := s.monitorAt(x, y); m != nil {
			s.selmon = m.id
		}
	}

	switch s.grab.mode {
	case CursorMove:
		if c := s.client(s.grab.client); c != nil {
			s.resize(c, tiling.Rect{
				X:      int(x) - s.grab.dx,
				Y:      int(y) - s.grab.dy,
				Width:  c.geom.Width,
				Height: c.geom.Height,
			}, true)
			return
		}
		s.cancelGrab()
	case CursorResize:
		if c := s.client(s.grab.client); c != nil {
			s.resize(c, tiling.Rect{
				X:      c.geom.X,
				Y:      c.geom.Y,
				Width:  int(x) - c.geom.X,
				Height: int(y) - c.geom.Y,
			}, true)
			return
		}
		s.cancelGrab()
	}

	surface, sx, sy := s.rt.SurfaceAt(x, y)
	var c *Client
	if t := s.resolve(surface); t.Kind == TargetWindow {
		if w := s.client(t.Client); w != nil && w.mapped {
			c = w
		}
	}

	// While a button is held the pressed surface keeps the pointer.
	if s.grab.mode == CursorPressed && s.ptrFocus != 0 {
		switch t := s.resolve(s.ptrFocus); t.Kind {
		case TargetWindow:
			if w := s.client(t.Client); w != nil {
				c, surface = w, s.ptrFocus
				sx, sy = x-float64(w.geom.X), y-float64(w.geom.Y)
			}
		case TargetOverlay:
			if l := s.layers.get(t.Layer); l != nil {
				c, surface = nil, s.ptrFocus
				sx, sy = x-float64(l.geom.X), y-float64(l.geom.Y)
			}
		}
	}

	s.pointerFocus(c, surface, sx, sy, time)
}

func (s *Server) pointerFocus(c *Client, surface SurfaceID, sx, sy float64, time uint32) {
	if time != 0 && c != nil {
		s.focus(c, false)
	}
	if surface == 0 {
		s.ptrFocus = 0
		s.rt.PointerClear()
		return
	}
	s.ptrFocus = surface
	s.rt.PointerEnter(surface, sx, sy)
}

// Button handles a pointer button and reports whether the event should
// still be delivered to the surface under the pointer.
func (s *Server) Button(pressed bool) bool {
	if pressed {
		s.grab.mode = CursorPressed
		if s.lock.state == Locked {
			return true
		}
		x, y := s.rt.CursorPosition()
		surface, _, _ := s.rt.SurfaceAt(x, y)
		if t := s.resolve(surface); t.Kind == TargetWindow {
			if c := s.client(t.Client); c != nil && c.mapped {
				s.focus(c, true)
			}
		}
		return true
	}

	if s.lock.state != Locked && (s.grab.mode == CursorMove || s.grab.mode == CursorResize) {
		c := s.client(s.grab.client)
		s.grab = cursorGrab{}
		s.ptrFocus = 0
		s.rt.PointerClear()
		s.refreshPointer()

		x, y := s.rt.CursorPosition()
		if m := s.monitorAt(x, y); m != nil {
			s.selmon = m.id
		}
		if c != nil {
			s.setMon(c, s.selected(), 0)
		}
		return false
	}

	s.grab = cursorGrab{}
	return true
}

// BeginGrab starts an interactive move or resize of the client under the
// pointer. The client becomes floating for the duration and afterwards.
func (s *Server) BeginGrab(mode CursorMode) error {
	if mode != CursorMove && mode != CursorResize {
		return nil
	}
	if s.grab.mode != CursorNormal && s.grab.mode != CursorPressed {
		return nil
	}
	if s.lock.state == Locked {
		return nil
	}

	x, y := s.rt.CursorPosition()
	surface, _, _ := s.rt.SurfaceAt(x, y)
	t := s.resolve(surface)
	if t.Kind != TargetWindow {
		return ErrNoClient
	}
	c := s.client(t.Client)
	if c == nil || !c.mapped || c.fullscreen {
		return ErrNoClient
	}

	s.setFloating(c, true)
	s.grab = cursorGrab{mode: mode, client: c.id}
	switch mode {
	case CursorMove:
		s.grab.dx = int(x) - c.geom.X
		s.grab.dy = int(y) - c.geom.Y
	case CursorResize:
		s.rt.WarpCursor(float64(c.geom.X+c.geom.Width), float64(c.geom.Y+c.geom.Height))
	}
	return nil
}

// cancelGrab drops an in-flight gesture whose client went away.
func (s *Server) cancelGrab() {
	s.grab = cursorGrab{}
}
