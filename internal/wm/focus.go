package wm

// topVisible returns the most recently focused client visible on m.
func (s *Server) topVisible(m *Monitor) *Client {
	if m == nil {
		return nil
	}
	for _, id := range s.focusStack {
		if c := s.clients.get(id); IsVisible(c, m) {
			return c
		}
	}
	return nil
}

func (s *Server) surfaceOf(c *Client) SurfaceID {
	if c == nil {
		return 0
	}
	return c.surface
}

// focus gives c keyboard focus and moves it to the head of the focus stack.
// A nil c clears keyboard focus.
func (s *Server) focus(c *Client, lift bool) {
	if s.lock.state == Locked {
		return
	}
	if c != nil && lift {
		s.rt.Raise(c.surface)
	}
	if c != nil && c.surface == s.kbFocus {
		return
	}

	old := s.kbFocus
	prev := s.resolve(old)
	if prev.Kind == TargetWindow {
		if oc := s.clients.get(prev.Client); oc != nil {
			s.rt.DismissPopups(oc.surface)
		}
	}

	if c != nil {
		s.focusStack = pushFront(s.focusStack, c.id)
		s.selmon = c.mon
		c.urgent = false
		if s.exclusive == 0 {
			s.rt.SetBorderColor(c.surface, s.settings.FocusColor)
		}
	}

	if old != 0 && old != s.surfaceOf(c) {
		switch {
		case prev.Kind == TargetOverlay && s.overlayOnScreen(prev.Layer):
			// The overlay keeps the keyboard; c only moves up the stack so
			// it gets focus back once the overlay goes away.
			return
		case old == s.exclusive && s.rt.WantsFocus(old):
			return
		case prev.Kind == TargetWindow && (c == nil || !s.rt.WantsFocus(c.surface)):
			if oc := s.clients.get(prev.Client); oc != nil {
				s.rt.SetBorderColor(oc.surface, s.settings.BorderColor)
			}
			s.rt.SetActivated(old, false)
		}
	}
	s.printStatus()

	if c == nil {
		s.keyboardClear()
		return
	}
	s.refreshPointer()
	s.keyboardEnter(c.surface)
	s.rt.SetActivated(c.surface, true)
}

func (s *Server) overlayOnScreen(id LayerID) bool {
	l := s.layers.get(id)
	return l != nil && l.mapped && l.state.Layer >= ShellTop
}

func (s *Server) keyboardEnter(id SurfaceID) {
	s.kbFocus = id
	s.rt.KeyboardEnter(id)
}

func (s *Server) keyboardClear() {
	s.kbFocus = 0
	s.rt.KeyboardClear()
}

// Focus focuses the client owning surface and raises it.
func (s *Server) Focus(id SurfaceID) error {
	c := s.clientBySurface(id)
	if c == nil || !c.mapped {
		return ErrNoClient
	}
	s.focus(c, true)
	return nil
}

// FocusStack moves focus to the next (dir > 0) or previous visible client
// on the selected monitor, wrapping around.
func (s *Server) FocusStack(dir int) error {
	m := s.selected()
	sel := s.topVisible(m)
	if sel == nil {
		return ErrNoClient
	}
	if sel.fullscreen {
		return nil
	}

	idx := -1
	for i, id := range s.order {
		if id == sel.id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrNoClient
	}

	n := len(s.order)
	step := 1
	if dir < 0 {
		step = n - 1
	}
	for i, j := 1, idx; i < n; i++ {
		j = (j + step) % n
		if c := s.clients.get(s.order[j]); IsVisible(c, m) {
			s.focus(c, true)
			return nil
		}
	}
	return nil
}

// KillClient politely asks the focused client to close.
func (s *Server) KillClient() error {
	sel := s.topVisible(s.selected())
	if sel == nil {
		return ErrNoClient
	}
	s.rt.Close(sel.surface)
	return nil
}
