package wm

import (
	"strings"

	"github.com/1broseidon/tagtile/internal/tiling"
)

// NewToplevel registers a toplevel surface. It is not managed until it maps.
func (s *Server) NewToplevel(id SurfaceID) {
	if s.clientBySurface(id) != nil {
		return
	}
	c := &Client{surface: id, bw: s.settings.BorderPx}
	c.id = s.clients.insert(c)
	s.surfaces[id] = surfaceRef{kind: surfaceToplevel, client: c.id}
}

// NewPopup registers a popup of parent and constrains it to the area its
// owner lives in.
func (s *Server) NewPopup(id, parent SurfaceID) {
	s.surfaces[id] = surfaceRef{kind: surfacePopup, parent: parent}

	var box tiling.Rect
	switch t := s.resolve(id); t.Kind {
	case TargetWindow:
		c := s.client(t.Client)
		m := s.monitor(c.mon)
		if m == nil {
			return
		}
		box = m.usable.Translate(-c.geom.X, -c.geom.Y)
	case TargetOverlay:
		l := s.layers.get(t.Layer)
		m := s.monitor(l.mon)
		if m == nil {
			return
		}
		box = m.box.Translate(-l.geom.X, -l.geom.Y)
	default:
		return
	}
	s.rt.UnconstrainPopup(id, box)
}

// PopupDestroyed forgets a popup.
func (s *Server) PopupDestroyed(id SurfaceID) {
	if ref, ok := s.surfaces[id]; ok && ref.kind == surfacePopup {
		delete(s.surfaces, id)
	}
}

// Map starts managing a toplevel: it joins the client and focus lists and
// is assigned a monitor and tags.
func (s *Server) Map(id SurfaceID) {
	c := s.clientBySurface(id)
	if c == nil {
		s.NewToplevel(id)
		c = s.clientBySurface(id)
	}
	if c.mapped {
		return
	}
	c.mapped = true

	s.rt.SetBorderColor(id, s.settings.BorderColor)
	s.rt.SetTiled(id, EdgeAll)
	c.geom = s.rt.InitialGeometry(id)
	c.geom.Width += 2 * c.bw
	c.geom.Height += 2 * c.bw

	s.order = pushFront(s.order, c.id)
	s.focusStack = pushFront(s.focusStack, c.id)

	if c.parent = s.rt.Parent(id); c.parent == id {
		c.parent = 0
	}
	if c.parent != 0 {
		if p := s.clientBySurface(c.parent); p != nil && p.mapped {
			c.floating = true
			s.rt.SetStackLayer(id, StackFloat)
			m, tags := s.monitor(p.mon), p.tags
			if m == nil {
				m, tags = s.selected(), 0
			}
			s.setMon(c, m, tags)
			s.printStatus()
			return
		}
	}
	s.applyRules(c)
	s.printStatus()
}

// applyRules sets floating state, monitor and tags from the client rules.
func (s *Server) applyRules(c *Client) {
	minSize, maxSize := s.rt.SizeHints(c.surface)
	c.floating = tiling.IsFloatType(minSize, maxSize)

	appID := s.rt.AppID(c.surface)
	if appID == "" {
		appID = brokenField
	}
	title := s.rt.Title(c.surface)
	if title == "" {
		title = brokenField
	}

	mon := s.selected()
	var newtags uint32
	for _, r := range s.settings.ClientRules {
		if (r.Title == "" || strings.Contains(title, r.Title)) &&
			(r.AppID == "" || strings.Contains(appID, r.AppID)) {
			c.floating = c.floating || r.Floating
			newtags |= r.Tags
			if r.Monitor >= 0 && r.Monitor < len(s.monOrder) {
				if m := s.monitor(s.monOrder[r.Monitor]); m != nil {
					mon = m
				}
			}
		}
	}

	s.rt.SetStackLayer(c.surface, s.stackLayerFor(c))
	s.setMon(c, mon, newtags&s.settings.TagMask())
}

// Unmap stops managing a toplevel. An interactive grab on it is cancelled
// before anything else touches it.
func (s *Server) Unmap(id SurfaceID) {
	c := s.clientBySurface(id)
	if c == nil || !c.mapped {
		return
	}
	if s.grab.client == c.id {
		s.cancelGrab()
	}

	c.mapped = false
	s.order = removeID(s.order, c.id)
	s.setMon(c, nil, 0)
	s.focusStack = removeID(s.focusStack, c.id)
	if s.kbFocus == id {
		s.kbFocus = 0
	}
	if s.ptrFocus == id {
		s.ptrFocus = 0
	}
	s.rt.SetVisible(id, false)
	s.printStatus()
	s.refreshPointer()
}

// Destroy forgets a toplevel for good.
func (s *Server) Destroy(id SurfaceID) {
	c := s.clientBySurface(id)
	if c == nil {
		return
	}
	if c.mapped {
		s.Unmap(id)
	}
	if s.grab.client == c.id {
		s.cancelGrab()
	}
	for sid, ref := range s.surfaces {
		if ref.kind == surfacePopup && ref.parent == id {
			delete(s.surfaces, sid)
		}
	}
	delete(s.surfaces, id)
	s.clients.remove(c.id)
}

// Commit handles a surface commit carrying the surface's current content
// size and the last configure serial it acknowledged.
func (s *Server) Commit(id SurfaceID, size tiling.Size, acked uint32) {
	c := s.clientBySurface(id)
	if c == nil {
		return
	}
	m := s.monitor(c.mon)
	if m != nil && size.Width > 0 && size.Height > 0 &&
		(size.Width != c.geom.Width-2*c.bw || size.Height != c.geom.Height-2*c.bw) {
		if c.floating {
			s.resize(c, c.geom, true)
		} else {
			s.arrange(m)
		}
	}

	if c.resizeSerial != 0 && c.resizeSerial <= acked {
		c.resizeSerial = 0
	}
}

// TitleChanged reports a new title; the status feed only cares about the
// focused client.
func (s *Server) TitleChanged(id SurfaceID) {
	c := s.clientBySurface(id)
	if c == nil {
		return
	}
	if m := s.monitor(c.mon); m != nil && c == s.topVisible(m) {
		s.printStatus()
	}
}

// FullscreenRequest handles a client asking to enter or leave fullscreen.
func (s *Server) FullscreenRequest(id SurfaceID, on bool) {
	c := s.clientBySurface(id)
	if c == nil || !c.mapped {
		return
	}
	s.setFullscreen(c, on)
}

// ActivateRequest marks a client urgent when it asks for attention while
// another client is focused.
func (s *Server) ActivateRequest(id SurfaceID) {
	t := s.resolve(id)
	if t.Kind != TargetWindow {
		return
	}
	c := s.client(t.Client)
	if c == nil || c == s.topVisible(s.selected()) {
		return
	}
	c.urgent = true
	s.rt.SetBorderColor(c.surface, s.settings.UrgentColor)
	s.printStatus()
}

// Frame reports whether a frame should be submitted for out. A frame is
// held back while a visible tiled client still owes a resize ack, unless
// that client's process is stopped.
func (s *Server) Frame(out OutputID) bool {
	m := s.monitorByOutput(out)
	if m == nil {
		return false
	}
	render := true
	s.eachClient(func(c *Client) {
		if !render || c.resizeSerial == 0 || c.floating || !IsVisible(c, m) {
			return
		}
		if pid := s.rt.PID(c.surface); pid > 0 && s.stopped(pid) {
			return
		}
		render = false
	})
	return render
}
