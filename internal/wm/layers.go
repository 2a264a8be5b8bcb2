package wm

import (
	"slices"

	"github.com/1broseidon/tagtile/internal/tiling"
)

// NewLayerSurface registers a layer surface on out, or on the selected
// monitor when out is zero. With no monitor at all the surface is
// destroyed and false is returned.
func (s *Server) NewLayerSurface(id SurfaceID, out OutputID, pending LayerState) bool {
	m := s.monitorByOutput(out)
	if out == 0 || m == nil {
		m = s.selected()
	}
	if m == nil {
		s.logger.Debug("destroying layer surface without output", "surface", id)
		s.rt.DestroyLayer(id)
		return false
	}

	l := &LayerSurface{surface: id, mon: m.id, state: pending}
	l.id = s.layers.insert(l)
	s.surfaces[id] = surfaceRef{kind: surfaceLayer, layer: l.id}
	s.rt.SetStackLayer(id, pending.Layer.StackLayer())
	m.layers[pending.Layer] = append(m.layers[pending.Layer], l.id)

	// Arrange once with the pending state so the client gets its first
	// configure.
	l.mapped = true
	s.arrangeLayers(m)
	return true
}

// LayerCommit applies a committed layer state. changed reports whether
// any double-buffered state changed in this commit.
func (s *Server) LayerCommit(id SurfaceID, current LayerState, mapped, changed bool) {
	l := s.layerBySurface(id)
	if l == nil {
		return
	}
	m := s.monitor(l.mon)
	if m == nil {
		s.logger.Debug("layer surface lost its monitor", "surface", id)
		return
	}

	if current.Layer != l.state.Layer {
		m.layers[l.state.Layer] = removeID(m.layers[l.state.Layer], l.id)
		m.layers[current.Layer] = append(m.layers[current.Layer], l.id)
		s.rt.SetStackLayer(id, current.Layer.StackLayer())
	}
	l.state = current

	if !changed && l.mapped == mapped {
		return
	}
	l.mapped = mapped
	s.arrangeLayers(m)
}

// LayerMapped announces the layer surface on its output.
func (s *Server) LayerMapped(id SurfaceID) {
	l := s.layerBySurface(id)
	if l == nil {
		return
	}
	if m := s.monitor(l.mon); m != nil {
		s.rt.EnterOutput(id, m.output)
	}
	s.refreshPointer()
}

// LayerUnmapped hides a layer surface and gives up its exclusive focus.
func (s *Server) LayerUnmapped(id SurfaceID) {
	l := s.layerBySurface(id)
	if l == nil {
		return
	}
	l.mapped = false
	s.rt.SetVisible(id, false)
	if s.exclusive == id {
		s.exclusive = 0
	}
	if m := s.monitor(l.mon); m != nil {
		s.arrangeLayers(m)
	}
	if s.kbFocus == id {
		s.focus(s.topVisible(s.selected()), true)
	}
	s.refreshPointer()
}

// LayerDestroyed forgets a layer surface.
func (s *Server) LayerDestroyed(id SurfaceID) {
	l := s.layerBySurface(id)
	if l == nil {
		return
	}
	s.destroyLayer(l)
}

func (s *Server) destroyLayer(l *LayerSurface) {
	if m := s.monitor(l.mon); m != nil {
		m.layers[l.state.Layer] = removeID(m.layers[l.state.Layer], l.id)
	}
	if s.exclusive == l.surface {
		s.exclusive = 0
	}
	if s.kbFocus == l.surface {
		s.kbFocus = 0
	}
	delete(s.surfaces, l.surface)
	s.layers.remove(l.id)
}

// arrangeLayers places m's layer surfaces, reserving exclusive zones first,
// then hands the keyboard to the topmost interactive overlay.
func (s *Server) arrangeLayers(m *Monitor) {
	if !m.enabled {
		return
	}
	usable := m.box

	for i := shellLayerCount - 1; i >= 0; i-- {
		s.arrangeLayer(m, m.layers[i], &usable, true)
	}
	if usable != m.usable {
		m.usable = usable
		s.arrange(m)
	}
	for i := shellLayerCount - 1; i >= 0; i-- {
		s.arrangeLayer(m, m.layers[i], &usable, false)
	}

	for _, layer := range []ShellLayer{ShellOverlay, ShellTop} {
		for _, id := range slices.Backward(m.layers[layer]) {
			l := s.layers.get(id)
			if l == nil || s.lock.state == Locked || !l.state.KeyboardInteractive || !l.mapped {
				continue
			}
			s.focus(nil, false)
			s.exclusive = l.surface
			s.keyboardEnter(l.surface)
			return
		}
	}
}

func (s *Server) arrangeLayer(m *Monitor, list []LayerID, usable *tiling.Rect, exclusive bool) {
	for _, id := range list {
		l := s.layers.get(id)
		if l == nil {
			continue
		}
		if exclusive != (l.state.Placement.ExclusiveZone > 0) {
			continue
		}
		l.geom = tiling.ArrangeLayer(m.box, usable, l.state.Placement)
		s.rt.ConfigureLayer(l.surface, l.geom)
	}
}
