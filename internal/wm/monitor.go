package wm

import (
	"fmt"
	"math"
	"slices"

	"github.com/1broseidon/tagtile/internal/tiling"
)

func preferredMode(modes []Mode) Mode {
	for _, m := range modes {
		if m.Preferred {
			return m
		}
	}
	if len(modes) > 0 {
		return modes[0]
	}
	return Mode{}
}

// effectiveSize is the layout size of an output after transform and scale.
func effectiveSize(mode Mode, scale float64, t Transform) tiling.Size {
	w, h := mode.Width, mode.Height
	if t.Rotated() {
		w, h = h, w
	}
	if scale <= 0 {
		scale = 1
	}
	return tiling.Size{
		Width:  int(math.Round(float64(w) / scale)),
		Height: int(math.Round(float64(h) / scale)),
	}
}

func (m *Monitor) state() OutputState {
	return OutputState{
		Enabled:   m.enabled,
		Mode:      m.mode,
		Scale:     m.scale,
		Transform: m.transform,
		X:         m.box.X,
		Y:         m.box.Y,
	}
}

// OutputAdded registers a new output as a monitor, applying the matching
// monitor rule and the preferred mode.
func (s *Server) OutputAdded(info OutputInfo) error {
	if s.monitorByOutput(info.ID) != nil {
		return fmt.Errorf("output %q already registered", info.Name)
	}

	rule := s.settings.monitorRule(info.Name)
	m := &Monitor{
		output:    info.ID,
		name:      info.Name,
		modes:     slices.Clone(info.Modes),
		tagset:    [2]uint32{1, 1},
		mfact:     rule.Mfact,
		nmaster:   rule.Nmaster,
		scale:     rule.Scale,
		transform: rule.Transform,
		mode:      preferredMode(info.Modes),
		enabled:   true,
	}

	st := m.state()
	st.X, st.Y = rule.X, rule.Y
	if err := s.rt.ConfigureOutput(info.ID, st); err != nil {
		return fmt.Errorf("failed to enable output %q: %w", info.Name, err)
	}

	m.id = s.monitors.insert(m)
	s.monOrder = append(s.monOrder, m.id)
	s.outputs[info.ID] = m.id
	if s.selmon.IsZero() || s.selected() == nil {
		s.selmon = m.id
	}
	s.printStatus()

	m.fullscreenBg = s.rt.CreateRect(StackFullscreen, s.settings.FullscreenBg)
	s.rt.SetNodeEnabled(m.fullscreenBg, false)

	size := effectiveSize(m.mode, m.scale, m.transform)
	if rule.X < 0 || rule.Y < 0 {
		s.layout.addAuto(info.ID, size)
	} else {
		s.layout.add(info.ID, rule.X, rule.Y, size)
	}
	s.logger.Info("output added", "output", info.Name, "width", size.Width, "height", size.Height)

	s.Reflow()
	return nil
}

// OutputModeChanged records a new current mode for an output.
func (s *Server) OutputModeChanged(out OutputID, mode Mode) {
	m := s.monitorByOutput(out)
	if m == nil {
		return
	}
	m.mode = mode
	s.layout.resize(out, effectiveSize(m.mode, m.scale, m.transform))
	s.Reflow()
}

// OutputRemoved tears down a monitor, moving its clients to the newly
// selected monitor.
func (s *Server) OutputRemoved(out OutputID) {
	m := s.monitorByOutput(out)
	if m == nil {
		return
	}

	for i := range m.layers {
		for _, id := range slices.Clone(m.layers[i]) {
			if l := s.layers.get(id); l != nil {
				s.rt.DestroyLayer(l.surface)
				s.destroyLayer(l)
			}
		}
	}

	if m.lockSurface != 0 {
		s.LockSurfaceDestroyed(m.lockSurface)
	}

	s.monOrder = removeID(s.monOrder, m.id)
	delete(s.outputs, out)
	s.layout.remove(out)
	s.rt.DestroyNode(m.fullscreenBg)

	s.closeMonitor(m)
	s.monitors.remove(m.id)
	s.logger.Info("output removed", "output", m.name)

	s.Reflow()
}

// closeMonitor reselects the monitor if m was selected and moves m's
// clients onto the selection.
func (s *Server) closeMonitor(m *Monitor) {
	if len(s.monOrder) == 0 {
		s.selmon = MonitorID{}
	} else if m.id == s.selmon {
		s.selmon = s.nextEnabledMonitor(m.id)
	}

	sel := s.selected()
	s.eachClient(func(c *Client) {
		if c.floating && c.geom.X > m.box.Width {
			s.resize(c, c.geom.Translate(-m.usable.Width, 0), false)
		}
		if c.mon == m.id {
			s.setMon(c, sel, c.tags)
		}
	})
	s.focus(s.topVisible(sel), true)
	s.printStatus()
}

// nextEnabledMonitor scans the monitor list once, starting after from, for
// an enabled monitor other than from.
func (s *Server) nextEnabledMonitor(from MonitorID) MonitorID {
	n := len(s.monOrder)
	start := slices.Index(s.monOrder, from) + 1
	for i := 0; i < n; i++ {
		id := s.monOrder[(start+i)%n]
		if m := s.monitors.get(id); m != nil && m.enabled && id != from {
			return id
		}
	}
	return MonitorID{}
}

// setMon moves c to m, as a leave from the old monitor followed by an
// enter on the new one. A zero newtags adopts m's active tags.
func (s *Server) setMon(c *Client, m *Monitor, newtags uint32) {
	oldmon := s.monitor(c.mon)
	if oldmon == m {
		return
	}
	c.mon = MonitorID{}
	if m != nil {
		c.mon = m.id
	}
	c.prev = c.geom

	if oldmon != nil {
		s.rt.LeaveOutput(c.surface, oldmon.output)
		s.arrange(oldmon)
	}
	if m != nil {
		s.resize(c, c.geom, false)
		s.rt.EnterOutput(c.surface, m.output)
		if newtags != 0 {
			c.tags = newtags
		} else {
			c.tags = m.activeTags()
		}
		s.setFullscreen(c, c.fullscreen)
	}
	s.focus(s.topVisible(s.selected()), true)
}

// Reflow recomputes every monitor's geometry from the output layout and
// re-arranges everything on top of it.
func (s *Server) Reflow() {
	var heads []OutputHead

	s.eachMonitor(func(m *Monitor) {
		if m.enabled {
			return
		}
		st := m.state()
		st.Enabled = false
		heads = append(heads, OutputHead{Output: m.output, Name: m.name, OutputState: st})
		s.layout.remove(m.output)
		s.closeMonitor(m)
		m.box = tiling.Rect{}
		m.usable = tiling.Rect{}
	})

	s.eachMonitor(func(m *Monitor) {
		if m.enabled && !s.layout.contains(m.output) {
			s.layout.addAuto(m.output, effectiveSize(m.mode, m.scale, m.transform))
		}
	})

	s.layoutBox = s.layout.bounds()
	s.rt.PlaceNode(s.lockedBg, s.layoutBox)

	s.eachMonitor(func(m *Monitor) {
		if !m.enabled {
			return
		}
		box, _ := s.layout.box(m.output)
		m.box = box
		m.usable = box
		s.rt.PlaceNode(m.fullscreenBg, m.box)
		if m.lockSurface != 0 {
			s.rt.ConfigureLockSurface(m.lockSurface, m.box)
		}

		s.arrangeLayers(m)
		s.arrange(m)

		heads = append(heads, OutputHead{Output: m.output, Name: m.name, OutputState: m.state()})
	})

	if sel := s.selected(); sel != nil && sel.enabled {
		s.eachClient(func(c *Client) {
			if c.mon.IsZero() && c.mapped {
				s.setMon(c, sel, c.tags)
			}
		})
		s.focus(s.topVisible(sel), true)
		if sel.lockSurface != 0 {
			s.keyboardEnter(sel.lockSurface)
			s.rt.SetActivated(sel.lockSurface, true)
		}
	}

	s.rt.ReportOutputs(heads)
}

// ApplyOutputConfig applies or, when test is set, only tests a set of
// output heads. It reports whether every head was accepted.
func (s *Server) ApplyOutputConfig(heads []OutputHead, test bool) bool {
	ok := true
	for _, h := range heads {
		m := s.monitorByOutput(h.Output)
		if m == nil {
			ok = false
			continue
		}
		st := h.OutputState
		if st.Scale <= 0 {
			st.Scale = m.scale
		}
		if test {
			ok = s.rt.TestOutput(h.Output, st) && ok
			continue
		}
		if err := s.rt.ConfigureOutput(h.Output, st); err != nil {
			s.logger.Warn("output configuration rejected", "output", m.name, "error", err)
			ok = false
			continue
		}

		m.enabled = st.Enabled
		if !st.Enabled {
			continue
		}
		if st.Mode.Width > 0 && st.Mode.Height > 0 {
			m.mode = st.Mode
		}
		m.scale = st.Scale
		m.transform = st.Transform
		size := effectiveSize(m.mode, m.scale, m.transform)
		if !s.layout.contains(h.Output) || m.box.X != st.X || m.box.Y != st.Y {
			s.layout.add(h.Output, st.X, st.Y, size)
		} else {
			s.layout.resize(h.Output, size)
		}
	}
	if !test {
		s.Reflow()
	}
	return ok
}

func (s *Server) monitorAt(x, y float64) *Monitor {
	out, ok := s.layout.outputAt(x, y)
	if !ok {
		return nil
	}
	return s.monitorByOutput(out)
}

// dirToMonitor finds the monitor next to the selected one in dir, wrapping
// around to the far side when there is none.
func (s *Server) dirToMonitor(dir Direction) *Monitor {
	sel := s.selected()
	if sel == nil || !s.layout.contains(sel.output) {
		return sel
	}
	if out, ok := s.layout.adjacent(sel.output, dir); ok {
		return s.monitorByOutput(out)
	}
	if out, ok := s.layout.farthest(sel.output, dir.Opposite()); ok {
		return s.monitorByOutput(out)
	}
	return sel
}

// FocusMonitor selects the monitor in dir, skipping disabled ones.
func (s *Server) FocusMonitor(dir Direction) error {
	if s.selected() == nil {
		return ErrNoMonitor
	}
	n := len(s.monOrder)
	for i := 0; i <= n; i++ {
		m := s.dirToMonitor(dir)
		if m == nil {
			break
		}
		s.selmon = m.id
		if m.enabled {
			break
		}
	}
	s.focus(s.topVisible(s.selected()), true)
	s.printStatus()
	return nil
}

// TagMonitor sends the focused client to the monitor in dir.
func (s *Server) TagMonitor(dir Direction) error {
	sel := s.topVisible(s.selected())
	if sel == nil {
		return ErrNoClient
	}
	s.setMon(sel, s.dirToMonitor(dir), 0)
	return nil
}
