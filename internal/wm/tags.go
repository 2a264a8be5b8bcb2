package wm

// IsVisible reports whether c is shown on m under m's active tag set.
func IsVisible(c *Client, m *Monitor) bool {
	return c != nil && m != nil && c.mon == m.id && c.tags&m.activeTags() != 0
}

func (m *Monitor) activeTags() uint32 {
	return m.tagset[m.seltags]
}

// OccupiedTags is the union of the tags of every client on m.
func (s *Server) OccupiedTags(m *Monitor) uint32 {
	var occ uint32
	s.eachClient(func(c *Client) {
		if c.mon == m.id {
			occ |= c.tags
		}
	})
	return occ
}

func (s *Server) urgentTags(m *Monitor) uint32 {
	var urg uint32
	s.eachClient(func(c *Client) {
		if c.mon == m.id && c.urgent {
			urg |= c.tags
		}
	})
	return urg
}

// view switches the selected monitor to mask. The previous set stays in the
// other slot so a zero mask recalls it.
func (s *Server) view(mask uint32) {
	m := s.selected()
	if m == nil || mask&s.settings.TagMask() == m.activeTags() {
		return
	}
	m.seltags ^= 1
	if mask&s.settings.TagMask() != 0 {
		m.tagset[m.seltags] = mask & s.settings.TagMask()
	}
	s.focus(s.topVisible(m), true)
	s.arrange(m)
	s.printStatus()
}

// View shows the tags in mask on the selected monitor. Bits beyond the tag
// count are dropped; a mask left empty is ignored.
func (s *Server) View(mask uint32) {
	if mask&s.settings.TagMask() == 0 {
		s.logger.Debug("ignoring empty tag mask", "mask", mask)
		return
	}
	s.view(mask)
}

// ViewPrevious swaps back to the previously viewed tag set.
func (s *Server) ViewPrevious() {
	s.view(0)
}

// Tag moves the focused client to the tags in mask.
func (s *Server) Tag(mask uint32) error {
	m := s.selected()
	if m == nil {
		return ErrNoMonitor
	}
	sel := s.topVisible(m)
	if sel == nil {
		return ErrNoClient
	}
	mask &= s.settings.TagMask()
	if mask == 0 {
		return nil
	}
	sel.tags = mask
	s.focus(s.topVisible(m), true)
	s.arrange(m)
	s.printStatus()
	return nil
}

// ToggleView flips the tags in mask in the selected monitor's active set,
// refusing to leave it empty.
func (s *Server) ToggleView(mask uint32) {
	m := s.selected()
	if m == nil {
		return
	}
	next := m.activeTags() ^ (mask & s.settings.TagMask())
	if next == 0 {
		return
	}
	m.tagset[m.seltags] = next
	s.focus(s.topVisible(m), true)
	s.arrange(m)
	s.printStatus()
}

// ToggleTag flips the tags in mask on the focused client, refusing to leave
// it untagged.
func (s *Server) ToggleTag(mask uint32) error {
	m := s.selected()
	if m == nil {
		return ErrNoMonitor
	}
	sel := s.topVisible(m)
	if sel == nil {
		return ErrNoClient
	}
	next := sel.tags ^ (mask & s.settings.TagMask())
	if next == 0 {
		return nil
	}
	sel.tags = next
	s.focus(s.topVisible(m), true)
	s.arrange(m)
	s.printStatus()
	return nil
}
