package wm

// LockState returns the session lock state.
func (s *Server) LockState() LockState {
	return s.lock.state
}

// NewLock handles a lock request. A second lock while one is active is
// destroyed and false is returned; the backdrop stays up either way.
func (s *Server) NewLock(lock LockID) bool {
	s.rt.SetNodeEnabled(s.lockedBg, true)
	if s.lock.active != 0 {
		s.logger.Warn("rejecting session lock: another lock is active", "lock", lock, "active", s.lock.active)
		s.rt.DestroyLock(lock)
		return false
	}

	s.focus(nil, false)
	// focus(nil) leaves an on-screen overlay holding the keyboard.
	s.exclusive = 0
	s.keyboardClear()
	s.lock = sessionLock{state: Locked, active: lock}
	s.rt.SendLocked(lock)
	s.logger.Info("session locked", "lock", lock)
	return true
}

// NewLockSurface places a lock surface over its output and gives it the
// keyboard when that output is selected.
func (s *Server) NewLockSurface(lock LockID, id SurfaceID, out OutputID) {
	if lock == 0 || lock != s.lock.active {
		s.logger.Debug("lock surface for inactive lock", "lock", lock, "surface", id)
		return
	}
	m := s.monitorByOutput(out)
	if m == nil {
		s.logger.Debug("lock surface without monitor", "output", out, "surface", id)
		return
	}

	s.surfaces[id] = surfaceRef{kind: surfaceLock}
	m.lockSurface = id
	s.rt.ConfigureLockSurface(id, m.box)
	if m.id == s.selmon {
		s.keyboardEnter(id)
	}
}

// LockSurfaceDestroyed forgets a lock surface and moves the keyboard to
// another lock surface if it had it.
func (s *Server) LockSurfaceDestroyed(id SurfaceID) {
	delete(s.surfaces, id)

	var next SurfaceID
	s.eachMonitor(func(m *Monitor) {
		if m.lockSurface == id {
			m.lockSurface = 0
		} else if next == 0 && m.lockSurface != 0 {
			next = m.lockSurface
		}
	})

	if s.kbFocus != id {
		return
	}
	switch {
	case s.lock.state == Locked && next != 0:
		s.keyboardEnter(next)
	case s.lock.state != Locked:
		s.focus(s.topVisible(s.selected()), true)
	default:
		s.keyboardClear()
	}
}

// Unlock ends the session lock.
func (s *Server) Unlock(lock LockID) {
	s.destroyLock(lock, true)
}

// LockDestroyed handles the lock object going away. The session is
// released even without a prior unlock.
func (s *Server) LockDestroyed(lock LockID) {
	s.destroyLock(lock, false)
}

func (s *Server) destroyLock(lock LockID, unlock bool) {
	if lock == 0 || lock != s.lock.active {
		return
	}
	s.keyboardClear()
	s.lock = sessionLock{}
	if !unlock {
		s.logger.Warn("session lock destroyed without unlock", "lock", lock)
	}

	s.rt.SetNodeEnabled(s.lockedBg, false)
	s.focus(s.topVisible(s.selected()), false)
	if m := s.selected(); m != nil {
		// A keyboard-interactive overlay gets its exclusive focus back.
		s.arrangeLayers(m)
	}
	s.refreshPointer()
	s.logger.Info("session unlocked", "lock", lock)
}
