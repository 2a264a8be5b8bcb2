// Package logind turns systemd-logind session lock requests into session
// locks, so loginctl lock-session and idle managers lock tagtile.
package logind

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/godbus/dbus/v5"
)

const (
	busName          = "org.freedesktop.login1"
	managerPath      = dbus.ObjectPath("/org/freedesktop/login1")
	managerInterface = "org.freedesktop.login1.Manager"
	sessionInterface = "org.freedesktop.login1.Session"

	requestTimeout = 5 * time.Second
)

// Locker takes and releases the session lock.
type Locker interface {
	Lock(ctx context.Context) error
	Unlock(ctx context.Context) error
}

// action is what a session signal asks for.
type action int

const (
	actionNone action = iota
	actionLock
	actionUnlock
)

// Listener subscribes to the Lock and Unlock signals of the current
// logind session.
type Listener struct {
	locker Locker
	logger *slog.Logger

	// ignore reports errors that mean the request was already satisfied.
	ignore func(error) bool

	conn    *dbus.Conn
	session dbus.ObjectPath
	signals chan *dbus.Signal
}

// NewListener creates a listener driving locker. ignore may be nil.
func NewListener(locker Locker, ignore func(error) bool, logger *slog.Logger) *Listener {
	if logger == nil {
		logger = slog.Default()
	}
	if ignore == nil {
		ignore = func(error) bool { return false }
	}
	return &Listener{
		locker: locker,
		logger: logger,
		ignore: ignore,
	}
}

// Start connects to the system bus, finds the session and processes its
// signals until ctx is cancelled.
func (l *Listener) Start(ctx context.Context) error {
	conn, err := dbus.SystemBus()
	if err != nil {
		return fmt.Errorf("failed to connect to system bus: %w", err)
	}

	session, err := findSession(conn)
	if err != nil {
		return err
	}

	if err := conn.AddMatchSignal(
		dbus.WithMatchObjectPath(session),
		dbus.WithMatchInterface(sessionInterface),
	); err != nil {
		return fmt.Errorf("failed to add match rule: %w", err)
	}

	l.conn = conn
	l.session = session
	l.signals = make(chan *dbus.Signal, 16)
	conn.Signal(l.signals)

	l.logger.Info("listening for logind lock requests", "session", session)
	go l.run(ctx)
	return nil
}

// findSession resolves the logind session of this process, preferring
// XDG_SESSION_ID.
func findSession(conn *dbus.Conn) (dbus.ObjectPath, error) {
	manager := conn.Object(busName, managerPath)

	var path dbus.ObjectPath
	if id := os.Getenv("XDG_SESSION_ID"); id != "" {
		err := manager.Call(managerInterface+".GetSession", 0, id).Store(&path)
		if err == nil {
			return path, nil
		}
	}
	err := manager.Call(managerInterface+".GetSessionByPID", 0, uint32(os.Getpid())).Store(&path)
	if err != nil {
		return "", fmt.Errorf("failed to find logind session: %w", err)
	}
	return path, nil
}

func (l *Listener) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case sig, ok := <-l.signals:
			if !ok {
				return
			}
			l.handle(ctx, sig)
		}
	}
}

// signalAction classifies a signal from session.
func signalAction(sig *dbus.Signal, session dbus.ObjectPath) action {
	if sig == nil || sig.Path != session {
		return actionNone
	}
	switch sig.Name {
	case sessionInterface + ".Lock":
		return actionLock
	case sessionInterface + ".Unlock":
		return actionUnlock
	}
	return actionNone
}

func (l *Listener) handle(ctx context.Context, sig *dbus.Signal) {
	act := signalAction(sig, l.session)
	if act == actionNone {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	var err error
	locked := act == actionLock
	if locked {
		err = l.locker.Lock(ctx)
	} else {
		err = l.locker.Unlock(ctx)
	}
	switch {
	case err == nil:
		l.logger.Info("session lock changed by logind", "locked", locked)
	case l.ignore(err):
		l.logger.Debug("logind request already satisfied", "locked", locked, "error", err)
	default:
		l.logger.Warn("logind lock request failed", "locked", locked, "error", err)
		return
	}
	l.setLockedHint(locked)
}

// setLockedHint mirrors the lock state into the session's LockedHint.
func (l *Listener) setLockedHint(locked bool) {
	if l.conn == nil {
		return
	}
	call := l.conn.Object(busName, l.session).Call(sessionInterface+".SetLockedHint", 0, locked)
	if call.Err != nil {
		l.logger.Debug("failed to set LockedHint", "error", call.Err)
	}
}

// Stop unsubscribes and closes the bus connection.
func (l *Listener) Stop() error {
	if l.conn == nil {
		return nil
	}
	l.conn.RemoveSignal(l.signals)
	err := l.conn.Close()
	l.conn = nil
	if err != nil && !errors.Is(err, os.ErrClosed) {
		return fmt.Errorf("failed to close system bus: %w", err)
	}
	return nil
}
