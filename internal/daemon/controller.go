package daemon

import (
	"context"
	"errors"
	"log/slog"

	"github.com/1broseidon/tagtile/internal/wm"
)

// ErrAlreadyLocked is returned by Lock while a session lock is active.
var ErrAlreadyLocked = errors.New("session already locked")

// ErrNotLocked is returned by Unlock when no lock was taken through the
// controller.
var ErrNotLocked = errors.New("session not locked")

// ErrLocked is returned by Dispatch while the session is locked.
var ErrLocked = errors.New("session is locked")

// SettingsLoader loads fresh core settings, typically from the config file.
// It runs off the loop.
type SettingsLoader func() (wm.Settings, error)

// Controller runs requests from IPC, the logind listener and hotkeys
// against the core on its loop.
type Controller struct {
	loop   *Loop
	server *wm.Server
	load   SettingsLoader
	logger *slog.Logger

	// Owned by the loop goroutine.
	nextLock wm.LockID
	active   wm.LockID
}

// NewController creates a controller for server driven by loop.
func NewController(loop *Loop, server *wm.Server, load SettingsLoader, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		loop:   loop,
		server: server,
		load:   load,
		logger: logger,
	}
}

// Status returns a snapshot of the core state.
func (c *Controller) Status(ctx context.Context) (wm.Status, error) {
	var st wm.Status
	err := c.loop.Call(ctx, func() error {
		st = c.server.Status()
		return nil
	})
	return st, err
}

// Dispatch runs a window-management command and waits for the result.
// Every command changes windows or tags, so all of them are refused with
// ErrLocked while the session is locked. Status, Lock, Unlock and Reload
// stay available.
func (c *Controller) Dispatch(ctx context.Context, cmd wm.Command) error {
	return c.loop.Call(ctx, func() error {
		return c.dispatch(cmd)
	})
}

// Run queues cmd without waiting for it. Key bindings use it.
func (c *Controller) Run(cmd wm.Command) {
	c.loop.Post(func() {
		if err := c.dispatch(cmd); err != nil {
			c.logger.Debug("command failed", "command", cmd.String(), "error", err)
		}
	})
}

// dispatch runs on the loop.
func (c *Controller) dispatch(cmd wm.Command) error {
	if c.server.LockState() == wm.Locked {
		c.logger.Debug("command refused while locked", "command", cmd.String())
		return ErrLocked
	}
	c.logger.Debug("dispatch", "command", cmd.String())
	return c.server.Dispatch(cmd)
}

// Lock takes a session lock. With no lock surfaces the locked backdrop
// covers every output until Unlock.
func (c *Controller) Lock(ctx context.Context) error {
	return c.loop.Call(ctx, func() error {
		if c.server.LockState() == wm.Locked {
			return ErrAlreadyLocked
		}
		c.nextLock++
		if !c.server.NewLock(c.nextLock) {
			return ErrAlreadyLocked
		}
		c.active = c.nextLock
		return nil
	})
}

// Unlock releases the lock taken by Lock.
func (c *Controller) Unlock(ctx context.Context) error {
	return c.loop.Call(ctx, func() error {
		if c.active == 0 || c.server.LockState() != wm.Locked {
			c.active = 0
			return ErrNotLocked
		}
		c.server.Unlock(c.active)
		c.active = 0
		return nil
	})
}

// Reload loads new settings and applies them on the loop.
func (c *Controller) Reload(ctx context.Context) error {
	if c.load == nil {
		return errors.New("reload not supported")
	}
	settings, err := c.load()
	if err != nil {
		return err
	}
	return c.loop.Call(ctx, func() error {
		c.server.ApplySettings(settings)
		c.logger.Info("config reloaded", "tags", settings.TagCount)
		return nil
	})
}
