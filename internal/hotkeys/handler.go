package hotkeys

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/mousebind"
	"github.com/BurntSushi/xgbutil/xevent"

	"github.com/1broseidon/tagtile/internal/config"
	"github.com/1broseidon/tagtile/internal/wm"
)

// Runner queues a command without waiting for it.
type Runner interface {
	Run(cmd wm.Command)
}

// Dragger drives interactive move and resize from a button drag.
type Dragger interface {
	DragBegin(mode wm.CursorMode, x, y int)
	DragMotion(x, y int, time uint32)
	DragEnd(x, y int)
}

// Handler manages global key and button bindings on the root window.
type Handler struct {
	xu      *xgbutil.XUtil
	root    xproto.Window
	runner  Runner
	dragger Dragger
	logger  *slog.Logger
	start   time.Time

	mu sync.Mutex
}

var ignoreModsOnce sync.Once

// NewHandler creates a new hotkey handler.
func NewHandler(xu *xgbutil.XUtil, runner Runner, dragger Dragger, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}

	ignoreModsOnce.Do(func() {
		configureIgnoreMods(xu)
	})

	return &Handler{
		xu:      xu,
		root:    xu.RootWin(),
		runner:  runner,
		dragger: dragger,
		logger:  logger,
		start:   time.Now(),
	}
}

// Bind replaces every key and button binding. A binding that cannot be
// grabbed is skipped; the returned error lists all of them.
func (h *Handler) Bind(keys []config.KeyBinding, buttons []config.MouseBinding) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	keybind.Detach(h.xu, h.root)
	mousebind.Detach(h.xu, h.root)

	var errs []error
	for _, b := range keys {
		cmd := b.Command
		if err := h.registerFunc(b.Key, func() {
			h.logger.Debug("key binding triggered", "key", b.Key, "command", cmd.String())
			h.runner.Run(cmd)
		}); err != nil {
			errs = append(errs, fmt.Errorf("failed to bind %s: %w", b.Key, err))
		}
	}
	for _, b := range buttons {
		if err := h.registerDrag(b.Button, b.Mode); err != nil {
			errs = append(errs, fmt.Errorf("failed to bind %s: %w", b.Button, err))
		}
	}

	h.logger.Info("bindings registered", "keys", len(keys), "buttons", len(buttons), "failed", len(errs))
	return errors.Join(errs...)
}

// registerFunc registers an arbitrary hotkey callback.
func (h *Handler) registerFunc(keySequence string, callback func()) error {
	return keybind.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
		callback()
	}).Connect(h.xu, h.root, keySequence, true)
}

// registerDrag grabs a button chord on the root window and turns its drags
// into move or resize gestures.
func (h *Handler) registerDrag(buttonStr string, mode wm.CursorMode) error {
	if _, _, err := mousebind.ParseString(h.xu, buttonStr); err != nil {
		return err
	}
	mousebind.Drag(h.xu, h.root, h.root, buttonStr, true,
		func(xu *xgbutil.XUtil, rootX, rootY, eventX, eventY int) (bool, xproto.Cursor) {
			h.dragger.DragBegin(mode, rootX, rootY)
			return true, 0
		},
		func(xu *xgbutil.XUtil, rootX, rootY, eventX, eventY int) {
			h.dragger.DragMotion(rootX, rootY, h.elapsed())
		},
		func(xu *xgbutil.XUtil, rootX, rootY, eventX, eventY int) {
			h.dragger.DragEnd(rootX, rootY)
		})
	return nil
}

// elapsed is a non-zero millisecond timestamp for synthesized motion.
func (h *Handler) elapsed() uint32 {
	return uint32(time.Since(h.start).Milliseconds()) + 1
}

func configureIgnoreMods(xu *xgbutil.XUtil) {
	// Always ignore CapsLock.
	caps := uint16(xproto.ModMaskLock)

	numLock := modMaskForKeysym(xu, "Num_Lock")
	scrollLock := modMaskForKeysym(xu, "Scroll_Lock")

	xevent.IgnoreMods = ignoreMasks(caps, numLock, scrollLock)
}

// ignoreMasks returns every combination of the lock modifiers, including
// none, without duplicates.
func ignoreMasks(caps, numLock, scrollLock uint16) []uint16 {
	base := []uint16{caps}
	if numLock != 0 && numLock != caps {
		base = append(base, numLock)
	}
	if scrollLock != 0 && scrollLock != caps && scrollLock != numLock {
		base = append(base, scrollLock)
	}

	ignore := []uint16{0}
	for subset := 1; subset < (1 << len(base)); subset++ {
		var mask uint16
		for bit := range base {
			if subset&(1<<bit) != 0 {
				mask |= base[bit]
			}
		}
		ignore = append(ignore, mask)
	}
	return ignore
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}
