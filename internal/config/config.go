package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/1broseidon/tagtile/internal/tiling"
	"github.com/1broseidon/tagtile/internal/wm"
)

const (
	DefaultTags                = 9
	DefaultBorderPx            = 1
	DefaultReconcileIntervalMs = 2000

	// BindingDisabled removes a builtin binding when used as its action.
	BindingDisabled = "none"
)

// Colors are the border and backdrop colors, as #rrggbb or #rrggbbaa.
type Colors struct {
	Border     string `yaml:"border"`
	Focus      string `yaml:"focus"`
	Urgent     string `yaml:"urgent"`
	Fullscreen string `yaml:"fullscreen"`
	Locked     string `yaml:"locked"`
}

// MonitorRule seeds the layout of outputs whose name contains Name.
// An empty Name matches every output.
type MonitorRule struct {
	Name      string  `yaml:"name,omitempty"`
	Mfact     float64 `yaml:"mfact"`
	Nmaster   int     `yaml:"nmaster"`
	Scale     float64 `yaml:"scale"`
	Transform string  `yaml:"transform,omitempty"`
	X         int     `yaml:"x"`
	Y         int     `yaml:"y"`
}

// ClientRule places clients whose app id and title contain the given
// substrings. Tags are 1-based tag numbers.
type ClientRule struct {
	AppID    string `yaml:"app_id,omitempty"`
	Title    string `yaml:"title,omitempty"`
	Tags     []int  `yaml:"tags,omitempty"`
	Floating bool   `yaml:"floating,omitempty"`
	Monitor  int    `yaml:"monitor"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

type DaemonConfig struct {
	// ReconcileIntervalMs is how often the X11 window list is resynced.
	// Zero disables the reconciler.
	ReconcileIntervalMs int  `yaml:"reconcile_interval_ms"`
	LogindLock          bool `yaml:"logind_lock"`
	StatusStdout        bool `yaml:"status_stdout"`
}

// Config is the effective configuration.
type Config struct {
	Tags          int               `yaml:"tags"`
	BorderPx      int               `yaml:"border_px"`
	Gap           int               `yaml:"gap"`
	Colors        Colors            `yaml:"colors"`
	MonitorRules  []MonitorRule     `yaml:"monitor_rules"`
	ClientRules   []ClientRule      `yaml:"client_rules"`
	Keybindings   map[string]string `yaml:"keybindings"`
	Mousebindings map[string]string `yaml:"mousebindings"`
	Logging       LoggingConfig     `yaml:"logging"`
	Daemon        DaemonConfig      `yaml:"daemon"`
}

// KeyBinding is a parsed key binding. Key uses the xgbutil keybind syntax,
// e.g. "Mod4-Shift-1".
type KeyBinding struct {
	Key     string
	Command wm.Command
}

// MouseBinding is a parsed pointer drag binding, e.g. "Mod4-1".
type MouseBinding struct {
	Button string
	Mode   wm.CursorMode
}

func DefaultConfig() *Config {
	return &Config{
		Tags:     DefaultTags,
		BorderPx: DefaultBorderPx,
		Gap:      tiling.DefaultGap,
		Colors: Colors{
			Border:     "#444444ff",
			Focus:      "#005577ff",
			Urgent:     "#ff0000ff",
			Fullscreen: "#1a1a1aff",
			Locked:     "#1a1a1aff",
		},
		MonitorRules:  BuiltinMonitorRules(),
		Keybindings:   BuiltinKeybindings(),
		Mousebindings: BuiltinMousebindings(),
		Logging: LoggingConfig{
			Level: "info",
		},
		Daemon: DaemonConfig{
			ReconcileIntervalMs: DefaultReconcileIntervalMs,
			LogindLock:          true,
			StatusStdout:        true,
		},
	}
}

// Save writes the configuration to the standard location.
//
// Note: this marshals the effective config and will not preserve comments or
// include structure from the original YAML.
func (c *Config) Save() error {
	path, err := DefaultConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

func (c *Config) SaveTo(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate performs strict validation of the effective configuration.
func (c *Config) Validate() error {
	if c.Tags < 1 || c.Tags > wm.MaxTags {
		return &ValidationError{Path: "tags", Err: fmt.Errorf("tags must be between 1 and %d", wm.MaxTags)}
	}
	if c.BorderPx < 0 {
		return &ValidationError{Path: "border_px", Err: fmt.Errorf("border_px must be >= 0")}
	}
	if c.Gap < 0 {
		return &ValidationError{Path: "gap", Err: fmt.Errorf("gap must be >= 0")}
	}
	if _, err := c.colors(); err != nil {
		return err
	}

	for i, r := range c.MonitorRules {
		if r.Mfact < wm.MinMfact || r.Mfact > wm.MaxMfact {
			return &ValidationError{Path: "monitor_rules", Err: fmt.Errorf("rule %d: mfact must be between %.1f and %.1f", i, wm.MinMfact, wm.MaxMfact)}
		}
		if r.Nmaster < 0 {
			return &ValidationError{Path: "monitor_rules", Err: fmt.Errorf("rule %d: nmaster must be >= 0", i)}
		}
		if r.Scale <= 0 {
			return &ValidationError{Path: "monitor_rules", Err: fmt.Errorf("rule %d: scale must be > 0", i)}
		}
		if _, err := wm.ParseTransform(r.Transform); err != nil {
			return &ValidationError{Path: "monitor_rules", Err: fmt.Errorf("rule %d: %w", i, err)}
		}
	}
	for i, r := range c.ClientRules {
		if r.AppID == "" && r.Title == "" {
			return &ValidationError{Path: "client_rules", Err: fmt.Errorf("rule %d: app_id or title is required", i)}
		}
		for _, tag := range r.Tags {
			if tag < 1 || tag > c.Tags {
				return &ValidationError{Path: "client_rules", Err: fmt.Errorf("rule %d: tag %d is not between 1 and %d", i, tag, c.Tags)}
			}
		}
		if r.Monitor < -1 {
			return &ValidationError{Path: "client_rules", Err: fmt.Errorf("rule %d: monitor must be >= -1", i)}
		}
	}

	if _, err := c.KeyBindings(); err != nil {
		return err
	}
	if _, err := c.MouseBindings(); err != nil {
		return err
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return &ValidationError{Path: "logging.level", Err: fmt.Errorf("level must be one of: debug, info, warn, error")}
	}
	if c.Daemon.ReconcileIntervalMs < 0 {
		return &ValidationError{Path: "daemon.reconcile_interval_ms", Err: fmt.Errorf("reconcile_interval_ms must be >= 0")}
	}

	return nil
}

func (c *Config) colors() ([5]wm.Color, error) {
	var out [5]wm.Color
	fields := []struct {
		path  string
		value string
	}{
		{"colors.border", c.Colors.Border},
		{"colors.focus", c.Colors.Focus},
		{"colors.urgent", c.Colors.Urgent},
		{"colors.fullscreen", c.Colors.Fullscreen},
		{"colors.locked", c.Colors.Locked},
	}
	for i, f := range fields {
		color, err := wm.ParseColor(f.value)
		if err != nil {
			return out, &ValidationError{Path: f.path, Err: err}
		}
		out[i] = color
	}
	return out, nil
}

// Settings converts the configuration into core settings.
func (c *Config) Settings() (wm.Settings, error) {
	if err := c.Validate(); err != nil {
		return wm.Settings{}, err
	}
	colors, err := c.colors()
	if err != nil {
		return wm.Settings{}, err
	}

	s := wm.Settings{
		TagCount:     c.Tags,
		BorderPx:     c.BorderPx,
		Gap:          c.Gap,
		BorderColor:  colors[0],
		FocusColor:   colors[1],
		UrgentColor:  colors[2],
		FullscreenBg: colors[3],
		LockedBg:     colors[4],
	}
	for _, r := range c.MonitorRules {
		transform, _ := wm.ParseTransform(r.Transform)
		s.MonitorRules = append(s.MonitorRules, wm.MonitorRule{
			Name:      r.Name,
			Mfact:     r.Mfact,
			Nmaster:   r.Nmaster,
			Scale:     r.Scale,
			Transform: transform,
			X:         r.X,
			Y:         r.Y,
		})
	}
	for _, r := range c.ClientRules {
		var tags uint32
		for _, tag := range r.Tags {
			tags |= 1 << uint(tag-1)
		}
		s.ClientRules = append(s.ClientRules, wm.ClientRule{
			AppID:    r.AppID,
			Title:    r.Title,
			Tags:     tags,
			Floating: r.Floating,
			Monitor:  r.Monitor,
		})
	}
	if err := s.Validate(); err != nil {
		return wm.Settings{}, err
	}
	return s, nil
}

// KeyBindings returns the enabled key bindings sorted by key.
func (c *Config) KeyBindings() ([]KeyBinding, error) {
	var out []KeyBinding
	for _, key := range sortedKeys(c.Keybindings) {
		action := strings.TrimSpace(c.Keybindings[key])
		if action == "" || action == BindingDisabled {
			continue
		}
		if strings.TrimSpace(key) == "" {
			return nil, &ValidationError{Path: "keybindings", Err: fmt.Errorf("binding with empty key")}
		}
		cmd, err := wm.ParseCommand(action)
		if err != nil {
			return nil, &ValidationError{Path: "keybindings." + key, Err: err}
		}
		if cmd.Kind == wm.CmdMove || cmd.Kind == wm.CmdResize {
			return nil, &ValidationError{Path: "keybindings." + key, Err: fmt.Errorf("%s is a mouse binding action", cmd.Kind)}
		}
		out = append(out, KeyBinding{Key: key, Command: cmd})
	}
	return out, nil
}

// MouseBindings returns the enabled pointer bindings sorted by button.
func (c *Config) MouseBindings() ([]MouseBinding, error) {
	var out []MouseBinding
	for _, button := range sortedKeys(c.Mousebindings) {
		action := strings.TrimSpace(c.Mousebindings[button])
		if action == "" || action == BindingDisabled {
			continue
		}
		var mode wm.CursorMode
		switch action {
		case string(wm.CmdMove):
			mode = wm.CursorMove
		case string(wm.CmdResize):
			mode = wm.CursorResize
		default:
			return nil, &ValidationError{Path: "mousebindings." + button, Err: fmt.Errorf("action must be move or resize, got %q", action)}
		}
		out = append(out, MouseBinding{Button: button, Mode: mode})
	}
	return out, nil
}

// LogLevel maps logging.level onto a slog level.
func (c *Config) LogLevel() slog.Level {
	switch c.Logging.Level {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (c *Config) ReconcileInterval() time.Duration {
	return time.Duration(c.Daemon.ReconcileIntervalMs) * time.Millisecond
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
