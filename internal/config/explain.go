package config

import (
	"fmt"
	"strings"
)

// Explain returns the effective value at the given YAML-like path and its source.
//
// Supported paths include:
//
//	tags
//	border_px
//	gap
//	colors.focus
//	monitor_rules
//	client_rules
//	keybindings
//	keybindings.<key>
//	mousebindings.<button>
//	logging.level
//	daemon.reconcile_interval_ms
func Explain(res *LoadResult, path string) (any, Source, error) {
	if res == nil || res.Config == nil {
		return nil, Source{}, fmt.Errorf("no config loaded")
	}
	if path == "" {
		return nil, Source{}, fmt.Errorf("path is empty")
	}

	value, err := lookupValue(res.Config, path)
	if err != nil {
		return nil, Source{}, err
	}

	// Exact-path file source wins.
	if src, ok := res.Sources[path]; ok {
		return value, src, nil
	}

	// Bindings and monitor rules nobody overrode come from the builtin tables.
	switch {
	case strings.HasPrefix(path, "keybindings."):
		if _, ok := BuiltinKeybindings()[strings.TrimPrefix(path, "keybindings.")]; ok {
			return value, Source{Kind: SourceBuiltin, Name: "keybindings"}, nil
		}
	case strings.HasPrefix(path, "mousebindings."):
		if _, ok := BuiltinMousebindings()[strings.TrimPrefix(path, "mousebindings.")]; ok {
			return value, Source{Kind: SourceBuiltin, Name: "mousebindings"}, nil
		}
	case path == "monitor_rules":
		return value, Source{Kind: SourceBuiltin, Name: "monitor_rules"}, nil
	}

	return value, Source{Kind: SourceDefault, Name: "defaults"}, nil
}

func lookupValue(cfg *Config, path string) (any, error) {
	parts := strings.SplitN(path, ".", 2)
	leaf := func() error {
		if len(parts) != 1 {
			return fmt.Errorf("unknown path: %s", path)
		}
		return nil
	}

	switch parts[0] {
	case "tags":
		return cfg.Tags, leaf()
	case "border_px":
		return cfg.BorderPx, leaf()
	case "gap":
		return cfg.Gap, leaf()
	case "monitor_rules":
		return cfg.MonitorRules, leaf()
	case "client_rules":
		return cfg.ClientRules, leaf()
	case "colors":
		if len(parts) == 1 {
			return cfg.Colors, nil
		}
		switch parts[1] {
		case "border":
			return cfg.Colors.Border, nil
		case "focus":
			return cfg.Colors.Focus, nil
		case "urgent":
			return cfg.Colors.Urgent, nil
		case "fullscreen":
			return cfg.Colors.Fullscreen, nil
		case "locked":
			return cfg.Colors.Locked, nil
		}
	case "keybindings":
		if len(parts) == 1 {
			return cfg.Keybindings, nil
		}
		action, ok := cfg.Keybindings[parts[1]]
		if !ok {
			return nil, fmt.Errorf("unknown keybindings entry %q", parts[1])
		}
		return action, nil
	case "mousebindings":
		if len(parts) == 1 {
			return cfg.Mousebindings, nil
		}
		action, ok := cfg.Mousebindings[parts[1]]
		if !ok {
			return nil, fmt.Errorf("unknown mousebindings entry %q", parts[1])
		}
		return action, nil
	case "logging":
		if len(parts) == 1 {
			return cfg.Logging, nil
		}
		if parts[1] == "level" {
			return cfg.Logging.Level, nil
		}
	case "daemon":
		if len(parts) == 1 {
			return cfg.Daemon, nil
		}
		switch parts[1] {
		case "reconcile_interval_ms":
			return cfg.Daemon.ReconcileIntervalMs, nil
		case "logind_lock":
			return cfg.Daemon.LogindLock, nil
		case "status_stdout":
			return cfg.Daemon.StatusStdout, nil
		}
	}
	return nil, fmt.Errorf("unknown path: %s", path)
}
