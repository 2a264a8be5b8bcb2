package config

import (
	"fmt"
)

type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" {
		return fmt.Sprintf("%s: %s: %v", e.Source.File, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func BuildEffectiveConfig(raw RawConfig) (*Config, error) {
	cfg := DefaultConfig()

	if raw.Tags != nil {
		cfg.Tags = *raw.Tags
	}
	if raw.BorderPx != nil {
		cfg.BorderPx = *raw.BorderPx
	}
	if raw.Gap != nil {
		cfg.Gap = *raw.Gap
	}
	if raw.Colors != nil {
		if raw.Colors.Border != nil {
			cfg.Colors.Border = *raw.Colors.Border
		}
		if raw.Colors.Focus != nil {
			cfg.Colors.Focus = *raw.Colors.Focus
		}
		if raw.Colors.Urgent != nil {
			cfg.Colors.Urgent = *raw.Colors.Urgent
		}
		if raw.Colors.Fullscreen != nil {
			cfg.Colors.Fullscreen = *raw.Colors.Fullscreen
		}
		if raw.Colors.Locked != nil {
			cfg.Colors.Locked = *raw.Colors.Locked
		}
	}

	if raw.MonitorRules != nil {
		cfg.MonitorRules = make([]MonitorRule, 0, len(raw.MonitorRules))
		for _, r := range raw.MonitorRules {
			cfg.MonitorRules = append(cfg.MonitorRules, MonitorRule{
				Name:      derefString(r.Name, ""),
				Mfact:     derefFloat(r.Mfact, 0.55),
				Nmaster:   derefInt(r.Nmaster, 1),
				Scale:     derefFloat(r.Scale, 1),
				Transform: derefString(r.Transform, ""),
				X:         derefInt(r.X, -1),
				Y:         derefInt(r.Y, -1),
			})
		}
	}
	if raw.ClientRules != nil {
		cfg.ClientRules = make([]ClientRule, 0, len(raw.ClientRules))
		for _, r := range raw.ClientRules {
			cfg.ClientRules = append(cfg.ClientRules, ClientRule{
				AppID:    derefString(r.AppID, ""),
				Title:    derefString(r.Title, ""),
				Tags:     r.Tags,
				Floating: derefBool(r.Floating, false),
				Monitor:  derefInt(r.Monitor, -1),
			})
		}
	}

	cfg.Keybindings = mergeStringMap(cfg.Keybindings, raw.Keybindings)
	cfg.Mousebindings = mergeStringMap(cfg.Mousebindings, raw.Mousebindings)

	if raw.Logging != nil {
		if raw.Logging.Level != nil {
			cfg.Logging.Level = *raw.Logging.Level
		}
	}
	if raw.Daemon != nil {
		if raw.Daemon.ReconcileIntervalMs != nil {
			cfg.Daemon.ReconcileIntervalMs = *raw.Daemon.ReconcileIntervalMs
		}
		if raw.Daemon.LogindLock != nil {
			cfg.Daemon.LogindLock = *raw.Daemon.LogindLock
		}
		if raw.Daemon.StatusStdout != nil {
			cfg.Daemon.StatusStdout = *raw.Daemon.StatusStdout
		}
	}

	return cfg, nil
}

func derefInt(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}

func derefFloat(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}

func derefString(p *string, def string) string {
	if p == nil {
		return def
	}
	return *p
}

func derefBool(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}
