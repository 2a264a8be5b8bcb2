package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// IncludeList supports either:
//
//	include: "/path/to/file.yaml"
//
// or:
//
//	include:
//	  - "/path/to/file.yaml"
//	  - "/path/to/dir"
//
// TOML files only accept the list form.
type IncludeList []string

func (l *IncludeList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case 0:
		// Not present.
		*l = nil
		return nil
	case yaml.ScalarNode:
		if value.Tag != "!!str" {
			return fmt.Errorf("include must be a string or list of strings")
		}
		*l = []string{value.Value}
		return nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(value.Content))
		for _, item := range value.Content {
			if item.Kind != yaml.ScalarNode || item.Tag != "!!str" {
				return fmt.Errorf("include entries must be strings")
			}
			out = append(out, item.Value)
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("include must be a string or list of strings")
	}
}

type RawColors struct {
	Border     *string `yaml:"border" toml:"border"`
	Focus      *string `yaml:"focus" toml:"focus"`
	Urgent     *string `yaml:"urgent" toml:"urgent"`
	Fullscreen *string `yaml:"fullscreen" toml:"fullscreen"`
	Locked     *string `yaml:"locked" toml:"locked"`
}

type RawMonitorRule struct {
	Name      *string  `yaml:"name" toml:"name"`
	Mfact     *float64 `yaml:"mfact" toml:"mfact"`
	Nmaster   *int     `yaml:"nmaster" toml:"nmaster"`
	Scale     *float64 `yaml:"scale" toml:"scale"`
	Transform *string  `yaml:"transform" toml:"transform"`
	X         *int     `yaml:"x" toml:"x"`
	Y         *int     `yaml:"y" toml:"y"`
}

type RawClientRule struct {
	AppID    *string `yaml:"app_id" toml:"app_id"`
	Title    *string `yaml:"title" toml:"title"`
	Tags     []int   `yaml:"tags" toml:"tags"`
	Floating *bool   `yaml:"floating" toml:"floating"`
	Monitor  *int    `yaml:"monitor" toml:"monitor"`
}

type RawLoggingConfig struct {
	Level *string `yaml:"level" toml:"level"`
}

type RawDaemonConfig struct {
	ReconcileIntervalMs *int  `yaml:"reconcile_interval_ms" toml:"reconcile_interval_ms"`
	LogindLock          *bool `yaml:"logind_lock" toml:"logind_lock"`
	StatusStdout        *bool `yaml:"status_stdout" toml:"status_stdout"`
}

type RawConfig struct {
	Include       IncludeList       `yaml:"include" toml:"include"`
	Tags          *int              `yaml:"tags" toml:"tags"`
	BorderPx      *int              `yaml:"border_px" toml:"border_px"`
	Gap           *int              `yaml:"gap" toml:"gap"`
	Colors        *RawColors        `yaml:"colors" toml:"colors"`
	MonitorRules  []RawMonitorRule  `yaml:"monitor_rules" toml:"monitor_rules"`
	ClientRules   []RawClientRule   `yaml:"client_rules" toml:"client_rules"`
	Keybindings   map[string]string `yaml:"keybindings" toml:"keybindings"`
	Mousebindings map[string]string `yaml:"mousebindings" toml:"mousebindings"`
	Logging       *RawLoggingConfig `yaml:"logging" toml:"logging"`
	Daemon        *RawDaemonConfig  `yaml:"daemon" toml:"daemon"`
}

func (c RawConfig) merge(overlay RawConfig) RawConfig {
	out := c

	if overlay.Tags != nil {
		out.Tags = overlay.Tags
	}
	if overlay.BorderPx != nil {
		out.BorderPx = overlay.BorderPx
	}
	if overlay.Gap != nil {
		out.Gap = overlay.Gap
	}
	if overlay.Colors != nil {
		if out.Colors == nil {
			out.Colors = &RawColors{}
		} else {
			colors := *out.Colors
			out.Colors = &colors
		}
		if overlay.Colors.Border != nil {
			out.Colors.Border = overlay.Colors.Border
		}
		if overlay.Colors.Focus != nil {
			out.Colors.Focus = overlay.Colors.Focus
		}
		if overlay.Colors.Urgent != nil {
			out.Colors.Urgent = overlay.Colors.Urgent
		}
		if overlay.Colors.Fullscreen != nil {
			out.Colors.Fullscreen = overlay.Colors.Fullscreen
		}
		if overlay.Colors.Locked != nil {
			out.Colors.Locked = overlay.Colors.Locked
		}
	}

	// Rule lists are ordered; a later file replaces them wholesale.
	if overlay.MonitorRules != nil {
		out.MonitorRules = overlay.MonitorRules
	}
	if overlay.ClientRules != nil {
		out.ClientRules = overlay.ClientRules
	}

	out.Keybindings = mergeStringMap(out.Keybindings, overlay.Keybindings)
	out.Mousebindings = mergeStringMap(out.Mousebindings, overlay.Mousebindings)

	if overlay.Logging != nil {
		if out.Logging == nil {
			out.Logging = &RawLoggingConfig{}
		} else {
			logging := *out.Logging
			out.Logging = &logging
		}
		if overlay.Logging.Level != nil {
			out.Logging.Level = overlay.Logging.Level
		}
	}
	if overlay.Daemon != nil {
		if out.Daemon == nil {
			out.Daemon = &RawDaemonConfig{}
		} else {
			daemon := *out.Daemon
			out.Daemon = &daemon
		}
		if overlay.Daemon.ReconcileIntervalMs != nil {
			out.Daemon.ReconcileIntervalMs = overlay.Daemon.ReconcileIntervalMs
		}
		if overlay.Daemon.LogindLock != nil {
			out.Daemon.LogindLock = overlay.Daemon.LogindLock
		}
		if overlay.Daemon.StatusStdout != nil {
			out.Daemon.StatusStdout = overlay.Daemon.StatusStdout
		}
	}

	return out
}

func mergeStringMap(base map[string]string, overlay map[string]string) map[string]string {
	if overlay == nil {
		return base
	}
	out := make(map[string]string, len(base)+len(overlay))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range overlay {
		out[k] = v
	}
	return out
}
