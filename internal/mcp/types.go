package mcp

import "github.com/1broseidon/tagtile/internal/wm"

// GetStatusInput is the input for the get_status tool.
type GetStatusInput struct {
	Monitor string `json:"monitor,omitempty" jsonschema:"Only report the monitor with this name and the clients on it"`
}

// GetStatusOutput is the output for the get_status tool.
type GetStatusOutput struct {
	TagCount      int               `json:"tag_count"`
	Locked        bool              `json:"locked"`
	UptimeSeconds int64             `json:"uptime_seconds"`
	Monitors      []MonitorInfo     `json:"monitors"`
	Clients       []wm.ClientStatus `json:"clients"`
}

// MonitorInfo describes a monitor with its tag masks expanded into
// 1-based tag numbers.
type MonitorInfo struct {
	Name       string  `json:"name"`
	Selected   bool    `json:"selected"`
	Enabled    bool    `json:"enabled"`
	Layout     string  `json:"layout"`
	Mfact      float64 `json:"mfact"`
	Nmaster    int     `json:"nmaster"`
	ActiveTags []int   `json:"active_tags"`
	Occupied   []int   `json:"occupied_tags"`
	Urgent     []int   `json:"urgent_tags,omitempty"`
	Title      string  `json:"title,omitempty"`
	AppID      string  `json:"app_id,omitempty"`
	Clients    int     `json:"clients"`
}

// TagsInput is the input for the view_tags and tag_client tools.
type TagsInput struct {
	Tags   []int `json:"tags" jsonschema:"required,1-based tag numbers (e.g. [1] or [2,3])"`
	Toggle bool  `json:"toggle,omitempty" jsonschema:"Toggle the tags instead of replacing the current set (default: false)"`
}

// FocusStackInput is the input for the focus_stack tool.
type FocusStackInput struct {
	Direction string `json:"direction" jsonschema:"required,next or prev"`
}

// MonitorDirectionInput is the input for the focus_monitor and tag_monitor tools.
type MonitorDirectionInput struct {
	Direction string `json:"direction" jsonschema:"required,left, right, up or down"`
}

// SetMfactInput is the input for the set_mfact tool.
type SetMfactInput struct {
	Value float64 `json:"value" jsonschema:"required,Delta when below 1.0 (e.g. 0.05 or -0.05); absolute ratio plus 1.0 otherwise (e.g. 1.6 sets 0.6)"`
}

// IncNmasterInput is the input for the inc_nmaster tool.
type IncNmasterInput struct {
	Delta int `json:"delta" jsonschema:"required,Amount to add to the master count (e.g. 1 or -1)"`
}

// EmptyInput is the input for tools that take no arguments.
type EmptyInput struct{}

// ActionOutput is the output for tools that run a single command.
type ActionOutput struct {
	Command string `json:"command"`
	OK      bool   `json:"ok"`
}
