package config

import "fmt"

// BuiltinMonitorRules returns the monitor rules used when the config does
// not define any: a HiDPI laptop panel and a wildcard.
func BuiltinMonitorRules() []MonitorRule {
	return []MonitorRule{
		{Name: "eDP-1", Mfact: 0.5, Nmaster: 1, Scale: 2, X: -1, Y: -1},
		{Mfact: 0.55, Nmaster: 1, Scale: 1, X: -1, Y: -1},
	}
}

// BuiltinKeybindings returns the default key bindings.
//
// Users can override single keys, or disable one by binding it to "none".
func BuiltinKeybindings() map[string]string {
	bindings := map[string]string{
		"Mod4-j":             "focus_stack next",
		"Mod4-k":             "focus_stack prev",
		"Mod4-i":             "inc_nmaster +1",
		"Mod4-d":             "inc_nmaster -1",
		"Mod4-h":             "set_mfact -0.05",
		"Mod4-l":             "set_mfact +0.05",
		"Mod4-Tab":           "view_prev",
		"Mod4-f":             "toggle_fullscreen",
		"Mod4-space":         "toggle_floating",
		"Mod4-Shift-c":       "kill",
		"Mod4-0":             "view all",
		"Mod4-Shift-0":       "tag all",
		"Mod4-comma":         "focus_monitor left",
		"Mod4-period":        "focus_monitor right",
		"Mod4-Shift-less":    "tag_monitor left",
		"Mod4-Shift-greater": "tag_monitor right",
	}
	for i := 1; i <= DefaultTags; i++ {
		bindings[fmt.Sprintf("Mod4-%d", i)] = fmt.Sprintf("view %d", i)
		bindings[fmt.Sprintf("Mod4-Control-%d", i)] = fmt.Sprintf("toggle_view %d", i)
		bindings[fmt.Sprintf("Mod4-Shift-%d", i)] = fmt.Sprintf("tag %d", i)
		bindings[fmt.Sprintf("Mod4-Control-Shift-%d", i)] = fmt.Sprintf("toggle_tag %d", i)
	}
	return bindings
}

// BuiltinMousebindings returns the default pointer drag bindings.
func BuiltinMousebindings() map[string]string {
	return map[string]string{
		"Mod4-1": "move",
		"Mod4-3": "resize",
	}
}
