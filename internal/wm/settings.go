package wm

import (
	"fmt"
	"strings"

	"github.com/1broseidon/tagtile/internal/tiling"
)

// MaxTags is the widest tag mask the core supports.
const MaxTags = 31

// MonitorRule seeds a monitor's layout parameters when its output appears.
// An empty Name matches any output.
type MonitorRule struct {
	Name      string
	Mfact     float64
	Nmaster   int
	Scale     float64
	Transform Transform
	// X and Y place the output in the layout; negative values let the
	// layout choose the position.
	X int
	Y int
}

// ClientRule applies to clients whose app id and title contain the given
// substrings. Empty patterns match anything.
type ClientRule struct {
	AppID    string
	Title    string
	Tags     uint32
	Floating bool
	// Monitor is an index into the monitor list, -1 for the selected one.
	Monitor int
}

// Settings are the tunables of a Server.
type Settings struct {
	TagCount     int
	BorderPx     int
	Gap          int
	BorderColor  Color
	FocusColor   Color
	UrgentColor  Color
	FullscreenBg Color
	LockedBg     Color
	MonitorRules []MonitorRule
	ClientRules  []ClientRule
}

// DefaultSettings returns the classic defaults: nine tags, 1px borders,
// an 8px gap and a 0.55 master fraction.
func DefaultSettings() Settings {
	return Settings{
		TagCount:     9,
		BorderPx:     1,
		Gap:          tiling.DefaultGap,
		BorderColor:  Color{R: 0x44, G: 0x44, B: 0x44, A: 0xff},
		FocusColor:   Color{R: 0x00, G: 0x55, B: 0x77, A: 0xff},
		UrgentColor:  Color{R: 0xff, G: 0x00, B: 0x00, A: 0xff},
		FullscreenBg: Color{R: 0x1a, G: 0x1a, B: 0x1a, A: 0xff},
		LockedBg:     Color{R: 0x1a, G: 0x1a, B: 0x1a, A: 0xff},
		MonitorRules: []MonitorRule{
			{Name: "eDP-1", Mfact: 0.5, Nmaster: 1, Scale: 2, X: -1, Y: -1},
			{Mfact: 0.55, Nmaster: 1, Scale: 1, X: -1, Y: -1},
		},
	}
}

// TagMask returns the mask of valid tag bits.
func (s Settings) TagMask() uint32 {
	n := s.TagCount
	if n <= 0 || n > MaxTags {
		n = MaxTags
	}
	return uint32(1)<<uint(n) - 1
}

// Validate checks the settings for values the core cannot work with.
func (s Settings) Validate() error {
	if s.TagCount < 1 || s.TagCount > MaxTags {
		return fmt.Errorf("tag count must be between 1 and %d, got %d", MaxTags, s.TagCount)
	}
	if s.BorderPx < 0 {
		return fmt.Errorf("border width must be >= 0, got %d", s.BorderPx)
	}
	if s.Gap < 0 {
		return fmt.Errorf("gap must be >= 0, got %d", s.Gap)
	}
	for i, r := range s.MonitorRules {
		if r.Mfact < MinMfact || r.Mfact > MaxMfact {
			return fmt.Errorf("monitor rule %d: mfact must be between %.1f and %.1f, got %g", i, MinMfact, MaxMfact, r.Mfact)
		}
		if r.Nmaster < 0 {
			return fmt.Errorf("monitor rule %d: nmaster must be >= 0, got %d", i, r.Nmaster)
		}
		if r.Scale <= 0 {
			return fmt.Errorf("monitor rule %d: scale must be > 0, got %g", i, r.Scale)
		}
	}
	for i, r := range s.ClientRules {
		if r.Tags&^s.TagMask() != 0 {
			return fmt.Errorf("client rule %d: tags 0x%x exceed %d tags", i, r.Tags, s.TagCount)
		}
	}
	return nil
}

// monitorRule returns the rule for an output name: the first rule whose
// name occurs in the output name, else the first wildcard rule.
func (s Settings) monitorRule(name string) MonitorRule {
	for _, r := range s.MonitorRules {
		if r.Name != "" && strings.Contains(name, r.Name) {
			return r
		}
	}
	for _, r := range s.MonitorRules {
		if r.Name == "" {
			return r
		}
	}
	return MonitorRule{Mfact: 0.55, Nmaster: 1, Scale: 1, X: -1, Y: -1}
}
