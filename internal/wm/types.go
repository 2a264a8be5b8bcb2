package wm

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/1broseidon/tagtile/internal/tiling"
)

// SurfaceID identifies a display-server surface (toplevel, popup, layer or
// lock surface). Zero means no surface.
type SurfaceID uint64

// OutputID identifies a physical output in the display server.
type OutputID uint64

// LockID identifies a session lock object.
type LockID uint64

// NodeID identifies a scene node created by the core (backdrops).
type NodeID uint64

// ClientID is a generation-checked reference to a Client.
type ClientID = Handle[Client]

// MonitorID is a generation-checked reference to a Monitor.
type MonitorID = Handle[Monitor]

// LayerID is a generation-checked reference to a LayerSurface.
type LayerID = Handle[LayerSurface]

// Direction is a cardinal direction used for monitor lookup.
type Direction int

const (
	DirLeft Direction = iota
	DirRight
	DirUp
	DirDown
)

func (d Direction) String() string {
	switch d {
	case DirLeft:
		return "left"
	case DirRight:
		return "right"
	case DirUp:
		return "up"
	case DirDown:
		return "down"
	default:
		return "unknown"
	}
}

// Opposite returns the direction pointing the other way.
func (d Direction) Opposite() Direction {
	switch d {
	case DirLeft:
		return DirRight
	case DirRight:
		return DirLeft
	case DirUp:
		return DirDown
	default:
		return DirUp
	}
}

// ParseDirection accepts left, right, up and down.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "left", "l":
		return DirLeft, nil
	case "right", "r":
		return DirRight, nil
	case "up", "u":
		return DirUp, nil
	case "down", "d":
		return DirDown, nil
	}
	return 0, fmt.Errorf("invalid direction %q", s)
}

// Edges is the set of edges a tiled surface is attached to.
type Edges uint32

const (
	EdgeTop Edges = 1 << iota
	EdgeBottom
	EdgeLeft
	EdgeRight

	EdgeAll = EdgeTop | EdgeBottom | EdgeLeft | EdgeRight
)

// StackLayer is the scene layer a surface or node is placed in, bottom first.
type StackLayer int

const (
	StackBackground StackLayer = iota
	StackBottom
	StackTile
	StackFloat
	StackFullscreen
	StackTop
	StackOverlay
	StackLock
)

// ShellLayer is one of the four layer-shell layers.
type ShellLayer int

const (
	ShellBackground ShellLayer = iota
	ShellBottom
	ShellTop
	ShellOverlay

	shellLayerCount = 4
)

// StackLayer maps a shell layer onto the scene stacking order.
func (l ShellLayer) StackLayer() StackLayer {
	switch l {
	case ShellBackground:
		return StackBackground
	case ShellBottom:
		return StackBottom
	case ShellTop:
		return StackTop
	default:
		return StackOverlay
	}
}

func (l ShellLayer) String() string {
	switch l {
	case ShellBackground:
		return "background"
	case ShellBottom:
		return "bottom"
	case ShellTop:
		return "top"
	case ShellOverlay:
		return "overlay"
	default:
		return "unknown"
	}
}

// Color is an RGBA color.
type Color struct {
	R, G, B, A uint8
}

// ParseColor parses #rrggbb or #rrggbbaa.
func ParseColor(s string) (Color, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 && len(hex) != 8 {
		return Color{}, fmt.Errorf("invalid color %q: expected #rrggbb or #rrggbbaa", s)
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return Color{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

// Pixel returns the color packed as 0xAARRGGBB.
func (c Color) Pixel() uint32 {
	return uint32(c.A)<<24 | uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}

func (c Color) String() string {
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

// Transform is an output rotation/flip.
type Transform int

const (
	TransformNormal Transform = iota
	Transform90
	Transform180
	Transform270
	TransformFlipped
	TransformFlipped90
	TransformFlipped180
	TransformFlipped270
)

var transformNames = []string{
	"normal", "90", "180", "270",
	"flipped", "flipped-90", "flipped-180", "flipped-270",
}

func (t Transform) String() string {
	if int(t) >= 0 && int(t) < len(transformNames) {
		return transformNames[t]
	}
	return "unknown"
}

// Rotated reports whether the transform swaps width and height.
func (t Transform) Rotated() bool {
	return t%2 == 1
}

// ParseTransform accepts the names printed by Transform.String.
func ParseTransform(s string) (Transform, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return TransformNormal, nil
	}
	for i, name := range transformNames {
		if s == name {
			return Transform(i), nil
		}
	}
	return 0, fmt.Errorf("invalid transform %q", s)
}

// Mode is an output display mode.
type Mode struct {
	Width     int
	Height    int
	Refresh   int // mHz
	Preferred bool
}

// OutputInfo describes a newly attached output.
type OutputInfo struct {
	ID    OutputID
	Name  string
	Modes []Mode
}

// OutputState is the configuration the core asks an output to adopt.
type OutputState struct {
	Enabled   bool
	Mode      Mode
	Scale     float64
	Transform Transform
	X         int
	Y         int
}

// OutputHead is one output's entry in a configuration request or report.
type OutputHead struct {
	Output OutputID
	Name   string
	OutputState
}

// LayerState is the committed or pending state of a layer surface.
type LayerState struct {
	Layer               ShellLayer
	KeyboardInteractive bool
	Placement           tiling.LayerState
}

// CursorMode is the pointer interaction state.
type CursorMode int

const (
	CursorNormal CursorMode = iota
	CursorPressed
	CursorMove
	CursorResize
)

func (m CursorMode) String() string {
	switch m {
	case CursorNormal:
		return "normal"
	case CursorPressed:
		return "pressed"
	case CursorMove:
		return "move"
	case CursorResize:
		return "resize"
	default:
		return "unknown"
	}
}

// LockState is the session lock state.
type LockState int

const (
	Unlocked LockState = iota
	Locked
)

func (s LockState) String() string {
	if s == Locked {
		return "locked"
	}
	return "unlocked"
}
