package tiling

import "math"

// Rect represents a window position and size
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Contains reports whether the point lies inside the rectangle.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

// Translate returns the rectangle moved by dx, dy.
func (r Rect) Translate(dx, dy int) Rect {
	return Rect{X: r.X + dx, Y: r.Y + dy, Width: r.Width, Height: r.Height}
}

// Union returns the smallest rectangle containing both r and o.
// An empty operand is ignored.
func (r Rect) Union(o Rect) Rect {
	if r.Empty() {
		return o
	}
	if o.Empty() {
		return r
	}
	x0 := min(r.X, o.X)
	y0 := min(r.Y, o.Y)
	x1 := max(r.X+r.Width, o.X+o.Width)
	y1 := max(r.Y+r.Height, o.Y+o.Height)
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// Size is a width/height pair used for size hints.
type Size struct {
	Width  int
	Height int
}

// DefaultGap is the pixel gap between tiled windows.
const DefaultGap = 8

// MasterStack describes the master/stack layout of a monitor.
type MasterStack struct {
	Mfact   float64
	Nmaster int
	Gap     int
}

// MasterWidth returns the width of the master column for n tiled windows.
func (l MasterStack) MasterWidth(area Rect, n int) int {
	if n > l.Nmaster {
		if l.Nmaster > 0 {
			return int(float64(area.Width) * l.Mfact)
		}
		return 0
	}
	return area.Width
}

// Tile walks n windows in order and assigns each a box in the master or
// stack column of area. place receives the target box and returns the
// geometry that was actually applied, which drives the next offset.
func (l MasterStack) Tile(area Rect, n int, place func(i int, box Rect) Rect) {
	if n <= 0 {
		return
	}
	nmaster := max(l.Nmaster, 0)
	nm := min(n, nmaster)
	mw := l.MasterWidth(area, n)
	half := l.Gap / 2

	my, ty := 0, 0
	for i := 0; i < n; i++ {
		if i < nm {
			got := place(i, Rect{
				X:      area.X + half,
				Y:      area.Y + my + half,
				Width:  mw - half,
				Height: (area.Height-my)/(nm-i) - l.Gap,
			})
			my += got.Height + l.Gap
			continue
		}
		got := place(i, Rect{
			X:      area.X + mw + half,
			Y:      area.Y + ty + half,
			Width:  (area.Width - mw) - l.Gap,
			Height: (area.Height-ty)/(n-i) - l.Gap,
		})
		ty += got.Height + half
	}
}

// Boxes returns the unadjusted master-stack boxes for n windows.
func (l MasterStack) Boxes(area Rect, n int) []Rect {
	if n <= 0 {
		return nil
	}
	boxes := make([]Rect, 0, n)
	l.Tile(area, n, func(_ int, box Rect) Rect {
		boxes = append(boxes, box)
		return box
	})
	return boxes
}

// Bounds carries everything ApplyBounds needs to constrain a window.
type Bounds struct {
	Min         Size
	Max         Size
	BorderWidth int
	// Fullscreen windows ignore size hints.
	Fullscreen bool
}

// ApplyBounds enforces size hints on geom and pulls it back into bbox
// when it lies entirely outside. Hints are inflated by the border on both
// sides; a maximum that would overflow when inflated is ignored.
func ApplyBounds(geom Rect, bbox Rect, b Bounds) Rect {
	bw2 := 2 * b.BorderWidth
	if !b.Fullscreen {
		geom.Width = max(b.Min.Width+bw2, geom.Width)
		geom.Height = max(b.Min.Height+bw2, geom.Height)
		if b.Max.Width > 0 && !(bw2 > math.MaxInt32-b.Max.Width) {
			geom.Width = min(b.Max.Width+bw2, geom.Width)
		}
		if b.Max.Height > 0 && !(bw2 > math.MaxInt32-b.Max.Height) {
			geom.Height = min(b.Max.Height+bw2, geom.Height)
		}
	}

	if geom.X >= bbox.X+bbox.Width {
		geom.X = bbox.X + bbox.Width - geom.Width
	}
	if geom.Y >= bbox.Y+bbox.Height {
		geom.Y = bbox.Y + bbox.Height - geom.Height
	}
	if geom.X+geom.Width+bw2 <= bbox.X {
		geom.X = bbox.X
	}
	if geom.Y+geom.Height+bw2 <= bbox.Y {
		geom.Y = bbox.Y
	}
	return geom
}

// IsFloatType reports whether size hints pin a window to a fixed size on
// either axis, which makes it a poor tiling candidate.
func IsFloatType(minSize, maxSize Size) bool {
	if minSize.Width <= 0 && minSize.Height <= 0 && maxSize.Width <= 0 && maxSize.Height <= 0 {
		return false
	}
	return minSize.Width == maxSize.Width || minSize.Height == maxSize.Height
}
