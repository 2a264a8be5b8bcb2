package wm

import (
	"math"

	"github.com/1broseidon/tagtile/internal/tiling"
)

type layoutEntry struct {
	output OutputID
	box    tiling.Rect
	auto   bool
}

// outputLayout positions outputs in a shared coordinate space.
type outputLayout struct {
	entries []layoutEntry
}

func (l *outputLayout) find(out OutputID) int {
	for i, e := range l.entries {
		if e.output == out {
			return i
		}
	}
	return -1
}

func (l *outputLayout) contains(out OutputID) bool {
	return l.find(out) >= 0
}

// add places out at x, y.
func (l *outputLayout) add(out OutputID, x, y int, size tiling.Size) {
	box := tiling.Rect{X: x, Y: y, Width: size.Width, Height: size.Height}
	if i := l.find(out); i >= 0 {
		l.entries[i] = layoutEntry{output: out, box: box}
		return
	}
	l.entries = append(l.entries, layoutEntry{output: out, box: box})
}

// addAuto places out to the right of the rightmost output.
func (l *outputLayout) addAuto(out OutputID, size tiling.Size) {
	if i := l.find(out); i >= 0 {
		l.entries = append(l.entries[:i], l.entries[i+1:]...)
	}
	x := 0
	for _, e := range l.entries {
		x = max(x, e.box.X+e.box.Width)
	}
	l.entries = append(l.entries, layoutEntry{
		output: out,
		box:    tiling.Rect{X: x, Width: size.Width, Height: size.Height},
		auto:   true,
	})
}

// resize updates the size of out, keeping its position.
func (l *outputLayout) resize(out OutputID, size tiling.Size) {
	if i := l.find(out); i >= 0 {
		l.entries[i].box.Width = size.Width
		l.entries[i].box.Height = size.Height
	}
}

func (l *outputLayout) remove(out OutputID) {
	if i := l.find(out); i >= 0 {
		l.entries = append(l.entries[:i], l.entries[i+1:]...)
	}
}

func (l *outputLayout) box(out OutputID) (tiling.Rect, bool) {
	if i := l.find(out); i >= 0 {
		return l.entries[i].box, true
	}
	return tiling.Rect{}, false
}

// bounds is the box enclosing every output.
func (l *outputLayout) bounds() tiling.Rect {
	var r tiling.Rect
	for _, e := range l.entries {
		r = r.Union(e.box)
	}
	return r
}

func (l *outputLayout) outputAt(x, y float64) (OutputID, bool) {
	for _, e := range l.entries {
		if e.box.Contains(int(math.Floor(x)), int(math.Floor(y))) {
			return e.output, true
		}
	}
	return 0, false
}

// inDirection reports whether box lies entirely beyond ref's edge in dir.
func inDirection(box, ref tiling.Rect, dir Direction) bool {
	switch dir {
	case DirLeft:
		return box.X+box.Width <= ref.X
	case DirRight:
		return box.X >= ref.X+ref.Width
	case DirUp:
		return box.Y+box.Height <= ref.Y
	default:
		return box.Y >= ref.Y+ref.Height
	}
}

// distance from a point to the closest point of box.
func distance(box tiling.Rect, x, y int) float64 {
	cx := min(max(x, box.X), box.X+box.Width-1)
	cy := min(max(y, box.Y), box.Y+box.Height-1)
	return math.Hypot(float64(x-cx), float64(y-cy))
}

// adjacent returns the output in dir closest to the center of from.
func (l *outputLayout) adjacent(from OutputID, dir Direction) (OutputID, bool) {
	return l.pick(from, dir, func(d, best float64) bool { return d < best })
}

// farthest returns the output in dir farthest from the center of from.
func (l *outputLayout) farthest(from OutputID, dir Direction) (OutputID, bool) {
	return l.pick(from, dir, func(d, best float64) bool { return d > best })
}

func (l *outputLayout) pick(from OutputID, dir Direction, better func(d, best float64) bool) (OutputID, bool) {
	ref, ok := l.box(from)
	if !ok {
		return 0, false
	}
	rx, ry := ref.X+ref.Width/2, ref.Y+ref.Height/2
	var (
		found OutputID
		best  float64
		have  bool
	)
	for _, e := range l.entries {
		if e.output == from || !inDirection(e.box, ref, dir) {
			continue
		}
		d := distance(e.box, rx, ry)
		if !have || better(d, best) {
			found, best, have = e.output, d, true
		}
	}
	return found, have
}
