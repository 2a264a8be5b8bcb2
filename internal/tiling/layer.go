package tiling

// Anchor is a bitmask of the monitor edges a layer surface is attached to.
type Anchor uint32

const (
	AnchorTop Anchor = 1 << iota
	AnchorBottom
	AnchorLeft
	AnchorRight
)

// Margins are the gaps a layer surface asks for around itself.
type Margins struct {
	Top    int
	Right  int
	Bottom int
	Left   int
}

// LayerState is the placement request of a layer surface.
type LayerState struct {
	Anchor Anchor
	// ExclusiveZone > 0 reserves that many pixels from the anchored edge.
	// -1 asks to be placed over the full area, ignoring other reservations.
	ExclusiveZone int
	Width         int
	Height        int
	Margin        Margins
}

// ArrangeLayer places a layer surface inside full or usable and returns its
// box. When the surface has a positive exclusive zone attached to a single
// edge, usable is shrunk from that edge.
func ArrangeLayer(full Rect, usable *Rect, st LayerState) Rect {
	bounds := *usable
	if st.ExclusiveZone == -1 {
		bounds = full
	}

	box := Rect{Width: st.Width, Height: st.Height}
	horiz := AnchorLeft | AnchorRight
	vert := AnchorTop | AnchorBottom

	switch {
	case box.Width == 0 && st.Anchor&horiz == horiz:
		box.X = bounds.X + st.Margin.Left
		box.Width = bounds.Width - (st.Margin.Left + st.Margin.Right)
	case st.Anchor&horiz == horiz:
		box.X = bounds.X + bounds.Width/2 - box.Width/2
	case st.Anchor&AnchorLeft != 0:
		box.X = bounds.X + st.Margin.Left
	case st.Anchor&AnchorRight != 0:
		box.X = bounds.X + bounds.Width - box.Width - st.Margin.Right
	default:
		box.X = bounds.X + bounds.Width/2 - box.Width/2
	}

	switch {
	case box.Height == 0 && st.Anchor&vert == vert:
		box.Y = bounds.Y + st.Margin.Top
		box.Height = bounds.Height - (st.Margin.Top + st.Margin.Bottom)
	case st.Anchor&vert == vert:
		box.Y = bounds.Y + bounds.Height/2 - box.Height/2
	case st.Anchor&AnchorTop != 0:
		box.Y = bounds.Y + st.Margin.Top
	case st.Anchor&AnchorBottom != 0:
		box.Y = bounds.Y + bounds.Height - box.Height - st.Margin.Bottom
	default:
		box.Y = bounds.Y + bounds.Height/2 - box.Height/2
	}

	if st.ExclusiveZone > 0 {
		reserve(usable, st)
	}
	return box
}

// reserve shrinks usable by the exclusive zone. Only a surface attached to
// one edge, optionally stretched along it, reserves space.
func reserve(usable *Rect, st LayerState) {
	zone := st.ExclusiveZone
	switch st.Anchor {
	case AnchorTop, AnchorTop | AnchorLeft | AnchorRight:
		d := zone + st.Margin.Top
		usable.Y += d
		usable.Height -= d
	case AnchorBottom, AnchorBottom | AnchorLeft | AnchorRight:
		usable.Height -= zone + st.Margin.Bottom
	case AnchorLeft, AnchorLeft | AnchorTop | AnchorBottom:
		d := zone + st.Margin.Left
		usable.X += d
		usable.Width -= d
	case AnchorRight, AnchorRight | AnchorTop | AnchorBottom:
		usable.Width -= zone + st.Margin.Right
	}
	if usable.Width < 0 {
		usable.Width = 0
	}
	if usable.Height < 0 {
		usable.Height = 0
	}
}
