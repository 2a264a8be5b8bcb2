package x11

import (
	"fmt"
	"sort"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"

	"github.com/1broseidon/tagtile/internal/tiling"
	"github.com/1broseidon/tagtile/internal/wm"
)

// output is a connected RandR output driven by an active CRTC.
type output struct {
	id       wm.OutputID
	name     string
	crtc     randr.Crtc
	box      tiling.Rect
	rotation uint16
	mode     randr.Mode
	modes    []wm.Mode
	modeIDs  []randr.Mode
}

// info converts the output into what the core is told on hotplug.
func (o output) info() wm.OutputInfo {
	return wm.OutputInfo{ID: o.id, Name: o.name, Modes: o.modes}
}

// current returns the mode the CRTC is running.
func (o output) current() wm.Mode {
	for i, id := range o.modeIDs {
		if id == o.mode {
			return o.modes[i]
		}
	}
	return wm.Mode{Width: o.box.Width, Height: o.box.Height}
}

// modeID finds the RandR mode for m, preferring the closest refresh rate.
func (o output) modeID(m wm.Mode) (randr.Mode, bool) {
	best := -1
	for i, cand := range o.modes {
		if cand.Width != m.Width || cand.Height != m.Height {
			continue
		}
		if best < 0 || abs(cand.Refresh-m.Refresh) < abs(o.modes[best].Refresh-m.Refresh) {
			best = i
		}
	}
	if best < 0 {
		return 0, false
	}
	return o.modeIDs[best], true
}

// screenResources is the last RandR snapshot. The timestamps are needed to
// reconfigure CRTCs.
type screenResources struct {
	timestamp       xproto.Timestamp
	configTimestamp xproto.Timestamp
	outputs         []output
}

// refreshMilliHz computes the refresh rate of a mode line in mHz.
func refreshMilliHz(mi randr.ModeInfo) int {
	total := uint64(mi.Htotal) * uint64(mi.Vtotal)
	if total == 0 {
		return 0
	}
	return int(uint64(mi.DotClock) * 1000 / total)
}

// enumerateOutputs retrieves every connected output with an active CRTC,
// ordered left to right.
func (c *Connection) enumerateOutputs() (screenResources, error) {
	var res screenResources

	resources, err := randr.GetScreenResources(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return res, fmt.Errorf("failed to get screen resources: %w", err)
	}
	res.timestamp = resources.Timestamp
	res.configTimestamp = resources.ConfigTimestamp

	modeInfo := make(map[randr.Mode]randr.ModeInfo, len(resources.Modes))
	for _, mi := range resources.Modes {
		modeInfo[randr.Mode(mi.Id)] = mi
	}

	for _, id := range resources.Outputs {
		oi, err := randr.GetOutputInfo(c.XUtil.Conn(), id, resources.ConfigTimestamp).Reply()
		if err != nil || oi.Connection != randr.ConnectionConnected || oi.Crtc == 0 {
			continue
		}
		ci, err := randr.GetCrtcInfo(c.XUtil.Conn(), oi.Crtc, resources.ConfigTimestamp).Reply()
		if err != nil || ci.Width == 0 || ci.Height == 0 {
			continue
		}

		o := output{
			id:       wm.OutputID(id),
			name:     string(oi.Name),
			crtc:     oi.Crtc,
			box:      tiling.Rect{X: int(ci.X), Y: int(ci.Y), Width: int(ci.Width), Height: int(ci.Height)},
			rotation: ci.Rotation,
			mode:     ci.Mode,
		}
		for i, m := range oi.Modes {
			mi, ok := modeInfo[m]
			if !ok {
				continue
			}
			o.modes = append(o.modes, wm.Mode{
				Width:     int(mi.Width),
				Height:    int(mi.Height),
				Refresh:   refreshMilliHz(mi),
				Preferred: i < int(oi.NumPreferred),
			})
			o.modeIDs = append(o.modeIDs, m)
		}
		res.outputs = append(res.outputs, o)
	}

	sortOutputs(res.outputs)
	return res, nil
}

func sortOutputs(outs []output) {
	sort.SliceStable(outs, func(i, j int) bool {
		if outs[i].box.X != outs[j].box.X {
			return outs[i].box.X < outs[j].box.X
		}
		return outs[i].box.Y < outs[j].box.Y
	})
}

// outputChanges is the difference between two enumerations.
type outputChanges struct {
	added   []output
	removed []wm.OutputID
	resized []output
}

func (ch outputChanges) empty() bool {
	return len(ch.added) == 0 && len(ch.removed) == 0 && len(ch.resized) == 0
}

// diffOutputs compares the known outputs with a fresh enumeration.
func diffOutputs(known map[wm.OutputID]output, fresh []output) outputChanges {
	var ch outputChanges
	seen := make(map[wm.OutputID]bool, len(fresh))
	for _, o := range fresh {
		seen[o.id] = true
		old, ok := known[o.id]
		switch {
		case !ok:
			ch.added = append(ch.added, o)
		case old.box.Width != o.box.Width || old.box.Height != o.box.Height:
			ch.resized = append(ch.resized, o)
		}
	}
	for id := range known {
		if !seen[id] {
			ch.removed = append(ch.removed, id)
		}
	}
	sort.Slice(ch.removed, func(i, j int) bool { return ch.removed[i] < ch.removed[j] })
	return ch
}

// rotationFor maps a transform onto RandR rotation bits.
func rotationFor(t wm.Transform) uint16 {
	var r uint16
	switch t {
	case wm.Transform90, wm.TransformFlipped90:
		r = randr.RotationRotate90
	case wm.Transform180, wm.TransformFlipped180:
		r = randr.RotationRotate180
	case wm.Transform270, wm.TransformFlipped270:
		r = randr.RotationRotate270
	default:
		r = randr.RotationRotate0
	}
	if t >= wm.TransformFlipped {
		r |= randr.RotationReflectX
	}
	return r
}

// crtcRequest is a planned SetCrtcConfig call.
type crtcRequest struct {
	x, y     int
	mode     randr.Mode
	rotation uint16
	disable  bool
}

// planCrtc works out how o's CRTC must change to adopt st. It reports
// false when no change is needed. Negative positions keep the current
// position and a zero mode keeps the current mode.
func planCrtc(o output, st wm.OutputState) (crtcRequest, bool, error) {
	if !st.Enabled {
		return crtcRequest{disable: true}, true, nil
	}

	req := crtcRequest{x: o.box.X, y: o.box.Y, mode: o.mode, rotation: rotationFor(st.Transform)}
	if st.X >= 0 && st.Y >= 0 {
		req.x, req.y = st.X, st.Y
	}
	if st.Mode.Width > 0 && st.Mode.Height > 0 {
		id, ok := o.modeID(st.Mode)
		if !ok {
			return req, false, fmt.Errorf("output %s has no %dx%d mode", o.name, st.Mode.Width, st.Mode.Height)
		}
		req.mode = id
	}

	same := req.x == o.box.X && req.y == o.box.Y && req.mode == o.mode && req.rotation == o.rotation
	return req, !same, nil
}

func (c *Connection) setCrtc(res screenResources, o output, req crtcRequest) error {
	outputs := []randr.Output{randr.Output(o.id)}
	mode := req.mode
	rotation := req.rotation
	if req.disable {
		outputs = nil
		mode = 0
		rotation = randr.RotationRotate0
	}

	reply, err := randr.SetCrtcConfig(
		c.XUtil.Conn(),
		o.crtc,
		res.timestamp,
		res.configTimestamp,
		int16(req.x), int16(req.y),
		mode,
		rotation,
		outputs,
	).Reply()
	if err != nil {
		return fmt.Errorf("failed to configure %s: %w", o.name, err)
	}
	if reply.Status != randr.SetConfigSuccess {
		return fmt.Errorf("failed to configure %s: randr status %d", o.name, reply.Status)
	}
	return nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
