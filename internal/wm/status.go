package wm

import (
	"bufio"
	"fmt"

	"github.com/1broseidon/tagtile/internal/tiling"
)

// brokenField stands in for a title or app id the client never set.
const brokenField = "broken"

// MonitorStatus is the status of one monitor.
type MonitorStatus struct {
	Name       string      `json:"name"`
	Selected   bool        `json:"selected"`
	Enabled    bool        `json:"enabled"`
	Geometry   tiling.Rect `json:"geometry"`
	Usable     tiling.Rect `json:"usable"`
	Mfact      float64     `json:"mfact"`
	Nmaster    int         `json:"nmaster"`
	Layout     string      `json:"layout"`
	Occupied   uint32      `json:"occupied_tags"`
	Active     uint32      `json:"active_tags"`
	Focused    uint32      `json:"focused_tags"`
	Urgent     uint32      `json:"urgent_tags"`
	HasFocus   bool        `json:"has_focus"`
	Title      string      `json:"title"`
	AppID      string      `json:"app_id"`
	Fullscreen bool        `json:"fullscreen"`
	Floating   bool        `json:"floating"`
	Clients    int         `json:"clients"`
}

// ClientStatus describes one managed client.
type ClientStatus struct {
	Surface    SurfaceID   `json:"surface"`
	Monitor    string      `json:"monitor"`
	Title      string      `json:"title"`
	AppID      string      `json:"app_id"`
	Tags       uint32      `json:"tags"`
	Geometry   tiling.Rect `json:"geometry"`
	Floating   bool        `json:"floating"`
	Fullscreen bool        `json:"fullscreen"`
	Urgent     bool        `json:"urgent"`
	Focused    bool        `json:"focused"`
}

// Status is a snapshot of everything the status feed reports.
type Status struct {
	TagCount int             `json:"tag_count"`
	Locked   bool            `json:"locked"`
	Cursor   string          `json:"cursor"`
	Monitors []MonitorStatus `json:"monitors"`
	Clients  []ClientStatus  `json:"clients"`
}

// Status returns a snapshot of the current state.
func (s *Server) Status() Status {
	st := Status{
		TagCount: s.settings.TagCount,
		Locked:   s.lock.state == Locked,
		Cursor:   s.grab.mode.String(),
	}

	s.eachMonitor(func(m *Monitor) {
		ms := MonitorStatus{
			Name:     m.name,
			Selected: m.id == s.selmon,
			Enabled:  m.enabled,
			Geometry: m.box,
			Usable:   m.usable,
			Mfact:    m.mfact,
			Nmaster:  m.nmaster,
			Layout:   LayoutSymbol,
			Occupied: s.OccupiedTags(m),
			Active:   m.activeTags(),
			Urgent:   s.urgentTags(m),
		}
		s.eachClient(func(c *Client) {
			if c.mon == m.id {
				ms.Clients++
			}
		})
		if c := s.topVisible(m); c != nil {
			ms.HasFocus = true
			ms.Title = s.fieldOrBroken(s.rt.Title(c.surface))
			ms.AppID = s.fieldOrBroken(s.rt.AppID(c.surface))
			ms.Fullscreen = c.fullscreen
			ms.Floating = c.floating
			ms.Focused = c.tags
		}
		st.Monitors = append(st.Monitors, ms)
	})

	s.eachClient(func(c *Client) {
		cs := ClientStatus{
			Surface:    c.surface,
			Title:      s.rt.Title(c.surface),
			AppID:      s.rt.AppID(c.surface),
			Tags:       c.tags,
			Geometry:   c.geom,
			Floating:   c.floating,
			Fullscreen: c.fullscreen,
			Urgent:     c.urgent,
			Focused:    c.surface == s.kbFocus,
		}
		if m := s.monitor(c.mon); m != nil {
			cs.Monitor = m.name
		}
		st.Clients = append(st.Clients, cs)
	})
	return st
}

func (s *Server) fieldOrBroken(v string) string {
	if v == "" {
		return brokenField
	}
	return v
}

func boolDigit(b bool) int {
	if b {
		return 1
	}
	return 0
}

// printStatus writes one line per fact for every monitor.
func (s *Server) printStatus() {
	w := bufio.NewWriter(s.status)
	for _, ms := range s.Status().Monitors {
		if ms.HasFocus {
			fmt.Fprintf(w, "%s title %s\n", ms.Name, ms.Title)
			fmt.Fprintf(w, "%s appid %s\n", ms.Name, ms.AppID)
			fmt.Fprintf(w, "%s fullscreen %d\n", ms.Name, boolDigit(ms.Fullscreen))
			fmt.Fprintf(w, "%s floating %d\n", ms.Name, boolDigit(ms.Floating))
		} else {
			fmt.Fprintf(w, "%s title \n", ms.Name)
			fmt.Fprintf(w, "%s appid \n", ms.Name)
			fmt.Fprintf(w, "%s fullscreen \n", ms.Name)
			fmt.Fprintf(w, "%s floating \n", ms.Name)
		}
		fmt.Fprintf(w, "%s selmon %d\n", ms.Name, boolDigit(ms.Selected))
		fmt.Fprintf(w, "%s tags %d %d %d %d\n", ms.Name, ms.Occupied, ms.Active, ms.Focused, ms.Urgent)
		fmt.Fprintf(w, "%s layout %s\n", ms.Name, ms.Layout)
	}
	if err := w.Flush(); err != nil {
		s.logger.Debug("status write failed", "error", err)
	}
}
