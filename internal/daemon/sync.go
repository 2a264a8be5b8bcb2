package daemon

import (
	"log/slog"
	"sort"

	"github.com/1broseidon/tagtile/internal/wm"
)

// WindowTracker is the side of the display runtime that knows which
// windows are currently managed. All methods run on the loop.
type WindowTracker interface {
	Managed() []wm.SurfaceID
	Manage(id wm.SurfaceID)
	Unmanage(id wm.SurfaceID)
}

// StateSynchronizer brings the managed window set in line with the windows
// the display server reports.
type StateSynchronizer struct {
	tracker WindowTracker
	logger  *slog.Logger
}

// NewStateSynchronizer creates a new state synchronizer.
func NewStateSynchronizer(tracker WindowTracker, logger *slog.Logger) *StateSynchronizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &StateSynchronizer{tracker: tracker, logger: logger}
}

// Sync manages windows that appeared and unmanages windows that vanished.
// It must run on the loop.
func (s *StateSynchronizer) Sync(actual []wm.SurfaceID) (added, removed []wm.SurfaceID) {
	added, removed = diffWindows(s.tracker.Managed(), actual)
	for _, id := range removed {
		s.logger.Info("window vanished, unmanaging", "window_id", id)
		s.tracker.Unmanage(id)
	}
	for _, id := range added {
		s.logger.Info("untracked window found, managing", "window_id", id)
		s.tracker.Manage(id)
	}
	return added, removed
}

// diffWindows returns the ids in actual but not in known, and the ids in
// known but not in actual, both in ascending order.
func diffWindows(known, actual []wm.SurfaceID) (added, removed []wm.SurfaceID) {
	knownSet := make(map[wm.SurfaceID]bool, len(known))
	for _, id := range known {
		knownSet[id] = true
	}
	actualSet := make(map[wm.SurfaceID]bool, len(actual))
	for _, id := range actual {
		if actualSet[id] {
			continue
		}
		actualSet[id] = true
		if !knownSet[id] {
			added = append(added, id)
		}
	}
	for id := range knownSet {
		if !actualSet[id] {
			removed = append(removed, id)
		}
	}
	sort.Slice(added, func(i, j int) bool { return added[i] < added[j] })
	sort.Slice(removed, func(i, j int) bool { return removed[i] < removed[j] })
	return added, removed
}
