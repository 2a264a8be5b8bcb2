package daemon

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/1broseidon/tagtile/internal/wm"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func startLoop(t *testing.T) (*Loop, context.CancelFunc) {
	t.Helper()
	l := NewLoop(0, discardLogger())
	ctx, cancel := context.WithCancel(context.Background())
	go l.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-l.Done()
	})
	return l, cancel
}

func TestLoop_RunsInOrder(t *testing.T) {
	l, _ := startLoop(t)

	var got []int
	for i := 0; i < 10; i++ {
		i := i
		if !l.Post(func() { got = append(got, i) }) {
			t.Fatalf("post %d rejected", i)
		}
	}
	if err := l.Call(context.Background(), func() error { return nil }); err != nil {
		t.Fatalf("call: %v", err)
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("out of order: %v", got)
		}
	}
	if len(got) != 10 {
		t.Fatalf("expected 10 items, got %d", len(got))
	}
}

func TestLoop_CallReturnsError(t *testing.T) {
	l, _ := startLoop(t)
	want := errors.New("boom")
	if err := l.Call(context.Background(), func() error { return want }); !errors.Is(err, want) {
		t.Fatalf("expected %v, got %v", want, err)
	}
}

func TestLoop_CallAfterStop(t *testing.T) {
	l, cancel := startLoop(t)
	cancel()
	<-l.Done()

	if l.Post(func() {}) {
		t.Fatalf("post after stop should be rejected")
	}
	if err := l.Call(context.Background(), func() error { return nil }); !errors.Is(err, ErrStopped) {
		t.Fatalf("expected ErrStopped, got %v", err)
	}
}

func TestLoop_CallHonoursContext(t *testing.T) {
	l, _ := startLoop(t)

	block := make(chan struct{})
	l.Post(func() { <-block })
	defer close(block)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := l.Call(ctx, func() error { return nil }); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

type fakeTracker struct {
	mu        sync.Mutex
	managed   map[wm.SurfaceID]bool
	manages   []wm.SurfaceID
	unmanages []wm.SurfaceID
}

func newFakeTracker(ids ...wm.SurfaceID) *fakeTracker {
	f := &fakeTracker{managed: make(map[wm.SurfaceID]bool)}
	for _, id := range ids {
		f.managed[id] = true
	}
	return f
}

func (f *fakeTracker) Managed() []wm.SurfaceID {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []wm.SurfaceID
	for id := range f.managed {
		out = append(out, id)
	}
	return out
}

func (f *fakeTracker) Manage(id wm.SurfaceID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.managed[id] = true
	f.manages = append(f.manages, id)
}

func (f *fakeTracker) Unmanage(id wm.SurfaceID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.managed, id)
	f.unmanages = append(f.unmanages, id)
}

func TestDiffWindows(t *testing.T) {
	added, removed := diffWindows(
		[]wm.SurfaceID{1, 2, 3},
		[]wm.SurfaceID{5, 3, 1, 4, 5},
	)
	if len(added) != 2 || added[0] != 4 || added[1] != 5 {
		t.Fatalf("added = %v", added)
	}
	if len(removed) != 1 || removed[0] != 2 {
		t.Fatalf("removed = %v", removed)
	}

	added, removed = diffWindows(nil, nil)
	if added != nil || removed != nil {
		t.Fatalf("expected no changes, got %v %v", added, removed)
	}
}

func TestStateSynchronizer_Sync(t *testing.T) {
	tracker := newFakeTracker(10, 11)
	s := NewStateSynchronizer(tracker, discardLogger())

	added, removed := s.Sync([]wm.SurfaceID{11, 12})
	if len(added) != 1 || added[0] != 12 || len(removed) != 1 || removed[0] != 10 {
		t.Fatalf("sync = %v %v", added, removed)
	}
	if len(tracker.unmanages) != 1 || tracker.unmanages[0] != 10 {
		t.Fatalf("unmanages = %v", tracker.unmanages)
	}

	added, removed = s.Sync([]wm.SurfaceID{11, 12})
	if len(added) != 0 || len(removed) != 0 {
		t.Fatalf("second sync should be a no-op, got %v %v", added, removed)
	}
}

func TestReconciler_ReconcileNow(t *testing.T) {
	l, _ := startLoop(t)
	tracker := newFakeTracker(1)
	syncer := NewStateSynchronizer(tracker, discardLogger())

	r := NewReconciler(ReconcilerConfig{Logger: discardLogger()}, l, syncer, func() ([]wm.SurfaceID, error) {
		return []wm.SurfaceID{2}, nil
	})
	if r.interval != 10*time.Second {
		t.Fatalf("expected default interval, got %v", r.interval)
	}
	r.ReconcileNow(context.Background())

	tracker.mu.Lock()
	defer tracker.mu.Unlock()
	if !tracker.managed[2] || tracker.managed[1] {
		t.Fatalf("managed = %v", tracker.managed)
	}
}

func TestReconciler_ListErrorLeavesStateAlone(t *testing.T) {
	l, _ := startLoop(t)
	tracker := newFakeTracker(1)
	syncer := NewStateSynchronizer(tracker, discardLogger())

	r := NewReconciler(ReconcilerConfig{Logger: discardLogger()}, l, syncer, func() ([]wm.SurfaceID, error) {
		return nil, errors.New("display gone")
	})
	r.ReconcileNow(context.Background())

	if len(tracker.unmanages) != 0 {
		t.Fatalf("list failure must not unmanage windows")
	}
}

func TestReconciler_RunStopsOnCancel(t *testing.T) {
	l, _ := startLoop(t)
	tracker := newFakeTracker()
	calls := make(chan struct{}, 8)
	r := NewReconciler(ReconcilerConfig{Interval: 5 * time.Millisecond, Logger: discardLogger()}, l,
		NewStateSynchronizer(tracker, discardLogger()),
		func() ([]wm.SurfaceID, error) {
			select {
			case calls <- struct{}{}:
			default:
			}
			return nil, nil
		})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	select {
	case <-calls:
	case <-time.After(2 * time.Second):
		t.Fatalf("reconciler never ran")
	}
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("reconciler did not stop")
	}
}
