package wm

import "math"

// Handle is a generation-checked index into an arena. A handle outlives the
// entity it names but stops resolving as soon as that entity is removed, so
// holders never observe a recycled slot. The zero Handle never resolves.
type Handle[T any] struct {
	index uint32
	gen   uint32
}

// IsZero reports whether h is the null handle.
func (h Handle[T]) IsZero() bool {
	return h.gen == 0
}

type slot[T any] struct {
	gen  uint32
	item *T
}

// arena owns every entity of one kind.
type arena[T any] struct {
	slots []slot[T]
	free  []uint32
	count int
}

func (a *arena[T]) insert(item *T) Handle[T] {
	var idx uint32
	if n := len(a.free); n > 0 {
		idx = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		if uint64(len(a.slots)) >= math.MaxUint32 {
			panic("wm: entity registry exhausted")
		}
		a.slots = append(a.slots, slot[T]{})
		idx = uint32(len(a.slots) - 1)
	}

	s := &a.slots[idx]
	s.gen++
	if s.gen == 0 {
		s.gen = 1
	}
	s.item = item
	a.count++
	return Handle[T]{index: idx, gen: s.gen}
}

func (a *arena[T]) get(h Handle[T]) *T {
	if h.gen == 0 || int(h.index) >= len(a.slots) {
		return nil
	}
	s := a.slots[h.index]
	if s.gen != h.gen {
		return nil
	}
	return s.item
}

func (a *arena[T]) remove(h Handle[T]) bool {
	if a.get(h) == nil {
		return false
	}
	a.slots[h.index].item = nil
	a.free = append(a.free, h.index)
	a.count--
	return true
}

func (a *arena[T]) len() int {
	return a.count
}
