package simmap

import "fmt"

// MapHandle addresses a loaded map. A handle keeps its generation, so it turns invalid
// once the map is unloaded even when the slot is reused.
type MapHandle uint64

// AgentHandle addresses a registered agent.
type AgentHandle uint64

func (h MapHandle) String() string {
	return fmt.Sprintf("map-%d.%d", slotOf(uint64(h)), genOf(uint64(h)))
}

func (h AgentHandle) String() string {
	return fmt.Sprintf("agent-%d.%d", slotOf(uint64(h)), genOf(uint64(h)))
}

func slotOf(h uint64) uint32 {
	return uint32(h)
}

func genOf(h uint64) uint32 {
	return uint32(h >> 32)
}

type slot[T any] struct {
	gen uint32
	val *T
}

// slots is an arena of values addressed by generation tagged handles.
type slots[T any] struct {
	entries []slot[T]
	free    []uint32
	n       int
}

func (s *slots[T]) add(v *T) uint64 {
	var idx uint32
	if n := len(s.free); n > 0 {
		idx = s.free[n-1]
		s.free = s.free[:n-1]
	} else {
		idx = uint32(len(s.entries))
		s.entries = append(s.entries, slot[T]{})
	}

	e := &s.entries[idx]
	e.gen++
	e.val = v
	s.n++
	return uint64(e.gen)<<32 | uint64(idx)
}

func (s *slots[T]) get(h uint64) (*T, bool) {
	idx := slotOf(h)
	if int(idx) >= len(s.entries) {
		return nil, false
	}
	e := s.entries[idx]
	if e.val == nil || e.gen != genOf(h) {
		return nil, false
	}
	return e.val, true
}

func (s *slots[T]) remove(h uint64) bool {
	if _, ok := s.get(h); !ok {
		return false
	}
	idx := slotOf(h)
	s.entries[idx].val = nil
	s.free = append(s.free, idx)
	s.n--
	return true
}

// each calls fn for all values in slot order.
func (s *slots[T]) each(fn func(h uint64, v *T)) {
	for i, e := range s.entries {
		if e.val != nil {
			fn(uint64(e.gen)<<32|uint64(i), e.val)
		}
	}
}

// clear removes all values. Generations are kept, so old handles stay invalid.
func (s *slots[T]) clear() {
	s.free = s.free[:0]
	for i := len(s.entries) - 1; i >= 0; i-- {
		s.entries[i].val = nil
		s.free = append(s.free, uint32(i))
	}
	s.n = 0
}

func (s *slots[T]) len() int {
	return s.n
}
