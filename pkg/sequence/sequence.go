// Package sequence provides containers that key elements by a position on one axis.
//
// Every element covers the interval from its own key up to the key of the next
// element. The last element ends at an explicitly tracked end bound. Interval
// lengths are derived from the keys and the end bound, never stored.
package sequence

import (
	"math"

	"github.com/JensKlimke/SimMap-sub000/domain"
	"github.com/google/btree"
)

const (
	// EpsPosition widens the covered range in Exists.
	EpsPosition = 1e-9

	treeDegree = 8
)

type item[T any] struct {
	pos  float64
	elem T
}

func lessItem[T any](a, b item[T]) bool {
	return a.pos < b.pos
}

// Entry is a derived view on one element: its key, the length of its interval and the element.
type Entry[T any] struct {
	Position float64
	Length   float64
	Element  T
}

// Sequence is an ordered, position-keyed container.
type Sequence[T any] struct {
	tree *btree.BTreeG[item[T]]
	end  float64
}

func New[T any]() *Sequence[T] {
	return &Sequence[T]{
		tree: btree.NewG[item[T]](treeDegree, lessItem[T]),
		end:  math.Inf(1),
	}
}

// Emplace inserts v at pos, replacing an element with the same key.
func (q *Sequence[T]) Emplace(pos float64, v T) error {
	if pos > q.end {
		return domain.WrapErrorf(nil, domain.ErrInvalidArgument, "position %g is behind the end of the sequence (%g)", pos, q.end)
	}

	q.tree.ReplaceOrInsert(item[T]{pos, v})
	return nil
}

// Push inserts v at pos unless the key is taken. The bool result reports whether v was inserted.
func (q *Sequence[T]) Push(pos float64, v T) (bool, error) {
	if pos > q.end {
		return false, domain.WrapErrorf(nil, domain.ErrInvalidArgument, "position %g is behind the end of the sequence (%g)", pos, q.end)
	}
	if q.tree.Has(item[T]{pos: pos}) {
		return false, nil
	}

	q.tree.ReplaceOrInsert(item[T]{pos, v})
	return true, nil
}

// Append inserts v at the current end and moves the end by ds.
// On a sequence without a finite end the element is placed at 0.
func (q *Sequence[T]) Append(ds float64, v T) error {
	if ds < 0 || math.IsNaN(ds) {
		return domain.WrapErrorf(nil, domain.ErrInvalidArgument, "cannot append element with negative length %g", ds)
	}

	pos := q.end
	if math.IsInf(pos, 1) {
		pos = 0
	}

	q.tree.ReplaceOrInsert(item[T]{pos, v})
	q.end = pos + ds
	return nil
}

// AtPos returns the element whose interval covers s and the offset of s relative to its key.
func (q *Sequence[T]) AtPos(s float64) (T, float64, error) {
	var zero T
	if q.tree.Len() == 0 {
		return zero, 0, domain.WrapErrorf(nil, domain.ErrRuntime, "sequence is empty")
	}

	start := q.Start()
	if s < start || s > q.end || math.IsNaN(s) {
		return zero, 0, domain.WrapErrorf(nil, domain.ErrOutOfRange, "position %g outside of sequence range [%g, %g]", s, start, q.end)
	}

	var found item[T]
	q.tree.DescendLessOrEqual(item[T]{pos: s}, func(it item[T]) bool {
		found = it
		return false
	})

	return found.elem, s - found.pos, nil
}

// EntryAt is AtPos returning the full entry of the covering element.
func (q *Sequence[T]) EntryAt(s float64) (Entry[T], float64, error) {
	elem, local, err := q.AtPos(s)
	if err != nil {
		return Entry[T]{}, 0, err
	}

	pos := s - local
	return Entry[T]{Position: pos, Length: q.intervalEnd(pos) - pos, Element: elem}, local, nil
}

// Length is the distance between the first key and the end bound, 0 when empty.
func (q *Sequence[T]) Length() float64 {
	if q.tree.Len() == 0 {
		return 0
	}
	return q.end - q.Start()
}

// SetLength moves the end bound so that Length() returns l.
func (q *Sequence[T]) SetLength(l float64) {
	if q.tree.Len() == 0 {
		q.end = l
		return
	}
	q.end = l + q.Start()
}

// Start returns the first key, or the end bound when the sequence is empty.
func (q *Sequence[T]) Start() float64 {
	first, ok := q.tree.Min()
	if !ok {
		return q.end
	}
	return first.pos
}

func (q *Sequence[T]) End() float64 {
	return q.end
}

func (q *Sequence[T]) Front() (Entry[T], error) {
	first, ok := q.tree.Min()
	if !ok {
		return Entry[T]{}, domain.WrapErrorf(nil, domain.ErrRuntime, "sequence is empty")
	}
	return Entry[T]{Position: first.pos, Length: q.intervalEnd(first.pos) - first.pos, Element: first.elem}, nil
}

func (q *Sequence[T]) Back() (Entry[T], error) {
	last, ok := q.tree.Max()
	if !ok {
		return Entry[T]{}, domain.WrapErrorf(nil, domain.ErrRuntime, "sequence is empty")
	}
	return Entry[T]{Position: last.pos, Length: q.end - last.pos, Element: last.elem}, nil
}

// Points returns all keys followed by the end bound.
func (q *Sequence[T]) Points() []float64 {
	pts := make([]float64, 0, q.tree.Len()+1)
	q.tree.Ascend(func(it item[T]) bool {
		pts = append(pts, it.pos)
		return true
	})
	return append(pts, q.end)
}

func (q *Sequence[T]) Entries() []Entry[T] {
	entries := make([]Entry[T], 0, q.tree.Len())
	q.tree.Ascend(func(it item[T]) bool {
		if n := len(entries); n > 0 {
			entries[n-1].Length = it.pos - entries[n-1].Position
		}
		entries = append(entries, Entry[T]{Position: it.pos, Element: it.elem})
		return true
	})
	if n := len(entries); n > 0 {
		entries[n-1].Length = q.end - entries[n-1].Position
	}
	return entries
}

// Elements returns the elements in key order.
func (q *Sequence[T]) Elements() []T {
	elems := make([]T, 0, q.tree.Len())
	q.tree.Ascend(func(it item[T]) bool {
		elems = append(elems, it.elem)
		return true
	})
	return elems
}

// Exists reports whether s lies within the covered range [Start, End], widened by EpsPosition.
func (q *Sequence[T]) Exists(s float64) bool {
	return q.tree.Len() > 0 && s >= q.Start()-EpsPosition && s <= q.end+EpsPosition
}

// ExistsFunc reports whether s is covered and the element covering s is accepted by match.
func (q *Sequence[T]) ExistsFunc(s float64, match func(T) bool) bool {
	if !q.Exists(s) {
		return false
	}

	elem, _, err := q.AtPos(math.Min(math.Max(s, q.Start()), q.end))
	return err == nil && match(elem)
}

// Erase removes the element keyed exactly at pos.
func (q *Sequence[T]) Erase(pos float64) bool {
	_, ok := q.tree.Delete(item[T]{pos: pos})
	return ok
}

// Clear removes all elements and resets the end bound.
func (q *Sequence[T]) Clear() {
	q.tree.Clear(false)
	q.end = math.Inf(1)
}

func (q *Sequence[T]) Size() int {
	return q.tree.Len()
}

func (q *Sequence[T]) Empty() bool {
	return q.tree.Len() == 0
}

// Clone returns a shallow copy. Elements are copied by value.
func (q *Sequence[T]) Clone() *Sequence[T] {
	return &Sequence[T]{tree: q.tree.Clone(), end: q.end}
}

func (q *Sequence[T]) intervalEnd(pos float64) float64 {
	next := q.end
	q.tree.AscendGreaterOrEqual(item[T]{pos: pos}, func(it item[T]) bool {
		if it.pos > pos {
			next = it.pos
			return false
		}
		return true
	})
	return next
}
