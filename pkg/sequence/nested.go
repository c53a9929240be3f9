package sequence

import (
	"math"
	"sort"
)

// Side tags which of the two parallel subsequences an entry comes from.
type Side int

const (
	First Side = iota
	Second
)

// SubSequence holds two independent subdivisions of one section.
type SubSequence[T any] struct {
	First  *Sequence[T]
	Second *Sequence[T]
}

// NestedEntry is an entry of one side. Element is nil when the side is unset at the queried position.
type NestedEntry[T any] struct {
	Position float64
	Length   float64
	Element  *T
	Side     Side
}

type EntryPair[T any] struct {
	First  NestedEntry[T]
	Second NestedEntry[T]
}

// Nested is a sequence of sections, each carrying two parallel sequences.
// It models lateral attributes that change independently on both sides of a road.
type Nested[T any] struct {
	sections *Sequence[*SubSequence[T]]
}

func NewNested[T any]() *Nested[T] {
	return &Nested[T]{sections: New[*SubSequence[T]]()}
}

// Create opens a new section at s and returns it for filling.
func (n *Nested[T]) Create(s float64) (*SubSequence[T], error) {
	sub := &SubSequence[T]{First: New[T](), Second: New[T]()}
	if err := n.sections.Emplace(s, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// SetLength sets the overall length and propagates each section's length to both sides.
// Empty sides get an infinite length.
func (n *Nested[T]) SetLength(l float64) {
	n.sections.SetLength(l)
	for _, e := range n.sections.Entries() {
		for _, side := range []*Sequence[T]{e.Element.First, e.Element.Second} {
			if side.Empty() {
				side.SetLength(math.Inf(1))
			} else {
				side.SetLength(e.Length)
			}
		}
	}
}

func (n *Nested[T]) Length() float64 {
	return n.sections.Length()
}

// At returns the cross section at s: the covering entry of both sides with local offsets.
func (n *Nested[T]) At(s float64) (EntryPair[T], error) {
	sub, _, err := n.sections.AtPos(s)
	if err != nil {
		return EntryPair[T]{}, err
	}
	return crossSection(sub, s)
}

func (n *Nested[T]) Front() (EntryPair[T], error) {
	e, err := n.sections.Front()
	if err != nil {
		return EntryPair[T]{}, err
	}
	return crossSection(e.Element, e.Position)
}

func (n *Nested[T]) Back() (EntryPair[T], error) {
	e, err := n.sections.Back()
	if err != nil {
		return EntryPair[T]{}, err
	}
	return crossSection(e.Element, n.sections.End())
}

// Entries returns all entries of both sides, sorted by position. Ties keep the First side first.
func (n *Nested[T]) Entries() []NestedEntry[T] {
	var ret []NestedEntry[T]
	for _, sec := range n.sections.Entries() {
		ret = append(ret, sideEntries(sec.Element.First, First)...)
		ret = append(ret, sideEntries(sec.Element.Second, Second)...)
	}

	sort.SliceStable(ret, func(i, j int) bool {
		return ret[i].Position < ret[j].Position
	})
	return ret
}

func (n *Nested[T]) Sections() *Sequence[*SubSequence[T]] {
	return n.sections
}

func sideEntries[T any](q *Sequence[T], side Side) []NestedEntry[T] {
	entries := q.Entries()
	ret := make([]NestedEntry[T], len(entries))
	for i := range entries {
		ret[i] = NestedEntry[T]{
			Position: entries[i].Position,
			Length:   entries[i].Length,
			Element:  &entries[i].Element,
			Side:     side,
		}
	}
	return ret
}

func crossSection[T any](sub *SubSequence[T], s float64) (EntryPair[T], error) {
	first, err := sideAt(sub.First, s, First)
	if err != nil {
		return EntryPair[T]{}, err
	}
	second, err := sideAt(sub.Second, s, Second)
	if err != nil {
		return EntryPair[T]{}, err
	}
	return EntryPair[T]{First: first, Second: second}, nil
}

func sideAt[T any](q *Sequence[T], s float64, side Side) (NestedEntry[T], error) {
	if q.Empty() {
		return NestedEntry[T]{Position: math.Inf(1), Length: math.Inf(1), Side: side}, nil
	}

	e, local, err := q.EntryAt(s)
	if err != nil {
		return NestedEntry[T]{}, err
	}
	return NestedEntry[T]{Position: local, Length: e.Length, Element: &e.Element, Side: side}, nil
}
