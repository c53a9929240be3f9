package graph

import (
	"fmt"

	"github.com/JensKlimke/SimMap-sub000/pkg/curve"
	"github.com/JensKlimke/SimMap-sub000/pkg/sequence"
)

// Edge is a lane (or part of a lane) in the graph. Edges are owned by a Graph and
// addressed by their EdgeID.
type Edge struct {
	id          EdgeID
	name        string
	orientation Orientation
	geometry    Geometry
	track       TrackElement

	nexts []Connection
	prevs []Connection

	left  *sequence.Sequence[EdgeID]
	right *sequence.Sequence[EdgeID]

	objects []ObjectEntry
}

func newEdge(id EdgeID, name string, o Orientation, geom Geometry, track TrackElement) *Edge {
	return &Edge{
		id:          id,
		name:        name,
		orientation: o,
		geometry:    geom,
		track:       track,
		left:        sequence.New[EdgeID](),
		right:       sequence.New[EdgeID](),
	}
}

func (e *Edge) ID() EdgeID {
	return e.id
}

func (e *Edge) Name() string {
	return e.name
}

func (e *Edge) String() string {
	return fmt.Sprintf("%s (%s, %.3f m)", e.name, e.orientation, e.Length())
}

func (e *Edge) Length() float64 {
	if e.geometry == nil {
		return 0
	}
	return e.geometry.Length()
}

func (e *Edge) Orientation() Orientation {
	return e.orientation
}

// IsForward is true for every orientation but Backwards.
func (e *Edge) IsForward() bool {
	return e.orientation != Backwards
}

// IsDirectionalCompatible reports whether the edge can be passed in the direction o.
func (e *Edge) IsDirectionalCompatible(o Orientation) bool {
	return e.orientation == None || e.IsForward() == (o == Forwards)
}

func (e *Edge) TrackElement() TrackElement {
	return e.track
}

func (e *Edge) Geometry() Geometry {
	return e.geometry
}

// Position returns the curve point at s relative to the reference line, moved laterally by d.
func (e *Edge) Position(s float64, ref Reference, d float64) curve.CurvePoint {
	if e.geometry == nil {
		return curve.CurvePoint{}
	}
	return e.geometry.Position(s, ref, d)
}

func (e *Edge) Width(s float64) float64 {
	if e.geometry == nil {
		return 0
	}
	return e.geometry.Width(s)
}

// Objects returns the objects ordered by their offset.
func (e *Edge) Objects() []ObjectEntry {
	return e.objects
}

func (e *Edge) Nexts() []Connection {
	return e.nexts
}

func (e *Edge) Prevs() []Connection {
	return e.prevs
}

// Left returns the left neighbors keyed by the offset (in reference direction) where they begin.
func (e *Edge) Left() *sequence.Sequence[EdgeID] {
	return e.left
}

func (e *Edge) Right() *sequence.Sequence[EdgeID] {
	return e.right
}

func (e *Edge) side(s Side) *sequence.Sequence[EdgeID] {
	if s == Left {
		return e.left
	}
	return e.right
}

func (e *Edge) hasNext(id EdgeID, cp ContactPoint) bool {
	return hasConnection(e.nexts, id, cp)
}

func (e *Edge) hasPrev(id EdgeID, cp ContactPoint) bool {
	return hasConnection(e.prevs, id, cp)
}

func hasConnection(conns []Connection, id EdgeID, cp ContactPoint) bool {
	for _, c := range conns {
		if c.Edge == id && c.ContactPoint == cp {
			return true
		}
	}
	return false
}
