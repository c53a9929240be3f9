// Package graph holds the lane graph: an arena of oriented edges with successor and
// predecessor links and laterally neighbored edges on both sides.
package graph

type EdgeID int32

// NoEdge marks a missing edge, e.g. a neighbor query leaving the road.
const NoEdge EdgeID = -1

type Orientation int

const (
	None Orientation = iota
	Forwards
	Backwards
	Both
)

func (o Orientation) String() string {
	switch o {
	case Forwards:
		return "forwards"
	case Backwards:
		return "backwards"
	case Both:
		return "both"
	default:
		return "none"
	}
}

// Invert swaps forwards and backwards.
func (o Orientation) Invert() Orientation {
	switch o {
	case Forwards:
		return Backwards
	case Backwards:
		return Forwards
	default:
		return o
	}
}

type ContactPoint int

const (
	Start ContactPoint = iota
	End
)

func (c ContactPoint) String() string {
	if c == End {
		return "end"
	}
	return "start"
}

type Side int

const (
	Left Side = iota
	Right
)

func (s Side) Switch() Side {
	if s == Left {
		return Right
	}
	return Left
}

func (s Side) String() string {
	if s == Right {
		return "right"
	}
	return "left"
}

// Reference selects the lateral reference line of a lane edge.
type Reference int

const (
	Inner Reference = iota
	Center
	Outer
)

// Connection is a successor or predecessor link: the linked edge and the contact point
// of the linked edge that touches this edge.
type Connection struct {
	ContactPoint ContactPoint
	Edge         EdgeID
}

// TrackElement relates an edge to a road of a route together with the direction the road
// is passed in.
type TrackElement struct {
	Orientation Orientation
	Road        string
}

// Object is a point object placed along an edge, e.g. a traffic sign.
type Object struct {
	Type  string  `json:"type"`
	Label string  `json:"label"`
	ID    string  `json:"id"`
	Value float64 `json:"value"`
}

// ObjectEntry is an object and its offset on the edge.
type ObjectEntry struct {
	S      float64
	Object Object
}
