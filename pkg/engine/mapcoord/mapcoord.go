// Package mapcoord provides positions on the lane graph: an edge, the longitudinal offset
// in the driving direction of the edge and the lateral offset to the left.
package mapcoord

import (
	"fmt"
	"math"

	"github.com/JensKlimke/SimMap-sub000/domain"
	"github.com/JensKlimke/SimMap-sub000/pkg/curve"
	"github.com/JensKlimke/SimMap-sub000/pkg/graph"
)

// EpsPosition is the tolerance for offsets slightly outside of an edge. Such offsets are clamped.
const EpsPosition = 1e-9

type MapCoordinate struct {
	g    *graph.Graph
	edge graph.EdgeID
	s    float64
	d    float64
}

// New creates a coordinate on edge at the offsets s and d. s must lie within the edge.
func New(g *graph.Graph, edge graph.EdgeID, s, d float64) (MapCoordinate, error) {
	if g == nil || g.Edge(edge) == nil {
		return MapCoordinate{}, domain.WrapErrorf(nil, domain.ErrNotFound, "edge %d does not exist", edge)
	}

	c := MapCoordinate{g: g, edge: edge, d: d}
	if err := c.SetS(s); err != nil {
		return MapCoordinate{}, err
	}
	return c, nil
}

// OutOfRoad returns a coordinate that is not located on any edge.
func OutOfRoad() MapCoordinate {
	return MapCoordinate{edge: graph.NoEdge}
}

func (c MapCoordinate) OutOfRoad() bool {
	return c.g == nil || c.edge == graph.NoEdge
}

func (c MapCoordinate) Graph() *graph.Graph {
	return c.g
}

func (c MapCoordinate) Edge() graph.EdgeID {
	if c.g == nil {
		return graph.NoEdge
	}
	return c.edge
}

// EdgeRef returns the edge the coordinate is located on, nil when out of road.
func (c MapCoordinate) EdgeRef() *graph.Edge {
	if c.OutOfRoad() {
		return nil
	}
	return c.g.Edge(c.edge)
}

func (c MapCoordinate) S() float64 {
	return c.s
}

func (c MapCoordinate) D() float64 {
	return c.d
}

// SetS moves the coordinate along its edge.
func (c *MapCoordinate) SetS(s float64) error {
	e := c.EdgeRef()
	if e == nil {
		return domain.WrapErrorf(nil, domain.ErrRuntime, "coordinate is out of road")
	}

	l := e.Length()
	if math.IsNaN(s) || s < -EpsPosition || s > l+EpsPosition {
		return domain.WrapErrorf(nil, domain.ErrInvalidArgument, "s=%g out of bounds of edge %s [0, %g]", s, e.Name(), l)
	}

	c.s = math.Min(math.Max(s, 0), l)
	return nil
}

func (c *MapCoordinate) SetD(d float64) {
	c.d = d
}

// Shift moves the coordinate by ds along its edge.
func (c *MapCoordinate) Shift(ds float64) error {
	return c.SetS(c.s + ds)
}

// AbsolutePosition returns the world position at the lane center, moved laterally by d.
func (c MapCoordinate) AbsolutePosition() curve.CurvePoint {
	e := c.EdgeRef()
	if e == nil {
		return curve.CurvePoint{}
	}
	return e.Position(c.s, graph.Center, c.d)
}

func (c MapCoordinate) Width() float64 {
	e := c.EdgeRef()
	if e == nil {
		return 0
	}
	return e.Width(c.s)
}

// Left returns the coordinate on the n-th lane to the left, with a lateral offset of zero.
func (c MapCoordinate) Left(n int) MapCoordinate {
	return c.neighbor(graph.Left, n)
}

// Right returns the coordinate on the n-th lane to the right, with a lateral offset of zero.
func (c MapCoordinate) Right(n int) MapCoordinate {
	return c.neighbor(graph.Right, n)
}

func (c MapCoordinate) neighbor(side graph.Side, n int) MapCoordinate {
	if c.OutOfRoad() {
		return OutOfRoad()
	}

	id, s := c.g.Neighbor(c.edge, c.s, side, n)
	if id == graph.NoEdge {
		return OutOfRoad()
	}

	// the neighbor may be shorter than the covered range of the neighbor sequence
	l := c.g.Edge(id).Length()
	return MapCoordinate{g: c.g, edge: id, s: math.Min(math.Max(s, 0), l)}
}

func (c MapCoordinate) String() string {
	e := c.EdgeRef()
	if e == nil {
		return "out of road"
	}
	return fmt.Sprintf("%s (s=%.3f, d=%.3f)", e.Name(), c.s, c.d)
}
