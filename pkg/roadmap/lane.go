package roadmap

import (
	"math"

	"github.com/JensKlimke/SimMap-sub000/pkg/curve"
	"github.com/JensKlimke/SimMap-sub000/pkg/graph"
)

// RoadShape is the reference line of a road together with the lateral lane offset.
type RoadShape struct {
	ID     string
	Curve  *curve.Curve
	Offset *curve.C3Spline
	Length float64
}

// LaneGeometry is the shape of one lane in one lane section. Offsets s run in the driving
// direction of the lane. The inner border is on the left hand side of the driving
// direction, i.e. towards the reference line.
type LaneGeometry struct {
	road   *RoadShape
	id     int
	s0, s1 float64
	width  *curve.C3Spline
	inner  *LaneGeometry
}

// NewLaneGeometry creates the lane id between s0 and s1 of the road. inner is the
// neighbored lane towards the reference line and nil for the lanes -1, 0 and 1.
func NewLaneGeometry(road *RoadShape, id int, s0, s1 float64, width *curve.C3Spline, inner *LaneGeometry) *LaneGeometry {
	if width == nil {
		width = curve.NewC3Spline()
	}
	return &LaneGeometry{road: road, id: id, s0: s0, s1: s1, width: width, inner: inner}
}

// LaneOrientation derives the driving direction from the lane id.
func LaneOrientation(id int) graph.Orientation {
	switch {
	case id == 0:
		return graph.None
	case id > 0:
		return graph.Backwards
	default:
		return graph.Forwards
	}
}

func (l *LaneGeometry) forward() bool {
	return l.id <= 0
}

func (l *LaneGeometry) ID() int {
	return l.id
}

func (l *LaneGeometry) Road() *RoadShape {
	return l.road
}

// Range returns the start and end of the lane on the reference line.
func (l *LaneGeometry) Range() (float64, float64) {
	return l.s0, l.s1
}

func (l *LaneGeometry) Length() float64 {
	return l.s1 - l.s0
}

// RoadS converts a lane offset to the offset on the reference line.
func (l *LaneGeometry) RoadS(s float64) float64 {
	if l.forward() {
		return l.s0 + s
	}
	return l.s1 - s
}

// sRel is the offset from the section start in reference direction.
func (l *LaneGeometry) sRel(s float64) float64 {
	if l.forward() {
		return s
	}
	return l.Length() - s
}

func (l *LaneGeometry) Width(s float64) float64 {
	return l.width.Value(l.sRel(s))
}

func (l *LaneGeometry) border(s float64) float64 {
	if l.inner != nil {
		return l.inner.offset(s, graph.Outer, 0)
	}

	o := l.road.Offset.Value(l.RoadS(s))
	if !l.forward() {
		o = -o
	}
	return o
}

// offset is the lateral distance of the reference to the road's reference line, measured
// to the left of the driving direction.
func (l *LaneGeometry) offset(s float64, ref graph.Reference, d float64) float64 {
	o := l.border(s) + d
	switch ref {
	case graph.Center:
		return o - 0.5*l.Width(s)
	case graph.Outer:
		return o - l.Width(s)
	default:
		return o
	}
}

func (l *LaneGeometry) Position(s float64, ref graph.Reference, d float64) curve.CurvePoint {
	off := l.offset(s, ref, d)

	p := l.road.Curve.Pos(l.RoadS(s))
	if !l.forward() {
		p.Angle = curve.NormalizeAngle(p.Angle + math.Pi)
		p.Curvature = -p.Curvature
	}
	return p.Offset(off)
}
