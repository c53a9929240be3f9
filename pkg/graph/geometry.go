package graph

import (
	"math"

	"github.com/JensKlimke/SimMap-sub000/pkg/curve"
	"github.com/golang/geo/r3"
)

// Geometry describes the shape of an edge. Offsets s run in the driving direction of the
// edge, d is measured to the left of it.
type Geometry interface {
	Length() float64
	Position(s float64, ref Reference, d float64) curve.CurvePoint
	Width(s float64) float64
}

// LineGeometry is a straight lane of constant width. The inner border is on the left.
type LineGeometry struct {
	start  curve.CurvePoint
	length float64
	width  float64
}

func NewLineGeometry(x, y, heading, length, width float64) *LineGeometry {
	return &LineGeometry{
		start:  curve.CurvePoint{Position: r3.Vector{X: x, Y: y}, Angle: heading},
		length: math.Max(0, length),
		width:  width,
	}
}

func (l *LineGeometry) Length() float64 {
	return l.length
}

func (l *LineGeometry) Width(float64) float64 {
	return l.width
}

func (l *LineGeometry) Position(s float64, ref Reference, d float64) curve.CurvePoint {
	switch ref {
	case Inner:
		d += 0.5 * l.width
	case Outer:
		d -= 0.5 * l.width
	}

	sin, cos := math.Sincos(l.start.Angle)
	p := curve.CurvePoint{
		Position: l.start.Position.Add(r3.Vector{X: s * cos, Y: s * sin}),
		Angle:    l.start.Angle,
	}
	return p.Offset(d)
}
