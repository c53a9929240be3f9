package curve

import (
	"math"
)

// Line is a straight element.
type Line struct {
	element
}

func NewLine(start CurvePoint, length float64) (*Line, error) {
	e, err := newElement(start, length)
	if err != nil {
		return nil, err
	}
	return &Line{e}, nil
}

func (l *Line) Kind() Kind {
	return KindLine
}

func (l *Line) StartPoint() CurvePoint {
	return l.start
}

func (l *Line) Pos(s float64) CurvePoint {
	sin, cos := math.Sincos(l.start.Angle)
	return CurvePoint{
		Position: l.start.Position.Add(vec2(s*cos, s*sin)),
		Angle:    l.start.Angle,
	}
}

func (l *Line) Curvature(float64) float64 {
	return 0
}

func (l *Line) StartCurvature() float64 {
	return 0
}

func (l *Line) EndCurvature() float64 {
	return 0
}

func (l *Line) Reverse() GeoElement {
	sp := EndPoint(l)
	sp.Angle += math.Pi
	return &Line{element{start: sp, length: l.length}}
}
