package curve

import (
	"math"
)

// Arc is a circular element with constant curvature.
type Arc struct {
	element
	kappa float64
}

func NewArc(start CurvePoint, length, kappa float64) (*Arc, error) {
	e, err := newElement(start, length)
	if err != nil {
		return nil, err
	}
	return &Arc{element: e, kappa: kappa}, nil
}

func (a *Arc) Kind() Kind {
	return KindArc
}

func (a *Arc) StartPoint() CurvePoint {
	return CurvePoint{Position: a.start.Position, Angle: a.start.Angle, Curvature: a.kappa}
}

func (a *Arc) Pos(s float64) CurvePoint {
	phi0 := a.start.Angle
	if math.Abs(a.kappa) < EpsCurvature {
		sin, cos := math.Sincos(phi0)
		return CurvePoint{Position: a.start.Position.Add(vec2(s*cos, s*sin)), Angle: phi0, Curvature: a.kappa}
	}

	phi := phi0 + s*a.kappa
	return CurvePoint{
		Position: a.start.Position.Add(vec2(
			(math.Sin(phi)-math.Sin(phi0))/a.kappa,
			(math.Cos(phi0)-math.Cos(phi))/a.kappa,
		)),
		Angle:     phi,
		Curvature: a.kappa,
	}
}

func (a *Arc) Curvature(float64) float64 {
	return a.kappa
}

func (a *Arc) StartCurvature() float64 {
	return a.kappa
}

func (a *Arc) EndCurvature() float64 {
	return a.kappa
}

func (a *Arc) Reverse() GeoElement {
	sp := EndPoint(a)
	sp.Angle += math.Pi
	return &Arc{element: element{start: sp, length: a.length}, kappa: -a.kappa}
}
