package curve

import (
	"math"
)

// Spiral is a clothoid: the curvature changes linearly from k0 to k1 over the element length.
type Spiral struct {
	element
	k0, k1 float64
}

func NewSpiral(start CurvePoint, length, k0, k1 float64) (*Spiral, error) {
	e, err := newElement(start, length)
	if err != nil {
		return nil, err
	}
	return &Spiral{element: e, k0: k0, k1: k1}, nil
}

func (sp *Spiral) Kind() Kind {
	return KindSpiral
}

func (sp *Spiral) StartPoint() CurvePoint {
	return CurvePoint{Position: sp.start.Position, Angle: sp.start.Angle, Curvature: sp.k0}
}

func (sp *Spiral) sigma() float64 {
	return (sp.k1 - sp.k0) / math.Max(EpsDistance, sp.length)
}

func (sp *Spiral) Pos(s float64) CurvePoint {
	sigma := sp.sigma()
	kappa := sp.k0 + sigma*s

	// constant curvature within tolerance
	if math.Abs(sigma) < EpsCurvature {
		a := Arc{element: sp.element, kappa: sp.k0}
		p := a.Pos(s)
		p.Curvature = kappa
		return p
	}

	x0, y0, t0 := OdrSpiral(sp.k0/sigma, sigma)
	x1, y1, t1 := OdrSpiral(kappa/sigma, sigma)

	dPhi := sp.start.Angle - t0
	sin, cos := math.Sincos(dPhi)
	dx, dy := x1-x0, y1-y0

	return CurvePoint{
		Position:  sp.start.Position.Add(vec2(dx*cos-dy*sin, dx*sin+dy*cos)),
		Angle:     t1 + dPhi,
		Curvature: kappa,
	}
}

func (sp *Spiral) Curvature(s float64) float64 {
	return sp.k0 + sp.sigma()*s
}

func (sp *Spiral) StartCurvature() float64 {
	return sp.k0
}

func (sp *Spiral) EndCurvature() float64 {
	return sp.k1
}

func (sp *Spiral) Reverse() GeoElement {
	start := EndPoint(sp)
	start.Angle += math.Pi
	return &Spiral{element: element{start: start, length: sp.length}, k0: -sp.k1, k1: -sp.k0}
}
