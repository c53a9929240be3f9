package curve

import (
	"math"

	"github.com/JensKlimke/SimMap-sub000/domain"
)

const paramPolyIntervals = 1000

// ParamPoly3 is a parametric cubic: u(t) and v(t) in the start frame, t = s/length in [0, 1].
type ParamPoly3 struct {
	element
	u, v Poly1
}

// NewParamPoly3 creates the element from ascending coefficients of u(t) and v(t).
// A non-positive length is replaced by the arc length of the polynomial curve.
func NewParamPoly3(start CurvePoint, length float64, au, av [4]float64) (*ParamPoly3, error) {
	p := &ParamPoly3{
		u: NewPoly1(au[:]...),
		v: NewPoly1(av[:]...),
	}
	if !(length > 0) {
		length = p.arcLength()
	}
	if math.IsNaN(length) || math.IsInf(length, 0) {
		return nil, domain.WrapErrorf(nil, domain.ErrInvalidArgument, "cannot derive length of polynomial element")
	}

	e, err := newElement(start, length)
	if err != nil {
		return nil, err
	}
	p.element = e
	return p, nil
}

// arcLength integrates the speed of the curve over t in [0, 1] with Simpson's rule.
func (p *ParamPoly3) arcLength() float64 {
	du, dv := p.u.Der(), p.v.Der()
	speed := func(t float64) float64 {
		return math.Hypot(du.Eval(t), dv.Eval(t))
	}

	h := 1.0 / paramPolyIntervals
	sum := speed(0) + speed(1)
	for i := 1; i < paramPolyIntervals; i++ {
		w := 2.0
		if i%2 == 1 {
			w = 4.0
		}
		sum += w * speed(float64(i)*h)
	}
	return sum * h / 3.0
}

func (p *ParamPoly3) Kind() Kind {
	return KindParamPoly3
}

// Coefficients returns the ascending coefficients of u(t) and v(t).
func (p *ParamPoly3) Coefficients() (au, av [4]float64) {
	for i := 0; i < 4; i++ {
		au[i] = p.u.Coefficient(i)
		av[i] = p.v.Coefficient(i)
	}
	return au, av
}

func (p *ParamPoly3) StartPoint() CurvePoint {
	return p.Pos(0)
}

// SetStartPoint places the element such that Pos(0) has the position and heading of sp.
func (p *ParamPoly3) SetStartPoint(sp CurvePoint) error {
	a0 := math.Atan2(p.v.Der().Eval(0), p.u.Der().Eval(0))
	p.start.Angle = sp.Angle - a0
	p.start.Position = ToGlobal(CurvePoint{Position: sp.Position, Angle: p.start.Angle}, vec2(-p.u.Eval(0), -p.v.Eval(0)))
	return nil
}

func (p *ParamPoly3) t(s float64) float64 {
	if p.length <= 0 {
		return 0
	}
	return s / p.length
}

func (p *ParamPoly3) Pos(s float64) CurvePoint {
	t := p.t(s)
	return CurvePoint{
		Position:  ToGlobal(p.start, vec2(p.u.Eval(t), p.v.Eval(t))),
		Angle:     p.start.Angle + math.Atan2(p.v.Der().Eval(t), p.u.Der().Eval(t)),
		Curvature: p.curvatureAt(t),
	}
}

func (p *ParamPoly3) curvatureAt(t float64) float64 {
	du, dv := p.u.Der(), p.v.Der()
	ddu, ddv := du.Der(), dv.Der()

	x1, y1 := du.Eval(t), dv.Eval(t)
	x2, y2 := ddu.Eval(t), ddv.Eval(t)

	den := math.Pow(x1*x1+y1*y1, 1.5)
	if den < EpsDoubleCmp {
		return 0
	}
	return math.Abs(x1*y2-y1*x2) / den
}

func (p *ParamPoly3) Curvature(s float64) float64 {
	return p.curvatureAt(p.t(s))
}

func (p *ParamPoly3) StartCurvature() float64 {
	return p.curvatureAt(0)
}

func (p *ParamPoly3) EndCurvature() float64 {
	return p.curvatureAt(1)
}

// Reverse re-expresses both cubics in the frame of the end point, heading turned by pi.
func (p *ParamPoly3) Reverse() GeoElement {
	ru, rv := p.u.Mirror(), p.v.Mirror()

	eu, ev := p.u.Eval(1), p.v.Eval(1)
	theta := math.Atan2(p.v.Der().Eval(1), p.u.Der().Eval(1)) + math.Pi
	sin, cos := math.Sincos(theta)

	var au, av [4]float64
	for i := 0; i < 4; i++ {
		x, y := ru.Coefficient(i), rv.Coefficient(i)
		if i == 0 {
			x -= eu
			y -= ev
		}
		au[i] = cos*x + sin*y
		av[i] = -sin*x + cos*y
	}

	return &ParamPoly3{
		element: element{
			start: CurvePoint{
				Position: ToGlobal(p.start, vec2(eu, ev)),
				Angle:    p.start.Angle + theta,
			},
			length: p.length,
		},
		u: NewPoly1(au[:]...),
		v: NewPoly1(av[:]...),
	}
}
