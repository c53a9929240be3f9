package curve

import (
	"math"

	"github.com/JensKlimke/SimMap-sub000/domain"
)

// Kind tags the geometry variant behind a GeoElement.
type Kind int

const (
	KindLine Kind = iota
	KindArc
	KindSpiral
	KindParamPoly3
	KindCurve
)

func (k Kind) String() string {
	switch k {
	case KindLine:
		return "line"
	case KindArc:
		return "arc"
	case KindSpiral:
		return "spiral"
	case KindParamPoly3:
		return "paramPoly3"
	case KindCurve:
		return "curve"
	default:
		return "unknown"
	}
}

// GeoElement is a planar curve parametrized by arc length s in [0, Length()].
type GeoElement interface {
	Kind() Kind
	Length() float64
	// StartPoint is the configured start position and heading together with the start curvature.
	StartPoint() CurvePoint
	// SetStartPoint places the element. Only position and heading of p are used.
	SetStartPoint(p CurvePoint) error
	Pos(s float64) CurvePoint
	Curvature(s float64) float64
	StartCurvature() float64
	EndCurvature() float64
	// Reverse returns the same geometry traversed from its end point to its start point.
	Reverse() GeoElement
}

// EndPoint returns the curve point at the end of g.
func EndPoint(g GeoElement) CurvePoint {
	return g.Pos(g.Length())
}

// PosOffset returns the point at s, moved laterally by d.
func PosOffset(g GeoElement, s, d float64) CurvePoint {
	return g.Pos(s).Offset(d)
}

// Positions evaluates g at every offset in s.
func Positions(g GeoElement, s []float64) []CurvePoint {
	res := make([]CurvePoint, len(s))
	for i, v := range s {
		res[i] = g.Pos(v)
	}
	return res
}

// Steps returns sample offsets along g such that consecutive samples differ by at most
// dPhiMax in heading and sMax in arc length.
func Steps(g GeoElement, dPhiMax, sMax float64) ([]float64, error) {
	if !(dPhiMax > 0) || !(sMax > 0) {
		return nil, domain.WrapErrorf(nil, domain.ErrInvalidArgument, "step limits must be positive (dPhi=%g, s=%g)", dPhiMax, sMax)
	}

	if c, ok := g.(*Curve); ok {
		return c.steps(dPhiMax, sMax)
	}
	return elementSteps(g, dPhiMax, sMax), nil
}

func elementSteps(g GeoElement, dPhiMax, sMax float64) []float64 {
	l := g.Length()
	if l <= 0 {
		return []float64{0}
	}

	sigma := math.Abs((g.EndCurvature() - g.StartCurvature()) / l)

	var steps []float64
	for s := 0.0; s < l; {
		steps = append(steps, s)

		k0 := math.Abs(g.Curvature(s))
		t0 := math.Inf(1)
		if k0 > 0 {
			t0 = dPhiMax / k0
		}
		if sigma > EpsCurvature {
			t0 = (-k0 + math.Sqrt(k0*k0+2.0*dPhiMax*sigma)) / sigma
		}

		s += math.Min(t0, sMax)
	}

	return append(steps, l-EpsDistance)
}

// element carries what all primitive variants share.
type element struct {
	start  CurvePoint
	length float64
}

func newElement(start CurvePoint, length float64) (element, error) {
	if length < 0 || math.IsNaN(length) {
		return element{}, domain.WrapErrorf(nil, domain.ErrInvalidArgument, "length must not be negative (%g)", length)
	}
	return element{start: CurvePoint{Position: start.Position, Angle: start.Angle}, length: length}, nil
}

func (e *element) Length() float64 {
	return e.length
}

func (e *element) SetStartPoint(p CurvePoint) error {
	e.start.Position = p.Position
	e.start.Angle = p.Angle
	return nil
}
