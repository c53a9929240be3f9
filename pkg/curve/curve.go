package curve

import (
	"math"

	"github.com/JensKlimke/SimMap-sub000/domain"
	"github.com/JensKlimke/SimMap-sub000/pkg/sequence"
)

// Curve is a composite of geo elements laid out along one arc length axis starting at 0.
type Curve struct {
	elements *sequence.Sequence[GeoElement]
}

func NewCurve() *Curve {
	return &Curve{elements: sequence.New[GeoElement]()}
}

// FromCurvature creates a curve from curvature values at the knots s. The curvature is
// linear between two knots.
func FromCurvature(start CurvePoint, s, kappa []float64) (*Curve, error) {
	if len(s) != len(kappa) {
		return nil, domain.WrapErrorf(nil, domain.ErrInvalidArgument, "s and kappa must have the same size (%d != %d)", len(s), len(kappa))
	}
	if len(s) < 2 {
		return nil, domain.WrapErrorf(nil, domain.ErrInvalidArgument, "at least two knots are required")
	}
	return FromCurvatureProfile(start, s, kappa[:len(kappa)-1], kappa[1:])
}

// FromCurvatureProfile creates one element per interval [s[i], s[i+1]] with the curvature
// changing linearly from k0[i] to k1[i]. The element type is chosen by the profile.
func FromCurvatureProfile(start CurvePoint, s, k0, k1 []float64) (*Curve, error) {
	if len(s) < 2 || len(s)-1 != len(k0) || len(k0) != len(k1) {
		return nil, domain.WrapErrorf(nil, domain.ErrInvalidArgument, "invalid profile sizes (s=%d, k0=%d, k1=%d)", len(s), len(k0), len(k1))
	}

	c := NewCurve()
	for i := 1; i < len(s); i++ {
		l := s[i] - s[i-1]
		if !(l > 0) {
			return nil, domain.WrapErrorf(nil, domain.ErrInvalidArgument, "knots must increase strictly monotonically (%g, %g)", s[i-1], s[i])
		}

		g, err := profileElement(l, k0[i-1], k1[i-1])
		if err != nil {
			return nil, err
		}
		if err := c.Add(l, g); err != nil {
			return nil, err
		}
	}

	if err := c.SetStartPoint(start); err != nil {
		return nil, err
	}
	return c, nil
}

func profileElement(length, k0, k1 float64) (GeoElement, error) {
	switch {
	case math.Abs(k0) < EpsCurvature && math.Abs(k1) < EpsCurvature:
		return NewLine(CurvePoint{}, length)
	case math.Abs(k1-k0) < EpsCurvature:
		return NewArc(CurvePoint{}, length, k0)
	default:
		return NewSpiral(CurvePoint{}, length, k0, k1)
	}
}

// Add appends g with the given length at the end of the curve. The start point of g is
// not changed; call SetStartPoint to chain the elements.
func (c *Curve) Add(length float64, g GeoElement) error {
	if g == nil {
		return domain.WrapErrorf(nil, domain.ErrInvalidArgument, "element must not be nil")
	}
	return c.elements.Append(length, g)
}

func (c *Curve) Kind() Kind {
	return KindCurve
}

func (c *Curve) Length() float64 {
	return c.elements.Length()
}

func (c *Curve) Size() int {
	return c.elements.Size()
}

func (c *Curve) Elements() []GeoElement {
	return c.elements.Elements()
}

// Entries returns the elements with their offsets on the curve.
func (c *Curve) Entries() []sequence.Entry[GeoElement] {
	return c.elements.Entries()
}

// SetStartPoint places the first element at p and every following element at the end
// point of its predecessor.
func (c *Curve) SetStartPoint(p CurvePoint) error {
	if c.elements.Empty() {
		return domain.WrapErrorf(nil, domain.ErrRuntime, "curve has no elements")
	}

	for _, g := range c.elements.Elements() {
		if err := g.SetStartPoint(p); err != nil {
			return err
		}
		p = EndPoint(g)
	}
	return nil
}

func (c *Curve) StartPoint() CurvePoint {
	f, err := c.elements.Front()
	if err != nil {
		return CurvePoint{}
	}
	return f.Element.StartPoint()
}

// At evaluates the curve at s and fails for offsets outside [0, Length()].
func (c *Curve) At(s float64) (CurvePoint, error) {
	g, local, err := c.elements.AtPos(s)
	if err != nil {
		return CurvePoint{}, err
	}
	return g.Pos(local), nil
}

// Pos evaluates the curve at s clamped to [0, Length()].
func (c *Curve) Pos(s float64) CurvePoint {
	p, err := c.At(c.clamp(s))
	if err != nil {
		return CurvePoint{}
	}
	return p
}

func (c *Curve) Curvature(s float64) float64 {
	g, local, err := c.elements.AtPos(c.clamp(s))
	if err != nil {
		return 0
	}
	return g.Curvature(local)
}

func (c *Curve) StartCurvature() float64 {
	f, err := c.elements.Front()
	if err != nil {
		return 0
	}
	return f.Element.StartCurvature()
}

func (c *Curve) EndCurvature() float64 {
	b, err := c.elements.Back()
	if err != nil {
		return 0
	}
	return b.Element.EndCurvature()
}

func (c *Curve) clamp(s float64) float64 {
	return math.Min(math.Max(s, c.elements.Start()), c.elements.End())
}

func (c *Curve) steps(dPhiMax, sMax float64) ([]float64, error) {
	var res []float64
	for _, e := range c.elements.Entries() {
		st, err := Steps(e.Element, dPhiMax, sMax)
		if err != nil {
			return nil, err
		}

		// the last step of the predecessor is replaced by the first step of this element
		if len(res) > 0 {
			res = res[:len(res)-1]
		}
		for _, s := range st {
			res = append(res, e.Position+s)
		}
	}
	return res, nil
}

// Reverse returns a curve running from the end point of c back to its start point.
func (c *Curve) Reverse() GeoElement {
	r := NewCurve()
	if c.elements.Empty() {
		return r
	}

	entries := c.elements.Entries()
	l := c.Length()
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		_ = r.elements.Emplace(l-(e.Position+e.Length), e.Element.Reverse())
	}
	r.elements.SetLength(l)

	start := EndPoint(c)
	start.Angle += math.Pi
	_ = r.SetStartPoint(start)
	return r
}
