package curve

import (
	"math"

	"github.com/JensKlimke/SimMap-sub000/domain"
	"github.com/JensKlimke/SimMap-sub000/pkg/sequence"
)

// C3Spline is a piecewise cubic function. Every piece is evaluated at the offset
// relative to its own start.
type C3Spline struct {
	pieces *sequence.Sequence[Poly1]
}

func NewC3Spline() *C3Spline {
	return &C3Spline{pieces: sequence.New[Poly1]()}
}

// ConstantSpline returns a spline with the constant value v on [0, +Inf).
func ConstantSpline(v float64) *C3Spline {
	c := NewC3Spline()
	_ = c.pieces.Emplace(0, NewPoly1(v, 0, 0, 0))
	c.pieces.SetLength(math.Inf(1))
	return c
}

// SplineFromValues interpolates the values with zero slopes at the breakpoints.
func SplineFromValues(s, values []float64) (*C3Spline, error) {
	return SplineFromValuesAndDerivatives(s, values, make([]float64, len(values)))
}

// SplineFromValuesAndDerivatives creates Hermite pieces between consecutive breakpoints.
func SplineFromValuesAndDerivatives(s, values, der []float64) (*C3Spline, error) {
	if len(s) != len(values) || len(s) != len(der) {
		return nil, domain.WrapErrorf(nil, domain.ErrInvalidArgument, "vectors must have the same length (%d, %d, %d)", len(s), len(values), len(der))
	}
	if len(s) < 2 {
		return nil, domain.WrapErrorf(nil, domain.ErrInvalidArgument, "at least two breakpoints are required")
	}

	c := NewC3Spline()
	for i := 1; i < len(s); i++ {
		if s[i-1] >= s[i] {
			return nil, domain.WrapErrorf(nil, domain.ErrInvalidArgument, "breakpoints must increase strictly monotonically (%g >= %g)", s[i-1], s[i])
		}
		if err := c.pieces.Emplace(s[i-1], Order3FromValueAndDerivative(s[i]-s[i-1], values[i-1], der[i-1], values[i], der[i])); err != nil {
			return nil, err
		}
	}
	c.pieces.SetLength(s[len(s)-1] - s[0])
	return c, nil
}

// SplineFromDefinition creates pieces from coefficient rows {a, b, c, d}.
// s holds one more breakpoint than there are rows; the last one closes the spline and may be +Inf.
func SplineFromDefinition(s []float64, rows [][4]float64) (*C3Spline, error) {
	if len(s) != len(rows)+1 {
		return nil, domain.WrapErrorf(nil, domain.ErrInvalidArgument, "s must hold one breakpoint more than there are pieces")
	}
	if len(rows) == 0 {
		return NewC3Spline(), nil
	}

	c := NewC3Spline()
	s0 := math.Inf(-1)
	for i, row := range rows {
		if s[i] <= s0 {
			return nil, domain.WrapErrorf(nil, domain.ErrInvalidArgument, "breakpoints must increase strictly monotonically (%g <= %g)", s[i], s0)
		}
		if err := c.pieces.Emplace(s[i], NewPoly1(row[:]...)); err != nil {
			return nil, err
		}
		s0 = s[i]
	}
	if s[len(s)-1] <= s0 {
		return nil, domain.WrapErrorf(nil, domain.ErrInvalidArgument, "closing breakpoint %g must be behind %g", s[len(s)-1], s0)
	}
	c.pieces.SetLength(s[len(s)-1] - s[0])
	return c, nil
}

func (c *C3Spline) Empty() bool {
	return c.pieces.Empty()
}

func (c *C3Spline) Length() float64 {
	return c.pieces.Length()
}

// Value evaluates the spline at s. An empty spline is 0 everywhere. Positions outside
// the defined range are clamped.
func (c *C3Spline) Value(s float64) float64 {
	if c.pieces.Empty() {
		return 0
	}

	p, local, err := c.pieces.AtPos(c.clamp(s))
	if err != nil {
		return 0
	}
	return p.Eval(local)
}

// Der evaluates the first derivative at s.
func (c *C3Spline) Der(s float64) float64 {
	if c.pieces.Empty() {
		return 0
	}

	p, local, err := c.pieces.AtPos(c.clamp(s))
	if err != nil {
		return 0
	}
	return p.Der().Eval(local)
}

func (c *C3Spline) clamp(s float64) float64 {
	return math.Min(math.Max(s, c.pieces.Start()), c.pieces.End())
}

// Steps samples the spline such that the slope changes by at most dPhiMax between samples.
func (c *C3Spline) Steps(dPhiMax, sMax float64) ([]float64, error) {
	if !(dPhiMax > 0) || !(sMax > 0) {
		return nil, domain.WrapErrorf(nil, domain.ErrInvalidArgument, "step limits must be positive (dPhi=%g, s=%g)", dPhiMax, sMax)
	}

	var steps []float64
	s := c.pieces.Start()
	for _, e := range c.pieces.Entries() {
		s0 := e.Position
		s1 := e.Position + e.Length
		if math.IsInf(s1, 1) {
			s1 = s0
		}

		d2 := e.Element.Der().Der()
		d3 := d2.Der()
		for s < s1 {
			steps = append(steps, s)

			k0 := math.Abs(d2.Eval(s - s0))
			sigma := math.Abs(d3.Eval(s - s0))

			t0 := math.Inf(1)
			if k0 > 0 {
				t0 = dPhiMax / k0
			}
			if sigma > EpsCurvature {
				t0 = (-k0 + math.Sqrt(k0*k0+2.0*dPhiMax*sigma)) / sigma
			}
			s += math.Min(math.Min(t0, s1-s0), sMax)
		}
		s = math.Min(s, s1)
	}

	return append(steps, s), nil
}
