// Package curve models planar road reference lines: lines, arcs, clothoids and
// parametric cubic polynomials, combined into composite curves.
package curve

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"
)

const (
	EpsDoubleCmp = 1e-12
	EpsDistance  = 1e-9
	EpsCurvature = 1e-9
	EpsAngle     = 1e-9
)

// CurvePoint is position, heading and curvature at one offset of a curve.
type CurvePoint struct {
	Position  r3.Vector
	Angle     float64
	Curvature float64
}

func (p CurvePoint) String() string {
	return fmt.Sprintf("(%.6f, %.6f, %.6f) psi=%.6f kappa=%.6f", p.Position.X, p.Position.Y, p.Position.Z, p.Angle, p.Curvature)
}

// Offset moves the point by d along the left normal of its heading. The curvature is
// transformed for the parallel curve.
func (p CurvePoint) Offset(d float64) CurvePoint {
	sin, cos := math.Sincos(p.Angle)
	return CurvePoint{
		Position:  p.Position.Add(r3.Vector{X: -sin * d, Y: cos * d}),
		Angle:     p.Angle,
		Curvature: p.Curvature / (1.0 - d*p.Curvature),
	}
}

// ToLocal expresses the global point v in the frame of ref (x along the heading, y to the left).
func ToLocal(ref CurvePoint, v r3.Vector) r3.Vector {
	d := v.Sub(ref.Position)
	sin, cos := math.Sincos(ref.Angle)
	return r3.Vector{
		X: d.X*cos + d.Y*sin,
		Y: -d.X*sin + d.Y*cos,
		Z: d.Z,
	}
}

// ToGlobal is the inverse of ToLocal.
func ToGlobal(ref CurvePoint, v r3.Vector) r3.Vector {
	sin, cos := math.Sincos(ref.Angle)
	return r3.Vector{
		X: v.X*cos - v.Y*sin + ref.Position.X,
		Y: v.X*sin + v.Y*cos + ref.Position.Y,
		Z: v.Z + ref.Position.Z,
	}
}

// LinSpace returns n evenly spaced values from a to b, both included.
func LinSpace(a, b float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{a}
	}

	res := make([]float64, n)
	step := (b - a) / float64(n-1)
	for i := range res {
		res[i] = a + float64(i)*step
	}
	res[n-1] = b
	return res
}

// MaxSpace returns evenly spaced values from a to b with a spacing of at most ds.
func MaxSpace(a, b, ds float64) []float64 {
	if !(ds > 0) {
		if a == b {
			return []float64{a}
		}
		return []float64{a, b}
	}

	n := int(math.Ceil(math.Abs(b-a)/ds)) + 1
	if n < 2 {
		return []float64{a}
	}
	return LinSpace(a, b, n)
}

// NormalizeAngle maps a to (-pi, pi].
func NormalizeAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a <= -math.Pi {
		a += 2 * math.Pi
	} else if a > math.Pi {
		a -= 2 * math.Pi
	}
	return a
}

// AngleDiff is the signed smallest rotation from b to a.
func AngleDiff(a, b float64) float64 {
	return NormalizeAngle(a - b)
}

func vec2(x, y float64) r3.Vector {
	return r3.Vector{X: x, Y: y}
}
