package lanepath

import (
	"math"

	"github.com/JensKlimke/SimMap-sub000/pkg/curve"
	"github.com/JensKlimke/SimMap-sub000/pkg/engine/mapcoord"
	"github.com/golang/geo/r3"
)

const (
	matchMinRadius  = 0.1
	matchScanStep   = 10.0
	matchEpsError   = 1e-9
	matchEpsStep    = 1e-9
	matchMaxIterate = 1000
)

// Match searches the distance from the cursor whose lane center point is closest to xyz.
// The search starts with a coarse scan within radius around s, followed by a Newton
// refinement. It returns the distance and the squared error of the match.
func (p *Path) Match(xyz r3.Vector, s, radius float64) (float64, float64) {
	lo, hi := -p.DistanceToBack(), p.DistanceToHead()
	b0, b1 := lo+curve.EpsDoubleCmp, hi-curve.EpsDoubleCmp
	if b0 > b1 {
		b0 = (lo + hi) / 2
		b1 = b0
	}
	radius = math.Max(matchMinRadius, math.Abs(radius))

	at := func(ss float64) curve.CurvePoint {
		mc, err := p.PositionAt(ss, 0)
		if err != nil {
			return curve.CurvePoint{Position: r3.Vector{X: math.Inf(1), Y: math.Inf(1)}}
		}
		return mc.AbsolutePosition()
	}

	best, bestErr := s, math.Inf(1)
	for _, ss := range curve.MaxSpace(math.Max(s-radius, b0), math.Min(s+radius, b1), matchScanStep) {
		if e := at(ss).Position.Sub(xyz).Norm2(); e < bestErr {
			best, bestErr = ss, e
		}
	}
	if math.IsInf(bestErr, 1) {
		best = math.Min(math.Max(s, b0), b1)
	}

	s = best
	errSq, ds := math.Inf(1), math.Inf(1)
	// errSq is squared, so it is compared against the squared tolerance
	for i := 0; errSq > matchEpsError*matchEpsError && math.Abs(ds) > matchEpsStep; i++ {
		pos := at(s)
		errSq = pos.Position.Sub(xyz).Norm2()

		ds = curve.ToLocal(pos, xyz).X
		next := math.Min(math.Max(s+ds, lo), hi)
		if next == s || i+1 >= matchMaxIterate {
			break
		}
		s = next
	}
	return s, errSq
}

// NeighboredPaths creates the paths of all lanes next to the cursor, ordered from the
// outermost left to the outermost right lane. Paths on lanes with opposite direction
// follow the reversed track with head and back lengths swapped.
func (p *Path) NeighboredPaths(track Track) ([]Neighbor, error) {
	pos := p.Current()
	pos.SetD(0)

	dir := pos.EdgeRef().IsForward()
	rev := track.Reverse()
	dh, db := p.DistanceToHead(), p.DistanceToBack()

	side := func(index int, mc mapcoord.MapCoordinate, step int) ([]Neighbor, error) {
		var out []Neighbor
		outward := mc
		for i := 0; !outward.OutOfRoad() && i < p.g.Len(); i++ {
			info := NeighborInformation{
				Index:      index * (i + 1),
				SameDir:    dir == outward.EdgeRef().IsForward(),
				Accessible: true,
				Allowed:    true,
				Offset:     outward.AbsolutePosition().Position.Distance(pos.AbsolutePosition().Position),
			}

			var (
				np  *Path
				err error
			)
			cur := outward
			if info.SameDir {
				np, err = Create(p.g, track.Clone(), dh, db, cur)
				outward = moveOut(cur, step, false)
			} else {
				np, err = Create(p.g, rev.Clone(), db, dh, cur)
				outward = moveOut(cur, step, true)
			}
			if err != nil {
				return nil, err
			}
			out = append(out, Neighbor{Info: info, Path: np})
		}
		return out, nil
	}

	left, err := side(1, pos.Left(1), 1)
	if err != nil {
		return nil, err
	}
	right, err := side(-1, pos.Right(1), -1)
	if err != nil {
		return nil, err
	}

	for i, j := 0, len(left)-1; i < j; i, j = i+1, j-1 {
		left[i], left[j] = left[j], left[i]
	}
	return append(left, right...), nil
}

// moveOut steps one lane further away from the path. step is positive on the left side.
// Lanes in the opposite direction see the outer side switched.
func moveOut(mc mapcoord.MapCoordinate, step int, switched bool) mapcoord.MapCoordinate {
	if (step > 0) != switched {
		return mc.Left(1)
	}
	return mc.Right(1)
}
