package roadmap

import (
	"math"
	"sort"

	"github.com/JensKlimke/SimMap-sub000/domain"
	"github.com/JensKlimke/SimMap-sub000/pkg/concurrent"
	"github.com/JensKlimke/SimMap-sub000/pkg/curve"
	"github.com/JensKlimke/SimMap-sub000/pkg/engine/mapcoord"
	"github.com/JensKlimke/SimMap-sub000/pkg/graph"
	"github.com/dhconnelly/rtreego"
	"github.com/golang/geo/r3"
)

var tol = 0.01

// laneSegment is the part of a lane center line between two sampled points.
type laneSegment struct {
	edge   graph.EdgeID
	s0, s1 float64
	p0, p1 r3.Vector
	rect   rtreego.Rect
}

func (l *laneSegment) Bounds() rtreego.Rect {
	return l.rect
}

// Index is a spatial index over the sampled lane center lines.
type Index struct {
	g       *graph.Graph
	tree    *rtreego.Rtree
	samples map[graph.EdgeID]concurrent.LaneSamples
}

// Location is a located map coordinate and its distance to the query point.
type Location struct {
	Coordinate mapcoord.MapCoordinate
	Distance   float64
}

func buildIndex(m *Map, o options) (*Index, error) {
	jobs := make([]concurrent.DiscretizeJobItem, 0, m.Graph.Len())
	roadSteps := make(map[string][]float64, len(m.Roads))

	for _, e := range m.Graph.Edges() {
		lane, ok := m.lanes[e.ID()]
		if !ok {
			continue
		}

		road := lane.Road()
		steps, ok := roadSteps[road.ID]
		if !ok {
			var err error
			if steps, err = curve.Steps(road.Curve, o.maxAngle, o.step); err != nil {
				return nil, err
			}
			roadSteps[road.ID] = steps
		}
		jobs = append(jobs, concurrent.DiscretizeJobItem{Edge: e.ID(), S: laneSteps(lane, steps)})
	}

	if o.bar != nil {
		o.bar.ChangeMax(len(jobs))
	}

	results := concurrent.Run(o.workers, jobs, func(job concurrent.DiscretizeJobItem) concurrent.LaneSamples {
		e := m.Graph.Edge(job.Edge)
		pts := make([]r3.Vector, len(job.S))
		for i, s := range job.S {
			pts[i] = e.Position(s, graph.Center, 0).Position
		}
		if o.bar != nil {
			_ = o.bar.Add(1)
		}
		return concurrent.LaneSamples{Edge: job.Edge, S: job.S, Points: pts}
	})

	idx := &Index{
		g:       m.Graph,
		tree:    rtreego.NewTree(2, 25, 50),
		samples: make(map[graph.EdgeID]concurrent.LaneSamples, len(results)),
	}
	for _, r := range results {
		idx.samples[r.Edge] = r
		for i := 1; i < len(r.S); i++ {
			seg, err := newLaneSegment(r.Edge, r.S[i-1], r.S[i], r.Points[i-1], r.Points[i])
			if err != nil {
				return nil, err
			}
			idx.tree.Insert(seg)
		}
	}
	return idx, nil
}

// laneSteps converts the sample offsets of the reference line to offsets of the lane,
// including both lane ends.
func laneSteps(lane *LaneGeometry, roadSteps []float64) []float64 {
	s0, s1 := lane.Range()
	l := lane.Length()

	out := []float64{0, l}
	for _, s := range roadSteps {
		if s > s0+curve.EpsDistance && s < s1-curve.EpsDistance {
			out = append(out, s-s0)
		}
	}
	if lane.ID() > 0 {
		for i := range out {
			out[i] = l - out[i]
		}
	}
	sort.Float64s(out)
	return out
}

func newLaneSegment(e graph.EdgeID, s0, s1 float64, p0, p1 r3.Vector) (*laneSegment, error) {
	minX, maxX := math.Min(p0.X, p1.X), math.Max(p0.X, p1.X)
	minY, maxY := math.Min(p0.Y, p1.Y), math.Max(p0.Y, p1.Y)

	rect, err := rtreego.NewRect(rtreego.Point{minX - tol, minY - tol}, []float64{maxX - minX + 2*tol, maxY - minY + 2*tol})
	if err != nil {
		return nil, domain.WrapErrorf(err, domain.ErrInternalServerError, "cannot index lane segment")
	}
	return &laneSegment{edge: e, s0: s0, s1: s1, p0: p0, p1: p1, rect: rect}, nil
}

// Size returns the number of indexed lane segments.
func (ix *Index) Size() int {
	return ix.tree.Size()
}

// Samples returns the sampled center line of the lane edge e.
func (ix *Index) Samples(e graph.EdgeID) (concurrent.LaneSamples, bool) {
	s, ok := ix.samples[e]
	return s, ok
}

// Locate returns the closest coordinate of every lane passing within radius of (x, y),
// ordered by distance. The lateral offset of a coordinate points to the query point.
func (ix *Index) Locate(x, y, radius float64) ([]Location, error) {
	if !(radius > 0) {
		return nil, domain.WrapErrorf(nil, domain.ErrInvalidArgument, "radius must be positive")
	}

	bb, err := rtreego.NewRect(rtreego.Point{x - radius, y - radius}, []float64{2 * radius, 2 * radius})
	if err != nil {
		return nil, domain.WrapErrorf(err, domain.ErrInvalidArgument, "invalid search area")
	}

	xyz := r3.Vector{X: x, Y: y}
	best := make(map[graph.EdgeID]Location)
	for _, sp := range ix.tree.SearchIntersect(bb) {
		seg := sp.(*laneSegment)
		loc, ok := ix.project(seg, xyz)
		if !ok || loc.Distance > radius {
			continue
		}
		if cur, ok := best[seg.edge]; !ok || loc.Distance < cur.Distance {
			best[seg.edge] = loc
		}
	}

	out := make([]Location, 0, len(best))
	for _, l := range best {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Distance != out[j].Distance {
			return out[i].Distance < out[j].Distance
		}
		return out[i].Coordinate.Edge() < out[j].Coordinate.Edge()
	})
	return out, nil
}

// project finds the closest point of the segment's lane to xyz, starting at the chord
// projection and refining once on the exact lane geometry.
func (ix *Index) project(seg *laneSegment, xyz r3.Vector) (Location, bool) {
	e := ix.g.Edge(seg.edge)

	d := seg.p1.Sub(seg.p0)
	t := 0.0
	if n := d.Norm2(); n > 0 {
		t = math.Min(math.Max(xyz.Sub(seg.p0).Dot(d)/n, 0), 1)
	}
	s := seg.s0 + t*(seg.s1-seg.s0)

	p := e.Position(s, graph.Center, 0)
	s = math.Min(math.Max(s+curve.ToLocal(p, xyz).X, seg.s0), seg.s1)
	p = e.Position(s, graph.Center, 0)

	mc, err := mapcoord.New(ix.g, seg.edge, s, curve.ToLocal(p, xyz).Y)
	if err != nil {
		return Location{}, false
	}
	return Location{Coordinate: mc, Distance: p.Position.Sub(xyz).Norm()}, true
}

// Locate returns the closest coordinates of all lanes within radius of (x, y).
func (m *Map) Locate(x, y, radius float64) ([]Location, error) {
	return m.Index.Locate(x, y, radius)
}
