// Package lanepath provides paths through the lane graph: a chain of linked edges with a
// cursor, extended ahead of and behind the cursor along a track of roads.
package lanepath

import (
	"fmt"
	"math"
	"strings"

	"github.com/JensKlimke/SimMap-sub000/domain"
	"github.com/JensKlimke/SimMap-sub000/pkg/engine/mapcoord"
	"github.com/JensKlimke/SimMap-sub000/pkg/graph"
)

const epsRange = 1e-9

// StopReason tells why a path extension ended.
type StopReason int

const (
	// Satisfied means the requested length was reached.
	Satisfied StopReason = iota
	// TrackExhausted means successors exist but none continues the track.
	TrackExhausted
	// DeadEnd means the last edge has no successor in the extension direction.
	DeadEnd
)

func (r StopReason) String() string {
	switch r {
	case TrackExhausted:
		return "track exhausted"
	case DeadEnd:
		return "dead end"
	default:
		return "satisfied"
	}
}

// Path is a chain of edges ordered from back to head. The cursor is an index into the
// chain and an offset on that edge. All offsets are in the driving direction of the edge.
type Path struct {
	g        *graph.Graph
	segments []graph.EdgeID

	idx int
	s   float64
	d   float64

	backPos float64
	headPos float64

	headStop StopReason
	backStop StopReason
}

// position is a segment index and a distance measured from the cursor.
type position struct {
	idx int
	s   float64
}

// ObjectDistance is an object on the path and its signed distance to the cursor.
type ObjectDistance struct {
	Distance float64
	Edge     graph.EdgeID
	Object   graph.Object
}

// NeighborInformation describes a neighbored lane relative to the path.
type NeighborInformation struct {
	// Index is positive for lanes on the left, negative on the right.
	Index      int
	SameDir    bool
	Accessible bool
	Allowed    bool
	// Offset is the lateral distance between the cursors.
	Offset float64
}

type Neighbor struct {
	Info NeighborInformation
	Path *Path
}

// Create builds a path around start that reaches lenHead ahead of and lenBack behind the
// cursor as far as the track allows. The track is rotated in place so that the road of the
// start edge comes first.
func Create(g *graph.Graph, track Track, lenHead, lenBack float64, start mapcoord.MapCoordinate) (*Path, error) {
	if lenHead < 0 || lenBack < 0 {
		return nil, domain.WrapErrorf(nil, domain.ErrInvalidArgument, "path lengths must not be negative (head=%g, back=%g)", lenHead, lenBack)
	}
	if g == nil || start.OutOfRoad() {
		return nil, domain.WrapErrorf(nil, domain.ErrInvalidArgument, "start coordinate is out of road")
	}

	p := &Path{
		g:        g,
		segments: []graph.EdgeID{start.Edge()},
		s:        start.S(),
		d:        start.D(),
		backPos:  start.S(),
		headPos:  start.S(),
	}

	if err := p.UpdatePath(lenHead, lenBack, track); err != nil {
		return nil, err
	}
	return p, nil
}

// FromSegments restores a path from its segments, the cursor and the offsets of the back
// on the first and of the head on the last segment.
func FromSegments(g *graph.Graph, segments []graph.EdgeID, idx int, s, backPos, headPos float64) (*Path, error) {
	if g == nil || len(segments) == 0 {
		return nil, domain.WrapErrorf(nil, domain.ErrInvalidArgument, "path needs at least one segment")
	}
	for _, id := range segments {
		if g.Edge(id) == nil {
			return nil, domain.WrapErrorf(nil, domain.ErrNotFound, "edge %d does not exist", id)
		}
	}
	if idx < 0 || idx >= len(segments) {
		return nil, domain.WrapErrorf(nil, domain.ErrOutOfRange, "cursor index %d out of range", idx)
	}

	p := &Path{g: g, segments: append([]graph.EdgeID(nil), segments...), idx: idx}
	if !p.onSegment(idx, s) || !p.onSegment(0, backPos) || !p.onSegment(len(segments)-1, headPos) {
		return nil, domain.WrapErrorf(nil, domain.ErrOutOfRange, "offsets outside of the segments")
	}
	if (idx == 0 && s < backPos) || (idx == len(segments)-1 && s > headPos) {
		return nil, domain.WrapErrorf(nil, domain.ErrOutOfRange, "cursor outside of back and head")
	}

	p.s, p.backPos, p.headPos = s, backPos, headPos
	return p, nil
}

func (p *Path) onSegment(i int, s float64) bool {
	return s >= 0 && s <= p.length(i)
}

// Clone returns an independent copy of the path.
func (p *Path) Clone() *Path {
	c := *p
	c.segments = append([]graph.EdgeID(nil), p.segments...)
	return &c
}

// UpdatePath rebuilds the path around the cursor: all segments but the current one are
// dropped and the path is extended again along the track.
func (p *Path) UpdatePath(lenHead, lenBack float64, track Track) error {
	if lenHead < 0 || lenBack < 0 {
		return domain.WrapErrorf(nil, domain.ErrInvalidArgument, "path lengths must not be negative (head=%g, back=%g)", lenHead, lenBack)
	}

	cur := p.segments[p.idx]
	if i := track.index(p.g.Edge(cur).TrackElement()); i > 0 {
		track.rotate(i)
	}

	p.segments = append(p.segments[:0], cur)
	p.idx = 0

	ti := 0
	p.headStop = p.extend(lenHead, true, track, &ti)
	ti = 0
	p.backStop = p.extend(lenBack, false, track, &ti)
	return nil
}

// extend adds segments at the head (forward) or at the back until length is covered
// measured from the cursor. ti is the current index in the track.
func (p *Path) extend(length float64, forward bool, track Track, ti *int) StopReason {
	rest := length - p.s
	if forward {
		rest = length - (p.length(p.idx) - p.s)
	}

	reason := Satisfied
	for rest > 0 {
		var conns []graph.Connection
		if forward {
			conns = p.edge(len(p.segments) - 1).Nexts()
		} else {
			conns = p.edge(0).Prevs()
		}
		if len(conns) == 0 {
			reason = DeadEnd
			break
		}

		id, ok := p.follow(conns, track, ti, forward)
		if !ok {
			reason = TrackExhausted
			break
		}

		if forward {
			p.segments = append(p.segments, id)
		} else {
			p.segments = append([]graph.EdgeID{id}, p.segments...)
			p.idx++
		}
		rest -= p.g.Edge(id).Length()
	}

	if reason != Satisfied {
		rest = 0
	}
	if forward {
		p.headPos = p.length(len(p.segments)-1) + rest
	} else {
		p.backPos = -rest
	}
	return reason
}

// follow picks the first connection continuing the current track element or, failing
// that, the adjacent one. Moving on to the adjacent element advances ti.
func (p *Path) follow(conns []graph.Connection, track Track, ti *int, forward bool) (graph.EdgeID, bool) {
	n := len(track)
	if n == 0 {
		return graph.NoEdge, false
	}

	tin := (*ti + 1) % n
	if !forward {
		tin = (*ti - 1 + n) % n
	}
	cur, nxt := track[*ti], track[tin]

	for _, c := range conns {
		e := p.g.Edge(c.Edge)
		if e == nil {
			continue
		}
		road := e.TrackElement().Road
		if road == cur.Road && e.IsDirectionalCompatible(cur.Orientation) {
			return c.Edge, true
		}
		if road == nxt.Road && e.IsDirectionalCompatible(nxt.Orientation) {
			*ti = tin
			return c.Edge, true
		}
	}
	return graph.NoEdge, false
}

func (p *Path) edge(i int) *graph.Edge {
	return p.g.Edge(p.segments[i])
}

func (p *Path) length(i int) float64 {
	return p.edge(i).Length()
}

// body lists the segments from the cursor to the head with the distance from the cursor
// to the end of each segment. The list stops at stopAt.
func (p *Path) body(stopAt float64) []position {
	ret := make([]position, 0, len(p.segments)-p.idx)
	l := -p.s
	for i := p.idx; i < len(p.segments); i++ {
		l += p.length(i)
		ret = append(ret, position{idx: i, s: l})
		if l >= stopAt {
			ret[len(ret)-1].s -= l - stopAt
			return ret
		}
	}

	last := &ret[len(ret)-1]
	last.s -= p.length(last.idx) - p.headPos
	return ret
}

// tail lists the segments from the cursor to the back with the distance from the cursor
// to the beginning of each segment. The list stops at stopAt.
func (p *Path) tail(stopAt float64) []position {
	ret := make([]position, 0, p.idx+1)
	l := -(p.length(p.idx) - p.s)
	for i := p.idx; i >= 0; i-- {
		l += p.length(i)
		ret = append(ret, position{idx: i, s: l})
		if l >= stopAt {
			ret[len(ret)-1].s -= l - stopAt
			return ret
		}
	}

	ret[len(ret)-1].s -= p.backPos
	return ret
}

// index resolves a distance from the cursor to a segment index and an offset on it.
func (p *Path) index(s float64) (int, float64, error) {
	if math.IsNaN(s) || s > p.DistanceToHead()+epsRange || s < -p.DistanceToBack()-epsRange {
		return 0, 0, domain.WrapErrorf(nil, domain.ErrInvalidArgument,
			"distance %g outside of path [%g, %g]", s, -p.DistanceToBack(), p.DistanceToHead())
	}

	switch {
	case s == 0:
		return p.idx, p.s, nil
	case s > 0:
		r := p.body(s)
		n := len(r)
		if n > 1 {
			return r[n-1].idx, r[n-1].s - r[n-2].s, nil
		}
		return r[0].idx, r[0].s + p.s, nil
	default:
		r := p.tail(-s)
		n := len(r)
		if n > 1 {
			return r[n-1].idx, p.length(r[n-1].idx) + r[n-2].s - r[n-1].s, nil
		}
		return r[0].idx, p.s - r[0].s, nil
	}
}

// DistanceToHead is the length of the path ahead of the cursor.
func (p *Path) DistanceToHead() float64 {
	r := p.body(math.Inf(1))
	return r[len(r)-1].s
}

// DistanceToBack is the length of the path behind the cursor.
func (p *Path) DistanceToBack() float64 {
	r := p.tail(math.Inf(1))
	return r[len(r)-1].s
}

// Position moves the cursor by s along the path and sets its lateral offset to d.
func (p *Path) Position(s, d float64) error {
	i, local, err := p.index(s)
	if err != nil {
		return err
	}
	p.idx = i
	p.s = math.Min(math.Max(local, 0), p.length(i))
	p.d = d
	return nil
}

// PositionAt returns the coordinate at distance s from the cursor with lateral offset d.
func (p *Path) PositionAt(s, d float64) (mapcoord.MapCoordinate, error) {
	i, local, err := p.index(s)
	if err != nil {
		return mapcoord.MapCoordinate{}, err
	}
	return mapcoord.New(p.g, p.segments[i], local, d)
}

// Current returns the coordinate of the cursor.
func (p *Path) Current() mapcoord.MapCoordinate {
	c, _ := mapcoord.New(p.g, p.segments[p.idx], p.s, p.d)
	return c
}

func (p *Path) Head() mapcoord.MapCoordinate {
	c, _ := mapcoord.New(p.g, p.segments[len(p.segments)-1], p.headPos, 0)
	return c
}

func (p *Path) Back() mapcoord.MapCoordinate {
	c, _ := mapcoord.New(p.g, p.segments[0], p.backPos, 0)
	return c
}

// HeadStop tells why the last extension ahead of the cursor ended.
func (p *Path) HeadStop() StopReason {
	return p.headStop
}

func (p *Path) BackStop() StopReason {
	return p.backStop
}

func (p *Path) Graph() *graph.Graph {
	return p.g
}

// Segments returns the edges of the path from back to head.
func (p *Path) Segments() []graph.EdgeID {
	return p.segments
}

// CursorIndex is the index of the segment the cursor is located on.
func (p *Path) CursorIndex() int {
	return p.idx
}

// Objects returns all objects between back and head with their distance to the cursor.
// Objects at the very back and head are included.
func (p *Path) Objects() []ObjectDistance {
	var (
		out  []ObjectDistance
		ss   float64
		sPos float64
		last = len(p.segments) - 1
	)

	for i, id := range p.segments {
		e := p.g.Edge(id)
		s0, s1 := 0.0, e.Length()
		if i == 0 {
			s0 = p.backPos
		}
		if i == last {
			s1 = p.headPos
		}
		if i == p.idx {
			sPos = ss + p.s - s0
		}

		for _, o := range e.Objects() {
			if o.S >= s0 && o.S <= s1 {
				out = append(out, ObjectDistance{Distance: ss + o.S - s0, Edge: id, Object: o.Object})
			}
		}
		ss += s1 - s0
	}

	for i := range out {
		out[i].Distance -= sPos
	}
	return out
}

// Track returns the roads passed by the path, consecutive duplicates collapsed.
func (p *Path) Track() Track {
	var t Track
	for i, id := range p.segments {
		te := p.g.Edge(id).TrackElement()
		if i == 0 || te != t[len(t)-1] {
			t = append(t, te)
		}
	}
	return t
}

// HasRoad reports whether any segment belongs to the track element te.
func (p *Path) HasRoad(te graph.TrackElement) bool {
	for _, id := range p.segments {
		if p.g.Edge(id).TrackElement() == te {
			return true
		}
	}
	return false
}

// Distance returns every signed distance from the cursor at which the path passes mc.
func (p *Path) Distance(mc mapcoord.MapCoordinate) []float64 {
	var out []float64
	if mc.OutOfRoad() {
		return out
	}

	s0 := -p.s
	for _, e := range p.body(math.Inf(1)) {
		if p.segments[e.idx] == mc.Edge() {
			if ds := mc.S() + s0; ds >= 0 && ds <= e.s+epsRange {
				out = append(out, math.Min(ds, e.s))
			}
		}
		s0 = e.s
	}

	l := mc.EdgeRef().Length()
	s0 = p.s - p.length(p.idx)
	for i, e := range p.tail(math.Inf(1)) {
		if p.segments[e.idx] == mc.Edge() {
			ds := l + s0 - mc.S()
			// the cursor itself is reported by the body
			if ds >= 0 && ds <= e.s+epsRange && (i > 0 || ds > 0) {
				out = append(out, -math.Min(ds, e.s))
			}
		}
		s0 = e.s
	}
	return out
}

// CreateRecursively returns all paths starting at the beginning of edge that follow every
// successor until length is covered. Each path covers whole edges.
func CreateRecursively(g *graph.Graph, edge graph.EdgeID, length float64) ([]*Path, error) {
	e := g.Edge(edge)
	if e == nil {
		return nil, domain.WrapErrorf(nil, domain.ErrNotFound, "edge %d does not exist", edge)
	}

	start := &Path{g: g, segments: []graph.EdgeID{edge}, headPos: e.Length()}
	var out []*Path
	extendRecursively(start, length, &out)
	return out, nil
}

func extendRecursively(p *Path, length float64, out *[]*Path) {
	nexts := p.edge(len(p.segments) - 1).Nexts()
	if length <= 0 || len(nexts) == 0 {
		*out = append(*out, p)
		return
	}

	extended := false
	for _, c := range nexts {
		e := p.g.Edge(c.Edge)
		if e == nil || (e.Length() <= 0 && p.contains(c.Edge)) {
			continue
		}

		np := p.Clone()
		np.segments = append(np.segments, c.Edge)
		np.headPos = e.Length()
		extended = true
		extendRecursively(np, length-e.Length(), out)
	}

	if !extended {
		*out = append(*out, p)
	}
}

func (p *Path) contains(id graph.EdgeID) bool {
	for _, s := range p.segments {
		if s == id {
			return true
		}
	}
	return false
}

func (p *Path) String() string {
	names := make([]string, len(p.segments))
	for i, id := range p.segments {
		names[i] = p.g.Edge(id).Name()
		if i == p.idx {
			names[i] = fmt.Sprintf("[%s@%.3f]", names[i], p.s)
		}
	}
	return fmt.Sprintf("%s (back=%.3f, head=%.3f)", strings.Join(names, " -> "), p.backPos, p.headPos)
}
