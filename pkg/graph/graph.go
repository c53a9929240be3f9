package graph

import (
	"math"
	"sort"

	"github.com/JensKlimke/SimMap-sub000/domain"
)

// EpsOverlap is the minimal longitudinal overlap for two edges to become neighbors.
const EpsOverlap = 1e-9

// Graph owns all edges of a map. It is built once and read concurrently afterwards.
type Graph struct {
	name   string
	edges  []*Edge
	byName map[string]EdgeID
}

func NewGraph(name string) *Graph {
	return &Graph{
		name:   name,
		byName: make(map[string]EdgeID),
	}
}

func (g *Graph) Name() string {
	return g.name
}

// AddEdge creates a new edge. Names are unique within a graph.
func (g *Graph) AddEdge(name string, o Orientation, geom Geometry, track TrackElement) (EdgeID, error) {
	if _, ok := g.byName[name]; ok {
		return NoEdge, domain.WrapErrorf(nil, domain.ErrConflict, "edge %q already exists", name)
	}
	if geom == nil {
		return NoEdge, domain.WrapErrorf(nil, domain.ErrInvalidArgument, "edge %q has no geometry", name)
	}

	id := EdgeID(len(g.edges))
	g.edges = append(g.edges, newEdge(id, name, o, geom, track))
	g.byName[name] = id
	return id, nil
}

// Edge returns the edge for id or nil if the id is unknown.
func (g *Graph) Edge(id EdgeID) *Edge {
	if id < 0 || int(id) >= len(g.edges) {
		return nil
	}
	return g.edges[id]
}

func (g *Graph) Lookup(name string) (EdgeID, bool) {
	id, ok := g.byName[name]
	return id, ok
}

func (g *Graph) Edges() []*Edge {
	return g.edges
}

func (g *Graph) Len() int {
	return len(g.edges)
}

func (g *Graph) edge(id EdgeID) (*Edge, error) {
	e := g.Edge(id)
	if e == nil {
		return nil, domain.WrapErrorf(nil, domain.ErrNotFound, "edge %d does not exist", id)
	}
	return e, nil
}

// AddObject places obj on the edge at offset s. Objects stay sorted by offset.
func (g *Graph) AddObject(id EdgeID, s float64, obj Object) error {
	e, err := g.edge(id)
	if err != nil {
		return err
	}
	if s < 0 || s > e.Length() {
		return domain.WrapErrorf(nil, domain.ErrOutOfRange, "object offset %g outside of edge %s", s, e.name)
	}

	i := sort.Search(len(e.objects), func(i int) bool { return e.objects[i].S > s })
	e.objects = append(e.objects, ObjectEntry{})
	copy(e.objects[i+1:], e.objects[i:])
	e.objects[i] = ObjectEntry{S: s, Object: obj}
	return nil
}

// Link connects b as the successor of a in the driving direction of a. With before set,
// b is linked as the predecessor.
func (g *Graph) Link(a, b EdgeID, before bool) error {
	ea, err := g.edge(a)
	if err != nil {
		return err
	}

	if ea.IsForward() != before {
		return g.Next(a, b, Start)
	}
	return g.Prev(a, b, End)
}

// Next sets b as successor of a, touching a with its contact point cp. The reverse link
// is added on b.
func (g *Graph) Next(a, b EdgeID, cp ContactPoint) error {
	ea, eb, err := g.pair(a, b)
	if err != nil {
		return err
	}

	ea.next(b, cp)
	back := eb.hasNext
	if cp == Start {
		back = eb.hasPrev
		eb.prev(a, End)
	} else {
		eb.next(a, End)
	}

	if !ea.hasNext(b, cp) || !back(a, End) {
		return domain.WrapErrorf(nil, domain.ErrRuntime, "link %s -> %s is inconsistent", ea.name, eb.name)
	}
	return nil
}

// Prev sets b as predecessor of a, touching a with its contact point cp. The reverse link
// is added on b.
func (g *Graph) Prev(a, b EdgeID, cp ContactPoint) error {
	ea, eb, err := g.pair(a, b)
	if err != nil {
		return err
	}

	ea.prev(b, cp)
	back := eb.hasNext
	if cp == Start {
		back = eb.hasPrev
		eb.prev(a, Start)
	} else {
		eb.next(a, Start)
	}

	if !ea.hasPrev(b, cp) || !back(a, Start) {
		return domain.WrapErrorf(nil, domain.ErrRuntime, "link %s <- %s is inconsistent", ea.name, eb.name)
	}
	return nil
}

func (e *Edge) next(id EdgeID, cp ContactPoint) {
	if !e.hasNext(id, cp) {
		e.nexts = append(e.nexts, Connection{ContactPoint: cp, Edge: id})
	}
}

func (e *Edge) prev(id EdgeID, cp ContactPoint) {
	if !e.hasPrev(id, cp) {
		e.prevs = append(e.prevs, Connection{ContactPoint: cp, Edge: id})
	}
}

func (g *Graph) pair(a, b EdgeID) (*Edge, *Edge, error) {
	ea, err := g.edge(a)
	if err != nil {
		return nil, nil, err
	}
	eb, err := g.edge(b)
	if err != nil {
		return nil, nil, err
	}
	return ea, eb, nil
}

// AddNeighbor adds b as neighbor of a, beginning at offset s of a in reference direction.
// For a forward edge the neighbor is placed on the left side, for a backward edge on the
// right side with the offset converted to the edge's own direction. The mirrored relation
// is stored on b.
func (g *Graph) AddNeighbor(a EdgeID, s float64, b EdgeID) error {
	ea, eb, err := g.pair(a, b)
	if err != nil {
		return err
	}
	if a == b {
		return domain.WrapErrorf(nil, domain.ErrInvalidArgument, "edge %s cannot be its own neighbor", ea.name)
	}

	side, pos := Left, s
	if !ea.IsForward() {
		side, pos = Right, ea.Length()-s-eb.Length()
	}
	g.addSide(ea, side, pos, eb)

	// the neighbor sees this edge on the opposite side when both run in the same direction
	mSide, mPos := side.Switch(), -pos
	if ea.IsForward() != eb.IsForward() {
		mSide, mPos = side, eb.Length()+pos-ea.Length()
	}
	g.addSide(eb, mSide, mPos, ea)

	if !ea.side(side).ExistsFunc(pos, isEdge(b)) || !eb.side(mSide).ExistsFunc(mPos, isEdge(a)) {
		return domain.WrapErrorf(nil, domain.ErrRuntime, "neighborhood %s / %s is inconsistent", ea.name, eb.name)
	}
	return nil
}

func (g *Graph) addSide(e *Edge, side Side, s float64, n *Edge) {
	q := e.side(side)
	if q.Empty() {
		q.SetLength(0)
	}

	if l := s + n.Length() - q.Start(); q.Empty() || l > q.Length() {
		q.SetLength(l)
	}

	if !q.ExistsFunc(s, isEdge(n.id)) {
		_, _ = q.Push(s, n.id)
	}
}

func isEdge(id EdgeID) func(EdgeID) bool {
	return func(e EdgeID) bool { return e == id }
}

// Neighbor returns the n-th neighbor on the given side of the edge at offset s together
// with the corresponding offset on the neighbor. Sides and offsets are re-derived on
// every hop across an edge with opposite orientation. NoEdge is returned when a hop
// leaves the road.
func (g *Graph) Neighbor(id EdgeID, s float64, side Side, n int) (EdgeID, float64) {
	e := g.Edge(id)
	if e == nil {
		return NoEdge, 0
	}

	for ; n > 0; n-- {
		q := e.side(side)
		if !q.Exists(s) {
			return NoEdge, 0
		}

		nid, local, err := q.AtPos(math.Min(math.Max(s, q.Start()), q.End()))
		if err != nil {
			return NoEdge, 0
		}

		ne := g.edges[nid]
		if ne.IsForward() != e.IsForward() {
			local = ne.Length() - local
			side = side.Switch()
		}
		e, s = ne, local
	}
	return e.id, s
}

// Group is a lane of consecutive edges beginning at a longitudinal offset of the road.
type Group struct {
	Start float64
	Edges []EdgeID
}

// AutoConnect chains the edges of every group and makes every edge a neighbor of each
// edge of the next group it overlaps with. Groups are ordered from right to left.
func (g *Graph) AutoConnect(groups []Group) error {
	for i, grp := range groups {
		s0 := grp.Start
		prev := NoEdge

		for _, id := range grp.Edges {
			e, err := g.edge(id)
			if err != nil {
				return err
			}

			if prev != NoEdge {
				if err := g.Link(prev, id, false); err != nil {
					return err
				}
			}

			if i+1 < len(groups) {
				s02 := groups[i+1].Start
				for _, id2 := range groups[i+1].Edges {
					e2, err := g.edge(id2)
					if err != nil {
						return err
					}

					overlap := math.Min(s0+e.Length(), s02+e2.Length()) - math.Max(s0, s02)
					if overlap > EpsOverlap {
						if err := g.AddNeighbor(id, s02-s0, id2); err != nil {
							return err
						}
					}
					s02 += e2.Length()
				}
			}

			s0 += e.Length()
			prev = id
		}
	}
	return nil
}
