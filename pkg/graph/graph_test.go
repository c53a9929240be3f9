package graph_test

import (
	"math"
	"testing"

	"github.com/JensKlimke/SimMap-sub000/domain"
	"github.com/JensKlimke/SimMap-sub000/pkg/graph"
	"github.com/JensKlimke/SimMap-sub000/pkg/sequence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// addEdge creates a straight edge. A negative length creates a backward edge.
func addEdge(t *testing.T, g *graph.Graph, name string, length float64) graph.EdgeID {
	t.Helper()
	o := graph.Forwards
	if length < 0 {
		o = graph.Backwards
	}

	id, err := g.AddEdge(name, o, graph.NewLineGeometry(0, 0, 0, math.Abs(length), 3.5), graph.TrackElement{})
	require.NoError(t, err)
	return id
}

type neighborEntry struct {
	pos  float64
	edge graph.EdgeID
}

func neighbors(q *sequence.Sequence[graph.EdgeID]) []neighborEntry {
	var res []neighborEntry
	for _, e := range q.Entries() {
		res = append(res, neighborEntry{e.Position, e.Element})
	}
	return res
}

func TestOrientedLinks(t *testing.T) {
	//            +--->2-----+
	//            |          |
	//          A |          | B
	//            |          |
	//     ------>1------>3<-+
	//       D        C
	g := graph.NewGraph("oriented")
	a := addEdge(t, g, "A", -1)
	b := addEdge(t, g, "B", -1)
	c := addEdge(t, g, "C", -1)
	d := addEdge(t, g, "D", -1)

	require.NoError(t, g.Link(a, b, true))
	require.NoError(t, g.Next(a, b, graph.Start))
	require.NoError(t, g.Next(b, c, graph.End))
	require.NoError(t, g.Prev(c, a, graph.Start))
	require.NoError(t, g.Link(a, d, false))
	require.NoError(t, g.Link(c, d, false))

	conn := func(cp graph.ContactPoint, id graph.EdgeID) graph.Connection {
		return graph.Connection{ContactPoint: cp, Edge: id}
	}

	assert.ElementsMatch(t, []graph.Connection{conn(graph.Start, c), conn(graph.End, d)}, g.Edge(a).Prevs())
	assert.Equal(t, []graph.Connection{conn(graph.End, a)}, g.Edge(b).Prevs())
	assert.ElementsMatch(t, []graph.Connection{conn(graph.Start, a), conn(graph.End, d)}, g.Edge(c).Prevs())
	assert.Empty(t, g.Edge(d).Prevs())

	assert.Equal(t, []graph.Connection{conn(graph.Start, b)}, g.Edge(a).Nexts())
	assert.Equal(t, []graph.Connection{conn(graph.End, c)}, g.Edge(b).Nexts())
	assert.Equal(t, []graph.Connection{conn(graph.End, b)}, g.Edge(c).Nexts())
	assert.ElementsMatch(t, []graph.Connection{conn(graph.Start, a), conn(graph.Start, c)}, g.Edge(d).Nexts())

	t.Run("unknown edge", func(t *testing.T) {
		err := g.Next(a, graph.EdgeID(42), graph.Start)
		assert.True(t, domain.Is(err, domain.ErrNotFound))
	})
}

func TestVertex(t *testing.T) {
	g := graph.NewGraph("vertices")
	v1, v2, v3, v4 := graph.NewVertex(), graph.NewVertex(), graph.NewVertex(), graph.NewVertex()

	eA := addEdge(t, g, "A", 1)
	eB := addEdge(t, g, "B", 1)
	eC := addEdge(t, g, "C", 1)
	eD := addEdge(t, g, "D", 1)

	require.NoError(t, v4.ConnectTo(g, v1, eA))
	require.NoError(t, v1.ConnectTo(g, v2, eB))
	require.NoError(t, v2.ConnectTo(g, v3, eC))
	require.NoError(t, v3.ConnectTo(g, v1, eD))

	for _, id := range []graph.EdgeID{eA, eB, eC, eD} {
		assert.Len(t, g.Edge(id).Nexts(), 1)
	}

	assert.Len(t, g.Edge(eA).Prevs(), 0)
	assert.Len(t, g.Edge(eB).Prevs(), 2)
	assert.Len(t, g.Edge(eC).Prevs(), 1)
	assert.Len(t, g.Edge(eD).Prevs(), 1)

	for _, v := range []*graph.Vertex{v1, v2, v3, v4} {
		assert.Len(t, v.OutLinks(), 1)
	}

	assert.Len(t, v1.InLinks(), 2)
	assert.Len(t, v2.InLinks(), 1)
	assert.Len(t, v3.InLinks(), 1)
	assert.Len(t, v4.InLinks(), 0)
}

// l3 +>-----1------------+
// l2 +<-----1------------+
// l1 +<1--+-2-+--3---+4--+
// m       +>0-------+
// r1 +>1-+--2-+--3--+-4--+
// r2 +>-----1------------+
// r3 +<-----1------------+
//
// <--|----|----|----|----|-->
//
//	0        10
type lanes struct {
	g                      *graph.Graph
	n0                     graph.EdgeID
	nl11, nl12, nl13, nl14 graph.EdgeID
	nr11, nr12, nr13, nr14 graph.EdgeID
	nl21, nl31, nr21, nr31 graph.EdgeID
}

func newLanes(t *testing.T) *lanes {
	g := graph.NewGraph("lanes")
	l := &lanes{g: g}

	l.n0 = addEdge(t, g, "n0", 10)
	l.nl11 = addEdge(t, g, "nl11", -5)
	l.nl12 = addEdge(t, g, "nl12", -4)
	l.nl13 = addEdge(t, g, "nl13", -7)
	l.nl14 = addEdge(t, g, "nl14", -4)
	l.nr11 = addEdge(t, g, "nr11", 4)
	l.nr12 = addEdge(t, g, "nr12", 5)
	l.nr13 = addEdge(t, g, "nr13", 6)
	l.nr14 = addEdge(t, g, "nr14", 5)
	l.nl21 = addEdge(t, g, "nl21", -20)
	l.nl31 = addEdge(t, g, "nl31", 20)
	l.nr21 = addEdge(t, g, "nr21", 20)
	l.nr31 = addEdge(t, g, "nr31", -20)

	require.NoError(t, g.AutoConnect([]graph.Group{
		{Start: -5, Edges: []graph.EdgeID{l.nr31}},
		{Start: -5, Edges: []graph.EdgeID{l.nr21}},
		{Start: -5, Edges: []graph.EdgeID{l.nr11, l.nr12, l.nr13, l.nr14}},
		{Start: 0, Edges: []graph.EdgeID{l.n0}},
		{Start: -5, Edges: []graph.EdgeID{l.nl11, l.nl12, l.nl13, l.nl14}},
		{Start: -5, Edges: []graph.EdgeID{l.nl21}},
		{Start: -5, Edges: []graph.EdgeID{l.nl31}},
	}))
	return l
}

func TestAutoConnect(t *testing.T) {
	l := newLanes(t)
	g := l.g

	t.Run("outer right lanes", func(t *testing.T) {
		assert.Equal(t, []neighborEntry{{0, l.nr11}, {4, l.nr12}, {9, l.nr13}, {15, l.nr14}}, neighbors(g.Edge(l.nr21).Left()))
		assert.Equal(t, []neighborEntry{{0, l.nr31}}, neighbors(g.Edge(l.nr21).Right()))
		assert.Equal(t, []neighborEntry{{0, l.nr21}}, neighbors(g.Edge(l.nr31).Right()))
		assert.True(t, g.Edge(l.nr31).Left().Empty())
	})

	t.Run("inner right lanes", func(t *testing.T) {
		assert.True(t, g.Edge(l.nr11).Left().Empty())
		assert.Equal(t, []neighborEntry{{0, l.nr21}}, neighbors(g.Edge(l.nr11).Right()))
		assert.Equal(t, []neighborEntry{{1, l.n0}}, neighbors(g.Edge(l.nr12).Left()))
		assert.Equal(t, []neighborEntry{{-4, l.nr21}}, neighbors(g.Edge(l.nr12).Right()))
		assert.True(t, g.Edge(l.nr14).Left().Empty())
		assert.Equal(t, []neighborEntry{{-15, l.nr21}}, neighbors(g.Edge(l.nr14).Right()))
	})

	t.Run("middle lane", func(t *testing.T) {
		assert.Equal(t, []neighborEntry{{-1, l.nr12}, {4, l.nr13}}, neighbors(g.Edge(l.n0).Right()))
		assert.Equal(t, []neighborEntry{{0, l.nl12}, {4, l.nl13}}, neighbors(g.Edge(l.n0).Left()))
		assert.InDelta(t, 11.0, g.Edge(l.n0).Left().Length(), 1e-12)
		assert.InDelta(t, 10.0, g.Edge(l.n0).Right().End(), 1e-12)
	})

	t.Run("left lanes", func(t *testing.T) {
		assert.Equal(t, []neighborEntry{{1, l.n0}}, neighbors(g.Edge(l.nl13).Left()))
		assert.Equal(t, []neighborEntry{{-4, l.nl21}}, neighbors(g.Edge(l.nl13).Right()))
		assert.True(t, g.Edge(l.nl14).Left().Empty())
		assert.Equal(t, []neighborEntry{{0, l.nl14}, {4, l.nl13}, {11, l.nl12}, {15, l.nl11}}, neighbors(g.Edge(l.nl21).Left()))
		assert.Equal(t, []neighborEntry{{0, l.nl31}}, neighbors(g.Edge(l.nl21).Right()))
		assert.Equal(t, []neighborEntry{{0, l.nl21}}, neighbors(g.Edge(l.nl31).Right()))
		assert.True(t, g.Edge(l.nl31).Left().Empty())
	})

	t.Run("lanes are chained", func(t *testing.T) {
		assert.Equal(t, []graph.Connection{{ContactPoint: graph.Start, Edge: l.nr12}}, g.Edge(l.nr11).Nexts())
		assert.Equal(t, []graph.Connection{{ContactPoint: graph.End, Edge: l.nr11}}, g.Edge(l.nr12).Prevs())
		assert.Equal(t, []graph.Connection{{ContactPoint: graph.End, Edge: l.nl12}}, g.Edge(l.nl11).Prevs())
		assert.Equal(t, []graph.Connection{{ContactPoint: graph.Start, Edge: l.nl11}}, g.Edge(l.nl12).Nexts())
	})

	t.Run("relation is symmetric", func(t *testing.T) {
		for _, e := range g.Edges() {
			for _, side := range []*sequence.Sequence[graph.EdgeID]{e.Left(), e.Right()} {
				for _, n := range side.Elements() {
					other := g.Edge(n)
					found := false
					for _, back := range append(other.Left().Elements(), other.Right().Elements()...) {
						found = found || back == e.ID()
					}
					assert.True(t, found, "%s -> %s", e.Name(), other.Name())
				}
			}
		}
	})
}

func TestNeighbor(t *testing.T) {
	l := newLanes(t)
	g := l.g

	tests := []struct {
		name  string
		side  graph.Side
		n     int
		s     float64
		edge  graph.EdgeID
		local float64
	}{
		{"self", graph.Left, 0, 5, l.n0, 5},
		{"first left", graph.Left, 1, 5, l.nl13, 6},
		{"second left", graph.Left, 2, 5, l.nl21, 10},
		{"third left", graph.Left, 3, 5, l.nl31, 10},
		{"beyond the road", graph.Left, 4, 5, graph.NoEdge, 0},
		{"first right", graph.Right, 1, 5, l.nr13, 1},
		{"second right", graph.Right, 2, 5, l.nr21, 10},
		{"third right", graph.Right, 3, 5, l.nr31, 10},
		{"uncovered offset", graph.Left, 1, 15, graph.NoEdge, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, s := g.Neighbor(l.n0, tt.s, tt.side, tt.n)
			assert.Equal(t, tt.edge, id)
			assert.InDelta(t, tt.local, s, 1e-12)
		})
	}
}

func TestAddNeighbor(t *testing.T) {
	g := graph.NewGraph("pair")
	a := addEdge(t, g, "a", 10)
	b := addEdge(t, g, "b", -10)

	t.Run("self link", func(t *testing.T) {
		err := g.AddNeighbor(a, 0, a)
		assert.True(t, domain.Is(err, domain.ErrInvalidArgument))
	})

	t.Run("opposite lanes", func(t *testing.T) {
		require.NoError(t, g.AddNeighbor(a, 0, b))
		require.NoError(t, g.AddNeighbor(a, 0, b))

		assert.Equal(t, []neighborEntry{{0, b}}, neighbors(g.Edge(a).Left()))
		assert.Equal(t, []neighborEntry{{0, a}}, neighbors(g.Edge(b).Left()))

		id, s := g.Neighbor(a, 2, graph.Left, 1)
		assert.Equal(t, b, id)
		assert.InDelta(t, 8.0, s, 1e-12)

		id, s = g.Neighbor(b, 8, graph.Left, 1)
		assert.Equal(t, a, id)
		assert.InDelta(t, 2.0, s, 1e-12)
	})
}

func TestEdge(t *testing.T) {
	g := graph.NewGraph("edges")
	id, err := g.AddEdge("lane", graph.Backwards, graph.NewLineGeometry(1, 2, 0.5*math.Pi, 30, 4), graph.TrackElement{Orientation: graph.Backwards, Road: "7"})
	require.NoError(t, err)

	e := g.Edge(id)
	assert.Equal(t, "lane", e.Name())
	assert.Equal(t, 30.0, e.Length())
	assert.Equal(t, 4.0, e.Width(3))
	assert.False(t, e.IsForward())
	assert.True(t, e.IsDirectionalCompatible(graph.Backwards))
	assert.False(t, e.IsDirectionalCompatible(graph.Forwards))
	assert.Equal(t, "7", e.TrackElement().Road)

	found, ok := g.Lookup("lane")
	assert.True(t, ok)
	assert.Equal(t, id, found)
	assert.Nil(t, g.Edge(graph.NoEdge))

	t.Run("position", func(t *testing.T) {
		p := e.Position(10, graph.Center, 1)
		assert.InDelta(t, 0.0, p.Position.X, 1e-12)
		assert.InDelta(t, 12.0, p.Position.Y, 1e-12)

		p = e.Position(10, graph.Inner, 0)
		assert.InDelta(t, -1.0, p.Position.X, 1e-12)
	})

	t.Run("duplicate name", func(t *testing.T) {
		_, err := g.AddEdge("lane", graph.Forwards, graph.NewLineGeometry(0, 0, 0, 1, 1), graph.TrackElement{})
		assert.True(t, domain.Is(err, domain.ErrConflict))
	})

	t.Run("objects are ordered", func(t *testing.T) {
		require.NoError(t, g.AddObject(id, 20, graph.Object{ID: "b"}))
		require.NoError(t, g.AddObject(id, 5, graph.Object{ID: "a"}))
		require.NoError(t, g.AddObject(id, 20, graph.Object{ID: "c"}))

		var ids []string
		for _, o := range e.Objects() {
			ids = append(ids, o.Object.ID)
		}
		assert.Equal(t, []string{"a", "b", "c"}, ids)

		err := g.AddObject(id, 31, graph.Object{ID: "d"})
		assert.True(t, domain.Is(err, domain.ErrOutOfRange))
	})

	t.Run("undirected edge", func(t *testing.T) {
		u, err := g.AddEdge("center", graph.None, graph.NewLineGeometry(0, 0, 0, 1, 0), graph.TrackElement{})
		require.NoError(t, err)
		assert.True(t, g.Edge(u).IsDirectionalCompatible(graph.Backwards))
		assert.True(t, g.Edge(u).IsForward())
	})
}
