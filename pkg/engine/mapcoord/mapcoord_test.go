package mapcoord_test

import (
	"math"
	"testing"

	"github.com/JensKlimke/SimMap-sub000/domain"
	"github.com/JensKlimke/SimMap-sub000/pkg/engine/mapcoord"
	"github.com/JensKlimke/SimMap-sub000/pkg/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func road(t *testing.T) (*graph.Graph, graph.EdgeID, graph.EdgeID, graph.EdgeID) {
	g := graph.NewGraph("road")
	r, err := g.AddEdge("r", graph.Forwards, graph.NewLineGeometry(0, 0, 0, 20, 3.5), graph.TrackElement{})
	require.NoError(t, err)
	m, err := g.AddEdge("m", graph.Forwards, graph.NewLineGeometry(0, 3.5, 0, 20, 3.0), graph.TrackElement{})
	require.NoError(t, err)
	l, err := g.AddEdge("l", graph.Backwards, graph.NewLineGeometry(20, 6.75, math.Pi, 20, 3.5), graph.TrackElement{})
	require.NoError(t, err)

	require.NoError(t, g.AddNeighbor(r, 0, m))
	require.NoError(t, g.AddNeighbor(m, 0, l))
	return g, r, m, l
}

func TestMapCoordinate(t *testing.T) {
	g, r, m, l := road(t)

	t.Run("range", func(t *testing.T) {
		_, err := mapcoord.New(g, r, -0.1, 0)
		assert.True(t, domain.Is(err, domain.ErrInvalidArgument))
		_, err = mapcoord.New(g, r, 20.1, 0)
		assert.True(t, domain.Is(err, domain.ErrInvalidArgument))
		_, err = mapcoord.New(g, 7, 0, 0)
		assert.True(t, domain.Is(err, domain.ErrNotFound))

		mc, err := mapcoord.New(g, r, 20+1e-12, 0)
		require.NoError(t, err)
		assert.Equal(t, 20.0, mc.S())
	})

	t.Run("shift", func(t *testing.T) {
		mc, err := mapcoord.New(g, r, 5, 1)
		require.NoError(t, err)
		require.NoError(t, mc.Shift(10))
		assert.InDelta(t, 15.0, mc.S(), 1e-12)
		assert.Error(t, mc.Shift(10))
		assert.InDelta(t, 15.0, mc.S(), 1e-12)

		mc.SetD(-1)
		p := mc.AbsolutePosition()
		assert.InDelta(t, 15.0, p.Position.X, 1e-9)
		assert.InDelta(t, -1.0, p.Position.Y, 1e-9)
		assert.Equal(t, 3.5, mc.Width())
	})

	t.Run("neighbors", func(t *testing.T) {
		mc, err := mapcoord.New(g, r, 5, 1)
		require.NoError(t, err)

		left := mc.Left(1)
		assert.Equal(t, m, left.Edge())
		assert.InDelta(t, 5.0, left.S(), 1e-12)
		assert.Equal(t, 0.0, left.D())
		assert.Equal(t, 3.0, left.Width())

		far := mc.Left(2)
		assert.Equal(t, l, far.Edge())
		assert.InDelta(t, 15.0, far.S(), 1e-12)
		assert.InDelta(t, 5.0, far.AbsolutePosition().Position.X, 1e-9)

		assert.True(t, mc.Left(3).OutOfRoad())
		assert.True(t, mc.Right(1).OutOfRoad())
		assert.Equal(t, graph.NoEdge, mc.Right(1).Edge())
		assert.Equal(t, r, far.Left(2).Edge())
	})

	t.Run("out of road", func(t *testing.T) {
		mc := mapcoord.OutOfRoad()
		assert.True(t, mc.OutOfRoad())
		assert.Nil(t, mc.EdgeRef())
		assert.True(t, mc.Left(1).OutOfRoad())
		assert.Error(t, mc.SetS(1))
		assert.Equal(t, "out of road", mc.String())
	})
}
