package simmap_test

import (
	"errors"
	"math"
	"testing"

	"github.com/JensKlimke/SimMap-sub000/domain"
	"github.com/JensKlimke/SimMap-sub000/pkg/roadmap"
	"github.com/JensKlimke/SimMap-sub000/pkg/simmap"
	"github.com/golang/geo/r3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const twoRoads = `
name: two-roads
roads:
  - id: "1"
    start: {x: 0, y: 0, heading: 0}
    geometry:
      - {type: line, length: 100}
    successor: {road: "2", contactPoint: start}
    sections:
      - s: 0
        lanes:
          - {id: 1, width: [{s: 0, a: 3.0}], successors: [1]}
          - {id: -1, width: [{s: 0, a: 3.5}], successors: [-1]}
          - {id: -2, width: [{s: 0, a: 3.5}], successors: [-2]}
    objects:
      - {s: 30, id: sig1, label: "274-50", orientation: "+"}
      - {s: 60, id: sig2, label: "206"}
  - id: "2"
    start: {x: 100, y: 0, heading: 0}
    geometry:
      - {type: line, length: 100}
    predecessor: {road: "1", contactPoint: end}
    sections:
      - s: 0
        lanes:
          - {id: 1, width: [{s: 0, a: 3.0}], predecessors: [1]}
          - {id: -1, width: [{s: 0, a: 3.5}], predecessors: [-1]}
          - {id: -2, width: [{s: 0, a: 3.5}], predecessors: [-2]}
    objects:
      - {s: 50, id: sig3, label: "282", orientation: "+"}
`

func definition(t *testing.T) *roadmap.Definition {
	t.Helper()
	def, err := roadmap.Parse([]byte(twoRoads))
	require.NoError(t, err)
	return def
}

func TestMaps(t *testing.T) {
	env := simmap.New(simmap.WithBuildOptions(roadmap.WithWorkers(1)))

	h1, err := env.LoadMap(definition(t))
	require.NoError(t, err)

	maps := env.Maps()
	require.Len(t, maps, 1)
	assert.Equal(t, simmap.MapInfo{Handle: h1, Name: "two-roads", Roads: 2, Edges: 6}, maps[0])

	require.NoError(t, env.UnloadMap(h1))
	assert.Empty(t, env.Maps())

	t.Run("stale handle", func(t *testing.T) {
		h2, err := env.LoadMap(definition(t))
		require.NoError(t, err)
		assert.NotEqual(t, h1, h2)

		_, err = env.Map(h1)
		assert.True(t, domain.Is(err, simmap.ErrUnknownMap))
		_, err = env.Map(h2)
		assert.NoError(t, err)

		err = env.UnloadMap(h1)
		assert.Equal(t, 33, simmap.Code(err))
	})

	t.Run("invalid map", func(t *testing.T) {
		def := definition(t)
		def.Roads[0].Geometry = nil
		_, err := env.LoadMap(def)
		assert.Equal(t, 25, simmap.Code(err))
	})

	t.Run("clear", func(t *testing.T) {
		env.Clear()
		assert.Empty(t, env.Maps())
		assert.Empty(t, env.Agents())
	})
}

func TestAgent(t *testing.T) {
	env := simmap.New(simmap.WithBuildOptions(roadmap.WithWorkers(1)))
	mh, err := env.LoadMap(definition(t))
	require.NoError(t, err)

	ego, err := env.RegisterAgent("ego", mh)
	require.NoError(t, err)

	_, err = env.RegisterAgent("ego", mh)
	assert.Equal(t, 44, simmap.Code(err))
	_, err = env.RegisterAgent("other", mh+1)
	assert.Equal(t, 43, simmap.Code(err))

	anon, err := env.RegisterAgent("", mh)
	require.NoError(t, err)
	require.NoError(t, env.UnregisterAgent(anon))
	assert.Equal(t, 52, simmap.Code(env.UnregisterAgent(anon)))

	h, err := env.Agent("ego")
	require.NoError(t, err)
	assert.Equal(t, ego, h)

	t.Run("track", func(t *testing.T) {
		_, err := env.Position(ego)
		assert.Equal(t, 75, simmap.Code(err))

		assert.Equal(t, 65, simmap.Code(env.SetTrack(ego, []string{"3"})))
		assert.Equal(t, 65, simmap.Code(env.SetTrack(ego, []string{"+"})))
		require.NoError(t, env.SetTrack(ego, []string{"1", "+2"}))

		track, err := env.Track(ego)
		require.NoError(t, err)
		assert.Equal(t, []string{"+1", "+2"}, track)

		_, err = env.Position(ego)
		assert.Equal(t, 78, simmap.Code(err))
		_, err = env.MapPosition(ego)
		assert.Equal(t, 98, simmap.Code(err))
	})

	t.Run("set map position", func(t *testing.T) {
		_, _, err := env.SetMapPosition(ego, simmap.MapPosition{Edge: "X"}, 10, 10)
		assert.Equal(t, 87, simmap.Code(err))
		_, _, err = env.SetMapPosition(ego, simmap.MapPosition{Edge: "R1-LS0-R1", S: 120}, 10, 10)
		assert.Equal(t, 85, simmap.Code(err))

		head, back, err := env.SetMapPosition(ego, simmap.MapPosition{Edge: "R1-LS0-R1", S: 10}, 150, 5)
		require.NoError(t, err)
		assert.InDelta(t, 150.0, head, 1e-9)
		assert.InDelta(t, 5.0, back, 1e-9)

		pos, err := env.Position(ego)
		require.NoError(t, err)
		assert.InDelta(t, 10.0, pos.Position.X, 1e-9)
		assert.InDelta(t, -1.75, pos.Position.Y, 1e-9)

		mp, err := env.MapPosition(ego)
		require.NoError(t, err)
		assert.Equal(t, simmap.MapPosition{Edge: "R1-LS0-R1", S: 10}, mp)
	})

	t.Run("objects", func(t *testing.T) {
		objs, err := env.Objects(ego)
		require.NoError(t, err)
		require.Len(t, objs, 3)

		assert.Equal(t, "sig1", objs[0].ID)
		assert.InDelta(t, 20.0, objs[0].Distance, 1e-9)
		assert.Equal(t, simmap.ObjectSpeedLimit, objs[0].Type)
		assert.Equal(t, 50, objs[0].Value)

		assert.Equal(t, "sig2", objs[1].ID)
		assert.InDelta(t, 50.0, objs[1].Distance, 1e-9)
		assert.Equal(t, simmap.ObjectStopSign, objs[1].Type)

		assert.Equal(t, "sig3", objs[2].ID)
		assert.InDelta(t, 140.0, objs[2].Distance, 1e-9)
		assert.Equal(t, -1, objs[2].Value)
	})

	t.Run("match", func(t *testing.T) {
		mp, s, err := env.Match(ego, r3.Vector{X: 20, Y: -2}, 10)
		require.NoError(t, err)
		assert.InDelta(t, 10.0, s, 1e-6)
		assert.Equal(t, "R1-LS0-R1", mp.Edge)
		assert.InDelta(t, 20.0, mp.S, 1e-6)
		assert.InDelta(t, -0.25, mp.D, 1e-6)

		// matching does not move the agent
		cur, err := env.MapPosition(ego)
		require.NoError(t, err)
		assert.Equal(t, 10.0, cur.S)
	})

	t.Run("move", func(t *testing.T) {
		_, _, err := env.Move(ego, 151, 0, 10, 10)
		assert.Equal(t, 116, simmap.Code(err))

		head, back, err := env.Move(ego, 95, 0.5, 150, 5)
		require.NoError(t, err)
		assert.InDelta(t, 95.0, head, 1e-9)
		assert.InDelta(t, 5.0, back, 1e-9)

		mp, err := env.MapPosition(ego)
		require.NoError(t, err)
		assert.Equal(t, "R2-LS0-R1", mp.Edge)
		assert.InDelta(t, 5.0, mp.S, 1e-9)
		assert.Equal(t, 0.5, mp.D)
	})

	t.Run("lanes", func(t *testing.T) {
		lanes, err := env.Lanes(ego)
		require.NoError(t, err)
		require.Len(t, lanes, 2)

		assert.Equal(t, 1, lanes[0].Index)
		assert.Equal(t, "R2-LS0-L1", lanes[0].Edge)
		assert.InDelta(t, 95.0, lanes[0].S, 1e-9)
		assert.Equal(t, 3.0, lanes[0].Width)
		assert.Equal(t, simmap.DirectionBackwards, lanes[0].Direction)
		assert.InDelta(t, 95.0, lanes[0].LengthOnTrack, 1e-9)

		assert.Equal(t, -1, lanes[1].Index)
		assert.Equal(t, "R2-LS0-R2", lanes[1].Edge)
		assert.Equal(t, simmap.DirectionForwards, lanes[1].Direction)
		assert.Equal(t, simmap.AccessAllowed, lanes[1].Access)
	})

	t.Run("switch lane", func(t *testing.T) {
		assert.Equal(t, 165, simmap.Code(env.SwitchLane(ego, 1)))
		assert.Equal(t, 167, simmap.Code(env.SwitchLane(ego, -2)))

		require.NoError(t, env.SwitchLane(ego, -1))
		mp, err := env.MapPosition(ego)
		require.NoError(t, err)
		assert.Equal(t, "R2-LS0-R2", mp.Edge)
		assert.InDelta(t, 5.0, mp.S, 1e-9)
	})

	t.Run("horizon", func(t *testing.T) {
		hz, err := env.Horizon(ego, []float64{0, 10, 200, -100})
		require.NoError(t, err)
		require.Len(t, hz, 4)

		assert.InDelta(t, 105.0, hz[0].X, 1e-9)
		assert.InDelta(t, -5.25, hz[0].Y, 1e-9)
		assert.Equal(t, 3.5, hz[0].LaneWidth)
		assert.Equal(t, 3.5, hz[0].LeftWidth)
		assert.Equal(t, 0.0, hz[0].RightWidth)

		assert.Equal(t, 10.0, hz[1].S)
		assert.InDelta(t, 115.0, hz[1].X, 1e-9)
		assert.True(t, math.IsInf(hz[2].S, 1))
		assert.True(t, math.IsInf(hz[3].S, -1))
	})

	t.Run("targets", func(t *testing.T) {
		other, err := env.RegisterAgent("other", mh)
		require.NoError(t, err)
		require.NoError(t, env.SetTrack(other, []string{"2"}))
		_, _, err = env.SetMapPosition(other, simmap.MapPosition{Edge: "R2-LS0-R1", S: 30}, 10, 10)
		require.NoError(t, err)

		tars, err := env.Targets(ego, 0)
		require.NoError(t, err)
		require.Len(t, tars, 1)
		assert.Equal(t, "other", tars[0].Agent)
		assert.Equal(t, 1, tars[0].Lane)
		assert.InDelta(t, 25.0, tars[0].Distance, 1e-9)
		assert.InDelta(t, 25.0, tars[0].X, 1e-9)
		assert.InDelta(t, 3.5, tars[0].Y, 1e-9)

		tars, err = env.Targets(ego, 20)
		require.NoError(t, err)
		assert.Empty(t, tars)

		assert.Len(t, env.Agents(), 2)
	})

	t.Run("unload", func(t *testing.T) {
		require.NoError(t, env.UnloadMap(mh))

		_, err := env.Agent("ego")
		assert.True(t, domain.Is(err, simmap.ErrUnknownAgent))
		_, err = env.MapPosition(ego)
		assert.Equal(t, 92, simmap.Code(err))
		assert.Empty(t, env.Agents())
	})
}

func TestCode(t *testing.T) {
	assert.Equal(t, 0, simmap.Code(nil))
	assert.Equal(t, 9, simmap.Code(errors.New("boom")))
	assert.Equal(t, 7, simmap.Code(domain.WrapErrorf(nil, domain.ErrNotFound, "missing")))
	assert.Equal(t, 10, int(simmap.OpClear))
	assert.Equal(t, "switchLane", simmap.OpSwitchLane.String())
}
