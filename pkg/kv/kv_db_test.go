package kv_test

import (
	"testing"

	"github.com/JensKlimke/SimMap-sub000/domain"
	"github.com/JensKlimke/SimMap-sub000/pkg/kv"
	"github.com/JensKlimke/SimMap-sub000/pkg/roadmap"
	"github.com/cockroachdb/pebble/vfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *kv.MapStore {
	t.Helper()
	store, err := kv.Open("simmap", kv.WithFS(vfs.NewMem()), kv.WithWorkers(2))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func definition(name string) *roadmap.Definition {
	return &roadmap.Definition{
		Name: name,
		Roads: []roadmap.Road{{
			ID:       "1",
			Start:    roadmap.Start{X: 1, Y: 2, Heading: 0.5},
			Geometry: []roadmap.Geometry{{Type: roadmap.GeometryArc, Length: 20, Curvature: 0.01}},
			Sections: []roadmap.Section{{
				S: 0,
				Lanes: []roadmap.Lane{
					{ID: -1, Width: []roadmap.Poly3{{S: 0, A: 3.5}}, Successors: []int{-1}},
				},
			}},
			Successor: &roadmap.RoadLink{Road: "1", ContactPoint: roadmap.ContactStart},
			Objects:   []roadmap.ObjectDef{{S: 5, ID: "s1", Label: "274-50", Value: 50}},
		}},
	}
}

func TestMapStore(t *testing.T) {
	store := openStore(t)

	names, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, names)

	t.Run("put and get", func(t *testing.T) {
		require.NoError(t, store.Put(definition("b")))
		require.NoError(t, store.Put(definition("a")))

		def, err := store.Get("a")
		require.NoError(t, err)
		assert.Equal(t, "a", def.Name)
		require.Len(t, def.Roads, 1)

		r := def.Roads[0]
		assert.Equal(t, "1", r.ID)
		assert.Equal(t, roadmap.Start{X: 1, Y: 2, Heading: 0.5}, r.Start)
		assert.Equal(t, roadmap.Geometry{Type: roadmap.GeometryArc, Length: 20, Curvature: 0.01}, r.Geometry[0])
		assert.Equal(t, -1, r.Sections[0].Lanes[0].ID)
		assert.Equal(t, 3.5, r.Sections[0].Lanes[0].Width[0].A)
		assert.Equal(t, []int{-1}, r.Sections[0].Lanes[0].Successors)
		require.NotNil(t, r.Successor)
		assert.Equal(t, roadmap.RoadLink{Road: "1", ContactPoint: roadmap.ContactStart}, *r.Successor)
		assert.Nil(t, r.Predecessor)
		assert.Equal(t, "274-50", r.Objects[0].Label)
		assert.Equal(t, 50.0, r.Objects[0].Value)

		names, err := store.List()
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, names)
	})

	t.Run("stored map can be built", func(t *testing.T) {
		def, err := store.Get("b")
		require.NoError(t, err)
		def.Roads[0].Successor = nil

		m, err := roadmap.Build(def, roadmap.WithWorkers(1))
		require.NoError(t, err)
		assert.Equal(t, 1, m.Graph.Len())
	})

	t.Run("replace", func(t *testing.T) {
		def := definition("a")
		def.Roads[0].ID = "7"
		require.NoError(t, store.Put(def))

		got, err := store.Get("a")
		require.NoError(t, err)
		assert.Equal(t, "7", got.Roads[0].ID)

		names, err := store.List()
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, names)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, store.Delete("a"))

		_, err := store.Get("a")
		assert.True(t, domain.Is(err, domain.ErrNotFound))

		names, err := store.List()
		require.NoError(t, err)
		assert.Equal(t, []string{"b"}, names)

		err = store.Delete("a")
		assert.True(t, domain.Is(err, domain.ErrNotFound))
	})

	t.Run("invalid", func(t *testing.T) {
		err := store.Put(&roadmap.Definition{})
		assert.True(t, domain.Is(err, domain.ErrInvalidArgument))
		err = store.Put(nil)
		assert.True(t, domain.Is(err, domain.ErrInvalidArgument))
	})
}

func TestPutAll(t *testing.T) {
	store := openStore(t)

	defs := []*roadmap.Definition{definition("x"), definition("y"), definition("z")}
	require.NoError(t, store.PutAll(defs, nil))

	names, err := store.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y", "z"}, names)

	for _, name := range names {
		def, err := store.Get(name)
		require.NoError(t, err)
		assert.Equal(t, name, def.Name)
	}

	err = store.PutAll([]*roadmap.Definition{definition("w"), {}}, nil)
	assert.True(t, domain.Is(err, domain.ErrInvalidArgument))
}

func TestCompression(t *testing.T) {
	raw, err := kv.Encode([]string{"a", "bb", "ccc"})
	require.NoError(t, err)

	packed, err := kv.Compress(raw)
	require.NoError(t, err)

	unpacked, err := kv.Decompress(packed)
	require.NoError(t, err)
	assert.Equal(t, raw, unpacked)

	got, err := kv.Decode[[]string](unpacked)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "bb", "ccc"}, got)

	_, err = kv.Decompress([]byte("not zstd"))
	assert.Error(t, err)
}
