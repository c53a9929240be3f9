package sequence_test

import (
	"math"
	"testing"

	"github.com/JensKlimke/SimMap-sub000/pkg/sequence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//	I  |-+-+-|-----+-|---|
//	II |-----|-+-+---|-+-|
//	   1 2 3 4 5 6 7 8 9 10
func nestedFixture(t *testing.T) *sequence.Nested[int] {
	n := sequence.NewNested[int]()
	a, err := n.Create(1.0)
	require.NoError(t, err)
	b, err := n.Create(4.0)
	require.NoError(t, err)
	c, err := n.Create(8.0)
	require.NoError(t, err)

	fill := func(q *sequence.Sequence[int], kv ...float64) {
		for i := 0; i < len(kv); i += 2 {
			require.NoError(t, q.Emplace(kv[i], int(kv[i+1])))
		}
	}
	fill(a.First, 1, 10, 2, 11, 3, 12)
	fill(a.Second, 1, 20)
	fill(b.First, 4, 13, 7, 16)
	fill(b.Second, 4, 23, 5, 24, 6, 25)
	fill(c.First, 8, 17)
	fill(c.Second, 8, 27, 9, 28)

	n.SetLength(9.0)
	return n
}

func TestNestedSequence(t *testing.T) {
	t.Run("unset sides yield infinite sentinel", func(t *testing.T) {
		n := sequence.NewNested[int]()
		_, err := n.Create(0.0)
		require.NoError(t, err)
		n.SetLength(10.0)

		cs, err := n.At(5.0)
		require.NoError(t, err)
		assert.Nil(t, cs.First.Element)
		assert.Equal(t, math.Inf(1), cs.First.Length)
		assert.Equal(t, math.Inf(1), cs.First.Position)
		assert.Equal(t, sequence.First, cs.First.Side)
		assert.Nil(t, cs.Second.Element)
		assert.Equal(t, math.Inf(1), cs.Second.Length)
		assert.Equal(t, sequence.Second, cs.Second.Side)
	})

	t.Run("section lengths propagate", func(t *testing.T) {
		n := nestedFixture(t)
		assert.Equal(t, 9.0, n.Length())

		secs := n.Sections().Entries()
		require.Len(t, secs, 3)
		for i, l := range []float64{3, 4, 2} {
			assert.Equal(t, l, secs[i].Element.First.Length())
			assert.Equal(t, l, secs[i].Element.Second.Length())
		}
	})

	t.Run("front and back", func(t *testing.T) {
		n := nestedFixture(t)
		front, err := n.Front()
		require.NoError(t, err)
		assert.Equal(t, 10, *front.First.Element)
		assert.Equal(t, 20, *front.Second.Element)
		assert.Equal(t, 0.0, front.First.Position)
		assert.Equal(t, 1.0, front.First.Length)
		assert.Equal(t, 3.0, front.Second.Length)

		back, err := n.Back()
		require.NoError(t, err)
		assert.Equal(t, 17, *back.First.Element)
		assert.Equal(t, 28, *back.Second.Element)
		assert.Equal(t, 2.0, back.First.Position)
		assert.Equal(t, 1.0, back.Second.Position)
		assert.Equal(t, 2.0, back.First.Length)
		assert.Equal(t, 1.0, back.Second.Length)
	})

	t.Run("entries sorted with sides", func(t *testing.T) {
		e := nestedFixture(t).Entries()
		require.Len(t, e, 12)

		pos := []float64{1, 1, 2, 3, 4, 4, 5, 6, 7, 8, 8, 9}
		sides := []sequence.Side{
			sequence.First, sequence.Second, sequence.First, sequence.First,
			sequence.First, sequence.Second, sequence.Second, sequence.Second,
			sequence.First, sequence.First, sequence.Second, sequence.Second,
		}
		for i := range e {
			assert.Equal(t, pos[i], e[i].Position)
			assert.Equal(t, sides[i], e[i].Side)
		}
	})

	t.Run("cross sections", func(t *testing.T) {
		n := nestedFixture(t)
		cases := []struct {
			s                      float64
			firstPos, secondPos    float64
			firstLen, secondLen    float64
			firstElem, secondElem int
		}{
			{1.0, 0.0, 0.0, 1, 3, 10, 20},
			{2.5, 0.5, 1.5, 1, 3, 11, 20},
			{3.5, 0.5, 2.5, 1, 3, 12, 20},
			{4.5, 0.5, 0.5, 3, 1, 13, 23},
			{5.5, 1.5, 0.5, 3, 1, 13, 24},
			{9.5, 1.5, 0.5, 2, 1, 17, 28},
		}
		for _, c := range cases {
			cs, err := n.At(c.s)
			require.NoError(t, err)
			assert.InDelta(t, c.firstPos, cs.First.Position, 1e-12)
			assert.InDelta(t, c.secondPos, cs.Second.Position, 1e-12)
			assert.Equal(t, c.firstLen, cs.First.Length)
			assert.Equal(t, c.secondLen, cs.Second.Length)
			assert.Equal(t, c.firstElem, *cs.First.Element)
			assert.Equal(t, c.secondElem, *cs.Second.Element)
		}
	})
}
