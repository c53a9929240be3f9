package curve_test

import (
	"math"
	"testing"

	"github.com/JensKlimke/SimMap-sub000/domain"
	"github.com/JensKlimke/SimMap-sub000/pkg/curve"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// line (10 m), spiral to 0.05 (20 m), arc (20 m)
func lineSpiralArc(t *testing.T) *curve.Curve {
	c, err := curve.FromCurvatureProfile(point(0, 0, 0),
		[]float64{0, 10, 30, 50},
		[]float64{0, 0, 0.05},
		[]float64{0, 0.05, 0.05},
	)
	require.NoError(t, err)
	return c
}

func TestCurveProfile(t *testing.T) {
	c := lineSpiralArc(t)

	t.Run("element selection", func(t *testing.T) {
		var kinds []curve.Kind
		for _, g := range c.Elements() {
			kinds = append(kinds, g.Kind())
		}
		assert.Equal(t, []curve.Kind{curve.KindLine, curve.KindSpiral, curve.KindArc}, kinds)
		assert.Equal(t, curve.KindCurve, c.Kind())
		assert.InDelta(t, 50.0, c.Length(), 1e-12)
	})

	t.Run("continuity", func(t *testing.T) {
		entries := c.Entries()
		for i := 1; i < len(entries); i++ {
			end := curve.EndPoint(entries[i-1].Element)
			start := entries[i].Element.StartPoint()
			assert.InDelta(t, end.Position.X, start.Position.X, 1e-9)
			assert.InDelta(t, end.Position.Y, start.Position.Y, 1e-9)
			assert.InDelta(t, 0.0, curve.AngleDiff(end.Angle, start.Angle), 1e-9)
			assert.InDelta(t, end.Curvature, start.Curvature, 1e-9)
		}
	})

	t.Run("heading and curvature", func(t *testing.T) {
		assert.InDelta(t, 1.5, curve.EndPoint(c).Angle, 1e-9)
		assert.InDelta(t, 0.0, c.Curvature(5), 1e-12)
		assert.InDelta(t, 0.025, c.Curvature(20), 1e-12)
		assert.InDelta(t, 0.05, c.Curvature(40), 1e-12)
		assert.InDelta(t, 0.05, c.EndCurvature(), 1e-12)
		assert.InDelta(t, 0.0, c.StartCurvature(), 1e-12)
	})

	t.Run("line part", func(t *testing.T) {
		assertPoint(t, point(7, 0, 0), c.Pos(7), 1e-12)
	})

	t.Run("clamped and strict access", func(t *testing.T) {
		assertPoint(t, c.StartPoint(), c.Pos(-5), 1e-12)
		assertPoint(t, curve.EndPoint(c), c.Pos(60), 1e-12)

		_, err := c.At(60)
		assert.True(t, domain.Is(err, domain.ErrOutOfRange))
		p, err := c.At(50)
		require.NoError(t, err)
		assertPoint(t, curve.EndPoint(c), p, 1e-12)
	})

	t.Run("moving the start point", func(t *testing.T) {
		c := lineSpiralArc(t)
		end0 := curve.EndPoint(c)

		require.NoError(t, c.SetStartPoint(point(100, 50, 0)))
		end1 := curve.EndPoint(c)
		assert.InDelta(t, end0.Position.X+100, end1.Position.X, 1e-9)
		assert.InDelta(t, end0.Position.Y+50, end1.Position.Y, 1e-9)
	})
}

func TestCurveFromCurvature(t *testing.T) {
	c, err := curve.FromCurvature(point(0, 0, 0), []float64{0, 10, 20}, []float64{0, 0, 0.1})
	require.NoError(t, err)
	require.Equal(t, 2, c.Size())
	assert.Equal(t, curve.KindLine, c.Elements()[0].Kind())
	assert.Equal(t, curve.KindSpiral, c.Elements()[1].Kind())
	assert.InDelta(t, 0.5, curve.EndPoint(c).Angle, 1e-9)

	t.Run("size mismatch", func(t *testing.T) {
		_, err := curve.FromCurvature(point(0, 0, 0), []float64{0, 10, 20}, []float64{0, 0})
		assert.True(t, domain.Is(err, domain.ErrInvalidArgument))

		_, err = curve.FromCurvatureProfile(point(0, 0, 0), []float64{0, 10, 20}, []float64{0, 0}, []float64{0})
		assert.True(t, domain.Is(err, domain.ErrInvalidArgument))
	})

	t.Run("not monotonic", func(t *testing.T) {
		_, err := curve.FromCurvature(point(0, 0, 0), []float64{0, 10, 5}, []float64{0, 0, 0})
		assert.True(t, domain.Is(err, domain.ErrInvalidArgument))
	})
}

func TestCurveElements(t *testing.T) {
	t.Run("empty curve", func(t *testing.T) {
		c := curve.NewCurve()
		err := c.SetStartPoint(point(0, 0, 0))
		assert.True(t, domain.Is(err, domain.ErrRuntime))
		assert.Equal(t, 0.0, c.Length())
	})

	t.Run("explicit elements", func(t *testing.T) {
		l, err := curve.NewLine(point(0, 0, 0), 10)
		require.NoError(t, err)
		a, err := curve.NewArc(point(0, 0, 0), 0.5*math.Pi*10, 0.1)
		require.NoError(t, err)

		c := curve.NewCurve()
		require.NoError(t, c.Add(l.Length(), l))
		require.NoError(t, c.Add(a.Length(), a))
		require.NoError(t, c.SetStartPoint(point(0, 0, 0)))

		assertPoint(t, point(20, 10, 0.5*math.Pi), curve.EndPoint(c), 1e-9)
	})

	t.Run("steps are concatenated", func(t *testing.T) {
		l1, err := curve.NewLine(point(0, 0, 0), 25)
		require.NoError(t, err)
		l2, err := curve.NewLine(point(0, 0, 0), 5)
		require.NoError(t, err)

		c := curve.NewCurve()
		require.NoError(t, c.Add(25, l1))
		require.NoError(t, c.Add(5, l2))
		require.NoError(t, c.SetStartPoint(point(0, 0, 0)))

		st, err := curve.Steps(c, 0.1, 10)
		require.NoError(t, err)
		assert.InDeltaSlice(t, []float64{0, 10, 20, 25, 30}, st, 1e-8)
	})
}

func TestCurveReverse(t *testing.T) {
	c := lineSpiralArc(t)
	r := c.Reverse()

	start := curve.EndPoint(c)
	start.Angle += math.Pi
	assertPoint(t, start, r.StartPoint(), 1e-9)
	assertPoint(t, point(0, 0, math.Pi), curve.EndPoint(r), 1e-6)

	assert.InDelta(t, c.Length(), r.Length(), 1e-12)
	assert.InDelta(t, -0.05, r.Curvature(5), 1e-12)
	assert.InDelta(t, 0.0, r.Curvature(45), 1e-12)

	mid := r.Pos(25)
	exp := c.Pos(25)
	assert.InDelta(t, exp.Position.X, mid.Position.X, 1e-6)
	assert.InDelta(t, exp.Position.Y, mid.Position.Y, 1e-6)
}
