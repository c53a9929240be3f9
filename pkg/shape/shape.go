// Package shape exports lanes and paths as point lists, encoded polylines and GeoJSON.
// Coordinates are planar map coordinates in meters, ordered [x, y].
package shape

import (
	"encoding/json"

	"github.com/JensKlimke/SimMap-sub000/domain"
	"github.com/JensKlimke/SimMap-sub000/pkg/curve"
	"github.com/JensKlimke/SimMap-sub000/pkg/engine/lanepath"
	"github.com/JensKlimke/SimMap-sub000/pkg/graph"
	"github.com/JensKlimke/SimMap-sub000/pkg/roadmap"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/twpayne/go-polyline"
)

const DefaultStep = 1.0

// Lane returns the sampled center line of the lane edge e.
func Lane(m *roadmap.Map, e graph.EdgeID) (orb.LineString, error) {
	samples, ok := m.Index.Samples(e)
	if !ok {
		return nil, domain.WrapErrorf(nil, domain.ErrNotFound, "edge %d does not exist", e)
	}

	ls := make(orb.LineString, len(samples.Points))
	for i, p := range samples.Points {
		ls[i] = orb.Point{p.X, p.Y}
	}
	return ls, nil
}

// Path samples the center line of p from its back to its head with a spacing of at most step.
func Path(p *lanepath.Path, step float64) (orb.LineString, error) {
	if step <= 0 {
		step = DefaultStep
	}

	ss := curve.MaxSpace(-p.DistanceToBack(), p.DistanceToHead(), step)
	ls := make(orb.LineString, 0, len(ss))
	for _, s := range ss {
		mc, err := p.PositionAt(s, 0)
		if err != nil {
			return nil, err
		}
		pos := mc.AbsolutePosition().Position
		ls = append(ls, orb.Point{pos.X, pos.Y})
	}
	return ls, nil
}

func Polyline(ls orb.LineString) string {
	coords := make([][]float64, 0, len(ls))
	for _, p := range ls {
		coords = append(coords, []float64{p.X(), p.Y()})
	}
	return string(polyline.EncodeCoords(coords))
}

// DecodePolyline is the inverse of Polyline, exact up to 1e-5.
func DecodePolyline(s string) (orb.LineString, error) {
	coords, _, err := polyline.DecodeCoords([]byte(s))
	if err != nil {
		return nil, domain.WrapErrorf(err, domain.ErrInvalidArgument, "invalid polyline")
	}

	ls := make(orb.LineString, len(coords))
	for i, c := range coords {
		ls[i] = orb.Point{c[0], c[1]}
	}
	return ls, nil
}

// Lanes returns one feature per lane edge of the map.
func Lanes(m *roadmap.Map) (*geojson.FeatureCollection, error) {
	fc := geojson.NewFeatureCollection()
	for _, e := range m.Graph.Edges() {
		ls, err := Lane(m, e.ID())
		if err != nil {
			return nil, err
		}

		f := geojson.NewFeature(ls)
		f.ID = e.Name()
		f.Properties["road"] = e.TrackElement().Road
		f.Properties["orientation"] = e.Orientation().String()
		f.Properties["length"] = e.Length()
		fc.Append(f)
	}
	return fc, nil
}

// PathFeature returns the path as feature with its segment names and window.
func PathFeature(p *lanepath.Path, step float64) (*geojson.Feature, error) {
	ls, err := Path(p, step)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(p.Segments()))
	for _, id := range p.Segments() {
		names = append(names, p.Graph().Edge(id).Name())
	}

	f := geojson.NewFeature(ls)
	f.Properties["segments"] = names
	f.Properties["head"] = p.DistanceToHead()
	f.Properties["back"] = p.DistanceToBack()
	f.Properties["track"] = p.Track().Strings()
	return f, nil
}

// Marshal encodes a feature collection or feature as GeoJSON.
func Marshal(v json.Marshaler) ([]byte, error) {
	bb, err := v.MarshalJSON()
	if err != nil {
		return nil, domain.WrapErrorf(err, domain.ErrInternalServerError, "cannot encode geojson")
	}
	return bb, nil
}
