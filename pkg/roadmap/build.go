package roadmap

import (
	"fmt"
	"log/slog"
	"math"
	"runtime"
	"sort"

	"github.com/JensKlimke/SimMap-sub000/domain"
	"github.com/JensKlimke/SimMap-sub000/pkg/curve"
	"github.com/JensKlimke/SimMap-sub000/pkg/graph"
	"github.com/samber/lo"
	"github.com/schollz/progressbar/v3"
)

const (
	DefaultStep     = 10.0
	DefaultMaxAngle = 0.1
)

// Map is a built road map: the lane graph, the road shapes and a spatial index of the lanes.
type Map struct {
	Name  string
	Graph *graph.Graph
	Roads map[string]*RoadShape
	Index *Index

	def      *Definition
	lanes    map[graph.EdgeID]*LaneGeometry
	sections map[string][]*section
}

type section struct {
	s0, s1 float64
	lanes  map[int]graph.EdgeID
	defs   map[int]Lane
}

type options struct {
	workers  int
	step     float64
	maxAngle float64
	logger   *slog.Logger
	bar      *progressbar.ProgressBar
}

type Option func(*options)

// WithWorkers sets the number of workers discretizing the lanes.
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

// WithStep sets the maximal distance between two sampled lane points.
func WithStep(ds float64) Option {
	return func(o *options) { o.step = ds }
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithProgress reports every discretized lane on bar.
func WithProgress(bar *progressbar.ProgressBar) Option {
	return func(o *options) { o.bar = bar }
}

// Build creates the map from def.
func Build(def *Definition, opts ...Option) (*Map, error) {
	o := options{workers: runtime.NumCPU(), step: DefaultStep, maxAngle: DefaultMaxAngle, logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	if def == nil {
		return nil, domain.WrapErrorf(nil, domain.ErrInvalidArgument, "map definition is missing")
	}

	m := &Map{
		Name:     def.Name,
		Graph:    graph.NewGraph(def.Name),
		Roads:    make(map[string]*RoadShape, len(def.Roads)),
		def:      def,
		lanes:    make(map[graph.EdgeID]*LaneGeometry),
		sections: make(map[string][]*section, len(def.Roads)),
	}

	for i := range def.Roads {
		if err := m.addRoad(&def.Roads[i]); err != nil {
			return nil, err
		}
	}
	for i := range def.Roads {
		if err := m.linkRoad(&def.Roads[i]); err != nil {
			return nil, err
		}
	}
	for i := range def.Roads {
		if err := m.addObjects(&def.Roads[i]); err != nil {
			return nil, err
		}
	}

	idx, err := buildIndex(m, o)
	if err != nil {
		return nil, err
	}
	m.Index = idx

	o.logger.Info("road map built",
		slog.String("map", def.Name),
		slog.Int("roads", len(def.Roads)),
		slog.Int("edges", m.Graph.Len()),
	)
	return m, nil
}

// Definition returns the definition the map was built from.
func (m *Map) Definition() *Definition {
	return m.def
}

// Lane returns the geometry of the lane edge id.
func (m *Map) Lane(id graph.EdgeID) (*LaneGeometry, bool) {
	l, ok := m.lanes[id]
	return l, ok
}

// LaneEdge returns the edge of lane id in the given section of road.
func (m *Map) LaneEdge(road string, sec, id int) (graph.EdgeID, error) {
	secs, ok := m.sections[road]
	if !ok {
		return graph.NoEdge, domain.WrapErrorf(nil, domain.ErrNotFound, "road %s does not exist", road)
	}
	if sec < 0 || sec >= len(secs) {
		return graph.NoEdge, domain.WrapErrorf(nil, domain.ErrOutOfRange, "road %s has no lane section %d", road, sec)
	}
	e, ok := secs[sec].lanes[id]
	if !ok {
		return graph.NoEdge, domain.WrapErrorf(nil, domain.ErrNotFound, "road %s has no lane %d in section %d", road, id, sec)
	}
	return e, nil
}

// EdgeName returns the name of the lane edge in section sec of a road.
func EdgeName(road string, sec, lane int) string {
	tag := "C"
	switch {
	case lane > 0:
		tag = fmt.Sprintf("L%d", lane)
	case lane < 0:
		tag = fmt.Sprintf("R%d", -lane)
	}
	return fmt.Sprintf("R%s-LS%d-%s", road, sec, tag)
}

func (m *Map) addRoad(r *Road) error {
	if r.ID == "" {
		return domain.WrapErrorf(nil, domain.ErrInvalidArgument, "road without id")
	}
	if _, ok := m.Roads[r.ID]; ok {
		return domain.WrapErrorf(nil, domain.ErrInvalidArgument, "road %s is defined twice", r.ID)
	}

	shape, err := roadShape(r)
	if err != nil {
		return err
	}
	m.Roads[r.ID] = shape

	if len(r.Sections) == 0 {
		return domain.WrapErrorf(nil, domain.ErrInvalidArgument, "road %s has no lane section", r.ID)
	}

	secs := make([]*section, len(r.Sections))
	for i, sd := range r.Sections {
		s1 := shape.Length
		if i+1 < len(r.Sections) {
			s1 = r.Sections[i+1].S
		}
		if sd.S < 0 || s1-sd.S < curve.EpsDistance {
			return domain.WrapErrorf(nil, domain.ErrInvalidArgument, "lane section %d of road %s has an invalid range [%g, %g]", i, r.ID, sd.S, s1)
		}

		sec, err := m.addSection(shape, i, sd, s1)
		if err != nil {
			return err
		}
		secs[i] = sec
	}
	m.sections[r.ID] = secs
	return nil
}

func roadShape(r *Road) (*RoadShape, error) {
	if len(r.Geometry) == 0 {
		return nil, domain.WrapErrorf(nil, domain.ErrInvalidArgument, "road %s has no geometry", r.ID)
	}

	c := curve.NewCurve()
	for i, gd := range r.Geometry {
		el, err := geometryElement(gd)
		if err != nil {
			return nil, domain.WrapErrorf(err, domain.ErrInvalidArgument, "geometry %d of road %s", i, r.ID)
		}
		if err := c.Add(el.Length(), el); err != nil {
			return nil, err
		}
	}

	start := curve.CurvePoint{Angle: r.Start.Heading}
	start.Position.X, start.Position.Y = r.Start.X, r.Start.Y
	if err := c.SetStartPoint(start); err != nil {
		return nil, err
	}

	offset, err := polySpline(r.LaneOffset)
	if err != nil {
		return nil, domain.WrapErrorf(err, domain.ErrInvalidArgument, "lane offset of road %s", r.ID)
	}
	if offset.Empty() {
		offset = curve.ConstantSpline(0)
	}

	return &RoadShape{ID: r.ID, Curve: c, Offset: offset, Length: c.Length()}, nil
}

func geometryElement(gd Geometry) (curve.GeoElement, error) {
	switch gd.Type {
	case GeometryLine, "":
		return curve.NewLine(curve.CurvePoint{}, gd.Length)
	case GeometryArc:
		return curve.NewArc(curve.CurvePoint{}, gd.Length, gd.Curvature)
	case GeometrySpiral:
		return curve.NewSpiral(curve.CurvePoint{}, gd.Length, gd.Curvature, gd.CurvatureEnd)
	case GeometryParamPoly3:
		return curve.NewParamPoly3(curve.CurvePoint{}, gd.Length,
			[4]float64{gd.AU, gd.BU, gd.CU, gd.DU}, [4]float64{gd.AV, gd.BV, gd.CV, gd.DV})
	default:
		return nil, domain.WrapErrorf(nil, domain.ErrInvalidArgument, "unknown geometry type %q", gd.Type)
	}
}

// polySpline creates a spline from polynomial rows. The last row is valid up to infinity.
func polySpline(rows []Poly3) (*curve.C3Spline, error) {
	if len(rows) == 0 {
		return curve.NewC3Spline(), nil
	}

	s := make([]float64, 0, len(rows)+1)
	coeffs := make([][4]float64, 0, len(rows))
	for _, r := range rows {
		s = append(s, r.S)
		coeffs = append(coeffs, [4]float64{r.A, r.B, r.C, r.D})
	}
	s = append(s, math.Inf(1))
	return curve.SplineFromDefinition(s, coeffs)
}

func (m *Map) addSection(shape *RoadShape, idx int, sd Section, s1 float64) (*section, error) {
	sec := &section{
		s0:    sd.S,
		s1:    s1,
		lanes: make(map[int]graph.EdgeID, len(sd.Lanes)),
		defs:  make(map[int]Lane, len(sd.Lanes)),
	}
	for _, ld := range sd.Lanes {
		if _, ok := sec.defs[ld.ID]; ok {
			return nil, domain.WrapErrorf(nil, domain.ErrInvalidArgument, "lane %d defined twice in section %d of road %s", ld.ID, idx, shape.ID)
		}
		sec.defs[ld.ID] = ld
	}

	// lanes are created from the reference line outwards to chain the inner borders
	ids := lo.Keys(sec.defs)
	sort.Slice(ids, func(i, j int) bool {
		if abs(ids[i]) != abs(ids[j]) {
			return abs(ids[i]) < abs(ids[j])
		}
		return ids[i] < ids[j]
	})

	geoms := make(map[int]*LaneGeometry, len(ids))
	for _, id := range ids {
		ld := sec.defs[id]

		var inner *LaneGeometry
		if id > 1 || id < -1 {
			in := id - 1
			if id < 0 {
				in = id + 1
			}
			var ok bool
			if inner, ok = geoms[in]; !ok {
				return nil, domain.WrapErrorf(nil, domain.ErrInvalidArgument, "lane %d of road %s has no inner lane %d", id, shape.ID, in)
			}
		}

		width, err := polySpline(ld.Width)
		if err != nil {
			return nil, domain.WrapErrorf(err, domain.ErrInvalidArgument, "width of lane %d of road %s", id, shape.ID)
		}

		geom := NewLaneGeometry(shape, id, sec.s0, sec.s1, width, inner)
		geoms[id] = geom

		o := LaneOrientation(id)
		e, err := m.Graph.AddEdge(EdgeName(shape.ID, idx, id), o, geom, graph.TrackElement{Orientation: o, Road: shape.ID})
		if err != nil {
			return nil, err
		}
		sec.lanes[id] = e
		m.lanes[e] = geom
	}

	// drivable lanes from the outermost right to the outermost left lane
	drivable := lo.Filter(lo.Keys(sec.defs), func(id int, _ int) bool {
		return id != 0 && sec.defs[id].Drivable()
	})
	sort.Ints(drivable)

	groups := lo.Map(drivable, func(id int, _ int) graph.Group {
		return graph.Group{Start: 0, Edges: []graph.EdgeID{sec.lanes[id]}}
	})
	if err := m.Graph.AutoConnect(groups); err != nil {
		return nil, err
	}
	return sec, nil
}

func abs(i int) int {
	if i < 0 {
		return -i
	}
	return i
}

// linkRoad links the lanes of consecutive sections and of the roads connected to r.
func (m *Map) linkRoad(r *Road) error {
	secs := m.sections[r.ID]

	for i, sec := range secs {
		ids := lo.Keys(sec.defs)
		sort.Ints(ids)

		for _, id := range ids {
			ld, e := sec.defs[id], sec.lanes[id]

			var prev, next *section
			if i > 0 {
				prev = secs[i-1]
			} else if r.Predecessor != nil {
				s, err := m.contactSection(r.Predecessor)
				if err != nil {
					return domain.WrapErrorf(err, domain.ErrInvalidArgument, "predecessor of road %s", r.ID)
				}
				prev = s
			}
			if i+1 < len(secs) {
				next = secs[i+1]
			} else if r.Successor != nil {
				s, err := m.contactSection(r.Successor)
				if err != nil {
					return domain.WrapErrorf(err, domain.ErrInvalidArgument, "successor of road %s", r.ID)
				}
				next = s
			}

			if err := m.linkLanes(e, prev, ld.Predecessors, true); err != nil {
				return domain.WrapErrorf(err, domain.ErrInvalidArgument, "predecessors of lane %d in road %s", id, r.ID)
			}
			if err := m.linkLanes(e, next, ld.Successors, false); err != nil {
				return domain.WrapErrorf(err, domain.ErrInvalidArgument, "successors of lane %d in road %s", id, r.ID)
			}
		}
	}
	return nil
}

func (m *Map) linkLanes(e graph.EdgeID, sec *section, ids []int, before bool) error {
	if sec == nil {
		return nil
	}
	for _, id := range ids {
		t, ok := sec.lanes[id]
		if !ok {
			return domain.WrapErrorf(nil, domain.ErrInvalidArgument, "unknown lane %d", id)
		}
		if err := m.Graph.Link(e, t, before); err != nil {
			return err
		}
	}
	return nil
}

func (m *Map) contactSection(l *RoadLink) (*section, error) {
	secs, ok := m.sections[l.Road]
	if !ok {
		return nil, domain.WrapErrorf(nil, domain.ErrInvalidArgument, "unknown road %s", l.Road)
	}

	switch l.ContactPoint {
	case ContactStart:
		return secs[0], nil
	case ContactEnd:
		return secs[len(secs)-1], nil
	default:
		return nil, domain.WrapErrorf(nil, domain.ErrInvalidArgument, "unknown contact point %q", l.ContactPoint)
	}
}

// addObjects places the objects of r on the lanes of the section they are located in.
func (m *Map) addObjects(r *Road) error {
	secs := m.sections[r.ID]
	length := m.Roads[r.ID].Length

	for _, od := range r.Objects {
		if od.S < 0 || od.S > length {
			return domain.WrapErrorf(nil, domain.ErrInvalidArgument, "object %s outside of road %s", od.ID, r.ID)
		}

		i := sort.Search(len(secs), func(i int) bool { return secs[i].s0 > od.S }) - 1
		sec := secs[max(i, 0)]

		typ := od.Type
		if typ == "" {
			typ = "signal"
		}
		obj := graph.Object{Type: typ, Label: od.Label, ID: od.ID, Value: od.Value}

		for id, e := range sec.lanes {
			if id == 0 || (od.Orientation == "+" && id > 0) || (od.Orientation == "-" && id < 0) {
				continue
			}

			ds := math.Min(od.S, sec.s1) - sec.s0
			if id > 0 {
				ds = sec.s1 - sec.s0 - ds
			}
			if err := m.Graph.AddObject(e, ds, obj); err != nil {
				return err
			}
		}
	}
	return nil
}
