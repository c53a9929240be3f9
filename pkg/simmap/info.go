package simmap

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/JensKlimke/SimMap-sub000/pkg/curve"
	"github.com/JensKlimke/SimMap-sub000/pkg/engine/lanepath"
	"github.com/JensKlimke/SimMap-sub000/pkg/graph"
)

// HorizonPoint describes the path at a distance S from the agent. S is +Inf for grid
// points beyond the head and -Inf for grid points behind the back; all other fields are
// zero then.
type HorizonPoint struct {
	S          float64
	X, Y       float64
	Psi        float64
	Kappa      float64
	LaneWidth  float64
	RightWidth float64
	LeftWidth  float64
}

type ObjectType int

const (
	ObjectUnknown ObjectType = iota
	ObjectStopSign
	ObjectSpeedLimit
)

func (t ObjectType) String() string {
	switch t {
	case ObjectStopSign:
		return "stopSign"
	case ObjectSpeedLimit:
		return "speedLimit"
	default:
		return "unknown"
	}
}

func (t ObjectType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// ObjectInfo is an object on the agent's path. For speed limits Value is the limit in
// km/h, negative values end a limit (-1 ends all limits).
type ObjectInfo struct {
	ID       string     `json:"id"`
	Distance float64    `json:"distance"`
	Type     ObjectType `json:"type"`
	Value    int        `json:"value"`
}

type Access string

const (
	AccessAllowed    Access = "allowed"
	AccessNotAllowed Access = "notAllowed"
)

type Direction string

const (
	DirectionForwards  Direction = "forwards"
	DirectionBackwards Direction = "backwards"
)

// LaneInfo describes a lane next to the agent. Index is positive on the left.
type LaneInfo struct {
	Index          int       `json:"index"`
	Edge           string    `json:"edge"`
	S              float64   `json:"s"`
	Width          float64   `json:"width"`
	LengthOnTrack  float64   `json:"lengthOnTrack"`
	LengthToClosed float64   `json:"lengthToClosed"`
	Access         Access    `json:"access"`
	Direction      Direction `json:"direction"`
}

// TargetInfo is another agent on the path or on a neighbored lane of the agent. X and Y
// are relative to the agent's position and heading, Distance is measured along the lane.
type TargetInfo struct {
	Agent    string  `json:"agent"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Distance float64 `json:"distance"`
	D        float64 `json:"d"`
	Lane     int     `json:"lane"`
}

// signalType classifies traffic signs by their label.
func signalType(obj graph.Object) (ObjectType, int) {
	if obj.Type != "signal" {
		return ObjectUnknown, 0
	}

	label := obj.Label
	switch label {
	case "206":
		return ObjectStopSign, 0
	case "274.1":
		return ObjectSpeedLimit, 30
	case "274.1-20":
		return ObjectSpeedLimit, 20
	case "274.2":
		return ObjectSpeedLimit, -30
	case "274.2-20":
		return ObjectSpeedLimit, -20
	case "282":
		return ObjectSpeedLimit, -1
	}

	switch {
	case strings.HasPrefix(label, "274-"):
		v, _ := strconv.Atoi(label[4:])
		return ObjectSpeedLimit, v
	case strings.HasPrefix(label, "278-"):
		v, _ := strconv.Atoi(label[4:])
		return ObjectSpeedLimit, -v
	default:
		return ObjectUnknown, 0
	}
}

// Horizon samples the agent's path at the distances of grid.
func (e *Environment) Horizon(h AgentHandle, grid []float64) ([]HorizonPoint, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	a, err := e.positioned(h)
	if err != nil {
		return nil, opErr(OpHorizon, err)
	}

	p := a.path
	head, back := p.DistanceToHead(), p.DistanceToBack()

	out := make([]HorizonPoint, len(grid))
	for i, s := range grid {
		switch {
		case s > head:
			out[i].S = math.Inf(1)
			continue
		case s < -back:
			out[i].S = math.Inf(-1)
			continue
		}

		mc, err := p.PositionAt(s, 0)
		if err != nil {
			return nil, opErr(OpHorizon, err)
		}
		cp := mc.AbsolutePosition()

		hp := HorizonPoint{
			S:         s,
			X:         cp.Position.X,
			Y:         cp.Position.Y,
			Psi:       cp.Angle,
			Kappa:     cp.Curvature,
			LaneWidth: mc.Width(),
		}
		if r := mc.Right(1); !r.OutOfRoad() {
			hp.RightWidth = r.Width()
		}
		if l := mc.Left(1); !l.OutOfRoad() {
			hp.LeftWidth = l.Width()
		}
		out[i] = hp
	}
	return out, nil
}

// Objects lists the objects on the agent's path ordered by distance.
func (e *Environment) Objects(h AgentHandle) ([]ObjectInfo, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	a, err := e.positioned(h)
	if err != nil {
		return nil, opErr(OpObjects, err)
	}

	objs := a.path.Objects()
	out := make([]ObjectInfo, 0, len(objs))
	for _, o := range objs {
		t, v := signalType(o.Object)
		out = append(out, ObjectInfo{ID: o.Object.ID, Distance: o.Distance, Type: t, Value: v})
	}
	return out, nil
}

// Lanes lists the lanes next to the agent from the outermost left to the outermost right.
func (e *Environment) Lanes(h AgentHandle) ([]LaneInfo, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	a, err := e.positioned(h)
	if err != nil {
		return nil, opErr(OpLanes, err)
	}

	neighbors, err := a.path.NeighboredPaths(a.track)
	if err != nil {
		return nil, opErr(OpLanes, err)
	}

	out := make([]LaneInfo, 0, len(neighbors))
	for _, n := range neighbors {
		pos := n.Path.Current()

		li := LaneInfo{
			Index:     n.Info.Index,
			Edge:      pos.EdgeRef().Name(),
			S:         pos.S(),
			Width:     pos.Width(),
			Access:    AccessAllowed,
			Direction: DirectionForwards,
		}
		if n.Info.SameDir {
			li.LengthOnTrack = n.Path.DistanceToHead()
		} else {
			li.LengthOnTrack = n.Path.DistanceToBack()
			li.Direction = DirectionBackwards
		}
		li.LengthToClosed = li.LengthOnTrack
		if n.Info.Accessible && !n.Info.Allowed {
			li.Access = AccessNotAllowed
		}
		out = append(out, li)
	}
	return out, nil
}

// Targets lists the other agents on the same map that are on the agent's path or on one of
// its neighbored lanes, ordered by the absolute distance. A positive radius drops targets
// further away.
func (e *Environment) Targets(h AgentHandle, radius float64) ([]TargetInfo, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	a, err := e.positioned(h)
	if err != nil {
		return nil, opErr(OpTargets, err)
	}

	var pool []*agent
	e.agents.each(func(_ uint64, t *agent) {
		if t != a && t.mh == a.mh && t.path != nil {
			pool = append(pool, t)
		}
	})

	own := a.path.Current()
	ref := own.AbsolutePosition()

	var out []TargetInfo
	collect := func(p *lanepath.Path, lane int, sameDir bool) {
		sign := 1.0
		if !sameDir {
			sign = -1.0
		}
		for _, t := range pool {
			mc := t.path.Current()
			rel := curve.ToLocal(ref, mc.AbsolutePosition().Position)
			for _, ds := range p.Distance(mc) {
				out = append(out, TargetInfo{Agent: t.name, X: rel.X, Y: rel.Y, Distance: sign * ds, D: mc.D(), Lane: lane})
			}
		}
	}

	collect(a.path, 0, true)

	neighbors, err := a.path.NeighboredPaths(a.track)
	if err != nil {
		return nil, opErr(OpTargets, err)
	}
	for _, n := range neighbors {
		collect(n.Path, n.Info.Index, n.Path.Current().EdgeRef().IsForward() == own.EdgeRef().IsForward())
	}

	if radius > 0 {
		filtered := out[:0]
		for _, t := range out {
			if math.Abs(t.Distance) <= radius {
				filtered = append(filtered, t)
			}
		}
		out = filtered
	}

	sort.SliceStable(out, func(i, j int) bool {
		return math.Abs(out[i].Distance) < math.Abs(out[j].Distance)
	})
	return out, nil
}
