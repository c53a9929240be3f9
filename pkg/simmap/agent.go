package simmap

import (
	"math"

	"github.com/JensKlimke/SimMap-sub000/domain"
	"github.com/JensKlimke/SimMap-sub000/pkg/curve"
	"github.com/JensKlimke/SimMap-sub000/pkg/engine/lanepath"
	"github.com/JensKlimke/SimMap-sub000/pkg/engine/mapcoord"
	"github.com/golang/geo/r3"
)

// MatchWidthFactor widens the search interval of Match relative to the travelled distance.
const MatchWidthFactor = 1.1

// MapPosition is a position on a lane edge given by the edge name.
type MapPosition struct {
	Edge string  `json:"edge"`
	S    float64 `json:"s"`
	D    float64 `json:"d"`
}

func mapPosition(mc mapcoord.MapCoordinate) MapPosition {
	return MapPosition{Edge: mc.EdgeRef().Name(), S: mc.S(), D: mc.D()}
}

// SetTrack sets the roads the agent follows. Roads are given as "+r" or "r" for the
// reference direction and "-r" against it.
func (e *Environment) SetTrack(h AgentHandle, roads []string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	a, err := e.agent(h)
	if err != nil {
		return opErr(OpSetTrack, err)
	}

	track, err := lanepath.ParseTrack(roads)
	if err != nil {
		return opErr(OpSetTrack, err)
	}
	for _, el := range track {
		if _, ok := a.m.Roads[el.Road]; !ok {
			return opErr(OpSetTrack, domain.WrapErrorf(nil, domain.ErrInvalidArgument, "road %s does not exist", el.Road))
		}
	}

	a.track = track
	return nil
}

// Track returns the track of the agent.
func (e *Environment) Track(h AgentHandle) ([]string, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	a, err := e.agent(h)
	if err != nil {
		return nil, opErr(OpSetTrack, err)
	}
	return a.track.Strings(), nil
}

// Position returns the absolute position of the agent.
func (e *Environment) Position(h AgentHandle) (curve.CurvePoint, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	a, err := e.agent(h)
	if err != nil {
		return curve.CurvePoint{}, opErr(OpPosition, err)
	}
	if len(a.track) == 0 {
		return curve.CurvePoint{}, opErr(OpPosition, domain.WrapErrorf(nil, domain.ErrInvalidArgument, "agent %s has no track", a.name))
	}
	if a.path == nil {
		return curve.CurvePoint{}, opErr(OpPosition, domain.WrapErrorf(nil, domain.ErrRuntime, "agent %s has no position", a.name))
	}
	return a.path.Current().AbsolutePosition(), nil
}

// SetMapPosition places the agent at pos and creates its path with lenHead ahead and lenBack
// behind. It returns the lengths that could be reached along the track.
func (e *Environment) SetMapPosition(h AgentHandle, pos MapPosition, lenHead, lenBack float64) (float64, float64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	a, err := e.agent(h)
	if err != nil {
		return 0, 0, opErr(OpSetMapPosition, err)
	}

	id, ok := a.m.Graph.Lookup(pos.Edge)
	if !ok {
		return 0, 0, opErr(OpSetMapPosition, domain.WrapErrorf(nil, domain.ErrNotFound, "edge %s does not exist", pos.Edge))
	}
	mc, err := mapcoord.New(a.m.Graph, id, pos.S, pos.D)
	if err != nil {
		return 0, 0, opErr(OpSetMapPosition, err)
	}

	p, err := lanepath.Create(a.m.Graph, a.track, lenHead, lenBack, mc)
	if err != nil {
		return 0, 0, opErr(OpSetMapPosition, err)
	}
	a.path = p
	return p.DistanceToHead(), p.DistanceToBack(), nil
}

// MapPosition returns the lane position of the agent.
func (e *Environment) MapPosition(h AgentHandle) (MapPosition, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	a, err := e.positioned(h)
	if err != nil {
		return MapPosition{}, opErr(OpMapPosition, err)
	}
	return mapPosition(a.path.Current()), nil
}

// Match finds the position on the agent's path closest to xyz around the expected travel
// distance ds. It returns the matched lane position, with the lateral offset towards xyz,
// and the matched distance from the agent. The agent is not moved.
func (e *Environment) Match(h AgentHandle, xyz r3.Vector, ds float64) (MapPosition, float64, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	a, err := e.positioned(h)
	if err != nil {
		return MapPosition{}, 0, opErr(OpMatch, err)
	}

	s, _ := a.path.Match(xyz, ds, math.Abs(ds)*MatchWidthFactor)
	mc, err := a.path.PositionAt(s, 0)
	if err != nil {
		return MapPosition{}, 0, opErr(OpMatch, err)
	}

	pos := mapPosition(mc)
	pos.D = curve.ToLocal(mc.AbsolutePosition(), xyz).Y
	return pos, s, nil
}

// Move moves the agent by distance along its path, sets the lateral offset d and rebuilds
// the path with lenHead and lenBack. It returns the reached lengths.
func (e *Environment) Move(h AgentHandle, distance, d, lenHead, lenBack float64) (float64, float64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	a, err := e.positioned(h)
	if err != nil {
		return 0, 0, opErr(OpMove, err)
	}

	p := a.path
	if distance > p.DistanceToHead() || distance < -p.DistanceToBack() {
		return 0, 0, opErr(OpMove, domain.WrapErrorf(nil, domain.ErrOutOfRange,
			"distance %g outside of path [%g, %g]", distance, -p.DistanceToBack(), p.DistanceToHead()))
	}

	next := p.Clone()
	if err := next.Position(distance, d); err != nil {
		return 0, 0, opErr(OpMove, err)
	}
	if err := next.UpdatePath(lenHead, lenBack, a.track); err != nil {
		return 0, 0, opErr(OpMove, err)
	}
	a.path = next
	return next.DistanceToHead(), next.DistanceToBack(), nil
}

// SwitchLane moves the agent to the neighbored lane with the given index (positive to the
// left). The path keeps its lengths.
func (e *Environment) SwitchLane(h AgentHandle, offset int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	a, err := e.positioned(h)
	if err != nil {
		return opErr(OpSwitchLane, err)
	}

	neighbors, err := a.path.NeighboredPaths(a.track)
	if err != nil {
		return opErr(OpSwitchLane, err)
	}

	for _, n := range neighbors {
		if n.Info.Index != offset {
			continue
		}
		if !n.Info.SameDir {
			return opErr(OpSwitchLane, domain.WrapErrorf(nil, domain.ErrInvalidArgument, "lane %d runs in the opposite direction", offset))
		}
		if !n.Info.Accessible {
			return opErr(OpSwitchLane, domain.WrapErrorf(nil, domain.ErrRuntime, "lane %d is not accessible", offset))
		}

		p, err := lanepath.Create(a.m.Graph, a.track, a.path.DistanceToHead(), a.path.DistanceToBack(), n.Path.Current())
		if err != nil {
			return opErr(OpSwitchLane, err)
		}
		a.path = p
		return nil
	}
	return opErr(OpSwitchLane, domain.WrapErrorf(nil, domain.ErrNotFound, "no lane with index %d", offset))
}

// Path returns a copy of the agent's path.
func (e *Environment) Path(h AgentHandle) (*lanepath.Path, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	a, err := e.positioned(h)
	if err != nil {
		return nil, opErr(OpMapPosition, err)
	}
	return a.path.Clone(), nil
}
