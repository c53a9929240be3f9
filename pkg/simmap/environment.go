// Package simmap is the agent environment: a registry of loaded road maps and of agents
// moving along lane paths on them.
package simmap

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/JensKlimke/SimMap-sub000/domain"
	"github.com/JensKlimke/SimMap-sub000/pkg/engine/lanepath"
	"github.com/JensKlimke/SimMap-sub000/pkg/roadmap"
	"github.com/google/uuid"
)

type mapEntry struct {
	m *roadmap.Map
}

type agent struct {
	name  string
	mh    MapHandle
	m     *roadmap.Map
	track lanepath.Track
	path  *lanepath.Path
}

// Environment holds maps and agents. All methods are safe for concurrent use.
type Environment struct {
	mu     sync.RWMutex
	maps   slots[mapEntry]
	agents slots[agent]
	names  map[string]AgentHandle

	logger    *slog.Logger
	buildOpts []roadmap.Option
}

type Option func(*Environment)

func WithLogger(l *slog.Logger) Option {
	return func(e *Environment) { e.logger = l }
}

// WithBuildOptions sets the options used by LoadMap to build maps.
func WithBuildOptions(opts ...roadmap.Option) Option {
	return func(e *Environment) { e.buildOpts = opts }
}

func New(opts ...Option) *Environment {
	e := &Environment{
		names:  make(map[string]AgentHandle),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// MapInfo summarizes a loaded map.
type MapInfo struct {
	Handle MapHandle `json:"handle"`
	Name   string    `json:"name"`
	Roads  int       `json:"roads"`
	Edges  int       `json:"edges"`
}

// AgentInfo summarizes a registered agent.
type AgentInfo struct {
	Handle AgentHandle `json:"handle"`
	Name   string      `json:"name"`
	Map    MapHandle   `json:"map"`
	Track  []string    `json:"track"`
}

// Clear unloads all maps and unregisters all agents. Handles issued before stay invalid.
func (e *Environment) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.maps.clear()
	e.agents.clear()
	e.names = make(map[string]AgentHandle)
	e.logger.Info("environment cleared")
}

// LoadMap builds def and adds the map to the environment.
func (e *Environment) LoadMap(def *roadmap.Definition) (MapHandle, error) {
	m, err := roadmap.Build(def, append([]roadmap.Option{roadmap.WithLogger(e.logger)}, e.buildOpts...)...)
	if err != nil {
		return 0, opErr(OpLoadMap, err)
	}
	return e.AddMap(m), nil
}

// AddMap adds an already built map.
func (e *Environment) AddMap(m *roadmap.Map) MapHandle {
	e.mu.Lock()
	defer e.mu.Unlock()

	h := MapHandle(e.maps.add(&mapEntry{m: m}))
	e.logger.Info("map loaded", slog.String("map", m.Name), slog.String("handle", h.String()))
	return h
}

// UnloadMap removes the map h and unregisters all agents on it.
func (e *Environment) UnloadMap(h MapHandle) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.maps.remove(uint64(h)) {
		return opErr(OpUnloadMap, domain.WrapErrorf(nil, ErrUnknownMap, "map %s is not loaded", h))
	}

	var drop []uint64
	e.agents.each(func(ah uint64, a *agent) {
		if a.mh == h {
			drop = append(drop, ah)
		}
	})
	for _, ah := range drop {
		a, _ := e.agents.get(ah)
		delete(e.names, a.name)
		e.agents.remove(ah)
	}

	e.logger.Info("map unloaded", slog.String("handle", h.String()), slog.Int("agents", len(drop)))
	return nil
}

// Map returns the map h.
func (e *Environment) Map(h MapHandle) (*roadmap.Map, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	me, ok := e.maps.get(uint64(h))
	if !ok {
		return nil, domain.WrapErrorf(nil, ErrUnknownMap, "map %s is not loaded", h)
	}
	return me.m, nil
}

// Maps lists the loaded maps.
func (e *Environment) Maps() []MapInfo {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]MapInfo, 0, e.maps.len())
	e.maps.each(func(h uint64, me *mapEntry) {
		out = append(out, MapInfo{
			Handle: MapHandle(h),
			Name:   me.m.Name,
			Roads:  len(me.m.Roads),
			Edges:  me.m.Graph.Len(),
		})
	})
	return out
}

// RegisterAgent adds an agent on map h. An empty name is replaced by a random id.
func (e *Environment) RegisterAgent(name string, h MapHandle) (AgentHandle, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if name == "" {
		name = uuid.NewString()
	}
	if _, ok := e.names[name]; ok {
		return 0, opErr(OpRegisterAgent, domain.WrapErrorf(nil, domain.ErrConflict, "agent %s is already registered", name))
	}

	me, ok := e.maps.get(uint64(h))
	if !ok {
		return 0, opErr(OpRegisterAgent, domain.WrapErrorf(nil, ErrUnknownMap, "map %s is not loaded", h))
	}

	ah := AgentHandle(e.agents.add(&agent{name: name, mh: h, m: me.m}))
	e.names[name] = ah
	e.logger.Debug("agent registered", slog.String("agent", name), slog.String("map", me.m.Name))
	return ah, nil
}

func (e *Environment) UnregisterAgent(h AgentHandle) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	a, err := e.agent(h)
	if err != nil {
		return opErr(OpUnregisterAgent, err)
	}
	delete(e.names, a.name)
	e.agents.remove(uint64(h))
	e.logger.Debug("agent unregistered", slog.String("agent", a.name))
	return nil
}

// Agent looks up the handle of the agent name.
func (e *Environment) Agent(name string) (AgentHandle, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	h, ok := e.names[name]
	if !ok {
		return 0, domain.WrapErrorf(nil, ErrUnknownAgent, "agent %s is not registered", name)
	}
	return h, nil
}

// Agents lists the registered agents ordered by name.
func (e *Environment) Agents() []AgentInfo {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]AgentInfo, 0, e.agents.len())
	e.agents.each(func(h uint64, a *agent) {
		out = append(out, AgentInfo{Handle: AgentHandle(h), Name: a.name, Map: a.mh, Track: a.track.Strings()})
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// agent returns the agent h, its map has to be loaded. The caller holds the lock.
func (e *Environment) agent(h AgentHandle) (*agent, error) {
	a, ok := e.agents.get(uint64(h))
	if !ok {
		return nil, domain.WrapErrorf(nil, ErrUnknownAgent, "agent %s is not registered", h)
	}
	if _, ok := e.maps.get(uint64(a.mh)); !ok {
		return nil, domain.WrapErrorf(nil, ErrUnknownMap, "map of agent %s is not loaded", a.name)
	}
	return a, nil
}

// positioned returns the agent h when its path is set.
func (e *Environment) positioned(h AgentHandle) (*agent, error) {
	a, err := e.agent(h)
	if err != nil {
		return nil, err
	}
	if a.path == nil {
		return nil, domain.WrapErrorf(nil, domain.ErrRuntime, "agent %s has no position", a.name)
	}
	return a, nil
}
