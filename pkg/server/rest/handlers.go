package rest

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/JensKlimke/SimMap-sub000/domain"
	"github.com/JensKlimke/SimMap-sub000/pkg/curve"
	"github.com/JensKlimke/SimMap-sub000/pkg/engine/lanepath"
	"github.com/JensKlimke/SimMap-sub000/pkg/roadmap"
	"github.com/JensKlimke/SimMap-sub000/pkg/shape"
	"github.com/JensKlimke/SimMap-sub000/pkg/simmap"
	"github.com/JensKlimke/SimMap-sub000/pkg/util"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/golang/geo/r3"
)

type Environment interface {
	LoadMap(def *roadmap.Definition) (simmap.MapHandle, error)
	UnloadMap(h simmap.MapHandle) error
	Map(h simmap.MapHandle) (*roadmap.Map, error)
	Maps() []simmap.MapInfo
	Clear()

	RegisterAgent(name string, h simmap.MapHandle) (simmap.AgentHandle, error)
	UnregisterAgent(h simmap.AgentHandle) error
	Agent(name string) (simmap.AgentHandle, error)
	Agents() []simmap.AgentInfo

	SetTrack(h simmap.AgentHandle, roads []string) error
	Track(h simmap.AgentHandle) ([]string, error)
	Position(h simmap.AgentHandle) (curve.CurvePoint, error)
	SetMapPosition(h simmap.AgentHandle, pos simmap.MapPosition, lenHead, lenBack float64) (float64, float64, error)
	MapPosition(h simmap.AgentHandle) (simmap.MapPosition, error)
	Match(h simmap.AgentHandle, xyz r3.Vector, ds float64) (simmap.MapPosition, float64, error)
	Move(h simmap.AgentHandle, distance, d, lenHead, lenBack float64) (float64, float64, error)
	SwitchLane(h simmap.AgentHandle, offset int) error
	Path(h simmap.AgentHandle) (*lanepath.Path, error)

	Horizon(h simmap.AgentHandle, grid []float64) ([]simmap.HorizonPoint, error)
	Objects(h simmap.AgentHandle) ([]simmap.ObjectInfo, error)
	Lanes(h simmap.AgentHandle) ([]simmap.LaneInfo, error)
	Targets(h simmap.AgentHandle, radius float64) ([]simmap.TargetInfo, error)
}

type MapStore interface {
	Put(def *roadmap.Definition) error
	Get(name string) (*roadmap.Definition, error)
	List() ([]string, error)
	Delete(name string) error
}

type MapHandler struct {
	env          Environment
	store        MapStore
	promeMetrics *metrics
}

// MapRouter mounts the map routes. The store routes are left out when store is nil.
func MapRouter(r chi.Router, env Environment, store MapStore, m *metrics) {
	handler := &MapHandler{env, store, m}

	r.Route("/maps", func(r chi.Router) {
		r.Post("/", handler.loadMap)
		r.Get("/", handler.listMaps)
		r.Delete("/", handler.clear)
		r.Route("/{handle}", func(r chi.Router) {
			r.Delete("/", handler.unloadMap)
			r.Get("/locate", handler.locate)
			r.Get("/lanes.geojson", handler.lanesGeoJSON)
			if store != nil {
				r.Post("/store", handler.storeMap)
			}
		})
	})

	if store != nil {
		r.Route("/store", func(r chi.Router) {
			r.Get("/", handler.listStored)
			r.Delete("/{name}", handler.deleteStored)
		})
	}
}

// LoadMapRequest loads either the given definition or a map from the store.
type LoadMapRequest struct {
	Definition *roadmap.Definition `json:"definition"`
	Stored     string              `json:"stored" validate:"omitempty,max=256"`
}

func (s *LoadMapRequest) Bind(r *http.Request) error {
	if s.Definition == nil && s.Stored == "" {
		return errors.New("definition or stored map name required")
	}
	return nil
}

type MapResponse struct {
	Handle simmap.MapHandle `json:"handle"`
	Name   string           `json:"name"`
}

func mapHandle(r *http.Request) (simmap.MapHandle, error) {
	h, err := strconv.ParseUint(chi.URLParam(r, "handle"), 10, 64)
	if err != nil {
		return 0, domain.WrapErrorf(err, domain.ErrInvalidArgument, "invalid map handle")
	}
	return simmap.MapHandle(h), nil
}

func (h *MapHandler) loadMap(w http.ResponseWriter, r *http.Request) {
	data := &LoadMapRequest{}
	if err := render.Bind(r, data); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	if rerr := validate(data); rerr != nil {
		render.Render(w, r, rerr)
		return
	}

	def := data.Definition
	if def == nil {
		if h.store == nil {
			render.Render(w, r, ErrInvalidRequest(errors.New("no map store configured")))
			return
		}
		var err error
		if def, err = h.store.Get(data.Stored); err != nil {
			render.Render(w, r, ErrChi(err))
			return
		}
	}

	mh, err := h.env.LoadMap(def)
	if err != nil {
		render.Render(w, r, ErrChi(err))
		return
	}
	h.promeMetrics.loadedMaps.Inc()

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, &MapResponse{Handle: mh, Name: def.Name})
}

func (h *MapHandler) listMaps(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusOK)
	render.JSON(w, r, h.env.Maps())
}

func (h *MapHandler) clear(w http.ResponseWriter, r *http.Request) {
	h.env.Clear()
	h.promeMetrics.loadedMaps.Set(0)
	render.NoContent(w, r)
}

func (h *MapHandler) unloadMap(w http.ResponseWriter, r *http.Request) {
	mh, err := mapHandle(r)
	if err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	if err := h.env.UnloadMap(mh); err != nil {
		render.Render(w, r, ErrChi(err))
		return
	}
	h.promeMetrics.loadedMaps.Dec()
	render.NoContent(w, r)
}

// LocationResponse is a lane position close to the query point.
type LocationResponse struct {
	simmap.MapPosition
	Distance float64 `json:"distance"`
}

func (h *MapHandler) locate(w http.ResponseWriter, r *http.Request) {
	mh, err := mapHandle(r)
	if err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	q := r.URL.Query()
	x, err := util.FloatParam(q, "x", 0)
	if err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	y, err := util.FloatParam(q, "y", 0)
	if err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	radius, err := util.FloatParam(q, "radius", 1)
	if err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}

	m, err := h.env.Map(mh)
	if err != nil {
		render.Render(w, r, ErrChi(err))
		return
	}
	locs, err := m.Locate(x, y, radius)
	if err != nil {
		render.Render(w, r, ErrChi(err))
		return
	}

	resp := make([]LocationResponse, 0, len(locs))
	for _, l := range locs {
		mc := l.Coordinate
		resp = append(resp, LocationResponse{
			MapPosition: simmap.MapPosition{Edge: mc.EdgeRef().Name(), S: mc.S(), D: mc.D()},
			Distance:    util.RoundFloat(l.Distance, 3),
		})
	}
	render.Status(r, http.StatusOK)
	render.JSON(w, r, resp)
}

func (h *MapHandler) lanesGeoJSON(w http.ResponseWriter, r *http.Request) {
	mh, err := mapHandle(r)
	if err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	m, err := h.env.Map(mh)
	if err != nil {
		render.Render(w, r, ErrChi(err))
		return
	}
	fc, err := shape.Lanes(m)
	if err != nil {
		render.Render(w, r, ErrChi(err))
		return
	}
	writeGeoJSON(w, r, fc)
}

func (h *MapHandler) storeMap(w http.ResponseWriter, r *http.Request) {
	mh, err := mapHandle(r)
	if err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	m, err := h.env.Map(mh)
	if err != nil {
		render.Render(w, r, ErrChi(err))
		return
	}
	if err := h.store.Put(m.Definition()); err != nil {
		render.Render(w, r, ErrChi(err))
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, &MapResponse{Handle: mh, Name: m.Name})
}

func (h *MapHandler) listStored(w http.ResponseWriter, r *http.Request) {
	names, err := h.store.List()
	if err != nil {
		render.Render(w, r, ErrChi(err))
		return
	}
	render.Status(r, http.StatusOK)
	render.JSON(w, r, names)
}

func (h *MapHandler) deleteStored(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Delete(chi.URLParam(r, "name")); err != nil {
		render.Render(w, r, ErrChi(err))
		return
	}
	render.NoContent(w, r)
}

type geoJSON interface {
	MarshalJSON() ([]byte, error)
}

func writeGeoJSON(w http.ResponseWriter, r *http.Request, v geoJSON) {
	bb, err := shape.Marshal(v)
	if err != nil {
		render.Render(w, r, ErrInternalServerErrorRend(err))
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(bb)
}
