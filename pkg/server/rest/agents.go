package rest

import (
	"net/http"

	"github.com/JensKlimke/SimMap-sub000/pkg/shape"
	"github.com/JensKlimke/SimMap-sub000/pkg/simmap"
	"github.com/JensKlimke/SimMap-sub000/pkg/util"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/golang/geo/r3"
)

type AgentHandler struct {
	env          Environment
	promeMetrics *metrics
}

func AgentRouter(r chi.Router, env Environment, m *metrics) {
	handler := &AgentHandler{env, m}

	r.Route("/agents", func(r chi.Router) {
		r.Post("/", handler.register)
		r.Get("/", handler.list)
		r.Route("/{name}", func(r chi.Router) {
			r.Delete("/", handler.unregister)
			r.Put("/track", handler.setTrack)
			r.Get("/track", handler.track)
			r.Get("/position", handler.position)
			r.Put("/map-position", handler.setMapPosition)
			r.Get("/map-position", handler.mapPosition)
			r.Post("/match", handler.match)
			r.Post("/move", handler.move)
			r.Post("/switch-lane", handler.switchLane)
			r.Post("/horizon", handler.horizon)
			r.Get("/objects", handler.objects)
			r.Get("/lanes", handler.lanes)
			r.Get("/targets", handler.targets)
			r.Get("/path.geojson", handler.pathGeoJSON)
			r.Get("/path.polyline", handler.pathPolyline)
		})
	})
}

// done counts an agent operation by its result code.
func (h *AgentHandler) done(op simmap.Op, err error) {
	h.promeMetrics.agentOps.WithLabelValues(op.String(), codeLabel(err)).Inc()
}

func codeLabel(err error) string {
	if err == nil {
		return "ok"
	}
	return http.StatusText(getStatusCode(err))
}

// agent resolves the agent of the path parameter name, rendering the error if there is none.
func (h *AgentHandler) agent(w http.ResponseWriter, r *http.Request) (simmap.AgentHandle, bool) {
	ah, err := h.env.Agent(chi.URLParam(r, "name"))
	if err != nil {
		render.Render(w, r, ErrChi(err))
		return 0, false
	}
	return ah, true
}

// bind decodes and validates the request body into data.
func bind(w http.ResponseWriter, r *http.Request, data render.Binder) bool {
	if err := render.Bind(r, data); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return false
	}
	if rerr := validate(data); rerr != nil {
		render.Render(w, r, rerr)
		return false
	}
	return true
}

type RegisterAgentRequest struct {
	Name string           `json:"name" validate:"omitempty,max=128"`
	Map  simmap.MapHandle `json:"map" validate:"required"`
}

func (s *RegisterAgentRequest) Bind(r *http.Request) error {
	return nil
}

type AgentResponse struct {
	Handle simmap.AgentHandle `json:"handle"`
	Name   string             `json:"name"`
}

func (h *AgentHandler) register(w http.ResponseWriter, r *http.Request) {
	data := &RegisterAgentRequest{}
	if !bind(w, r, data) {
		return
	}

	ah, err := h.env.RegisterAgent(data.Name, data.Map)
	h.done(simmap.OpRegisterAgent, err)
	if err != nil {
		render.Render(w, r, ErrChi(err))
		return
	}

	name := data.Name
	for _, a := range h.env.Agents() {
		if a.Handle == ah {
			name = a.Name
		}
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, &AgentResponse{Handle: ah, Name: name})
}

func (h *AgentHandler) list(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusOK)
	render.JSON(w, r, h.env.Agents())
}

func (h *AgentHandler) unregister(w http.ResponseWriter, r *http.Request) {
	ah, ok := h.agent(w, r)
	if !ok {
		return
	}
	err := h.env.UnregisterAgent(ah)
	h.done(simmap.OpUnregisterAgent, err)
	if err != nil {
		render.Render(w, r, ErrChi(err))
		return
	}
	render.NoContent(w, r)
}

// TrackRequest lists the roads of the track, "-" prefixed against the reference direction.
type TrackRequest struct {
	Roads []string `json:"roads" validate:"required,min=1,dive,required"`
}

func (s *TrackRequest) Bind(r *http.Request) error {
	return nil
}

type TrackResponse struct {
	Roads []string `json:"roads"`
}

func (h *AgentHandler) setTrack(w http.ResponseWriter, r *http.Request) {
	ah, ok := h.agent(w, r)
	if !ok {
		return
	}
	data := &TrackRequest{}
	if !bind(w, r, data) {
		return
	}

	err := h.env.SetTrack(ah, data.Roads)
	h.done(simmap.OpSetTrack, err)
	if err != nil {
		render.Render(w, r, ErrChi(err))
		return
	}
	h.track(w, r)
}

func (h *AgentHandler) track(w http.ResponseWriter, r *http.Request) {
	ah, ok := h.agent(w, r)
	if !ok {
		return
	}
	roads, err := h.env.Track(ah)
	if err != nil {
		render.Render(w, r, ErrChi(err))
		return
	}
	render.Status(r, http.StatusOK)
	render.JSON(w, r, &TrackResponse{Roads: roads})
}

type PositionResponse struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Z         float64 `json:"z"`
	Psi       float64 `json:"psi"`
	Curvature float64 `json:"kappa"`
}

func (h *AgentHandler) position(w http.ResponseWriter, r *http.Request) {
	ah, ok := h.agent(w, r)
	if !ok {
		return
	}
	p, err := h.env.Position(ah)
	h.done(simmap.OpPosition, err)
	if err != nil {
		render.Render(w, r, ErrChi(err))
		return
	}
	render.Status(r, http.StatusOK)
	render.JSON(w, r, &PositionResponse{
		X:         p.Position.X,
		Y:         p.Position.Y,
		Z:         p.Position.Z,
		Psi:       p.Angle,
		Curvature: p.Curvature,
	})
}

type SetMapPositionRequest struct {
	Edge    string  `json:"edge" validate:"required"`
	S       float64 `json:"s" validate:"gte=0"`
	D       float64 `json:"d"`
	LenHead float64 `json:"lenHead" validate:"gte=0"`
	LenBack float64 `json:"lenBack" validate:"gte=0"`
}

func (s *SetMapPositionRequest) Bind(r *http.Request) error {
	return nil
}

// PathLengthResponse holds the path lengths reached ahead and behind the agent.
type PathLengthResponse struct {
	Head float64 `json:"head"`
	Back float64 `json:"back"`
}

func (h *AgentHandler) setMapPosition(w http.ResponseWriter, r *http.Request) {
	ah, ok := h.agent(w, r)
	if !ok {
		return
	}
	data := &SetMapPositionRequest{}
	if !bind(w, r, data) {
		return
	}

	head, back, err := h.env.SetMapPosition(ah, simmap.MapPosition{Edge: data.Edge, S: data.S, D: data.D}, data.LenHead, data.LenBack)
	h.done(simmap.OpSetMapPosition, err)
	if err != nil {
		render.Render(w, r, ErrChi(err))
		return
	}
	render.Status(r, http.StatusOK)
	render.JSON(w, r, &PathLengthResponse{Head: head, Back: back})
}

func (h *AgentHandler) mapPosition(w http.ResponseWriter, r *http.Request) {
	ah, ok := h.agent(w, r)
	if !ok {
		return
	}
	mp, err := h.env.MapPosition(ah)
	h.done(simmap.OpMapPosition, err)
	if err != nil {
		render.Render(w, r, ErrChi(err))
		return
	}
	render.Status(r, http.StatusOK)
	render.JSON(w, r, mp)
}

type MatchRequest struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Z        float64 `json:"z"`
	Distance float64 `json:"distance"`
}

func (s *MatchRequest) Bind(r *http.Request) error {
	return nil
}

type MatchResponse struct {
	simmap.MapPosition
	Distance float64 `json:"distance"`
}

func (h *AgentHandler) match(w http.ResponseWriter, r *http.Request) {
	ah, ok := h.agent(w, r)
	if !ok {
		return
	}
	data := &MatchRequest{}
	if !bind(w, r, data) {
		return
	}

	mp, s, err := h.env.Match(ah, r3.Vector{X: data.X, Y: data.Y, Z: data.Z}, data.Distance)
	h.done(simmap.OpMatch, err)
	if err != nil {
		render.Render(w, r, ErrChi(err))
		return
	}
	render.Status(r, http.StatusOK)
	render.JSON(w, r, &MatchResponse{MapPosition: mp, Distance: s})
}

type MoveRequest struct {
	Distance float64 `json:"distance"`
	D        float64 `json:"d"`
	LenHead  float64 `json:"lenHead" validate:"gte=0"`
	LenBack  float64 `json:"lenBack" validate:"gte=0"`
}

func (s *MoveRequest) Bind(r *http.Request) error {
	return nil
}

func (h *AgentHandler) move(w http.ResponseWriter, r *http.Request) {
	ah, ok := h.agent(w, r)
	if !ok {
		return
	}
	data := &MoveRequest{}
	if !bind(w, r, data) {
		return
	}

	head, back, err := h.env.Move(ah, data.Distance, data.D, data.LenHead, data.LenBack)
	h.done(simmap.OpMove, err)
	if err != nil {
		render.Render(w, r, ErrChi(err))
		return
	}
	render.Status(r, http.StatusOK)
	render.JSON(w, r, &PathLengthResponse{Head: head, Back: back})
}

type SwitchLaneRequest struct {
	Offset int `json:"offset" validate:"required"`
}

func (s *SwitchLaneRequest) Bind(r *http.Request) error {
	return nil
}

func (h *AgentHandler) switchLane(w http.ResponseWriter, r *http.Request) {
	ah, ok := h.agent(w, r)
	if !ok {
		return
	}
	data := &SwitchLaneRequest{}
	if !bind(w, r, data) {
		return
	}

	err := h.env.SwitchLane(ah, data.Offset)
	h.done(simmap.OpSwitchLane, err)
	if err != nil {
		render.Render(w, r, ErrChi(err))
		return
	}
	h.mapPosition(w, r)
}

type HorizonRequest struct {
	Grid []float64 `json:"grid" validate:"required,min=1,max=10000"`
}

func (s *HorizonRequest) Bind(r *http.Request) error {
	return nil
}

// HorizonPointResponse is a horizon sample. S is null for grid points beyond the path.
type HorizonPointResponse struct {
	S          *float64 `json:"s"`
	X          float64  `json:"x"`
	Y          float64  `json:"y"`
	Psi        float64  `json:"psi"`
	Kappa      float64  `json:"kappa"`
	LaneWidth  float64  `json:"laneWidth"`
	RightWidth float64  `json:"rightWidth"`
	LeftWidth  float64  `json:"leftWidth"`
}

func (h *AgentHandler) horizon(w http.ResponseWriter, r *http.Request) {
	ah, ok := h.agent(w, r)
	if !ok {
		return
	}
	data := &HorizonRequest{}
	if !bind(w, r, data) {
		return
	}

	hz, err := h.env.Horizon(ah, data.Grid)
	h.done(simmap.OpHorizon, err)
	if err != nil {
		render.Render(w, r, ErrChi(err))
		return
	}

	resp := make([]HorizonPointResponse, 0, len(hz))
	for _, p := range hz {
		resp = append(resp, HorizonPointResponse{
			S:          util.RoundNullable(p.S, 6),
			X:          p.X,
			Y:          p.Y,
			Psi:        p.Psi,
			Kappa:      p.Kappa,
			LaneWidth:  p.LaneWidth,
			RightWidth: p.RightWidth,
			LeftWidth:  p.LeftWidth,
		})
	}
	render.Status(r, http.StatusOK)
	render.JSON(w, r, resp)
}

func (h *AgentHandler) objects(w http.ResponseWriter, r *http.Request) {
	ah, ok := h.agent(w, r)
	if !ok {
		return
	}
	objs, err := h.env.Objects(ah)
	h.done(simmap.OpObjects, err)
	if err != nil {
		render.Render(w, r, ErrChi(err))
		return
	}
	render.Status(r, http.StatusOK)
	render.JSON(w, r, objs)
}

func (h *AgentHandler) lanes(w http.ResponseWriter, r *http.Request) {
	ah, ok := h.agent(w, r)
	if !ok {
		return
	}
	lanes, err := h.env.Lanes(ah)
	h.done(simmap.OpLanes, err)
	if err != nil {
		render.Render(w, r, ErrChi(err))
		return
	}
	render.Status(r, http.StatusOK)
	render.JSON(w, r, lanes)
}

func (h *AgentHandler) targets(w http.ResponseWriter, r *http.Request) {
	ah, ok := h.agent(w, r)
	if !ok {
		return
	}
	radius, err := util.FloatParam(r.URL.Query(), "radius", 0)
	if err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	tars, err := h.env.Targets(ah, radius)
	h.done(simmap.OpTargets, err)
	if err != nil {
		render.Render(w, r, ErrChi(err))
		return
	}
	if tars == nil {
		tars = []simmap.TargetInfo{}
	}
	render.Status(r, http.StatusOK)
	render.JSON(w, r, tars)
}

func (h *AgentHandler) pathGeoJSON(w http.ResponseWriter, r *http.Request) {
	ah, ok := h.agent(w, r)
	if !ok {
		return
	}
	step, err := util.FloatParam(r.URL.Query(), "step", shape.DefaultStep)
	if err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	p, err := h.env.Path(ah)
	if err != nil {
		render.Render(w, r, ErrChi(err))
		return
	}
	f, err := shape.PathFeature(p, step)
	if err != nil {
		render.Render(w, r, ErrChi(err))
		return
	}
	writeGeoJSON(w, r, f)
}

type PolylineResponse struct {
	Polyline string `json:"polyline"`
}

func (h *AgentHandler) pathPolyline(w http.ResponseWriter, r *http.Request) {
	ah, ok := h.agent(w, r)
	if !ok {
		return
	}
	step, err := util.FloatParam(r.URL.Query(), "step", shape.DefaultStep)
	if err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	p, err := h.env.Path(ah)
	if err != nil {
		render.Render(w, r, ErrChi(err))
		return
	}
	ls, err := shape.Path(p, step)
	if err != nil {
		render.Render(w, r, ErrChi(err))
		return
	}
	render.Status(r, http.StatusOK)
	render.JSON(w, r, &PolylineResponse{Polyline: shape.Polyline(ls)})
}
