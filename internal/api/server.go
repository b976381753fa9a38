// Package api exposes the planner over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/paulmach/orb"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"agent-pathfinder/internal/grid"
	"agent-pathfinder/internal/navigation"
	"agent-pathfinder/internal/obstacle"
	"agent-pathfinder/internal/waypoint"
)

// Point is a ground-plane position.
type Point struct {
	X float64 `json:"x"`
	Z float64 `json:"z"`
}

func (p Point) orb() orb.Point { return orb.Point{p.X, p.Z} }

// GridRouteRequest asks for a cell path between two ground positions.
// Agent 0 requests a one-shot path that is not kept after the response.
// Negative agents are rejected.
type GridRouteRequest struct {
	Agent     int     `json:"agent,omitempty"`
	Start     Point   `json:"start"`
	End       Point   `json:"end"`
	Obstacles []Point `json:"obstacles,omitempty"`
}

// WaypointRouteRequest asks for a waypoint path between two world positions.
type WaypointRouteRequest struct {
	Agent     int           `json:"agent,omitempty"`
	Start     waypoint.Vec3 `json:"start"`
	End       waypoint.Vec3 `json:"end"`
	Obstacles []Point       `json:"obstacles,omitempty"`
}

// AdvanceRequest reports an agent's current position.
type AdvanceRequest struct {
	Position waypoint.Vec3 `json:"position"`
	Radius   float64       `json:"radius,omitempty"`
}

// RouteResponse is returned by every route and agent endpoint.
type RouteResponse struct {
	Success   bool              `json:"success"`
	Status    navigation.Status `json:"status"`
	Reason    navigation.Reason `json:"reason,omitempty"`
	Message   string            `json:"message,omitempty"`
	Path      []waypoint.Vec3   `json:"path"`
	Cells     []grid.Cell       `json:"cells,omitempty"`
	Waypoints []int             `json:"waypoints,omitempty"`
	Goal      waypoint.Vec3     `json:"goal"`
	Distance  float64           `json:"distance,omitempty"`
	Expanded  int               `json:"expanded"`
}

// Options configures a Server.
type Options struct {
	Planner  *navigation.Planner
	Graph    *waypoint.Graph
	Width    int
	Height   int
	Static   obstacle.Set
	Logger   *slog.Logger
	Gatherer prometheus.Gatherer
}

// Server serialises planner steps triggered by HTTP requests.
type Server struct {
	mu sync.Mutex

	planner  *navigation.Planner
	graph    *waypoint.Graph
	width    int
	height   int
	static   obstacle.Set
	logger   *slog.Logger
	gatherer prometheus.Gatherer

	nextOneShot navigation.RequesterID
}

// NewServer creates a server over the planner in opts.
func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return &Server{
		planner:  opts.Planner,
		graph:    opts.Graph,
		width:    opts.Width,
		height:   opts.Height,
		static:   opts.Static,
		logger:   logger,
		gatherer: gatherer,
	}
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Post("/route/grid", s.routeGrid)
	r.Post("/route/waypoints", s.routeWaypoints)
	r.Get("/agents/{id}", s.pollAgent)
	r.Post("/agents/{id}/advance", s.advanceAgent)
	r.Delete("/agents/{id}", s.removeAgent)
	r.Get("/graph/lines", s.graphLines)
	r.Get("/graph/geojson", s.graphGeoJSON)
	r.Get("/health", s.health)
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// POST /route/grid
func (s *Server) routeGrid(w http.ResponseWriter, r *http.Request) {
	var req GridRouteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("route grid: invalid request body", "error", err)
		return
	}
	if req.Agent < 0 {
		http.Error(w, "Invalid agent id", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, oneShot := s.requesterFor(req.Agent)
	if oneShot {
		defer s.planner.Remove(id)
	}

	s.planner.RequestGridPathWorld(id, req.Start.orb(), req.End.orb())
	s.planner.Step(s.obstacleCells(req.Obstacles))
	resp := s.respond(id)

	s.logger.Info("grid route",
		"agent", id,
		"start", req.Start,
		"end", req.End,
		"success", resp.Success,
		"points", len(resp.Path),
		"expanded", resp.Expanded)
	writeJSON(w, http.StatusOK, resp, s.logger)
}

// POST /route/waypoints
func (s *Server) routeWaypoints(w http.ResponseWriter, r *http.Request) {
	var req WaypointRouteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("route waypoints: invalid request body", "error", err)
		return
	}
	if req.Agent < 0 {
		http.Error(w, "Invalid agent id", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, oneShot := s.requesterFor(req.Agent)
	if oneShot {
		defer s.planner.Remove(id)
	}

	if _, err := s.planner.RequestWaypointPath(id, req.Start, req.End); err != nil {
		if errors.Is(err, waypoint.ErrEmptyGraph) {
			http.Error(w, "Waypoint graph not built", http.StatusBadRequest)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		s.logger.Error("route waypoints: request failed", "error", err)
		return
	}
	s.planner.Step(s.obstacleCells(req.Obstacles))
	resp := s.respond(id)

	s.logger.Info("waypoint route",
		"agent", id,
		"success", resp.Success,
		"points", len(resp.Path),
		"distance", resp.Distance)
	writeJSON(w, http.StatusOK, resp, s.logger)
}

// GET /agents/{id}
func (s *Server) pollAgent(w http.ResponseWriter, r *http.Request) {
	id, ok := agentID(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.respond(id), s.logger)
}

// POST /agents/{id}/advance
func (s *Server) advanceAgent(w http.ResponseWriter, r *http.Request) {
	id, ok := agentID(w, r)
	if !ok {
		return
	}
	var req AdvanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next, following := s.planner.Advance(id, req.Position, req.Radius)
	writeJSON(w, http.StatusOK, map[string]any{
		"following": following,
		"next":      next,
	}, s.logger)
}

// DELETE /agents/{id}
func (s *Server) removeAgent(w http.ResponseWriter, r *http.Request) {
	id, ok := agentID(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.planner.Remove(id)
	w.WriteHeader(http.StatusNoContent)
}

// GET /graph/lines
func (s *Server) graphLines(w http.ResponseWriter, r *http.Request) {
	if s.graph == nil {
		http.Error(w, "Waypoint graph not built", http.StatusBadRequest)
		return
	}
	lines := s.graph.LineStrings()
	writeJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"lines":        lines,
		"numWaypoints": s.graph.Len(),
		"numEdges":     len(lines),
	}, s.logger)
}

// GET /graph/geojson
func (s *Server) graphGeoJSON(w http.ResponseWriter, r *http.Request) {
	if s.graph == nil {
		http.Error(w, "Waypoint graph not built", http.StatusBadRequest)
		return
	}
	data, err := s.graph.FeatureCollection().MarshalJSON()
	if err != nil {
		http.Error(w, "Failed to encode graph", http.StatusInternalServerError)
		s.logger.Error("graph geojson encode failed", "error", err)
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	w.Write(data)
}

// GET /health
func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	numWaypoints := 0
	if s.graph != nil {
		numWaypoints = s.graph.Len()
	}
	occ := s.planner.Occupancy()

	writeJSON(w, http.StatusOK, map[string]any{
		"status":       "ready",
		"gridWidth":    occ.Width(),
		"gridHeight":   occ.Height(),
		"blockedCells": occ.BlockedCount(),
		"numWaypoints": numWaypoints,
	}, s.logger)
}

// requesterFor returns the planner id for a positive agent, or a fresh
// negative id for one-shot requests.
func (s *Server) requesterFor(agent int) (navigation.RequesterID, bool) {
	if agent != 0 {
		return navigation.RequesterID(agent), false
	}
	s.nextOneShot--
	return s.nextOneShot, true
}

func (s *Server) obstacleCells(extra []Point) []grid.Cell {
	set := obstacle.Set{
		Points:   append([]orb.Point(nil), s.static.Points...),
		Polygons: s.static.Polygons,
	}
	for _, p := range extra {
		set.Points = append(set.Points, p.orb())
	}
	return set.Cells(s.planner.Frame(), s.width, s.height)
}

func (s *Server) respond(id navigation.RequesterID) RouteResponse {
	res := s.planner.Poll(id)
	resp := RouteResponse{
		Success:  res.Status == navigation.StatusSuccess,
		Status:   res.Status,
		Reason:   res.Reason,
		Goal:     res.Goal,
		Expanded: res.ExpandedNodes,
		Path:     []waypoint.Vec3{},
	}
	if res.Err != nil {
		resp.Message = res.Err.Error()
	}
	if res.Path != nil {
		resp.Path = res.Path.RemainingPoints()
		resp.Cells = res.Path.RemainingCells()
		if n := len(res.Path.Waypoints); n > 0 {
			resp.Waypoints = res.Path.Waypoints[n-len(resp.Path):]
		}
		for i := 1; i < len(resp.Path); i++ {
			resp.Distance += resp.Path[i-1].Distance(resp.Path[i])
		}
	}
	return resp
}

func agentID(w http.ResponseWriter, r *http.Request) (navigation.RequesterID, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		http.Error(w, "Invalid agent id", http.StatusBadRequest)
		return 0, false
	}
	return navigation.RequesterID(id), true
}

func writeJSON(w http.ResponseWriter, status int, body any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("response encode failed", "error", err)
	}
}
