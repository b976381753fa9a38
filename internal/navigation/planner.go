// Package navigation runs path requests through the A* engines once per
// simulation step and hands results back to their requesters.
package navigation

import (
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/paulmach/orb"

	"agent-pathfinder/internal/astar"
	"agent-pathfinder/internal/grid"
	"agent-pathfinder/internal/waypoint"
)

type requestKind int

const (
	kindGrid requestKind = iota
	kindWaypoints
)

type request struct {
	kind      requestKind
	startCell grid.Cell
	goalCell  grid.Cell
	startPos  waypoint.Vec3
	goalPos   waypoint.Vec3
}

type requester struct {
	status   Status
	pending  request
	last     request
	resolved bool
	path     *Path
	reason   Reason
	err      error
	expanded int
}

// Options configures a Planner.
type Options struct {
	Frame                grid.Frame
	Margin               int
	GridIterationFactor  int
	GraphIterationFactor int
	Connectivity         astar.Connectivity
	MaxSnapDistance      float64
	Logger               *slog.Logger
	Metrics              *Metrics
}

// StepStats summarises one Step.
type StepStats struct {
	Blocked     int `json:"blocked"`
	Invalidated int `json:"invalidated"`
	Searched    int `json:"searched"`
	Succeeded   int `json:"succeeded"`
	Failed      int `json:"failed"`
}

// Planner owns the occupancy grid and the per-requester lifecycle. All
// methods are safe for concurrent use.
type Planner struct {
	mu sync.Mutex

	occ    *grid.Occupancy
	graph  *waypoint.Graph
	frame  grid.Frame
	margin int

	gridEngine  astar.GridEngine
	graphEngine astar.GraphEngine

	logger  *slog.Logger
	metrics *Metrics

	requesters map[RequesterID]*requester
}

// NewPlanner creates a planner over occ and graph. graph may be nil when
// only grid paths are requested.
func NewPlanner(occ *grid.Occupancy, graph *waypoint.Graph, opts Options) *Planner {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Planner{
		occ:    occ,
		graph:  graph,
		frame:  opts.Frame,
		margin: opts.Margin,
		gridEngine: astar.GridEngine{
			Grid:            occ,
			IterationFactor: opts.GridIterationFactor,
			Connectivity:    opts.Connectivity,
		},
		graphEngine: astar.GraphEngine{
			Graph:           graph,
			IterationFactor: opts.GraphIterationFactor,
			MaxSnapDistance: opts.MaxSnapDistance,
		},
		logger:     logger,
		metrics:    opts.Metrics,
		requesters: make(map[RequesterID]*requester),
	}
}

// Frame returns the world frame of the grid.
func (p *Planner) Frame() grid.Frame { return p.frame }

// RequestGridPath asks for a cell path. It returns false when the requester
// already holds a result for the same endpoints.
func (p *Planner) RequestGridPath(id RequesterID, start, goal grid.Cell) bool {
	return p.submit(id, request{kind: kindGrid, startCell: start, goalCell: goal})
}

// RequestGridPathWorld converts both XZ positions to cells and calls
// RequestGridPath.
func (p *Planner) RequestGridPathWorld(id RequesterID, from, to orb.Point) bool {
	return p.RequestGridPath(id, p.frame.ToCell(from), p.frame.ToCell(to))
}

// RequestWaypointPath asks for a path over the waypoint graph between two
// world positions. Requesting on a planner without waypoints returns
// waypoint.ErrEmptyGraph.
func (p *Planner) RequestWaypointPath(id RequesterID, from, to waypoint.Vec3) (bool, error) {
	if p.graph == nil || p.graph.Len() == 0 {
		return false, waypoint.ErrEmptyGraph
	}
	return p.submit(id, request{kind: kindWaypoints, startPos: from, goalPos: to}), nil
}

func (p *Planner) submit(id RequesterID, req request) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	r := p.requesters[id]
	if r == nil {
		r = &requester{}
		p.requesters[id] = r
	}
	if r.resolved && r.last == req && (r.status == StatusSuccess || r.status == StatusFailed) {
		return false
	}

	// last write wins
	r.status = StatusPending
	r.pending = req
	r.path = nil
	r.reason = ReasonNone
	r.err = nil
	p.metrics.setPending(p.pendingCount())
	return true
}

// Invalidate drops whatever the requester holds and returns it to idle.
func (p *Planner) Invalidate(id RequesterID) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if r := p.requesters[id]; r != nil {
		p.toIdle(r)
		p.metrics.setPending(p.pendingCount())
	}
}

// Remove forgets a requester.
func (p *Planner) Remove(id RequesterID) {
	p.mu.Lock()
	defer p.mu.Unlock()

	delete(p.requesters, id)
	p.metrics.setPending(p.pendingCount())
}

// Poll reports the requester's state. A failure is delivered once; polling
// it returns the requester to idle. A successful path stays held until it is
// consumed by Advance or invalidated.
func (p *Planner) Poll(id RequesterID) Result {
	p.mu.Lock()
	defer p.mu.Unlock()

	r := p.requesters[id]
	if r == nil {
		return Result{Status: StatusIdle}
	}

	res := Result{Status: r.status, ExpandedNodes: r.expanded}
	switch r.status {
	case StatusPending:
		res.Goal = p.goalOf(r.pending)
	case StatusSuccess:
		res.Path = r.path.clone()
		res.Goal = p.goalOf(r.last)
	case StatusFailed:
		res.Reason = r.reason
		res.Err = r.err
		res.Goal = p.goalOf(r.last)
		p.toIdle(r)
	}
	return res
}

// Advance consumes the points of the held path that position has reached
// and returns the next point to move toward. It returns false when the
// requester holds no path; an exhausted path returns the requester to idle.
func (p *Planner) Advance(id RequesterID, position waypoint.Vec3, radius float64) (waypoint.Vec3, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	r := p.requesters[id]
	if r == nil || r.status != StatusSuccess {
		return waypoint.Vec3{}, false
	}
	r.path.Advance(position, radius)
	next, ok := r.path.Next()
	if !ok {
		p.toIdle(r)
	}
	return next, ok
}

// Occupancy returns a snapshot of the grid as of the last Step.
func (p *Planner) Occupancy() *grid.Occupancy {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.occ.Clone()
}

// Step runs one planning pass: rebuild occupancy from obstacles, collect
// pending requests, search them in ascending requester order and publish
// the results.
func (p *Planner) Step(obstacles []grid.Cell) StepStats {
	p.mu.Lock()
	defer p.mu.Unlock()

	var stats StepStats
	startTime := time.Now()

	p.rebuildOccupancy(obstacles, &stats)
	ids := p.resolveRequests(&stats)
	outcomes := p.runSearches(ids)
	p.publishResults(outcomes, &stats)

	p.metrics.setPending(p.pendingCount())
	p.logger.Debug("planner step complete",
		"obstacles", len(obstacles),
		"blocked", stats.Blocked,
		"invalidated", stats.Invalidated,
		"searched", stats.Searched,
		"succeeded", stats.Succeeded,
		"failed", stats.Failed,
		"elapsed", time.Since(startTime))
	return stats
}

func (p *Planner) rebuildOccupancy(obstacles []grid.Cell, stats *StepStats) {
	p.occ.Rebuild(obstacles, p.margin)
	stats.Blocked = p.occ.BlockedCount()
}

// resolveRequests re-requests held grid paths that now cross blocked cells
// and returns the pending requester ids in ascending order.
func (p *Planner) resolveRequests(stats *StepStats) []RequesterID {
	ids := make([]RequesterID, 0, len(p.requesters))
	for id, r := range p.requesters {
		if r.status == StatusSuccess && r.last.kind == kindGrid && r.path.blockedOn(p.occ) {
			req := r.last
			req.startCell = resumeCell(r.path)
			r.status = StatusPending
			r.pending = req
			r.path = nil
			stats.Invalidated++
			p.logger.Info("held path crosses blocked cells, replanning",
				"requester", id,
				"from", req.startCell,
				"goal", req.goalCell)
		}
		if r.status == StatusPending {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}

// resumeCell is the last reached cell of a path, or its first cell.
func resumeCell(path *Path) grid.Cell {
	if path.next > 0 && path.next <= len(path.Cells) {
		return path.Cells[path.next-1]
	}
	return path.Cells[0]
}

type outcome struct {
	id       RequesterID
	req      request
	path     *Path
	err      error
	expanded int
}

func (p *Planner) runSearches(ids []RequesterID) []outcome {
	outcomes := make([]outcome, 0, len(ids))
	for _, id := range ids {
		req := p.requesters[id].pending
		o := outcome{id: id, req: req}

		switch req.kind {
		case kindGrid:
			res, err := p.gridEngine.FindPath(req.startCell, req.goalCell)
			o.err, o.expanded = err, res.ExpandedNodes
			if err == nil {
				o.path = p.gridPath(res.Path)
			}
			p.metrics.observeSearch(engineGrid, outcomeLabel(err), res.ExpandedNodes)
		case kindWaypoints:
			res, err := p.graphEngine.FindPathBetween(req.startPos, req.goalPos)
			o.err, o.expanded = err, res.ExpandedNodes
			if err == nil {
				o.path = &Path{Points: p.graphEngine.Positions(res.Path), Waypoints: res.Path}
			}
			p.metrics.observeSearch(engineWaypoints, outcomeLabel(err), res.ExpandedNodes)
		}
		outcomes = append(outcomes, o)
	}
	return outcomes
}

func (p *Planner) gridPath(cells []grid.Cell) *Path {
	points := make([]waypoint.Vec3, len(cells))
	for i, c := range cells {
		w := p.frame.ToWorld(c)
		points[i] = waypoint.Vec3{X: w.X(), Z: w.Y()}
	}
	return &Path{Points: points, Cells: cells}
}

func (p *Planner) publishResults(outcomes []outcome, stats *StepStats) {
	for _, o := range outcomes {
		r := p.requesters[o.id]
		r.last = o.req
		r.resolved = true
		r.expanded = o.expanded
		stats.Searched++

		if o.err == nil {
			r.status = StatusSuccess
			r.path = o.path
			r.reason = ReasonNone
			r.err = nil
			stats.Succeeded++
			p.logger.Debug("path found",
				"requester", o.id,
				"points", len(o.path.Points),
				"expanded", o.expanded)
			continue
		}

		r.status = StatusFailed
		r.path = nil
		r.reason = ReasonFor(o.err)
		r.err = o.err
		stats.Failed++

		switch r.reason {
		case ReasonSearchAborted:
			p.logger.Error("path search aborted", "requester", o.id, "expanded", o.expanded, "error", o.err)
		case ReasonNone:
			p.logger.Error("path search failed", "requester", o.id, "error", o.err)
		default:
			p.logger.Warn("no path", "requester", o.id, "reason", r.reason.String(), "error", o.err)
		}
	}
}

func (p *Planner) toIdle(r *requester) {
	r.status = StatusIdle
	r.path = nil
	r.reason = ReasonNone
	r.err = nil
}

func (p *Planner) pendingCount() int {
	n := 0
	for _, r := range p.requesters {
		if r.status == StatusPending {
			n++
		}
	}
	return n
}

func (p *Planner) goalOf(req request) waypoint.Vec3 {
	if req.kind == kindWaypoints {
		return req.goalPos
	}
	w := p.frame.ToWorld(req.goalCell)
	return waypoint.Vec3{X: w.X(), Z: w.Y()}
}

func outcomeLabel(err error) string {
	if err == nil {
		return "success"
	}
	if reason := ReasonFor(err); reason != ReasonNone {
		return reason.String()
	}
	return "error"
}
