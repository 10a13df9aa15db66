package itinerary

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	da "github.com/lintang-b-s/navigatorx-waypoints/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-waypoints/pkg/engine/routing"
	"github.com/lintang-b-s/navigatorx-waypoints/pkg/tsp"
	"go.uber.org/zap"
)

// generation identifies one epoch of coordinator state. Recompute, Clear and Close supersede it and
// cancel its context; a worker compares its generation id with the live one before it publishes.
type generation struct {
	id     uint64
	ctx    context.Context
	cancel context.CancelFunc
	policy routing.Policy
	mode   Mode
	cache  *routing.LegCacheView
}

// Coordinator owns the waypoint list and runs route computations on a single background worker.
// all mutable state is guarded by mu; searches run outside of it.
type Coordinator struct {
	mu   sync.Mutex
	idle *sync.Cond

	engine   *routing.RoutingEngine
	legCache *routing.LegCache
	solver   *tsp.Solver
	listener Listener
	logger   *zap.Logger
	baseCtx  context.Context

	// notifyMu orders listener calls; a snapshot older than the last delivered one is dropped.
	notifyMu     sync.Mutex
	notifySeq    uint64 // guarded by mu
	lastNotified uint64 // guarded by notifyMu

	mode      Mode
	policy    routing.Policy
	waypoints []da.Index
	tasks     []task

	legs      []da.RouteResult
	tour      []da.Index
	distance  float64
	visited   int
	lastError error

	gen      *generation
	running  bool // a worker of the live generation is draining tasks
	inflight int  // worker goroutines alive, stale ones included
	closed   bool
}

func NewCoordinator(ctx context.Context, engine *routing.RoutingEngine, legCache *routing.LegCache,
	logger *zap.Logger) *Coordinator {
	c := &Coordinator{
		engine:    engine,
		legCache:  legCache,
		solver:    tsp.NewSolver(nil),
		logger:    logger,
		baseCtx:   ctx,
		policy:    routing.Policy{Heuristic: routing.ASTAR},
		waypoints: make([]da.Index, 0),
		tasks:     make([]task, 0),
		legs:      make([]da.RouteResult, 0),
	}
	c.idle = sync.NewCond(&c.mu)
	c.newGenerationLocked(0)
	return c
}

// SetListener registers the completion callback. it is invoked on the worker goroutine.
func (c *Coordinator) SetListener(l Listener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listener = l
}

// SetSolver replaces the tour solver used by later tsp computations.
func (c *Coordinator) SetSolver(s *tsp.Solver) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.solver = s
}

func (c *Coordinator) newGenerationLocked(id uint64) {
	if c.gen != nil {
		c.gen.cancel()
	}
	ctx, cancel := context.WithCancel(c.baseCtx)
	var cache *routing.LegCacheView
	if c.legCache != nil {
		cache = c.legCache.View(c.policy)
	}
	c.gen = &generation{
		id:     id,
		ctx:    ctx,
		cancel: cancel,
		policy: c.policy,
		mode:   c.mode,
		cache:  cache,
	}
	c.running = false
}

func (c *Coordinator) supersedeLocked() {
	c.newGenerationLocked(c.gen.id + 1)
	c.tasks = c.tasks[:0]
}

func (c *Coordinator) resetResultsLocked() {
	c.legs = make([]da.RouteResult, 0)
	c.tour = nil
	c.distance = 0
	c.visited = 0
	c.lastError = nil
}

// AddWaypoint appends v. in point-to-point mode the leg from the previous waypoint is queued; in
// tsp mode the tour is solved again from scratch once there are two waypoints.
func (c *Coordinator) AddWaypoint(v da.Index) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrCoordinatorClosed
	}
	if err := c.baseCtx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrCoordinatorClosed, err)
	}

	c.waypoints = append(c.waypoints, v)
	n := len(c.waypoints)

	switch c.mode {
	case TSP:
		if n < 2 {
			return nil
		}
		c.supersedeLocked()
		c.tasks = append(c.tasks, newTourTask(c.waypoints))
	default:
		if n < 2 {
			return nil
		}
		c.tasks = append(c.tasks, newLegTask(c.waypoints[n-2], v))
	}

	c.startWorkerLocked()
	return nil
}

// Recompute drops pending work and published results, purges the leg cache and schedules every
// leg (or one tour solve) for the current waypoints under the current policy.
func (c *Coordinator) Recompute() {
	c.mu.Lock()
	c.recomputeLocked()
	notify := c.notifyLocked()
	c.mu.Unlock()
	notify()
}

func (c *Coordinator) recomputeLocked() {
	if c.closed || c.baseCtx.Err() != nil {
		return
	}
	if c.legCache != nil {
		c.legCache.Invalidate()
	}
	c.supersedeLocked()
	c.resetResultsLocked()
	c.scheduleLocked()
	c.startWorkerLocked()
}

func (c *Coordinator) scheduleLocked() {
	n := len(c.waypoints)
	if n < 2 {
		return
	}
	switch c.mode {
	case TSP:
		c.tasks = append(c.tasks, newTourTask(c.waypoints))
	default:
		for i := 1; i < n; i++ {
			c.tasks = append(c.tasks, newLegTask(c.waypoints[i-1], c.waypoints[i]))
		}
	}
}

func (c *Coordinator) SetPolicy(p routing.Policy) {
	c.mu.Lock()
	c.policy = p
	c.recomputeLocked()
	notify := c.notifyLocked()
	c.mu.Unlock()
	notify()
}

func (c *Coordinator) SetMode(m Mode) {
	c.mu.Lock()
	c.mode = m
	c.recomputeLocked()
	notify := c.notifyLocked()
	c.mu.Unlock()
	notify()
}

func (c *Coordinator) GetPolicy() routing.Policy {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.policy
}

func (c *Coordinator) GetMode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// Clear removes every waypoint and result. a worker still running a search finishes it and
// discards the result.
func (c *Coordinator) Clear() {
	c.mu.Lock()
	c.supersedeLocked()
	c.waypoints = make([]da.Index, 0)
	c.resetResultsLocked()
	notify := c.notifyLocked()
	c.mu.Unlock()
	notify()
}

// notifyLocked snapshots the published state and returns the call that hands it to the listener.
// the returned func must run after mu is released.
func (c *Coordinator) notifyLocked() func() {
	listener := c.listener
	if listener == nil {
		return func() {}
	}
	c.notifySeq++
	seq := c.notifySeq
	snap := c.snapshotLocked()
	return func() {
		c.notifyMu.Lock()
		defer c.notifyMu.Unlock()
		if seq <= c.lastNotified {
			return
		}
		c.lastNotified = seq
		listener(snap)
	}
}

// Close cancels the live generation. later AddWaypoint calls fail with ErrCoordinatorClosed.
func (c *Coordinator) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.supersedeLocked()
	c.gen.cancel()
	c.idle.Broadcast()
}

// Wait blocks until no worker goroutine is alive.
func (c *Coordinator) Wait() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for c.running || c.inflight > 0 {
		c.idle.Wait()
	}
}

func (c *Coordinator) GetRoute() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Coordinator) Status() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.statusLocked()
}

func (c *Coordinator) statusLocked() string {
	var state string
	switch {
	case c.closed || c.baseCtx.Err() != nil:
		state = "closed"
	case c.running:
		state = fmt.Sprintf("computing, %d pending", len(c.tasks))
	default:
		state = "idle"
	}

	var s string
	if c.mode == TSP {
		s = fmt.Sprintf("%s: %d waypoints, tour of %d stops, %.3f km, %d vertices visited (%s)",
			c.mode, len(c.waypoints), len(c.tour), c.distance, c.visited, state)
	} else {
		s = fmt.Sprintf("%s: %d waypoints, %d legs, %.3f km, %d vertices visited (%s)",
			c.mode, len(c.waypoints), len(c.legs), c.distance, c.visited, state)
	}
	if n := c.unreachableLegsLocked(); n > 0 {
		s += fmt.Sprintf(", %d unreachable legs", n)
	}
	if c.lastError != nil {
		s += ": " + c.lastError.Error()
	}
	return s
}

func (c *Coordinator) unreachableLegsLocked() int {
	n := 0
	for _, leg := range c.legs {
		if !leg.Found() {
			n++
		}
	}
	return n
}

func (c *Coordinator) snapshotLocked() Snapshot {
	wp := make([]da.Index, len(c.waypoints))
	copy(wp, c.waypoints)
	legs := make([]da.RouteResult, len(c.legs))
	copy(legs, c.legs)
	var tour []da.Index
	if c.tour != nil {
		tour = make([]da.Index, len(c.tour))
		copy(tour, c.tour)
	}
	return Snapshot{
		Generation: c.gen.id,
		Mode:       c.mode,
		Policy:     c.policy,
		Waypoints:  wp,
		Legs:       legs,
		Tour:       tour,
		Distance:   c.distance,
		Visited:    c.visited,
		Pending:    len(c.tasks),
		Running:    c.running,
		Status:     c.statusLocked(),
	}
}

func (c *Coordinator) startWorkerLocked() {
	if c.running || len(c.tasks) == 0 {
		return
	}
	c.running = true
	c.inflight++
	go c.work(c.gen)
}

// work drains the task queue of gen. it exits when the queue is empty or gen is superseded.
func (c *Coordinator) work(gen *generation) {
	defer func() {
		c.mu.Lock()
		c.inflight--
		c.idle.Broadcast()
		c.mu.Unlock()
	}()

	for {
		c.mu.Lock()
		if gen.id != c.gen.id {
			c.mu.Unlock()
			return
		}
		if gen.ctx.Err() != nil {
			// the base context is gone; nothing of this generation can run any more
			c.running = false
			c.mu.Unlock()
			return
		}
		if len(c.tasks) == 0 {
			c.running = false
			c.mu.Unlock()
			return
		}
		tk := c.tasks[0]
		c.tasks = c.tasks[1:]
		solver := c.solver
		c.mu.Unlock()

		res := c.runTask(gen, solver, tk)

		c.mu.Lock()
		if gen.id != c.gen.id {
			c.mu.Unlock()
			c.logger.Debug("discarding stale result", zap.Uint64("generation", gen.id))
			return
		}
		notify := func() {}
		if c.publishLocked(res) {
			notify = c.notifyLocked()
		}
		c.mu.Unlock()

		notify()

		// let interactive goroutines run between tasks
		runtime.Gosched()
	}
}

// runTask computes one task. a panic is converted into a task error so the worker survives it.
func (c *Coordinator) runTask(gen *generation, solver *tsp.Solver, tk task) (res taskResult) {
	res.kind = tk.kind
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("route task panicked, dropping its result", zap.Any("panic", r),
				zap.Uint64("generation", gen.id))
			res = taskResult{kind: tk.kind, err: fmt.Errorf("route computation aborted: %v", r)}
		}
	}()

	switch tk.kind {
	case tourTask:
		return c.solveTour(gen, solver, tk)
	default:
		return c.computeLeg(gen, tk)
	}
}

func (c *Coordinator) computeLeg(gen *generation, tk task) taskResult {
	if leg, ok := gen.cache.Get(tk.key); ok {
		return taskResult{kind: legTask, legs: []da.RouteResult{leg}}
	}

	leg := c.engine.ShortestPath(tk.key.Start, tk.key.End, gen.policy)
	res := taskResult{kind: legTask, visited: leg.GetNumSettledNodes()}
	if leg.Failed() {
		c.logger.Error("leg search failed", zap.Uint32("start", uint32(tk.key.Start)),
			zap.Uint32("end", uint32(tk.key.End)), zap.Float64("sentinel", leg.GetCost()))
		res.err = fmt.Errorf("leg %d -> %d failed (code %v)", tk.key.Start, tk.key.End, leg.GetCost())
		return res
	}
	gen.cache.Add(leg)
	res.legs = []da.RouteResult{leg}
	return res
}

func (c *Coordinator) solveTour(gen *generation, solver *tsp.Solver, tk task) taskResult {
	res := taskResult{kind: tourTask}
	table, err := c.engine.BuildDistanceTable(gen.ctx, tk.waypoints, gen.policy, gen.cache)
	if err != nil {
		res.err = err
		return res
	}
	res.visited = table.NumberOfSettledNodes()

	tour, cost, err := solver.Solve(tk.waypoints, table)
	if err != nil {
		c.logger.Warn("tour construction failed", zap.Error(err), zap.Int("waypoints", len(tk.waypoints)))
		res.err = err
		return res
	}
	res.tour = tour
	res.legs = table.GetRouteEntry(tour)
	c.logger.Debug("tour solved", zap.Int("stops", len(tour)), zap.Float64("cost", cost),
		zap.Int("searches", table.NumberOfSearches()))
	return res
}

// publishLocked merges res into the published state and reports whether there is anything new to
// show.
func (c *Coordinator) publishLocked(res taskResult) bool {
	c.visited += res.visited
	if res.err != nil {
		if errors.Is(res.err, context.Canceled) {
			return false
		}
		c.lastError = res.err
		return true
	}

	switch res.kind {
	case tourTask:
		c.tour = res.tour
		c.legs = res.legs
		c.distance = 0
		for _, leg := range res.legs {
			if leg.Found() {
				c.distance += leg.GetCost()
			}
		}
	default:
		for _, leg := range res.legs {
			c.legs = append(c.legs, leg)
			if leg.Found() {
				c.distance += leg.GetCost()
			}
		}
	}
	c.lastError = nil
	return true
}
