package itinerary

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/lintang-b-s/navigatorx-waypoints/pkg"
	da "github.com/lintang-b-s/navigatorx-waypoints/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-waypoints/pkg/engine/routing"
	"github.com/lintang-b-s/navigatorx-waypoints/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// lineGraph is 0-1-2-3 with lengths 1, 2, 3, a restricted shortcut 0-3 of length 1 and an
// isolated vertex 4. every vertex shares a coordinate so heuristic estimates are zero.
func lineGraph(t *testing.T) *da.Graph {
	g := da.NewGraph()
	for i := da.Index(0); i < 5; i++ {
		g.AddVertex(i, -7.8, 110.3)
	}
	addTwoWay := func(u, v da.Index, length float64, restricted bool) {
		class := pkg.ROAD_NORMAL
		if restricted {
			class = pkg.ROAD_HIGHWAY
		}
		require.NoError(t, g.AddEdgeWithLength(u, v, class, length, restricted))
		require.NoError(t, g.AddEdgeWithLength(v, u, class, length, restricted))
	}
	addTwoWay(0, 1, 1, false)
	addTwoWay(1, 2, 2, false)
	addTwoWay(2, 3, 3, false)
	addTwoWay(0, 3, 1, true)
	return g
}

type recorder struct {
	mu    sync.Mutex
	snaps []Snapshot
}

func (r *recorder) listen(s Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snaps = append(r.snaps, s)
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.snaps)
}

func (r *recorder) last() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snaps[len(r.snaps)-1]
}

func testConfig() util.RoutingConfig {
	return util.RoutingConfig{
		MaxExpansions:    5000,
		HeuristicFactor:  0.95,
		LegCacheSize:     64,
		TableParallelism: 2,
	}
}

func newTestCoordinator(t *testing.T, graph da.GraphProvider) (*Coordinator, *routing.LegCache, *recorder) {
	t.Helper()
	logger := zap.NewNop()
	cache, err := routing.NewLegCache(64)
	require.NoError(t, err)
	engine := routing.NewRoutingEngine(graph, testConfig(), logger)
	c := NewCoordinator(context.Background(), engine, cache, logger)
	rec := &recorder{}
	c.SetListener(rec.listen)
	t.Cleanup(func() {
		c.Close()
		c.Wait()
	})
	return c, cache, rec
}

func legCosts(legs []da.RouteResult) []float64 {
	costs := make([]float64, 0, len(legs))
	for _, l := range legs {
		costs = append(costs, l.GetCost())
	}
	return costs
}

func TestPointToPointChainsLegs(t *testing.T) {
	c, _, rec := newTestCoordinator(t, lineGraph(t))

	require.NoError(t, c.AddWaypoint(0))
	require.NoError(t, c.AddWaypoint(2))
	require.NoError(t, c.AddWaypoint(3))
	c.Wait()

	snap := c.GetRoute()
	assert.Equal(t, []da.Index{0, 2, 3}, snap.Waypoints)
	require.Len(t, snap.Legs, 2)
	assert.Equal(t, da.NewRouteKey(0, 2), snap.Legs[0].Key())
	assert.Equal(t, da.NewRouteKey(2, 3), snap.Legs[1].Key())
	assert.Equal(t, []float64{3, 3}, legCosts(snap.Legs))
	assert.InDelta(t, 6.0, snap.Distance, 1e-9)
	assert.Positive(t, snap.Visited)
	assert.Equal(t, 0, snap.Pending)
	assert.False(t, snap.Running)
	assert.Equal(t, 2, rec.count())
}

func TestSingleWaypointSchedulesNothing(t *testing.T) {
	c, _, rec := newTestCoordinator(t, lineGraph(t))

	require.NoError(t, c.AddWaypoint(1))
	c.Wait()

	snap := c.GetRoute()
	assert.Empty(t, snap.Legs)
	assert.Equal(t, 0, rec.count())
	assert.Contains(t, c.Status(), "1 waypoints")
}

func TestUnreachableLegIsPublished(t *testing.T) {
	c, _, _ := newTestCoordinator(t, lineGraph(t))

	require.NoError(t, c.AddWaypoint(0))
	require.NoError(t, c.AddWaypoint(4))
	c.Wait()

	snap := c.GetRoute()
	require.Len(t, snap.Legs, 1)
	assert.True(t, math.IsInf(snap.Legs[0].GetCost(), 1))
	assert.Empty(t, snap.Legs[0].GetPath())
	assert.Equal(t, 0.0, snap.Distance)
}

func TestSetPolicyRecomputesWithRestrictedRoads(t *testing.T) {
	c, cache, _ := newTestCoordinator(t, lineGraph(t))
	c.SetPolicy(routing.Policy{Heuristic: routing.DIJKSTRA, UseRestricted: false})

	require.NoError(t, c.AddWaypoint(0))
	require.NoError(t, c.AddWaypoint(3))
	c.Wait()
	require.Equal(t, []float64{6}, legCosts(c.GetRoute().Legs))

	c.SetPolicy(routing.Policy{Heuristic: routing.DIJKSTRA, UseRestricted: true})
	c.Wait()
	snap := c.GetRoute()
	assert.Equal(t, []float64{1}, legCosts(snap.Legs))
	assert.True(t, snap.Policy.UseRestricted)
	assert.Equal(t, 1, cache.Len())

	c.SetPolicy(routing.Policy{Heuristic: routing.ASTAR, UseRestricted: false})
	c.Wait()
	assert.Equal(t, []float64{6}, legCosts(c.GetRoute().Legs))
}

func TestRecomputeRegeneratesEveryLeg(t *testing.T) {
	c, cache, rec := newTestCoordinator(t, lineGraph(t))

	for _, v := range []da.Index{0, 1, 2, 3} {
		require.NoError(t, c.AddWaypoint(v))
	}
	c.Wait()
	before := c.GetRoute()
	require.Len(t, before.Legs, 3)

	c.Recompute()
	c.Wait()
	after := c.GetRoute()
	assert.Equal(t, legCosts(before.Legs), legCosts(after.Legs))
	assert.Greater(t, after.Generation, before.Generation)
	assert.Equal(t, 3, cache.Len())
	// three legs, the reset, three legs again
	assert.Equal(t, 7, rec.count())
}

func TestTSPModeSolvesTour(t *testing.T) {
	c, _, _ := newTestCoordinator(t, lineGraph(t))
	c.SetMode(TSP)

	for _, v := range []da.Index{0, 3, 1, 2} {
		require.NoError(t, c.AddWaypoint(v))
	}
	c.Wait()

	snap := c.GetRoute()
	assert.Equal(t, TSP, snap.Mode)
	assert.Equal(t, []da.Index{0, 1, 2, 3}, snap.Tour)
	require.Len(t, snap.Legs, 4)
	assert.Equal(t, da.NewRouteKey(3, 0), snap.Legs[3].Key())
	assert.InDelta(t, 12.0, snap.Distance, 1e-9)
}

func TestTSPTourWithOneWayLegKeepsDistanceFinite(t *testing.T) {
	g := da.NewGraph()
	g.AddVertex(0, -7.8, 110.3)
	g.AddVertex(1, -7.8, 110.3)
	require.NoError(t, g.AddEdgeWithLength(0, 1, pkg.ROAD_NORMAL, 2, false))

	c, _, _ := newTestCoordinator(t, g)
	c.SetMode(TSP)
	require.NoError(t, c.AddWaypoint(0))
	require.NoError(t, c.AddWaypoint(1))
	c.Wait()

	snap := c.GetRoute()
	assert.Equal(t, []da.Index{0, 1}, snap.Tour)
	require.Len(t, snap.Legs, 2)
	assert.True(t, snap.Legs[1].Unreachable())
	assert.False(t, math.IsInf(snap.Distance, 0))
	assert.InDelta(t, 2.0, snap.Distance, 1e-9)
	assert.Contains(t, snap.Status, "1 unreachable legs")
	assert.NotContains(t, snap.Status, "Inf")

	_, err := json.Marshal(snap)
	assert.NoError(t, err)
}

func TestSetModeSwitchesExistingWaypoints(t *testing.T) {
	c, _, _ := newTestCoordinator(t, lineGraph(t))

	require.NoError(t, c.AddWaypoint(0))
	require.NoError(t, c.AddWaypoint(2))
	c.Wait()
	require.Len(t, c.GetRoute().Legs, 1)

	c.SetMode(TSP)
	c.Wait()
	snap := c.GetRoute()
	assert.Equal(t, []da.Index{0, 2}, snap.Tour)
	assert.Equal(t, []float64{3, 3}, legCosts(snap.Legs))

	c.SetMode(POINT_TO_POINT)
	c.Wait()
	snap = c.GetRoute()
	assert.Nil(t, snap.Tour)
	assert.Len(t, snap.Legs, 1)
}

// gatedGraph blocks the first vertex lookup until gate is closed.
type gatedGraph struct {
	*da.Graph
	once    sync.Once
	entered chan struct{}
	gate    chan struct{}
}

func (g *gatedGraph) GetVertex(id da.Index) (*da.Vertex, error) {
	g.once.Do(func() {
		close(g.entered)
		<-g.gate
	})
	return g.Graph.GetVertex(id)
}

func TestClearDiscardsInFlightResult(t *testing.T) {
	g := &gatedGraph{Graph: lineGraph(t), entered: make(chan struct{}), gate: make(chan struct{})}
	c, _, rec := newTestCoordinator(t, g)

	require.NoError(t, c.AddWaypoint(0))
	require.NoError(t, c.AddWaypoint(3))
	<-g.entered

	c.Clear()
	close(g.gate)
	c.Wait()

	snap := c.GetRoute()
	assert.Empty(t, snap.Waypoints)
	assert.Empty(t, snap.Legs)
	// only the cleared state reaches the listener
	require.Equal(t, 1, rec.count())
	assert.Empty(t, rec.last().Waypoints)
	assert.Empty(t, rec.last().Legs)
}

var errDiskRead = errors.New("disk read failed")

type brokenGraph struct {
	*da.Graph
	broken da.Index
}

func (bg *brokenGraph) GetVertex(id da.Index) (*da.Vertex, error) {
	if id == bg.broken {
		return nil, errDiskRead
	}
	return bg.Graph.GetVertex(id)
}

func TestFailedLegIsDropped(t *testing.T) {
	c, cache, rec := newTestCoordinator(t, &brokenGraph{Graph: lineGraph(t), broken: 2})

	require.NoError(t, c.AddWaypoint(0))
	require.NoError(t, c.AddWaypoint(3))
	c.Wait()

	snap := c.GetRoute()
	assert.Empty(t, snap.Legs)
	assert.Contains(t, snap.Status, "failed")
	assert.Equal(t, 1, rec.count())
	assert.Equal(t, 0, cache.Len())
}

type panickingGraph struct {
	*da.Graph
	bad da.Index
}

func (pg *panickingGraph) GetVertex(id da.Index) (*da.Vertex, error) {
	if id == pg.bad {
		panic("tile decoder exploded")
	}
	return pg.Graph.GetVertex(id)
}

func TestWorkerSurvivesPanickingTask(t *testing.T) {
	c, _, _ := newTestCoordinator(t, &panickingGraph{Graph: lineGraph(t), bad: 4})

	require.NoError(t, c.AddWaypoint(4))
	require.NoError(t, c.AddWaypoint(0))
	require.NoError(t, c.AddWaypoint(1))
	c.Wait()

	snap := c.GetRoute()
	require.Len(t, snap.Legs, 1)
	assert.Equal(t, da.NewRouteKey(0, 1), snap.Legs[0].Key())
	assert.InDelta(t, 1.0, snap.Distance, 1e-9)
}

func TestGetRouteReturnsCopy(t *testing.T) {
	c, _, _ := newTestCoordinator(t, lineGraph(t))

	require.NoError(t, c.AddWaypoint(0))
	require.NoError(t, c.AddWaypoint(1))
	c.Wait()

	snap := c.GetRoute()
	snap.Waypoints[0] = 99
	snap.Legs[0] = da.NewUnreachableRoute(7, 8, 0)

	again := c.GetRoute()
	assert.Equal(t, []da.Index{0, 1}, again.Waypoints)
	assert.Equal(t, da.NewRouteKey(0, 1), again.Legs[0].Key())
}

func TestClosedCoordinatorRejectsWaypoints(t *testing.T) {
	c, _, _ := newTestCoordinator(t, lineGraph(t))

	c.Close()
	assert.ErrorIs(t, c.AddWaypoint(0), ErrCoordinatorClosed)
	assert.Contains(t, c.Status(), "closed")
}

func waitReturns(t *testing.T, c *Coordinator) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		c.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Wait did not return")
	}
}

func TestCancelledBaseContextStopsCoordinator(t *testing.T) {
	logger := zap.NewNop()
	engine := routing.NewRoutingEngine(lineGraph(t), testConfig(), logger)
	ctx, cancel := context.WithCancel(context.Background())
	c := NewCoordinator(ctx, engine, nil, logger)
	defer c.Close()

	require.NoError(t, c.AddWaypoint(0))
	cancel()

	assert.ErrorIs(t, c.AddWaypoint(1), ErrCoordinatorClosed)
	assert.ErrorIs(t, c.AddWaypoint(2), context.Canceled)
	waitReturns(t, c)

	snap := c.GetRoute()
	assert.False(t, snap.Running)
	assert.Equal(t, 0, snap.Pending)
	assert.Contains(t, snap.Status, "closed")
}

func TestBaseContextCancelledMidSearch(t *testing.T) {
	g := &gatedGraph{Graph: lineGraph(t), entered: make(chan struct{}), gate: make(chan struct{})}
	logger := zap.NewNop()
	engine := routing.NewRoutingEngine(g, testConfig(), logger)
	ctx, cancel := context.WithCancel(context.Background())
	c := NewCoordinator(ctx, engine, nil, logger)
	defer c.Close()

	require.NoError(t, c.AddWaypoint(0))
	require.NoError(t, c.AddWaypoint(3))
	require.NoError(t, c.AddWaypoint(1))
	<-g.entered

	cancel()
	close(g.gate)
	waitReturns(t, c)

	assert.False(t, c.GetRoute().Running)
	assert.ErrorIs(t, c.AddWaypoint(2), ErrCoordinatorClosed)
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"tsp", TSP, false},
		{"TSP", TSP, false},
		{"point_to_point", POINT_TO_POINT, false},
		{"", POINT_TO_POINT, false},
		{"grand_tour", POINT_TO_POINT, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
