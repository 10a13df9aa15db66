package routing

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/lintang-b-s/navigatorx-waypoints/pkg"
	da "github.com/lintang-b-s/navigatorx-waypoints/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-waypoints/pkg/util"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DistanceTable holds the route between every ordered pair of distinct waypoints. it is immutable
// once built, so reads need no lock.
type DistanceTable struct {
	waypoints   []da.Index
	entries     map[da.RouteKey]da.RouteResult
	numSearches int
	numSettled  int
	logger      *zap.Logger
}

// BuildDistanceTable runs one search per ordered waypoint pair, at most parallelism at a time.
// cached legs are reused. ctx is checked before every search; a cancelled build returns ctx.Err().
func BuildDistanceTable(ctx context.Context, waypoints []da.Index, newSearch SearchFactory,
	parallelism int, cache *LegCacheView, logger *zap.Logger) (*DistanceTable, error) {
	ws := removeDuplicates(waypoints)
	dt := &DistanceTable{
		waypoints: ws,
		entries:   make(map[da.RouteKey]da.RouteResult, len(ws)*len(ws)),
		logger:    logger,
	}
	if parallelism < 1 {
		parallelism = 1
	}

	var (
		mu          sync.Mutex
		numSearches atomic.Int64
		numSettled  atomic.Int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)

	for _, s := range ws {
		for _, t := range ws {
			if s == t {
				continue
			}
			key := da.NewRouteKey(s, t)
			g.Go(func() error {
				if util.StopConcurrentOperation(gctx) {
					return gctx.Err()
				}

				res, ok := cache.Get(key)
				if !ok {
					res = newSearch().ShortestPath(key.Start, key.End)
					numSearches.Add(1)
					numSettled.Add(int64(res.GetNumSettledNodes()))
					cache.Add(res)
				}

				mu.Lock()
				dt.entries[key] = res
				mu.Unlock()
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	dt.numSearches = int(numSearches.Load())
	dt.numSettled = int(numSettled.Load())

	logger.Debug("distance table built", zap.Int("waypoints", len(ws)),
		zap.Int("entries", len(dt.entries)), zap.Int("searches", dt.numSearches))
	return dt, nil
}

func (dt *DistanceTable) GetWaypoints() []da.Index {
	ws := make([]da.Index, len(dt.waypoints))
	copy(ws, dt.waypoints)
	return ws
}

// NumberOfSearches is the count of searches the build ran, excluding cache hits.
func (dt *DistanceTable) NumberOfSearches() int {
	return dt.numSearches
}

// NumberOfSettledNodes is the total number of vertices settled by the searches the build ran.
func (dt *DistanceTable) NumberOfSettledNodes() int {
	return dt.numSettled
}

func (dt *DistanceTable) Get(s, t da.Index) (da.RouteResult, bool) {
	res, ok := dt.entries[da.NewRouteKey(s, t)]
	return res, ok
}

// GetCost returns the route cost from s to t. missing pairs and failed searches cost pkg.INF_WEIGHT.
func (dt *DistanceTable) GetCost(s, t da.Index) float64 {
	if s == t {
		return 0
	}
	res, ok := dt.entries[da.NewRouteKey(s, t)]
	if !ok || !res.Found() {
		return pkg.INF_WEIGHT
	}
	return res.GetCost()
}

// GetRouteEntry maps a cyclic tour to its legs, closing leg included. pairs absent from the table
// are logged and skipped.
func (dt *DistanceTable) GetRouteEntry(tour []da.Index) []da.RouteResult {
	n := len(tour)
	legs := make([]da.RouteResult, 0, n)
	if n < 2 {
		return legs
	}
	for i := 0; i < n; i++ {
		s, t := tour[i], tour[(i+1)%n]
		res, ok := dt.Get(s, t)
		if !ok {
			dt.logger.Warn("tour leg missing from distance table",
				zap.Uint32("start", uint32(s)), zap.Uint32("end", uint32(t)))
			continue
		}
		legs = append(legs, res)
	}
	return legs
}
