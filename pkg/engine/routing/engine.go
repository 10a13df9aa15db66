package routing

import (
	"context"

	"github.com/lintang-b-s/navigatorx-waypoints/pkg/costfunction"
	da "github.com/lintang-b-s/navigatorx-waypoints/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-waypoints/pkg/util"
	"go.uber.org/zap"
)

// RoutingEngine binds a graph provider to the routing tunables and hands out searches for a policy.
type RoutingEngine struct {
	graph  da.GraphProvider
	config util.RoutingConfig
	logger *zap.Logger
}

func NewRoutingEngine(graph da.GraphProvider, config util.RoutingConfig, logger *zap.Logger) *RoutingEngine {
	return &RoutingEngine{
		graph:  graph,
		config: config,
		logger: logger,
	}
}

// NewSearchFactory returns a factory of searches under policy. interactive searches carry the
// expansion ceiling; bulk searches (distance tables) run unbounded.
func (re *RoutingEngine) NewSearchFactory(policy Policy, interactive bool) SearchFactory {
	costFunction := costfunction.NewDistanceCostFunction(policy.UseRestricted)
	heuristic := NewHeuristic(policy.Heuristic, re.config.HeuristicFactor)
	return func() Router {
		var us *Search
		if interactive {
			us = NewInteractiveSearch(re.graph, costFunction, heuristic, re.logger, re.config.MaxExpansions)
		} else {
			us = NewSearch(re.graph, costFunction, heuristic, re.logger)
		}
		us.SetMaxLabels(re.config.MaxLabels)
		return us
	}
}

// ShortestPath runs one interactive search from s to t.
func (re *RoutingEngine) ShortestPath(s, t da.Index, policy Policy) da.RouteResult {
	return re.NewSearchFactory(policy, true)().ShortestPath(s, t)
}

func (re *RoutingEngine) BuildDistanceTable(ctx context.Context, waypoints []da.Index, policy Policy,
	cache *LegCacheView) (*DistanceTable, error) {
	return BuildDistanceTable(ctx, waypoints, re.NewSearchFactory(policy, false),
		re.config.TableParallelism, cache, re.logger)
}
