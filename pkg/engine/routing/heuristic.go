package routing

import (
	da "github.com/lintang-b-s/navigatorx-waypoints/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-waypoints/pkg/geo"
)

// ZeroHeuristic turns the search into plain dijkstra.
type ZeroHeuristic struct{}

func (ZeroHeuristic) Estimate(v, goal *da.Vertex) float64 {
	return 0
}

// GreatCircleHeuristic is the great-circle distance to the goal scaled by factor <= 1.
// edge costs come from the equirectangular approximation, so the scale keeps the estimate below
// the true remaining cost.
type GreatCircleHeuristic struct {
	factor float64
}

func NewGreatCircleHeuristic(factor float64) GreatCircleHeuristic {
	if factor <= 0 || factor > 1 {
		factor = 1
	}
	return GreatCircleHeuristic{factor: factor}
}

func (gh GreatCircleHeuristic) Estimate(v, goal *da.Vertex) float64 {
	if v == nil || goal == nil {
		return 0
	}
	return gh.factor * geo.GreatCircleDistance(v.GetCoordinate(), goal.GetCoordinate())
}

func NewHeuristic(ht HeuristicType, factor float64) Heuristic {
	if ht == ASTAR {
		return NewGreatCircleHeuristic(factor)
	}
	return ZeroHeuristic{}
}
