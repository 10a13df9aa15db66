package routing

import (
	"github.com/lintang-b-s/navigatorx-waypoints/pkg/costfunction"
	da "github.com/lintang-b-s/navigatorx-waypoints/pkg/datastructure"
)

type CostFunction = costfunction.CostFunction

// Heuristic estimates the remaining cost from v to goal. it must never overestimate.
type Heuristic interface {
	Estimate(v, goal *da.Vertex) float64
}

type Router interface {
	ShortestPath(s, t da.Index) da.RouteResult
}

// SearchFactory returns a fresh, single-use search. searches are not safe for concurrent use.
type SearchFactory func() Router
