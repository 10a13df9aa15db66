package datastructure

import (
	"math"

	"github.com/lintang-b-s/navigatorx-waypoints/pkg"
)

// RouteKey identifies a route by its endpoints. it is comparable and is used directly as a map key.
type RouteKey struct {
	Start Index
	End   Index
}

func NewRouteKey(start, end Index) RouteKey {
	return RouteKey{Start: start, End: end}
}

// PathEdge is one traversed road of a route.
type PathEdge struct {
	tail Index
	edge *Edge
}

func NewPathEdge(tail Index, edge *Edge) PathEdge {
	return PathEdge{tail: tail, edge: edge}
}

func (pe PathEdge) GetTail() Index {
	return pe.tail
}

func (pe PathEdge) GetHead() Index {
	return pe.edge.GetHead()
}

func (pe PathEdge) GetEdge() *Edge {
	return pe.edge
}

// RouteResult is the outcome of one start -> end search. identity is the key only.
type RouteResult struct {
	key        RouteKey
	cost       float64
	path       []PathEdge // source to target order
	numSettled int
}

func NewRouteResult(start, end Index, cost float64, path []PathEdge, numSettled int) RouteResult {
	if path == nil {
		path = []PathEdge{}
	}
	return RouteResult{
		key:        NewRouteKey(start, end),
		cost:       cost,
		path:       path,
		numSettled: numSettled,
	}
}

func NewUnreachableRoute(start, end Index, numSettled int) RouteResult {
	return NewRouteResult(start, end, pkg.INF_WEIGHT, nil, numSettled)
}

func NewFailedRoute(start, end Index, sentinel float64, numSettled int) RouteResult {
	return NewRouteResult(start, end, sentinel, nil, numSettled)
}

func (r RouteResult) Key() RouteKey {
	return r.key
}

func (r RouteResult) GetStart() Index {
	return r.key.Start
}

func (r RouteResult) GetEnd() Index {
	return r.key.End
}

func (r RouteResult) GetCost() float64 {
	return r.cost
}

// GetPath returns a copy of the route's edges in travel order.
func (r RouteResult) GetPath() []PathEdge {
	path := make([]PathEdge, len(r.path))
	copy(path, r.path)
	return path
}

func (r RouteResult) NumberOfEdges() int {
	return len(r.path)
}

func (r RouteResult) GetNumSettledNodes() int {
	return r.numSettled
}

func (r RouteResult) Unreachable() bool {
	return math.IsInf(r.cost, 1)
}

// Failed reports whether the search was aborted by an io or memory failure.
func (r RouteResult) Failed() bool {
	return r.cost == pkg.IO_FAILURE_WEIGHT || r.cost == pkg.OUT_OF_MEMORY_WEIGHT
}

// Found reports whether the result carries a usable route.
func (r RouteResult) Found() bool {
	return !r.Unreachable() && !r.Failed()
}

// GetVertices returns the vertex sequence of the route, start included.
func (r RouteResult) GetVertices() []Index {
	if len(r.path) == 0 {
		if r.Found() {
			return []Index{r.key.Start}
		}
		return []Index{}
	}
	vs := make([]Index, 0, len(r.path)+1)
	vs = append(vs, r.path[0].GetTail())
	for _, pe := range r.path {
		vs = append(vs, pe.GetHead())
	}
	return vs
}
