package routing

import (
	"errors"
	"math"

	"github.com/lintang-b-s/navigatorx-waypoints/pkg"
	da "github.com/lintang-b-s/navigatorx-waypoints/pkg/datastructure"
	"go.uber.org/zap"
)

// Search is a label-setting single-pair search (dijkstra, or A* with a non-zero heuristic) over a
// lazily loaded graph. a Search is single-use per call of ShortestPath and not safe for concurrent use.
type Search struct {
	graph        da.GraphProvider
	costFunction CostFunction
	heuristic    Heuristic
	logger       *zap.Logger

	maxExpansions int // 0 = unbounded
	maxLabels     int // 0 = unbounded

	info map[da.Index]*VertexInfo
	pq   *da.MinHeap[da.Index]
	goal *da.Vertex

	numSettledNodes int
	abort           float64 // failure sentinel set during relaxation, 0 if none
}

func NewSearch(graph da.GraphProvider, costFunction CostFunction, heuristic Heuristic,
	logger *zap.Logger) *Search {
	if heuristic == nil {
		heuristic = ZeroHeuristic{}
	}
	us := &Search{
		graph:        graph,
		costFunction: costFunction,
		heuristic:    heuristic,
		logger:       logger,
		info:         make(map[da.Index]*VertexInfo),
	}

	if _, plain := heuristic.(ZeroHeuristic); plain {
		us.pq = da.NewBinaryHeap[da.Index]()
	} else {
		us.pq = da.NewBinaryHeapWithRank(func(v da.Index, cost float64) float64 {
			return cost + us.info[v].estimate
		})
	}
	return us
}

// NewInteractiveSearch returns a search that gives up after maxExpansions settled vertices.
func NewInteractiveSearch(graph da.GraphProvider, costFunction CostFunction, heuristic Heuristic,
	logger *zap.Logger, maxExpansions int) *Search {
	us := NewSearch(graph, costFunction, heuristic, logger)
	us.SetMaxExpansions(maxExpansions)
	return us
}

func (us *Search) SetMaxExpansions(n int) {
	us.maxExpansions = n
}

// SetMaxLabels bounds the number of labelled vertices. a search that needs more is aborted
// with pkg.OUT_OF_MEMORY_WEIGHT.
func (us *Search) SetMaxLabels(n int) {
	us.maxLabels = n
}

func (us *Search) GetNumSettledNodes() int {
	return us.numSettledNodes
}

func (us *Search) reset() {
	clear(us.info)
	us.pq.Clear()
	us.goal = nil
	us.numSettledNodes = 0
	us.abort = 0
}

// resolve looks a vertex up. a vertex that is not loaded yields (nil, 0). any other provider error
// yields the io failure sentinel.
func (us *Search) resolve(id da.Index) (*da.Vertex, float64) {
	v, err := us.graph.GetVertex(id)
	if err == nil {
		return v, 0
	}
	if errors.Is(err, da.ErrVertexNotLoaded) {
		us.logger.Debug("vertex not loaded, treating as dead end", zap.Uint32("vertex", uint32(id)))
		return nil, 0
	}
	us.logger.Error("graph provider failed", zap.Uint32("vertex", uint32(id)), zap.Error(err))
	return nil, pkg.IO_FAILURE_WEIGHT
}

// ShortestPath returns the minimum-cost route from s to t. an exhausted queue or a hit expansion
// ceiling gives an unreachable result; provider io errors and label-budget overruns give the
// matching failure sentinel. none of these are returned as errors.
func (us *Search) ShortestPath(s, t da.Index) da.RouteResult {
	us.reset()

	if s == t {
		return da.NewRouteResult(s, t, 0, nil, 0)
	}

	sv, failure := us.resolve(s)
	if failure != 0 {
		return da.NewFailedRoute(s, t, failure, 0)
	}
	tv, failure := us.resolve(t)
	if failure != 0 {
		return da.NewFailedRoute(s, t, failure, 0)
	}
	if sv == nil || tv == nil {
		return da.NewUnreachableRoute(s, t, 0)
	}
	us.goal = tv

	us.info[s] = NewVertexInfo(0, us.heuristic.Estimate(sv, tv), sv)
	us.pq.Put(s, 0)

	for !us.pq.IsEmpty() {
		uId, uCost, _ := us.pq.Poll()
		if uId == t {
			return da.NewRouteResult(s, t, uCost, us.unpackPath(s, t), us.numSettledNodes)
		}

		uInfo := us.info[uId]
		uInfo.Scan()
		us.numSettledNodes++

		if us.maxExpansions > 0 && us.numSettledNodes >= us.maxExpansions {
			us.logger.Warn("expansion ceiling reached, giving up",
				zap.Uint32("source", uint32(s)), zap.Uint32("target", uint32(t)),
				zap.Int("maxExpansions", us.maxExpansions))
			return da.NewUnreachableRoute(s, t, us.numSettledNodes)
		}

		us.graphSearchUni(uId, uInfo)
		if us.abort != 0 {
			return da.NewFailedRoute(s, t, us.abort, us.numSettledNodes)
		}
	}

	return da.NewUnreachableRoute(s, t, us.numSettledNodes)
}

// graphSearchUni relaxes every traversable out edge of u.
func (us *Search) graphSearchUni(uId da.Index, uInfo *VertexInfo) {
	uInfo.vertex.ForOutEdges(func(vId da.Index, e *da.Edge) {
		if us.abort != 0 {
			return
		}

		edgeWeight := us.costFunction.GetWeight(e)
		if math.IsInf(edgeWeight, 1) {
			// legal connection excluded by the current policy
			return
		}

		vInfo, labelled := us.info[vId]
		if labelled && vInfo.IsScanned() {
			return
		}

		newCost := uInfo.GetCost() + edgeWeight

		if !labelled {
			vv, failure := us.resolve(vId)
			if failure != 0 {
				us.abort = failure
				return
			}
			if vv == nil {
				return
			}
			if us.maxLabels > 0 && len(us.info) >= us.maxLabels {
				us.logger.Error("search label budget exhausted", zap.Int("maxLabels", us.maxLabels))
				us.abort = pkg.OUT_OF_MEMORY_WEIGHT
				return
			}
			vInfo = NewVertexInfo(pkg.INF_WEIGHT, us.heuristic.Estimate(vv, us.goal), vv)
			us.info[vId] = vInfo
		}

		if newCost >= vInfo.GetCost() {
			return
		}

		vInfo.UpdateCost(newCost)
		vInfo.UpdateParent(newVertexEdgePair(uId, e))
		us.pq.Put(vId, newCost)
	})
}

// unpackPath walks the predecessor labels back from t and returns the path in s -> t order.
func (us *Search) unpackPath(s, t da.Index) []da.PathEdge {
	path := make([]da.PathEdge, 0)
	cur := t
	for cur != s {
		parent, ok := us.info[cur].GetParent()
		if !ok {
			break
		}
		path = append(path, da.NewPathEdge(parent.getVertex(), parent.getEdge()))
		cur = parent.getVertex()
	}

	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
