package routing

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/lintang-b-s/navigatorx-waypoints/pkg"
	"github.com/lintang-b-s/navigatorx-waypoints/pkg/costfunction"
	da "github.com/lintang-b-s/navigatorx-waypoints/pkg/datastructure"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var errDiskRead = errors.New("disk read failed")

// brokenGraph fails with an io error for one vertex.
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

// pathGraph is A-B-C with cost 2 per hop plus a direct A-C road of cost 10. all vertices share one
// coordinate so every heuristic estimate is zero.
func pathGraph(t *testing.T) *da.Graph {
	g := da.NewGraph()
	for i := da.Index(0); i < 3; i++ {
		g.AddVertex(i, -7.8, 110.3)
	}
	addTwoWay(t, g, 0, 1, 2, false)
	addTwoWay(t, g, 1, 2, 2, false)
	addTwoWay(t, g, 0, 2, 10, false)
	return g
}

func addTwoWay(t *testing.T, g *da.Graph, u, v da.Index, length float64, restricted bool) {
	class := pkg.ROAD_NORMAL
	if restricted {
		class = pkg.ROAD_HIGHWAY
	}
	require.NoError(t, g.AddEdgeWithLength(u, v, class, length, restricted))
	require.NoError(t, g.AddEdgeWithLength(v, u, class, length, restricted))
}

// randomGeometricGraph places n vertices in a small box and connects each to a few random others
// with geometric edge lengths.
func randomGeometricGraph(t *testing.T, n, degree int, seed int64) *da.Graph {
	rng := rand.New(rand.NewSource(seed))
	g := da.NewGraph()
	for i := 0; i < n; i++ {
		g.AddVertex(da.Index(i), -7.8+rng.Float64()*0.05, 110.3+rng.Float64()*0.05)
	}
	for u := 0; u < n; u++ {
		for k := 0; k < degree; k++ {
			v := rng.Intn(n)
			if v == u {
				continue
			}
			require.NoError(t, g.AddEdge(da.Index(u), da.Index(v), pkg.ROAD_NORMAL, false))
		}
	}
	return g
}

// bellmanFord is the reference single-source shortest path cost used to check the searches.
func bellmanFord(g *da.Graph, s da.Index) map[da.Index]float64 {
	dist := map[da.Index]float64{}
	edges := make([][3]float64, 0)
	g.ForVertices(func(v *da.Vertex) {
		dist[v.GetID()] = math.Inf(1)
		v.ForOutEdges(func(head da.Index, e *da.Edge) {
			if e != nil {
				edges = append(edges, [3]float64{float64(v.GetID()), float64(head), e.GetCost()})
			}
		})
	})
	dist[s] = 0
	for i := 0; i < len(dist); i++ {
		changed := false
		for _, e := range edges {
			u, v := da.Index(e[0]), da.Index(e[1])
			if dist[u]+e[2] < dist[v] {
				dist[v] = dist[u] + e[2]
				changed = true
			}
		}
		if !changed {
			break
		}
	}
	return dist
}

func newTestSearch(g da.GraphProvider, ht HeuristicType, useRestricted bool) *Search {
	return NewSearch(g, costfunction.NewDistanceCostFunction(useRestricted), NewHeuristic(ht, pkg.DEFAULT_HEURISTIC_FACTOR), zap.NewNop())
}
