package datastructure

import (
	"github.com/lintang-b-s/navigatorx-waypoints/pkg"
	"github.com/lintang-b-s/navigatorx-waypoints/pkg/geo"
)

// NewGridGraph builds a rows x cols grid of two-way normal roads, spacingKm apart, with its
// south-west corner at (originLat, originLon). vertex (r, c) gets id r*cols + c.
func NewGridGraph(rows, cols int, originLat, originLon, spacingKm float64) *Graph {
	g := NewGraph()
	for r := 0; r < rows; r++ {
		lat, _ := geo.GetDestinationPoint(originLat, originLon, 0, float64(r)*spacingKm)
		for c := 0; c < cols; c++ {
			_, lon := geo.GetDestinationPoint(lat, originLon, 90, float64(c)*spacingKm)
			g.AddVertex(Index(r*cols+c), lat, lon)
		}
	}

	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			u := Index(r*cols + c)
			if c+1 < cols {
				_ = g.AddEdge(u, u+1, pkg.ROAD_NORMAL, false)
				_ = g.AddEdge(u+1, u, pkg.ROAD_NORMAL, false)
			}
			if r+1 < rows {
				v := Index((r+1)*cols + c)
				_ = g.AddEdge(u, v, pkg.ROAD_NORMAL, false)
				_ = g.AddEdge(v, u, pkg.ROAD_NORMAL, false)
			}
		}
	}
	return g
}
