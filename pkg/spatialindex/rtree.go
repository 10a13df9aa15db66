package spatialindex

import (
	"errors"
	"math"

	da "github.com/lintang-b-s/navigatorx-waypoints/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-waypoints/pkg/geo"
	"github.com/tidwall/rtree"
	"go.uber.org/zap"
)

var ErrNoVertexNearby = errors.New("no road vertex near the query point")

const maxSearchResults = 32

type Rtree struct {
	tr *rtree.RTreeG[VertexPoint]
}

// VertexPoint is a road graph vertex stored as a point in the r-tree.
type VertexPoint struct {
	id    da.Index
	coord geo.Coordinate
}

func (vp VertexPoint) GetID() da.Index {
	return vp.id
}

func (vp VertexPoint) GetCoordinate() geo.Coordinate {
	return vp.coord
}

func newVertexPoint(id da.Index, coord geo.Coordinate) VertexPoint {
	return VertexPoint{
		id:    id,
		coord: coord,
	}
}

func NewRtree() *Rtree {
	var tr rtree.RTreeG[VertexPoint]
	return &Rtree{
		tr: &tr,
	}
}

// Build indexes every loaded vertex of graph.
func (rt *Rtree) Build(graph *da.Graph, log *zap.Logger) {
	log.Info("Building R-tree spatial index...")
	graph.ForVertices(func(v *da.Vertex) {
		p := [2]float64{v.GetLon(), v.GetLat()}
		rt.tr.Insert(p, p, newVertexPoint(v.GetID(), v.GetCoordinate()))
	})
	log.Info("R-tree spatial index built.", zap.Int("vertices", rt.tr.Len()))
}

func (rt *Rtree) Len() int {
	return rt.tr.Len()
}

// SearchWithinRadius returns up to maxSearchResults vertices inside the box of half-diagonal radius (km)
// around (qLat, qLon).
func (rt *Rtree) SearchWithinRadius(qLat, qLon, radius float64) []VertexPoint {
	return rt.searchBox(qLat, qLon, radius, maxSearchResults)
}

// searchBox collects the vertices inside the box of half-diagonal radius. limit <= 0 collects all.
func (rt *Rtree) searchBox(qLat, qLon, radius float64, limit int) []VertexPoint {
	lowerLat, lowerLon := geo.GetDestinationPoint(qLat, qLon, 225, radius)
	upperLat, upperLon := geo.GetDestinationPoint(qLat, qLon, 45, radius)

	results := make([]VertexPoint, 0, 10)
	rt.tr.Search([2]float64{lowerLon, lowerLat}, [2]float64{upperLon, upperLat},
		func(min, max [2]float64, data VertexPoint) bool {
			results = append(results, data)
			return limit <= 0 || len(results) < limit
		})
	return results
}

// nearestInBox returns the vertex inside the search box that is closest to the query point.
func (rt *Rtree) nearestInBox(qLat, qLon, radius float64) (da.Index, float64, bool) {
	cands := rt.searchBox(qLat, qLon, radius, 0)
	if len(cands) == 0 {
		return 0, 0, false
	}
	best, bestDist := cands[0].id, math.Inf(1)
	for _, c := range cands {
		d := geo.CalculateHaversineDistance(qLat, qLon, c.coord.Lat, c.coord.Lon)
		if da.Lt(d, bestDist) || (da.Eq(d, bestDist) && c.id < best) {
			best, bestDist = c.id, d
		}
	}
	return best, bestDist, true
}

// Snap returns the vertex closest to (qLat, qLon). the search box starts at radius km and doubles
// until a vertex is found or maxRadius is passed.
func (rt *Rtree) Snap(qLat, qLon, radius, maxRadius float64) (da.Index, error) {
	if radius <= 0 {
		radius = 0.05
	}
	for r := radius; r <= maxRadius; r *= 2 {
		best, d, ok := rt.nearestInBox(qLat, qLon, r)
		if !ok {
			continue
		}
		// the box only covers the disc of radius r/sqrt2; a closer vertex may sit just outside it
		if d > r/math.Sqrt2 {
			best, _, _ = rt.nearestInBox(qLat, qLon, d*math.Sqrt2*1.01)
		}
		return best, nil
	}
	return 0, ErrNoVertexNearby
}
