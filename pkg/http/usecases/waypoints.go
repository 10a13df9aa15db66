package usecases

import (
	"errors"

	da "github.com/lintang-b-s/navigatorx-waypoints/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-waypoints/pkg/engine/itinerary"
	"github.com/lintang-b-s/navigatorx-waypoints/pkg/engine/routing"
	"github.com/lintang-b-s/navigatorx-waypoints/pkg/geo"
	"github.com/lintang-b-s/navigatorx-waypoints/pkg/spatialindex"
	"github.com/lintang-b-s/navigatorx-waypoints/pkg/util"
	"go.uber.org/zap"
)

// Leg is a computed leg ready for a map renderer.
type Leg struct {
	Start     da.Index
	End       da.Index
	Cost      float64
	Reachable bool
	Polyline  string
}

type Route struct {
	Generation    uint64
	Mode          string
	Heuristic     string
	UseRestricted bool
	Waypoints     []geo.Coordinate
	WaypointIDs   []da.Index
	Tour          []da.Index
	Legs          []Leg
	Distance      float64
	Visited       int
	Pending       int
	Status        string
}

type WaypointService struct {
	log           *zap.Logger
	coordinator   Coordinator
	spatialIndex  SpatialIndex
	graph         da.GraphProvider
	snapRadius    float64
	maxSnapRadius float64
}

func NewWaypointService(log *zap.Logger, coordinator Coordinator, spatialIndex SpatialIndex,
	graph da.GraphProvider, snapRadius, maxSnapRadius float64) *WaypointService {
	return &WaypointService{
		log:           log,
		coordinator:   coordinator,
		spatialIndex:  spatialIndex,
		graph:         graph,
		snapRadius:    snapRadius,
		maxSnapRadius: maxSnapRadius,
	}
}

// AddWaypoint snaps (lat, lon) to the nearest road vertex and appends it to the itinerary.
func (ws *WaypointService) AddWaypoint(lat, lon float64) (da.Index, error) {
	v, err := ws.spatialIndex.Snap(lat, lon, ws.snapRadius, ws.maxSnapRadius)
	if err != nil {
		if errors.Is(err, spatialindex.ErrNoVertexNearby) {
			return 0, util.WrapErrorf(err, util.ErrNotFound, "no road near %f,%f", lat, lon)
		}
		return 0, util.WrapErrorf(err, util.ErrInternalServerError, "%s", util.MessageInternalServerError)
	}
	if err := ws.coordinator.AddWaypoint(v); err != nil {
		return 0, util.WrapErrorf(err, util.ErrInternalServerError, "could not add waypoint")
	}
	ws.log.Debug("waypoint added", zap.Uint32("vertex", uint32(v)))
	return v, nil
}

func (ws *WaypointService) ClearWaypoints() {
	ws.coordinator.Clear()
}

func (ws *WaypointService) Recompute() {
	ws.coordinator.Recompute()
}

// SetPolicy applies a mode and routing policy. only what changed triggers a recomputation.
func (ws *WaypointService) SetPolicy(mode, heuristic string, useRestricted bool) error {
	m, err := itinerary.ParseMode(mode)
	if err != nil {
		return util.WrapErrorf(err, util.ErrBadParamInput, "invalid mode")
	}
	ht, ok := routing.ParseHeuristicType(heuristic)
	if !ok {
		return util.WrapErrorf(nil, util.ErrBadParamInput, "invalid heuristic %q", heuristic)
	}

	policy := routing.Policy{Heuristic: ht, UseRestricted: useRestricted}
	if ws.coordinator.GetMode() != m {
		ws.coordinator.SetMode(m)
	}
	if ws.coordinator.GetPolicy() != policy {
		ws.coordinator.SetPolicy(policy)
	}
	return nil
}

func (ws *WaypointService) GetRoute() Route {
	return ws.NewRoute(ws.coordinator.GetRoute())
}

// NewRoute resolves the vertices of snap to coordinates and encodes every leg as a polyline.
func (ws *WaypointService) NewRoute(snap itinerary.Snapshot) Route {
	route := Route{
		Generation:    snap.Generation,
		Mode:          snap.Mode.String(),
		Heuristic:     snap.Policy.Heuristic.String(),
		UseRestricted: snap.Policy.UseRestricted,
		Waypoints:     make([]geo.Coordinate, 0, len(snap.Waypoints)),
		WaypointIDs:   snap.Waypoints,
		Tour:          snap.Tour,
		Legs:          make([]Leg, 0, len(snap.Legs)),
		Distance:      util.RoundFloat(snap.Distance, 4),
		Visited:       snap.Visited,
		Pending:       snap.Pending,
		Status:        snap.Status,
	}

	for _, w := range snap.Waypoints {
		if c, ok := ws.coordinate(w); ok {
			route.Waypoints = append(route.Waypoints, c)
		}
	}

	for _, leg := range snap.Legs {
		l := Leg{
			Start:     leg.GetStart(),
			End:       leg.GetEnd(),
			Reachable: leg.Found(),
		}
		if leg.Found() {
			l.Cost = util.RoundFloat(leg.GetCost(), 4)
			coords := make([]geo.Coordinate, 0, leg.NumberOfEdges()+1)
			for _, v := range leg.GetVertices() {
				if c, ok := ws.coordinate(v); ok {
					coords = append(coords, c)
				}
			}
			l.Polyline = geo.PolylineFromCoords(coords)
		}
		route.Legs = append(route.Legs, l)
	}
	return route
}

func (ws *WaypointService) coordinate(id da.Index) (geo.Coordinate, bool) {
	v, err := ws.graph.GetVertex(id)
	if err != nil {
		ws.log.Debug("vertex not available for drawing", zap.Uint32("vertex", uint32(id)), zap.Error(err))
		return geo.Coordinate{}, false
	}
	return v.GetCoordinate(), true
}
