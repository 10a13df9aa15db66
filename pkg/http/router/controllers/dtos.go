package controllers

import (
	"math"

	"github.com/lintang-b-s/navigatorx-waypoints/pkg/http/usecases"
)

type addWaypointRequest struct {
	Lat *float64 `json:"lat" validate:"required,min=-90,max=90"`
	Lon *float64 `json:"lon" validate:"required,min=-180,max=180"`
}

type addWaypointResponse struct {
	Vertex uint32 `json:"vertex"`
}

type setPolicyRequest struct {
	Mode          string `json:"mode" validate:"required,oneof=point_to_point tsp"`
	Heuristic     string `json:"heuristic" validate:"required,oneof=dijkstra astar"`
	UseRestricted bool   `json:"use_restricted"`
}

type coordinateResponse struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type legResponse struct {
	Start     uint32  `json:"start"`
	End       uint32  `json:"end"`
	Distance  float64 `json:"distance"`
	Reachable bool    `json:"reachable"`
	Path      string  `json:"path"`
}

type routeResponse struct {
	Generation    uint64               `json:"generation"`
	Mode          string               `json:"mode"`
	Heuristic     string               `json:"heuristic"`
	UseRestricted bool                 `json:"use_restricted"`
	Waypoints     []coordinateResponse `json:"waypoints"`
	Tour          []uint32             `json:"tour,omitempty"`
	Legs          []legResponse        `json:"legs"`
	Distance      float64              `json:"distance"`
	Visited       int                  `json:"visited"`
	Pending       int                  `json:"pending"`
	Status        string               `json:"status"`
}

// finite maps NaN and the infinities to 0; encoding/json rejects them.
func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func NewRouteResponse(route usecases.Route) routeResponse {
	resp := routeResponse{
		Generation:    route.Generation,
		Mode:          route.Mode,
		Heuristic:     route.Heuristic,
		UseRestricted: route.UseRestricted,
		Waypoints:     make([]coordinateResponse, 0, len(route.Waypoints)),
		Legs:          make([]legResponse, 0, len(route.Legs)),
		Distance:      finite(route.Distance),
		Visited:       route.Visited,
		Pending:       route.Pending,
		Status:        route.Status,
	}
	for _, c := range route.Waypoints {
		resp.Waypoints = append(resp.Waypoints, coordinateResponse{Lat: c.Lat, Lon: c.Lon})
	}
	for _, v := range route.Tour {
		resp.Tour = append(resp.Tour, uint32(v))
	}
	for _, l := range route.Legs {
		resp.Legs = append(resp.Legs, legResponse{
			Start:     uint32(l.Start),
			End:       uint32(l.End),
			Distance:  finite(l.Cost),
			Reachable: l.Reachable,
			Path:      l.Polyline,
		})
	}
	return resp
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}
