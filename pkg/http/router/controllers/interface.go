package controllers

import (
	da "github.com/lintang-b-s/navigatorx-waypoints/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-waypoints/pkg/http/usecases"
)

type WaypointService interface {
	AddWaypoint(lat, lon float64) (da.Index, error)
	ClearWaypoints()
	Recompute()
	SetPolicy(mode, heuristic string, useRestricted bool) error
	GetRoute() usecases.Route
}
