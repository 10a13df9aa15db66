package usecases

import (
	da "github.com/lintang-b-s/navigatorx-waypoints/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-waypoints/pkg/engine/itinerary"
	"github.com/lintang-b-s/navigatorx-waypoints/pkg/engine/routing"
)

type Coordinator interface {
	AddWaypoint(v da.Index) error
	Clear()
	Recompute()
	SetPolicy(p routing.Policy)
	SetMode(m itinerary.Mode)
	GetPolicy() routing.Policy
	GetMode() itinerary.Mode
	GetRoute() itinerary.Snapshot
}

type SpatialIndex interface {
	Snap(qLat, qLon, radius, maxRadius float64) (da.Index, error)
}
