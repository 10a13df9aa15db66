package itinerary

import (
	"errors"
	"fmt"
	"strings"

	da "github.com/lintang-b-s/navigatorx-waypoints/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-waypoints/pkg/engine/routing"
)

var ErrCoordinatorClosed = errors.New("coordinator is closed")

type Mode uint8

const (
	POINT_TO_POINT Mode = iota
	TSP
)

func (m Mode) String() string {
	switch m {
	case TSP:
		return "tsp"
	default:
		return "point_to_point"
	}
}

func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "point_to_point", "p2p", "":
		return POINT_TO_POINT, nil
	case "tsp":
		return TSP, nil
	}
	return POINT_TO_POINT, fmt.Errorf("unknown mode %q", s)
}

// Listener is called by the worker after every published leg or tour, outside the coordinator lock.
type Listener func(Snapshot)

// Snapshot is a copy of the published route state. it shares nothing mutable with the coordinator.
type Snapshot struct {
	Generation uint64
	Mode       Mode
	Policy     routing.Policy
	Waypoints  []da.Index
	// Legs holds point-to-point legs in completion order, or the tour legs in tour order.
	Legs     []da.RouteResult
	Tour     []da.Index
	Distance float64
	Visited  int
	Pending  int
	Running  bool
	Status   string
}

type taskKind uint8

const (
	legTask taskKind = iota
	tourTask
)

type task struct {
	kind      taskKind
	key       da.RouteKey
	waypoints []da.Index
}

func newLegTask(s, t da.Index) task {
	return task{kind: legTask, key: da.NewRouteKey(s, t)}
}

func newTourTask(waypoints []da.Index) task {
	wp := make([]da.Index, len(waypoints))
	copy(wp, waypoints)
	return task{kind: tourTask, waypoints: wp}
}

type taskResult struct {
	kind    taskKind
	legs    []da.RouteResult
	tour    []da.Index
	visited int
	err     error
}
