package tsp

import (
	"fmt"
	"strings"

	da "github.com/lintang-b-s/navigatorx-waypoints/pkg/datastructure"
)

// Routine chains improvement methods, cheapest first. after any method succeeds it restarts from
// the first one, and it stops after a pass in which no method changes the tour. a Routine is itself
// an ImprovementMethod.
type Routine struct {
	methods []ImprovementMethod
}

func NewRoutine(methods ...ImprovementMethod) *Routine {
	return &Routine{methods: methods}
}

func DefaultRoutine() *Routine {
	return NewRoutine(TwoOpt{}, ThreeOpt{})
}

func (r *Routine) Improve(t Tour, d Distances) bool {
	changed := false
	for i := 0; i < len(r.methods); {
		if r.methods[i].Improve(t, d) {
			changed = true
			i = 0
			continue
		}
		i++
	}
	return changed
}

// ParseImprovement maps a configured improvement name to its method. "none" keeps the
// nearest-neighbour tour as built.
func ParseImprovement(name string) (ImprovementMethod, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "routine":
		return DefaultRoutine(), nil
	case "2opt", "two_opt":
		return TwoOpt{}, nil
	case "3opt", "three_opt":
		return ThreeOpt{}, nil
	case "none":
		return NewRoutine(), nil
	default:
		return nil, fmt.Errorf("tsp: unknown improvement method %q", name)
	}
}

// Solver runs nearest-neighbour construction followed by an improvement method.
type Solver struct {
	improvement ImprovementMethod
}

func NewSolver(improvement ImprovementMethod) *Solver {
	if improvement == nil {
		improvement = DefaultRoutine()
	}
	return &Solver{improvement: improvement}
}

// Solve orders waypoints into a tour starting at waypoints[0] and returns it with its cost.
// construction fails with ErrNoCandidate if the table leaves some waypoint unreachable.
func (s *Solver) Solve(waypoints []da.Index, d Distances) (Tour, float64, error) {
	tour, err := NearestNeighbor(waypoints, d)
	if err != nil {
		return tour, 0, err
	}
	if len(tour) > 0 {
		start := tour[0]
		s.improvement.Improve(tour, d)
		tour.Rotate(start)
	}
	return tour, tour.Cost(d), nil
}
