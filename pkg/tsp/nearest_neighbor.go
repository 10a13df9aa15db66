package tsp

import (
	"math"

	da "github.com/lintang-b-s/navigatorx-waypoints/pkg/datastructure"
)

// NearestNeighbor builds a tour starting at waypoints[0], each time moving to the unvisited waypoint
// with the smallest leg cost. ties go to the waypoint listed first. duplicates are visited once.
func NearestNeighbor(waypoints []da.Index, d Distances) (Tour, error) {
	unvisited := make([]da.Index, 0, len(waypoints))
	seen := make(map[da.Index]struct{}, len(waypoints))
	for _, w := range waypoints {
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		unvisited = append(unvisited, w)
	}
	if len(unvisited) == 0 {
		return Tour{}, nil
	}

	tour := make(Tour, 0, len(unvisited))
	cur := unvisited[0]
	tour = append(tour, cur)
	unvisited = unvisited[1:]

	for len(unvisited) > 0 {
		best := -1
		bestCost := math.Inf(1)
		for i, cand := range unvisited {
			c := d.GetCost(cur, cand)
			if c < bestCost {
				best = i
				bestCost = c
			}
		}
		if best < 0 {
			return tour, ErrNoCandidate
		}

		cur = unvisited[best]
		tour = append(tour, cur)
		unvisited = append(unvisited[:best], unvisited[best+1:]...)
	}
	return tour, nil
}
