package tsp

import (
	"errors"
	"math"

	da "github.com/lintang-b-s/navigatorx-waypoints/pkg/datastructure"
)

// ErrNoCandidate is returned by NearestNeighbor when no unvisited waypoint is reachable from the
// tour's current end, which only happens with an incomplete distance table.
var ErrNoCandidate = errors.New("tsp: no reachable unvisited waypoint")

// Distances is a read-only leg cost table. a missing or unreachable leg costs +inf.
type Distances interface {
	GetCost(s, t da.Index) float64
}

// Tour is a cyclic sequence of waypoints. the leg from the last waypoint back to the first is part
// of the tour.
type Tour []da.Index

func (t Tour) Clone() Tour {
	c := make(Tour, len(t))
	copy(c, t)
	return c
}

func (t Tour) at(i int) da.Index {
	n := len(t)
	return t[((i%n)+n)%n]
}

// Cost is the total cost of the closed tour.
func (t Tour) Cost(d Distances) float64 {
	n := len(t)
	if n < 2 {
		return 0
	}
	total := 0.0
	for i := 0; i < n; i++ {
		total += d.GetCost(t[i], t.at(i+1))
	}
	return total
}

// pathCost is the cost of visiting seq in order.
func pathCost(d Distances, seq []da.Index) float64 {
	total := 0.0
	for i := 0; i+1 < len(seq); i++ {
		total += d.GetCost(seq[i], seq[i+1])
	}
	return total
}

// improves reports whether newCost is strictly lower than oldCost beyond float noise.
func improves(oldCost, newCost float64) bool {
	if math.IsNaN(newCost) {
		return false
	}
	return da.Lt(newCost, oldCost)
}

// reverse reverses t[i..j] in place, i <= j.
func (t Tour) reverse(i, j int) {
	for i < j {
		t[i], t[j] = t[j], t[i]
		i++
		j--
	}
}

// Rotate shifts the tour in place so that start comes first. it reports false if start is absent.
func (t Tour) Rotate(start da.Index) bool {
	k := -1
	for i, v := range t {
		if v == start {
			k = i
			break
		}
	}
	if k < 0 {
		return false
	}
	t.reverse(0, k-1)
	t.reverse(k, len(t)-1)
	t.reverse(0, len(t)-1)
	return true
}
