package tsp

import (
	da "github.com/lintang-b-s/navigatorx-waypoints/pkg/datastructure"
)

type segment struct {
	l, r     int
	reversed bool
}

type reconnection [2]segment

// ThreeOpt removes three legs (t[i],t[i+1]), (t[j],t[j+1]), (t[k],t[k+1]), splitting off the
// segments A = t[i+1..j] and B = t[j+1..k], and tries every way of putting them back with either
// orientation in either order.
type ThreeOpt struct{}

func (ThreeOpt) Improve(t Tour, d Distances) bool {
	n := len(t)
	if n < 3 {
		return false
	}

	for i := 0; i <= n-3; i++ {
		a := t[i]
		aFwd, aRev := 0.0, 0.0
		for j := i + 1; j <= n-2; j++ {
			if j > i+1 {
				aFwd += d.GetCost(t[j-1], t[j])
				aRev += d.GetCost(t[j], t[j-1])
			}
			bFwd, bRev := 0.0, 0.0
			for k := j + 1; k <= n-1; k++ {
				if k > j+1 {
					bFwd += d.GetCost(t[k-1], t[k])
					bRev += d.GetCost(t[k], t[k-1])
				}
				e := t.at(k + 1)

				segA := segment{l: i + 1, r: j}
				segB := segment{l: j + 1, r: k}
				internal := func(s segment) float64 {
					switch {
					case s == segA:
						return aFwd
					case s == segB:
						return bFwd
					case s.l == segA.l:
						return aRev
					default:
						return bRev
					}
				}
				cost := func(rc reconnection) float64 {
					first, second := rc[0], rc[1]
					return d.GetCost(a, t.first(first)) + internal(first) +
						d.GetCost(t.last(first), t.first(second)) + internal(second) +
						d.GetCost(t.last(second), e)
				}

				oldCost := cost(reconnection{segA, segB})
				for _, rc := range reconnections(segA, segB) {
					if improves(oldCost, cost(rc)) {
						t.apply(i+1, k, rc)
						return true
					}
				}
			}
		}
	}
	return false
}

func reconnections(a, b segment) []reconnection {
	ar := segment{l: a.l, r: a.r, reversed: true}
	br := segment{l: b.l, r: b.r, reversed: true}
	return []reconnection{
		{ar, b},
		{a, br},
		{ar, br},
		{b, a},
		{b, ar},
		{br, a},
		{br, ar},
	}
}

func (t Tour) first(s segment) da.Index {
	if s.reversed {
		return t[s.r]
	}
	return t[s.l]
}

func (t Tour) last(s segment) da.Index {
	if s.reversed {
		return t[s.l]
	}
	return t[s.r]
}

// apply rewrites t[from..to] as the concatenation of the reconnection's segments.
func (t Tour) apply(from, to int, rc reconnection) {
	buf := make([]da.Index, 0, to-from+1)
	for _, s := range rc {
		if s.reversed {
			for p := s.r; p >= s.l; p-- {
				buf = append(buf, t[p])
			}
			continue
		}
		buf = append(buf, t[s.l:s.r+1]...)
	}
	copy(t[from:to+1], buf)
}
