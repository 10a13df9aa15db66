package tsp

// ImprovementMethod is one local search move family. Improve applies the first improving move it
// finds to t in place and reports whether it applied one.
type ImprovementMethod interface {
	Improve(t Tour, d Distances) bool
}

// TwoOpt removes two non-adjacent legs (t[i],t[i+1]) and (t[j],t[j+1]) and reconnects the tour by
// reversing t[i+1..j]. the reversed segment is re-costed exactly, so asymmetric tables are fine.
type TwoOpt struct{}

func (TwoOpt) Improve(t Tour, d Distances) bool {
	n := len(t)
	if n < 4 {
		return false
	}

	for i := 0; i <= n-3; i++ {
		a, b := t[i], t[i+1]
		fwd, rev := 0.0, 0.0 // cost of t[i+1..j] walked forwards and backwards
		for j := i + 1; j <= n-1; j++ {
			if j > i+1 {
				fwd += d.GetCost(t[j-1], t[j])
				rev += d.GetCost(t[j], t[j-1])
			}
			if j < i+2 || (i == 0 && j == n-1) {
				continue
			}
			c, e := t[j], t.at(j+1)

			oldCost := d.GetCost(a, b) + fwd + d.GetCost(c, e)
			newCost := d.GetCost(a, c) + rev + d.GetCost(b, e)
			if improves(oldCost, newCost) {
				t.reverse(i+1, j)
				return true
			}
		}
	}
	return false
}
