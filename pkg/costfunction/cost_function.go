package costfunction

import (
	"github.com/lintang-b-s/navigatorx-waypoints/pkg"
	"github.com/lintang-b-s/navigatorx-waypoints/pkg/datastructure"
)

type CostFunction interface {
	// GetWeight returns the traversal cost of e, or pkg.INF_WEIGHT if e may not be used.
	GetWeight(e *datastructure.Edge) float64
}

// DistanceFunction charges an edge its length. restricted edges cost pkg.INF_WEIGHT unless
// useRestricted is set; a nil (boundary) edge is never traversable.
type DistanceFunction struct {
	useRestricted bool
}

func NewDistanceCostFunction(useRestricted bool) *DistanceFunction {
	return &DistanceFunction{useRestricted: useRestricted}
}

func (df *DistanceFunction) GetWeight(e *datastructure.Edge) float64 {
	if e == nil {
		return pkg.INF_WEIGHT
	}
	if e.IsRestricted() && !df.useRestricted {
		return pkg.INF_WEIGHT
	}
	return e.GetCost()
}

func (df *DistanceFunction) UseRestricted() bool {
	return df.useRestricted
}
