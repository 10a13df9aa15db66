package costfunction

import (
	"math"
	"testing"

	"github.com/lintang-b-s/navigatorx-waypoints/pkg"
	"github.com/lintang-b-s/navigatorx-waypoints/pkg/datastructure"
	"github.com/stretchr/testify/assert"
)

func TestDistanceFunction(t *testing.T) {
	normal := datastructure.NewEdge(1, pkg.ROAD_NORMAL, 2.5, false)
	restricted := datastructure.NewEdge(2, pkg.ROAD_HIGHWAY, 1.5, true)

	testCases := []struct {
		name          string
		useRestricted bool
		edge          *datastructure.Edge
		want          float64
	}{
		{"normal edge", false, normal, 2.5},
		{"restricted edge disabled", false, restricted, math.Inf(1)},
		{"restricted edge enabled", true, restricted, 1.5},
		{"boundary edge", true, nil, math.Inf(1)},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			cf := NewDistanceCostFunction(tt.useRestricted)
			assert.Equal(t, tt.want, cf.GetWeight(tt.edge))
		})
	}
}
