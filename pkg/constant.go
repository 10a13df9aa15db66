package pkg

import "math"

// INF_WEIGHT marks an unreachable target or an edge excluded by the current policy.
var INF_WEIGHT = math.Inf(1)

const (
	// failure sentinels, never produced by a real search
	IO_FAILURE_WEIGHT    float64 = -1
	OUT_OF_MEMORY_WEIGHT float64 = -2

	// safety valve for interactive searches, not a correctness bound.
	DEFAULT_MAX_EXPANSIONS = 5000
	DEFAULT_MAX_LABELS     = 2_000_000

	// great-circle estimate is scaled down so it never exceeds the equirectangular edge length sum.
	DEFAULT_HEURISTIC_FACTOR = 0.95

	DEFAULT_LEG_CACHE_SIZE = 4096
)

const (
	DEBUG = false
)

type RoadClass uint8

const (
	ROAD_NORMAL RoadClass = iota
	ROAD_RAMP
	ROAD_HIGHWAY
	ROAD_FERRY
	ROAD_UNKNOWN
)

func (rc RoadClass) String() string {
	switch rc {
	case ROAD_NORMAL:
		return "normal"
	case ROAD_RAMP:
		return "ramp"
	case ROAD_HIGHWAY:
		return "highway"
	case ROAD_FERRY:
		return "ferry"
	default:
		return "unknown"
	}
}

// GetRoadClass maps an osm highway tag to the road class used by the edge-cost policy.
func GetRoadClass(roadType string) RoadClass {
	switch roadType {
	case "motorway", "trunk", "motorroad":
		return ROAD_HIGHWAY
	case "motorway_link", "trunk_link", "primary_link", "secondary_link", "tertiary_link":
		return ROAD_RAMP
	case "primary", "secondary", "tertiary", "unclassified", "residential", "service",
		"living_street", "road", "track":
		return ROAD_NORMAL
	case "ferry":
		return ROAD_FERRY
	default:
		return ROAD_UNKNOWN
	}
}
