package routing

type HeuristicType uint8

const (
	DIJKSTRA HeuristicType = iota
	ASTAR
)

func (ht HeuristicType) String() string {
	switch ht {
	case ASTAR:
		return "astar"
	default:
		return "dijkstra"
	}
}

func ParseHeuristicType(s string) (HeuristicType, bool) {
	switch s {
	case "dijkstra":
		return DIJKSTRA, true
	case "astar":
		return ASTAR, true
	default:
		return DIJKSTRA, false
	}
}
