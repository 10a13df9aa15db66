package datastructure

import (
	"errors"
	"sort"
	"sync"

	"github.com/lintang-b-s/navigatorx-waypoints/pkg"
	"github.com/lintang-b-s/navigatorx-waypoints/pkg/geo"
)

type Index uint32

// ErrVertexNotLoaded is returned by a GraphProvider for a vertex whose tile is not in memory.
// the routing core treats it as a dead end, never as a failure.
var ErrVertexNotLoaded = errors.New("vertex not loaded")

// GraphProvider owns the road graph. vertices it returns must not be mutated afterwards.
type GraphProvider interface {
	GetVertex(id Index) (*Vertex, error)
}

// Edge is an immutable directed road segment to head.
type Edge struct {
	head       Index
	class      pkg.RoadClass
	length     float64 // km
	restricted bool
}

func NewEdge(head Index, class pkg.RoadClass, length float64, restricted bool) *Edge {
	if length < 0 {
		length = 0
	}
	return &Edge{
		head:       head,
		class:      class,
		length:     length,
		restricted: restricted,
	}
}

func (e *Edge) GetHead() Index {
	return e.head
}

func (e *Edge) GetRoadClass() pkg.RoadClass {
	return e.class
}

func (e *Edge) GetLength() float64 {
	return e.length
}

// GetCost is the traversal cost before any policy is applied.
func (e *Edge) GetCost() float64 {
	return e.length
}

func (e *Edge) IsRestricted() bool {
	return e.restricted
}

type Vertex struct {
	id        Index
	coord     geo.Coordinate
	adjacency map[Index]*Edge // a nil edge means connected but not traversable (stitched tile boundary)
	neighbors []Index         // sorted keys of adjacency
}

func NewVertex(lat, lon float64, id Index) *Vertex {
	return &Vertex{
		id:        id,
		coord:     geo.NewCoordinate(lat, lon),
		adjacency: make(map[Index]*Edge),
		neighbors: make([]Index, 0),
	}
}

func (v *Vertex) GetID() Index {
	return v.id
}

func (v *Vertex) GetLat() float64 {
	return v.coord.Lat
}

func (v *Vertex) GetLon() float64 {
	return v.coord.Lon
}

func (v *Vertex) GetCoordinate() geo.Coordinate {
	return v.coord
}

func (v *Vertex) GetOutDegree() int {
	return len(v.neighbors)
}

// GetEdge returns the edge to head. ok is true for a nil boundary edge too.
func (v *Vertex) GetEdge(head Index) (*Edge, bool) {
	e, ok := v.adjacency[head]
	return e, ok
}

// ForOutEdges calls handle for every adjacency entry in ascending head order. e may be nil.
func (v *Vertex) ForOutEdges(handle func(head Index, e *Edge)) {
	for _, head := range v.neighbors {
		handle(head, v.adjacency[head])
	}
}

// withEdge returns a copy of v with the adjacency entry head set to e.
func (v *Vertex) withEdge(head Index, e *Edge) *Vertex {
	nv := &Vertex{
		id:        v.id,
		coord:     v.coord,
		adjacency: make(map[Index]*Edge, len(v.adjacency)+1),
		neighbors: make([]Index, 0, len(v.neighbors)+1),
	}
	for k, old := range v.adjacency {
		nv.adjacency[k] = old
	}
	nv.neighbors = append(nv.neighbors, v.neighbors...)
	if _, ok := nv.adjacency[head]; !ok {
		i := sort.Search(len(nv.neighbors), func(i int) bool { return nv.neighbors[i] >= head })
		nv.neighbors = append(nv.neighbors, 0)
		copy(nv.neighbors[i+1:], nv.neighbors[i:])
		nv.neighbors[i] = head
	}
	nv.adjacency[head] = e
	return nv
}

// Graph is an in-memory GraphProvider whose vertices can be loaded and unloaded tile by tile.
// published vertices are never mutated: adding an edge swaps in a copy, so readers holding an
// older *Vertex stay consistent.
type Graph struct {
	mu       sync.RWMutex
	vertices map[Index]*Vertex
	unloaded map[Index]struct{}
}

func NewGraph() *Graph {
	return &Graph{
		vertices: make(map[Index]*Vertex),
		unloaded: make(map[Index]struct{}),
	}
}

func (g *Graph) AddVertex(id Index, lat, lon float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.vertices[id]; ok {
		return
	}
	g.vertices[id] = NewVertex(lat, lon, id)
}

// AddEdge adds a directed road from tail to head. its length is the equirectangular distance
// between the endpoints.
func (g *Graph) AddEdge(tail, head Index, class pkg.RoadClass, restricted bool) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	u, ok := g.vertices[tail]
	if !ok {
		return ErrVertexNotLoaded
	}
	v, ok := g.vertices[head]
	if !ok {
		return ErrVertexNotLoaded
	}
	length := geo.CalculateEuclidianDistanceEquirectangularProj(u.GetLat(), u.GetLon(), v.GetLat(), v.GetLon())
	g.vertices[tail] = u.withEdge(head, NewEdge(head, class, length, restricted))
	return nil
}

// AddEdgeWithLength adds a directed road with an explicit length in km.
func (g *Graph) AddEdgeWithLength(tail, head Index, class pkg.RoadClass, length float64, restricted bool) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	u, ok := g.vertices[tail]
	if !ok {
		return ErrVertexNotLoaded
	}
	if _, ok := g.vertices[head]; !ok {
		return ErrVertexNotLoaded
	}
	g.vertices[tail] = u.withEdge(head, NewEdge(head, class, length, restricted))
	return nil
}

// AddBoundaryLink marks tail and head as connected without a traversable road.
func (g *Graph) AddBoundaryLink(tail, head Index) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	u, ok := g.vertices[tail]
	if !ok {
		return ErrVertexNotLoaded
	}
	g.vertices[tail] = u.withEdge(head, nil)
	return nil
}

func (g *Graph) Unload(ids ...Index) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, id := range ids {
		g.unloaded[id] = struct{}{}
	}
}

func (g *Graph) Load(ids ...Index) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, id := range ids {
		delete(g.unloaded, id)
	}
}

func (g *Graph) GetVertex(id Index) (*Vertex, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if _, ok := g.unloaded[id]; ok {
		return nil, ErrVertexNotLoaded
	}
	v, ok := g.vertices[id]
	if !ok {
		return nil, ErrVertexNotLoaded
	}
	return v, nil
}

func (g *Graph) NumberOfVertices() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.vertices)
}

// ForVertices calls handle for every loaded vertex in ascending id order.
func (g *Graph) ForVertices(handle func(v *Vertex)) {
	g.mu.RLock()
	ids := make([]Index, 0, len(g.vertices))
	for id := range g.vertices {
		if _, unloaded := g.unloaded[id]; unloaded {
			continue
		}
		ids = append(ids, id)
	}
	vs := make([]*Vertex, 0, len(ids))
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		vs = append(vs, g.vertices[id])
	}
	g.mu.RUnlock()

	for _, v := range vs {
		handle(v)
	}
}
