package routing

import (
	da "github.com/lintang-b-s/navigatorx-waypoints/pkg/datastructure"
)

type vertexEdgePair struct {
	vertex da.Index
	edge   *da.Edge
}

func (ve vertexEdgePair) getEdge() *da.Edge {
	return ve.edge
}

func (ve vertexEdgePair) getVertex() da.Index {
	return ve.vertex
}

func newVertexEdgePair(vertex da.Index, edge *da.Edge) vertexEdgePair {
	return vertexEdgePair{
		vertex: vertex,
		edge:   edge,
	}
}

// VertexInfo is the search label of one vertex.
type VertexInfo struct {
	cost     float64
	estimate float64
	parent   vertexEdgePair
	hasPar   bool
	scanned  bool // settled, cost is final
	vertex   *da.Vertex
}

func NewVertexInfo(cost, estimate float64, vertex *da.Vertex) *VertexInfo {
	return &VertexInfo{
		cost:     cost,
		estimate: estimate,
		vertex:   vertex,
	}
}

func (vi *VertexInfo) GetCost() float64 {
	return vi.cost
}

func (vi *VertexInfo) UpdateCost(cost float64) {
	vi.cost = cost
}

func (vi *VertexInfo) UpdateParent(par vertexEdgePair) {
	vi.parent = par
	vi.hasPar = true
}

func (vi *VertexInfo) GetParent() (vertexEdgePair, bool) {
	return vi.parent, vi.hasPar
}

func (vi *VertexInfo) Scan() {
	vi.scanned = true
}

func (vi *VertexInfo) IsScanned() bool {
	return vi.scanned
}
