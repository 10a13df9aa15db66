package datastructure

import (
	"errors"
)

var ErrEmptyHeap = errors.New("heap is empty")

// RankFunc maps an item and its stored cost to the key the heap orders by.
// a nil RankFunc orders by the stored cost itself (dijkstra). for A* pass cost + estimate(item, goal).
type RankFunc[T comparable] func(item T, cost float64) float64

type PriorityQueueNode[T comparable] struct {
	rank    float64
	cost    float64
	item    T
	itemPos int
}

func (p *PriorityQueueNode[T]) GetItem() T {
	return p.item
}

func (p *PriorityQueueNode[T]) GetRank() float64 {
	return p.rank
}

func (p *PriorityQueueNode[T]) GetCost() float64 {
	return p.cost
}

func (p *PriorityQueueNode[T]) SetPos(i int) {
	p.itemPos = i
}

func (p *PriorityQueueNode[T]) GetPos() int {
	return p.itemPos
}

// MinHeap is a d-ary min heap with one entry per item and an item -> position index,
// so a decrease-key is O(log n). the stored cost of an entry is never touched by the rank function;
// it stays the true accumulated cost.
type MinHeap[T comparable] struct {
	heap  []*PriorityQueueNode[T]
	pos   map[T]int
	rankF RankFunc[T]
	d     int
}

func NewBinaryHeap[T comparable]() *MinHeap[T] {
	return NewdAryHeap[T](2, nil)
}

func NewBinaryHeapWithRank[T comparable](rankF RankFunc[T]) *MinHeap[T] {
	return NewdAryHeap(2, rankF)
}

func NewdAryHeap[T comparable](d int, rankF RankFunc[T]) *MinHeap[T] {
	if d < 2 {
		d = 2
	}
	return &MinHeap[T]{
		heap:  make([]*PriorityQueueNode[T], 0),
		pos:   make(map[T]int),
		rankF: rankF,
		d:     d,
	}
}

func (h *MinHeap[T]) rank(item T, cost float64) float64 {
	if h.rankF == nil {
		return cost
	}
	return h.rankF(item, cost)
}

func (h *MinHeap[T]) parent(index int) int {
	return (index - 1) / h.d
}

// heapifyUp moves index towards the root while its parent ranks higher. O(log n).
func (h *MinHeap[T]) heapifyUp(index int) {
	for index != 0 && h.heap[index].rank < h.heap[h.parent(index)].rank {
		h.Swap(index, h.parent(index))
		index = h.parent(index)
	}
}

// heapifyDown moves index towards the leaves while one of its children ranks lower. O(log n).
func (h *MinHeap[T]) heapifyDown(index int) {
	for {
		leftMostChild := index*h.d + 1
		if leftMostChild >= len(h.heap) {
			return
		}

		sentinel := leftMostChild + h.d
		if sentinel > len(h.heap) {
			sentinel = len(h.heap)
		}

		smallest := leftMostChild
		for i := leftMostChild + 1; i < sentinel; i++ {
			if h.heap[i].rank < h.heap[smallest].rank {
				smallest = i
			}
		}

		if h.heap[smallest].rank >= h.heap[index].rank {
			return
		}
		h.Swap(index, smallest)
		index = smallest
	}
}

func (h *MinHeap[T]) Swap(i, j int) {
	h.heap[i], h.heap[j] = h.heap[j], h.heap[i]

	h.heap[i].SetPos(i)
	h.heap[j].SetPos(j)
	h.pos[h.heap[i].item] = i
	h.pos[h.heap[j].item] = j
}

func (h *MinHeap[T]) IsEmpty() bool {
	return len(h.heap) == 0
}

func (h *MinHeap[T]) Size() int {
	return len(h.heap)
}

func (h *MinHeap[T]) ContainsKey(item T) bool {
	_, ok := h.pos[item]
	return ok
}

// GetCost returns the stored (unranked) cost of item if it is queued.
func (h *MinHeap[T]) GetCost(item T) (float64, bool) {
	i, ok := h.pos[item]
	if !ok {
		return 0, false
	}
	return h.heap[i].cost, true
}

// Clear empties the heap but keeps its backing array.
func (h *MinHeap[T]) Clear() {
	for i := range h.heap {
		h.heap[i] = nil
	}
	h.heap = h.heap[:0]
	clear(h.pos)
}

// Put inserts item if absent. if present, the entry is replaced only when the new rank is strictly
// lower. it reports whether the queue changed.
func (h *MinHeap[T]) Put(item T, cost float64) bool {
	rank := h.rank(item, cost)
	if i, ok := h.pos[item]; ok {
		node := h.heap[i]
		if rank >= node.rank {
			return false
		}
		node.rank = rank
		node.cost = cost
		h.heapifyUp(i)
		return true
	}

	node := &PriorityQueueNode[T]{rank: rank, cost: cost, item: item}
	h.heap = append(h.heap, node)
	index := len(h.heap) - 1
	node.SetPos(index)
	h.pos[item] = index
	h.heapifyUp(index)
	return true
}

// Peek returns the minimum entry without removing it.
func (h *MinHeap[T]) Peek() (T, float64, error) {
	if h.IsEmpty() {
		var zero T
		return zero, 0, ErrEmptyHeap
	}
	return h.heap[0].item, h.heap[0].cost, nil
}

// Poll removes the minimum entry and returns its item and stored cost. O(log n).
func (h *MinHeap[T]) Poll() (T, float64, error) {
	if h.IsEmpty() {
		var zero T
		return zero, 0, ErrEmptyHeap
	}
	root := h.heap[0]

	last := len(h.heap) - 1
	h.Swap(0, last)

	h.heap[last] = nil
	h.heap = h.heap[:last]
	delete(h.pos, root.item)
	root.SetPos(-1)
	if len(h.heap) > 0 {
		h.heapifyDown(0)
	}

	return root.item, root.cost, nil
}
