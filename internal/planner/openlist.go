package planner

import (
	"container/heap"
	"math"

	"github.com/lalitx17/UAVPathOptimizer/internal/grid"
)

// queueEntry is one frontier element: key orders the heap, g and seq break
// ties (lower g first, then earlier insertion, so identical requests replay
// identically).
type queueEntry struct {
	key  float64
	g    float64
	seq  int
	cell grid.Cell
}

type frontier []queueEntry

func (f frontier) Len() int { return len(f) }

func (f frontier) Less(i, j int) bool {
	if f[i].key != f[j].key {
		return f[i].key < f[j].key
	}
	if f[i].g != f[j].g {
		return f[i].g < f[j].g
	}
	return f[i].seq < f[j].seq
}

func (f frontier) Swap(i, j int) { f[i], f[j] = f[j], f[i] }

func (f *frontier) Push(x interface{}) { *f = append(*f, x.(queueEntry)) }

func (f *frontier) Pop() interface{} {
	old := *f
	n := len(old)
	item := old[n-1]
	*f = old[:n-1]
	return item
}

const noParent = -1

// openList is the per-plan search state: one priority queue per heuristic
// with an independent visited set each, plus the single shared cost-to-reach
// array and the flat parent-pointer array. Heuristics only reorder expansion
// priority; g is the sole source of truth for cost.
type openList struct {
	queues  [numQueues]frontier
	visited [numQueues][]bool

	g      []float64 // best known cost-to-reach per cell, shared by all queues
	parent []int32   // flat predecessor indices, noParent when unset

	seq int
}

func newOpenList(cells int) *openList {
	o := &openList{
		g:      make([]float64, cells),
		parent: make([]int32, cells),
	}
	for i := range o.g {
		o.g[i] = math.Inf(1)
		o.parent[i] = noParent
	}
	for q := range o.visited {
		o.visited[q] = make([]bool, cells)
	}
	return o
}

// push inserts cell into queue q with the given key. Decrease-key semantics
// come from reinsertion: a better g simply pushes a fresher, cheaper entry
// and the stale one is discarded when it surfaces.
func (o *openList) push(q int, cell grid.Cell, key, g float64) {
	o.seq++
	heap.Push(&o.queues[q], queueEntry{key: key, g: g, seq: o.seq, cell: cell})
}

// pushAll inserts cell into every queue using the supplied per-queue keys.
func (o *openList) pushAll(cell grid.Cell, keys [numQueues]float64, g float64) {
	for q := 0; q < numQueues; q++ {
		o.push(q, cell, keys[q], g)
	}
}

// settle discards entries at the top of queue q that are already visited in
// that queue or superseded by a better shared g.
func (o *openList) settle(q int, idx func(grid.Cell) int) {
	for len(o.queues[q]) > 0 {
		top := o.queues[q][0]
		i := idx(top.cell)
		if o.visited[q][i] || top.g > o.g[i] {
			heap.Pop(&o.queues[q])
			continue
		}
		return
	}
}

// topKey returns the key of the best live entry in queue q, or +Inf when
// the queue is exhausted.
func (o *openList) topKey(q int, idx func(grid.Cell) int) float64 {
	o.settle(q, idx)
	if len(o.queues[q]) == 0 {
		return math.Inf(1)
	}
	return o.queues[q][0].key
}

// pop removes and returns the best live entry of queue q. ok is false when
// the queue is exhausted.
func (o *openList) pop(q int, idx func(grid.Cell) int) (queueEntry, bool) {
	o.settle(q, idx)
	if len(o.queues[q]) == 0 {
		return queueEntry{}, false
	}
	return heap.Pop(&o.queues[q]).(queueEntry), true
}

// empty reports whether every queue is exhausted.
func (o *openList) empty(idx func(grid.Cell) int) bool {
	for q := 0; q < numQueues; q++ {
		o.settle(q, idx)
		if len(o.queues[q]) > 0 {
			return false
		}
	}
	return true
}
