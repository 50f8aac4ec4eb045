package planner

import (
	"container/heap"
	"context"
	"fmt"
	"math"

	"github.com/lalitx17/UAVPathOptimizer/internal/grid"
)

// aStarNode is a node in the single-queue A* search.
type aStarNode struct {
	CellIdx int     // flat index of the cell
	G       float64 // cost from start to this node
	H       float64 // heuristic cost from this node to the goal
	F       float64 // total cost (G + H)
	Seq     int     // insertion order, breaks F ties deterministically
	Index   int     // index in the heap
}

// aStarQueue implements heap.Interface with in-place decrease-key via
// heap.Fix.
type aStarQueue []*aStarNode

func (pq aStarQueue) Len() int { return len(pq) }

func (pq aStarQueue) Less(i, j int) bool {
	if pq[i].F != pq[j].F {
		return pq[i].F < pq[j].F
	}
	if pq[i].G != pq[j].G {
		return pq[i].G < pq[j].G
	}
	return pq[i].Seq < pq[j].Seq
}

func (pq aStarQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].Index = i
	pq[j].Index = j
}

func (pq *aStarQueue) Push(x interface{}) {
	n := len(*pq)
	node := x.(*aStarNode)
	node.Index = n
	*pq = append(*pq, node)
}

func (pq *aStarQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	node := old[n-1]
	old[n-1] = nil
	node.Index = -1
	*pq = old[0 : n-1]
	return node
}

// AStarGrid is the baseline single-heuristic variant: plain A* over the
// occupancy grid with the same admissible heuristic the bandit planner's
// anchor queue uses. No suboptimality weighting, so completed plans are
// optimal and BoundMet is always true on success.
type AStarGrid struct {
	tuning Tuning
}

// NewAStarGrid builds the variant.
func NewAStarGrid(t Tuning) *AStarGrid {
	t.applyDefaults()
	return &AStarGrid{tuning: t}
}

// Name implements Algorithm.
func (p *AStarGrid) Name() string { return "a_star_grid" }

// Plan implements Algorithm.
func (p *AStarGrid) Plan(ctx context.Context, req Request) (*Result, error) {
	snap := req.Snapshot
	if snap == nil {
		return nil, fmt.Errorf("nil snapshot: %w", ErrInvalidRequest)
	}
	g := snap.Grid

	start, goal, err := validateEndpoints(g, req.Start, req.Goal)
	if err != nil {
		return nil, err
	}
	if start == goal {
		return singleCellResult(snap, start, p.tuning.Speed), nil
	}

	budget := req.MaxExpansions
	if budget <= 0 {
		budget = p.tuning.MaxExpansions
	}

	hs := newHeuristicSet(snap, start, goal, req.AllowDiagonal, p.tuning.Speed, p.tuning.BearingGamma)

	gCost := make([]float64, g.NumCells())
	parent := make([]int32, g.NumCells())
	for i := range gCost {
		gCost[i] = math.Inf(1)
		parent[i] = noParent
	}

	openSet := &aStarQueue{}
	heap.Init(openSet)
	openSetMap := make(map[int]*aStarNode)
	closed := make([]bool, g.NumCells())

	seq := 0
	startIdx := g.Index(start)
	gCost[startIdx] = 0
	startNode := &aStarNode{CellIdx: startIdx, G: 0, H: hs.anchor(start), F: hs.anchor(start)}
	heap.Push(openSet, startNode)
	openSetMap[startIdx] = startNode

	bestCell := start
	bestH := hs.anchor(start)

	var nbuf []grid.Neighbor
	expansions := 0

	for openSet.Len() > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if expansions >= budget {
			res := pathResult(snap, parent, bestCell, p.tuning.Speed)
			res.Cost = gCost[g.Index(bestCell)]
			res.Expansions = expansions
			res.Partial = true
			return res, nil
		}

		current := heap.Pop(openSet).(*aStarNode)
		delete(openSetMap, current.CellIdx)
		cell := grid.Cell{X: current.CellIdx % g.Width, Y: current.CellIdx / g.Width}
		closed[current.CellIdx] = true
		expansions++

		if req.Observer != nil {
			req.Observer(Event{Cell: cell, Queue: queueAnchor, Step: expansions})
		}

		if cell == goal {
			res := pathResult(snap, parent, goal, p.tuning.Speed)
			res.Cost = current.G
			res.Expansions = expansions
			res.BoundMet = true
			return res, nil
		}

		if current.H < bestH {
			bestH = current.H
			bestCell = cell
		}

		nbuf = g.Neighbors(cell, req.AllowDiagonal, nbuf[:0])
		for _, nb := range nbuf {
			ni := g.Index(nb.Cell)
			if closed[ni] {
				continue
			}
			tentativeG := current.G + nb.Cost
			if tentativeG >= gCost[ni] {
				continue
			}
			gCost[ni] = tentativeG
			parent[ni] = int32(current.CellIdx)

			if node, exists := openSetMap[ni]; !exists {
				seq++
				node = &aStarNode{
					CellIdx: ni,
					G:       tentativeG,
					H:       hs.anchor(nb.Cell),
					Seq:     seq,
				}
				node.F = node.G + node.H
				heap.Push(openSet, node)
				openSetMap[ni] = node
			} else {
				// Found a better path to this neighbor.
				node.G = tentativeG
				node.F = node.G + node.H
				heap.Fix(openSet, node.Index)
			}
		}
	}

	return nil, fmt.Errorf("explored %d cells: %w", expansions, ErrUnreachable)
}
