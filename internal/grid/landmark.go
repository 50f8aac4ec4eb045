package grid

import (
	"container/heap"
	"math"
)

// Landmark is a fixed reference cell plus the shortest-path distance in
// meters from it to every free cell. Unreachable cells hold +Inf.
type Landmark struct {
	Cell Cell
	dist []float64
}

// Dist returns the shortest-path distance from the landmark to the cell at
// flat index i.
func (l *Landmark) Dist(i int) float64 { return l.dist[i] }

// LandmarkTable holds the landmark distance fields for one grid snapshot.
type LandmarkTable struct {
	Landmarks []Landmark
}

// BuildLandmarks places landmarks at the four corners and the center of the
// occupied bounding volume (the whole extent when the grid is empty), snaps
// each to its nearest free cell, and runs a single-source shortest-path
// search from each using the same connectivity and edge costs as the
// planner's 8-connected expansion. Landmark count is a small constant, so
// the total build stays linear in grid size.
func BuildLandmarks(g *Grid) *LandmarkTable {
	minX, minY := 0, 0
	maxX, maxY := g.Width-1, g.Height-1
	if bx0, by0, bx1, by1, ok := occupiedBounds(g); ok {
		minX, minY, maxX, maxY = bx0, by0, bx1, by1
	}

	candidates := []Cell{
		{minX, minY},
		{maxX, minY},
		{minX, maxY},
		{maxX, maxY},
		{(minX + maxX) / 2, (minY + maxY) / 2},
	}

	snapRadius := g.Width + g.Height
	table := &LandmarkTable{}
	seen := make(map[Cell]bool, len(candidates))
	for _, c := range candidates {
		free, ok := g.NearestFree(c, snapRadius)
		if !ok || seen[free] {
			continue
		}
		seen[free] = true
		table.Landmarks = append(table.Landmarks, Landmark{
			Cell: free,
			dist: sssp(g, free),
		})
	}
	return table
}

// Estimate returns the triangle-inequality progress estimate
// max over landmarks of |dist(L, goal) - dist(L, cell)|, in meters.
// Landmarks that cannot reach either cell contribute nothing.
func (t *LandmarkTable) Estimate(g *Grid, cell, goal Cell) float64 {
	ci, gi := g.Index(cell), g.Index(goal)
	best := 0.0
	for i := range t.Landmarks {
		dc := t.Landmarks[i].dist[ci]
		dg := t.Landmarks[i].dist[gi]
		if math.IsInf(dc, 1) || math.IsInf(dg, 1) {
			continue
		}
		if d := math.Abs(dg - dc); d > best {
			best = d
		}
	}
	return best
}

func occupiedBounds(g *Grid) (minX, minY, maxX, maxY int, ok bool) {
	minX, minY = g.Width, g.Height
	maxX, maxY = -1, -1
	for y := 0; y < g.Height; y++ {
		row := y * g.Width
		for x := 0; x < g.Width; x++ {
			if !g.occupied[row+x] {
				continue
			}
			if x < minX {
				minX = x
			}
			if x > maxX {
				maxX = x
			}
			if y < minY {
				minY = y
			}
			if y > maxY {
				maxY = y
			}
		}
	}
	return minX, minY, maxX, maxY, maxX >= 0
}

// ssspItem is a pending cell in the uniform-cost search. Duplicates are
// pushed on relaxation and stale entries skipped on pop.
type ssspItem struct {
	dist float64
	seq  int
	cell Cell
}

type ssspQueue []ssspItem

func (q ssspQueue) Len() int { return len(q) }

func (q ssspQueue) Less(i, j int) bool {
	if q[i].dist != q[j].dist {
		return q[i].dist < q[j].dist
	}
	return q[i].seq < q[j].seq
}

func (q ssspQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *ssspQueue) Push(x interface{}) { *q = append(*q, x.(ssspItem)) }

func (q *ssspQueue) Pop() interface{} {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}

// sssp computes shortest-path distances in meters from src to every free
// cell, 8-connected with octile edge costs.
func sssp(g *Grid, src Cell) []float64 {
	dist := make([]float64, g.NumCells())
	for i := range dist {
		dist[i] = math.Inf(1)
	}
	dist[g.Index(src)] = 0

	seq := 0
	pq := &ssspQueue{{dist: 0, seq: seq, cell: src}}
	heap.Init(pq)

	var buf []Neighbor
	for pq.Len() > 0 {
		item := heap.Pop(pq).(ssspItem)
		i := g.Index(item.cell)
		if item.dist > dist[i] {
			continue
		}
		buf = g.Neighbors(item.cell, true, buf[:0])
		for _, nb := range buf {
			ni := g.Index(nb.Cell)
			if d := item.dist + nb.Cost; d < dist[ni] {
				dist[ni] = d
				seq++
				heap.Push(pq, ssspItem{dist: d, seq: seq, cell: nb.Cell})
			}
		}
	}
	return dist
}
