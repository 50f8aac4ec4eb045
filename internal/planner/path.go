package planner

import (
	"github.com/lalitx17/UAVPathOptimizer/internal/grid"
	"github.com/lalitx17/UAVPathOptimizer/internal/world"
)

// pathResult walks the flat parent array from end back to the start,
// reverses the chain, converts cells to world coordinates at the cruise
// altitude and annotates each waypoint with a clearance-derived speed.
// Cost, Expansions and the flags are left for the caller to fill.
func pathResult(snap *grid.Snapshot, parent []int32, end grid.Cell, speed SpeedModel) *Result {
	g := snap.Grid

	cells := []grid.Cell{end}
	for i := int32(g.Index(end)); parent[i] != noParent; i = parent[i] {
		p := parent[i]
		cells = append(cells, grid.Cell{X: int(p) % g.Width, Y: int(p) / g.Width})
	}
	for i, j := 0, len(cells)-1; i < j; i, j = i+1, j-1 {
		cells[i], cells[j] = cells[j], cells[i]
	}

	res := &Result{
		Waypoints: make([]world.Vec3, len(cells)),
		Speeds:    make([]float64, len(cells)),
	}
	for i, c := range cells {
		res.Waypoints[i] = g.CellToWorld(c)
		res.Speeds[i] = speed.SpeedAt(snap.Clearance.At(g.Index(c)))
	}
	return res
}

// singleCellResult covers start == goal: one waypoint, zero cost, bound
// trivially met.
func singleCellResult(snap *grid.Snapshot, c grid.Cell, speed SpeedModel) *Result {
	return &Result{
		Waypoints: []world.Vec3{snap.Grid.CellToWorld(c)},
		Speeds:    []float64{speed.SpeedAt(snap.Clearance.At(snap.Grid.Index(c)))},
		BoundMet:  true,
	}
}
