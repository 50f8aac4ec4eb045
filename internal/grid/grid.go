// Package grid discretizes a world into a uniform cell lattice and
// precomputes the read-only layers the planner searches over: the occupancy
// mask, the clearance field and the landmark distance tables. A built
// Snapshot is immutable and safe to share across concurrent plans.
package grid

import (
	"errors"
	"math"

	"github.com/lalitx17/UAVPathOptimizer/internal/world"
)

// ErrOutOfBounds is returned when a world coordinate falls outside the grid
// extent.
var ErrOutOfBounds = errors.New("coordinate outside grid extent")

// Cell is an integer lattice coordinate.
type Cell struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Neighbor is a cell reachable in one move together with the move's cost in
// meters.
type Neighbor struct {
	Cell Cell
	Cost float64
}

// Grid maps continuous world coordinates to cells within
// [0, Width) x [0, Height) at a fixed cruise altitude band.
type Grid struct {
	CellSize  float64 // meters per cell
	Width     int     // cells
	Height    int     // cells
	CruiseAlt float64 // meters, altitude assigned to waypoints

	occupied []bool // len Width*Height, row-major
}

// NewGrid allocates an empty (fully free) grid. Panics if the dimensions are
// not positive; a malformed extent is a programmer error, not a runtime
// condition.
func NewGrid(width, height int, cellSize, cruiseAlt float64) *Grid {
	if width <= 0 || height <= 0 || cellSize <= 0 {
		panic("grid: non-positive dimensions")
	}
	return &Grid{
		CellSize:  cellSize,
		Width:     width,
		Height:    height,
		CruiseAlt: cruiseAlt,
		occupied:  make([]bool, width*height),
	}
}

// NumCells returns Width*Height.
func (g *Grid) NumCells() int { return g.Width * g.Height }

// Index returns the flat row-major index of c. The caller guarantees c is in
// bounds.
func (g *Grid) Index(c Cell) int { return c.Y*g.Width + c.X }

// InBounds reports whether c lies inside the lattice.
func (g *Grid) InBounds(c Cell) bool {
	return c.X >= 0 && c.Y >= 0 && c.X < g.Width && c.Y < g.Height
}

// IsOccupied reports whether c is blocked. Out-of-bounds cells count as
// occupied so neighbor expansion never walks off the lattice.
func (g *Grid) IsOccupied(c Cell) bool {
	return !g.InBounds(c) || g.occupied[g.Index(c)]
}

// SetOccupied marks a cell blocked. Only the rasterizer calls this; a grid
// inside a published Snapshot is never mutated.
func (g *Grid) SetOccupied(c Cell) {
	if g.InBounds(c) {
		g.occupied[g.Index(c)] = true
	}
}

// WorldToCell maps a world coordinate to its containing cell, or
// ErrOutOfBounds if it lies outside the extent.
func (g *Grid) WorldToCell(x, y float64) (Cell, error) {
	if x < 0 || y < 0 || x >= float64(g.Width)*g.CellSize || y >= float64(g.Height)*g.CellSize {
		return Cell{}, ErrOutOfBounds
	}
	return Cell{X: int(x / g.CellSize), Y: int(y / g.CellSize)}, nil
}

// CellToWorld returns the center of c at the cruise altitude.
func (g *Grid) CellToWorld(c Cell) world.Vec3 {
	return world.Vec3{
		X: (float64(c.X) + 0.5) * g.CellSize,
		Y: (float64(c.Y) + 0.5) * g.CellSize,
		Z: g.CruiseAlt,
	}
}

// moves are ordered axis-first so neighbor expansion order, and therefore
// tie-breaking, is deterministic.
var (
	moves4 = [4]Cell{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}
	moves8 = [8]Cell{{-1, 0}, {1, 0}, {0, -1}, {0, 1}, {-1, -1}, {1, -1}, {-1, 1}, {1, 1}}
)

// Neighbors appends the free neighbors of c to buf and returns it. Axis
// moves cost CellSize, diagonal moves sqrt(2)*CellSize.
func (g *Grid) Neighbors(c Cell, allowDiagonal bool, buf []Neighbor) []Neighbor {
	diagCost := math.Sqrt2 * g.CellSize
	moves := moves4[:]
	if allowDiagonal {
		moves = moves8[:]
	}
	for i, m := range moves {
		n := Cell{X: c.X + m.X, Y: c.Y + m.Y}
		if g.IsOccupied(n) {
			continue
		}
		cost := g.CellSize
		if i >= 4 {
			cost = diagCost
		}
		buf = append(buf, Neighbor{Cell: n, Cost: cost})
	}
	return buf
}

// NearestFree returns the free cell closest to c by expanding square rings,
// or c itself if it is already free. Returns false when no free cell exists
// within maxRadius rings.
func (g *Grid) NearestFree(c Cell, maxRadius int) (Cell, bool) {
	if !g.IsOccupied(c) {
		return c, true
	}
	for r := 1; r <= maxRadius; r++ {
		for dx := -r; dx <= r; dx++ {
			for _, dy := range [2]int{-r, r} {
				n := Cell{X: c.X + dx, Y: c.Y + dy}
				if !g.IsOccupied(n) {
					return n, true
				}
			}
		}
		for dy := -r + 1; dy < r; dy++ {
			for _, dx := range [2]int{-r, r} {
				n := Cell{X: c.X + dx, Y: c.Y + dy}
				if !g.IsOccupied(n) {
					return n, true
				}
			}
		}
	}
	return c, false
}
