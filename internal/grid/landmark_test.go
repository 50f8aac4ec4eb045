package grid

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func octileCells(a, b Cell) float64 {
	dx := math.Abs(float64(a.X - b.X))
	dy := math.Abs(float64(a.Y - b.Y))
	lo, hi := dx, dy
	if lo > hi {
		lo, hi = hi, lo
	}
	return hi + (math.Sqrt2-1)*lo
}

func TestLandmarkDistancesOnEmptyGrid(t *testing.T) {
	t.Parallel()
	g := NewGrid(10, 10, 2.0, 60)
	table := BuildLandmarks(g)
	require.Len(t, table.Landmarks, 5)

	// With no obstacles the 8-connected shortest path distance is exactly
	// the octile distance.
	for _, lm := range table.Landmarks {
		for y := 0; y < g.Height; y++ {
			for x := 0; x < g.Width; x++ {
				c := Cell{x, y}
				want := octileCells(lm.Cell, c) * g.CellSize
				assert.InDelta(t, want, lm.Dist(g.Index(c)), 1e-9)
			}
		}
	}
}

func TestLandmarksSnapToFreeCells(t *testing.T) {
	t.Parallel()
	g := NewGrid(10, 10, 1.0, 60)
	// Block the lower-left corner region.
	for x := 0; x < 3; x++ {
		for y := 0; y < 3; y++ {
			g.SetOccupied(Cell{x, y})
		}
	}
	table := BuildLandmarks(g)
	require.NotEmpty(t, table.Landmarks)
	for _, lm := range table.Landmarks {
		assert.False(t, g.IsOccupied(lm.Cell), "landmark at %v sits on an occupied cell", lm.Cell)
	}
}

func TestLandmarkEstimateIsLowerBoundOnEmptyGrid(t *testing.T) {
	t.Parallel()
	g := NewGrid(12, 12, 1.0, 60)
	table := BuildLandmarks(g)
	goal := Cell{11, 3}

	// Triangle inequality with exact landmark distances: the estimate never
	// exceeds the true shortest-path distance.
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			c := Cell{x, y}
			est := table.Estimate(g, c, goal)
			truth := octileCells(c, goal) * g.CellSize
			assert.LessOrEqual(t, est, truth+1e-9, "cell (%d,%d)", x, y)
		}
	}
}

func TestLandmarkUnreachableCellsAreInf(t *testing.T) {
	t.Parallel()
	g := NewGrid(7, 7, 1.0, 60)
	// Wall splitting the grid into left and right halves.
	for y := 0; y < 7; y++ {
		g.SetOccupied(Cell{3, y})
	}
	table := BuildLandmarks(g)

	for _, lm := range table.Landmarks {
		sameSide := lm.Cell.X < 3
		for y := 0; y < 7; y++ {
			leftDist := lm.Dist(g.Index(Cell{0, y}))
			rightDist := lm.Dist(g.Index(Cell{6, y}))
			if sameSide {
				assert.False(t, math.IsInf(leftDist, 1))
				assert.True(t, math.IsInf(rightDist, 1))
			} else {
				assert.True(t, math.IsInf(leftDist, 1))
				assert.False(t, math.IsInf(rightDist, 1))
			}
		}
	}
}
