package grid

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// bruteClearance is the reference: city-block distance to the nearest
// occupied cell, scanning every pair.
func bruteClearance(g *Grid, c Cell) float64 {
	best := g.Width + g.Height
	found := false
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			if !g.occupied[y*g.Width+x] {
				continue
			}
			found = true
			d := absCells(x-c.X) + absCells(y-c.Y)
			if d < best {
				best = d
			}
		}
	}
	if !found {
		return float64(g.Width+g.Height) * g.CellSize
	}
	return float64(best) * g.CellSize
}

func absCells(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func TestClearanceMatchesBruteForce(t *testing.T) {
	t.Parallel()
	g := NewGrid(16, 12, 2.5, 60)
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 25; i++ {
		g.SetOccupied(Cell{rng.Intn(g.Width), rng.Intn(g.Height)})
	}

	cf := BuildClearance(g)
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			c := Cell{x, y}
			want := bruteClearance(g, c)
			if g.IsOccupied(c) {
				want = 0
			}
			assert.InDelta(t, want, cf.At(g.Index(c)), 1e-9, "cell (%d,%d)", x, y)
		}
	}
}

func TestClearanceOccupiedIsZero(t *testing.T) {
	t.Parallel()
	g := NewGrid(5, 5, 1.0, 60)
	g.SetOccupied(Cell{2, 2})
	cf := BuildClearance(g)
	assert.Equal(t, 0.0, cf.At(g.Index(Cell{2, 2})))
	assert.Equal(t, 1.0, cf.At(g.Index(Cell{1, 2})))
	assert.Equal(t, 2.0, cf.At(g.Index(Cell{0, 2})))
	assert.Equal(t, 2.0, cf.At(g.Index(Cell{1, 1})))
}

func TestClearanceEmptyGridSaturates(t *testing.T) {
	t.Parallel()
	g := NewGrid(8, 8, 3.0, 60)
	cf := BuildClearance(g)
	want := float64(8+8) * 3.0
	for i := 0; i < g.NumCells(); i++ {
		require.Equal(t, want, cf.At(i))
	}
}
