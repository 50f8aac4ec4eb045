package grid

// ClearanceField stores, per cell, the city-block distance in meters to the
// nearest occupied cell. Occupied cells have clearance 0. The field is
// computed once per snapshot and read-only thereafter.
type ClearanceField struct {
	meters []float64
}

// BuildClearance runs a two-pass sweep over the grid: the forward pass
// propagates the minimum distance from the left and upper neighbors, the
// backward pass from the right and lower neighbors. Each pass touches every
// cell once, so the build is linear in cell count. On a grid with no
// occupied cells every value saturates at (Width+Height) cells.
func BuildClearance(g *Grid) *ClearanceField {
	n := g.NumCells()
	far := g.Width + g.Height // exceeds any reachable city-block distance
	dist := make([]int, n)
	for i := range dist {
		if g.occupied[i] {
			dist[i] = 0
		} else {
			dist[i] = far
		}
	}

	for y := 0; y < g.Height; y++ {
		row := y * g.Width
		for x := 0; x < g.Width; x++ {
			i := row + x
			if dist[i] == 0 {
				continue
			}
			if x > 0 && dist[i-1]+1 < dist[i] {
				dist[i] = dist[i-1] + 1
			}
			if y > 0 && dist[i-g.Width]+1 < dist[i] {
				dist[i] = dist[i-g.Width] + 1
			}
		}
	}
	for y := g.Height - 1; y >= 0; y-- {
		row := y * g.Width
		for x := g.Width - 1; x >= 0; x-- {
			i := row + x
			if dist[i] == 0 {
				continue
			}
			if x+1 < g.Width && dist[i+1]+1 < dist[i] {
				dist[i] = dist[i+1] + 1
			}
			if y+1 < g.Height && dist[i+g.Width]+1 < dist[i] {
				dist[i] = dist[i+g.Width] + 1
			}
		}
	}

	meters := make([]float64, n)
	for i, d := range dist {
		meters[i] = float64(d) * g.CellSize
	}
	return &ClearanceField{meters: meters}
}

// At returns the clearance in meters of the cell at flat index i.
func (c *ClearanceField) At(i int) float64 { return c.meters[i] }
