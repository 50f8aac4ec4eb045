package grid

import (
	"github.com/lalitx17/UAVPathOptimizer/internal/world"
)

// Rasterize marks every cell overlapped by a building footprint as occupied.
// Footprints are inflated by margin meters on each side so the blocked mask
// already carries a safety buffer. Buildings are looked up per row band
// through the world's spatial index rather than scanning the full obstacle
// list for every row.
func Rasterize(g *Grid, w *world.World, margin float64) {
	idx := world.NewSpatialIndex(w.Obstacles)
	rowMin := 0.0
	for gy := 0; gy < g.Height; gy++ {
		rowMax := rowMin + g.CellSize
		for _, b := range idx.QueryRegion(0, rowMin-margin, float64(g.Width)*g.CellSize, rowMax+margin) {
			minX := b.MinX() - margin
			maxX := b.MaxX() + margin
			minY := b.MinY() - margin
			maxY := b.MaxY() + margin
			// Strict overlap against this row band: footprints that only
			// touch a cell edge do not block it.
			if maxY <= rowMin || minY >= rowMax {
				continue
			}
			xFirst := int(minX / g.CellSize)
			xLast := int(maxX / g.CellSize)
			if xFirst < 0 {
				xFirst = 0
			}
			if xLast >= g.Width {
				xLast = g.Width - 1
			}
			for gx := xFirst; gx <= xLast; gx++ {
				cellMin := float64(gx) * g.CellSize
				if maxX <= cellMin || minX >= cellMin+g.CellSize {
					continue
				}
				g.occupied[gy*g.Width+gx] = true
			}
		}
		rowMin = rowMax
	}
}
