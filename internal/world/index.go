package world

import (
	"math"

	"github.com/dhconnelly/rtreego"
)

// buildingEntry wraps a building footprint for R-tree storage.
type buildingEntry struct {
	building Building
	bbox     rtreego.Rect
}

// Bounds implements rtreego.Spatial.
func (e *buildingEntry) Bounds() rtreego.Rect {
	return e.bbox
}

// SpatialIndex answers footprint intersection queries over a set of
// buildings. Used by the synthetic generator to reject overlapping
// placements and by the grid rasterizer to find obstacles per row band.
type SpatialIndex struct {
	tree *rtreego.Rtree
}

// NewSpatialIndex builds an index over the given buildings.
func NewSpatialIndex(buildings []Building) *SpatialIndex {
	tree := rtreego.NewTree(2, 25, 50) // 2D, min 25, max 50 entries per node
	idx := &SpatialIndex{tree: tree}
	for _, b := range buildings {
		idx.Insert(b)
	}
	return idx
}

// Insert adds one building to the index.
func (si *SpatialIndex) Insert(b Building) {
	rect, err := footprintRect(b.MinX(), b.MinY(), b.MaxX(), b.MaxY())
	if err != nil {
		return
	}
	si.tree.Insert(&buildingEntry{building: b, bbox: rect})
}

// QueryRegion returns the buildings whose footprints intersect the given
// axis-aligned region.
func (si *SpatialIndex) QueryRegion(minX, minY, maxX, maxY float64) []Building {
	rect, err := footprintRect(minX, minY, maxX, maxY)
	if err != nil {
		return nil
	}
	results := si.tree.SearchIntersect(rect)
	buildings := make([]Building, 0, len(results))
	for _, item := range results {
		buildings = append(buildings, item.(*buildingEntry).building)
	}
	return buildings
}

// Overlaps reports whether any indexed footprint intersects the region.
func (si *SpatialIndex) Overlaps(minX, minY, maxX, maxY float64) bool {
	return len(si.QueryRegion(minX, minY, maxX, maxY)) > 0
}

func footprintRect(minX, minY, maxX, maxY float64) (rtreego.Rect, error) {
	const eps = 1e-9 // rtreego rejects zero-length sides
	return rtreego.NewRect(
		rtreego.Point{minX, minY},
		[]float64{math.Max(maxX-minX, eps), math.Max(maxY-minY, eps)},
	)
}
