package grid

import (
	"math"
	"sync/atomic"

	"github.com/lalitx17/UAVPathOptimizer/internal/world"
)

// SnapshotConfig controls how a world is discretized.
type SnapshotConfig struct {
	CellSize        float64 // meters per cell, default 10
	ClearanceMargin float64 // obstacle inflation in meters, default 5
	CruiseAlt       float64 // waypoint altitude in meters, default 60
	MaxCells        int     // cell-count ceiling, default 300000
}

func (c *SnapshotConfig) applyDefaults() {
	if c.CellSize <= 0 {
		c.CellSize = 10.0
	}
	if c.ClearanceMargin < 0 {
		c.ClearanceMargin = 0
	}
	if c.CruiseAlt <= 0 {
		c.CruiseAlt = 60.0
	}
	if c.MaxCells <= 0 {
		c.MaxCells = 300000
	}
}

// Snapshot bundles the three precomputed layers for one world: occupancy,
// clearance and landmark distances. A snapshot is immutable once built and
// safe to share read-only across any number of concurrent plans. The
// version tag identifies the snapshot so long-running plans can detect that
// a rebuild superseded them.
type Snapshot struct {
	Version   uint64
	Grid      *Grid
	Clearance *ClearanceField
	Landmarks *LandmarkTable
}

// BuildSnapshot discretizes w into all three layers. When the requested cell
// size would exceed the cell-count ceiling, the whole snapshot is built at a
// proportionally coarser cell size instead of failing; the policy applies
// before any layer is computed, so occupancy, clearance and landmarks always
// agree on resolution. Panics on a world with a non-positive extent.
func BuildSnapshot(w *world.World, cfg SnapshotConfig) *Snapshot {
	cfg.applyDefaults()
	width, height := w.Width, w.Height
	if width <= 0 || height <= 0 {
		panic("grid: world has non-positive extent")
	}

	cellSize := cfg.CellSize
	cells := func(size float64) int {
		wc := int(width / size)
		hc := int(height / size)
		if wc < 1 {
			wc = 1
		}
		if hc < 1 {
			hc = 1
		}
		return wc * hc
	}
	if n := cells(cellSize); n > cfg.MaxCells {
		cellSize *= math.Sqrt(float64(n) / float64(cfg.MaxCells))
	}

	wc := int(width / cellSize)
	hc := int(height / cellSize)
	if wc < 1 {
		wc = 1
	}
	if hc < 1 {
		hc = 1
	}

	g := NewGrid(wc, hc, cellSize, cfg.CruiseAlt)
	Rasterize(g, w, cfg.ClearanceMargin)

	return &Snapshot{
		Grid:      g,
		Clearance: BuildClearance(g),
		Landmarks: BuildLandmarks(g),
	}
}

// Holder publishes the current snapshot. Rebuilding a world installs a new
// snapshot atomically; in-flight plans keep using the reference they already
// hold and can compare version tags to notice they went stale.
type Holder struct {
	current atomic.Pointer[Snapshot]
	version atomic.Uint64
}

// Swap installs s as the current snapshot, assigning it the next version
// tag, and returns that version.
func (h *Holder) Swap(s *Snapshot) uint64 {
	s.Version = h.version.Add(1)
	h.current.Store(s)
	return s.Version
}

// Current returns the latest snapshot, or nil before the first Swap.
func (h *Holder) Current() *Snapshot {
	return h.current.Load()
}

// Stale reports whether s has been superseded by a newer snapshot.
func (h *Holder) Stale(s *Snapshot) bool {
	cur := h.current.Load()
	return cur != nil && s != nil && cur.Version != s.Version
}
