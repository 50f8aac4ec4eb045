package world

import (
	"math"
	"math/rand"

	"github.com/google/uuid"
)

// SyntheticConfig controls the synthetic city generator.
type SyntheticConfig struct {
	Width     float64 `json:"width"`     // world width, meters
	Height    float64 `json:"height"`    // world depth, meters
	Buildings int     `json:"buildings"` // target building count
	Seed      int64   `json:"seed"`      // RNG seed, 0 means nondeterministic

	MinFootprint float64 `json:"minFootprint"` // meters, default 12
	MaxFootprint float64 `json:"maxFootprint"` // meters, default 36
	FloorHeight  float64 `json:"floorHeight"`  // meters per level, default 3
	MaxLevels    int     `json:"maxLevels"`    // default 12
	JitterFrac   float64 `json:"jitterFrac"`   // placement jitter within cell, 0..0.5
}

func (c *SyntheticConfig) applyDefaults() {
	if c.MinFootprint <= 0 {
		c.MinFootprint = 12.0
	}
	if c.MaxFootprint <= c.MinFootprint {
		c.MaxFootprint = c.MinFootprint + 24.0
	}
	if c.FloorHeight <= 0 {
		c.FloorHeight = 3.0
	}
	if c.MaxLevels <= 0 {
		c.MaxLevels = 12
	}
	if c.JitterFrac <= 0 || c.JitterFrac > 0.5 {
		c.JitterFrac = 0.35
	}
}

// GenerateSynthetic builds a city of axis-aligned blocks spread roughly
// uniformly over the extent. Placement works cell-by-cell over a thinning
// lattice sized so one candidate lands per cell, with jitter inside the cell
// so no visible grid shows through. Candidates whose footprint would overlap
// an already placed building are rejected via the spatial index.
func GenerateSynthetic(cfg SyntheticConfig) *World {
	cfg.applyDefaults()
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Buildings <= 0 {
		return &World{Width: cfg.Width, Height: cfg.Height, Ceiling: 50}
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	if cfg.Seed == 0 {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}

	// Thinning lattice: ~one cell per target building.
	area := cfg.Width * cfg.Height
	cell := math.Sqrt(area / float64(cfg.Buildings))
	if cell <= 0 {
		cell = 1
	}

	w := &World{Width: cfg.Width, Height: cfg.Height}
	idx := NewSpatialIndex(nil)
	maxH := 0.0

	cols := int(cfg.Width/cell) + 1
	rows := int(cfg.Height/cell) + 1
	order := rng.Perm(cols * rows)

	for _, k := range order {
		if len(w.Obstacles) >= cfg.Buildings {
			break
		}
		gx, gy := k%cols, k/cols

		jx := (rng.Float64() - 0.5) * cfg.JitterFrac * cell
		jy := (rng.Float64() - 0.5) * cfg.JitterFrac * cell
		cx := clamp((float64(gx)+0.5)*cell+jx, 0, cfg.Width)
		cy := clamp((float64(gy)+0.5)*cell+jy, 0, cfg.Height)

		fw := cfg.MinFootprint + rng.Float64()*(cfg.MaxFootprint-cfg.MinFootprint)
		fd := cfg.MinFootprint + rng.Float64()*(cfg.MaxFootprint-cfg.MinFootprint)
		levels := 1 + rng.Intn(cfg.MaxLevels)
		h := float64(levels) * cfg.FloorHeight

		b := Building{
			ID:     uuid.NewString(),
			Center: Vec3{X: cx, Y: cy, Z: h * 0.5},
			Size:   Vec3{X: fw, Y: fd, Z: h},
		}
		if idx.Overlaps(b.MinX(), b.MinY(), b.MaxX(), b.MaxY()) {
			continue
		}
		idx.Insert(b)
		w.Obstacles = append(w.Obstacles, b)
		if h > maxH {
			maxH = h
		}
	}

	w.Ceiling = maxH + 30.0
	return w
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
