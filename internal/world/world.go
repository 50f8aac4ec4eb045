// Package world holds the obstacle model consumed by the grid builder: a
// rectangular extent populated with axis-aligned building boxes. Worlds come
// from either the synthetic city generator or GeoJSON footprint ingestion.
package world

import "math"

// Vec3 is a point or extent in world coordinates (meters).
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Distance returns the Euclidean distance to another point.
func (v Vec3) Distance(o Vec3) float64 {
	dx := v.X - o.X
	dy := v.Y - o.Y
	dz := v.Z - o.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Building is an axis-aligned box obstacle. Center is the box midpoint
// (Center.Z is half the height), Size the full extent along each axis.
type Building struct {
	ID     string `json:"id"`
	Center Vec3   `json:"center"`
	Size   Vec3   `json:"size"`
}

// MinX returns the western edge of the footprint.
func (b Building) MinX() float64 { return b.Center.X - b.Size.X*0.5 }

// MaxX returns the eastern edge of the footprint.
func (b Building) MaxX() float64 { return b.Center.X + b.Size.X*0.5 }

// MinY returns the southern edge of the footprint.
func (b Building) MinY() float64 { return b.Center.Y - b.Size.Y*0.5 }

// MaxY returns the northern edge of the footprint.
func (b Building) MaxY() float64 { return b.Center.Y + b.Size.Y*0.5 }

// World is a rectangular extent with obstacles. Width and Height are the
// horizontal dimensions in meters, Ceiling the vertical limit.
type World struct {
	Width     float64    `json:"width"`
	Height    float64    `json:"height"`
	Ceiling   float64    `json:"ceiling"`
	Obstacles []Building `json:"obstacles"`
}

// FitToBuildings shrinks the world extent to tightly wrap the obstacle
// volume, re-basing coordinates so the minimum corner is the origin. The
// ceiling gets margin meters of headroom above the tallest building.
func (w *World) FitToBuildings(margin float64) {
	if len(w.Obstacles) == 0 {
		return
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY, maxH := math.Inf(-1), math.Inf(-1), 0.0
	for _, b := range w.Obstacles {
		minX = math.Min(minX, b.MinX())
		maxX = math.Max(maxX, b.MaxX())
		minY = math.Min(minY, b.MinY())
		maxY = math.Max(maxY, b.MaxY())
		maxH = math.Max(maxH, b.Size.Z)
	}
	for i := range w.Obstacles {
		w.Obstacles[i].Center.X -= minX
		w.Obstacles[i].Center.Y -= minY
	}
	w.Width = math.Max(0.1, maxX-minX)
	w.Height = math.Max(0.1, maxY-minY)
	w.Ceiling = maxH + math.Max(0, margin)
}
