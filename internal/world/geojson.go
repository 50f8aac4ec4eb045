package world

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
)

// GeoJSONConfig controls footprint ingestion.
type GeoJSONConfig struct {
	DefaultHeight float64 `json:"defaultHeight"` // meters, default 15
	FloorHeight   float64 `json:"floorHeight"`   // meters per level, default 3
	MinArea       float64 `json:"minArea"`       // skip footprints smaller than this, m^2
	CeilingMargin float64 `json:"ceilingMargin"` // headroom above tallest building
}

func (c *GeoJSONConfig) applyDefaults() {
	if c.DefaultHeight <= 0 {
		c.DefaultHeight = 15.0
	}
	if c.FloorHeight <= 0 {
		c.FloorHeight = 3.0
	}
	if c.CeilingMargin <= 0 {
		c.CeilingMargin = 5.0
	}
}

// FromGeoJSON converts a FeatureCollection of building footprints (already in
// a projected, meter-based coordinate system) into a World of axis-aligned
// blocks. Each Polygon or MultiPolygon feature becomes one box per outer
// ring, sized by the ring's bound and centered on its area centroid. Height
// comes from a "height" property, else "building:levels" times the floor
// height, else the configured default. The world extent is fitted to the
// resulting buildings.
func FromGeoJSON(data []byte, cfg GeoJSONConfig) (*World, error) {
	cfg.applyDefaults()

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("parse feature collection: %w", err)
	}

	w := &World{}
	for _, f := range fc.Features {
		h := heightFromProperties(f.Properties, cfg)
		switch geom := f.Geometry.(type) {
		case orb.Polygon:
			if b, ok := buildingFromPolygon(geom, h, cfg.MinArea); ok {
				w.Obstacles = append(w.Obstacles, b)
			}
		case orb.MultiPolygon:
			for _, poly := range geom {
				if b, ok := buildingFromPolygon(poly, h, cfg.MinArea); ok {
					w.Obstacles = append(w.Obstacles, b)
				}
			}
		}
	}
	if len(w.Obstacles) == 0 {
		return nil, fmt.Errorf("no usable building footprints in %d features", len(fc.Features))
	}

	w.FitToBuildings(cfg.CeilingMargin)
	return w, nil
}

func buildingFromPolygon(poly orb.Polygon, height, minArea float64) (Building, bool) {
	if len(poly) == 0 || len(poly[0]) < 3 {
		return Building{}, false
	}
	if a := planar.Area(poly); a < minArea {
		return Building{}, false
	}
	centroid, _ := planar.CentroidArea(poly)
	bound := poly.Bound()
	return Building{
		ID:     uuid.NewString(),
		Center: Vec3{X: centroid[0], Y: centroid[1], Z: height * 0.5},
		Size: Vec3{
			X: bound.Max[0] - bound.Min[0],
			Y: bound.Max[1] - bound.Min[1],
			Z: height,
		},
	}, true
}

func heightFromProperties(props geojson.Properties, cfg GeoJSONConfig) float64 {
	if v, ok := props["height"]; ok {
		if h := toFloat(v); h > 0 {
			return h
		}
	}
	for _, key := range []string{"building:levels", "levels"} {
		if v, ok := props[key]; ok {
			if lv := toFloat(v); lv > 0 {
				h := lv * cfg.FloorHeight
				if h < 6.0 {
					h = 6.0
				}
				return h
			}
		}
	}
	return cfg.DefaultHeight
}

func toFloat(v interface{}) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case int:
		return float64(t)
	case string:
		f, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return 0
		}
		return f
	}
	return 0
}
