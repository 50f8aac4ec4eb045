package world

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func overlaps(a, b Building) bool {
	return a.MinX() < b.MaxX() && a.MaxX() > b.MinX() &&
		a.MinY() < b.MaxY() && a.MaxY() > b.MinY()
}

func TestGenerateSyntheticPlacesNonOverlappingBuildings(t *testing.T) {
	t.Parallel()
	w := GenerateSynthetic(SyntheticConfig{
		Width:     1000,
		Height:    800,
		Buildings: 60,
		Seed:      7,
	})
	require.NotEmpty(t, w.Obstacles)
	assert.LessOrEqual(t, len(w.Obstacles), 60)
	assert.Equal(t, 1000.0, w.Width)
	assert.Equal(t, 800.0, w.Height)

	maxH := 0.0
	seen := map[string]bool{}
	for _, b := range w.Obstacles {
		assert.False(t, seen[b.ID], "duplicate building id %s", b.ID)
		seen[b.ID] = true
		assert.Greater(t, b.Size.X, 0.0)
		assert.Greater(t, b.Size.Y, 0.0)
		assert.Greater(t, b.Size.Z, 0.0)
		assert.InDelta(t, b.Size.Z*0.5, b.Center.Z, 1e-9)
		if b.Size.Z > maxH {
			maxH = b.Size.Z
		}
	}
	assert.InDelta(t, maxH+30, w.Ceiling, 1e-9)

	for i := range w.Obstacles {
		for j := i + 1; j < len(w.Obstacles); j++ {
			assert.False(t, overlaps(w.Obstacles[i], w.Obstacles[j]),
				"buildings %d and %d overlap", i, j)
		}
	}
}

func TestGenerateSyntheticSeedDeterminism(t *testing.T) {
	t.Parallel()
	cfg := SyntheticConfig{Width: 500, Height: 500, Buildings: 30, Seed: 99}
	a := GenerateSynthetic(cfg)
	b := GenerateSynthetic(cfg)

	require.Equal(t, len(a.Obstacles), len(b.Obstacles))
	// IDs are random; everything geometric must match exactly.
	for i := range a.Obstacles {
		a.Obstacles[i].ID = ""
		b.Obstacles[i].ID = ""
	}
	assert.Empty(t, cmp.Diff(a, b))
}

func TestGenerateSyntheticDegenerateConfig(t *testing.T) {
	t.Parallel()
	w := GenerateSynthetic(SyntheticConfig{Width: 0, Height: 100, Buildings: 10})
	assert.Empty(t, w.Obstacles)

	w = GenerateSynthetic(SyntheticConfig{Width: 100, Height: 100, Buildings: 0})
	assert.Empty(t, w.Obstacles)
}

func TestFitToBuildings(t *testing.T) {
	t.Parallel()
	w := &World{
		Width:  10000,
		Height: 10000,
		Obstacles: []Building{
			{Center: Vec3{X: 100, Y: 200, Z: 15}, Size: Vec3{X: 20, Y: 20, Z: 30}},
			{Center: Vec3{X: 300, Y: 260, Z: 5}, Size: Vec3{X: 40, Y: 40, Z: 10}},
		},
	}
	w.FitToBuildings(5)

	assert.InDelta(t, 230, w.Width, 1e-9)  // [90,320] rebased
	assert.InDelta(t, 90, w.Height, 1e-9)  // [190,280] rebased
	assert.InDelta(t, 35, w.Ceiling, 1e-9) // tallest 30 + margin 5

	// Minimum corner sits at the origin after re-basing.
	assert.InDelta(t, 10, w.Obstacles[0].MinX(), 1e-9)
	assert.InDelta(t, 0, w.Obstacles[0].MinY(), 1e-9)
	assert.InDelta(t, 0, w.Obstacles[1].MinX()-250, 1e-9)
}

func TestSpatialIndexOverlapQueries(t *testing.T) {
	t.Parallel()
	a := Building{ID: "a", Center: Vec3{X: 10, Y: 10, Z: 10}, Size: Vec3{X: 10, Y: 10, Z: 20}}
	b := Building{ID: "b", Center: Vec3{X: 50, Y: 50, Z: 10}, Size: Vec3{X: 10, Y: 10, Z: 20}}
	idx := NewSpatialIndex([]Building{a, b})

	assert.True(t, idx.Overlaps(12, 12, 18, 18))
	assert.False(t, idx.Overlaps(25, 25, 35, 35))

	hits := idx.QueryRegion(0, 0, 30, 30)
	require.Len(t, hits, 1)
	assert.Equal(t, "a", hits[0].ID)

	hits = idx.QueryRegion(0, 0, 100, 100)
	assert.Len(t, hits, 2)
}

const footprintJSON = `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "properties": {"height": 25},
      "geometry": {
        "type": "Polygon",
        "coordinates": [[[0, 0], [20, 0], [20, 10], [0, 10], [0, 0]]]
      }
    },
    {
      "type": "Feature",
      "properties": {"building:levels": "4"},
      "geometry": {
        "type": "Polygon",
        "coordinates": [[[40, 40], [50, 40], [50, 50], [40, 50], [40, 40]]]
      }
    },
    {
      "type": "Feature",
      "properties": {},
      "geometry": {"type": "Point", "coordinates": [5, 5]}
    }
  ]
}`

func TestFromGeoJSON(t *testing.T) {
	t.Parallel()
	w, err := FromGeoJSON([]byte(footprintJSON), GeoJSONConfig{})
	require.NoError(t, err)
	require.Len(t, w.Obstacles, 2)

	// Extent fitted to the two rectangles: x [0,50], y [0,50].
	assert.InDelta(t, 50, w.Width, 1e-9)
	assert.InDelta(t, 50, w.Height, 1e-9)

	first := w.Obstacles[0]
	assert.InDelta(t, 20, first.Size.X, 1e-9)
	assert.InDelta(t, 10, first.Size.Y, 1e-9)
	assert.InDelta(t, 25, first.Size.Z, 1e-9) // explicit height property

	second := w.Obstacles[1]
	assert.InDelta(t, 12, second.Size.Z, 1e-9) // 4 levels * 3m
	assert.InDelta(t, 45, second.Center.X, 1e-9)

	// Ceiling clears the tallest building by the default margin.
	assert.InDelta(t, 30, w.Ceiling, 1e-9)
}

func TestFromGeoJSONRejectsEmptyAndInvalid(t *testing.T) {
	t.Parallel()
	_, err := FromGeoJSON([]byte(`{not json`), GeoJSONConfig{})
	assert.Error(t, err)

	_, err = FromGeoJSON([]byte(`{"type":"FeatureCollection","features":[]}`), GeoJSONConfig{})
	assert.Error(t, err)
}

func TestFromGeoJSONMinAreaFilter(t *testing.T) {
	t.Parallel()
	_, err := FromGeoJSON([]byte(footprintJSON), GeoJSONConfig{MinArea: 1000})
	assert.Error(t, err) // both footprints are under 1000 m^2
}
