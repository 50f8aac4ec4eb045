package sim

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lalitx17/UAVPathOptimizer/internal/grid"
	"github.com/lalitx17/UAVPathOptimizer/internal/planner"
	"github.com/lalitx17/UAVPathOptimizer/internal/world"
)

func testHolder(t *testing.T, size int) *grid.Holder {
	t.Helper()
	g := grid.NewGrid(size, size, 1.0, 60)
	snap := &grid.Snapshot{
		Grid:      g,
		Clearance: grid.BuildClearance(g),
		Landmarks: grid.BuildLandmarks(g),
	}
	h := &grid.Holder{}
	h.Swap(snap)
	return h
}

func testEngine(t *testing.T, size int) *Engine {
	t.Helper()
	e, err := NewEngine(testHolder(t, size), "bandit_mha_star", planner.DefaultTuning())
	require.NoError(t, err)
	return e
}

func TestNewEngineRejectsUnknownAlgorithm(t *testing.T) {
	t.Parallel()
	_, err := NewEngine(testHolder(t, 10), "nope", planner.DefaultTuning())
	assert.Error(t, err)
}

func TestStepWithoutSnapshotFails(t *testing.T) {
	t.Parallel()
	e, err := NewEngine(&grid.Holder{}, "bandit_mha_star", planner.DefaultTuning())
	require.NoError(t, err)
	assert.Error(t, e.Step(context.Background(), 0.1))
}

func TestStepPlansAndAdvances(t *testing.T) {
	t.Parallel()
	e := testEngine(t, 30)
	target := world.Vec3{X: 25.5, Y: 2.5, Z: 60}
	d := NewDrone(world.Vec3{X: 2.5, Y: 2.5, Z: 60}, &target)
	e.SetDrones([]*Drone{d})

	require.NoError(t, e.Step(context.Background(), 0.5))
	require.NotEmpty(t, d.Path)
	require.Len(t, d.Speeds, len(d.Path))

	// Straight east run over flat ground moves at some positive speed.
	assert.Greater(t, d.Pos.X, 2.5)
	assert.InDelta(t, 2.5, d.Pos.Y, 1e-6)
	assert.Equal(t, 1, e.Tick())
}

func TestDroneReachesTarget(t *testing.T) {
	t.Parallel()
	e := testEngine(t, 20)
	target := world.Vec3{X: 10.5, Y: 10.5, Z: 60}
	d := NewDrone(world.Vec3{X: 1.5, Y: 1.5, Z: 60}, &target)
	e.SetDrones([]*Drone{d})

	require.NoError(t, e.Step(context.Background(), 0.25))
	for i := 0; i < 200 && len(d.Path) > 0; i++ {
		require.NoError(t, e.Step(context.Background(), 0.25))
	}
	assert.Empty(t, d.Path)
	assert.InDelta(t, target.X, d.Pos.X, 1e-3)
	assert.InDelta(t, target.Y, d.Pos.Y, 1e-3)
}

func TestAdvanceKinematics(t *testing.T) {
	t.Parallel()
	d := &Drone{
		Pos:    world.Vec3{},
		Path:   []world.Vec3{{X: 10}},
		Speeds: []float64{5},
	}

	advance(d, 1.0, 20)
	assert.InDelta(t, 5.0, d.Pos.X, 1e-9)
	require.Len(t, d.Path, 1)

	// Reaching the waypoint consumes it and spends only the time needed.
	d.Path = append(d.Path, world.Vec3{X: 10, Y: 10})
	d.Speeds = append(d.Speeds, 10)
	advance(d, 1.0, 20)
	require.Len(t, d.Path, 1)
	assert.InDelta(t, 10.0, d.Pos.X, 1e-9)
	// 1s elapsed: 1s at 5 m/s covered the 5m left to the first waypoint,
	// leaving no time for the second leg.
	assert.InDelta(t, 0.0, d.Pos.Y, 1e-9)

	advance(d, 0.5, 20)
	assert.InDelta(t, 5.0, d.Pos.Y, 1e-9)
}

func TestAdvanceFallbackSpeed(t *testing.T) {
	t.Parallel()
	d := &Drone{Path: []world.Vec3{{X: 100}}}
	advance(d, 1.0, 8)
	assert.InDelta(t, 8.0, d.Pos.X, 1e-9)
}

func TestReplanCadence(t *testing.T) {
	t.Parallel()
	e := testEngine(t, 40)
	e.ReplanEvery = 3

	plans := 0
	// straight_line is cheap and deterministic; count plans via an
	// algorithm-independent signal: lastPlanTick changes.
	require.NoError(t, e.SetAlgorithm("straight_line"))
	target := world.Vec3{X: 35.5, Y: 35.5, Z: 60}
	d := NewDrone(world.Vec3{X: 1.5, Y: 1.5, Z: 60}, &target)
	e.SetDrones([]*Drone{d})

	last := -1
	for i := 0; i < 9; i++ {
		require.NoError(t, e.Step(context.Background(), 0.01))
		if d.lastPlanTick != last {
			plans++
			last = d.lastPlanTick
		}
	}
	// Tick 0 plans, then every third tick.
	assert.Equal(t, 3, plans)
}

func TestTargetChangeForcesReplan(t *testing.T) {
	t.Parallel()
	e := testEngine(t, 30)
	e.ReplanEvery = 1000
	target := world.Vec3{X: 25.5, Y: 2.5, Z: 60}
	d := NewDrone(world.Vec3{X: 2.5, Y: 2.5, Z: 60}, &target)
	e.SetDrones([]*Drone{d})

	require.NoError(t, e.Step(context.Background(), 0.01))
	require.NotEmpty(t, d.Path)
	end := d.Path[len(d.Path)-1]
	assert.InDelta(t, 25.5, end.X, 1e-9)

	*d.Target = world.Vec3{X: 2.5, Y: 25.5, Z: 60}
	require.NoError(t, e.Step(context.Background(), 0.01))
	require.NotEmpty(t, d.Path)
	end = d.Path[len(d.Path)-1]
	assert.InDelta(t, 25.5, end.Y, 1e-9)
}

func TestUnreachableTargetClearsPathWithoutError(t *testing.T) {
	t.Parallel()
	g := grid.NewGrid(10, 10, 1.0, 60)
	for y := 0; y < 10; y++ {
		g.SetOccupied(grid.Cell{X: 5, Y: y})
	}
	snap := &grid.Snapshot{
		Grid:      g,
		Clearance: grid.BuildClearance(g),
		Landmarks: grid.BuildLandmarks(g),
	}
	h := &grid.Holder{}
	h.Swap(snap)
	e, err := NewEngine(h, "bandit_mha_star", planner.DefaultTuning())
	require.NoError(t, err)

	target := world.Vec3{X: 8.5, Y: 8.5, Z: 60}
	d := NewDrone(world.Vec3{X: 1.5, Y: 1.5, Z: 60}, &target)
	e.SetDrones([]*Drone{d})

	require.NoError(t, e.Step(context.Background(), 0.1))
	assert.Empty(t, d.Path)
	pos := d.Pos
	require.NoError(t, e.Step(context.Background(), 0.1))
	assert.Equal(t, pos, d.Pos, "drone without a path must hold position")
}

func TestResetForcesReplan(t *testing.T) {
	t.Parallel()
	e := testEngine(t, 20)
	target := world.Vec3{X: 15.5, Y: 15.5, Z: 60}
	d := NewDrone(world.Vec3{X: 1.5, Y: 1.5, Z: 60}, &target)
	e.SetDrones([]*Drone{d})

	require.NoError(t, e.Step(context.Background(), 0.1))
	require.NotZero(t, e.Tick())

	e.Reset()
	assert.Zero(t, e.Tick())
	assert.Empty(t, d.Path)
	assert.False(t, d.planned)
}

func TestManyDronesConcurrently(t *testing.T) {
	t.Parallel()
	e := testEngine(t, 50)
	var drones []*Drone
	for i := 0; i < 16; i++ {
		tx := world.Vec3{X: float64(48-i) + 0.5, Y: 45.5, Z: 60}
		drones = append(drones, NewDrone(world.Vec3{X: float64(i) + 0.5, Y: 1.5, Z: 60}, &tx))
	}
	e.SetDrones(drones)

	require.NoError(t, e.Step(context.Background(), 0.1))
	for i, d := range drones {
		assert.NotEmpty(t, d.Path, "drone %d", i)
		total := 0.0
		for j := 1; j < len(d.Path); j++ {
			total += math.Hypot(d.Path[j].X-d.Path[j-1].X, d.Path[j].Y-d.Path[j-1].Y)
		}
		assert.Greater(t, total, 0.0, "drone %d", i)
	}
}
