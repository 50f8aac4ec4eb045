// Package sim advances a fleet of drones along planner-produced paths with
// simple waypoint-chasing kinematics. Each drone replans on a cadence, on a
// target change, or when it runs out of path; all plans in one tick run
// concurrently against the same immutable grid snapshot.
package sim

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/lalitx17/UAVPathOptimizer/internal/grid"
	"github.com/lalitx17/UAVPathOptimizer/internal/planner"
	"github.com/lalitx17/UAVPathOptimizer/internal/world"
)

// Drone is one simulated agent.
type Drone struct {
	ID     string       `json:"id"`
	Pos    world.Vec3   `json:"pos"`
	Target *world.Vec3  `json:"target,omitempty"`
	Path   []world.Vec3 `json:"path,omitempty"`
	Speeds []float64    `json:"speeds,omitempty"` // recommended m/s per remaining waypoint

	lastPlanTick int
	lastTarget   world.Vec3
	planned      bool
}

// NewDrone places a drone at pos heading for target.
func NewDrone(pos world.Vec3, target *world.Vec3) *Drone {
	return &Drone{ID: uuid.NewString(), Pos: pos, Target: target}
}

// Engine owns the fleet and the tick loop. It is not safe for concurrent
// use; the server serializes access to it.
type Engine struct {
	Holder *grid.Holder

	ReplanEvery   int  // ticks between replans, default 20
	AllowDiagonal bool // connectivity handed to the planner

	algo   planner.Algorithm
	tuning planner.Tuning
	drones []*Drone
	tick   int
}

// NewEngine builds an engine planning with the named variant.
func NewEngine(holder *grid.Holder, algorithm string, tuning planner.Tuning) (*Engine, error) {
	e := &Engine{
		Holder:        holder,
		ReplanEvery:   20,
		AllowDiagonal: true,
		tuning:        tuning,
	}
	if err := e.SetAlgorithm(algorithm); err != nil {
		return nil, err
	}
	return e, nil
}

// SetAlgorithm switches the planner variant. Existing paths survive until
// each drone's next replan.
func (e *Engine) SetAlgorithm(name string) error {
	algo, err := planner.New(name, e.tuning, e.Holder)
	if err != nil {
		return err
	}
	e.algo = algo
	return nil
}

// Algorithm returns the active variant name.
func (e *Engine) Algorithm() string { return e.algo.Name() }

// Tick returns the current tick count.
func (e *Engine) Tick() int { return e.tick }

// SetDrones replaces the fleet.
func (e *Engine) SetDrones(drones []*Drone) {
	e.drones = drones
}

// Drones returns the fleet.
func (e *Engine) Drones() []*Drone { return e.drones }

// Reset rewinds the tick counter and forces every drone to replan.
func (e *Engine) Reset() {
	e.tick = 0
	for _, d := range e.drones {
		d.planned = false
		d.Path = nil
		d.Speeds = nil
	}
}

// Step advances the simulation by dt seconds: replan whichever drones need
// it, then move everyone along their paths. Plans for different drones run
// concurrently; each holds its own reference to the snapshot current at the
// start of the tick, so a world swap mid-tick cannot tear a computation.
func (e *Engine) Step(ctx context.Context, dt float64) error {
	snap := e.Holder.Current()
	if snap == nil {
		return errors.New("no grid snapshot; build a world first")
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)

	for _, d := range e.drones {
		if d.Target == nil || !e.needsReplan(d) {
			continue
		}
		d := d
		g.Go(func() error {
			res, err := e.algo.Plan(gctx, planner.Request{
				Start:         d.Pos,
				Goal:          *d.Target,
				Snapshot:      snap,
				AllowDiagonal: e.AllowDiagonal,
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case errors.Is(err, planner.ErrStaleSnapshot):
				// Superseded mid-plan; keep the old path and retry on the
				// next tick against the new snapshot.
				return nil
			case err != nil:
				d.Path = nil
				d.Speeds = nil
				d.planned = true
				d.lastPlanTick = e.tick
				d.lastTarget = *d.Target
				if errors.Is(err, planner.ErrUnreachable) || errors.Is(err, planner.ErrInvalidRequest) {
					return nil
				}
				return fmt.Errorf("drone %s: %w", d.ID, err)
			default:
				d.Path = res.Waypoints
				d.Speeds = res.Speeds
				d.planned = true
				d.lastPlanTick = e.tick
				d.lastTarget = *d.Target
				return nil
			}
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, d := range e.drones {
		advance(d, dt, e.tuning.Speed.VMax)
	}
	e.tick++
	return nil
}

func (e *Engine) needsReplan(d *Drone) bool {
	return !d.planned ||
		d.lastTarget != *d.Target ||
		e.tick-d.lastPlanTick >= e.ReplanEvery ||
		len(d.Path) == 0
}

// advance moves a drone toward its next waypoint at that waypoint's
// recommended speed, consuming waypoints as they are reached.
func advance(d *Drone, dt, fallbackSpeed float64) {
	remaining := dt
	for remaining > 0 && len(d.Path) > 0 {
		target := d.Path[0]
		speed := fallbackSpeed
		if len(d.Speeds) > 0 && d.Speeds[0] > 0 {
			speed = d.Speeds[0]
		}

		dx := target.X - d.Pos.X
		dy := target.Y - d.Pos.Y
		dz := target.Z - d.Pos.Z
		dist := d.Pos.Distance(target)
		if dist < 1e-3 {
			d.Pos = target
			d.Path = d.Path[1:]
			if len(d.Speeds) > 0 {
				d.Speeds = d.Speeds[1:]
			}
			continue
		}

		step := speed * remaining
		if step >= dist {
			d.Pos = target
			d.Path = d.Path[1:]
			if len(d.Speeds) > 0 {
				d.Speeds = d.Speeds[1:]
			}
			remaining -= dist / speed
			continue
		}
		d.Pos = world.Vec3{
			X: d.Pos.X + dx/dist*step,
			Y: d.Pos.Y + dy/dist*step,
			Z: d.Pos.Z + dz/dist*step,
		}
		remaining = 0
	}
}
