package planner

import (
	"math"

	"github.com/lalitx17/UAVPathOptimizer/internal/grid"
)

// Queue identifiers. The anchor queue is the only one whose heuristic is
// admissible; it alone backs the suboptimality bound.
const (
	queueAnchor = iota
	queueClearance
	queueLandmark
	queueBearing
	numQueues
)

// queueNames index by queue id, used in expansion events and diagnostics.
var queueNames = [numQueues]string{"anchor", "clearance", "landmark", "bearing"}

// heuristicSet evaluates the four per-cell scores against one fixed
// start/goal pair. It is built per plan and only reads snapshot layers.
type heuristicSet struct {
	snap    *grid.Snapshot
	start   grid.Cell
	goal    grid.Cell
	octile  bool // diagonal moves allowed: octile anchor, else Euclidean
	speed   SpeedModel
	bearing float64 // gamma, strength of the bearing bias

	// start->goal direction, normalized; zero when start == goal.
	dirX, dirY float64
}

func newHeuristicSet(snap *grid.Snapshot, start, goal grid.Cell, octile bool, speed SpeedModel, bearingGamma float64) *heuristicSet {
	h := &heuristicSet{
		snap:    snap,
		start:   start,
		goal:    goal,
		octile:  octile,
		speed:   speed,
		bearing: bearingGamma,
	}
	dx := float64(goal.X - start.X)
	dy := float64(goal.Y - start.Y)
	if n := math.Hypot(dx, dy); n > 0 {
		h.dirX, h.dirY = dx/n, dy/n
	}
	return h
}

// anchor is the admissible goal distance in meters: octile when diagonal
// moves are allowed, Euclidean otherwise. Never overestimates the true
// remaining cost.
func (h *heuristicSet) anchor(c grid.Cell) float64 {
	dx := math.Abs(float64(c.X - h.goal.X))
	dy := math.Abs(float64(c.Y - h.goal.Y))
	if h.octile {
		lo, hi := dx, dy
		if lo > hi {
			lo, hi = hi, lo
		}
		return (hi + (math.Sqrt2-1)*lo) * h.snap.Grid.CellSize
	}
	return math.Hypot(dx, dy) * h.snap.Grid.CellSize
}

// clearance inflates the goal distance by the slowdown the speed model
// predicts for the cell's local clearance. Cells hugging obstacles look
// expensive, pushing expansion toward open space. Inadmissible.
func (h *heuristicSet) clearance(c grid.Cell) float64 {
	clr := h.snap.Clearance.At(h.snap.Grid.Index(c))
	v := h.speed.SpeedAt(clr)
	if v <= 0 {
		v = h.speed.VMin
	}
	return h.anchor(c) * h.speed.VMax / v
}

// landmark is the triangle-inequality progress estimate from the snapshot's
// landmark tables. Used purely as a scheduling signal. Inadmissible in
// combination with the applied weight.
func (h *heuristicSet) landmark(c grid.Cell) float64 {
	return h.snap.Landmarks.Estimate(h.snap.Grid, c, h.goal)
}

// bearingAlign is the cosine of the angle between the fixed start->goal
// bearing and the cell->goal bearing, in [-1, 1].
func (h *heuristicSet) bearingAlign(c grid.Cell) float64 {
	dx := float64(h.goal.X - c.X)
	dy := float64(h.goal.Y - c.Y)
	n := math.Hypot(dx, dy)
	if n == 0 {
		return 1
	}
	a := (h.dirX*dx + h.dirY*dy) / n
	return math.Max(-1, math.Min(1, a))
}

// bearingH penalizes angular deviation from the straight start->goal
// bearing: aligned cells get a discounted anchor estimate, cells pointing
// away get an inflated one. Inadmissible.
func (h *heuristicSet) bearingH(c grid.Cell) float64 {
	return math.Max(0, h.anchor(c)*(1-h.bearing*h.bearingAlign(c)))
}

// eval dispatches on queue id.
func (h *heuristicSet) eval(queue int, c grid.Cell) float64 {
	switch queue {
	case queueAnchor:
		return h.anchor(c)
	case queueClearance:
		return h.clearance(c)
	case queueLandmark:
		return h.landmark(c)
	default:
		return h.bearingH(c)
	}
}
