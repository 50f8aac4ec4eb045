package planner

import (
	"context"
	"fmt"

	"github.com/lalitx17/UAVPathOptimizer/internal/grid"
)

// StraightLine is the naive baseline: a single segment from start to goal at
// cruise altitude, ignoring obstacles between the endpoints. BoundMet is
// reported only when every cell under the segment is free.
type StraightLine struct {
	tuning Tuning
}

// NewStraightLine builds the variant.
func NewStraightLine(t Tuning) *StraightLine {
	t.applyDefaults()
	return &StraightLine{tuning: t}
}

// Name implements Algorithm.
func (p *StraightLine) Name() string { return "straight_line" }

// Plan implements Algorithm.
func (p *StraightLine) Plan(_ context.Context, req Request) (*Result, error) {
	snap := req.Snapshot
	if snap == nil {
		return nil, fmt.Errorf("nil snapshot: %w", ErrInvalidRequest)
	}
	g := snap.Grid

	start, goal, err := validateEndpoints(g, req.Start, req.Goal)
	if err != nil {
		return nil, err
	}
	if start == goal {
		return singleCellResult(snap, start, p.tuning.Speed), nil
	}

	a := g.CellToWorld(start)
	b := g.CellToWorld(goal)
	out := &Result{
		Cost:     a.Distance(b),
		BoundMet: segmentClear(g, start, goal),
	}
	for _, c := range []grid.Cell{start, goal} {
		out.Waypoints = append(out.Waypoints, g.CellToWorld(c))
		out.Speeds = append(out.Speeds, p.tuning.Speed.SpeedAt(snap.Clearance.At(g.Index(c))))
	}
	return out, nil
}

// segmentClear samples the segment between two cells at half-cell intervals
// and reports whether every sampled cell is free.
func segmentClear(g *grid.Grid, a, b grid.Cell) bool {
	dx := b.X - a.X
	dy := b.Y - a.Y
	steps := 2 * maxInt(absInt(dx), absInt(dy))
	if steps == 0 {
		return !g.IsOccupied(a)
	}
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		c := grid.Cell{
			X: a.X + int(t*float64(dx)+0.5),
			Y: a.Y + int(t*float64(dy)+0.5),
		}
		if g.IsOccupied(c) {
			return false
		}
	}
	return true
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
