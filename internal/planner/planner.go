// Package planner finds routes through a grid snapshot. The primary variant
// is a bandit-scheduled multi-heuristic A*: four priority queues driven by
// one admissible and three inadmissible heuristics, with a UCB1 policy
// deciding which queue to expand and an admissibility rule bounding the
// returned cost to w1*w2 times optimal.
package planner

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/lalitx17/UAVPathOptimizer/internal/grid"
	"github.com/lalitx17/UAVPathOptimizer/internal/world"
)

var (
	// ErrInvalidRequest means the start or goal is outside the grid or on
	// an occupied cell. Rejected before any expansion.
	ErrInvalidRequest = errors.New("invalid plan request")

	// ErrUnreachable means every queue drained before the goal was reached.
	ErrUnreachable = errors.New("goal unreachable")

	// ErrStaleSnapshot means the snapshot was superseded mid-plan. The
	// caller should resubmit against the current snapshot.
	ErrStaleSnapshot = errors.New("grid snapshot superseded")
)

// Event is one expansion step, exposed for visualization. The planner never
// depends on anything consuming these.
type Event struct {
	Cell  grid.Cell
	Queue int // queue id, see QueueName
	Step  int // expansion index, starting at 1
}

// QueueName returns a human-readable name for a queue id.
func QueueName(q int) string {
	if q < 0 || q >= numQueues {
		return "unknown"
	}
	return queueNames[q]
}

// Request describes one plan computation against one snapshot.
type Request struct {
	Start world.Vec3
	Goal  world.Vec3

	Snapshot *grid.Snapshot

	// W1 bounds how far an inadmissible queue's top may exceed the anchor's
	// before the expansion is redirected to the anchor. W2 inflates every
	// heuristic inside the queue keys. The returned cost is guaranteed
	// within W1*W2 of optimal whenever BoundMet is true. Zero values take
	// the planner's tuning defaults.
	W1 float64
	W2 float64

	AllowDiagonal bool
	MaxExpansions int // zero takes the tuning default

	// Observer, when set, receives every expansion.
	Observer func(Event)
}

// Result is the outcome of a completed or budget-capped plan.
type Result struct {
	Waypoints  []world.Vec3 `json:"waypoints"`
	Speeds     []float64    `json:"speeds"` // recommended m/s per waypoint
	Cost       float64      `json:"cost"`   // meters along the returned path
	Expansions int          `json:"expansions"`
	BoundMet   bool         `json:"boundMet"` // cost <= w1*w2*optimal holds
	Partial    bool         `json:"partial"`  // budget hit; path reaches the closest explored cell
}

// Algorithm is a named planner variant. Implementations are stateless
// across calls: planning the same request against the same snapshot is a
// pure function.
type Algorithm interface {
	Name() string
	Plan(ctx context.Context, req Request) (*Result, error)
}

// Tuning collects the knobs shared by planner variants.
type Tuning struct {
	W1             float64    `json:"w1"`             // default 1.4
	W2             float64    `json:"w2"`             // default 1.2
	UCBExploration float64    `json:"ucbExploration"` // default 0.8
	BearingGamma   float64    `json:"bearingGamma"`   // default 0.2
	MaxExpansions  int        `json:"maxExpansions"`  // default 20000
	Speed          SpeedModel `json:"speed"`
}

// DefaultTuning returns the tested defaults.
func DefaultTuning() Tuning {
	return Tuning{
		W1:             1.4,
		W2:             1.2,
		UCBExploration: 0.8,
		BearingGamma:   0.2,
		MaxExpansions:  20000,
		Speed:          DefaultSpeedModel(),
	}
}

func (t *Tuning) applyDefaults() {
	d := DefaultTuning()
	if t.W1 < 1 {
		t.W1 = d.W1
	}
	if t.W2 < 1 {
		t.W2 = d.W2
	}
	if t.UCBExploration <= 0 {
		t.UCBExploration = d.UCBExploration
	}
	if t.BearingGamma <= 0 {
		t.BearingGamma = d.BearingGamma
	}
	if t.MaxExpansions <= 0 {
		t.MaxExpansions = d.MaxExpansions
	}
	if t.Speed.VMax <= 0 {
		t.Speed = d.Speed
	}
}

// BanditMHAStar is the multi-queue A* variant with UCB1 queue scheduling.
type BanditMHAStar struct {
	tuning Tuning
	holder *grid.Holder // optional; enables staleness detection
}

// NewBanditMHAStar builds the variant. holder may be nil, in which case
// plans never report staleness.
func NewBanditMHAStar(t Tuning, holder *grid.Holder) *BanditMHAStar {
	t.applyDefaults()
	return &BanditMHAStar{tuning: t, holder: holder}
}

// Name implements Algorithm.
func (p *BanditMHAStar) Name() string { return "bandit_mha_star" }

// Plan runs the search. All mutable state is local to the call, so any
// number of plans may run concurrently against the same snapshot.
func (p *BanditMHAStar) Plan(ctx context.Context, req Request) (*Result, error) {
	snap := req.Snapshot
	if snap == nil {
		return nil, fmt.Errorf("nil snapshot: %w", ErrInvalidRequest)
	}
	g := snap.Grid

	start, goal, err := validateEndpoints(g, req.Start, req.Goal)
	if err != nil {
		return nil, err
	}

	w1, w2, budget := req.W1, req.W2, req.MaxExpansions
	if w1 < 1 {
		w1 = p.tuning.W1
	}
	if w2 < 1 {
		w2 = p.tuning.W2
	}
	if budget <= 0 {
		budget = p.tuning.MaxExpansions
	}

	if start == goal {
		return singleCellResult(snap, start, p.tuning.Speed), nil
	}

	hs := newHeuristicSet(snap, start, goal, req.AllowDiagonal, p.tuning.Speed, p.tuning.BearingGamma)
	open := newOpenList(g.NumCells())
	idx := g.Index

	startIdx := idx(start)
	open.g[startIdx] = 0
	open.pushAll(start, keysFor(hs, start, 0, w2), 0)

	scale := math.Max(hs.anchor(start), g.CellSize)
	sched := newBanditScheduler(p.tuning.UCBExploration, scale)

	// Best-effort fallback for budget exhaustion: the expanded cell closest
	// to the goal by the anchor heuristic.
	bestCell := start
	bestH := hs.anchor(start)

	var nbuf []grid.Neighbor
	expansions := 0

	for expansions < budget {
		// The loop top is the cancellation point.
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if p.holder != nil && p.holder.Stale(snap) {
			return nil, fmt.Errorf("snapshot v%d after %d expansions: %w", snap.Version, expansions, ErrStaleSnapshot)
		}
		if open.empty(idx) {
			return nil, fmt.Errorf("explored %d cells: %w", expansions, ErrUnreachable)
		}

		var available [numArms]bool
		for arm := 0; arm < numArms; arm++ {
			available[arm] = !math.IsInf(open.topKey(arm+1, idx), 1)
		}
		arm := sched.selectArm(available)

		// Admissibility rule: an inadmissible queue may expand only while
		// its top stays within w1 of the anchor's top; otherwise the anchor
		// expands instead. The pull is still attributed to the chosen arm.
		actual := queueAnchor
		if arm >= 0 {
			sched.recordPull(arm)
			chosen := arm + 1
			if open.topKey(chosen, idx) <= w1*open.topKey(queueAnchor, idx) {
				actual = chosen
			}
		}

		entry, ok := open.pop(actual, idx)
		if !ok {
			// Chosen queue drained between checks; the anchor is the only
			// possible fallback.
			if entry, ok = open.pop(queueAnchor, idx); !ok {
				continue
			}
			actual = queueAnchor
		}

		cell := entry.cell
		ci := idx(cell)
		open.visited[actual][ci] = true
		expansions++

		if req.Observer != nil {
			req.Observer(Event{Cell: cell, Queue: actual, Step: expansions})
		}

		// Only anchor extraction carries the w1*w2 guarantee.
		if actual == queueAnchor && cell == goal {
			res := pathResult(snap, open.parent, goal, p.tuning.Speed)
			res.Cost = open.g[ci]
			res.Expansions = expansions
			res.BoundMet = true
			return res, nil
		}

		if h := hs.anchor(cell); h < bestH {
			bestH = h
			bestCell = cell
		}

		nbuf = g.Neighbors(cell, req.AllowDiagonal, nbuf[:0])
		for _, nb := range nbuf {
			ni := idx(nb.Cell)
			ng := open.g[ci] + nb.Cost
			if ng+1e-12 >= open.g[ni] {
				continue
			}
			open.g[ni] = ng
			open.parent[ni] = int32(ci)
			open.pushAll(nb.Cell, keysFor(hs, nb.Cell, ng, w2), ng)
		}

		if arm >= 0 {
			sched.recordReward(arm, open.topKey(arm+1, idx))
		}
	}

	// Budget exhausted: hand back the closest approach, flagged partial.
	res := pathResult(snap, open.parent, bestCell, p.tuning.Speed)
	res.Cost = open.g[idx(bestCell)]
	res.Expansions = expansions
	res.Partial = true
	return res, nil
}

// keysFor computes the per-queue keys g + w2*h_q for one cell.
func keysFor(hs *heuristicSet, c grid.Cell, g, w2 float64) [numQueues]float64 {
	var keys [numQueues]float64
	for q := 0; q < numQueues; q++ {
		keys[q] = g + w2*hs.eval(q, c)
	}
	return keys
}

// validateEndpoints maps both endpoints to cells and rejects requests whose
// endpoints are out of bounds or occupied, before any expansion happens.
func validateEndpoints(g *grid.Grid, start, goal world.Vec3) (grid.Cell, grid.Cell, error) {
	s, err := g.WorldToCell(start.X, start.Y)
	if err != nil {
		return grid.Cell{}, grid.Cell{}, fmt.Errorf("start %v: %w", err, ErrInvalidRequest)
	}
	t, err := g.WorldToCell(goal.X, goal.Y)
	if err != nil {
		return grid.Cell{}, grid.Cell{}, fmt.Errorf("goal %v: %w", err, ErrInvalidRequest)
	}
	if g.IsOccupied(s) {
		return grid.Cell{}, grid.Cell{}, fmt.Errorf("start cell (%d,%d) occupied: %w", s.X, s.Y, ErrInvalidRequest)
	}
	if g.IsOccupied(t) {
		return grid.Cell{}, grid.Cell{}, fmt.Errorf("goal cell (%d,%d) occupied: %w", t.X, t.Y, ErrInvalidRequest)
	}
	return s, t, nil
}
