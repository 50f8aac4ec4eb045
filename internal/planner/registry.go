package planner

import (
	"fmt"
	"sort"

	"github.com/lalitx17/UAVPathOptimizer/internal/grid"
)

// variants is the closed set of planner variants. A static table keeps
// dispatch trivially inspectable; there is no runtime registration.
var variants = map[string]func(Tuning, *grid.Holder) Algorithm{
	"bandit_mha_star": func(t Tuning, h *grid.Holder) Algorithm { return NewBanditMHAStar(t, h) },
	"a_star_grid":     func(t Tuning, _ *grid.Holder) Algorithm { return NewAStarGrid(t) },
	"straight_line":   func(t Tuning, _ *grid.Holder) Algorithm { return NewStraightLine(t) },
}

// Names returns the available variant names, sorted.
func Names() []string {
	names := make([]string, 0, len(variants))
	for name := range variants {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New builds the named variant. holder may be nil; only variants that
// support staleness detection use it.
func New(name string, t Tuning, holder *grid.Holder) (Algorithm, error) {
	ctor, ok := variants[name]
	if !ok {
		return nil, fmt.Errorf("unknown planner variant %q", name)
	}
	return ctor(t, holder), nil
}
