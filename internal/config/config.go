// Package config loads the server's tuning file. All fields are pointers so
// a partial JSON file overrides only what it names; everything else keeps
// the built-in default.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/lalitx17/UAVPathOptimizer/internal/grid"
	"github.com/lalitx17/UAVPathOptimizer/internal/planner"
)

// Config is the root tuning schema.
type Config struct {
	// Planner weights and budget.
	W1             *float64 `json:"w1,omitempty"`
	W2             *float64 `json:"w2,omitempty"`
	UCBExploration *float64 `json:"ucb_exploration,omitempty"`
	BearingGamma   *float64 `json:"bearing_gamma,omitempty"`
	MaxExpansions  *int     `json:"max_expansions,omitempty"`

	// Speed model.
	VMin        *float64 `json:"v_min,omitempty"`
	VMax        *float64 `json:"v_max,omitempty"`
	ClearanceLo *float64 `json:"clearance_lo,omitempty"`
	ClearanceHi *float64 `json:"clearance_hi,omitempty"`

	// Grid discretization.
	CellSize        *float64 `json:"cell_size_m,omitempty"`
	ClearanceMargin *float64 `json:"clearance_margin_m,omitempty"`
	CruiseAlt       *float64 `json:"cruise_alt_m,omitempty"`
	MaxCells        *int     `json:"max_cells,omitempty"`

	// Simulation.
	ReplanEvery *int `json:"replan_every_ticks,omitempty"`
}

// Load reads a JSON config file. A missing path returns an empty config so
// every knob falls back to its default.
func Load(path string) (*Config, error) {
	if path == "" {
		return &Config{}, nil
	}
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate rejects values the planner or grid builder would choke on.
func (c *Config) Validate() error {
	if c.W1 != nil && *c.W1 < 1 {
		return fmt.Errorf("w1 must be >= 1, got %v", *c.W1)
	}
	if c.W2 != nil && *c.W2 < 1 {
		return fmt.Errorf("w2 must be >= 1, got %v", *c.W2)
	}
	if c.UCBExploration != nil && *c.UCBExploration <= 0 {
		return fmt.Errorf("ucb_exploration must be positive, got %v", *c.UCBExploration)
	}
	if c.MaxExpansions != nil && *c.MaxExpansions <= 0 {
		return fmt.Errorf("max_expansions must be positive, got %v", *c.MaxExpansions)
	}
	if c.VMin != nil && c.VMax != nil && *c.VMin > *c.VMax {
		return fmt.Errorf("v_min %v exceeds v_max %v", *c.VMin, *c.VMax)
	}
	if c.CellSize != nil && *c.CellSize <= 0 {
		return fmt.Errorf("cell_size_m must be positive, got %v", *c.CellSize)
	}
	if c.MaxCells != nil && *c.MaxCells <= 0 {
		return fmt.Errorf("max_cells must be positive, got %v", *c.MaxCells)
	}
	if c.ReplanEvery != nil && *c.ReplanEvery <= 0 {
		return fmt.Errorf("replan_every_ticks must be positive, got %v", *c.ReplanEvery)
	}
	return nil
}

// Tuning materializes the planner tuning, defaults filled in.
func (c *Config) Tuning() planner.Tuning {
	t := planner.DefaultTuning()
	setF(&t.W1, c.W1)
	setF(&t.W2, c.W2)
	setF(&t.UCBExploration, c.UCBExploration)
	setF(&t.BearingGamma, c.BearingGamma)
	setI(&t.MaxExpansions, c.MaxExpansions)
	setF(&t.Speed.VMin, c.VMin)
	setF(&t.Speed.VMax, c.VMax)
	setF(&t.Speed.ClearanceLo, c.ClearanceLo)
	setF(&t.Speed.ClearanceHi, c.ClearanceHi)
	return t
}

// SnapshotConfig materializes the grid discretization settings.
func (c *Config) SnapshotConfig() grid.SnapshotConfig {
	s := grid.SnapshotConfig{}
	setF(&s.CellSize, c.CellSize)
	setF(&s.ClearanceMargin, c.ClearanceMargin)
	setF(&s.CruiseAlt, c.CruiseAlt)
	setI(&s.MaxCells, c.MaxCells)
	return s
}

// ReplanCadence returns the replan interval in ticks.
func (c *Config) ReplanCadence() int {
	if c.ReplanEvery != nil {
		return *c.ReplanEvery
	}
	return 20
}

func setF(dst *float64, src *float64) {
	if src != nil {
		*dst = *src
	}
}

func setI(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}
