package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"io"
	"log"
	"net/http"
	"sync"

	"github.com/lalitx17/UAVPathOptimizer/internal/config"
	"github.com/lalitx17/UAVPathOptimizer/internal/grid"
	"github.com/lalitx17/UAVPathOptimizer/internal/planner"
	"github.com/lalitx17/UAVPathOptimizer/internal/sim"
	"github.com/lalitx17/UAVPathOptimizer/internal/world"
)

// server bundles the shared state behind one mutex: the current world, the
// snapshot holder and the simulation engine. Snapshot reads inside plan
// computations are lock-free; the mutex only serializes HTTP-driven
// mutations.
type server struct {
	mu     sync.RWMutex
	cfg    *config.Config
	world  *world.World
	holder *grid.Holder
	engine *sim.Engine
}

// corsMiddleware adds CORS headers to allow frontend requests.
func corsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next(w, r)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]interface{}{"success": false, "error": msg})
}

// GET /health
func (s *server) healthHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.holder.Current()
	status := "waiting for world"
	resp := map[string]interface{}{
		"hasSnapshot": snap != nil,
		"algorithm":   s.engine.Algorithm(),
		"tick":        s.engine.Tick(),
	}
	if snap != nil {
		status = "ready"
		resp["snapshotVersion"] = snap.Version
		resp["gridCells"] = snap.Grid.NumCells()
		resp["cellSizeM"] = snap.Grid.CellSize
	}
	resp["status"] = status
	writeJSON(w, http.StatusOK, resp)
}

// GET /algorithms
func (s *server) algorithmsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"algorithms": planner.Names()})
}

// POST /world/synthetic - generate a city and swap in a fresh snapshot.
func (s *server) syntheticWorldHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var cfg world.SyntheticConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Buildings <= 0 {
		writeError(w, http.StatusBadRequest, "width, height and buildings must be positive")
		return
	}

	log.Printf("🗺️  Generating synthetic city %.0fx%.0fm, %d buildings (seed %d)",
		cfg.Width, cfg.Height, cfg.Buildings, cfg.Seed)

	wld := world.GenerateSynthetic(cfg)
	version := s.installWorld(wld)

	log.Printf("   Placed %d buildings, snapshot v%d", len(wld.Obstacles), version)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":         true,
		"buildings":       len(wld.Obstacles),
		"snapshotVersion": version,
	})
}

// POST /world/geojson - ingest building footprints and swap in a snapshot.
func (s *server) geojsonWorldHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 16<<20))
	if err != nil {
		writeError(w, http.StatusBadRequest, "read body: "+err.Error())
		return
	}

	wld, err := world.FromGeoJSON(data, world.GeoJSONConfig{})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	version := s.installWorld(wld)

	log.Printf("🗺️  Ingested %d footprints, snapshot v%d", len(wld.Obstacles), version)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":         true,
		"buildings":       len(wld.Obstacles),
		"snapshotVersion": version,
	})
}

// installWorld rebuilds all precomputed layers and atomically publishes the
// new snapshot. In-flight plans keep their old reference.
func (s *server) installWorld(wld *world.World) uint64 {
	snap := grid.BuildSnapshot(wld, s.cfg.SnapshotConfig())
	s.mu.Lock()
	s.world = wld
	version := s.holder.Swap(snap)
	s.engine.Reset()
	s.mu.Unlock()
	return version
}

type routeRequest struct {
	Start         world.Vec3 `json:"start"`
	Goal          world.Vec3 `json:"goal"`
	Algorithm     string     `json:"algorithm,omitempty"`
	W1            float64    `json:"w1,omitempty"`
	W2            float64    `json:"w2,omitempty"`
	AllowDiagonal bool       `json:"allowDiagonal"`
	MaxExpansions int        `json:"maxExpansions,omitempty"`
	Debug         bool       `json:"debug,omitempty"` // include expansion events
}

type expansionEvent struct {
	Cell  grid.Cell `json:"cell"`
	Queue string    `json:"queue"`
	Step  int       `json:"step"`
}

// POST /route - one-shot plan computation.
func (s *server) routeHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req routeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	snap := s.holder.Current()
	if snap == nil {
		writeError(w, http.StatusBadRequest, "no world loaded; call /world/synthetic or /world/geojson first")
		return
	}

	name := req.Algorithm
	if name == "" {
		name = "bandit_mha_star"
	}
	algo, err := planner.New(name, s.cfg.Tuning(), s.holder)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	planReq := planner.Request{
		Start:         req.Start,
		Goal:          req.Goal,
		Snapshot:      snap,
		W1:            req.W1,
		W2:            req.W2,
		AllowDiagonal: req.AllowDiagonal,
		MaxExpansions: req.MaxExpansions,
	}

	const maxEvents = 20000
	var events []expansionEvent
	if req.Debug {
		planReq.Observer = func(ev planner.Event) {
			if len(events) < maxEvents {
				events = append(events, expansionEvent{
					Cell:  ev.Cell,
					Queue: planner.QueueName(ev.Queue),
					Step:  ev.Step,
				})
			}
		}
	}

	log.Printf("📍 Route request: (%.1f, %.1f) -> (%.1f, %.1f) via %s",
		req.Start.X, req.Start.Y, req.Goal.X, req.Goal.Y, name)

	res, err := algo.Plan(r.Context(), planReq)
	switch {
	case errors.Is(err, planner.ErrInvalidRequest):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, planner.ErrUnreachable):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	case errors.Is(err, planner.ErrStaleSnapshot):
		writeError(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	log.Printf("✅ Path found: %d waypoints, %.1fm, %d expansions (partial=%v)",
		len(res.Waypoints), res.Cost, res.Expansions, res.Partial)

	resp := map[string]interface{}{"success": true, "result": res}
	if req.Debug {
		resp["events"] = events
	}
	writeJSON(w, http.StatusOK, resp)
}

type setDronesRequest struct {
	Drones []struct {
		Pos    world.Vec3  `json:"pos"`
		Target *world.Vec3 `json:"target,omitempty"`
	} `json:"drones"`
}

// POST /sim/drones - replace the fleet.
func (s *server) setDronesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req setDronesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	drones := make([]*sim.Drone, 0, len(req.Drones))
	for _, d := range req.Drones {
		drones = append(drones, sim.NewDrone(d.Pos, d.Target))
	}

	s.mu.Lock()
	s.engine.SetDrones(drones)
	s.mu.Unlock()

	log.Printf("🛸 Fleet set: %d drones", len(drones))
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "drones": len(drones)})
}

type stepRequest struct {
	Ticks     int     `json:"ticks"`
	Dt        float64 `json:"dt"`
	Algorithm string  `json:"algorithm,omitempty"`
}

// POST /sim/step - advance the simulation synchronously and return state.
func (s *server) stepHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req stepRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Ticks <= 0 {
		req.Ticks = 1
	}
	if req.Dt <= 0 {
		req.Dt = 0.05
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if req.Algorithm != "" {
		if err := s.engine.SetAlgorithm(req.Algorithm); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	for i := 0; i < req.Ticks; i++ {
		if err := s.engine.Step(r.Context(), req.Dt); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"tick":    s.engine.Tick(),
		"drones":  s.engine.Drones(),
	})
}

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	cfgPath := flag.String("config", "", "optional tuning JSON file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatal(err)
	}

	holder := &grid.Holder{}
	engine, err := sim.NewEngine(holder, "bandit_mha_star", cfg.Tuning())
	if err != nil {
		log.Fatal(err)
	}
	engine.ReplanEvery = cfg.ReplanCadence()

	s := &server{cfg: cfg, holder: holder, engine: engine}

	http.HandleFunc("/health", corsMiddleware(s.healthHandler))
	http.HandleFunc("/algorithms", corsMiddleware(s.algorithmsHandler))
	http.HandleFunc("/world/synthetic", corsMiddleware(s.syntheticWorldHandler))
	http.HandleFunc("/world/geojson", corsMiddleware(s.geojsonWorldHandler))
	http.HandleFunc("/route", corsMiddleware(s.routeHandler))
	http.HandleFunc("/sim/drones", corsMiddleware(s.setDronesHandler))
	http.HandleFunc("/sim/step", corsMiddleware(s.stepHandler))

	log.Println("========================================")
	log.Println("🚀 UAV Path Optimizer Server")
	log.Println("========================================")
	log.Println("Endpoints:")
	log.Println("  GET  /health           - Server and snapshot status")
	log.Println("  GET  /algorithms       - Available planner variants")
	log.Println("  POST /world/synthetic  - Generate a synthetic city")
	log.Println("  POST /world/geojson    - Ingest building footprints")
	log.Println("  POST /route            - Compute a route")
	log.Println("  POST /sim/drones       - Set the drone fleet")
	log.Println("  POST /sim/step         - Advance the simulation")
	log.Println("")
	log.Printf("Server starting on %s", *addr)

	if err := http.ListenAndServe(*addr, nil); err != nil {
		log.Fatal(err)
	}
}
