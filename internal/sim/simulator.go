// Package sim runs fixed-step traffic simulations over a validated road graph.
//
// Every tick the simulator snapshots all vehicle poses, then advances each
// vehicle in turn: free-road acceleration, proximity throttling against the
// snapshot, and kinematic movement along its lane.
package sim

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/elektrokombinacija/roadnav/internal/algo"
	"github.com/elektrokombinacija/roadnav/internal/core"
	"github.com/elektrokombinacija/roadnav/internal/nav"
)

// SimulationConfig configures the simulation parameters
type SimulationConfig struct {
	// Simulation duration in seconds
	Duration float64

	// Time step for simulation (seconds)
	TimeStep float64

	// Random seed for reproducibility
	Seed int64

	// Routed vehicles roam on after their route ends instead of stopping
	RoamOnArrival bool

	// Progress is logged every ProgressEvery simulated seconds, 0 disables
	ProgressEvery float64

	// Logger for spawn, arrival and progress events. Nil uses the standard logger.
	Logger log.FieldLogger
}

// DefaultConfig returns default simulation configuration
func DefaultConfig() SimulationConfig {
	return SimulationConfig{
		Duration:      60,   // 1 minute
		TimeStep:      0.05, // 50ms
		Seed:          42,
		ProgressEvery: 10,
	}
}

// SimulationMetrics collects metrics during simulation
type SimulationMetrics struct {
	// Timing
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	Ticks         int       `json:"ticks"`
	SimulatedTime float64   `json:"simulated_time"`

	// Vehicles
	Spawned        int `json:"spawned"`
	Removed        int `json:"removed"`
	Arrivals       int `json:"arrivals"`
	RouteFallbacks int `json:"route_fallbacks"`

	// Movement
	LaneTransitions   int     `json:"lane_transitions"`
	DistanceTravelled float64 `json:"distance_travelled"`

	// Avoidance, counted per vehicle per tick
	ThrottledTicks int `json:"throttled_ticks"`
	StoppedTicks   int `json:"stopped_ticks"`
}

// Vehicle is a simulated agent together with its preset.
type Vehicle struct {
	*nav.Agent
	Type core.VehicleType
}

// VehicleView is the read-only state of a vehicle handed to renderers.
type VehicleView struct {
	nav.View
	Type core.VehicleType
}

// Simulator advances vehicles over a road graph in fixed steps.
type Simulator struct {
	mu sync.Mutex

	config SimulationConfig
	graph  *core.Graph
	paths  *algo.Pathfinder
	rng    *rand.Rand
	log    log.FieldLogger

	// State
	vehicles    []*Vehicle
	currentTime float64
	tick        int

	// Metrics
	metrics SimulationMetrics
}

// NewSimulator creates a simulator over g. Stale waypoints are refreshed and
// the graph is validated; a malformed graph is rejected here so that ticks
// never meet one.
func NewSimulator(g *core.Graph, config SimulationConfig) (*Simulator, error) {
	if config.TimeStep <= 0 {
		return nil, fmt.Errorf("%w: time step must be positive, got %v", core.ErrConfiguration, config.TimeStep)
	}
	if config.Logger == nil {
		config.Logger = log.StandardLogger()
	}

	if n := g.RefreshStale(); n > 0 {
		config.Logger.WithField("roads", n).Debug("refreshed stale waypoints")
	}
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("invalid road graph: %w", err)
	}

	return &Simulator{
		config: config,
		graph:  g,
		paths:  algo.NewPathfinder(g),
		rng:    rand.New(rand.NewSource(config.Seed)),
		log:    config.Logger,
	}, nil
}

// Graph returns the road graph being simulated.
func (s *Simulator) Graph() *core.Graph {
	return s.graph
}

// Pathfinder returns the pathfinder used for trips.
func (s *Simulator) Pathfinder() *algo.Pathfinder {
	return s.paths
}

// Logger returns the simulator's logger.
func (s *Simulator) Logger() log.FieldLogger {
	return s.log
}

// Config returns the simulation configuration.
func (s *Simulator) Config() SimulationConfig {
	return s.config
}

func (s *Simulator) newVehicle(typ core.VehicleType) (*Vehicle, error) {
	spec := typ.Spec()
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	// Ids come from the seeded source so runs are reproducible.
	id, err := uuid.NewRandomFromReader(s.rng)
	if err != nil {
		return nil, fmt.Errorf("agent id: %w", err)
	}
	agent := nav.NewAgent(id, s.graph, spec, s.rng, nav.Options{RoamOnArrival: s.config.RoamOnArrival})
	return &Vehicle{Agent: agent, Type: typ}, nil
}

func (s *Simulator) add(v *Vehicle, msg string) {
	s.vehicles = append(s.vehicles, v)
	s.metrics.Spawned++
	s.log.WithFields(log.Fields{
		"agent":   v.ID,
		"vehicle": v.Type,
		"road":    s.graph.Road(v.Road()).Name,
		"lane":    v.Lane(),
	}).Debug(msg)
}

// SpawnRoaming adds a vehicle that wanders from a random lane of road.
func (s *Simulator) SpawnRoaming(road core.RoadID, typ core.VehicleType) (*Vehicle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, err := s.newVehicle(typ)
	if err != nil {
		return nil, err
	}
	if err := v.SetRoam(road); err != nil {
		return nil, err
	}
	s.add(v, "spawned roaming vehicle")
	return v, nil
}

// SpawnRouted adds a vehicle that follows route. The route is validated first.
func (s *Simulator) SpawnRouted(route core.Route, typ core.VehicleType) (*Vehicle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := route.Validate(s.graph); err != nil {
		return nil, err
	}
	v, err := s.newVehicle(typ)
	if err != nil {
		return nil, err
	}
	if err := v.SetRoute(route); err != nil {
		return nil, err
	}
	s.add(v, "spawned routed vehicle")
	return v, nil
}

// SpawnTrip routes a vehicle from one road to another. When the goal is
// unreachable the error wraps core.ErrNoRoute and nothing is spawned.
func (s *Simulator) SpawnTrip(from, to core.RoadID, typ core.VehicleType) (*Vehicle, error) {
	route, err := s.paths.FindRoute(from, to)
	if err != nil {
		return nil, err
	}
	return s.SpawnRouted(route, typ)
}

// SpawnTripOrRoam is SpawnTrip falling back to roaming from the origin when
// the goal cannot be reached.
func (s *Simulator) SpawnTripOrRoam(from, to core.RoadID, typ core.VehicleType) (*Vehicle, error) {
	v, err := s.SpawnTrip(from, to, typ)
	if err == nil || !errors.Is(err, core.ErrNoRoute) {
		return v, err
	}

	s.log.WithFields(log.Fields{
		"from": s.graph.Road(from).Name,
		"to":   s.graph.Road(to).Name,
	}).Warn("no route, vehicle will roam instead")
	s.mu.Lock()
	s.metrics.RouteFallbacks++
	s.mu.Unlock()
	return s.SpawnRoaming(from, typ)
}

// Remove drops a vehicle from the simulation.
func (s *Simulator) Remove(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, v := range s.vehicles {
		if v.ID == id {
			s.vehicles = append(s.vehicles[:i], s.vehicles[i+1:]...)
			s.metrics.Removed++
			s.log.WithField("agent", id).Debug("removed vehicle")
			return true
		}
	}
	return false
}

// Step advances the simulation by one time step. An error is fatal: it means
// a vehicle hit a transition the graph cannot serve.
func (s *Simulator) Step() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.step()
}

func (s *Simulator) step() error {
	dt := s.config.TimeStep

	agents := make([]*nav.Agent, len(s.vehicles))
	for i, v := range s.vehicles {
		agents[i] = v.Agent
	}
	snap := nav.TakeSnapshot(agents)

	for _, v := range s.vehicles {
		mode := v.Mode()
		transitions := v.Transitions
		odometer := v.Odometer

		if err := v.Tick(dt, snap); err != nil {
			s.log.WithFields(log.Fields{
				"agent": v.ID,
				"road":  v.Road(),
				"lane":  v.Lane(),
				"tick":  s.tick,
			}).WithError(err).Error("lane transition failed")
			return fmt.Errorf("at tick %d: %w", s.tick, err)
		}

		s.metrics.LaneTransitions += v.Transitions - transitions
		s.metrics.DistanceTravelled += v.Odometer - odometer
		if v.LastReading().Hit {
			s.metrics.ThrottledTicks++
			if v.Speed() == 0 {
				s.metrics.StoppedTicks++
			}
		}
		if mode != nav.Arrived && v.Mode() == nav.Arrived {
			s.metrics.Arrivals++
			s.log.WithFields(log.Fields{
				"agent": v.ID,
				"road":  s.graph.Road(v.Road()).Name,
				"tick":  s.tick,
			}).Info("vehicle arrived")
		}
	}

	s.tick++
	s.currentTime = float64(s.tick) * dt
	s.metrics.Ticks = s.tick
	s.metrics.SimulatedTime = s.currentTime
	return nil
}

// Run steps the simulation until the configured duration has been simulated
// or ctx is cancelled.
func (s *Simulator) Run(ctx context.Context) (*SimulationMetrics, error) {
	s.mu.Lock()
	s.metrics.StartTime = time.Now()
	s.mu.Unlock()

	nextReport := s.config.ProgressEvery
	for s.Time() < s.config.Duration {
		select {
		case <-ctx.Done():
			return s.finish(), ctx.Err()
		default:
		}

		if err := s.Step(); err != nil {
			return s.finish(), err
		}

		// Periodic progress report
		if s.config.ProgressEvery > 0 && s.Time() >= nextReport {
			nextReport += s.config.ProgressEvery
			m := s.Metrics()
			s.log.WithFields(log.Fields{
				"time":        fmt.Sprintf("%.1fs", m.SimulatedTime),
				"vehicles":    len(s.Views()),
				"arrivals":    m.Arrivals,
				"transitions": m.LaneTransitions,
			}).Info("progress")
		}
	}
	return s.finish(), nil
}

func (s *Simulator) finish() *SimulationMetrics {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metrics.EndTime = time.Now()
	m := s.metrics
	return &m
}

// Time returns the simulated time in seconds.
func (s *Simulator) Time() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentTime
}

// Views returns a copy of every vehicle's pose and remaining waypoints.
func (s *Simulator) Views() []VehicleView {
	s.mu.Lock()
	defer s.mu.Unlock()

	views := make([]VehicleView, len(s.vehicles))
	for i, v := range s.vehicles {
		views[i] = VehicleView{View: v.View(), Type: v.Type}
	}
	return views
}

// Metrics returns current simulation metrics
func (s *Simulator) Metrics() SimulationMetrics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.metrics
}

// ExportMetrics writes metrics to a JSON file
func (s *Simulator) ExportMetrics(path string) error {
	s.mu.Lock()
	metrics := s.metrics
	s.mu.Unlock()

	data, err := json.MarshalIndent(metrics, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
