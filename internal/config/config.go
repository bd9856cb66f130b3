// Package config loads world files: the road layout, the vehicles to spawn
// and the simulation settings.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/elektrokombinacija/roadnav/internal/core"
	"github.com/elektrokombinacija/roadnav/internal/sim"
)

// File is a decoded world file.
type File struct {
	Simulation Simulation `yaml:"simulation"`
	Roads      []Road     `yaml:"roads"`
	Vehicles   []Vehicle  `yaml:"vehicles"`
}

// Simulation holds run settings and tile sizing.
type Simulation struct {
	TimeStep      float64 `yaml:"time_step"`
	Duration      float64 `yaml:"duration"`
	Seed          int64   `yaml:"seed"`
	TileSize      float64 `yaml:"tile_size"`
	LaneOffset    float64 `yaml:"lane_offset"`
	RoamOnArrival bool    `yaml:"roam_on_arrival"`
}

// Road places one tile. Neighbours list adjacent road ids; every listed
// neighbour must list this road back.
type Road struct {
	ID         string     `yaml:"id"`
	Type       string     `yaml:"type"`
	Position   [2]float64 `yaml:"position"`
	Rotation   float64    `yaml:"rotation"` // Degrees, clockwise on screen
	Neighbours []string   `yaml:"neighbours"`
}

// Vehicle spawns Count vehicles of one preset. Exactly one of Start (roam),
// Route (fixed roads) or From/To (computed route) is set.
type Vehicle struct {
	Type  string   `yaml:"type"`
	Count int      `yaml:"count"`
	Start string   `yaml:"start,omitempty"`
	Route []string `yaml:"route,omitempty"`
	From  string   `yaml:"from,omitempty"`
	To    string   `yaml:"to,omitempty"`
}

// Default returns a world file with default settings and no roads.
func Default() *File {
	s := sim.DefaultConfig()
	g := core.DefaultGraphOptions()
	return &File{
		Simulation: Simulation{
			TimeStep:   s.TimeStep,
			Duration:   s.Duration,
			Seed:       s.Seed,
			TileSize:   g.TileSize,
			LaneOffset: g.LaneOffset,
		},
	}
}

// Load reads and validates a world file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading world file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a world file over the defaults and validates it.
func Parse(data []byte) (*File, error) {
	f := Default()
	if err := yaml.Unmarshal(data, f); err != nil {
		return nil, fmt.Errorf("%w: parsing world YAML: %v", core.ErrConfiguration, err)
	}
	for i := range f.Vehicles {
		if f.Vehicles[i].Count == 0 {
			f.Vehicles[i].Count = 1
		}
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

// GraphOptions returns the tile sizing for the road graph.
func (f *File) GraphOptions() core.GraphOptions {
	return core.GraphOptions{
		TileSize:   f.Simulation.TileSize,
		LaneOffset: f.Simulation.LaneOffset,
	}
}

// SimulationConfig returns the simulator settings from the file.
func (f *File) SimulationConfig() sim.SimulationConfig {
	cfg := sim.DefaultConfig()
	cfg.TimeStep = f.Simulation.TimeStep
	cfg.Duration = f.Simulation.Duration
	cfg.Seed = f.Simulation.Seed
	cfg.RoamOnArrival = f.Simulation.RoamOnArrival
	return cfg
}

// Marshal encodes the file back to YAML.
func (f *File) Marshal() ([]byte, error) {
	return yaml.Marshal(f)
}
