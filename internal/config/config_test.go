package config

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	log "github.com/sirupsen/logrus"

	"github.com/elektrokombinacija/roadnav/internal/core"
)

func TestLoad(t *testing.T) {
	f, err := Load("testdata/loop.yaml")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if f.Simulation.TimeStep != 0.25 {
		t.Errorf("time_step = %v, want 0.25", f.Simulation.TimeStep)
	}
	if f.Simulation.Seed != 7 {
		t.Errorf("seed = %d, want 7", f.Simulation.Seed)
	}
	// Not in the file, so the default survives.
	if f.Simulation.TileSize != 2 || f.Simulation.LaneOffset != 0.25 {
		t.Errorf("tile sizing = %v/%v, want defaults 2/0.25", f.Simulation.TileSize, f.Simulation.LaneOffset)
	}
	if len(f.Roads) != 9 {
		t.Errorf("roads = %d, want 9", len(f.Roads))
	}
	if len(f.Vehicles) != 3 {
		t.Fatalf("vehicles = %d, want 3", len(f.Vehicles))
	}
	if f.Vehicles[0].Count != 1 {
		t.Errorf("vehicle count defaults to %d, want 1", f.Vehicles[0].Count)
	}
}

func TestLoadMissing(t *testing.T) {
	if _, err := Load("testdata/nope.yaml"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestBuildGraphPortOrder(t *testing.T) {
	f, err := Load("testdata/loop.yaml")
	if err != nil {
		t.Fatal(err)
	}
	g, err := f.BuildGraph()
	if err != nil {
		t.Fatalf("BuildGraph: %v", err)
	}

	for _, r := range f.Roads {
		id, _ := g.RoadByName(r.ID)
		for port, want := range r.Neighbours {
			nb, err := g.NeighbourAtPort(id, port)
			if err != nil {
				t.Fatalf("NeighbourAtPort(%s, %d): %v", r.ID, port, err)
			}
			if got := g.Road(nb).Name; got != want {
				t.Errorf("road %s port %d = %s, want %s", r.ID, port, got, want)
			}
		}
	}
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			"asymmetric neighbours",
			`roads:
  - {id: a, type: straight, position: [1, 0], neighbours: [b]}
  - {id: b, type: straight, position: [3, 0]}`,
			"does not list it back",
		},
		{
			"unknown road type",
			`roads: [{id: a, type: bridge}]`,
			"unknown road type",
		},
		{
			"unknown neighbour",
			`roads: [{id: a, type: end, neighbours: [ghost]}]`,
			"unknown neighbour",
		},
		{
			"duplicate id",
			`roads: [{id: a, type: end}, {id: a, type: end}]`,
			"duplicate road id",
		},
		{
			"vehicle without placement",
			`vehicles: [{type: sedan}]`,
			"exactly one of",
		},
		{
			"vehicle with two placements",
			`roads: [{id: a, type: end}]
vehicles: [{type: sedan, start: a, route: [a]}]`,
			"exactly one of",
		},
		{
			"unknown vehicle type",
			`roads: [{id: a, type: end}]
vehicles: [{type: tank, start: a}]`,
			"unknown vehicle type",
		},
		{
			"bad time step",
			`simulation: {time_step: 0}`,
			"time_step",
		},
		{
			"not yaml",
			"roads: [",
			"parsing world YAML",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if !errors.Is(err, core.ErrConfiguration) {
				t.Fatalf("Expected ErrConfiguration, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestBuildGraphNeighbourOrder(t *testing.T) {
	// A 2x2 ring of bends.
	ring := func(a, b, c, d []string) *File {
		f := Default()
		f.Roads = []Road{
			{ID: "a", Type: "bend", Position: [2]float64{0, 0}, Rotation: -90, Neighbours: a},
			{ID: "b", Type: "bend", Position: [2]float64{2, 0}, Rotation: 0, Neighbours: b},
			{ID: "c", Type: "bend", Position: [2]float64{2, 2}, Rotation: 90, Neighbours: c},
			{ID: "d", Type: "bend", Position: [2]float64{0, 2}, Rotation: 180, Neighbours: d},
		}
		return f
	}

	ok := ring([]string{"b", "d"}, []string{"a", "c"}, []string{"b", "d"}, []string{"a", "c"})
	if _, err := ok.BuildGraph(); err != nil {
		t.Fatalf("consistent lists should build: %v", err)
	}

	// Each road wants its clockwise neighbour first: no connection order
	// satisfies all four lists.
	cyclic := ring([]string{"b", "d"}, []string{"c", "a"}, []string{"d", "b"}, []string{"a", "c"})
	if _, err := cyclic.BuildGraph(); !errors.Is(err, core.ErrConfiguration) {
		t.Errorf("Expected ErrConfiguration for conflicting orders, got %v", err)
	}

	oneSided := ring([]string{"b", "d"}, []string{"a", "c"}, []string{"b", "d"}, []string{"c"})
	if _, err := oneSided.BuildGraph(); !errors.Is(err, core.ErrConfiguration) {
		t.Errorf("Expected ErrConfiguration for unreciprocated neighbour, got %v", err)
	}
}

func TestBuildRunsSimulation(t *testing.T) {
	f, err := Load("testdata/loop.yaml")
	if err != nil {
		t.Fatal(err)
	}

	logger := log.New()
	logger.SetOutput(io.Discard)
	cfg := f.SimulationConfig()
	cfg.Logger = logger

	s, err := f.Build(cfg)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if n := len(s.Views()); n != 3 {
		t.Fatalf("spawned %d vehicles, want 3", n)
	}

	m, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if m.Ticks != 120 {
		t.Errorf("ticks = %d, want 120", m.Ticks)
	}
	if m.LaneTransitions == 0 {
		t.Error("no vehicle changed lanes")
	}
}

func TestStackedVehiclesMakeProgress(t *testing.T) {
	data, err := os.ReadFile("testdata/loop.yaml")
	if err != nil {
		t.Fatal(err)
	}
	data = append(data, []byte("  - {type: van, count: 2, route: [spur, n, ne, e]}\n")...)
	f, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	logger := log.New()
	logger.SetOutput(io.Discard)
	cfg := f.SimulationConfig()
	cfg.Logger = logger
	s, err := f.Build(cfg)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	start := make(map[uuid.UUID]orb.Point)
	for _, v := range s.Views() {
		start[v.ID] = v.Position
	}
	if len(start) != 5 {
		t.Fatalf("Expected 5 vehicles, got %d", len(start))
	}

	// Both copies spawn on the same pose; neither may block the other.
	for i := 0; i < 40; i++ {
		if err := s.Step(); err != nil {
			t.Fatalf("Step: %v", err)
		}
	}
	for _, v := range s.Views() {
		if planar.Distance(start[v.ID], v.Position) < core.Epsilon {
			t.Errorf("Expected vehicle %s (%v) to leave %v, it did not move", v.ID, v.Type, start[v.ID])
		}
	}
}

func TestValidateRoutes(t *testing.T) {
	tests := []struct {
		name  string
		route string
		ok    bool
	}{
		{"connected", "[spur, n, ne, e]", true},
		{"single road", "[w]", true},
		{"skips a road", "[spur, ne]", false},
		{"not neighbours", "[w, e]", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := os.ReadFile("testdata/loop.yaml")
			if err != nil {
				t.Fatal(err)
			}
			data = append(data, []byte("  - {type: truck, route: "+tt.route+"}\n")...)
			f, err := Parse(data)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			g, err := f.BuildGraph()
			if err != nil {
				t.Fatalf("BuildGraph: %v", err)
			}

			err = f.ValidateRoutes(g)
			if tt.ok && err != nil {
				t.Errorf("Expected route %s to validate, got %v", tt.route, err)
			}
			if !tt.ok && !errors.Is(err, core.ErrConfiguration) {
				t.Errorf("Expected ErrConfiguration for route %s, got %v", tt.route, err)
			}
		})
	}
}

func TestSampleLayout(t *testing.T) {
	f, err := Load("../../layouts/city.yaml")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := f.BuildGraph(); err != nil {
		t.Fatalf("BuildGraph: %v", err)
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	f, err := Load("testdata/loop.yaml")
	if err != nil {
		t.Fatal(err)
	}
	data, err := f.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	back, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse(Marshal()): %v", err)
	}
	if len(back.Roads) != len(f.Roads) || back.Roads[1].Neighbours[2] != "spur" {
		t.Errorf("round trip lost roads: %+v", back.Roads)
	}
}
