package config

import (
	"errors"
	"fmt"
	"math"

	"github.com/paulmach/orb"

	"github.com/elektrokombinacija/roadnav/internal/core"
	"github.com/elektrokombinacija/roadnav/internal/sim"
)

// BuildGraph places every road and connects the neighbour lists so that each
// road's ports are numbered in the order its list names them. Lists whose
// orders contradict each other cannot be honoured and are rejected, as are
// lists that are not reciprocated. The finished graph is validated.
func (f *File) BuildGraph() (*core.Graph, error) {
	g := core.NewGraph(f.GraphOptions())

	for _, r := range f.Roads {
		typ, err := core.ParseRoadType(r.Type)
		if err != nil {
			return nil, fmt.Errorf("road %q: %w", r.ID, err)
		}
		t := core.Transform{
			Position: orb.Point{r.Position[0], r.Position[1]},
			Rotation: r.Rotation * math.Pi / 180,
		}
		if _, err := g.AddRoad(r.ID, typ, t); err != nil {
			return nil, err
		}
	}

	// Connect a pair only when each is the other's next pending neighbour.
	pending := make(map[string][]string, len(f.Roads))
	for _, r := range f.Roads {
		pending[r.ID] = r.Neighbours
	}
	for progress := true; progress; {
		progress = false
		for _, r := range f.Roads {
			for len(pending[r.ID]) > 0 {
				name := pending[r.ID][0]
				other := pending[name]
				if len(other) == 0 || other[0] != r.ID {
					break
				}
				a, _ := g.RoadByName(r.ID)
				b, _ := g.RoadByName(name)
				if err := g.Connect(a, b); err != nil {
					return nil, err
				}
				pending[r.ID] = pending[r.ID][1:]
				pending[name] = other[1:]
				progress = true
			}
		}
	}

	var stuck []string
	for _, r := range f.Roads {
		if len(pending[r.ID]) > 0 {
			stuck = append(stuck, fmt.Sprintf("%s->%s", r.ID, pending[r.ID][0]))
		}
	}
	if len(stuck) > 0 {
		return nil, fmt.Errorf("%w: neighbour lists are not reciprocal or their orders conflict at %v",
			core.ErrConfiguration, stuck)
	}

	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// ValidateRoutes checks every authored vehicle route against g, so that a
// broken route is reported before any vehicle is spawned.
func (f *File) ValidateRoutes(g *core.Graph) error {
	var errs []error
	for i, v := range f.Vehicles {
		if len(v.Route) == 0 {
			continue
		}
		route := make(core.Route, 0, len(v.Route))
		for _, name := range v.Route {
			id, ok := g.RoadByName(name)
			if !ok {
				errs = append(errs, fmt.Errorf("vehicles[%d]: %w: unknown road %q", i, core.ErrConfiguration, name))
				route = nil
				break
			}
			route = append(route, id)
		}
		if route == nil {
			continue
		}
		if err := route.Validate(g); err != nil {
			errs = append(errs, fmt.Errorf("vehicles[%d]: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

// Build loads the road graph and returns a simulator with every vehicle of
// the file spawned.
func (f *File) Build(cfg sim.SimulationConfig) (*sim.Simulator, error) {
	g, err := f.BuildGraph()
	if err != nil {
		return nil, err
	}
	if err := f.ValidateRoutes(g); err != nil {
		return nil, err
	}
	s, err := sim.NewSimulator(g, cfg)
	if err != nil {
		return nil, err
	}
	if err := f.Populate(s); err != nil {
		return nil, err
	}
	return s, nil
}

// Populate spawns the file's vehicles into s. Trips whose goal cannot be
// reached fall back to roaming from their origin.
func (f *File) Populate(s *sim.Simulator) error {
	g := s.Graph()
	lookup := func(name string) (core.RoadID, error) {
		id, ok := g.RoadByName(name)
		if !ok {
			return 0, fmt.Errorf("%w: unknown road %q", core.ErrConfiguration, name)
		}
		return id, nil
	}

	for i, v := range f.Vehicles {
		typ, err := core.ParseVehicleType(v.Type)
		if err != nil {
			return fmt.Errorf("vehicles[%d]: %w", i, err)
		}

		for n := 0; n < v.Count; n++ {
			switch {
			case v.Start != "":
				start, err := lookup(v.Start)
				if err != nil {
					return fmt.Errorf("vehicles[%d]: %w", i, err)
				}
				_, err = s.SpawnRoaming(start, typ)
				if err != nil {
					return fmt.Errorf("vehicles[%d]: %w", i, err)
				}

			case len(v.Route) > 0:
				route := make(core.Route, len(v.Route))
				for j, name := range v.Route {
					if route[j], err = lookup(name); err != nil {
						return fmt.Errorf("vehicles[%d]: %w", i, err)
					}
				}
				if _, err := s.SpawnRouted(route, typ); err != nil {
					return fmt.Errorf("vehicles[%d]: %w", i, err)
				}

			default:
				from, err := lookup(v.From)
				if err != nil {
					return fmt.Errorf("vehicles[%d]: %w", i, err)
				}
				to, err := lookup(v.To)
				if err != nil {
					return fmt.Errorf("vehicles[%d]: %w", i, err)
				}
				if _, err := s.SpawnTripOrRoam(from, to, typ); err != nil {
					return fmt.Errorf("vehicles[%d]: %w", i, err)
				}
			}
		}
	}
	return nil
}
