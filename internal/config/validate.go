package config

import (
	"errors"
	"fmt"

	"github.com/samber/lo"

	"github.com/elektrokombinacija/roadnav/internal/core"
)

// Validate checks the file without building anything. Every problem found is
// reported, each wrapping core.ErrConfiguration.
func (f *File) Validate() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{core.ErrConfiguration}, args...)...))
	}

	s := f.Simulation
	if s.TimeStep <= 0 {
		fail("simulation.time_step must be positive, got %v", s.TimeStep)
	}
	if s.Duration < 0 {
		fail("simulation.duration must not be negative, got %v", s.Duration)
	}
	if s.TileSize <= 0 {
		fail("simulation.tile_size must be positive, got %v", s.TileSize)
	}
	if s.LaneOffset < 0 || s.LaneOffset >= s.TileSize/2 {
		fail("simulation.lane_offset must lie in [0, tile_size/2), got %v", s.LaneOffset)
	}

	roads := make(map[string]Road, len(f.Roads))
	for i, r := range f.Roads {
		if r.ID == "" {
			fail("roads[%d] has no id", i)
			continue
		}
		if _, dup := roads[r.ID]; dup {
			fail("duplicate road id %q", r.ID)
			continue
		}
		roads[r.ID] = r
		if _, err := core.ParseRoadType(r.Type); err != nil {
			errs = append(errs, fmt.Errorf("road %q: %w", r.ID, err))
		}
	}

	for _, r := range f.Roads {
		if dups := lo.FindDuplicates(r.Neighbours); len(dups) > 0 {
			fail("road %q lists neighbours %v more than once", r.ID, dups)
		}
		for _, nb := range r.Neighbours {
			other, ok := roads[nb]
			switch {
			case nb == r.ID:
				fail("road %q lists itself as a neighbour", r.ID)
			case !ok:
				fail("road %q lists unknown neighbour %q", r.ID, nb)
			case !lo.Contains(other.Neighbours, r.ID):
				fail("road %q lists %q as a neighbour but %q does not list it back", r.ID, nb, nb)
			}
		}
	}

	known := func(id string) bool {
		_, ok := roads[id]
		return ok
	}
	for i, v := range f.Vehicles {
		if _, err := core.ParseVehicleType(v.Type); err != nil {
			errs = append(errs, fmt.Errorf("vehicles[%d]: %w", i, err))
		}
		if v.Count < 0 {
			fail("vehicles[%d] has negative count %d", i, v.Count)
		}

		modes := lo.Count([]bool{v.Start != "", len(v.Route) > 0, v.From != "" || v.To != ""}, true)
		if modes != 1 {
			fail("vehicles[%d] must set exactly one of start, route or from/to", i)
			continue
		}
		switch {
		case v.Start != "":
			if !known(v.Start) {
				fail("vehicles[%d] starts on unknown road %q", i, v.Start)
			}
		case len(v.Route) > 0:
			if unknown := lo.Reject(v.Route, func(id string, _ int) bool { return known(id) }); len(unknown) > 0 {
				fail("vehicles[%d] route has unknown roads %v", i, unknown)
			}
		default:
			if v.From == "" || v.To == "" {
				fail("vehicles[%d] needs both from and to", i)
			} else if !known(v.From) || !known(v.To) {
				fail("vehicles[%d] trip %q -> %q uses an unknown road", i, v.From, v.To)
			}
		}
	}

	return errors.Join(errs...)
}
