package config

import (
	"fmt"
	"math/rand"

	"github.com/samber/lo"

	"github.com/elektrokombinacija/roadnav/internal/core"
)

// GridParams controls GenerateGrid.
type GridParams struct {
	Width, Height   int     // Tiles per row and column, at least 2 each
	Vehicles        int     // Vehicles to place, at most one per tile
	RoundaboutRatio float64 // Chance an interior crossing becomes a roundabout
	TripRatio       float64 // Chance a vehicle gets a from/to trip instead of roaming
	Seed            int64
}

// DefaultGridParams returns a small town with a handful of vehicles.
func DefaultGridParams() GridParams {
	return GridParams{
		Width:           4,
		Height:          3,
		Vehicles:        6,
		RoundaboutRatio: 0.25,
		TripRatio:       0.5,
		Seed:            1,
	}
}

// GenerateGrid lays out a rectangular street grid: bends at the corners,
// junctions along the border and crossings inside. Neighbour lists are
// sorted by tile index, an order that always pairs up.
func GenerateGrid(p GridParams) (*File, error) {
	if p.Width < 2 || p.Height < 2 {
		return nil, fmt.Errorf("%w: grid must be at least 2x2, got %dx%d", core.ErrConfiguration, p.Width, p.Height)
	}
	n := p.Width * p.Height
	if p.Vehicles < 0 || p.Vehicles > n {
		return nil, fmt.Errorf("%w: %d vehicles do not fit %d tiles", core.ErrConfiguration, p.Vehicles, n)
	}

	rng := rand.New(rand.NewSource(p.Seed))
	f := Default()
	f.Simulation.Seed = p.Seed
	tile := f.Simulation.TileSize

	name := func(x, y int) string { return fmt.Sprintf("r%d-%d", x, y) }

	for y := 0; y < p.Height; y++ {
		for x := 0; x < p.Width; x++ {
			var open []core.Side
			var nbs []string
			// Row-major index order: N, W, E, S.
			if y > 0 {
				open = append(open, core.SideNorth)
				nbs = append(nbs, name(x, y-1))
			}
			if x > 0 {
				open = append(open, core.SideWest)
				nbs = append(nbs, name(x-1, y))
			}
			if x < p.Width-1 {
				open = append(open, core.SideEast)
				nbs = append(nbs, name(x+1, y))
			}
			if y < p.Height-1 {
				open = append(open, core.SideSouth)
				nbs = append(nbs, name(x, y+1))
			}

			typ, rot := gridTile(open)
			if typ == core.RoadCrossroad && rng.Float64() < p.RoundaboutRatio {
				typ = core.RoadRoundabout
			}
			f.Roads = append(f.Roads, Road{
				ID:         name(x, y),
				Type:       typ.String(),
				Position:   [2]float64{float64(x) * tile, float64(y) * tile},
				Rotation:   rot,
				Neighbours: nbs,
			})
		}
	}

	// One vehicle per tile at most; vehicles spawned on the same spot would
	// see each other dead ahead and never move.
	types := []core.VehicleType{core.Sedan, core.Taxi, core.Van, core.Truck}
	for _, i := range rng.Perm(n)[:p.Vehicles] {
		v := Vehicle{Type: types[rng.Intn(len(types))].String(), Count: 1}
		if rng.Float64() < p.TripRatio {
			v.From = f.Roads[i].ID
			j := rng.Intn(n - 1)
			if j >= i {
				j++
			}
			v.To = f.Roads[j].ID
		} else {
			v.Start = f.Roads[i].ID
		}
		f.Vehicles = append(f.Vehicles, v)
	}

	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

// gridTile picks the tile type and rotation in degrees that opens exactly
// the given sides.
func gridTile(open []core.Side) (core.RoadType, float64) {
	has := func(s core.Side) bool { return lo.Contains(open, s) }
	switch len(open) {
	case 4:
		return core.RoadCrossroad, 0
	case 3:
		// Junction base opens W, E and S.
		switch {
		case !has(core.SideNorth):
			return core.RoadJunction, 0
		case !has(core.SideEast):
			return core.RoadJunction, 90
		case !has(core.SideSouth):
			return core.RoadJunction, 180
		default:
			return core.RoadJunction, 270
		}
	default:
		// Bend base opens W and S.
		switch {
		case has(core.SideWest) && has(core.SideSouth):
			return core.RoadBend, 0
		case has(core.SideNorth) && has(core.SideWest):
			return core.RoadBend, 90
		case has(core.SideEast) && has(core.SideNorth):
			return core.RoadBend, 180
		default:
			return core.RoadBend, 270
		}
	}
}
