package main

import (
	"fmt"
	"strings"

	"github.com/elektrokombinacija/roadnav/internal/algo"
	"github.com/elektrokombinacija/roadnav/internal/config"
	"github.com/elektrokombinacija/roadnav/internal/core"
)

func runRoute(path, from, to string) error {
	world, err := config.Load(path)
	if err != nil {
		return err
	}
	g, err := world.BuildGraph()
	if err != nil {
		return fmt.Errorf("building world: %w", err)
	}

	start, ok := g.RoadByName(from)
	if !ok {
		return fmt.Errorf("%w: unknown road %q", core.ErrConfiguration, from)
	}
	goal, ok := g.RoadByName(to)
	if !ok {
		return fmt.Errorf("%w: unknown road %q", core.ErrConfiguration, to)
	}

	pf := algo.NewPathfinder(g)
	route, err := pf.FindRoute(start, goal)
	if err != nil {
		return err
	}
	wps, err := pf.RouteWaypoints(route)
	if err != nil {
		return err
	}
	length, err := pf.RouteLength(route)
	if err != nil {
		return err
	}

	fmt.Printf("Route:     %s\n", strings.Join(route.Names(g), " -> "))
	fmt.Printf("Hops:      %d\n", len(route)-1)
	fmt.Printf("Waypoints: %d\n", len(wps))
	fmt.Printf("Length:    %.2f\n", length)
	return nil
}

func runValidate(path string) error {
	world, err := config.Load(path)
	if err != nil {
		return err
	}
	g, err := world.BuildGraph()
	if err != nil {
		return err
	}
	if err := world.ValidateRoutes(g); err != nil {
		return err
	}

	lanes := 0
	for _, r := range g.Roads() {
		lanes += len(r.Lanes)
	}
	fmt.Printf("OK: %d roads, %d lanes, %d vehicle groups\n", len(g.Roads()), lanes, len(world.Vehicles))
	return nil
}
