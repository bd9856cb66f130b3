package core

import (
	"fmt"

	"github.com/samber/lo"
)

// Route is an ordered sequence of directly connected roads.
type Route []RoadID

// IndexOf returns the position of a road in the route, or -1.
func (r Route) IndexOf(id RoadID) int {
	return lo.IndexOf(r, id)
}

// Names maps the route to external road ids.
func (r Route) Names(g *Graph) []string {
	return lo.Map(r, func(id RoadID, _ int) string {
		if road := g.Road(id); road != nil {
			return road.Name
		}
		return fmt.Sprintf("#%d", id)
	})
}

// Validate checks that every consecutive pair of roads is connected and that
// each road on the route has a lane for the transition it is asked to make.
func (r Route) Validate(g *Graph) error {
	if len(r) == 0 {
		return fmt.Errorf("%w: empty route", ErrConfiguration)
	}
	for _, id := range r {
		if g.Road(id) == nil {
			return fmt.Errorf("%w: route references unknown road %d", ErrConfiguration, id)
		}
	}

	for i := 1; i < len(r); i++ {
		if !g.Connected(r[i-1], r[i]) {
			return fmt.Errorf("%w: route step %d: %s and %s are not neighbours",
				ErrConfiguration, i, g.nameOf(r[i-1]), g.nameOf(r[i]))
		}
	}

	for i, id := range r {
		from, to := id, id
		if i > 0 {
			from = r[i-1]
		}
		if i < len(r)-1 {
			to = r[i+1]
		}
		if _, err := g.ConnectingLane(id, from, to); err != nil {
			return fmt.Errorf("route step %d: %w", i, err)
		}
	}
	return nil
}
