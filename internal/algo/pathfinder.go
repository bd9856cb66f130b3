// Package algo computes routes over the road graph.
package algo

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/iterator"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/traverse"

	"github.com/elektrokombinacija/roadnav/internal/core"
)

// Pathfinder finds hop-count shortest routes between roads.
type Pathfinder struct {
	g *core.Graph
}

// NewPathfinder creates a pathfinder over g. The graph is read, never modified.
func NewPathfinder(g *core.Graph) *Pathfinder {
	return &Pathfinder{g: g}
}

// portGraph exposes road adjacency to gonum's traversals. Neighbours are
// yielded in port order, which makes the search deterministic.
type portGraph struct {
	g *core.Graph
}

func (pg portGraph) From(id int64) graph.Nodes {
	nbs := pg.g.Neighbours(core.RoadID(id))
	if len(nbs) == 0 {
		return graph.Empty
	}
	nodes := make([]graph.Node, len(nbs))
	for i, nb := range nbs {
		nodes[i] = simple.Node(nb)
	}
	return iterator.NewOrderedNodes(nodes)
}

func (pg portGraph) Edge(uid, vid int64) graph.Edge {
	if !pg.g.Connected(core.RoadID(uid), core.RoadID(vid)) {
		return nil
	}
	return simple.Edge{F: simple.Node(uid), T: simple.Node(vid)}
}

// FindRoute returns the shortest route from start to goal by hop count,
// including both ends. Ties go to the neighbour reached through the lowest
// port. FindRoute(s, s) is the single-road route [s].
func (p *Pathfinder) FindRoute(start, goal core.RoadID) (core.Route, error) {
	if p.g.Road(start) == nil || p.g.Road(goal) == nil {
		return nil, fmt.Errorf("%w: unknown road in route request %d -> %d", core.ErrConfiguration, start, goal)
	}
	if start == goal {
		return core.Route{start}, nil
	}

	parent := make(map[core.RoadID]core.RoadID)
	bfs := traverse.BreadthFirst{
		Traverse: func(e graph.Edge) bool {
			to := core.RoadID(e.To().ID())
			if _, seen := parent[to]; !seen && to != start {
				parent[to] = core.RoadID(e.From().ID())
			}
			return true
		},
	}
	found := bfs.Walk(portGraph{p.g}, simple.Node(start), func(n graph.Node, _ int) bool {
		return core.RoadID(n.ID()) == goal
	})
	if found == nil {
		return nil, fmt.Errorf("%w: %s -> %s", core.ErrNoRoute,
			p.g.Road(start).Name, p.g.Road(goal).Name)
	}

	// Walk parents back from the goal
	route := core.Route{goal}
	for cur := goal; cur != start; {
		cur = parent[cur]
		route = append(route, cur)
	}
	for i, j := 0, len(route)-1; i < j; i, j = i+1, j-1 {
		route[i], route[j] = route[j], route[i]
	}
	return route, nil
}

// Lanes resolves the lane driven on each road of a route. The first road is
// entered unconstrained and the last one left unconstrained.
func (p *Pathfinder) Lanes(route core.Route) ([]*core.Lane, error) {
	if len(route) == 0 {
		return nil, fmt.Errorf("%w: empty route", core.ErrConfiguration)
	}

	lanes := make([]*core.Lane, 0, len(route))
	for i, cur := range route {
		prev, next := cur, cur
		if i > 0 {
			prev = route[i-1]
		}
		if i < len(route)-1 {
			next = route[i+1]
		}
		lane, err := p.g.ConnectingLane(cur, prev, next)
		if err != nil {
			return nil, fmt.Errorf("route step %d: %w", i, err)
		}
		lanes = append(lanes, lane)
	}
	return lanes, nil
}

// RouteWaypoints flattens a route into one continuous polyline. Points that
// repeat the previous output point, as they do at every lane boundary, are
// dropped.
func (p *Pathfinder) RouteWaypoints(route core.Route) (orb.LineString, error) {
	lanes, err := p.Lanes(route)
	if err != nil {
		return nil, err
	}

	var out orb.LineString
	for _, lane := range lanes {
		for _, pt := range lane.Waypoints() {
			if n := len(out); n > 0 && core.PointsEqual(out[n-1], pt) {
				continue
			}
			out = append(out, pt)
		}
	}
	return out, nil
}

// RouteLength returns the length of the flattened route polyline.
func (p *Pathfinder) RouteLength(route core.Route) (float64, error) {
	ls, err := p.RouteWaypoints(route)
	if err != nil {
		return 0, err
	}
	return planar.Length(ls), nil
}
