package core

import (
	"errors"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// RoadID is a stable index into the road arena.
type RoadID int

// LaneID is a stable index into the lane arena.
type LaneID int

// NoPort marks a lane side whose neighbour has not been connected yet.
const NoPort = -1

// Port is a numbered connection slot on a road.
type Port struct {
	Neighbour RoadID
	Side      Side // Tile side the neighbour is attached to
}

// Road is a placed road tile.
type Road struct {
	ID        RoadID
	Name      string
	Type      RoadType
	Transform Transform
	Ports     []Port   // Indexed by port number, in connection order
	Lanes     []LaneID // Declaration order
	stale     bool
}

// Lane is a directed path across one road between two of its ports.
type Lane struct {
	ID       LaneID
	Road     RoadID
	FromSide Side
	ToSide   Side
	FromPort int
	ToPort   int

	local     orb.LineString
	waypoints orb.LineString
}

// Waypoints returns the cached world-space waypoints. Callers must not
// modify the returned slice.
func (l *Lane) Waypoints() orb.LineString {
	return l.waypoints
}

// GraphOptions sizes road tiles and lanes.
type GraphOptions struct {
	TileSize   float64 // Edge length of a square tile
	LaneOffset float64 // Lane centreline distance right of the road centreline
}

// DefaultGraphOptions returns 2x2 tiles with lanes a quarter unit off centre.
func DefaultGraphOptions() GraphOptions {
	return GraphOptions{
		TileSize:   2,
		LaneOffset: 0.25,
	}
}

// Graph is an arena of roads and lanes. All cross references are ids.
type Graph struct {
	opts  GraphOptions
	roads []*Road
	lanes []*Lane
	names map[string]RoadID
}

// NewGraph creates an empty road graph.
func NewGraph(opts GraphOptions) *Graph {
	if opts.TileSize <= 0 {
		opts.TileSize = DefaultGraphOptions().TileSize
	}
	return &Graph{
		opts:  opts,
		names: make(map[string]RoadID),
	}
}

// Options returns the tile and lane sizing.
func (g *Graph) Options() GraphOptions {
	return g.opts
}

// AddRoad places a new road tile and creates its lanes.
func (g *Graph) AddRoad(name string, typ RoadType, t Transform) (RoadID, error) {
	if _, dup := g.names[name]; dup {
		return 0, fmt.Errorf("%w: duplicate road id %q", ErrConfiguration, name)
	}
	if len(typ.Sides()) == 0 {
		return 0, fmt.Errorf("%w: road %q has invalid type %d", ErrConfiguration, name, typ)
	}

	id := RoadID(len(g.roads))
	road := &Road{
		ID:        id,
		Name:      name,
		Type:      typ,
		Transform: t,
	}

	half := g.opts.TileSize / 2
	for _, pair := range typ.LaneSides() {
		lane := &Lane{
			ID:       LaneID(len(g.lanes)),
			Road:     id,
			FromSide: pair[0],
			ToSide:   pair[1],
			FromPort: NoPort,
			ToPort:   NoPort,
			local:    laneShape(typ, pair[0], pair[1], half, g.opts.LaneOffset),
		}
		g.lanes = append(g.lanes, lane)
		road.Lanes = append(road.Lanes, lane.ID)
	}

	g.roads = append(g.roads, road)
	g.names[name] = id
	g.refresh(road)
	return id, nil
}

// Road returns the road with the given id, or nil.
func (g *Graph) Road(id RoadID) *Road {
	if id < 0 || int(id) >= len(g.roads) {
		return nil
	}
	return g.roads[id]
}

// Lane returns the lane with the given id, or nil.
func (g *Graph) Lane(id LaneID) *Lane {
	if id < 0 || int(id) >= len(g.lanes) {
		return nil
	}
	return g.lanes[id]
}

// Roads returns all roads in creation order.
func (g *Graph) Roads() []*Road {
	return g.roads
}

// RoadByName looks up a road by its external id.
func (g *Graph) RoadByName(name string) (RoadID, bool) {
	id, ok := g.names[name]
	return id, ok
}

// Lanes returns the lanes of a road in declaration order.
func (g *Graph) Lanes(id RoadID) []*Lane {
	road := g.Road(id)
	if road == nil {
		return nil
	}
	lanes := make([]*Lane, len(road.Lanes))
	for i, lid := range road.Lanes {
		lanes[i] = g.lanes[lid]
	}
	return lanes
}

func (g *Graph) road(id RoadID) (*Road, error) {
	r := g.Road(id)
	if r == nil {
		return nil, fmt.Errorf("%w: unknown road %d", ErrConfiguration, id)
	}
	return r, nil
}

// SideMidpoint returns the world position of the middle of a tile side.
func (g *Graph) SideMidpoint(id RoadID, s Side) orb.Point {
	r := g.roads[id]
	return r.Transform.Apply(Scale(s.Outward(), g.opts.TileSize/2))
}

// sideEdge returns the world endpoints of a tile side.
func (g *Graph) sideEdge(r *Road, s Side) (orb.Point, orb.Point) {
	half := g.opts.TileSize / 2
	mid := Scale(s.Outward(), half)
	along := Scale(Perp(s.Outward()), half)
	return r.Transform.Apply(Add(mid, along)), r.Transform.Apply(Sub(mid, along))
}

// Connect registers a bidirectional adjacency between two roads whose tiles
// share a boundary. Both ports are appended together or not at all.
func (g *Graph) Connect(a, b RoadID) error {
	ra, err := g.road(a)
	if err != nil {
		return err
	}
	rb, err := g.road(b)
	if err != nil {
		return err
	}
	if a == b {
		return fmt.Errorf("%w: road %q cannot neighbour itself", ErrConfiguration, ra.Name)
	}
	if _, ok := g.PortTo(a, b); ok {
		return fmt.Errorf("%w: roads %q and %q are already connected", ErrConfiguration, ra.Name, rb.Name)
	}

	for _, sa := range ra.Type.Sides() {
		if ra.portAtSide(sa) != NoPort {
			continue
		}
		ma := g.SideMidpoint(a, sa)
		for _, sb := range rb.Type.Sides() {
			if rb.portAtSide(sb) != NoPort {
				continue
			}
			if PointsEqual(ma, g.SideMidpoint(b, sb)) {
				g.attach(ra, sa, b)
				g.attach(rb, sb, a)
				return nil
			}
		}
	}
	return fmt.Errorf("%w: roads %q and %q share no free boundary", ErrConfiguration, ra.Name, rb.Name)
}

// attach appends a port and resolves the lanes that use its side.
func (g *Graph) attach(r *Road, s Side, neighbour RoadID) {
	port := len(r.Ports)
	r.Ports = append(r.Ports, Port{Neighbour: neighbour, Side: s})
	for _, lid := range r.Lanes {
		lane := g.lanes[lid]
		if lane.FromSide == s {
			lane.FromPort = port
		}
		if lane.ToSide == s {
			lane.ToPort = port
		}
	}
}

func (r *Road) portAtSide(s Side) int {
	for i, p := range r.Ports {
		if p.Side == s {
			return i
		}
	}
	return NoPort
}

// PortTo returns the port on road that points at neighbour.
func (g *Graph) PortTo(road, neighbour RoadID) (int, bool) {
	r := g.Road(road)
	if r == nil {
		return NoPort, false
	}
	for i, p := range r.Ports {
		if p.Neighbour == neighbour {
			return i, true
		}
	}
	return NoPort, false
}

// Connected reports whether two roads are direct neighbours.
func (g *Graph) Connected(a, b RoadID) bool {
	_, ok := g.PortTo(a, b)
	return ok
}

// Neighbours returns the neighbouring roads in port order.
func (g *Graph) Neighbours(id RoadID) []RoadID {
	r := g.Road(id)
	if r == nil {
		return nil
	}
	ids := make([]RoadID, len(r.Ports))
	for i, p := range r.Ports {
		ids[i] = p.Neighbour
	}
	return ids
}

// NeighbourAtPort returns the road attached at a port.
func (g *Graph) NeighbourAtPort(id RoadID, port int) (RoadID, error) {
	r, err := g.road(id)
	if err != nil {
		return 0, err
	}
	if port < 0 || port >= len(r.Ports) {
		return 0, fmt.Errorf("%w: road %q has no port %d", ErrConfiguration, r.Name, port)
	}
	return r.Ports[port].Neighbour, nil
}

// ConnectingLane returns the first lane on current, in declaration order,
// that enters from road from and leaves towards road to. Passing current
// itself for from or to leaves that end unconstrained, which is how the first
// and last roads of a route are resolved.
func (g *Graph) ConnectingLane(current, from, to RoadID) (*Lane, error) {
	r, err := g.road(current)
	if err != nil {
		return nil, err
	}

	matches := func(port int, want RoadID) bool {
		if want == current {
			return true
		}
		return port != NoPort && r.Ports[port].Neighbour == want
	}

	for _, lid := range r.Lanes {
		lane := g.lanes[lid]
		if matches(lane.FromPort, from) && matches(lane.ToPort, to) {
			return lane, nil
		}
	}
	return nil, fmt.Errorf("%w: no lane on road %q from %s to %s",
		ErrConfiguration, r.Name, g.nameOf(from), g.nameOf(to))
}

func (g *Graph) nameOf(id RoadID) string {
	if r := g.Road(id); r != nil {
		return fmt.Sprintf("%q", r.Name)
	}
	return fmt.Sprintf("#%d", id)
}

// SetTransform moves a road. Its waypoints are stale until refreshed.
func (g *Graph) SetTransform(id RoadID, t Transform) error {
	r, err := g.road(id)
	if err != nil {
		return err
	}
	r.Transform = t
	r.stale = true
	return nil
}

// Stale reports whether a road's waypoints need refreshing.
func (g *Graph) Stale(id RoadID) bool {
	r := g.Road(id)
	return r != nil && r.stale
}

// RefreshWaypoints recomputes the world-space waypoints of every lane on a
// road from its local geometry and current transform.
func (g *Graph) RefreshWaypoints(id RoadID) error {
	r, err := g.road(id)
	if err != nil {
		return err
	}
	g.refresh(r)
	return nil
}

// RefreshStale refreshes every road moved since its last refresh and returns
// how many were recomputed.
func (g *Graph) RefreshStale() int {
	n := 0
	for _, r := range g.roads {
		if r.stale {
			g.refresh(r)
			n++
		}
	}
	return n
}

func (g *Graph) refresh(r *Road) {
	for _, lid := range r.Lanes {
		lane := g.lanes[lid]
		lane.waypoints = r.Transform.ApplyAll(lane.local)
	}
	r.stale = false
}

// Validate checks the whole network before simulation: reciprocal ports on
// shared boundaries, fully connected lanes with at least two waypoints whose
// ends sit on the boundaries they cross, and no stale waypoints. All problems
// are reported together.
func (g *Graph) Validate() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrConfiguration}, args...)...))
	}

	for _, r := range g.roads {
		if r.stale {
			fail("road %q has stale waypoints", r.Name)
		}

		for i, p := range r.Ports {
			nb := g.Road(p.Neighbour)
			if nb == nil {
				fail("road %q port %d references unknown road %d", r.Name, i, p.Neighbour)
				continue
			}
			back, ok := g.PortTo(nb.ID, r.ID)
			if !ok {
				fail("road %q port %d points at %q which does not point back", r.Name, i, nb.Name)
				continue
			}
			if !PointsEqual(g.SideMidpoint(r.ID, p.Side), g.SideMidpoint(nb.ID, nb.Ports[back].Side)) {
				fail("roads %q and %q no longer share a boundary", r.Name, nb.Name)
			}
		}

		for _, lid := range r.Lanes {
			lane := g.lanes[lid]
			if lane.FromPort == NoPort || lane.ToPort == NoPort {
				fail("lane %d on road %q (%s -> %s) has an unconnected side",
					lane.ID, r.Name, lane.FromSide, lane.ToSide)
				continue
			}
			if len(lane.waypoints) < 2 {
				fail("lane %d on road %q has %d waypoints", lane.ID, r.Name, len(lane.waypoints))
				continue
			}
			if !g.onBoundary(r, lane.FromSide, lane.waypoints[0]) {
				fail("lane %d on road %q does not start on its %s boundary", lane.ID, r.Name, lane.FromSide)
			}
			if !g.onBoundary(r, lane.ToSide, lane.waypoints[len(lane.waypoints)-1]) {
				fail("lane %d on road %q does not end on its %s boundary", lane.ID, r.Name, lane.ToSide)
			}
		}
	}

	return errors.Join(errs...)
}

func (g *Graph) onBoundary(r *Road, s Side, p orb.Point) bool {
	a, b := g.sideEdge(r, s)
	return planar.DistanceFromSegment(a, b, p) <= Epsilon
}
