// Package nav drives individual vehicles along lanes of the road graph and
// throttles them with a forward proximity sensor.
package nav

import (
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/samber/lo"

	"github.com/elektrokombinacija/roadnav/internal/core"
)

// Mode is the navigation state of an agent.
type Mode int

const (
	Idle     Mode = iota // Not yet placed on a road
	Roaming              // Picks a random valid exit at every lane end
	Routed               // Follows a fixed route
	Arrived              // Finished its route and stopped
)

func (m Mode) String() string {
	return [...]string{"idle", "roaming", "routed", "arrived"}[m]
}

// RandomSource picks roam lanes. *rand.Rand satisfies it.
type RandomSource interface {
	Intn(n int) int
}

// Options tune agent behaviour that is not part of the vehicle preset.
type Options struct {
	// RoamOnArrival keeps a routed agent moving after its route ends by
	// switching it to roaming instead of stopping it.
	RoamOnArrival bool
}

// Agent is one vehicle and its navigation state. All references into the
// road graph are ids.
type Agent struct {
	ID   uuid.UUID
	Spec core.VehicleSpec

	g    *core.Graph
	rng  RandomSource
	opts Options

	pos           orb.Point
	heading       float64
	targetHeading float64
	speed         float64

	mode  Mode
	road  core.RoadID
	lane  core.LaneID
	queue orb.LineString // Waypoints still ahead; queue[0] is the target
	route core.Route     // Roads still ahead including the current one

	reading Reading

	// Counters read by the simulator
	Transitions int
	Odometer    float64
}

// NewAgent creates an idle agent. It must be placed with SetRoam or SetRoute
// before ticking.
func NewAgent(id uuid.UUID, g *core.Graph, spec core.VehicleSpec, rng RandomSource, opts Options) *Agent {
	return &Agent{
		ID:   id,
		Spec: spec,
		g:    g,
		rng:  rng,
		opts: opts,
	}
}

// SetRoam places the agent on a uniformly random lane of road and lets it
// wander from there.
func (a *Agent) SetRoam(road core.RoadID) error {
	lanes := a.g.Lanes(road)
	if len(lanes) == 0 {
		return fmt.Errorf("%w: road %d has no lanes to roam", core.ErrConfiguration, road)
	}
	lane := lanes[a.rng.Intn(len(lanes))]
	if err := a.place(lane); err != nil {
		return err
	}
	a.route = nil
	a.mode = Roaming
	return nil
}

// SetRoute places the agent at the start of route and follows it to the end.
func (a *Agent) SetRoute(route core.Route) error {
	if len(route) == 0 {
		return fmt.Errorf("%w: empty route", core.ErrConfiguration)
	}
	to := route[0]
	if len(route) > 1 {
		to = route[1]
	}
	lane, err := a.g.ConnectingLane(route[0], route[0], to)
	if err != nil {
		return err
	}
	if err := a.place(lane); err != nil {
		return err
	}

	a.route = append(core.Route(nil), route...)
	if len(a.route) == 1 {
		a.route = nil
	}
	a.mode = Routed
	return nil
}

// place snaps the agent onto the start of lane, facing along it.
func (a *Agent) place(lane *core.Lane) error {
	wps := lane.Waypoints()
	if len(wps) < 2 {
		return fmt.Errorf("%w: lane %d has %d waypoints", core.ErrConfiguration, lane.ID, len(wps))
	}
	a.road = lane.Road
	a.lane = lane.ID
	a.pos = wps[0]
	a.queue = append(orb.LineString(nil), wps[1:]...)
	a.heading = core.Heading(wps[0], wps[1])
	a.targetHeading = a.heading
	return nil
}

// Accelerate raises the speed towards the free-road maximum.
func (a *Agent) Accelerate(dt float64) {
	a.speed = math.Min(a.speed+a.Spec.Acceleration*dt, a.Spec.MaxSpeed)
}

// Throttle scales the current speed by a ratio clamped to [0, 1].
func (a *Agent) Throttle(ratio float64) {
	a.speed *= lo.Clamp(ratio, 0, 1)
}

// Tick runs one simulation step: speed update, sensing against snap (when
// non-nil), then movement. An error means the road graph was not validated.
func (a *Agent) Tick(dt float64, snap Snapshot) error {
	a.Accelerate(dt)
	a.reading = Reading{}
	if snap != nil {
		a.reading = a.Sensor().Scan(a.Pose(), snap)
		if a.reading.Hit {
			a.Throttle(a.reading.Ratio)
		}
	}
	return a.Advance(dt)
}

// Advance pops reached waypoints, switches lanes when one is exhausted and
// moves the agent towards its target.
func (a *Agent) Advance(dt float64) error {
	if len(a.queue) == 0 {
		return nil
	}

	if core.PointsEqual(a.pos, a.queue[0]) {
		a.queue = a.queue[1:]
		if len(a.queue) == 0 {
			if err := a.transition(); err != nil {
				return err
			}
			if len(a.queue) == 0 {
				return nil
			}
		}
		a.targetHeading = core.Heading(a.pos, a.queue[0])
	}

	a.move(dt)
	return nil
}

// move translates towards the target without overshooting it and turns the
// body towards the target heading independently.
func (a *Agent) move(dt float64) {
	step := a.speed * dt
	if step <= 0 {
		return
	}

	target := a.queue[0]
	dist := core.Length(core.Sub(target, a.pos))
	if step >= dist {
		a.pos = target
		step = dist
	} else {
		a.pos = core.Add(a.pos, core.Scale(core.Normalize(core.Sub(target, a.pos)), step))
	}
	a.Odometer += step

	turn := a.speed * dt * a.Spec.RotationFactor
	diff := core.WrapAngle(a.targetHeading - a.heading)
	if math.Abs(diff) <= turn {
		a.heading = a.targetHeading
	} else {
		a.heading = core.WrapAngle(a.heading + math.Copysign(turn, diff))
	}
}

// transition loads the next lane once the current one is exhausted.
func (a *Agent) transition() error {
	switch a.mode {
	case Routed:
		if a.route == nil {
			return a.arrive()
		}
		return a.nextRouted()
	case Roaming:
		return a.nextRoaming()
	}
	return nil
}

func (a *Agent) nextRouted() error {
	idx := a.route.IndexOf(a.road)
	if idx < 0 || idx+1 >= len(a.route) {
		return fmt.Errorf("%w: agent %s on road %d is off its route", core.ErrConfiguration, a.ID, a.road)
	}
	next := a.route[idx+1]
	after := next
	if idx+2 < len(a.route) {
		after = a.route[idx+2]
	}

	lane, err := a.g.ConnectingLane(next, a.road, after)
	if err != nil {
		return err
	}
	if err := a.enter(lane); err != nil {
		return err
	}

	a.route = a.route[idx+1:]
	if len(a.route) == 1 {
		a.route = nil
	}
	return nil
}

func (a *Agent) nextRoaming() error {
	current := a.g.Lane(a.lane)
	next, err := a.g.NeighbourAtPort(a.road, current.ToPort)
	if err != nil {
		return err
	}
	nextRoad := a.g.Road(next)

	from := a.road
	candidates := lo.Filter(a.g.Lanes(next), func(l *core.Lane, _ int) bool {
		return l.FromPort != core.NoPort && nextRoad.Ports[l.FromPort].Neighbour == from
	})
	if len(candidates) == 0 {
		return fmt.Errorf("%w: no lane on road %q enters from road %d", core.ErrConfiguration, nextRoad.Name, from)
	}
	return a.enter(candidates[a.rng.Intn(len(candidates))])
}

// enter switches onto lane, which starts where the agent stands.
func (a *Agent) enter(lane *core.Lane) error {
	wps := lane.Waypoints()
	if len(wps) < 2 {
		return fmt.Errorf("%w: lane %d has %d waypoints", core.ErrConfiguration, lane.ID, len(wps))
	}
	a.road = lane.Road
	a.lane = lane.ID
	a.queue = append(orb.LineString(nil), wps[1:]...)
	a.Transitions++
	return nil
}

func (a *Agent) arrive() error {
	if a.opts.RoamOnArrival {
		a.mode = Roaming
		return a.nextRoaming()
	}
	a.mode = Arrived
	a.speed = 0
	return nil
}

// Pose returns what other agents' sensors see of this agent.
func (a *Agent) Pose() Pose {
	return Pose{
		ID:         a.ID,
		Position:   a.pos,
		Heading:    a.heading,
		HalfLength: a.Spec.HalfLength,
		HalfWidth:  a.Spec.HalfWidth,
		Road:       a.road,
		Lane:       a.lane,
	}
}

// Sensor returns the agent's forward proximity sensor.
func (a *Agent) Sensor() ProximitySensor {
	return ProximitySensor{Range: a.Spec.SensorRange, HalfLength: a.Spec.HalfLength}
}

func (a *Agent) Position() orb.Point { return a.pos }
func (a *Agent) Heading() float64    { return a.heading }
func (a *Agent) Speed() float64      { return a.speed }
func (a *Agent) Mode() Mode          { return a.mode }
func (a *Agent) Road() core.RoadID   { return a.road }
func (a *Agent) Lane() core.LaneID   { return a.lane }

// LastReading returns the sensor reading from the latest tick.
func (a *Agent) LastReading() Reading { return a.reading }

// Route returns the roads still ahead, or nil once the final road is reached.
func (a *Agent) Route() core.Route { return a.route }

// Waypoints returns the remaining waypoint queue. Callers must not modify it.
func (a *Agent) Waypoints() orb.LineString { return a.queue }

// View is a read-only copy of an agent's state for rendering.
type View struct {
	ID        uuid.UUID
	Position  orb.Point
	Heading   float64
	Speed     float64
	Mode      Mode
	Road      core.RoadID
	Lane      core.LaneID
	Waypoints orb.LineString
	Reading   Reading
	Spec      core.VehicleSpec
}

// View copies the agent's pose and remaining waypoints.
func (a *Agent) View() View {
	return View{
		ID:        a.ID,
		Position:  a.pos,
		Heading:   a.heading,
		Speed:     a.speed,
		Mode:      a.mode,
		Road:      a.road,
		Lane:      a.lane,
		Waypoints: append(orb.LineString(nil), a.queue...),
		Reading:   a.reading,
		Spec:      a.Spec,
	}
}
