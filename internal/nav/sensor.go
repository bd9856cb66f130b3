package nav

import (
	"math"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/samber/lo"

	"github.com/elektrokombinacija/roadnav/internal/core"
)

// Pose is the part of an agent visible to other agents' sensors.
type Pose struct {
	ID         uuid.UUID
	Position   orb.Point
	Heading    float64
	HalfLength float64
	HalfWidth  float64
	Road       core.RoadID
	Lane       core.LaneID
}

// Snapshot holds every agent's pose as of the start of a tick. All sensor
// queries in a tick read the same snapshot, so results do not depend on the
// order agents are advanced in.
type Snapshot []Pose

// TakeSnapshot records the current poses of agents.
func TakeSnapshot(agents []*Agent) Snapshot {
	return lo.Map(agents, func(a *Agent, _ int) Pose { return a.Pose() })
}

// Reading is the outcome of one sensor scan.
type Reading struct {
	Hit      bool
	Distance float64   // From the sensing agent's centre to the obstacle
	Obstacle uuid.UUID // Nearest obstacle, zero when nothing was hit
	Ratio    float64   // Fraction of free-road speed to keep
}

// ProximitySensor casts a forward ray from an agent's centre.
type ProximitySensor struct {
	Range      float64
	HalfLength float64
}

// Scan looks for the nearest agent ahead of self. Agents on the same road in
// a different lane are ignored: they are oncoming or parallel traffic.
func (s ProximitySensor) Scan(self Pose, snap Snapshot) Reading {
	candidates := lo.Filter(snap, func(p Pose, _ int) bool {
		if p.ID == self.ID {
			return false
		}
		return planar.Distance(self.Position, p.Position) <= s.Range
	})

	dir := core.Direction(self.Heading)
	best := Reading{Ratio: 1, Distance: math.Inf(1)}
	for _, c := range candidates {
		dist, ok := rayBox(self.Position, dir, s.Range, c)
		if !ok {
			continue
		}
		if c.Road == self.Road && c.Lane != self.Lane {
			continue
		}
		if dist < best.Distance {
			best.Hit = true
			best.Distance = dist
			best.Obstacle = c.ID
		}
	}

	if !best.Hit {
		return Reading{Ratio: 1}
	}
	best.Ratio = ThrottleRatio(best.Distance, s.HalfLength, s.Range)
	return best
}

// ThrottleRatio maps the distance to an obstacle to the fraction of speed to
// keep: the gap ahead of the front edge over the sensor range, in [0, 1].
func ThrottleRatio(dist, halfLength, sensorRange float64) float64 {
	return lo.Clamp((dist-halfLength)/sensorRange, 0, 1)
}

// rayBox intersects a ray with the oriented bounding box of p and returns the
// entry distance. A ray starting inside the box does not hit it: only faces
// the ray enters from outside count.
func rayBox(origin, dir orb.Point, length float64, p Pose) (float64, bool) {
	box := orb.Bound{
		Min: orb.Point{-p.HalfLength, -p.HalfWidth},
		Max: orb.Point{p.HalfLength, p.HalfWidth},
	}

	// Into the box's frame
	sin, cos := math.Sincos(p.Heading)
	rel := core.Sub(origin, p.Position)
	o := orb.Point{rel[0]*cos + rel[1]*sin, -rel[0]*sin + rel[1]*cos}
	d := orb.Point{dir[0]*cos + dir[1]*sin, -dir[0]*sin + dir[1]*cos}

	if box.Contains(o) {
		return 0, false
	}

	tmin, tmax := 0.0, length
	for axis := 0; axis < 2; axis++ {
		if math.Abs(d[axis]) < core.Epsilon {
			if o[axis] < box.Min[axis] || o[axis] > box.Max[axis] {
				return 0, false
			}
			continue
		}
		t1 := (box.Min[axis] - o[axis]) / d[axis]
		t2 := (box.Max[axis] - o[axis]) / d[axis]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math.Max(tmin, t1)
		tmax = math.Min(tmax, t2)
		if tmin > tmax {
			return 0, false
		}
	}
	return tmin, true
}
