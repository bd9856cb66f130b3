package core

import (
	"math"

	"github.com/paulmach/orb"
)

// Epsilon is the tolerance used when comparing world positions.
const Epsilon = 1e-6

// Side identifies one edge of a square road tile in local coordinates.
type Side int

const (
	SideEast  Side = iota // +X
	SideSouth             // +Y
	SideWest              // -X
	SideNorth             // -Y
)

func (s Side) String() string {
	return [...]string{"East", "South", "West", "North"}[s]
}

// Outward returns the unit normal pointing out of the tile through s.
func (s Side) Outward() orb.Point {
	switch s {
	case SideEast:
		return orb.Point{1, 0}
	case SideSouth:
		return orb.Point{0, 1}
	case SideWest:
		return orb.Point{-1, 0}
	default:
		return orb.Point{0, -1}
	}
}

// Transform places a road tile in the world: a rotation (radians) about the
// tile centre followed by a translation.
type Transform struct {
	Position orb.Point
	Rotation float64
}

// Apply maps a local point into world space.
func (t Transform) Apply(p orb.Point) orb.Point {
	sin, cos := math.Sincos(t.Rotation)
	return orb.Point{
		t.Position[0] + p[0]*cos - p[1]*sin,
		t.Position[1] + p[0]*sin + p[1]*cos,
	}
}

// ApplyAll maps a local polyline into world space.
func (t Transform) ApplyAll(ls orb.LineString) orb.LineString {
	out := make(orb.LineString, len(ls))
	for i, p := range ls {
		out[i] = t.Apply(p)
	}
	return out
}

// Add returns a+b.
func Add(a, b orb.Point) orb.Point { return orb.Point{a[0] + b[0], a[1] + b[1]} }

// Sub returns a-b.
func Sub(a, b orb.Point) orb.Point { return orb.Point{a[0] - b[0], a[1] - b[1]} }

// Scale returns a*k.
func Scale(a orb.Point, k float64) orb.Point { return orb.Point{a[0] * k, a[1] * k} }

// Length returns the Euclidean norm of a.
func Length(a orb.Point) float64 { return math.Hypot(a[0], a[1]) }

// Normalize returns a scaled to unit length, or the zero vector.
func Normalize(a orb.Point) orb.Point {
	l := Length(a)
	if l == 0 {
		return orb.Point{}
	}
	return Scale(a, 1/l)
}

// Perp returns a rotated a quarter turn towards +Y, i.e. the right-hand side
// of a heading in screen coordinates.
func Perp(a orb.Point) orb.Point { return orb.Point{-a[1], a[0]} }

// Cross returns the z component of a×b.
func Cross(a, b orb.Point) float64 { return a[0]*b[1] - a[1]*b[0] }

// Dot returns a·b.
func Dot(a, b orb.Point) float64 { return a[0]*b[0] + a[1]*b[1] }

// Heading returns the angle of the vector from -> to.
func Heading(from, to orb.Point) float64 {
	return math.Atan2(to[1]-from[1], to[0]-from[0])
}

// Direction returns the unit vector for an angle.
func Direction(angle float64) orb.Point {
	sin, cos := math.Sincos(angle)
	return orb.Point{cos, sin}
}

// WrapAngle maps an angle into (-π, π].
func WrapAngle(a float64) float64 {
	a = math.Mod(a+math.Pi, 2*math.Pi)
	if a <= 0 {
		a += 2 * math.Pi
	}
	return a - math.Pi
}

// PointsEqual reports whether two points coincide within Epsilon.
func PointsEqual(a, b orb.Point) bool {
	return math.Abs(a[0]-b[0]) <= Epsilon && math.Abs(a[1]-b[1]) <= Epsilon
}

// Lane geometry in tile-local space. half is half the tile size, offset the
// distance of a lane centreline to the right of the road centreline.

const (
	turnSegments = 4
	arcStep      = math.Pi / 4
)

func entryPoint(s Side, half, offset float64) orb.Point {
	dir := Scale(s.Outward(), -1)
	return Add(Scale(s.Outward(), half), Scale(Perp(dir), offset))
}

func exitPoint(s Side, half, offset float64) orb.Point {
	dir := s.Outward()
	return Add(Scale(s.Outward(), half), Scale(Perp(dir), offset))
}

// laneShape builds the local waypoints for a lane entering through from and
// leaving through to.
func laneShape(typ RoadType, from, to Side, half, offset float64) orb.LineString {
	p0 := entryPoint(from, half, offset)
	p1 := exitPoint(to, half, offset)
	d0 := Scale(from.Outward(), -1)
	d1 := to.Outward()

	switch {
	case from == to:
		return uTurn(p0, p1, d0, half)
	case typ == RoadRoundabout:
		return ringLane(p0, p1, half*0.5)
	case math.Abs(Cross(d0, d1)) < Epsilon:
		return orb.LineString{p0, p1}
	default:
		return bezierTurn(p0, p1, d0, d1)
	}
}

// bezierTurn samples a quadratic curve whose control point is where the entry
// and exit headings intersect.
func bezierTurn(p0, p1, d0, d1 orb.Point) orb.LineString {
	t := Cross(Sub(p1, p0), d1) / Cross(d0, d1)
	c := Add(p0, Scale(d0, t))

	ls := make(orb.LineString, 0, turnSegments+1)
	ls = append(ls, p0)
	for i := 1; i < turnSegments; i++ {
		u := float64(i) / turnSegments
		a := (1 - u) * (1 - u)
		b := 2 * (1 - u) * u
		d := u * u
		ls = append(ls, orb.Point{
			a*p0[0] + b*c[0] + d*p1[0],
			a*p0[1] + b*c[1] + d*p1[1],
		})
	}
	return append(ls, p1)
}

// uTurn drives in along d0 to the tile centre, turns around a half circle and
// drives back out.
func uTurn(p0, p1, d0 orb.Point, half float64) orb.LineString {
	mid := Scale(Add(p0, p1), 0.5)
	r := Length(Sub(p0, mid))
	centre := Add(mid, Scale(d0, half))
	u := Normalize(Sub(p0, mid))

	ls := orb.LineString{p0}
	for i := 0; i <= 4; i++ {
		sin, cos := math.Sincos(float64(i) * arcStep)
		ls = append(ls, Add(centre, Add(Scale(u, r*cos), Scale(d0, r*sin))))
	}
	return append(ls, p1)
}

// ringLane circulates with decreasing angle (a right turn onto the ring) from
// the entry's bearing to the exit's bearing.
func ringLane(p0, p1 orb.Point, radius float64) orb.LineString {
	a0 := math.Atan2(p0[1], p0[0])
	a1 := math.Atan2(p1[1], p1[0])
	sweep := math.Mod(a0-a1, 2*math.Pi)
	if sweep <= 0 {
		sweep += 2 * math.Pi
	}
	n := int(math.Ceil(sweep / arcStep))

	ls := orb.LineString{p0}
	for k := 0; k <= n; k++ {
		a := a0 - sweep*float64(k)/float64(n)
		ls = append(ls, Scale(Direction(a), radius))
	}
	return append(ls, p1)
}
