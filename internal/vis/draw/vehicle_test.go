package draw

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/elektrokombinacija/roadnav/internal/core"
	"github.com/elektrokombinacija/roadnav/internal/nav"
	"github.com/elektrokombinacija/roadnav/internal/sim"
)

func TestFootprint(t *testing.T) {
	v := nav.View{
		Position: orb.Point{1, 1},
		Heading:  math.Pi / 2,
		Spec:     core.Sedan.Spec(),
	}
	box := Footprint(v)
	if len(box) != 4 {
		t.Fatalf("Expected 4 corners, got %d", len(box))
	}

	// Facing +Y: the box is long in Y and narrow in X.
	b := orb.LineString(box).Bound()
	if got := b.Max[1] - b.Min[1]; math.Abs(got-2*v.Spec.HalfLength) > 1e-9 {
		t.Errorf("Expected length %v, got %v", 2*v.Spec.HalfLength, got)
	}
	if got := b.Max[0] - b.Min[0]; math.Abs(got-2*v.Spec.HalfWidth) > 1e-9 {
		t.Errorf("Expected width %v, got %v", 2*v.Spec.HalfWidth, got)
	}
	if !planar.PolygonContains(orb.Polygon{append(orb.Ring(box), box[0])}, v.Position) {
		t.Error("Expected the centre inside the footprint")
	}
}

func TestVehicleAt(t *testing.T) {
	views := []sim.VehicleView{
		{View: nav.View{Position: orb.Point{0, 0}}},
		{View: nav.View{Position: orb.Point{1, 0}}},
	}
	if got := VehicleAt(views, orb.Point{0.9, 0.1}, 0.3); got != 1 {
		t.Errorf("Expected vehicle 1, got %d", got)
	}
	if got := VehicleAt(views, orb.Point{5, 5}, 0.3); got != -1 {
		t.Errorf("Expected no hit, got %d", got)
	}
}
