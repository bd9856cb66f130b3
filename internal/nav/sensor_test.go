package nav

import (
	"math"
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/paulmach/orb"

	"github.com/elektrokombinacija/roadnav/internal/core"
)

func pose(x, y, heading float64, road core.RoadID, lane core.LaneID) Pose {
	return Pose{
		ID:         uuid.New(),
		Position:   orb.Point{x, y},
		Heading:    heading,
		HalfLength: 0.2,
		HalfWidth:  0.1,
		Road:       road,
		Lane:       lane,
	}
}

func TestScan(t *testing.T) {
	sensor := ProximitySensor{Range: 1.5, HalfLength: 0.5}
	self := pose(0, 0, 0, 1, 1)

	tests := []struct {
		name     string
		others   []Pose
		hit      bool
		distance float64
	}{
		{"empty road", nil, false, 0},
		{"same lane ahead", []Pose{pose(0.5, 0, 0, 1, 1)}, true, 0.3},
		{"next road ahead", []Pose{pose(1.0, 0, 0, 2, 7)}, true, 0.8},
		{"crosswise box", []Pose{pose(0.5, 0, math.Pi / 2, 2, 7)}, true, 0.4},
		{"behind", []Pose{pose(-0.5, 0, 0, 1, 1)}, false, 0},
		{"off to the side", []Pose{pose(0.5, 0.5, 0, 1, 1)}, false, 0},
		{"beyond range", []Pose{pose(1.8, 0, 0, 1, 1)}, false, 0},
		{"oncoming lane", []Pose{pose(0.5, 0, math.Pi, 1, 2)}, false, 0},
		{"origin inside box", []Pose{pose(0.1, 0, 0, 1, 1)}, false, 0},
		{"front edge overlap", []Pose{pose(0.35, 0, 0, 1, 1)}, true, 0.15},
		{"nearest wins", []Pose{pose(1.0, 0, 0, 1, 1), pose(0.5, 0, 0, 1, 1)}, true, 0.3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := append(Snapshot{self}, tt.others...)
			got := sensor.Scan(self, snap)
			if got.Hit != tt.hit {
				t.Fatalf("Expected hit=%v, got %+v", tt.hit, got)
			}
			if !tt.hit {
				if got.Ratio != 1 {
					t.Errorf("Expected ratio 1 with nothing ahead, got %v", got.Ratio)
				}
				return
			}
			if math.Abs(got.Distance-tt.distance) > 1e-9 {
				t.Errorf("Expected distance %v, got %v", tt.distance, got.Distance)
			}
			if got.Ratio < 0 || got.Ratio > 1 {
				t.Errorf("ratio %v outside [0, 1]", got.Ratio)
			}
		})
	}
}

func TestThrottleRatio(t *testing.T) {
	tests := []struct {
		dist, halfLength, rng float64
		want                  float64
	}{
		{0.3, 0.5, 1.5, 0},   // Obstacle overlaps the front edge
		{0.5, 0.5, 1.5, 0},   // Touching
		{1.25, 0.5, 1.5, 0.5},
		{3.0, 0.5, 1.5, 1}, // Never speeds up past free-road speed
	}
	for _, tt := range tests {
		if got := ThrottleRatio(tt.dist, tt.halfLength, tt.rng); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("ThrottleRatio(%v, %v, %v) = %v, want %v", tt.dist, tt.halfLength, tt.rng, got, tt.want)
		}
	}
}

func TestThrottleClampStopsAgent(t *testing.T) {
	g := createWorld(t, []tile{
		{"a", core.RoadStraight, 1, 0, 0},
		{"b", core.RoadStraight, 3, 0, 0},
	}, [][2]string{{"a", "b"}})

	spec := core.VehicleSpec{
		MaxSpeed:       2,
		Acceleration:   0.01,
		HalfLength:     0.5,
		HalfWidth:      0.1,
		SensorRange:    1.5,
		RotationFactor: core.DefaultRotationFactor,
	}
	a := newAgent(g, spec, rand.New(rand.NewSource(1)), Options{})
	if err := a.SetRoute(core.Route{road(t, g, "a"), road(t, g, "b")}); err != nil {
		t.Fatalf("SetRoute: %v", err)
	}
	start := a.Position()

	// Same lane, rear face 0.3 ahead of the agent's centre.
	obstacle := Pose{
		ID:         uuid.New(),
		Position:   core.Add(start, orb.Point{0.5, 0}),
		HalfLength: 0.2,
		HalfWidth:  0.1,
		Road:       a.Road(),
		Lane:       a.Lane(),
	}
	snap := Snapshot{a.Pose(), obstacle}

	if err := a.Tick(0.1, snap); err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if a.Speed() != 0 {
		t.Errorf("Expected speed 0, got %v", a.Speed())
	}
	if a.Position() != start {
		t.Errorf("Expected agent to hold at %v, got %v", start, a.Position())
	}
	v := a.View()
	if !v.Reading.Hit || v.Reading.Obstacle != obstacle.ID {
		t.Errorf("Expected reading to name the obstacle, got %+v", v.Reading)
	}
}

func TestSnapshotIsolatesTickOrder(t *testing.T) {
	g := createWorld(t, []tile{
		{"a", core.RoadStraight, 1, 0, 0},
		{"b", core.RoadStraight, 3, 0, 0},
		{"c", core.RoadStraight, 5, 0, 0},
	}, [][2]string{{"a", "b"}, {"b", "c"}})
	route := core.Route{road(t, g, "a"), road(t, g, "b"), road(t, g, "c")}

	run := func(reverse bool) []orb.Point {
		rng := rand.New(rand.NewSource(3))
		lead := newAgent(g, core.Sedan.Spec(), rng, Options{})
		follow := newAgent(g, core.Sedan.Spec(), rng, Options{})
		if err := lead.SetRoute(route[1:]); err != nil {
			t.Fatal(err)
		}
		if err := follow.SetRoute(route); err != nil {
			t.Fatal(err)
		}
		agents := []*Agent{follow, lead}
		if reverse {
			agents = []*Agent{lead, follow}
		}
		for i := 0; i < 40; i++ {
			snap := TakeSnapshot(agents)
			for _, ag := range agents {
				if err := ag.Tick(0.1, snap); err != nil {
					t.Fatal(err)
				}
			}
		}
		return []orb.Point{follow.Position(), lead.Position()}
	}

	fwd, rev := run(false), run(true)
	for i := range fwd {
		if fwd[i] != rev[i] {
			t.Errorf("agent %d ends at %v or %v depending on tick order", i, fwd[i], rev[i])
		}
	}
}
