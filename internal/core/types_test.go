package core

import "testing"

func TestLaneSides(t *testing.T) {
	tests := []struct {
		road  RoadType
		lanes int
		first [2]Side
	}{
		{RoadEnd, 1, [2]Side{SideEast, SideEast}},
		{RoadStraight, 2, [2]Side{SideWest, SideEast}},
		{RoadBend, 2, [2]Side{SideWest, SideSouth}},
		{RoadJunction, 6, [2]Side{SideWest, SideEast}},
		{RoadCrossroad, 12, [2]Side{SideEast, SideSouth}},
		{RoadRoundabout, 12, [2]Side{SideEast, SideSouth}},
	}

	for _, tt := range tests {
		got := tt.road.LaneSides()
		if len(got) != tt.lanes {
			t.Errorf("%s: %d lanes, want %d", tt.road, len(got), tt.lanes)
			continue
		}
		if got[0] != tt.first {
			t.Errorf("%s: first lane %v, want %v", tt.road, got[0], tt.first)
		}
	}
}

func TestHasSide(t *testing.T) {
	// Bend only connects West and South
	if !RoadBend.HasSide(SideSouth) {
		t.Errorf("Bend should connect South")
	}
	if RoadBend.HasSide(SideEast) {
		t.Errorf("Bend should not connect East")
	}

	// Junction has no North side
	if RoadJunction.HasSide(SideNorth) {
		t.Errorf("Junction should not connect North")
	}
}

func TestLaneShapes(t *testing.T) {
	half, offset := 1.0, 0.25

	straight := laneShape(RoadStraight, SideWest, SideEast, half, offset)
	if len(straight) != 2 {
		t.Fatalf("straight lane has %d points, want 2", len(straight))
	}
	// Driving east the right-hand side is +Y.
	if straight[0][1] != offset || straight[1][1] != offset {
		t.Errorf("straight lane not offset to the right: %v", straight)
	}

	turn := laneShape(RoadBend, SideWest, SideSouth, half, offset)
	if len(turn) != turnSegments+1 {
		t.Errorf("turn has %d points, want %d", len(turn), turnSegments+1)
	}

	u := laneShape(RoadEnd, SideEast, SideEast, half, offset)
	if !PointsEqual(u[0], entryPoint(SideEast, half, offset)) ||
		!PointsEqual(u[len(u)-1], exitPoint(SideEast, half, offset)) {
		t.Errorf("u-turn endpoints %v, %v", u[0], u[len(u)-1])
	}

	ring := laneShape(RoadRoundabout, SideEast, SideNorth, half, offset)
	if len(ring) < 4 {
		t.Errorf("ring lane has %d points", len(ring))
	}
}
