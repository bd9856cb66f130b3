// Package core defines the road network model for roadnav.
package core

import (
	"fmt"
	"strings"
)

// RoadType classifies road tiles by the sides they connect.
type RoadType int

const (
	RoadEnd        RoadType = iota // Dead end: one side, U-turn lane
	RoadStraight                   // West <-> East
	RoadBend                       // West <-> South
	RoadJunction                   // T: West, East, South
	RoadCrossroad                  // All four sides
	RoadRoundabout                 // All four sides, lanes follow a ring
)

func (t RoadType) String() string {
	return [...]string{"end", "straight", "bend", "junction", "crossroad", "roundabout"}[t]
}

// ParseRoadType maps a road type name to its RoadType.
func ParseRoadType(s string) (RoadType, error) {
	for t := RoadEnd; t <= RoadRoundabout; t++ {
		if strings.EqualFold(s, t.String()) {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown road type %q", ErrConfiguration, s)
}

// Sides returns the connectable sides of a tile in declaration order.
func (t RoadType) Sides() []Side {
	switch t {
	case RoadEnd:
		return []Side{SideEast}
	case RoadStraight:
		return []Side{SideWest, SideEast}
	case RoadBend:
		return []Side{SideWest, SideSouth}
	case RoadJunction:
		return []Side{SideWest, SideEast, SideSouth}
	case RoadCrossroad, RoadRoundabout:
		return []Side{SideEast, SideSouth, SideWest, SideNorth}
	default:
		return nil
	}
}

// HasSide reports whether the tile type connects through s.
func (t RoadType) HasSide(s Side) bool {
	for _, side := range t.Sides() {
		if side == s {
			return true
		}
	}
	return false
}

// LaneSides returns the (from, to) side pairs of every lane on the tile, in
// declaration order. A single-sided tile turns around on itself.
func (t RoadType) LaneSides() [][2]Side {
	sides := t.Sides()
	if len(sides) == 1 {
		return [][2]Side{{sides[0], sides[0]}}
	}

	var pairs [][2]Side
	for _, from := range sides {
		for _, to := range sides {
			if from != to {
				pairs = append(pairs, [2]Side{from, to})
			}
		}
	}
	return pairs
}
