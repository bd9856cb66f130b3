package core

import (
	"fmt"
	"strings"
)

// VehicleType selects a vehicle preset.
type VehicleType int

const (
	Sedan VehicleType = iota
	Taxi
	Van
	Truck
)

func (t VehicleType) String() string {
	return [...]string{"sedan", "taxi", "van", "truck"}[t]
}

// ParseVehicleType maps a preset name to its VehicleType.
func ParseVehicleType(s string) (VehicleType, error) {
	for t := Sedan; t <= Truck; t++ {
		if strings.EqualFold(s, t.String()) {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown vehicle type %q", ErrConfiguration, s)
}

// DefaultRotationFactor scales the heading turn rate by distance travelled.
const DefaultRotationFactor = 1.5

// sensorReach is how far a sensor looks past the vehicle's own front edge.
const sensorReach = 0.7

// VehicleSpec holds the kinematic and sensing parameters of one vehicle.
type VehicleSpec struct {
	MaxSpeed       float64 // units/s
	Acceleration   float64 // units/s²
	HalfLength     float64 // Centre to front bumper
	HalfWidth      float64
	SensorRange    float64 // Forward ray length from the centre
	RotationFactor float64 // Turn rate per unit travelled (rad/unit)
}

// Spec returns the preset for a vehicle type.
func (t VehicleType) Spec() VehicleSpec {
	var s VehicleSpec
	switch t {
	case Sedan:
		s = VehicleSpec{MaxSpeed: 2.0, Acceleration: 0.6, HalfLength: 0.2, HalfWidth: 0.1}
	case Taxi:
		s = VehicleSpec{MaxSpeed: 2.2, Acceleration: 0.7, HalfLength: 0.2, HalfWidth: 0.1}
	case Van:
		s = VehicleSpec{MaxSpeed: 1.6, Acceleration: 0.4, HalfLength: 0.26, HalfWidth: 0.12}
	case Truck:
		s = VehicleSpec{MaxSpeed: 1.2, Acceleration: 0.25, HalfLength: 0.36, HalfWidth: 0.13}
	}
	s.SensorRange = s.HalfLength + sensorReach
	s.RotationFactor = DefaultRotationFactor
	return s
}

// Validate rejects specs that would stall or invert motion.
func (s VehicleSpec) Validate() error {
	switch {
	case s.MaxSpeed <= 0:
		return fmt.Errorf("%w: max speed must be positive, got %v", ErrConfiguration, s.MaxSpeed)
	case s.Acceleration < 0:
		return fmt.Errorf("%w: acceleration must not be negative, got %v", ErrConfiguration, s.Acceleration)
	case s.HalfLength < 0 || s.HalfWidth < 0:
		return fmt.Errorf("%w: vehicle extents must not be negative", ErrConfiguration)
	case s.SensorRange <= 0:
		return fmt.Errorf("%w: sensor range must be positive, got %v", ErrConfiguration, s.SensorRange)
	}
	return nil
}
