package core

import "errors"

// ErrConfiguration marks a malformed road network: asymmetric or missing
// neighbour registration, a transition with no connecting lane, or a lane
// with too few waypoints. It is fatal and must be caught before simulation.
var ErrConfiguration = errors.New("configuration error")

// ErrNoRoute is returned when no connected route exists between two roads.
var ErrNoRoute = errors.New("no route found")
