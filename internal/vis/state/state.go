// Package state manages the visualization state.
package state

import (
	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/elektrokombinacija/roadnav/internal/sim"
)

// Builder creates a fresh simulator for the world being shown.
type Builder func() (*sim.Simulator, error)

// State holds all visualization state.
type State struct {
	Sim      *sim.Simulator
	Playback *PlaybackState
	Selected uuid.UUID // Zero when nothing is selected
	Err      error     // Last simulation error; playback stops on error

	build Builder
}

// NewState builds the simulator and a paused playback over it.
func NewState(build Builder) (*State, error) {
	s, err := build()
	if err != nil {
		return nil, err
	}
	return &State{
		Sim:      s,
		Playback: NewPlaybackState(s.Config().TimeStep),
		build:    build,
	}, nil
}

// Reset rebuilds the simulator from scratch.
func (s *State) Reset() error {
	next, err := s.build()
	if err != nil {
		return err
	}
	s.Sim = next
	s.Selected = uuid.Nil
	s.Err = nil
	s.Playback.Pause()
	return nil
}

// Update runs the ticks playback says are due.
func (s *State) Update() {
	s.Step(s.Playback.Advance())
}

// Step runs n simulation ticks, stopping playback on the first error.
func (s *State) Step(n int) {
	for i := 0; i < n; i++ {
		if err := s.Sim.Step(); err != nil {
			s.Err = err
			s.Sim.Logger().WithError(err).Error("simulation stopped")
			s.Playback.Pause()
			return
		}
	}
}

// Vehicles returns the current vehicle views.
func (s *State) Vehicles() []sim.VehicleView {
	return s.Sim.Views()
}

// Selection returns the selected vehicle, if it still exists.
func (s *State) Selection() (sim.VehicleView, bool) {
	if s.Selected == uuid.Nil {
		return sim.VehicleView{}, false
	}
	return lo.Find(s.Vehicles(), func(v sim.VehicleView) bool { return v.ID == s.Selected })
}
