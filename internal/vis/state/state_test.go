package state

import (
	"errors"
	"io"
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	log "github.com/sirupsen/logrus"

	"github.com/elektrokombinacija/roadnav/internal/core"
	"github.com/elektrokombinacija/roadnav/internal/sim"
)

// twoTiles builds a pair of facing end tiles with one roaming sedan.
func twoTiles() (*sim.Simulator, error) {
	g := core.NewGraph(core.DefaultGraphOptions())
	a, err := g.AddRoad("a", core.RoadEnd, core.Transform{Position: orb.Point{1, 0}})
	if err != nil {
		return nil, err
	}
	b, err := g.AddRoad("b", core.RoadEnd, core.Transform{Position: orb.Point{3, 0}, Rotation: math.Pi})
	if err != nil {
		return nil, err
	}
	if err := g.Connect(a, b); err != nil {
		return nil, err
	}

	logger := log.New()
	logger.SetOutput(io.Discard)
	cfg := sim.DefaultConfig()
	cfg.TimeStep = 0.1
	cfg.Logger = logger

	s, err := sim.NewSimulator(g, cfg)
	if err != nil {
		return nil, err
	}
	if _, err := s.SpawnRoaming(a, core.Sedan); err != nil {
		return nil, err
	}
	return s, nil
}

func TestPlaybackAdvance(t *testing.T) {
	p := NewPlaybackState(0.1)
	if n := p.advance(1); n != 0 {
		t.Errorf("Expected no ticks while paused, got %d", n)
	}

	p.Play()
	if n := p.advance(0.25); n != 2 {
		t.Errorf("Expected 2 ticks, got %d", n)
	}
	// The leftover 0.05s carries into the next frame.
	if n := p.advance(0.06); n != 1 {
		t.Errorf("Expected 1 tick from carried time, got %d", n)
	}

	p.SetSpeed(2)
	if n := p.advance(0.1); n != 2 {
		t.Errorf("Expected 2 ticks at double speed, got %d", n)
	}

	if n := p.advance(60); n != maxCatchUp {
		t.Errorf("Expected catch-up capped at %d, got %d", maxCatchUp, n)
	}
}

func TestSetSpeedClamps(t *testing.T) {
	p := NewPlaybackState(0.1)
	p.SetSpeed(100)
	if p.Speed != 10 {
		t.Errorf("Expected speed 10, got %v", p.Speed)
	}
	p.SetSpeed(0)
	if p.Speed != 0.1 {
		t.Errorf("Expected speed 0.1, got %v", p.Speed)
	}
}

func TestStepAndReset(t *testing.T) {
	st, err := NewState(twoTiles)
	if err != nil {
		t.Fatalf("NewState: %v", err)
	}

	start := st.Vehicles()[0].Position
	st.Step(10)
	if st.Err != nil {
		t.Fatalf("Step: %v", st.Err)
	}
	if st.Vehicles()[0].Position == start {
		t.Error("Expected the vehicle to move")
	}

	st.Selected = st.Vehicles()[0].ID
	if _, ok := st.Selection(); !ok {
		t.Error("Expected the selected vehicle to be found")
	}

	if err := st.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if st.Sim.Time() != 0 {
		t.Errorf("Expected time 0 after reset, got %v", st.Sim.Time())
	}
	if st.Selected != uuid.Nil {
		t.Error("Expected selection cleared on reset")
	}
}

func TestNewStatePropagatesBuildError(t *testing.T) {
	boom := errors.New("boom")
	if _, err := NewState(func() (*sim.Simulator, error) { return nil, boom }); !errors.Is(err, boom) {
		t.Errorf("Expected build error, got %v", err)
	}
}
