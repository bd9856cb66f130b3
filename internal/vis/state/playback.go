package state

import (
	"time"

	"github.com/samber/lo"
)

// maxCatchUp bounds how many ticks one frame may run after a stall.
const maxCatchUp = 20

// PlaybackState converts wall-clock time into simulation ticks.
type PlaybackState struct {
	TimeStep float64 // Simulated seconds per tick
	Speed    float64 // Playback speed multiplier (1.0 = real-time)
	Playing  bool

	pending    float64 // Simulated seconds owed but not yet ticked
	lastUpdate time.Time
}

// NewPlaybackState creates a paused playback for the given tick length.
func NewPlaybackState(timeStep float64) *PlaybackState {
	return &PlaybackState{
		TimeStep:   timeStep,
		Speed:      1.0,
		lastUpdate: time.Now(),
	}
}

// TogglePlay toggles playback on/off.
func (p *PlaybackState) TogglePlay() {
	if p.Playing {
		p.Pause()
	} else {
		p.Play()
	}
}

// Play starts playback.
func (p *PlaybackState) Play() {
	p.Playing = true
	p.pending = 0
	p.lastUpdate = time.Now()
}

// Pause stops playback.
func (p *PlaybackState) Pause() {
	p.Playing = false
}

// Advance returns the number of ticks due since the last call.
func (p *PlaybackState) Advance() int {
	now := time.Now()
	elapsed := now.Sub(p.lastUpdate).Seconds()
	p.lastUpdate = now
	return p.advance(elapsed)
}

func (p *PlaybackState) advance(elapsed float64) int {
	if !p.Playing || p.TimeStep <= 0 {
		return 0
	}
	p.pending += elapsed * p.Speed
	n := int(p.pending / p.TimeStep)
	p.pending -= float64(n) * p.TimeStep
	if n > maxCatchUp {
		n = maxCatchUp
		p.pending = 0
	}
	return n
}

// SetSpeed sets the playback speed multiplier.
func (p *PlaybackState) SetSpeed(speed float64) {
	p.Speed = lo.Clamp(speed, 0.1, 10)
}
