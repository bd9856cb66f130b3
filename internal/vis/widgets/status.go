package widgets

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget/material"

	"github.com/elektrokombinacija/roadnav/internal/nav"
	"github.com/elektrokombinacija/roadnav/internal/vis/state"
)

// StatusBar shows simulation time, counters and the selected vehicle.
type StatusBar struct {
	state *state.State
}

// NewStatusBar creates a new status bar.
func NewStatusBar(st *state.State) *StatusBar {
	return &StatusBar{state: st}
}

// Layout renders the status bar.
func (s *StatusBar) Layout(gtx layout.Context, th *material.Theme) layout.Dimensions {
	height := gtx.Dp(unit.Dp(36))
	rect := image.Rect(0, 0, gtx.Constraints.Max.X, height)
	paint.FillShape(gtx.Ops, color.NRGBA{R: 35, G: 38, B: 42, A: 255}, clip.Rect(rect).Op())

	gtx.Constraints.Min = image.Point{X: gtx.Constraints.Max.X, Y: height}
	gtx.Constraints.Max.Y = height

	left := material.Label(th, 12, s.summary())
	left.Color = color.NRGBA{R: 200, G: 200, B: 200, A: 255}

	right := material.Label(th, 12, s.selection())
	right.Color = color.NRGBA{R: 150, G: 180, B: 200, A: 255}
	if s.state.Err != nil {
		right = material.Label(th, 12, s.state.Err.Error())
		right.Color = color.NRGBA{R: 240, G: 110, B: 100, A: 255}
	}

	layout.Inset{Left: unit.Dp(20), Right: unit.Dp(20)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Flex{Axis: layout.Horizontal, Spacing: layout.SpaceBetween, Alignment: layout.Middle}.Layout(gtx,
			layout.Rigid(left.Layout),
			layout.Rigid(right.Layout),
		)
	})
	return layout.Dimensions{Size: image.Point{X: gtx.Constraints.Max.X, Y: height}}
}

func (s *StatusBar) summary() string {
	m := s.state.Sim.Metrics()
	return fmt.Sprintf("t=%.1fs  %.1fx  vehicles %d  arrivals %d  transitions %d",
		s.state.Sim.Time(), s.state.Playback.Speed, len(s.state.Vehicles()), m.Arrivals, m.LaneTransitions)
}

func (s *StatusBar) selection() string {
	v, ok := s.state.Selection()
	if !ok {
		return "click a vehicle to follow it"
	}
	g := s.state.Sim.Graph()

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s  %s on %s  %.2f u/s", v.Type, v.ID.String()[:8], v.Mode, g.Road(v.Road).Name, v.Speed)
	if v.Reading.Hit {
		fmt.Fprintf(&b, "  obstacle %.2f (x%.2f)", v.Reading.Distance, v.Reading.Ratio)
	}
	if v.Mode == nav.Routed {
		fmt.Fprintf(&b, "  %d waypoints left", len(v.Waypoints))
	}
	return b.String()
}
