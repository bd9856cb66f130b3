// Package widgets provides Gio UI widgets for the visualizer.
package widgets

import (
	"image"
	"image/color"

	"gioui.org/io/event"
	"gioui.org/io/pointer"
	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/widget/material"
	"github.com/google/uuid"
	"github.com/paulmach/orb"

	"github.com/elektrokombinacija/roadnav/internal/core"
	"github.com/elektrokombinacija/roadnav/internal/sim"
	"github.com/elektrokombinacija/roadnav/internal/vis/draw"
	"github.com/elektrokombinacija/roadnav/internal/vis/interact"
	"github.com/elektrokombinacija/roadnav/internal/vis/state"
)

const (
	trailLength = 60
	pickRadius  = 0.4 // World units
)

// Workspace is the main 2D view of roads and vehicles.
type Workspace struct {
	state  *state.State
	camera *interact.Camera
	fitted bool

	trail     []orb.Point
	trailOf   uuid.UUID
	trailTime float64
}

// NewWorkspace creates a new workspace widget.
func NewWorkspace(st *state.State, camera *interact.Camera) *Workspace {
	return &Workspace{
		state:  st,
		camera: camera,
	}
}

// Refit fits the camera to the road network on the next frame.
func (w *Workspace) Refit() {
	w.fitted = false
}

// Layout renders the workspace.
func (w *Workspace) Layout(gtx layout.Context, th *material.Theme) layout.Dimensions {
	bounds := gtx.Constraints.Max
	defer clip.Rect(image.Rect(0, 0, bounds.X, bounds.Y)).Push(gtx.Ops).Pop()

	paint.Fill(gtx.Ops, color.NRGBA{R: 25, G: 28, B: 32, A: 255})

	g := w.state.Sim.Graph()
	if !w.fitted && bounds.X > 0 && bounds.Y > 0 {
		w.camera.FitBound(worldBound(g), float32(bounds.X), float32(bounds.Y), 40)
		w.fitted = true
	}

	w.handlePointerEvents(gtx)

	draw.DrawGrid(gtx, w.camera, g.Options().TileSize, color.NRGBA{R: 36, G: 40, B: 45, A: 255})
	draw.DrawRoads(gtx, g, w.camera)

	views := w.state.Vehicles()
	sel, hasSel := w.state.Selection()
	if hasSel {
		w.recordTrail(sel)
		col := draw.VehicleColor(sel.Type)
		draw.DrawTrail(gtx, w.trail, w.camera, col, 0.08)
		draw.DrawWaypoints(gtx, sel.Position, sel.Waypoints, w.camera, col)
	}

	draw.DrawVehicles(gtx, views, w.camera, func(v sim.VehicleView) bool {
		return hasSel && v.ID == sel.ID
	})

	return layout.Dimensions{Size: bounds}
}

// recordTrail appends the selected vehicle's position once per tick.
func (w *Workspace) recordTrail(v sim.VehicleView) {
	now := w.state.Sim.Time()
	if v.ID != w.trailOf || now < w.trailTime {
		w.trail = w.trail[:0]
		w.trailOf = v.ID
	}
	if len(w.trail) > 0 && now == w.trailTime {
		return
	}
	w.trailTime = now
	w.trail = append(w.trail, v.Position)
	if len(w.trail) > trailLength {
		w.trail = w.trail[len(w.trail)-trailLength:]
	}
}

func (w *Workspace) handlePointerEvents(gtx layout.Context) {
	area := clip.Rect(image.Rect(0, 0, gtx.Constraints.Max.X, gtx.Constraints.Max.Y)).Push(gtx.Ops)
	event.Op(gtx.Ops, w)
	area.Pop()

	for {
		ev, ok := gtx.Event(pointer.Filter{
			Target:  w,
			Kinds:   pointer.Press | pointer.Drag | pointer.Release | pointer.Scroll,
			ScrollY: pointer.ScrollRange{Min: -100, Max: 100},
		})
		if !ok {
			break
		}
		if pe, ok := ev.(pointer.Event); ok {
			w.camera.HandleEvent(gtx, pe)
			if pe.Kind == pointer.Press && pe.Buttons.Contain(pointer.ButtonPrimary) {
				w.handleClick(pe.Position.X, pe.Position.Y)
			}
		}
	}
}

// handleClick selects the vehicle under the cursor, or clears the selection.
func (w *Workspace) handleClick(x, y float32) {
	views := w.state.Vehicles()
	i := draw.VehicleAt(views, w.camera.ScreenToWorld(x, y), pickRadius)
	if i < 0 {
		w.state.Selected = uuid.Nil
		return
	}
	w.state.Selected = views[i].ID
}

func worldBound(g *core.Graph) orb.Bound {
	half := g.Options().TileSize / 2
	var b orb.Bound
	for i, r := range g.Roads() {
		p := r.Transform.Position
		tile := orb.Bound{Min: orb.Point{p[0] - half, p[1] - half}, Max: orb.Point{p[0] + half, p[1] + half}}
		if i == 0 {
			b = tile
		} else {
			b = b.Union(tile)
		}
	}
	return b
}
