// Package vis implements a Gio-based view of a running road simulation.
package vis

import (
	"image/color"

	"gioui.org/app"
	"gioui.org/io/event"
	"gioui.org/io/key"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/paint"
	"gioui.org/widget/material"
	"github.com/google/uuid"

	"github.com/elektrokombinacija/roadnav/internal/vis/interact"
	"github.com/elektrokombinacija/roadnav/internal/vis/state"
	"github.com/elektrokombinacija/roadnav/internal/vis/widgets"
)

// App is the main visualization application.
type App struct {
	state     *state.State
	theme     *material.Theme
	workspace *widgets.Workspace
	status    *widgets.StatusBar
	toolbar   *widgets.Toolbar
	camera    *interact.Camera
}

// NewApp builds the simulator with build and wraps it in the UI.
func NewApp(build state.Builder) (*App, error) {
	st, err := state.NewState(build)
	if err != nil {
		return nil, err
	}
	camera := interact.NewCamera()
	ws := widgets.NewWorkspace(st, camera)

	return &App{
		state:     st,
		theme:     material.NewTheme(),
		workspace: ws,
		status:    widgets.NewStatusBar(st),
		toolbar:   widgets.NewToolbar(st, ws),
		camera:    camera,
	}, nil
}

// Run starts the application event loop.
func (a *App) Run(w *app.Window) error {
	var ops op.Ops
	tag := new(int)

	for {
		switch e := w.Event().(type) {
		case app.DestroyEvent:
			return e.Err

		case app.FrameEvent:
			gtx := app.NewContext(&ops, e)

			// Handle keyboard events
			for {
				ev, ok := gtx.Event(key.Filter{Focus: tag, Optional: key.ModShift})
				if !ok {
					break
				}
				if ke, ok := ev.(key.Event); ok && ke.State == key.Press {
					a.handleKeyEvent(ke)
				}
			}
			// Request focus for keyboard input
			event.Op(gtx.Ops, tag)

			a.state.Update()
			a.layout(gtx)
			e.Frame(gtx.Ops)

			// Request continuous redraws during playback
			if a.state.Playback.Playing {
				w.Invalidate()
			}
		}
	}
}

func (a *App) handleKeyEvent(e key.Event) {
	switch e.Name {
	case key.NameSpace:
		a.state.Playback.TogglePlay()
	case key.NameRightArrow:
		a.state.Playback.Pause()
		a.state.Step(1)
	case key.NameHome:
		if err := a.state.Reset(); err != nil {
			a.state.Err = err
		}
	case key.NameEscape:
		a.state.Selected = uuid.Nil
	case "+":
		a.state.Playback.SetSpeed(a.state.Playback.Speed * 1.5)
	case "-":
		a.state.Playback.SetSpeed(a.state.Playback.Speed / 1.5)
	case "R":
		// Reset camera
		a.camera.Reset()
	case "F":
		a.workspace.Refit()
	}
}

func (a *App) layout(gtx layout.Context) layout.Dimensions {
	// Fill background
	paint.Fill(gtx.Ops, color.NRGBA{R: 30, G: 30, B: 35, A: 255})

	return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
		// Toolbar at top
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return a.toolbar.Layout(gtx, a.theme)
		}),
		// Workspace (2D view)
		layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
			return a.workspace.Layout(gtx, a.theme)
		}),
		// Status bar at bottom
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return a.status.Layout(gtx, a.theme)
		}),
	)
}
