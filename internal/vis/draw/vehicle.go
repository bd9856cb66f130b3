package draw

import (
	"image/color"

	"gioui.org/layout"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/elektrokombinacija/roadnav/internal/core"
	"github.com/elektrokombinacija/roadnav/internal/nav"
	"github.com/elektrokombinacija/roadnav/internal/sim"
	"github.com/elektrokombinacija/roadnav/internal/vis/interact"
)

// Vehicle colors by type
var (
	ColorSedan    = color.NRGBA{R: 100, G: 200, B: 255, A: 255}
	ColorTaxi     = color.NRGBA{R: 250, G: 210, B: 60, A: 255}
	ColorVan      = color.NRGBA{R: 255, G: 150, B: 100, A: 255}
	ColorTruck    = color.NRGBA{R: 200, G: 100, B: 255, A: 255}
	ColorSelected = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	ColorSensor   = color.NRGBA{R: 255, G: 90, B: 90, A: 160}
	ColorRay      = color.NRGBA{R: 160, G: 160, B: 160, A: 90}
)

// VehicleColor returns the color for a vehicle type.
func VehicleColor(t core.VehicleType) color.NRGBA {
	switch t {
	case core.Taxi:
		return ColorTaxi
	case core.Van:
		return ColorVan
	case core.Truck:
		return ColorTruck
	default:
		return ColorSedan
	}
}

// Footprint returns the corners of a vehicle's oriented bounding box.
func Footprint(v nav.View) []orb.Point {
	fwd := core.Direction(v.Heading)
	side := core.Perp(fwd)
	l, w := core.Scale(fwd, v.Spec.HalfLength), core.Scale(side, v.Spec.HalfWidth)
	return []orb.Point{
		core.Add(core.Add(v.Position, l), w),
		core.Add(core.Sub(v.Position, l), w),
		core.Sub(core.Sub(v.Position, l), w),
		core.Sub(core.Add(v.Position, l), w),
	}
}

// DrawVehicle draws a vehicle box with its sensor ray. The ray turns red and
// stops at the obstacle when the last scan hit something.
func DrawVehicle(gtx layout.Context, v sim.VehicleView, camera *interact.Camera, selected bool) {
	fwd := core.Direction(v.Heading)
	if v.Reading.Hit {
		DrawLine(gtx, v.Position, core.Add(v.Position, core.Scale(fwd, v.Reading.Distance)), camera, ColorSensor, 0.03)
	} else {
		DrawLine(gtx, v.Position, core.Add(v.Position, core.Scale(fwd, v.Spec.SensorRange)), camera, ColorRay, 0.015)
	}

	col := VehicleColor(v.Type)
	if selected {
		col = ColorSelected
	}
	FillPolygon(gtx, Footprint(v.View), camera, col)

	// Windscreen marks the front.
	front := core.Add(v.Position, core.Scale(fwd, v.Spec.HalfLength*0.6))
	DrawDot(gtx, front, camera, color.NRGBA{R: 30, G: 30, B: 35, A: 255}, v.Spec.HalfWidth*0.5)
}

// DrawVehicles draws every vehicle, the selected one on top.
func DrawVehicles(gtx layout.Context, views []sim.VehicleView, camera *interact.Camera, selected func(sim.VehicleView) bool) {
	var top *sim.VehicleView
	for i := range views {
		if selected(views[i]) {
			top = &views[i]
			continue
		}
		DrawVehicle(gtx, views[i], camera, false)
	}
	if top != nil {
		DrawVehicle(gtx, *top, camera, true)
	}
}

// VehicleAt returns the index of the vehicle nearest p within radius world
// units, or -1.
func VehicleAt(views []sim.VehicleView, p orb.Point, radius float64) int {
	best, bestDist := -1, radius
	for i, v := range views {
		if d := planar.Distance(p, v.Position); d <= bestDist {
			best, bestDist = i, d
		}
	}
	return best
}
