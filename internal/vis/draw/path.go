package draw

import (
	"image/color"

	"gioui.org/layout"
	"github.com/paulmach/orb"

	"github.com/elektrokombinacija/roadnav/internal/vis/interact"
)

// DrawWaypoints draws a vehicle's remaining waypoint queue from its current
// position, dimmer than the vehicle itself.
func DrawWaypoints(gtx layout.Context, from orb.Point, queue orb.LineString, camera *interact.Camera, col color.NRGBA) {
	if len(queue) == 0 {
		return
	}
	dim := col
	dim.A = 110

	DrawLine(gtx, from, queue[0], camera, dim, 0.05)
	DrawPolyline(gtx, queue, camera, dim, 0.05)
	for _, p := range queue {
		DrawDot(gtx, p, camera, col, 0.05)
	}
}

// DrawTrail draws a fading trail through past positions, oldest first.
func DrawTrail(gtx layout.Context, history []orb.Point, camera *interact.Camera, baseColor color.NRGBA, maxWidth float64) {
	n := len(history)
	for i := 0; i+1 < n; i++ {
		col := baseColor
		col.A = uint8(40 + float64(i)/float64(n)*140)
		w := maxWidth * (0.3 + 0.7*float64(i)/float64(n))
		DrawLine(gtx, history[i], history[i+1], camera, col, w)
	}
}
