// Package draw provides rendering functions for visualization.
package draw

import (
	"image"
	"image/color"
	"math"

	"gioui.org/f32"
	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"github.com/paulmach/orb"

	"github.com/elektrokombinacija/roadnav/internal/core"
	"github.com/elektrokombinacija/roadnav/internal/vis/interact"
)

var (
	ColorTile        = color.NRGBA{R: 48, G: 52, B: 58, A: 255}
	ColorTileOutline = color.NRGBA{R: 70, G: 76, B: 84, A: 255}
	ColorLane        = color.NRGBA{R: 120, G: 128, B: 138, A: 200}
	ColorPortOpen    = color.NRGBA{R: 220, G: 80, B: 70, A: 255}
	ColorPortLinked  = color.NRGBA{R: 80, G: 180, B: 100, A: 255}
)

// DrawRoads renders every road tile with its lanes and port markers.
func DrawRoads(gtx layout.Context, g *core.Graph, camera *interact.Camera) {
	half := g.Options().TileSize / 2
	for _, r := range g.Roads() {
		corners := orb.Ring{{-half, -half}, {half, -half}, {half, half}, {-half, half}}
		tile := make([]orb.Point, len(corners))
		for i, c := range corners {
			tile[i] = r.Transform.Apply(c)
		}
		FillPolygon(gtx, tile, camera, ColorTile)
		for i := range tile {
			DrawLine(gtx, tile[i], tile[(i+1)%len(tile)], camera, ColorTileOutline, 0.02)
		}
	}

	for _, r := range g.Roads() {
		for _, l := range g.Lanes(r.ID) {
			DrawPolyline(gtx, l.Waypoints(), camera, ColorLane, 0.04)
		}
	}

	for _, r := range g.Roads() {
		for _, s := range r.Type.Sides() {
			col := ColorPortOpen
			if _, ok := portOn(r, s); ok {
				col = ColorPortLinked
			}
			DrawDot(gtx, g.SideMidpoint(r.ID, s), camera, col, 0.06)
		}
	}
}

func portOn(r *core.Road, s core.Side) (int, bool) {
	for i, p := range r.Ports {
		if p.Side == s {
			return i, true
		}
	}
	return core.NoPort, false
}

// DrawPolyline draws consecutive segments of ls; width is in world units.
func DrawPolyline(gtx layout.Context, ls orb.LineString, camera *interact.Camera, col color.NRGBA, width float64) {
	for i := 0; i+1 < len(ls); i++ {
		DrawLine(gtx, ls[i], ls[i+1], camera, col, width)
	}
}

// DrawLine draws a segment as a quad; width is in world units.
func DrawLine(gtx layout.Context, p1, p2 orb.Point, camera *interact.Camera, col color.NRGBA, width float64) {
	x1, y1 := camera.WorldToScreen(p1)
	x2, y2 := camera.WorldToScreen(p2)
	drawSegment(gtx, x1, y1, x2, y2, float32(width)*camera.Zoom, col)
}

func drawSegment(gtx layout.Context, x1, y1, x2, y2, width float32, col color.NRGBA) {
	dx := x2 - x1
	dy := y2 - y1
	length := float32(math.Sqrt(float64(dx*dx + dy*dy)))
	if length < 0.1 {
		return
	}

	dx /= length
	dy /= length
	px := -dy * width / 2
	py := dx * width / 2

	var path clip.Path
	path.Begin(gtx.Ops)
	path.MoveTo(f32.Pt(x1+px, y1+py))
	path.LineTo(f32.Pt(x2+px, y2+py))
	path.LineTo(f32.Pt(x2-px, y2-py))
	path.LineTo(f32.Pt(x1-px, y1-py))
	path.Close()

	paint.FillShape(gtx.Ops, col, clip.Outline{Path: path.End()}.Op())
}

// FillPolygon fills a closed polygon given in world coordinates.
func FillPolygon(gtx layout.Context, pts []orb.Point, camera *interact.Camera, col color.NRGBA) {
	if len(pts) < 3 {
		return
	}
	var path clip.Path
	path.Begin(gtx.Ops)
	x, y := camera.WorldToScreen(pts[0])
	path.MoveTo(f32.Pt(x, y))
	for _, p := range pts[1:] {
		x, y = camera.WorldToScreen(p)
		path.LineTo(f32.Pt(x, y))
	}
	path.Close()

	paint.FillShape(gtx.Ops, col, clip.Outline{Path: path.End()}.Op())
}

// DrawDot draws a filled circle; radius is in world units.
func DrawDot(gtx layout.Context, p orb.Point, camera *interact.Camera, col color.NRGBA, radius float64) {
	cx, cy := camera.WorldToScreen(p)
	r := float32(radius) * camera.Zoom

	var path clip.Path
	path.Begin(gtx.Ops)
	path.MoveTo(f32.Pt(cx+r, cy))

	segments := 12
	for i := 1; i <= segments; i++ {
		angle := float64(i) * 2 * math.Pi / float64(segments)
		path.LineTo(f32.Pt(cx+r*float32(math.Cos(angle)), cy+r*float32(math.Sin(angle))))
	}
	path.Close()

	paint.FillShape(gtx.Ops, col, clip.Outline{Path: path.End()}.Op())
}

// DrawGrid draws background lines every gridSize world units.
func DrawGrid(gtx layout.Context, camera *interact.Camera, gridSize float64, col color.NRGBA) {
	bounds := gtx.Constraints.Max
	lo := camera.ScreenToWorld(0, 0)
	hi := camera.ScreenToWorld(float32(bounds.X), float32(bounds.Y))

	for x := math.Floor(lo[0]/gridSize) * gridSize; x <= hi[0]; x += gridSize {
		sx, _ := camera.WorldToScreen(orb.Point{x, 0})
		rect := image.Rect(int(sx), 0, int(sx)+1, bounds.Y)
		paint.FillShape(gtx.Ops, col, clip.Rect(rect).Op())
	}
	for y := math.Floor(lo[1]/gridSize) * gridSize; y <= hi[1]; y += gridSize {
		_, sy := camera.WorldToScreen(orb.Point{0, y})
		rect := image.Rect(0, int(sy), bounds.X, int(sy)+1)
		paint.FillShape(gtx.Ops, col, clip.Rect(rect).Op())
	}
}
