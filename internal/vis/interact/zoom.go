// Package interact handles pan and zoom of the world view.
package interact

import (
	"gioui.org/io/pointer"
	"gioui.org/layout"
	"github.com/paulmach/orb"
	"github.com/samber/lo"
)

const (
	defaultZoom = 40 // Pixels per world unit
	minZoom     = 4
	maxZoom     = 400
	zoomStep    = 1.1
)

// Camera maps world units to screen pixels.
type Camera struct {
	OffsetX float32 // Pan offset in screen pixels
	OffsetY float32
	Zoom    float32 // Pixels per world unit

	dragging bool
	lastX    float32
	lastY    float32
}

// NewCamera creates a camera with the default scale.
func NewCamera() *Camera {
	c := &Camera{}
	c.Reset()
	return c
}

// Reset restores the default view.
func (c *Camera) Reset() {
	c.OffsetX = 100
	c.OffsetY = 100
	c.Zoom = defaultZoom
}

// WorldToScreen converts a world point to screen coordinates.
func (c *Camera) WorldToScreen(p orb.Point) (x, y float32) {
	return float32(p[0])*c.Zoom + c.OffsetX, float32(p[1])*c.Zoom + c.OffsetY
}

// ScreenToWorld converts screen coordinates to a world point.
func (c *Camera) ScreenToWorld(x, y float32) orb.Point {
	return orb.Point{float64((x - c.OffsetX) / c.Zoom), float64((y - c.OffsetY) / c.Zoom)}
}

// HandleEvent pans on secondary/tertiary drag and zooms on scroll.
func (c *Camera) HandleEvent(gtx layout.Context, ev pointer.Event) {
	switch ev.Kind {
	case pointer.Press:
		if ev.Buttons.Contain(pointer.ButtonSecondary) || ev.Buttons.Contain(pointer.ButtonTertiary) {
			c.dragging = true
		}
		c.lastX, c.lastY = ev.Position.X, ev.Position.Y

	case pointer.Drag:
		if c.dragging {
			c.Pan(ev.Position.X-c.lastX, ev.Position.Y-c.lastY)
		}
		c.lastX, c.lastY = ev.Position.X, ev.Position.Y

	case pointer.Release:
		c.dragging = false

	case pointer.Scroll:
		switch {
		case ev.Scroll.Y > 0:
			c.ZoomBy(1/zoomStep, ev.Position.X, ev.Position.Y)
		case ev.Scroll.Y < 0:
			c.ZoomBy(zoomStep, ev.Position.X, ev.Position.Y)
		}
	}
}

// Pan moves the view by a screen delta.
func (c *Camera) Pan(dx, dy float32) {
	c.OffsetX += dx
	c.OffsetY += dy
}

// ZoomBy zooms by factor keeping the world point under (x, y) fixed.
func (c *Camera) ZoomBy(factor float32, x, y float32) {
	anchor := c.ScreenToWorld(x, y)
	c.Zoom = lo.Clamp(c.Zoom*factor, minZoom, maxZoom)

	sx, sy := c.WorldToScreen(anchor)
	c.OffsetX += x - sx
	c.OffsetY += y - sy
}

// CenterOn puts a world point in the middle of the screen.
func (c *Camera) CenterOn(p orb.Point, screenWidth, screenHeight float32) {
	c.OffsetX = screenWidth/2 - float32(p[0])*c.Zoom
	c.OffsetY = screenHeight/2 - float32(p[1])*c.Zoom
}

// FitBound zooms and pans so b fills the screen less margin pixels.
func (c *Camera) FitBound(b orb.Bound, screenWidth, screenHeight, margin float32) {
	w, h := b.Max[0]-b.Min[0], b.Max[1]-b.Min[1]
	if w <= 0 || h <= 0 {
		return
	}
	zoomX := (screenWidth - 2*margin) / float32(w)
	zoomY := (screenHeight - 2*margin) / float32(h)
	c.Zoom = lo.Clamp(min(zoomX, zoomY), minZoom, maxZoom)
	c.CenterOn(b.Center(), screenWidth, screenHeight)
}
