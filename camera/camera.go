// Package camera maps arena coordinates onto a screen viewport. The arena
// wraps at its edges and its y axis points up; screen y points down.
package camera

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Camera controls the viewport into the arena.
type Camera struct {
	// Center is the camera center in arena coordinates.
	Center r2.Vec

	// Zoom is screen pixels per arena unit.
	Zoom float64

	// Viewport rectangle on screen.
	OriginX, OriginY     float64
	ViewportW, ViewportH float64

	// Arena dimensions, for wrapping.
	WorldW, WorldH float64

	// Zoom constraints. MinZoom fits the whole arena in the viewport.
	MinZoom, MaxZoom float64
}

// New creates a camera centered on the arena, zoomed to fit it.
func New(originX, originY, viewportW, viewportH, worldW, worldH float64) *Camera {
	c := &Camera{
		OriginX: originX,
		OriginY: originY,
		WorldW:  worldW,
		WorldH:  worldH,
	}
	c.Resize(viewportW, viewportH)
	c.Reset()
	return c
}

// fit is the zoom at which the arena exactly fits the viewport in its
// limiting dimension.
func (c *Camera) fit() float64 {
	return math.Min(c.ViewportW/c.WorldW, c.ViewportH/c.WorldH)
}

// WorldToScreen converts an arena position to screen coordinates, taking
// the shortest way around the wrapped arena from the camera center.
func (c *Camera) WorldToScreen(p r2.Vec) (sx, sy float32) {
	dx := toroidalDelta(p.X, c.Center.X, c.WorldW)
	dy := toroidalDelta(p.Y, c.Center.Y, c.WorldH)
	return c.project(dx, dy)
}

// project maps a delta from the camera center to the screen.
func (c *Camera) project(dx, dy float64) (sx, sy float32) {
	return float32(c.OriginX + c.ViewportW/2 + dx*c.Zoom),
		float32(c.OriginY + c.ViewportH/2 - dy*c.Zoom)
}

// ScreenToWorld converts screen coordinates to an arena position.
func (c *Camera) ScreenToWorld(sx, sy float32) r2.Vec {
	dx := (float64(sx) - c.OriginX - c.ViewportW/2) / c.Zoom
	dy := -(float64(sy) - c.OriginY - c.ViewportH/2) / c.Zoom
	return r2.Vec{X: mod(c.Center.X+dx, c.WorldW), Y: mod(c.Center.Y+dy, c.WorldH)}
}

// Scale converts an arena length to pixels.
func (c *Camera) Scale(length float64) float32 {
	return float32(length * c.Zoom)
}

// IsVisible returns true if a circle at p with the given radius could be
// visible on screen (conservative check for culling).
func (c *Camera) IsVisible(p r2.Vec, radius float64) bool {
	dx := toroidalDelta(p.X, c.Center.X, c.WorldW)
	dy := toroidalDelta(p.Y, c.Center.Y, c.WorldH)

	halfW := c.ViewportW/(2*c.Zoom) + radius
	halfH := c.ViewportH/(2*c.Zoom) + radius
	return math.Abs(dx) <= halfW && math.Abs(dy) <= halfH
}

// Ghosts returns extra screen positions for a circle straddling the wrap
// seam opposite the camera center, so it shows on both sides. Up to 3
// positions; none for circles clear of the seam.
func (c *Camera) Ghosts(p r2.Vec, radius float64) [][2]float32 {
	halfW, halfH := c.WorldW/2, c.WorldH/2
	dx := toroidalDelta(p.X, c.Center.X, c.WorldW)
	dy := toroidalDelta(p.Y, c.Center.Y, c.WorldH)

	var gx, gy float64
	hGhost, vGhost := false, false
	switch {
	case dx > halfW-radius:
		hGhost, gx = true, dx-c.WorldW
	case dx < -halfW+radius:
		hGhost, gx = true, dx+c.WorldW
	}
	switch {
	case dy > halfH-radius:
		vGhost, gy = true, dy-c.WorldH
	case dy < -halfH+radius:
		vGhost, gy = true, dy+c.WorldH
	}

	var ghosts [][2]float32
	add := func(x, y float64) {
		sx, sy := c.project(x, y)
		ghosts = append(ghosts, [2]float32{sx, sy})
	}
	if hGhost {
		add(gx, dy)
	}
	if vGhost {
		add(dx, gy)
	}
	if hGhost && vGhost {
		add(gx, gy)
	}
	return ghosts
}

// Resize updates the viewport dimensions and zoom constraints.
func (c *Camera) Resize(viewportW, viewportH float64) {
	c.ViewportW = viewportW
	c.ViewportH = viewportH
	c.MinZoom = c.fit()
	c.MaxZoom = 4 * c.MinZoom
	c.SetZoom(c.Zoom)
}

// Pan moves the camera by the given delta in screen pixels.
func (c *Camera) Pan(dx, dy float64) {
	c.Center.X = mod(c.Center.X+dx/c.Zoom, c.WorldW)
	c.Center.Y = mod(c.Center.Y-dy/c.Zoom, c.WorldH)
}

// SetZoom sets the zoom level, clamped to min/max.
func (c *Camera) SetZoom(zoom float64) {
	c.Zoom = math.Max(c.MinZoom, math.Min(c.MaxZoom, zoom))
}

// ZoomBy multiplies the current zoom by the given factor.
func (c *Camera) ZoomBy(factor float64) {
	c.SetZoom(c.Zoom * factor)
}

// Reset centers the camera on the arena, zoomed to fit.
func (c *Camera) Reset() {
	c.Center = r2.Vec{X: c.WorldW / 2, Y: c.WorldH / 2}
	c.Zoom = c.MinZoom
}

// toroidalDelta computes the shortest signed distance from 'from' to 'to'
// in a toroidal space of the given size.
func toroidalDelta(to, from, size float64) float64 {
	d := to - from
	if d > size/2 {
		d -= size
	} else if d < -size/2 {
		d += size
	}
	return d
}

// mod computes the positive modulo (Go's math.Mod can return negative).
func mod(x, m float64) float64 {
	r := math.Mod(x, m)
	if r < 0 {
		r += m
	}
	return r
}
