// Package camera provides the 2D viewport transform: a world-space target,
// a screen offset, rotation, and zoom.
package camera

import "math"

// Camera maps world coordinates onto the screen. The target is the world
// point the camera looks at; offset is where that point lands on screen
// (usually the viewport center).
type Camera struct {
	TargetX, TargetY float32
	OffsetX, OffsetY float32

	// Rotation in degrees, clockwise
	Rotation float32

	// Zoom level (1.0 = 1:1, 2.0 = 2x magnification)
	Zoom float32

	// Zoom constraints
	MinZoom, MaxZoom float32
}

// New creates a camera looking at the origin with the given screen offset
// and 1:1 zoom.
func New(offsetX, offsetY float32) *Camera {
	return &Camera{
		OffsetX: offsetX,
		OffsetY: offsetY,
		Zoom:    1.0,
		MinZoom: 0.125,
		MaxZoom: 8.0,
	}
}

// Apply overwrites the camera pose. Zoom is clamped to the constraints.
func (c *Camera) Apply(targetX, targetY, offsetX, offsetY, rotation, zoom float32) {
	c.TargetX = targetX
	c.TargetY = targetY
	c.OffsetX = offsetX
	c.OffsetY = offsetY
	c.Rotation = rotation
	c.SetZoom(zoom)
}

// WorldToScreen converts world coordinates to screen coordinates: translate
// relative to the target, scale by zoom, rotate, then add the offset.
func (c *Camera) WorldToScreen(wx, wy float32) (sx, sy float32) {
	dx := (wx - c.TargetX) * c.Zoom
	dy := (wy - c.TargetY) * c.Zoom
	sin, cos := sincosDeg(c.Rotation)
	sx = c.OffsetX + dx*cos - dy*sin
	sy = c.OffsetY + dx*sin + dy*cos
	return sx, sy
}

// ScreenToWorld converts screen coordinates to world coordinates; the exact
// inverse of WorldToScreen.
func (c *Camera) ScreenToWorld(sx, sy float32) (wx, wy float32) {
	dx := sx - c.OffsetX
	dy := sy - c.OffsetY
	sin, cos := sincosDeg(-c.Rotation)
	rx := dx*cos - dy*sin
	ry := dx*sin + dy*cos
	wx = c.TargetX + rx/c.Zoom
	wy = c.TargetY + ry/c.Zoom
	return wx, wy
}

// IsVisible reports whether a circle at (wx, wy) with the given radius
// could be on a screen of the given size. Conservative: rotation is folded
// into an enlarged bound rather than tested exactly.
func (c *Camera) IsVisible(wx, wy, radius, screenW, screenH float32) bool {
	sx, sy := c.WorldToScreen(wx, wy)
	r := radius * c.Zoom
	bound := screenW
	if screenH > bound {
		bound = screenH
	}
	return sx >= -bound-r && sx <= screenW+bound+r && sy >= -bound-r && sy <= screenH+bound+r
}

// Pan moves the target by the given delta in screen pixels.
func (c *Camera) Pan(dx, dy float32) {
	sin, cos := sincosDeg(-c.Rotation)
	c.TargetX += (dx*cos - dy*sin) / c.Zoom
	c.TargetY += (dx*sin + dy*cos) / c.Zoom
}

// SetZoom sets the zoom level, clamped to min/max.
func (c *Camera) SetZoom(zoom float32) {
	c.Zoom = clamp(zoom, c.MinZoom, c.MaxZoom)
}

// ZoomBy multiplies the current zoom by the given factor.
func (c *Camera) ZoomBy(factor float32) {
	c.SetZoom(c.Zoom * factor)
}

// Reset returns the camera to the origin with no rotation and 1:1 zoom.
func (c *Camera) Reset() {
	c.TargetX = 0
	c.TargetY = 0
	c.Rotation = 0
	c.Zoom = 1.0
}

func sincosDeg(deg float32) (sin, cos float32) {
	rad := float64(deg) * math.Pi / 180
	s, co := math.Sincos(rad)
	return float32(s), float32(co)
}

// clamp restricts a value to a range.
func clamp(x, min, max float32) float32 {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}
