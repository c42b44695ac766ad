package camera

import (
	"math"
	"testing"
)

func approx(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-3
}

func TestWorldToScreenIdentity(t *testing.T) {
	c := New(400, 300)
	sx, sy := c.WorldToScreen(0, 0)
	if !approx(sx, 400) || !approx(sy, 300) {
		t.Errorf("origin should land on the offset, got (%f, %f)", sx, sy)
	}

	sx, sy = c.WorldToScreen(10, -20)
	if !approx(sx, 410) || !approx(sy, 280) {
		t.Errorf("unit zoom should translate only, got (%f, %f)", sx, sy)
	}
}

func TestWorldToScreenZoom(t *testing.T) {
	c := New(0, 0)
	c.SetZoom(2)
	sx, sy := c.WorldToScreen(10, 5)
	if !approx(sx, 20) || !approx(sy, 10) {
		t.Errorf("2x zoom should double distances, got (%f, %f)", sx, sy)
	}
}

func TestWorldToScreenRotation(t *testing.T) {
	c := New(0, 0)
	c.Rotation = 90
	sx, sy := c.WorldToScreen(10, 0)
	if !approx(sx, 0) || !approx(sy, 10) {
		t.Errorf("90 degree rotation should map +x to +y, got (%f, %f)", sx, sy)
	}
}

func TestScreenToWorldRoundtrip(t *testing.T) {
	c := New(640, 360)
	c.TargetX, c.TargetY = 123.5, -77.25
	c.Rotation = 33
	c.SetZoom(1.75)

	cases := [][2]float32{
		{0, 0},
		{100, 200},
		{-350.5, 12.25},
		{9999, -9999},
	}
	for _, tc := range cases {
		sx, sy := c.WorldToScreen(tc[0], tc[1])
		wx, wy := c.ScreenToWorld(sx, sy)
		if !approx(wx, tc[0]) || !approx(wy, tc[1]) {
			t.Errorf("round trip of (%f, %f) gave (%f, %f)", tc[0], tc[1], wx, wy)
		}
	}
}

func TestPan(t *testing.T) {
	c := New(0, 0)
	c.SetZoom(2)
	c.Pan(100, 50)
	if !approx(c.TargetX, 50) || !approx(c.TargetY, 25) {
		t.Errorf("pan should scale by inverse zoom, got (%f, %f)", c.TargetX, c.TargetY)
	}
}

func TestZoomClamping(t *testing.T) {
	c := New(0, 0)
	c.SetZoom(1000)
	if c.Zoom != c.MaxZoom {
		t.Errorf("zoom not clamped to max: %f", c.Zoom)
	}
	c.SetZoom(0.0001)
	if c.Zoom != c.MinZoom {
		t.Errorf("zoom not clamped to min: %f", c.Zoom)
	}
	c.SetZoom(1)
	c.ZoomBy(0.5)
	if !approx(c.Zoom, 0.5) {
		t.Errorf("ZoomBy: %f", c.Zoom)
	}
}

func TestReset(t *testing.T) {
	c := New(100, 100)
	c.Apply(5, 6, 100, 100, 45, 3)
	c.Reset()
	if c.TargetX != 0 || c.TargetY != 0 || c.Rotation != 0 || c.Zoom != 1 {
		t.Errorf("reset left state behind: %+v", c)
	}
}

func TestIsVisible(t *testing.T) {
	c := New(400, 300)
	if !c.IsVisible(0, 0, 10, 800, 600) {
		t.Error("point at the center should be visible")
	}
	if c.IsVisible(1e6, 1e6, 10, 800, 600) {
		t.Error("far away point should be culled")
	}
}
