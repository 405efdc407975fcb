// Package physics holds the movement math shared by every entity kind:
// heading-based displacement, the arena exit test and camera projection.
//
// Headings are in degrees, 0 points up (towards negative Y) and values grow
// clockwise.
package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const degToRad = math.Pi / 180

// Displacement is the one-step offset for travelling at velocity along heading.
func Displacement(heading, velocity float64) mgl64.Vec2 {
	rad := heading * degToRad
	return mgl64.Vec2{math.Sin(rad) * velocity, -math.Cos(rad) * velocity}
}

// Step returns pos moved one step along heading.
func Step(pos mgl64.Vec2, heading, velocity float64) mgl64.Vec2 {
	return pos.Add(Displacement(heading, velocity))
}

// NormalizeHeading folds h into [0, 360).
func NormalizeHeading(h float64) float64 {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	return h
}

// Reverse points the opposite way.
func Reverse(h float64) float64 {
	return NormalizeHeading(h + 180)
}

// HeadingTo is the heading that travels from `from` towards `to`.
func HeadingTo(from, to mgl64.Vec2) float64 {
	d := to.Sub(from)
	return NormalizeHeading(math.Atan2(d[0], -d[1]) / degToRad)
}

// Distance is the Euclidean distance between a and b.
func Distance(a, b mgl64.Vec2) float64 {
	dx := b[0] - a[0]
	dy := b[1] - a[1]
	return math.Sqrt(dx*dx + dy*dy)
}

// OutsideRadius reports whether pos lies strictly further than radius from
// center. A point exactly on the circle is inside.
func OutsideRadius(pos, center mgl64.Vec2, radius float64) bool {
	return Distance(pos, center) > radius
}

// ScreenOrigin projects a world position into camera space and shifts it by
// half the sprite so the sprite is drawn centred on the position.
func ScreenOrigin(world, camera mgl64.Vec2, width, height int) mgl64.Vec2 {
	return world.Sub(camera).Sub(mgl64.Vec2{float64(width) / 2, float64(height) / 2})
}

// PointOnRing is the point radius away from center along heading.
func PointOnRing(center mgl64.Vec2, heading, radius float64) mgl64.Vec2 {
	return Step(center, heading, radius)
}

// RotationFrame picks the sprite-sheet column for heading on a sheet that
// holds `frames` evenly spaced rotations starting at 0°.
func RotationFrame(heading float64, frames int) int {
	if frames <= 1 {
		return 0
	}
	step := 360 / float64(frames)
	return int(math.Round(NormalizeHeading(heading)/step)) % frames
}
