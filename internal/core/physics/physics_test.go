package physics

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
)

const eps = 1e-9

func assertVec(t *testing.T, want, got mgl64.Vec2) {
	t.Helper()
	assert.InDelta(t, want[0], got[0], eps, "x")
	assert.InDelta(t, want[1], got[1], eps, "y")
}

func TestDisplacementCompass(t *testing.T) {
	assertVec(t, mgl64.Vec2{0, -10}, Displacement(0, 10))
	assertVec(t, mgl64.Vec2{10, 0}, Displacement(90, 10))
	assertVec(t, mgl64.Vec2{0, 10}, Displacement(180, 10))
	assertVec(t, mgl64.Vec2{-10, 0}, Displacement(270, 10))
	assertVec(t, mgl64.Vec2{0, 0}, Displacement(123, 0))
}

func TestStepAccumulates(t *testing.T) {
	pos := mgl64.Vec2{100, 100}
	for i := 0; i < 10; i++ {
		pos = Step(pos, 90, 2.5)
	}
	assertVec(t, mgl64.Vec2{125, 100}, pos)
}

func TestNormalizeAndReverse(t *testing.T) {
	assert.InDelta(t, 0, NormalizeHeading(360), eps)
	assert.InDelta(t, 350, NormalizeHeading(-10), eps)
	assert.InDelta(t, 45, NormalizeHeading(765), eps)
	assert.InDelta(t, 180, Reverse(0), eps)
	assert.InDelta(t, 90, Reverse(270), eps)
}

func TestHeadingTo(t *testing.T) {
	origin := mgl64.Vec2{0, 0}
	assert.InDelta(t, 0, HeadingTo(origin, mgl64.Vec2{0, -5}), eps)
	assert.InDelta(t, 90, HeadingTo(origin, mgl64.Vec2{5, 0}), eps)
	assert.InDelta(t, 180, HeadingTo(origin, mgl64.Vec2{0, 5}), eps)
	assert.InDelta(t, 270, HeadingTo(origin, mgl64.Vec2{-5, 0}), eps)
}

func TestExitBoundary(t *testing.T) {
	player := mgl64.Vec2{0, 0}
	assert.False(t, OutsideRadius(mgl64.Vec2{500, 0}, player, 500))
	assert.True(t, OutsideRadius(mgl64.Vec2{500.01, 0}, player, 500))
	assert.False(t, OutsideRadius(mgl64.Vec2{300, 400}, player, 500))
	assert.True(t, OutsideRadius(mgl64.Vec2{300, 400.001}, player, 500))
}

func TestScreenOriginCentresSprite(t *testing.T) {
	got := ScreenOrigin(mgl64.Vec2{110, 220}, mgl64.Vec2{100, 200}, 32, 18)
	assertVec(t, mgl64.Vec2{-6, 11}, got)
}

func TestPointOnRing(t *testing.T) {
	got := PointOnRing(mgl64.Vec2{10, 10}, 90, 450)
	assertVec(t, mgl64.Vec2{460, 10}, got)
	assert.InDelta(t, 450, Distance(mgl64.Vec2{10, 10}, got), eps)
}

func TestRotationFrame(t *testing.T) {
	assert.Equal(t, 0, RotationFrame(0, 16))
	assert.Equal(t, 1, RotationFrame(22.5, 16))
	assert.Equal(t, 4, RotationFrame(90, 16))
	assert.Equal(t, 0, RotationFrame(355, 16))
	assert.Equal(t, 15, RotationFrame(-22.5, 16))
	assert.Equal(t, 0, RotationFrame(123, 1))
}
