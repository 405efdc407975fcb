package ebitensurface

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zeusync/timepilot/internal/core/entity"
)

func TestPassIsShownOnlyAfterPresent(t *testing.T) {
	s := New(nil, nil)
	cloud := entity.NewSprite("./sprites/props/cloud1.png")

	s.Begin()
	s.RenderSprite(cloud, entity.SpriteFrame{FrameWidth: 32})
	assert.Empty(t, s.Shown())

	s.Present()
	assert.Len(t, s.Shown(), 1)

	// the next pass replaces, not appends
	s.Begin()
	s.RenderSprite(cloud, entity.SpriteFrame{PosX: 1})
	s.RenderSprite(cloud, entity.SpriteFrame{PosX: 2})
	assert.Len(t, s.Shown(), 1)
	s.Present()
	shown := s.Shown()
	assert.Len(t, shown, 2)
	assert.Equal(t, 2.0, shown[1].Frame.PosX)
}

func TestSourceRectSelectsSheetCell(t *testing.T) {
	r := SourceRect(entity.SpriteFrame{FrameWidth: 32, FrameHeight: 32, FrameX: 4, FrameY: 1})
	assert.Equal(t, image.Rect(128, 32, 160, 64), r)
}

func TestDestinationIsCentred(t *testing.T) {
	x, y := Destination(entity.SpriteFrame{PosX: -16, PosY: -16}, 640, 480)
	assert.Equal(t, 304.0, x)
	assert.Equal(t, 224.0, y)
}

func TestSteerDirection(t *testing.T) {
	assert.Equal(t, -1, SteerDirection(true, false))
	assert.Equal(t, 1, SteerDirection(false, true))
	assert.Equal(t, 0, SteerDirection(true, true))
	assert.Equal(t, 0, SteerDirection(false, false))
}

func TestSetBackground(t *testing.T) {
	s := New(nil, nil)
	s.SetBackground("#007")
	assert.Equal(t, uint8(0x77), s.background.B)
	s.SetBackground("nope")
	assert.Equal(t, uint8(0x77), s.background.B)
}
