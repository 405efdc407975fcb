package bullet

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/timepilot/internal/config"
	"github.com/zeusync/timepilot/internal/core/entity"
)

type frame struct{ pos mgl64.Vec2 }

func (f frame) Position() mgl64.Vec2 { return f.pos }
func (f frame) Heading() float64     { return 90 }
func (f frame) Velocity() float64    { return 5 }

type capture struct {
	sprite entity.Sprite
	frame  entity.SpriteFrame
	calls  int
}

func (c *capture) RenderSprite(s entity.Sprite, f entity.SpriteFrame) {
	c.sprite, c.frame = s, f
	c.calls++
}

func levelOne(t *testing.T) config.Level {
	t.Helper()
	lvl, err := config.Default().Level(1)
	require.NoError(t, err)
	return lvl
}

func TestBulletKeepsHeadingAndSpeed(t *testing.T) {
	b, err := New(levelOne(t), mgl64.Vec2{0, 0}, 0)
	require.NoError(t, err)

	// the frame turning must not steer the bullet
	b.Advance(frame{})
	b.Advance(frame{pos: mgl64.Vec2{100, 100}})

	assert.InDelta(t, 0, b.Position()[0], 1e-9)
	assert.InDelta(t, -14, b.Position()[1], 1e-9)
	assert.Equal(t, 7.0, b.Velocity())
	assert.Equal(t, 0.0, b.Heading())
}

func TestBulletRendersCentredColourSquare(t *testing.T) {
	b, err := New(levelOne(t), mgl64.Vec2{110, 50}, 0)
	require.NoError(t, err)

	c := &capture{}
	b.RenderSelf(c, frame{pos: mgl64.Vec2{100, 50}})

	assert.Equal(t, entity.ColorSprite("#FFF"), c.sprite)
	assert.Equal(t, entity.SpriteFrame{FrameWidth: 4, FrameHeight: 4, PosX: 8, PosY: -2}, c.frame)
	assert.Equal(t, mgl64.Vec2{110, 50}, b.Position())
}

func TestBulletExitBoundary(t *testing.T) {
	f := frame{pos: mgl64.Vec2{10, 10}}

	on, _ := FromDef(config.ProjectileDef{Size: 4}, mgl64.Vec2{510, 10}, 0)
	assert.False(t, on.OutOfArena(f, 500))

	past, _ := FromDef(config.ProjectileDef{Size: 4}, mgl64.Vec2{510.01, 10}, 0)
	assert.True(t, past.OutOfArena(f, 500))
}

func TestBulletRejectsEmptyProjectile(t *testing.T) {
	_, err := FromDef(config.ProjectileDef{Velocity: 3}, mgl64.Vec2{}, 0)
	assert.ErrorIs(t, err, ErrInvalidProjectile)
}

func TestBulletRecord(t *testing.T) {
	b, _ := FromDef(config.ProjectileDef{Size: 6, Velocity: 5}, mgl64.Vec2{1, 2}, -90)
	rec := b.Describe()
	assert.Equal(t, entity.KindBullet, rec.Kind)
	assert.Equal(t, 270.0, rec.Heading)
	assert.Equal(t, mgl64.Vec2{1, 2}, rec.Position())
	assert.Equal(t, 6, rec.Width)
}
