package enemy

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
func (f frame) Heading() float64     { return 0 }
func (f frame) Velocity() float64    { return 5 }

type capture struct {
	sprite entity.Sprite
	frame  entity.SpriteFrame
}

func (c *capture) RenderSprite(s entity.Sprite, f entity.SpriteFrame) {
	c.sprite, c.frame = s, f
}

func levelOne(t *testing.T) config.Level {
	t.Helper()
	lvl, err := config.Default().Level(1)
	require.NoError(t, err)
	return lvl
}

func TestEnemyFliesStraight(t *testing.T) {
	e, err := New(levelOne(t), "basic", mgl64.Vec2{0, 0}, 90)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		e.Advance(frame{pos: mgl64.Vec2{float64(i), 0}})
	}
	assert.InDelta(t, 9, e.Position()[0], 1e-9)
	assert.InDelta(t, 0, e.Position()[1], 1e-9)
	assert.Equal(t, 90.0, e.Heading())
}

func TestEnemyRendersRotatedFrame(t *testing.T) {
	e, err := New(levelOne(t), "basic", mgl64.Vec2{16, 16}, 90)
	require.NoError(t, err)

	c := &capture{}
	e.RenderSelf(c, frame{})

	assert.Equal(t, "./sprites/enemies/basic/level1.png", c.sprite.Src)
	assert.Equal(t, entity.SpriteFrame{FrameWidth: 32, FrameHeight: 32, FrameX: 4}, c.frame)
}

func TestEnemyUnknownType(t *testing.T) {
	_, err := New(levelOne(t), "zeppelin", mgl64.Vec2{}, 0)
	assert.ErrorIs(t, err, config.ErrUnknownEnemy)
}

func TestEnemyLeavesArena(t *testing.T) {
	e, _ := New(levelOne(t), "basic", mgl64.Vec2{0, -499}, 0)
	f := frame{}
	assert.False(t, e.OutOfArena(f, 500))
	e.Advance(f)
	assert.True(t, e.OutOfArena(f, 500))

	rec := e.Describe()
	assert.Equal(t, entity.KindEnemy, rec.Kind)
	assert.Equal(t, 1, rec.Level)
}
