package prop

import (
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/timepilot/internal/config"
	"github.com/zeusync/timepilot/internal/core/entity"
)

type frame struct {
	pos     mgl64.Vec2
	heading float64
	speed   float64
}

func (f *frame) Position() mgl64.Vec2 { return f.pos }
func (f *frame) Heading() float64     { return f.heading }
func (f *frame) Velocity() float64    { return f.speed }

type capture struct {
	frames []entity.SpriteFrame
}

func (c *capture) RenderSprite(_ entity.Sprite, f entity.SpriteFrame) {
	c.frames = append(c.frames, f)
}

func TestParallaxFollowsPlayerAtRelativeSpeed(t *testing.T) {
	cfg := config.Default()
	p, err := New(cfg, 1, 0, mgl64.Vec2{0, 0}, 500)
	require.NoError(t, err)
	require.Equal(t, 0.5, p.Def().RelativeVelocity)

	f := &frame{heading: 0, speed: 5}
	for i := 0; i < 10; i++ {
		p.Advance(f)
	}

	assert.InDelta(t, 0, p.Position()[0], 1e-9)
	assert.InDelta(t, -25, p.Position()[1], 1e-9)
}

func TestReversedVariantDriftsAgainstHeading(t *testing.T) {
	doc := `
levels:
  1:
    props:
      - src: ./sprites/props/cloud1.png
        width: 32
        height: 18
        relative_velocity: 0.5
        layer: 1
        reversed: true
`
	cfg, err := config.Load(strings.NewReader(doc))
	require.NoError(t, err)

	p, err := New(cfg, 1, 0, mgl64.Vec2{0, 0}, 500)
	require.NoError(t, err)

	p.Advance(&frame{heading: 90, speed: 5})
	assert.InDelta(t, -2.5, p.Position()[0], 1e-9)
	assert.InDelta(t, 0, p.Position()[1], 1e-9)
	assert.Equal(t, 270.0, p.Describe().Heading)
}

func TestStationaryVariantStaysInWorld(t *testing.T) {
	p, err := New(config.Default(), 1, 2, mgl64.Vec2{40, 40}, 500)
	require.NoError(t, err)

	p.Advance(&frame{heading: 45, speed: 5})
	assert.Equal(t, mgl64.Vec2{40, 40}, p.Position())
}

func TestLayerComesFromVariantAndNeverChanges(t *testing.T) {
	cfg := config.Default()
	p, err := New(cfg, 1, 2, mgl64.Vec2{}, 500)
	require.NoError(t, err)
	assert.Equal(t, 2, p.Layer())

	f := &frame{heading: 10, speed: 5}
	for i := 0; i < 10; i++ {
		p.Advance(f)
		f.heading += 30
	}
	assert.Equal(t, 2, p.Layer())
	assert.Equal(t, 2, p.Variant())
	assert.Equal(t, 1, p.Level())
}

func TestPendingRemovalIsSticky(t *testing.T) {
	cfg := config.Default()
	p, err := New(cfg, 1, 2, mgl64.Vec2{0, 0}, 100)
	require.NoError(t, err)

	f := &frame{pos: mgl64.Vec2{0, 150}, speed: 5}
	p.Advance(f)
	require.True(t, p.PendingRemoval())

	// the player coming back does not rescue it
	f.pos = mgl64.Vec2{0, 0}
	p.Advance(f)
	assert.True(t, p.PendingRemoval())
	assert.True(t, p.OutOfArena(f, 500))
	assert.True(t, p.Describe().PendingRemoval)
}

func TestOutOfArenaDoesNotMutate(t *testing.T) {
	p, err := New(config.Default(), 1, 0, mgl64.Vec2{600, 0}, 500)
	require.NoError(t, err)

	f := &frame{}
	assert.True(t, p.OutOfArena(f, 500))
	assert.False(t, p.PendingRemoval())
	assert.False(t, p.OutOfArena(f, 700))
}

func TestRenderIsCameraRelativeAndCentred(t *testing.T) {
	p, err := New(config.Default(), 1, 1, mgl64.Vec2{130, 64}, 500)
	require.NoError(t, err)

	c := &capture{}
	f := &frame{pos: mgl64.Vec2{100, 50}}
	p.RenderSelf(c, f)
	p.RenderSelf(c, f)

	require.Len(t, c.frames, 2)
	assert.Equal(t, c.frames[0], c.frames[1])
	assert.Equal(t, entity.SpriteFrame{FrameWidth: 60, FrameHeight: 28, PosX: 0, PosY: 0}, c.frames[0])
}

func TestUnknownLevelOrVariantFailsFast(t *testing.T) {
	cfg := config.Default()

	_, err := New(cfg, 1, 3, mgl64.Vec2{}, 500)
	assert.ErrorIs(t, err, config.ErrUnknownVariant)

	_, err = New(cfg, 9, 0, mgl64.Vec2{}, 500)
	assert.ErrorIs(t, err, config.ErrUnknownLevel)

	_, err = NewRandom(rand.New(rand.NewPCG(1, 2)), cfg, 9, mgl64.Vec2{}, 500)
	assert.ErrorIs(t, err, config.ErrUnknownLevel)
}

func TestNewRandomIsDeterministicPerSeed(t *testing.T) {
	cfg := config.Default()
	pick := func() []int {
		rng := rand.New(rand.NewPCG(7, 7))
		var out []int
		for i := 0; i < 20; i++ {
			p, err := NewRandom(rng, cfg, 1, mgl64.Vec2{}, 0)
			require.NoError(t, err)
			out = append(out, p.Variant())
		}
		return out
	}

	first := pick()
	assert.Equal(t, first, pick())
	for _, v := range first {
		assert.True(t, v >= 0 && v < 3)
	}
}
