// Package bullet implements projectiles: fixed heading and speed from the
// moment they are fired, drawn as a flat coloured square.
package bullet

import (
	"errors"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/timepilot/internal/config"
	"github.com/zeusync/timepilot/internal/core/entity"
	"github.com/zeusync/timepilot/internal/core/physics"
)

var ErrInvalidProjectile = errors.New("projectile size must be positive")

type Bullet struct {
	pos      mgl64.Vec2
	heading  float64
	velocity float64
	size     int
	sprite   entity.Sprite
}

var _ entity.Entity = (*Bullet)(nil)

// New fires a bullet of the level's player projectile from pos.
func New(level config.Level, pos mgl64.Vec2, heading float64) (*Bullet, error) {
	return FromDef(level.Player.Projectile, pos, heading)
}

// FromDef builds a bullet from an explicit projectile definition.
func FromDef(def config.ProjectileDef, pos mgl64.Vec2, heading float64) (*Bullet, error) {
	if def.Size <= 0 {
		return nil, ErrInvalidProjectile
	}
	return &Bullet{
		pos:      pos,
		heading:  physics.NormalizeHeading(heading),
		velocity: def.Velocity,
		size:     def.Size,
		sprite:   entity.ColorSprite(def.Color),
	}, nil
}

func (b *Bullet) Kind() entity.Kind { return entity.KindBullet }

func (b *Bullet) Position() mgl64.Vec2 { return b.pos }
func (b *Bullet) Heading() float64     { return b.heading }
func (b *Bullet) Velocity() float64    { return b.velocity }

// Advance ignores the frame: bullets fly in world space.
func (b *Bullet) Advance(entity.Frame) {
	b.pos = physics.Step(b.pos, b.heading, b.velocity)
}

func (b *Bullet) RenderSelf(surface entity.Surface, frame entity.Frame) {
	origin := physics.ScreenOrigin(b.pos, frame.Position(), b.size, b.size)
	surface.RenderSprite(b.sprite, entity.SpriteFrame{
		FrameWidth:  b.size,
		FrameHeight: b.size,
		PosX:        origin[0],
		PosY:        origin[1],
	})
}

func (b *Bullet) OutOfArena(frame entity.Frame, radius float64) bool {
	return physics.OutsideRadius(b.pos, frame.Position(), radius)
}

func (b *Bullet) Describe() entity.Record {
	return entity.Record{
		Kind:    entity.KindBullet,
		PosX:    b.pos[0],
		PosY:    b.pos[1],
		Heading: b.heading,
		Width:   b.size,
		Height:  b.size,
	}
}
