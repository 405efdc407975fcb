// Package enemy implements hostile aircraft. They fly a straight line from
// their spawn point; steering and firing are not simulated.
package enemy

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/timepilot/internal/config"
	"github.com/zeusync/timepilot/internal/core/entity"
	"github.com/zeusync/timepilot/internal/core/physics"
)

// RotationFrames is the number of headings on an enemy sprite sheet.
const RotationFrames = 16

type Enemy struct {
	name    string
	level   int
	def     config.EnemyDef
	sprite  entity.Sprite
	pos     mgl64.Vec2
	heading float64
}

var _ entity.Entity = (*Enemy)(nil)

// New creates an enemy of type name flying along heading.
func New(level config.Level, name string, pos mgl64.Vec2, heading float64) (*Enemy, error) {
	def, err := level.Enemy(name)
	if err != nil {
		return nil, fmt.Errorf("new enemy: %w", err)
	}
	return &Enemy{
		name:    name,
		level:   level.Number,
		def:     def,
		sprite:  entity.NewSprite(def.Src),
		pos:     pos,
		heading: physics.NormalizeHeading(heading),
	}, nil
}

func (e *Enemy) Kind() entity.Kind    { return entity.KindEnemy }
func (e *Enemy) Name() string         { return e.name }
func (e *Enemy) Position() mgl64.Vec2 { return e.pos }
func (e *Enemy) Heading() float64     { return e.heading }

func (e *Enemy) Advance(entity.Frame) {
	e.pos = physics.Step(e.pos, e.heading, e.def.Velocity)
}

func (e *Enemy) RenderSelf(surface entity.Surface, frame entity.Frame) {
	origin := physics.ScreenOrigin(e.pos, frame.Position(), e.def.Width, e.def.Height)
	sf := entity.SpriteFrame{
		FrameWidth:  e.def.Width,
		FrameHeight: e.def.Height,
		PosX:        origin[0],
		PosY:        origin[1],
	}
	if e.def.CanRotate {
		sf.FrameX = physics.RotationFrame(e.heading, RotationFrames)
	}
	surface.RenderSprite(e.sprite, sf)
}

func (e *Enemy) OutOfArena(frame entity.Frame, radius float64) bool {
	return physics.OutsideRadius(e.pos, frame.Position(), radius)
}

func (e *Enemy) Describe() entity.Record {
	return entity.Record{
		Kind:    entity.KindEnemy,
		PosX:    e.pos[0],
		PosY:    e.pos[1],
		Heading: e.heading,
		Width:   e.def.Width,
		Height:  e.def.Height,
		Level:   e.level,
	}
}
