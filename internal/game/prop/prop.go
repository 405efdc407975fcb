// Package prop implements background scenery (clouds) that drifts with the
// player at a fraction of its speed to fake depth.
package prop

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/timepilot/internal/config"
	"github.com/zeusync/timepilot/internal/core/entity"
	"github.com/zeusync/timepilot/internal/core/physics"
)

var ErrNoVariants = errors.New("level defines no props")

// Prop is a parallax sprite. A relative velocity of 1 keeps it fixed on
// screen, 0 leaves it fixed in the world so the player flies past it.
type Prop struct {
	level   int
	variant int
	layer   int
	def     config.PropDef
	sprite  entity.Sprite

	pos           mgl64.Vec2
	heading       float64
	despawnRadius float64
	// pendingRemoval is sticky once set.
	pendingRemoval bool
}

var _ entity.Entity = (*Prop)(nil)

// New places variant `variant` of level `level` at pos.
func New(cfg *config.Config, level, variant int, pos mgl64.Vec2, despawnRadius float64) (*Prop, error) {
	lvl, err := cfg.Level(level)
	if err != nil {
		return nil, fmt.Errorf("new prop: %w", err)
	}
	def, err := lvl.Prop(variant)
	if err != nil {
		return nil, fmt.Errorf("new prop: %w", err)
	}
	if despawnRadius <= 0 {
		despawnRadius = lvl.Arena.DespawnRadius
	}

	return &Prop{
		level:         level,
		variant:       variant,
		layer:         def.Layer,
		def:           def,
		sprite:        entity.NewSprite(def.Src),
		pos:           pos,
		despawnRadius: despawnRadius,
	}, nil
}

// NewRandom picks one of the level's variants uniformly.
func NewRandom(rng *rand.Rand, cfg *config.Config, level int, pos mgl64.Vec2, despawnRadius float64) (*Prop, error) {
	lvl, err := cfg.Level(level)
	if err != nil {
		return nil, fmt.Errorf("new prop: %w", err)
	}
	if len(lvl.Props) == 0 {
		return nil, fmt.Errorf("%w: level %d", ErrNoVariants, level)
	}
	return New(cfg, level, rng.IntN(len(lvl.Props)), pos, despawnRadius)
}

func (p *Prop) Kind() entity.Kind { return entity.KindProp }

func (p *Prop) Level() int            { return p.level }
func (p *Prop) Variant() int          { return p.variant }
func (p *Prop) Layer() int            { return p.layer }
func (p *Prop) Position() mgl64.Vec2  { return p.pos }
func (p *Prop) PendingRemoval() bool  { return p.pendingRemoval }
func (p *Prop) Def() config.PropDef   { return p.def }
func (p *Prop) Sprite() entity.Sprite { return p.sprite }

// Advance drifts the prop along the frame's heading (or against it when the
// variant is reversed) at the frame's velocity scaled by the relative
// velocity, then marks it for removal if it drifted out of the arena.
func (p *Prop) Advance(frame entity.Frame) {
	heading := frame.Heading()
	if p.def.Reversed {
		heading = physics.Reverse(heading)
	}
	p.heading = physics.NormalizeHeading(heading)
	p.pos = physics.Step(p.pos, p.heading, frame.Velocity()*p.def.RelativeVelocity)

	if !p.pendingRemoval && physics.OutsideRadius(p.pos, frame.Position(), p.despawnRadius) {
		p.pendingRemoval = true
	}
}

func (p *Prop) RenderSelf(surface entity.Surface, frame entity.Frame) {
	origin := physics.ScreenOrigin(p.pos, frame.Position(), p.def.Width, p.def.Height)
	surface.RenderSprite(p.sprite, entity.SpriteFrame{
		FrameWidth:  p.def.Width,
		FrameHeight: p.def.Height,
		PosX:        origin[0],
		PosY:        origin[1],
	})
}

func (p *Prop) OutOfArena(frame entity.Frame, radius float64) bool {
	return p.pendingRemoval || physics.OutsideRadius(p.pos, frame.Position(), radius)
}

func (p *Prop) Describe() entity.Record {
	return entity.Record{
		Kind:           entity.KindProp,
		PosX:           p.pos[0],
		PosY:           p.pos[1],
		Heading:        p.heading,
		Width:          p.def.Width,
		Height:         p.def.Height,
		Level:          p.level,
		Variant:        p.variant,
		Layer:          p.layer,
		PendingRemoval: p.pendingRemoval,
	}
}
