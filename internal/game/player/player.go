// Package player implements the player aircraft, which doubles as the
// reference frame every other entity is simulated and drawn against.
package player

import (
	"sync"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/timepilot/internal/config"
	"github.com/zeusync/timepilot/internal/core/entity"
	"github.com/zeusync/timepilot/internal/core/physics"
)

const (
	// TurnStep is the heading change of one turn, in degrees.
	TurnStep = 22.5
	// RotationFrames is the number of headings on the player sprite sheet.
	RotationFrames = 16
)

// Steering directions accepted by Steer.
const (
	Left     = -1
	Straight = 0
	Right    = 1
)

// State is a snapshot of the player.
type State struct {
	PosX     float64 `msgpack:"x" json:"posX"`
	PosY     float64 `msgpack:"y" json:"posY"`
	Heading  float64 `msgpack:"h" json:"heading"`
	Velocity float64 `msgpack:"v" json:"velocity"`
}

// Player is safe for concurrent use: input handlers call Steer while the
// ticker goroutine calls Advance.
type Player struct {
	sprite       entity.Sprite
	width        int
	height       int
	turnInterval uint64

	mu        sync.RWMutex
	pos       mgl64.Vec2
	heading   float64
	velocity  float64
	steer     int
	turnTicks uint64
}

var _ entity.Frame = (*Player)(nil)

func New(def config.SpriteDef, level config.Level, start mgl64.Vec2) *Player {
	interval := level.Player.TurnInterval
	if interval == 0 {
		interval = 1
	}
	return &Player{
		sprite:       entity.NewSprite(def.Src),
		width:        def.Width,
		height:       def.Height,
		turnInterval: interval,
		pos:          start,
		velocity:     level.Player.Velocity,
	}
}

func (p *Player) Position() mgl64.Vec2 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.pos
}

func (p *Player) Heading() float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.heading
}

func (p *Player) Velocity() float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.velocity
}

// Steer sets the turn direction held until the next call. Values are
// clamped to Left, Straight or Right.
func (p *Player) Steer(dir int) {
	switch {
	case dir < 0:
		dir = Left
	case dir > 0:
		dir = Right
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if dir != p.steer {
		p.turnTicks = 0
	}
	p.steer = dir
}

// Advance runs one tick: a held turn changes the heading by TurnStep on the
// first tick and then once every turn interval, and the player moves forward.
func (p *Player) Advance() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.steer != Straight {
		if p.turnTicks == 0 {
			p.heading = physics.NormalizeHeading(p.heading + float64(p.steer)*TurnStep)
		}
		p.turnTicks = (p.turnTicks + 1) % p.turnInterval
	}
	p.pos = physics.Step(p.pos, p.heading, p.velocity)
}

// Render draws the player at the centre of the camera.
func (p *Player) Render(surface entity.Surface) {
	p.mu.RLock()
	heading := p.heading
	p.mu.RUnlock()

	surface.RenderSprite(p.sprite, entity.SpriteFrame{
		FrameWidth:  p.width,
		FrameHeight: p.height,
		FrameX:      physics.RotationFrame(heading, RotationFrames),
		PosX:        -float64(p.width) / 2,
		PosY:        -float64(p.height) / 2,
	})
}

func (p *Player) State() State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return State{PosX: p.pos[0], PosY: p.pos[1], Heading: p.heading, Velocity: p.velocity}
}
