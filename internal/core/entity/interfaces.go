package entity

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/go-gl/mathgl/mgl64"
)

// ID identifies a live entity within its factory. IDs are assigned in
// creation order and are never reused, so they stay valid across removals.
type ID uint64

type Kind uint8

const (
	KindBullet Kind = iota + 1
	KindProp
	KindEnemy
)

func (k Kind) String() string {
	switch k {
	case KindBullet:
		return "bullet"
	case KindProp:
		return "prop"
	case KindEnemy:
		return "enemy"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Frame is the moving reference frame entities are simulated against: the
// player. Entities read it and never modify it.
type Frame interface {
	Position() mgl64.Vec2
	// Heading in degrees, 0 up, clockwise.
	Heading() float64
	// Velocity is the forward speed per tick.
	Velocity() float64
}

// Sprite is a handle to an image (or a flat colour) every surface can resolve.
type Sprite struct {
	ID  uint64 `msgpack:"id" json:"id"`
	Src string `msgpack:"src" json:"src"`
}

// NewSprite derives a stable handle from the sprite source.
func NewSprite(src string) Sprite {
	return Sprite{ID: xxhash.Sum64String(src), Src: src}
}

// ColorSprite is the handle for a flat rectangle of the given colour.
func ColorSprite(color string) Sprite {
	return NewSprite("color:" + color)
}

// SpriteFrame describes the source crop of a sprite sheet and where to blit
// it on screen. FrameX/FrameY count frames, not pixels.
type SpriteFrame struct {
	FrameWidth  int     `msgpack:"fw" json:"frameWidth"`
	FrameHeight int     `msgpack:"fh" json:"frameHeight"`
	FrameX      int     `msgpack:"fx" json:"frameX"`
	FrameY      int     `msgpack:"fy" json:"frameY"`
	PosX        float64 `msgpack:"x" json:"posX"`
	PosY        float64 `msgpack:"y" json:"posY"`
}

// Surface accepts draw commands.
type Surface interface {
	RenderSprite(sprite Sprite, frame SpriteFrame)
}

// Entity is the lifecycle contract shared by bullets, props and enemies.
type Entity interface {
	Kind() Kind
	// Advance moves the entity one tick relative to frame.
	Advance(frame Frame)
	// RenderSelf draws the entity camera-relative to frame. It must not
	// change simulation state.
	RenderSelf(surface Surface, frame Frame)
	// OutOfArena reports whether the entity is further than radius from the
	// frame. It must not change state.
	OutOfArena(frame Frame, radius float64) bool
	Describe() Record
}

// Record is an inspectable snapshot of one entity.
type Record struct {
	ID             ID      `msgpack:"id" json:"id"`
	Kind           Kind    `msgpack:"kind" json:"kind"`
	PosX           float64 `msgpack:"x" json:"posX"`
	PosY           float64 `msgpack:"y" json:"posY"`
	Heading        float64 `msgpack:"h" json:"heading"`
	Width          int     `msgpack:"w" json:"width"`
	Height         int     `msgpack:"hgt" json:"height"`
	Level          int     `msgpack:"lvl,omitempty" json:"level,omitempty"`
	Variant        int     `msgpack:"var,omitempty" json:"variant,omitempty"`
	Layer          int     `msgpack:"layer,omitempty" json:"layer,omitempty"`
	PendingRemoval bool    `msgpack:"rm,omitempty" json:"pendingRemoval,omitempty"`
}

// Position returns the record's coordinates as a vector.
func (r Record) Position() mgl64.Vec2 {
	return mgl64.Vec2{r.PosX, r.PosY}
}
