// Package session composes one running game: the player, the three entity
// factories, the spawner and the scheduled work on the ticker.
package session

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/timepilot/internal/config"
	"github.com/zeusync/timepilot/internal/core/entity"
	"github.com/zeusync/timepilot/internal/core/events/bus"
	"github.com/zeusync/timepilot/internal/core/observability/log"
	"github.com/zeusync/timepilot/internal/core/ticker"
	"github.com/zeusync/timepilot/internal/game/bullet"
	"github.com/zeusync/timepilot/internal/game/enemy"
	"github.com/zeusync/timepilot/internal/game/player"
	"github.com/zeusync/timepilot/internal/game/prop"
	"github.com/zeusync/timepilot/internal/game/spawn"
	"github.com/zeusync/timepilot/internal/render"
)

// TopLayer is the first prop layer drawn above the aircraft.
const TopLayer = 2

// EventFrame is published on the bus after every presented render pass.
const EventFrame = "session.frame"

var (
	ErrAttached    = errors.New("session already attached to the ticker")
	ErrNotAttached = errors.New("session is not attached to the ticker")
)

// Snapshot is the full inspectable state at one tick.
type Snapshot struct {
	Tick    uint64          `msgpack:"tick" json:"tick"`
	Level   int             `msgpack:"level" json:"level"`
	Player  player.State    `msgpack:"player" json:"player"`
	Props   []entity.Record `msgpack:"props" json:"props"`
	Enemies []entity.Record `msgpack:"enemies" json:"enemies"`
	Bullets []entity.Record `msgpack:"bullets" json:"bullets"`
}

// Entities flattens the snapshot in draw order.
func (s Snapshot) Entities() []entity.Record {
	out := make([]entity.Record, 0, len(s.Props)+len(s.Enemies)+len(s.Bullets))
	out = append(out, s.Props...)
	out = append(out, s.Enemies...)
	return append(out, s.Bullets...)
}

type Session struct {
	cfg     *config.Config
	level   config.Level
	ticker  *ticker.Ticker
	canvas  render.Canvas
	bus     bus.EventBus
	logger  log.Log
	onFrame []func(tick uint64)

	player  *player.Player
	props   *entity.Factory[*prop.Prop]
	enemies *entity.Factory[*enemy.Enemy]
	bullets *entity.Factory[*bullet.Bullet]
	spawner *spawn.Spawner

	mu     sync.Mutex
	events []ticker.EventID
}

type Option func(*Session)

func WithLogger(l log.Log) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithBus shares a bus with the factories and publishes EventFrame.
func WithBus(b bus.EventBus) Option {
	return func(s *Session) { s.bus = b }
}

// WithFrameHook runs fn after every presented render pass, on the ticker
// goroutine.
func WithFrameHook(fn func(tick uint64)) Option {
	return func(s *Session) { s.onFrame = append(s.onFrame, fn) }
}

// New builds a session for cfg.StartLevel. Nothing runs until Attach.
func New(cfg *config.Config, tk *ticker.Ticker, canvas render.Canvas, opts ...Option) (*Session, error) {
	lvl, err := cfg.Level(cfg.StartLevel)
	if err != nil {
		return nil, err
	}

	s := &Session{
		cfg:    cfg,
		level:  lvl,
		ticker: tk,
		canvas: canvas,
		logger: log.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(log.Component("session"), log.Int("level", lvl.Number))

	s.player = player.New(cfg.Player, lvl, mgl64.Vec2{})

	common := []entity.Option{
		entity.WithDespawnRadius(lvl.Arena.DespawnRadius),
		entity.WithLogger(s.logger),
		entity.WithBus(s.bus),
		entity.WithTickSource(tk.Ticks),
	}
	if s.props, err = entity.NewFactory[*prop.Prop](entity.KindProp, s.player,
		append(common, entity.WithLimit(cfg.Limits.Props))...); err != nil {
		return nil, err
	}
	if s.enemies, err = entity.NewFactory[*enemy.Enemy](entity.KindEnemy, s.player,
		append(common, entity.WithLimit(cfg.Limits.Enemies))...); err != nil {
		return nil, err
	}
	if s.bullets, err = entity.NewFactory[*bullet.Bullet](entity.KindBullet, s.player,
		append(common, entity.WithLimit(cfg.Limits.Bullets))...); err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))
	s.spawner, err = spawn.New(cfg, lvl.Number, s.player,
		spawn.Factories{Props: s.props, Enemies: s.enemies, Bullets: s.bullets}, rng, s.logger)
	if err != nil {
		return nil, err
	}

	return s, nil
}

// Attach populates the arena and registers the session's work with the
// ticker. Within a tick the work runs in this order: player, props, enemies,
// bullets, spawners, render.
func (s *Session) Attach() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.events != nil {
		return ErrAttached
	}

	if _, err := s.spawner.Populate(); err != nil {
		return fmt.Errorf("populate arena: %w", err)
	}

	sched := s.cfg.Schedule
	add := func(cb ticker.Callback, period uint64) {
		s.events = append(s.events, s.ticker.AddSchedule(cb, period))
	}
	add(s.advancePlayer, sched.Player)
	add(repositionTask(s.props), sched.Reposition)
	add(repositionTask(s.enemies), sched.Reposition)
	add(repositionTask(s.bullets), sched.Reposition)
	add(s.spawner.SpawnProp, sched.Spawn)
	add(s.spawner.SpawnEnemies, sched.Spawn)
	add(s.render, sched.Render)

	s.logger.Info("Session attached", log.Int("events", len(s.events)))
	return nil
}

// Detach removes the session's work from the ticker. Entities are kept.
func (s *Session) Detach() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.events == nil {
		return ErrNotAttached
	}
	for _, id := range s.events {
		s.ticker.RemoveSchedule(id)
	}
	s.events = nil
	s.logger.Info("Session detached")
	return nil
}

// Steer sets the player's held turn direction.
func (s *Session) Steer(dir int) { s.player.Steer(dir) }

// Fire launches a player bullet.
func (s *Session) Fire() (entity.ID, error) { return s.spawner.Fire() }

func (s *Session) Player() *player.Player { return s.player }
func (s *Session) Level() config.Level    { return s.level }

func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		Tick:    s.ticker.Ticks(),
		Level:   s.level.Number,
		Player:  s.player.State(),
		Props:   s.props.Data(),
		Enemies: s.enemies.Data(),
		Bullets: s.bullets.Data(),
	}
}

func (s *Session) advancePlayer(uint64) error {
	s.player.Advance()
	return nil
}

func repositionTask[E entity.Entity](f *entity.Factory[E]) ticker.Callback {
	return func(uint64) error {
		f.Reposition()
		return nil
	}
}

// Render draws one pass: low props, enemies, bullets, the player, then the
// props on TopLayer and above.
func (s *Session) Render() {
	if s.canvas == nil {
		return
	}
	s.canvas.Begin()
	s.props.RenderIf(s.canvas, func(p *prop.Prop) bool { return p.Layer() < TopLayer })
	s.enemies.Render(s.canvas)
	s.bullets.Render(s.canvas)
	s.player.Render(s.canvas)
	s.props.RenderIf(s.canvas, func(p *prop.Prop) bool { return p.Layer() >= TopLayer })
	s.canvas.Present()
}

func (s *Session) render(tick uint64) error {
	s.Render()
	for _, fn := range s.onFrame {
		fn(tick)
	}
	if s.bus != nil {
		return s.bus.Publish(bus.NewEvent(EventFrame, "session", tick, nil))
	}
	return nil
}
