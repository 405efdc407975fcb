// Package spawn places new props and enemies on the spawn ring ahead of the
// player and fires the player's bullets.
package spawn

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/timepilot/internal/config"
	"github.com/zeusync/timepilot/internal/core/entity"
	"github.com/zeusync/timepilot/internal/core/observability/log"
	"github.com/zeusync/timepilot/internal/core/physics"
	"github.com/zeusync/timepilot/internal/game/bullet"
	"github.com/zeusync/timepilot/internal/game/enemy"
	"github.com/zeusync/timepilot/internal/game/prop"
)

// PointInArc is a random point on the circle of radius around center, no more
// than arc/2 degrees either side of heading.
func PointInArc(rng *rand.Rand, center mgl64.Vec2, heading, radius, arc float64) mgl64.Vec2 {
	offset := (rng.Float64() - 0.5) * arc
	return physics.PointOnRing(center, heading+offset, radius)
}

// PointInDisc is a uniformly distributed random point within radius of center.
func PointInDisc(rng *rand.Rand, center mgl64.Vec2, radius float64) mgl64.Vec2 {
	return physics.PointOnRing(center, rng.Float64()*360, radius*math.Sqrt(rng.Float64()))
}

// Factories groups the collections a Spawner fills.
type Factories struct {
	Props   *entity.Factory[*prop.Prop]
	Enemies *entity.Factory[*enemy.Enemy]
	Bullets *entity.Factory[*bullet.Bullet]
}

type Spawner struct {
	cfg    *config.Config
	level  config.Level
	frame  entity.Frame
	rng    *rand.Rand
	f      Factories
	logger log.Log
}

func New(cfg *config.Config, level int, frame entity.Frame, f Factories, rng *rand.Rand, logger log.Log) (*Spawner, error) {
	lvl, err := cfg.Level(level)
	if err != nil {
		return nil, err
	}
	if f.Props == nil || f.Enemies == nil || f.Bullets == nil {
		return nil, errors.New("spawner needs all three factories")
	}
	if logger == nil {
		logger = log.NewNop()
	}
	return &Spawner{
		cfg:    cfg,
		level:  lvl,
		frame:  frame,
		rng:    rng,
		f:      f,
		logger: logger.With(log.Component("spawner"), log.Int("level", level)),
	}, nil
}

// Populate scatters props over the whole arena until the prop limit is
// reached, so the first frame is not empty. It returns how many were placed
// and does nothing for an uncapped prop factory.
func (s *Spawner) Populate() (int, error) {
	placed := 0
	if s.f.Props.Limit() == 0 {
		return 0, nil
	}
	for !full(s.f.Props) {
		pos := PointInDisc(s.rng, s.frame.Position(), s.level.Arena.SpawningRadius)
		if _, err := s.spawnProp(pos); err != nil {
			return placed, err
		}
		placed++
	}
	return placed, nil
}

// SpawnProp adds one prop on the spawn ring unless the cap is reached.
func (s *Spawner) SpawnProp(uint64) error {
	if full(s.f.Props) {
		return nil
	}
	pos := PointInArc(s.rng, s.frame.Position(), s.frame.Heading(),
		s.level.Arena.SpawningRadius, s.level.Arena.SpawningArc)
	_, err := s.spawnProp(pos)
	return err
}

func (s *Spawner) spawnProp(pos mgl64.Vec2) (entity.ID, error) {
	p, err := prop.NewRandom(s.rng, s.cfg, s.level.Number, pos, s.level.Arena.DespawnRadius)
	if err != nil {
		return 0, err
	}
	return s.f.Props.Spawn(p)
}

// SpawnEnemies rolls each enemy type's spawn chance and launches the winners
// from the spawn ring towards the player's current position.
func (s *Spawner) SpawnEnemies(tick uint64) error {
	var errs []error
	for _, name := range s.level.EnemyNames() {
		if full(s.f.Enemies) {
			break
		}
		def, _ := s.level.Enemy(name)
		if s.rng.Float64() >= def.SpawnChance {
			continue
		}

		target := s.frame.Position()
		pos := PointInArc(s.rng, target, s.frame.Heading(),
			s.level.Arena.SpawningRadius, s.level.Arena.SpawningArc)
		e, err := enemy.New(s.level, name, pos, physics.HeadingTo(pos, target))
		if err != nil {
			errs = append(errs, err)
			continue
		}
		id, err := s.f.Enemies.Spawn(e)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		s.logger.Debug("Enemy launched",
			log.String("type", name),
			log.Uint64("id", uint64(id)),
			log.Tick(tick))
	}
	return errors.Join(errs...)
}

// Fire launches a player bullet from the frame's position along its heading.
func (s *Spawner) Fire() (entity.ID, error) {
	b, err := bullet.New(s.level, s.frame.Position(), s.frame.Heading())
	if err != nil {
		return 0, err
	}
	id, err := s.f.Bullets.Spawn(b)
	if err != nil {
		return 0, fmt.Errorf("fire: %w", err)
	}
	return id, nil
}

func full[E entity.Entity](f *entity.Factory[E]) bool {
	return f.Limit() > 0 && f.Count() >= f.Limit()
}
