package spawn

import (
	"math/rand/v2"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/timepilot/internal/config"
	"github.com/zeusync/timepilot/internal/core/entity"
	"github.com/zeusync/timepilot/internal/core/physics"
	"github.com/zeusync/timepilot/internal/game/bullet"
	"github.com/zeusync/timepilot/internal/game/enemy"
	"github.com/zeusync/timepilot/internal/game/prop"
)

type frame struct {
	pos     mgl64.Vec2
	heading float64
}

func (f frame) Position() mgl64.Vec2 { return f.pos }
func (f frame) Heading() float64     { return f.heading }
func (f frame) Velocity() float64    { return 5 }

func newSpawner(t *testing.T, cfg *config.Config, fr entity.Frame, seed uint64) (*Spawner, Factories) {
	t.Helper()
	props, err := entity.NewFactory[*prop.Prop](entity.KindProp, fr, entity.WithLimit(cfg.Limits.Props))
	require.NoError(t, err)
	enemies, err := entity.NewFactory[*enemy.Enemy](entity.KindEnemy, fr, entity.WithLimit(cfg.Limits.Enemies))
	require.NoError(t, err)
	bullets, err := entity.NewFactory[*bullet.Bullet](entity.KindBullet, fr, entity.WithLimit(2))
	require.NoError(t, err)

	f := Factories{Props: props, Enemies: enemies, Bullets: bullets}
	s, err := New(cfg, 1, fr, f, rand.New(rand.NewPCG(seed, seed)), nil)
	require.NoError(t, err)
	return s, f
}

func TestPointInArcStaysOnRingWithinArc(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 1))
	center := mgl64.Vec2{100, -40}
	for i := 0; i < 200; i++ {
		p := PointInArc(rng, center, 350, 450, 90)
		assert.InDelta(t, 450, physics.Distance(center, p), 1e-6)

		h := physics.HeadingTo(center, p)
		diff := physics.NormalizeHeading(h-350+180) - 180
		assert.LessOrEqual(t, diff, 45.0+1e-9)
		assert.GreaterOrEqual(t, diff, -45.0-1e-9)
	}
}

func TestPointInDiscStaysInside(t *testing.T) {
	rng := rand.New(rand.NewPCG(2, 2))
	for i := 0; i < 200; i++ {
		p := PointInDisc(rng, mgl64.Vec2{}, 450)
		assert.LessOrEqual(t, physics.Distance(mgl64.Vec2{}, p), 450+1e-9)
	}
}

func TestPropsAreCappedAtLimit(t *testing.T) {
	cfg := config.Default()
	s, f := newSpawner(t, cfg, frame{}, 3)

	for i := 0; i < 50; i++ {
		require.NoError(t, s.SpawnProp(uint64(i)))
	}
	assert.Equal(t, 20, f.Props.Count())

	for _, rec := range f.Props.Data() {
		assert.InDelta(t, 450, rec.Position().Len(), 1e-6)
	}
}

func TestPopulateFillsArena(t *testing.T) {
	s, f := newSpawner(t, config.Default(), frame{}, 4)
	n, err := s.Populate()
	require.NoError(t, err)
	assert.Equal(t, 20, n)
	assert.Equal(t, 20, f.Props.Count())

	n, err = s.Populate()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestEnemiesHeadForThePlayer(t *testing.T) {
	cfg := config.Default()
	lvl := cfg.Levels[1]
	basic := lvl.Enemies["basic"]
	basic.SpawnChance = 1
	lvl.Enemies = map[string]config.EnemyDef{"basic": basic}
	cfg.Levels[1] = lvl

	fr := frame{pos: mgl64.Vec2{30, 30}, heading: 90}
	s, f := newSpawner(t, cfg, fr, 5)

	require.NoError(t, s.SpawnEnemies(10))
	require.Equal(t, 1, f.Enemies.Count())

	rec := f.Enemies.Data()[0]
	assert.InDelta(t, 450, physics.Distance(fr.pos, rec.Position()), 1e-6)
	assert.InDelta(t, physics.HeadingTo(rec.Position(), fr.pos), rec.Heading, 1e-9)

	for i := 0; i < 30; i++ {
		require.NoError(t, s.SpawnEnemies(uint64(i)))
	}
	assert.Equal(t, cfg.Limits.Enemies, f.Enemies.Count())
}

func TestEnemiesNeverSpawnWithZeroChance(t *testing.T) {
	cfg := config.Default()
	lvl := cfg.Levels[1]
	basic := lvl.Enemies["basic"]
	basic.SpawnChance = 0
	lvl.Enemies = map[string]config.EnemyDef{"basic": basic}
	cfg.Levels[1] = lvl

	s, f := newSpawner(t, cfg, frame{}, 6)
	for i := 0; i < 100; i++ {
		require.NoError(t, s.SpawnEnemies(uint64(i)))
	}
	assert.Zero(t, f.Enemies.Count())
}

func TestFireUsesPlayerPositionAndHeading(t *testing.T) {
	fr := frame{pos: mgl64.Vec2{12, 34}, heading: 45}
	s, f := newSpawner(t, config.Default(), fr, 7)

	id, err := s.Fire()
	require.NoError(t, err)
	b, ok := f.Bullets.Get(id)
	require.True(t, ok)
	assert.Equal(t, mgl64.Vec2{12, 34}, b.Position())
	assert.Equal(t, 45.0, b.Heading())
	assert.Equal(t, 7.0, b.Velocity())

	_, err = s.Fire()
	require.NoError(t, err)
	_, err = s.Fire()
	assert.ErrorIs(t, err, entity.ErrLimitReached)
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	fr := frame{}
	props, _ := entity.NewFactory[*prop.Prop](entity.KindProp, fr)
	enemies, _ := entity.NewFactory[*enemy.Enemy](entity.KindEnemy, fr)
	bullets, _ := entity.NewFactory[*bullet.Bullet](entity.KindBullet, fr)

	_, err := New(config.Default(), 4, fr, Factories{props, enemies, bullets}, rand.New(rand.NewPCG(0, 0)), nil)
	assert.ErrorIs(t, err, config.ErrUnknownLevel)

	_, err = New(config.Default(), 1, fr, Factories{Props: props}, rand.New(rand.NewPCG(0, 0)), nil)
	assert.Error(t, err)
}
