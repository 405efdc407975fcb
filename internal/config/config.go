// Package config loads the runtime settings and the static per-level tables
// (velocities, sprite sizes, spawn chances, prop variants) from YAML.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultDocument []byte

var (
	ErrInvalidConfig  = errors.New("invalid configuration")
	ErrUnknownLevel   = errors.New("unknown level")
	ErrUnknownVariant = errors.New("unknown prop variant")
	ErrUnknownEnemy   = errors.New("unknown enemy type")
)

type Config struct {
	Ticker     TickerConfig   `yaml:"ticker"`
	Schedule   ScheduleConfig `yaml:"schedule"`
	Limits     Limits         `yaml:"limits"`
	Log        LogConfig      `yaml:"log"`
	Stream     StreamConfig   `yaml:"stream"`
	Render     RenderConfig   `yaml:"render"`
	Seed       uint64         `yaml:"seed"`
	StartLevel int            `yaml:"start_level"`
	Player     SpriteDef      `yaml:"player"`
	Levels     map[int]Level  `yaml:"levels"`
}

type TickerConfig struct {
	Interval      time.Duration `yaml:"interval"`
	DefaultPeriod uint64        `yaml:"default_period"`
}

// ScheduleConfig holds the sub-rates, in ticks, of the session's work.
type ScheduleConfig struct {
	Player     uint64 `yaml:"player"`
	Reposition uint64 `yaml:"reposition"`
	Spawn      uint64 `yaml:"spawn"`
	Render     uint64 `yaml:"render"`
}

// Limits caps live entity counts per kind; 0 means unbounded.
type Limits struct {
	Props          int     `yaml:"props"`
	Bullets        int     `yaml:"bullets"`
	Enemies        int     `yaml:"enemies"`
	SpawningRadius float64 `yaml:"spawning_radius"`
	DespawnRadius  float64 `yaml:"despawn_radius"`
}

type LogConfig struct {
	Level    string `yaml:"level"`
	Encoding string `yaml:"encoding"`
	Output   string `yaml:"output"`
}

type StreamConfig struct {
	Enabled      bool          `yaml:"enabled"`
	ListenAddr   string        `yaml:"listen_addr"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	MaxClients   int           `yaml:"max_clients"`
}

type RenderConfig struct {
	CellWidth  int               `yaml:"cell_width"`
	CellHeight int               `yaml:"cell_height"`
	Glyphs     map[string]string `yaml:"glyphs"`
}

type SpriteDef struct {
	Src       string  `yaml:"src"`
	Width     int     `yaml:"width"`
	Height    int     `yaml:"height"`
	HitRadius float64 `yaml:"hit_radius"`
}

type Level struct {
	Number  int                 `yaml:"-"`
	Arena   Arena               `yaml:"arena"`
	Player  PlayerDef           `yaml:"player"`
	Enemies map[string]EnemyDef `yaml:"enemies"`
	Props   []PropDef           `yaml:"props"`
}

type Arena struct {
	IntroText       string  `yaml:"intro_text"`
	BackgroundColor string  `yaml:"background_color"`
	SpawningArc     float64 `yaml:"spawning_arc"`
	SpawningRadius  float64 `yaml:"spawning_radius"`
	DespawnRadius   float64 `yaml:"despawn_radius"`
}

type PlayerDef struct {
	Velocity     float64       `yaml:"velocity"`
	TurnInterval uint64        `yaml:"turn_interval"`
	Projectile   ProjectileDef `yaml:"projectile"`
}

type ProjectileDef struct {
	Velocity float64 `yaml:"velocity"`
	Size     int     `yaml:"size"`
	Color    string  `yaml:"color"`
}

type EnemyDef struct {
	Src          string        `yaml:"src"`
	Velocity     float64       `yaml:"velocity"`
	TurnLimiter  int           `yaml:"turn_limiter"`
	Width        int           `yaml:"width"`
	Height       int           `yaml:"height"`
	SpawnChance  float64       `yaml:"spawn_chance"`
	FiringChance float64       `yaml:"firing_chance"`
	HitRadius    float64       `yaml:"hit_radius"`
	CanRotate    bool          `yaml:"can_rotate"`
	Projectile   ProjectileDef `yaml:"projectile"`
}

type PropDef struct {
	Src              string  `yaml:"src"`
	Width            int     `yaml:"width"`
	Height           int     `yaml:"height"`
	RelativeVelocity float64 `yaml:"relative_velocity"`
	Layer            int     `yaml:"layer"`
	Reversed         bool    `yaml:"reversed"`
}

// Default returns the embedded configuration.
func Default() *Config {
	cfg, err := decode(nil, bytes.NewReader(defaultDocument))
	if err != nil {
		panic(fmt.Sprintf("config: embedded default is broken: %v", err))
	}
	return cfg
}

// Load decodes r on top of the embedded defaults and validates the result.
func Load(r io.Reader) (*Config, error) {
	base, err := decode(nil, bytes.NewReader(defaultDocument))
	if err != nil {
		return nil, err
	}
	return decode(base, r)
}

func LoadFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	cfg, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return cfg, nil
}

func decode(base *Config, r io.Reader) (*Config, error) {
	cfg := base
	if cfg == nil {
		cfg = &Config{}
	}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.resolve()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// resolve fills level-local values that fall back to the global limits.
func (c *Config) resolve() {
	for n, lvl := range c.Levels {
		lvl.Number = n
		if lvl.Arena.SpawningRadius == 0 {
			lvl.Arena.SpawningRadius = c.Limits.SpawningRadius
		}
		if lvl.Arena.DespawnRadius == 0 {
			lvl.Arena.DespawnRadius = c.Limits.DespawnRadius
		}
		c.Levels[n] = lvl
	}
}

// Validate reports every problem found, joined into one error.
func (c *Config) Validate() error {
	var errs []error
	invalid := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}

	if c.Ticker.Interval <= 0 {
		invalid("ticker.interval must be positive, got %s", c.Ticker.Interval)
	}
	if c.Limits.Props < 0 || c.Limits.Bullets < 0 || c.Limits.Enemies < 0 {
		invalid("limits must not be negative")
	}
	if len(c.Levels) == 0 {
		invalid("at least one level is required")
	}
	if _, ok := c.Levels[c.StartLevel]; !ok {
		invalid("start_level %d is not defined", c.StartLevel)
	}

	for _, n := range c.LevelNumbers() {
		lvl := c.Levels[n]
		if lvl.Arena.DespawnRadius <= 0 {
			invalid("level %d: despawn_radius must be positive", n)
		}
		if lvl.Arena.SpawningRadius > lvl.Arena.DespawnRadius {
			invalid("level %d: spawning_radius %.1f exceeds despawn_radius %.1f",
				n, lvl.Arena.SpawningRadius, lvl.Arena.DespawnRadius)
		}
		if lvl.Player.Velocity < 0 || lvl.Player.Projectile.Velocity < 0 {
			invalid("level %d: velocities must not be negative", n)
		}
		for i, p := range lvl.Props {
			if p.Width <= 0 || p.Height <= 0 {
				invalid("level %d prop %d: sprite size must be positive", n, i)
			}
			if math.IsNaN(p.RelativeVelocity) || math.IsInf(p.RelativeVelocity, 0) {
				invalid("level %d prop %d: relative_velocity must be finite", n, i)
			}
		}
		for name, e := range lvl.Enemies {
			if e.SpawnChance < 0 || e.SpawnChance > 1 {
				invalid("level %d enemy %s: spawn_chance must be within [0,1]", n, name)
			}
		}
	}

	return errors.Join(errs...)
}

// LevelNumbers returns the defined levels in ascending order.
func (c *Config) LevelNumbers() []int {
	out := make([]int, 0, len(c.Levels))
	for n := range c.Levels {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}

// Level looks up a level table.
func (c *Config) Level(n int) (Level, error) {
	lvl, ok := c.Levels[n]
	if !ok {
		return Level{}, fmt.Errorf("%w: %d", ErrUnknownLevel, n)
	}
	return lvl, nil
}

// Prop looks up a prop variant by index.
func (l Level) Prop(variant int) (PropDef, error) {
	if variant < 0 || variant >= len(l.Props) {
		return PropDef{}, fmt.Errorf("%w: level %d has no variant %d", ErrUnknownVariant, l.Number, variant)
	}
	return l.Props[variant], nil
}

// Enemy looks up an enemy definition by name.
func (l Level) Enemy(name string) (EnemyDef, error) {
	e, ok := l.Enemies[name]
	if !ok {
		return EnemyDef{}, fmt.Errorf("%w: level %d has no enemy %q", ErrUnknownEnemy, l.Number, name)
	}
	return e, nil
}

// EnemyNames returns the level's enemy types in sorted order.
func (l Level) EnemyNames() []string {
	out := make([]string, 0, len(l.Enemies))
	for name := range l.Enemies {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
