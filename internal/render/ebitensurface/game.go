package ebitensurface

import (
	"errors"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/zeusync/timepilot/internal/core/clock"
	"github.com/zeusync/timepilot/internal/core/entity"
	"github.com/zeusync/timepilot/internal/core/observability/log"
)

// Controls is the part of the session the window drives.
type Controls interface {
	Steer(dir int)
	Fire() (entity.ID, error)
}

// Game implements ebiten.Game. Every Update advances the virtual clock by
// one interval, so the ticker fires at ebiten's update rate instead of on a
// separate wall-clock timer.
type Game struct {
	surface  *Surface
	clock    *clock.Manual
	interval time.Duration
	controls Controls
	width    int
	height   int
	logger   log.Log
}

var _ ebiten.Game = (*Game)(nil)

func NewGame(surface *Surface, clk *clock.Manual, interval time.Duration, controls Controls, width, height int, logger log.Log) *Game {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Game{
		surface:  surface,
		clock:    clk,
		interval: interval,
		controls: controls,
		width:    width,
		height:   height,
		logger:   logger.With(log.Component("window")),
	}
}

func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyQ) {
		return ebiten.Termination
	}

	g.controls.Steer(SteerDirection(
		ebiten.IsKeyPressed(ebiten.KeyArrowLeft) || ebiten.IsKeyPressed(ebiten.KeyA),
		ebiten.IsKeyPressed(ebiten.KeyArrowRight) || ebiten.IsKeyPressed(ebiten.KeyD),
	))
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		if _, err := g.controls.Fire(); err != nil && !errors.Is(err, entity.ErrLimitReached) {
			g.logger.Warn("Fire failed", log.Error(err))
		}
	}

	g.clock.Advance(g.interval)
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.surface.Draw(screen)
}

func (g *Game) Layout(int, int) (int, int) {
	return g.width, g.height
}

// SteerDirection folds two held keys into a steering direction.
func SteerDirection(left, right bool) int {
	switch {
	case left && !right:
		return -1
	case right && !left:
		return 1
	default:
		return 0
	}
}
