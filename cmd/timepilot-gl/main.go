package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/zeusync/timepilot/internal/core/clock"
	"github.com/zeusync/timepilot/internal/core/observability/log"
	"github.com/zeusync/timepilot/internal/injector"
	"github.com/zeusync/timepilot/internal/render/ebitensurface"
)

const (
	windowWidth  = 640
	windowHeight = 480
)

func main() {
	configPath := flag.String("config", "", "YAML file layered over the built-in configuration")
	assets := flag.String("assets", ".", "directory holding the sprites/ tree")
	flag.Parse()

	if err := run(*configPath, *assets); err != nil {
		fmt.Fprintln(os.Stderr, "timepilot-gl:", err)
		os.Exit(1)
	}
}

func run(configPath, assets string) error {
	cfg, err := injector.LoadConfig(configPath)
	if err != nil {
		return err
	}
	if cfg.Seed == 0 {
		cfg.Seed = uint64(time.Now().UnixNano())
	}

	// ebiten owns the frame loop: the ticker is driven by a virtual clock
	// that each Update advances by one interval.
	virtual := clock.NewManual(time.Now())
	surface := ebitensurface.New(os.DirFS(assets), nil)

	app, err := injector.InitializeApp(cfg, virtual, surface)
	if err != nil {
		return err
	}
	defer func() { _ = app.Logger.Sync() }()

	surface.SetLogger(app.Logger)
	level := app.Session.Level()
	surface.SetBackground(level.Arena.BackgroundColor)

	if err := app.Ticker.Start(); err != nil {
		return err
	}
	defer func() { _ = app.Ticker.Stop() }()

	if app.Stream != nil {
		if err := app.Stream.Start(context.Background()); err != nil {
			return err
		}
		defer func() { _ = app.Stream.Close() }()
	}

	game := ebitensurface.NewGame(surface, virtual, app.Ticker.Interval(), app.Session,
		windowWidth, windowHeight, app.Logger)

	ebiten.SetWindowSize(windowWidth, windowHeight)
	ebiten.SetWindowTitle("Time Pilot - " + level.Arena.IntroText)
	ebiten.SetTPS(int(time.Second / app.Ticker.Interval()))

	app.Logger.Info("Window opened", log.Int("level", level.Number))
	if err := ebiten.RunGame(game); err != nil {
		return err
	}
	app.Logger.Info("Window closed", log.Tick(app.Ticker.Ticks()))
	return nil
}
