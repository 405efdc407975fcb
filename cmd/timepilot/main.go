package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"golang.org/x/sync/errgroup"

	"github.com/zeusync/timepilot/internal/core/clock"
	"github.com/zeusync/timepilot/internal/core/entity"
	"github.com/zeusync/timepilot/internal/core/events/bus"
	"github.com/zeusync/timepilot/internal/core/observability/log"
	"github.com/zeusync/timepilot/internal/game/player"
	"github.com/zeusync/timepilot/internal/game/session"
	"github.com/zeusync/timepilot/internal/injector"
	"github.com/zeusync/timepilot/internal/render"
)

// Terminals report key presses but not releases, so a turn is held for
// this long after the last arrow key event.
const steerHold = 120 * time.Millisecond

var errQuit = errors.New("quit")

func main() {
	configPath := flag.String("config", "", "YAML file layered over the built-in configuration")
	logPath := flag.String("log", "timepilot.log", "log file (the terminal is used for drawing)")
	flag.Parse()

	if err := run(*configPath, *logPath); err != nil {
		fmt.Fprintln(os.Stderr, "timepilot:", err)
		os.Exit(1)
	}
}

func run(configPath, logPath string) error {
	cfg, err := injector.LoadConfig(configPath)
	if err != nil {
		return err
	}
	if cfg.Log.Output == "" || cfg.Log.Output == "stderr" || cfg.Log.Output == "stdout" {
		cfg.Log.Output = logPath
	}
	if cfg.Seed == 0 {
		cfg.Seed = uint64(time.Now().UnixNano())
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	term := render.NewTerminal(screen, cfg.Render)
	app, err := injector.InitializeApp(cfg, clock.Real(), term)
	if err != nil {
		return err
	}
	defer func() { _ = app.Logger.Sync() }()

	level := app.Session.Level()
	term.SetBackground(level.Arena.BackgroundColor)
	if _, err := app.Bus.Subscribe(session.EventFrame, func(e bus.Event) error {
		snap := app.Session.Snapshot()
		term.SetStatus(fmt.Sprintf(" %s  tick %d  props %d  enemies %d  bullets %d ",
			level.Arena.IntroText, e.Tick(), len(snap.Props), len(snap.Enemies), len(snap.Bullets)))
		return nil
	}); err != nil {
		return err
	}

	in := &input{session: app.Session, logger: app.Logger}
	app.Ticker.AddSchedule(in.releaseSteering, 1)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error { return app.Ticker.Run(ctx) })
	if app.Stream != nil {
		g.Go(func() error { return app.Stream.Run(ctx) })
	}
	g.Go(func() error { return in.loop(ctx, screen) })

	app.Logger.Info("Game started",
		log.Int("level", level.Number),
		log.Duration("interval", app.Ticker.Interval()))

	if err := g.Wait(); err != nil && !errors.Is(err, errQuit) {
		return err
	}
	app.Logger.Info("Game finished", log.Tick(app.Ticker.Ticks()))
	return nil
}

type input struct {
	session   *session.Session
	logger    log.Log
	lastSteer atomic.Int64
}

func (in *input) loop(ctx context.Context, screen tcell.Screen) error {
	go func() {
		<-ctx.Done()
		_ = screen.PostEvent(tcell.NewEventInterrupt(nil))
	}()

	for {
		switch ev := screen.PollEvent().(type) {
		case nil:
			return nil
		case *tcell.EventInterrupt:
			if ctx.Err() != nil {
				return nil
			}
		case *tcell.EventResize:
			screen.Sync()
		case *tcell.EventKey:
			if err := in.key(ev); err != nil {
				return err
			}
		}
	}
}

func (in *input) key(ev *tcell.EventKey) error {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return errQuit
	case tcell.KeyLeft:
		in.steer(player.Left)
	case tcell.KeyRight:
		in.steer(player.Right)
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			return errQuit
		case 'a':
			in.steer(player.Left)
		case 'd':
			in.steer(player.Right)
		case ' ':
			if _, err := in.session.Fire(); err != nil && !errors.Is(err, entity.ErrLimitReached) {
				in.logger.Warn("Fire failed", log.Error(err))
			}
		}
	}
	return nil
}

func (in *input) steer(dir int) {
	in.lastSteer.Store(time.Now().UnixNano())
	in.session.Steer(dir)
}

func (in *input) releaseSteering(uint64) error {
	last := in.lastSteer.Load()
	if last != 0 && time.Since(time.Unix(0, last)) > steerHold {
		in.lastSteer.Store(0)
		in.session.Steer(player.Straight)
	}
	return nil
}
