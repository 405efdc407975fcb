package injector

import (
	"strings"

	"github.com/google/wire"

	"github.com/zeusync/timepilot/internal/config"
	"github.com/zeusync/timepilot/internal/core/clock"
	"github.com/zeusync/timepilot/internal/core/events/bus"
	"github.com/zeusync/timepilot/internal/core/observability/log"
	"github.com/zeusync/timepilot/internal/core/ticker"
	"github.com/zeusync/timepilot/internal/game/session"
	"github.com/zeusync/timepilot/internal/render"
	"github.com/zeusync/timepilot/internal/server/stream"
)

// App is everything a front end needs to run a game.
type App struct {
	Config   *config.Config
	Logger   *log.Logger
	Bus      bus.EventBus
	Ticker   *ticker.Ticker
	Session  *session.Session
	Recorder *render.Recorder
	// Stream is nil when streaming is disabled.
	Stream *stream.Server
}

var ProviderSet = wire.NewSet(
	ProvideLogger,
	wire.Bind(new(log.Log), new(*log.Logger)),
	bus.New,
	ProvideTicker,
	render.NewRecorder,
	ProvideSession,
	ProvideStream,
	ProvideApp,
)

// LoadConfig reads path over the embedded defaults, or returns the defaults
// when path is empty.
func LoadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.LoadFile(path)
}

func ProvideLogger(cfg *config.Config) (*log.Logger, error) {
	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	opts := log.Options{Level: level, Encoding: cfg.Log.Encoding}
	if out := strings.TrimSpace(cfg.Log.Output); out != "" {
		opts.OutputPaths = []string{out}
	}
	return log.NewWithOptions(opts)
}

func ProvideTicker(cfg *config.Config, clk clock.Clock, logger log.Log, b bus.EventBus) *ticker.Ticker {
	return ticker.New(
		ticker.WithInterval(cfg.Ticker.Interval),
		ticker.WithDefaultPeriod(cfg.Ticker.DefaultPeriod),
		ticker.WithClock(clk),
		ticker.WithLogger(logger),
		ticker.WithBus(b),
	)
}

// ProvideSession draws every pass on the front end's canvas and on the
// recorder the stream reads from.
func ProvideSession(cfg *config.Config, tk *ticker.Ticker, canvas render.Canvas, rec *render.Recorder, logger log.Log, b bus.EventBus) (*session.Session, error) {
	return session.New(cfg, tk, render.Fanout{canvas, rec},
		session.WithLogger(logger),
		session.WithBus(b))
}

func ProvideStream(cfg *config.Config, s *session.Session, logger log.Log) *stream.Server {
	if !cfg.Stream.Enabled {
		return nil
	}
	return stream.New(cfg.Stream, s, logger)
}

// ProvideApp attaches the session to the ticker and forwards presented
// frames to the stream. With streaming on, the recorder is flushed after
// every frame and its buffer goes back to the pool once broadcast.
func ProvideApp(cfg *config.Config, logger *log.Logger, b bus.EventBus, tk *ticker.Ticker, s *session.Session, rec *render.Recorder, srv *stream.Server) (*App, error) {
	if srv != nil {
		if _, err := b.Subscribe(session.EventFrame, func(e bus.Event) error {
			commands := rec.Flush()
			srv.Publish(e.Tick(), commands)
			render.Release(commands)
			return nil
		}); err != nil {
			return nil, err
		}
	}
	if err := s.Attach(); err != nil {
		return nil, err
	}
	return &App{
		Config:   cfg,
		Logger:   logger,
		Bus:      b,
		Ticker:   tk,
		Session:  s,
		Recorder: rec,
		Stream:   srv,
	}, nil
}
