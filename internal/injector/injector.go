//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/timepilot/internal/config"
	"github.com/zeusync/timepilot/internal/core/clock"
	"github.com/zeusync/timepilot/internal/render"
)

// InitializeApp builds a ready-to-run game drawing on canvas and timed by clk.
func InitializeApp(cfg *config.Config, clk clock.Clock, canvas render.Canvas) (*App, error) {
	wire.Build(ProviderSet)
	return nil, nil
}
