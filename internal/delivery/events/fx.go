package events

import (
	"context"

	"go.uber.org/fx"
)

// Module provides the event delivery layer for fx dependency injection
var Module = fx.Module("events",
	fx.Provide(
		NewRouter,
		NewDispatcher,
		NewGateway,
	),
	fx.Invoke(registerLifecycle),
)

func registerLifecycle(lc fx.Lifecycle, g *Gateway) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			g.Close()
			return nil
		},
	})
}
