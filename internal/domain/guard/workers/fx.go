package workers

import (
	"context"

	"go.uber.org/fx"
)

// Module provides the retention sweep workers for fx DI
var Module = fx.Module("guard-workers",
	fx.Provide(
		NewWarningSweeper,
		NewCacheSweeper,
	),
	fx.Invoke(registerLifecycle),
)

func registerLifecycle(lc fx.Lifecycle, warnings *WarningSweeper, cache *CacheSweeper) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := warnings.Start(); err != nil {
				return err
			}
			return cache.Start()
		},
		OnStop: func(ctx context.Context) error {
			warnings.Stop()
			cache.Stop()
			return nil
		},
	})
}
