// Package app contains application bootstrap
package app

import (
	"go.uber.org/fx"

	"github.com/groupwarden/groupwarden/config"
	"github.com/groupwarden/groupwarden/internal/delivery/events"
	"github.com/groupwarden/groupwarden/internal/domain"
	"github.com/groupwarden/groupwarden/internal/infrastructure"
)

// CreateApp creates the fx application with all modules. The messaging
// connector is transport-specific and not part of the engine: the embedding
// program resolves *events.Gateway from the built app and calls Attach with
// its connector once the transport is connected.
func CreateApp() fx.Option {
	return fx.Options(
		// Configuration
		fx.Provide(config.Out),

		// Infrastructure (logger, database)
		infrastructure.Module,

		// Domain (moderation, scheduling, content cache)
		domain.Module,

		// Event delivery (router, dispatcher, gateway)
		events.Module,
	)
}
