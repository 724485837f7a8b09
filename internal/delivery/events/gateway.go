package events

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/groupwarden/groupwarden/internal/domain/guard/deps"
	"github.com/groupwarden/groupwarden/internal/domain/guard/usecase/antidelete"
	"github.com/groupwarden/groupwarden/internal/domain/guard/usecase/greeting"
	"github.com/groupwarden/groupwarden/internal/domain/guard/usecase/groupinfo"
	"github.com/groupwarden/groupwarden/internal/domain/guard/usecase/moderation"
	"github.com/groupwarden/groupwarden/internal/domain/guard/usecase/polls"
	"github.com/groupwarden/groupwarden/internal/domain/guard/usecase/schedule"
	"github.com/groupwarden/groupwarden/internal/domain/guard/usecase/viewonce"
	"github.com/groupwarden/groupwarden/internal/domain/guard/workers"
)

// connectorUser is anything that takes the live connector handle after
// construction
type connectorUser interface {
	SetConnector(conn deps.Connector)
}

// Gateway is the bootstrap's handle on the engine. The connector only
// exists once the transport is up, so everything is constructed without one
// and Attach threads the live handle through, rehydrates persisted tasks
// and opens the event queue.
type Gateway struct {
	dispatcher *Dispatcher
	registry   *schedule.Registry
	users      []connectorUser
	logger     zerolog.Logger
}

// NewGateway creates the gateway over the fully constructed engine
func NewGateway(
	dispatcher *Dispatcher,
	router *Router,
	mod *moderation.Engine,
	antiDelete *antidelete.Service,
	viewOnce *viewonce.Service,
	registry *schedule.Registry,
	pollSvc *polls.Service,
	greetings *greeting.Service,
	groups *groupinfo.Service,
	warningSweeper *workers.WarningSweeper,
	logger zerolog.Logger,
) *Gateway {
	return &Gateway{
		dispatcher: dispatcher,
		registry:   registry,
		users: []connectorUser{
			router, mod, antiDelete, viewOnce, registry,
			pollSvc, greetings, groups, warningSweeper,
		},
		logger: logger,
	}
}

// Attach wires the live connector into every component, re-arms persisted
// tasks and starts consuming events. The returned sink is what the
// transport feeds.
func (g *Gateway) Attach(ctx context.Context, conn deps.Connector) (deps.EventSink, error) {
	for _, u := range g.users {
		u.SetConnector(conn)
	}

	if err := g.registry.Rehydrate(ctx); err != nil {
		return nil, err
	}
	g.registry.Start()
	g.dispatcher.Start()

	g.logger.Info().Str("bot", conn.BotID()).Msg("connector attached")
	return g.dispatcher, nil
}

// Close drains the event queue and disarms every timer
func (g *Gateway) Close() {
	g.dispatcher.Close()
	g.registry.Shutdown()
}
