package events

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/groupwarden/groupwarden/internal/domain/guard/deps"
	"github.com/groupwarden/groupwarden/internal/domain/guard/entities"
	"github.com/groupwarden/groupwarden/internal/domain/guard/usecase/antidelete"
	"github.com/groupwarden/groupwarden/internal/domain/guard/usecase/greeting"
	"github.com/groupwarden/groupwarden/internal/domain/guard/usecase/moderation"
	"github.com/groupwarden/groupwarden/internal/domain/guard/usecase/viewonce"
)

const queueSize = 256

// Dispatcher is the inbound side of the connector: events land on a queue
// and a single consumer goroutine works through them in arrival order, so
// for any one message the moderation scan always runs before command
// routing.
type Dispatcher struct {
	router     *Router
	moderation *moderation.Engine
	antiDelete *antidelete.Service
	viewOnce   *viewonce.Service
	greetings  *greeting.Service
	logger     zerolog.Logger

	queue chan func(ctx context.Context)
	done  chan struct{}
	once  sync.Once
}

// NewDispatcher creates the dispatcher. Call Start to begin consuming.
func NewDispatcher(
	router *Router,
	mod *moderation.Engine,
	antiDelete *antidelete.Service,
	viewOnce *viewonce.Service,
	greetings *greeting.Service,
	logger zerolog.Logger,
) *Dispatcher {
	return &Dispatcher{
		router:     router,
		moderation: mod,
		antiDelete: antiDelete,
		viewOnce:   viewOnce,
		greetings:  greetings,
		logger:     logger,
		queue:      make(chan func(ctx context.Context), queueSize),
		done:       make(chan struct{}),
	}
}

// Start launches the consumer goroutine
func (d *Dispatcher) Start() {
	go d.consume()
}

// Close stops accepting events and drains the queue
func (d *Dispatcher) Close() {
	d.once.Do(func() {
		close(d.queue)
		<-d.done
	})
}

// HandleMessage implements deps.EventSink
func (d *Dispatcher) HandleMessage(ev *entities.MessageEvent) {
	d.enqueue(func(ctx context.Context) {
		if err := d.antiDelete.Capture(ctx, ev); err != nil {
			d.logger.Error().Err(err).Str("chat", ev.ChatID).Msg("shadow capture failed")
		}
		if err := d.viewOnce.Capture(ctx, ev); err != nil {
			d.logger.Error().Err(err).Str("chat", ev.ChatID).Msg("view-once capture failed")
		}
		d.moderation.Scan(ctx, ev)
		d.router.Route(ctx, ev)
	})
}

// HandleDeletion implements deps.EventSink
func (d *Dispatcher) HandleDeletion(ev *entities.DeletionEvent) {
	d.enqueue(func(ctx context.Context) {
		if err := d.antiDelete.HandleDeletion(ctx, ev); err != nil {
			d.logger.Error().Err(err).Str("chat", ev.ChatID).Msg("deletion restore failed")
		}
	})
}

// HandleMembership implements deps.EventSink
func (d *Dispatcher) HandleMembership(ev *entities.MembershipEvent) {
	d.enqueue(func(ctx context.Context) {
		if err := d.greetings.HandleMembership(ctx, ev); err != nil {
			d.logger.Error().Err(err).Str("chat", ev.ChatID).Msg("membership greeting failed")
		}
	})
}

// enqueue drops the event when the queue is full rather than blocking the
// connector's receive loop
func (d *Dispatcher) enqueue(job func(ctx context.Context)) {
	defer func() {
		// a send on the closed queue during shutdown is a dropped event,
		// not a crash
		if recover() != nil {
			d.logger.Warn().Msg("event dropped during shutdown")
		}
	}()

	select {
	case d.queue <- job:
	default:
		d.logger.Warn().Msg("event queue full, dropping event")
	}
}

func (d *Dispatcher) consume() {
	defer close(d.done)
	for job := range d.queue {
		job(context.Background())
	}
}

var _ deps.EventSink = (*Dispatcher)(nil)
