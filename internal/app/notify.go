package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/bonustracker/bonus-tracker-backend-go/internal/pkg/amqp"
	"github.com/bonustracker/bonus-tracker-backend-go/internal/pkg/sse"
)

// EventDataChanged tells subscribers that stored time data changed and
// reports should be reloaded.
const EventDataChanged = "data.changed"

type invalidator interface {
	Invalidate()
}

type broker interface {
	Publish(ctx context.Context, msg amqp.Message) error
}

// changeNotifier drops cached reports and then announces the change to
// event stream subscribers and, when configured, the message broker.
type changeNotifier struct {
	cache  invalidator
	hub    *sse.Hub
	broker broker
	now    func() time.Time
	logger *slog.Logger
}

func (n changeNotifier) Invalidate() {
	n.cache.Invalidate()

	at := n.now()
	n.hub.Publish(sse.Event{
		Name: EventDataChanged,
		Data: map[string]any{"at": at.Format(time.RFC3339)},
	})

	if n.broker == nil {
		return
	}
	if err := n.broker.Publish(context.Background(), amqp.NewMessage(EventDataChanged, at)); err != nil {
		n.logger.Warn("failed to publish change notification", "error", err)
	}
}
