package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/bonustracker/bonus-tracker-backend-go/internal/pkg/amqp"
	"github.com/bonustracker/bonus-tracker-backend-go/internal/pkg/sse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingCache struct{ calls int }

func (c *countingCache) Invalidate() { c.calls++ }

type recordingBroker struct {
	got []amqp.Message
	err error
}

func (b *recordingBroker) Publish(_ context.Context, msg amqp.Message) error {
	b.got = append(b.got, msg)
	return b.err
}

func newNotifier(cache invalidator, hub *sse.Hub, b broker) changeNotifier {
	return changeNotifier{
		cache:  cache,
		hub:    hub,
		broker: b,
		now:    func() time.Time { return time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC) },
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestChangeNotifier(t *testing.T) {
	cache := &countingCache{}
	hub := sse.NewHub()
	events, release := hub.Subscribe()
	defer release()
	b := &recordingBroker{}

	newNotifier(cache, hub, b).Invalidate()

	assert.Equal(t, 1, cache.calls)
	require.Len(t, events, 1)
	event := <-events
	assert.Equal(t, EventDataChanged, event.Name)
	assert.Equal(t, map[string]any{"at": "2026-03-01T08:00:00Z"}, event.Data)

	require.Len(t, b.got, 1)
	assert.Equal(t, EventDataChanged, b.got[0].Event)
}

func TestChangeNotifier_BrokerFailureIsNotFatal(t *testing.T) {
	cache := &countingCache{}
	b := &recordingBroker{err: errors.New("connection closed")}

	assert.NotPanics(t, func() { newNotifier(cache, sse.NewHub(), b).Invalidate() })
	assert.Equal(t, 1, cache.calls)
}

func TestChangeNotifier_WithoutBroker(t *testing.T) {
	cache := &countingCache{}
	newNotifier(cache, sse.NewHub(), nil).Invalidate()
	assert.Equal(t, 1, cache.calls)
}
