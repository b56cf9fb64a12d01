package notification

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHub_ObserversRunInOrder(t *testing.T) {
	hub := NewHub()
	var seen []string

	hub.Subscribe("first", func(ctx context.Context, ev Event) error {
		seen = append(seen, "first")
		return nil
	})
	hub.Subscribe("second", func(ctx context.Context, ev Event) error {
		seen = append(seen, "second")
		return nil
	})

	hub.Publish(context.Background(), NewEvent(EventOrderCompleted, nil, nil))

	assert.Equal(t, []string{"first", "second"}, seen)
}

func TestHub_FailingObserverDoesNotStopOthers(t *testing.T) {
	hub := NewHub()
	var called bool

	hub.Subscribe("failing", func(ctx context.Context, ev Event) error {
		return errors.New("smtp down")
	})
	hub.Subscribe("after", func(ctx context.Context, ev Event) error {
		called = true
		return nil
	})

	hub.Publish(context.Background(), NewEvent(EventWebhookReceived, nil, nil))

	assert.True(t, called)
}

func TestHub_PanickingObserverIsIsolated(t *testing.T) {
	hub := NewHub()
	var called bool

	hub.Subscribe("panicking", func(ctx context.Context, ev Event) error {
		panic("boom")
	})
	hub.Subscribe("after", func(ctx context.Context, ev Event) error {
		called = true
		return nil
	})

	assert.NotPanics(t, func() {
		hub.Publish(context.Background(), NewEvent(EventOrderCaptured, nil, nil))
	})
	assert.True(t, called)
}

func TestHub_NoObservers(t *testing.T) {
	hub := NewHub()
	assert.NotPanics(t, func() {
		hub.Publish(context.Background(), NewEvent(EventOrderCreated, nil, nil))
	})
}
