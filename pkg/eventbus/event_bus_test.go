package eventbus_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shajara-uz/shajara/pkg/eventbus"
	"github.com/shajara-uz/shajara/pkg/logging"
)

type testEvent struct {
	value int
}

func TestPublish_MatchingSubscriber(t *testing.T) {
	bus := eventbus.NewEventPublisher(logging.SilentLogger())

	var got []int
	bus.Subscribe(func(e *testEvent) {
		got = append(got, e.value)
	})

	bus.Publish(&testEvent{value: 7})
	bus.Publish(&testEvent{value: 9})

	require.Equal(t, []int{7, 9}, got)
}

func TestPublish_NonMatchingSubscriberIgnored(t *testing.T) {
	bus := eventbus.NewEventPublisher(logging.SilentLogger())

	called := false
	bus.Subscribe(func(string) { called = true })

	bus.Publish(&testEvent{value: 1})
	require.False(t, called)
}

func TestPublish_PanicRecovered(t *testing.T) {
	bus := eventbus.NewEventPublisher(logging.SilentLogger())

	bus.Subscribe(func(*testEvent) { panic("boom") })

	require.NotPanics(t, func() {
		bus.Publish(&testEvent{value: 1})
	})
}

func TestPublishE_NoSubscribers(t *testing.T) {
	bus := eventbus.NewEventPublisher(logging.SilentLogger())

	err := bus.PublishE(&testEvent{value: 1})
	require.ErrorIs(t, err, eventbus.ErrNoSubscribers)
}

func TestPublishE_HandlerError(t *testing.T) {
	bus := eventbus.NewEventPublisher(logging.SilentLogger())

	wantErr := errors.New("handler failed")
	bus.Subscribe(func(*testEvent) error { return wantErr })

	err := bus.PublishE(&testEvent{value: 1})
	require.ErrorIs(t, err, wantErr)
}

func TestUnsubscribeAndClear(t *testing.T) {
	bus := eventbus.NewEventPublisher(logging.SilentLogger())

	handler := func(*testEvent) {}
	bus.Subscribe(handler)
	require.Equal(t, 1, bus.SubscribersCount())

	bus.Unsubscribe(handler)
	require.Zero(t, bus.SubscribersCount())

	bus.Subscribe(handler)
	bus.Clear()
	require.Zero(t, bus.SubscribersCount())
}
