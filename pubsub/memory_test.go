package pubsub_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ramory-l/roomcast"
	"github.com/ramory-l/roomcast/pubsub"
)

func dispatchTo(room, text string) *roomcast.DispatchMessage {
	return &roomcast.DispatchMessage{
		NodeID:    "node-a",
		Namespace: roomcast.DefaultNamespace,
		Room:      room,
		Packet:    roomcast.NewMessagePacket(text),
	}
}

func TestMemory_PublishReachesEverySubscriber(t *testing.T) {
	bus := pubsub.NewMemory()
	ctx := t.Context()

	var first, second []string
	_, err := bus.Subscribe(ctx, roomcast.TopicDispatch, func(m *roomcast.DispatchMessage) { first = append(first, m.Room) })
	require.NoError(t, err)
	_, err = bus.Subscribe(ctx, roomcast.TopicDispatch, func(m *roomcast.DispatchMessage) { second = append(second, m.Room) })
	require.NoError(t, err)
	_, err = bus.Subscribe(ctx, "OTHER", func(*roomcast.DispatchMessage) { t.Error("wrong topic") })
	require.NoError(t, err)

	require.NoError(t, bus.Publish(ctx, roomcast.TopicDispatch, dispatchTo("r1", "a")))
	require.NoError(t, bus.Publish(ctx, roomcast.TopicDispatch, dispatchTo("r2", "b")))

	require.Equal(t, []string{"r1", "r2"}, first)
	require.Equal(t, []string{"r1", "r2"}, second)
}

func TestMemory_SubscriptionClose(t *testing.T) {
	bus := pubsub.NewMemory()
	ctx := t.Context()

	calls := 0
	sub, err := bus.Subscribe(ctx, roomcast.TopicDispatch, func(*roomcast.DispatchMessage) { calls++ })
	require.NoError(t, err)

	require.NoError(t, sub.Close())
	require.NoError(t, sub.Close())
	require.NoError(t, bus.Publish(ctx, roomcast.TopicDispatch, dispatchTo("r1", "a")))
	require.Zero(t, calls)
}

func TestMemory_ContextCancelUnsubscribes(t *testing.T) {
	bus := pubsub.NewMemory()
	ctx, cancel := context.WithCancel(t.Context())

	calls := make(chan struct{}, 1)
	_, err := bus.Subscribe(ctx, roomcast.TopicDispatch, func(*roomcast.DispatchMessage) { calls <- struct{}{} })
	require.NoError(t, err)

	cancel()

	require.Eventually(t, func() bool {
		_ = bus.Publish(t.Context(), roomcast.TopicDispatch, dispatchTo("r1", "a"))
		select {
		case <-calls:
			return false
		default:
			return true
		}
	}, time.Second, 5*time.Millisecond)
}

func TestMemory_Closed(t *testing.T) {
	bus := pubsub.NewMemory()
	require.NoError(t, bus.Close())

	err := bus.Publish(t.Context(), roomcast.TopicDispatch, dispatchTo("r1", "a"))
	require.ErrorIs(t, err, pubsub.ErrClosed)

	_, err = bus.Subscribe(t.Context(), roomcast.TopicDispatch, func(*roomcast.DispatchMessage) {})
	require.ErrorIs(t, err, pubsub.ErrClosed)
}

func TestMemory_PublishHonoursContext(t *testing.T) {
	bus := pubsub.NewMemory()
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	require.ErrorIs(t, bus.Publish(ctx, roomcast.TopicDispatch, dispatchTo("r1", "a")), context.Canceled)
}
