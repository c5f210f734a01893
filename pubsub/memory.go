// Package pubsub provides the buses a roomcast server uses to reach the
// other nodes of a cluster.
package pubsub

import (
	"context"
	"sync"

	"github.com/ramory-l/roomcast"
)

// Memory is an in-process bus. Every server sharing one Memory instance
// behaves like a node of the same cluster. Handlers run synchronously in
// the publishing goroutine.
type Memory struct {
	mu     sync.RWMutex
	next   uint64
	subs   map[roomcast.Topic]map[uint64]func(*roomcast.DispatchMessage)
	closed bool
}

var _ roomcast.PubSub = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		subs: make(map[roomcast.Topic]map[uint64]func(*roomcast.DispatchMessage)),
	}
}

// Publish hands msg to every handler subscribed to topic.
func (m *Memory) Publish(ctx context.Context, topic roomcast.Topic, msg *roomcast.DispatchMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.RLock()
	if m.closed {
		m.mu.RUnlock()
		return ErrClosed
	}
	handlers := make([]func(*roomcast.DispatchMessage), 0, len(m.subs[topic]))
	for _, h := range m.subs[topic] {
		handlers = append(handlers, h)
	}
	m.mu.RUnlock()

	for _, h := range handlers {
		h(msg)
	}
	return nil
}

// Subscribe registers handler until the subscription is closed or ctx ends.
func (m *Memory) Subscribe(ctx context.Context, topic roomcast.Topic, handler func(*roomcast.DispatchMessage)) (roomcast.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, ErrClosed
	}

	m.next++
	id := m.next
	if m.subs[topic] == nil {
		m.subs[topic] = make(map[uint64]func(*roomcast.DispatchMessage))
	}
	m.subs[topic][id] = handler

	stop := context.AfterFunc(ctx, func() { m.unsubscribe(topic, id) })
	return &memorySubscription{bus: m, topic: topic, id: id, stop: stop}, nil
}

// Close drops every subscription. Publishing afterwards fails with ErrClosed.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	clear(m.subs)
	return nil
}

func (m *Memory) unsubscribe(topic roomcast.Topic, id uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.subs[topic], id)
	if len(m.subs[topic]) == 0 {
		delete(m.subs, topic)
	}
}

type memorySubscription struct {
	bus   *Memory
	topic roomcast.Topic
	id    uint64
	once  sync.Once
	stop  func() bool
}

func (s *memorySubscription) Close() error {
	s.once.Do(func() {
		s.stop()
		s.bus.unsubscribe(s.topic, s.id)
	})
	return nil
}
