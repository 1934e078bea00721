package pubsub

import (
	"context"
	"sync"
)

// MemoryBroker is an in-process Broker for tests and single-node development.
type MemoryBroker struct {
	mu   sync.Mutex
	subs map[string][]*memorySubscription
}

func NewMemoryBroker() *MemoryBroker {
	return &MemoryBroker{subs: make(map[string][]*memorySubscription)}
}

func (b *MemoryBroker) Publish(ctx context.Context, topic string, payload []byte) error {
	b.mu.Lock()
	targets := make([]*memorySubscription, len(b.subs[topic]))
	copy(targets, b.subs[topic])
	b.mu.Unlock()

	for _, sub := range targets {
		sub.deliver(payload)
	}
	return nil
}

func (b *MemoryBroker) Subscribe(ctx context.Context, topic string) (Subscription, error) {
	sub := &memorySubscription{
		broker: b,
		topic:  topic,
		ch:     make(chan []byte, 64),
	}
	b.mu.Lock()
	b.subs[topic] = append(b.subs[topic], sub)
	b.mu.Unlock()
	return sub, nil
}

func (b *MemoryBroker) remove(target *memorySubscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := b.subs[target.topic]
	for i, sub := range subs {
		if sub == target {
			b.subs[target.topic] = append(subs[:i], subs[i+1:]...)
			break
		}
	}
}

type memorySubscription struct {
	broker *MemoryBroker
	topic  string
	ch     chan []byte

	closeOnce sync.Once
	mu        sync.Mutex
	closed    bool
}

func (s *memorySubscription) deliver(payload []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	// Non-blocking: delivery is at most once, and a subscriber that stopped
	// draining must not wedge publishers (or Close, which takes s.mu).
	select {
	case s.ch <- payload:
	default:
	}
}

func (s *memorySubscription) C() <-chan []byte { return s.ch }

func (s *memorySubscription) Close() error {
	s.closeOnce.Do(func() {
		s.broker.remove(s)
		s.mu.Lock()
		s.closed = true
		close(s.ch)
		s.mu.Unlock()
	})
	return nil
}
