// Package pubsub fans room events out to live subscribers. The durable record
// lives in MongoDB; this layer only carries the "something new happened"
// signal plus its payload to everyone currently listening.
package pubsub

import "context"

// Subscription is a live feed for one topic. Callers must Close it when they
// lose interest or the underlying connection leaks.
type Subscription interface {
	// C yields raw payloads in publish order. The channel is closed by Close
	// or when the broker shuts down.
	C() <-chan []byte
	Close() error
}

// Broker publishes payloads to topics and hands out cancellable
// subscriptions. Delivery is at-most-once per subscriber; durable replay is
// the store's job, not the broker's.
type Broker interface {
	Publish(ctx context.Context, topic string, payload []byte) error
	Subscribe(ctx context.Context, topic string) (Subscription, error)
}
