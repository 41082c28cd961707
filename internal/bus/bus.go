package bus

import (
	"fmt"
	"log/slog"

	"github.com/cskr/pubsub"
)

const channelCapacity = 64

type Subscription chan any

// MessageBus decouples publishers from the UI and background listeners.
type MessageBus interface {
	Publish(topic string, msg any)
	Subscribe(topic string) Subscription
	Unsubscribe(ch Subscription, topics ...string)
	Close()
}

// Broker is the in-process MessageBus used by the runtime.
type Broker struct {
	ps     *pubsub.PubSub
	logger *slog.Logger
}

func New(logger *slog.Logger) *Broker {
	if logger == nil {
		logger = slog.Default()
	}

	return &Broker{ps: pubsub.New(channelCapacity), logger: logger}
}

func (b *Broker) Publish(topic string, msg any) {
	b.logger.Debug("publish", "topic", topic, "payload_type", fmt.Sprintf("%T", msg))
	b.ps.Pub(msg, topic)
}

func (b *Broker) Subscribe(topic string) Subscription {
	b.logger.Debug("subscribe", "topic", topic)

	return b.ps.Sub(topic)
}

func (b *Broker) Unsubscribe(ch Subscription, topics ...string) {
	if len(topics) == 0 {
		b.ps.Unsub(ch)

		return
	}
	b.ps.Unsub(ch, topics...)
}

func (b *Broker) Close() {
	b.ps.Shutdown()
}
