// Package releasebus implements the Release Bus (C10): a Redis pub/sub
// channel carrying release-change notifications, consumed by the
// Invalidator (C6) and written to by the admin publish route.
package releasebus

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/relaycfg/configserver/app/domain/invalidator"
	"github.com/relaycfg/configserver/app/utils/logger"
)

// Bus is a go-redis-backed MessageBus and publisher. A single instance can
// be subscribed to one topic and published to any topic.
type Bus struct {
	client *redis.Client
}

func New(client *redis.Client) *Bus {
	return &Bus{client: client}
}

var _ invalidator.MessageBus = (*Bus)(nil)

// Subscribe implements invalidator.MessageBus. It starts a dedicated
// goroutine that reads from the subscription channel until ctx is
// cancelled, calling handler once per delivery.
func (b *Bus) Subscribe(ctx context.Context, topic string, handler invalidator.MessageHandler) error {
	sub := b.client.Subscribe(ctx, topic)
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("release bus: failed to subscribe to %s: %w", topic, err)
	}

	go func() {
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				handler(msg.Payload, msg.Channel)
			}
		}
	}()
	return nil
}

// Publish sends content on topic. Publishing is fire-and-forget from the
// caller's perspective; a disconnected bus yields a MessageBusError that
// the admin route surfaces but that never blocks the release write itself.
func (b *Bus) Publish(ctx context.Context, topic, content string) error {
	if err := b.client.Publish(ctx, topic, content).Err(); err != nil {
		logger.GetLogger().WithField("topic", topic).Warnf("release bus: publish failed: %v", err)
		return err
	}
	return nil
}
