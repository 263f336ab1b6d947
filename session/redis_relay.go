package session

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const DefaultChannel = "chatdesk:session-events"

// RedisRelay publishes events to a Redis channel and feeds every event seen
// on that channel, including its own, into the local Broker. Running one
// relay per instance lets dashboards connected to any instance see events
// raised on another.
type RedisRelay struct {
	client  *redis.Client
	channel string
	broker  *Broker
}

func NewRedisRelay(client *redis.Client, channel string, broker *Broker) *RedisRelay {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisRelay{client: client, channel: channel, broker: broker}
}

func (r *RedisRelay) Publish(ctx context.Context, e Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode session event: %w", err)
	}
	if err := r.client.Publish(ctx, r.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish session event: %w", err)
	}
	return nil
}

// Run relays channel messages into the broker until ctx is done.
func (r *RedisRelay) Run(ctx context.Context) error {
	pubsub := r.client.Subscribe(ctx, r.channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", r.channel, err)
	}
	log.Info().Str("channel", r.channel).Msg("Relaying session events through Redis")

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var e Event
			if err := json.Unmarshal([]byte(msg.Payload), &e); err != nil {
				log.Warn().Err(err).Msg("Dropping malformed session event")
				continue
			}
			r.broker.deliver(e)
		}
	}
}
