package event_bus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

type relayedKey struct{}

// Publisher is the part of the Redis client used to forward local events.
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// RedisBridge relays EventChanged notifications between server instances sharing a Redis
// channel, so a watcher on one instance sees writes made through another.
type RedisBridge struct {
	bus       *EventBus
	publisher Publisher
	client    *redis.Client
	channel   string
	origin    string
}

type envelope struct {
	Origin    string       `json:"origin"`
	Type      EventType    `json:"type"`
	Timestamp time.Time    `json:"timestamp"`
	Data      EventChanged `json:"data"`
}

func NewRedisBridge(bus *EventBus, client *redis.Client, channel string, origin string) *RedisBridge {
	return &RedisBridge{bus: bus, publisher: client, client: client, channel: channel, origin: origin}
}

// Forward publishes local events of the given types to Redis. Events that arrived from Redis
// are not sent back.
func (b *RedisBridge) Forward(types ...EventType) (unsubscribe func()) {
	unsubscribers := make([]func(), 0, len(types))
	for _, t := range types {
		unsubscribers = append(unsubscribers, SubscribeTyped[EventChanged](b.bus, t, func(e EventT[EventChanged]) error {
			if relayed, _ := e.Context().Value(relayedKey{}).(bool); relayed {
				return nil
			}
			payload, err := json.Marshal(envelope{Origin: b.origin, Type: e.Type, Timestamp: e.Timestamp, Data: e.Data})
			if err != nil {
				return fmt.Errorf("failed to encode %s for redis: %w", e.Type, err)
			}
			if err := b.publisher.Publish(e.Context(), b.channel, payload).Err(); err != nil {
				return fmt.Errorf("failed to publish %s to redis: %w", e.Type, err)
			}
			return nil
		}))
	}
	return func() {
		for _, unsub := range unsubscribers {
			unsub()
		}
	}
}

// Run consumes the Redis channel until ctx is done, republishing foreign events on the local bus.
func (b *RedisBridge) Run(ctx context.Context) error {
	pubsub := b.client.Subscribe(ctx, b.channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to redis channel %s: %w", b.channel, err)
	}
	log.Infof("relaying event changes over redis channel %s", b.channel)

	messages := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			if err := b.relay(ctx, msg.Payload); err != nil {
				log.Warnf("dropping redis message: %v", err)
			}
		}
	}
}

func (b *RedisBridge) relay(ctx context.Context, payload string) error {
	var env envelope
	if err := json.Unmarshal([]byte(payload), &env); err != nil {
		return fmt.Errorf("malformed envelope: %w", err)
	}
	if env.Origin == b.origin {
		return nil
	}
	log.Tracef("relaying %s for user %s from %s", env.Type, env.Data.UserId, env.Origin)
	return b.bus.Publish(NewEvent(context.WithValue(ctx, relayedKey{}, true), env.Type, env.Data))
}
