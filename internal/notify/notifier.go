// Package notify dispatches outbound notification events. Dispatch is
// fire-and-forget: a failed publish is logged and never surfaces into the
// calling flow.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/supplypulse/backend/internal/config"
)

// Event types emitted by the order lifecycle and the stock ledger.
const (
	EventOrderCreated      = "order.created"
	EventOrderConfirmed    = "order.confirmed"
	EventOrderShipped      = "order.shipped"
	EventOrderDelivered    = "order.delivered"
	EventOrderClaimed      = "order.claimed"
	EventOrderAssigned     = "order.assigned"
	EventOrderTracking     = "order.tracking_updated"
	EventStockBelowReorder = "stock.below_reorder"
)

// Notifier publishes a single event to a recipient.
type Notifier interface {
	Notify(ctx context.Context, eventType, recipientID string, payload map[string]interface{})
}

type envelope struct {
	EventType   string                 `json:"event_type"`
	RecipientID string                 `json:"recipient_id"`
	Payload     map[string]interface{} `json:"payload,omitempty"`
	EmittedAt   time.Time              `json:"emitted_at"`
}

type redisNotifier struct {
	client  *redis.Client
	channel string
}

// NewNotifier returns a Redis pub/sub publisher when notifications are
// enabled, otherwise a logging no-op.
func NewNotifier(cfg config.NotifyConfig) (Notifier, error) {
	if !cfg.Enabled {
		return &logNotifier{}, nil
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	channel := cfg.Channel
	if channel == "" {
		channel = "notifications"
	}

	return &redisNotifier{client: client, channel: channel}, nil
}

func (n *redisNotifier) Notify(ctx context.Context, eventType, recipientID string, payload map[string]interface{}) {
	msg, err := json.Marshal(envelope{
		EventType:   eventType,
		RecipientID: recipientID,
		Payload:     payload,
		EmittedAt:   time.Now().UTC(),
	})
	if err != nil {
		log.Error().Err(err).Str("event", eventType).Msg("failed to encode notification")
		return
	}

	if err := n.client.Publish(ctx, n.channel, msg).Err(); err != nil {
		log.Error().Err(err).Str("event", eventType).Str("recipient", recipientID).
			Msg("failed to publish notification")
	}
}

type logNotifier struct{}

// NewLogNotifier returns a notifier that only logs events.
func NewLogNotifier() Notifier {
	return &logNotifier{}
}

func (n *logNotifier) Notify(ctx context.Context, eventType, recipientID string, payload map[string]interface{}) {
	log.Info().Str("event", eventType).Str("recipient", recipientID).
		Interface("payload", payload).Msg("notification dispatched")
}
