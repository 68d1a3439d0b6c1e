// Package alert publishes verdict events for flagged and blocked prompts.
// Notification is fire-and-forget: it runs detached from the request path,
// does not retry, and never delays or fails the response to the caller.
package alert

import (
	"context"
	"encoding/json"
	"time"

	"github.com/modguard/promptgate/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

type Notifier interface {
	Notify(result models.AnalysisResult)
}

type verdictEvent struct {
	Status    models.Verdict   `json:"status"`
	Reasons   []models.Finding `json:"reasons"`
	Timestamp time.Time        `json:"timestamp"`
}

// RedisNotifier publishes verdict events to a Redis channel an operator
// console can subscribe to.
type RedisNotifier struct {
	client  *redis.Client
	channel string
	timeout time.Duration
	logger  *zerolog.Logger
}

func NewRedisNotifier(client *redis.Client, channel string, logger *zerolog.Logger) *RedisNotifier {
	return &RedisNotifier{
		client:  client,
		channel: channel,
		timeout: 2 * time.Second,
		logger:  logger,
	}
}

// Notify publishes the event from a detached goroutine with its own timeout.
// The prompt text itself is deliberately not included in the event; the
// audit log is the place to look it up.
func (n *RedisNotifier) Notify(result models.AnalysisResult) {
	event := verdictEvent{
		Status:    result.Status,
		Reasons:   result.Reasons,
		Timestamp: time.Now().UTC(),
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
		defer cancel()

		payload, err := json.Marshal(event)
		if err != nil {
			n.logger.Error().Err(err).Msg("Failed to serialize verdict event")
			return
		}

		if err := n.client.Publish(ctx, n.channel, payload).Err(); err != nil {
			n.logger.Warn().Err(err).Str("channel", n.channel).Msg("Failed to publish verdict alert")
		}
	}()
}

// NopNotifier drops all events; used when no alert transport is configured.
type NopNotifier struct{}

func (NopNotifier) Notify(models.AnalysisResult) {}
