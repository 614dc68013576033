package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"habit-garden/internal/domain/entity"
	"habit-garden/internal/domain/service"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const channelPrefix = "habits:"

// subscriberBuffer bounds each subscriber queue; slow subscribers miss changes
const subscriberBuffer = 64

// Notifier fans habit changes out through redis pub/sub so every instance
// sees them. Messages are JSON encoded HabitChange values.
type Notifier struct {
	client *redis.Client
	logger *zap.Logger
}

var _ service.Notifier = (*Notifier)(nil)

// NewNotifier creates a redis backed notifier
func NewNotifier(client *redis.Client, logger *zap.Logger) *Notifier {
	return &Notifier{client: client, logger: logger}
}

func channel(userID uuid.UUID) string {
	return channelPrefix + userID.String()
}

func (n *Notifier) Publish(ctx context.Context, change entity.HabitChange) error {
	data, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("failed to marshal change: %w", err)
	}

	if err := n.client.Publish(ctx, channel(change.UserID), data).Err(); err != nil {
		return fmt.Errorf("failed to publish change: %w", err)
	}
	return nil
}

// Subscribe streams one user's changes
func (n *Notifier) Subscribe(ctx context.Context, userID uuid.UUID) (<-chan entity.HabitChange, error) {
	return n.subscribe(ctx, n.client.Subscribe(ctx, channel(userID)))
}

// SubscribeAll streams every user's changes
func (n *Notifier) SubscribeAll(ctx context.Context) (<-chan entity.HabitChange, error) {
	return n.subscribe(ctx, n.client.PSubscribe(ctx, channelPrefix+"*"))
}

func (n *Notifier) subscribe(ctx context.Context, pubsub *redis.PubSub) (<-chan entity.HabitChange, error) {
	// wait for the subscription to be confirmed so no publish is missed
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe: %w", err)
	}

	out := make(chan entity.HabitChange, subscriberBuffer)
	go func() {
		defer close(out)
		defer pubsub.Close()

		messages := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}

				var change entity.HabitChange
				if err := json.Unmarshal([]byte(msg.Payload), &change); err != nil {
					n.logger.Warn("habit_change_decode_failed",
						zap.String("channel", msg.Channel),
						zap.Error(err),
					)
					continue
				}

				select {
				case out <- change:
				default:
					n.logger.Warn("habit_change_dropped", zap.String("channel", msg.Channel))
				}
			}
		}
	}()

	return out, nil
}
