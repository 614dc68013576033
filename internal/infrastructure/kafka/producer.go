package kafka

import (
	"context"
	"fmt"
	"time"

	"habit-garden/internal/config"
	"habit-garden/internal/domain/service"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// messageWriter is the part of *kafka.Writer the producer needs
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes habit events to Kafka as protobuf Struct messages
type Producer struct {
	writer messageWriter
	logger *zap.Logger
	now    func() time.Time
}

var _ service.EventPublisher = (*Producer)(nil)

// NewProducer creates a new Kafka producer
func NewProducer(cfg *config.KafkaConfig, logger *zap.Logger) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		BatchSize:    10,
		BatchTimeout: 10 * time.Millisecond,
		Async:        true,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logger.Error("kafka_write_failed", zap.Int("messages", len(messages)), zap.Error(err))
			}
		},
	}

	return newProducer(writer, logger)
}

func newProducer(writer messageWriter, logger *zap.Logger) *Producer {
	return &Producer{
		writer: writer,
		logger: logger,
		now:    time.Now,
	}
}

// PublishHabitEvent sends one event keyed by user id, so a user's events stay ordered
func (p *Producer) PublishHabitEvent(ctx context.Context, event service.HabitEvent) error {
	occurredAt := p.now().UTC()
	payload, err := encodeEvent(event, uuid.New(), occurredAt)
	if err != nil {
		return err
	}

	message := kafka.Message{
		Key:   []byte(event.Habit.UserID.String()),
		Value: payload,
		Time:  occurredAt,
	}

	if err := p.writer.WriteMessages(ctx, message); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", event.Type, err)
	}

	p.logger.Debug("habit_event_published",
		zap.String("event_type", string(event.Type)),
		zap.String("habit_id", event.Habit.ID.String()),
	)
	return nil
}

// Close flushes pending messages
func (p *Producer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}

func encodeEvent(event service.HabitEvent, eventID uuid.UUID, occurredAt time.Time) ([]byte, error) {
	h := event.Habit
	fields := map[string]any{
		"event_id":       eventID.String(),
		"event_type":     string(event.Type),
		"user_id":        h.UserID.String(),
		"habit_id":       h.ID.String(),
		"habit_name":     h.Name,
		"current_streak": float64(h.CurrentStreak),
		"longest_streak": float64(h.LongestStreak),
		"growth_stage":   float64(h.GrowthStage),
		"missed_days":    float64(event.MissedDays),
		"occurred_at":    occurredAt.Format(time.RFC3339Nano),
	}
	if h.LastCompleted != nil {
		fields["last_completed"] = h.LastCompleted.String()
	}

	s, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("failed to build event: %w", err)
	}

	data, err := proto.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}
	return data, nil
}

// DecodeEvent parses a message value produced by PublishHabitEvent
func DecodeEvent(data []byte) (map[string]any, error) {
	var s structpb.Struct
	if err := proto.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event: %w", err)
	}
	return s.AsMap(), nil
}
