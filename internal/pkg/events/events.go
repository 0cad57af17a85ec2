package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// Writer defaults. Publish hands messages to an async writer and never waits on a batch.
const (
	defaultWriteTimeout   = 5 * time.Second
	defaultPublishTimeout = time.Second
	defaultBatchTimeout   = 10 * time.Millisecond
)

// Event types published by the service
const (
	TypeIdentityRegistered = "identity.registered"
	TypeCourseCreated      = "course.created"
	TypeCourseDeleted      = "course.deleted"
	TypeEnrollmentChanged  = "enrollment.changed"
)

// Event is the envelope written to the topic
type Event struct {
	ID         string      `json:"id"`
	Type       string      `json:"type"`
	Key        string      `json:"key"`
	Actor      string      `json:"actor,omitempty"`
	OccurredAt time.Time   `json:"occurredAt"`
	Payload    interface{} `json:"payload,omitempty"`
}

// NewEvent stamps an event with an id and the current time
func NewEvent(eventType, key, actor string, payload interface{}) Event {
	return Event{
		ID:         uuid.New().String(),
		Type:       eventType,
		Key:        key,
		Actor:      actor,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
}

// Publisher emits domain events after a change has been committed
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes events as JSON messages keyed by the event key
type KafkaPublisher struct {
	writer  messageWriter
	timeout time.Duration
}

// KafkaConfig configures the writer
type KafkaConfig struct {
	Brokers      []string
	Topic        string
	WriteTimeout time.Duration
	// PublishTimeout bounds how long Publish may block, e.g. on a topic metadata lookup
	PublishTimeout time.Duration
	Logger         zerolog.Logger
}

// NewKafkaPublisher creates a publisher for the given brokers and topic
func NewKafkaPublisher(cfg KafkaConfig) *KafkaPublisher {
	return newKafkaPublisher(newKafkaWriter(cfg), cfg.PublishTimeout)
}

// newKafkaWriter builds an async writer; delivery failures surface in Completion
func newKafkaWriter(cfg KafkaConfig) *kafka.Writer {
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = defaultWriteTimeout
	}
	lgr := cfg.Logger
	return &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		BatchTimeout:           defaultBatchTimeout,
		WriteTimeout:           cfg.WriteTimeout,
		Async:                  true,
		AllowAutoTopicCreation: true,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				lgr.Warn().Err(err).Int("messages", len(messages)).Str("topic", cfg.Topic).Msg("Failed to deliver domain events")
			}
		},
	}
}

func newKafkaPublisher(w messageWriter, timeout time.Duration) *KafkaPublisher {
	if timeout <= 0 {
		timeout = defaultPublishTimeout
	}
	return &KafkaPublisher{writer: w, timeout: timeout}
}

// Publish encodes and writes one event
func (p *KafkaPublisher) Publish(ctx context.Context, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("kafka: json.Marshal failed: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(event.Key),
		Value: data,
		Time:  event.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(event.Type)},
		},
	}
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka: write %s failed: %w", event.Type, err)
	}
	return nil
}

// Close flushes pending writes
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NoopPublisher drops every event; used when no brokers are configured
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Event) error { return nil }

func (NoopPublisher) Close() error { return nil }
