package events

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaPublisher_Publish(t *testing.T) {
	w := &recordingWriter{}
	p := newKafkaPublisher(w, 0)

	event := NewEvent(TypeEnrollmentChanged, "student:4", "alice", map[string]interface{}{"added": []int64{1, 2}})
	require.NoError(t, p.Publish(context.Background(), event))

	require.Len(t, w.messages, 1)
	msg := w.messages[0]
	assert.Equal(t, "student:4", string(msg.Key))
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, TypeEnrollmentChanged, string(msg.Headers[0].Value))

	var decoded Event
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, event.ID, decoded.ID)
	assert.Equal(t, "alice", decoded.Actor)
	assert.Equal(t, TypeEnrollmentChanged, decoded.Type)
}

func TestKafkaPublisher_WriteError(t *testing.T) {
	w := &recordingWriter{err: errors.New("broker unavailable")}
	p := newKafkaPublisher(w, 0)

	err := p.Publish(context.Background(), NewEvent(TypeCourseCreated, "course:1", "admin", nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), TypeCourseCreated)
}

// stalledWriter blocks like a broker that accepts connections but never answers
type stalledWriter struct{}

func (stalledWriter) WriteMessages(ctx context.Context, _ ...kafka.Message) error {
	<-ctx.Done()
	return ctx.Err()
}

func (stalledWriter) Close() error { return nil }

func TestKafkaPublisher_PublishIsBounded(t *testing.T) {
	p := newKafkaPublisher(stalledWriter{}, 50*time.Millisecond)

	start := time.Now()
	err := p.Publish(context.Background(), NewEvent(TypeCourseCreated, "course:1", "admin", nil))

	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}

func TestNewKafkaPublisher_DefaultTimeout(t *testing.T) {
	p := NewKafkaPublisher(KafkaConfig{Brokers: []string{"localhost:9092"}, Topic: "coursehub.events"})
	defer p.Close()

	assert.Equal(t, defaultPublishTimeout, p.timeout)
	assert.IsType(t, &kafka.Writer{}, p.writer)
}

func TestNewKafkaWriter_Settings(t *testing.T) {
	var buf bytes.Buffer
	w := newKafkaWriter(KafkaConfig{
		Brokers: []string{"localhost:9092"},
		Topic:   "coursehub.events",
		Logger:  zerolog.New(&buf),
	})
	defer w.Close()

	assert.True(t, w.Async)
	assert.Equal(t, defaultBatchTimeout, w.BatchTimeout)
	assert.Equal(t, defaultWriteTimeout, w.WriteTimeout)
	assert.Equal(t, "coursehub.events", w.Topic)
	require.NotNil(t, w.Completion)

	w.Completion([]kafka.Message{{Value: []byte("x")}}, nil)
	assert.Empty(t, buf.String())

	w.Completion([]kafka.Message{{Value: []byte("x")}}, errors.New("leader not available"))
	assert.Contains(t, buf.String(), "Failed to deliver domain events")
	assert.Contains(t, buf.String(), "leader not available")
}

func TestKafkaPublisher_Close(t *testing.T) {
	w := &recordingWriter{}
	require.NoError(t, newKafkaPublisher(w, 0).Close())
	assert.True(t, w.closed)
}

func TestNewEvent(t *testing.T) {
	a := NewEvent(TypeCourseDeleted, "course:1", "admin", nil)
	b := NewEvent(TypeCourseDeleted, "course:1", "admin", nil)

	assert.NotEqual(t, a.ID, b.ID)
	assert.False(t, a.OccurredAt.IsZero())
}
