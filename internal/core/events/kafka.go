package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/segmentio/kafka-go"
)

// MessageWriter is the subset of *kafka.Writer the forwarder needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaForwarder mirrors bus events onto a Kafka topic for downstream consumers.
type KafkaForwarder struct {
	l     *slog.Logger
	w     MessageWriter
	topic string
}

func NewKafkaForwarder(l *slog.Logger, brokers []string, topic string) *KafkaForwarder {
	l = l.WithGroup("kafka").With("topic", topic)

	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.LeastBytes{},
		Async:                  true,
		Logger:                 &kafkaLogger{l: l, level: slog.LevelDebug},
		ErrorLogger:            &kafkaLogger{l: l, level: slog.LevelError},
		AllowAutoTopicCreation: true,
	}

	return NewKafkaForwarderWithWriter(l, w, topic)
}

func NewKafkaForwarderWithWriter(l *slog.Logger, w MessageWriter, topic string) *KafkaForwarder {
	return &KafkaForwarder{l: l, w: w, topic: topic}
}

type envelope struct {
	ID         string      `json:"id"`
	Type       string      `json:"type"`
	OccurredAt string      `json:"occurred_at"`
	Data       interface{} `json:"data"`
}

// Attach subscribes the forwarder to every event on the bus.
func (f *KafkaForwarder) Attach(bus *EventBus) {
	bus.Subscribe(Wildcard, f.Forward)
}

func (f *KafkaForwarder) Forward(ctx context.Context, event Event) error {
	b, err := json.Marshal(envelope{
		ID:         event.EventID(),
		Type:       event.EventType(),
		OccurredAt: event.OccurredAt().UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		Data:       event.Payload(),
	})
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	err = f.w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.EventType()),
		Value: b,
		Topic: f.topic,
	})
	if err != nil {
		return fmt.Errorf("write kafka message: %w", err)
	}
	return nil
}

// Publish lets the forwarder stand in for the bus in one-shot CLI commands.
func (f *KafkaForwarder) Publish(ctx context.Context, event Event) error {
	return f.Forward(ctx, event)
}

func (f *KafkaForwarder) Close() {
	if err := f.w.Close(); err != nil {
		f.l.Error(fmt.Sprintf("close kafka writer: %s", err))
	}
}

type kafkaLogger struct {
	l     *slog.Logger
	level slog.Level
}

func (k *kafkaLogger) Printf(format string, v ...any) {
	k.l.Log(context.Background(), k.level, fmt.Sprintf(format, v...))
}
