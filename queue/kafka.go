package queue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes reservation events to a Kafka topic keyed by
// confirmation number.
type KafkaPublisher struct {
	writer messageWriter
	topic  string
	logger *slog.Logger
}

func NewKafkaPublisher(brokers []string, topic string, logger *slog.Logger) *KafkaPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	if topic == "" {
		topic = ReservationCreatedQueue
	}
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireOne,
			WriteTimeout:           10 * time.Second,
			AllowAutoTopicCreation: true,
		},
		topic:  topic,
		logger: logger,
	}
}

func (p *KafkaPublisher) NotifyReservationCreated(ctx context.Context, event ReservationCreatedEvent) error {
	if event.EventID == "" {
		event.EventID = NewEventID()
	}
	msg, err := kafkaMessage(event, time.Now().UTC())
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka write: %w", err)
	}
	p.logger.Debug("reservation event published",
		slog.String("transport", "kafka"),
		slog.String("topic", p.topic),
		slog.String("event_id", event.EventID),
		slog.String("confirmation", event.ConfirmationNumber),
	)
	return nil
}

func kafkaMessage(event ReservationCreatedEvent, at time.Time) (kafka.Message, error) {
	if event.EventID == "" {
		event.EventID = NewEventID()
	}
	body, err := event.Encode()
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Key:   []byte(event.ConfirmationNumber),
		Value: body,
		Time:  at,
		Headers: []kafka.Header{
			{Key: "event-id", Value: []byte(event.EventID)},
			{Key: "event-type", Value: []byte(ReservationCreatedQueue)},
		},
	}, nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
