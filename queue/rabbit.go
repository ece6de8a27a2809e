package queue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// RabbitPublisher publishes reservation events to a durable RabbitMQ queue.
// Each publish opens its own connection.
type RabbitPublisher struct {
	URL    string
	Queue  string
	Logger *slog.Logger
}

func NewRabbitPublisher(url string, logger *slog.Logger) *RabbitPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &RabbitPublisher{URL: url, Queue: ReservationCreatedQueue, Logger: logger}
}

func (p *RabbitPublisher) NotifyReservationCreated(ctx context.Context, event ReservationCreatedEvent) error {
	conn, err := amqp.Dial(p.URL)
	if err != nil {
		return fmt.Errorf("rabbitmq dial: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("rabbitmq channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := declareQueue(ch, p.Queue); err != nil {
		return err
	}

	pub, err := rabbitPublishing(event, time.Now().UTC())
	if err != nil {
		return err
	}
	if err := ch.PublishWithContext(ctx, "", p.Queue, false, false, pub); err != nil {
		return fmt.Errorf("rabbitmq publish: %w", err)
	}

	p.Logger.Debug("reservation event published",
		"transport", "rabbitmq",
		"queue", p.Queue,
		"event_id", pub.MessageId,
		"confirmation", event.ConfirmationNumber,
	)
	return nil
}

// rabbitPublishing builds a persistent JSON message whose MessageId is the
// event id, so consumers can drop redeliveries.
func rabbitPublishing(event ReservationCreatedEvent, at time.Time) (amqp.Publishing, error) {
	if event.EventID == "" {
		event.EventID = NewEventID()
	}
	body, err := event.Encode()
	if err != nil {
		return amqp.Publishing{}, err
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.EventID,
		Timestamp:    at,
		Body:         body,
	}, nil
}

func declareQueue(ch *amqp.Channel, name string) (amqp.Queue, error) {
	q, err := ch.QueueDeclare(name, true, false, false, false, nil)
	if err != nil {
		return amqp.Queue{}, fmt.Errorf("rabbitmq queue declare %s: %w", name, err)
	}
	return q, nil
}
