package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"reservation-backend/utils"
)

// ConfirmationSender delivers the guest-facing confirmation of an event.
type ConfirmationSender interface {
	SendReservationConfirmation(e utils.ReservationEmail) error
}

// Consumer reads reservation events from RabbitMQ and emails the guest.
type Consumer struct {
	URL    string
	Queue  string
	Sender ConfirmationSender
	Logger *slog.Logger
}

func NewConsumer(url string, sender ConfirmationSender, logger *slog.Logger) *Consumer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Consumer{URL: url, Queue: ReservationCreatedQueue, Sender: sender, Logger: logger}
}

// Run keeps a connection to the broker until ctx is done, reconnecting with
// exponential backoff capped at 30s.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		conn, err := amqp.Dial(c.URL)
		if err != nil {
			c.Logger.Warn("reservation consumer dial failed", "error", err, "retry_in", backoff.String())
			if !sleepCtx(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = c.consume(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.Logger.Warn("reservation consumer loop ended, reconnecting", "error", err)
		if !sleepCtx(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(20, 0, false); err != nil {
		c.Logger.Warn("reservation consumer qos failed", "error", err)
	}
	if _, err := declareQueue(ch, c.Queue); err != nil {
		return err
	}

	msgs, err := ch.ConsumeWithContext(ctx, c.Queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := c.Handle(d.Body); err != nil {
			c.Logger.Error("reservation event rejected", "error", err, "message_id", d.MessageId)
			// not requeued, a poison message would otherwise loop
			_ = d.Nack(false, false)
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

// Handle decodes one message body and sends the confirmation email.
func (c *Consumer) Handle(body []byte) error {
	ev, err := DecodeReservationCreated(body)
	if err != nil {
		return err
	}
	return c.Sender.SendReservationConfirmation(EmailFromEvent(ev))
}

// EmailFromEvent builds the confirmation email of an event. Package
// components are listed under their package.
func EmailFromEvent(ev ReservationCreatedEvent) utils.ReservationEmail {
	lines := make([]utils.ReservationLine, 0, len(ev.Items))
	for _, it := range ev.Items {
		title := it.Title
		if it.Component {
			title = "  " + title
		}
		lines = append(lines, utils.ReservationLine{
			Title:  title,
			Detail: fmt.Sprintf("%s x%d", it.ItemType, it.Quantity),
			Amount: it.Amount + " " + ev.Currency,
		})
	}
	return utils.ReservationEmail{
		To:                 ev.GuestEmail,
		GuestName:          ev.GuestName,
		ConfirmationNumber: ev.ConfirmationNumber,
		ItemType:           ev.ItemType,
		CheckInDate:        ev.CheckInDate,
		CheckOutDate:       ev.CheckOutDate,
		TotalAmount:        ev.TotalAmount,
		Currency:           ev.Currency,
		Lines:              lines,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
