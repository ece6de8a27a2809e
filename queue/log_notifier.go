package queue

import (
	"context"
	"log/slog"
)

// LogNotifier only records the event. It is the default transport when no
// broker is configured.
type LogNotifier struct {
	Logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{Logger: logger}
}

func (n *LogNotifier) NotifyReservationCreated(ctx context.Context, event ReservationCreatedEvent) error {
	n.Logger.InfoContext(ctx, "reservation created",
		"reservation_id", event.ReservationID,
		"confirmation", event.ConfirmationNumber,
		"item_type", event.ItemType,
		"total", event.TotalAmount,
		"currency", event.Currency,
		"items", len(event.Items),
	)
	return nil
}
