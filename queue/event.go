// Package queue carries reservation events to the notification side: a
// RabbitMQ or Kafka publisher on the booking path and a RabbitMQ consumer that
// sends the confirmation email.
package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ReservationCreatedQueue is the durable queue (and default Kafka topic) of
// reservation events.
const ReservationCreatedQueue = "reservation.created"

// EventItem is one line item of a created reservation.
type EventItem struct {
	ItemType  string `json:"itemType"`
	Title     string `json:"title"`
	Quantity  int    `json:"quantity"`
	Amount    string `json:"amount"`
	Component bool   `json:"component,omitempty"`
}

// ReservationCreatedEvent is published after a reservation commits.
type ReservationCreatedEvent struct {
	EventID            string      `json:"eventId"`
	ReservationID      uint        `json:"reservationId"`
	ConfirmationNumber string      `json:"confirmationNumber"`
	ItemType           string      `json:"itemType"`
	GuestEmail         string      `json:"guestEmail"`
	GuestName          string      `json:"guestName"`
	CheckInDate        string      `json:"checkInDate"`
	CheckOutDate       string      `json:"checkOutDate"`
	TotalAmount        string      `json:"totalAmount"`
	Currency           string      `json:"currency"`
	Items              []EventItem `json:"items"`
	CreatedAt          time.Time   `json:"createdAt"`
}

// NewEventID returns a fresh message id.
func NewEventID() string {
	return uuid.NewString()
}

func (e ReservationCreatedEvent) Encode() ([]byte, error) {
	if e.EventID == "" {
		e.EventID = NewEventID()
	}
	body, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal reservation event: %w", err)
	}
	return body, nil
}

func DecodeReservationCreated(body []byte) (ReservationCreatedEvent, error) {
	var ev ReservationCreatedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return ReservationCreatedEvent{}, fmt.Errorf("unmarshal reservation event: %w", err)
	}
	if ev.ReservationID == 0 || ev.ConfirmationNumber == "" {
		return ReservationCreatedEvent{}, fmt.Errorf("reservation event %q is incomplete", ev.EventID)
	}
	return ev, nil
}
