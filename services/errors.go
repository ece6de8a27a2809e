package services

import (
	"errors"
	"fmt"
)

// Failure kinds of the booking path. Match them with errors.Is.
var (
	ErrValidation   = errors.New("validation error")
	ErrNotFound     = errors.New("not found")
	ErrCapacity     = errors.New("capacity exceeded")
	ErrStorage      = errors.New("storage error")
	ErrNotification = errors.New("notification error")
)

// BookingError carries a human readable message for the caller together with
// its kind and, for storage failures, the underlying cause.
type BookingError struct {
	Kind    error
	Message string
	Err     error
}

func (e *BookingError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Kind.Error()
}

func (e *BookingError) Is(target error) bool { return target == e.Kind }

func (e *BookingError) Unwrap() error { return e.Err }

func validationError(format string, args ...any) error {
	return &BookingError{Kind: ErrValidation, Message: fmt.Sprintf(format, args...)}
}

func notFoundError(format string, args ...any) error {
	return &BookingError{Kind: ErrNotFound, Message: fmt.Sprintf(format, args...)}
}

func capacityError(format string, args ...any) error {
	return &BookingError{Kind: ErrCapacity, Message: fmt.Sprintf(format, args...)}
}

// storageError wraps a store failure. Errors that already carry a kind pass
// through untouched so a capacity denial raised inside a transaction keeps
// its meaning.
func storageError(op string, err error) error {
	if err == nil {
		return nil
	}
	var be *BookingError
	if errors.As(err, &be) {
		return err
	}
	return &BookingError{Kind: ErrStorage, Message: "failed to " + op, Err: err}
}

// ErrorKind names the kind of err for logs, metrics and response bodies.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return "validation_error"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrCapacity):
		return "capacity_exceeded"
	case errors.Is(err, ErrNotification):
		return "notification_error"
	default:
		return "internal_error"
	}
}
