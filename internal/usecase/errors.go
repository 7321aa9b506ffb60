package usecase

import (
	"errors"
	"fmt"

	"room-booking/internal/data/entity"
)

type ErrorKind string

const (
	KindInvalidInput ErrorKind = "invalid_input"
	KindConflict     ErrorKind = "conflict"
	KindNotFound     ErrorKind = "not_found"
	KindPersistence  ErrorKind = "persistence"
)

// ConflictReason refines KindConflict.
type ConflictReason string

const (
	ReasonInFlight ConflictReason = "in_flight"
	ReasonOverlap  ConflictReason = "overlap"
)

// BookingError is the only error type the core returns to callers.
type BookingError struct {
	Kind      ErrorKind
	Reason    ConflictReason
	Message   string
	Conflicts []*entity.Reservation
	Fields    map[string]string
	Err       error
}

func (e *BookingError) Error() string {
	msg := string(e.Kind)
	if e.Reason != "" {
		msg += "(" + string(e.Reason) + ")"
	}
	msg += ": " + e.Message
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *BookingError) Unwrap() error {
	return e.Err
}

// AsBookingError extracts a *BookingError from err's chain.
func AsBookingError(err error) (*BookingError, bool) {
	var be *BookingError
	if errors.As(err, &be) {
		return be, true
	}
	return nil, false
}

func IsKind(err error, kind ErrorKind) bool {
	be, ok := AsBookingError(err)
	return ok && be.Kind == kind
}

func IsConflict(err error, reason ConflictReason) bool {
	be, ok := AsBookingError(err)
	return ok && be.Kind == KindConflict && be.Reason == reason
}

func invalidInput(format string, args ...any) *BookingError {
	return &BookingError{Kind: KindInvalidInput, Message: fmt.Sprintf(format, args...)}
}

func invalidFields(fields map[string]string) *BookingError {
	return &BookingError{Kind: KindInvalidInput, Message: "validation failed", Fields: fields}
}

func notFound(format string, args ...any) *BookingError {
	return &BookingError{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func inFlight(key BookingKey) *BookingError {
	return &BookingError{
		Kind:    KindConflict,
		Reason:  ReasonInFlight,
		Message: fmt.Sprintf("another booking for room %d at %s %s is in progress", key.RoomID, key.Date, key.Start),
	}
}

func overlap(roomID int, window entity.Interval, conflicts []*entity.Reservation) *BookingError {
	return &BookingError{
		Kind:      KindConflict,
		Reason:    ReasonOverlap,
		Message:   fmt.Sprintf("room %d is already reserved during %s", roomID, window),
		Conflicts: conflicts,
	}
}

func persistence(err error, format string, args ...any) *BookingError {
	return &BookingError{Kind: KindPersistence, Message: fmt.Sprintf(format, args...), Err: err}
}
