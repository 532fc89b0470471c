package engine

import (
	"errors"
	"fmt"

	"millbook/internal/model"
)

// ErrSlotClosed rejects bookings whose interval falls inside a range the
// administrator has closed.
var ErrSlotClosed = errors.New("time slot closed by administrator")

// ValidationError reports malformed or out-of-range input. Always
// recoverable; the caller should re-prompt.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func validationErr(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// ConflictError reports an interval that overlaps existing bookings.
// Closure requests carry the blocking bookings so the admin can resolve
// them first; booking requests carry none.
type ConflictError struct {
	Bookings []model.Booking
}

func (e *ConflictError) Error() string {
	if len(e.Bookings) == 0 {
		return "time slot conflicts with an existing booking"
	}
	return fmt.Sprintf("time range blocked by %d existing booking(s)", len(e.Bookings))
}
