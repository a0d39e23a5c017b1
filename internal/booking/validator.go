// Package booking implements reservation business rules: field
// validation, date rules and room-availability conflict detection.
package booking

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Seiiyes/HotelReservation/internal/models"
)

// FieldError is a single validation failure tagged with the offending
// field. Field is empty for reservation-level failures such as a date
// conflict.
type FieldError struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// ValidationErrors accumulates validation failures. A nil or empty
// slice means the input passed every applicable check.
type ValidationErrors []FieldError

// Add appends a failure.
func (v *ValidationErrors) Add(field, message string) {
	*v = append(*v, FieldError{Field: field, Message: message})
}

// Empty reports whether no failures were recorded.
func (v ValidationErrors) Empty() bool { return len(v) == 0 }

// Error joins all messages; ValidationErrors doubles as an error so
// callers can propagate it directly.
func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, fe := range v {
		if fe.Field != "" {
			msgs[i] = fe.Field + ": " + fe.Message
		} else {
			msgs[i] = fe.Message
		}
	}
	return strings.Join(msgs, "; ")
}

// Store is the read access the validator needs. The database package
// satisfies it.
type Store interface {
	CustomerExists(ctx context.Context, id int64) (bool, error)
	RoomExists(ctx context.Context, id int64) (bool, error)
	HasDateConflict(ctx context.Context, roomID int64, checkIn, checkOut time.Time, excludeID int64) (bool, error)
}

// Validator checks reservations against the booking rules. It is pure
// over the provided reservation plus store reads; it never writes.
type Validator struct {
	store Store
	now   func() time.Time
}

// NewValidator creates a validator backed by the given store.
func NewValidator(store Store) *Validator {
	return &Validator{store: store, now: time.Now}
}

// Validate runs all applicable checks and accumulates their failures.
// Cheap structural and date checks always run; existence checks run
// only once those pass, and the availability check runs only once
// existence passed, since querying overlap against malformed input is
// meaningless. A reservation with ID 0 is treated as new; edits keep a
// past check-in without error because the stay may already have
// started.
//
// The returned error reports store failures only; rule violations are
// in the ValidationErrors.
func (v *Validator) Validate(ctx context.Context, r *models.Reservation) (ValidationErrors, error) {
	var errs ValidationErrors

	// 1. Required fields.
	if r.CustomerID == 0 {
		errs.Add("customer_id", "customer is required")
	}
	if r.RoomID == 0 {
		errs.Add("room_id", "room is required")
	}
	if r.CheckIn.IsZero() {
		errs.Add("check_in", "check-in date is required")
	}
	if r.CheckOut.IsZero() {
		errs.Add("check_out", "check-out date is required")
	}

	// 2. Date rules, on calendar dates.
	checkIn := models.DateOnly(r.CheckIn)
	checkOut := models.DateOnly(r.CheckOut)
	today := models.DateOnly(v.now())

	isNew := r.ID == 0
	if !r.CheckIn.IsZero() && isNew && checkIn.Before(today) {
		errs.Add("check_in", "check-in date cannot be before today")
	}
	if !r.CheckIn.IsZero() && !r.CheckOut.IsZero() && !checkOut.After(checkIn) {
		errs.Add("check_out", "check-out date must be after the check-in date")
	}

	if !errs.Empty() {
		return errs, nil
	}

	// 3. Referential checks.
	customerOK, err := v.store.CustomerExists(ctx, r.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("check customer: %w", err)
	}
	if !customerOK {
		errs.Add("customer_id", "the selected customer does not exist")
	}

	roomOK, err := v.store.RoomExists(ctx, r.RoomID)
	if err != nil {
		return nil, fmt.Errorf("check room: %w", err)
	}
	if !roomOK {
		errs.Add("room_id", "the selected room does not exist")
	}

	if !errs.Empty() {
		return errs, nil
	}

	// 4. Availability.
	conflict, err := v.store.HasDateConflict(ctx, r.RoomID, checkIn, checkOut, r.ID)
	if err != nil {
		return nil, fmt.Errorf("check availability: %w", err)
	}
	if conflict {
		errs.Add("", "the room is already reserved for the selected dates")
	}

	return errs, nil
}
