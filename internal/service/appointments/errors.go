package appointments

import (
	"fmt"

	"github.com/google/uuid"

	"salonbook/internal/domain"
	"salonbook/internal/store"
)

type ValidationError struct {
	Field string
	msg   string
}

func (e *ValidationError) Error() string {
	return e.msg
}

func validationError(field, msg string) error {
	return &ValidationError{Field: field, msg: msg}
}

// ConflictError reports the booking a candidate slot collides with.
type ConflictError struct {
	AppointmentID uuid.UUID
	EmployeeName  string
	Slot          domain.Slot
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("employee %s is already booked at %s", e.EmployeeName, e.Slot)
}

func (e *ConflictError) Is(target error) bool {
	return target == store.ErrConflict
}

func conflictError(c domain.Conflict) error {
	return &ConflictError{AppointmentID: c.AppointmentID, EmployeeName: c.EmployeeName, Slot: c.Slot}
}

type NotFoundError struct {
	ID uuid.UUID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("appointment %s not found", e.ID)
}

func (e *NotFoundError) Unwrap() error {
	return store.ErrNotFound
}

// InvalidStateError is returned when an operation is not allowed in the
// appointment's current status.
type InvalidStateError struct {
	Status domain.Status
	msg    string
}

func (e *InvalidStateError) Error() string {
	return e.msg
}
