package store

import (
	"context"

	"github.com/google/uuid"

	"salonbook/internal/domain"
)

// BookTx is the view of the appointment book available inside one write
// transaction. Every read-check-write sequence goes through it.
type BookTx interface {
	GetAppointment(ctx context.Context, id uuid.UUID) (domain.Appointment, error)
	ListAppointmentsOn(ctx context.Context, date string) ([]domain.Appointment, error)
	InsertAppointment(ctx context.Context, appt domain.Appointment) (domain.Appointment, error)
	UpdateAppointment(ctx context.Context, appt domain.Appointment) (domain.Appointment, error)
	DeleteAppointment(ctx context.Context, id uuid.UUID) error
}

type AppointmentRepository interface {
	InTransaction(ctx context.Context, fn func(ctx context.Context, tx BookTx) error) error

	Get(ctx context.Context, id uuid.UUID) (domain.Appointment, error)
	List(ctx context.Context) ([]domain.Appointment, error)
}

type CatalogReader interface {
	Catalog(ctx context.Context) (domain.Catalog, error)
}

type CatalogWriter interface {
	SaveCatalog(ctx context.Context, c domain.Catalog) error
}

// SameBooking reports whether a stored appointment matches a replayed create
// request carrying the same idempotency key.
func SameBooking(existing, requested domain.Appointment) bool {
	return existing.Date == requested.Date &&
		existing.StartTime == requested.StartTime &&
		existing.EmployeeID == requested.EmployeeID &&
		existing.EmployeeName == requested.EmployeeName &&
		existing.ServiceID == requested.ServiceID &&
		existing.SnapshotMinutes() == requested.SnapshotMinutes()
}
