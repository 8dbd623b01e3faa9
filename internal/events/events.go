package events

import (
	"context"
	"time"

	"github.com/google/uuid"

	"salonbook/internal/domain"
)

const (
	TypeAppointmentCreated     = "appointment.created"
	TypeAppointmentStatus      = "appointment.status_changed"
	TypeAppointmentRescheduled = "appointment.rescheduled"
	TypeAppointmentDeleted     = "appointment.deleted"
	TypeAppointmentRated       = "appointment.rated"
	TypeRatingResponded        = "appointment.rating_responded"
)

// Event is emitted after a booking mutation has been committed.
type Event struct {
	ID            string    `json:"event_id"`
	Type          string    `json:"event_type"`
	OccurredAt    time.Time `json:"occurred_at"`
	AppointmentID string    `json:"appointment_id"`
	EmployeeName  string    `json:"employee_name,omitempty"`
	ServiceName   string    `json:"service_name,omitempty"`
	Date          string    `json:"date,omitempty"`
	StartTime     string    `json:"start_time,omitempty"`
	Status        string    `json:"status,omitempty"`
	Rating        *int      `json:"rating,omitempty"`
}

// NewAppointmentEvent captures the appointment fields downstream consumers
// (reminders, exports) care about.
func NewAppointmentEvent(eventType string, a domain.Appointment) Event {
	return Event{
		ID:            uuid.NewString(),
		Type:          eventType,
		OccurredAt:    time.Now().UTC(),
		AppointmentID: a.ID.String(),
		EmployeeName:  a.EmployeeName,
		ServiceName:   a.ServiceName,
		Date:          a.Date,
		StartTime:     a.StartTime,
		Status:        string(a.Status),
		Rating:        a.Rating,
	}
}

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Nop discards events. It is used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
