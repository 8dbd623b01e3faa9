package domain

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

var statusLabels = map[Status]string{
	StatusPending:   "Chờ duyệt",
	StatusConfirmed: "Xác nhận",
	StatusCancelled: "Hủy",
	StatusCompleted: "Hoàn thành",
}

// Statuses lists every status in lifecycle order.
func Statuses() []Status {
	return []Status{StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted}
}

func (s Status) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// Label returns the operator-facing label used by the salon front desk.
func (s Status) Label() string {
	return statusLabels[s]
}

// Active reports whether the appointment still occupies its slot.
func (s Status) Active() bool {
	return s.Valid() && s != StatusCancelled
}

// ParseStatus accepts either the status code or its front-desk label.
func ParseStatus(raw string) (Status, bool) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return "", false
	}
	if s := Status(strings.ToLower(v)); s.Valid() {
		return s, true
	}
	for s, label := range statusLabels {
		if label == v {
			return s, true
		}
	}
	return "", false
}

type Appointment struct {
	bun.BaseModel `bun:"table:appointments"`

	ID              uuid.UUID `bun:"id,pk,type:uuid"`
	Date            string    `bun:"date,notnull"`
	StartTime       string    `bun:"start_time,notnull"`
	EmployeeID      string    `bun:"employee_id"`
	EmployeeName    string    `bun:"employee_name,notnull"`
	ServiceID       string    `bun:"service_id"`
	ServiceName     string    `bun:"service_name,notnull"`
	DurationMinutes *int      `bun:"duration_minutes"`
	Status          Status    `bun:"status,notnull"`
	Rating          *int      `bun:"rating"`
	Comment         *string   `bun:"comment"`
	Response        *string   `bun:"response"`
	CreatedAt       time.Time `bun:"created_at,notnull"`
	UpdatedAt       time.Time `bun:"updated_at,notnull"`
}

func (a *Appointment) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if a.ID == uuid.Nil {
			id, err := uuid.NewV7()
			if err != nil {
				return err
			}
			a.ID = id
		}
		if a.CreatedAt.IsZero() {
			a.CreatedAt = now
		}
		if a.UpdatedAt.IsZero() {
			a.UpdatedAt = now
		}
	case *bun.UpdateQuery:
		a.UpdatedAt = now
	}
	return nil
}

// Minutes returns a duration snapshot for Appointment.DurationMinutes.
func Minutes(m int) *int {
	return &m
}

// SnapshotMinutes returns the duration captured at booking time, or 0 for
// records booked before durations were stored.
func (a Appointment) SnapshotMinutes() int {
	if a.DurationMinutes == nil {
		return 0
	}
	return *a.DurationMinutes
}

// Month returns the YYYY-MM prefix of the appointment date.
func (a Appointment) Month() string {
	return prefix(a.Date, 7)
}

// Year returns the YYYY prefix of the appointment date.
func (a Appointment) Year() string {
	return prefix(a.Date, 4)
}

func prefix(s string, n int) string {
	if len(s) < n {
		return s
	}
	return s[:n]
}
