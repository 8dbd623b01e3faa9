package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"salonbook/internal/domain"
	"salonbook/internal/lock"
	"salonbook/internal/service/appointments"
	"salonbook/internal/store"
)

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
	Field   string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, details string) {
	writeJSON(w, status, errorResponse{Error: code, Details: details})
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// writeServiceError maps booking errors onto HTTP statuses. Unexpected errors
// are logged and never echoed to the caller.
func writeServiceError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	var (
		vErr  *appointments.ValidationError
		cErr  *appointments.ConflictError
		isErr *appointments.InvalidStateError
	)
	switch {
	case errors.As(err, &vErr):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_request", Details: vErr.Error(), Field: vErr.Field})
	case errors.As(err, &cErr):
		writeError(w, http.StatusConflict, "slot_conflict", cErr.Error())
	case errors.Is(err, store.ErrConflict):
		writeError(w, http.StatusConflict, "slot_conflict", "the employee is already booked during that time")
	case errors.Is(err, store.ErrIdempotencyConflict):
		writeError(w, http.StatusConflict, "idempotency_conflict", "idempotency key was already used for a different appointment")
	case errors.As(err, &isErr):
		writeError(w, http.StatusConflict, "invalid_state", isErr.Error())
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "appointment_not_found", "appointment not found")
	case errors.Is(err, lock.ErrNotAcquired):
		writeError(w, http.StatusServiceUnavailable, "book_busy", "the appointment book is busy, retry shortly")
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusGatewayTimeout, "deadline_exceeded", "request timed out")
	default:
		log.ErrorContext(r.Context(), "request failed",
			slog.String("request_id", RequestIDFromContext(r.Context())),
			slog.Any("err", err),
		)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
	}
}

type appointmentResponse struct {
	ID              string     `json:"id"`
	Date            string     `json:"date"`
	StartTime       string     `json:"start_time"`
	EmployeeID      string     `json:"employee_id,omitempty"`
	EmployeeName    string     `json:"employee_name"`
	ServiceID       string     `json:"service_id,omitempty"`
	ServiceName     string     `json:"service_name"`
	DurationMinutes int        `json:"duration_minutes"`
	Status          string     `json:"status"`
	StatusLabel     string     `json:"status_label"`
	Rating          *int       `json:"rating,omitempty"`
	Comment         *string    `json:"comment,omitempty"`
	Response        *string    `json:"response,omitempty"`
	CreatedAt       *time.Time `json:"created_at,omitempty"`
	UpdatedAt       *time.Time `json:"updated_at,omitempty"`
}

func toAppointmentResponse(a domain.Appointment) appointmentResponse {
	out := appointmentResponse{
		ID:              a.ID.String(),
		Date:            a.Date,
		StartTime:       a.StartTime,
		EmployeeID:      a.EmployeeID,
		EmployeeName:    a.EmployeeName,
		ServiceID:       a.ServiceID,
		ServiceName:     a.ServiceName,
		DurationMinutes: a.SnapshotMinutes(),
		Status:          string(a.Status),
		StatusLabel:     a.Status.Label(),
		Rating:          a.Rating,
		Comment:         a.Comment,
		Response:        a.Response,
	}
	if !a.CreatedAt.IsZero() {
		t := a.CreatedAt
		out.CreatedAt = &t
	}
	if !a.UpdatedAt.IsZero() {
		t := a.UpdatedAt
		out.UpdatedAt = &t
	}
	return out
}
