package rest

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"salonbook/internal/domain"
	"salonbook/internal/service/appointments"
	"salonbook/internal/service/reports"
	"salonbook/internal/store"
)

type AppointmentsService interface {
	Create(ctx context.Context, in appointments.CreateInput) (domain.Appointment, error)
	SetStatus(ctx context.Context, id uuid.UUID, status domain.Status) (domain.Appointment, error)
	Reschedule(ctx context.Context, in appointments.RescheduleInput) (domain.Appointment, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (domain.Appointment, error)
	List(ctx context.Context, f appointments.Filter) ([]domain.Appointment, error)
	SubmitRating(ctx context.Context, id uuid.UUID, rating int, comment string) (domain.Appointment, error)
	RespondToRating(ctx context.Context, id uuid.UUID, response string) (domain.Appointment, error)
	AverageRatings(ctx context.Context) ([]appointments.EmployeeRating, error)
}

type ReportsService interface {
	Counts(ctx context.Context, g reports.Granularity) ([]reports.CountRow, error)
	Revenue(ctx context.Context, by reports.GroupBy) (reports.RevenueReport, error)
}

type handlers struct {
	svc     AppointmentsService
	reports ReportsService
	catalog store.CatalogReader
	log     *slog.Logger
}

type createAppointmentRequest struct {
	Date         string `json:"date"`
	StartTime    string `json:"start_time"`
	EmployeeName string `json:"employee_name"`
	ServiceName  string `json:"service_name"`
}

type setStatusRequest struct {
	Status string `json:"status"`
}

type rescheduleRequest struct {
	Date         string `json:"date"`
	StartTime    string `json:"start_time"`
	EmployeeName string `json:"employee_name,omitempty"`
	ServiceName  string `json:"service_name,omitempty"`
}

type ratingRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment,omitempty"`
}

type responseRequest struct {
	Response string `json:"response"`
}

func (h *handlers) createAppointment(w http.ResponseWriter, r *http.Request) {
	var req createAppointmentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
		return
	}

	key := r.Header.Get("Idempotency-Key")
	if key == "" {
		key = r.Header.Get("X-Idempotency-Key")
	}

	appt, err := h.svc.Create(r.Context(), appointments.CreateInput{
		Date:           req.Date,
		StartTime:      req.StartTime,
		EmployeeName:   req.EmployeeName,
		ServiceName:    req.ServiceName,
		IdempotencyKey: key,
	})
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAppointmentResponse(appt))
}

func (h *handlers) listAppointments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	appts, err := h.svc.List(r.Context(), appointments.Filter{
		Search:       q.Get("search"),
		Status:       q.Get("status"),
		Date:         q.Get("date"),
		Month:        q.Get("month"),
		EmployeeName: q.Get("employee"),
	})
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	out := make([]appointmentResponse, 0, len(appts))
	for _, a := range appts {
		out = append(out, toAppointmentResponse(a))
	}
	writeJSON(w, http.StatusOK, map[string]any{"appointments": out})
}

func (h *handlers) getAppointment(w http.ResponseWriter, r *http.Request) {
	id, ok := appointmentID(w, r)
	if !ok {
		return
	}
	appt, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
}

func (h *handlers) setStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := appointmentID(w, r)
	if !ok {
		return
	}
	var req setStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
		return
	}
	st, ok := domain.ParseStatus(req.Status)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_request", Details: "unknown status", Field: "status"})
		return
	}

	appt, err := h.svc.SetStatus(r.Context(), id, st)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
}

func (h *handlers) reschedule(w http.ResponseWriter, r *http.Request) {
	id, ok := appointmentID(w, r)
	if !ok {
		return
	}
	var req rescheduleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
		return
	}

	appt, err := h.svc.Reschedule(r.Context(), appointments.RescheduleInput{
		ID:           id,
		Date:         req.Date,
		StartTime:    req.StartTime,
		EmployeeName: req.EmployeeName,
		ServiceName:  req.ServiceName,
	})
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
}

func (h *handlers) deleteAppointment(w http.ResponseWriter, r *http.Request) {
	id, ok := appointmentID(w, r)
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) submitRating(w http.ResponseWriter, r *http.Request) {
	id, ok := appointmentID(w, r)
	if !ok {
		return
	}
	var req ratingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
		return
	}

	appt, err := h.svc.SubmitRating(r.Context(), id, req.Rating, req.Comment)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
}

func (h *handlers) respondToRating(w http.ResponseWriter, r *http.Request) {
	id, ok := appointmentID(w, r)
	if !ok {
		return
	}
	var req responseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
		return
	}

	appt, err := h.svc.RespondToRating(r.Context(), id, req.Response)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
}

type countRow struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

func (h *handlers) reportCounts(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("granularity")
	if raw == "" {
		raw = string(reports.ByDay)
	}
	g, err := reports.ParseGranularity(raw)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_request", Details: err.Error(), Field: "granularity"})
		return
	}

	rows, err := h.reports.Counts(r.Context(), g)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	out := make([]countRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, countRow{Key: row.Key, Count: row.Count})
	}
	writeJSON(w, http.StatusOK, map[string]any{"granularity": g, "rows": out})
}

type revenueRow struct {
	Group   string `json:"group"`
	Month   string `json:"month"`
	Revenue int64  `json:"revenue"`
}

func (h *handlers) reportRevenue(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("group_by")
	if raw == "" {
		raw = string(reports.ByEmployee)
	}
	by, err := reports.ParseGroupBy(raw)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_request", Details: err.Error(), Field: "group_by"})
		return
	}

	rep, err := h.reports.Revenue(r.Context(), by)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	out := make([]revenueRow, 0, len(rep.Rows))
	for _, row := range rep.Rows {
		out = append(out, revenueRow{Group: row.Group, Month: row.Month, Revenue: row.Revenue})
	}
	writeJSON(w, http.StatusOK, map[string]any{"group_by": by, "rows": out, "total": rep.Total})
}

type employeeRating struct {
	EmployeeName string  `json:"employee_name"`
	Average      float64 `json:"average"`
	Count        int     `json:"count"`
}

func (h *handlers) averageRatings(w http.ResponseWriter, r *http.Request) {
	avgs, err := h.svc.AverageRatings(r.Context())
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	out := make([]employeeRating, 0, len(avgs))
	for _, a := range avgs {
		out = append(out, employeeRating{EmployeeName: a.EmployeeName, Average: a.Average, Count: a.Count})
	}
	writeJSON(w, http.StatusOK, map[string]any{"ratings": out})
}

func (h *handlers) listEmployees(w http.ResponseWriter, r *http.Request) {
	c, err := h.catalog.Catalog(r.Context())
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"employees": c.Employees})
}

func (h *handlers) listServices(w http.ResponseWriter, r *http.Request) {
	c, err := h.catalog.Catalog(r.Context())
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"services": c.Services})
}

func appointmentID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(chi.URLParam(r, "id")))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a valid UUID")
		return uuid.Nil, false
	}
	return id, true
}
