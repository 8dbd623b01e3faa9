package grpc

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/timestamppb"

	"salonbook/internal/domain"
	"salonbook/internal/lock"
	"salonbook/internal/service/appointments"
	"salonbook/internal/service/reports"
	"salonbook/internal/store"
)

type AppointmentsServer struct {
	svc     appointmentsService
	reports reportsService
	catalog store.CatalogReader
	log     *slog.Logger
}

var _ AppointmentsServiceServer = (*AppointmentsServer)(nil)

type appointmentsService interface {
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

type reportsService interface {
	Counts(ctx context.Context, g reports.Granularity) ([]reports.CountRow, error)
	Revenue(ctx context.Context, by reports.GroupBy) (reports.RevenueReport, error)
}

func NewAppointmentsServer(svc appointmentsService, rep reportsService, catalog store.CatalogReader, log *slog.Logger) *AppointmentsServer {
	if log == nil {
		log = slog.Default()
	}
	return &AppointmentsServer{
		svc:     svc,
		reports: rep,
		catalog: catalog,
		log:     log.With(slog.String("component", "grpc.appointments")),
	}
}

func (s *AppointmentsServer) CreateAppointment(ctx context.Context, req *CreateAppointmentRequest) (*AppointmentResponse, error) {
	log := s.log.With(slog.String("rpc", "CreateAppointment"))

	if req == nil {
		log.Warn("invalid request", slog.String("reason", "nil_request"))
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	appt, err := s.svc.Create(ctx, appointments.CreateInput{
		Date:           req.Date,
		StartTime:      req.StartTime,
		EmployeeName:   req.EmployeeName,
		ServiceName:    req.ServiceName,
		IdempotencyKey: idempotencyKey(ctx),
	})
	if err != nil {
		return nil, toStatus(log, "appointment create failed", err,
			slog.String("employee_name", req.EmployeeName),
			slog.String("date", req.Date),
			slog.String("start_time", req.StartTime),
		)
	}

	log.Info(
		"appointment created",
		slog.String("appointment_id", appt.ID.String()),
		slog.String("employee_name", appt.EmployeeName),
		slog.String("date", appt.Date),
		slog.String("start_time", appt.StartTime),
	)
	return &AppointmentResponse{Appointment: toWireAppointment(appt)}, nil
}

func idempotencyKey(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	values := md.Get("idempotency-key")
	if len(values) == 0 {
		values = md.Get("x-idempotency-key")
	}
	if len(values) == 0 {
		return ""
	}
	return strings.TrimSpace(values[0])
}

func (s *AppointmentsServer) SetStatus(ctx context.Context, req *SetStatusRequest) (*AppointmentResponse, error) {
	log := s.log.With(slog.String("rpc", "SetStatus"))

	if req == nil {
		log.Warn("invalid request", slog.String("reason", "nil_request"))
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	id, err := parseAppointmentID(log, req.AppointmentId)
	if err != nil {
		return nil, err
	}
	st, ok := domain.ParseStatus(req.Status)
	if !ok {
		log.Warn("invalid request", slog.String("reason", "unknown_status"), slog.String("status", req.Status))
		return nil, status.Error(codes.InvalidArgument, "unknown status")
	}

	appt, err := s.svc.SetStatus(ctx, id, st)
	if err != nil {
		return nil, toStatus(log, "appointment status change failed", err, slog.String("appointment_id", id.String()))
	}

	log.Info("appointment status set", slog.String("appointment_id", id.String()), slog.String("status", string(appt.Status)))
	return &AppointmentResponse{Appointment: toWireAppointment(appt)}, nil
}

func (s *AppointmentsServer) RescheduleAppointment(ctx context.Context, req *RescheduleAppointmentRequest) (*AppointmentResponse, error) {
	log := s.log.With(slog.String("rpc", "RescheduleAppointment"))

	if req == nil {
		log.Warn("invalid request", slog.String("reason", "nil_request"))
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	id, err := parseAppointmentID(log, req.AppointmentId)
	if err != nil {
		return nil, err
	}

	appt, err := s.svc.Reschedule(ctx, appointments.RescheduleInput{
		ID:           id,
		Date:         req.Date,
		StartTime:    req.StartTime,
		EmployeeName: req.EmployeeName,
		ServiceName:  req.ServiceName,
	})
	if err != nil {
		return nil, toStatus(log, "appointment reschedule failed", err, slog.String("appointment_id", id.String()))
	}

	log.Info(
		"appointment rescheduled",
		slog.String("appointment_id", id.String()),
		slog.String("date", appt.Date),
		slog.String("start_time", appt.StartTime),
	)
	return &AppointmentResponse{Appointment: toWireAppointment(appt)}, nil
}

func (s *AppointmentsServer) DeleteAppointment(ctx context.Context, req *AppointmentIdRequest) (*DeleteAppointmentResponse, error) {
	log := s.log.With(slog.String("rpc", "DeleteAppointment"))

	if req == nil {
		log.Warn("invalid request", slog.String("reason", "nil_request"))
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	id, err := parseAppointmentID(log, req.AppointmentId)
	if err != nil {
		return nil, err
	}

	if err := s.svc.Delete(ctx, id); err != nil {
		return nil, toStatus(log, "appointment delete failed", err, slog.String("appointment_id", id.String()))
	}

	log.Info("appointment deleted", slog.String("appointment_id", id.String()))
	return &DeleteAppointmentResponse{}, nil
}

func (s *AppointmentsServer) GetAppointment(ctx context.Context, req *AppointmentIdRequest) (*AppointmentResponse, error) {
	log := s.log.With(slog.String("rpc", "GetAppointment"))

	if req == nil {
		log.Warn("invalid request", slog.String("reason", "nil_request"))
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	id, err := parseAppointmentID(log, req.AppointmentId)
	if err != nil {
		return nil, err
	}

	appt, err := s.svc.Get(ctx, id)
	if err != nil {
		return nil, toStatus(log, "appointment get failed", err, slog.String("appointment_id", id.String()))
	}
	return &AppointmentResponse{Appointment: toWireAppointment(appt)}, nil
}

func (s *AppointmentsServer) ListAppointments(ctx context.Context, req *ListAppointmentsRequest) (*ListAppointmentsResponse, error) {
	log := s.log.With(slog.String("rpc", "ListAppointments"))

	if req == nil {
		req = &ListAppointmentsRequest{}
	}

	appts, err := s.svc.List(ctx, appointments.Filter{
		Search:       req.Search,
		Status:       req.Status,
		Date:         req.Date,
		Month:        req.Month,
		EmployeeName: req.EmployeeName,
	})
	if err != nil {
		return nil, toStatus(log, "appointments list failed", err)
	}

	out := make([]*Appointment, 0, len(appts))
	for _, a := range appts {
		out = append(out, toWireAppointment(a))
	}

	log.Debug("appointments listed", slog.Int("count", len(out)))
	return &ListAppointmentsResponse{Appointments: out}, nil
}

func (s *AppointmentsServer) SubmitRating(ctx context.Context, req *SubmitRatingRequest) (*AppointmentResponse, error) {
	log := s.log.With(slog.String("rpc", "SubmitRating"))

	if req == nil {
		log.Warn("invalid request", slog.String("reason", "nil_request"))
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	id, err := parseAppointmentID(log, req.AppointmentId)
	if err != nil {
		return nil, err
	}

	appt, err := s.svc.SubmitRating(ctx, id, int(req.Rating), req.Comment)
	if err != nil {
		return nil, toStatus(log, "rating submit failed", err, slog.String("appointment_id", id.String()))
	}

	log.Info("rating submitted", slog.String("appointment_id", id.String()), slog.Int("rating", int(req.Rating)))
	return &AppointmentResponse{Appointment: toWireAppointment(appt)}, nil
}

func (s *AppointmentsServer) RespondToRating(ctx context.Context, req *RespondToRatingRequest) (*AppointmentResponse, error) {
	log := s.log.With(slog.String("rpc", "RespondToRating"))

	if req == nil {
		log.Warn("invalid request", slog.String("reason", "nil_request"))
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	id, err := parseAppointmentID(log, req.AppointmentId)
	if err != nil {
		return nil, err
	}

	appt, err := s.svc.RespondToRating(ctx, id, req.Response)
	if err != nil {
		return nil, toStatus(log, "rating response failed", err, slog.String("appointment_id", id.String()))
	}

	log.Info("rating response stored", slog.String("appointment_id", id.String()))
	return &AppointmentResponse{Appointment: toWireAppointment(appt)}, nil
}

func (s *AppointmentsServer) ReportCounts(ctx context.Context, req *ReportCountsRequest) (*ReportCountsResponse, error) {
	log := s.log.With(slog.String("rpc", "ReportCounts"))

	if req == nil {
		log.Warn("invalid request", slog.String("reason", "nil_request"))
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	g, err := reports.ParseGranularity(req.Granularity)
	if err != nil {
		log.Warn("invalid request", slog.Any("err", err))
		return nil, status.Error(codes.InvalidArgument, "granularity must be day, month or year")
	}

	rows, err := s.reports.Counts(ctx, g)
	if err != nil {
		return nil, toStatus(log, "count report failed", err)
	}

	out := make([]*CountRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, &CountRow{Key: r.Key, Count: int32(r.Count)})
	}
	return &ReportCountsResponse{Rows: out}, nil
}

func (s *AppointmentsServer) ReportRevenue(ctx context.Context, req *ReportRevenueRequest) (*ReportRevenueResponse, error) {
	log := s.log.With(slog.String("rpc", "ReportRevenue"))

	if req == nil {
		log.Warn("invalid request", slog.String("reason", "nil_request"))
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	by, err := reports.ParseGroupBy(req.GroupBy)
	if err != nil {
		log.Warn("invalid request", slog.Any("err", err))
		return nil, status.Error(codes.InvalidArgument, "group_by must be employee or service")
	}

	rep, err := s.reports.Revenue(ctx, by)
	if err != nil {
		return nil, toStatus(log, "revenue report failed", err)
	}

	out := make([]*RevenueRow, 0, len(rep.Rows))
	for _, r := range rep.Rows {
		out = append(out, &RevenueRow{Group: r.Group, Month: r.Month, Revenue: r.Revenue})
	}
	return &ReportRevenueResponse{Rows: out, Total: rep.Total}, nil
}

func (s *AppointmentsServer) AverageRatings(ctx context.Context, req *AverageRatingsRequest) (*AverageRatingsResponse, error) {
	log := s.log.With(slog.String("rpc", "AverageRatings"))

	avgs, err := s.svc.AverageRatings(ctx)
	if err != nil {
		return nil, toStatus(log, "average ratings failed", err)
	}

	out := make([]*EmployeeRating, 0, len(avgs))
	for _, a := range avgs {
		out = append(out, &EmployeeRating{EmployeeName: a.EmployeeName, Average: a.Average, Count: int32(a.Count)})
	}
	return &AverageRatingsResponse{Ratings: out}, nil
}

func (s *AppointmentsServer) ListCatalog(ctx context.Context, req *ListCatalogRequest) (*ListCatalogResponse, error) {
	log := s.log.With(slog.String("rpc", "ListCatalog"))

	c, err := s.catalog.Catalog(ctx)
	if err != nil {
		return nil, toStatus(log, "catalog list failed", err)
	}

	resp := &ListCatalogResponse{
		Employees: make([]*Employee, 0, len(c.Employees)),
		Services:  make([]*Service, 0, len(c.Services)),
	}
	for _, e := range c.Employees {
		resp.Employees = append(resp.Employees, &Employee{
			Id:         e.ID,
			Name:       e.Name,
			WorkStart:  e.WorkStart,
			WorkEnd:    e.WorkEnd,
			DailyLimit: int32(e.DailyLimit),
		})
	}
	for _, sv := range c.Services {
		resp.Services = append(resp.Services, &Service{
			Id:              sv.ID,
			Name:            sv.Name,
			DurationMinutes: int32(sv.DurationMinutes),
			Price:           sv.Price,
		})
	}
	return resp, nil
}

func parseAppointmentID(log *slog.Logger, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		log.Warn("invalid request", slog.String("reason", "invalid_uuid"))
		return uuid.Nil, status.Error(codes.InvalidArgument, "appointment_id must be a UUID")
	}
	return id, nil
}

// toStatus maps booking errors onto gRPC codes and logs them at a level
// matching who is at fault.
func toStatus(log *slog.Logger, msg string, err error, attrs ...any) error {
	attrs = append(attrs, slog.Any("err", err))

	var (
		vErr  *appointments.ValidationError
		cErr  *appointments.ConflictError
		isErr *appointments.InvalidStateError
	)
	switch {
	case errors.As(err, &vErr):
		log.Warn("invalid request", attrs...)
		return status.Error(codes.InvalidArgument, vErr.Error())
	case errors.As(err, &cErr):
		log.Info("appointment conflict", attrs...)
		return status.Error(codes.FailedPrecondition, cErr.Error()+". Pick a different slot.")
	case errors.Is(err, store.ErrConflict):
		log.Info("appointment conflict", attrs...)
		return status.Error(codes.FailedPrecondition, "The employee is already booked during that time. Pick a different slot.")
	case errors.Is(err, store.ErrIdempotencyConflict):
		log.Info("idempotency conflict", attrs...)
		return status.Error(codes.FailedPrecondition, "This request key was already used for a different appointment. Try again.")
	case errors.As(err, &isErr):
		log.Info("invalid state", attrs...)
		return status.Error(codes.FailedPrecondition, isErr.Error())
	case errors.Is(err, store.ErrNotFound):
		log.Info("appointment not found", attrs...)
		return status.Error(codes.NotFound, "appointment not found")
	case errors.Is(err, lock.ErrNotAcquired):
		log.Warn("write lock busy", attrs...)
		return status.Error(codes.Unavailable, "the appointment book is busy, retry shortly")
	case errors.Is(err, context.DeadlineExceeded):
		log.Warn("deadline exceeded", attrs...)
		return status.Error(codes.DeadlineExceeded, "deadline exceeded")
	}
	log.Error(msg, attrs...)
	return status.Error(codes.Internal, "internal error")
}

func toWireAppointment(a domain.Appointment) *Appointment {
	out := &Appointment{
		Id:              a.ID.String(),
		Date:            a.Date,
		StartTime:       a.StartTime,
		EmployeeId:      a.EmployeeID,
		EmployeeName:    a.EmployeeName,
		ServiceId:       a.ServiceID,
		ServiceName:     a.ServiceName,
		DurationMinutes: int32(a.SnapshotMinutes()),
		Status:          string(a.Status),
		StatusLabel:     a.Status.Label(),
	}
	if a.Rating != nil {
		r := int32(*a.Rating)
		out.Rating = &r
	}
	if a.Comment != nil {
		out.Comment = *a.Comment
	}
	if a.Response != nil {
		out.Response = *a.Response
	}
	if !a.CreatedAt.IsZero() {
		out.CreatedAt = timestamppb.New(a.CreatedAt)
	}
	if !a.UpdatedAt.IsZero() {
		out.UpdatedAt = timestamppb.New(a.UpdatedAt)
	}
	return out
}
