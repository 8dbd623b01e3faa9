package appointments

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"salonbook/internal/domain"
	"salonbook/internal/events"
	"salonbook/internal/lock"
	"salonbook/internal/store"
)

const bookLockKey = "appointments"

type Service struct {
	repo      store.AppointmentRepository
	catalog   store.CatalogReader
	locker    lock.Locker
	publisher events.Publisher
	logger    *slog.Logger
}

type Option func(*Service)

func WithLocker(l lock.Locker) Option {
	return func(s *Service) { s.locker = l }
}

func WithPublisher(p events.Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

func NewService(repo store.AppointmentRepository, catalog store.CatalogReader, opts ...Option) *Service {
	s := &Service{
		repo:      repo,
		catalog:   catalog,
		locker:    lock.NewLocal(),
		publisher: events.Nop{},
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type CreateInput struct {
	Date           string
	StartTime      string
	EmployeeName   string
	ServiceName    string
	IdempotencyKey string
}

func (s *Service) Create(ctx context.Context, in CreateInput) (domain.Appointment, error) {
	employeeName := strings.TrimSpace(in.EmployeeName)
	serviceName := strings.TrimSpace(in.ServiceName)
	// Missing fields are reported before malformed ones.
	switch {
	case strings.TrimSpace(in.Date) == "":
		return domain.Appointment{}, validationError("date", "date is required")
	case strings.TrimSpace(in.StartTime) == "":
		return domain.Appointment{}, validationError("start_time", "start_time is required")
	case employeeName == "":
		return domain.Appointment{}, validationError("employee_name", "employee_name is required")
	case serviceName == "":
		return domain.Appointment{}, validationError("service_name", "service_name is required")
	}
	date, startTime, err := validateSlot(in.Date, in.StartTime)
	if err != nil {
		return domain.Appointment{}, err
	}

	catalog, err := s.catalog.Catalog(ctx)
	if err != nil {
		return domain.Appointment{}, err
	}
	svc, ok := catalog.ServiceByName(serviceName)
	if !ok {
		return domain.Appointment{}, validationError("service_name", "unknown service")
	}
	emp, ok := catalog.EmployeeByName(employeeName)
	if !ok {
		return domain.Appointment{}, validationError("employee_name", "unknown employee")
	}

	appt := domain.Appointment{
		Date:            date,
		StartTime:       startTime,
		EmployeeID:      emp.ID,
		EmployeeName:    emp.Name,
		ServiceID:       svc.ID,
		ServiceName:     svc.Name,
		DurationMinutes: domain.Minutes(svc.DurationMinutes),
		Status:          domain.StatusPending,
	}

	key := strings.TrimSpace(in.IdempotencyKey)
	if key != "" {
		if len(key) > 256 {
			return domain.Appointment{}, validationError("idempotency_key", "idempotency_key too long")
		}
		appt.ID = uuid.NewSHA1(uuid.NameSpaceOID, []byte("salonbook:create_appointment:"+key))
	} else {
		id, err := uuid.NewV7()
		if err != nil {
			return domain.Appointment{}, err
		}
		appt.ID = id
	}

	var out domain.Appointment
	replayed := false
	err = s.write(ctx, func(ctx context.Context, tx store.BookTx) error {
		if key != "" {
			existing, err := tx.GetAppointment(ctx, appt.ID)
			switch {
			case err == nil:
				if !store.SameBooking(existing, appt) {
					return store.ErrIdempotencyConflict
				}
				out = existing
				replayed = true
				return nil
			case !errors.Is(err, store.ErrNotFound):
				return err
			}
		}

		if err := ensureNoConflict(ctx, tx, catalog, candidateFor(catalog, appt)); err != nil {
			return err
		}
		created, err := tx.InsertAppointment(ctx, appt)
		if err != nil {
			return err
		}
		out = created
		return nil
	})
	if err != nil {
		return domain.Appointment{}, err
	}

	if !replayed {
		s.publish(ctx, events.TypeAppointmentCreated, out)
	}
	return out, nil
}

// SetStatus moves an appointment to any status. Reactivating a cancelled
// appointment re-checks its slot, since another booking may have taken it.
func (s *Service) SetStatus(ctx context.Context, id uuid.UUID, status domain.Status) (domain.Appointment, error) {
	if id == uuid.Nil {
		return domain.Appointment{}, validationError("appointment_id", "appointment_id is required")
	}
	if !status.Valid() {
		return domain.Appointment{}, validationError("status", "unknown status")
	}

	catalog, err := s.catalog.Catalog(ctx)
	if err != nil {
		return domain.Appointment{}, err
	}

	var out domain.Appointment
	changed := false
	err = s.write(ctx, func(ctx context.Context, tx store.BookTx) error {
		cur, err := tx.GetAppointment(ctx, id)
		if err != nil {
			return notFound(id, err)
		}
		if cur.Status == status {
			out = cur
			return nil
		}

		if !cur.Status.Active() && status.Active() {
			if err := ensureNoConflict(ctx, tx, catalog, candidateFor(catalog, cur)); err != nil {
				return err
			}
		}

		cur.Status = status
		updated, err := tx.UpdateAppointment(ctx, cur)
		if err != nil {
			return notFound(id, err)
		}
		out = updated
		changed = true
		return nil
	})
	if err != nil {
		return domain.Appointment{}, err
	}

	if changed {
		s.publish(ctx, events.TypeAppointmentStatus, out)
	}
	return out, nil
}

type RescheduleInput struct {
	ID        uuid.UUID
	Date      string
	StartTime string
	// EmployeeName and ServiceName are optional; empty keeps the current value.
	EmployeeName string
	ServiceName  string
}

func (s *Service) Reschedule(ctx context.Context, in RescheduleInput) (domain.Appointment, error) {
	if in.ID == uuid.Nil {
		return domain.Appointment{}, validationError("appointment_id", "appointment_id is required")
	}
	date, startTime, err := validateSlot(in.Date, in.StartTime)
	if err != nil {
		return domain.Appointment{}, err
	}

	catalog, err := s.catalog.Catalog(ctx)
	if err != nil {
		return domain.Appointment{}, err
	}

	var (
		svc    *domain.Service
		emp    *domain.Employee
		svcRaw = strings.TrimSpace(in.ServiceName)
		empRaw = strings.TrimSpace(in.EmployeeName)
	)
	if svcRaw != "" {
		found, ok := catalog.ServiceByName(svcRaw)
		if !ok {
			return domain.Appointment{}, validationError("service_name", "unknown service")
		}
		svc = &found
	}
	if empRaw != "" {
		found, ok := catalog.EmployeeByName(empRaw)
		if !ok {
			return domain.Appointment{}, validationError("employee_name", "unknown employee")
		}
		emp = &found
	}

	var out domain.Appointment
	err = s.write(ctx, func(ctx context.Context, tx store.BookTx) error {
		cur, err := tx.GetAppointment(ctx, in.ID)
		if err != nil {
			return notFound(in.ID, err)
		}

		next := cur
		next.Date = date
		next.StartTime = startTime
		if emp != nil {
			next.EmployeeID = emp.ID
			next.EmployeeName = emp.Name
		}
		if svc != nil && svc.ID != cur.ServiceID {
			next.ServiceID = svc.ID
			next.ServiceName = svc.Name
			next.DurationMinutes = domain.Minutes(svc.DurationMinutes)
		}

		if next.Status.Active() {
			if err := ensureNoConflict(ctx, tx, catalog, candidateFor(catalog, next)); err != nil {
				return err
			}
		}

		updated, err := tx.UpdateAppointment(ctx, next)
		if err != nil {
			return notFound(in.ID, err)
		}
		out = updated
		return nil
	})
	if err != nil {
		return domain.Appointment{}, err
	}

	s.publish(ctx, events.TypeAppointmentRescheduled, out)
	return out, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return validationError("appointment_id", "appointment_id is required")
	}

	var removed domain.Appointment
	err := s.write(ctx, func(ctx context.Context, tx store.BookTx) error {
		cur, err := tx.GetAppointment(ctx, id)
		if err != nil {
			return notFound(id, err)
		}
		if err := tx.DeleteAppointment(ctx, id); err != nil {
			return notFound(id, err)
		}
		removed = cur
		return nil
	})
	if err != nil {
		return err
	}

	s.publish(ctx, events.TypeAppointmentDeleted, removed)
	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (domain.Appointment, error) {
	if id == uuid.Nil {
		return domain.Appointment{}, validationError("appointment_id", "appointment_id is required")
	}
	a, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Appointment{}, notFound(id, err)
	}
	return a, nil
}

// write runs fn as the single read-check-write critical section of the book.
func (s *Service) write(ctx context.Context, fn func(ctx context.Context, tx store.BookTx) error) error {
	return s.locker.WithLock(ctx, bookLockKey, func(ctx context.Context) error {
		return s.repo.InTransaction(ctx, fn)
	})
}

func (s *Service) publish(ctx context.Context, eventType string, a domain.Appointment) {
	if err := s.publisher.Publish(ctx, events.NewAppointmentEvent(eventType, a)); err != nil {
		s.logger.WarnContext(ctx, "publish appointment event failed",
			slog.String("event_type", eventType),
			slog.String("appointment_id", a.ID.String()),
			slog.Any("err", err),
		)
	}
}

func validateSlot(rawDate, rawStart string) (string, string, error) {
	if strings.TrimSpace(rawDate) == "" {
		return "", "", validationError("date", "date is required")
	}
	if strings.TrimSpace(rawStart) == "" {
		return "", "", validationError("start_time", "start_time is required")
	}
	date, err := domain.NormalizeDate(rawDate)
	if err != nil {
		return "", "", validationError("date", err.Error())
	}
	startTime, err := domain.NormalizeClock(rawStart)
	if err != nil {
		return "", "", validationError("start_time", err.Error())
	}
	return date, startTime, nil
}

func candidateFor(catalog domain.Catalog, a domain.Appointment) domain.Candidate {
	return domain.Candidate{
		ExcludeID:       a.ID,
		EmployeeID:      a.EmployeeID,
		EmployeeName:    a.EmployeeName,
		Date:            a.Date,
		StartTime:       a.StartTime,
		DurationMinutes: domain.DurationFor(catalog, a),
	}
}

func ensureNoConflict(ctx context.Context, tx store.BookTx, catalog domain.Catalog, c domain.Candidate) error {
	existing, err := tx.ListAppointmentsOn(ctx, c.Date)
	if err != nil {
		return err
	}
	conflict, found, err := domain.FindConflict(c, existing, catalog)
	if err != nil {
		return validationError("start_time", err.Error())
	}
	if found {
		return conflictError(conflict)
	}
	return nil
}

func notFound(id uuid.UUID, err error) error {
	var nf *NotFoundError
	if errors.Is(err, store.ErrNotFound) && !errors.As(err, &nf) {
		return &NotFoundError{ID: id}
	}
	return err
}
