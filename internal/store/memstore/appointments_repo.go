package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"salonbook/internal/domain"
	"salonbook/internal/store"
)

// AppointmentRepo keeps the appointment book in process memory. Transactions
// work on a copy of the book that replaces the original only when fn succeeds.
type AppointmentRepo struct {
	mu   sync.RWMutex
	rows map[uuid.UUID]domain.Appointment
	now  func() time.Time
}

func NewAppointmentRepo() *AppointmentRepo {
	return &AppointmentRepo{
		rows: make(map[uuid.UUID]domain.Appointment),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

type bookTx struct {
	rows map[uuid.UUID]domain.Appointment
	now  func() time.Time
}

func (r *AppointmentRepo) InTransaction(ctx context.Context, fn func(ctx context.Context, tx store.BookTx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	tx := &bookTx{rows: make(map[uuid.UUID]domain.Appointment, len(r.rows)), now: r.now}
	for id, a := range r.rows {
		tx.rows[id] = a
	}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	r.rows = tx.rows
	return nil
}

func (r *AppointmentRepo) Get(ctx context.Context, id uuid.UUID) (domain.Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.rows[id]
	if !ok {
		return domain.Appointment{}, store.ErrNotFound
	}
	return a, nil
}

func (r *AppointmentRepo) List(ctx context.Context) ([]domain.Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Appointment, 0, len(r.rows))
	for _, a := range r.rows {
		out = append(out, a)
	}
	sortAppointments(out)
	return out, nil
}

func (t *bookTx) GetAppointment(ctx context.Context, id uuid.UUID) (domain.Appointment, error) {
	a, ok := t.rows[id]
	if !ok {
		return domain.Appointment{}, store.ErrNotFound
	}
	return a, nil
}

func (t *bookTx) ListAppointmentsOn(ctx context.Context, date string) ([]domain.Appointment, error) {
	var out []domain.Appointment
	for _, a := range t.rows {
		if a.Date == date {
			out = append(out, a)
		}
	}
	sortAppointments(out)
	return out, nil
}

func (t *bookTx) InsertAppointment(ctx context.Context, appt domain.Appointment) (domain.Appointment, error) {
	if appt.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return domain.Appointment{}, err
		}
		appt.ID = id
	}
	if existing, ok := t.rows[appt.ID]; ok {
		if !store.SameBooking(existing, appt) {
			return domain.Appointment{}, store.ErrIdempotencyConflict
		}
		return existing, nil
	}

	now := t.now()
	if appt.CreatedAt.IsZero() {
		appt.CreatedAt = now
	}
	appt.UpdatedAt = now
	t.rows[appt.ID] = appt
	return appt, nil
}

func (t *bookTx) UpdateAppointment(ctx context.Context, appt domain.Appointment) (domain.Appointment, error) {
	existing, ok := t.rows[appt.ID]
	if !ok {
		return domain.Appointment{}, store.ErrNotFound
	}
	appt.CreatedAt = existing.CreatedAt
	appt.UpdatedAt = t.now()
	t.rows[appt.ID] = appt
	return appt, nil
}

func (t *bookTx) DeleteAppointment(ctx context.Context, id uuid.UUID) error {
	if _, ok := t.rows[id]; !ok {
		return store.ErrNotFound
	}
	delete(t.rows, id)
	return nil
}

func sortAppointments(rows []domain.Appointment) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Date != rows[j].Date {
			return rows[i].Date < rows[j].Date
		}
		if rows[i].StartTime != rows[j].StartTime {
			return rows[i].StartTime < rows[j].StartTime
		}
		return rows[i].ID.String() < rows[j].ID.String()
	})
}
