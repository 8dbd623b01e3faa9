package appointments

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/google/uuid"

	"salonbook/internal/domain"
	"salonbook/internal/events"
	"salonbook/internal/store"
	"salonbook/internal/store/memstore"
)

type fakeCatalog struct {
	catalogFn func(ctx context.Context) (domain.Catalog, error)
}

func (f *fakeCatalog) Catalog(ctx context.Context) (domain.Catalog, error) {
	if f.catalogFn == nil {
		panic("Catalog not configured")
	}
	return f.catalogFn(ctx)
}

type fakeRepo struct {
	inTransactionFn func(ctx context.Context, fn func(ctx context.Context, tx store.BookTx) error) error
	getFn           func(ctx context.Context, id uuid.UUID) (domain.Appointment, error)
	listFn          func(ctx context.Context) ([]domain.Appointment, error)
}

func (f *fakeRepo) InTransaction(ctx context.Context, fn func(ctx context.Context, tx store.BookTx) error) error {
	if f.inTransactionFn == nil {
		panic("InTransaction not configured")
	}
	return f.inTransactionFn(ctx, fn)
}

func (f *fakeRepo) Get(ctx context.Context, id uuid.UUID) (domain.Appointment, error) {
	if f.getFn == nil {
		panic("Get not configured")
	}
	return f.getFn(ctx, id)
}

func (f *fakeRepo) List(ctx context.Context) ([]domain.Appointment, error) {
	if f.listFn == nil {
		panic("List not configured")
	}
	return f.listFn(ctx)
}

type recordingPublisher struct {
	events []events.Event
}

func (p *recordingPublisher) Publish(ctx context.Context, ev events.Event) error {
	p.events = append(p.events, ev)
	return nil
}

func salonCatalog() domain.Catalog {
	return domain.Catalog{
		Employees: []domain.Employee{
			{ID: "emp-lan", Name: "Lan", WorkStart: "08:00", WorkEnd: "17:00", DailyLimit: 8},
			{ID: "emp-mai", Name: "Mai", WorkStart: "09:00", WorkEnd: "18:00", DailyLimit: 6},
		},
		Services: []domain.Service{
			{ID: "svc-cut", Name: "Cut", DurationMinutes: 60, Price: 100000},
			{ID: "svc-wash", Name: "Wash", DurationMinutes: 30, Price: 50000},
			{ID: "svc-dye", Name: "Dye", DurationMinutes: 90, Price: 200000},
		},
	}
}

func newTestService(t *testing.T) (*Service, *recordingPublisher) {
	t.Helper()
	pub := &recordingPublisher{}
	svc := NewService(
		memstore.NewAppointmentRepo(),
		memstore.NewCatalogStore(salonCatalog()),
		WithPublisher(pub),
	)
	return svc, pub
}

func mustCreate(t *testing.T, svc *Service, date, start, employee, service string) domain.Appointment {
	t.Helper()
	a, err := svc.Create(context.Background(), CreateInput{
		Date:         date,
		StartTime:    start,
		EmployeeName: employee,
		ServiceName:  service,
	})
	if err != nil {
		t.Fatalf("Create(%s %s %s %s) error: %v", date, start, employee, service, err)
	}
	return a
}

func TestServiceCreate_SnapshotsCatalogAndStartsPending(t *testing.T) {
	svc, pub := newTestService(t)

	a := mustCreate(t, svc, "2024-05-01", "9:00", " Lan ", "Cut")

	if a.ID == uuid.Nil {
		t.Fatalf("expected id to be assigned")
	}
	if a.ID.Version() != 7 {
		t.Fatalf("id version = %d, want 7", a.ID.Version())
	}
	if a.Status != domain.StatusPending {
		t.Fatalf("status = %q, want %q", a.Status, domain.StatusPending)
	}
	if a.StartTime != "09:00" {
		t.Fatalf("start_time = %q, want %q", a.StartTime, "09:00")
	}
	if a.EmployeeID != "emp-lan" || a.ServiceID != "svc-cut" || a.SnapshotMinutes() != 60 {
		t.Fatalf("unexpected snapshot: %+v", a)
	}
	if len(pub.events) != 1 || pub.events[0].Type != events.TypeAppointmentCreated {
		t.Fatalf("events = %+v, want one %s", pub.events, events.TypeAppointmentCreated)
	}

	got, err := svc.Get(context.Background(), a.ID)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got.ID != a.ID {
		t.Fatalf("Get id = %s, want %s", got.ID, a.ID)
	}
}

func TestServiceCreate_ValidationOrder(t *testing.T) {
	svc, _ := newTestService(t)

	tests := []struct {
		name      string
		in        CreateInput
		wantField string
		wantMsg   string
	}{
		{
			name:      "missing date",
			in:        CreateInput{StartTime: "09:00", EmployeeName: "Lan", ServiceName: "Cut"},
			wantField: "date",
			wantMsg:   "date is required",
		},
		{
			name:      "missing start time",
			in:        CreateInput{Date: "2024-05-01", EmployeeName: "Lan", ServiceName: "Cut"},
			wantField: "start_time",
			wantMsg:   "start_time is required",
		},
		{
			name:      "malformed date",
			in:        CreateInput{Date: "01/05/2024", StartTime: "09:00", EmployeeName: "Lan", ServiceName: "Cut"},
			wantField: "date",
			wantMsg:   "date must be YYYY-MM-DD",
		},
		{
			name:      "missing employee",
			in:        CreateInput{Date: "2024-05-01", StartTime: "09:00", ServiceName: "Cut"},
			wantField: "employee_name",
			wantMsg:   "employee_name is required",
		},
		{
			name:      "missing service",
			in:        CreateInput{Date: "2024-05-01", StartTime: "09:00", EmployeeName: "Lan"},
			wantField: "service_name",
			wantMsg:   "service_name is required",
		},
		{
			name:      "missing employee reported before malformed date",
			in:        CreateInput{Date: "bad", StartTime: "09:00", ServiceName: "Cut"},
			wantField: "employee_name",
			wantMsg:   "employee_name is required",
		},
		{
			name:      "missing service reported before malformed start time",
			in:        CreateInput{Date: "2024-05-01", StartTime: "nine", EmployeeName: "Lan"},
			wantField: "service_name",
			wantMsg:   "service_name is required",
		},
		{
			name:      "unknown service checked before unknown employee",
			in:        CreateInput{Date: "2024-05-01", StartTime: "09:00", EmployeeName: "Nobody", ServiceName: "Massage"},
			wantField: "service_name",
			wantMsg:   "unknown service",
		},
		{
			name:      "unknown employee",
			in:        CreateInput{Date: "2024-05-01", StartTime: "09:00", EmployeeName: "Nobody", ServiceName: "Cut"},
			wantField: "employee_name",
			wantMsg:   "unknown employee",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tt.in)
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("error type = %T (%v), want *ValidationError", err, err)
			}
			if vErr.Field != tt.wantField {
				t.Fatalf("field = %q, want %q", vErr.Field, tt.wantField)
			}
			if vErr.Error() != tt.wantMsg {
				t.Fatalf("error = %q, want %q", vErr.Error(), tt.wantMsg)
			}
		})
	}
}

func TestServiceCreate_RejectsOverlapForSameEmployee(t *testing.T) {
	svc, pub := newTestService(t)
	ctx := context.Background()

	first := mustCreate(t, svc, "2024-05-01", "09:00", "Lan", "Cut")

	_, err := svc.Create(ctx, CreateInput{Date: "2024-05-01", StartTime: "09:30", EmployeeName: "Lan", ServiceName: "Wash"})
	var cErr *ConflictError
	if !errors.As(err, &cErr) {
		t.Fatalf("error type = %T (%v), want *ConflictError", err, err)
	}
	if !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected errors.Is(err, store.ErrConflict)")
	}
	if cErr.AppointmentID != first.ID {
		t.Fatalf("conflicting id = %s, want %s", cErr.AppointmentID, first.ID)
	}
	if cErr.Slot.String() != "2024-05-01 09:00-10:00" {
		t.Fatalf("conflicting slot = %q", cErr.Slot.String())
	}

	mustCreate(t, svc, "2024-05-01", "10:00", "Lan", "Wash")
	mustCreate(t, svc, "2024-05-01", "09:30", "Mai", "Wash")
	mustCreate(t, svc, "2024-05-02", "09:30", "Lan", "Wash")

	rows, err := svc.List(ctx, Filter{})
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("len(rows) = %d, want 4", len(rows))
	}
	if len(pub.events) != 4 {
		t.Fatalf("published %d events, want 4", len(pub.events))
	}
	assertNoOverlap(t, rows)
}

func TestServiceCancellationFreesSlot(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	first := mustCreate(t, svc, "2024-05-01", "09:00", "Lan", "Cut")
	if _, err := svc.SetStatus(ctx, first.ID, domain.StatusCancelled); err != nil {
		t.Fatalf("SetStatus error: %v", err)
	}

	second := mustCreate(t, svc, "2024-05-01", "09:30", "Lan", "Cut")

	_, err := svc.SetStatus(ctx, first.ID, domain.StatusConfirmed)
	var cErr *ConflictError
	if !errors.As(err, &cErr) {
		t.Fatalf("reactivate error = %v, want *ConflictError", err)
	}
	if cErr.AppointmentID != second.ID {
		t.Fatalf("conflicting id = %s, want %s", cErr.AppointmentID, second.ID)
	}

	got, err := svc.Get(ctx, first.ID)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got.Status != domain.StatusCancelled {
		t.Fatalf("status after rejected reactivation = %q, want %q", got.Status, domain.StatusCancelled)
	}
}

func TestServiceCancellationFreesExactStart(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	first := mustCreate(t, svc, "2024-05-01", "09:00", "Lan", "Cut")
	if _, err := svc.SetStatus(ctx, first.ID, domain.StatusCancelled); err != nil {
		t.Fatalf("SetStatus error: %v", err)
	}

	second := mustCreate(t, svc, "2024-05-01", "09:00", "Lan", "Cut")
	if second.ID == first.ID {
		t.Fatalf("rebooking reused id %s", first.ID)
	}

	rows, err := svc.List(ctx, Filter{})
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d, want 2", len(rows))
	}
	assertNoOverlap(t, rows)
}

func TestServiceCreate_ZeroLengthSnapshotSurvivesCatalogChange(t *testing.T) {
	ctx := context.Background()
	initial := salonCatalog()
	initial.Services = append(initial.Services, domain.Service{ID: "svc-consult", Name: "Consult", DurationMinutes: 0})
	catalog := memstore.NewCatalogStore(initial)
	svc := NewService(memstore.NewAppointmentRepo(), catalog)

	consult := mustCreate(t, svc, "2024-05-01", "09:00", "Lan", "Consult")
	if consult.DurationMinutes == nil || *consult.DurationMinutes != 0 {
		t.Fatalf("duration snapshot = %v, want 0", consult.DurationMinutes)
	}

	changed := salonCatalog()
	changed.Services = append(changed.Services, domain.Service{ID: "svc-consult", Name: "Consult", DurationMinutes: 60})
	if err := catalog.SaveCatalog(ctx, changed); err != nil {
		t.Fatalf("SaveCatalog error: %v", err)
	}

	mustCreate(t, svc, "2024-05-01", "09:30", "Lan", "Wash")

	moved, err := svc.Reschedule(ctx, RescheduleInput{ID: consult.ID, Date: "2024-05-01", StartTime: "08:00"})
	if err != nil {
		t.Fatalf("Reschedule error: %v", err)
	}
	if moved.SnapshotMinutes() != 0 || moved.DurationMinutes == nil {
		t.Fatalf("duration snapshot after reschedule = %v, want 0", moved.DurationMinutes)
	}
}

func TestServiceSetStatus_SameStatusIsNoop(t *testing.T) {
	svc, pub := newTestService(t)
	ctx := context.Background()

	a := mustCreate(t, svc, "2024-05-01", "09:00", "Lan", "Cut")

	first, err := svc.SetStatus(ctx, a.ID, domain.StatusConfirmed)
	if err != nil {
		t.Fatalf("SetStatus error: %v", err)
	}
	second, err := svc.SetStatus(ctx, a.ID, domain.StatusConfirmed)
	if err != nil {
		t.Fatalf("second SetStatus error: %v", err)
	}
	if first.Status != second.Status || !first.UpdatedAt.Equal(second.UpdatedAt) {
		t.Fatalf("repeated SetStatus changed the record: %+v vs %+v", first, second)
	}
	if len(pub.events) != 2 {
		t.Fatalf("published %d events, want 2", len(pub.events))
	}
}

func TestServiceSetStatus_PermissiveTransitionsAndErrors(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	a := mustCreate(t, svc, "2024-05-01", "09:00", "Lan", "Cut")
	for _, st := range []domain.Status{domain.StatusCompleted, domain.StatusPending, domain.StatusCancelled, domain.StatusCompleted} {
		got, err := svc.SetStatus(ctx, a.ID, st)
		if err != nil {
			t.Fatalf("SetStatus(%s) error: %v", st, err)
		}
		if got.Status != st {
			t.Fatalf("status = %q, want %q", got.Status, st)
		}
	}

	_, err := svc.SetStatus(ctx, a.ID, domain.Status("archived"))
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("unknown status error = %v, want *ValidationError", err)
	}

	missing := uuid.MustParse("00000000-0000-0000-0000-00000000dead")
	_, err = svc.SetStatus(ctx, missing, domain.StatusConfirmed)
	var nfErr *NotFoundError
	if !errors.As(err, &nfErr) {
		t.Fatalf("missing id error = %v, want *NotFoundError", err)
	}
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected errors.Is(err, store.ErrNotFound)")
	}
}

func TestServiceReschedule(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	a := mustCreate(t, svc, "2024-05-01", "09:00", "Lan", "Cut")
	b := mustCreate(t, svc, "2024-05-01", "11:00", "Lan", "Wash")

	moved, err := svc.Reschedule(ctx, RescheduleInput{ID: a.ID, Date: "2024-05-01", StartTime: "09:30"})
	if err != nil {
		t.Fatalf("Reschedule overlapping its own old slot error: %v", err)
	}
	if moved.StartTime != "09:30" || moved.EmployeeName != "Lan" || moved.ServiceName != "Cut" {
		t.Fatalf("unexpected rescheduled record: %+v", moved)
	}

	_, err = svc.Reschedule(ctx, RescheduleInput{ID: a.ID, Date: "2024-05-01", StartTime: "10:30"})
	var cErr *ConflictError
	if !errors.As(err, &cErr) {
		t.Fatalf("Reschedule into another booking error = %v, want *ConflictError", err)
	}
	if cErr.AppointmentID != b.ID {
		t.Fatalf("conflicting id = %s, want %s", cErr.AppointmentID, b.ID)
	}

	switched, err := svc.Reschedule(ctx, RescheduleInput{ID: a.ID, Date: "2024-05-01", StartTime: "10:30", EmployeeName: "Mai", ServiceName: "Dye"})
	if err != nil {
		t.Fatalf("Reschedule to another employee error: %v", err)
	}
	if switched.EmployeeID != "emp-mai" || switched.ServiceID != "svc-dye" || switched.SnapshotMinutes() != 90 {
		t.Fatalf("unexpected switched record: %+v", switched)
	}

	_, err = svc.Reschedule(ctx, RescheduleInput{ID: a.ID, Date: "2024-05-01", StartTime: "10:30", ServiceName: "Massage"})
	var vErr *ValidationError
	if !errors.As(err, &vErr) || vErr.Error() != "unknown service" {
		t.Fatalf("Reschedule unknown service error = %v, want unknown service", err)
	}

	rows, err := svc.List(ctx, Filter{})
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	assertNoOverlap(t, rows)
}

func TestServiceDelete(t *testing.T) {
	svc, pub := newTestService(t)
	ctx := context.Background()

	a := mustCreate(t, svc, "2024-05-01", "09:00", "Lan", "Cut")
	if err := svc.Delete(ctx, a.ID); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if last := pub.events[len(pub.events)-1]; last.Type != events.TypeAppointmentDeleted {
		t.Fatalf("last event = %s, want %s", last.Type, events.TypeAppointmentDeleted)
	}

	if _, err := svc.Get(ctx, a.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("Get after delete error = %v, want not found", err)
	}
	if err := svc.Delete(ctx, a.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("second Delete error = %v, want not found", err)
	}

	mustCreate(t, svc, "2024-05-01", "09:00", "Lan", "Cut")
}

func TestServiceCreate_IdempotencyKey(t *testing.T) {
	svc, pub := newTestService(t)
	ctx := context.Background()

	in := CreateInput{Date: "2024-05-01", StartTime: "09:00", EmployeeName: "Lan", ServiceName: "Cut", IdempotencyKey: "k1"}
	first, err := svc.Create(ctx, in)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	second, err := svc.Create(ctx, in)
	if err != nil {
		t.Fatalf("replayed Create error: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("ids differ: %s vs %s", first.ID, second.ID)
	}
	if len(pub.events) != 1 {
		t.Fatalf("published %d events, want 1", len(pub.events))
	}

	in.StartTime = "13:00"
	if _, err := svc.Create(ctx, in); !errors.Is(err, store.ErrIdempotencyConflict) {
		t.Fatalf("reused key error = %v, want ErrIdempotencyConflict", err)
	}
}

func TestServiceList_Filters(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	a := mustCreate(t, svc, "2024-05-01", "09:00", "Lan", "Cut")
	mustCreate(t, svc, "2024-05-01", "08:00", "Mai", "Wash")
	mustCreate(t, svc, "2024-06-03", "09:00", "Lan", "Dye")
	if _, err := svc.SetStatus(ctx, a.ID, domain.StatusCompleted); err != nil {
		t.Fatalf("SetStatus error: %v", err)
	}

	tests := []struct {
		name string
		f    Filter
		want int
	}{
		{name: "all", f: Filter{}, want: 3},
		{name: "search employee case insensitive", f: Filter{Search: "lAN"}, want: 2},
		{name: "search service", f: Filter{Search: "wash"}, want: 1},
		{name: "status label", f: Filter{Status: "Hoàn thành"}, want: 1},
		{name: "status code", f: Filter{Status: "pending"}, want: 2},
		{name: "date", f: Filter{Date: "2024-05-01"}, want: 2},
		{name: "month", f: Filter{Month: "2024-06"}, want: 1},
		{name: "employee", f: Filter{EmployeeName: "Mai"}, want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := svc.List(ctx, tt.f)
			if err != nil {
				t.Fatalf("List error: %v", err)
			}
			if len(rows) != tt.want {
				t.Fatalf("len(rows) = %d, want %d", len(rows), tt.want)
			}
		})
	}

	rows, err := svc.List(ctx, Filter{Date: "2024-05-01"})
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if rows[0].StartTime != "08:00" {
		t.Fatalf("first row start = %q, want 08:00", rows[0].StartTime)
	}

	var vErr *ValidationError
	if _, err := svc.List(ctx, Filter{Status: "bogus"}); !errors.As(err, &vErr) {
		t.Fatalf("bad status filter error = %v, want *ValidationError", err)
	}
	if _, err := svc.List(ctx, Filter{Month: "2024-13"}); !errors.As(err, &vErr) {
		t.Fatalf("bad month filter error = %v, want *ValidationError", err)
	}
}

func TestServiceCreate_StoreFailureLeavesNoState(t *testing.T) {
	boom := errors.New("disk full")
	pub := &recordingPublisher{}
	svc := NewService(
		&fakeRepo{
			inTransactionFn: func(ctx context.Context, fn func(ctx context.Context, tx store.BookTx) error) error {
				return boom
			},
		},
		&fakeCatalog{
			catalogFn: func(ctx context.Context) (domain.Catalog, error) {
				return salonCatalog(), nil
			},
		},
		WithPublisher(pub),
	)

	_, err := svc.Create(context.Background(), CreateInput{Date: "2024-05-01", StartTime: "09:00", EmployeeName: "Lan", ServiceName: "Cut"})
	if !errors.Is(err, boom) {
		t.Fatalf("error = %v, want %v", err, boom)
	}
	if len(pub.events) != 0 {
		t.Fatalf("published %d events after failure, want 0", len(pub.events))
	}
}

func TestServiceCreate_CatalogFailure(t *testing.T) {
	boom := errors.New("catalog unavailable")
	svc := NewService(&fakeRepo{}, &fakeCatalog{
		catalogFn: func(ctx context.Context) (domain.Catalog, error) {
			return domain.Catalog{}, boom
		},
	})

	_, err := svc.Create(context.Background(), CreateInput{Date: "2024-05-01", StartTime: "09:00", EmployeeName: "Lan", ServiceName: "Cut"})
	if !errors.Is(err, boom) {
		t.Fatalf("error = %v, want %v", err, boom)
	}
}

func TestServiceRatings(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	a := mustCreate(t, svc, "2024-05-01", "09:00", "Lan", "Cut")
	b := mustCreate(t, svc, "2024-05-01", "10:00", "Lan", "Wash")
	mustCreate(t, svc, "2024-05-01", "09:00", "Mai", "Wash")

	_, err := svc.SubmitRating(ctx, a.ID, 5, "great")
	var sErr *InvalidStateError
	if !errors.As(err, &sErr) {
		t.Fatalf("rating pending appointment error = %v, want *InvalidStateError", err)
	}
	if sErr.Status != domain.StatusPending {
		t.Fatalf("reported status = %q, want %q", sErr.Status, domain.StatusPending)
	}

	for _, id := range []uuid.UUID{a.ID, b.ID} {
		if _, err := svc.SetStatus(ctx, id, domain.StatusCompleted); err != nil {
			t.Fatalf("SetStatus error: %v", err)
		}
	}

	var vErr *ValidationError
	if _, err := svc.SubmitRating(ctx, a.ID, 6, ""); !errors.As(err, &vErr) {
		t.Fatalf("rating 6 error = %v, want *ValidationError", err)
	}
	if _, err := svc.SubmitRating(ctx, a.ID, 0, ""); !errors.As(err, &vErr) {
		t.Fatalf("rating 0 error = %v, want *ValidationError", err)
	}
	missing := uuid.MustParse("00000000-0000-0000-0000-00000000beef")
	if _, err := svc.SubmitRating(ctx, missing, 4, ""); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("unknown id error = %v, want not found", err)
	}

	if _, err := svc.SubmitRating(ctx, a.ID, 1, "first try"); err != nil {
		t.Fatalf("SubmitRating error: %v", err)
	}
	rated, err := svc.SubmitRating(ctx, a.ID, 5, " great ")
	if err != nil {
		t.Fatalf("SubmitRating error: %v", err)
	}
	if *rated.Rating != 5 || rated.Comment == nil || *rated.Comment != "great" {
		t.Fatalf("last write must win: rating=%v comment=%v", rated.Rating, rated.Comment)
	}
	if _, err := svc.SubmitRating(ctx, b.ID, 3, ""); err != nil {
		t.Fatalf("SubmitRating error: %v", err)
	}

	responded, err := svc.RespondToRating(ctx, a.ID, "thank you")
	if err != nil {
		t.Fatalf("RespondToRating error: %v", err)
	}
	if responded.Response == nil || *responded.Response != "thank you" {
		t.Fatalf("response = %v, want %q", responded.Response, "thank you")
	}

	avgs, err := svc.AverageRatings(ctx)
	if err != nil {
		t.Fatalf("AverageRatings error: %v", err)
	}
	if len(avgs) != 1 {
		t.Fatalf("len(avgs) = %d, want 1 (unrated employees omitted)", len(avgs))
	}
	if avgs[0].EmployeeName != "Lan" || math.Abs(avgs[0].Average-4.0) > 1e-9 || avgs[0].Count != 2 {
		t.Fatalf("average = %+v, want Lan 4.0 over 2", avgs[0])
	}
}

func assertNoOverlap(t *testing.T, rows []domain.Appointment) {
	t.Helper()
	catalog := salonCatalog()
	for i, a := range rows {
		if !a.Status.Active() {
			continue
		}
		rest := append(append([]domain.Appointment(nil), rows[:i]...), rows[i+1:]...)
		c := domain.Candidate{
			EmployeeID:      a.EmployeeID,
			EmployeeName:    a.EmployeeName,
			Date:            a.Date,
			StartTime:       a.StartTime,
			DurationMinutes: domain.DurationFor(catalog, a),
		}
		if domain.HasConflict(c, rest, catalog) {
			t.Fatalf("appointment %s overlaps another active booking", a.ID)
		}
	}
}
