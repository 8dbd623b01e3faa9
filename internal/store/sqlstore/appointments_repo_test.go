package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"salonbook/internal/domain"
	"salonbook/internal/store"
)

func openTestDB(t *testing.T) *bun.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := OpenSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	if err != nil {
		t.Fatalf("OpenSQLite error: %v", err)
	}
	t.Cleanup(func() {
		_ = Close(db)
	})

	if err := CreateSchema(context.Background(), db); err != nil {
		t.Fatalf("CreateSchema error: %v", err)
	}
	return db
}

func testAppointment(id, date, start string) domain.Appointment {
	return domain.Appointment{
		ID:              uuid.MustParse(id),
		Date:            date,
		StartTime:       start,
		EmployeeID:      "emp-lan",
		EmployeeName:    "Lan",
		ServiceID:       "svc-cut",
		ServiceName:     "Cut",
		DurationMinutes: domain.Minutes(30),
		Status:          domain.StatusPending,
	}
}

func TestAppointmentRepo_InsertGetUpdateDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewAppointmentRepo(openTestDB(t))
	appt := testAppointment("00000000-0000-0000-0000-000000000101", "2024-05-01", "09:00")

	err := repo.InTransaction(ctx, func(ctx context.Context, tx store.BookTx) error {
		_, err := tx.InsertAppointment(ctx, appt)
		return err
	})
	if err != nil {
		t.Fatalf("insert error: %v", err)
	}

	got, err := repo.Get(ctx, appt.ID)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got.EmployeeName != "Lan" || got.SnapshotMinutes() != 30 || got.Status != domain.StatusPending {
		t.Fatalf("unexpected appointment: %+v", got)
	}
	if got.CreatedAt.IsZero() {
		t.Fatalf("expected created_at to be set")
	}

	rating := 5
	comment := "great"
	err = repo.InTransaction(ctx, func(ctx context.Context, tx store.BookTx) error {
		cur, err := tx.GetAppointment(ctx, appt.ID)
		if err != nil {
			return err
		}
		cur.Status = domain.StatusCompleted
		cur.Rating = &rating
		cur.Comment = &comment
		_, err = tx.UpdateAppointment(ctx, cur)
		return err
	})
	if err != nil {
		t.Fatalf("update error: %v", err)
	}

	got, err = repo.Get(ctx, appt.ID)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got.Status != domain.StatusCompleted {
		t.Fatalf("status = %q, want %q", got.Status, domain.StatusCompleted)
	}
	if got.Rating == nil || *got.Rating != 5 {
		t.Fatalf("rating = %v, want 5", got.Rating)
	}
	if got.Comment == nil || *got.Comment != "great" {
		t.Fatalf("comment = %v, want %q", got.Comment, "great")
	}

	err = repo.InTransaction(ctx, func(ctx context.Context, tx store.BookTx) error {
		return tx.DeleteAppointment(ctx, appt.ID)
	})
	if err != nil {
		t.Fatalf("delete error: %v", err)
	}
	if _, err := repo.Get(ctx, appt.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("Get after delete error = %v, want ErrNotFound", err)
	}
}

func TestAppointmentRepo_UpdateUnknownIsNotFound(t *testing.T) {
	ctx := context.Background()
	repo := NewAppointmentRepo(openTestDB(t))

	err := repo.InTransaction(ctx, func(ctx context.Context, tx store.BookTx) error {
		_, err := tx.UpdateAppointment(ctx, testAppointment("00000000-0000-0000-0000-000000000199", "2024-05-01", "09:00"))
		return err
	})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestAppointmentRepo_FailedTransactionLeavesNoRows(t *testing.T) {
	ctx := context.Background()
	repo := NewAppointmentRepo(openTestDB(t))

	boom := errors.New("boom")
	err := repo.InTransaction(ctx, func(ctx context.Context, tx store.BookTx) error {
		if _, err := tx.InsertAppointment(ctx, testAppointment("00000000-0000-0000-0000-000000000102", "2024-05-01", "09:00")); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("error = %v, want %v", err, boom)
	}

	rows, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("len(rows) = %d, want 0", len(rows))
	}
}

func TestAppointmentRepo_IdempotentInsert(t *testing.T) {
	ctx := context.Background()
	repo := NewAppointmentRepo(openTestDB(t))
	appt := testAppointment("00000000-0000-0000-0000-000000000103", "2024-05-01", "09:00")

	insert := func(a domain.Appointment) (domain.Appointment, error) {
		var out domain.Appointment
		err := repo.InTransaction(ctx, func(ctx context.Context, tx store.BookTx) error {
			got, err := tx.InsertAppointment(ctx, a)
			out = got
			return err
		})
		return out, err
	}

	first, err := insert(appt)
	if err != nil {
		t.Fatalf("first insert error: %v", err)
	}
	second, err := insert(appt)
	if err != nil {
		t.Fatalf("replayed insert error: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("ids differ: %s vs %s", first.ID, second.ID)
	}

	changed := appt
	changed.StartTime = "11:00"
	if _, err := insert(changed); !errors.Is(err, store.ErrIdempotencyConflict) {
		t.Fatalf("error = %v, want ErrIdempotencyConflict", err)
	}
}

func TestAppointmentRepo_ListOrderAndDateFilter(t *testing.T) {
	ctx := context.Background()
	repo := NewAppointmentRepo(openTestDB(t))

	err := repo.InTransaction(ctx, func(ctx context.Context, tx store.BookTx) error {
		for _, a := range []domain.Appointment{
			testAppointment("00000000-0000-0000-0000-000000000111", "2024-05-02", "08:00"),
			testAppointment("00000000-0000-0000-0000-000000000112", "2024-05-01", "10:00"),
			testAppointment("00000000-0000-0000-0000-000000000113", "2024-05-01", "09:00"),
		} {
			if _, err := tx.InsertAppointment(ctx, a); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("insert error: %v", err)
	}

	rows, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	want := []string{"2024-05-01 09:00", "2024-05-01 10:00", "2024-05-02 08:00"}
	if len(rows) != len(want) {
		t.Fatalf("len(rows) = %d, want %d", len(rows), len(want))
	}
	for i, a := range rows {
		if got := a.Date + " " + a.StartTime; got != want[i] {
			t.Fatalf("rows[%d] = %q, want %q", i, got, want[i])
		}
	}

	err = repo.InTransaction(ctx, func(ctx context.Context, tx store.BookTx) error {
		onDay, err := tx.ListAppointmentsOn(ctx, "2024-05-01")
		if err != nil {
			return err
		}
		if len(onDay) != 2 {
			return fmt.Errorf("len(onDay) = %d, want 2", len(onDay))
		}
		if onDay[0].StartTime != "09:00" {
			return fmt.Errorf("onDay[0].StartTime = %q, want 09:00", onDay[0].StartTime)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("ListAppointmentsOn: %v", err)
	}
}

func TestAppointmentRepo_ListBreaksTiesByID(t *testing.T) {
	ctx := context.Background()
	repo := NewAppointmentRepo(openTestDB(t))

	ids := []string{
		"00000000-0000-0000-0000-000000000123",
		"00000000-0000-0000-0000-000000000121",
		"00000000-0000-0000-0000-000000000122",
	}
	err := repo.InTransaction(ctx, func(ctx context.Context, tx store.BookTx) error {
		for i, id := range ids {
			a := testAppointment(id, "2024-05-01", "09:00")
			a.EmployeeID = fmt.Sprintf("emp-%d", i)
			a.EmployeeName = fmt.Sprintf("Employee %d", i)
			if _, err := tx.InsertAppointment(ctx, a); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("insert error: %v", err)
	}

	rows, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	want := []string{
		"00000000-0000-0000-0000-000000000121",
		"00000000-0000-0000-0000-000000000122",
		"00000000-0000-0000-0000-000000000123",
	}
	if len(rows) != len(want) {
		t.Fatalf("len(rows) = %d, want %d", len(rows), len(want))
	}
	for i, a := range rows {
		if a.ID.String() != want[i] {
			t.Fatalf("rows[%d].ID = %s, want %s", i, a.ID, want[i])
		}
	}
}

func TestCatalogRepo_SaveAndLoad(t *testing.T) {
	ctx := context.Background()
	repo := NewCatalogRepo(openTestDB(t))

	c := domain.Catalog{
		Employees: []domain.Employee{{ID: "emp-lan", Name: "Lan", WorkStart: "08:00", WorkEnd: "17:00", DailyLimit: 8}},
		Services:  []domain.Service{{ID: "svc-cut", Name: "Cut", DurationMinutes: 30, Price: 100000}},
	}
	if err := repo.SaveCatalog(ctx, c); err != nil {
		t.Fatalf("SaveCatalog error: %v", err)
	}

	c.Services[0].Price = 120000
	if err := repo.SaveCatalog(ctx, c); err != nil {
		t.Fatalf("SaveCatalog (update) error: %v", err)
	}

	got, err := repo.Catalog(ctx)
	if err != nil {
		t.Fatalf("Catalog error: %v", err)
	}
	if len(got.Employees) != 1 || len(got.Services) != 1 {
		t.Fatalf("catalog sizes = %d/%d, want 1/1", len(got.Employees), len(got.Services))
	}
	if got.Services[0].Price != 120000 {
		t.Fatalf("price = %d, want 120000", got.Services[0].Price)
	}
	if got.Employees[0].DailyLimit != 8 {
		t.Fatalf("daily_limit = %d, want 8", got.Employees[0].DailyLimit)
	}
}
