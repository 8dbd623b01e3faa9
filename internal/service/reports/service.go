package reports

import (
	"context"

	"salonbook/internal/domain"
	"salonbook/internal/store"
)

// Service computes reports from one read of the appointment book. Nothing is
// cached; every call sees the current data.
type Service struct {
	repo    store.AppointmentRepository
	catalog store.CatalogReader
}

func NewService(repo store.AppointmentRepository, catalog store.CatalogReader) *Service {
	return &Service{repo: repo, catalog: catalog}
}

type snapshot struct {
	catalog domain.Catalog
	rows    []domain.Appointment
}

func (s *Service) snapshot(ctx context.Context) (snapshot, error) {
	catalog, err := s.catalog.Catalog(ctx)
	if err != nil {
		return snapshot{}, err
	}
	rows, err := s.repo.List(ctx)
	if err != nil {
		return snapshot{}, err
	}
	return snapshot{catalog: catalog, rows: rows}, nil
}

func (s *Service) Counts(ctx context.Context, g Granularity) ([]CountRow, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return Count(snap.rows, g), nil
}

type RevenueReport struct {
	Rows  []RevenueRow
	Total int64
}

func (s *Service) Revenue(ctx context.Context, by GroupBy) (RevenueReport, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return RevenueReport{}, err
	}
	rows := Revenue(snap.catalog, snap.rows, by)
	var total int64
	for _, r := range rows {
		total += r.Revenue
	}
	return RevenueReport{Rows: rows, Total: total}, nil
}
