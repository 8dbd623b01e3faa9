package appointments

import (
	"context"
	"strings"
	"time"

	"salonbook/internal/domain"
)

// Filter narrows List. Zero fields match everything.
type Filter struct {
	// Search matches case-insensitively against the employee or service name.
	Search       string
	Status       string
	Date         string
	Month        string
	EmployeeName string
}

type listFilter struct {
	search   string
	status   domain.Status
	date     string
	month    string
	employee string
}

func (f Filter) normalize() (listFilter, error) {
	out := listFilter{
		search:   strings.ToLower(strings.TrimSpace(f.Search)),
		employee: strings.TrimSpace(f.EmployeeName),
	}
	if raw := strings.TrimSpace(f.Status); raw != "" {
		st, ok := domain.ParseStatus(raw)
		if !ok {
			return listFilter{}, validationError("status", "unknown status")
		}
		out.status = st
	}
	if raw := strings.TrimSpace(f.Date); raw != "" {
		d, err := domain.NormalizeDate(raw)
		if err != nil {
			return listFilter{}, validationError("date", err.Error())
		}
		out.date = d
	}
	if raw := strings.TrimSpace(f.Month); raw != "" {
		m, err := time.Parse("2006-01", raw)
		if err != nil {
			return listFilter{}, validationError("month", "month must be YYYY-MM")
		}
		out.month = m.Format("2006-01")
	}
	return out, nil
}

func (f listFilter) match(c domain.Catalog, a domain.Appointment) bool {
	if f.status != "" && a.Status != f.status {
		return false
	}
	if f.date != "" && a.Date != f.date {
		return false
	}
	if f.month != "" && a.Month() != f.month {
		return false
	}
	employee := c.EmployeeLabel(a)
	if f.employee != "" && employee != f.employee && a.EmployeeName != f.employee {
		return false
	}
	if f.search != "" {
		service := c.ServiceLabel(a)
		if !strings.Contains(strings.ToLower(employee), f.search) &&
			!strings.Contains(strings.ToLower(service), f.search) {
			return false
		}
	}
	return true
}

// List returns the appointments matching f ordered by date, then start time.
func (s *Service) List(ctx context.Context, f Filter) ([]domain.Appointment, error) {
	lf, err := f.normalize()
	if err != nil {
		return nil, err
	}

	catalog, err := s.catalog.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Appointment, 0, len(rows))
	for _, a := range rows {
		if lf.match(catalog, a) {
			out = append(out, a)
		}
	}
	return out, nil
}
