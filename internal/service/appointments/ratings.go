package appointments

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"salonbook/internal/domain"
	"salonbook/internal/events"
	"salonbook/internal/store"
)

const (
	MinRating = 1
	MaxRating = 5
)

// SubmitRating records the customer's rating of a completed appointment. A
// second submission replaces the first.
func (s *Service) SubmitRating(ctx context.Context, id uuid.UUID, rating int, comment string) (domain.Appointment, error) {
	if id == uuid.Nil {
		return domain.Appointment{}, validationError("appointment_id", "appointment_id is required")
	}
	if rating < MinRating || rating > MaxRating {
		return domain.Appointment{}, validationError("rating", "rating must be between 1 and 5")
	}

	var out domain.Appointment
	err := s.write(ctx, func(ctx context.Context, tx store.BookTx) error {
		cur, err := tx.GetAppointment(ctx, id)
		if err != nil {
			return notFound(id, err)
		}
		if cur.Status != domain.StatusCompleted {
			return &InvalidStateError{
				Status: cur.Status,
				msg:    "only completed appointments can be rated",
			}
		}

		r := rating
		cur.Rating = &r
		cur.Comment = optionalText(comment)
		updated, err := tx.UpdateAppointment(ctx, cur)
		if err != nil {
			return notFound(id, err)
		}
		out = updated
		return nil
	})
	if err != nil {
		return domain.Appointment{}, err
	}

	s.publish(ctx, events.TypeAppointmentRated, out)
	return out, nil
}

// RespondToRating stores the salon's reply to a rating, replacing any earlier
// reply. An empty reply clears it.
func (s *Service) RespondToRating(ctx context.Context, id uuid.UUID, response string) (domain.Appointment, error) {
	if id == uuid.Nil {
		return domain.Appointment{}, validationError("appointment_id", "appointment_id is required")
	}

	var out domain.Appointment
	err := s.write(ctx, func(ctx context.Context, tx store.BookTx) error {
		cur, err := tx.GetAppointment(ctx, id)
		if err != nil {
			return notFound(id, err)
		}
		cur.Response = optionalText(response)
		updated, err := tx.UpdateAppointment(ctx, cur)
		if err != nil {
			return notFound(id, err)
		}
		out = updated
		return nil
	})
	if err != nil {
		return domain.Appointment{}, err
	}

	s.publish(ctx, events.TypeRatingResponded, out)
	return out, nil
}

type EmployeeRating struct {
	EmployeeName string
	Average      float64
	Count        int
}

// AverageRatings returns the mean rating per employee over rated
// appointments. Employees without ratings are omitted.
func (s *Service) AverageRatings(ctx context.Context) ([]EmployeeRating, error) {
	catalog, err := s.catalog.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return AverageRatings(catalog, rows), nil
}

// AverageRatings is the pure form of Service.AverageRatings, ordered by
// employee name.
func AverageRatings(catalog domain.Catalog, rows []domain.Appointment) []EmployeeRating {
	type acc struct {
		sum   int
		count int
	}
	byEmployee := map[string]*acc{}
	for _, a := range rows {
		if a.Rating == nil {
			continue
		}
		name := catalog.EmployeeLabel(a)
		cur, ok := byEmployee[name]
		if !ok {
			cur = &acc{}
			byEmployee[name] = cur
		}
		cur.sum += *a.Rating
		cur.count++
	}

	out := make([]EmployeeRating, 0, len(byEmployee))
	for name, v := range byEmployee {
		out = append(out, EmployeeRating{
			EmployeeName: name,
			Average:      float64(v.sum) / float64(v.count),
			Count:        v.count,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EmployeeName < out[j].EmployeeName })
	return out
}

func optionalText(raw string) *string {
	v := strings.TrimSpace(raw)
	if v == "" {
		return nil
	}
	return &v
}
