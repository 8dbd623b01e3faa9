package reports

import (
	"fmt"
	"sort"

	"salonbook/internal/domain"
)

type Granularity string

const (
	ByDay   Granularity = "day"
	ByMonth Granularity = "month"
	ByYear  Granularity = "year"
)

func ParseGranularity(raw string) (Granularity, error) {
	switch g := Granularity(raw); g {
	case ByDay, ByMonth, ByYear:
		return g, nil
	default:
		return "", fmt.Errorf("unknown granularity %q", raw)
	}
}

func (g Granularity) keyLen() int {
	switch g {
	case ByMonth:
		return 7
	case ByYear:
		return 4
	default:
		return 10
	}
}

type GroupBy string

const (
	ByEmployee GroupBy = "employee"
	ByService  GroupBy = "service"
)

func ParseGroupBy(raw string) (GroupBy, error) {
	switch g := GroupBy(raw); g {
	case ByEmployee, ByService:
		return g, nil
	default:
		return "", fmt.Errorf("unknown group %q", raw)
	}
}

type CountRow struct {
	Key   string
	Count int
}

// Count groups appointments of every status by a prefix of their date and
// returns one row per distinct key, sorted by key.
func Count(rows []domain.Appointment, g Granularity) []CountRow {
	n := g.keyLen()
	counts := map[string]int{}
	for _, a := range rows {
		key := a.Date
		if len(key) > n {
			key = key[:n]
		}
		counts[key]++
	}

	out := make([]CountRow, 0, len(counts))
	for k, c := range counts {
		out = append(out, CountRow{Key: k, Count: c})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

func CountByDay(rows []domain.Appointment) []CountRow   { return Count(rows, ByDay) }
func CountByMonth(rows []domain.Appointment) []CountRow { return Count(rows, ByMonth) }
func CountByYear(rows []domain.Appointment) []CountRow  { return Count(rows, ByYear) }

type RevenueRow struct {
	Group   string
	Month   string
	Revenue int64
}

// Revenue sums the current catalog price of every completed appointment into
// (group, month) buckets. Appointments whose service no longer resolves are
// skipped. Rows are ordered by month, most recent first; rows of the same
// month keep the order in which their group was first seen.
func Revenue(catalog domain.Catalog, rows []domain.Appointment, by GroupBy) []RevenueRow {
	type bucket struct {
		group, month string
	}
	index := map[bucket]int{}
	var out []RevenueRow

	for _, a := range rows {
		if a.Status != domain.StatusCompleted {
			continue
		}
		svc, ok := catalog.ServiceFor(a)
		if !ok {
			continue
		}

		group := catalog.EmployeeLabel(a)
		if by == ByService {
			group = svc.Name
		}
		b := bucket{group: group, month: a.Month()}
		i, ok := index[b]
		if !ok {
			i = len(out)
			index[b] = i
			out = append(out, RevenueRow{Group: b.group, Month: b.month})
		}
		out[i].Revenue += svc.Price
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Month > out[j].Month })
	return out
}

func RevenueByEmployeeAndMonth(catalog domain.Catalog, rows []domain.Appointment) []RevenueRow {
	return Revenue(catalog, rows, ByEmployee)
}

func RevenueByServiceAndMonth(catalog domain.Catalog, rows []domain.Appointment) []RevenueRow {
	return Revenue(catalog, rows, ByService)
}

// TotalRevenue is the sum of every revenue bucket.
func TotalRevenue(catalog domain.Catalog, rows []domain.Appointment) int64 {
	var total int64
	for _, r := range Revenue(catalog, rows, ByService) {
		total += r.Revenue
	}
	return total
}
