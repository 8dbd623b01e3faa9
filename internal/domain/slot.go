package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

// NormalizeDate parses a calendar date and returns it in YYYY-MM-DD form.
func NormalizeDate(raw string) (string, error) {
	d, err := time.Parse(DateLayout, strings.TrimSpace(raw))
	if err != nil {
		return "", errors.New("date must be YYYY-MM-DD")
	}
	return d.Format(DateLayout), nil
}

// NormalizeClock parses a time of day and returns it in HH:mm form.
func NormalizeClock(raw string) (string, error) {
	t, err := time.Parse(ClockLayout, strings.TrimSpace(raw))
	if err != nil {
		return "", errors.New("start_time must be HH:mm")
	}
	return t.Format(ClockLayout), nil
}

// ClockMinutes converts an HH:mm time of day into minutes after midnight.
func ClockMinutes(clock string) (int, error) {
	t, err := time.Parse(ClockLayout, strings.TrimSpace(clock))
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}

func formatMinutes(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// Slot is the half-open interval [Start, End) in minutes after midnight that one
// employee is busy on one date.
type Slot struct {
	Date  string
	Start int
	End   int
}

func NewSlot(date, startTime string, durationMinutes int) (Slot, error) {
	start, err := ClockMinutes(startTime)
	if err != nil {
		return Slot{}, err
	}
	if durationMinutes < 0 {
		durationMinutes = 0
	}
	return Slot{Date: date, Start: start, End: start + durationMinutes}, nil
}

// Overlaps reports whether two slots on the same date intersect.
// A zero-length slot never overlaps anything starting at or after its start.
func (s Slot) Overlaps(o Slot) bool {
	if s.Date != o.Date {
		return false
	}
	return s.Start < o.End && o.Start < s.End
}

func (s Slot) String() string {
	return fmt.Sprintf("%s %s-%s", s.Date, formatMinutes(s.Start), formatMinutes(s.End))
}

// Candidate describes a booking that is about to be written.
type Candidate struct {
	ExcludeID       uuid.UUID
	EmployeeID      string
	EmployeeName    string
	Date            string
	StartTime       string
	DurationMinutes int
}

// Conflict identifies the existing appointment a candidate collides with.
type Conflict struct {
	AppointmentID uuid.UUID
	EmployeeName  string
	Slot          Slot
}

// DurationFor returns the slot length of an existing appointment: the duration
// captured at booking time, or the catalog duration for records without one.
// A captured zero is kept; only a missing snapshot falls back to the catalog.
func DurationFor(c Catalog, a Appointment) int {
	if a.DurationMinutes != nil {
		return *a.DurationMinutes
	}
	if s, ok := c.ServiceFor(a); ok {
		return s.DurationMinutes
	}
	return 0
}

// FindConflict returns the first active appointment of the same employee on the
// same date whose slot intersects the candidate's.
func FindConflict(candidate Candidate, existing []Appointment, catalog Catalog) (Conflict, bool, error) {
	want, err := NewSlot(candidate.Date, candidate.StartTime, candidate.DurationMinutes)
	if err != nil {
		return Conflict{}, false, err
	}

	for _, a := range existing {
		if candidate.ExcludeID != uuid.Nil && a.ID == candidate.ExcludeID {
			continue
		}
		if !a.Status.Active() || a.Date != candidate.Date {
			continue
		}
		if !sameEmployee(candidate, a) {
			continue
		}
		got, err := NewSlot(a.Date, a.StartTime, DurationFor(catalog, a))
		if err != nil {
			continue
		}
		if want.Overlaps(got) {
			return Conflict{AppointmentID: a.ID, EmployeeName: a.EmployeeName, Slot: got}, true, nil
		}
	}
	return Conflict{}, false, nil
}

// HasConflict is the boolean form of FindConflict.
func HasConflict(candidate Candidate, existing []Appointment, catalog Catalog) bool {
	_, found, err := FindConflict(candidate, existing, catalog)
	return err == nil && found
}

func sameEmployee(c Candidate, a Appointment) bool {
	if c.EmployeeID != "" && a.EmployeeID != "" {
		return c.EmployeeID == a.EmployeeID
	}
	return c.EmployeeName == a.EmployeeName
}
