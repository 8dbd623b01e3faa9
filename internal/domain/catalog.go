package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/uptrace/bun"
)

type Employee struct {
	bun.BaseModel `bun:"table:employees"`

	ID         string `bun:"id,pk" json:"id"`
	Name       string `bun:"name,notnull,unique" json:"name"`
	WorkStart  string `bun:"work_start" json:"work_start,omitempty"`
	WorkEnd    string `bun:"work_end" json:"work_end,omitempty"`
	DailyLimit int    `bun:"daily_limit" json:"daily_limit,omitempty"`
}

type Service struct {
	bun.BaseModel `bun:"table:services"`

	ID              string `bun:"id,pk" json:"id"`
	Name            string `bun:"name,notnull,unique" json:"name"`
	DurationMinutes int    `bun:"duration_minutes,notnull" json:"duration_minutes"`
	Price           int64  `bun:"price,notnull" json:"price"`
}

// Catalog is an immutable snapshot of the employee and service reference data.
type Catalog struct {
	Employees []Employee `json:"employees"`
	Services  []Service  `json:"services"`
}

func (c Catalog) EmployeeByName(name string) (Employee, bool) {
	name = strings.TrimSpace(name)
	for _, e := range c.Employees {
		if e.Name == name {
			return e, true
		}
	}
	return Employee{}, false
}

func (c Catalog) EmployeeByID(id string) (Employee, bool) {
	if id == "" {
		return Employee{}, false
	}
	for _, e := range c.Employees {
		if e.ID == id {
			return e, true
		}
	}
	return Employee{}, false
}

func (c Catalog) ServiceByName(name string) (Service, bool) {
	name = strings.TrimSpace(name)
	for _, s := range c.Services {
		if s.Name == name {
			return s, true
		}
	}
	return Service{}, false
}

func (c Catalog) ServiceByID(id string) (Service, bool) {
	if id == "" {
		return Service{}, false
	}
	for _, s := range c.Services {
		if s.ID == id {
			return s, true
		}
	}
	return Service{}, false
}

// ServiceFor resolves the catalog entry an appointment was booked against.
// The id reference wins; the name snapshot is used for records without one.
func (c Catalog) ServiceFor(a Appointment) (Service, bool) {
	if s, ok := c.ServiceByID(a.ServiceID); ok {
		return s, true
	}
	if a.ServiceID != "" {
		return Service{}, false
	}
	return c.ServiceByName(a.ServiceName)
}

// EmployeeLabel returns the current catalog name of the appointment's employee,
// falling back to the name captured at booking time.
func (c Catalog) EmployeeLabel(a Appointment) string {
	if e, ok := c.EmployeeByID(a.EmployeeID); ok {
		return e.Name
	}
	return a.EmployeeName
}

// ServiceLabel is the service counterpart of EmployeeLabel.
func (c Catalog) ServiceLabel(a Appointment) string {
	if s, ok := c.ServiceByID(a.ServiceID); ok {
		return s.Name
	}
	return a.ServiceName
}

// Validate checks the reference data invariants: ids and names present and
// unique, durations and prices non-negative.
func (c Catalog) Validate() error {
	seen := make(map[string]struct{}, len(c.Employees)+len(c.Services))
	for _, e := range c.Employees {
		if strings.TrimSpace(e.ID) == "" || strings.TrimSpace(e.Name) == "" {
			return errors.New("employee id and name are required")
		}
		if _, ok := seen["e:"+e.ID]; ok {
			return fmt.Errorf("duplicate employee id %q", e.ID)
		}
		if _, ok := seen["en:"+e.Name]; ok {
			return fmt.Errorf("duplicate employee name %q", e.Name)
		}
		seen["e:"+e.ID] = struct{}{}
		seen["en:"+e.Name] = struct{}{}
		if e.DailyLimit < 0 {
			return fmt.Errorf("employee %q: daily_limit must not be negative", e.Name)
		}
	}
	for _, s := range c.Services {
		if strings.TrimSpace(s.ID) == "" || strings.TrimSpace(s.Name) == "" {
			return errors.New("service id and name are required")
		}
		if _, ok := seen["s:"+s.ID]; ok {
			return fmt.Errorf("duplicate service id %q", s.ID)
		}
		if _, ok := seen["sn:"+s.Name]; ok {
			return fmt.Errorf("duplicate service name %q", s.Name)
		}
		seen["s:"+s.ID] = struct{}{}
		seen["sn:"+s.Name] = struct{}{}
		if s.DurationMinutes < 0 {
			return fmt.Errorf("service %q: duration_minutes must not be negative", s.Name)
		}
		if s.Price < 0 {
			return fmt.Errorf("service %q: price must not be negative", s.Name)
		}
	}
	return nil
}
