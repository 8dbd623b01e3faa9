package grpc

import "google.golang.org/protobuf/types/known/timestamppb"

// Messages travel as JSON over gRPC (content-subtype "json"); see codec.go.

type Appointment struct {
	Id              string                 `json:"id"`
	Date            string                 `json:"date"`
	StartTime       string                 `json:"start_time"`
	EmployeeId      string                 `json:"employee_id,omitempty"`
	EmployeeName    string                 `json:"employee_name"`
	ServiceId       string                 `json:"service_id,omitempty"`
	ServiceName     string                 `json:"service_name"`
	DurationMinutes int32                  `json:"duration_minutes"`
	Status          string                 `json:"status"`
	StatusLabel     string                 `json:"status_label"`
	Rating          *int32                 `json:"rating,omitempty"`
	Comment         string                 `json:"comment,omitempty"`
	Response        string                 `json:"response,omitempty"`
	CreatedAt       *timestamppb.Timestamp `json:"created_at,omitempty"`
	UpdatedAt       *timestamppb.Timestamp `json:"updated_at,omitempty"`
}

type CreateAppointmentRequest struct {
	Date         string `json:"date"`
	StartTime    string `json:"start_time"`
	EmployeeName string `json:"employee_name"`
	ServiceName  string `json:"service_name"`
}

type AppointmentResponse struct {
	Appointment *Appointment `json:"appointment"`
}

type SetStatusRequest struct {
	AppointmentId string `json:"appointment_id"`
	Status        string `json:"status"`
}

type RescheduleAppointmentRequest struct {
	AppointmentId string `json:"appointment_id"`
	Date          string `json:"date"`
	StartTime     string `json:"start_time"`
	EmployeeName  string `json:"employee_name,omitempty"`
	ServiceName   string `json:"service_name,omitempty"`
}

type AppointmentIdRequest struct {
	AppointmentId string `json:"appointment_id"`
}

type DeleteAppointmentResponse struct{}

type ListAppointmentsRequest struct {
	Search       string `json:"search,omitempty"`
	Status       string `json:"status,omitempty"`
	Date         string `json:"date,omitempty"`
	Month        string `json:"month,omitempty"`
	EmployeeName string `json:"employee_name,omitempty"`
}

type ListAppointmentsResponse struct {
	Appointments []*Appointment `json:"appointments"`
}

type SubmitRatingRequest struct {
	AppointmentId string `json:"appointment_id"`
	Rating        int32  `json:"rating"`
	Comment       string `json:"comment,omitempty"`
}

type RespondToRatingRequest struct {
	AppointmentId string `json:"appointment_id"`
	Response      string `json:"response"`
}

type ReportCountsRequest struct {
	Granularity string `json:"granularity"`
}

type CountRow struct {
	Key   string `json:"key"`
	Count int32  `json:"count"`
}

type ReportCountsResponse struct {
	Rows []*CountRow `json:"rows"`
}

type ReportRevenueRequest struct {
	GroupBy string `json:"group_by"`
}

type RevenueRow struct {
	Group   string `json:"group"`
	Month   string `json:"month"`
	Revenue int64  `json:"revenue"`
}

type ReportRevenueResponse struct {
	Rows  []*RevenueRow `json:"rows"`
	Total int64         `json:"total"`
}

type AverageRatingsRequest struct{}

type EmployeeRating struct {
	EmployeeName string  `json:"employee_name"`
	Average      float64 `json:"average"`
	Count        int32   `json:"count"`
}

type AverageRatingsResponse struct {
	Ratings []*EmployeeRating `json:"ratings"`
}

type ListCatalogRequest struct{}

type Employee struct {
	Id         string `json:"id"`
	Name       string `json:"name"`
	WorkStart  string `json:"work_start,omitempty"`
	WorkEnd    string `json:"work_end,omitempty"`
	DailyLimit int32  `json:"daily_limit,omitempty"`
}

type Service struct {
	Id              string `json:"id"`
	Name            string `json:"name"`
	DurationMinutes int32  `json:"duration_minutes"`
	Price           int64  `json:"price"`
}

type ListCatalogResponse struct {
	Employees []*Employee `json:"employees"`
	Services  []*Service  `json:"services"`
}
