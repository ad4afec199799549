package api

import (
	"time"

	"appointment-scheduler/internal/customer"
	"appointment-scheduler/internal/schedule"
)

type RegisterRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

type RegisterResponse struct {
	UserID int64  `json:"user_id"`
	Token  string `json:"token"`
}

type LoginRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

// LoginResponse lists the appointments that begin within the next 15
// minutes alongside the token.
type LoginResponse struct {
	Token    string        `json:"token"`
	UserID   int64         `json:"user_id"`
	Name     string        `json:"name"`
	Upcoming []Appointment `json:"upcoming"`
}

type ListSlotsRequest struct {
	// Date decides which UTC offset the labels show; today when empty.
	Date string `json:"date,omitempty"`
}

type Slot struct {
	Index int    `json:"index"`
	Clock string `json:"clock"`
	Label string `json:"label"`
}

type ListSlotsResponse struct {
	Slots         []Slot `json:"slots"`
	BusinessHours string `json:"business_hours"`
	Zone          string `json:"zone"`
}

type ViewOptionsRequest struct {
	Mode string `json:"mode"`
	Year int    `json:"year,omitempty"`
}

type ViewOptionsResponse struct {
	Mode         string   `json:"mode"`
	Year         int      `json:"year"`
	DefaultIndex int      `json:"default_index"`
	Options      []string `json:"options"`
}

type WindowRequest struct {
	Mode  string `json:"mode"`
	Index int    `json:"index,omitempty"`
	Year  int    `json:"year,omitempty"`
}

type Window struct {
	Mode         string    `json:"mode"`
	Start        time.Time `json:"start"`
	End          time.Time `json:"end"`
	EndInclusive bool      `json:"end_inclusive"`
	Unfiltered   bool      `json:"unfiltered"`
	Label        string    `json:"label"`
}

type ListAppointmentsRequest struct {
	WindowRequest
	Query string `json:"query,omitempty"`
}

type ListAppointmentsResponse struct {
	Window       Window        `json:"window"`
	Appointments []Appointment `json:"appointments"`
}

type Appointment struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	Type        string    `json:"type"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	CustomerID  int64     `json:"customer_id"`
	UserID      int64     `json:"user_id"`
	ContactID   int64     `json:"contact_id"`
	CreatedAt   time.Time `json:"created_at"`
	CreatedBy   string    `json:"created_by"`
	UpdatedAt   time.Time `json:"updated_at"`
	UpdatedBy   string    `json:"updated_by"`
}

type GetAppointmentRequest struct {
	ID int64 `json:"id"`
}

// AppointmentInput is an appointment as entered. ID is zero (or negative)
// for a new appointment and the id being overwritten otherwise.
type AppointmentInput struct {
	ID int64 `json:"id,omitempty"`
	schedule.Candidate
}

type ValidateResponse struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type SaveResponse struct {
	Appointment Appointment `json:"appointment"`
}

type DeleteAppointmentRequest struct {
	ID int64 `json:"id"`
}

// DeleteAppointmentResponse echoes the removed record. Cancelled is set when
// the appointment had not started yet.
type DeleteAppointmentResponse struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Type      string `json:"type"`
	Cancelled bool   `json:"cancelled"`
}

type ContactScheduleRequest struct {
	ContactID int64 `json:"contact_id"`
}

type ContactScheduleResponse struct {
	Appointments []Appointment `json:"appointments"`
}

type MonthTypeReportRequest struct{}

type MonthTypeCount struct {
	Month string `json:"month"`
	Type  string `json:"type"`
	Count int    `json:"count"`
}

type MonthTypeReportResponse struct {
	Rows []MonthTypeCount `json:"rows"`
}

type EngagementReportRequest struct{}

type Engagement struct {
	CustomerID   int64      `json:"customer_id"`
	CustomerName string     `json:"customer_name"`
	Last         *time.Time `json:"last,omitempty"`
	Next         *time.Time `json:"next,omitempty"`
}

type EngagementReportResponse struct {
	Rows       []Engagement `json:"rows"`
	NoFollowUp int          `json:"no_follow_up"`
}

type ListLookupsRequest struct{}

type Lookup struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type ListLookupsResponse struct {
	Customers []Lookup `json:"customers"`
	Contacts  []Lookup `json:"contacts"`
	Users     []Lookup `json:"users"`
	Types     []string `json:"types"`
}

type Customer struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Address    string    `json:"address"`
	PostalCode string    `json:"postal_code"`
	Phone      string    `json:"phone"`
	DivisionID int64     `json:"division_id"`
	Division   string    `json:"division"`
	CountryID  int64     `json:"country_id"`
	Country    string    `json:"country"`
	CreatedAt  time.Time `json:"created_at"`
	CreatedBy  string    `json:"created_by"`
	UpdatedAt  time.Time `json:"updated_at"`
	UpdatedBy  string    `json:"updated_by"`
}

type ListCustomersRequest struct{}

type ListCustomersResponse struct {
	Customers []Customer `json:"customers"`
}

// SaveCustomerRequest creates a customer when ID is zero and overwrites it
// otherwise.
type SaveCustomerRequest struct {
	customer.Input
}

type SaveCustomerResponse struct {
	Customer Customer `json:"customer"`
}

type DeleteCustomerRequest struct {
	ID int64 `json:"id"`
}

// DeleteCustomerResponse reports how many appointments were removed along
// with the customer.
type DeleteCustomerResponse struct {
	ID                  int64  `json:"id"`
	Name                string `json:"name"`
	AppointmentsRemoved int64  `json:"appointments_removed"`
}

// ListDivisionsRequest narrows the divisions to one country when CountryID
// is set.
type ListDivisionsRequest struct {
	CountryID int64 `json:"country_id,omitempty"`
}

type Division struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	CountryID int64  `json:"country_id"`
}

type ListDivisionsResponse struct {
	Countries []Lookup   `json:"countries"`
	Divisions []Division `json:"divisions"`
}
