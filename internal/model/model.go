package model

import "time"

// NoID marks a candidate that does not overwrite an existing appointment.
const NoID int64 = -1

type User struct {
	ID           int64
	Name         string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Customer is a client record. Division and Country are the names behind
// DivisionID and CountryID, filled in on reads.
type Customer struct {
	ID         int64
	Name       string
	Address    string
	PostalCode string
	Phone      string
	DivisionID int64
	Division   string
	CountryID  int64
	Country    string
	CreatedAt  time.Time
	CreatedBy  string
	UpdatedAt  time.Time
	UpdatedBy  string
}

type Country struct {
	ID   int64
	Name string
}

// Division is a first-level division (state, province or nation) of a
// country.
type Division struct {
	ID        int64
	Name      string
	CountryID int64
}

type Contact struct {
	ID    int64
	Name  string
	Email string
}

type Appointment struct {
	ID          int64
	Title       string
	Description string
	Location    string
	Type        string
	Start       time.Time
	End         time.Time
	CustomerID  int64
	UserID      int64
	ContactID   int64
	CreatedAt   time.Time
	CreatedBy   string
	UpdatedAt   time.Time
	UpdatedBy   string
}
