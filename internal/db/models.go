package db

import (
	"database/sql"
	"time"
)

type CalendarDay struct {
	ID             int
	Date           string
	Status         string
	OpenTime       string
	CloseTime      string
	SessionsToSell int
}

type Package struct {
	ID         int
	Name       string
	Duration   string
	Sessions   int
	TotalPrice int
	Discount   int
	IsActive   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type PackageActivation struct {
	ID            int
	FullName      string
	Email         string
	Phone         string
	Address       string
	Message       string
	PackageID     int
	PackageName   string
	TotalSessions int
	UsedCount     int
	Status        string
	PreferredDate time.Time
	StartDate     sql.NullTime
	ExpiryDate    sql.NullTime
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type Appointment struct {
	ID                  int
	ReservationID       string
	Name                string
	Email               string
	ContactNumber       string
	Date                string
	Time                string
	SpecialNote         string
	Status              string
	PackageActivationID sql.NullInt64
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

type Admin struct {
	ID           int
	Email        string
	PasswordHash string
}
