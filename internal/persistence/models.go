package persistence

import (
	"time"

	"github.com/shopspring/decimal"
)

// Service represents a purchasable offering in the catalog.
type Service struct {
	ID          string
	Name        string
	Description string
	Price       decimal.Decimal
	Duration    string
	Features    []string
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Booking represents a reserved consultation slot.
type Booking struct {
	ID                string
	ServiceID         string
	Date              string
	Time              string
	FirstName         string
	LastName          string
	Email             string
	Phone             string
	Address           *string
	Message           *string
	BookingType       string
	Status            string
	PaymentStatus     string
	Price             decimal.Decimal
	ConfirmationToken string
	PaymentIntentID   *string
	VisioLink         *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// User represents an account credential with a role.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Role         string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
