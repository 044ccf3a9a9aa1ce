package application

import (
	"time"

	"github.com/shopspring/decimal"
)

// Booking lifecycle statuses. Status and PaymentStatus are independent axes;
// the workflow drives pending/pending to confirmed/paid, and any status may
// transition to cancelled.
const (
	BookingStatusPending   = "pending"
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"

	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
	PaymentStatusFailed  = "failed"

	BookingTypeGuest      = "guest"
	BookingTypeRegistered = "registered"

	RoleAdmin  = "admin"
	RoleClient = "client"
)

// SlotTimes is the fixed grid of bookable half-hour slots: a morning block
// from 09:00 to 11:30 and an afternoon block from 14:00 to 19:00. No weekday
// or holiday rule is applied server-side.
var SlotTimes = []string{
	"09:00", "09:30", "10:00", "10:30", "11:00", "11:30",
	"14:00", "14:30", "15:00", "15:30", "16:00", "16:30",
	"17:00", "17:30", "18:00", "18:30", "19:00",
}

// IsSlotTime reports whether the value is one of the bookable slot times.
func IsSlotTime(value string) bool {
	for _, slot := range SlotTimes {
		if slot == value {
			return true
		}
	}
	return false
}

// Principal identifies the authenticated caller of an operation.
type Principal struct {
	UserID string
	Email  string
	Role   string
}

// IsAdmin reports whether the principal carries the administrator role.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// Service is a purchasable offering from the catalog.
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

// Booking is a reserved consultation slot. Price is snapshotted from the
// service at creation time; later catalog changes never touch it.
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

// BookingDetails joins a booking with the catalog fields clients display.
type BookingDetails struct {
	Booking
	ServiceName     string
	ServiceDuration string
}

// User is an account credential with a role.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Role         string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Slot is one entry of the availability grid for a date. Booked is the exact
// inverse of Available; no independent admin-blocked state exists.
type Slot struct {
	Time      string
	Available bool
	Booked    bool
}

// ServiceInput carries the mutable catalog fields.
type ServiceInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Duration    string
	Features    []string
	Active      bool
}

// CreateBookingInput carries the public booking submission fields.
type CreateBookingInput struct {
	ServiceID   string
	Date        string
	Time        string
	FirstName   string
	LastName    string
	Email       string
	Phone       string
	Address     *string
	Message     *string
	BookingType string
}

// UpdateBookingInput is an admin partial update; nil fields are left untouched.
type UpdateBookingInput struct {
	Status        *string
	PaymentStatus *string
	VisioLink     *string
}
