package persistence

import "context"

// ServiceRepository exposes catalog operations.
type ServiceRepository interface {
	CreateService(ctx context.Context, service Service) error
	UpdateService(ctx context.Context, service Service) error
	GetService(ctx context.Context, id string) (Service, error)
	ListServices(ctx context.Context, includeInactive bool) ([]Service, error)
	// DeleteService removes a catalog entry. It returns ErrForeignKeyViolation
	// while any booking still references the service.
	DeleteService(ctx context.Context, id string) error
}

// BookingRepository stores bookings and enforces slot uniqueness.
type BookingRepository interface {
	// CreateBooking inserts a booking inside a transaction. A non-cancelled
	// booking already occupying the same (date, time) pair yields ErrDuplicate.
	CreateBooking(ctx context.Context, booking Booking) error
	UpdateBooking(ctx context.Context, booking Booking) error
	GetBooking(ctx context.Context, id string) (Booking, error)
	GetBookingByToken(ctx context.Context, token string) (Booking, error)
	// GetBookingByRef matches the value against both the id and the
	// confirmation token columns.
	GetBookingByRef(ctx context.Context, ref string) (Booking, error)
	ListBookings(ctx context.Context) ([]Booking, error)
	ListBookingsByEmail(ctx context.Context, email string) ([]Booking, error)
	// ListActiveBookingTimes returns the time strings of non-cancelled
	// bookings on the given date.
	ListActiveBookingTimes(ctx context.Context, date string) ([]string, error)
	CountBookingsForService(ctx context.Context, serviceID string) (int, error)
	DeleteBooking(ctx context.Context, id string) error
}

// UserRepository exposes account lookups needed by authentication and bootstrap.
type UserRepository interface {
	CreateUser(ctx context.Context, user User) error
	GetUser(ctx context.Context, id string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
}
