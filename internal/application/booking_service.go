package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/serenity-bookings/internal/persistence"
)

// BookingRepository captures the persistence operations the booking workflow needs.
type BookingRepository interface {
	CreateBooking(ctx context.Context, booking Booking) (Booking, error)
	UpdateBooking(ctx context.Context, booking Booking) (Booking, error)
	GetBooking(ctx context.Context, id string) (Booking, error)
	GetBookingByToken(ctx context.Context, token string) (Booking, error)
	GetBookingByRef(ctx context.Context, ref string) (Booking, error)
	ListBookings(ctx context.Context) ([]Booking, error)
	ListBookingsByEmail(ctx context.Context, email string) ([]Booking, error)
	DeleteBooking(ctx context.Context, id string) error
}

// BookingService drives the booking lifecycle: creation with price snapshot
// and confirmation token, capability-style lookups, admin transitions, and
// the cancellation/confirmation events those transitions emit.
type BookingService struct {
	bookings       BookingRepository
	catalog        ServiceCatalogRepository
	events         EventSink
	idGenerator    func() string
	tokenGenerator func() string
	now            func() time.Time
	logger         *slog.Logger
}

// NewBookingService constructs a booking service with the provided dependencies.
func NewBookingService(
	bookings BookingRepository,
	catalog ServiceCatalogRepository,
	events EventSink,
	idGenerator func() string,
	tokenGenerator func() string,
	now func() time.Time,
	logger *slog.Logger,
) *BookingService {
	if events == nil {
		events = discardSink{}
	}
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if tokenGenerator == nil {
		tokenGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &BookingService{
		bookings:       bookings,
		catalog:        catalog,
		events:         events,
		idGenerator:    idGenerator,
		tokenGenerator: tokenGenerator,
		now:            now,
		logger:         defaultLogger(logger),
	}
}

func (s *BookingService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "BookingService", operation, attrs...)
}

// CreateBooking validates a public booking submission and persists it with
// status pending/pending. The service price is snapshotted onto the booking
// and a high-entropy confirmation token is attached as the guest's only
// credential for later lookups.
func (s *BookingService) CreateBooking(ctx context.Context, input CreateBookingInput) (booking Booking, err error) {
	if s == nil {
		err = fmt.Errorf("BookingService is nil")
		return
	}

	logger := s.loggerWith(ctx, "CreateBooking",
		"service_id", input.ServiceID,
		"date", input.Date,
		"time", input.Time,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create booking", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("booking_id", booking.ID).InfoContext(ctx, "booking created")
	}()

	vErr := validateBookingInput(input)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	var service Service
	service, err = s.catalog.GetService(ctx, input.ServiceID)
	if err != nil {
		err = mapBookingRepoError(err)
		return
	}
	if !service.Active {
		vErr := &ValidationError{}
		vErr.Add("serviceId", "service is inactive")
		err = vErr
		return
	}

	bookingType := strings.TrimSpace(input.BookingType)
	if bookingType == "" {
		bookingType = BookingTypeGuest
	}

	now := s.now()
	booking = Booking{
		ID:                s.idGenerator(),
		ServiceID:         service.ID,
		Date:              input.Date,
		Time:              input.Time,
		FirstName:         strings.TrimSpace(input.FirstName),
		LastName:          strings.TrimSpace(input.LastName),
		Email:             strings.TrimSpace(input.Email),
		Phone:             strings.TrimSpace(input.Phone),
		Address:           normalizeOptionalString(input.Address),
		Message:           normalizeOptionalString(input.Message),
		BookingType:       bookingType,
		Status:            BookingStatusPending,
		PaymentStatus:     PaymentStatusPending,
		Price:             service.Price,
		ConfirmationToken: s.tokenGenerator(),
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	booking, err = s.bookings.CreateBooking(ctx, booking)
	if err != nil {
		err = mapBookingRepoError(err)
		return
	}
	return
}

// GetBookingByRef resolves a booking by id or confirmation token and joins
// the catalog fields. Both lookup modes are public by design; the token is
// the unauthenticated capability handed to guest bookers.
func (s *BookingService) GetBookingByRef(ctx context.Context, ref string) (BookingDetails, error) {
	if s == nil {
		return BookingDetails{}, fmt.Errorf("BookingService is nil")
	}
	booking, err := s.bookings.GetBookingByRef(ctx, strings.TrimSpace(ref))
	if err != nil {
		return BookingDetails{}, mapBookingRepoError(err)
	}
	return s.withServiceDetails(ctx, booking), nil
}

// GetBookingByToken resolves a booking by confirmation token only. This
// backs the magic link emailed to guests.
func (s *BookingService) GetBookingByToken(ctx context.Context, token string) (BookingDetails, error) {
	if s == nil {
		return BookingDetails{}, fmt.Errorf("BookingService is nil")
	}
	booking, err := s.bookings.GetBookingByToken(ctx, strings.TrimSpace(token))
	if err != nil {
		return BookingDetails{}, mapBookingRepoError(err)
	}
	return s.withServiceDetails(ctx, booking), nil
}

// ListBookings returns every booking, newest first, for administrators.
func (s *BookingService) ListBookings(ctx context.Context, principal Principal) ([]Booking, error) {
	if s == nil {
		return nil, fmt.Errorf("BookingService is nil")
	}
	if !principal.IsAdmin() {
		return nil, ErrUnauthorized
	}
	return s.bookings.ListBookings(ctx)
}

// ListBookingsForPrincipal returns the caller's own bookings, matched by the
// authenticated email against the booking's stored email. There is no user
// foreign key; guest bookings with the same address are included.
func (s *BookingService) ListBookingsForPrincipal(ctx context.Context, principal Principal) ([]Booking, error) {
	if s == nil {
		return nil, fmt.Errorf("BookingService is nil")
	}
	if strings.TrimSpace(principal.Email) == "" {
		return nil, ErrUnauthorized
	}
	return s.bookings.ListBookingsByEmail(ctx, principal.Email)
}

// UpdateBooking applies an admin partial update. Only provided fields are
// touched. A fresh transition into cancelled emits exactly one cancellation
// event; repeating the update on an already cancelled booking emits nothing.
func (s *BookingService) UpdateBooking(ctx context.Context, principal Principal, bookingID string, input UpdateBookingInput) (booking Booking, err error) {
	if s == nil {
		err = fmt.Errorf("BookingService is nil")
		return
	}

	logger := s.loggerWith(ctx, "UpdateBooking", "principal_id", principal.UserID, "booking_id", bookingID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update booking", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "booking updated")
	}()

	if !principal.IsAdmin() {
		err = ErrUnauthorized
		return
	}

	vErr := validateBookingUpdate(input)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	var existing Booking
	existing, err = s.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		err = mapBookingRepoError(err)
		return
	}

	updated := existing
	if input.Status != nil {
		updated.Status = *input.Status
	}
	if input.PaymentStatus != nil {
		updated.PaymentStatus = *input.PaymentStatus
	}
	if input.VisioLink != nil {
		updated.VisioLink = normalizeVisioLink(*input.VisioLink)
	}
	updated.UpdatedAt = s.now()

	booking, err = s.bookings.UpdateBooking(ctx, updated)
	if err != nil {
		err = mapBookingRepoError(err)
		return
	}

	if existing.Status != BookingStatusCancelled && booking.Status == BookingStatusCancelled {
		s.emit(ctx, EventBookingCancelled, booking)
	}
	return
}

// DeleteBooking removes a booking for administrators. The cancellation event
// fires before the delete, unconditionally, even when the booking was already
// cancelled. That asymmetry with UpdateBooking matches the observed behavior
// of the system this replaces.
func (s *BookingService) DeleteBooking(ctx context.Context, principal Principal, bookingID string) error {
	if s == nil {
		return fmt.Errorf("BookingService is nil")
	}
	if !principal.IsAdmin() {
		return ErrUnauthorized
	}

	logger := s.loggerWith(ctx, "DeleteBooking", "principal_id", principal.UserID, "booking_id", bookingID)

	booking, err := s.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		err = mapBookingRepoError(err)
		logger.ErrorContext(ctx, "failed to load booking for delete", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	s.emit(ctx, EventBookingCancelled, booking)

	if err := s.bookings.DeleteBooking(ctx, bookingID); err != nil {
		err = mapBookingRepoError(err)
		logger.ErrorContext(ctx, "failed to delete booking", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	logger.InfoContext(ctx, "booking deleted")
	return nil
}

// MarkConfirmed flips a booking to confirmed/paid and emits the confirmation
// event. The payment bridge calls this only after the processor reported the
// intent as succeeded.
func (s *BookingService) MarkConfirmed(ctx context.Context, bookingID string) (Booking, error) {
	if s == nil {
		return Booking{}, fmt.Errorf("BookingService is nil")
	}

	booking, err := s.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		return Booking{}, mapBookingRepoError(err)
	}

	booking.Status = BookingStatusConfirmed
	booking.PaymentStatus = PaymentStatusPaid
	booking.UpdatedAt = s.now()

	booking, err = s.bookings.UpdateBooking(ctx, booking)
	if err != nil {
		return Booking{}, mapBookingRepoError(err)
	}

	s.emit(ctx, EventBookingConfirmed, booking)
	return booking, nil
}

// ResendConfirmation re-emits the confirmation event for a booking,
// best-effort. Backs the explicit confirmation-email endpoint.
func (s *BookingService) ResendConfirmation(ctx context.Context, bookingID string) error {
	if s == nil {
		return fmt.Errorf("BookingService is nil")
	}

	booking, err := s.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		return mapBookingRepoError(err)
	}

	s.emit(ctx, EventBookingConfirmed, booking)
	return nil
}

func (s *BookingService) emit(ctx context.Context, kind EventKind, booking Booking) {
	serviceName := booking.ServiceID
	if service, err := s.catalog.GetService(ctx, booking.ServiceID); err == nil {
		serviceName = service.Name
	}
	s.events.Emit(BookingEvent{
		Kind:        kind,
		Booking:     booking,
		ServiceName: serviceName,
		OccurredAt:  s.now(),
	})
}

func (s *BookingService) withServiceDetails(ctx context.Context, booking Booking) BookingDetails {
	details := BookingDetails{Booking: booking, ServiceName: booking.ServiceID}
	if service, err := s.catalog.GetService(ctx, booking.ServiceID); err == nil {
		details.ServiceName = service.Name
		details.ServiceDuration = service.Duration
	}
	return details
}

func validateBookingInput(input CreateBookingInput) *ValidationError {
	vErr := &ValidationError{}

	if strings.TrimSpace(input.ServiceID) == "" {
		vErr.Add("serviceId", "service is required")
	}
	if strings.TrimSpace(input.Date) == "" {
		vErr.Add("date", "date is required")
	} else if _, err := time.Parse("2006-01-02", input.Date); err != nil {
		vErr.Add("date", "date must use the YYYY-MM-DD format")
	}
	if strings.TrimSpace(input.Time) == "" {
		vErr.Add("time", "time is required")
	} else if !IsSlotTime(input.Time) {
		vErr.Add("time", "time is not a bookable slot")
	}
	if strings.TrimSpace(input.FirstName) == "" {
		vErr.Add("firstName", "first name is required")
	}
	if strings.TrimSpace(input.LastName) == "" {
		vErr.Add("lastName", "last name is required")
	}
	if email := strings.TrimSpace(input.Email); email == "" {
		vErr.Add("email", "email is required")
	} else if !strings.Contains(email, "@") {
		vErr.Add("email", "email is invalid")
	}
	if strings.TrimSpace(input.Phone) == "" {
		vErr.Add("phone", "phone is required")
	}
	if t := strings.TrimSpace(input.BookingType); t != "" && t != BookingTypeGuest && t != BookingTypeRegistered {
		vErr.Add("bookingType", "booking type must be guest or registered")
	}

	return vErr
}

func validateBookingUpdate(input UpdateBookingInput) *ValidationError {
	vErr := &ValidationError{}

	if input.Status != nil {
		switch *input.Status {
		case BookingStatusPending, BookingStatusConfirmed, BookingStatusCancelled:
		default:
			vErr.Add("status", "status is invalid")
		}
	}
	if input.PaymentStatus != nil {
		switch *input.PaymentStatus {
		case PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed:
		default:
			vErr.Add("paymentStatus", "payment status is invalid")
		}
	}

	return vErr
}

// normalizeVisioLink trims the admin-entered conference link and prefixes a
// scheme when missing. An empty value clears the link.
func normalizeVisioLink(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	if !strings.HasPrefix(trimmed, "http://") && !strings.HasPrefix(trimmed, "https://") {
		trimmed = "https://" + trimmed
	}
	return &trimmed
}

func normalizeOptionalString(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func mapBookingRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrDuplicate) {
		return ErrSlotTaken
	}
	if errors.Is(err, persistence.ErrConstraintViolation) {
		vErr := &ValidationError{}
		vErr.Add("booking", "booking is incomplete")
		return vErr
	}
	return err
}
