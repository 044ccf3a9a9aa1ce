package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// PaymentIntent is the processor-side handle for a pending charge. The client
// secret is relayed to the browser to drive the card collection widget.
// AmountMinor, Currency, and BookingID echo what the charge was opened for.
type PaymentIntent struct {
	ID           string
	ClientSecret string
	AmountMinor  int64
	Currency     string
	BookingID    string
}

// Processor abstracts the card payment provider.
type Processor interface {
	CreateIntent(ctx context.Context, amountMinor int64, currency, bookingID string) (PaymentIntent, error)
	IntentStatus(ctx context.Context, intentID string) (string, error)
}

// intentStatusSucceeded is the terminal processor status that releases a booking.
const intentStatusSucceeded = "succeeded"

// PaymentService bridges bookings to the card processor. Amounts are always
// derived from the stored booking price, never trusted from the client.
type PaymentService struct {
	bookings  BookingRepository
	processor Processor
	currency  string
	confirm   func(ctx context.Context, bookingID string) (Booking, error)
	now       func() time.Time
	logger    *slog.Logger
}

// NewPaymentService constructs a payment service. confirm is the booking
// transition invoked once the processor reports success, typically
// BookingService.MarkConfirmed.
func NewPaymentService(
	bookings BookingRepository,
	processor Processor,
	currency string,
	confirm func(ctx context.Context, bookingID string) (Booking, error),
	now func() time.Time,
	logger *slog.Logger,
) *PaymentService {
	if currency == "" {
		currency = "eur"
	}
	if now == nil {
		now = time.Now
	}
	return &PaymentService{
		bookings:  bookings,
		processor: processor,
		currency:  currency,
		confirm:   confirm,
		now:       now,
		logger:    defaultLogger(logger),
	}
}

func (s *PaymentService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "PaymentService", operation, attrs...)
}

// CreateIntent opens a payment intent for a booking. The charge amount is the
// booking's snapshotted price in minor units; when the caller supplies an
// expected amount it must match exactly. The intent id is stored back on the
// booking so confirmation can correlate the two.
func (s *PaymentService) CreateIntent(ctx context.Context, bookingID string, expectedAmountMinor *int64) (intent PaymentIntent, err error) {
	if s == nil {
		err = fmt.Errorf("PaymentService is nil")
		return
	}

	logger := s.loggerWith(ctx, "CreateIntent", "booking_id", bookingID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create payment intent", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("intent_id", intent.ID).InfoContext(ctx, "payment intent created")
	}()

	var booking Booking
	booking, err = s.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		err = mapBookingRepoError(err)
		return
	}

	amountMinor := booking.Price.Shift(2).IntPart()
	if expectedAmountMinor != nil && *expectedAmountMinor != amountMinor {
		vErr := &ValidationError{}
		vErr.Add("amount", "amount does not match the booking price")
		err = vErr
		return
	}

	intent, err = s.processor.CreateIntent(ctx, amountMinor, s.currency, booking.ID)
	if err != nil {
		err = fmt.Errorf("create payment intent: %w", err)
		return
	}
	intent.AmountMinor = amountMinor
	intent.Currency = s.currency
	intent.BookingID = booking.ID

	booking.PaymentIntentID = &intent.ID
	booking.UpdatedAt = s.now()
	if _, updateErr := s.bookings.UpdateBooking(ctx, booking); updateErr != nil {
		// The processor-side intent exists either way; confirmation still
		// works through the intent's metadata.
		logger.WarnContext(ctx, "failed to store intent id on booking", "error", updateErr)
	}
	return
}

// ConfirmPayment checks the intent status with the processor and, on success,
// flips the booking to confirmed/paid. A non-succeeded status is reported as
// ErrPaymentNotConfirmed without touching the booking.
func (s *PaymentService) ConfirmPayment(ctx context.Context, bookingID, intentID string) (booking Booking, err error) {
	if s == nil {
		err = fmt.Errorf("PaymentService is nil")
		return
	}

	logger := s.loggerWith(ctx, "ConfirmPayment", "booking_id", bookingID, "intent_id", intentID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to confirm payment", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "payment confirmed")
	}()

	vErr := &ValidationError{}
	if bookingID == "" {
		vErr.Add("bookingId", "booking id is required")
	}
	if intentID == "" {
		vErr.Add("paymentIntentId", "payment intent id is required")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	if _, err = s.bookings.GetBooking(ctx, bookingID); err != nil {
		err = mapBookingRepoError(err)
		return
	}

	var status string
	status, err = s.processor.IntentStatus(ctx, intentID)
	if err != nil {
		err = fmt.Errorf("fetch payment intent: %w", err)
		return
	}
	if status != intentStatusSucceeded {
		logger.WarnContext(ctx, "payment intent not succeeded", "status", status)
		err = ErrPaymentNotConfirmed
		return
	}

	booking, err = s.confirm(ctx, bookingID)
	return
}
