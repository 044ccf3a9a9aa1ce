package application

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

type processorStub struct {
	intent    PaymentIntent
	createErr error

	createdAmount   int64
	createdCurrency string
	createdBooking  string

	status    string
	statusErr error
}

func (p *processorStub) CreateIntent(ctx context.Context, amountMinor int64, currency, bookingID string) (PaymentIntent, error) {
	if p.createErr != nil {
		return PaymentIntent{}, p.createErr
	}
	p.createdAmount = amountMinor
	p.createdCurrency = currency
	p.createdBooking = bookingID
	return p.intent, nil
}

func (p *processorStub) IntentStatus(ctx context.Context, intentID string) (string, error) {
	if p.statusErr != nil {
		return "", p.statusErr
	}
	return p.status, nil
}

func pendingBooking() Booking {
	return Booking{
		ID:            "booking-1",
		ServiceID:     "tarot",
		Status:        BookingStatusPending,
		PaymentStatus: PaymentStatusPending,
		Price:         decimal.RequireFromString("45.00"),
	}
}

func newTestPaymentService(bookings *bookingRepoStub, processor *processorStub, confirm func(ctx context.Context, bookingID string) (Booking, error)) *PaymentService {
	if confirm == nil {
		confirm = func(ctx context.Context, bookingID string) (Booking, error) {
			return Booking{ID: bookingID, Status: BookingStatusConfirmed, PaymentStatus: PaymentStatusPaid}, nil
		}
	}
	return NewPaymentService(bookings, processor, "eur", confirm, fixedNow, nil)
}

func TestPaymentService_CreateIntent(t *testing.T) {
	t.Run("derives the amount from the stored price", func(t *testing.T) {
		bookings := &bookingRepoStub{get: pendingBooking()}
		processor := &processorStub{intent: PaymentIntent{ID: "pi_1", ClientSecret: "pi_1_secret"}}
		svc := newTestPaymentService(bookings, processor, nil)

		intent, err := svc.CreateIntent(context.Background(), "booking-1", nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if intent.ID != "pi_1" || intent.ClientSecret != "pi_1_secret" {
			t.Fatalf("expected processor intent relayed, got %+v", intent)
		}
		if intent.AmountMinor != 4500 || intent.Currency != "eur" || intent.BookingID != "booking-1" {
			t.Fatalf("expected charge details echoed on the intent, got %+v", intent)
		}
		if processor.createdAmount != 4500 {
			t.Fatalf("expected 4500 minor units, got %d", processor.createdAmount)
		}
		if processor.createdCurrency != "eur" {
			t.Fatalf("expected eur, got %q", processor.createdCurrency)
		}
		if processor.createdBooking != "booking-1" {
			t.Fatalf("expected booking id in metadata, got %q", processor.createdBooking)
		}
	})

	t.Run("stores the intent id on the booking", func(t *testing.T) {
		bookings := &bookingRepoStub{get: pendingBooking()}
		processor := &processorStub{intent: PaymentIntent{ID: "pi_1"}}
		svc := newTestPaymentService(bookings, processor, nil)

		if _, err := svc.CreateIntent(context.Background(), "booking-1", nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if bookings.updated.PaymentIntentID == nil || *bookings.updated.PaymentIntentID != "pi_1" {
			t.Fatalf("expected intent id persisted, got %v", bookings.updated.PaymentIntentID)
		}
	})

	t.Run("rejects a mismatched client amount", func(t *testing.T) {
		bookings := &bookingRepoStub{get: pendingBooking()}
		svc := newTestPaymentService(bookings, &processorStub{}, nil)

		wrong := int64(100)
		_, err := svc.CreateIntent(context.Background(), "booking-1", &wrong)

		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if _, ok := vErr.FieldErrors["amount"]; !ok {
			t.Fatalf("expected amount validation error, got %v", vErr.FieldErrors)
		}
	})

	t.Run("accepts a matching client amount", func(t *testing.T) {
		bookings := &bookingRepoStub{get: pendingBooking()}
		svc := newTestPaymentService(bookings, &processorStub{intent: PaymentIntent{ID: "pi_1"}}, nil)

		exact := int64(4500)
		if _, err := svc.CreateIntent(context.Background(), "booking-1", &exact); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("reports unknown bookings as not found", func(t *testing.T) {
		svc := newTestPaymentService(&bookingRepoStub{}, &processorStub{}, nil)

		_, err := svc.CreateIntent(context.Background(), "missing", nil)

		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestPaymentService_ConfirmPayment(t *testing.T) {
	t.Run("requires booking and intent ids", func(t *testing.T) {
		svc := newTestPaymentService(&bookingRepoStub{}, &processorStub{}, nil)

		_, err := svc.ConfirmPayment(context.Background(), "", "")

		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
	})

	t.Run("leaves the booking untouched when the intent has not succeeded", func(t *testing.T) {
		bookings := &bookingRepoStub{get: pendingBooking()}
		confirmed := false
		svc := newTestPaymentService(bookings, &processorStub{status: "requires_payment_method"}, func(ctx context.Context, bookingID string) (Booking, error) {
			confirmed = true
			return Booking{}, nil
		})

		_, err := svc.ConfirmPayment(context.Background(), "booking-1", "pi_1")

		if !errors.Is(err, ErrPaymentNotConfirmed) {
			t.Fatalf("expected ErrPaymentNotConfirmed, got %v", err)
		}
		if confirmed {
			t.Fatalf("expected no confirmation transition")
		}
	})

	t.Run("confirms the booking when the intent succeeded", func(t *testing.T) {
		bookings := &bookingRepoStub{get: pendingBooking()}
		svc := newTestPaymentService(bookings, &processorStub{status: "succeeded"}, nil)

		booking, err := svc.ConfirmPayment(context.Background(), "booking-1", "pi_1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if booking.Status != BookingStatusConfirmed || booking.PaymentStatus != PaymentStatusPaid {
			t.Fatalf("expected confirmed/paid, got %s/%s", booking.Status, booking.PaymentStatus)
		}
	})

	t.Run("wraps processor failures", func(t *testing.T) {
		sentinel := errors.New("stripe unavailable")
		bookings := &bookingRepoStub{get: pendingBooking()}
		svc := newTestPaymentService(bookings, &processorStub{statusErr: sentinel}, nil)

		_, err := svc.ConfirmPayment(context.Background(), "booking-1", "pi_1")

		if !errors.Is(err, sentinel) {
			t.Fatalf("expected processor error, got %v", err)
		}
	})
}
