package application

import "time"

// EventKind labels a booking lifecycle transition.
type EventKind string

const (
	// EventBookingConfirmed fires when payment confirmation flips a booking
	// to confirmed/paid, and on explicit confirmation-email resends.
	EventBookingConfirmed EventKind = "booking.confirmed"
	// EventBookingCancelled fires on a fresh transition into cancelled and
	// unconditionally before an admin delete.
	EventBookingCancelled EventKind = "booking.cancelled"
)

// BookingEvent is handed to the notification side-channel after a state
// transition has been persisted. Delivery is best-effort; consumers never
// influence the originating request.
type BookingEvent struct {
	Kind        EventKind
	Booking     Booking
	ServiceName string
	OccurredAt  time.Time
}

// EventSink receives booking lifecycle events. Implementations must not block
// the caller and must swallow their own delivery failures.
type EventSink interface {
	Emit(event BookingEvent)
}

// discardSink drops every event; used when no notification channel is wired.
type discardSink struct{}

func (discardSink) Emit(BookingEvent) {}
