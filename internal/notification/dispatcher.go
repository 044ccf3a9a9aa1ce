package notification

import (
	"context"
	"log/slog"

	"github.com/example/serenity-bookings/internal/application"
)

const defaultQueueSize = 64

// Dispatcher receives booking events on a buffered channel and delivers the
// corresponding emails from a single worker goroutine. Emit never blocks the
// caller; when the queue is full the event is dropped and logged.
type Dispatcher struct {
	mailer Mailer
	queue  chan application.BookingEvent
	logger *slog.Logger
}

// NewDispatcher constructs a dispatcher. Run must be started for events to be
// delivered.
func NewDispatcher(mailer Mailer, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		mailer: mailer,
		queue:  make(chan application.BookingEvent, defaultQueueSize),
		logger: logger,
	}
}

// Emit queues an event for delivery. It never blocks and never fails the
// caller.
func (d *Dispatcher) Emit(event application.BookingEvent) {
	select {
	case d.queue <- event:
	default:
		d.logger.Warn("notification queue full, dropping event",
			"kind", string(event.Kind),
			"booking_id", event.Booking.ID,
		)
	}
}

// Run consumes the queue until the context is cancelled. Delivery failures
// are logged and swallowed.
func (d *Dispatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-d.queue:
			d.deliver(ctx, event)
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, event application.BookingEvent) {
	msg, ok := Render(event)
	if !ok {
		d.logger.Warn("unknown notification event kind", "kind", string(event.Kind))
		return
	}
	if msg.To == "" {
		return
	}

	if err := d.mailer.Send(ctx, msg); err != nil {
		d.logger.ErrorContext(ctx, "failed to send notification email",
			"error", err,
			"kind", string(event.Kind),
			"booking_id", event.Booking.ID,
			"to", msg.To,
		)
		return
	}

	d.logger.InfoContext(ctx, "notification email sent",
		"kind", string(event.Kind),
		"booking_id", event.Booking.ID,
	)
}
