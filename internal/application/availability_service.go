package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// SlotCalendar exposes the booking lookups the availability grid needs.
type SlotCalendar interface {
	ListActiveBookingTimes(ctx context.Context, date string) ([]string, error)
}

// AvailabilityService computes the slot grid for a calendar date.
type AvailabilityService struct {
	calendar SlotCalendar
	logger   *slog.Logger
}

// NewAvailabilityService constructs an availability service.
func NewAvailabilityService(calendar SlotCalendar, logger *slog.Logger) *AvailabilityService {
	return &AvailabilityService{calendar: calendar, logger: defaultLogger(logger)}
}

// ListSlots returns every slot of the fixed grid for the date, flagged
// available unless a non-cancelled booking occupies it. The available flags
// are the exact complement of those bookings.
func (s *AvailabilityService) ListSlots(ctx context.Context, date string) (slots []Slot, err error) {
	if s == nil {
		err = fmt.Errorf("AvailabilityService is nil")
		return
	}

	logger := serviceLogger(ctx, s.logger, "AvailabilityService", "ListSlots", "date", date)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list slots", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "slots listed", "slot_count", len(slots))
	}()

	if err = validateSlotDate(date); err != nil {
		return
	}

	taken, err := s.calendar.ListActiveBookingTimes(ctx, date)
	if err != nil {
		return nil, err
	}

	takenSet := make(map[string]struct{}, len(taken))
	for _, t := range taken {
		takenSet[t] = struct{}{}
	}

	slots = make([]Slot, 0, len(SlotTimes))
	for _, t := range SlotTimes {
		_, booked := takenSet[t]
		slots = append(slots, Slot{Time: t, Available: !booked, Booked: booked})
	}
	return slots, nil
}

func validateSlotDate(date string) error {
	if date == "" {
		vErr := &ValidationError{}
		vErr.Add("date", "date is required")
		return vErr
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		vErr := &ValidationError{}
		vErr.Add("date", "date must use the YYYY-MM-DD format")
		return vErr
	}
	return nil
}
