package application

import (
	"context"
	"errors"
	"testing"
)

type calendarStub struct {
	times []string
	err   error
}

func (c *calendarStub) ListActiveBookingTimes(ctx context.Context, date string) ([]string, error) {
	if c.err != nil {
		return nil, c.err
	}
	return c.times, nil
}

func TestAvailabilityService_ListSlots(t *testing.T) {
	t.Run("requires a date", func(t *testing.T) {
		svc := NewAvailabilityService(&calendarStub{}, nil)

		_, err := svc.ListSlots(context.Background(), "")

		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if _, ok := vErr.FieldErrors["date"]; !ok {
			t.Fatalf("expected date validation error, got %v", vErr.FieldErrors)
		}
	})

	t.Run("rejects malformed dates", func(t *testing.T) {
		svc := NewAvailabilityService(&calendarStub{}, nil)

		_, err := svc.ListSlots(context.Background(), "15/03/2025")

		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
	})

	t.Run("returns the full grid when nothing is booked", func(t *testing.T) {
		svc := NewAvailabilityService(&calendarStub{}, nil)

		slots, err := svc.ListSlots(context.Background(), "2025-03-15")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(slots) != len(SlotTimes) {
			t.Fatalf("expected %d slots, got %d", len(SlotTimes), len(slots))
		}
		for _, slot := range slots {
			if !slot.Available || slot.Booked {
				t.Fatalf("expected slot %s available, got %+v", slot.Time, slot)
			}
		}
	})

	t.Run("flags booked times as the exact complement", func(t *testing.T) {
		svc := NewAvailabilityService(&calendarStub{times: []string{"10:00", "15:30"}}, nil)

		slots, err := svc.ListSlots(context.Background(), "2025-03-15")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		byTime := make(map[string]Slot, len(slots))
		for _, slot := range slots {
			byTime[slot.Time] = slot
		}
		for _, taken := range []string{"10:00", "15:30"} {
			if byTime[taken].Available || !byTime[taken].Booked {
				t.Fatalf("expected slot %s booked, got %+v", taken, byTime[taken])
			}
		}
		if !byTime["09:00"].Available {
			t.Fatalf("expected untouched slot available")
		}
	})

	t.Run("propagates calendar failures", func(t *testing.T) {
		sentinel := errors.New("calendar unavailable")
		svc := NewAvailabilityService(&calendarStub{err: sentinel}, nil)

		_, err := svc.ListSlots(context.Background(), "2025-03-15")

		if !errors.Is(err, sentinel) {
			t.Fatalf("expected calendar error, got %v", err)
		}
	})
}
