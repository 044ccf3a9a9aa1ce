package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/example/serenity-bookings/internal/application"
)

type availabilityService interface {
	ListSlots(ctx context.Context, date string) ([]application.Slot, error)
}

// SlotHandler serves the public availability grid.
type SlotHandler struct {
	service   availabilityService
	responder responder
	logger    *slog.Logger
}

// NewSlotHandler constructs a slot handler.
func NewSlotHandler(service availabilityService, logger *slog.Logger) *SlotHandler {
	base := defaultLogger(logger)
	return &SlotHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *SlotHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "SlotHandler", operation, attrs...)
}

// List handles GET /api/calendar/slots?date=YYYY-MM-DD.
func (h *SlotHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	date := r.URL.Query().Get("date")
	logger := h.log(r.Context(), "List", "date", date)

	slots, err := h.service.ListSlots(r.Context(), date)
	if err != nil {
		logger.ErrorContext(r.Context(), "slot listing failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("slot_count", len(slots)).InfoContext(r.Context(), "slots listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listSlotsResponse{Date: date, Slots: toSlotDTOs(slots)})
}

type listSlotsResponse struct {
	Date  string    `json:"date"`
	Slots []slotDTO `json:"slots"`
}

type slotDTO struct {
	Time      string `json:"time"`
	Available bool   `json:"available"`
	Booked    bool   `json:"booked"`
}

func toSlotDTOs(slots []application.Slot) []slotDTO {
	out := make([]slotDTO, 0, len(slots))
	for _, slot := range slots {
		out = append(out, slotDTO{Time: slot.Time, Available: slot.Available, Booked: slot.Booked})
	}
	return out
}
