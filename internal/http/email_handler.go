package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/serenity-bookings/internal/application"
)

type confirmationSender interface {
	ResendConfirmation(ctx context.Context, bookingID string) error
}

// EmailHandler triggers confirmation email resends.
type EmailHandler struct {
	service   confirmationSender
	responder responder
	logger    *slog.Logger
}

// NewEmailHandler constructs an email handler.
func NewEmailHandler(service confirmationSender, logger *slog.Logger) *EmailHandler {
	base := defaultLogger(logger)
	return &EmailHandler{service: service, responder: newResponder(base), logger: base}
}

// SendConfirmation handles POST /api/emails/confirmation.
func (h *EmailHandler) SendConfirmation(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req sendConfirmationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	bookingID := strings.TrimSpace(req.BookingID)
	if bookingID == "" {
		vErr := &application.ValidationError{}
		vErr.Add("bookingId", "booking id is required")
		h.responder.handleServiceError(r.Context(), w, vErr)
		return
	}

	logger := handlerLogger(r.Context(), h.logger, "EmailHandler", "SendConfirmation", "booking_id", bookingID)

	if err := h.service.ResendConfirmation(r.Context(), bookingID); err != nil {
		logger.ErrorContext(r.Context(), "confirmation resend failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "confirmation email queued")
	h.responder.writeJSON(r.Context(), w, http.StatusAccepted, sendConfirmationResponse{Queued: true})
}

type sendConfirmationRequest struct {
	BookingID string `json:"bookingId"`
}

type sendConfirmationResponse struct {
	Queued bool `json:"queued"`
}
