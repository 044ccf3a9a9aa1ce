package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/serenity-bookings/internal/application"
)

type paymentService interface {
	CreateIntent(ctx context.Context, bookingID string, expectedAmountMinor *int64) (application.PaymentIntent, error)
	ConfirmPayment(ctx context.Context, bookingID, intentID string) (application.Booking, error)
}

// PaymentHandler drives the card payment endpoints.
type PaymentHandler struct {
	service   paymentService
	responder responder
	logger    *slog.Logger
}

// NewPaymentHandler constructs a payment handler.
func NewPaymentHandler(service paymentService, logger *slog.Logger) *PaymentHandler {
	base := defaultLogger(logger)
	return &PaymentHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *PaymentHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "PaymentHandler", operation, attrs...)
}

// CreateIntent handles POST /api/payments/create-intent.
func (h *PaymentHandler) CreateIntent(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req createIntentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "CreateIntent", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode payment request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	if strings.TrimSpace(req.BookingID) == "" {
		vErr := &application.ValidationError{}
		vErr.Add("bookingId", "booking id is required")
		h.responder.handleServiceError(r.Context(), w, vErr)
		return
	}

	logger := h.log(r.Context(), "CreateIntent", "booking_id", req.BookingID)

	intent, err := h.service.CreateIntent(r.Context(), req.BookingID, req.Amount)
	if err != nil {
		logger.ErrorContext(r.Context(), "payment intent creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("intent_id", intent.ID).InfoContext(r.Context(), "payment intent created")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, createIntentResponse{
		PaymentIntentID: intent.ID,
		ClientSecret:    intent.ClientSecret,
		Amount:          intent.AmountMinor,
		Currency:        intent.Currency,
		BookingID:       intent.BookingID,
	})
}

// Confirm handles POST /api/payments/confirm.
func (h *PaymentHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req confirmPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Confirm", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode payment confirmation", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Confirm", "booking_id", req.BookingID, "intent_id", req.PaymentIntentID)

	booking, err := h.service.ConfirmPayment(r.Context(), strings.TrimSpace(req.BookingID), strings.TrimSpace(req.PaymentIntentID))
	if err != nil {
		logger.ErrorContext(r.Context(), "payment confirmation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "payment confirmed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, confirmPaymentResponse{
		Success: true,
		Booking: toBookingDTO(booking),
	})
}

type createIntentRequest struct {
	BookingID string `json:"bookingId"`
	Amount    *int64 `json:"amount"`
}

type createIntentResponse struct {
	PaymentIntentID string `json:"paymentIntentId"`
	ClientSecret    string `json:"clientSecret"`
	Amount          int64  `json:"amount"`
	Currency        string `json:"currency"`
	BookingID       string `json:"bookingId"`
}

type confirmPaymentRequest struct {
	BookingID       string `json:"bookingId"`
	PaymentIntentID string `json:"paymentIntentId"`
}

type confirmPaymentResponse struct {
	Success bool       `json:"success"`
	Booking bookingDTO `json:"booking"`
}
