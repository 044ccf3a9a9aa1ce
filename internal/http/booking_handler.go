package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/example/serenity-bookings/internal/application"
)

type bookingService interface {
	CreateBooking(ctx context.Context, input application.CreateBookingInput) (application.Booking, error)
	GetBookingByRef(ctx context.Context, ref string) (application.BookingDetails, error)
	GetBookingByToken(ctx context.Context, token string) (application.BookingDetails, error)
	ListBookings(ctx context.Context, principal application.Principal) ([]application.Booking, error)
	ListBookingsForPrincipal(ctx context.Context, principal application.Principal) ([]application.Booking, error)
	UpdateBooking(ctx context.Context, principal application.Principal, bookingID string, input application.UpdateBookingInput) (application.Booking, error)
	DeleteBooking(ctx context.Context, principal application.Principal, bookingID string) error
}

// BookingHandler drives the booking endpoints.
type BookingHandler struct {
	service   bookingService
	validate  *validator.Validate
	responder responder
	logger    *slog.Logger
}

// NewBookingHandler constructs a booking handler.
func NewBookingHandler(service bookingService, logger *slog.Logger) *BookingHandler {
	base := defaultLogger(logger)
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &BookingHandler{service: service, validate: validate, responder: newResponder(base), logger: base}
}

func (h *BookingHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "BookingHandler", operation, attrs...)
}

// Create handles POST /api/bookings.
func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req createBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode booking request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		h.responder.handleServiceError(r.Context(), w, translateRequestErrors(err))
		return
	}

	logger := h.log(r.Context(), "Create", "service_id", req.ServiceID, "date", req.Date, "time", req.Time)

	booking, err := h.service.CreateBooking(r.Context(), req.toInput())
	if err != nil {
		logger.ErrorContext(r.Context(), "booking creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("booking_id", booking.ID).InfoContext(r.Context(), "booking created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, bookingResponse{Booking: toBookingDTO(booking)})
}

// List handles GET /api/bookings (administrators).
func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "List", "principal_id", principal.UserID)

	bookings, err := h.service.ListBookings(r.Context(), principal)
	if err != nil {
		logger.ErrorContext(r.Context(), "booking listing failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(bookings)).InfoContext(r.Context(), "bookings listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listBookingsResponse{Bookings: toBookingDTOs(bookings)})
}

// ListMine handles GET /api/bookings/me.
func (h *BookingHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingToken)
		return
	}
	logger := h.log(r.Context(), "ListMine", "principal_id", principal.UserID)

	bookings, err := h.service.ListBookingsForPrincipal(r.Context(), principal)
	if err != nil {
		logger.ErrorContext(r.Context(), "booking listing failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(bookings)).InfoContext(r.Context(), "bookings listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listBookingsResponse{Bookings: toBookingDTOs(bookings)})
}

// Get handles GET /api/bookings/{ref} where ref is a booking id or a
// confirmation token.
func (h *BookingHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	ref, ok := BookingRefFromContext(r.Context())
	if !ok || strings.TrimSpace(ref) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidBookingRef)
		return
	}

	details, err := h.service.GetBookingByRef(r.Context(), ref)
	if err != nil {
		h.log(r.Context(), "Get").ErrorContext(r.Context(), "booking lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, bookingDetailsResponse{Booking: toBookingDetailsDTO(details)})
}

// GetByToken handles GET /api/bookings/token/{token}.
func (h *BookingHandler) GetByToken(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	token, ok := BookingRefFromContext(r.Context())
	if !ok || strings.TrimSpace(token) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidBookingRef)
		return
	}

	details, err := h.service.GetBookingByToken(r.Context(), token)
	if err != nil {
		h.log(r.Context(), "GetByToken").ErrorContext(r.Context(), "booking lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, bookingDetailsResponse{Booking: toBookingDetailsDTO(details)})
}

// Update handles PUT /api/bookings/id/{id}. Only the provided fields are
// applied.
func (h *BookingHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	bookingID, ok := BookingRefFromContext(r.Context())
	if !ok || strings.TrimSpace(bookingID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidBookingRef)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req updateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Update", "principal_id", principal.UserID, "booking_id", bookingID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode booking update", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Update", "principal_id", principal.UserID, "booking_id", bookingID)

	booking, err := h.service.UpdateBooking(r.Context(), principal, bookingID, application.UpdateBookingInput{
		Status:        req.Status,
		PaymentStatus: req.PaymentStatus,
		VisioLink:     req.VisioLink,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "booking update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "booking updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, bookingResponse{Booking: toBookingDTO(booking)})
}

// Delete handles DELETE /api/bookings/{id}.
func (h *BookingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	bookingID, ok := BookingRefFromContext(r.Context())
	if !ok || strings.TrimSpace(bookingID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidBookingRef)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Delete", "principal_id", principal.UserID, "booking_id", bookingID)

	if err := h.service.DeleteBooking(r.Context(), principal, bookingID); err != nil {
		logger.ErrorContext(r.Context(), "booking delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "booking deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

type createBookingRequest struct {
	ServiceID   string  `json:"serviceId" validate:"required"`
	Date        string  `json:"date" validate:"required"`
	Time        string  `json:"time" validate:"required"`
	FirstName   string  `json:"firstName" validate:"required"`
	LastName    string  `json:"lastName" validate:"required"`
	Email       string  `json:"email" validate:"required,email"`
	Phone       string  `json:"phone" validate:"required"`
	Address     *string `json:"address"`
	Message     *string `json:"message"`
	BookingType string  `json:"bookingType" validate:"omitempty,oneof=guest registered"`
}

func (r createBookingRequest) toInput() application.CreateBookingInput {
	return application.CreateBookingInput{
		ServiceID:   strings.TrimSpace(r.ServiceID),
		Date:        strings.TrimSpace(r.Date),
		Time:        strings.TrimSpace(r.Time),
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		Email:       r.Email,
		Phone:       r.Phone,
		Address:     r.Address,
		Message:     r.Message,
		BookingType: strings.TrimSpace(r.BookingType),
	}
}

type updateBookingRequest struct {
	Status        *string `json:"status"`
	PaymentStatus *string `json:"paymentStatus"`
	VisioLink     *string `json:"visioLink"`
}

// translateRequestErrors converts validator failures into the field keyed
// validation error the responder localizes.
func translateRequestErrors(err error) error {
	var fieldErrs validator.ValidationErrors
	vErr := &application.ValidationError{}
	if !errors.As(err, &fieldErrs) {
		vErr.Add("body", "request body is invalid")
		return vErr
	}

	for _, fe := range fieldErrs {
		switch {
		case fe.Tag() == "required":
			vErr.Add(fe.Field(), requiredMessageFor(fe.Field()))
		case fe.Tag() == "email":
			vErr.Add(fe.Field(), "email is invalid")
		case fe.Tag() == "oneof" && fe.Field() == "bookingType":
			vErr.Add(fe.Field(), "booking type must be guest or registered")
		default:
			vErr.Add(fe.Field(), fe.Field()+" is invalid")
		}
	}
	return vErr
}

func requiredMessageFor(field string) string {
	switch field {
	case "serviceId":
		return "service is required"
	case "date":
		return "date is required"
	case "time":
		return "time is required"
	case "firstName":
		return "first name is required"
	case "lastName":
		return "last name is required"
	case "email":
		return "email is required"
	case "phone":
		return "phone is required"
	default:
		return field + " is required"
	}
}

type bookingResponse struct {
	Booking bookingDTO `json:"booking"`
}

type bookingDetailsResponse struct {
	Booking bookingDetailsDTO `json:"booking"`
}

type listBookingsResponse struct {
	Bookings []bookingDTO `json:"bookings"`
}

type bookingDTO struct {
	ID                string  `json:"id"`
	ServiceID         string  `json:"serviceId"`
	Date              string  `json:"date"`
	Time              string  `json:"time"`
	FirstName         string  `json:"firstName"`
	LastName          string  `json:"lastName"`
	Email             string  `json:"email"`
	Phone             string  `json:"phone"`
	Address           *string `json:"address,omitempty"`
	Message           *string `json:"message,omitempty"`
	BookingType       string  `json:"bookingType"`
	Status            string  `json:"status"`
	PaymentStatus     string  `json:"paymentStatus"`
	Price             string  `json:"price"`
	ConfirmationToken string  `json:"confirmationToken"`
	PaymentIntentID   *string `json:"paymentIntentId,omitempty"`
	VisioLink         *string `json:"visioLink,omitempty"`
	CreatedAt         string  `json:"createdAt"`
	UpdatedAt         string  `json:"updatedAt"`
}

type bookingDetailsDTO struct {
	bookingDTO
	ServiceName     string `json:"serviceName"`
	ServiceDuration string `json:"serviceDuration,omitempty"`
}

func toBookingDTO(booking application.Booking) bookingDTO {
	return bookingDTO{
		ID:                booking.ID,
		ServiceID:         booking.ServiceID,
		Date:              booking.Date,
		Time:              booking.Time,
		FirstName:         booking.FirstName,
		LastName:          booking.LastName,
		Email:             booking.Email,
		Phone:             booking.Phone,
		Address:           booking.Address,
		Message:           booking.Message,
		BookingType:       booking.BookingType,
		Status:            booking.Status,
		PaymentStatus:     booking.PaymentStatus,
		Price:             booking.Price.StringFixed(2),
		ConfirmationToken: booking.ConfirmationToken,
		PaymentIntentID:   booking.PaymentIntentID,
		VisioLink:         booking.VisioLink,
		CreatedAt:         booking.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:         booking.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func toBookingDetailsDTO(details application.BookingDetails) bookingDetailsDTO {
	return bookingDetailsDTO{
		bookingDTO:      toBookingDTO(details.Booking),
		ServiceName:     details.ServiceName,
		ServiceDuration: details.ServiceDuration,
	}
}

func toBookingDTOs(bookings []application.Booking) []bookingDTO {
	if len(bookings) == 0 {
		return nil
	}
	out := make([]bookingDTO, 0, len(bookings))
	for _, booking := range bookings {
		out = append(out, toBookingDTO(booking))
	}
	return out
}
