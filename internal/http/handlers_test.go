package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/example/serenity-bookings/internal/application"
)

type fakeTokenValidator struct {
	principal application.Principal
	err       error
}

func (f fakeTokenValidator) ValidateToken(ctx context.Context, token string) (application.Principal, error) {
	if f.err != nil {
		return application.Principal{}, f.err
	}
	return f.principal, nil
}

type bookingServiceStub struct {
	createBooking application.Booking
	createErr     error
	createdInput  application.CreateBookingInput

	details    application.BookingDetails
	detailsErr error

	list    []application.Booking
	listErr error

	updated   application.Booking
	updateErr error

	deleteErr error
}

func (s *bookingServiceStub) CreateBooking(ctx context.Context, input application.CreateBookingInput) (application.Booking, error) {
	s.createdInput = input
	if s.createErr != nil {
		return application.Booking{}, s.createErr
	}
	return s.createBooking, nil
}

func (s *bookingServiceStub) GetBookingByRef(ctx context.Context, ref string) (application.BookingDetails, error) {
	if s.detailsErr != nil {
		return application.BookingDetails{}, s.detailsErr
	}
	return s.details, nil
}

func (s *bookingServiceStub) GetBookingByToken(ctx context.Context, token string) (application.BookingDetails, error) {
	if s.detailsErr != nil {
		return application.BookingDetails{}, s.detailsErr
	}
	return s.details, nil
}

func (s *bookingServiceStub) ListBookings(ctx context.Context, principal application.Principal) ([]application.Booking, error) {
	if !principal.IsAdmin() {
		return nil, application.ErrUnauthorized
	}
	return s.list, s.listErr
}

func (s *bookingServiceStub) ListBookingsForPrincipal(ctx context.Context, principal application.Principal) ([]application.Booking, error) {
	return s.list, s.listErr
}

func (s *bookingServiceStub) UpdateBooking(ctx context.Context, principal application.Principal, bookingID string, input application.UpdateBookingInput) (application.Booking, error) {
	if s.updateErr != nil {
		return application.Booking{}, s.updateErr
	}
	return s.updated, nil
}

func (s *bookingServiceStub) DeleteBooking(ctx context.Context, principal application.Principal, bookingID string) error {
	return s.deleteErr
}

type availabilityStub struct {
	slots []application.Slot
	err   error
}

func (s *availabilityStub) ListSlots(ctx context.Context, date string) ([]application.Slot, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.slots, nil
}

type paymentServiceStub struct {
	intent     application.PaymentIntent
	intentErr  error
	booking    application.Booking
	confirmErr error
}

func (s *paymentServiceStub) CreateIntent(ctx context.Context, bookingID string, expectedAmountMinor *int64) (application.PaymentIntent, error) {
	if s.intentErr != nil {
		return application.PaymentIntent{}, s.intentErr
	}
	return s.intent, nil
}

func (s *paymentServiceStub) ConfirmPayment(ctx context.Context, bookingID, intentID string) (application.Booking, error) {
	if s.confirmErr != nil {
		return application.Booking{}, s.confirmErr
	}
	return s.booking, nil
}

func sampleBooking() application.Booking {
	return application.Booking{
		ID:                "booking-1",
		ServiceID:         "tarot",
		Date:              "2025-03-15",
		Time:              "10:00",
		FirstName:         "Marie",
		LastName:          "Dupont",
		Email:             "marie@example.com",
		Phone:             "+33612345678",
		BookingType:       application.BookingTypeGuest,
		Status:            application.BookingStatusPending,
		PaymentStatus:     application.PaymentStatusPending,
		Price:             decimal.RequireFromString("45.00"),
		ConfirmationToken: "token-abc",
	}
}

func newTestRouter(bookings *bookingServiceStub, validator TokenValidator) http.Handler {
	return NewRouter(RouterConfig{
		Bookings:  NewBookingHandler(bookings, nil),
		Slots:     NewSlotHandler(&availabilityStub{slots: []application.Slot{{Time: "09:00", Available: true}}}, nil),
		Payments:  NewPaymentHandler(&paymentServiceStub{}, nil),
		Validator: validator,
	})
}

func TestBookingHandlers(t *testing.T) {
	t.Run("create returns 201 with the booking payload", func(t *testing.T) {
		stub := &bookingServiceStub{createBooking: sampleBooking()}
		router := newTestRouter(stub, fakeTokenValidator{})

		body := `{"serviceId":"tarot","date":"2025-03-15","time":"10:00","firstName":"Marie","lastName":"Dupont","email":"marie@example.com","phone":"+33612345678"}`
		req := httptest.NewRequest(http.MethodPost, "/api/bookings", strings.NewReader(body))
		recorder := httptest.NewRecorder()

		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", recorder.Code, recorder.Body.String())
		}

		var resp struct {
			Booking struct {
				ID                string `json:"id"`
				Price             string `json:"price"`
				ConfirmationToken string `json:"confirmationToken"`
			} `json:"booking"`
		}
		if err := json.Unmarshal(recorder.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.Booking.ID != "booking-1" || resp.Booking.Price != "45.00" || resp.Booking.ConfirmationToken != "token-abc" {
			t.Fatalf("unexpected payload: %+v", resp.Booking)
		}
		if stub.createdInput.ServiceID != "tarot" {
			t.Fatalf("expected input forwarded, got %+v", stub.createdInput)
		}
	})

	t.Run("create returns 422 with localized field errors", func(t *testing.T) {
		router := newTestRouter(&bookingServiceStub{}, fakeTokenValidator{})

		req := httptest.NewRequest(http.MethodPost, "/api/bookings", strings.NewReader(`{}`))
		recorder := httptest.NewRecorder()

		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %d", recorder.Code)
		}
		var resp struct {
			Errors map[string]string `json:"errors"`
		}
		if err := json.Unmarshal(recorder.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.Errors["email"] != "L'adresse email est obligatoire." {
			t.Fatalf("expected localized email error, got %v", resp.Errors)
		}
	})

	t.Run("create maps a taken slot to 409", func(t *testing.T) {
		router := newTestRouter(&bookingServiceStub{createErr: application.ErrSlotTaken}, fakeTokenValidator{})

		body := `{"serviceId":"tarot","date":"2025-03-15","time":"10:00","firstName":"Marie","lastName":"Dupont","email":"marie@example.com","phone":"+33612345678"}`
		req := httptest.NewRequest(http.MethodPost, "/api/bookings", strings.NewReader(body))
		recorder := httptest.NewRecorder()

		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", recorder.Code)
		}
	})

	t.Run("get by reference is public", func(t *testing.T) {
		stub := &bookingServiceStub{details: application.BookingDetails{Booking: sampleBooking(), ServiceName: "Tirage de tarot"}}
		router := newTestRouter(stub, fakeTokenValidator{})

		req := httptest.NewRequest(http.MethodGet, "/api/bookings/booking-1", nil)
		recorder := httptest.NewRecorder()

		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", recorder.Code)
		}
		var resp struct {
			Booking struct {
				ServiceName string `json:"serviceName"`
			} `json:"booking"`
		}
		if err := json.Unmarshal(recorder.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.Booking.ServiceName != "Tirage de tarot" {
			t.Fatalf("expected joined service name, got %q", resp.Booking.ServiceName)
		}
	})

	t.Run("list requires a bearer token", func(t *testing.T) {
		router := newTestRouter(&bookingServiceStub{}, fakeTokenValidator{})

		req := httptest.NewRequest(http.MethodGet, "/api/bookings", nil)
		recorder := httptest.NewRecorder()

		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", recorder.Code)
		}
	})

	t.Run("list rejects non-admin principals", func(t *testing.T) {
		validator := fakeTokenValidator{principal: application.Principal{UserID: "u1", Role: application.RoleClient}}
		router := newTestRouter(&bookingServiceStub{}, validator)

		req := httptest.NewRequest(http.MethodGet, "/api/bookings", nil)
		req.Header.Set("Authorization", "Bearer client-token")
		recorder := httptest.NewRecorder()

		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", recorder.Code)
		}
	})

	t.Run("list returns bookings for administrators", func(t *testing.T) {
		validator := fakeTokenValidator{principal: application.Principal{UserID: "admin-1", Role: application.RoleAdmin}}
		router := newTestRouter(&bookingServiceStub{list: []application.Booking{sampleBooking()}}, validator)

		req := httptest.NewRequest(http.MethodGet, "/api/bookings", nil)
		req.Header.Set("Authorization", "Bearer admin-token")
		recorder := httptest.NewRecorder()

		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
		}
	})

	t.Run("update applies partial changes for administrators", func(t *testing.T) {
		validator := fakeTokenValidator{principal: application.Principal{UserID: "admin-1", Role: application.RoleAdmin}}
		updated := sampleBooking()
		updated.Status = application.BookingStatusConfirmed
		router := newTestRouter(&bookingServiceStub{updated: updated}, validator)

		req := httptest.NewRequest(http.MethodPut, "/api/bookings/id/booking-1", strings.NewReader(`{"status":"confirmed"}`))
		req.Header.Set("Authorization", "Bearer admin-token")
		recorder := httptest.NewRecorder()

		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
		}
		var resp struct {
			Booking struct {
				Status string `json:"status"`
			} `json:"booking"`
		}
		if err := json.Unmarshal(recorder.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.Booking.Status != "confirmed" {
			t.Fatalf("expected confirmed status, got %q", resp.Booking.Status)
		}
	})

	t.Run("delete maps a missing booking to 404", func(t *testing.T) {
		validator := fakeTokenValidator{principal: application.Principal{UserID: "admin-1", Role: application.RoleAdmin}}
		router := newTestRouter(&bookingServiceStub{deleteErr: application.ErrNotFound}, validator)

		req := httptest.NewRequest(http.MethodDelete, "/api/bookings/id/missing", nil)
		req.Header.Set("Authorization", "Bearer admin-token")
		recorder := httptest.NewRecorder()

		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", recorder.Code)
		}
	})

	t.Run("mutations on the public reference route are rejected", func(t *testing.T) {
		validator := fakeTokenValidator{principal: application.Principal{UserID: "admin-1", Role: application.RoleAdmin}}
		router := newTestRouter(&bookingServiceStub{}, validator)

		req := httptest.NewRequest(http.MethodDelete, "/api/bookings/booking-1", nil)
		req.Header.Set("Authorization", "Bearer admin-token")
		recorder := httptest.NewRecorder()

		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusMethodNotAllowed {
			t.Fatalf("expected 405, got %d", recorder.Code)
		}
	})
}

func TestSlotHandlers(t *testing.T) {
	t.Run("returns the grid for a date", func(t *testing.T) {
		router := newTestRouter(&bookingServiceStub{}, fakeTokenValidator{})

		req := httptest.NewRequest(http.MethodGet, "/api/calendar/slots?date=2025-03-15", nil)
		recorder := httptest.NewRecorder()

		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", recorder.Code)
		}
		var resp struct {
			Date  string `json:"date"`
			Slots []struct {
				Time      string `json:"time"`
				Available bool   `json:"available"`
			} `json:"slots"`
		}
		if err := json.Unmarshal(recorder.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.Date != "2025-03-15" || len(resp.Slots) != 1 {
			t.Fatalf("unexpected payload: %+v", resp)
		}
	})
}

func TestPaymentHandlers(t *testing.T) {
	t.Run("create-intent relays the client secret with the charge details", func(t *testing.T) {
		router := NewRouter(RouterConfig{
			Payments: NewPaymentHandler(&paymentServiceStub{
				intent: application.PaymentIntent{
					ID:           "pi_1",
					ClientSecret: "pi_1_secret",
					AmountMinor:  4500,
					Currency:     "eur",
					BookingID:    "booking-1",
				},
			}, nil),
			Validator: fakeTokenValidator{},
		})

		req := httptest.NewRequest(http.MethodPost, "/api/payments/create-intent", strings.NewReader(`{"bookingId":"booking-1"}`))
		recorder := httptest.NewRecorder()

		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", recorder.Code)
		}
		var resp struct {
			PaymentIntentID string `json:"paymentIntentId"`
			ClientSecret    string `json:"clientSecret"`
			Amount          int64  `json:"amount"`
			Currency        string `json:"currency"`
			BookingID       string `json:"bookingId"`
		}
		if err := json.Unmarshal(recorder.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.PaymentIntentID != "pi_1" || resp.ClientSecret != "pi_1_secret" {
			t.Fatalf("unexpected payload: %+v", resp)
		}
		if resp.Amount != 4500 || resp.Currency != "eur" || resp.BookingID != "booking-1" {
			t.Fatalf("expected charge details echoed, got %+v", resp)
		}
	})

	t.Run("confirm reports success with the updated booking", func(t *testing.T) {
		confirmed := sampleBooking()
		confirmed.Status = application.BookingStatusConfirmed
		confirmed.PaymentStatus = application.PaymentStatusPaid
		router := NewRouter(RouterConfig{
			Payments:  NewPaymentHandler(&paymentServiceStub{booking: confirmed}, nil),
			Validator: fakeTokenValidator{},
		})

		req := httptest.NewRequest(http.MethodPost, "/api/payments/confirm", strings.NewReader(`{"bookingId":"booking-1","paymentIntentId":"pi_1"}`))
		recorder := httptest.NewRecorder()

		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", recorder.Code)
		}
		var resp struct {
			Success bool `json:"success"`
			Booking struct {
				Status        string `json:"status"`
				PaymentStatus string `json:"paymentStatus"`
			} `json:"booking"`
		}
		if err := json.Unmarshal(recorder.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if !resp.Success || resp.Booking.Status != "confirmed" || resp.Booking.PaymentStatus != "paid" {
			t.Fatalf("unexpected payload: %+v", resp)
		}
	})

	t.Run("create-intent requires a booking id", func(t *testing.T) {
		router := NewRouter(RouterConfig{
			Payments:  NewPaymentHandler(&paymentServiceStub{}, nil),
			Validator: fakeTokenValidator{},
		})

		req := httptest.NewRequest(http.MethodPost, "/api/payments/create-intent", strings.NewReader(`{}`))
		recorder := httptest.NewRecorder()

		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %d", recorder.Code)
		}
	})

	t.Run("confirm maps an unpaid intent to 402", func(t *testing.T) {
		router := NewRouter(RouterConfig{
			Payments:  NewPaymentHandler(&paymentServiceStub{confirmErr: application.ErrPaymentNotConfirmed}, nil),
			Validator: fakeTokenValidator{},
		})

		req := httptest.NewRequest(http.MethodPost, "/api/payments/confirm", strings.NewReader(`{"bookingId":"booking-1","paymentIntentId":"pi_1"}`))
		recorder := httptest.NewRecorder()

		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusPaymentRequired {
			t.Fatalf("expected 402, got %d", recorder.Code)
		}
	})
}
