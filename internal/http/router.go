package http

import (
	"net/http"
	"strings"
)

// RouterConfig wires handlers and cross-cutting middleware into the API router.
type RouterConfig struct {
	Auth     *AuthHandler
	Slots    *SlotHandler
	Services *ServiceHandler
	Bookings *BookingHandler
	Payments *PaymentHandler
	Emails   *EmailHandler

	// Validator backs the admin guards and the optional principal
	// attachment on public routes.
	Validator TokenValidator

	Middleware []func(http.Handler) http.Handler
}

// NewRouter assembles the API routes around a stdlib mux.
func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	admin := func(h http.HandlerFunc) http.Handler {
		return RequireAdmin(cfg.Validator, nil)(h)
	}
	authed := func(h http.HandlerFunc) http.Handler {
		return RequireAuth(cfg.Validator, nil)(h)
	}

	if cfg.Auth != nil {
		mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Auth.Login(w, r)
		})
	}

	if cfg.Slots != nil {
		mux.HandleFunc("/api/calendar/slots", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Slots.List(w, r)
		})
	}

	if cfg.Services != nil {
		mux.HandleFunc("/api/services", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Services.List(w, r)
			case http.MethodPost:
				admin(cfg.Services.Create).ServeHTTP(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})
		mux.HandleFunc("/api/services/", func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimPrefix(r.URL.Path, "/api/services/")
			if id == "" || strings.Contains(id, "/") {
				http.NotFound(w, r)
				return
			}
			ctx := ContextWithServiceID(r.Context(), id)
			r = r.WithContext(ctx)
			switch r.Method {
			case http.MethodGet:
				cfg.Services.Get(w, r)
			case http.MethodPut:
				admin(cfg.Services.Update).ServeHTTP(w, r)
			case http.MethodDelete:
				admin(cfg.Services.Delete).ServeHTTP(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPut, http.MethodDelete)
			}
		})
	}

	if cfg.Bookings != nil {
		mux.HandleFunc("/api/bookings", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				admin(cfg.Bookings.List).ServeHTTP(w, r)
			case http.MethodPost:
				cfg.Bookings.Create(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})
		mux.HandleFunc("/api/bookings/me", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			authed(cfg.Bookings.ListMine).ServeHTTP(w, r)
		})
		mux.HandleFunc("/api/bookings/token/", func(w http.ResponseWriter, r *http.Request) {
			token := strings.TrimPrefix(r.URL.Path, "/api/bookings/token/")
			if token == "" {
				http.NotFound(w, r)
				return
			}
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			r = r.WithContext(ContextWithBookingRef(r.Context(), token))
			cfg.Bookings.GetByToken(w, r)
		})
		mux.HandleFunc("/api/bookings/id/", func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimPrefix(r.URL.Path, "/api/bookings/id/")
			if id == "" || strings.Contains(id, "/") {
				http.NotFound(w, r)
				return
			}
			r = r.WithContext(ContextWithBookingRef(r.Context(), id))
			switch r.Method {
			case http.MethodPut:
				admin(cfg.Bookings.Update).ServeHTTP(w, r)
			case http.MethodDelete:
				admin(cfg.Bookings.Delete).ServeHTTP(w, r)
			default:
				methodNotAllowed(w, http.MethodPut, http.MethodDelete)
			}
		})
		mux.HandleFunc("/api/bookings/", func(w http.ResponseWriter, r *http.Request) {
			ref := strings.TrimPrefix(r.URL.Path, "/api/bookings/")
			if ref == "" || strings.Contains(ref, "/") {
				http.NotFound(w, r)
				return
			}
			r = r.WithContext(ContextWithBookingRef(r.Context(), ref))
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Bookings.Get(w, r)
		})
	}

	if cfg.Payments != nil {
		mux.HandleFunc("/api/payments/create-intent", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Payments.CreateIntent(w, r)
		})
		mux.HandleFunc("/api/payments/confirm", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Payments.Confirm(w, r)
		})
	}

	if cfg.Emails != nil {
		mux.HandleFunc("/api/emails/confirmation", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Emails.SendConfirmation(w, r)
		})
	}

	var handler http.Handler = mux
	if cfg.Validator != nil {
		handler = AttachPrincipal(cfg.Validator)(handler)
	}
	if len(cfg.Middleware) > 0 {
		for i := len(cfg.Middleware) - 1; i >= 0; i-- {
			if cfg.Middleware[i] != nil {
				handler = cfg.Middleware[i](handler)
			}
		}
	}

	return handler
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}
