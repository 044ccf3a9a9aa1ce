package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/serenity-bookings/internal/application"
)

type catalogService interface {
	CreateService(ctx context.Context, principal application.Principal, id string, input application.ServiceInput) (application.Service, error)
	UpdateService(ctx context.Context, principal application.Principal, id string, input application.ServiceInput) (application.Service, error)
	DeleteService(ctx context.Context, principal application.Principal, id string) error
	GetService(ctx context.Context, id string) (application.Service, error)
	ListServices(ctx context.Context, includeInactive bool) ([]application.Service, error)
}

// ServiceHandler manages the service catalog.
type ServiceHandler struct {
	service   catalogService
	responder responder
	logger    *slog.Logger
}

// NewServiceHandler constructs a catalog handler.
func NewServiceHandler(service catalogService, logger *slog.Logger) *ServiceHandler {
	base := defaultLogger(logger)
	return &ServiceHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *ServiceHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "ServiceHandler", operation, attrs...)
}

// List handles GET /api/services. Deactivated entries are only included for
// administrators asking for them.
func (h *ServiceHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	includeInactive := r.URL.Query().Get("includeInactive") == "true" && principal.IsAdmin()

	logger := h.log(r.Context(), "List", "include_inactive", includeInactive)

	services, err := h.service.ListServices(r.Context(), includeInactive)
	if err != nil {
		logger.ErrorContext(r.Context(), "service listing failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(services)).InfoContext(r.Context(), "services listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listServicesResponse{Services: toServiceDTOs(services)})
}

// Get handles GET /api/services/{id}.
func (h *ServiceHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := ServiceIDFromContext(r.Context())
	if !ok || strings.TrimSpace(id) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidServiceID)
		return
	}

	service, err := h.service.GetService(r.Context(), id)
	if err != nil {
		h.log(r.Context(), "Get", "service_id", id).ErrorContext(r.Context(), "service lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, serviceResponse{Service: toServiceDTO(service)})
}

// Create handles POST /api/services.
func (h *ServiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req serviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "principal_id", principal.UserID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode service request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	input, err := req.toInput()
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger := h.log(r.Context(), "Create", "principal_id", principal.UserID, "service_id", req.ID)

	service, err := h.service.CreateService(r.Context(), principal, req.ID, input)
	if err != nil {
		logger.ErrorContext(r.Context(), "service creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "service created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, serviceResponse{Service: toServiceDTO(service)})
}

// Update handles PUT /api/services/{id}.
func (h *ServiceHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := ServiceIDFromContext(r.Context())
	if !ok || strings.TrimSpace(id) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidServiceID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req serviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Update", "principal_id", principal.UserID, "service_id", id, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode service update", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	input, err := req.toInput()
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger := h.log(r.Context(), "Update", "principal_id", principal.UserID, "service_id", id)

	service, err := h.service.UpdateService(r.Context(), principal, id, input)
	if err != nil {
		logger.ErrorContext(r.Context(), "service update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "service updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, serviceResponse{Service: toServiceDTO(service)})
}

// Delete handles DELETE /api/services/{id}.
func (h *ServiceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := ServiceIDFromContext(r.Context())
	if !ok || strings.TrimSpace(id) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidServiceID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Delete", "principal_id", principal.UserID, "service_id", id)

	if err := h.service.DeleteService(r.Context(), principal, id); err != nil {
		logger.ErrorContext(r.Context(), "service delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "service deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

type serviceRequest struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       string   `json:"price"`
	Duration    string   `json:"duration"`
	Features    []string `json:"features"`
	Active      *bool    `json:"active"`
}

func (r serviceRequest) toInput() (application.ServiceInput, error) {
	price := decimal.Zero
	if strings.TrimSpace(r.Price) != "" {
		parsed, err := decimal.NewFromString(strings.TrimSpace(r.Price))
		if err != nil {
			vErr := &application.ValidationError{}
			vErr.Add("price", "price must not be negative")
			return application.ServiceInput{}, vErr
		}
		price = parsed
	}

	active := true
	if r.Active != nil {
		active = *r.Active
	}

	return application.ServiceInput{
		Name:        strings.TrimSpace(r.Name),
		Description: strings.TrimSpace(r.Description),
		Price:       price,
		Duration:    strings.TrimSpace(r.Duration),
		Features:    r.Features,
		Active:      active,
	}, nil
}

type serviceResponse struct {
	Service serviceDTO `json:"service"`
}

type listServicesResponse struct {
	Services []serviceDTO `json:"services"`
}

type serviceDTO struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       string   `json:"price"`
	Duration    string   `json:"duration"`
	Features    []string `json:"features"`
	Active      bool     `json:"active"`
	CreatedAt   string   `json:"createdAt"`
	UpdatedAt   string   `json:"updatedAt"`
}

func toServiceDTO(service application.Service) serviceDTO {
	return serviceDTO{
		ID:          service.ID,
		Name:        service.Name,
		Description: service.Description,
		Price:       service.Price.StringFixed(2),
		Duration:    service.Duration,
		Features:    service.Features,
		Active:      service.Active,
		CreatedAt:   service.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   service.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func toServiceDTOs(services []application.Service) []serviceDTO {
	if len(services) == 0 {
		return nil
	}
	out := make([]serviceDTO, 0, len(services))
	for _, service := range services {
		out = append(out, toServiceDTO(service))
	}
	return out
}
