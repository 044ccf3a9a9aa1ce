package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/serenity-bookings/internal/persistence"
)

// ServiceCatalogRepository captures the persistence operations the catalog needs.
type ServiceCatalogRepository interface {
	CreateService(ctx context.Context, service Service) (Service, error)
	UpdateService(ctx context.Context, service Service) (Service, error)
	GetService(ctx context.Context, id string) (Service, error)
	ListServices(ctx context.Context, includeInactive bool) ([]Service, error)
	DeleteService(ctx context.Context, id string) error
}

// CatalogService orchestrates validation, authorization, and persistence for
// the service catalog.
type CatalogService struct {
	services ServiceCatalogRepository
	now      func() time.Time
	logger   *slog.Logger
}

// NewCatalogService constructs a catalog service with the provided dependencies.
func NewCatalogService(services ServiceCatalogRepository, now func() time.Time, logger *slog.Logger) *CatalogService {
	if now == nil {
		now = time.Now
	}
	return &CatalogService{services: services, now: now, logger: defaultLogger(logger)}
}

func (s *CatalogService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "CatalogService", operation, attrs...)
}

// CreateService persists a new catalog entry for administrators. The id is a
// human-chosen slug, not generated.
func (s *CatalogService) CreateService(ctx context.Context, principal Principal, id string, input ServiceInput) (service Service, err error) {
	if s == nil {
		err = fmt.Errorf("CatalogService is nil")
		return
	}

	logger := s.loggerWith(ctx, "CreateService", "principal_id", principal.UserID, "service_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create service", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "service created")
	}()

	if !principal.IsAdmin() {
		err = ErrUnauthorized
		return
	}

	vErr := validateServiceInput(id, input)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	now := s.now()
	service = Service{
		ID:          strings.TrimSpace(id),
		Name:        strings.TrimSpace(input.Name),
		Description: strings.TrimSpace(input.Description),
		Price:       input.Price,
		Duration:    strings.TrimSpace(input.Duration),
		Features:    append([]string(nil), input.Features...),
		Active:      input.Active,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	service, err = s.services.CreateService(ctx, service)
	if err != nil {
		err = mapCatalogRepoError(err)
		return
	}
	return
}

// UpdateService rewrites an existing catalog entry for administrators.
func (s *CatalogService) UpdateService(ctx context.Context, principal Principal, id string, input ServiceInput) (service Service, err error) {
	if s == nil {
		err = fmt.Errorf("CatalogService is nil")
		return
	}

	logger := s.loggerWith(ctx, "UpdateService", "principal_id", principal.UserID, "service_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update service", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "service updated")
	}()

	if !principal.IsAdmin() {
		err = ErrUnauthorized
		return
	}

	var existing Service
	existing, err = s.services.GetService(ctx, id)
	if err != nil {
		err = mapCatalogRepoError(err)
		return
	}

	vErr := validateServiceInput(id, input)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	updated := existing
	updated.Name = strings.TrimSpace(input.Name)
	updated.Description = strings.TrimSpace(input.Description)
	updated.Price = input.Price
	updated.Duration = strings.TrimSpace(input.Duration)
	updated.Features = append([]string(nil), input.Features...)
	updated.Active = input.Active
	updated.UpdatedAt = s.now()

	service, err = s.services.UpdateService(ctx, updated)
	if err != nil {
		err = mapCatalogRepoError(err)
		return
	}
	return
}

// DeleteService removes a catalog entry. Entries referenced by bookings are
// protected; deactivate them through the active flag instead.
func (s *CatalogService) DeleteService(ctx context.Context, principal Principal, id string) error {
	if s == nil {
		return fmt.Errorf("CatalogService is nil")
	}
	if !principal.IsAdmin() {
		return ErrUnauthorized
	}

	logger := s.loggerWith(ctx, "DeleteService", "principal_id", principal.UserID, "service_id", id)

	if err := s.services.DeleteService(ctx, id); err != nil {
		err = mapCatalogRepoError(err)
		logger.ErrorContext(ctx, "failed to delete service", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	logger.InfoContext(ctx, "service deleted")
	return nil
}

// GetService returns one catalog entry, active or not.
func (s *CatalogService) GetService(ctx context.Context, id string) (Service, error) {
	if s == nil {
		return Service{}, fmt.Errorf("CatalogService is nil")
	}
	service, err := s.services.GetService(ctx, id)
	if err != nil {
		return Service{}, mapCatalogRepoError(err)
	}
	return service, nil
}

// ListServices returns the public catalog. Administrators may include
// deactivated entries.
func (s *CatalogService) ListServices(ctx context.Context, includeInactive bool) ([]Service, error) {
	if s == nil {
		return nil, fmt.Errorf("CatalogService is nil")
	}
	return s.services.ListServices(ctx, includeInactive)
}

func validateServiceInput(id string, input ServiceInput) *ValidationError {
	vErr := &ValidationError{}

	if strings.TrimSpace(id) == "" {
		vErr.Add("id", "id is required")
	}
	if strings.TrimSpace(input.Name) == "" {
		vErr.Add("name", "name is required")
	}
	if input.Price.IsNegative() {
		vErr.Add("price", "price must not be negative")
	}

	return vErr
}

func mapCatalogRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrDuplicate) {
		return ErrAlreadyExists
	}
	if errors.Is(err, persistence.ErrForeignKeyViolation) {
		return ErrServiceInUse
	}
	return err
}
