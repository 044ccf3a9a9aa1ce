package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/serenity-bookings/internal/persistence"
)

// ServiceRepository implements persistence.ServiceRepository using SQLite.
type ServiceRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewServiceRepository creates a new SQLite service repository.
func NewServiceRepository(pool *ConnectionPool) *ServiceRepository {
	return &ServiceRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

const serviceColumns = `id, name, description, price, duration, features, active, created_at, updated_at`

// CreateService inserts a new catalog entry.
func (r *ServiceRepository) CreateService(ctx context.Context, service persistence.Service) error {
	if service.ID == "" || service.Name == "" {
		return persistence.ErrConstraintViolation
	}

	features, err := json.Marshal(service.Features)
	if err != nil {
		return fmt.Errorf("failed to encode features: %w", err)
	}

	now := time.Now().UTC()
	service.CreatedAt = now
	service.UpdatedAt = now

	_, err = r.helper.Exec(ctx, `
		INSERT INTO services (`+serviceColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		service.ID,
		service.Name,
		service.Description,
		service.Price.String(),
		service.Duration,
		string(features),
		service.Active,
		service.CreatedAt.Format(time.RFC3339),
		service.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return r.mapServiceError(err)
	}
	return nil
}

// UpdateService rewrites an existing catalog entry.
func (r *ServiceRepository) UpdateService(ctx context.Context, service persistence.Service) error {
	if service.ID == "" {
		return persistence.ErrNotFound
	}

	features, err := json.Marshal(service.Features)
	if err != nil {
		return fmt.Errorf("failed to encode features: %w", err)
	}

	service.UpdatedAt = time.Now().UTC()

	result, err := r.helper.Exec(ctx, `
		UPDATE services
		SET name = ?, description = ?, price = ?, duration = ?, features = ?, active = ?, updated_at = ?
		WHERE id = ?
	`,
		service.Name,
		service.Description,
		service.Price.String(),
		service.Duration,
		string(features),
		service.Active,
		service.UpdatedAt.Format(time.RFC3339),
		service.ID,
	)
	if err != nil {
		return r.mapServiceError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// GetService retrieves a catalog entry by its slug id.
func (r *ServiceRepository) GetService(ctx context.Context, id string) (persistence.Service, error) {
	if id == "" {
		return persistence.Service{}, persistence.ErrNotFound
	}

	row := r.helper.QueryRow(ctx, `SELECT `+serviceColumns+` FROM services WHERE id = ?`, id)
	service, err := scanService(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return persistence.Service{}, persistence.ErrNotFound
		}
		return persistence.Service{}, r.mapper.MapError(err)
	}
	return service, nil
}

// ListServices returns catalog entries ordered by name. Inactive entries are
// excluded unless includeInactive is set.
func (r *ServiceRepository) ListServices(ctx context.Context, includeInactive bool) ([]persistence.Service, error) {
	query := `SELECT ` + serviceColumns + ` FROM services`
	if !includeInactive {
		query += ` WHERE active = 1`
	}
	query += ` ORDER BY name ASC, id ASC`

	rows, err := r.helper.Query(ctx, query)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var services []persistence.Service
	for rows.Next() {
		service, err := scanService(rows.Scan)
		if err != nil {
			return nil, r.mapper.MapError(err)
		}
		services = append(services, service)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return services, nil
}

// DeleteService removes a catalog entry unless bookings still reference it.
func (r *ServiceRepository) DeleteService(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}

	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		var referenced int
		err := r.helper.QueryRowTx(tx, `SELECT COUNT(*) FROM bookings WHERE service_id = ?`, id).Scan(&referenced)
		if err != nil {
			return r.mapper.MapError(err)
		}
		if referenced > 0 {
			return persistence.ErrForeignKeyViolation
		}

		result, err := r.helper.ExecTx(tx, `DELETE FROM services WHERE id = ?`, id)
		if err != nil {
			return r.mapServiceError(err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return persistence.ErrNotFound
		}
		return nil
	})
}

func scanService(scan scanFunc) (persistence.Service, error) {
	var (
		service              persistence.Service
		priceStr             string
		featuresJSON         string
		createdAt, updatedAt string
	)

	err := scan(
		&service.ID,
		&service.Name,
		&service.Description,
		&priceStr,
		&service.Duration,
		&featuresJSON,
		&service.Active,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return persistence.Service{}, err
	}

	if service.Price, err = decimal.NewFromString(priceStr); err != nil {
		return persistence.Service{}, fmt.Errorf("failed to parse price: %w", err)
	}
	if err = json.Unmarshal([]byte(featuresJSON), &service.Features); err != nil {
		return persistence.Service{}, fmt.Errorf("failed to decode features: %w", err)
	}
	if service.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return persistence.Service{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if service.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return persistence.Service{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return service, nil
}

// mapServiceError maps SQLite errors to persistence errors for catalog operations.
func (r *ServiceRepository) mapServiceError(err error) error {
	if err == nil {
		return nil
	}

	errStr := err.Error()

	if containsAny(errStr, []string{"UNIQUE constraint failed"}) {
		return persistence.ErrDuplicate
	}
	if containsAny(errStr, []string{"FOREIGN KEY constraint failed"}) {
		return persistence.ErrForeignKeyViolation
	}
	if containsAny(errStr, []string{"CHECK constraint failed"}) {
		return persistence.ErrConstraintViolation
	}

	return r.mapper.MapError(err)
}
