package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/serenity-bookings/internal/persistence"
)

// BookingRepository implements persistence.BookingRepository using SQLite.
type BookingRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewBookingRepository creates a new SQLite booking repository.
func NewBookingRepository(pool *ConnectionPool) *BookingRepository {
	return &BookingRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

const bookingColumns = `id, service_id, date, time, first_name, last_name, email, phone,
	address, message, booking_type, status, payment_status, price,
	confirmation_token, payment_intent_id, visio_link, created_at, updated_at`

// CreateBooking inserts a booking. The existence check and the insert run in
// one transaction, and the partial unique index on (date, time) backstops
// concurrent writers that race past the check.
func (r *BookingRepository) CreateBooking(ctx context.Context, booking persistence.Booking) error {
	if booking.ID == "" || booking.ConfirmationToken == "" {
		return persistence.ErrConstraintViolation
	}

	now := time.Now().UTC()
	booking.CreatedAt = now
	booking.UpdatedAt = now

	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		var occupied int
		err := r.helper.QueryRowTx(tx,
			`SELECT COUNT(*) FROM bookings WHERE date = ? AND time = ? AND status != 'cancelled'`,
			booking.Date, booking.Time,
		).Scan(&occupied)
		if err != nil {
			return r.mapper.MapError(err)
		}
		if occupied > 0 {
			return persistence.ErrDuplicate
		}

		_, err = r.helper.ExecTx(tx, `
			INSERT INTO bookings (`+bookingColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			booking.ID,
			booking.ServiceID,
			booking.Date,
			booking.Time,
			booking.FirstName,
			booking.LastName,
			booking.Email,
			booking.Phone,
			booking.Address,
			booking.Message,
			booking.BookingType,
			booking.Status,
			booking.PaymentStatus,
			booking.Price.String(),
			booking.ConfirmationToken,
			booking.PaymentIntentID,
			booking.VisioLink,
			booking.CreatedAt.Format(time.RFC3339),
			booking.UpdatedAt.Format(time.RFC3339),
		)
		if err != nil {
			return r.mapBookingError(err)
		}
		return nil
	})
}

// UpdateBooking rewrites the mutable booking columns.
func (r *BookingRepository) UpdateBooking(ctx context.Context, booking persistence.Booking) error {
	if booking.ID == "" {
		return persistence.ErrNotFound
	}

	booking.UpdatedAt = time.Now().UTC()

	result, err := r.helper.Exec(ctx, `
		UPDATE bookings
		SET status = ?, payment_status = ?, payment_intent_id = ?, visio_link = ?, updated_at = ?
		WHERE id = ?
	`,
		booking.Status,
		booking.PaymentStatus,
		booking.PaymentIntentID,
		booking.VisioLink,
		booking.UpdatedAt.Format(time.RFC3339),
		booking.ID,
	)
	if err != nil {
		return r.mapBookingError(err)
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

// GetBooking retrieves a booking by ID.
func (r *BookingRepository) GetBooking(ctx context.Context, id string) (persistence.Booking, error) {
	if id == "" {
		return persistence.Booking{}, persistence.ErrNotFound
	}
	return r.getBookingWhere(ctx, `id = ?`, id)
}

// GetBookingByToken retrieves a booking by its confirmation token.
func (r *BookingRepository) GetBookingByToken(ctx context.Context, token string) (persistence.Booking, error) {
	if token == "" {
		return persistence.Booking{}, persistence.ErrNotFound
	}
	return r.getBookingWhere(ctx, `confirmation_token = ?`, token)
}

// GetBookingByRef matches either the booking id or the confirmation token.
func (r *BookingRepository) GetBookingByRef(ctx context.Context, ref string) (persistence.Booking, error) {
	if ref == "" {
		return persistence.Booking{}, persistence.ErrNotFound
	}
	return r.getBookingWhere(ctx, `id = ? OR confirmation_token = ?`, ref, ref)
}

func (r *BookingRepository) getBookingWhere(ctx context.Context, where string, args ...interface{}) (persistence.Booking, error) {
	row := r.helper.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE `+where, args...)
	booking, err := scanBooking(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return persistence.Booking{}, persistence.ErrNotFound
		}
		return persistence.Booking{}, r.mapper.MapError(err)
	}
	return booking, nil
}

// ListBookings returns all bookings ordered by creation timestamp, newest first.
func (r *BookingRepository) ListBookings(ctx context.Context) ([]persistence.Booking, error) {
	return r.listBookingsWhere(ctx, `1 = 1 ORDER BY created_at DESC, id ASC`)
}

// ListBookingsByEmail returns bookings whose stored email matches, newest first.
// The email column is free text, not a user foreign key.
func (r *BookingRepository) ListBookingsByEmail(ctx context.Context, email string) ([]persistence.Booking, error) {
	return r.listBookingsWhere(ctx, `email = ? COLLATE NOCASE ORDER BY created_at DESC, id ASC`, email)
}

func (r *BookingRepository) listBookingsWhere(ctx context.Context, where string, args ...interface{}) ([]persistence.Booking, error) {
	rows, err := r.helper.Query(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE `+where, args...)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var bookings []persistence.Booking
	for rows.Next() {
		booking, err := scanBooking(rows.Scan)
		if err != nil {
			return nil, r.mapper.MapError(err)
		}
		bookings = append(bookings, booking)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return bookings, nil
}

// ListActiveBookingTimes returns the slot times taken on a date by
// non-cancelled bookings.
func (r *BookingRepository) ListActiveBookingTimes(ctx context.Context, date string) ([]string, error) {
	rows, err := r.helper.Query(ctx,
		`SELECT time FROM bookings WHERE date = ? AND status != 'cancelled' ORDER BY time ASC`,
		date,
	)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var times []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, r.mapper.MapError(err)
		}
		times = append(times, t)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return times, nil
}

// CountBookingsForService counts bookings referencing a catalog entry.
func (r *BookingRepository) CountBookingsForService(ctx context.Context, serviceID string) (int, error) {
	var count int
	err := r.helper.QueryRow(ctx, `SELECT COUNT(*) FROM bookings WHERE service_id = ?`, serviceID).Scan(&count)
	if err != nil {
		return 0, r.mapper.MapError(err)
	}
	return count, nil
}

// DeleteBooking removes a booking by ID.
func (r *BookingRepository) DeleteBooking(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}

	result, err := r.helper.Exec(ctx, `DELETE FROM bookings WHERE id = ?`, id)
	if err != nil {
		return r.mapBookingError(err)
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

type scanFunc func(dest ...interface{}) error

func scanBooking(scan scanFunc) (persistence.Booking, error) {
	var (
		booking                persistence.Booking
		priceStr               string
		createdAt, updatedAt   string
		address, message       sql.NullString
		intentID, visio        sql.NullString
	)

	err := scan(
		&booking.ID,
		&booking.ServiceID,
		&booking.Date,
		&booking.Time,
		&booking.FirstName,
		&booking.LastName,
		&booking.Email,
		&booking.Phone,
		&address,
		&message,
		&booking.BookingType,
		&booking.Status,
		&booking.PaymentStatus,
		&priceStr,
		&booking.ConfirmationToken,
		&intentID,
		&visio,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return persistence.Booking{}, err
	}

	booking.Address = nullableString(address)
	booking.Message = nullableString(message)
	booking.PaymentIntentID = nullableString(intentID)
	booking.VisioLink = nullableString(visio)

	if booking.Price, err = decimal.NewFromString(priceStr); err != nil {
		return persistence.Booking{}, fmt.Errorf("failed to parse price: %w", err)
	}
	if booking.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return persistence.Booking{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if booking.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return persistence.Booking{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return booking, nil
}

func nullableString(value sql.NullString) *string {
	if !value.Valid {
		return nil
	}
	v := value.String
	return &v
}

// mapBookingError maps SQLite errors to persistence errors for booking operations.
func (r *BookingRepository) mapBookingError(err error) error {
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
