package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

// migrationStep is a single ordered schema change. Steps must stay idempotent:
// the version table guards re-execution, and additive column changes are
// additionally guarded by table inspection so a partially applied step can be
// replayed safely.
type migrationStep struct {
	version int
	name    string
	apply   func(ctx context.Context, tx *sql.Tx) error
}

var migrationSteps = []migrationStep{
	{version: 1, name: "create base tables", apply: createBaseTables},
	{version: 2, name: "add booking payment and visio columns", apply: addBookingPaymentColumns},
	{version: 3, name: "create slot uniqueness index", apply: createSlotIndex},
}

// Migrate brings the schema up to date. It is invoked once at process start
// and fails the startup when any step cannot be applied.
func Migrate(ctx context.Context, pool *ConnectionPool, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	if err := pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			CREATE TABLE IF NOT EXISTS schema_migrations (
				version INTEGER PRIMARY KEY,
				name TEXT NOT NULL,
				applied_at TEXT NOT NULL
			)
		`)
		return err
	}); err != nil {
		return fmt.Errorf("failed to initialize version table: %w", err)
	}

	current, err := currentVersion(ctx, pool)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	for _, step := range migrationSteps {
		if step.version <= current {
			continue
		}
		logger.InfoContext(ctx, "applying migration", "version", step.version, "name", step.name)
		if err := pool.WithTransaction(ctx, func(tx *sql.Tx) error {
			if err := step.apply(ctx, tx); err != nil {
				return err
			}
			_, err := tx.Exec(
				`INSERT INTO schema_migrations (version, name, applied_at) VALUES (?, ?, ?)`,
				step.version, step.name, time.Now().UTC().Format(time.RFC3339),
			)
			return err
		}); err != nil {
			return fmt.Errorf("migration %d (%s) failed: %w", step.version, step.name, err)
		}
	}

	return nil
}

func currentVersion(ctx context.Context, pool *ConnectionPool) (int, error) {
	var version sql.NullInt64
	err := pool.db.QueryRowContext(ctx, `SELECT MAX(version) FROM schema_migrations`).Scan(&version)
	if err != nil {
		return 0, err
	}
	if !version.Valid {
		return 0, nil
	}
	return int(version.Int64), nil
}

func createBaseTables(ctx context.Context, tx *sql.Tx) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS services (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			price TEXT NOT NULL,
			duration TEXT NOT NULL DEFAULT '',
			features TEXT NOT NULL DEFAULT '[]',
			active INTEGER NOT NULL DEFAULT 1,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS bookings (
			id TEXT PRIMARY KEY,
			service_id TEXT NOT NULL REFERENCES services(id),
			date TEXT NOT NULL,
			time TEXT NOT NULL,
			first_name TEXT NOT NULL,
			last_name TEXT NOT NULL,
			email TEXT NOT NULL,
			phone TEXT NOT NULL,
			address TEXT,
			message TEXT,
			booking_type TEXT NOT NULL DEFAULT 'guest',
			status TEXT NOT NULL DEFAULT 'pending',
			payment_status TEXT NOT NULL DEFAULT 'pending',
			price TEXT NOT NULL,
			confirmation_token TEXT NOT NULL UNIQUE,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'client',
			active INTEGER NOT NULL DEFAULT 1,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS blog_posts (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			slug TEXT NOT NULL UNIQUE,
			content TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'draft',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS contact_messages (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT NOT NULL,
			subject TEXT NOT NULL DEFAULT '',
			message TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'new',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
	}
	for _, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func addBookingPaymentColumns(ctx context.Context, tx *sql.Tx) error {
	if err := addColumnIfMissing(ctx, tx, "bookings", "payment_intent_id", "TEXT"); err != nil {
		return err
	}
	return addColumnIfMissing(ctx, tx, "bookings", "visio_link", "TEXT")
}

// createSlotIndex enforces one non-cancelled booking per (date, time) pair at
// the storage level so concurrent creates cannot both win.
func createSlotIndex(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
		CREATE UNIQUE INDEX IF NOT EXISTS idx_bookings_active_slot
		ON bookings(date, time) WHERE status != 'cancelled'
	`)
	return err
}

// addColumnIfMissing applies an additive column change only when the column
// is not already present.
func addColumnIfMissing(ctx context.Context, tx *sql.Tx, table, column, definition string) error {
	rows, err := tx.QueryContext(ctx, fmt.Sprintf(`PRAGMA table_info(%s)`, table))
	if err != nil {
		return err
	}
	defer rows.Close()

	exists := false
	for rows.Next() {
		var (
			cid        int
			name       string
			columnType string
			notNull    int
			dflt       sql.NullString
			pk         int
		)
		if err := rows.Scan(&cid, &name, &columnType, &notNull, &dflt, &pk); err != nil {
			return err
		}
		if name == column {
			exists = true
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if exists {
		return nil
	}

	_, err = tx.ExecContext(ctx, fmt.Sprintf(`ALTER TABLE %s ADD COLUMN %s %s`, table, column, definition))
	return err
}
