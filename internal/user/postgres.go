package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Schema is the SQL DDL for the users table. Execute it via
// [PostgresStore.Migrate] or apply it manually during deployment.
const Schema = `
CREATE TABLE IF NOT EXISTS users (
    id                    TEXT PRIMARY KEY,
    phone                 TEXT NOT NULL,
    name                  TEXT NOT NULL DEFAULT '',
    green_api_instance_id TEXT NOT NULL DEFAULT '',
    green_api_token       TEXT NOT NULL DEFAULT '',
    green_api_url         TEXT NOT NULL DEFAULT '',
    todoist_token         TEXT NOT NULL DEFAULT '',
    calendar_id           TEXT NOT NULL DEFAULT '',
    hmac_secret           TEXT NOT NULL DEFAULT '',
    use_system_defaults   BOOLEAN NOT NULL DEFAULT false,
    onboarding_complete   BOOLEAN NOT NULL DEFAULT false,
    created_at            TIMESTAMPTZ NOT NULL DEFAULT now(),
    last_active_at        TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS idx_users_phone ON users(phone);
`

// DB is the database interface used by [PostgresStore]. Both *pgxpool.Pool
// and *pgx.Conn satisfy this interface.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresStore is a [Store] backed by a PostgreSQL database.
type PostgresStore struct {
	db DB
}

// Compile-time interface check.
var _ Store = (*PostgresStore)(nil)

// NewPostgresStore creates a [PostgresStore] on the given connection or pool.
// The caller is responsible for calling [PostgresStore.Migrate] before
// issuing queries.
func NewPostgresStore(db DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate executes the [Schema] DDL against the database.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("user: migrate: %w", err)
	}
	return nil
}

const userColumns = `id, phone, name, green_api_instance_id, green_api_token,
	green_api_url, todoist_token, calendar_id, hmac_secret,
	use_system_defaults, onboarding_complete, created_at, last_active_at`

// Get implements [Store.Get].
func (s *PostgresStore) Get(ctx context.Context, id string) (Config, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)

	c, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Config{}, ErrNotFound
	}
	if err != nil {
		return Config{}, fmt.Errorf("user: get: %w", err)
	}
	return c, nil
}

// Upsert implements [Store.Upsert].
func (s *PostgresStore) Upsert(ctx context.Context, c Config) error {
	var lastActive *time.Time
	if !c.LastActiveAt.IsZero() {
		lastActive = &c.LastActiveAt
	}
	createdAt := c.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := s.db.Exec(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO UPDATE SET
			phone = EXCLUDED.phone,
			name = EXCLUDED.name,
			green_api_instance_id = EXCLUDED.green_api_instance_id,
			green_api_token = EXCLUDED.green_api_token,
			green_api_url = EXCLUDED.green_api_url,
			todoist_token = EXCLUDED.todoist_token,
			calendar_id = EXCLUDED.calendar_id,
			hmac_secret = EXCLUDED.hmac_secret,
			use_system_defaults = EXCLUDED.use_system_defaults,
			onboarding_complete = EXCLUDED.onboarding_complete,
			last_active_at = EXCLUDED.last_active_at`,
		c.ID, c.Phone, c.Name, c.GreenAPIInstanceID, c.GreenAPIToken,
		c.GreenAPIURL, c.TodoistToken, c.CalendarID, c.HMACSecret,
		c.UseSystemDefaults, c.OnboardingComplete, createdAt, lastActive)
	if err != nil {
		return fmt.Errorf("user: upsert: %w", err)
	}
	return nil
}

// Touch implements [Store.Touch].
func (s *PostgresStore) Touch(ctx context.Context, id string, at time.Time) error {
	_, err := s.db.Exec(ctx,
		`UPDATE users SET last_active_at = $2 WHERE id = $1`, id, at)
	if err != nil {
		return fmt.Errorf("user: touch: %w", err)
	}
	return nil
}

// List implements [Store.List].
func (s *PostgresStore) List(ctx context.Context) ([]Config, error) {
	rows, err := s.db.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("user: list: %w", err)
	}
	defer rows.Close()

	var out []Config
	for rows.Next() {
		c, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("user: list scan: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("user: list rows: %w", err)
	}
	return out, nil
}

func scanUser(row pgx.Row) (Config, error) {
	var (
		c          Config
		lastActive *time.Time
	)
	err := row.Scan(&c.ID, &c.Phone, &c.Name, &c.GreenAPIInstanceID,
		&c.GreenAPIToken, &c.GreenAPIURL, &c.TodoistToken, &c.CalendarID,
		&c.HMACSecret, &c.UseSystemDefaults, &c.OnboardingComplete,
		&c.CreatedAt, &lastActive)
	if err != nil {
		return Config{}, err
	}
	if lastActive != nil {
		c.LastActiveAt = *lastActive
	}
	return c, nil
}
