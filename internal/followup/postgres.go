package followup

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/daniel5812/brain-dump-server/internal/intent"
)

// Schema is the SQL DDL for the pending_followups table. Execute it via
// [PostgresStore.Migrate] or apply it manually during deployment.
const Schema = `
CREATE TABLE IF NOT EXISTS pending_followups (
    user_id        TEXT PRIMARY KEY,
    intent_type    TEXT NOT NULL,
    title          TEXT NOT NULL,
    missing        TEXT NOT NULL,
    date           TEXT NOT NULL DEFAULT '',
    start_hour     SMALLINT,
    start_minute   SMALLINT,
    end_hour       SMALLINT,
    end_minute     SMALLINT,
    raw_expression TEXT NOT NULL DEFAULT '',
    created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_pending_followups_created ON pending_followups(created_at);
`

// DB is the database interface used by [PostgresStore]. Both *pgxpool.Pool
// and *pgx.Conn satisfy this interface.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresStore is a [Store] backed by a PostgreSQL database, for deployments
// where pending conversations must survive a restart.
type PostgresStore struct {
	db  DB
	ttl time.Duration
}

// Compile-time interface check.
var _ Store = (*PostgresStore)(nil)

// NewPostgresStore creates a [PostgresStore] on the given connection or pool.
// Records older than ttl are treated as absent; a non-positive ttl disables
// expiry. The caller is responsible for calling [PostgresStore.Migrate] before
// issuing queries.
func NewPostgresStore(db DB, ttl time.Duration) *PostgresStore {
	return &PostgresStore{db: db, ttl: ttl}
}

// Migrate executes the [Schema] DDL against the database.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("followup: migrate: %w", err)
	}
	return nil
}

// Get implements [Store.Get].
func (s *PostgresStore) Get(ctx context.Context, userID string) (Pending, bool, error) {
	row := s.db.QueryRow(ctx, `
		SELECT intent_type, title, missing, date,
		       start_hour, start_minute, end_hour, end_minute,
		       raw_expression, created_at
		FROM pending_followups
		WHERE user_id = $1`, userID)

	var (
		p                   Pending
		intentType, missing string
		sh, sm, eh, em      *int16
	)
	err := row.Scan(&intentType, &p.Title, &missing, &p.Date,
		&sh, &sm, &eh, &em, &p.RawTimeExpression, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Pending{}, false, nil
	}
	if err != nil {
		return Pending{}, false, fmt.Errorf("followup: get pending: %w", err)
	}

	if s.ttl > 0 && time.Since(p.CreatedAt) > s.ttl {
		return Pending{}, false, nil
	}

	p.IntentType = intent.Hypothesis(intentType)
	p.Missing = intent.Missing(missing)
	if sh != nil && sm != nil {
		p.StartTime = &TimeOfDay{Hour: int(*sh), Minute: int(*sm)}
	}
	if eh != nil && em != nil {
		p.EndTime = &TimeOfDay{Hour: int(*eh), Minute: int(*em)}
	}
	return p, true, nil
}

// Set implements [Store.Set].
func (s *PostgresStore) Set(ctx context.Context, userID string, p Pending) error {
	var sh, sm, eh, em *int16
	if p.StartTime != nil {
		sh, sm = ptr16(p.StartTime.Hour), ptr16(p.StartTime.Minute)
	}
	if p.EndTime != nil {
		eh, em = ptr16(p.EndTime.Hour), ptr16(p.EndTime.Minute)
	}

	_, err := s.db.Exec(ctx, `
		INSERT INTO pending_followups
			(user_id, intent_type, title, missing, date,
			 start_hour, start_minute, end_hour, end_minute,
			 raw_expression, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (user_id) DO UPDATE SET
			intent_type = EXCLUDED.intent_type,
			title = EXCLUDED.title,
			missing = EXCLUDED.missing,
			date = EXCLUDED.date,
			start_hour = EXCLUDED.start_hour,
			start_minute = EXCLUDED.start_minute,
			end_hour = EXCLUDED.end_hour,
			end_minute = EXCLUDED.end_minute,
			raw_expression = EXCLUDED.raw_expression,
			created_at = EXCLUDED.created_at`,
		userID, string(p.IntentType), p.Title, string(p.Missing), p.Date,
		sh, sm, eh, em, p.RawTimeExpression, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("followup: set pending: %w", err)
	}
	return nil
}

// Delete implements [Store.Delete].
func (s *PostgresStore) Delete(ctx context.Context, userID string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM pending_followups WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("followup: delete pending: %w", err)
	}
	return nil
}

// Purge implements [Store.Purge].
func (s *PostgresStore) Purge(ctx context.Context) (int, error) {
	if s.ttl <= 0 {
		return 0, nil
	}
	tag, err := s.db.Exec(ctx,
		`DELETE FROM pending_followups WHERE created_at < $1`,
		time.Now().Add(-s.ttl))
	if err != nil {
		return 0, fmt.Errorf("followup: purge pending: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func ptr16(v int) *int16 {
	i := int16(v)
	return &i
}
