package enrollment

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"mockabis/internal/abis/models"
	"mockabis/pkg/platform/sentinel"
)

const schema = `
CREATE TABLE IF NOT EXISTS enrollments (
	reference_id TEXT PRIMARY KEY,
	record       JSONB NOT NULL,
	updated_at   TIMESTAMPTZ NOT NULL
)`

// PostgresStore persists enrollment records in PostgreSQL.
type PostgresStore struct {
	db    *sql.DB
	clock func() time.Time
}

// PostgresOption configures a PostgresStore instance.
type PostgresOption func(*PostgresStore)

// WithPostgresClock sets the clock used for updated_at.
func WithPostgresClock(clock func() time.Time) PostgresOption {
	return func(s *PostgresStore) {
		if clock != nil {
			s.clock = clock
		}
	}
}

func NewPostgres(db *sql.DB, opts ...PostgresOption) *PostgresStore {
	s := &PostgresStore{
		db:    db,
		clock: time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// EnsureSchema creates the enrollments table if it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create enrollments table: %w", err)
	}
	return nil
}

func (s *PostgresStore) Insert(ctx context.Context, record *models.EnrollmentRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal enrollment: %w", err)
	}
	query := `
		INSERT INTO enrollments (reference_id, record, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (reference_id) DO UPDATE SET
			record = EXCLUDED.record,
			updated_at = EXCLUDED.updated_at
	`
	if _, err := s.db.ExecContext(ctx, query, record.ReferenceID, payload, s.clock()); err != nil {
		return fmt.Errorf("insert enrollment: %w", err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, referenceID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM enrollments WHERE reference_id = $1`, referenceID); err != nil {
		return fmt.Errorf("delete enrollment: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, referenceID string) (*models.EnrollmentRecord, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx, `SELECT record FROM enrollments WHERE reference_id = $1`, referenceID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("enrollment %s: %w", referenceID, sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get enrollment: %w", err)
	}
	var record models.EnrollmentRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, fmt.Errorf("decode enrollment %s: %w", referenceID, err)
	}
	return &record, nil
}

func (s *PostgresStore) GetMany(ctx context.Context, referenceIDs []string) ([]*models.EnrollmentRecord, error) {
	if len(referenceIDs) == 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT record FROM enrollments WHERE reference_id = ANY($1) ORDER BY reference_id`,
		pq.Array(referenceIDs))
	if err != nil {
		return nil, fmt.Errorf("get enrollments: %w", err)
	}
	defer rows.Close()

	var out []*models.EnrollmentRecord
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan enrollment: %w", err)
		}
		var record models.EnrollmentRecord
		if err := json.Unmarshal(raw, &record); err != nil {
			return nil, fmt.Errorf("decode enrollment: %w", err)
		}
		out = append(out, &record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate enrollments: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) ReferenceIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT reference_id FROM enrollments ORDER BY reference_id`)
	if err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan reference id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reference ids: %w", err)
	}
	return ids, nil
}
