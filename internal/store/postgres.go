package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"salespilot/prospector-service/internal/model"
)

// PostgresProfileStore implements ProfileStore on a pgx connection pool.
type PostgresProfileStore struct {
	pool *pgxpool.Pool
}

// NewPostgresProfileStore returns a ProfileStore backed by pool.
func NewPostgresProfileStore(pool *pgxpool.Pool) *PostgresProfileStore {
	return &PostgresProfileStore{pool: pool}
}

// EnsureSchema creates the tables the store needs if they do not exist.
func (s *PostgresProfileStore) EnsureSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS viewed_profiles (
		operator_id     TEXT        NOT NULL,
		profile_id      TEXT        NOT NULL,
		profile_url     TEXT        NOT NULL,
		name            TEXT        NOT NULL DEFAULT '',
		headline        TEXT        NOT NULL DEFAULT '',
		location        TEXT        NOT NULL DEFAULT '',
		avatar_url      TEXT        NOT NULL DEFAULT '',
		search_criteria JSONB       NOT NULL DEFAULT '{}',
		search_key      TEXT        NOT NULL DEFAULT '',
		viewed_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (operator_id, profile_id)
	);

	CREATE TABLE IF NOT EXISTS profile_details (
		profile_url TEXT        PRIMARY KEY,
		operator_id TEXT        NOT NULL,
		data        JSONB       NOT NULL,
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_viewed_profiles_viewed_at
		ON viewed_profiles (viewed_at);`

	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// AppendViewedBatch inserts records one by one, skipping rows whose
// (operator_id, profile_id) pair already exists. The first persistence error
// aborts the batch; rows inserted before it stay committed.
func (s *PostgresProfileStore) AppendViewedBatch(ctx context.Context, records []model.ViewedProfileRecord) (int, error) {
	inserted := 0
	for _, r := range records {
		criteria, err := json.Marshal(r.Criteria)
		if err != nil {
			return inserted, fmt.Errorf("marshal criteria for %s: %w", r.ProfileID, err)
		}

		tag, err := s.pool.Exec(ctx,
			`INSERT INTO viewed_profiles
			   (operator_id, profile_id, profile_url, name, headline, location,
			    avatar_url, search_criteria, search_key, viewed_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8::jsonb, $9, $10)
			 ON CONFLICT (operator_id, profile_id) DO NOTHING`,
			r.OperatorID, r.ProfileID, r.ProfileURL, r.Name, r.Headline,
			r.Location, r.AvatarURL, string(criteria), r.SearchKey, r.ViewedAt,
		)
		if err != nil {
			return inserted, fmt.Errorf("insert viewed profile %s: %w", r.ProfileID, err)
		}
		if tag.RowsAffected() > 0 {
			inserted++
		}
	}
	return inserted, nil
}

// ListKnownIDs returns the operator's full view history, sorted ascending so
// callers can binary-search it.
func (s *PostgresProfileStore) ListKnownIDs(ctx context.Context, operatorID string) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT profile_id FROM viewed_profiles
		 WHERE operator_id = $1
		 ORDER BY profile_id ASC`,
		operatorID,
	)
	if err != nil {
		return nil, fmt.Errorf("query known ids: %w", err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan known id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// UpsertProfile stores the detail record as JSONB keyed by profile URL.
func (s *PostgresProfileStore) UpsertProfile(ctx context.Context, operatorID string, detail *model.ProfileDetail) error {
	data, err := json.Marshal(detail)
	if err != nil {
		return fmt.Errorf("marshal profile detail: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO profile_details (profile_url, operator_id, data, updated_at)
		 VALUES ($1, $2, $3::jsonb, NOW())
		 ON CONFLICT (profile_url) DO UPDATE
		 SET operator_id = EXCLUDED.operator_id,
		     data        = EXCLUDED.data,
		     updated_at  = NOW()`,
		detail.ProfileURL, operatorID, string(data),
	)
	if err != nil {
		return fmt.Errorf("upsert profile %s: %w", detail.ProfileURL, err)
	}
	return nil
}

// PurgeViewedBefore deletes history rows older than cutoff and returns how
// many were removed.
func (s *PostgresProfileStore) PurgeViewedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM viewed_profiles WHERE viewed_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge viewed profiles: %w", err)
	}
	return tag.RowsAffected(), nil
}
