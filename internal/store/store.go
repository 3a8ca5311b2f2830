// Package store persists scraped profiles and operator view history, and
// reads operator sessions. The pipeline depends on the interfaces here;
// concrete implementations are backed by PostgreSQL and Redis.
package store

import (
	"context"
	"errors"
	"time"

	"salespilot/prospector-service/internal/model"
)

// ErrNoSession is returned when an operator has no stored session.
var ErrNoSession = errors.New("no session for operator")

// ProfileStore persists final scraped profiles and the append-only view
// history the dedup index is rebuilt from.
type ProfileStore interface {
	// AppendViewedBatch inserts one row per record with conflict-ignore
	// semantics on (operatorID, profileID). Returns the number of rows
	// actually inserted. A persistence error aborts the batch.
	AppendViewedBatch(ctx context.Context, records []model.ViewedProfileRecord) (int, error)

	// ListKnownIDs returns every profile ID the operator has ever been
	// shown, sorted ascending by string order.
	ListKnownIDs(ctx context.Context, operatorID string) ([]string, error)

	// UpsertProfile creates or replaces a scraped detail record, keyed by
	// profile URL.
	UpsertProfile(ctx context.Context, operatorID string, detail *model.ProfileDetail) error

	// PurgeViewedBefore deletes view-history rows older than cutoff.
	// Maintenance only; normal operation never deletes history.
	PurgeViewedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// SessionStore reads per-operator authenticated sessions. Sessions are owned
// by the credential service; the pipeline only consumes them.
type SessionStore interface {
	// GetSession returns the operator's session or ErrNoSession.
	// Expiry is checked by the caller via Session.Valid.
	GetSession(ctx context.Context, operatorID string) (*model.Session, error)

	// TouchSession records that the session was just used by a driven
	// browser operation.
	TouchSession(ctx context.Context, operatorID string, usedAt time.Time) error
}
