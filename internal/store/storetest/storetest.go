// Package storetest provides in-memory store implementations for tests.
package storetest

import (
	"context"
	"sort"
	"sync"
	"time"

	"salespilot/prospector-service/internal/model"
	"salespilot/prospector-service/internal/store"
)

// ProfileStore is an in-memory store.ProfileStore. The zero value is usable.
type ProfileStore struct {
	mu sync.Mutex

	// Viewed maps operatorID -> profileID -> record.
	Viewed map[string]map[string]model.ViewedProfileRecord
	// Details maps profileURL -> last upserted detail.
	Details map[string]*model.ProfileDetail

	// AppendErr, when set, is returned by AppendViewedBatch before any insert.
	AppendErr error
	// UpsertErr, when set, is returned by UpsertProfile.
	UpsertErr error
}

func (f *ProfileStore) AppendViewedBatch(_ context.Context, records []model.ViewedProfileRecord) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.AppendErr != nil {
		return 0, f.AppendErr
	}
	if f.Viewed == nil {
		f.Viewed = make(map[string]map[string]model.ViewedProfileRecord)
	}
	inserted := 0
	for _, r := range records {
		byID := f.Viewed[r.OperatorID]
		if byID == nil {
			byID = make(map[string]model.ViewedProfileRecord)
			f.Viewed[r.OperatorID] = byID
		}
		if _, seen := byID[r.ProfileID]; seen {
			continue
		}
		byID[r.ProfileID] = r
		inserted++
	}
	return inserted, nil
}

func (f *ProfileStore) ListKnownIDs(_ context.Context, operatorID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]string, 0, len(f.Viewed[operatorID]))
	for id := range f.Viewed[operatorID] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (f *ProfileStore) UpsertProfile(_ context.Context, _ string, detail *model.ProfileDetail) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.UpsertErr != nil {
		return f.UpsertErr
	}
	if f.Details == nil {
		f.Details = make(map[string]*model.ProfileDetail)
	}
	f.Details[detail.ProfileURL] = detail
	return nil
}

func (f *ProfileStore) PurgeViewedBefore(_ context.Context, cutoff time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var purged int64
	for op, byID := range f.Viewed {
		for id, r := range byID {
			if r.ViewedAt.Before(cutoff) {
				delete(byID, id)
				purged++
			}
		}
		if len(byID) == 0 {
			delete(f.Viewed, op)
		}
	}
	return purged, nil
}

// ViewedCount returns the number of history rows stored for the operator.
func (f *ProfileStore) ViewedCount(operatorID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Viewed[operatorID])
}

// SessionStore is an in-memory store.SessionStore.
type SessionStore struct {
	mu       sync.Mutex
	Sessions map[string]*model.Session
	Touched  map[string]time.Time
}

func (f *SessionStore) GetSession(_ context.Context, operatorID string) (*model.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sess, ok := f.Sessions[operatorID]
	if !ok {
		return nil, store.ErrNoSession
	}
	cp := *sess
	return &cp, nil
}

func (f *SessionStore) TouchSession(_ context.Context, operatorID string, usedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Touched == nil {
		f.Touched = make(map[string]time.Time)
	}
	f.Touched[operatorID] = usedAt
	return nil
}

// Put stores a session for the operator.
func (f *SessionStore) Put(sess *model.Session) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Sessions == nil {
		f.Sessions = make(map[string]*model.Session)
	}
	f.Sessions[sess.OperatorID] = sess
}
