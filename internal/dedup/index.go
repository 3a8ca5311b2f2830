// Package dedup prevents re-surfacing profiles an operator has already been
// shown. The index is the operator's full view history as a sorted id slice,
// rebuilt per search rather than cached — a little latency for zero
// cache-invalidation risk.
package dedup

import (
	"context"
	"fmt"
	"strings"
	"time"

	"salespilot/prospector-service/internal/model"
	"salespilot/prospector-service/internal/store"
)

// IsKnown reports whether id is present in sortedIDs, which must be sorted
// ascending. Classic binary search: pure function, no state between calls.
func IsKnown(id string, sortedIDs []string) bool {
	left, right := 0, len(sortedIDs)-1
	for left <= right {
		mid := left + (right-left)/2
		switch {
		case sortedIDs[mid] == id:
			return true
		case sortedIDs[mid] < id:
			left = mid + 1
		default:
			right = mid - 1
		}
	}
	return false
}

// SearchKey derives a stable, human-readable grouping label from criteria by
// joining the non-empty fields in a fixed order.
func SearchKey(c model.SearchCriteria) string {
	parts := make([]string, 0, 4)
	for _, f := range []string{c.JobTitle, c.Industry, c.LocationKeyword, c.Company} {
		if f != "" {
			parts = append(parts, f)
		}
	}
	return strings.Join(parts, " | ")
}

// Index loads and appends per-operator view history through a ProfileStore.
type Index struct {
	profiles store.ProfileStore
}

// NewIndex returns an Index backed by profiles.
func NewIndex(profiles store.ProfileStore) *Index {
	return &Index{profiles: profiles}
}

// KnownIDs returns every profile id ever shown to the operator, sorted
// ascending, ready for IsKnown lookups.
func (ix *Index) KnownIDs(ctx context.Context, operatorID string) ([]string, error) {
	ids, err := ix.profiles.ListKnownIDs(ctx, operatorID)
	if err != nil {
		return nil, fmt.Errorf("load known ids for %s: %w", operatorID, err)
	}
	return ids, nil
}

// RecordBatch appends one ViewedProfileRecord per summary with
// conflict-ignore semantics and returns the number of rows actually
// inserted. A persistence error aborts the batch and is surfaced; earlier
// batches from the same search stay committed.
func (ix *Index) RecordBatch(ctx context.Context, operatorID string, criteria model.SearchCriteria, summaries []model.ProfileSummary) (int, error) {
	if len(summaries) == 0 {
		return 0, nil
	}

	key := SearchKey(criteria)
	now := time.Now().UTC()

	records := make([]model.ViewedProfileRecord, 0, len(summaries))
	for _, s := range summaries {
		records = append(records, model.ViewedProfileRecord{
			OperatorID: operatorID,
			ProfileID:  s.ID,
			ProfileURL: s.ProfileURL,
			Name:       s.Name,
			Headline:   s.Headline,
			Location:   s.Location,
			AvatarURL:  s.AvatarURL,
			Criteria:   criteria,
			SearchKey:  key,
			ViewedAt:   now,
		})
	}

	inserted, err := ix.profiles.AppendViewedBatch(ctx, records)
	if err != nil {
		return inserted, fmt.Errorf("record viewed batch for %s: %w", operatorID, err)
	}
	return inserted, nil
}
