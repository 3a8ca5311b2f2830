// Package search drives one people search end-to-end: build the query,
// fetch successive result pages through a driven browser session, filter
// each page against the operator's dedup history, and loop until the unique
// quota is met, the source is exhausted, or the safety cap is hit.
package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"salespilot/prospector-service/internal/browser"
	"salespilot/prospector-service/internal/dedup"
	"salespilot/prospector-service/internal/model"
	"salespilot/prospector-service/internal/store"
)

// Pagination describes how far the search loop got and whether the source
// likely holds more new results.
type Pagination struct {
	Page    int  `json:"page"`
	Limit   int  `json:"limit"`
	Total   int  `json:"total"`
	HasMore bool `json:"hasMore"`
}

// Response is the outcome of one search.
type Response struct {
	Results    []model.ProfileSummary `json:"results"`
	Pagination Pagination             `json:"pagination"`
	Message    string                 `json:"message,omitempty"`
}

// Orchestrator runs searches. All driven-browser work for one operator is
// serialized through the shared gate.
type Orchestrator struct {
	sessions  store.SessionStore
	index     *dedup.Index
	opener    browser.Opener
	extractor *PageExtractor
	gate      *browser.OperatorGate
	rdb       *redis.Client // optional event publisher; nil in tests

	baseURL  string
	quota    int
	maxPages int

	// pause brackets navigations with human-paced delays; stubbed in tests.
	pause func(ctx context.Context, minMs, maxMs int)
}

// NewOrchestrator wires a search orchestrator.
func NewOrchestrator(
	sessions store.SessionStore,
	index *dedup.Index,
	opener browser.Opener,
	extractor *PageExtractor,
	gate *browser.OperatorGate,
	rdb *redis.Client,
	baseURL string,
	quota, maxPages int,
) *Orchestrator {
	return &Orchestrator{
		sessions:  sessions,
		index:     index,
		opener:    opener,
		extractor: extractor,
		gate:      gate,
		rdb:       rdb,
		baseURL:   strings.TrimRight(baseURL, "/"),
		quota:     quota,
		maxPages:  maxPages,
		pause:     browser.Pause,
	}
}

// Search runs one paginated people search for the operator and returns the
// never-seen-before results. Page-level failures after the first successful
// page degrade to partial success; a first-page failure is ErrSearchFailed.
func (o *Orchestrator) Search(ctx context.Context, operatorID string, criteria model.SearchCriteria) (*Response, error) {
	if operatorID == "" {
		return nil, &model.ValidationError{Msg: "operatorId is required"}
	}
	if criteria.IsEmpty() {
		return nil, &model.ValidationError{Msg: "at least one search criteria field is required"}
	}

	release := o.gate.Acquire(operatorID)
	defer release()

	sess, err := o.sessions.GetSession(ctx, operatorID)
	if errors.Is(err, store.ErrNoSession) {
		return nil, model.ErrNotAuthenticated
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if !sess.Valid(time.Now()) {
		return nil, model.ErrNotAuthenticated
	}

	// One history load per search; pages filter against this snapshot plus
	// the in-flight set, never against a live index.
	known, err := o.index.KnownIDs(ctx, operatorID)
	if err != nil {
		return nil, err
	}

	page, releasePage, err := o.opener.NewPage(ctx, sess)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrSearchFailed, err)
	}
	defer releasePage()

	var (
		unique       []model.ProfileSummary
		inFlight     = make(map[string]bool)
		totalFetched int
		duplicates   int
		pageNum      = 1
		hasMore      bool
	)

	for {
		o.pause(ctx, 800, 2200)
		if err := page.Navigate(ctx, o.buildSearchURL(criteria, pageNum)); err != nil {
			if pageNum == 1 {
				return nil, fmt.Errorf("%w: navigate page 1: %v", model.ErrSearchFailed, err)
			}
			slog.Warn("search page navigation failed, returning partial results",
				"operatorId", operatorID, "page", pageNum, "err", err)
			hasMore = true
			break
		}

		rows, err := o.extractor.Extract(ctx, page)
		if err != nil {
			if pageNum == 1 {
				return nil, fmt.Errorf("%w: parse page 1: %v", model.ErrSearchFailed, err)
			}
			slog.Warn("search page extraction failed, returning partial results",
				"operatorId", operatorID, "page", pageNum, "err", err)
			hasMore = true
			break
		}

		totalFetched += len(rows)
		if len(rows) == 0 {
			// Source exhausted: normal termination, not an error.
			break
		}

		// Double filter: persisted history plus this run's in-flight set,
		// since the source repeats rows across pages.
		for _, s := range rows {
			if inFlight[s.ID] || dedup.IsKnown(s.ID, known) {
				duplicates++
				continue
			}
			inFlight[s.ID] = true
			unique = append(unique, s)
		}

		if len(unique) >= o.quota {
			hasMore = true
			break
		}
		if pageNum >= o.maxPages {
			hasMore = true
			break
		}
		pageNum++
	}

	// Cap at quota, preserving page order; the overflow stays unrecorded so
	// a later search can surface it.
	if len(unique) > o.quota {
		unique = unique[:o.quota]
	}

	// Persist exactly once, after all pages: a crash mid-loop loses only
	// browsing time, never consistency.
	inserted, err := o.index.RecordBatch(ctx, operatorID, criteria, unique)
	if err != nil {
		return nil, err
	}

	if err := o.sessions.TouchSession(ctx, operatorID, time.Now().UTC()); err != nil {
		slog.Warn("touch session failed", "operatorId", operatorID, "err", err)
	}
	o.publishCompleted(ctx, operatorID, criteria, len(unique))

	slog.Info("search complete",
		"operatorId", operatorID, "pages", pageNum, "fetched", totalFetched,
		"unique", len(unique), "duplicates", duplicates, "recorded", inserted)

	return &Response{
		Results: unique,
		Pagination: Pagination{
			Page:    pageNum,
			Limit:   o.quota,
			Total:   totalFetched,
			HasMore: hasMore,
		},
		Message: composeMessage(totalFetched, len(unique), duplicates),
	}, nil
}

// buildSearchURL assembles the people-search URL for one results page. All
// criteria fields fold into the keyword string; the site's own facet params
// are deliberately not used because their encoding churns with the markup.
func (o *Orchestrator) buildSearchURL(criteria model.SearchCriteria, page int) string {
	keywords := make([]string, 0, 4)
	for _, f := range []string{criteria.JobTitle, criteria.Industry, criteria.LocationKeyword, criteria.Company} {
		if f != "" {
			keywords = append(keywords, f)
		}
	}

	params := url.Values{}
	params.Set("keywords", strings.Join(keywords, " "))
	params.Set("origin", "GLOBAL_SEARCH_HEADER")
	if page > 1 {
		params.Set("page", strconv.Itoa(page))
	}
	return o.baseURL + "/search/results/people/?" + params.Encode()
}

// composeMessage explains degraded or empty outcomes without treating them
// as failures.
func composeMessage(totalFetched, uniqueCount, duplicates int) string {
	switch {
	case totalFetched == 0:
		return "No results found — try broadening the search criteria."
	case uniqueCount == 0:
		return "All results were already seen in previous searches — try refining the criteria."
	case duplicates > 0:
		return fmt.Sprintf("%d previously seen result(s) were filtered out.", duplicates)
	default:
		return ""
	}
}

// publishCompleted emits a non-fatal completion event for the CRM gateway.
func (o *Orchestrator) publishCompleted(ctx context.Context, operatorID string, criteria model.SearchCriteria, uniqueCount int) {
	if o.rdb == nil {
		return
	}
	event, _ := json.Marshal(map[string]any{
		"type":       "EVENT_SEARCH_COMPLETED",
		"operatorId": operatorID,
		"searchKey":  dedup.SearchKey(criteria),
		"unique":     uniqueCount,
	})
	if err := o.rdb.Publish(ctx, "EVENT_SEARCH_COMPLETED", event).Err(); err != nil {
		slog.Warn("publish EVENT_SEARCH_COMPLETED failed", "err", err)
	}
}
