package search

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"salespilot/prospector-service/internal/browser"
	"salespilot/prospector-service/internal/browser/browsertest"
	"salespilot/prospector-service/internal/dedup"
	"salespilot/prospector-service/internal/model"
	"salespilot/prospector-service/internal/store/storetest"
)

const testOperator = "op-1"

var testCriteria = model.SearchCriteria{JobTitle: "CTO", LocationKeyword: "Berlin"}

type orchestratorFixture struct {
	orch     *Orchestrator
	profiles *storetest.ProfileStore
	sessions *storetest.SessionStore
	opener   *browsertest.Opener
}

func newFixture(t *testing.T, script *browsertest.Script, quota, maxPages int) *orchestratorFixture {
	t.Helper()
	profiles := &storetest.ProfileStore{}
	sessions := &storetest.SessionStore{}
	sessions.Put(&model.Session{
		OperatorID: testOperator,
		Cookies:    []model.SessionCookie{{Name: "li_at", Value: "tok"}},
		ExpiresAt:  time.Now().Add(time.Hour),
	})
	opener := &browsertest.Opener{Script: script}
	orch := NewOrchestrator(
		sessions, dedup.NewIndex(profiles), opener, NewPageExtractor(testBaseURL),
		browser.NewOperatorGate(), nil, testBaseURL, quota, maxPages,
	)
	orch.pause = func(context.Context, int, int) {}
	return &orchestratorFixture{orch: orch, profiles: profiles, sessions: sessions, opener: opener}
}

// rowsFrom builds n scripted result cards with ids prospect-<start>…; zero
// padding keeps lexical and numeric order aligned.
func rowsFrom(start, n int) []map[string]string {
	rows := make([]map[string]string, 0, n)
	for i := 0; i < n; i++ {
		slug := fmt.Sprintf("prospect-%03d", start+i)
		rows = append(rows, map[string]string{
			"url":      "https://www.linkedin.com/in/" + slug + "/",
			"name":     "Prospect " + slug,
			"headline": "CTO at Example",
		})
	}
	return rows
}

func TestSearchValidation(t *testing.T) {
	fx := newFixture(t, &browsertest.Script{}, 30, 20)

	var vErr *model.ValidationError
	if _, err := fx.orch.Search(context.Background(), "", testCriteria); !errors.As(err, &vErr) {
		t.Errorf("empty operator: err = %v, want ValidationError", err)
	}
	if _, err := fx.orch.Search(context.Background(), testOperator, model.SearchCriteria{}); !errors.As(err, &vErr) {
		t.Errorf("empty criteria: err = %v, want ValidationError", err)
	}
	if fx.opener.Opened != 0 {
		t.Errorf("browser opened %d times on validation failure, want 0", fx.opener.Opened)
	}
}

func TestSearchRequiresValidSession(t *testing.T) {
	fx := newFixture(t, &browsertest.Script{}, 30, 20)

	if _, err := fx.orch.Search(context.Background(), "op-unknown", testCriteria); !errors.Is(err, model.ErrNotAuthenticated) {
		t.Errorf("missing session: err = %v, want ErrNotAuthenticated", err)
	}

	fx.sessions.Put(&model.Session{
		OperatorID: "op-expired",
		Cookies:    []model.SessionCookie{{Name: "li_at", Value: "tok"}},
		ExpiresAt:  time.Now().Add(-time.Minute),
	})
	if _, err := fx.orch.Search(context.Background(), "op-expired", testCriteria); !errors.Is(err, model.ErrNotAuthenticated) {
		t.Errorf("expired session: err = %v, want ErrNotAuthenticated", err)
	}
}

func TestSearchQuotaTruncationAndOverflow(t *testing.T) {
	// 40 raw rows over two pages against a quota of 30: the response holds
	// the first 30 in page order, all 40 count as fetched, and only the 30
	// returned rows enter history — the overflow surfaces on the next run.
	script := &browsertest.Script{PageRows: map[int][]map[string]string{
		1: rowsFrom(0, 20),
		2: rowsFrom(20, 20),
	}}
	fx := newFixture(t, script, 30, 20)

	resp, err := fx.orch.Search(context.Background(), testOperator, testCriteria)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(resp.Results) != 30 {
		t.Fatalf("got %d results, want 30", len(resp.Results))
	}
	if resp.Results[0].ID != "prospect-000" || resp.Results[29].ID != "prospect-029" {
		t.Errorf("results out of page order: first=%s last=%s", resp.Results[0].ID, resp.Results[29].ID)
	}
	if resp.Pagination.Total != 40 {
		t.Errorf("pagination.total = %d, want 40 fetched rows", resp.Pagination.Total)
	}
	if !resp.Pagination.HasMore {
		t.Error("pagination.hasMore = false, want true when quota stopped the loop")
	}
	if got := fx.profiles.ViewedCount(testOperator); got != 30 {
		t.Errorf("persisted %d history rows, want exactly the 30 returned", got)
	}

	// Second identical run: the 30 recorded rows are filtered, the 10
	// overflow rows come back, and the source is exhausted.
	resp2, err := fx.orch.Search(context.Background(), testOperator, testCriteria)
	if err != nil {
		t.Fatalf("second Search: %v", err)
	}
	if len(resp2.Results) != 10 {
		t.Fatalf("second run got %d results, want the 10 unrecorded overflow rows", len(resp2.Results))
	}
	if resp2.Results[0].ID != "prospect-030" {
		t.Errorf("second run first result = %s, want prospect-030", resp2.Results[0].ID)
	}
	if resp2.Pagination.HasMore {
		t.Error("second run hasMore = true, want false after source exhaustion")
	}
	if got := fx.profiles.ViewedCount(testOperator); got != 40 {
		t.Errorf("history rows = %d after second run, want 40", got)
	}
}

func TestSearchStopsAtSafetyCap(t *testing.T) {
	// Five unique rows per page forever: the loop must stop at the page cap
	// with hasMore true, never spinning further.
	script := &browsertest.Script{PageRows: map[int][]map[string]string{}}
	for p := 1; p <= 50; p++ {
		script.PageRows[p] = rowsFrom((p-1)*5, 5)
	}
	fx := newFixture(t, script, 1000, 4)

	resp, err := fx.orch.Search(context.Background(), testOperator, testCriteria)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if got := len(fx.opener.LastPage.Navigations); got != 4 {
		t.Errorf("navigated %d pages, want exactly the cap of 4", got)
	}
	if len(resp.Results) != 20 {
		t.Errorf("got %d results, want 20 (4 pages × 5)", len(resp.Results))
	}
	if !resp.Pagination.HasMore {
		t.Error("hasMore = false, want true when the cap stopped the loop")
	}
}

func TestSearchFiltersRepeatsWithinRun(t *testing.T) {
	// The source repeats rows across pages; the in-flight set must filter
	// them even before anything is persisted.
	script := &browsertest.Script{PageRows: map[int][]map[string]string{
		1: rowsFrom(0, 10),
		2: append(rowsFrom(5, 5), rowsFrom(10, 5)...), // first half repeats page 1
	}}
	fx := newFixture(t, script, 30, 20)

	resp, err := fx.orch.Search(context.Background(), testOperator, testCriteria)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(resp.Results) != 15 {
		t.Errorf("got %d results, want 15 unique", len(resp.Results))
	}
	if resp.Pagination.Total != 20 {
		t.Errorf("pagination.total = %d, want 20 raw rows", resp.Pagination.Total)
	}
	if !strings.Contains(resp.Message, "5 previously seen") {
		t.Errorf("message = %q, want the 5 filtered repeats called out", resp.Message)
	}
	if resp.Pagination.HasMore {
		t.Error("hasMore = true, want false — page 3 came back empty before the quota was met")
	}
}

func TestSearchAllAlreadySeen(t *testing.T) {
	script := &browsertest.Script{PageRows: map[int][]map[string]string{
		1: rowsFrom(0, 8),
	}}
	fx := newFixture(t, script, 30, 20)

	if _, err := fx.orch.Search(context.Background(), testOperator, testCriteria); err != nil {
		t.Fatalf("first Search: %v", err)
	}
	resp, err := fx.orch.Search(context.Background(), testOperator, testCriteria)
	if err != nil {
		t.Fatalf("second Search: %v", err)
	}
	if len(resp.Results) != 0 {
		t.Fatalf("got %d results, want 0 when everything was already seen", len(resp.Results))
	}
	if !strings.Contains(resp.Message, "already seen") {
		t.Errorf("message = %q, want already-seen explanation", resp.Message)
	}
	if got := fx.profiles.ViewedCount(testOperator); got != 8 {
		t.Errorf("history grew to %d rows, want unchanged 8", got)
	}
}

func TestSearchHistoryIsPerOperator(t *testing.T) {
	script := &browsertest.Script{PageRows: map[int][]map[string]string{
		1: rowsFrom(0, 5),
	}}
	fx := newFixture(t, script, 30, 20)
	fx.sessions.Put(&model.Session{
		OperatorID: "op-2",
		Cookies:    []model.SessionCookie{{Name: "li_at", Value: "tok2"}},
		ExpiresAt:  time.Now().Add(time.Hour),
	})

	if _, err := fx.orch.Search(context.Background(), testOperator, testCriteria); err != nil {
		t.Fatalf("op-1 Search: %v", err)
	}
	resp, err := fx.orch.Search(context.Background(), "op-2", testCriteria)
	if err != nil {
		t.Fatalf("op-2 Search: %v", err)
	}
	if len(resp.Results) != 5 {
		t.Errorf("op-2 got %d results, want all 5 — histories must not bleed across operators", len(resp.Results))
	}
}

func TestSearchNoResults(t *testing.T) {
	fx := newFixture(t, &browsertest.Script{}, 30, 20)

	resp, err := fx.orch.Search(context.Background(), testOperator, testCriteria)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(resp.Results) != 0 || resp.Pagination.Total != 0 {
		t.Errorf("results=%d total=%d, want both 0", len(resp.Results), resp.Pagination.Total)
	}
	if resp.Pagination.HasMore {
		t.Error("hasMore = true on an empty source, want false")
	}
	if !strings.Contains(resp.Message, "No results") {
		t.Errorf("message = %q, want no-results explanation", resp.Message)
	}
}

func TestSearchFirstPageFailure(t *testing.T) {
	script := &browsertest.Script{
		PageErr: map[int]error{1: errors.New("net::ERR_TIMED_OUT")},
	}
	fx := newFixture(t, script, 30, 20)

	_, err := fx.orch.Search(context.Background(), testOperator, testCriteria)
	if !errors.Is(err, model.ErrSearchFailed) {
		t.Fatalf("err = %v, want ErrSearchFailed when page 1 never loads", err)
	}
	if got := fx.profiles.ViewedCount(testOperator); got != 0 {
		t.Errorf("persisted %d rows after a failed search, want 0", got)
	}
	if fx.opener.Released != fx.opener.Opened {
		t.Errorf("opened %d pages but released %d", fx.opener.Opened, fx.opener.Released)
	}
}

func TestSearchLaterPageFailureDegradesToPartial(t *testing.T) {
	script := &browsertest.Script{
		PageRows: map[int][]map[string]string{1: rowsFrom(0, 10)},
		PageErr:  map[int]error{2: errors.New("net::ERR_TIMED_OUT")},
	}
	fx := newFixture(t, script, 30, 20)

	resp, err := fx.orch.Search(context.Background(), testOperator, testCriteria)
	if err != nil {
		t.Fatalf("Search: %v, want partial success after page 2 failed", err)
	}
	if len(resp.Results) != 10 {
		t.Errorf("got %d results, want the 10 from page 1", len(resp.Results))
	}
	if !resp.Pagination.HasMore {
		t.Error("hasMore = false, want true — the failed page may hold more")
	}
	if got := fx.profiles.ViewedCount(testOperator); got != 10 {
		t.Errorf("persisted %d rows, want the 10 partial results", got)
	}
}

func TestSearchRecordFailureSurfaces(t *testing.T) {
	script := &browsertest.Script{PageRows: map[int][]map[string]string{1: rowsFrom(0, 3)}}
	fx := newFixture(t, script, 30, 20)
	fx.profiles.AppendErr = errors.New("pg down")

	if _, err := fx.orch.Search(context.Background(), testOperator, testCriteria); err == nil {
		t.Fatal("err = nil, want the history persistence failure surfaced")
	}
}

func TestSearchTouchesSessionAndPaginatesURL(t *testing.T) {
	script := &browsertest.Script{PageRows: map[int][]map[string]string{
		1: rowsFrom(0, 10),
		2: rowsFrom(10, 10),
	}}
	fx := newFixture(t, script, 15, 20)

	if _, err := fx.orch.Search(context.Background(), testOperator, testCriteria); err != nil {
		t.Fatalf("Search: %v", err)
	}
	if _, ok := fx.sessions.Touched[testOperator]; !ok {
		t.Error("session last-used timestamp not refreshed after a successful search")
	}

	navs := fx.opener.LastPage.Navigations
	if len(navs) != 2 {
		t.Fatalf("navigated %d times, want 2", len(navs))
	}
	if strings.Contains(navs[0], "page=") {
		t.Errorf("first navigation %q carries a page param, want none", navs[0])
	}
	if !strings.Contains(navs[1], "page=2") {
		t.Errorf("second navigation %q missing page=2", navs[1])
	}
	for _, nav := range navs {
		if !strings.Contains(nav, "/search/results/people/") {
			t.Errorf("navigation %q not a people-search URL", nav)
		}
		if !strings.Contains(nav, "keywords=CTO+Berlin") {
			t.Errorf("navigation %q missing folded keywords", nav)
		}
	}
}
