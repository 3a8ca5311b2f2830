package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"salespilot/prospector-service/internal/browser"
	"salespilot/prospector-service/internal/model"
	"salespilot/prospector-service/internal/search"
	"salespilot/prospector-service/internal/store"
)

const (
	// maxPosts caps the most-recent-first activity list on a detail record.
	maxPosts = 5

	// Contact overlay selectors: the open link, the marker that tells us the
	// panel content actually rendered, and the dismiss control.
	contactOpenSel    = `a[href*="overlay/contact-info"], a[href*="contact-info"]`
	contactMarkerSel  = `.artdeco-modal [class*="contact-info"], section.pv-contact-info, .artdeco-modal h1`
	contactDismissSel = `button[aria-label="Dismiss"], .artdeco-modal__dismiss`
)

var emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)

// Extractor performs deep extraction of one profile page.
type Extractor struct {
	sessions store.SessionStore
	profiles store.ProfileStore
	opener   browser.Opener
	gate     *browser.OperatorGate
	rdb      *redis.Client // optional event publisher; nil in tests

	fallbackEmail string

	// pause and wander keep the interaction human-paced; stubbed in tests.
	pause  func(ctx context.Context, minMs, maxMs int)
	wander func(ctx context.Context, p browser.Page) error
}

// NewExtractor wires a detail extractor.
func NewExtractor(
	sessions store.SessionStore,
	profiles store.ProfileStore,
	opener browser.Opener,
	gate *browser.OperatorGate,
	rdb *redis.Client,
	fallbackEmail string,
) *Extractor {
	return &Extractor{
		sessions:      sessions,
		profiles:      profiles,
		opener:        opener,
		gate:          gate,
		rdb:           rdb,
		fallbackEmail: fallbackEmail,
		pause:         browser.Pause,
		wander:        browser.WanderPointer,
	}
}

// ExtractDetail drives a browser session to the profile page and pulls a
// rich record out of it. Field-level failures are absorbed — the cascade
// leaves the field empty and moves on. A navigation that lands somewhere not
// recognizable as a profile page at all is ErrSourceBlocked and yields
// nothing; any later hard failure still returns the partial record.
func (x *Extractor) ExtractDetail(ctx context.Context, operatorID, profileURL, nameHint string) (*model.ProfileDetail, error) {
	if operatorID == "" {
		return nil, &model.ValidationError{Msg: "operatorId is required"}
	}
	if model.ProfileIDFromURL(profileURL) == "" {
		return nil, &model.ValidationError{Msg: "profileUrl does not point at a profile page"}
	}

	release := x.gate.Acquire(operatorID)
	defer release()

	phases := newPhaseTracker()

	sess, err := x.sessions.GetSession(ctx, operatorID)
	if errors.Is(err, store.ErrNoSession) {
		return nil, model.ErrNotAuthenticated
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if !sess.Valid(time.Now()) {
		return nil, model.ErrNotAuthenticated
	}
	if err := phases.advance(PhaseSessionVerified); err != nil {
		return nil, err
	}

	page, releasePage, err := x.opener.NewPage(ctx, sess)
	if err != nil {
		return nil, fmt.Errorf("open browser session: %w", err)
	}
	defer releasePage()

	x.pause(ctx, 900, 2400)
	navErr := page.Navigate(ctx, profileURL)

	// The site loads incompletely under automation all the time; a timed-out
	// navigation with a profile URL in the location bar is still workable.
	loc, locErr := page.Location(ctx)
	if locErr != nil || !isProfileLocation(loc) {
		return nil, fmt.Errorf("%w: landed on %q", model.ErrSourceBlocked, loc)
	}
	if navErr != nil {
		slog.Warn("profile navigation incomplete, extracting from partial DOM",
			"operatorId", operatorID, "url", profileURL, "err", navErr)
	}
	if err := phases.advance(PhaseNavigated); err != nil {
		return nil, err
	}

	x.pause(ctx, 400, 1200)
	if err := x.wander(ctx, page); err != nil {
		slog.Debug("pointer wander failed", "err", err)
	}

	detail := &model.ProfileDetail{
		ProfileSummary: model.ProfileSummary{
			ID:         model.ProfileIDFromURL(profileURL),
			ProfileURL: profileURL,
		},
	}

	if email := x.extractContactEmail(ctx, page, phases); email != "" {
		detail.Email = email
		detail.EmailSource = model.EmailSourceExtracted
	} else {
		detail.Email = x.fallbackEmail
		detail.EmailSource = model.EmailSourceFallback
	}

	detail.Name = firstText(ctx, page, nameStrategies, plausibleName)
	if detail.Name == "" && nameHint != "" {
		detail.Name = nameHint
	}
	detail.Headline = firstText(ctx, page, headlineStrategies, nil)
	detail.About = firstText(ctx, page, aboutStrategies, nil)
	detail.Location = firstText(ctx, page, locationStrategies, nil)
	detail.Education = firstText(ctx, page, educationStrategies, nil)
	detail.CurrentCompany = companyFromExperiencesOrHeadline(detail)

	detail.Skills = DedupSkills(firstList(ctx, page, skillsStrategies))

	posts := firstList(ctx, page, postsStrategies)
	if len(posts) > maxPosts {
		posts = posts[:maxPosts]
	}
	detail.Posts = posts

	for _, e := range firstExperiences(ctx, page) {
		title := strings.TrimSpace(e.Title)
		if title == "" {
			continue
		}
		detail.Experiences = append(detail.Experiences, model.Experience{
			Title:   title,
			Company: strings.TrimSpace(e.Company),
		})
	}
	if detail.CurrentCompany == "" && len(detail.Experiences) > 0 {
		detail.CurrentCompany = detail.Experiences[0].Company
	}

	if err := phases.advance(PhaseFieldsExtracted); err != nil {
		return detail, err
	}

	if err := x.profiles.UpsertProfile(ctx, operatorID, detail); err != nil {
		return detail, fmt.Errorf("persist profile detail: %w", err)
	}
	if err := phases.advance(PhasePersisted); err != nil {
		return detail, err
	}

	if err := x.sessions.TouchSession(ctx, operatorID, time.Now().UTC()); err != nil {
		slog.Warn("touch session failed", "operatorId", operatorID, "err", err)
	}
	x.publishExtracted(ctx, operatorID, detail)

	slog.Info("profile extracted",
		"operatorId", operatorID, "profileId", detail.ID,
		"emailSource", detail.EmailSource, "skills", len(detail.Skills),
		"experiences", len(detail.Experiences))

	return detail, nil
}

// extractContactEmail opens the contact overlay, waits for its content
// marker, scans the visible text for an email-shaped token, and closes the
// panel again. Every step is best-effort: any failure just means no
// extracted address.
func (x *Extractor) extractContactEmail(ctx context.Context, page browser.Page, phases *phaseTracker) string {
	if err := page.Click(ctx, contactOpenSel); err != nil {
		return ""
	}
	if err := phases.advance(PhaseContactPanelOpened); err != nil {
		return ""
	}

	// Close the overlay on every path so field extraction afterwards sees
	// the profile page, not the modal.
	defer func() {
		x.pause(ctx, 200, 600)
		if err := page.Click(ctx, contactDismissSel); err != nil {
			slog.Debug("contact panel dismiss failed", "err", err)
		}
		if err := phases.advance(PhaseContactPanelClosed); err != nil {
			slog.Debug("phase tracking", "err", err)
		}
	}()

	if err := page.WaitVisible(ctx, contactMarkerSel, 6*time.Second); err != nil {
		return ""
	}

	var text string
	if err := page.Eval(ctx, contactPanelTextJS, &text); err != nil {
		return ""
	}
	return emailPattern.FindString(text)
}

// companyFromExperiencesOrHeadline mirrors the summary-extraction fallback:
// an explicit value is never synthesized, only derived.
func companyFromExperiencesOrHeadline(d *model.ProfileDetail) string {
	if d.CurrentCompany != "" {
		return d.CurrentCompany
	}
	return search.CompanyFromHeadline(d.Headline)
}

// isProfileLocation reports whether the URL is recognizable as a profile
// page. Redirects to login walls, checkpoints, or the feed mean the session
// was likely invalidated.
func isProfileLocation(loc string) bool {
	return strings.Contains(loc, "/in/")
}

// publishExtracted emits a non-fatal completion event for the CRM gateway.
func (x *Extractor) publishExtracted(ctx context.Context, operatorID string, detail *model.ProfileDetail) {
	if x.rdb == nil {
		return
	}
	event, _ := json.Marshal(map[string]string{
		"type":        "EVENT_PROFILE_EXTRACTED",
		"operatorId":  operatorID,
		"profileId":   detail.ID,
		"profileUrl":  detail.ProfileURL,
		"emailSource": detail.EmailSource,
	})
	if err := x.rdb.Publish(ctx, "EVENT_PROFILE_EXTRACTED", event).Err(); err != nil {
		slog.Warn("publish EVENT_PROFILE_EXTRACTED failed", "err", err)
	}
}
