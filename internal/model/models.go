// Package model defines shared data structures for the prospector service.
package model

import (
	"net/url"
	"strings"
	"time"
)

// SearchCriteria is the immutable input to one people search. All fields are
// optional, but at least one must be non-empty for a search to run.
type SearchCriteria struct {
	JobTitle        string `json:"jobTitle,omitempty"`
	Industry        string `json:"industry,omitempty"`
	LocationKeyword string `json:"locationKeyword,omitempty"`
	Company         string `json:"company,omitempty"`
}

// IsEmpty reports whether no criteria field is set.
func (c SearchCriteria) IsEmpty() bool {
	return c.JobTitle == "" && c.Industry == "" && c.LocationKeyword == "" && c.Company == ""
}

// ProfileSummary is one lightweight result row from a search page.
// ID is derived from ProfileURL; a summary with an empty ID is dropped.
type ProfileSummary struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Headline       string `json:"headline,omitempty"`
	Location       string `json:"location,omitempty"`
	Summary        string `json:"summary,omitempty"`
	CurrentCompany string `json:"currentCompany,omitempty"`
	AvatarURL      string `json:"avatarUrl,omitempty"`
	ProfileURL     string `json:"profileUrl"`
}

// ViewedProfileRecord is one append-only row of an operator's view history.
// There is at most one row per (operatorID, profileID) pair; re-sightings
// are conflict-ignored on insert.
type ViewedProfileRecord struct {
	OperatorID string         `json:"operatorId"`
	ProfileID  string         `json:"profileId"`
	ProfileURL string         `json:"profileUrl"`
	Name       string         `json:"name"`
	Headline   string         `json:"headline,omitempty"`
	Location   string         `json:"location,omitempty"`
	AvatarURL  string         `json:"avatarUrl,omitempty"`
	Criteria   SearchCriteria `json:"searchCriteria"`
	SearchKey  string         `json:"searchKey"`
	ViewedAt   time.Time      `json:"viewedAt"`
}

// Experience is one position entry on a profile.
type Experience struct {
	Title   string `json:"title"`
	Company string `json:"company"`
}

// EmailSource marks whether a ProfileDetail email was read off the page or
// substituted from configuration.
const (
	EmailSourceExtracted = "extracted"
	EmailSourceFallback  = "fallback"
)

// ProfileDetail is the fully extracted record for one profile.
// Email is never empty: when no address is found on the page, the configured
// fallback address is substituted and EmailSource is set to "fallback" so
// consumers can tell verified from placeholder contact data.
type ProfileDetail struct {
	ProfileSummary
	About       string       `json:"about,omitempty"`
	Skills      []string     `json:"skills,omitempty"`
	Posts       []string     `json:"posts,omitempty"`
	Experiences []Experience `json:"experiences,omitempty"`
	Education   string       `json:"education,omitempty"`
	Email       string       `json:"email"`
	EmailSource string       `json:"emailSource"`
}

// SessionCookie is one browser cookie of an operator session.
type SessionCookie struct {
	Name     string `json:"name"`
	Value    string `json:"value"`
	Domain   string `json:"domain"`
	Path     string `json:"path"`
	HTTPOnly bool   `json:"httpOnly"`
	Secure   bool   `json:"secure"`
	SameSite string `json:"sameSite,omitempty"`
}

// Session is one operator's authenticated session on the source site.
// The pipeline holds it only for the duration of one browser-driving
// operation and never mutates the cookie set.
type Session struct {
	OperatorID string          `json:"operatorId"`
	Cookies    []SessionCookie `json:"cookies"`
	CapturedAt time.Time       `json:"capturedAt"`
	ExpiresAt  time.Time       `json:"expiresAt"`
	LastUsedAt time.Time       `json:"lastUsedAt"`
}

// Valid reports whether the session is usable at the given instant.
func (s *Session) Valid(now time.Time) bool {
	return s != nil && len(s.Cookies) > 0 && now.Before(s.ExpiresAt)
}

// ProfileIDFromURL derives the site-assigned profile handle from a profile
// URL: the path segment following "/in/". Returns "" when the URL does not
// point at a profile page.
func ProfileIDFromURL(profileURL string) string {
	u, err := url.Parse(strings.TrimSpace(profileURL))
	if err != nil {
		return ""
	}
	path := u.Path
	idx := strings.Index(path, "/in/")
	if idx < 0 {
		return ""
	}
	slug := path[idx+len("/in/"):]
	if j := strings.Index(slug, "/"); j >= 0 {
		slug = slug[:j]
	}
	return slug
}
