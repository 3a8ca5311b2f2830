package model

import "errors"

// Pipeline error taxonomy. Only these propagate to callers as hard errors;
// field-level extraction failures are absorbed locally and later-page fetch
// errors degrade a search to partial success.
var (
	// ErrNotAuthenticated means the operator has no session or the session
	// is expired. Never retried by the pipeline.
	ErrNotAuthenticated = errors.New("operator is not authenticated")

	// ErrSourceBlocked means navigation landed somewhere inconsistent with
	// a profile or search page — the session was likely invalidated.
	ErrSourceBlocked = errors.New("source blocked or session invalidated")

	// ErrSearchFailed means the first results page could not be fetched or
	// parsed. Errors on later pages do not raise this; the search returns
	// whatever it accumulated.
	ErrSearchFailed = errors.New("search failed")
)

// ValidationError wraps a user-facing validation message.
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }
