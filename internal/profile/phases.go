// Package profile performs deep per-profile extraction: it drives a browser
// session to one profile page and pulls a rich record out of undocumented,
// unstable markup using ordered fallback strategies per field.
//
// One extraction walks this phase graph:
//
//	INIT ──► SESSION_VERIFIED ──► NAVIGATED ──► CONTACT_PANEL_OPENED ──► CONTACT_PANEL_CLOSED ──► FIELDS_EXTRACTED ──► PERSISTED
//	                                   │                                                                 ▲
//	                                   └─────────────────────────────────────────────────────────────────┘
//
// The contact-panel pair is optional. Any non-terminal phase may short-
// circuit to FAILED; PERSISTED and FAILED are terminal.
package profile

import "fmt"

// Phase is one step of a detail extraction.
type Phase string

const (
	PhaseInit               Phase = "INIT"
	PhaseSessionVerified    Phase = "SESSION_VERIFIED"
	PhaseNavigated          Phase = "NAVIGATED"
	PhaseContactPanelOpened Phase = "CONTACT_PANEL_OPENED"
	PhaseContactPanelClosed Phase = "CONTACT_PANEL_CLOSED"
	PhaseFieldsExtracted    Phase = "FIELDS_EXTRACTED"
	PhasePersisted          Phase = "PERSISTED"
	PhaseFailed             Phase = "FAILED"
)

// validPhaseTransitions lists every allowed (from → to) pair, FAILED aside.
var validPhaseTransitions = map[Phase][]Phase{
	PhaseInit:               {PhaseSessionVerified},
	PhaseSessionVerified:    {PhaseNavigated},
	PhaseNavigated:          {PhaseContactPanelOpened, PhaseFieldsExtracted},
	PhaseContactPanelOpened: {PhaseContactPanelClosed},
	PhaseContactPanelClosed: {PhaseFieldsExtracted},
	PhaseFieldsExtracted:    {PhasePersisted},
	// PERSISTED and FAILED are terminal — no outgoing transitions
}

// ParsePhase converts a raw string to a Phase, returning an error for
// unknown values.
func ParsePhase(s string) (Phase, error) {
	p := Phase(s)
	switch p {
	case PhaseInit, PhaseSessionVerified, PhaseNavigated,
		PhaseContactPanelOpened, PhaseContactPanelClosed,
		PhaseFieldsExtracted, PhasePersisted, PhaseFailed:
		return p, nil
	}
	return "", fmt.Errorf("unknown extraction phase %q", s)
}

// IsPhaseTransitionAllowed returns true when moving from → to is permitted.
// Every non-terminal phase may fail.
func IsPhaseTransitionAllowed(from, to Phase) bool {
	if IsTerminalPhase(from) {
		return false
	}
	if to == PhaseFailed {
		return true
	}
	for _, p := range validPhaseTransitions[from] {
		if p == to {
			return true
		}
	}
	return false
}

// IsTerminalPhase reports whether no transition may leave the phase.
func IsTerminalPhase(p Phase) bool {
	return p == PhasePersisted || p == PhaseFailed
}

// phaseTracker enforces the phase graph during one extraction. A disallowed
// advance is a programming error, surfaced loudly in tests.
type phaseTracker struct {
	current Phase
}

func newPhaseTracker() *phaseTracker {
	return &phaseTracker{current: PhaseInit}
}

func (t *phaseTracker) advance(to Phase) error {
	if !IsPhaseTransitionAllowed(t.current, to) {
		return fmt.Errorf("extraction phase %s → %s is not allowed", t.current, to)
	}
	t.current = to
	return nil
}
