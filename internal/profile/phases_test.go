package profile

import "testing"

func TestParsePhase(t *testing.T) {
	for _, raw := range []string{
		"INIT", "SESSION_VERIFIED", "NAVIGATED",
		"CONTACT_PANEL_OPENED", "CONTACT_PANEL_CLOSED",
		"FIELDS_EXTRACTED", "PERSISTED", "FAILED",
	} {
		if _, err := ParsePhase(raw); err != nil {
			t.Errorf("ParsePhase(%q) unexpected error: %v", raw, err)
		}
	}
	for _, raw := range []string{"", "init", "DONE", "NAVIGATING"} {
		if _, err := ParsePhase(raw); err == nil {
			t.Errorf("ParsePhase(%q) = nil error, want rejection", raw)
		}
	}
}

func TestIsPhaseTransitionAllowed(t *testing.T) {
	tests := []struct {
		name string
		from Phase
		to   Phase
		want bool
	}{
		{"init to session verified", PhaseInit, PhaseSessionVerified, true},
		{"session verified to navigated", PhaseSessionVerified, PhaseNavigated, true},
		{"navigated to contact panel", PhaseNavigated, PhaseContactPanelOpened, true},
		{"navigated skips contact panel", PhaseNavigated, PhaseFieldsExtracted, true},
		{"panel opened to closed", PhaseContactPanelOpened, PhaseContactPanelClosed, true},
		{"panel closed to fields", PhaseContactPanelClosed, PhaseFieldsExtracted, true},
		{"fields to persisted", PhaseFieldsExtracted, PhasePersisted, true},

		{"init cannot skip to navigated", PhaseInit, PhaseNavigated, false},
		{"panel opened cannot jump to fields", PhaseContactPanelOpened, PhaseFieldsExtracted, false},
		{"no backwards move", PhaseNavigated, PhaseSessionVerified, false},
		{"persisted is terminal", PhasePersisted, PhaseFieldsExtracted, false},

		{"any non-terminal may fail", PhaseInit, PhaseFailed, true},
		{"panel opened may fail", PhaseContactPanelOpened, PhaseFailed, true},
		{"persisted cannot fail", PhasePersisted, PhaseFailed, false},
		{"failed stays failed", PhaseFailed, PhaseInit, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsPhaseTransitionAllowed(tt.from, tt.to); got != tt.want {
				t.Errorf("IsPhaseTransitionAllowed(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestIsTerminalPhase(t *testing.T) {
	for p, want := range map[Phase]bool{
		PhasePersisted:       true,
		PhaseFailed:          true,
		PhaseInit:            false,
		PhaseNavigated:       false,
		PhaseFieldsExtracted: false,
	} {
		if got := IsTerminalPhase(p); got != want {
			t.Errorf("IsTerminalPhase(%s) = %v, want %v", p, got, want)
		}
	}
}

func TestPhaseTrackerFullWalk(t *testing.T) {
	tr := newPhaseTracker()
	for _, p := range []Phase{
		PhaseSessionVerified, PhaseNavigated,
		PhaseContactPanelOpened, PhaseContactPanelClosed,
		PhaseFieldsExtracted, PhasePersisted,
	} {
		if err := tr.advance(p); err != nil {
			t.Fatalf("advance(%s): %v", p, err)
		}
	}
	if err := tr.advance(PhaseFailed); err == nil {
		t.Error("advance out of PERSISTED = nil error, want rejection")
	}
}
