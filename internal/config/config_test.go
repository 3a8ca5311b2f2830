package config

import (
	"strings"
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/prospector")
	t.Setenv("REDIS_URL", "redis://localhost:6379")
	t.Setenv("FALLBACK_CONTACT_EMAIL", "unverified@salespilot.test")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8082" {
		t.Errorf("Port = %q, want 8082", cfg.Port)
	}
	if cfg.SourceBaseURL != "https://www.linkedin.com" {
		t.Errorf("SourceBaseURL = %q", cfg.SourceBaseURL)
	}
	if cfg.SearchQuota != 30 || cfg.SearchMaxPages != 20 {
		t.Errorf("quota/maxPages = %d/%d, want 30/20", cfg.SearchQuota, cfg.SearchMaxPages)
	}
	if cfg.NavTimeout != 25*time.Second {
		t.Errorf("NavTimeout = %v, want 25s", cfg.NavTimeout)
	}
	if !cfg.Headless {
		t.Error("Headless = false, want default true")
	}
	if cfg.HistoryRetentionDays != 0 {
		t.Errorf("HistoryRetentionDays = %d, want 0 (disabled)", cfg.HistoryRetentionDays)
	}
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("PROSPECTOR_PORT", "9090")
	t.Setenv("SEARCH_QUOTA", "50")
	t.Setenv("SEARCH_MAX_PAGES", "10")
	t.Setenv("NAV_TIMEOUT_SECONDS", "40")
	t.Setenv("HEADLESS", "false")
	t.Setenv("HISTORY_RETENTION_DAYS", "90")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "9090" || cfg.SearchQuota != 50 || cfg.SearchMaxPages != 10 {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.NavTimeout != 40*time.Second || cfg.Headless || cfg.HistoryRetentionDays != 90 {
		t.Errorf("overrides not applied: %+v", cfg)
	}
}

func TestLoadMissingRequired(t *testing.T) {
	for _, missing := range []string{"DATABASE_URL", "REDIS_URL", "FALLBACK_CONTACT_EMAIL"} {
		t.Run(missing, func(t *testing.T) {
			setRequired(t)
			t.Setenv(missing, "")
			if _, err := Load(); err == nil || !strings.Contains(err.Error(), missing) {
				t.Errorf("err = %v, want mention of %s", err, missing)
			}
		})
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"zero quota", "SEARCH_QUOTA", "0"},
		{"negative pages", "SEARCH_MAX_PAGES", "-1"},
		{"non-numeric timeout", "NAV_TIMEOUT_SECONDS", "soon"},
		{"negative retention", "HISTORY_RETENTION_DAYS", "-7"},
		{"non-boolean headless", "HEADLESS", "maybe"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Errorf("Load accepted %s=%q, want error", tt.key, tt.value)
			}
		})
	}
}
