// Package config loads and validates environment variables at startup.
// Fail-fast: if a required variable is missing, the process exits.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration for the prospector service.
type Config struct {
	Port        string
	DatabaseURL string
	RedisURL    string

	SourceBaseURL string // base URL of the people-search site

	SearchQuota    int // target count of new unique profiles per search
	SearchMaxPages int // hard safety cap on result pages per search

	FallbackContactEmail string // substituted when no email is found on a profile

	Headless   bool
	ChromePath string
	NavTimeout time.Duration

	HistoryRetentionDays int // 0 disables the viewed-history purge job
}

// Load reads environment variables and returns a validated Config.
func Load() (*Config, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is required")
	}

	fallbackEmail := os.Getenv("FALLBACK_CONTACT_EMAIL")
	if fallbackEmail == "" {
		return nil, fmt.Errorf("FALLBACK_CONTACT_EMAIL is required")
	}

	port := os.Getenv("PROSPECTOR_PORT")
	if port == "" {
		port = "8082"
	}

	baseURL := os.Getenv("SOURCE_BASE_URL")
	if baseURL == "" {
		baseURL = "https://www.linkedin.com"
	}

	quota, err := positiveInt("SEARCH_QUOTA", 30)
	if err != nil {
		return nil, err
	}

	maxPages, err := positiveInt("SEARCH_MAX_PAGES", 20)
	if err != nil {
		return nil, err
	}

	navSeconds, err := positiveInt("NAV_TIMEOUT_SECONDS", 25)
	if err != nil {
		return nil, err
	}

	retention := 0
	if s := os.Getenv("HISTORY_RETENTION_DAYS"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 0 {
			return nil, fmt.Errorf("HISTORY_RETENTION_DAYS must be a non-negative integer, got %q", s)
		}
		retention = v
	}

	headless := true
	if s := os.Getenv("HEADLESS"); s != "" {
		v, err := strconv.ParseBool(s)
		if err != nil {
			return nil, fmt.Errorf("HEADLESS must be a boolean, got %q", s)
		}
		headless = v
	}

	return &Config{
		Port:                 port,
		DatabaseURL:          dbURL,
		RedisURL:             redisURL,
		SourceBaseURL:        baseURL,
		SearchQuota:          quota,
		SearchMaxPages:       maxPages,
		FallbackContactEmail: fallbackEmail,
		Headless:             headless,
		ChromePath:           os.Getenv("CHROME_PATH"),
		NavTimeout:           time.Duration(navSeconds) * time.Second,
		HistoryRetentionDays: retention,
	}, nil
}

func positiveInt(name string, def int) (int, error) {
	s := os.Getenv(name)
	if s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 1 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", name, s)
	}
	return v, nil
}
