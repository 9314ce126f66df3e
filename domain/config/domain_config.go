package config

import "time"

// DomainConfig holds all configurable business rules and constraints
type DomainConfig struct {
	// Submission constraints
	DailyPostLimit   int
	MaxCaptionLength int
	MaxTextLength    int

	// Track constraints
	TrackNodeLimit int
	TrackMaxAge    time.Duration

	// Conclusion constraints
	ConclusionCandidateLimit  int
	ConclusionComparisonLimit int

	// Read-path limits
	TrackHistoryLimit int
	NodeListLimit     int
}

// DefaultDomainConfig returns the default domain configuration
func DefaultDomainConfig() *DomainConfig {
	return &DomainConfig{
		// Submission constraints
		DailyPostLimit:   30,
		MaxCaptionLength: 90,
		MaxTextLength:    5000,

		// Track constraints
		TrackNodeLimit: 10,
		TrackMaxAge:    7 * 24 * time.Hour,

		// Conclusion constraints
		ConclusionCandidateLimit:  6,
		ConclusionComparisonLimit: 3,

		// Read-path limits
		TrackHistoryLimit: 12,
		NodeListLimit:     50,
	}
}

// DevelopmentDomainConfig returns development-specific configuration
func DevelopmentDomainConfig() *DomainConfig {
	cfg := DefaultDomainConfig()

	// Short-lived tracks make expiry testable by hand
	cfg.DailyPostLimit = 100
	cfg.TrackMaxAge = time.Hour

	return cfg
}

// LoadDomainConfig loads domain configuration based on environment
func LoadDomainConfig(environment string) *DomainConfig {
	switch environment {
	case "development":
		return DevelopmentDomainConfig()
	default:
		return DefaultDomainConfig()
	}
}
