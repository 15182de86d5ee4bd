package config

import "time"

// DomainConfig holds all configurable business rules and constraints
type DomainConfig struct {
	// Reminder constraints
	MaxTextLength      int
	MinTextLength      int
	MaxTagsPerReminder int
	MaxTagLength       int

	// Scheduling constraints
	SnoozeInterval     time.Duration
	MaxScheduleHorizon time.Duration

	// Classification defaults
	DefaultCategory   string
	DefaultPriority   string
	AllowedPriorities []string
}

// DefaultDomainConfig returns the default domain configuration
func DefaultDomainConfig() *DomainConfig {
	return &DomainConfig{
		// Reminder constraints
		MaxTextLength:      1000,
		MinTextLength:      1,
		MaxTagsPerReminder: 20,
		MaxTagLength:       50,

		// Scheduling constraints
		SnoozeInterval:     10 * time.Minute,
		MaxScheduleHorizon: 365 * 24 * time.Hour,

		// Classification defaults
		DefaultCategory:   "General",
		DefaultPriority:   "Medium",
		AllowedPriorities: []string{"Low", "Medium", "High"},
	}
}

// IsAllowedPriority reports whether p is a recognized priority level
func (c *DomainConfig) IsAllowedPriority(p string) bool {
	if p == "" {
		return true // empty falls back to DefaultPriority
	}
	for _, allowed := range c.AllowedPriorities {
		if allowed == p {
			return true
		}
	}
	return false
}
