package config

import "github.com/abdul-hamid-achik/xunitspec/packages/events"

const (
	// DefaultSuiteName labels the testsuite element when no name is configured
	DefaultSuiteName = "Mocha Tests"
	// DefaultSlow is the duration above which a test is reported as slow
	DefaultSlow = events.DefaultSlow
)

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Output:    "",
		SuiteName: DefaultSuiteName,
		NoColor:   BoolPtr(false),
		Slow:      DefaultSlow,
		Stats:     BoolPtr(false),
	}
}

// IsDefault returns true if the config matches defaults
func (c *Config) IsDefault() bool {
	defaults := DefaultConfig()
	return c.Output == defaults.Output &&
		c.SuiteName == defaults.SuiteName &&
		c.GetNoColor() == defaults.GetNoColor() &&
		c.Slow == defaults.Slow &&
		c.GetStats() == defaults.GetStats()
}
