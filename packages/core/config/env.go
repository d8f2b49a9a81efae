package config

import (
	"github.com/kelseyhightower/envconfig"
)

// Env holds the settings read from XUNIT_* environment variables
type Env struct {
	Output    string `envconfig:"XUNIT_FILE"`
	SuiteName string `envconfig:"XUNIT_SUITE_NAME"`
	NoColor   *bool  `envconfig:"XUNIT_NO_COLOR"`
	LogLevel  string `envconfig:"XUNIT_LOG_LEVEL"`
}

// FromEnv reads Env from the process environment.
func FromEnv() (Env, error) {
	var env Env
	if err := envconfig.Process("", &env); err != nil {
		return Env{}, err
	}
	return env, nil
}

// Config returns the environment settings as a Config suitable for Merge.
func (e Env) Config() *Config {
	return &Config{
		Output:    e.Output,
		SuiteName: e.SuiteName,
		NoColor:   e.NoColor,
	}
}
