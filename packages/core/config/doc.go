// Package config handles configuration loading for the xunitspec reporter.
//
// It provides functionality for:
//   - Loading configuration from .xunitspec.yml or .xunitspec.yaml files
//   - Reading overrides from XUNIT_* environment variables
//   - Merging file, environment and command-line settings
package config
