// Package cmd implements the xunitspec CLI commands using Cobra.
//
// Available commands:
//   - report: Replay an event stream into a console transcript and XUnit XML
//   - validate: Check an event stream against its JSON schema
//   - version: Show xunitspec version information
package cmd
