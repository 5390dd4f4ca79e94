// Package cmd implements the smm-asset CLI commands using Cobra.
//
// Available commands:
//   - login: Log in and print the session state
//   - assets: List the assets the user may report as
//   - report: Send one position report and print the reply command
//   - search: Find the closest search, optionally accepting it
//   - complete: Mark a search finished
//   - track: Replay a YAML track file as position reports
//   - version: Show smm-asset version information
//
// Server settings are read from .smm-asset.yaml, SMM_* environment
// variables and flags, with flags taking precedence.
package cmd
