// Package cmd implements the opensos CLI commands using Cobra.
//
// Available commands:
//   - request: Perform a single engine request against any URL
//   - call: Invoke an encrypted SOS API function
//   - session: Show, list or clear saved sessions
//   - init: Write a starter configuration file
//   - version: Show opensos version information
package cmd
