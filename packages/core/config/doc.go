// Package config handles configuration loading and management for opensos.
//
// It provides functionality for:
//   - Loading configuration from .opensos.json or .opensos.yml files
//   - Default configuration values
//   - Merging file values with command line overrides
package config
