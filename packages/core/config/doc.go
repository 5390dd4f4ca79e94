// Package config handles configuration loading and management for smm-asset.
//
// It provides functionality for:
//   - Loading configuration from .smm-asset.yaml or smm-asset.yaml files
//   - Default configuration values
//   - Merging command line and environment overrides
package config
