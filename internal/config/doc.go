// Package config loads the stillwater YAML configuration.
//
// Values come from DefaultConfig, then the YAML file, then environment
// variables (STILLWATER_ADDR, STILLWATER_LOG_LEVEL,
// STILLWATER_MASTER_KEY_FILE). Validate rejects a breathing transition that
// is not exactly twice the tick interval.
package config
