// Package config loads, normalizes, and validates mediadedup settings.
//
// Settings come from built-in defaults, optionally overlaid by a TOML file
// (./mediadedup.toml or the path given with --config). Command-line flags are
// applied by the caller after Load returns.
package config
