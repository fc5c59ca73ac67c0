// Package config loads, normalizes, and validates the TOML configuration
// file. Defaults apply when the file is absent; every path field is expanded
// and absolute after Load.
package config
