// Package config loads, normalizes, and validates the TOML configuration
// consumed by the pipeline.
//
// Defaults live in Default; Load layers a config file over them, expands all
// path fields, and validates the result. No package keeps process-wide mutable
// configuration: callers pass the loaded Config (or a section of it) into
// constructors explicitly.
package config
