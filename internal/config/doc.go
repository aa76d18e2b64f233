// Package config loads, normalizes, and validates autolink configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// AUTOLINK_ROOTS. The Config type centralizes every knob the CLI and the
// linking engine need, so the library location, root directories, worker
// counts and custom file types are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// absolute paths, canonical log formats, and clear validation errors.
package config
