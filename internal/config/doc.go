// Package config loads, normalizes, and validates execmany configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// EXECMANY_WORKSPACE_DIR. The Config type centralizes every knob the CLI and
// the job services need: where the shared workspace lives, where job state is
// persisted, which commands the execution service may launch, and how the
// execute-many barrier polls for job completion.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
