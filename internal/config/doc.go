// Package config loads, normalizes, and validates Reelsmith configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// REELSMITH_SPEECH_API_KEY. Values from .env files in the working directory are
// loaded before those fallbacks are consulted, so the provider key can live next
// to the upload root instead of in the config file.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths and clear validation errors.
package config
