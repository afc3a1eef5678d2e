// Package config loads, normalizes, and validates cinelake configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, loads an optional .env file next to the config,
// and honours environment fallbacks such as KAGGLE_USERNAME and KAGGLE_KEY. The
// Config type centralizes every knob the ingestion and transform stages need,
// including the list of sources to ingest.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
