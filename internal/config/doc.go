// Package config loads, normalizes, and validates newsctl configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and locates the project root of the news
// tool. The Config type centralizes every knob the daily run and the deploy
// flow need: how the news tool is invoked, where run logs land, and which
// remote host receives deployments.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, a resolved project root, and clear validation errors.
package config
