// Package config loads, normalizes, and validates marquee's TOML
// configuration. Secrets (bot token, catalog API key) can be supplied or
// overridden through environment variables so they never have to live in the
// config file.
package config
