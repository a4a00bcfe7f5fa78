// Package config loads the editor configuration from a TOML file, applies
// defaults for everything the file omits, and optionally watches the file
// for changes. A reload publishes the new configuration as a
// "config.changed" event so running modules can pick it up without a
// restart.
package config
