// Package config loads inkwell configuration.
//
// Settings are merged from three layers, lowest priority first: built-in
// defaults, a TOML or YAML file, and INKWELL_ environment variables. An
// environment variable maps to a dotted path by lowercasing the section
// and camel-casing the rest, so INKWELL_HISTORY_MAX_SIZE sets
// history.maxSize.
package config
