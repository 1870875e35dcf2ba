// Package config defines the enumerated configuration for a single reviewer
// invocation, merged from built-in defaults, environment variables, and CLI
// flag overrides. There is no configuration file.
package config
