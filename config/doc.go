// Package config loads engine configuration from YAML with environment
// variable overrides, applies defaults and validates the result.
package config
