// Package config defines the controller settings used by the binaries and
// provides helpers to load, validate and save them in YAML format.
//
// Validate fills every unset field with the reference device defaults, so a
// settings file only needs to name what differs.
package config
