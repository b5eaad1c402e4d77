// Package config loads photosort settings from TOML, applies defaults, and
// validates the sorting parameters before a run starts.
package config
