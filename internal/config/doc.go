// Package config defines the facility settings file: network endpoints,
// simulation timing, the declared power grids and the devices they feed.
// Load, Save and Validate work on YAML; Validate also fills in defaults.
package config
