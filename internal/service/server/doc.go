// Package server runs the facility simulation behind the gRPC admin API.
//
// Run loads the settings file, builds the facility, serves FacilityService
// and the Prometheus endpoint, and drives the tick loop until the context is
// canceled.
package server
