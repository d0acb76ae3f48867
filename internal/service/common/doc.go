// Package common holds helpers shared by several services.
//
// It provides a lightweight gRPC client wrapper for the facility admin API
// with per-call timeouts, and detects the operator (user@host) that is
// attached to every request for the server logs.
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common
