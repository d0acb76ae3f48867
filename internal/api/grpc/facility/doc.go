// Package facility implements the gRPC transport for the facility admin API.
//
// Requests and responses travel as google.protobuf.Struct documents, so the
// service descriptor is declared by hand instead of generated. The package
// provides the descriptor, a server adapting a business-service interface and
// a thin client stub.
package facility
