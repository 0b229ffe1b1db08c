// Package operator exposes the controller status and the shutdown request over gRPC.
//
// Messages are protobuf well-known types, so the service is registered from
// a hand-written descriptor instead of generated stubs.
package operator
