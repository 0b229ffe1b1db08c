// Package common holds helpers shared by the controller and the operator client.
//
// It provides the operator gRPC client with call timeouts, detection of the
// current system actor for the shutdown audit line, and the single-instance
// guard of the controller.
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common
