// Package control implements the HTTP control page of the alarm controller.
//
// It is split the way a request flows through it: ParseRequest extracts the
// method, path and query from the raw bytes, Generate renders the page from
// the shared alarm state (toggling it first when asked to), and Conn is the
// per-client state machine that ties both to a transport endpoint.
//
// All buffers are allocated once per connection with a fixed capacity.
// Inbound data is truncated to fit; outbound content that does not fit is a
// capacity error and nothing is sent.
package control
