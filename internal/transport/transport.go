package transport

import "context"

// EventKind identifies what happened on an endpoint.
type EventKind uint8

const (
	// EventAccept reports a new client.
	EventAccept EventKind = iota + 1
	// EventReceive carries inbound bytes.
	EventReceive
	// EventSent acknowledges delivery of a previous Write.
	EventSent
	// EventClosed reports the connection went away without an error.
	EventClosed
	// EventError reports a transport failure; the connection is unusable.
	EventError
)

// String returns the kind name used in logs.
func (k EventKind) String() string {
	switch k {
	case EventAccept:
		return "accept"
	case EventReceive:
		return "receive"
	case EventSent:
		return "sent"
	case EventClosed:
		return "closed"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// Event is one piece of socket activity.
type Event struct {
	Kind     EventKind
	Endpoint Endpoint
	// Data is set for EventReceive. It is owned by the receiver.
	Data []byte
	// Sent is set for EventSent.
	Sent int
	// Err is set for EventError.
	Err error
}

// Endpoint is one client connection as seen by the controller.
type Endpoint interface {
	// ID is unique for the lifetime of the process.
	ID() string
	// RemoteAddr is the client address for logs.
	RemoteAddr() string
	// Write queues p. The runtime reports delivery with EventSent.
	// p must stay untouched until then.
	Write(p []byte) error
	// Close closes the connection gracefully.
	Close() error
	// Abort drops the connection.
	Abort()
}

// Network is a listening runtime.
type Network interface {
	// Events delivers socket activity in order.
	Events() <-chan Event
	// Close stops listening and releases the runtime.
	Close(ctx context.Context) error
}
