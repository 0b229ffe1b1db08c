package control

import (
	"context"
	"errors"
	"fmt"
	"time"

	domain "github.com/oshokin/alarm-ap/internal/domain/alarm"
	"github.com/oshokin/alarm-ap/internal/logger"
)

// State is the lifecycle position of a client connection.
type State uint8

const (
	// StateAccepted is a connection that has not been set up yet.
	StateAccepted State = iota
	// StateAwaiting waits for a request.
	StateAwaiting
	// StateResponding has queued a response and waits for delivery.
	StateResponding
	// StateClosing asked its owner to close it.
	StateClosing
	// StateClosed has been released. Every handler is a no-op.
	StateClosed
)

// String returns the state name used in logs.
func (s State) String() string {
	switch s {
	case StateAccepted:
		return "accepted"
	case StateAwaiting:
		return "awaiting_request"
	case StateResponding:
		return "responding"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Outcome tells the owner of a connection what to do after an event.
type Outcome uint8

const (
	// OutcomeContinue keeps the connection open.
	OutcomeContinue Outcome = iota
	// OutcomeClose closes the connection gracefully.
	OutcomeClose
	// OutcomeAbort drops the connection without a graceful close.
	OutcomeAbort
)

// String returns the outcome name used in logs.
func (o Outcome) String() string {
	switch o {
	case OutcomeContinue:
		return "continue"
	case OutcomeClose:
		return "close"
	case OutcomeAbort:
		return "abort"
	default:
		return "unknown"
	}
}

// Response headers. Both announce the end of the exchange.
const (
	okHeader = "HTTP/1.1 200 OK\r\n" +
		"Content-Length: %d\r\n" +
		"Content-Type: text/html; charset=utf-8\r\n" +
		"Connection: close\r\n\r\n"
	redirectHeader = "HTTP/1.1 302 Found\r\n" +
		"Location: http://%s%s\r\n" +
		"Content-Length: 0\r\n" +
		"Connection: close\r\n\r\n"
)

var (
	// ErrBodyTooLarge is returned when the page does not fit the body buffer.
	ErrBodyTooLarge = errors.New("content too large")
	// ErrHeaderTooLarge is returned when the response header does not fit the header buffer.
	ErrHeaderTooLarge = errors.New("header too large")
)

// Writer queues bytes on the client stream. Delivery is reported back through OnSent.
type Writer interface {
	Write(p []byte) error
}

// Limits are the fixed buffer capacities of a connection.
type Limits struct {
	// HeaderCapacity is shared by the raw request and the response headers.
	HeaderCapacity int
	// BodyCapacity is the response body buffer.
	BodyCapacity int
}

// Conn is the state machine of one client connection. It never closes the
// transport itself: every handler returns an Outcome and the owner performs
// the close, then calls MarkClosed.
type Conn struct {
	state State

	// headers holds the request on the way in and the response headers on the way out.
	headers *Buffer
	body    *Buffer

	acknowledged int
	headerLen    int
	bodyLen      int

	server *domain.State
	out    Writer
	err    error
}

// NewConn allocates the buffers of a new connection.
func NewConn(out Writer, server *domain.State, limits Limits) *Conn {
	return &Conn{
		state:   StateAccepted,
		headers: NewBuffer(limits.HeaderCapacity),
		body:    NewBuffer(limits.BodyCapacity),
		server:  server,
		out:     out,
	}
}

// State returns the lifecycle position.
func (c *Conn) State() State {
	return c.state
}

// Err returns the error that ended the connection, if any.
func (c *Conn) Err() error {
	return c.err
}

// Acknowledged returns how many response bytes the peer confirmed.
func (c *Conn) Acknowledged() int {
	return c.acknowledged
}

// ResponseLength returns the total length of the queued response.
func (c *Conn) ResponseLength() int {
	return c.headerLen + c.bodyLen
}

// OnAccept finishes setting up the connection.
func (c *Conn) OnAccept(ctx context.Context) Outcome {
	if c.state != StateAccepted {
		return OutcomeContinue
	}

	c.state = StateAwaiting
	logger.Debug(ctx, "Awaiting request")

	return OutcomeContinue
}

// OnReceive handles inbound bytes: parse, render, queue the response.
//
//nolint:funlen // One linear pass from request to queued response.
func (c *Conn) OnReceive(ctx context.Context, now time.Time, data []byte) Outcome {
	if c.state != StateAwaiting {
		logger.DebugKV(ctx, "Discarding data", "state", c.state, "bytes", len(data))

		return OutcomeContinue
	}

	if kept := c.headers.Load(data); kept < len(data) {
		logger.DebugKV(ctx, "Request truncated", "received", len(data), "kept", kept)
	}

	req := ParseRequest(c.headers.Bytes())
	if req.Method != MethodGet {
		logger.DebugKV(ctx, "Ignoring request", "bytes", c.headers.Len())

		return OutcomeContinue
	}

	bodyLen, err := Generate(ctx, c.body, req.Path, req.Query, c.server, now)
	if err != nil {
		return c.fail(ctx, fmt.Errorf("%w: %w", ErrBodyTooLarge, err))
	}

	// Path and query alias the header buffer; log them before it is reused.
	logger.InfoKV(ctx, "Request received", "path", string(req.Path), "query", string(req.Query), "body_length", bodyLen)

	c.headers.Reset()

	if bodyLen == 0 {
		_, err = fmt.Fprintf(c.headers, redirectHeader, c.server.Gateway, ControlPath)
	} else {
		_, err = fmt.Fprintf(c.headers, okHeader, bodyLen)
	}

	if err != nil {
		return c.fail(ctx, fmt.Errorf("%w: %w", ErrHeaderTooLarge, err))
	}

	c.headerLen = c.headers.Len()
	c.bodyLen = bodyLen
	c.acknowledged = 0
	c.state = StateResponding

	if err = c.out.Write(c.headers.Bytes()); err != nil {
		return c.fail(ctx, fmt.Errorf("write header: %w", err))
	}

	if c.bodyLen > 0 {
		if err = c.out.Write(c.body.Bytes()); err != nil {
			return c.fail(ctx, fmt.Errorf("write body: %w", err))
		}
	}

	return OutcomeContinue
}

// OnSent accounts delivered bytes and closes once the whole response is acknowledged.
func (c *Conn) OnSent(ctx context.Context, n int) Outcome {
	if c.state != StateResponding {
		return OutcomeContinue
	}

	c.acknowledged += n

	if c.acknowledged < c.headerLen+c.bodyLen {
		return OutcomeContinue
	}

	logger.DebugKV(ctx, "Response delivered", "bytes", c.acknowledged)
	c.state = StateClosing

	return OutcomeClose
}

// OnPoll handles the idle timeout.
func (c *Conn) OnPoll(ctx context.Context) Outcome {
	if c.state >= StateClosing {
		return OutcomeContinue
	}

	logger.DebugKV(ctx, "Connection idle, closing", "state", c.state)
	c.state = StateClosing

	return OutcomeClose
}

// OnPeerClosed handles the client closing its side.
func (c *Conn) OnPeerClosed(ctx context.Context) Outcome {
	if c.state >= StateClosing {
		return OutcomeContinue
	}

	logger.Debug(ctx, "Connection closed by peer")
	c.state = StateClosing

	return OutcomeClose
}

// OnError handles a transport error reported for the connection.
func (c *Conn) OnError(ctx context.Context, err error) Outcome {
	if c.state >= StateClosing {
		return OutcomeContinue
	}

	logger.WarnKV(ctx, "Connection error", "error", err)
	c.err = err
	c.state = StateClosing

	return OutcomeClose
}

// MarkClosed records that the owner released the connection.
func (c *Conn) MarkClosed() {
	c.state = StateClosed
}

// fail ends the connection because of a local error.
func (c *Conn) fail(ctx context.Context, err error) Outcome {
	logger.ErrorKV(ctx, "Aborting connection", "error", err)
	c.err = err
	c.state = StateClosing

	return OutcomeAbort
}
