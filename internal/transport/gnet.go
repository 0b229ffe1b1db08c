package transport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/panjf2000/gnet/v2"
	"go.uber.org/zap/zapcore"

	"github.com/oshokin/alarm-ap/internal/logger"
)

const (
	// eventQueueSize is how many events may wait for the controller loop.
	eventQueueSize = 64
	// maxReadSize bounds the copy taken from the socket per receive.
	maxReadSize = 4096
)

// errUnknownConnection is reported when gnet hands over a connection without our context.
var errUnknownConnection = errors.New("connection has no endpoint")

// GnetNetwork runs one gnet event loop and forwards its callbacks as Events.
type GnetNetwork struct {
	gnet.BuiltinEventEngine

	addr   string
	events chan Event
	engine gnet.Engine

	booted   chan struct{}
	stopped  chan struct{}
	runErr   chan error
	stopOnce sync.Once
}

// Listen binds addr ("host:port") and starts the event loop.
func Listen(ctx context.Context, addr string) (*GnetNetwork, error) {
	n := &GnetNetwork{
		addr:    addr,
		events:  make(chan Event, eventQueueSize),
		booted:  make(chan struct{}),
		stopped: make(chan struct{}),
		runErr:  make(chan error, 1),
	}

	go func() {
		n.runErr <- gnet.Run(n, "tcp://"+addr,
			gnet.WithMulticore(false),
			gnet.WithNumEventLoop(1),
			gnet.WithTCPNoDelay(gnet.TCPNoDelay),
			gnet.WithLogger(logger.Named("gnet", zapcore.WarnLevel)),
		)
	}()

	select {
	case <-n.booted:
		logger.InfoKV(ctx, "Network runtime started", "address", addr)

		return n, nil
	case err := <-n.runErr:
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}
}

// Events implements Network.
func (n *GnetNetwork) Events() <-chan Event {
	return n.events
}

// Close stops the event loop. Pending events are discarded.
func (n *GnetNetwork) Close(ctx context.Context) error {
	var err error

	n.stopOnce.Do(func() {
		close(n.stopped)

		if err = n.engine.Stop(ctx); err != nil {
			err = fmt.Errorf("stop network runtime: %w", err)

			return
		}

		select {
		case runErr := <-n.runErr:
			if runErr != nil {
				err = fmt.Errorf("network runtime: %w", runErr)
			}
		case <-ctx.Done():
			err = ctx.Err()
		}
	})

	return err
}

// OnBoot records the engine once the listener is up.
func (n *GnetNetwork) OnBoot(eng gnet.Engine) gnet.Action {
	n.engine = eng
	close(n.booted)

	return gnet.None
}

// OnOpen announces a new client.
func (n *GnetNetwork) OnOpen(c gnet.Conn) ([]byte, gnet.Action) {
	ep := &gnetEndpoint{
		id:     uuid.NewString(),
		conn:   c,
		remote: remoteAddr(c),
		net:    n,
	}

	c.SetContext(ep)
	n.emit(Event{Kind: EventAccept, Endpoint: ep})

	return nil, gnet.None
}

// OnTraffic forwards a copy of the inbound bytes.
func (n *GnetNetwork) OnTraffic(c gnet.Conn) gnet.Action {
	ep, ok := c.Context().(*gnetEndpoint)
	if !ok {
		return gnet.Close
	}

	buf, err := c.Next(-1)
	if err != nil {
		n.emit(Event{Kind: EventError, Endpoint: ep, Err: fmt.Errorf("read: %w", err)})

		return gnet.Close
	}

	if len(buf) > maxReadSize {
		buf = buf[:maxReadSize]
	}

	n.emit(Event{Kind: EventReceive, Endpoint: ep, Data: bytes.Clone(buf)})

	return gnet.None
}

// OnClose reports the end of a connection, whoever closed it.
func (n *GnetNetwork) OnClose(c gnet.Conn, err error) gnet.Action {
	ep, ok := c.Context().(*gnetEndpoint)
	if !ok {
		return gnet.None
	}

	if err != nil {
		n.emit(Event{Kind: EventError, Endpoint: ep, Err: err})
	} else {
		n.emit(Event{Kind: EventClosed, Endpoint: ep})
	}

	return gnet.None
}

// emit queues ev unless the runtime is stopping.
func (n *GnetNetwork) emit(ev Event) {
	select {
	case n.events <- ev:
	case <-n.stopped:
	}
}

// gnetEndpoint adapts a gnet connection to Endpoint.
type gnetEndpoint struct {
	id     string
	conn   gnet.Conn
	remote string
	net    *GnetNetwork
}

// ID implements Endpoint.
func (e *gnetEndpoint) ID() string {
	return e.id
}

// RemoteAddr implements Endpoint.
func (e *gnetEndpoint) RemoteAddr() string {
	return e.remote
}

// Write queues p on the event loop and reports delivery as EventSent.
func (e *gnetEndpoint) Write(p []byte) error {
	if e.conn == nil {
		return errUnknownConnection
	}

	size := len(p)

	return e.conn.AsyncWrite(p, func(_ gnet.Conn, err error) error {
		if err != nil {
			e.net.emit(Event{Kind: EventError, Endpoint: e, Err: fmt.Errorf("write: %w", err)})

			return nil
		}

		e.net.emit(Event{Kind: EventSent, Endpoint: e, Sent: size})

		return nil
	})
}

// Close implements Endpoint.
func (e *gnetEndpoint) Close() error {
	return e.conn.Close()
}

// Abort implements Endpoint. gnet has no reset primitive, so it closes.
func (e *gnetEndpoint) Abort() {
	_ = e.conn.Close()
}

// remoteAddr renders the peer address of c.
func remoteAddr(c gnet.Conn) string {
	if addr := c.RemoteAddr(); addr != nil {
		return addr.String()
	}

	return "unknown"
}
