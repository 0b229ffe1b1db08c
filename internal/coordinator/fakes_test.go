package coordinator

import (
	"context"
	"errors"
	"sync"

	domain "github.com/oshokin/alarm-ap/internal/domain/alarm"
	"github.com/oshokin/alarm-ap/internal/transport"
)

var errTestClose = errors.New("test close error")

// fakeNetwork is a Network whose events are pushed by the test.
type fakeNetwork struct {
	events chan transport.Event

	mu     sync.Mutex
	closed bool
}

func newFakeNetwork() *fakeNetwork {
	return &fakeNetwork{events: make(chan transport.Event, 16)}
}

// Events implements transport.Network.
func (n *fakeNetwork) Events() <-chan transport.Event {
	return n.events
}

// Close implements transport.Network.
func (n *fakeNetwork) Close(context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.closed = true

	return nil
}

func (n *fakeNetwork) isClosed() bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	return n.closed
}

// fakeEndpoint records what the coordinator does with a client.
type fakeEndpoint struct {
	id string
	// closeErr is returned by Close.
	closeErr error

	mu      sync.Mutex
	writes  [][]byte
	closed  bool
	aborted bool
}

// ID implements transport.Endpoint.
func (e *fakeEndpoint) ID() string {
	return e.id
}

// RemoteAddr implements transport.Endpoint.
func (e *fakeEndpoint) RemoteAddr() string {
	return "192.168.4.2:50000"
}

// Write implements transport.Endpoint.
func (e *fakeEndpoint) Write(p []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.writes = append(e.writes, append([]byte(nil), p...))

	return nil
}

// Close implements transport.Endpoint.
func (e *fakeEndpoint) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.closed = true

	return e.closeErr
}

// Abort implements transport.Endpoint.
func (e *fakeEndpoint) Abort() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.aborted = true
}

func (e *fakeEndpoint) written() [][]byte {
	e.mu.Lock()
	defer e.mu.Unlock()

	return append([][]byte(nil), e.writes...)
}

func (e *fakeEndpoint) result() (closed, aborted bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.closed, e.aborted
}

// fakeIndicator records applied commands.
type fakeIndicator struct {
	mu       sync.Mutex
	commands []domain.Command
}

// Apply implements Indicator.
func (i *fakeIndicator) Apply(_ context.Context, cmd domain.Command) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.commands = append(i.commands, cmd)

	return nil
}

func (i *fakeIndicator) applied() []domain.Command {
	i.mu.Lock()
	defer i.mu.Unlock()

	return append([]domain.Command(nil), i.commands...)
}

// fakeDisplay records shown texts.
type fakeDisplay struct {
	mu    sync.Mutex
	texts []domain.DisplayText
}

// Show implements Display.
func (d *fakeDisplay) Show(_ context.Context, text domain.DisplayText) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.texts = append(d.texts, text)

	return nil
}

func (d *fakeDisplay) shown() []domain.DisplayText {
	d.mu.Lock()
	defer d.mu.Unlock()

	return append([]domain.DisplayText(nil), d.texts...)
}
