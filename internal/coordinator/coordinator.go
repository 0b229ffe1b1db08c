package coordinator

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/oshokin/alarm-ap/internal/actuator"
	"github.com/oshokin/alarm-ap/internal/api/http/control"
	domain "github.com/oshokin/alarm-ap/internal/domain/alarm"
	"github.com/oshokin/alarm-ap/internal/logger"
	"github.com/oshokin/alarm-ap/internal/transport"
)

// stopTimeout bounds closing the network runtime on exit.
const stopTimeout = 2 * time.Second

var (
	errNetworkClosed = errors.New("network event stream closed")
	errInvalidConfig = errors.New("invalid coordinator config")
)

// Indicator drives the discrete outputs.
type Indicator interface {
	Apply(ctx context.Context, cmd domain.Command) error
}

// Display shows the two-line status text.
type Display interface {
	Show(ctx context.Context, text domain.DisplayText) error
}

// Config holds the loop parameters.
type Config struct {
	// Gateway is the access point address used in redirects.
	Gateway string
	// Backlog is the number of concurrent client sessions.
	Backlog int
	// PollTimeout closes sessions without activity for this long.
	PollTimeout time.Duration
	// TickInterval is the longest wait between two ticks.
	TickInterval time.Duration
	// Limits are the per-connection buffer capacities.
	Limits control.Limits
	// Actuator holds the cadence timings.
	Actuator actuator.Config
}

// session is one accepted client.
type session struct {
	ep   transport.Endpoint
	conn *control.Conn
	// ctx carries the connection log fields.
	ctx          context.Context //nolint:containedctx // Log fields live as long as the session.
	lastActivity time.Time
}

// Coordinator owns the alarm state and the client sessions.
type Coordinator struct {
	cfg       Config
	state     *domain.State
	machine   *actuator.Machine
	network   transport.Network
	indicator Indicator
	display   Display

	sessions map[string]*session
	shown    domain.DisplayText

	shutdown atomic.Bool
	snapshot atomic.Pointer[domain.Snapshot]
}

// New creates a coordinator. The network must already be listening.
func New(cfg Config, network transport.Network, indicator Indicator, display Display) (*Coordinator, error) {
	switch {
	case cfg.Backlog < 1:
		return nil, fmt.Errorf("%w: backlog must be positive", errInvalidConfig)
	case cfg.TickInterval <= 0:
		return nil, fmt.Errorf("%w: tick interval must be positive", errInvalidConfig)
	case cfg.PollTimeout <= 0:
		return nil, fmt.Errorf("%w: poll timeout must be positive", errInvalidConfig)
	case network == nil || indicator == nil || display == nil:
		return nil, fmt.Errorf("%w: network, indicator and display are required", errInvalidConfig)
	}

	now := time.Now()

	c := &Coordinator{
		cfg:       cfg,
		state:     domain.NewState(cfg.Gateway, now),
		machine:   actuator.NewMachine(cfg.Actuator),
		network:   network,
		indicator: indicator,
		display:   display,
		sessions:  make(map[string]*session, cfg.Backlog),
	}

	c.publish(now, domain.DisplayBooting)

	return c, nil
}

// Snapshot returns the last published status. Safe for concurrent use.
func (c *Coordinator) Snapshot() *domain.Snapshot {
	return c.snapshot.Load()
}

// RequestShutdown asks the loop to stop after the current tick. Safe for concurrent use.
func (c *Coordinator) RequestShutdown(ctx context.Context, actor *domain.Actor) {
	if c.shutdown.Swap(true) {
		return
	}

	logger.InfoKV(ctx, "Shutdown requested", "actor", actor)
}

// Run executes the loop until shutdown is requested or ctx is done.
func (c *Coordinator) Run(ctx context.Context) error {
	ctx = logger.WithName(ctx, "coordinator")

	c.boot(ctx)
	defer c.stop(ctx)

	ticker := time.NewTicker(c.cfg.TickInterval)
	defer ticker.Stop()

	events := c.network.Events()

	for {
		c.tick(ctx, time.Now())

		if c.shutdown.Load() {
			return nil
		}

		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return errNetworkClosed
			}

			c.dispatch(ctx, time.Now(), ev)
		case <-ticker.C:
		}
	}
}

// boot shows the start-up text and forces the outputs off.
func (c *Coordinator) boot(ctx context.Context) {
	c.show(ctx, domain.DisplayBooting)
	c.apply(ctx, actuator.Off())

	c.state.Listening = true

	logger.InfoKV(ctx, "Controller started",
		"gateway", c.cfg.Gateway,
		"backlog", c.cfg.Backlog,
		"tick_interval", c.cfg.TickInterval)
}

// tick is one pass of the loop.
func (c *Coordinator) tick(ctx context.Context, now time.Time) {
	result := c.machine.Advance(now, c.state)
	c.apply(ctx, result.Commands)
	c.show(ctx, result.Display)

	c.drain(ctx)
	c.expire(now)
	c.publish(now, result.Display)
}

// drain dispatches the events already queued without waiting for more.
func (c *Coordinator) drain(ctx context.Context) {
	events := c.network.Events()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}

			c.dispatch(ctx, time.Now(), ev)
		default:
			return
		}
	}
}

// stop releases every session, closes the network and turns the outputs off.
func (c *Coordinator) stop(ctx context.Context) {
	for _, s := range c.sessions {
		c.release(s, control.OutcomeAbort, false)
	}

	c.state.Listening = false

	closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), stopTimeout)
	defer cancel()

	if err := c.network.Close(closeCtx); err != nil {
		logger.WarnKV(ctx, "Failed to close network", "error", err)
	}

	c.apply(ctx, actuator.Off())
	c.show(ctx, domain.DisplayStopped)
	c.publish(time.Now(), domain.DisplayStopped)

	logger.Info(ctx, "Controller stopped")
}

// apply sends commands to the indicator. Failures are logged and skipped.
func (c *Coordinator) apply(ctx context.Context, commands []domain.Command) {
	for _, cmd := range commands {
		if err := c.indicator.Apply(ctx, cmd); err != nil {
			logger.WarnKV(ctx, "Failed to apply output command", "output", cmd.Output, "on", cmd.On, "error", err)
		}
	}
}

// show updates the display when the text changed.
func (c *Coordinator) show(ctx context.Context, text domain.DisplayText) {
	if text == c.shown {
		return
	}

	if err := c.display.Show(ctx, text); err != nil {
		logger.WarnKV(ctx, "Failed to update display", "error", err)

		return
	}

	c.shown = text
}

// publish stores a fresh snapshot for readers on other goroutines.
func (c *Coordinator) publish(now time.Time, text domain.DisplayText) {
	c.snapshot.Store(c.state.Snapshot(now, len(c.sessions), text))
}
