package coordinator

import (
	"context"
	"time"

	"github.com/oshokin/alarm-ap/internal/api/http/control"
	"github.com/oshokin/alarm-ap/internal/logger"
	"github.com/oshokin/alarm-ap/internal/transport"
)

// dispatch routes one network event to its session.
func (c *Coordinator) dispatch(ctx context.Context, now time.Time, ev transport.Event) {
	if ev.Endpoint == nil {
		return
	}

	if ev.Kind == transport.EventAccept {
		c.accept(ctx, now, ev.Endpoint)

		return
	}

	s, ok := c.sessions[ev.Endpoint.ID()]
	if !ok {
		logger.DebugKV(ctx, "Dropping event for released connection", "conn_id", ev.Endpoint.ID(), "kind", ev.Kind)

		return
	}

	s.lastActivity = now

	switch ev.Kind {
	case transport.EventReceive:
		c.settle(s, s.conn.OnReceive(s.ctx, now, ev.Data))
	case transport.EventSent:
		c.settle(s, s.conn.OnSent(s.ctx, ev.Sent))
	case transport.EventClosed:
		s.conn.OnPeerClosed(s.ctx)
		c.release(s, control.OutcomeClose, true)
	case transport.EventError:
		s.conn.OnError(s.ctx, ev.Err)
		c.release(s, control.OutcomeClose, true)
	default:
		logger.WarnKV(s.ctx, "Unexpected network event", "kind", ev.Kind)
	}
}

// accept registers a new session or refuses it when the backlog is full.
func (c *Coordinator) accept(ctx context.Context, now time.Time, ep transport.Endpoint) {
	if len(c.sessions) >= c.cfg.Backlog {
		logger.WarnKV(ctx, "Refusing connection, backlog full",
			"conn_id", ep.ID(),
			"remote_addr", ep.RemoteAddr(),
			"backlog", c.cfg.Backlog)
		ep.Abort()

		return
	}

	s := &session{
		ep:           ep,
		conn:         control.NewConn(ep, c.state, c.cfg.Limits),
		ctx:          logger.WithFields(ctx, "conn_id", ep.ID(), "remote_addr", ep.RemoteAddr()),
		lastActivity: now,
	}

	c.sessions[ep.ID()] = s

	logger.Debug(s.ctx, "Connection accepted")
	c.settle(s, s.conn.OnAccept(s.ctx))
}

// expire polls sessions idle for longer than the poll timeout.
func (c *Coordinator) expire(now time.Time) {
	for _, s := range c.sessions {
		if now.Sub(s.lastActivity) < c.cfg.PollTimeout {
			continue
		}

		outcome := s.conn.OnPoll(s.ctx)
		if outcome == control.OutcomeContinue {
			outcome = control.OutcomeAbort
		}

		c.release(s, outcome, false)
	}
}

// settle releases the session when the handler asked for it.
func (c *Coordinator) settle(s *session, outcome control.Outcome) {
	if outcome == control.OutcomeContinue {
		return
	}

	c.release(s, outcome, false)
}

// release deregisters the session, then closes or aborts its endpoint.
// gone reports that the transport already dropped the connection.
func (c *Coordinator) release(s *session, outcome control.Outcome, gone bool) {
	delete(c.sessions, s.ep.ID())

	if !gone {
		switch outcome {
		case control.OutcomeAbort:
			s.ep.Abort()
		default:
			if err := s.ep.Close(); err != nil {
				logger.WarnKV(s.ctx, "Graceful close failed, aborting", "error", err)
				s.ep.Abort()
			}
		}
	}

	s.conn.MarkClosed()

	logger.DebugKV(s.ctx, "Connection released", "outcome", outcome, "error", s.conn.Err())
}
