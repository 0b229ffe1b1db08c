package captive

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"time"

	"github.com/miekg/dns"

	"github.com/oshokin/alarm-ap/internal/logger"
)

var errGatewayNotIPv4 = errors.New("gateway must be an IPv4 address")

// DNSServer answers every A query with the gateway address.
type DNSServer struct {
	gateway net.IP
	ttl     uint32

	conn   net.PacketConn
	server *dns.Server
}

// NewDNSServer creates a responder for gateway.
func NewDNSServer(gateway netip.Addr, ttl time.Duration) (*DNSServer, error) {
	if !gateway.Is4() {
		return nil, fmt.Errorf("%w: %s", errGatewayNotIPv4, gateway)
	}

	return &DNSServer{
		gateway: net.IP(gateway.AsSlice()),
		ttl:     uint32(ttl / time.Second),
	}, nil
}

// Start binds listenAddr (UDP) and serves in the background.
func (s *DNSServer) Start(ctx context.Context, listenAddr string) error {
	conn, err := net.ListenPacket("udp", listenAddr)
	if err != nil {
		return fmt.Errorf("listen dns on %s: %w", listenAddr, err)
	}

	s.conn = conn
	s.server = &dns.Server{
		PacketConn: conn,
	}

	ctx = logger.WithName(ctx, "captive-dns")
	s.server.Handler = s.handler(ctx)

	go func() {
		if serveErr := s.server.ActivateAndServe(); serveErr != nil {
			logger.WarnKV(ctx, "DNS responder stopped", "error", serveErr)
		}
	}()

	logger.InfoKV(ctx, "DNS responder started", "address", conn.LocalAddr().String(), "answer", s.gateway.String())

	return nil
}

// Addr returns the bound address once started.
func (s *DNSServer) Addr() net.Addr {
	if s.conn == nil {
		return nil
	}

	return s.conn.LocalAddr()
}

// Shutdown stops serving.
func (s *DNSServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}

	if err := s.server.ShutdownContext(ctx); err != nil {
		return fmt.Errorf("stop dns responder: %w", err)
	}

	return nil
}

// handler replies to every request; write failures are logged at debug level.
func (s *DNSServer) handler(ctx context.Context) dns.HandlerFunc {
	return func(w dns.ResponseWriter, req *dns.Msg) {
		if err := w.WriteMsg(s.answer(req)); err != nil {
			logger.DebugKV(ctx, "Failed to write DNS reply", "remote", w.RemoteAddr(), "error", err)
		}
	}
}

// answer builds the reply to req.
func (s *DNSServer) answer(req *dns.Msg) *dns.Msg {
	resp := new(dns.Msg)
	resp.SetReply(req)
	resp.Authoritative = true

	for _, q := range req.Question {
		if q.Qclass != dns.ClassINET {
			continue
		}

		if q.Qtype != dns.TypeA && q.Qtype != dns.TypeANY {
			continue
		}

		resp.Answer = append(resp.Answer, &dns.A{
			Hdr: dns.RR_Header{
				Name:   q.Name,
				Rrtype: dns.TypeA,
				Class:  dns.ClassINET,
				Ttl:    s.ttl,
			},
			A: s.gateway,
		})
	}

	return resp
}
