package captive

import (
	"context"
	"fmt"

	"github.com/grandcat/zeroconf"

	"github.com/oshokin/alarm-ap/internal/api/http/control"
	"github.com/oshokin/alarm-ap/internal/logger"
)

const (
	// ServiceType is the advertised mDNS service.
	ServiceType = "_http._tcp"
	// ServiceDomain is the mDNS domain.
	ServiceDomain = "local."
)

// Advertisement is a running mDNS registration.
type Advertisement struct {
	server *zeroconf.Server
}

// Advertise announces the control page as instance on the gateway address.
func Advertise(ctx context.Context, instance, gateway string, port int) (*Advertisement, error) {
	server, err := zeroconf.RegisterProxy(
		instance,
		ServiceType,
		ServiceDomain,
		port,
		instance,
		[]string{gateway},
		TXTRecords(),
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("register mdns service: %w", err)
	}

	logger.InfoKV(ctx, "mDNS service registered", "instance", instance, "host", instance+"."+ServiceDomain, "port", port)

	return &Advertisement{server: server}, nil
}

// TXTRecords returns the TXT entries of the service.
func TXTRecords() []string {
	return []string{"path=" + control.ControlPath}
}

// Shutdown withdraws the registration.
func (a *Advertisement) Shutdown() {
	if a == nil || a.server == nil {
		return
	}

	a.server.Shutdown()
}
