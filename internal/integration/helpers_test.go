package integration

import (
	"context"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"

	"github.com/oshokin/alarm-ap/internal/api/grpc/operator"
	"github.com/oshokin/alarm-ap/internal/config"
	"github.com/oshokin/alarm-ap/internal/coordinator"
	"github.com/oshokin/alarm-ap/internal/device"
	"github.com/oshokin/alarm-ap/internal/service/common"
	"github.com/oshokin/alarm-ap/internal/transport"
)

// reservePort returns a free loopback address.
func reservePort(t *testing.T) string {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	addr := l.Addr().String()
	_ = l.Close()

	return addr
}

// controller is a running coordinator with its operator endpoint.
type controller struct {
	httpAddr     string
	operatorAddr string
	coord        *coordinator.Coordinator
	done         chan error
}

// startController runs the real network runtime and control loop on loopback.
func startController(t *testing.T) *controller {
	t.Helper()

	settings := config.Default()
	settings.Display.Driver = config.DriverNone

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	httpAddr := reservePort(t)

	network, err := transport.Listen(ctx, httpAddr)
	require.NoError(t, err)

	display, err := device.OpenDisplay(settings.Display, io.Discard)
	require.NoError(t, err)

	cfg := coordinator.Config{
		Gateway:      settings.GatewayAddress,
		Backlog:      settings.Backlog,
		PollTimeout:  settings.PollTimeout,
		TickInterval: settings.TickInterval,
	}
	cfg.Limits.HeaderCapacity = settings.HeaderCapacity
	cfg.Limits.BodyCapacity = settings.BodyCapacity
	cfg.Actuator.ToggleInterval = settings.Alarm.ToggleInterval
	cfg.Actuator.PulseDuration = settings.Alarm.PulseDuration

	coord, err := coordinator.New(cfg, network, device.NewLogIndicator(), display)
	require.NoError(t, err)

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	grpcServer := grpc.NewServer()
	operator.Register(grpcServer, operator.NewServer(coord))

	go func() { _ = grpcServer.Serve(lis) }()
	t.Cleanup(grpcServer.Stop)

	c := &controller{
		httpAddr:     httpAddr,
		operatorAddr: lis.Addr().String(),
		coord:        coord,
		done:         make(chan error, 1),
	}

	go func() { c.done <- coord.Run(ctx) }()

	return c
}

// operatorClient dials the operator endpoint.
func (c *controller) operatorClient(t *testing.T) *common.Client {
	t.Helper()

	client, err := common.Dial(context.Background(), c.operatorAddr, common.WithCallTimeout(3*time.Second))
	require.NoError(t, err)

	t.Cleanup(func() { _ = client.Close() })

	return client
}

// newHTTPClient returns a client that reports redirects instead of following them.
func newHTTPClient() *http.Client {
	return &http.Client{
		Timeout: 3 * time.Second,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
		Transport: &http.Transport{DisableKeepAlives: true},
	}
}

// get fetches path and returns status, headers and body.
func (c *controller) get(t *testing.T, client *http.Client, path string) (*http.Response, string) {
	t.Helper()

	resp, err := client.Get("http://" + c.httpAddr + path)
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp, string(body)
}
