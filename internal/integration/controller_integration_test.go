package integration

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/alarm-ap/internal/api/grpc/operator"
	domain "github.com/oshokin/alarm-ap/internal/domain/alarm"
)

// TestController_TogglesOverHTTP runs two clients against the real runtime:
// one enables the alarm, the next disables it.
func TestController_TogglesOverHTTP(t *testing.T) {
	t.Parallel()

	c := startController(t)
	client := newHTTPClient()
	ops := c.operatorClient(t)

	resp, body := c.get(t, client, "/alarm?alarm=1")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "text/html; charset=utf-8", resp.Header.Get("Content-Type"))
	require.Contains(t, body, "<p>ATIVADO</p>")
	require.Contains(t, body, `href="?alarm=0"`)

	require.Eventually(t, func() bool {
		status, err := ops.GetStatus(context.Background())

		return err == nil && status.GetFields()[operator.FieldAlarmActive].GetBoolValue() &&
			status.GetFields()[operator.FieldDisplayLine1].GetStringValue() == domain.DisplayAlarm.Line1
	}, 2*time.Second, 20*time.Millisecond)

	resp, body = c.get(t, client, "/alarm?alarm=0")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, "<p>DESATIVADO</p>")
	require.Contains(t, body, `href="?alarm=1"`)

	require.Eventually(t, func() bool {
		snap := c.coord.Snapshot()

		return !snap.Active && !snap.BeepActive && snap.Phase == domain.PhaseDisabled
	}, 2*time.Second, 20*time.Millisecond)
}

// TestController_RedirectsOtherPaths checks the captive redirect.
func TestController_RedirectsOtherPaths(t *testing.T) {
	t.Parallel()

	c := startController(t)

	resp, body := c.get(t, newHTTPClient(), "/generate_204")
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "http://192.168.4.1/alarm", resp.Header.Get("Location"))
	require.Empty(t, body)
	require.False(t, c.coord.Snapshot().Active)
}

// TestController_OperatorShutdown stops the loop through the operator API.
func TestController_OperatorShutdown(t *testing.T) {
	t.Parallel()

	c := startController(t)
	ops := c.operatorClient(t)

	require.NoError(t, ops.Shutdown(context.Background(), &domain.Actor{Hostname: "test-host", Username: "test-user"}))

	select {
	case err := <-c.done:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("controller did not stop")
	}

	snap := c.coord.Snapshot()
	require.False(t, snap.Listening)
	require.Equal(t, domain.DisplayStopped, snap.Display)

	require.Eventually(t, func() bool {
		conn, err := net.DialTimeout("tcp", c.httpAddr, 200*time.Millisecond)
		if err != nil {
			return true
		}

		_ = conn.Close()

		return false
	}, 2*time.Second, 50*time.Millisecond)
}

// TestController_StateSurvivesConnections keeps the alarm on across clients.
func TestController_StateSurvivesConnections(t *testing.T) {
	t.Parallel()

	c := startController(t)
	client := newHTTPClient()

	resp, body := c.get(t, client, "/alarm?alarm=1")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, "<p>ATIVADO</p>")

	resp, _ = c.get(t, client, "/")
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "http://192.168.4.1/alarm", resp.Header.Get("Location"))

	resp, body = c.get(t, client, "/alarm")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, "<p>ATIVADO</p>")
}
