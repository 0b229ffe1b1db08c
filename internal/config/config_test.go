package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestValidate_FillsDefaults checks that a zero config becomes the reference device settings.
func TestValidate_FillsDefaults(t *testing.T) {
	t.Parallel()

	settings := new(Config)
	require.NoError(t, Validate(settings))

	require.Equal(t, DefaultGatewayAddress, settings.GatewayAddress)
	require.Equal(t, DefaultHTTPPort, settings.HTTPPort)
	require.Equal(t, DefaultBacklog, settings.Backlog)
	require.Equal(t, DefaultPollTimeout, settings.PollTimeout)
	require.Equal(t, DefaultTickInterval, settings.TickInterval)
	require.Equal(t, DefaultHeaderCapacity, settings.HeaderCapacity)
	require.Equal(t, DefaultBodyCapacity, settings.BodyCapacity)
	require.Equal(t, DriverLog, settings.Indicator.Driver)
	require.Equal(t, DriverConsole, settings.Display.Driver)
	require.Less(t, settings.Alarm.PulseDuration, settings.Alarm.ToggleInterval)
	require.Equal(t, "192.168.4.1:80", settings.ListenAddress())
}

// TestValidate_Rejects covers the invalid settings the controller refuses to start with.
func TestValidate_Rejects(t *testing.T) {
	t.Parallel()

	cases := map[string]*Config{
		"ipv6 gateway":   {GatewayAddress: "fe80::1"},
		"hostname":       {GatewayAddress: "alarm.local"},
		"port":           {HTTPPort: 70000},
		"backlog":        {Backlog: -1},
		"slow tick":      {TickInterval: 100 * time.Millisecond},
		"long pulse":     {Alarm: Alarm{ToggleInterval: 100 * time.Millisecond, PulseDuration: 200 * time.Millisecond}},
		"duty":           {Alarm: Alarm{BuzzerDuty: 150}},
		"header":         {HeaderCapacity: 16},
		"indicator":      {Indicator: Indicator{Driver: "gpio"}},
		"serial no port": {Indicator: Indicator{Driver: DriverSerial}},
		"display":        {Display: Display{Driver: "oled"}},
		"operator":       {Operator: Operator{ListenAddress: "bad:address"}},
	}

	for name, settings := range cases {
		require.Error(t, Validate(settings), name)
	}

	require.Error(t, Validate(nil))
}

// TestListenAddress_BindOverride verifies the bind host overrides the gateway for binding only.
func TestListenAddress_BindOverride(t *testing.T) {
	t.Parallel()

	settings := &Config{BindAddress: "127.0.0.1", HTTPPort: 8080}
	require.NoError(t, Validate(settings))
	require.Equal(t, "127.0.0.1:8080", settings.ListenAddress())
	require.Equal(t, DefaultGatewayAddress, settings.GatewayAddress)
}

// TestSaveLoadRoundtrip ensures settings are persisted and loaded back correctly.
func TestSaveLoadRoundtrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")

	settings := Default()
	settings.GatewayAddress = "10.0.0.1"
	settings.Alarm.ToggleInterval = 300 * time.Millisecond
	settings.CaptiveDNS.Enabled = true

	require.NoError(t, Save(path, settings))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, settings, loaded)

	// File exists.
	_, err = os.Stat(path)
	require.NoError(t, err)
}

// TestLoad_PartialFileKeepsDefaults checks that a sparse file only overrides what it names.
func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("http_port: 8080\nalarm:\n  buzzer_frequency_hz: 2000\n"), 0o600))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 8080, loaded.HTTPPort)
	require.Equal(t, uint32(2000), loaded.Alarm.BuzzerFrequency)
	require.Equal(t, DefaultOperatorAddress, loaded.Operator.ListenAddress)
	require.True(t, loaded.Operator.Keyboard)
}
