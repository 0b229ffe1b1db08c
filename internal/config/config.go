package config

import (
	"errors"
	"fmt"
	"net"
	"net/netip"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the controller settings shared by the alarm-ap binaries.
type Config struct {
	// GatewayAddress is the access point address; used for binding and redirects.
	GatewayAddress string `yaml:"gateway_addr"`
	// BindAddress overrides the host the control page binds to. Defaults to the gateway.
	BindAddress string `yaml:"bind_addr"`
	// HTTPPort is the port of the control page.
	HTTPPort int `yaml:"http_port"`
	// Backlog is how many clients may be served at once. Extra attempts are refused.
	Backlog int `yaml:"backlog"`
	// PollTimeout closes connections that show no activity for this long.
	PollTimeout time.Duration `yaml:"poll_timeout"`
	// TickInterval is the longest the main loop sleeps while no I/O is pending.
	TickInterval time.Duration `yaml:"tick_interval"`
	// HeaderCapacity is the size of the buffer shared by request and response headers.
	HeaderCapacity int `yaml:"header_capacity"`
	// BodyCapacity is the size of the response body buffer.
	BodyCapacity int `yaml:"body_capacity"`
	// Timeout is the duration for operator RPC calls.
	Timeout time.Duration `yaml:"timeout"`
	// LogLevel is the minimum level of the console log.
	LogLevel string `yaml:"log_level"`

	AccessPoint AccessPoint `yaml:"access_point"`
	Alarm       Alarm       `yaml:"alarm"`
	Operator    Operator    `yaml:"operator"`
	Indicator   Indicator   `yaml:"indicator"`
	Display     Display     `yaml:"display"`
	CaptiveDNS  CaptiveDNS  `yaml:"captive_dns"`
	MDNS        MDNS        `yaml:"mdns"`
}

// AccessPoint describes the wireless network the device exposes.
// Radio bring-up is handled outside the controller; the SSID is only reported.
type AccessPoint struct {
	SSID string `yaml:"ssid"`
}

// Alarm holds the blink-and-beep cadence.
type Alarm struct {
	// ToggleInterval is the period of the visual/audible flip.
	ToggleInterval time.Duration `yaml:"toggle_interval"`
	// PulseDuration is how long the buzzer sounds after each flip on.
	PulseDuration time.Duration `yaml:"pulse_duration"`
	// BuzzerFrequency is the tone of the buzzer in Hz.
	BuzzerFrequency uint32 `yaml:"buzzer_frequency_hz"`
	// BuzzerDuty is the PWM duty of the buzzer in percent.
	BuzzerDuty uint8 `yaml:"buzzer_duty_percent"`
}

// Operator configures the local operator channels.
type Operator struct {
	// ListenAddress is the gRPC address of the operator API. Empty disables it.
	ListenAddress string `yaml:"listen_addr"`
	// Keyboard enables the console shutdown key.
	Keyboard bool `yaml:"keyboard"`
}

// Indicator selects the LED/buzzer driver.
type Indicator struct {
	Driver     string `yaml:"driver"`
	SerialPort string `yaml:"serial_port"`
	BaudRate   int    `yaml:"baud_rate"`
}

// Display selects the two-line text display driver.
type Display struct {
	Driver string `yaml:"driver"`
}

// CaptiveDNS configures the responder that resolves every name to the gateway.
type CaptiveDNS struct {
	Enabled       bool          `yaml:"enabled"`
	ListenAddress string        `yaml:"listen_addr"`
	TTL           time.Duration `yaml:"ttl"`
}

// MDNS configures the multicast DNS advertisement of the control page.
type MDNS struct {
	Enabled  bool   `yaml:"enabled"`
	Instance string `yaml:"instance"`
}

const (
	// DefaultConfigFilename is the default filename for controller settings.
	DefaultConfigFilename = "alarm-ap-settings.yaml"

	// DefaultGatewayAddress is the address of the device on its own network.
	DefaultGatewayAddress = "192.168.4.1"

	// DefaultHTTPPort is the control page port.
	DefaultHTTPPort = 80

	// DefaultBacklog serves one client at a time.
	DefaultBacklog = 1

	// DefaultPollTimeout is the idle timeout of a client connection.
	DefaultPollTimeout = 5 * time.Second

	// DefaultTickInterval bounds actuator timing jitter.
	DefaultTickInterval = 10 * time.Millisecond

	// MaxTickInterval keeps the cadence visually and audibly responsive.
	MaxTickInterval = 50 * time.Millisecond

	// DefaultHeaderCapacity is the shared request/response header buffer size.
	DefaultHeaderCapacity = 128

	// DefaultBodyCapacity is the response body buffer size.
	DefaultBodyCapacity = 256

	// MinHeaderCapacity fits the longest header the controller renders for a short gateway address.
	MinHeaderCapacity = 100

	// DefaultTimeout is the default duration for operator calls.
	DefaultTimeout = 5 * time.Second

	// DefaultLogLevel is used when the settings do not name one.
	DefaultLogLevel = "info"

	// DefaultSSID is the name of the access point.
	DefaultSSID = "alarmeresidencial"

	// DefaultToggleInterval is the blink period.
	DefaultToggleInterval = 200 * time.Millisecond

	// DefaultPulseDuration is the beep length; it must stay below the toggle interval.
	DefaultPulseDuration = 100 * time.Millisecond

	// DefaultBuzzerFrequency is the beep tone.
	DefaultBuzzerFrequency = 1000

	// DefaultBuzzerDuty is the buzzer PWM duty.
	DefaultBuzzerDuty = 50

	// DefaultOperatorAddress keeps the operator API on the loopback interface.
	DefaultOperatorAddress = "127.0.0.1:50051"

	// DefaultBaudRate is the speed of the serial actuator bridge.
	DefaultBaudRate = 115200

	// DefaultDNSAddress is where the captive DNS responder listens.
	DefaultDNSAddress = ":53"

	// DefaultDNSTTL is the TTL of captive answers.
	DefaultDNSTTL = 60 * time.Second

	// DefaultMDNSInstance is the advertised service instance name.
	DefaultMDNSInstance = "alarme"

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600
)

// Driver names.
const (
	DriverLog     = "log"
	DriverSerial  = "serial"
	DriverConsole = "console"
	DriverNone    = "none"
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errInvalidGateway is returned when the gateway is not an IPv4 address.
	errInvalidGateway = errors.New("gateway address must be an IPv4 address")
	// errInvalidPort is returned for ports outside 1..65535.
	errInvalidPort = errors.New("http port must be between 1 and 65535")
	// errInvalidBacklog is returned when the backlog is below one.
	errInvalidBacklog = errors.New("backlog must be at least 1")
	// errTickTooLong is returned when the tick interval would make the cadence sluggish.
	errTickTooLong = errors.New("tick interval exceeds the maximum")
	// errPulseTooLong is returned when the beep would outlast the blink period.
	errPulseTooLong = errors.New("pulse duration must be shorter than the toggle interval")
	// errInvalidDuty is returned for duties outside 1..100.
	errInvalidDuty = errors.New("buzzer duty must be between 1 and 100 percent")
	// errHeaderCapacity is returned when no response header could fit.
	errHeaderCapacity = errors.New("header capacity is too small")
	// errUnknownDriver is returned for unsupported driver names.
	errUnknownDriver = errors.New("unknown driver")
	// errSerialPortRequired is returned when the serial driver has no port.
	errSerialPortRequired = errors.New("serial indicator requires a serial port")
)

// Default returns settings matching the reference device.
func Default() *Config {
	cfg := new(Config)
	cfg.Operator.ListenAddress = DefaultOperatorAddress
	cfg.Operator.Keyboard = true

	// Validate only fills defaults on a zero config.
	_ = Validate(cfg)

	return cfg
}

// Load reads configuration from the provided path and validates essential fields.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(contents, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes settings to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// ListenAddress returns the host:port the control page binds to.
func (c *Config) ListenAddress() string {
	host := c.BindAddress
	if host == "" {
		host = c.GatewayAddress
	}

	return net.JoinHostPort(host, strconv.Itoa(c.HTTPPort))
}

// Validate checks the provided settings, filling defaults for unset fields.
//
//nolint:cyclop,funlen // A flat list of checks reads better than helpers.
func Validate(settings *Config) error {
	if settings == nil {
		return errConfigIsNotSet
	}

	fillDefaults(settings)

	addr, err := netip.ParseAddr(settings.GatewayAddress)
	if err != nil || !addr.Is4() {
		return fmt.Errorf("%w: %q", errInvalidGateway, settings.GatewayAddress)
	}

	if settings.HTTPPort < 1 || settings.HTTPPort > 65535 {
		return errInvalidPort
	}

	if settings.Backlog < 1 {
		return errInvalidBacklog
	}

	if settings.TickInterval > MaxTickInterval {
		return fmt.Errorf("%w: %s > %s", errTickTooLong, settings.TickInterval, MaxTickInterval)
	}

	if settings.Alarm.PulseDuration >= settings.Alarm.ToggleInterval {
		return fmt.Errorf("%w: %s >= %s", errPulseTooLong, settings.Alarm.PulseDuration, settings.Alarm.ToggleInterval)
	}

	if settings.Alarm.BuzzerDuty > 100 {
		return errInvalidDuty
	}

	if settings.HeaderCapacity < MinHeaderCapacity {
		return fmt.Errorf("%w: %d < %d", errHeaderCapacity, settings.HeaderCapacity, MinHeaderCapacity)
	}

	switch settings.Indicator.Driver {
	case DriverLog:
	case DriverSerial:
		if settings.Indicator.SerialPort == "" {
			return errSerialPortRequired
		}
	default:
		return fmt.Errorf("%w: indicator %q", errUnknownDriver, settings.Indicator.Driver)
	}

	switch settings.Display.Driver {
	case DriverConsole, DriverLog, DriverNone:
	default:
		return fmt.Errorf("%w: display %q", errUnknownDriver, settings.Display.Driver)
	}

	if settings.Operator.ListenAddress != "" {
		if _, err := net.ResolveTCPAddr("tcp", settings.Operator.ListenAddress); err != nil {
			return fmt.Errorf("invalid operator address: %w", err)
		}
	}

	return nil
}

// fillDefaults sets every zero-valued field to its default.
//
//nolint:cyclop // One branch per field.
func fillDefaults(settings *Config) {
	if settings.GatewayAddress == "" {
		settings.GatewayAddress = DefaultGatewayAddress
	}

	if settings.HTTPPort == 0 {
		settings.HTTPPort = DefaultHTTPPort
	}

	if settings.Backlog == 0 {
		settings.Backlog = DefaultBacklog
	}

	if settings.PollTimeout <= 0 {
		settings.PollTimeout = DefaultPollTimeout
	}

	if settings.TickInterval <= 0 {
		settings.TickInterval = DefaultTickInterval
	}

	if settings.HeaderCapacity == 0 {
		settings.HeaderCapacity = DefaultHeaderCapacity
	}

	if settings.BodyCapacity == 0 {
		settings.BodyCapacity = DefaultBodyCapacity
	}

	if settings.Timeout <= 0 {
		settings.Timeout = DefaultTimeout
	}

	if settings.LogLevel == "" {
		settings.LogLevel = DefaultLogLevel
	}

	if settings.AccessPoint.SSID == "" {
		settings.AccessPoint.SSID = DefaultSSID
	}

	if settings.Alarm.ToggleInterval <= 0 {
		settings.Alarm.ToggleInterval = DefaultToggleInterval
	}

	if settings.Alarm.PulseDuration <= 0 {
		settings.Alarm.PulseDuration = DefaultPulseDuration
	}

	if settings.Alarm.BuzzerFrequency == 0 {
		settings.Alarm.BuzzerFrequency = DefaultBuzzerFrequency
	}

	if settings.Alarm.BuzzerDuty == 0 {
		settings.Alarm.BuzzerDuty = DefaultBuzzerDuty
	}

	if settings.Indicator.Driver == "" {
		settings.Indicator.Driver = DriverLog
	}

	if settings.Indicator.BaudRate <= 0 {
		settings.Indicator.BaudRate = DefaultBaudRate
	}

	if settings.Display.Driver == "" {
		settings.Display.Driver = DriverConsole
	}

	if settings.CaptiveDNS.ListenAddress == "" {
		settings.CaptiveDNS.ListenAddress = DefaultDNSAddress
	}

	if settings.CaptiveDNS.TTL <= 0 {
		settings.CaptiveDNS.TTL = DefaultDNSTTL
	}

	if settings.MDNS.Instance == "" {
		settings.MDNS.Instance = DefaultMDNSInstance
	}
}
