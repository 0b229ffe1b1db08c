package controller

import (
	"context"
	"errors"
	"fmt"
	"net/netip"
	"os"

	"github.com/oshokin/alarm-ap/internal/actuator"
	"github.com/oshokin/alarm-ap/internal/api/http/control"
	"github.com/oshokin/alarm-ap/internal/config"
	"github.com/oshokin/alarm-ap/internal/coordinator"
	"github.com/oshokin/alarm-ap/internal/device"
	domain "github.com/oshokin/alarm-ap/internal/domain/alarm"
	"github.com/oshokin/alarm-ap/internal/logger"
	"github.com/oshokin/alarm-ap/internal/service/captive"
	"github.com/oshokin/alarm-ap/internal/service/common"
	"github.com/oshokin/alarm-ap/internal/transport"
	"github.com/oshokin/alarm-ap/internal/version"
)

// Options controls the alarm-ap process.
type Options struct {
	// ConfigPath specifies the path to settings YAML file.
	ConfigPath string
	// LogLevel overrides the level from the settings file.
	LogLevel string
}

var errInvalidLogLevel = errors.New("invalid log level")

// Run starts the controller and blocks until shutdown.
//
//nolint:funlen // Start-up order is easier to follow in one place.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "alarm-ap")

	settings, err := loadSettings(ctx, opts.ConfigPath)
	if err != nil {
		return err
	}

	if err = applyLogLevel(settings.LogLevel, opts.LogLevel); err != nil {
		return err
	}

	logger.Info(ctx, version.Banner("alarm-ap"))

	if err = common.EnsureSingleInstance(); err != nil {
		return err
	}

	indicator, err := device.OpenIndicator(ctx, settings.Indicator)
	if err != nil {
		return fmt.Errorf("open indicator: %w", err)
	}
	defer closeQuietly(ctx, "indicator", indicator.Close)

	display, err := device.OpenDisplay(settings.Display, os.Stdout)
	if err != nil {
		return fmt.Errorf("open display: %w", err)
	}
	defer closeQuietly(ctx, "display", display.Close)

	network, err := transport.Listen(ctx, settings.ListenAddress())
	if err != nil {
		return fmt.Errorf("start network: %w", err)
	}

	coord, err := coordinator.New(coordinatorConfig(settings), network, indicator, display)
	if err != nil {
		_ = network.Close(context.WithoutCancel(ctx))

		return fmt.Errorf("create coordinator: %w", err)
	}

	stopOperator, err := startOperator(ctx, settings.Operator.ListenAddress, coord)
	if err != nil {
		_ = network.Close(context.WithoutCancel(ctx))

		return fmt.Errorf("start operator endpoint: %w", err)
	}
	defer stopOperator()

	stopCaptive := startCaptive(ctx, settings)
	defer stopCaptive()

	if settings.Operator.Keyboard {
		watchKeyboard(ctx, os.Stdin, func() {
			coord.RequestShutdown(ctx, consoleActor())
		})
	}

	logger.InfoKV(ctx, "Access point ready",
		"ssid", settings.AccessPoint.SSID,
		"url", "http://"+settings.GatewayAddress+control.ControlPath,
		"listen_address", settings.ListenAddress())

	if err = coord.Run(ctx); err != nil {
		return fmt.Errorf("run coordinator: %w", err)
	}

	return nil
}

// loadSettings reads the settings file, falling back to defaults when it does not exist.
func loadSettings(ctx context.Context, path string) (*config.Config, error) {
	settings, err := config.Load(path)
	switch {
	case err == nil:
		return settings, nil
	case errors.Is(err, os.ErrNotExist):
		logger.WarnKV(ctx, "Settings file not found, using defaults", "path", path)

		return config.Default(), nil
	default:
		return nil, fmt.Errorf("load settings: %w", err)
	}
}

// applyLogLevel sets the global level; override wins over the settings file.
func applyLogLevel(fromSettings, override string) error {
	name := fromSettings
	if override != "" {
		name = override
	}

	if name == "" {
		return nil
	}

	level, ok := logger.ParseLogLevel(name)
	if !ok {
		return fmt.Errorf("%w: %q", errInvalidLogLevel, name)
	}

	logger.SetLevel(level)

	return nil
}

// coordinatorConfig maps settings onto the loop parameters.
func coordinatorConfig(settings *config.Config) coordinator.Config {
	return coordinator.Config{
		Gateway:      settings.GatewayAddress,
		Backlog:      settings.Backlog,
		PollTimeout:  settings.PollTimeout,
		TickInterval: settings.TickInterval,
		Limits: control.Limits{
			HeaderCapacity: settings.HeaderCapacity,
			BodyCapacity:   settings.BodyCapacity,
		},
		Actuator: actuator.Config{
			ToggleInterval: settings.Alarm.ToggleInterval,
			PulseDuration:  settings.Alarm.PulseDuration,
			Tone: domain.Tone{
				FrequencyHz: settings.Alarm.BuzzerFrequency,
				DutyPercent: settings.Alarm.BuzzerDuty,
			},
		},
	}
}

// startCaptive starts the optional DNS responder and mDNS advertisement.
// Failures are logged; the control page works without them.
func startCaptive(ctx context.Context, settings *config.Config) func() {
	var stops []func()

	if settings.CaptiveDNS.Enabled {
		gateway, _ := netip.ParseAddr(settings.GatewayAddress)

		server, err := captive.NewDNSServer(gateway, settings.CaptiveDNS.TTL)
		if err == nil {
			err = server.Start(ctx, settings.CaptiveDNS.ListenAddress)
		}

		if err != nil {
			logger.WarnKV(ctx, "Captive DNS disabled", "error", err)
		} else {
			stops = append(stops, func() {
				shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), settings.Timeout)
				defer cancel()

				closeQuietly(ctx, "captive dns", func() error { return server.Shutdown(shutdownCtx) })
			})
		}
	}

	if settings.MDNS.Enabled {
		adv, err := captive.Advertise(ctx, settings.MDNS.Instance, settings.GatewayAddress, settings.HTTPPort)
		if err != nil {
			logger.WarnKV(ctx, "mDNS advertisement disabled", "error", err)
		} else {
			stops = append(stops, adv.Shutdown)
		}
	}

	return func() {
		for i := len(stops) - 1; i >= 0; i-- {
			stops[i]()
		}
	}
}

// consoleActor identifies a shutdown requested at the device console.
func consoleActor() *domain.Actor {
	actor, err := common.DetectActor()
	if err != nil {
		return &domain.Actor{Hostname: "localhost", Username: "console"}
	}

	return actor
}

func closeQuietly(ctx context.Context, name string, closeFn func() error) {
	if err := closeFn(); err != nil {
		logger.Warnf(ctx, "Failed to close %s: %v", name, err)
	}
}
