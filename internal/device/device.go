package device

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/oshokin/alarm-ap/internal/config"
	domain "github.com/oshokin/alarm-ap/internal/domain/alarm"
)

var errUnknownDriver = errors.New("unknown driver")

// Indicator switches the discrete outputs.
type Indicator interface {
	Apply(ctx context.Context, cmd domain.Command) error
	Close() error
}

// Display shows the status text.
type Display interface {
	Show(ctx context.Context, text domain.DisplayText) error
	Close() error
}

// OpenIndicator builds the configured indicator driver.
func OpenIndicator(ctx context.Context, cfg config.Indicator) (Indicator, error) {
	switch cfg.Driver {
	case config.DriverLog:
		return NewLogIndicator(), nil
	case config.DriverSerial:
		return OpenSerialIndicator(ctx, cfg.SerialPort, cfg.BaudRate)
	default:
		return nil, fmt.Errorf("%w: indicator %q", errUnknownDriver, cfg.Driver)
	}
}

// OpenDisplay builds the configured display driver. out is used by the console driver.
func OpenDisplay(cfg config.Display, out io.Writer) (Display, error) {
	switch cfg.Driver {
	case config.DriverConsole:
		return NewConsoleDisplay(out), nil
	case config.DriverLog:
		return NewLogDisplay(), nil
	case config.DriverNone:
		return nopDisplay{}, nil
	default:
		return nil, fmt.Errorf("%w: display %q", errUnknownDriver, cfg.Driver)
	}
}

// nopDisplay discards every update.
type nopDisplay struct{}

func (nopDisplay) Show(context.Context, domain.DisplayText) error { return nil }

func (nopDisplay) Close() error { return nil }
