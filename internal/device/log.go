package device

import (
	"context"

	domain "github.com/oshokin/alarm-ap/internal/domain/alarm"
	"github.com/oshokin/alarm-ap/internal/logger"
)

// LogIndicator writes output changes to the log.
type LogIndicator struct{}

// NewLogIndicator creates a LogIndicator.
func NewLogIndicator() *LogIndicator {
	return &LogIndicator{}
}

// Apply logs the command.
func (*LogIndicator) Apply(ctx context.Context, cmd domain.Command) error {
	if cmd.Output == domain.OutputAudible && cmd.On {
		logger.DebugKV(ctx, "Output changed",
			"output", cmd.Output,
			"on", cmd.On,
			"frequency_hz", cmd.Tone.FrequencyHz,
			"duty_percent", cmd.Tone.DutyPercent)

		return nil
	}

	logger.DebugKV(ctx, "Output changed", "output", cmd.Output, "on", cmd.On)

	return nil
}

// Close implements Indicator.
func (*LogIndicator) Close() error {
	return nil
}

// LogDisplay writes display updates to the log.
type LogDisplay struct{}

// NewLogDisplay creates a LogDisplay.
func NewLogDisplay() *LogDisplay {
	return &LogDisplay{}
}

// Show logs the text.
func (*LogDisplay) Show(ctx context.Context, text domain.DisplayText) error {
	logger.InfoKV(ctx, "Display updated", "line1", text.Line1, "line2", text.Line2)

	return nil
}

// Close implements Display.
func (*LogDisplay) Close() error {
	return nil
}
