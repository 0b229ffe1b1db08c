package device

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"go.bug.st/serial"

	domain "github.com/oshokin/alarm-ap/internal/domain/alarm"
	"github.com/oshokin/alarm-ap/internal/logger"
)

// serialFrame is one line of the bridge protocol.
type serialFrame struct {
	Output      string `json:"output"`
	On          bool   `json:"on"`
	FrequencyHz uint32 `json:"frequency_hz,omitempty"`
	DutyPercent uint8  `json:"duty_percent,omitempty"`
}

// SerialIndicator sends output commands to a microcontroller over a serial line.
type SerialIndicator struct {
	mu   sync.Mutex
	port io.WriteCloser
}

// OpenSerialIndicator opens portName at the given baud rate.
func OpenSerialIndicator(ctx context.Context, portName string, baudRate int) (*SerialIndicator, error) {
	port, err := serial.Open(portName, &serial.Mode{BaudRate: baudRate})
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", portName, err)
	}

	logger.InfoKV(ctx, "Serial indicator opened", "port", portName, "baud_rate", baudRate)

	return NewSerialIndicator(port), nil
}

// NewSerialIndicator wraps an already open line.
func NewSerialIndicator(port io.WriteCloser) *SerialIndicator {
	return &SerialIndicator{port: port}
}

// Apply writes cmd as a JSON line.
func (s *SerialIndicator) Apply(_ context.Context, cmd domain.Command) error {
	frame := serialFrame{
		Output: cmd.Output.String(),
		On:     cmd.On,
	}

	if cmd.On {
		frame.FrequencyHz = cmd.Tone.FrequencyHz
		frame.DutyPercent = cmd.Tone.DutyPercent
	}

	line, err := json.Marshal(frame)
	if err != nil {
		return fmt.Errorf("encode command: %w", err)
	}

	line = append(line, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err = s.port.Write(line); err != nil {
		return fmt.Errorf("write command: %w", err)
	}

	return nil
}

// Close releases the serial port.
func (s *SerialIndicator) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.port.Close()
}
