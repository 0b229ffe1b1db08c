package controller

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/oshokin/alarm-ap/internal/logger"
)

// keyInterrupt is Ctrl-C as read from a raw line.
const keyInterrupt = 0x03

// watchKeyboard requests shutdown when the operator types d.
// It does nothing unless in is an interactive terminal.
func watchKeyboard(ctx context.Context, in *os.File, onShutdown func()) {
	if !term.IsTerminal(int(in.Fd())) {
		logger.Debug(ctx, "Standard input is not a terminal, shutdown key disabled")

		return
	}

	logger.Info(ctx, "Type d and press Enter to stop")

	go func() {
		if err := scanKeys(in, onShutdown); err != nil {
			logger.WarnKV(ctx, "Keyboard watcher stopped", "error", err)
		}
	}()
}

// scanKeys reads r until a shutdown key and then calls onShutdown once.
func scanKeys(r io.Reader, onShutdown func()) error {
	reader := bufio.NewReader(r)

	for {
		key, err := reader.ReadByte()
		if errors.Is(err, io.EOF) {
			return nil
		}

		if err != nil {
			return err
		}

		switch key {
		case 'd', 'D', keyInterrupt:
			onShutdown()

			return nil
		}
	}
}
