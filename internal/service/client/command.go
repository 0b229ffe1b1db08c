package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oshokin/alarm-ap/internal/api/grpc/operator"
	"github.com/oshokin/alarm-ap/internal/config"
	"github.com/oshokin/alarm-ap/internal/logger"
	"github.com/oshokin/alarm-ap/internal/service/common"
)

// Options configures the operator client commands.
type Options struct {
	// ConfigPath to YAML settings file, defaults to standard filename if empty.
	ConfigPath string

	// Address overrides the operator address from config when specified.
	Address string

	// Out receives the status document. Defaults to standard output.
	Out io.Writer

	// Wait keeps polling after a shutdown request until the controller is gone.
	Wait bool
}

// waitPollInterval is the delay between checks while waiting for the controller to stop.
const waitPollInterval = 1 * time.Second

// Status prints the controller status as JSON.
func Status(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "alarm-ap-ctl")

	client, address, err := connect(ctx, opts)
	if err != nil {
		return err
	}

	defer func() {
		_ = client.Close()
	}()

	status, err := client.GetStatus(ctx)
	if err != nil {
		return err
	}

	logger.DebugKV(ctx, "Status received", "operator_address", address, "summary", formatStatus(status))

	return writeStatus(outputOf(opts), status)
}

// Shutdown asks the controller to stop on behalf of the current user.
func Shutdown(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "alarm-ap-ctl")

	// Identify current user and hostname for the audit line.
	actor, err := common.DetectActor()
	if err != nil {
		return err
	}

	client, address, err := connect(ctx, opts)
	if err != nil {
		return err
	}

	defer func() {
		_ = client.Close()
	}()

	if err = client.Shutdown(ctx, actor); err != nil {
		return err
	}

	logger.InfoKV(ctx, "Shutdown requested", "operator_address", address, "actor", actor)

	if !opts.Wait {
		return nil
	}

	return waitStopped(ctx, client)
}

// waitStopped polls the controller until it stops answering.
func waitStopped(ctx context.Context, client *common.Client) error {
	ticker := time.NewTicker(waitPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			status, err := client.GetStatus(ctx)
			if err != nil {
				logger.Info(ctx, "Controller stopped")

				return nil
			}

			logger.Infof(ctx, "Controller still running: %s", formatStatus(status))
		}
	}
}

// connect resolves the operator address and dials it.
func connect(ctx context.Context, opts *Options) (*common.Client, string, error) {
	settings, err := config.Load(opts.ConfigPath)
	switch {
	case err == nil:
	case errors.Is(err, os.ErrNotExist):
		settings = config.Default()
	default:
		return nil, "", err
	}

	address := settings.Operator.ListenAddress
	if opts.Address != "" {
		address = opts.Address
	}

	client, err := common.Dial(ctx, address, common.WithCallTimeout(settings.Timeout))
	if err != nil {
		return nil, "", err
	}

	return client, address, nil
}

func outputOf(opts *Options) io.Writer {
	if opts.Out != nil {
		return opts.Out
	}

	return os.Stdout
}

// writeStatus prints status as indented JSON.
func writeStatus(w io.Writer, status *structpb.Struct) error {
	data, err := protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(status)
	if err != nil {
		return fmt.Errorf("encode status: %w", err)
	}

	data = append(data, '\n')

	if _, err = w.Write(data); err != nil {
		return fmt.Errorf("write status: %w", err)
	}

	return nil
}

// formatStatus renders the status as a readable log line.
func formatStatus(status *structpb.Struct) string {
	if status == nil {
		return "<nil status>"
	}

	fields := status.GetFields()

	state := "disabled"
	if fields[operator.FieldAlarmActive].GetBoolValue() {
		state = "enabled"
	}

	return fmt.Sprintf("alarm %s, phase %s, %d connection(s) (%s)",
		state,
		fields[operator.FieldPhase].GetStringValue(),
		int(fields[operator.FieldConnections].GetNumberValue()),
		fields[operator.FieldUpdatedAt].GetStringValue())
}
