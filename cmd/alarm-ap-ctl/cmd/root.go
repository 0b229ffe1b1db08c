package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/alarm-ap/internal/config"
	"github.com/oshokin/alarm-ap/internal/service/client"
	"github.com/oshokin/alarm-ap/internal/version"
)

var (
	// cfgPath stores the configuration file path.
	cfgPath string
	// address overrides the operator address from the configuration file.
	address string
	// wait keeps the shutdown command running until the controller stops.
	wait bool

	// rootCmd represents the base command of the operator client.
	rootCmd = &cobra.Command{
		Use:   "alarm-ap-ctl",
		Short: "Inspect or stop a running alarm-ap controller.",
		Long: `Talks to the operator endpoint of a running alarm-ap controller.

The operator address is read from the configuration file unless --address is given.`,
	}

	// statusCmd prints the controller status.
	statusCmd = &cobra.Command{
		Use:   "status",
		Short: "Print the controller status as JSON.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			return client.Status(ctx, &client.Options{
				ConfigPath: cfgPath,
				Address:    address,
				Out:        cmd.OutOrStdout(),
			})
		},
	}

	// shutdownCmd asks the controller to stop.
	shutdownCmd = &cobra.Command{
		Use:   "shutdown",
		Short: "Ask the controller to turn the outputs off and stop.",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			return client.Shutdown(ctx, &client.Options{
				ConfigPath: cfgPath,
				Address:    address,
				Wait:       wait,
			})
		},
	}
)

// Execute runs the alarm-ap-ctl CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.PersistentFlags().
		StringVarP(&cfgPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.PersistentFlags().StringVarP(&address, "address", "a", "", "operator address override")

	shutdownCmd.Flags().BoolVarP(&wait, "wait", "w", false, "wait until the controller stops")

	rootCmd.AddCommand(statusCmd, shutdownCmd)
}
