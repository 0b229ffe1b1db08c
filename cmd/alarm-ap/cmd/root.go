package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/alarm-ap/internal/config"
	"github.com/oshokin/alarm-ap/internal/logger"
	"github.com/oshokin/alarm-ap/internal/service/controller"
	"github.com/oshokin/alarm-ap/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// logLevel overrides the level from the configuration file.
	logLevel string

	// rootCmd represents the base command for running the controller.
	rootCmd = &cobra.Command{
		Use:   "alarm-ap",
		Short: "Run the alarm access point controller.",
		Long: `Runs the alarm controller of the access point.

Phones connected to the access point open http://<gateway>/alarm to switch the
alarm on or off. While armed, the indicator light blinks and the buzzer beeps.
Any other address is redirected to the control page.

Stop with Ctrl-C, by typing d at the console, or with "alarm-ap-ctl shutdown".`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			return controller.Run(ctx, &controller.Options{
				ConfigPath: configPath,
				LogLevel:   logLevel,
			})
		},
	}

	// configCmd groups settings file helpers.
	configCmd = &cobra.Command{
		Use:   "config",
		Short: "Manage the settings file.",
	}

	// configInitCmd writes a settings file with default values.
	configInitCmd = &cobra.Command{
		Use:   "init",
		Short: "Write a settings file with default values.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.Save(configPath, config.Default()); err != nil {
				return err
			}

			cmd.Printf("Settings written to %s\n", configPath)

			return nil
		},
	}
)

// Execute runs the alarm-ap CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	err := rootCmd.Execute()

	logger.Sync()

	if err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.PersistentFlags().
		StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "", "log level override (debug, info, warn, error)")

	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}
