package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/facility-breach/internal/config"
	"github.com/oshokin/facility-breach/internal/service/alarm"
	"github.com/oshokin/facility-breach/internal/version"
)

var (
	// cfgPath stores the configuration file path.
	cfgPath string

	// rootCmd represents the base command for raising the breach.
	rootCmd = &cobra.Command{
		Use:   "facility-alarm [server-address]",
		Short: "Raise the facility breach.",
		Long: `Acts as a remote alarm panel: asks the facility server to latch the breach.

Requests are retried until the server reports the breach, whether this panel
latched it or someone else did first. The breach cannot be reset.
Server address can be provided as argument or loaded from configuration file.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			// Use server address argument if provided, otherwise rely on config.
			var serverAddress string
			if len(args) > 0 {
				serverAddress = args[0]
			}

			return alarm.Run(ctx, &alarm.Options{
				ConfigPath:    cfgPath,
				ServerAddress: serverAddress,
			})
		},
	}
)

// Execute runs the facility-alarm CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
}
