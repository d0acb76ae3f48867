package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/oshokin/facility-breach/internal/config"
	"github.com/oshokin/facility-breach/internal/service/monitor"
	"github.com/oshokin/facility-breach/internal/version"
)

var (
	// cfgPath stores the configuration file path.
	cfgPath string
	// interval between status polls.
	interval time.Duration
	// exitOnBreach stops the monitor once the breach is seen.
	exitOnBreach bool

	// rootCmd represents the base command for monitoring the facility.
	rootCmd = &cobra.Command{
		Use:   "facility-monitor [server-address]",
		Short: "Watch facility status and report the breach.",
		Long: `Polls the facility server and logs the breach, the escape countdown and grid changes.

With --exit-on-breach the monitor stops as soon as the breach is reported, which
makes it usable as a blocking step in scripts.
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

			return monitor.Run(ctx, &monitor.Options{
				ConfigPath:    cfgPath,
				ServerAddress: serverAddress,
				PollInterval:  interval,
				ExitOnBreach:  exitOnBreach,
			})
		},
	}
)

// Execute runs the facility-monitor CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.Flags().DurationVarP(&interval, "interval", "i", monitor.DefaultPollInterval, "status polling interval")
	rootCmd.Flags().BoolVarP(&exitOnBreach, "exit-on-breach", "x", false, "exit once the breach is reported")
}
