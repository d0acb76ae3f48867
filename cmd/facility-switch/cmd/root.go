package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/facility-breach/internal/config"
	"github.com/oshokin/facility-breach/internal/service/switcher"
	"github.com/oshokin/facility-breach/internal/version"
)

var (
	// cfgPath stores the configuration file path.
	cfgPath string
	// serverAddress overrides the server address from the settings file.
	serverAddress string
	// mode is toggle, on or off.
	mode string

	// rootCmd represents the base command for switching power targets.
	rootCmd = &cobra.Command{
		Use:   "facility-switch <target> [target...]",
		Short: "Switch facility power grids and subsystems.",
		Long: `Switches power targets on the facility server, in order.

A target is either a whole grid ("A") or one subsystem of a grid ("A_security").
By default each target is toggled to the opposite of its current state.
With --mode on or --mode off, whole grids are switched to the requested state.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			return switcher.Run(ctx, &switcher.Options{
				ConfigPath:    cfgPath,
				ServerAddress: serverAddress,
				Mode:          switcher.Mode(mode),
				Targets:       args,
			})
		},
	}
)

// Execute runs the facility-switch CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.Flags().StringVarP(&serverAddress, "server", "s", "", "override the server address")
	rootCmd.Flags().StringVarP(&mode, "mode", "m", string(switcher.ModeToggle), "toggle, on or off")
}
