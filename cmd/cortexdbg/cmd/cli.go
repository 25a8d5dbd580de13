package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"cortexdbg/cli"
	"cortexdbg/logging"
	"cortexdbg/target"
)

var cliCmd = &cobra.Command{
	Use:   "cli",
	Short: "Start an interactive command-line debugging session",
	RunE: func(_ *cobra.Command, _ []string) error {
		log, _ := logging.New(256)
		slog := logging.Component(log, "cli")

		cfg, err := loadConfig()
		if err != nil {
			slog.Warn("starting without a preconfigured target", "error", err)
		} else {
			slog.Info("loaded configuration", "binary", cfg.Binary, "chip", cfg.Chip)
		}

		code, err := cli.Run(context.Background(), newProbeFactory(), os.Stdout)
		if err != nil {
			return err
		}
		os.Exit(code)
		return nil
	},
}

// newProbeFactory returns the target.Probe constructor the CLI/DAP
// front ends attach through. Probe transport hardware drivers are out
// of scope (see DESIGN.md); target.NewMockProbe stands in as the
// offline/demo target every "set-binary"/"set-chip"/"attach" request
// opens.
func newProbeFactory() func() target.Probe {
	return func() target.Probe { return target.NewMockProbe() }
}
