// Package cmd wires the cortexdbg binary's subcommands with
// spf13/cobra: "cli" for an interactive prompt and "dap" for the Debug
// Adapter Protocol server, both sharing the same config.Session flags.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"cortexdbg/config"
)

var (
	cfgFile string
	v       *viper.Viper
)

// RootCmd is the base "cortexdbg" command; Execute runs it from main.
var RootCmd = &cobra.Command{
	Use:   "cortexdbg",
	Short: "An on-host debugger for embedded ARM Cortex-M firmware",
	Long: `cortexdbg attaches to a Cortex-M target over a debug probe and
reconstructs source-level state (stack frames, local variables,
breakpoints) from the target's DWARF debug information.`,
}

// Execute runs RootCmd, exiting with status 1 on any returned error.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	RootCmd.AddCommand(cliCmd, dapCmd)

	flags := RootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "path to a TOML config file")
	flags.String("binary", "", "path to the ELF binary carrying DWARF debug information")
	flags.String("chip", "", "target chip name")
	flags.Int("probe-number", 0, "which attached debug probe to use")
	flags.Int("dap-port", config.DefaultDAPPort, "TCP port the DAP server listens on (127.0.0.1 only)")
	flags.StringSlice("breakpoints", nil, "file:line breakpoints (loaded into the configuration; not set by the cli or dap subcommands)")

	cobra.OnInitialize(func() {
		v = config.New(cfgFile)
		_ = config.BindFlags(v, RootCmd.PersistentFlags())
	})
}

// loadConfig materializes a config.Session from flags/env/file. A
// missing binary or chip is returned rather than treated as fatal here:
// the "cli" subcommand only logs the result and always starts with an
// empty session that set-binary/set-chip attach interactively.
func loadConfig() (*config.Session, error) {
	return config.Load(v)
}
