package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"cortexdbg/config"
	"cortexdbg/dap"
	"cortexdbg/logging"
)

var dapCmd = &cobra.Command{
	Use:   "dap",
	Short: "Serve the Debug Adapter Protocol over a local TCP port",
	RunE: func(_ *cobra.Command, _ []string) error {
		log, _ := logging.New(256)

		port := config.DefaultDAPPort
		if cfg, err := loadConfig(); cfg != nil && (err == nil || cfg.DAPPort != 0) {
			port = cfg.DAPPort
		}

		server := dap.NewServer(port, log, newProbeFactory())
		return server.ListenAndServe(context.Background())
	},
}
