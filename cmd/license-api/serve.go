package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/coder4567/nwf-provider-license-api-1/internal/app"
	"github.com/coder4567/nwf-provider-license-api-1/internal/config"
	"github.com/coder4567/nwf-provider-license-api-1/internal/infrastructure"
)

var configFile string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			cfg *config.Config
			err error
		)
		if configFile != "" {
			cfg, err = config.LoadFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		application, err := app.NewApplication(cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize application: %w", err)
		}
		defer infrastructure.CloseLogFile()

		return application.Run()
	},
}

func init() {
	serveCmd.Flags().StringVarP(&configFile, "config", "c", "", "YAML or TOML config file (default: config.yaml/config.toml lookup)")
}
