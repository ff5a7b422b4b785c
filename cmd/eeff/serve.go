package main

import (
	"github.com/spf13/cobra"

	"github.com/castlemilk/eeff/internal/extraction"
	"github.com/castlemilk/eeff/internal/server"
)

var (
	serveHost string
	servePort string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the extraction HTTP API",
	Long: `Start the extraction HTTP API.

Endpoints:
  - POST /v1/extract  - multipart "file" field, or raw body with ?filename=
  - POST /v1/parse    - plain text body, matched against the catalog
  - GET  /v1/catalog  - configured categories
  - GET  /health      - health check

Examples:
  eeff serve                    # Start on the configured port (default 8111)
  eeff serve --port 3000        # Start on custom port
  eeff serve --host 0.0.0.0     # Bind to all interfaces`,
	RunE: func(cmd *cobra.Command, args []string) error {
		extCfg, err := appConfig.ExtractionConfig()
		if err != nil {
			return err
		}

		srvCfg := server.Config{
			Host:           appConfig.Server.Host,
			Port:           appConfig.Server.Port,
			AllowedOrigins: appConfig.Server.AllowedOrigins,
			MaxUploadBytes: appConfig.Server.MaxUploadBytes,
		}
		if cmd.Flags().Changed("host") {
			srvCfg.Host = serveHost
		}
		if cmd.Flags().Changed("port") {
			srvCfg.Port = servePort
		}

		srv := server.New(srvCfg, extraction.NewExtractor(extCfg, nil))
		return srv.Start(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "127.0.0.1", "Host to bind to")
	serveCmd.Flags().StringVar(&servePort, "port", "8111", "Port to listen on")
}
