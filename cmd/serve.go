package cmd

import (
	"fmt"

	"github.com/mselser95/hl-holdtime/internal/app"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve holding-time analysis over HTTP",
	Long: `Starts an HTTP server exposing:

  GET  /api/accounts/{address}/holding-time   single-account report (JSON)
  POST /api/batch                             batch classification
  GET  /metrics                               Prometheus metrics
  GET  /health, /ready                        liveness and readiness

Reports are cached for CACHE_TTL. Upstream failures open a circuit breaker
that fails requests fast for BREAKER_COOLDOWN.`,
	RunE: runServe,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "", "HTTP port (default from HTTP_PORT)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	port, _ := cmd.Flags().GetString("port")

	application, err := app.New(cfg, logger, &app.Options{Port: port})
	if err != nil {
		return fmt.Errorf("create app: %w", err)
	}

	err = application.Run()
	if err != nil {
		return fmt.Errorf("run app: %w", err)
	}

	return nil
}
