package cli

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/factlens/internal/app"
	"github.com/ppiankov/factlens/internal/metrics"
	"github.com/ppiankov/factlens/internal/web"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the local web UI",
	Long: `Serve starts a local web UI with a text/URL form, image upload and a
light/dark theme toggle. Prometheus metrics are exposed on /metrics.

Example:
  factlens serve
  factlens serve --addr 127.0.0.1:9090`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "listen address (default: server.addr)")
	_ = viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, log, backend, err := setup("json")
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	m, err := metrics.New(prometheus.NewRegistry())
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	srv := web.NewServer(web.Options{
		NewController: func() *app.Controller {
			return newController(cfg, backend, log, m)
		},
		Themes:        newThemeManager(cfg),
		Metrics:       m,
		Logger:        log,
		MaxImageBytes: cfg.Input.MaxImageBytes,
		Debug:         verbose,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return srv.Run(ctx, cfg.Server.Addr)
}
