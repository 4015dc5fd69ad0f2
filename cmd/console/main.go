package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	"onetap-admin/internal/apiclient"
	"onetap-admin/internal/config"
	"onetap-admin/internal/console"
	"onetap-admin/internal/logging"
	"onetap-admin/internal/metrics"
	"onetap-admin/internal/opsserver"
)

func main() {
	cfg := config.Load()

	flag.StringVar(&cfg.APIBaseURL, "api", cfg.APIBaseURL, "attendance backend base URL")
	flag.DurationVar(&cfg.HTTPTimeout, "timeout", cfg.HTTPTimeout, "per-request timeout (0 waits forever)")
	flag.StringVar(&cfg.MetricsAddr, "metrics-addr", cfg.MetricsAddr, "serve /metrics and /healthz on this address")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	flag.BoolVar(&cfg.OpenBrowser, "open-browser", cfg.OpenBrowser, "open exports and QR codes in the system browser")
	flag.Parse()

	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	logger, err := logging.New(cfg.Production(), cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger init failed: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("console failed", zap.Error(err))
	}
}

func run(cfg config.App, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	api := apiclient.New(cfg.APIBaseURL, cfg.HTTPTimeout, m.InstrumentTransport(nil), logger.Named("api"))

	if err := api.Health(ctx); err != nil {
		logger.Warn("backend not reachable yet", zap.String("api", cfg.APIBaseURL), zap.Error(err))
	}

	if cfg.MetricsAddr != "" {
		ops := opsserver.New(cfg.MetricsAddr, m, api, logger.Named("ops"))
		ops.Start()
		defer ops.Shutdown()
	}

	fmt.Fprintf(os.Stdout, "OneTap admin console: %s\n", cfg.APIBaseURL)
	c := console.New(console.Options{
		API:         api,
		In:          os.Stdin,
		Out:         os.Stdout,
		QueueSize:   cfg.InputQueueSize,
		OpenBrowser: cfg.OpenBrowser,
		Log:         logger.Named("console"),
		Metrics:     m,
	})
	return c.Run(ctx)
}
