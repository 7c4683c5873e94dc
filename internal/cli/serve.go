package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ppiankov/guardrails/internal/metrics"
	"github.com/ppiankov/guardrails/internal/server"
)

var (
	serveListen        string
	serveMetricsListen string
	serveNoReload      bool
)

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveListen, "listen", "", "gRPC listen address (overrides server.listen)")
	serveCmd.Flags().StringVar(&serveMetricsListen, "metrics-listen", "", "Prometheus /metrics address (overrides server.metrics_listen)")
	serveCmd.Flags().BoolVar(&serveNoReload, "no-reload", false, "Do not watch the config file for changes")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the gRPC guardrails server",
	Long:  "Runs the guardrail registry behind a gRPC reconfiguration service.\nThe config file is watched and re-applied when it changes.",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, hash, path, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder := metrics.NewRecorder(reg)

	srv, err := server.New(cfg, hash, server.Options{
		ConfigPath: path,
		Listen:     serveListen,
		Logger:     logger,
		Recorder:   recorder,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if !serveNoReload && path != "" {
		reloader, err := server.NewReloader(srv)
		if err != nil {
			logger.Warn("hot-reload disabled", zap.Error(err))
		} else {
			go reloader.Run(ctx)
		}
	}

	metricsAddr := cfg.Server.MetricsListen
	if serveMetricsListen != "" {
		metricsAddr = serveMetricsListen
	}
	var metricsServer *http.Server
	if metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler(reg))
		metricsServer = &http.Server{Addr: metricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server failed", zap.Error(err))
			}
		}()
		logger.Info("serving metrics", zap.String("addr", metricsAddr))
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		logger.Info("shutting down guardrails server")
		cancel()
		if metricsServer != nil {
			shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
			defer done()
			_ = metricsServer.Shutdown(shutdownCtx)
		}
		srv.GracefulStop()
	}()

	logger.Info("guardrails server starting",
		zap.String("config", path),
		zap.String("config_hash", hash))
	return srv.Serve()
}
