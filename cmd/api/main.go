package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/riskibarqy/betslip-analyzer/internal/app"
	"github.com/riskibarqy/betslip-analyzer/internal/config"
	"github.com/riskibarqy/betslip-analyzer/internal/observability"
	"github.com/riskibarqy/betslip-analyzer/internal/platform/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := logging.NewJSON(cfg.LogLevel)
	logging.SetDefault(logger)
	defer func() {
		_ = logger.Sync()
	}()

	shutdownUptrace, err := observability.InitUptrace(cfg, logger)
	if err != nil {
		logger.Error("init uptrace", "error", err.Error())
		os.Exit(1)
	}

	stopPyroscope, err := observability.InitPyroscope(cfg, logger)
	if err != nil {
		logger.Error("init pyroscope", "error", err.Error())
		os.Exit(1)
	}

	pprofSrv, err := observability.StartPprofServer(cfg, logger)
	if err != nil {
		logger.Error("start pprof server", "error", err.Error())
		os.Exit(1)
	}

	srv, db, err := app.NewHTTPServer(cfg, logger)
	if err != nil {
		logger.Error("build app", "error", err.Error())
		os.Exit(1)
	}

	go func() {
		logger.Info("http server starting", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", "error", err.Error())
			os.Exit(1)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err.Error())
	}
	if err := db.Close(); err != nil {
		logger.Error("close database", "error", err.Error())
	}
	if err := observability.StopPprofServer(pprofSrv, logger, 5*time.Second); err != nil {
		logger.Error("stop pprof server", "error", err.Error())
	}
	if err := stopPyroscope(); err != nil {
		logger.Error("stop pyroscope", "error", err.Error())
	}
	if err := shutdownUptrace(shutdownCtx); err != nil {
		logger.Error("shutdown uptrace", "error", err.Error())
	}

	logger.Info("http server stopped")
}
