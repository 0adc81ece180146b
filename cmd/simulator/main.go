package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/suvomx1999/Adaptive-Market-Microstructure-Simulator-Execution-Optimizer/internal/config"
	"github.com/suvomx1999/Adaptive-Market-Microstructure-Simulator-Execution-Optimizer/internal/domain"
	"github.com/suvomx1999/Adaptive-Market-Microstructure-Simulator-Execution-Optimizer/internal/handler"
	"github.com/suvomx1999/Adaptive-Market-Microstructure-Simulator-Execution-Optimizer/internal/sim"
)

func main() {
	healthcheck := flag.Bool("healthcheck", false, "Run health check against running server")
	flag.Parse()

	// Handle -healthcheck flag: HTTP GET to localhost:PORT/healthz, exit 0/1.
	if *healthcheck {
		port := os.Getenv("PORT")
		if port == "" {
			port = "8080"
		}
		resp, err := http.Get(fmt.Sprintf("http://localhost:%s/healthz", port))
		if err != nil || resp.StatusCode != http.StatusOK {
			os.Exit(1)
		}
		os.Exit(0)
	}

	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Set up slog logger with configured level.
	var logLevel slog.Level
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Build the simulation.
	simulator, err := sim.New(sim.Options{
		Seed:            cfg.Seed,
		InitialMid:      domain.PriceToTicks(cfg.InitialMid),
		DepthLevels:     cfg.DepthLevels,
		HistoryLimit:    cfg.HistoryLimit,
		TradeLogLimit:   cfg.TradeLogLimit,
		WarmupEvents:    cfg.WarmupEvents,
		BaseLambda:      cfg.BaseLambda,
		TempImpactEta:   cfg.TempImpactEta,
		PermImpactGamma: cfg.PermImpactGamma,
	})
	if err != nil {
		logger.Error("failed to build simulation", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("simulation warmed up",
		slog.Uint64("steps", simulator.CurrentState().Step),
		slog.Float64("mid", simulator.CurrentState().MidPrice),
	)

	// Snapshot stream hub and router.
	hub := handler.NewHub(logger)
	router := handler.NewRouter(simulator, hub, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Optional timed auto-stepping.
	if cfg.AutoStepInterval > 0 {
		stepper := sim.NewAutoStepper(cfg.AutoStepInterval, simulator, hub, logger)
		stepper.Start(ctx)
		logger.Info("auto-stepping enabled", slog.Duration("interval", cfg.AutoStepInterval))
	}

	// Configure HTTP server.
	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	// Start HTTP server in a goroutine.
	go func() {
		logger.Info("server starting", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// Wait for SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("shutdown signal received", slog.String("signal", sig.String()))

	// Graceful shutdown: stop HTTP server, cancel context (stops auto-stepper).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.String("error", err.Error()))
	}
	cancel()

	logger.Info("server stopped")
}
