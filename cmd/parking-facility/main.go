package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"parking-facility/internal/config"
	"parking-facility/internal/logging"
	"parking-facility/internal/metrics"
	"parking-facility/internal/parking"
	"parking-facility/internal/server"
	"parking-facility/internal/simulation"
	"parking-facility/internal/stats"
	"parking-facility/internal/telemetry"
)

var (
	mode = flag.String("mode", "cli", "Mode to run: cli, server, both or simulate")
	port = flag.String("port", "", "Port for HTTP server (overrides PORT)")
)

type app struct {
	cfg       *config.Config
	telemetry *telemetry.Provider
	attendant *parking.Attendant
	closeFns  []func() error
}

func main() {
	flag.Parse()

	if err := run(); err != nil {
		slog.Error("fatal", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if *port != "" {
		cfg.Port = *port
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tp, err := telemetry.New(ctx, telemetry.Config{
		ServiceName: cfg.OTelServiceName,
		Environment: cfg.Environment,
		Endpoint:    cfg.OTelEndpoint,
	})
	if err != nil {
		return fmt.Errorf("initialize telemetry: %w", err)
	}
	defer shutdownTelemetry(tp)

	if _, err := logging.Init(logging.Options{
		ServiceName: cfg.OTelServiceName,
		Environment: cfg.Environment,
		Level:       cfg.LogLevel,
	}); err != nil {
		return fmt.Errorf("initialize logging: %w", err)
	}

	a, err := newApp(ctx, cfg, tp)
	if err != nil {
		return err
	}
	defer a.close(ctx)

	switch *mode {
	case "cli":
		a.runCLI(ctx)
	case "server":
		return a.runServer(ctx)
	case "both":
		return a.runBoth(ctx)
	case "simulate":
		return a.runSimulation(ctx)
	default:
		return fmt.Errorf("invalid mode %q: must be cli, server, both or simulate", *mode)
	}
	return nil
}

func newApp(ctx context.Context, cfg *config.Config, tp *telemetry.Provider) (*app, error) {
	layout, err := cfg.Layout()
	if err != nil {
		return nil, fmt.Errorf("build layout: %w", err)
	}
	facility, err := parking.NewFacility(layout)
	if err != nil {
		return nil, fmt.Errorf("build facility: %w", err)
	}
	instrumented, err := parking.NewInstrumentedFacility(facility, tp)
	if err != nil {
		return nil, fmt.Errorf("instrument facility: %w", err)
	}
	prometheus.MustRegister(metrics.NewOccupancyCollector(facility.Status))

	a := &app{cfg: cfg, telemetry: tp}

	var recorder stats.Recorder = stats.NewMemoryStore()
	if cfg.RedisURL != "" {
		store, err := stats.NewRedisStoreFromURL(ctx, cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("connect stats store: %w", err)
		}
		recorder = store
		a.closeFns = append(a.closeFns, store.Close)
	}

	policy := cfg.Policy()
	a.attendant = parking.NewAttendant(facility,
		parking.NewEntryGate(1, instrumented, policy, parking.SystemClock),
		parking.NewExitGate(1, instrumented, parking.SystemClock),
		recorder,
	)

	logging.Info(ctx, "parking facility ready",
		slog.Int("levels", facility.Levels()),
		slog.Int("capacity", facility.Capacity()),
		slog.String("pricing", fmt.Sprint(policy)),
	)
	return a, nil
}

func (a *app) close(ctx context.Context) {
	for _, fn := range a.closeFns {
		if err := fn(); err != nil {
			logging.Warn(ctx, "close failed", slog.String("error", err.Error()))
		}
	}
}

func (a *app) newServer() *server.Server {
	return server.NewServer(a.cfg.Port, a.attendant, server.Options{
		ServiceName:    a.cfg.OTelServiceName,
		RateLimitRPS:   a.cfg.RateLimitRPS,
		RateLimitBurst: a.cfg.RateLimitBurst,
	})
}

func (a *app) runCLI(ctx context.Context) {
	shell := parking.NewShell(a.attendant, a.telemetry, os.Stdin, os.Stdout)
	shell.Run(ctx)
}

func (a *app) runServer(ctx context.Context) error {
	srv := a.newServer()

	serverDone := make(chan error, 1)
	go func() {
		serverDone <- srv.Start(ctx)
	}()

	select {
	case err := <-serverDone:
		return serverError(err)
	case <-ctx.Done():
		logging.Info(ctx, "received shutdown signal")
	}

	return a.shutdownServer(srv)
}

func (a *app) runBoth(ctx context.Context) error {
	srv := a.newServer()

	serverDone := make(chan error, 1)
	go func() {
		serverDone <- srv.Start(ctx)
	}()

	cliDone := make(chan struct{})
	go func() {
		a.runCLI(ctx)
		close(cliDone)
	}()

	select {
	case err := <-serverDone:
		return serverError(err)
	case <-cliDone:
		logging.Info(ctx, "CLI exited")
	case <-ctx.Done():
		logging.Info(ctx, "received shutdown signal")
	}

	return a.shutdownServer(srv)
}

func (a *app) runSimulation(ctx context.Context) error {
	report, err := simulation.Run(ctx, simulation.LoadConfig(), a.attendant)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	fmt.Printf("admitted %d, gave up %d, departed %d, revenue %.2f in %s\n",
		report.Admitted, report.GaveUp, report.Departed, report.Revenue, report.Elapsed.Round(time.Millisecond))
	return nil
}

func (a *app) shutdownServer(srv *server.Server) error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}

func serverError(err error) error {
	if err == nil || errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return fmt.Errorf("server: %w", err)
}

func shutdownTelemetry(tp *telemetry.Provider) {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := tp.Shutdown(shutdownCtx); err != nil {
		slog.Error("error shutting down telemetry", slog.String("error", err.Error()))
	}
}
