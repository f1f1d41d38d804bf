package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/chris/safe-signature-processor/pkg/config"
	"github.com/chris/safe-signature-processor/pkg/handlers"
	"github.com/chris/safe-signature-processor/pkg/handlers/requests"
	"github.com/chris/safe-signature-processor/pkg/metrics"
	"github.com/chris/safe-signature-processor/pkg/processor"
	"github.com/chris/safe-signature-processor/pkg/worker"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("unable to load configuration: %v", err)
	}

	logger := cfg.NewLogger()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		log.Fatalf("unable to load SDK config, %v", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	w, err := worker.New(ctx, cfg, awsCfg, metrics.New(reg), logger)
	if err != nil {
		log.Fatalf("unable to build worker: %v", err)
	}
	defer w.Close()

	trigger, err := processor.NewTrigger(w.Processor, cfg.PollSchedule, logger)
	if err != nil {
		log.Fatalf("unable to schedule poller: %v", err)
	}

	router := handlers.NewRouter(
		handlers.NewApiHandler(w.Scheduler, w.Processor),
		requests.NewRequestsHandler(w.Store, w.Scheduler),
		logger,
		reg,
	)
	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting server", "port", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		logger.Info("starting poller", "schedule", cfg.PollSchedule)
		trigger.Start()
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := trigger.Stop(shutdownCtx); err != nil {
			logger.Warn("poll cycle did not stop in time", "error", err)
		}
		if err := w.Scheduler.Wait(shutdownCtx); err != nil {
			logger.Warn("commands still running at shutdown", "error", err)
		}
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("worker stopped", "error", err)
		os.Exit(1)
	}
	logger.Info("worker stopped")
}
