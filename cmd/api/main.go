package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "orderdesk/docs"
	"orderdesk/pkg/api"
	"orderdesk/pkg/config"
	"orderdesk/pkg/events"
	"orderdesk/pkg/logger"
	"orderdesk/pkg/otel"
)

// @title orderdesk API
// @version 1.0
// @description Accepts storefront orders and records them in a versioned JSON document
// @host localhost:8080
// @BasePath /
func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	cfg, cfgErr := config.Load()
	log := logger.New(os.Stdout, logger.ParseLevel(cfg.LogLevel), "orderdesk", otel.GetTraceID)
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfgErr != nil {
		log.Warn(ctx, "load .env", "error", cfgErr)
	}

	tp, shutdownTracing, err := otel.InitTracing(log, otel.Config{ServiceName: "orderdesk", Host: cfg.OTELHost, Probability: 1.0})
	if err != nil {
		log.Error(ctx, "init tracing", "error", err)
		return err
	}
	defer shutdownTracing(context.Background())

	store, closeStore, err := newStore(ctx, cfg)
	if err != nil {
		log.Error(ctx, "init document store", "backend", cfg.Backend, "error", err)
		return err
	}
	defer closeStore()
	if store == nil {
		log.Warn(ctx, "document store not configured", "backend", cfg.Backend, "missing", cfg.Missing())
	}

	opts := []api.Option{}
	if len(cfg.KafkaBrokers) > 0 {
		pub := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer func() {
			if err := pub.Close(); err != nil {
				log.Warn(ctx, "close kafka publisher", "error", err)
			}
		}()
		opts = append(opts, api.WithPublisher(pub))
		log.Info(ctx, "kafka publisher enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}

	h := api.NewHandler(cfg, store, log, opts...)
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.NewRouter(h, tp.Tracer("orderdesk")),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "listening", "addr", cfg.HTTPAddr, "backend", cfg.Backend)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "server closed", "error", err)
			return err
		}
		return nil
	case <-ctx.Done():
		log.Info(context.Background(), "shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error(shutdownCtx, "server shutdown", "error", err)
			return err
		}
		return nil
	}
}
