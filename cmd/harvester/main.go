// Package main wires together the harvester service binary.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/startupconnect/harvester/internal/api"
	"github.com/startupconnect/harvester/internal/clock/system"
	"github.com/startupconnect/harvester/internal/config"
	collyfetcher "github.com/startupconnect/harvester/internal/fetcher/colly"
	"github.com/startupconnect/harvester/internal/harvest"
	"github.com/startupconnect/harvester/internal/logging"
	"github.com/startupconnect/harvester/internal/metrics"
	"github.com/startupconnect/harvester/internal/progress"
	progresssinks "github.com/startupconnect/harvester/internal/progress/sinks"
	memorypublisher "github.com/startupconnect/harvester/internal/publisher/memory"
	pubsubpublisher "github.com/startupconnect/harvester/internal/publisher/pubsub"
	memorystorage "github.com/startupconnect/harvester/internal/storage/memory"
	pgstorage "github.com/startupconnect/harvester/internal/storage/postgres"
)

func main() {
	cfgPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config failed: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics.Init()
	clock := system.New()

	matchStore, emailStore, closeStores, err := buildStores(ctx, cfg, clock)
	if err != nil {
		logger.Fatal("store init failed", zap.Error(err))
	}
	defer closeStores()

	publisher, closePublisher, err := buildPublisher(ctx, cfg)
	if err != nil {
		logger.Fatal("publisher init failed", zap.Error(err))
	}
	defer closePublisher()

	promSink, err := progresssinks.NewPrometheusSink(prometheus.DefaultRegisterer)
	if err != nil {
		logger.Fatal("progress sink init failed", zap.Error(err))
	}
	hub := progress.NewHub(
		progress.Config{Logger: logger.Named("progress")},
		progresssinks.NewLogSink(logger.Named("progress")),
		promSink,
	)

	fetcher := collyfetcher.New(collyfetcher.Config{
		UserAgent: cfg.Crawler.UserAgent,
		Timeout:   cfg.Crawler.FetchTimeout(),
	})

	orchestrator := harvest.NewOrchestrator(
		matchStore,
		emailStore,
		fetcher,
		publisher,
		hub,
		clock,
		harvest.Config{
			MatchConcurrency: cfg.Crawler.MatchConcurrency,
			URLConcurrency:   cfg.Crawler.URLConcurrency,
			FetchTimeout:     cfg.Crawler.FetchTimeout(),
			SitemapTimeout:   cfg.Crawler.SitemapTimeout(),
		},
		logger.Named("harvest"),
	)

	apiServer := api.NewServer(orchestrator, emailStore, cfg, logger.Named("api"))
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           apiServer.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server started", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}
	if err := hub.Close(shutdownCtx); err != nil {
		logger.Warn("progress hub close failed", zap.Error(err))
	}
	logger.Info("shutdown complete")
}

func buildStores(
	ctx context.Context,
	cfg config.Config,
	clock harvest.Clock,
) (harvest.MatchStore, harvest.EmailStore, func(), error) {
	switch cfg.DB.Provider {
	case "memory":
		store := memorystorage.NewStore(clock)
		return store, store, func() {}, nil
	case "postgres":
		pool, err := pgstorage.NewPool(ctx, pgstorage.Config{
			DSN:      cfg.DB.DSN,
			MaxConns: cfg.DB.MaxConns,
			MinConns: cfg.DB.MinConns,
		})
		if err != nil {
			return nil, nil, nil, err
		}
		matchStore, err := pgstorage.NewMatchStore(pool, cfg.DB.MatchTable)
		if err != nil {
			pool.Close()
			return nil, nil, nil, err
		}
		emailStore, err := pgstorage.NewEmailStore(pool, cfg.DB.EmailTable, cfg.DB.MatchTable)
		if err != nil {
			pool.Close()
			return nil, nil, nil, err
		}
		return matchStore, emailStore, pool.Close, nil
	default:
		return nil, nil, nil, fmt.Errorf("unknown db provider %q", cfg.DB.Provider)
	}
}

func buildPublisher(ctx context.Context, cfg config.Config) (harvest.Publisher, func(), error) {
	switch cfg.Publisher.Provider {
	case "memory":
		return memorypublisher.New(), func() {}, nil
	case "pubsub":
		client, err := gcppubsub.NewClient(ctx, cfg.Publisher.ProjectID)
		if err != nil {
			return nil, nil, fmt.Errorf("pubsub client: %w", err)
		}
		topicPublisher := client.Publisher(cfg.Publisher.Topic)
		closeFn := func() {
			topicPublisher.Stop()
			_ = client.Close()
		}
		return pubsubpublisher.New(topicPublisher), closeFn, nil
	default:
		return nil, nil, fmt.Errorf("unknown publisher provider %q", cfg.Publisher.Provider)
	}
}
