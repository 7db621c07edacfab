package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"coindrop/api"
	"coindrop/application"
	"coindrop/config"
	"coindrop/database"
	"coindrop/domain/utils"
	"coindrop/infrastructure"
	"coindrop/infrastructure/observability"

	log "github.com/sirupsen/logrus"
)

// Run initializes and starts the application
func Run(ctx context.Context) (retErr error) {
	cfg := config.Get()
	ConfigureLogging(cfg)

	log.WithField("environment", cfg.Environment).Info("Starting coindrop...")

	shutdown := newShutdownQueue()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := shutdown.drain(shutdownCtx); err != nil {
			log.WithError(err).Error("Shutdown did not complete cleanly")
			retErr = errors.Join(retErr, err)
		}
		log.Info("Shutdown completed")
	}()

	// Initialize metrics
	if err := observability.InitializeGlobalMetrics(ctx, cfg); err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}
	metrics := observability.GetMetrics()
	shutdown.add("metrics", observability.ShutdownGlobalMetrics)

	// Initialize database connection
	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Info("Database connection established successfully")
	shutdown.add("database", func(context.Context) error {
		log.Info("Closing database connection...")
		db.Close()
		return nil
	})

	// Connect to NATS. Without it events stay in-process and no purchases are consumed.
	natsClient := infrastructure.NewNATSClient(cfg.NATSServers)
	var messagePublisher infrastructure.MessagePublisher
	if err := natsClient.Connect(ctx); err != nil {
		log.WithError(err).Warn("NATS unavailable, domain events will not be forwarded and purchases will not be consumed")
		natsClient = nil
	} else {
		messagePublisher = natsClient
		shutdown.add("nats", func(context.Context) error {
			return natsClient.Close()
		})
	}

	eventPublisher := infrastructure.NewNATSEventPublisher(messagePublisher, infrastructure.NewEventSubjectMapper())
	eventPublisher.SetMetrics(metrics)
	if natsClient != nil {
		if err := eventPublisher.EnsureDomainEventStream(natsClient); err != nil {
			return fmt.Errorf("failed to ensure domain event stream: %w", err)
		}
	}

	// Initialize unit of work factory
	uowFactory := infrastructure.NewUnitOfWorkFactory(db, eventPublisher)
	for _, eventType := range observability.TrackedEventTypes {
		uowFactory.RegisterLocalHandler(eventType, metrics.HandleEvent)
	}

	// Initialize application handlers
	rules := cfg.GameRules()
	rng := utils.NewRandomSource()
	handlers := api.Handlers{
		Sessions:   application.NewSessionHandler(uowFactory, rng, rules),
		Collection: application.NewCollectionHandler(uowFactory, rng, rules),
		Inventory:  application.NewInventoryHandler(uowFactory, rng, rules),
		Profiles:   application.NewProfileHandler(uowFactory),
	}

	// Start the expiration sweeper
	sweeper := application.NewExpirationSweeper(uowFactory, cfg.SweepInterval, cfg.SweepBatchSize, metrics)
	stopSweeper := sweeper.Start(ctx)
	shutdown.add("expiration sweeper", func(context.Context) error {
		stopSweeper()
		return nil
	})

	// Start the purchase consumer
	if natsClient != nil {
		cache, err := infrastructure.NewProcessedEventCache(cfg.ProcessedEventCacheSize)
		if err != nil {
			return fmt.Errorf("failed to create processed event cache: %w", err)
		}
		consumer := infrastructure.NewPurchaseConsumer(natsClient, handlers.Inventory, cache, cfg.PurchaseSubject, metrics)
		if err := consumer.Start(ctx); err != nil {
			return fmt.Errorf("failed to start purchase consumer: %w", err)
		}
	}

	// Start the HTTP server
	server := api.NewServer(cfg.HTTPAddr, handlers)
	serverErr := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.HTTPAddr).Info("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()
	shutdown.add("http server", func(ctx context.Context) error {
		return server.Shutdown(ctx)
	})

	// Wait for context cancellation or a server failure
	select {
	case <-ctx.Done():
	case err, ok := <-serverErr:
		if ok {
			return fmt.Errorf("http server failed: %w", err)
		}
	}

	log.Info("Shutting down coindrop...")
	return nil
}

// ConfigureLogging applies the configured level and formatter to the standard logger
func ConfigureLogging(cfg *config.Config) {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.WithError(err).Warnf("Invalid LOG_LEVEL %q, using info", cfg.LogLevel)
		level = log.InfoLevel
	}
	log.SetLevel(level)
	log.SetOutput(os.Stdout)

	switch strings.ToLower(cfg.LogFormat) {
	case "text":
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	default:
		log.SetFormatter(&log.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	}
}
