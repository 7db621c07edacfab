package observability

import (
	"context"
	"fmt"
	"sync"
	"time"

	"coindrop/config"
	"coindrop/domain/interfaces"
	"coindrop/events"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.34.0"
)

// TrackedEventTypes are the domain events HandleEvent turns into metrics
var TrackedEventTypes = []events.EventType{
	events.EventTypeCoinPlaced,
	events.EventTypeCoinCollected,
	events.EventTypeCoinExpired,
	events.EventTypeSessionStarted,
	events.EventTypeSessionEnded,
}

// MetricsProvider manages OpenTelemetry metrics for the coindrop service
type MetricsProvider struct {
	config        *config.Config
	meterProvider *sdkmetric.MeterProvider
	meter         metric.Meter
	initialized   bool
	enabled       bool
	mu            sync.RWMutex

	// Metric instruments
	coinsPlacedCounter           metric.Int64Counter
	coinsCollectedCounter        metric.Int64Counter
	coinsExpiredCounter          metric.Int64Counter
	coinValueDonatedCounter      metric.Int64Counter
	sessionsStartedCounter       metric.Int64Counter
	sessionsEndedCounter         metric.Int64Counter
	sessionsActiveGauge          metric.Int64UpDownCounter
	purchasesCounter             metric.Int64Counter
	sweepRunsCounter             metric.Int64Counter
	sweepDurationHist            metric.Float64Histogram
	natsMessagesReceivedCounter  metric.Int64Counter
	natsMessagesPublishedCounter metric.Int64Counter
}

// NewMetricsProvider creates a new metrics provider
func NewMetricsProvider(cfg *config.Config) *MetricsProvider {
	return &MetricsProvider{
		config: cfg,
	}
}

// Initialize sets up the OpenTelemetry metrics provider
func (mp *MetricsProvider) Initialize(ctx context.Context) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if mp.initialized {
		log.Debug("Metrics provider already initialized")
		return nil
	}

	if !mp.config.OTelEnabled {
		log.Info("OpenTelemetry metrics disabled")
		mp.initialized = true
		return nil
	}

	res, err := newResource(ctx, mp.config)
	if err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}

	var exporter sdkmetric.Exporter
	switch mp.config.OTelExporterType {
	case "console":
		exporter, err = stdoutmetric.New()
		if err != nil {
			return fmt.Errorf("failed to create console exporter: %w", err)
		}
		log.Info("Using console metric exporter")

	case "otlp":
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		exporter, err = otlpmetricgrpc.New(ctx,
			otlpmetricgrpc.WithEndpoint(mp.config.OTelOTLPEndpoint),
			otlpmetricgrpc.WithInsecure(),
		)
		if err != nil {
			return fmt.Errorf("failed to create OTLP exporter: %w", err)
		}
		log.Infof("Using OTLP metric exporter: %s", mp.config.OTelOTLPEndpoint)

	case "none":
		log.Info("Metrics export disabled (exporter_type='none')")
		mp.initialized = true
		return nil

	default:
		return fmt.Errorf("unknown exporter type: %s", mp.config.OTelExporterType)
	}

	mp.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(
			sdkmetric.NewPeriodicReader(
				exporter,
				sdkmetric.WithInterval(time.Duration(mp.config.OTelExportIntervalMillis)*time.Millisecond),
			),
		),
	)
	otel.SetMeterProvider(mp.meterProvider)

	return mp.initializeWithProvider(mp.meterProvider)
}

// newResource describes this process. The explicit attributes carry no schema URL,
// so they merge with whatever schema the SDK detectors report.
func newResource(ctx context.Context, cfg *config.Config) (*resource.Resource, error) {
	return resource.New(ctx,
		resource.WithFromEnv(),
		resource.WithTelemetrySDK(),
		resource.WithAttributes(
			semconv.ServiceName(cfg.OTelServiceName),
			attribute.String("environment", cfg.Environment),
		),
	)
}

// initializeWithProvider creates the instruments from provider. Callers hold mp.mu.
func (mp *MetricsProvider) initializeWithProvider(provider metric.MeterProvider) error {
	mp.meter = provider.Meter("coindrop")

	if err := mp.createInstruments(); err != nil {
		return fmt.Errorf("failed to create instruments: %w", err)
	}

	mp.initialized = true
	mp.enabled = true
	log.Info("Metrics provider initialized successfully")
	return nil
}

func (mp *MetricsProvider) createInstruments() error {
	counters := []struct {
		target      *metric.Int64Counter
		name        string
		description string
	}{
		{&mp.coinsPlacedCounter, CoinsPlacedTotal, "Total number of coins placed on the map"},
		{&mp.coinsCollectedCounter, CoinsCollectedTotal, "Total number of coins collected by players"},
		{&mp.coinsExpiredCounter, CoinsExpiredTotal, "Total number of coins returned to inventory uncollected"},
		{&mp.coinValueDonatedCounter, CoinValueDonated, "Total value released to players in minor units"},
		{&mp.sessionsStartedCounter, SessionsStartedTotal, "Total number of sessions started"},
		{&mp.sessionsEndedCounter, SessionsEndedTotal, "Total number of sessions ended"},
		{&mp.purchasesCounter, PurchasesTotal, "Total number of purchase events consumed"},
		{&mp.sweepRunsCounter, SweepRunsTotal, "Total number of expiration sweeps"},
		{&mp.natsMessagesReceivedCounter, NATSMessagesReceivedTotal, "Total number of NATS messages received"},
		{&mp.natsMessagesPublishedCounter, NATSMessagesPublishedTotal, "Total number of NATS messages published"},
	}

	for _, c := range counters {
		counter, err := mp.meter.Int64Counter(c.name,
			metric.WithDescription(c.description),
			metric.WithUnit("1"),
		)
		if err != nil {
			return fmt.Errorf("failed to create counter %s: %w", c.name, err)
		}
		*c.target = counter
	}

	var err error
	mp.sessionsActiveGauge, err = mp.meter.Int64UpDownCounter(
		SessionsActive,
		metric.WithDescription("Current number of active sessions"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create sessions active gauge: %w", err)
	}

	mp.sweepDurationHist, err = mp.meter.Float64Histogram(
		SweepDuration,
		metric.WithDescription("Duration of expiration sweeps in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return fmt.Errorf("failed to create sweep duration histogram: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the metrics provider
func (mp *MetricsProvider) Shutdown(ctx context.Context) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.enabled = false
	if mp.meterProvider != nil {
		return mp.meterProvider.Shutdown(ctx)
	}
	return nil
}

// HandleEvent records metrics for a domain event. It is registered as a
// local handler on the event publisher for every TrackedEventTypes entry.
func (mp *MetricsProvider) HandleEvent(ctx context.Context, event events.Event) error {
	if !mp.isEnabled() {
		return nil
	}

	switch e := event.(type) {
	case events.CoinPlacedEvent:
		mp.coinsPlacedCounter.Add(ctx, 1)
	case events.CoinCollectedEvent:
		mp.coinsCollectedCounter.Add(ctx, 1)
		mp.coinValueDonatedCounter.Add(ctx, e.Denomination)
	case events.CoinExpiredEvent:
		mp.coinsExpiredCounter.Add(ctx, 1,
			metric.WithAttributes(attribute.String(LabelReason, string(e.Reason))),
		)
	case events.SessionStartedEvent:
		mp.sessionsStartedCounter.Add(ctx, 1)
		mp.sessionsActiveGauge.Add(ctx, 1)
	case events.SessionEndedEvent:
		mp.sessionsEndedCounter.Add(ctx, 1,
			metric.WithAttributes(attribute.String(LabelStatus, e.Status)),
		)
		mp.sessionsActiveGauge.Add(ctx, -1)
	}
	return nil
}

// RecordSweep records the outcome of an expiration sweep
func (mp *MetricsProvider) RecordSweep(result interfaces.SweepResult, duration time.Duration) {
	if !mp.isEnabled() {
		return
	}

	ctx := context.Background()
	mp.sweepRunsCounter.Add(ctx, 1)
	mp.sweepDurationHist.Record(ctx, duration.Seconds())
}

// RecordPurchase records a consumed purchase event by outcome
func (mp *MetricsProvider) RecordPurchase(outcome string) {
	if !mp.isEnabled() {
		return
	}

	mp.purchasesCounter.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String(LabelOutcome, outcome)),
	)
}

// RecordNATSMessageReceived records a NATS message being received
func (mp *MetricsProvider) RecordNATSMessageReceived(eventType string) {
	if !mp.isEnabled() {
		return
	}

	mp.natsMessagesReceivedCounter.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String(LabelEventType, eventType)),
	)
}

// RecordNATSMessagePublished records a NATS message being published
func (mp *MetricsProvider) RecordNATSMessagePublished(eventType string) {
	if !mp.isEnabled() {
		return
	}

	mp.natsMessagesPublishedCounter.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String(LabelEventType, eventType)),
	)
}

// isEnabled reports whether instruments exist and may be recorded to
func (mp *MetricsProvider) isEnabled() bool {
	if mp == nil {
		return false
	}
	mp.mu.RLock()
	defer mp.mu.RUnlock()
	return mp.enabled
}

// Global metrics provider instance
var (
	globalMetrics *MetricsProvider
	metricsOnce   sync.Once
)

// InitializeGlobalMetrics initializes the global metrics provider
func InitializeGlobalMetrics(ctx context.Context, cfg *config.Config) error {
	var err error
	metricsOnce.Do(func() {
		globalMetrics = NewMetricsProvider(cfg)
		err = globalMetrics.Initialize(ctx)
	})
	return err
}

// GetMetrics returns the global metrics provider
func GetMetrics() *MetricsProvider {
	return globalMetrics
}

// ShutdownGlobalMetrics shuts down the global metrics provider
func ShutdownGlobalMetrics(ctx context.Context) error {
	if globalMetrics != nil {
		return globalMetrics.Shutdown(ctx)
	}
	return nil
}
