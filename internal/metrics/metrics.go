package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/SigNoz/storefront-go-app/pkg/config"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
)

// AppMetrics holds all application metrics
type AppMetrics struct {
	// HTTP Metrics
	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestsErrors  metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram

	// Storage Metrics
	StorageOpsTotal   metric.Int64Counter
	StorageOpDuration metric.Float64Histogram

	// Business Metrics
	OrdersCreated     metric.Int64Counter
	RevenueTotal      metric.Float64Counter
	ProductsViewed    metric.Int64Counter
	CartItemsCount    metric.Int64Gauge
	CheckoutsRejected metric.Int64Counter

	// Session Metrics
	ActiveUsersCount  metric.Int64Gauge
	HydrationFailures metric.Int64Counter

	// Service name for adding to all metrics
	serviceName string
}

// Shutdowner flushes and stops a meter provider
type Shutdowner interface {
	Shutdown(ctx context.Context) error
}

type nopShutdowner struct{}

func (nopShutdowner) Shutdown(context.Context) error { return nil }

// InitMetrics initializes OpenTelemetry metrics. With metrics disabled it
// returns instruments backed by the no-op meter.
func InitMetrics(ctx context.Context, cfg *config.Config) (*AppMetrics, Shutdowner, error) {
	if !cfg.MetricsEnabled {
		log.Info().Msg("metrics disabled, using no-op meter")
		m, err := NewNoop(cfg.OTELServiceName)
		return m, nopShutdowner{}, err
	}

	// Explicit attributes take precedence over OTEL_* environment resource
	envRes, err := resource.New(ctx, resource.WithFromEnv())
	if err != nil {
		envRes = resource.Empty()
	}

	explicitRes, err := resource.New(ctx,
		resource.WithAttributes(resourceAttributes(cfg)...),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create explicit resource: %w", err)
	}

	res, err := resource.Merge(envRes, explicitRes)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to merge resources: %w", err)
	}

	if cfg.OTELExporterOTLPProtocol != "http/protobuf" {
		log.Warn().Str("protocol", cfg.OTELExporterOTLPProtocol).Msg("only http/protobuf is supported, exporting over http/protobuf")
	}

	// WithEndpoint expects host:port without a scheme
	exporterOpts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(cfg.OTELExporterOTLPEndpoint),
		otlpmetrichttp.WithURLPath("/v1/metrics"),
	}
	if cfg.OTELExporterOTLPHeaders != "" {
		exporterOpts = append(exporterOpts, otlpmetrichttp.WithHeaders(parseHeaders(cfg.OTELExporterOTLPHeaders)))
	}
	if cfg.OTELExporterOTLPInsecure {
		exporterOpts = append(exporterOpts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, exporterOpts...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
	}

	reader := sdkmetric.NewPeriodicReader(exporter,
		sdkmetric.WithInterval(10*time.Second),
	)

	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
	)
	otel.SetMeterProvider(meterProvider)

	log.Info().
		Str("endpoint", cfg.OTELExporterOTLPEndpoint).
		Bool("insecure", cfg.OTELExporterOTLPInsecure).
		Str("service", cfg.OTELServiceName).
		Msg("metrics exporter configured")

	m, err := NewAppMetrics(meterProvider.Meter(cfg.OTELServiceName), cfg.OTELServiceName)
	if err != nil {
		return nil, nil, err
	}
	return m, meterProvider, nil
}

// NewNoop returns metrics that record nothing
func NewNoop(serviceName string) (*AppMetrics, error) {
	return NewAppMetrics(noop.NewMeterProvider().Meter(serviceName), serviceName)
}

// NewAppMetrics creates every instrument on meter
func NewAppMetrics(meter metric.Meter, serviceName string) (*AppMetrics, error) {
	// SigNoz default histogram buckets in milliseconds, expanded to 60s
	buckets := []float64{2, 4, 6, 8, 10, 50, 100, 200, 400, 800, 1000, 1400, 2000, 5000, 10000, 15000, 20000, 30000, 45000, 60000}

	m := &AppMetrics{serviceName: serviceName}
	var err error

	if m.HTTPRequestsTotal, err = meter.Int64Counter(
		"http.server.request.count",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("1"),
	); err != nil {
		return nil, fmt.Errorf("failed to create http requests counter: %w", err)
	}

	if m.HTTPRequestsErrors, err = meter.Int64Counter(
		"http.server.request.error.count",
		metric.WithDescription("Total number of HTTP error requests"),
		metric.WithUnit("1"),
	); err != nil {
		return nil, fmt.Errorf("failed to create http errors counter: %w", err)
	}

	if m.HTTPRequestDuration, err = meter.Float64Histogram(
		"http.server.request.duration",
		metric.WithDescription("HTTP request duration in milliseconds"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(buckets...),
	); err != nil {
		return nil, fmt.Errorf("failed to create http duration histogram: %w", err)
	}

	if m.StorageOpsTotal, err = meter.Int64Counter(
		"storage.client.operations.count",
		metric.WithDescription("Total number of key-value storage operations"),
		metric.WithUnit("1"),
	); err != nil {
		return nil, fmt.Errorf("failed to create storage ops counter: %w", err)
	}

	if m.StorageOpDuration, err = meter.Float64Histogram(
		"storage.client.operations.duration",
		metric.WithDescription("Key-value storage operation duration in milliseconds"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(buckets...),
	); err != nil {
		return nil, fmt.Errorf("failed to create storage duration histogram: %w", err)
	}

	if m.OrdersCreated, err = meter.Int64Counter(
		"orders_created_total",
		metric.WithDescription("Total number of orders created"),
		metric.WithUnit("1"),
	); err != nil {
		return nil, fmt.Errorf("failed to create orders counter: %w", err)
	}

	if m.RevenueTotal, err = meter.Float64Counter(
		"revenue_total",
		metric.WithDescription("Total revenue generated"),
		metric.WithUnit("USD"),
	); err != nil {
		return nil, fmt.Errorf("failed to create revenue counter: %w", err)
	}

	if m.ProductsViewed, err = meter.Int64Counter(
		"products_viewed_total",
		metric.WithDescription("Total number of product views"),
		metric.WithUnit("1"),
	); err != nil {
		return nil, fmt.Errorf("failed to create products viewed counter: %w", err)
	}

	if m.CartItemsCount, err = meter.Int64Gauge(
		"cart_items_count",
		metric.WithDescription("Current number of units in the cart"),
		metric.WithUnit("1"),
	); err != nil {
		return nil, fmt.Errorf("failed to create cart items gauge: %w", err)
	}

	if m.CheckoutsRejected, err = meter.Int64Counter(
		"checkout_rejected_total",
		metric.WithDescription("Checkouts ignored because a precondition was not met"),
		metric.WithUnit("1"),
	); err != nil {
		return nil, fmt.Errorf("failed to create checkout rejected counter: %w", err)
	}

	if m.ActiveUsersCount, err = meter.Int64Gauge(
		"active_users_count",
		metric.WithDescription("Currently signed-in users"),
		metric.WithUnit("1"),
	); err != nil {
		return nil, fmt.Errorf("failed to create active users gauge: %w", err)
	}

	if m.HydrationFailures, err = meter.Int64Counter(
		"hydration_failures_total",
		metric.WithDescription("Persisted collections that could not be restored at startup"),
		metric.WithUnit("1"),
	); err != nil {
		return nil, fmt.Errorf("failed to create hydration failures counter: %w", err)
	}

	return m, nil
}

// WithServiceName adds service.name to attributes
func (m *AppMetrics) WithServiceName(attrs []attribute.KeyValue) []attribute.KeyValue {
	return append(attrs, attribute.String("service.name", m.serviceName))
}

// RecordStorageOp records key-value storage operation metrics
func (m *AppMetrics) RecordStorageOp(ctx context.Context, backend, operation, key string, start time.Time, success bool) {
	duration := time.Since(start).Milliseconds()

	status := "success"
	if !success {
		status = "error"
	}

	attrs := m.WithServiceName([]attribute.KeyValue{
		attribute.String("storage.backend", backend),
		attribute.String("storage.operation", operation),
		attribute.String("storage.key", key),
		attribute.String("status", status),
	})

	m.StorageOpsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.StorageOpDuration.Record(ctx, float64(duration), metric.WithAttributes(attrs...))
}

// resourceAttributes merges OTEL_RESOURCE_ATTRIBUTES with the service
// identity; the service identity wins on conflicts
func resourceAttributes(cfg *config.Config) []attribute.KeyValue {
	var attrs []attribute.KeyValue
	for k, v := range parseHeaders(cfg.OTELResourceAttributes) {
		switch attribute.Key(k) {
		case semconv.ServiceNameKey, semconv.ServiceVersionKey, "deployment.environment":
			continue
		}
		attrs = append(attrs, attribute.String(k, v))
	}
	return append(attrs,
		semconv.ServiceName(cfg.OTELServiceName),
		semconv.ServiceVersion(cfg.OTELServiceVersion),
		attribute.String("deployment.environment", cfg.OTELDeploymentEnvironment),
	)
}

// parseHeaders parses header string in format "key1=value1,key2=value2"
// and returns a map of headers
func parseHeaders(headerStr string) map[string]string {
	headers := make(map[string]string)
	if headerStr == "" {
		return headers
	}

	pairs := strings.Split(headerStr, ",")
	for _, pair := range pairs {
		parts := strings.SplitN(strings.TrimSpace(pair), "=", 2)
		if len(parts) == 2 {
			headers[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
		}
	}
	return headers
}
