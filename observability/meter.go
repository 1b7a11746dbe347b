package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/beankit/beankit/bean"
	"github.com/beankit/beankit/logger"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	// ServiceName is the name of the service.
	ServiceName string
	// ServiceVersion is the version of the service.
	ServiceVersion string
	// Environment is the deployment environment (dev, staging, prod).
	Environment string
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string
	// Insecure allows insecure connections (for development).
	Insecure bool
	// Interval is the metric export interval.
	Interval time.Duration
}

// DefaultMeterConfig returns sensible defaults for development.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: "1.0.0",
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// InitMeter initializes the OpenTelemetry meter provider.
// Returns a MeterProvider that should be shut down on application exit.
func InitMeter(ctx context.Context, config *MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", config.ServiceName,
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// ContainerMetrics holds metric instruments for the component container.
type ContainerMetrics struct {
	registrations      metric.Int64Counter
	resolutions        metric.Int64Counter
	resolutionDuration metric.Float64Histogram
	instances          metric.Int64UpDownCounter
}

// NewContainerMetrics creates the container instruments on the given meter.
func NewContainerMetrics(meter metric.Meter) (*ContainerMetrics, error) {
	registrations, err := meter.Int64Counter("container.registrations.total",
		metric.WithDescription("Total component registrations by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating container.registrations.total counter: %w", err)
	}

	resolutions, err := meter.Int64Counter("container.resolutions.total",
		metric.WithDescription("Total component resolutions by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating container.resolutions.total counter: %w", err)
	}

	resolutionDuration, err := meter.Float64Histogram("container.resolution.duration",
		metric.WithDescription("Duration of component resolutions in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating container.resolution.duration histogram: %w", err)
	}

	instances, err := meter.Int64UpDownCounter("container.instances.active",
		metric.WithDescription("Number of live singleton instances"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating container.instances.active gauge: %w", err)
	}

	return &ContainerMetrics{
		registrations:      registrations,
		resolutions:        resolutions,
		resolutionDuration: resolutionDuration,
		instances:          instances,
	}, nil
}

// RecordRegistration records a registration attempt. The rule attribute
// carries the failed eligibility rule code and is omitted for successful
// registrations.
func (m *ContainerMetrics) RecordRegistration(ctx context.Context, outcome, rule string) {
	attrs := []attribute.KeyValue{
		attribute.String("outcome", outcome),
	}
	if rule != "" {
		attrs = append(attrs, attribute.String("rule", rule))
	}
	m.registrations.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordResolution records a top-level resolve call.
func (m *ContainerMetrics) RecordResolution(ctx context.Context, outcome string, duration time.Duration) {
	m.resolutions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("outcome", outcome),
	))
	m.resolutionDuration.Record(ctx, duration.Seconds())
}

// AddInstances adjusts the live singleton instance count.
func (m *ContainerMetrics) AddInstances(ctx context.Context, delta int64) {
	m.instances.Add(ctx, delta)
}

// ObserveCache registers observable instruments over the constructor
// resolution cache. The stats callback is sampled on every collection; the
// returned registration unregisters the callback.
func ObserveCache(meter metric.Meter, stats func() bean.CacheStats) (metric.Registration, error) {
	entries, err := meter.Int64ObservableGauge("container.cache.entries",
		metric.WithDescription("Memoized constructor resolutions"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating container.cache.entries gauge: %w", err)
	}

	hits, err := meter.Int64ObservableCounter("container.cache.hits",
		metric.WithDescription("Constructor cache hits"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating container.cache.hits counter: %w", err)
	}

	misses, err := meter.Int64ObservableCounter("container.cache.misses",
		metric.WithDescription("Constructor cache misses"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating container.cache.misses counter: %w", err)
	}

	return meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		s := stats()
		o.ObserveInt64(entries, int64(s.Entries))
		o.ObserveInt64(hits, int64(s.Hits))
		o.ObserveInt64(misses, int64(s.Misses))
		return nil
	}, entries, hits, misses)
}

// RequestMetrics holds metric instruments for request-level observability in
// services built on the container.
type RequestMetrics struct {
	requestTotal    metric.Int64Counter
	requestDuration metric.Float64Histogram
	requestActive   metric.Int64UpDownCounter
}

// NewRequestMetrics creates the request instruments on the given meter.
func NewRequestMetrics(meter metric.Meter) (*RequestMetrics, error) {
	requestTotal, err := meter.Int64Counter("request.total",
		metric.WithDescription("Total number of requests"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating request.total counter: %w", err)
	}

	requestDuration, err := meter.Float64Histogram("request.duration",
		metric.WithDescription("Duration of requests in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating request.duration histogram: %w", err)
	}

	requestActive, err := meter.Int64UpDownCounter("request.active",
		metric.WithDescription("Number of currently active requests"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating request.active gauge: %w", err)
	}

	return &RequestMetrics{
		requestTotal:    requestTotal,
		requestDuration: requestDuration,
		requestActive:   requestActive,
	}, nil
}

// RecordRequestStart increments the active request count.
func (m *RequestMetrics) RecordRequestStart(ctx context.Context) {
	m.requestActive.Add(ctx, 1)
}

// RecordRequestEnd decrements active requests and records the completed request.
func (m *RequestMetrics) RecordRequestEnd(ctx context.Context, service, method, status string, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("service", service),
		attribute.String("method", method),
		attribute.String("status", status),
	)
	m.requestActive.Add(ctx, -1)
	m.requestTotal.Add(ctx, 1, attrs)
	m.requestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("service", service),
		attribute.String("method", method),
	))
}
