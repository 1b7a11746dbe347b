package bootstrap

import (
	"time"

	"github.com/beankit/beankit/container"
	"github.com/beankit/beankit/logger"
	"github.com/beankit/beankit/observability"
)

// Option configures the App during creation.
// Options are non-generic so they can be used with any config type.
type Option func(*appOptions)

// appOptions collects all option values before applying to App.
type appOptions struct {
	logger          *logger.Logger
	container       *container.Container
	containerOpts   []container.Option
	gracefulTimeout *time.Duration
	meterCfg        *observability.MeterConfig
	tracerCfg       *observability.TracerConfig
}

// resolveOptions applies all options and returns the collected values.
func resolveOptions(opts []Option) *appOptions {
	o := &appOptions{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithLogger sets a custom logger for the application.
// If not set, the logger is built from the config's Logging section and
// installed as the global logger.
func WithLogger(l *logger.Logger) Option {
	return func(o *appOptions) {
		o.logger = l
	}
}

// WithGracefulTimeout sets the maximum duration for graceful shutdown.
func WithGracefulTimeout(d time.Duration) Option {
	return func(o *appOptions) {
		o.gracefulTimeout = &d
	}
}

// WithContainer sets a pre-built container for the application. Container
// options passed via WithContainerOptions are ignored in that case.
func WithContainer(c *container.Container) Option {
	return func(o *appOptions) {
		o.container = c
	}
}

// WithContainerOptions passes extra options to the container the app creates.
func WithContainerOptions(opts ...container.Option) Option {
	return func(o *appOptions) {
		o.containerOpts = append(o.containerOpts, opts...)
	}
}

// WithMetrics enables OpenTelemetry metrics. The app initializes the meter
// provider, instruments the container, and exports the constructor cache
// statistics.
func WithMetrics(cfg *observability.MeterConfig) Option {
	return func(o *appOptions) {
		o.meterCfg = cfg
	}
}

// WithTracing enables OpenTelemetry tracing. Container resolutions are
// recorded as spans.
func WithTracing(cfg *observability.TracerConfig) Option {
	return func(o *appOptions) {
		o.tracerCfg = cfg
	}
}
