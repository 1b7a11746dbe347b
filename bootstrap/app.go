package bootstrap

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/beankit/beankit/container"
	"github.com/beankit/beankit/errors"
	"github.com/beankit/beankit/logger"
	"github.com/beankit/beankit/observability"
	"github.com/beankit/beankit/version"
)

// instrumentationName scopes the meter and tracer wired into the container.
const instrumentationName = "github.com/beankit/beankit/container"

// App represents an application with uniform lifecycle management. The type
// parameter C is the config type, which must satisfy the Config interface.
// Any struct embedding config.ServiceConfig automatically satisfies Config.
//
// Example:
//
//	app, err := bootstrap.NewApp(&myConfig)
//	app.OnConfigure(func(ctx context.Context, a *bootstrap.App[*MyConfig]) error {
//	    // a.Cfg is *MyConfig, fully typed
//	    return a.Container.Register(&OrderService{})
//	})
//	app.Run(context.Background())
type App[C Config] struct {
	Name      string
	Version   string
	Cfg       C
	Container *container.Container
	Logger    *logger.Logger
	Summary   *Summary

	gracefulTimeout time.Duration
	onConfigure     []func(ctx context.Context, app *App[C]) error

	onStart []Hook
	onReady []Hook
	onStop  []Hook

	meterProvider  *sdkmetric.MeterProvider
	tracerProvider *sdktrace.TracerProvider
	cacheObserver  metric.Registration
}

// NewApp creates an application from a typed config. It applies defaults,
// validates the config, initializes the logger and optional telemetry, and
// creates the component container.
func NewApp[C Config](cfg C, opts ...Option) (*App[C], error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	base := cfg.GetServiceConfig()

	app := &App[C]{
		Name:            base.Name,
		Version:         base.Version,
		Cfg:             cfg,
		gracefulTimeout: 15 * time.Second,
	}
	if app.Version == "" {
		app.Version = version.GetShortVersion()
	}

	o := resolveOptions(opts)
	if o.gracefulTimeout != nil {
		app.gracefulTimeout = *o.gracefulTimeout
	}

	// Logger: use custom if provided, otherwise build from config and
	// install globally so package-level logging carries the service name.
	if o.logger != nil {
		app.Logger = o.logger
	} else {
		app.Logger = logger.New(&base.Logging, base.Name)
		logger.SetGlobalLogger(app.Logger)
	}

	containerOpts := []container.Option{
		container.WithName(base.Name),
		container.WithLogger(app.Logger),
	}

	var meter metric.Meter
	if o.meterCfg != nil {
		mp, err := observability.InitMeter(context.Background(), o.meterCfg)
		if err != nil {
			return nil, fmt.Errorf("metrics init: %w", err)
		}
		app.meterProvider = mp

		meter = observability.Meter(instrumentationName)
		cm, err := observability.NewContainerMetrics(meter)
		if err != nil {
			return nil, fmt.Errorf("container metrics: %w", err)
		}
		containerOpts = append(containerOpts, container.WithMetrics(cm))
	}

	if o.tracerCfg != nil {
		tp, err := observability.InitTracer(context.Background(), o.tracerCfg)
		if err != nil {
			return nil, fmt.Errorf("tracing init: %w", err)
		}
		app.tracerProvider = tp
		containerOpts = append(containerOpts, container.WithTracer(observability.Tracer(instrumentationName)))
	}

	if o.container != nil {
		app.Container = o.container
	} else {
		containerOpts = append(containerOpts, o.containerOpts...)
		c, err := container.New(containerOpts...)
		if err != nil {
			return nil, fmt.Errorf("container: %w", err)
		}
		app.Container = c
	}

	if meter != nil {
		reg, err := observability.ObserveCache(meter, app.Container.CacheStats)
		if err != nil {
			return nil, fmt.Errorf("cache instruments: %w", err)
		}
		app.cacheObserver = reg
	}

	app.Summary = NewSummary(base.Name, app.Version)
	return app, nil
}

// OnConfigure registers a callback to run during the configure phase.
// Use it to wire business components after the start hooks have run.
func (a *App[C]) OnConfigure(fn func(ctx context.Context, app *App[C]) error) {
	a.onConfigure = append(a.onConfigure, fn)
}

// Health aggregates the health of every built component that implements
// observability.HealthChecker.
func (a *App[C]) Health(ctx context.Context) *observability.ServiceHealth {
	sh := observability.NewServiceHealth(a.Name, a.Version)
	for _, instance := range a.Container.BuiltInstances() {
		if hc, ok := instance.(observability.HealthChecker); ok {
			sh.AddComponent(hc.CheckHealth(ctx))
		}
	}
	return sh
}

// ReadyCheck verifies that every health-checkable component reports up.
func (a *App[C]) ReadyCheck(ctx context.Context) error {
	sh := a.Health(ctx)
	if sh.Status == observability.HealthStatusUp {
		return nil
	}

	var unhealthy []string
	for _, h := range sh.Components {
		if h.Status != observability.HealthStatusUp {
			detail := h.Name + "=" + string(h.Status)
			if h.Message != "" {
				detail += "(" + h.Message + ")"
			}
			unhealthy = append(unhealthy, detail)
		}
	}
	return fmt.Errorf("unhealthy components: %v", unhealthy)
}

// Run executes the full application lifecycle for long-running services:
// OnStart hooks → Configure → ReadyCheck → OnReady hooks → block on
// signal → OnStop hooks → graceful shutdown.
func (a *App[C]) Run(ctx context.Context) error {
	if err := a.startup(ctx); err != nil {
		return err
	}

	a.Logger.Info("application ready, waiting for shutdown signal")
	a.WaitForSignal(ctx)

	return a.stop()
}

// RunTask executes a finite task with the full bootstrap lifecycle. Unlike
// Run, it does not block on shutdown signals: it runs the task function and
// shuts down when the task completes or the context is canceled.
//
// Use RunTask for CLI tools, batch jobs, and one-shot processes that need
// the same bootstrap infrastructure but have a finite workflow.
func (a *App[C]) RunTask(ctx context.Context, task func(ctx context.Context) error) error {
	if err := a.startup(ctx); err != nil {
		return err
	}

	taskCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case sig := <-sigCh:
			a.Logger.Info("received signal, canceling task", logger.Fields(
				"signal", sig.String(),
			))
			cancel()
		case <-taskCtx.Done():
		}
	}()

	taskErr := task(taskCtx)

	if stopErr := a.stop(); stopErr != nil {
		if taskErr != nil {
			return taskErr
		}
		return stopErr
	}

	return taskErr
}

// startup performs the common initialization sequence shared by Run and RunTask.
func (a *App[C]) startup(ctx context.Context) error {
	start := time.Now()

	a.Logger.Info("starting application", logger.Fields(
		"name", a.Name,
		"version", a.Version,
	))

	// Phase 1: start hooks register infrastructure components.
	if err := runHooks(ctx, a.onStart); err != nil {
		return fmt.Errorf("onStart hook failed: %w", err)
	}

	// Phase 2: configure callbacks wire the business layer.
	if err := a.configure(ctx); err != nil {
		return fmt.Errorf("configuration failed: %w", err)
	}

	if err := a.ReadyCheck(ctx); err != nil {
		a.Logger.Warn("ready check reported issues", logger.Fields("error", err.Error()))
	}

	if err := runHooks(ctx, a.onReady); err != nil {
		return fmt.Errorf("onReady hook failed: %w", err)
	}

	a.Summary.SetStartupDuration(time.Since(start))
	a.DisplaySummary()

	return nil
}

// configure runs registered configuration callbacks.
func (a *App[C]) configure(ctx context.Context) error {
	if len(a.onConfigure) == 0 {
		return nil
	}

	a.Logger.Debug("running configuration callbacks", logger.Fields(
		"count", len(a.onConfigure),
	))

	for _, fn := range a.onConfigure {
		if err := fn(ctx, a); err != nil {
			return err
		}
	}

	return nil
}

// DisplaySummary prints the startup summary with the container's component
// listing and live health.
func (a *App[C]) DisplaySummary() {
	a.Summary.Display(a.Container, a.Health(context.Background()))
}

// WaitForSignal blocks until an OS interrupt/term signal or context
// cancellation. It returns the received signal, or nil when the context
// was canceled.
func (a *App[C]) WaitForSignal(ctx context.Context) os.Signal {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		a.Logger.Info("received shutdown signal", logger.Fields(
			"signal", sig.String(),
		))
		return sig
	case <-ctx.Done():
		a.Logger.Info("context canceled, shutting down")
		return nil
	}
}

// Shutdown performs graceful shutdown. Use when managing your own lifecycle.
// Shutting down an already stopped app is a no-op.
func (a *App[C]) Shutdown(ctx context.Context) error {
	return a.stop()
}

// stop gracefully shuts down the application within the graceful timeout.
func (a *App[C]) stop() error {
	a.Logger.Info("shutting down application", logger.Fields(
		"timeout", a.gracefulTimeout.String(),
	))

	ctx, cancel := context.WithTimeout(context.Background(), a.gracefulTimeout)
	defer cancel()

	var shutdownErr error

	if err := runHooks(ctx, a.onStop); err != nil {
		a.Logger.Error("onStop hook error", logger.Fields("error", err.Error()))
		shutdownErr = err
	}

	if a.cacheObserver != nil {
		if err := a.cacheObserver.Unregister(); err != nil {
			a.Logger.Warn("cache observer unregister error", logger.Fields("error", err.Error()))
		}
		a.cacheObserver = nil
	}

	// Close built singletons in reverse registration order. A second stop
	// finds the container already closed, which is fine.
	if err := a.Container.Close(); err != nil && !errors.HasCode(err, errors.CodeContainerClosed) {
		a.Logger.Error("container close error", logger.Fields("error", err.Error()))
		if shutdownErr == nil {
			shutdownErr = err
		}
	}

	if a.tracerProvider != nil {
		if err := a.tracerProvider.Shutdown(ctx); err != nil {
			a.Logger.Error("tracer provider shutdown error", logger.Fields("error", err.Error()))
			if shutdownErr == nil {
				shutdownErr = err
			}
		}
		a.tracerProvider = nil
	}
	if a.meterProvider != nil {
		if err := a.meterProvider.Shutdown(ctx); err != nil {
			a.Logger.Error("meter provider shutdown error", logger.Fields("error", err.Error()))
			if shutdownErr == nil {
				shutdownErr = err
			}
		}
		a.meterProvider = nil
	}

	a.Logger.Info("application shutdown complete")
	return shutdownErr
}
