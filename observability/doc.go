// Package observability provides OpenTelemetry tracing and metrics
// integration for beankit applications and the container itself.
//
// Tracing:
//
//	cfg := observability.DefaultTracerConfig("my-service")
//	tp, err := observability.InitTracer(ctx, &cfg)
//	defer tp.Shutdown(ctx)
//
//	ctx, span := observability.StartSpan(ctx, "my.operation")
//	defer span.End()
//
// Container metrics:
//
//	mcfg := observability.DefaultMeterConfig("my-service")
//	mp, err := observability.InitMeter(ctx, &mcfg)
//	defer mp.Shutdown(ctx)
//
//	metrics, err := observability.NewContainerMetrics(observability.Meter("my-service"))
//	c, err := container.New(container.WithMetrics(metrics))
//
// Health checks:
//
//	health := observability.NewServiceHealth("my-service", "1.0.0")
//	health.AddComponent(checker.CheckHealth(ctx))
package observability
