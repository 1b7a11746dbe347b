package bootstrap

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/beankit/beankit/config"
	"github.com/beankit/beankit/container"
	"github.com/beankit/beankit/logger"
	"github.com/beankit/beankit/observability"
)

// testConfig is a minimal config satisfying the Config interface.
type testConfig struct {
	config.ServiceConfig
}

func newTestConfig(name, version string) *testConfig {
	return &testConfig{
		ServiceConfig: config.ServiceConfig{
			Name:        name,
			Version:     version,
			Environment: "development",
		},
	}
}

type healthyStore struct{}

func (s *healthyStore) CheckHealth(ctx context.Context) observability.Health {
	return observability.Health{Name: "store", Status: observability.HealthStatusUp}
}

type healthyCache struct{}

func (c *healthyCache) CheckHealth(ctx context.Context) observability.Health {
	return observability.Health{Name: "cache", Status: observability.HealthStatusUp}
}

type failingProbe struct{}

func (p *failingProbe) CheckHealth(ctx context.Context) observability.Health {
	return observability.Health{Name: "probe", Status: observability.HealthStatusDown, Message: "timeout"}
}

type degradedProbe struct{}

func (p *degradedProbe) CheckHealth(ctx context.Context) observability.Health {
	return observability.Health{Name: "probe", Status: observability.HealthStatusDegraded, Message: "slow"}
}

type closingWorker struct {
	closed bool
}

func (w *closingWorker) Close() error {
	w.closed = true
	return nil
}

func mustRegister(t *testing.T, app *App[*testConfig], prototype any, opts ...container.RegisterOption) {
	t.Helper()
	if err := app.Container.Register(prototype, opts...); err != nil {
		t.Fatalf("register %T: %v", prototype, err)
	}
}

func TestNewApp(t *testing.T) {
	cfg := newTestConfig("test-svc", "1.0.0")
	app, err := NewApp(cfg)
	if err != nil {
		t.Fatalf("NewApp failed: %v", err)
	}
	if app == nil {
		t.Fatal("expected non-nil app")
	}
	if app.Name != "test-svc" {
		t.Errorf("expected name 'test-svc', got %q", app.Name)
	}
	if app.Version != "1.0.0" {
		t.Errorf("expected version '1.0.0', got %q", app.Version)
	}
	if app.Container == nil {
		t.Error("expected non-nil container")
	}
	if app.Logger == nil {
		t.Error("expected non-nil logger")
	}
	if app.Summary == nil {
		t.Error("expected non-nil summary")
	}
	// Config access is typed.
	if app.Cfg.Name != "test-svc" {
		t.Errorf("expected cfg.Name 'test-svc', got %q", app.Cfg.Name)
	}
}

func TestNewAppValidation(t *testing.T) {
	cfg := &testConfig{
		ServiceConfig: config.ServiceConfig{
			// Name is empty, validation must fail.
			Environment: "development",
		},
	}
	_, err := NewApp(cfg)
	if err == nil {
		t.Error("expected error for missing name")
	}
}

func TestNewAppWithOptions(t *testing.T) {
	cfg := newTestConfig("test", "1.0")
	custom, err := container.New(container.WithName("custom"))
	if err != nil {
		t.Fatalf("container.New failed: %v", err)
	}

	app, err := NewApp(cfg,
		WithGracefulTimeout(30*time.Second),
		WithContainer(custom),
	)
	if err != nil {
		t.Fatalf("NewApp failed: %v", err)
	}

	if app.gracefulTimeout != 30*time.Second {
		t.Errorf("expected 30s timeout, got %v", app.gracefulTimeout)
	}
	if app.Container != custom {
		t.Error("expected custom container")
	}
}

func TestNewAppContainerName(t *testing.T) {
	cfg := newTestConfig("named-svc", "1.0")
	app, err := NewApp(cfg)
	if err != nil {
		t.Fatalf("NewApp failed: %v", err)
	}
	if app.Container.Name() != "named-svc" {
		t.Errorf("expected container named after service, got %q", app.Container.Name())
	}
}

func TestNewAppWithContainerOptions(t *testing.T) {
	cfg := newTestConfig("test", "1.0")
	app, err := NewApp(cfg, WithContainerOptions(container.WithName("override")))
	if err != nil {
		t.Fatalf("NewApp failed: %v", err)
	}
	if app.Container.Name() != "override" {
		t.Errorf("expected container option to apply, got %q", app.Container.Name())
	}
}

func TestNewAppVersionFallback(t *testing.T) {
	cfg := newTestConfig("test", "")
	app, err := NewApp(cfg)
	if err != nil {
		t.Fatalf("NewApp failed: %v", err)
	}
	if app.Version == "" {
		t.Error("expected build version fallback when config version is empty")
	}
}

func TestWithLogger(t *testing.T) {
	cfg := newTestConfig("test", "1.0")
	customLogger := logger.NewDefault("custom-logger")

	app, err := NewApp(cfg, WithLogger(customLogger))
	if err != nil {
		t.Fatalf("NewApp failed: %v", err)
	}
	if app.Logger != customLogger {
		t.Error("expected custom logger to be set")
	}
}

func TestOnStartHook(t *testing.T) {
	cfg := newTestConfig("test", "1.0")
	app, _ := NewApp(cfg)
	called := false
	app.OnStart(func(ctx context.Context) error {
		called = true
		return nil
	})

	if len(app.onStart) != 1 {
		t.Errorf("expected 1 onStart hook, got %d", len(app.onStart))
	}

	if err := runHooks(context.Background(), app.onStart); err != nil {
		t.Fatalf("hook failed: %v", err)
	}
	if !called {
		t.Error("expected onStart hook to be called")
	}
}

func TestOnReadyHook(t *testing.T) {
	cfg := newTestConfig("test", "1.0")
	app, _ := NewApp(cfg)
	called := false
	app.OnReady(func(ctx context.Context) error {
		called = true
		return nil
	})

	if err := runHooks(context.Background(), app.onReady); err != nil {
		t.Fatalf("hook failed: %v", err)
	}
	if !called {
		t.Error("expected onReady hook to be called")
	}
}

func TestOnStopHook(t *testing.T) {
	cfg := newTestConfig("test", "1.0")
	app, _ := NewApp(cfg)
	called := false
	app.OnStop(func(ctx context.Context) error {
		called = true
		return nil
	})

	if err := runHooks(context.Background(), app.onStop); err != nil {
		t.Fatalf("hook failed: %v", err)
	}
	if !called {
		t.Error("expected onStop hook to be called")
	}
}

func TestMultipleHooks(t *testing.T) {
	cfg := newTestConfig("test", "1.0")
	app, _ := NewApp(cfg)
	order := []string{}
	app.OnStart(
		func(ctx context.Context) error { order = append(order, "first"); return nil },
		func(ctx context.Context) error { order = append(order, "second"); return nil },
	)

	runHooks(context.Background(), app.onStart)
	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Errorf("expected [first, second], got %v", order)
	}
}

func TestHookError(t *testing.T) {
	hooks := []Hook{
		func(ctx context.Context) error { return fmt.Errorf("hook failed") },
	}
	if err := runHooks(context.Background(), hooks); err == nil {
		t.Error("expected error from failing hook")
	}
}

func TestHookErrorStopsExecution(t *testing.T) {
	secondCalled := false
	hooks := []Hook{
		func(ctx context.Context) error { return fmt.Errorf("fail") },
		func(ctx context.Context) error { secondCalled = true; return nil },
	}
	runHooks(context.Background(), hooks)
	if secondCalled {
		t.Error("expected second hook not to be called after first fails")
	}
}

func TestOnConfigure(t *testing.T) {
	cfg := newTestConfig("test", "1.0")
	app, _ := NewApp(cfg)
	configured := false
	app.OnConfigure(func(ctx context.Context, a *App[*testConfig]) error {
		configured = true
		if a.Name != "test" {
			t.Errorf("expected app name 'test' in configure callback, got %q", a.Name)
		}
		// Type-safe config access.
		if a.Cfg.Name != "test" {
			t.Errorf("expected cfg.Name 'test', got %q", a.Cfg.Name)
		}
		return nil
	})

	if len(app.onConfigure) != 1 {
		t.Errorf("expected 1 configure callback, got %d", len(app.onConfigure))
	}

	for _, fn := range app.onConfigure {
		if err := fn(context.Background(), app); err != nil {
			t.Fatalf("configure failed: %v", err)
		}
	}
	if !configured {
		t.Error("expected configure callback to run")
	}
}

func TestReadyCheckAllHealthy(t *testing.T) {
	cfg := newTestConfig("test", "1.0")
	app, _ := NewApp(cfg)
	mustRegister(t, app, &healthyStore{}, container.AsEager())
	mustRegister(t, app, &healthyCache{}, container.AsEager())

	if err := app.ReadyCheck(context.Background()); err != nil {
		t.Errorf("expected no error for all healthy, got %v", err)
	}
}

func TestReadyCheckUnhealthy(t *testing.T) {
	cfg := newTestConfig("test", "1.0")
	app, _ := NewApp(cfg)
	mustRegister(t, app, &healthyStore{}, container.AsEager())
	mustRegister(t, app, &failingProbe{}, container.AsEager())

	err := app.ReadyCheck(context.Background())
	if err == nil {
		t.Fatal("expected error for unhealthy component")
	}
	if !strings.Contains(err.Error(), "probe=down") {
		t.Errorf("expected failing probe in error, got %q", err.Error())
	}
}

func TestReadyCheckDegraded(t *testing.T) {
	cfg := newTestConfig("test", "1.0")
	app, _ := NewApp(cfg)
	mustRegister(t, app, &degradedProbe{}, container.AsEager())

	if err := app.ReadyCheck(context.Background()); err == nil {
		t.Error("expected error for degraded component")
	}
}

func TestReadyCheckEmpty(t *testing.T) {
	cfg := newTestConfig("test", "1.0")
	app, _ := NewApp(cfg)
	if err := app.ReadyCheck(context.Background()); err != nil {
		t.Errorf("expected no error for empty container, got %v", err)
	}
}

func TestReadyCheckSkipsUnbuilt(t *testing.T) {
	cfg := newTestConfig("test", "1.0")
	app, _ := NewApp(cfg)
	// Lazy registration, never resolved, so it has no health to report.
	mustRegister(t, app, &failingProbe{})

	if err := app.ReadyCheck(context.Background()); err != nil {
		t.Errorf("expected unbuilt components to be skipped, got %v", err)
	}
}

func TestHealthAggregation(t *testing.T) {
	cfg := newTestConfig("test", "2.0")
	app, _ := NewApp(cfg)
	mustRegister(t, app, &healthyStore{}, container.AsEager())
	mustRegister(t, app, &degradedProbe{}, container.AsEager())

	sh := app.Health(context.Background())
	if sh.Service != "test" {
		t.Errorf("expected service 'test', got %q", sh.Service)
	}
	if sh.Status != observability.HealthStatusDegraded {
		t.Errorf("expected degraded overall status, got %q", sh.Status)
	}
	if len(sh.Components) != 2 {
		t.Errorf("expected 2 component results, got %d", len(sh.Components))
	}
}

func TestWithGracefulTimeout(t *testing.T) {
	cfg := newTestConfig("test", "1.0")
	app, _ := NewApp(cfg, WithGracefulTimeout(5*time.Second))
	if app.gracefulTimeout != 5*time.Second {
		t.Errorf("expected 5s, got %v", app.gracefulTimeout)
	}
}

func TestDefaultGracefulTimeout(t *testing.T) {
	cfg := newTestConfig("test", "1.0")
	app, _ := NewApp(cfg)
	if app.gracefulTimeout != 15*time.Second {
		t.Errorf("expected default 15s, got %v", app.gracefulTimeout)
	}
}

func TestRunTaskSuccess(t *testing.T) {
	cfg := newTestConfig("test", "1.0")
	app, _ := NewApp(cfg)
	executed := false
	err := app.RunTask(context.Background(), func(ctx context.Context) error {
		executed = true
		return nil
	})
	if err != nil {
		t.Fatalf("RunTask failed: %v", err)
	}
	if !executed {
		t.Error("expected task to be executed")
	}
}

func TestRunTaskError(t *testing.T) {
	cfg := newTestConfig("test", "1.0")
	app, _ := NewApp(cfg)
	err := app.RunTask(context.Background(), func(ctx context.Context) error {
		return fmt.Errorf("task error")
	})
	if err == nil {
		t.Error("expected error from failing task")
	}
	if err.Error() != "task error" {
		t.Errorf("expected 'task error', got %q", err.Error())
	}
}

func TestRunTaskCancellation(t *testing.T) {
	cfg := newTestConfig("test", "1.0")
	app, _ := NewApp(cfg)
	ctx, cancel := context.WithCancel(context.Background())

	err := app.RunTask(ctx, func(taskCtx context.Context) error {
		cancel() // simulate signal
		<-taskCtx.Done()
		return taskCtx.Err()
	})
	if err == nil {
		t.Error("expected error from canceled task")
	}
}

func TestRunTaskWithHooks(t *testing.T) {
	cfg := newTestConfig("test", "1.0")
	app, _ := NewApp(cfg)

	order := []string{}
	app.OnStart(func(ctx context.Context) error {
		order = append(order, "start")
		return nil
	})
	app.OnConfigure(func(ctx context.Context, a *App[*testConfig]) error {
		order = append(order, "configure")
		return nil
	})
	app.OnReady(func(ctx context.Context) error {
		order = append(order, "ready")
		return nil
	})
	app.OnStop(func(ctx context.Context) error {
		order = append(order, "stop")
		return nil
	})

	app.RunTask(context.Background(), func(ctx context.Context) error {
		order = append(order, "task")
		return nil
	})

	expected := []string{"start", "configure", "ready", "task", "stop"}
	if len(order) != len(expected) {
		t.Fatalf("expected %v, got %v", expected, order)
	}
	for i, v := range expected {
		if order[i] != v {
			t.Errorf("order[%d] = %q, expected %q", i, order[i], v)
		}
	}
}

func TestRunTaskClosesContainer(t *testing.T) {
	cfg := newTestConfig("test", "1.0")
	app, _ := NewApp(cfg)
	mustRegister(t, app, &closingWorker{}, container.AsEager())

	worker, err := container.Resolve[*closingWorker](app.Container)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	if err := app.RunTask(context.Background(), func(ctx context.Context) error {
		return nil
	}); err != nil {
		t.Fatalf("RunTask failed: %v", err)
	}

	if !worker.closed {
		t.Error("expected built worker to be closed after task")
	}
	if _, err := container.Resolve[*closingWorker](app.Container); err == nil {
		t.Error("expected container to be closed after task")
	}
}

func TestShutdownAfterRunTask(t *testing.T) {
	cfg := newTestConfig("test", "1.0")
	app, _ := NewApp(cfg)
	mustRegister(t, app, &healthyStore{}, container.AsEager())

	if err := app.RunTask(context.Background(), func(ctx context.Context) error {
		return nil
	}); err != nil {
		t.Fatalf("RunTask failed: %v", err)
	}

	// Shutdown after RunTask already stopped everything is a no-op.
	if err := app.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}
}

func TestWaitForSignalContextCancellation(t *testing.T) {
	cfg := newTestConfig("test", "1.0")
	app, _ := NewApp(cfg)

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	sig := app.WaitForSignal(ctx)
	if sig != nil {
		t.Errorf("expected nil signal for context cancellation, got %v", sig)
	}
}

func TestRunTaskWithStartHookError(t *testing.T) {
	cfg := newTestConfig("test", "1.0")
	app, _ := NewApp(cfg)
	app.OnStart(func(ctx context.Context) error {
		return fmt.Errorf("start hook failed")
	})

	err := app.RunTask(context.Background(), func(ctx context.Context) error {
		return nil
	})
	if err == nil {
		t.Error("expected error from failing start hook")
	}
}

func TestRunTaskWithConfigureError(t *testing.T) {
	cfg := newTestConfig("test", "1.0")
	app, _ := NewApp(cfg)
	app.OnConfigure(func(ctx context.Context, a *App[*testConfig]) error {
		return fmt.Errorf("configure failed")
	})

	err := app.RunTask(context.Background(), func(ctx context.Context) error {
		return nil
	})
	if err == nil {
		t.Error("expected error from failing configure callback")
	}
}

func TestRunTaskWithReadyHookError(t *testing.T) {
	cfg := newTestConfig("test", "1.0")
	app, _ := NewApp(cfg)
	app.OnReady(func(ctx context.Context) error {
		return fmt.Errorf("ready hook failed")
	})

	err := app.RunTask(context.Background(), func(ctx context.Context) error {
		return nil
	})
	if err == nil {
		t.Error("expected error from failing ready hook")
	}
}

func TestRunTaskWithStopHookError(t *testing.T) {
	cfg := newTestConfig("test", "1.0")
	app, _ := NewApp(cfg)
	app.OnStop(func(ctx context.Context) error {
		return fmt.Errorf("stop hook failed")
	})

	err := app.RunTask(context.Background(), func(ctx context.Context) error {
		return nil
	})
	if err == nil {
		t.Error("expected error from failing stop hook")
	}
}

func TestNewSummary(t *testing.T) {
	s := NewSummary("my-service", "2.0.0")
	if s == nil {
		t.Fatal("expected non-nil summary")
	}
	if s.serviceName != "my-service" {
		t.Errorf("expected 'my-service', got %q", s.serviceName)
	}
	if s.version != "2.0.0" {
		t.Errorf("expected '2.0.0', got %q", s.version)
	}
}

func TestSummaryTrackInfrastructure(t *testing.T) {
	s := NewSummary("svc", "1.0")
	s.TrackInfrastructure("HTTP Server", "server", "active", "localhost:8080", 8080, true)

	if len(s.infrastructure) != 1 {
		t.Fatalf("expected 1 infrastructure, got %d", len(s.infrastructure))
	}
	inf := s.infrastructure[0]
	if inf.Name != "HTTP Server" || inf.Port != 8080 {
		t.Errorf("unexpected infrastructure: %+v", inf)
	}
}

func TestSummaryTrackRoute(t *testing.T) {
	s := NewSummary("svc", "1.0")
	s.TrackRoute("GET", "/users", "ListUsers")
	s.TrackRoute("POST", "/users", "CreateUser")

	if len(s.routes) != 2 {
		t.Fatalf("expected 2 routes, got %d", len(s.routes))
	}
}

func TestSummarySetStartupDuration(t *testing.T) {
	s := NewSummary("svc", "1.0")
	s.SetStartupDuration(500 * time.Millisecond)

	if s.startupDuration != 500*time.Millisecond {
		t.Errorf("expected 500ms, got %v", s.startupDuration)
	}
}

func TestSummaryDisplay(t *testing.T) {
	cfg := newTestConfig("test-svc", "1.0.0")
	app, _ := NewApp(cfg)
	mustRegister(t, app, &healthyStore{}, container.AsEager())
	mustRegister(t, app, &healthyCache{})

	s := app.Summary
	s.SetStartupDuration(100 * time.Millisecond)
	s.TrackInfrastructure("HTTP Server", "server", "active", "localhost:8080", 8080, true)
	s.TrackRoute("GET", "/healthz", "Health")

	// Display walks container definitions and health without panicking.
	s.Display(app.Container, app.Health(context.Background()))
}

func TestSummaryDisplayEmpty(t *testing.T) {
	s := NewSummary("test-svc", "1.0.0")
	s.SetStartupDuration(100 * time.Millisecond)
	s.Display(nil, nil)
}

func TestTreePrefix(t *testing.T) {
	if p := treePrefix(2, 3); p != "└──" {
		t.Errorf("expected '└──' for last item, got %q", p)
	}
	if p := treePrefix(0, 3); p != "├──" {
		t.Errorf("expected '├──' for non-last item, got %q", p)
	}
}

func TestStatusIcon(t *testing.T) {
	tests := []struct {
		status  string
		healthy bool
		icon    string
	}{
		{"active", true, "✅"},
		{"lazy", true, "⚡"},
		{"inactive", true, "⏸️"},
		{"error", true, "❌"},
		{"unknown", true, "⚠️"},
		{"active", false, "❌"},
	}

	for _, tc := range tests {
		got := statusIcon(tc.status, tc.healthy)
		if got != tc.icon {
			t.Errorf("statusIcon(%q, %v) = %q, expected %q", tc.status, tc.healthy, got, tc.icon)
		}
	}
}

func TestDefinitionIcon(t *testing.T) {
	if definitionIcon(container.DefinitionInfo{Built: true}) != "✅" {
		t.Error("expected ✅ for built definition")
	}
	if definitionIcon(container.DefinitionInfo{Lifetime: "transient"}) != "🔁" {
		t.Error("expected 🔁 for transient definition")
	}
	if definitionIcon(container.DefinitionInfo{Lifetime: "singleton"}) != "⚡" {
		t.Error("expected ⚡ for lazy definition")
	}
}

func TestHealthStatusIcon(t *testing.T) {
	tests := []struct {
		status observability.HealthStatus
		icon   string
	}{
		{observability.HealthStatusUp, "✅"},
		{observability.HealthStatusDegraded, "⚠️"},
		{observability.HealthStatusDown, "❌"},
		{"unknown", "❓"},
	}

	for _, tc := range tests {
		got := healthStatusIcon(tc.status)
		if got != tc.icon {
			t.Errorf("healthStatusIcon(%q) = %q, expected %q", tc.status, got, tc.icon)
		}
	}
}

func TestMethodColor(t *testing.T) {
	tests := []string{"GET", "POST", "PUT", "PATCH", "DELETE", "CONNECT", "OPTIONS"}
	for _, m := range tests {
		if methodColor(m) == "" {
			t.Errorf("expected non-empty color for %s", m)
		}
	}
}
