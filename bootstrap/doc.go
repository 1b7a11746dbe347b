// Package bootstrap orchestrates application lifecycle for services built
// on the component container.
//
// It loads and validates typed configuration, initializes logging and
// observability, creates the container, and drives startup/shutdown with
// lifecycle hooks.
//
// # Quick Start
//
//	var cfg AppConfig
//	config.LoadConfig("my-service", &cfg)
//
//	app, err := bootstrap.NewApp(&cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	app.OnStart(func(ctx context.Context) error {
//	    return app.Container.Register(&UserService{})
//	})
//	app.Run(context.Background())
//
// On shutdown the container closes built singletons in reverse order and
// telemetry providers are flushed.
package bootstrap
