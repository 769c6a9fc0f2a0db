// Package bootstrap hosts a pipeline as a long-running service.
//
// It loads nothing itself: the caller loads a Config (usually with
// config.LoadConfig), assembles the pipeline with cfg.PipelineOptions and
// hands both to New. The App then owns the lifecycle:
//
//	app, err := bootstrap.New(&cfg, p)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := app.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// Run starts the telemetry providers, any extra components, the status
// server, the status stream and the pipeline in that order, logs a periodic status line, and
// stops everything in reverse order on SIGINT/SIGTERM, context
// cancellation, or once every stage has exited.
package bootstrap
