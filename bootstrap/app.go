package bootstrap

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kbukum/stagekit/component"
	"github.com/kbukum/stagekit/logger"
	"github.com/kbukum/stagekit/observability"
	"github.com/kbukum/stagekit/pipeline"
	"github.com/kbukum/stagekit/server"
	"github.com/kbukum/stagekit/sse"
)

// App hosts one pipeline together with the infrastructure it reports
// through: telemetry providers, the status server and any extra
// components.
//
// Example:
//
//	var cfg bootstrap.Config
//	_ = config.LoadConfig("camera-host", &cfg)
//	p := pipeline.NewBuilder(cfg.PipelineOptions()...).
//	    Add(pipeline.FromSource[Frame](camera)).
//	    Add(pipeline.FromSink[Frame](viewer)).
//	    MustBuild()
//	app, err := bootstrap.New(&cfg, p)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = app.Run(context.Background())
type App struct {
	Name       string
	Version    string
	Cfg        *Config
	Pipeline   *pipeline.Pipeline
	Components *component.Registry
	Logger     *logger.Logger
	Summary    *Summary

	gracefulTimeout time.Duration
	reporter        *pipeline.Reporter
	signals         chan os.Signal

	hooks map[phase][]Hook
}

// New creates an application for p. It applies defaults, validates cfg,
// initializes the logger and registers the components in start order:
// observability, extra components, status server, status stream,
// pipeline.
func New(cfg *Config, p *pipeline.Pipeline, opts ...Option) (*App, error) {
	if p == nil {
		return nil, fmt.Errorf("bootstrap: pipeline is required")
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	o := resolveOptions(opts)

	app := &App{
		Name:            cfg.Name,
		Version:         cfg.Version,
		Cfg:             cfg,
		Pipeline:        p,
		gracefulTimeout: cfg.GracefulTimeout,
		signals:         make(chan os.Signal, 1),
	}
	if o.gracefulTimeout != nil {
		app.gracefulTimeout = *o.gracefulTimeout
	}

	if o.logger != nil {
		app.Logger = o.logger
	} else {
		logger.Init(cfg.Logging)
		app.Logger = logger.Global()
	}

	app.Components = component.NewRegistry(
		component.WithRegistryLogger(app.Logger.WithComponent("registry")),
	)
	if err := app.register(o); err != nil {
		return nil, err
	}

	if o.reporter == nil || *o.reporter {
		app.reporter = pipeline.NewReporter(p, cfg.Pipeline.ReportInterval, app.Logger.WithComponent("reporter"))
	}

	app.Summary = NewSummary(cfg.Name, cfg.Version)
	return app, nil
}

func (a *App) register(o *appOptions) error {
	var components []component.Component
	if a.Cfg.Observability.Enabled {
		components = append(components,
			observability.NewComponent(a.Cfg.Observability, observability.Identity{
				Service:     a.Cfg.Name,
				Version:     a.Cfg.Version,
				Environment: a.Cfg.Environment,
			}))
	}
	components = append(components, o.components...)
	if a.Cfg.Server.Enabled {
		srv := server.New(a.Cfg.Server, a.Logger.WithComponent("server"))
		srv.ApplyDefaults(a.Name, a.Pipeline, a.Components.HealthAll)

		// Registered after the server so it stops first and open streams
		// do not hold up the server's shutdown.
		stream := sse.NewComponent(server.PathStream, a.Cfg.Pipeline.ReportInterval, a.status, a.Logger.WithComponent("sse"))
		srv.GinEngine().GET(stream.Path(), stream.Handler())

		components = append(components, server.NewComponent(srv), stream)
	}
	components = append(components, NewPipelineComponent(a.Pipeline))

	for _, c := range components {
		if err := a.Components.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// Status is the snapshot published on the status stream.
type Status struct {
	Pipeline string               `json:"pipeline"`
	ID       string               `json:"id"`
	Running  bool                 `json:"running"`
	Topology string               `json:"topology"`
	Stages   []pipeline.StageInfo `json:"stages"`
}

func (a *App) status() any {
	return Status{
		Pipeline: a.Pipeline.Name(),
		ID:       a.Pipeline.ID(),
		Running:  a.Pipeline.Running(),
		Topology: a.Pipeline.String(),
		Stages:   a.Pipeline.Stages(),
	}
}

// ReadyCheck verifies that all registered components are healthy.
func (a *App) ReadyCheck(ctx context.Context) error {
	var unhealthy []string
	for _, h := range a.Components.HealthAll(ctx) {
		if h.Status != component.StatusHealthy {
			detail := h.Name + "=" + string(h.Status)
			if h.Message != "" {
				detail += "(" + h.Message + ")"
			}
			unhealthy = append(unhealthy, detail)
		}
	}
	if len(unhealthy) > 0 {
		return fmt.Errorf("unhealthy components: %v", unhealthy)
	}
	return nil
}

// Run starts every component, then blocks until SIGINT/SIGTERM, ctx
// cancellation or every stage exiting, and finally shuts down within the
// graceful timeout. It returns the shutdown errors joined with the stage
// failures.
func (a *App) Run(ctx context.Context) error {
	if err := a.startup(ctx); err != nil {
		if stopErr := a.stop(); stopErr != nil {
			a.Logger.Warn("Cleanup after failed startup reported errors", logger.Fields(logger.FieldError, stopErr.Error()))
		}
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go a.watchFailures(a.Pipeline.Failures())
	if a.reporter != nil {
		go a.reporter.Run(runCtx)
	}

	a.Logger.Info("Application ready, waiting for shutdown signal")
	a.wait(runCtx)
	cancel()

	stopErr := a.stop()
	return stderrors.Join(stopErr, a.stageFailures())
}

func (a *App) startup(ctx context.Context) error {
	start := time.Now()

	a.Logger.Info("Starting application", logger.Fields(
		"name", a.Name,
		"version", a.Version,
	))

	if err := a.Components.StartAll(ctx); err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}
	if err := a.runHooks(ctx, phaseStart); err != nil {
		return err
	}
	if err := a.ReadyCheck(ctx); err != nil {
		a.Logger.Warn("Ready check reported issues", logger.Fields(logger.FieldError, err.Error()))
	}
	if err := a.runHooks(ctx, phaseReady); err != nil {
		return err
	}

	a.Summary.SetStartupDuration(time.Since(start))
	a.DisplaySummary()
	return nil
}

// DisplaySummary prints the startup summary collected from the registry.
func (a *App) DisplaySummary() {
	a.Summary.DisplaySummary(os.Stdout, a.Components)
}

// wait blocks until a shutdown signal, ctx ending or the pipeline exiting.
func (a *App) wait(ctx context.Context) {
	signal.Notify(a.signals, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(a.signals)

	select {
	case sig := <-a.signals:
		a.Logger.Info("Received shutdown signal, graceful shutdown starting", logger.Fields(
			"signal", sig.String(),
		))
	case <-ctx.Done():
		a.Logger.Info("Context canceled, shutting down")
	case <-a.Pipeline.Done():
		a.Logger.Info("All stages exited, shutting down")
	}
}

// watchFailures logs each stage failure as it is delivered. The pipeline
// itself leaves failures to its owner.
func (a *App) watchFailures(failures <-chan *pipeline.StageError) {
	for f := range failures {
		a.Logger.Error("Stage failed", logger.MergeWithError(
			logger.StageFields(f.Index, f.Tag, f.Role.String()), f))
	}
}

// stageFailures returns the failures of an exited pipeline. It does not
// wait for stages still running after a timed-out shutdown.
func (a *App) stageFailures() error {
	select {
	case <-a.Pipeline.Done():
		return a.Pipeline.Wait(context.Background())
	default:
		return nil
	}
}

// Shutdown performs graceful shutdown. Use when managing your own lifecycle.
func (a *App) Shutdown(_ context.Context) error {
	return a.stop()
}

func (a *App) stop() error {
	a.Logger.Info("Shutting down application", logger.Fields(
		"timeout", a.gracefulTimeout.String(),
	))

	ctx, cancel := context.WithTimeout(context.Background(), a.gracefulTimeout)
	defer cancel()

	var errs []error
	if err := a.runHooks(ctx, phaseStop); err != nil {
		a.Logger.Error("Stop hook failed", logger.Fields(logger.FieldError, err.Error()))
		errs = append(errs, err)
	}
	if err := a.Components.StopAll(ctx); err != nil {
		a.Logger.Error("Shutdown completed with errors", logger.Fields(logger.FieldError, err.Error()))
		errs = append(errs, err)
	}

	a.Logger.Info("Application shutdown complete")
	return stderrors.Join(errs...)
}
