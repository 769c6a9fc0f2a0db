// Package observability wires OpenTelemetry metrics and tracing for
// pipelines.
//
// Providers are built from Config and an Identity naming the process:
//
//	id := observability.Identity{Service: "cams", Version: "1.2.0", Environment: "prod"}
//	mp, err := observability.NewMeterProvider(ctx, cfg, id)
//	tp, err := observability.NewTracerProvider(ctx, cfg, id)
//
// Under bootstrap the providers are owned by Component, which installs them
// globally on Start and flushes them on Stop.
//
// Pipeline instruments:
//
//	m, err := observability.NewPipelineMetrics(observability.Meter("stagekit"))
//	m.RecordItem(ctx, observability.StageAttrs{Pipeline: "cams", Index: 1, Tag: "MAP", Role: "transform"})
//	reg, err := m.ObserveDepth(func() []observability.ConnectorDepth { ... })
//	defer reg.Unregister()
package observability
